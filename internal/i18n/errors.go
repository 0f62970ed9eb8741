package i18n

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingLanguageFile matches errors for languages without a translation file.
	ErrMissingLanguageFile = errors.New("i18n: missing language file")
	// ErrMalformedTranslationData matches errors for unparseable translation files.
	ErrMalformedTranslationData = errors.New("i18n: malformed translation data")
	// ErrNoLanguages is returned when no language could be loaded.
	ErrNoLanguages = errors.New("i18n: no languages loaded")
)

// MissingLanguageFileError reports a language with no readable translation file.
type MissingLanguageFileError struct {
	Language string
	Dir      string
	Err      error
}

func (e *MissingLanguageFileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("i18n: no translation file for %q in %s: %v", e.Language, e.Dir, e.Err)
	}
	return fmt.Sprintf("i18n: no translation file for %q in %s", e.Language, e.Dir)
}

func (e *MissingLanguageFileError) Is(target error) bool { return target == ErrMissingLanguageFile }

func (e *MissingLanguageFileError) Unwrap() error { return e.Err }

// MalformedTranslationDataError reports a translation file that is not a flat
// key/value document.
type MalformedTranslationDataError struct {
	Language string
	Path     string
	Err      error
}

func (e *MalformedTranslationDataError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("i18n: malformed translations for %q: %v", e.Language, e.Err)
	}
	return fmt.Sprintf("i18n: malformed translations for %q in %s: %v", e.Language, e.Path, e.Err)
}

func (e *MalformedTranslationDataError) Is(target error) bool {
	return target == ErrMalformedTranslationData
}

func (e *MalformedTranslationDataError) Unwrap() error { return e.Err }
