package audit

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const goodPage = `<!DOCTYPE html>
<html lang="et">
<head>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Haagissuvila rent Tartus</title>
<meta name="description" content="Rendi haagissuvila Tartus.">
<link rel="canonical" href="https://example.test/et/">
<script type="application/ld+json">{"@type": "WebPage"}</script>
</head>
<body><img src="/img/a.webp" alt="Haagissuvila"><img src="/img/b.webp" alt=""></body>
</html>`

const badPage = `<html>
<head><title> </title>
<script type="application/ld+json">{"@type": </script>
</head>
<body>{{hero_title}} <!-- COMPONENT: FOOTER --> <img src="/img/c.webp"></body>
</html>`

func kinds(issues []Issue) []Kind {
	out := make([]Kind, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Kind)
	}
	return out
}

func TestDocumentClean(t *testing.T) {
	require.Empty(t, Document("et/index.html", []byte(goodPage)))
}

func TestDocumentFindings(t *testing.T) {
	issues := Document("et/bad.html", []byte(badPage))
	require.ElementsMatch(t, []Kind{
		KindLeftoverToken,
		KindLeftoverMarker,
		KindMissingLang,
		KindMissingTitle,
		KindMissingDescription,
		KindMissingCanonical,
		KindMissingViewport,
		KindImageAlt,
		KindInvalidJSONLD,
	}, kinds(issues))
	require.Equal(t, "{{hero_title}}", issues[0].Detail)
	require.Equal(t, "et/bad.html: leftover_token ({{hero_title}})", issues[0].String())
}

func TestDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "et"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "et", "index.html"), []byte(goodPage), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "et", "bad.html"), []byte(badPage), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "robots.txt"), []byte("{{ignored}}"), 0o644))

	report, err := Dir(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, 2, report.Pages)
	require.Equal(t, 1, report.Count(KindLeftoverToken))
	for _, i := range report.Issues {
		require.Equal(t, "et/bad.html", i.Path)
	}
	require.ErrorIs(t, report.Err(), ErrLeftoverTokens)
	report.Log(nil)
}

func TestDirWithoutTokensPasses(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(goodPage), 0o644))

	report, err := Dir(context.Background(), dir)
	require.NoError(t, err)
	require.NoError(t, report.Err())
}

func TestDirCancelled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(goodPage), 0o644))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Dir(ctx, dir)
	require.ErrorIs(t, err, context.Canceled)
}
