package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jaanus110/haagissuvilarent/internal/i18n"
)

func TestReportDeduplicatesPerPage(t *testing.T) {
	r := NewReport()
	ev := i18n.FallbackEvent{Lang: "et", Page: "index.html", Key: "hero_button", Tier: i18n.TierEnglish, Critical: true}
	r.Record(ev)
	r.Record(ev)
	ev.Page = "amp.html"
	r.Record(ev)

	require.Equal(t, 2, r.Count())
	pages := r.Pages("et")
	require.Len(t, pages, 2)
	require.Equal(t, "index.html", pages[0].Page)
	require.False(t, pages[0].Empty())
}

func TestReportWriteLogsAppends(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	r := NewReport()
	r.Record(i18n.FallbackEvent{Lang: "ru", Page: "index.html", Key: "nav_home", Tier: i18n.TierDefault, Critical: true})
	r.Record(i18n.FallbackEvent{Lang: "ru", Page: "index.html", Key: "footer_text", Tier: i18n.TierGenerated})

	files, err := r.WriteLogs(dir, "01HZZZZZZZZZZZZZZZZZZZZZZZ", now)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "missing_translations_ru.txt")}, files)

	_, err = r.WriteLogs(dir, "01HZZZZZZZZZZZZZZZZZZZZZZZ", now)
	require.NoError(t, err)

	raw, err := os.ReadFile(files[0])
	require.NoError(t, err)
	content := string(raw)
	require.Contains(t, content, "=== Missing translations for ru/index.html ===")
	require.Contains(t, content, "Date: 2025-05-01T10:00:00Z")
	require.Contains(t, content, "== CRITICAL ==\nnav_home (default)\n")
	require.Contains(t, content, "== REGULAR ==\nfooter_text (generated)\n")
	require.Equal(t, 2, strings.Count(content, "=== Missing translations"))
}

func TestReportWriteLogsNoop(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	files, err := NewReport().WriteLogs(dir, "", time.Now())
	require.NoError(t, err)
	require.Empty(t, files)
	_, err = os.Stat(dir)
	require.True(t, os.IsNotExist(err))
}
