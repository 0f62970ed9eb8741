package site

import (
	"strings"
)

const criticalCSSMarker = "/* Critical CSS will be injected here */"

// isAMP reports whether doc must keep its own amp-custom styles.
func isAMP(doc string) bool {
	return strings.Contains(doc, "<html ⚡") ||
		strings.Contains(doc, "<html amp") ||
		strings.Contains(doc, "<style amp-custom>")
}

// injectCriticalCSS inlines css at the marker comment, else at the top of the
// first <style> element, else in a new <style> before </head>.
func injectCriticalCSS(doc, css string) string {
	if css == "" {
		return doc
	}
	if strings.Contains(doc, criticalCSSMarker) {
		return strings.Replace(doc, criticalCSSMarker, css, 1)
	}
	if i := strings.Index(doc, "<style>"); i >= 0 {
		at := i + len("<style>")
		return doc[:at] + "\n" + css + doc[at:]
	}
	return strings.Replace(doc, "</head>", "<style>\n"+css+"\n</style>\n</head>", 1)
}
