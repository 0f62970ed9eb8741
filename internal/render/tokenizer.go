package render

import (
	"strings"
)

// NodeKind distinguishes the parts of a tokenized template.
type NodeKind int

const (
	NodeText NodeKind = iota
	NodeToken
	NodeComponent
)

// Node is one element of a tokenized template. Text holds the source text of
// every node so that unexpanded input can be reproduced verbatim.
type Node struct {
	Kind NodeKind
	Text string
	Key  string
	Name string
}

const (
	tokenOpen   = "{{"
	tokenClose  = "}}"
	markerOpen  = "<!--"
	markerClose = "-->"
	markerLabel = "COMPONENT:"
)

// Tokenize splits src into text, {{key}} token and component marker nodes.
// Adjacent text is merged; malformed tokens and comments stay text.
func Tokenize(src string) []Node {
	var (
		nodes []Node
		text  strings.Builder
	)
	flush := func() {
		if text.Len() > 0 {
			nodes = append(nodes, Node{Kind: NodeText, Text: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(src); {
		switch {
		case strings.HasPrefix(src[i:], tokenOpen):
			if key, n, ok := scanToken(src[i:]); ok {
				flush()
				nodes = append(nodes, Node{Kind: NodeToken, Text: src[i : i+n], Key: key})
				i += n
				continue
			}
		case strings.HasPrefix(src[i:], markerOpen):
			if name, n, ok := scanMarker(src[i:]); ok {
				flush()
				nodes = append(nodes, Node{Kind: NodeComponent, Text: src[i : i+n], Name: name})
				i += n
				continue
			}
		}
		text.WriteByte(src[i])
		i++
	}
	flush()
	return nodes
}

// scanToken reads "{{key}}" at the start of s. The key may not contain braces.
func scanToken(s string) (string, int, bool) {
	rest := s[len(tokenOpen):]
	for j := 0; j < len(rest); j++ {
		switch rest[j] {
		case '{':
			return "", 0, false
		case '}':
			if !strings.HasPrefix(rest[j:], tokenClose) {
				return "", 0, false
			}
			return strings.TrimSpace(rest[:j]), len(tokenOpen) + j + len(tokenClose), true
		}
	}
	return "", 0, false
}

// scanMarker reads "<!-- COMPONENT: NAME -->" at the start of s.
func scanMarker(s string) (string, int, bool) {
	end := strings.Index(s, markerClose)
	if end < 0 {
		return "", 0, false
	}
	inner := strings.TrimSpace(s[len(markerOpen):end])
	if !strings.HasPrefix(inner, markerLabel) {
		return "", 0, false
	}
	name := strings.TrimSpace(strings.TrimPrefix(inner, markerLabel))
	if !isMarkerName(name) {
		return "", 0, false
	}
	return name, end + len(markerClose), true
}

func isMarkerName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') && r != '_' {
			return false
		}
	}
	return true
}

// Strip removes every {{...}} token, repeating until none remain. Runs from
// "{{" to the next "}}" that do not form a valid token are removed as well.
func Strip(s string) string {
	for {
		out, removed := stripTokens(s)
		if !removed {
			out, removed = stripRuns(s)
		}
		if !removed {
			return s
		}
		s = out
	}
}

func stripTokens(s string) (string, bool) {
	removed := false
	var b strings.Builder
	b.Grow(len(s))
	for _, n := range Tokenize(s) {
		if n.Kind == NodeToken {
			removed = true
			continue
		}
		b.WriteString(n.Text)
	}
	return b.String(), removed
}

func stripRuns(s string) (string, bool) {
	removed := false
	var b strings.Builder
	b.Grow(len(s))
	for {
		start := strings.Index(s, tokenOpen)
		if start < 0 {
			break
		}
		end := strings.Index(s[start+len(tokenOpen):], tokenClose)
		if end < 0 {
			break
		}
		b.WriteString(s[:start])
		s = s[start+len(tokenOpen)+end+len(tokenClose):]
		removed = true
	}
	b.WriteString(s)
	return b.String(), removed
}

// Cleanup is the last pass over a rendered page: the legacy [lang] marker is
// replaced and leftover tokens are removed.
func Cleanup(s, lang string) string {
	return Strip(strings.ReplaceAll(s, "[lang]", lang))
}
