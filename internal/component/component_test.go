package component

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newFixture(t *testing.T) (string, map[string]string) {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"components/structure/navbar.html":        `<nav><a href="{{prefix}}#home">{{nav_home}}</a></nav>`,
		"components/structure/intro.md":           "---\ntitle: Intro\n---\n# {{hero_title}}\n\nSee <!-- COMPONENT: NAVBAR -->\n",
		"components/structured-data/product.json": `{"@type":"Product","name":"{{nav_caravan}}","offers":{"price":75}}`,
	}
	for rel, body := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	}
	return root, map[string]string{
		"NAVBAR":         "components/structure/navbar.html",
		"INTRO":          "components/structure/intro.md",
		"PRODUCT_SCHEMA": "components/structured-data/product.json",
		"FOOTER":         "components/structure/footer.html",
	}
}

func TestFragmentKinds(t *testing.T) {
	root, paths := newFixture(t)
	r := NewResolver(root, paths, nil)

	nav, ok := r.Fragment("NAVBAR")
	require.True(t, ok)
	require.Equal(t, KindHTML, nav.Kind)
	require.Contains(t, nav.Body, "{{nav_home}}")

	intro, ok := r.Fragment("INTRO")
	require.True(t, ok)
	require.Equal(t, KindMarkdown, intro.Kind)
	require.Contains(t, intro.Body, "<h1")
	require.Contains(t, intro.Body, "{{hero_title}}")
	require.Contains(t, intro.Body, "<!-- COMPONENT: NAVBAR -->")
	require.NotContains(t, intro.Body, "title: Intro")

	product, ok := r.Fragment("PRODUCT_SCHEMA")
	require.True(t, ok)
	require.Equal(t, KindJSON, product.Kind)
}

func TestFragmentMissing(t *testing.T) {
	root, paths := newFixture(t)
	r := NewResolver(root, paths, nil)

	footer, ok := r.Fragment("FOOTER")
	require.False(t, ok)
	require.Empty(t, footer.Body)

	unknown, ok := r.Fragment("NOPE")
	require.False(t, ok)
	require.Empty(t, unknown.Body)

	_, ok = r.Fragment("FOOTER")
	require.False(t, ok, "cached failure stays a failure")
}

func TestEscapeJSON(t *testing.T) {
	require.Equal(t, `Tartu \"Haagissuvila\" <b>rent</b>`, EscapeJSON(`Tartu "Haagissuvila" <b>rent</b>`))
	require.Equal(t, `line\nbreak`, EscapeJSON("line\nbreak"))
}

func TestFinalize(t *testing.T) {
	out, err := Finalize("PRODUCT_SCHEMA", `{"name":"Elddis","price":75,"@type":"Product"}`)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, `<script type="application/ld+json">`))
	require.True(t, strings.HasSuffix(out, "</script>"))
	require.Contains(t, out, `"price": 75`)
	require.Less(t, strings.Index(out, `"@type"`), strings.Index(out, `"name"`))

	_, err = Finalize("PRODUCT_SCHEMA", `{"name":"broken}`)
	require.Error(t, err)

	_, err = Finalize("PRODUCT_SCHEMA", `{"a":1} {"b":2}`)
	require.Error(t, err)

	for _, trailing := range []string{`{"a":1} }`, `{"a":1}]`, `{"a":1} x`} {
		_, err = Finalize("FAQ_SCHEMA", trailing)
		require.Error(t, err, trailing)
	}

	_, err = Finalize("FAQ_SCHEMA", "{\"a\":1}\n  \n")
	require.NoError(t, err)
}

func TestScriptEscapesClosingTags(t *testing.T) {
	out, err := Script(map[string]string{"text": "</script><b>"})
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(out, "</script>"))
}
