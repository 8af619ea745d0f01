package pagetemplate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html>
<head><title>%{title}</title>
<meta name="description" content="%{description}">
<style>.w { width: 100%; } %not-a-field</style>
</head>
<body>
%{next}
%{content}
%{prev}
<ul>%{categlist}</ul>
<footer>%{unknown} 50% done %{title}</footer>
</body>
</html>
`

func TestFill_Golden(t *testing.T) {
	tmpl := Parse(page)
	out := tmpl.Fill(Fields{
		Title:       "Tom &amp; Jerry",
		Description: "A short story",
		Next:        `<div id="next"><a href="/archive/b.html">B</a></div>`,
		Prev:        "",
		Content:     "<p>Hello</p>",
		Categlist:   `<li><a href="/category/tech.html">Tech</a> <small>3</small></li>`,
	})

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "page", []byte(out))
}

func TestFill_PercentSurvives(t *testing.T) {
	tmpl := Parse("100% %{title} %% %{ title} %{Title}")
	assert.Equal(t, "100% x %% %{ title} %{Title}", tmpl.Fill(Fields{Title: "x"}))
}

func TestFill_ValuesAreNotReexpanded(t *testing.T) {
	tmpl := Parse("%{content}")
	assert.Equal(t, "%{title}", tmpl.Fill(Fields{Content: "%{title}", Title: "nope"}))
}

func TestPlaceholders(t *testing.T) {
	tmpl := Parse("%{title}-%{content}-%{title}")
	assert.Equal(t, []string{"title", "content", "title"}, tmpl.Placeholders())
	assert.Empty(t, Parse("plain").Placeholders())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.html")
	require.NoError(t, os.WriteFile(path, []byte("<h1>%{title}</h1>"), 0o644))

	tmpl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "<h1>T</h1>", tmpl.Fill(Fields{Title: "T"}))

	_, err = Load(filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)
}
