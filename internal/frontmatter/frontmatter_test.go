package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\nkey: value\n---\n# Title\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("key: value\n"), fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_ClosingDelimiterAtEOF(t *testing.T) {
	fm, body, had, err := Split([]byte("---\ntitle: x\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: x\n"), fm)
	require.Empty(t, body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	_, _, had, err := Split([]byte("---\nkey: value\n# Title\n"))
	require.Error(t, err)
	require.False(t, had)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestSplit_CRLF_SplitsFrontmatterAndBody(t *testing.T) {
	fm, body, had, err := Split([]byte("---\r\nkey: value\r\n---\r\n# Title\r\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("key: value\r\n"), fm)
	require.Equal(t, []byte("# Title\r\n"), body)
}

func TestSplit_EmptyFrontmatterBlock(t *testing.T) {
	fm, body, had, err := Split([]byte("---\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_DelimiterMustBeExactLine(t *testing.T) {
	input := []byte("----\ntitle: x\n----\nbody\n")
	_, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Equal(t, input, body)
}

func TestParse_TitleAndCategories(t *testing.T) {
	doc, err := Parse([]byte("---\ntitle: '  Hello World  '\ncategory: tech life tech bad/token\n---\nBody text\n"))
	require.NoError(t, err)

	assert.True(t, doc.HasFrontMatter)
	assert.Equal(t, "Hello World", doc.Meta.Title)
	assert.Equal(t, []string{"tech", "life"}, doc.Meta.Categories)
	assert.Equal(t, "Body text\n", string(doc.Body))
}

func TestParse_CategoryList(t *testing.T) {
	doc, err := Parse([]byte("---\ncategory:\n  - go\n  - go\n  - 2024\n  - has space\n---\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "2024"}, doc.Meta.Categories)
}

func TestParse_NoMetadataLeavesDefaults(t *testing.T) {
	doc, err := Parse([]byte("just text\n"))
	require.NoError(t, err)
	assert.False(t, doc.HasFrontMatter)
	assert.Empty(t, doc.Meta.Title)
	assert.Empty(t, doc.Meta.Categories)
}

func TestParse_MalformedYAMLStillStripsBlock(t *testing.T) {
	doc, err := Parse([]byte("---\ntitle: [oops\n---\nBody\n"))
	require.Error(t, err)
	assert.True(t, doc.HasFrontMatter)
	assert.Equal(t, "Body\n", string(doc.Body))
	assert.Empty(t, doc.Meta.Title)
}

func TestStrip_NeverExposesDelimiters(t *testing.T) {
	cases := map[string]string{
		"---\ntitle: a\n---\ncontent\n": "content\n",
		"---\n---\ncontent\n":           "content\n",
		"no front matter\n---\n":        "no front matter\n---\n",
	}
	for in, want := range cases {
		assert.Equal(t, want, string(Strip([]byte(in))), "input %q", in)
	}
}

func TestParseYAML_ValidYAML_ReturnsMap(t *testing.T) {
	fields, err := ParseYAML([]byte("title: abc\ncategory:\n  - one\n"))
	require.NoError(t, err)
	require.Equal(t, "abc", fields["title"])
	require.Equal(t, []any{"one"}, fields["category"])
}
