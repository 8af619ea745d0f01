package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Split separates YAML front matter (`---` delimited) from the document body.
//
// The opening delimiter must be the very first line. The closing delimiter
// is a line of exactly `---`, which may also be the last line of the file
// without a trailing newline. If the document does not start with a
// delimiter, had is false and body is the full input.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}
	if bytes.Equal(rest, []byte("---")) {
		return []byte{}, []byte{}, true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	if idx := bytes.Index(rest, closeSeq); idx >= 0 {
		return rest[:idx+len(nl)], rest[idx+len(closeSeq):], true, nil
	}

	eofClose := []byte(nl + "---")
	if bytes.HasSuffix(rest, eofClose) {
		idx := len(rest) - len(eofClose)
		return rest[:idx+len(nl)], []byte{}, true, nil
	}

	return nil, content, false, ErrMissingClosingDelimiter
}

// ParseYAML parses raw YAML front matter (without --- delimiters) into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(frontmatter) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// ErrMissingClosingDelimiter indicates the document started with a YAML
// front matter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// categoryPattern is the identifier shape a category token must have.
var categoryPattern = regexp.MustCompile(`^[\p{L}\p{N}_][\p{L}\p{N}_.-]*$`)

// Meta is the metadata a source document may carry.
type Meta struct {
	// Title is empty when the block supplies none.
	Title string
	// Categories are deduplicated in first-seen order; tokens that are
	// not identifiers are dropped.
	Categories []string
}

// Document is a source file split into metadata and body.
type Document struct {
	Meta Meta
	// Body never contains the front matter block.
	Body []byte
	// HasFrontMatter is true when a delimited block was found, even if its
	// YAML could not be parsed.
	HasFrontMatter bool
}

// Parse splits content and extracts title and categories.
//
// A missing closing delimiter means the file has no front matter: the whole
// input becomes the body. Malformed YAML inside a well-delimited block is
// reported as an error, but the returned Document still has the block
// stripped from Body so it never leaks into rendered output.
func Parse(content []byte) (Document, error) {
	fm, body, had, err := Split(content)
	if err != nil {
		return Document{Body: content}, nil
	}
	doc := Document{Body: body, HasFrontMatter: had}
	if !had {
		return doc, nil
	}

	fields, err := ParseYAML(fm)
	if err != nil {
		return doc, fmt.Errorf("parse front matter: %w", err)
	}
	doc.Meta = metaFromFields(fields)
	return doc, nil
}

// Strip returns content without its front matter block.
func Strip(content []byte) []byte {
	_, body, had, err := Split(content)
	if err != nil || !had {
		return content
	}
	return body
}

func metaFromFields(fields map[string]any) Meta {
	var m Meta
	if v, ok := fields["title"]; ok && v != nil {
		m.Title = strings.TrimSpace(fmt.Sprint(v))
	}

	var tokens []string
	switch v := fields["category"].(type) {
	case nil:
	case []any:
		for _, item := range v {
			if item != nil {
				tokens = append(tokens, strings.TrimSpace(fmt.Sprint(item)))
			}
		}
	default:
		tokens = strings.Fields(fmt.Sprint(v))
	}

	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if !categoryPattern.MatchString(tok) {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		m.Categories = append(m.Categories, tok)
	}
	return m
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
