package markdown

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// DescriptionLength is the rune limit used for page descriptions.
const DescriptionLength = 160

// PlainText returns the visible text of an HTML fragment with whitespace
// collapsed, cut to at most limit runes. limit <= 0 means no limit.
func PlainText(fragment []byte, limit int) string {
	z := html.NewTokenizer(bytes.NewReader(fragment))
	var text strings.Builder
	hidden := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or a tokenizer error; either way the text so far stands.
			return truncate(strings.Join(strings.Fields(text.String()), " "), limit)
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if isHidden(tag) {
				switch {
				case tt == html.StartTagToken:
					hidden++
				case tt == html.EndTagToken && hidden > 0:
					hidden--
				}
			}
			if blockTags[tag] {
				text.WriteByte(' ')
			}
		case html.TextToken:
			if hidden == 0 {
				text.Write(z.Text())
			}
		}
	}
}

// blockTags separate words even when the markup has no whitespace between
// them. Inline tags such as em or a join their text to the neighbours.
var blockTags = map[string]bool{
	"p": true, "br": true, "hr": true, "div": true, "li": true,
	"ul": true, "ol": true, "pre": true, "blockquote": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"table": true, "tr": true, "td": true, "th": true,
}

func isHidden(tag string) bool {
	return tag == "script" || tag == "style"
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit]))
}
