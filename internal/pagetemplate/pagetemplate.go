// Package pagetemplate fills the site template's %{name} placeholders.
//
// A template is parsed once into literal and placeholder segments and is
// read-only afterwards, so one value can be shared by every publish worker.
// A percent sign that does not start a known placeholder is copied through
// unchanged, as is a placeholder whose name has no value.
package pagetemplate

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Placeholder names understood by the publish step.
const (
	Title       = "title"
	Description = "description"
	Canonical   = "canonical"
	Modified    = "modified"
	Category    = "category"
	Content     = "content"
	Next        = "next"
	Prev        = "prev"
	Categlist   = "categlist"
)

var placeholderRe = regexp.MustCompile(`%\{([a-z_]+)\}`)

type segment struct {
	literal string
	field   string
}

// Template is an immutable parsed template.
type Template struct {
	segments []segment
	size     int
}

// Fields maps placeholder names to already-escaped values.
type Fields map[string]string

// Parse splits src into segments.
func Parse(src string) *Template {
	t := &Template{size: len(src)}
	last := 0
	for _, m := range placeholderRe.FindAllStringSubmatchIndex(src, -1) {
		if m[0] > last {
			t.segments = append(t.segments, segment{literal: src[last:m[0]]})
		}
		t.segments = append(t.segments, segment{
			literal: src[m[0]:m[1]],
			field:   src[m[2]:m[3]],
		})
		last = m[1]
	}
	if last < len(src) {
		t.segments = append(t.segments, segment{literal: src[last:]})
	}
	return t
}

// Load reads and parses the template file at path.
func Load(path string) (*Template, error) {
	// #nosec G304 - path comes from validated configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return Parse(string(data)), nil
}

// Placeholders lists the placeholder names in order of appearance,
// repeats included.
func (t *Template) Placeholders() []string {
	var names []string
	for _, s := range t.segments {
		if s.field != "" {
			names = append(names, s.field)
		}
	}
	return names
}

// Fill substitutes fields into the template.
func (t *Template) Fill(fields Fields) string {
	var b strings.Builder
	b.Grow(t.size)
	for _, s := range t.segments {
		if s.field != "" {
			if v, ok := fields[s.field]; ok {
				b.WriteString(v)
				continue
			}
		}
		b.WriteString(s.literal)
	}
	return b.String()
}
