package publish

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/ncruces/go-strftime"

	"git.home.luguber.info/inful/docpress/internal/markdown"
	"git.home.luguber.info/inful/docpress/internal/pagetemplate"
	"git.home.luguber.info/inful/docpress/internal/site"
)

// Renderer turns markdown into an HTML fragment.
type Renderer interface {
	Render(src []byte) ([]byte, error)
}

// Shared is the read-only state every worker renders with. It must be
// complete before the pool starts and is never modified afterwards.
type Shared struct {
	Template           *pagetemplate.Template
	Renderer           Renderer
	BaseURI            string
	TimeFormat         string
	CategoryTimeFormat string
	// Categlist is the global category list fragment.
	Categlist string
}

// CategoryList builds the category list fragment for idx: one list item
// per Category in name order.
func CategoryList(idx *site.Index) string {
	cats := idx.Categories()
	lines := make([]string, 0, len(cats))
	for _, c := range cats {
		lines = append(lines, fmt.Sprintf(`<li><a href="%s">%s</a> <small>%d</small></li>`,
			html.EscapeString(site.Link(c)), html.EscapeString(c.DisplayName()), c.Count()))
	}
	return strings.Join(lines, "\n")
}

// Rendered is a filled page.
type Rendered struct {
	Page []byte
	// Empty is set when the rendered content was blank.
	Empty bool
}

// Render produces the final page for u.
func (s *Shared) Render(u *WorkUnit) (Rendered, error) {
	raw, err := s.rawContent(u)
	if err != nil {
		return Rendered{}, err
	}
	body, err := s.Renderer.Render(raw)
	if err != nil {
		return Rendered{}, err
	}
	content := string(bytes.TrimSpace(body))

	fields := pagetemplate.Fields{
		pagetemplate.Title:       html.EscapeString(u.Title),
		pagetemplate.Description: html.EscapeString(markdown.PlainText([]byte(content), markdown.DescriptionLength)),
		pagetemplate.Canonical:   html.EscapeString(strings.TrimSuffix(s.BaseURI, "/") + u.Link),
		pagetemplate.Modified:    html.EscapeString(strftime.Format(s.TimeFormat, u.ModTime)),
		pagetemplate.Category:    categoryLinks(u.Categories),
		pagetemplate.Next:        navFragment("next", u.Next),
		pagetemplate.Prev:        navFragment("prev", u.Prev),
		pagetemplate.Content:     content,
		pagetemplate.Categlist:   s.Categlist,
	}
	return Rendered{
		Page:  []byte(s.Template.Fill(fields)),
		Empty: content == "",
	}, nil
}

// rawContent is the markdown source of a unit: the file body for an
// Article, a generated listing for a Category.
func (s *Shared) rawContent(u *WorkUnit) ([]byte, error) {
	switch u.Kind {
	case KindArticle:
		if u.Source == nil {
			return nil, fmt.Errorf("article %q has no source", u.Name)
		}
		return u.Source()
	case KindCategory:
		lines := make([]string, 0, len(u.Members))
		for _, m := range u.Members {
			lines = append(lines, fmt.Sprintf(`- <a href="%s">%s</a> (%s)`,
				html.EscapeString(m.Link), html.EscapeString(m.Title), strftime.Format(s.CategoryTimeFormat, m.ModTime)))
		}
		return []byte(strings.Join(lines, "\n")), nil
	default:
		return nil, fmt.Errorf("unknown page kind %s", u.Kind)
	}
}

func categoryLinks(refs []Ref) string {
	links := make([]string, 0, len(refs))
	for _, r := range refs {
		links = append(links, fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(r.Link), html.EscapeString(r.Title)))
	}
	return strings.Join(links, "\n")
}

func navFragment(id string, r *Ref) string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf(`<div id="%s"><a href="%s">%s</a></div>`, id, html.EscapeString(r.Link), html.EscapeString(r.Title))
}
