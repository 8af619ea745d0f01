// Package publish renders pages and writes them to the deploy root with a
// fixed-size worker pool.
package publish

import (
	"fmt"
	"slices"
	"time"

	"git.home.luguber.info/inful/docpress/internal/site"
)

// Kind is the page variant of a WorkUnit.
type Kind uint8

const (
	KindArticle Kind = iota
	KindCategory
)

func (k Kind) String() string {
	switch k {
	case KindArticle:
		return "article"
	case KindCategory:
		return "category"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Ref is a link to another page.
type Ref struct {
	Link  string
	Title string
}

// Member is one line of a category listing.
type Member struct {
	Link    string
	Title   string
	ModTime time.Time
}

// WorkUnit is an immutable snapshot of everything needed to render and
// publish one page. It holds no pointers into the Index.
type WorkUnit struct {
	Kind     Kind
	Name     string
	Title    string
	CacheKey string
	RelPath  string
	Link     string
	ModTime  time.Time

	// Article only.
	Source     func() ([]byte, error)
	Categories []Ref
	Next       *Ref
	Prev       *Ref

	// Category only, in index order.
	Members []Member
}

// Snapshot builds the WorkUnits for the given index positions.
func Snapshot(idx *site.Index, positions []int) []WorkUnit {
	byName := make(map[string]*site.Category)
	for _, c := range idx.Categories() {
		byName[c.Name()] = c
	}

	units := make([]WorkUnit, 0, len(positions))
	for _, pos := range positions {
		page := idx.At(pos)
		u := WorkUnit{
			Name:     page.Name(),
			Title:    page.Title(),
			CacheKey: page.CacheKey(),
			RelPath:  site.RelPath(page),
			Link:     site.Link(page),
			ModTime:  page.ModTime(),
		}

		switch p := page.(type) {
		case *site.Article:
			u.Kind = KindArticle
			u.Source = p.Content
			u.Categories = categoryRefs(p, byName)
			u.Next = ref(idx, idx.Next, pos)
			u.Prev = ref(idx, idx.Prev, pos)
		case *site.Category:
			u.Kind = KindCategory
			for _, m := range p.Members() {
				u.Members = append(u.Members, Member{
					Link:    site.Link(m),
					Title:   m.Title(),
					ModTime: m.ModTime(),
				})
			}
		default:
			panic(fmt.Sprintf("publish: unexpected page type %T", page))
		}
		units = append(units, u)
	}
	return units
}

func ref(idx *site.Index, link func(int) (int, bool), pos int) *Ref {
	target, ok := link(pos)
	if !ok {
		return nil
	}
	p := idx.At(target)
	return &Ref{Link: site.Link(p), Title: p.Title()}
}

// categoryRefs returns the Article's categories sorted by name.
func categoryRefs(a *site.Article, byName map[string]*site.Category) []Ref {
	names := a.Categories()
	slices.Sort(names)
	refs := make([]Ref, 0, len(names))
	for _, name := range names {
		c, ok := byName[name]
		if !ok {
			continue
		}
		refs = append(refs, Ref{Link: site.Link(c), Title: c.DisplayName()})
	}
	return refs
}
