package site

import (
	"cmp"
	"net/url"
	"os"
	"slices"
	"time"

	"git.home.luguber.info/inful/docpress/internal/frontmatter"
)

// Bucket directories below the deploy root.
const (
	ArchiveBucket  = "archive"
	CategoryBucket = "category"
)

// CategoryTitlePrefix precedes a category's display name in its title.
const CategoryTitlePrefix = "Category: "

// Page is implemented by *Article and *Category only.
type Page interface {
	Name() string
	Title() string
	ModTime() time.Time
	// CacheKey is the URL-encoded name used for the artifact file name.
	CacheKey() string
	// Bucket is the deploy subdirectory the artifact lives in.
	Bucket() string

	sealed()
}

// RelPath is the artifact path relative to the deploy root.
func RelPath(p Page) string {
	return p.Bucket() + "/" + p.CacheKey() + ".html"
}

// Link is the site-absolute URL of the artifact.
func Link(p Page) string {
	return "/" + p.Bucket() + "/" + url.PathEscape(p.CacheKey()) + ".html"
}

// Article is a page backed by one source file.
type Article struct {
	sourcePath string
	name       string
	title      string
	modTime    time.Time
	categories []string
}

// NewArticle builds an Article. An empty title falls back to name.
func NewArticle(sourcePath, name, title string, modTime time.Time, categories []string) *Article {
	if title == "" {
		title = name
	}
	return &Article{
		sourcePath: sourcePath,
		name:       name,
		title:      title,
		modTime:    modTime,
		categories: slices.Clone(categories),
	}
}

func (a *Article) Name() string       { return a.name }
func (a *Article) Title() string      { return a.title }
func (a *Article) ModTime() time.Time { return a.modTime }
func (a *Article) CacheKey() string   { return url.PathEscape(a.name) }
func (a *Article) Bucket() string     { return ArchiveBucket }
func (a *Article) SourcePath() string { return a.sourcePath }
func (*Article) sealed()              {}

// Categories returns the category names in first-seen order.
func (a *Article) Categories() []string { return slices.Clone(a.categories) }

// Content reads the source file and returns it without its front matter.
func (a *Article) Content() ([]byte, error) {
	// #nosec G304 - sourcePath comes from the indexed source directory
	raw, err := os.ReadFile(a.sourcePath)
	if err != nil {
		return nil, err
	}
	return frontmatter.Strip(raw), nil
}

// Category groups the Articles that reference the same category name.
type Category struct {
	name    string
	display string
	members []*Article
	modTime time.Time
}

// NewCategory creates a Category holding its first member, so a Category
// is never empty. display may be empty, in which case name is shown.
func NewCategory(name, display string, first *Article) *Category {
	if display == "" {
		display = name
	}
	c := &Category{name: name, display: display}
	c.Add(first)
	return c
}

// Add appends a member and refreshes the running modification time.
func (c *Category) Add(a *Article) {
	c.members = append(c.members, a)
	if a.ModTime().After(c.modTime) {
		c.modTime = a.ModTime()
	}
}

func (c *Category) Name() string        { return c.name }
func (c *Category) DisplayName() string { return c.display }
func (c *Category) Title() string       { return CategoryTitlePrefix + c.display }
func (c *Category) ModTime() time.Time  { return c.modTime }
func (c *Category) CacheKey() string    { return url.PathEscape(c.name) }
func (c *Category) Bucket() string      { return CategoryBucket }
func (c *Category) Count() int          { return len(c.members) }
func (*Category) sealed()               {}

// Members returns the member Articles in index order.
func (c *Category) Members() []*Article {
	out := slices.Clone(c.members)
	slices.SortStableFunc(out, func(a, b *Article) int { return Compare(a, b) })
	return out
}

// Compare is the single ordering rule for pages.
//
// Articles: modification time descending (newest first), then title
// ascending. Categories: name ascending. Articles sort before Categories.
func Compare(a, b Page) int {
	_, aCat := a.(*Category)
	_, bCat := b.(*Category)
	switch {
	case aCat && bCat:
		return cmp.Compare(a.Name(), b.Name())
	case aCat:
		return 1
	case bCat:
		return -1
	}
	if c := b.ModTime().Compare(a.ModTime()); c != 0 {
		return c
	}
	return cmp.Compare(a.Title(), b.Title())
}
