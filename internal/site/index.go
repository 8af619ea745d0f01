package site

import "slices"

// none marks a missing navigation link.
const none = -1

// Index is the ordered, immutable-after-build sequence of pages: every
// Article in Compare order followed by every Category in name order.
//
// Navigation links only connect Articles. For adjacent Articles (newer,
// older) the newer one's Prev is the older one and the older one's Next is
// the newer one, so Next walks towards newer content.
type Index struct {
	pages    []Page
	next     []int
	prev     []int
	articles int
}

// NewIndex sorts the given pages and links the Article sequence.
func NewIndex(articles []*Article, categories []*Category) *Index {
	as := slices.Clone(articles)
	slices.SortStableFunc(as, func(a, b *Article) int { return Compare(a, b) })
	cs := slices.Clone(categories)
	slices.SortStableFunc(cs, func(a, b *Category) int { return Compare(a, b) })

	idx := &Index{
		pages:    make([]Page, 0, len(as)+len(cs)),
		articles: len(as),
	}
	for _, a := range as {
		idx.pages = append(idx.pages, a)
	}
	for _, c := range cs {
		idx.pages = append(idx.pages, c)
	}

	idx.next = make([]int, len(idx.pages))
	idx.prev = make([]int, len(idx.pages))
	for i := range idx.pages {
		idx.next[i], idx.prev[i] = none, none
	}
	for cur := 0; cur+1 < idx.articles; cur++ {
		older := cur + 1
		idx.prev[cur] = older
		idx.next[older] = cur
	}
	return idx
}

// Len is the number of pages.
func (x *Index) Len() int { return len(x.pages) }

// At returns the page at position i.
func (x *Index) At(i int) Page { return x.pages[i] }

// Next returns the position of the next (newer) page, if any.
func (x *Index) Next(i int) (int, bool) { return x.link(x.next, i) }

// Prev returns the position of the previous (older) page, if any.
func (x *Index) Prev(i int) (int, bool) { return x.link(x.prev, i) }

func (x *Index) link(links []int, i int) (int, bool) {
	if links[i] == none {
		return 0, false
	}
	return links[i], true
}

// ArticleCount is the number of leading Article positions.
func (x *Index) ArticleCount() int { return x.articles }

// Articles returns the Articles in order.
func (x *Index) Articles() []*Article {
	out := make([]*Article, 0, x.articles)
	for _, p := range x.pages[:x.articles] {
		out = append(out, p.(*Article))
	}
	return out
}

// Categories returns the Categories in name order.
func (x *Index) Categories() []*Category {
	out := make([]*Category, 0, len(x.pages)-x.articles)
	for _, p := range x.pages[x.articles:] {
		out = append(out, p.(*Category))
	}
	return out
}

// Newest returns the first Article, or nil for an Index without Articles.
func (x *Index) Newest() *Article {
	if x.articles == 0 {
		return nil
	}
	return x.pages[0].(*Article)
}

