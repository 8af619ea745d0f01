// Package changes decides which pages an incremental build republishes.
//
// Detection is presence based: a page counts as published when its
// artifact exists. Edits to already published sources, deletions and
// backdated files are not detected; a full rebuild covers those.
package changes

import (
	"errors"
	"slices"

	"git.home.luguber.info/inful/docpress/internal/site"
)

// ErrNothingNew reports an empty incremental work set. It is not a
// failure: the build completes as a no-op.
var ErrNothingNew = errors.New("no new entries to publish")

// Published reports whether the artifact for p already exists.
type Published func(p site.Page) bool

// All returns every position of idx, the work set of a full rebuild.
func All(idx *site.Index) []int {
	out := make([]int, idx.Len())
	for i := range out {
		out[i] = i
	}
	return out
}

// Detect walks the Articles newest first, collecting every entry without
// an artifact. At the first entry that already has one it stops; that entry
// joins the work set too because its newer neighbour changed, unless it is
// the newest entry, in which case nothing is new and ErrNothingNew is
// returned.
//
// A literal stop-at-first-hit walk would republish the newest entry alone
// when it is already published. Detect returns ErrNothingNew there instead;
// the newest page has no newer neighbour, so its artifact would not change.
func Detect(idx *site.Index, published Published) ([]int, error) {
	var work []int
	for i := range idx.ArticleCount() {
		if published(idx.At(i)) {
			if len(work) == 0 {
				return nil, ErrNothingNew
			}
			work = append(work, i)
			break
		}
		work = append(work, i)
	}
	if len(work) == 0 {
		return nil, ErrNothingNew
	}
	return work, nil
}

// WithCategories extends an Article work set with every Category that
// contains one of its Articles, since those listings changed.
func WithCategories(idx *site.Index, work []int) []int {
	out := slices.Clone(work)
	members := make(map[*site.Article]bool, len(work))
	for _, pos := range work {
		if a, ok := idx.At(pos).(*site.Article); ok {
			members[a] = true
		}
	}
	for pos := idx.ArticleCount(); pos < idx.Len(); pos++ {
		c := idx.At(pos).(*site.Category)
		for _, a := range c.Members() {
			if members[a] {
				out = append(out, pos)
				break
			}
		}
	}
	return out
}
