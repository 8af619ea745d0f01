package changes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpress/internal/site"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func article(name string, age int, cats ...string) *site.Article {
	return site.NewArticle("/src/"+name, name, "", t0.Add(-time.Duration(age)*time.Hour), cats)
}

func publishedSet(names ...string) Published {
	set := map[string]bool{}
	for _, n := range names {
		set[n] = true
	}
	return func(p site.Page) bool { return set[p.Name()] }
}

func names(idx *site.Index, work []int) []string {
	var out []string
	for _, pos := range work {
		out = append(out, idx.At(pos).Name())
	}
	return out
}

func TestDetect_StopsAtFirstPublished(t *testing.T) {
	idx := site.NewIndex([]*site.Article{article("A", 0), article("B", 1), article("C", 2), article("D", 3)}, nil)

	work, err := Detect(idx, publishedSet("C", "D"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, names(idx, work))
}

func TestDetect_OlderGapsAreNotRevisited(t *testing.T) {
	idx := site.NewIndex([]*site.Article{article("A", 0), article("B", 1), article("C", 2)}, nil)

	// C was deleted from the destination but B is published: scanning stops at B.
	work, err := Detect(idx, publishedSet("B"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names(idx, work))
}

func TestDetect_SingleNewEntry(t *testing.T) {
	idx := site.NewIndex([]*site.Article{article("A", 0)}, nil)

	work, err := Detect(idx, publishedSet())
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, names(idx, work))
}

func TestDetect_NothingPublishedTakesEverything(t *testing.T) {
	idx := site.NewIndex([]*site.Article{article("A", 0), article("B", 1)}, nil)

	work, err := Detect(idx, publishedSet())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names(idx, work))
}

func TestDetect_NothingNew(t *testing.T) {
	idx := site.NewIndex([]*site.Article{article("A", 0), article("B", 1)}, nil)

	work, err := Detect(idx, publishedSet("A", "B"))
	assert.ErrorIs(t, err, ErrNothingNew)
	assert.Empty(t, work)
}

func TestDetect_IgnoresCategories(t *testing.T) {
	a := article("A", 0, "tech")
	idx := site.NewIndex([]*site.Article{a}, []*site.Category{site.NewCategory("tech", "", a)})

	work, err := Detect(idx, publishedSet())
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, names(idx, work))
}

func TestWithCategories(t *testing.T) {
	a := article("A", 0, "tech")
	b := article("B", 1, "life")
	c := article("C", 2, "life")
	tech := site.NewCategory("tech", "", a)
	life := site.NewCategory("life", "", b)
	life.Add(c)
	idx := site.NewIndex([]*site.Article{a, b, c}, []*site.Category{tech, life})

	work := WithCategories(idx, []int{0})
	assert.Equal(t, []string{"A", "tech"}, names(idx, work))

	work = WithCategories(idx, []int{0, 1, 2})
	assert.Equal(t, []string{"A", "B", "C", "life", "tech"}, names(idx, work))
}

func TestAll(t *testing.T) {
	a := article("A", 0, "x")
	idx := site.NewIndex([]*site.Article{a, article("B", 1)}, []*site.Category{site.NewCategory("x", "", a)})
	assert.Equal(t, []int{0, 1, 2}, All(idx))
}
