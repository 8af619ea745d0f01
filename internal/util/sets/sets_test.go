package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinus(t *testing.T) {
	existing := New("archive/a.html", "archive/b.html", "robots.txt", "index.html")
	required := New("archive/a.html", "index.html")

	stale := existing.Minus(required).Minus(New("robots.txt"))

	assert.Equal(t, []string{"archive/b.html"}, Sorted(stale))
	assert.True(t, existing.Has("archive/b.html"), "Minus must not mutate the receiver")
}

func TestAddDelete(t *testing.T) {
	s := New[int]()
	s.Add(3)
	s.Add(1)
	s.Add(3)
	assert.Equal(t, []int{1, 3}, Sorted(s))
	s.Delete(3)
	assert.False(t, s.Has(3))
}
