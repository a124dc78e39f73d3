package marketplace

import (
	"testing"
	"time"

	"innerspark/client"

	"github.com/stretchr/testify/assert"
)

var base = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func catalog() []client.Course {
	return []client.Course{
		{ID: 1, Title: "Morning Yoga", Category: "Yoga", Price: 100, MentorName: "Sari", CreatedAt: base},
		{ID: 2, Title: "breathwork basics", Category: "Breath", Price: 50, Description: "Slow breathing", CreatedAt: base.Add(time.Hour)},
		{ID: 3, Title: "Evening Yoga", Category: "yoga", Price: 100, MentorName: "Budi", CreatedAt: base},
		{ID: 4, Title: "Mindful Eating", Category: "Nutrition", Price: 0, CreatedAt: base.Add(-time.Hour)},
	}
}

func ids(cs []client.Course) []uint {
	out := make([]uint, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestDefaultKeepsOrderForEqualDates(t *testing.T) {
	in := catalog()
	got := Apply(in, Query{Category: AllCategories, Sort: SortNewest})
	assert.Equal(t, []uint{2, 1, 3, 4}, ids(got))
	assert.Equal(t, []uint{1, 2, 3, 4}, ids(in))

	assert.Equal(t, ids(got), ids(Apply(in, Query{})))
	assert.Equal(t, ids(got), ids(Apply(in, Query{Sort: "bogus"})))
}

func TestCategoryIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, []uint{1, 3}, ids(Apply(catalog(), Query{Category: "YOGA", Sort: SortNewest})))
	assert.Empty(t, Apply(catalog(), Query{Category: "Dance"}))
}

func TestSearchCoversTitleDescriptionMentor(t *testing.T) {
	assert.Equal(t, []uint{2}, ids(Apply(catalog(), Query{Search: "SLOW"})))
	assert.Equal(t, []uint{3}, ids(Apply(catalog(), Query{Search: "budi"})))
	assert.Equal(t, []uint{1, 3}, ids(Apply(catalog(), Query{Search: " yoga "})))
}

func TestSorts(t *testing.T) {
	c := catalog()
	assert.Equal(t, []uint{4, 2, 1, 3}, ids(Apply(c, Query{Sort: SortPriceAsc})))
	assert.Equal(t, []uint{1, 3, 2, 4}, ids(Apply(c, Query{Sort: SortPriceDesc})))
	assert.Equal(t, []uint{2, 3, 4, 1}, ids(Apply(c, Query{Sort: SortTitleAsc})))
	assert.Equal(t, []uint{1, 4, 3, 2}, ids(Apply(c, Query{Sort: SortTitleDesc})))
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"All", "Yoga", "Breath", "Nutrition"}, Categories(catalog()))
}
