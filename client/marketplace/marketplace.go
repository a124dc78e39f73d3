// Package marketplace filters and sorts the course catalog on the client.
package marketplace

import (
	"sort"
	"strings"

	"innerspark/client"
)

const (
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortTitleAsc  = "title-asc"
	SortTitleDesc = "title-desc"
	SortNewest    = "newest"

	// AllCategories disables the category filter.
	AllCategories = "All"
)

type Query struct {
	Category string
	Search   string
	Sort     string
}

// Apply returns the courses matching q in q.Sort order. The input slice is not modified and
// ties keep their original relative order. Unknown sort keys fall back to newest.
func Apply(courses []client.Course, q Query) []client.Course {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]client.Course, 0, len(courses))
	for _, c := range courses {
		if matchesCategory(c, q.Category) && matchesSearch(c, search) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, less(out, q.Sort))
	return out
}

func matchesCategory(c client.Course, category string) bool {
	if category == "" || strings.EqualFold(category, AllCategories) {
		return true
	}
	return strings.EqualFold(c.Category, category)
}

func matchesSearch(c client.Course, search string) bool {
	if search == "" {
		return true
	}
	for _, field := range []string{c.Title, c.Description, c.MentorName} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func less(out []client.Course, key string) func(i, j int) bool {
	switch key {
	case SortPriceAsc:
		return func(i, j int) bool { return out[i].Price < out[j].Price }
	case SortPriceDesc:
		return func(i, j int) bool { return out[i].Price > out[j].Price }
	case SortTitleAsc:
		return func(i, j int) bool { return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title) }
	case SortTitleDesc:
		return func(i, j int) bool { return strings.ToLower(out[i].Title) > strings.ToLower(out[j].Title) }
	default:
		return func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) }
	}
}

// Categories lists the distinct categories in first-seen order, with AllCategories first.
func Categories(courses []client.Course) []string {
	seen := map[string]bool{}
	out := []string{AllCategories}
	for _, c := range courses {
		key := strings.ToLower(c.Category)
		if c.Category == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c.Category)
	}
	return out
}
