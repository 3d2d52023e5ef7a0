// Package search filters the catalog against a free-text query.
package search

import (
	"strings"
	"sync"

	"github.com/csheth/mindsnack/internal/catalog"
)

// Filter keeps, per category, the models whose title, name, tldr, content or
// space-joined tags contain query case-insensitively, and drops categories
// left empty. A blank query returns categories unchanged; the result must be
// treated as read-only either way.
func Filter(categories []catalog.Category, query string) []catalog.Category {
	if strings.TrimSpace(query) == "" {
		return categories
	}
	needle := strings.ToLower(query)
	result := make([]catalog.Category, 0, len(categories))
	for _, category := range categories {
		var kept []catalog.Model
		for _, model := range category.Models {
			if Matches(model, needle) {
				kept = append(kept, model)
			}
		}
		if len(kept) == 0 {
			continue
		}
		result = append(result, catalog.Category{
			Name:     category.Name,
			Models:   kept,
			Position: category.Position,
		})
	}
	return result
}

// Matches reports whether any searchable field contains the lowercase needle.
func Matches(model catalog.Model, needle string) bool {
	for _, field := range model.SearchFields() {
		if strings.Contains(field, needle) {
			return true
		}
	}
	return false
}

// Count is the number of models in a view.
func Count(categories []catalog.Category) int {
	total := 0
	for _, category := range categories {
		total += len(category.Models)
	}
	return total
}

// Memo caches the last Filter result for a dataset and query.
type Memo struct {
	mu      sync.Mutex
	dataset *catalog.Dataset
	query   string
	result  []catalog.Category
	valid   bool
	misses  int
}

// Filter returns the cached view when neither the dataset nor the query
// changed since the previous call.
func (m *Memo) Filter(ds *catalog.Dataset, query string) []catalog.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.valid && m.dataset == ds && m.query == query {
		return m.result
	}
	m.dataset = ds
	m.query = query
	m.result = Filter(ds.Categories(), query)
	m.valid = true
	m.misses++
	return m.result
}

// Misses is the number of times Filter had to recompute.
func (m *Memo) Misses() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.misses
}

// Restrict keeps only the category at source position. A negative position
// keeps everything.
func Restrict(categories []catalog.Category, position int) []catalog.Category {
	if position < 0 {
		return categories
	}
	for _, category := range categories {
		if category.Position == position {
			return []catalog.Category{category}
		}
	}
	return nil
}
