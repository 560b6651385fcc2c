package cache_test

import (
	"testing"

	"github.com/cloudmart/catalog-service/internal/cache"
	"github.com/cloudmart/catalog-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

func TestKey(t *testing.T) {
	assert.Equal(t, "products:42", cache.Key(cache.ProductKeyPrefix, "42"))
	assert.Equal(t, "prefix:", cache.Key("prefix", ""))
}

func TestEntityKeys(t *testing.T) {
	assert.Equal(t, "products:42", cache.ProductKey(42))
	assert.Equal(t, "categories:3", cache.CategoryKey(3))
	assert.Equal(t, "categories:list", cache.CategoryListKey)
}

func TestProductListKey(t *testing.T) {
	tests := []struct {
		name     string
		query    models.ProductQuery
		expected string
	}{
		{"No filters", models.ProductQuery{Page: 1, Size: 10}, "products:list:1:10::"},
		{"Category only", models.ProductQuery{Page: 2, Size: 20, CategoryID: int64Ptr(5)}, "products:list:2:20:5:"},
		{"Search only", models.ProductQuery{Page: 1, Size: 10, Search: "lamp"}, "products:list:1:10::lamp"},
		{"Both filters", models.ProductQuery{Page: 3, Size: 10, CategoryID: int64Ptr(5), Search: "desk lamp"}, "products:list:3:10:5:desk lamp"},
		{"Non-positive category is no filter", models.ProductQuery{Page: 1, Size: 10, CategoryID: int64Ptr(0)}, "products:list:1:10::"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, cache.ProductListKey(tc.query))
		})
	}
}

func TestProductListKeyDeterministic(t *testing.T) {
	a := models.ProductQuery{Page: 1, Size: 10, CategoryID: int64Ptr(5), Search: "lamp"}
	b := models.ProductQuery{Page: 1, Size: 10, CategoryID: int64Ptr(5), Search: "lamp"}

	assert.Equal(t, cache.ProductListKey(a), cache.ProductListKey(b), "pointer identity must not affect the key")
}

func TestProductListKeyNoCollisions(t *testing.T) {
	queries := []models.ProductQuery{
		{Page: 1, Size: 10},
		{Page: 1, Size: 100},
		{Page: 11, Size: 0},
		{Page: 1, Size: 10, CategoryID: int64Ptr(1)},
		{Page: 1, Size: 10, CategoryID: int64Ptr(11)},
		{Page: 1, Size: 101},
		{Page: 1, Size: 10, Search: "1"},
		{Page: 1, Size: 10, Search: ":1"},
		{Page: 1, Size: 10, CategoryID: int64Ptr(1), Search: "a"},
		{Page: 1, Size: 10, Search: "1:a"},
		{Page: 1, Size: 10, Search: "a:b"},
	}

	seen := make(map[string]models.ProductQuery)
	for _, q := range queries {
		key := cache.ProductListKey(q)
		if prev, dup := seen[key]; dup {
			t.Fatalf("queries %+v and %+v share key %q", prev, q, key)
		}
		seen[key] = q
	}
}
