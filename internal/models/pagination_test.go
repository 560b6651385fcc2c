package models_test

import (
	"encoding/json"
	"testing"

	"github.com/cloudmart/catalog-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{25, 10, 3},
		{20, 10, 2},
		{0, 10, 0},
		{1, 100, 1},
		{101, 100, 2},
		{5, 0, 0},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, models.TotalPages(tc.total, tc.size), "total=%d size=%d", tc.total, tc.size)
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, models.Offset(1, 10))
	assert.Equal(t, 20, models.Offset(3, 10))
	assert.Equal(t, 0, models.Offset(0, 10), "pages below 1 clamp to the first page")
}

func TestNewProductPage(t *testing.T) {
	t.Run("Last partial page", func(t *testing.T) {
		items := make([]*models.Product, 5)
		for i := range items {
			items[i] = &models.Product{ID: int64(21 + i)}
		}

		page := models.NewProductPage(items, 25, models.ProductQuery{Page: 3, Size: 10})

		assert.Equal(t, 25, page.Total)
		assert.Equal(t, 3, page.Pages)
		assert.Equal(t, 3, page.Page)
		assert.Equal(t, 10, page.Size)
		assert.Len(t, page.Items, 5)
	})

	t.Run("Nil items render as an empty list", func(t *testing.T) {
		page := models.NewProductPage(nil, 0, models.ProductQuery{Page: 1, Size: 10})

		data, err := json.Marshal(page)
		require.NoError(t, err)
		assert.JSONEq(t, `{"items":[],"total":0,"page":1,"size":10,"pages":0}`, string(data))
	})
}

func TestProductQueryHasCategory(t *testing.T) {
	zero, seven := int64(0), int64(7)

	assert.False(t, models.ProductQuery{}.HasCategory())
	assert.False(t, models.ProductQuery{CategoryID: &zero}.HasCategory())
	assert.True(t, models.ProductQuery{CategoryID: &seven}.HasCategory())
}
