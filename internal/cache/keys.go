package cache

import (
	"strconv"
	"strings"

	"github.com/cloudmart/catalog-service/internal/models"
)

const (
	ProductKeyPrefix  = "products"
	CategoryKeyPrefix = "categories"

	CategoryListKey    = "categories:list"
	ProductListPattern = "products:list:*"
	// ProductPattern covers single products and every listing.
	ProductPattern = "products:*"
)

func Key(prefix string, id string) string {
	return prefix + ":" + id
}

func ProductKey(id int64) string {
	return Key(ProductKeyPrefix, strconv.FormatInt(id, 10))
}

func CategoryKey(id int64) string {
	return Key(CategoryKeyPrefix, strconv.FormatInt(id, 10))
}

// ProductListKey renders products:list:{page}:{size}:{category}:{search}.
// The numeric fields never contain ':' and search is last, so two distinct
// queries cannot produce the same key.
func ProductListKey(q models.ProductQuery) string {
	category := ""
	if q.HasCategory() {
		category = strconv.FormatInt(*q.CategoryID, 10)
	}

	return strings.Join([]string{
		ProductKeyPrefix,
		"list",
		strconv.Itoa(q.Page),
		strconv.Itoa(q.Size),
		category,
		q.Search,
	}, ":")
}
