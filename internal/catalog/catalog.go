// Package catalog holds the static in-memory product list.
package catalog

import (
	"fmt"
)

// Product is a storefront item. Prices are in rubles.
type Product struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	NameEn        string   `json:"nameEn"`
	Price         float64  `json:"price"`
	OriginalPrice float64  `json:"originalPrice,omitempty"`
	Discount      int      `json:"discount,omitempty"`
	Category      string   `json:"category"`
	Images        []string `json:"images,omitempty"`
}

// Catalog provides lookup over the product list.
type Catalog struct {
	products []Product
	byID     map[int]Product
}

// New creates a catalog over the given products.
func New(products []Product) *Catalog {
	byID := make(map[int]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &Catalog{products: products, byID: byID}
}

// Default returns the catalog with the shop's current product list.
func Default() *Catalog {
	return New(defaultProducts)
}

// All returns all products in catalog order.
func (c *Catalog) All() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Get returns a product by ID.
func (c *Catalog) Get(id int) (Product, error) {
	if p, ok := c.byID[id]; ok {
		return p, nil
	}
	return Product{}, fmt.Errorf("product %d not found", id)
}

var defaultProducts = []Product{
	{
		ID:            1,
		Name:          "Стикерпак «Растения»",
		NameEn:        "Sticker pack «Plants»",
		Price:         250,
		OriginalPrice: 325,
		Discount:      30,
		Category:      "stickers",
	},
	{
		ID:            2,
		Name:          "Открытка «Заснеженный дворец»",
		NameEn:        "Postcard «Snowy Palace»",
		Price:         190,
		OriginalPrice: 266,
		Discount:      40,
		Category:      "postcards",
	},
}
