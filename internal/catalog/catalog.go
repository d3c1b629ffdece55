// Package catalog holds the read-only product reference data offered by the shop.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/m3rciful/grocerybot/internal/actions"
)

var (
	// ErrEmptyCatalog is returned when a catalog has no categories or items.
	ErrEmptyCatalog = errors.New("catalog: no items")
	// ErrInvalidItem is returned for items with a blank name, blank unit or negative price.
	ErrInvalidItem = errors.New("catalog: invalid item")
	// ErrDuplicate is returned when a category or an item inside a category repeats.
	ErrDuplicate = errors.New("catalog: duplicate entry")
)

// Item is a single product offered in a category.
type Item struct {
	Category string
	Name     string
	Price    decimal.Decimal
	Unit     string
}

// Category groups items under a display name.
type Category struct {
	Name  string
	Items []Item
}

// Catalog maps category -> item -> price and unit. It is immutable after construction.
type Catalog struct {
	order   []string
	byKey   map[string]Category
	byPlain map[string]string
}

// New validates the categories and builds a Catalog preserving their order.
func New(categories []Category) (*Catalog, error) {
	c := &Catalog{
		byKey:   make(map[string]Category, len(categories)),
		byPlain: make(map[string]string, len(categories)),
	}
	total := 0
	for _, cat := range categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: blank category name", ErrInvalidItem)
		}
		if !actions.Fits(actions.Category(name)) {
			return nil, fmt.Errorf("%w: category %q is too long for a button payload", ErrInvalidItem, name)
		}
		key := normalize(name)
		if _, exists := c.byKey[key]; exists {
			return nil, fmt.Errorf("%w: category %q", ErrDuplicate, name)
		}

		seen := make(map[string]struct{}, len(cat.Items))
		items := make([]Item, 0, len(cat.Items))
		for _, it := range cat.Items {
			it.Name = strings.TrimSpace(it.Name)
			it.Unit = strings.TrimSpace(it.Unit)
			if it.Name == "" || it.Unit == "" || it.Price.IsNegative() {
				return nil, fmt.Errorf("%w: %s/%q", ErrInvalidItem, name, it.Name)
			}
			if strings.ContainsAny(it.Name, "/|") {
				return nil, fmt.Errorf("%w: %s/%q contains a reserved character", ErrInvalidItem, name, it.Name)
			}
			if !actions.Fits(actions.Add(name, it.Name)) {
				return nil, fmt.Errorf("%w: %s/%q is too long for a button payload", ErrInvalidItem, name, it.Name)
			}
			itemKey := normalize(it.Name)
			if _, dup := seen[itemKey]; dup {
				return nil, fmt.Errorf("%w: item %s/%q", ErrDuplicate, name, it.Name)
			}
			seen[itemKey] = struct{}{}
			it.Category = name
			it.Price = it.Price.Round(2)
			items = append(items, it)
		}
		total += len(items)
		c.order = append(c.order, name)
		c.byKey[key] = Category{Name: name, Items: items}
		if p := plain(name); p != "" && p != key {
			c.byPlain[p] = key
		}
	}
	if total == 0 {
		return nil, ErrEmptyCatalog
	}
	return c, nil
}

// Categories returns category names in display order.
func (c *Catalog) Categories() []string {
	return append([]string(nil), c.order...)
}

// Category resolves a category by case-insensitive name. A name typed without
// its emoji prefix ("fruits" for "🍎 Fruits") matches as well.
func (c *Catalog) Category(name string) (Category, bool) {
	cat, ok := c.resolve(name)
	if !ok {
		return Category{}, false
	}
	cat.Items = append([]Item(nil), cat.Items...)
	return cat, true
}

// Lookup finds an item by category and item name, both case-insensitive.
func (c *Catalog) Lookup(category, name string) (Item, bool) {
	cat, ok := c.resolve(category)
	if !ok {
		return Item{}, false
	}
	key := normalize(name)
	for _, it := range cat.Items {
		if normalize(it.Name) == key {
			return it, true
		}
	}
	return Item{}, false
}

func (c *Catalog) resolve(name string) (Category, bool) {
	if cat, ok := c.byKey[normalize(name)]; ok {
		return cat, true
	}
	if key, ok := c.byPlain[plain(name)]; ok {
		return c.byKey[key], true
	}
	return Category{}, false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// plain drops leading symbols such as emoji.
func plain(s string) string {
	return normalize(strings.TrimLeftFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}))
}

type fileItem struct {
	Name  string `yaml:"name"`
	Price string `yaml:"price"`
	Unit  string `yaml:"unit"`
}

type fileCategory struct {
	Name  string     `yaml:"name"`
	Items []fileItem `yaml:"items"`
}

type fileCatalog struct {
	Categories []fileCategory `yaml:"categories"`
}

// Load reads a catalog definition from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog definition.
func Parse(data []byte) (*Catalog, error) {
	var raw fileCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("catalog: parse yaml: %w", err)
	}
	categories := make([]Category, 0, len(raw.Categories))
	for _, fc := range raw.Categories {
		cat := Category{Name: fc.Name}
		for _, fi := range fc.Items {
			price, err := decimal.NewFromString(strings.TrimSpace(fi.Price))
			if err != nil {
				return nil, fmt.Errorf("%w: %s/%q price %q", ErrInvalidItem, fc.Name, fi.Name, fi.Price)
			}
			cat.Items = append(cat.Items, Item{Name: fi.Name, Price: price, Unit: fi.Unit})
		}
		categories = append(categories, cat)
	}
	return New(categories)
}

// Default returns the built-in FreshMart catalog.
func Default() *Catalog {
	p := decimal.RequireFromString
	c, err := New([]Category{
		{Name: "🍎 Fruits", Items: []Item{
			{Name: "Apples", Price: p("3.99"), Unit: "kg"},
			{Name: "Bananas", Price: p("1.49"), Unit: "bunch"},
			{Name: "Oranges", Price: p("4.49"), Unit: "kg"},
			{Name: "Grapes", Price: p("5.99"), Unit: "kg"},
		}},
		{Name: "🥦 Vegetables", Items: []Item{
			{Name: "Tomatoes", Price: p("2.99"), Unit: "kg"},
			{Name: "Potatoes", Price: p("1.99"), Unit: "kg"},
			{Name: "Carrots", Price: p("1.49"), Unit: "kg"},
			{Name: "Broccoli", Price: p("2.49"), Unit: "head"},
		}},
		{Name: "🥛 Dairy", Items: []Item{
			{Name: "Milk", Price: p("2.99"), Unit: "liter"},
			{Name: "Eggs", Price: p("3.49"), Unit: "dozen"},
			{Name: "Cheese", Price: p("6.99"), Unit: "pack"},
			{Name: "Yogurt", Price: p("1.29"), Unit: "cup"},
		}},
		{Name: "🍞 Bakery", Items: []Item{
			{Name: "Bread", Price: p("2.49"), Unit: "loaf"},
			{Name: "Croissants", Price: p("4.99"), Unit: "pack"},
			{Name: "Bagels", Price: p("3.99"), Unit: "pack"},
		}},
	})
	if err != nil {
		panic(fmt.Sprintf("catalog: built-in catalog is invalid: %v", err))
	}
	return c
}
