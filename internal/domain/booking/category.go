package booking

import (
	"fmt"
	"strings"
)

// Category classifies a leave booking and determines its maximum span.
type Category string

const (
	CategoryDomestic      Category = "domestic"
	CategoryInternational Category = "international"
)

// maxDays defines the longest inclusive span allowed per category.
var maxDays = map[Category]int{
	CategoryDomestic:      7,
	CategoryInternational: 9,
}

var labels = map[Category]string{
	CategoryDomestic:      "Domestic",
	CategoryInternational: "International",
}

// ParseCategory converts user input into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("invalid category %q (expected domestic or international)", s)
	}
	return c, nil
}

// IsValid returns true if the category is recognised.
func (c Category) IsValid() bool {
	_, ok := maxDays[c]
	return ok
}

// MaxDays returns the longest span a booking of this category may cover.
func (c Category) MaxDays() int { return maxDays[c] }

// Label returns the human-readable category name.
func (c Category) Label() string {
	if l, ok := labels[c]; ok {
		return l
	}
	return string(c)
}

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{CategoryDomestic, CategoryInternational}
}
