package model

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrUnknownCategory = errors.New("unknown category")

// Category is a jewelry namespace. It is both a URL segment and the name
// of the directory (or key prefix) its images are stored under.
type Category string

const (
	CategoryRings         Category = "rings"
	CategoryNecklace      Category = "necklace"
	CategoryEarrings      Category = "earrings"
	CategoryCustomDesigns Category = "custom_designs"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryRings,
	CategoryNecklace,
	CategoryEarrings,
	CategoryCustomDesigns,
}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", ErrUnknownCategory
}

// Label returns the display name, e.g. "Custom Designs".
func (c Category) Label() string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(c), "_", " "))
}

func (c Category) String() string {
	return string(c)
}
