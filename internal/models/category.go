package models

import (
	"fmt"
	"strings"
)

// Category is one of the fixed spending classifications
type Category string

const (
	Food           Category = "FOOD"
	Shopping       Category = "SHOPPING"
	Transportation Category = "TRANSPORTATION"
	Entertainment  Category = "ENTERTAINMENT"
	Sport          Category = "SPORT"
	Misc           Category = "MISC"
)

// categoryOrder is the declared order used by reports and prompts.
var categoryOrder = []Category{Food, Shopping, Transportation, Entertainment, Sport, Misc}

var categoryAliases = map[Category]string{
	Food:           "f",
	Shopping:       "sh",
	Transportation: "t",
	Entertainment:  "e",
	Sport:          "sp",
	Misc:           "m",
}

var (
	byAlias = make(map[string]Category, len(categoryAliases))
	byName  = make(map[string]Category, len(categoryOrder))
)

func init() {
	for _, c := range categoryOrder {
		byName[string(c)] = c
		alias := categoryAliases[c]
		if other, dup := byAlias[alias]; dup {
			panic(fmt.Sprintf("alias %q is shared by %s and %s", alias, other, c))
		}
		byAlias[alias] = c
	}
}

// Categories returns all categories in declared order
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Valid reports whether c belongs to the enumeration
func (c Category) Valid() bool {
	_, ok := byName[string(c)]
	return ok
}

// Title returns the display form, e.g. "Transportation"
func (c Category) Title() string {
	s := strings.ToLower(string(c))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Lower returns the lower-case form used in confirmations
func (c Category) Lower() string {
	return strings.ToLower(string(c))
}

// Alias returns the shorthand token for c
func (c Category) Alias() string {
	return categoryAliases[c]
}

// LookupAlias resolves a shorthand token, case-insensitively
func LookupAlias(token string) (Category, bool) {
	c, ok := byAlias[strings.ToLower(token)]
	return c, ok
}

// LookupName resolves a full category name, case-insensitively
func LookupName(token string) (Category, bool) {
	c, ok := byName[strings.ToUpper(token)]
	return c, ok
}

// ParseCategory resolves a token by alias first, then by full name
func ParseCategory(token string) (Category, bool) {
	if c, ok := LookupAlias(token); ok {
		return c, true
	}
	return LookupName(token)
}
