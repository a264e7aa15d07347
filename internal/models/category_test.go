package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"f", Food, true},
		{"F", Food, true},
		{"sh", Shopping, true},
		{"SH", Shopping, true},
		{"t", Transportation, true},
		{"e", Entertainment, true},
		{"sp", Sport, true},
		{"m", Misc, true},
		{"food", Food, true},
		{"Transportation", Transportation, true},
		{"misc", Misc, true},
		{"x", "", false},
		{"foods", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseCategory(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestCategoriesDeclaredOrder(t *testing.T) {
	assert.Equal(t,
		[]Category{Food, Shopping, Transportation, Entertainment, Sport, Misc},
		Categories(),
	)

	// callers must not be able to reorder the enumeration
	cats := Categories()
	cats[0] = Misc
	assert.Equal(t, Food, Categories()[0])
}

func TestCategoryForms(t *testing.T) {
	assert.Equal(t, "Transportation", Transportation.Title())
	assert.Equal(t, "food", Food.Lower())
	assert.Equal(t, "sp", Sport.Alias())
	assert.True(t, Misc.Valid())
	assert.False(t, Category("GROCERIES").Valid())
}

func TestCategoryOptions(t *testing.T) {
	opts := CategoryOptions([]Category{Food, Sport})
	assert.Equal(t, []CategoryOption{
		{Label: "Food (f)", Value: "FOOD"},
		{Label: "Sport (sp)", Value: "SPORT"},
	}, opts)
}
