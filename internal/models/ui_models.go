package models

import "fmt"

// CategoryOption is one entry of the "choose a category" menu shown by a transport
type CategoryOption struct {
	Label string
	Value string
}

// CategoryOptions builds menu entries for the given categories
func CategoryOptions(categories []Category) []CategoryOption {
	options := make([]CategoryOption, 0, len(categories))
	for _, c := range categories {
		options = append(options, CategoryOption{
			Label: fmt.Sprintf("%s (%s)", c.Title(), c.Alias()),
			Value: string(c),
		})
	}
	return options
}
