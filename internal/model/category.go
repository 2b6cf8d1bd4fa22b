package model

// Category groups tasks for display and recurrence suggestions
type Category struct {
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	IsDeletable bool   `json:"is_deletable"`
}

// DefaultCategoryName is the non-deletable category every orphaned task
// falls back to.
const DefaultCategoryName = "Maison"

// DefaultCategories are seeded on first launch
var DefaultCategories = []Category{
	{Name: "Maison", Icon: "🏠", IsDeletable: false},
	{Name: "Voiture", Icon: "🚗", IsDeletable: true},
	{Name: "Scooter", Icon: "🛵", IsDeletable: true},
	{Name: "Autre", Icon: "⚙️", IsDeletable: true},
}

// CategoryOrDefault returns the seeded category matching name, or the
// catch-all "Autre" category when the name is unknown.
func CategoryOrDefault(name string) Category {
	for _, c := range DefaultCategories {
		if c.Name == name {
			return c
		}
	}
	return DefaultCategories[len(DefaultCategories)-1]
}

// SuggestRecurrence returns a sensible default recurrence (in days) for a
// new task in the given category.
func SuggestRecurrence(category string) int {
	switch category {
	case "Maison":
		return 90
	case "Voiture", "Scooter":
		return 30
	default:
		return 60
	}
}
