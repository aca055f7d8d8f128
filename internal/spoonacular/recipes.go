package spoonacular

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable indicates the recipe search API is not configured.
	ErrUnavailable = errors.New("recipe search unavailable")
	// ErrEmptyQuery is returned for blank search queries.
	ErrEmptyQuery = errors.New("search query is empty")
	// ErrRequestFailed wraps non-2xx answers from the recipe search API.
	ErrRequestFailed = errors.New("recipe search request failed")
)

// defaultRating is shown for recipes the API has not scored.
const defaultRating = 4.5

// Summary is one entry of a complex search result.
type Summary struct {
	ID               int
	Title            string
	Image            string
	ReadyInMinutes   int
	Vegetarian       bool
	SpoonacularScore float64
	Calories         float64
}

// Rating converts the 0-100 score to a five star scale.
func (s Summary) Rating() float64 {
	if s.SpoonacularScore <= 0 {
		return defaultRating
	}
	return s.SpoonacularScore / 20
}

// Nutrient is a single nutrition fact.
type Nutrient struct {
	Name   string
	Amount float64
	Unit   string
}

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	Name   string
	Amount float64
	Unit   string
}

// Details is the full information payload for a recipe.
type Details struct {
	ID             int
	Title          string
	Image          string
	ReadyInMinutes int
	Servings       int
	Vegetarian     bool
	Vegan          bool
	GlutenFree     bool
	Calories       float64
	Ingredients    []Ingredient
	Steps          []string
	Nutrients      []Nutrient
}

// Searcher looks up recipes in the third-party catalogue.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Summary, error)
	Details(ctx context.Context, id int) (Details, error)
}
