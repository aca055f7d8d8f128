package screens

import (
	"context"
	"strings"
	"sync"

	"github.com/easyeats/easyeats/internal/client/httpclient"
	"github.com/easyeats/easyeats/internal/logging"
)

// Recipe difficulty choices.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// AddRecipeScreen posts a new recipe.
type AddRecipeScreen struct {
	Recipes RecipeAPI
	Nav     Navigator
	Alerts  Alerter

	Title        string
	Description  string
	Ingredients  string
	Instructions string
	CookingTime  string
	Difficulty   string
	// Image holds JPEG bytes of the picked photo, if any.
	Image []byte

	mu      sync.Mutex
	loading bool
}

// NewAddRecipeScreen returns an empty form with difficulty preset to easy.
func NewAddRecipeScreen(recipes RecipeAPI, nav Navigator, alerts Alerter) *AddRecipeScreen {
	return &AddRecipeScreen{Recipes: recipes, Nav: nav, Alerts: alerts, Difficulty: DifficultyEasy}
}

// Loading reports whether a submit is in flight.
func (s *AddRecipeScreen) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Submit checks the five required fields and posts the recipe as multipart.
// It is ignored while a previous submit is in flight.
func (s *AddRecipeScreen) Submit(ctx context.Context) bool {
	if !s.presenceOK() {
		s.Alerts.Alert(ctx, "Error", "Please fill in all required fields")
		return false
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return false
	}
	s.loading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	difficulty := s.Difficulty
	if difficulty == "" {
		difficulty = DifficultyEasy
	}

	form := httpclient.NewMultipart().
		Field("title", s.Title).
		Field("description", s.Description).
		Field("ingredients", s.Ingredients).
		Field("instructions", s.Instructions).
		Field("cooking_time", strings.TrimSpace(s.CookingTime)).
		Field("difficulty", difficulty)
	if len(s.Image) > 0 {
		form.File("image", "recipe.jpg", "image/jpeg", s.Image)
	}

	recipe, err := s.Recipes.Create(ctx, form)
	if err != nil {
		logging.FromContext(ctx).Error("create recipe failed", "error", err)
		s.Alerts.Alert(ctx, "Error", "Failed to add recipe")
		return false
	}

	logging.FromContext(ctx).Info("recipe added", "recipeId", recipe.ID)
	s.Alerts.Alert(ctx, "Success", "Recipe added successfully!")
	s.Nav.GoBack(ctx)
	return true
}

func (s *AddRecipeScreen) presenceOK() bool {
	for _, v := range []string{s.Title, s.Description, s.Ingredients, s.Instructions, s.CookingTime} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}
