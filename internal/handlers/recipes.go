package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/easyeats/easyeats/internal/identity"
	"github.com/easyeats/easyeats/internal/logging"
	"github.com/easyeats/easyeats/internal/models"
	"github.com/easyeats/easyeats/internal/repositories"
	"github.com/easyeats/easyeats/internal/storage"
)

// RecipeHandler implements the /api/recipes/ endpoints. Every operation is scoped to
// the authenticated caller's own recipes.
type RecipeHandler struct {
	Recipes RecipeStore
	Images  ImageStorage
	NowFunc func() time.Time
}

// Collection handles GET and POST /api/recipes/.
func (h RecipeHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Mine handles GET /api/recipes/my_recipes/.
func (h RecipeHandler) Mine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.list(w, r)
}

// Item handles GET, PUT and DELETE /api/recipes/{id}/.
func (h RecipeHandler) Item(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.retrieve(w, r)
	case http.MethodPut:
		h.update(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h RecipeHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	claims, ok := h.caller(w, r)
	if !ok {
		return
	}

	recipes, err := h.Recipes.ListByOwner(ctx, claims.UID)
	if err != nil {
		logger.Error("failed to list recipes", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load recipes")
		return
	}

	resp := make([]recipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		resp = append(resp, newRecipeResponse(recipe))
	}
	respondJSON(ctx, w, http.StatusOK, resp)
}

func (h RecipeHandler) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	claims, ok := h.caller(w, r)
	if !ok {
		return
	}

	if err := parseForm(w, r); err != nil {
		logger.Warn("invalid recipe payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid form body")
		return
	}

	now := h.now()
	recipe := models.Recipe{
		ID:        uuid.NewString(),
		OwnerUID:  claims.UID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if msg := bindRecipe(r, &recipe); msg != "" {
		respondError(ctx, w, http.StatusBadRequest, msg)
		return
	}

	uploaded, ok := h.storeImage(w, r, &recipe)
	if !ok {
		return
	}

	if err := h.Recipes.Create(ctx, recipe); err != nil {
		discardImage(ctx, h.Images, uploaded)
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusBadRequest, "create a profile before adding recipes")
			return
		}
		logger.Error("failed to create recipe", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create recipe")
		return
	}

	logger.Info("recipe created", "recipeId", recipe.ID)
	respondJSON(ctx, w, http.StatusCreated, newRecipeResponse(recipe))
}

func (h RecipeHandler) retrieve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recipe, ok := h.load(w, r)
	if !ok {
		return
	}
	respondJSON(ctx, w, http.StatusOK, newRecipeResponse(recipe))
}

func (h RecipeHandler) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if err := parseForm(w, r); err != nil {
		logger.Warn("invalid recipe payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid form body")
		return
	}

	recipe, ok := h.load(w, r)
	if !ok {
		return
	}

	if msg := bindRecipe(r, &recipe); msg != "" {
		respondError(ctx, w, http.StatusBadRequest, msg)
		return
	}
	uploaded, ok := h.storeImage(w, r, &recipe)
	if !ok {
		return
	}

	recipe.UpdatedAt = h.now()
	if err := h.Recipes.Update(ctx, recipe); err != nil {
		discardImage(ctx, h.Images, uploaded)
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "Not found.")
			return
		}
		logger.Error("failed to update recipe", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to update recipe")
		return
	}

	respondJSON(ctx, w, http.StatusOK, newRecipeResponse(recipe))
}

func (h RecipeHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	claims, ok := h.caller(w, r)
	if !ok {
		return
	}

	if err := h.Recipes.Delete(ctx, claims.UID, r.PathValue("id")); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "Not found.")
			return
		}
		logger.Error("failed to delete recipe", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to delete recipe")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// caller resolves the authenticated user, writing an error response when it cannot.
func (h RecipeHandler) caller(w http.ResponseWriter, r *http.Request) (identity.Claims, bool) {
	ctx := r.Context()
	if h.Recipes == nil {
		logging.FromContext(ctx).Error("recipe store unavailable")
		respondError(ctx, w, http.StatusInternalServerError, "recipe services unavailable")
		return identity.Claims{}, false
	}
	claims, ok := identity.ClaimsFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication credentials were not provided")
		return identity.Claims{}, false
	}
	return claims, true
}

func (h RecipeHandler) load(w http.ResponseWriter, r *http.Request) (models.Recipe, bool) {
	ctx := r.Context()

	claims, ok := h.caller(w, r)
	if !ok {
		return models.Recipe{}, false
	}

	recipe, err := h.Recipes.Find(ctx, claims.UID, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "Not found.")
			return models.Recipe{}, false
		}
		logging.FromContext(ctx).Error("failed to load recipe", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load recipe")
		return models.Recipe{}, false
	}
	return recipe, true
}

// storeImage uploads the optional image field and returns the new location, or ""
// when the form carried no image.
func (h RecipeHandler) storeImage(w http.ResponseWriter, r *http.Request, recipe *models.Recipe) (string, bool) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	img, closeImg, err := formImage(r, "image")
	if err != nil {
		logger.Warn("invalid recipe image upload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid image upload")
		return "", false
	}
	if img == nil {
		return "", true
	}
	defer closeImg()

	if h.Images == nil {
		respondError(ctx, w, http.StatusServiceUnavailable, "image storage unavailable")
		return "", false
	}

	location, err := h.Images.SaveImage(ctx, storage.RecipeImages, recipe.OwnerUID, *img)
	if err != nil {
		logger.Error("failed to store recipe image", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store recipe image")
		return "", false
	}
	recipe.Image = location
	return location, true
}

// bindRecipe copies and validates the recipe form fields into recipe, returning a
// client-facing message on the first violation.
func bindRecipe(r *http.Request, recipe *models.Recipe) string {
	text := func(key string) string {
		v, _ := formValue(r, key)
		return strings.TrimSpace(v)
	}

	recipe.Title = text("title")
	recipe.Description = text("description")
	recipe.Ingredients = text("ingredients")
	recipe.Instructions = text("instructions")

	switch {
	case recipe.Title == "":
		return "title is required"
	case utf8.RuneCountInString(recipe.Title) > models.MaxRecipeTitleLength:
		return "title must be at most 200 characters"
	case recipe.Description == "":
		return "description is required"
	case recipe.Ingredients == "":
		return "ingredients is required"
	case recipe.Instructions == "":
		return "instructions is required"
	}

	minutes, err := strconv.Atoi(text("cooking_time"))
	if err != nil || minutes <= 0 {
		return "cooking_time must be a positive integer"
	}
	recipe.CookingTime = minutes

	difficulty := models.Difficulty(strings.ToLower(text("difficulty")))
	if !difficulty.Valid() {
		return "difficulty must be one of easy, medium, hard"
	}
	recipe.Difficulty = difficulty

	return ""
}

func (h RecipeHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type recipeResponse struct {
	ID           string    `json:"id"`
	OwnerUID     string    `json:"owner_uid"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Ingredients  string    `json:"ingredients"`
	Instructions string    `json:"instructions"`
	CookingTime  int       `json:"cooking_time"`
	Difficulty   string    `json:"difficulty"`
	Image        *string   `json:"image"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newRecipeResponse(r models.Recipe) recipeResponse {
	resp := recipeResponse{
		ID:           r.ID,
		OwnerUID:     r.OwnerUID,
		Title:        r.Title,
		Description:  r.Description,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
		CookingTime:  r.CookingTime,
		Difficulty:   string(r.Difficulty),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.Image != "" {
		image := r.Image
		resp.Image = &image
	}
	return resp
}
