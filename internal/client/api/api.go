// Package api wraps each backend endpoint in one function. Calls return the
// decoded body and the httpclient error unmodified; callers classify failures.
package api

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/easyeats/easyeats/internal/client/httpclient"
)

// Sender is the subset of *httpclient.Client the facades use.
type Sender interface {
	Get(ctx context.Context, path string) (*httpclient.Response, error)
	Post(ctx context.Context, path string, body httpclient.Body) (*httpclient.Response, error)
	Put(ctx context.Context, path string, body httpclient.Body) (*httpclient.Response, error)
	Delete(ctx context.Context, path string) (*httpclient.Response, error)
}

// Auth groups the credential endpoints.
type Auth struct{ c Sender }

// NewAuth returns the auth facade.
func NewAuth(c Sender) *Auth { return &Auth{c: c} }

// Login posts the credentials as {username, password}.
func (a *Auth) Login(ctx context.Context, email, password string) (json.RawMessage, error) {
	resp, err := a.c.Post(ctx, "/api/users/login/", httpclient.JSON(map[string]string{
		"username": email,
		"password": password,
	}))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(resp.Body), nil
}

// Register posts a new-account payload.
func (a *Auth) Register(ctx context.Context, payload any) (json.RawMessage, error) {
	resp, err := a.c.Post(ctx, "/api/users/register/", httpclient.JSON(payload))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(resp.Body), nil
}

// ProfileUser mirrors the nested user object of a profile.
type ProfileUser struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Profile is the backend profile record.
type Profile struct {
	ID             string      `json:"id"`
	FirebaseUID    string      `json:"firebase_uid"`
	Email          string      `json:"email"`
	FirstName      string      `json:"first_name"`
	LastName       string      `json:"last_name"`
	Bio            string      `json:"bio"`
	Location       string      `json:"location"`
	ProfilePicture *string     `json:"profile_picture"`
	RecipeCount    int         `json:"recipe_count"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	User           ProfileUser `json:"user"`
}

// CreateProfileRequest is the create_profile body.
type CreateProfileRequest struct {
	FirebaseUID    string `json:"firebase_uid"`
	Email          string `json:"email"`
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	Bio            string `json:"bio,omitempty"`
	Location       string `json:"location,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// Profiles groups the profile endpoints.
type Profiles struct{ c Sender }

// NewProfiles returns the profile facade.
func NewProfiles(c Sender) *Profiles { return &Profiles{c: c} }

// Create posts a new profile.
func (p *Profiles) Create(ctx context.Context, req CreateProfileRequest) (Profile, error) {
	resp, err := p.c.Post(ctx, "/api/users/create_profile/", httpclient.JSON(req))
	if err != nil {
		return Profile{}, err
	}
	var out struct {
		Profile Profile `json:"profile"`
	}
	err = resp.Decode(&out)
	return out.Profile, err
}

// Get fetches the profile for uid. A missing profile is a 404 response error.
func (p *Profiles) Get(ctx context.Context, uid string) (Profile, error) {
	resp, err := p.c.Get(ctx, "/api/users/"+url.PathEscape(uid)+"/get_profile/")
	if err != nil {
		return Profile{}, err
	}
	var out Profile
	err = resp.Decode(&out)
	return out, err
}

// Update sends a multipart partial update.
func (p *Profiles) Update(ctx context.Context, uid string, form *httpclient.Multipart) (Profile, error) {
	resp, err := p.c.Put(ctx, "/api/users/"+url.PathEscape(uid)+"/update_profile/", form)
	if err != nil {
		return Profile{}, err
	}
	var out Profile
	err = resp.Decode(&out)
	return out, err
}

// Recipe is a backend recipe record.
type Recipe struct {
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

// Recipes groups the recipe endpoints.
type Recipes struct{ c Sender }

// NewRecipes returns the recipe facade.
func NewRecipes(c Sender) *Recipes { return &Recipes{c: c} }

// List fetches the caller's recipes.
func (r *Recipes) List(ctx context.Context) ([]Recipe, error) {
	return r.list(ctx, "/api/recipes/")
}

// Mine fetches the caller's recipes, newest first.
func (r *Recipes) Mine(ctx context.Context) ([]Recipe, error) {
	return r.list(ctx, "/api/recipes/my_recipes/")
}

// Create posts a multipart recipe.
func (r *Recipes) Create(ctx context.Context, form *httpclient.Multipart) (Recipe, error) {
	resp, err := r.c.Post(ctx, "/api/recipes/", form)
	if err != nil {
		return Recipe{}, err
	}
	var out Recipe
	err = resp.Decode(&out)
	return out, err
}

// Update replaces a recipe from a multipart form.
func (r *Recipes) Update(ctx context.Context, id string, form *httpclient.Multipart) (Recipe, error) {
	resp, err := r.c.Put(ctx, "/api/recipes/"+url.PathEscape(id)+"/", form)
	if err != nil {
		return Recipe{}, err
	}
	var out Recipe
	err = resp.Decode(&out)
	return out, err
}

// Delete removes a recipe.
func (r *Recipes) Delete(ctx context.Context, id string) error {
	_, err := r.c.Delete(ctx, "/api/recipes/"+url.PathEscape(id)+"/")
	return err
}

func (r *Recipes) list(ctx context.Context, path string) ([]Recipe, error) {
	resp, err := r.c.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	var out []Recipe
	err = resp.Decode(&out)
	return out, err
}
