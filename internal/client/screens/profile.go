package screens

import (
	"context"

	"github.com/easyeats/easyeats/internal/client/authstate"
	"github.com/easyeats/easyeats/internal/client/navigation"
	"github.com/easyeats/easyeats/internal/client/session"
	"github.com/easyeats/easyeats/internal/logging"
)

// Profile settings menu entries.
const (
	ActionEditProfile   = "Edit Profile"
	ActionNewRecipe     = "New Recipe"
	ActionSavedRecipes  = "Saved Recipes"
	ActionFavorites     = "Favorites"
	ActionNotifications = "Notifications"
	ActionShareProfile  = "Share Profile"
	ActionHelp          = "Help & Support"
	ActionLogout        = "Logout"
)

// SettingsOptions lists the settings menu in display order.
func SettingsOptions() []string {
	return []string{
		ActionEditProfile,
		ActionNewRecipe,
		ActionSavedRecipes,
		ActionFavorites,
		ActionNotifications,
		ActionShareProfile,
		ActionHelp,
		ActionLogout,
	}
}

// ProfileView is what the profile header shows.
type ProfileView struct {
	Name         string
	Bio          string
	Location     string
	ProfileImage string
	RecipeCount  int
}

// RecipeCard is one entry of the user's recipe grid.
type RecipeCard struct {
	ID          string
	Title       string
	Image       string
	CookingTime int
	Difficulty  string
}

// ProfileScreen shows the signed-in user's profile and recipes.
type ProfileScreen struct {
	Provider session.Provider
	Profiles ProfileAPI
	Recipes  RecipeAPI
	Auth     authstate.Mutator
	Nav      Navigator
	BaseURL  string

	View    ProfileView
	Cards   []RecipeCard
	Loading bool
}

// Focus reloads the profile and recipes. It runs every time the screen is
// shown so edits made elsewhere are reflected. Failures are logged and leave
// the previous view in place.
func (s *ProfileScreen) Focus(ctx context.Context) {
	s.fetchProfile(ctx)
	s.fetchRecipes(ctx)
}

func (s *ProfileScreen) fetchProfile(ctx context.Context) {
	logger := logging.FromContext(ctx)

	user, ok := s.Provider.CurrentUser(ctx)
	if !ok {
		logger.Warn("profile focus without a signed-in user")
		return
	}

	s.Loading = true
	defer func() { s.Loading = false }()

	profile, err := s.Profiles.Get(ctx, user.UID)
	if err != nil {
		logger.Error("fetch profile failed", "error", err)
		return
	}

	name := profile.User.FirstName
	if name == "" {
		name = user.DisplayName
	}
	s.View = ProfileView{
		Name:         name,
		Bio:          profile.Bio,
		Location:     profile.Location,
		ProfileImage: ResolveImageURL(s.BaseURL, deref(profile.ProfilePicture)),
		RecipeCount:  profile.RecipeCount,
	}
}

func (s *ProfileScreen) fetchRecipes(ctx context.Context) {
	recipes, err := s.Recipes.Mine(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("fetch recipes failed", "error", err)
		return
	}

	cards := make([]RecipeCard, 0, len(recipes))
	for _, r := range recipes {
		cards = append(cards, RecipeCard{
			ID:          r.ID,
			Title:       r.Title,
			Image:       ResolveImageURL(s.BaseURL, deref(r.Image)),
			CookingTime: r.CookingTime,
			Difficulty:  r.Difficulty,
		})
	}
	s.Cards = cards
}

// Action runs a settings menu entry. Entries without a destination are no-ops.
// Logout ends the provider session before clearing the auth flag.
func (s *ProfileScreen) Action(ctx context.Context, label string) error {
	switch label {
	case ActionEditProfile:
		return s.Nav.Navigate(ctx, navigation.EditProfile)
	case ActionNewRecipe:
		return s.Nav.Navigate(ctx, navigation.AddRecipe)
	case ActionFavorites, ActionSavedRecipes:
		return s.Nav.Navigate(ctx, navigation.Favorites)
	case ActionLogout:
		if err := s.Provider.SignOut(ctx); err != nil {
			logging.FromContext(ctx).Warn("sign out failed", "error", err)
		}
		s.Auth.Logout()
	default:
		logging.FromContext(ctx).Debug("settings action has no destination", "action", label)
	}
	return nil
}
