package screens

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/easyeats/easyeats/internal/logging"
	"github.com/easyeats/easyeats/internal/spoonacular"
)

// Discover error banners.
const (
	MessageSearchFailed  = "Failed to fetch recipes. Please try again."
	MessageDetailsFailed = "Failed to load recipe details. Please try again."
)

// DiscoverState is a snapshot of the Discover screen. The list and the details
// panel carry independent loading and error flags.
type DiscoverState struct {
	Query   string
	Results []spoonacular.Summary
	Loading bool
	Error   string

	Selected       *spoonacular.Summary
	Details        *spoonacular.Details
	LoadingDetails bool
	DetailsError   string
}

// DiscoverScreen searches the third-party recipe catalogue.
type DiscoverScreen struct {
	search    spoonacular.Searcher
	favorites *FavoritesScreen

	mu         sync.Mutex
	state      DiscoverState
	searchSeq  uint64
	detailsSeq uint64
}

// NewDiscoverScreen builds the controller. favorites may be nil.
func NewDiscoverScreen(search spoonacular.Searcher, favorites *FavoritesScreen) *DiscoverScreen {
	return &DiscoverScreen{search: search, favorites: favorites}
}

// State returns a copy of the current state.
func (s *DiscoverScreen) State() DiscoverState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Results = slices.Clone(st.Results)
	return st
}

// Search runs a catalogue search. Blank queries never reach the network. A
// response that arrives after a newer search started is discarded.
func (s *DiscoverScreen) Search(ctx context.Context, query string) {
	if strings.TrimSpace(query) == "" {
		return
	}

	s.mu.Lock()
	s.searchSeq++
	seq := s.searchSeq
	s.state.Query = query
	s.state.Loading = true
	s.state.Error = ""
	s.mu.Unlock()

	results, err := s.search.Search(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.searchSeq {
		logging.FromContext(ctx).Debug("dropping stale search response", "query", query)
		return
	}
	s.state.Loading = false
	if err != nil {
		logging.FromContext(ctx).Error("recipe search failed", "query", query, "error", err)
		s.state.Error = MessageSearchFailed
		return
	}
	s.state.Results = results
}

// Select opens the details panel for recipe and loads its full information.
// Only the most recent selection may update the panel.
func (s *DiscoverScreen) Select(ctx context.Context, recipe spoonacular.Summary) {
	s.mu.Lock()
	s.detailsSeq++
	seq := s.detailsSeq
	selected := recipe
	s.state.Selected = &selected
	s.state.Details = nil
	s.state.LoadingDetails = true
	s.state.DetailsError = ""
	s.mu.Unlock()

	details, err := s.search.Details(ctx, recipe.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.detailsSeq {
		logging.FromContext(ctx).Debug("dropping stale details response", "recipeId", recipe.ID)
		return
	}
	s.state.LoadingDetails = false
	if err != nil {
		logging.FromContext(ctx).Error("recipe details failed", "recipeId", recipe.ID, "error", err)
		s.state.DetailsError = MessageDetailsFailed
		return
	}
	s.state.Details = &details
}

// CloseDetails dismisses the details panel. In-flight details responses are dropped.
func (s *DiscoverScreen) CloseDetails() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detailsSeq++
	s.state.Selected = nil
	s.state.Details = nil
	s.state.LoadingDetails = false
	s.state.DetailsError = ""
}

// ToggleFavorite adds or removes recipe from the favorites list and reports
// whether it is now a favorite.
func (s *DiscoverScreen) ToggleFavorite(recipe spoonacular.Summary) bool {
	if s.favorites == nil {
		return false
	}
	if s.favorites.Contains(recipe.ID) {
		s.favorites.Remove(recipe.ID)
		return false
	}
	s.favorites.Add(FavoriteFromSummary(recipe))
	return true
}
