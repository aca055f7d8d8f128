package screens

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyeats/easyeats/internal/client/api"
	"github.com/easyeats/easyeats/internal/client/httpclient"
	"github.com/easyeats/easyeats/internal/client/navigation"
	"github.com/easyeats/easyeats/internal/spoonacular"
)

func TestAddRecipePostsMultipartWithoutImage(t *testing.T) {
	var (
		mu       sync.Mutex
		requests []string
		fields   map[string]string
		hasImage bool
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mu.Lock()
		requests = append(requests, r.Method+" "+r.URL.Path)
		fields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		_, hasImage = r.MultipartForm.File["image"]
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"r1","title":"Soup"}`))
	}))
	defer srv.Close()

	nav := &recordingNav{}
	alerts := &recordingAlerter{}
	screen := NewAddRecipeScreen(api.NewRecipes(httpclient.New(srv.URL)), nav, alerts)
	screen.Title = "Soup"
	screen.Description = "Warm"
	screen.Ingredients = "water, salt"
	screen.Instructions = "Boil."
	screen.CookingTime = "20"

	require.True(t, screen.Submit(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"POST /api/recipes/"}, requests)
	assert.Equal(t, map[string]string{
		"title":        "Soup",
		"description":  "Warm",
		"ingredients":  "water, salt",
		"instructions": "Boil.",
		"cooking_time": "20",
		"difficulty":   "easy",
	}, fields)
	assert.False(t, hasImage)

	assert.Equal(t, 1, nav.backs)
	assert.Equal(t, alert{"Success", "Recipe added successfully!"}, alerts.last())
}

func TestAddRecipeRequiresAllFields(t *testing.T) {
	recipes := &countingRecipes{}
	alerts := &recordingAlerter{}
	nav := &recordingNav{}
	screen := NewAddRecipeScreen(recipes, nav, alerts)
	screen.Title = "Soup"
	screen.Description = "Warm"
	screen.Ingredients = "water"
	screen.Instructions = "  "
	screen.CookingTime = "20"

	assert.False(t, screen.Submit(context.Background()))
	assert.Zero(t, recipes.creates)
	assert.Zero(t, nav.backs)
	assert.Equal(t, alert{"Error", "Please fill in all required fields"}, alerts.last())
}

func TestAddRecipeFailureAndImage(t *testing.T) {
	recipes := &countingRecipes{err: errors.New("boom")}
	alerts := &recordingAlerter{}
	nav := &recordingNav{}
	screen := NewAddRecipeScreen(recipes, nav, alerts)
	screen.Title, screen.Description, screen.Ingredients, screen.Instructions, screen.CookingTime = "a", "b", "c", "d", "5"
	screen.Difficulty = DifficultyHard
	screen.Image = []byte("jpeg")

	assert.False(t, screen.Submit(context.Background()))
	assert.Equal(t, alert{"Error", "Failed to add recipe"}, alerts.last())
	assert.Zero(t, nav.backs)

	require.NotNil(t, recipes.form)
	assert.True(t, recipes.form.HasFile("image"))
	difficulty, _ := recipes.form.Value("difficulty")
	assert.Equal(t, DifficultyHard, difficulty)
}

func TestAddRecipeIgnoresSubmitWhileLoading(t *testing.T) {
	recipes := &countingRecipes{gate: make(chan struct{})}
	screen := NewAddRecipeScreen(recipes, &recordingNav{}, &recordingAlerter{})
	screen.Title, screen.Description, screen.Ingredients, screen.Instructions, screen.CookingTime = "a", "b", "c", "d", "5"

	done := make(chan bool, 1)
	go func() { done <- screen.Submit(context.Background()) }()
	require.Eventually(t, screen.Loading, time.Second, time.Millisecond)

	assert.False(t, screen.Submit(context.Background()))
	close(recipes.gate)
	assert.True(t, <-done)
	assert.Equal(t, 1, recipes.creates)
}

type countingRecipes struct {
	mu      sync.Mutex
	creates int
	form    *httpclient.Multipart
	err     error
	gate    chan struct{}
}

func (r *countingRecipes) Mine(context.Context) ([]api.Recipe, error) { return nil, nil }

func (r *countingRecipes) Create(_ context.Context, form *httpclient.Multipart) (api.Recipe, error) {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	r.form = form
	return api.Recipe{ID: "r1"}, r.err
}

func TestDiscoverEmptyQueryMakesNoRequest(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))
	defer srv.Close()

	screen := NewDiscoverScreen(spoonacular.NewClient(srv.URL, "key", time.Second), nil)
	screen.Search(context.Background(), "")
	screen.Search(context.Background(), "   \t")

	assert.Zero(t, hits)
	assert.Empty(t, screen.State().Results)
}

func TestDiscoverSearchIssuesOneComplexSearch(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
		query string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		query = r.URL.Query().Get("query")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"id":1,"title":"Pasta Primavera"},{"id":2,"title":"Pasta Carbonara"}],"totalResults":2}`))
	}))
	defer srv.Close()

	screen := NewDiscoverScreen(spoonacular.NewClient(srv.URL, "key", time.Second), nil)
	screen.Search(context.Background(), "pasta")

	mu.Lock()
	assert.Equal(t, []string{"GET /recipes/complexSearch"}, paths)
	assert.Equal(t, "pasta", query)
	mu.Unlock()

	st := screen.State()
	require.Len(t, st.Results, 2)
	assert.Equal(t, "Pasta Primavera", st.Results[0].Title)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)
}

func TestDiscoverSearchFailure(t *testing.T) {
	screen := NewDiscoverScreen(&stubSearcher{err: errors.New("down")}, nil)
	screen.Search(context.Background(), "soup")

	st := screen.State()
	assert.Equal(t, MessageSearchFailed, st.Error)
	assert.False(t, st.Loading)

	screen.Select(context.Background(), spoonacular.Summary{ID: 7})
	st = screen.State()
	assert.Equal(t, MessageDetailsFailed, st.DetailsError)
	assert.Equal(t, MessageSearchFailed, st.Error, "details failure must not touch the list banner")
}

func TestDiscoverDropsStaleSearchResponses(t *testing.T) {
	search := &stubSearcher{
		results: map[string][]spoonacular.Summary{
			"slow": {{ID: 1, Title: "Slow"}},
			"fast": {{ID: 2, Title: "Fast"}},
		},
		gates: map[string]chan struct{}{"slow": make(chan struct{})},
	}
	screen := NewDiscoverScreen(search, nil)

	done := make(chan struct{})
	go func() {
		screen.Search(context.Background(), "slow")
		close(done)
	}()
	require.Eventually(t, func() bool { return screen.State().Loading }, time.Second, time.Millisecond)

	screen.Search(context.Background(), "fast")
	close(search.gates["slow"])
	<-done

	st := screen.State()
	require.Len(t, st.Results, 1)
	assert.Equal(t, "Fast", st.Results[0].Title)
	assert.Equal(t, "fast", st.Query)
}

func TestDiscoverDetailsIndependentOfList(t *testing.T) {
	search := &stubSearcher{
		results: map[string][]spoonacular.Summary{"soup": {{ID: 1, Title: "Soup"}, {ID: 2, Title: "Stew"}}},
		details: map[int]spoonacular.Details{1: {ID: 1, Title: "Soup"}, 2: {ID: 2, Title: "Stew", Steps: []string{"Simmer."}}},
		gates:   map[string]chan struct{}{"details": make(chan struct{})},
	}
	screen := NewDiscoverScreen(search, nil)
	screen.Search(context.Background(), "soup")

	done := make(chan struct{})
	go func() {
		screen.Select(context.Background(), spoonacular.Summary{ID: 1, Title: "Soup"})
		close(done)
	}()
	require.Eventually(t, func() bool { return screen.State().LoadingDetails }, time.Second, time.Millisecond)

	st := screen.State()
	assert.False(t, st.Loading)
	assert.Len(t, st.Results, 2)

	screen.Select(context.Background(), spoonacular.Summary{ID: 2, Title: "Stew"})
	close(search.gates["details"])
	<-done

	st = screen.State()
	require.NotNil(t, st.Details)
	assert.Equal(t, 2, st.Details.ID)
	assert.Equal(t, 2, st.Selected.ID)
	assert.False(t, st.LoadingDetails)

	screen.CloseDetails()
	st = screen.State()
	assert.Nil(t, st.Selected)
	assert.Nil(t, st.Details)
	assert.Len(t, st.Results, 2)
}

func TestDiscoverToggleFavorite(t *testing.T) {
	favorites := &FavoritesScreen{}
	screen := NewDiscoverScreen(&stubSearcher{}, favorites)
	recipe := spoonacular.Summary{ID: 3, Title: "Curry", ReadyInMinutes: 45, SpoonacularScore: 80}

	assert.True(t, screen.ToggleFavorite(recipe))
	require.Len(t, favorites.List(), 1)
	assert.Equal(t, 4.0, favorites.List()[0].Rating)

	assert.False(t, screen.ToggleFavorite(recipe))
	assert.True(t, favorites.Empty())

	assert.False(t, NewDiscoverScreen(&stubSearcher{}, nil).ToggleFavorite(recipe))
}

func TestStartedScreenNavigation(t *testing.T) {
	nav := &recordingNav{}
	s := StartedScreen{Nav: nav}
	require.NoError(t, s.GetStarted(context.Background()))
	require.NoError(t, s.CreateAccount(context.Background()))
	assert.Equal(t, []navigation.Screen{navigation.Login, navigation.Signup}, nav.navigated)
}

func TestChatScreenIsLocalOnly(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	chat := NewChatScreen()
	chat.NowFunc = func() time.Time { return now }

	assert.Len(t, chat.Conversations(""), 3)
	assert.Len(t, chat.Conversations("recipe"), 1)

	assert.False(t, chat.Send("Chef Support", "   "))
	assert.False(t, chat.Send("Nobody", "hi"))
	assert.True(t, chat.Send("Chef Support", "Any tips for risotto?"))

	conv := chat.Conversations("chef")[0]
	assert.Equal(t, "Any tips for risotto?", conv.LastMessage)
	assert.Equal(t, []ChatMessage{{Text: "Any tips for risotto?", SentAt: now}}, conv.Messages)
}
