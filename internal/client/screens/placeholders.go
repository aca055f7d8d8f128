package screens

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/easyeats/easyeats/internal/client/navigation"
	"github.com/easyeats/easyeats/internal/spoonacular"
)

// StartedScreen is the signed-out landing page.
type StartedScreen struct {
	Nav Navigator
}

// GetStarted opens the login screen.
func (s StartedScreen) GetStarted(ctx context.Context) error {
	return s.Nav.Navigate(ctx, navigation.Login)
}

// CreateAccount opens the signup screen.
func (s StartedScreen) CreateAccount(ctx context.Context) error {
	return s.Nav.Navigate(ctx, navigation.Signup)
}

// Favorite is a saved catalogue recipe.
type Favorite struct {
	ID             int
	Title          string
	Image          string
	ReadyInMinutes int
	Rating         float64
}

// FavoriteFromSummary copies the card fields of a search result.
func FavoriteFromSummary(s spoonacular.Summary) Favorite {
	return Favorite{
		ID:             s.ID,
		Title:          s.Title,
		Image:          s.Image,
		ReadyInMinutes: s.ReadyInMinutes,
		Rating:         s.Rating(),
	}
}

// FavoritesScreen keeps favorites in memory only; they are not synced anywhere.
type FavoritesScreen struct {
	items []Favorite
}

// Add appends f unless a favorite with the same ID exists.
func (s *FavoritesScreen) Add(f Favorite) {
	if s.Contains(f.ID) {
		return
	}
	s.items = append(s.items, f)
}

// Remove drops the favorite with id.
func (s *FavoritesScreen) Remove(id int) {
	s.items = slices.DeleteFunc(s.items, func(f Favorite) bool { return f.ID == id })
}

// Contains reports whether id is a favorite.
func (s *FavoritesScreen) Contains(id int) bool {
	return slices.ContainsFunc(s.items, func(f Favorite) bool { return f.ID == id })
}

// List returns the favorites in the order they were added.
func (s *FavoritesScreen) List() []Favorite {
	return slices.Clone(s.items)
}

// Empty reports whether the empty-state should be shown.
func (s *FavoritesScreen) Empty() bool { return len(s.items) == 0 }

// ChatMessage is a locally sent message.
type ChatMessage struct {
	Text   string
	SentAt time.Time
}

// Conversation is a chat thread shown in the list.
type Conversation struct {
	Name        string
	LastMessage string
	Messages    []ChatMessage
}

// ChatScreen is a local-only chat placeholder. Nothing is sent to a server.
type ChatScreen struct {
	NowFunc func() time.Time

	conversations []Conversation
}

// NewChatScreen returns the chat list with its default threads.
func NewChatScreen() *ChatScreen {
	return &ChatScreen{
		NowFunc: time.Now,
		conversations: []Conversation{
			{Name: "Chef Support", LastMessage: "How can I help you today?"},
			{Name: "Recipe Community", LastMessage: "Share your cooking tips!"},
			{Name: "Cooking Tips", LastMessage: "Weekly cooking tips and tricks"},
		},
	}
}

// Conversations returns the threads whose name contains filter, case-insensitively.
func (s *ChatScreen) Conversations(filter string) []Conversation {
	filter = strings.ToLower(strings.TrimSpace(filter))
	var out []Conversation
	for _, c := range s.conversations {
		if filter == "" || strings.Contains(strings.ToLower(c.Name), filter) {
			out = append(out, c)
		}
	}
	return out
}

// Send appends text to the named thread. Blank messages and unknown threads are ignored.
func (s *ChatScreen) Send(name, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	for i := range s.conversations {
		if s.conversations[i].Name == name {
			s.conversations[i].Messages = append(s.conversations[i].Messages, ChatMessage{Text: text, SentAt: s.NowFunc()})
			s.conversations[i].LastMessage = text
			return true
		}
	}
	return false
}
