// Package cli drives the EasyEats client from a line-oriented terminal. Each
// command maps onto a screen controller, so the shell exercises the same
// navigation and auth flow a graphical front end would.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/easyeats/easyeats/internal/client"
	"github.com/easyeats/easyeats/internal/client/navigation"
	"github.com/easyeats/easyeats/internal/client/screens"
	"github.com/easyeats/easyeats/internal/spoonacular"
)

const settleTimeout = 5 * time.Second

// Alerter prints screen dialogs.
type Alerter struct {
	Out io.Writer
}

// Alert implements screens.Alerter.
func (a Alerter) Alert(_ context.Context, title, message string) {
	fmt.Fprintf(a.Out, "[%s] %s\n", title, message)
}

// Shell is a read-eval-print loop over a client.App.
type Shell struct {
	app    *client.App
	in     *bufio.Reader
	out    io.Writer
	secret func(label string) (string, error)
}

// NewShell reads commands from in and writes to out. Passwords are read
// without echo when in is a terminal.
func NewShell(app *client.App, in io.Reader, out io.Writer) *Shell {
	s := &Shell{app: app, in: bufio.NewReader(in), out: out}
	s.secret = s.prompt
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		s.secret = func(label string) (string, error) {
			fmt.Fprintf(out, "%s: ", label)
			pw, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(out)
			return string(pw), err
		}
	}
	return s
}

// Run reads commands until exit, end of input or ctx is done. Command
// failures are printed and the loop continues.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "EasyEats client. Type help for commands.")
	for ctx.Err() == nil {
		fmt.Fprintf(s.out, "easyeats [%s]> ", s.app.Nav.Current())
		line, err := s.in.ReadString('\n')
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return nil
			}
			return fmt.Errorf("read command: %w", err)
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "exit" || fields[0] == "quit" {
			fmt.Fprintln(s.out, "Bye!")
			return nil
		}
		if err := s.exec(ctx, fields[0], fields[1:]); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
	return nil
}

func (s *Shell) exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		s.help()
	case "screen":
		stack := s.app.Nav.Stack()
		names := make([]string, len(stack))
		for i, screen := range stack {
			names[i] = string(screen)
		}
		fmt.Fprintf(s.out, "%s (stack: %s)\n", s.app.Nav.Current(), strings.Join(names, " > "))
	case "back":
		if !s.app.Nav.GoBack(ctx) {
			fmt.Fprintln(s.out, "already at the first screen")
		}
	case "signup":
		return s.signup(ctx)
	case "login":
		return s.login(ctx)
	case "logout":
		return s.logout(ctx)
	case "search":
		return s.search(ctx, args)
	case "details":
		return s.details(ctx, args)
	case "fav":
		return s.toggleFavorite(args)
	case "favorites":
		return s.favorites(ctx)
	case "profile":
		return s.profile(ctx)
	default:
		fmt.Fprintf(s.out, "unknown command %q, try help\n", cmd)
	}
	return nil
}

func (s *Shell) help() {
	if s.app.Auth.IsAuthenticated() {
		fmt.Fprintln(s.out, "commands: search <query>, details <n>, fav <n>, favorites, profile, screen, back, logout, exit")
		return
	}
	fmt.Fprintln(s.out, "commands: signup, login, screen, back, exit")
}

func (s *Shell) signup(ctx context.Context) error {
	if s.app.Auth.IsAuthenticated() {
		fmt.Fprintln(s.out, "already signed in")
		return nil
	}
	if err := s.open(ctx, navigation.Signup); err != nil {
		return err
	}

	form := s.app.Signup
	var err error
	if form.Email, err = s.prompt("email"); err != nil {
		return err
	}
	if form.Password, err = s.secret("password"); err != nil {
		return err
	}
	if form.ConfirmPassword, err = s.secret("confirm password"); err != nil {
		return err
	}

	state := form.Submit(ctx)
	form.Password, form.ConfirmPassword = "", ""
	return s.finishAuth(ctx, state, form.Errors)
}

func (s *Shell) login(ctx context.Context) error {
	if s.app.Auth.IsAuthenticated() {
		fmt.Fprintln(s.out, "already signed in")
		return nil
	}
	if err := s.open(ctx, navigation.Login); err != nil {
		return err
	}

	form := s.app.Login
	var err error
	if form.Email, err = s.prompt("email"); err != nil {
		return err
	}
	if form.Password, err = s.secret("password"); err != nil {
		return err
	}

	state := form.Submit(ctx)
	form.Password = ""
	return s.finishAuth(ctx, state, form.Errors)
}

func (s *Shell) finishAuth(ctx context.Context, state screens.State, errs screens.FieldErrors) error {
	switch state {
	case screens.StateSuccess:
		s.settle(ctx)
		fmt.Fprintln(s.out, "signed in")
	case screens.StateIdle:
		for _, msg := range []string{errs.Email, errs.Password, errs.ConfirmPassword} {
			if msg != "" {
				fmt.Fprintln(s.out, msg)
			}
		}
	}
	return nil
}

func (s *Shell) logout(ctx context.Context) error {
	if !s.app.Auth.IsAuthenticated() {
		fmt.Fprintln(s.out, "not signed in")
		return nil
	}
	if err := s.app.Profile.Action(ctx, screens.ActionLogout); err != nil {
		return err
	}
	s.settle(ctx)
	fmt.Fprintln(s.out, "signed out")
	return nil
}

func (s *Shell) search(ctx context.Context, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return errors.New("usage: search <query>")
	}
	if err := s.open(ctx, navigation.Discover); err != nil {
		return err
	}

	s.app.Discover.Search(ctx, query)
	st := s.app.Discover.State()
	switch {
	case st.Error != "":
		fmt.Fprintln(s.out, st.Error)
	case len(st.Results) == 0:
		fmt.Fprintf(s.out, "no recipes found for %q\n", query)
	default:
		PrintSummaries(s.out, st.Results)
	}
	return nil
}

func (s *Shell) details(ctx context.Context, args []string) error {
	recipe, err := s.result(args)
	if err != nil {
		return err
	}

	s.app.Discover.Select(ctx, recipe)
	st := s.app.Discover.State()
	switch {
	case st.DetailsError != "":
		fmt.Fprintln(s.out, st.DetailsError)
	case st.Details != nil:
		PrintDetails(s.out, *st.Details)
	}
	return nil
}

func (s *Shell) toggleFavorite(args []string) error {
	recipe, err := s.result(args)
	if err != nil {
		return err
	}
	if s.app.Discover.ToggleFavorite(recipe) {
		fmt.Fprintf(s.out, "added %q to favorites\n", recipe.Title)
	} else {
		fmt.Fprintf(s.out, "removed %q from favorites\n", recipe.Title)
	}
	return nil
}

// result picks the n-th (1-based) entry of the last search.
func (s *Shell) result(args []string) (spoonacular.Summary, error) {
	if len(args) != 1 {
		return spoonacular.Summary{}, errors.New("usage: <command> <result number>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return spoonacular.Summary{}, fmt.Errorf("invalid result number %q", args[0])
	}
	results := s.app.Discover.State().Results
	if n < 1 || n > len(results) {
		return spoonacular.Summary{}, fmt.Errorf("no result %d, run search first", n)
	}
	return results[n-1], nil
}

func (s *Shell) favorites(ctx context.Context) error {
	if err := s.open(ctx, navigation.Favorites); err != nil {
		return err
	}
	if s.app.Favorites.Empty() {
		fmt.Fprintln(s.out, "no favorites yet")
		return nil
	}
	for _, f := range s.app.Favorites.List() {
		fmt.Fprintf(s.out, "%8d  %-50s  %3d min  %.1f\n", f.ID, f.Title, f.ReadyInMinutes, f.Rating)
	}
	return nil
}

func (s *Shell) profile(ctx context.Context) error {
	if s.app.Nav.Current() == navigation.Profile {
		s.app.Profile.Focus(ctx)
	} else if err := s.open(ctx, navigation.Profile); err != nil {
		return err
	}

	v := s.app.Profile.View
	fmt.Fprintln(s.out, v.Name)
	if v.Location != "" {
		fmt.Fprintln(s.out, v.Location)
	}
	if v.Bio != "" {
		fmt.Fprintln(s.out, v.Bio)
	}
	fmt.Fprintf(s.out, "%d recipes\n", v.RecipeCount)
	for _, c := range s.app.Profile.Cards {
		fmt.Fprintf(s.out, "  - %s (%d min, %s)\n", c.Title, c.CookingTime, c.Difficulty)
	}
	return nil
}

// open navigates to screen unless it is already on top.
func (s *Shell) open(ctx context.Context, screen navigation.Screen) error {
	if s.app.Nav.Current() == screen {
		return nil
	}
	if err := s.app.Nav.Navigate(ctx, screen); err != nil {
		if errors.Is(err, navigation.ErrScreenUnavailable) {
			return fmt.Errorf("%s is not available, sign in or out first", screen)
		}
		return err
	}
	return nil
}

// settle waits for the navigation root to follow the latest auth change.
func (s *Shell) settle(ctx context.Context) {
	timer := time.NewTimer(settleTimeout)
	defer timer.Stop()
	for {
		changed := s.app.Nav.Changed()
		if s.app.Nav.Authenticated() == s.app.Auth.IsAuthenticated() {
			return
		}
		select {
		case <-changed:
		case <-timer.C:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Shell) prompt(label string) (string, error) {
	fmt.Fprintf(s.out, "%s: ", label)
	line, err := s.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
