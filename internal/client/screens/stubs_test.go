package screens

import (
	"context"
	"sync"

	"github.com/easyeats/easyeats/internal/client/api"
	"github.com/easyeats/easyeats/internal/client/httpclient"
	"github.com/easyeats/easyeats/internal/client/navigation"
	"github.com/easyeats/easyeats/internal/client/session"
	"github.com/easyeats/easyeats/internal/spoonacular"
)

type alert struct {
	title   string
	message string
}

type recordingAlerter struct {
	mu     sync.Mutex
	alerts []alert
}

func (a *recordingAlerter) Alert(_ context.Context, title, message string) {
	a.mu.Lock()
	a.alerts = append(a.alerts, alert{title: title, message: message})
	a.mu.Unlock()
}

func (a *recordingAlerter) last() alert {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.alerts) == 0 {
		return alert{}
	}
	return a.alerts[len(a.alerts)-1]
}

type recordingNav struct {
	navigated []navigation.Screen
	backs     int
}

func (n *recordingNav) Navigate(_ context.Context, screen navigation.Screen) error {
	n.navigated = append(n.navigated, screen)
	return nil
}

func (n *recordingNav) GoBack(context.Context) bool {
	n.backs++
	return true
}

type stubProvider struct {
	mu       sync.Mutex
	user     session.User
	signedIn bool
	err      error
	signIns  int
	signUps  int
	signOuts int
	block    chan struct{}

	newPassword string
	passwordErr error
}

func (p *stubProvider) CurrentUser(context.Context) (session.User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.user, p.signedIn
}

func (p *stubProvider) Token(context.Context) (string, error) { return "token", nil }

func (p *stubProvider) SignIn(ctx context.Context, email, password string) (session.User, error) {
	p.mu.Lock()
	p.signIns++
	p.mu.Unlock()
	return p.authenticate()
}

func (p *stubProvider) SignUp(ctx context.Context, email, password string) (session.User, error) {
	p.mu.Lock()
	p.signUps++
	p.mu.Unlock()
	return p.authenticate()
}

func (p *stubProvider) authenticate() (session.User, error) {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return session.User{}, p.err
	}
	p.signedIn = true
	return p.user, nil
}

func (p *stubProvider) SignOut(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signOuts++
	p.signedIn = false
	return nil
}

type passwordProvider struct {
	*stubProvider
}

func (p passwordProvider) UpdatePassword(_ context.Context, newPassword string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.newPassword = newPassword
	return p.passwordErr
}

type stubProfiles struct {
	profile   api.Profile
	getErr    error
	createErr error
	updateErr error

	calls    []string
	created  []api.CreateProfileRequest
	lastForm *httpclient.Multipart
}

func (p *stubProfiles) Create(_ context.Context, req api.CreateProfileRequest) (api.Profile, error) {
	p.calls = append(p.calls, "create")
	p.created = append(p.created, req)
	return p.profile, p.createErr
}

func (p *stubProfiles) Get(_ context.Context, uid string) (api.Profile, error) {
	p.calls = append(p.calls, "get:"+uid)
	return p.profile, p.getErr
}

func (p *stubProfiles) Update(_ context.Context, uid string, form *httpclient.Multipart) (api.Profile, error) {
	p.calls = append(p.calls, "update:"+uid)
	p.lastForm = form
	return p.profile, p.updateErr
}

type stubRecipes struct {
	mine    []api.Recipe
	mineErr error
}

func (r *stubRecipes) Mine(context.Context) ([]api.Recipe, error) { return r.mine, r.mineErr }

func (r *stubRecipes) Create(context.Context, *httpclient.Multipart) (api.Recipe, error) {
	return api.Recipe{}, nil
}

// recordingAuth wraps a mutator to assert ordering against facade calls.
type recordingAuth struct {
	profiles *stubProfiles
	logins   int
	logouts  int
	// callsAtLogin is a copy of profiles.calls when Login was invoked.
	callsAtLogin []string
}

func (a *recordingAuth) Login() {
	a.logins++
	if a.profiles != nil {
		a.callsAtLogin = append([]string(nil), a.profiles.calls...)
	}
}

func (a *recordingAuth) Logout() { a.logouts++ }

func responseError(status int, body string) error {
	return &httpclient.Error{Kind: httpclient.KindResponse, Method: "GET", Path: "/api/", Status: status, Body: []byte(body)}
}

type stubSearcher struct {
	mu      sync.Mutex
	results map[string][]spoonacular.Summary
	details map[int]spoonacular.Details
	err     error
	gates   map[string]chan struct{}
	calls   int
}

func (s *stubSearcher) Search(_ context.Context, query string) ([]spoonacular.Summary, error) {
	s.mu.Lock()
	s.calls++
	gate := s.gates[query]
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.results[query], nil
}

func (s *stubSearcher) Details(_ context.Context, id int) (spoonacular.Details, error) {
	s.mu.Lock()
	gate := s.gates["details"]
	s.mu.Unlock()
	if gate != nil && id == 1 {
		<-gate
	}
	if s.err != nil {
		return spoonacular.Details{}, s.err
	}
	return s.details[id], nil
}
