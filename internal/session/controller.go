// Package session owns the panel's process-wide authentication state.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"catalogadmin/catalog-panel/internal/authclient"
	"catalogadmin/catalog-panel/internal/model"
	"catalogadmin/catalog-panel/internal/observability"
	"catalogadmin/catalog-panel/internal/tokenstore"
)

// RoleAdmin is assigned to every session; the backend does not report roles.
const RoleAdmin = "admin"

// PolicyLogout redirects to the login location when a stored token turns out
// to be expired. Any other policy value suppresses the redirect.
const PolicyLogout = "logout"

type State int

const (
	Uninitialized State = iota
	Loading
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "uninitialized"
	}
}

type Session struct {
	UserID   int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Document string `json:"document"`
	Role     string `json:"role"`
}

func fromProfile(p model.Profile) Session {
	return Session{
		UserID:   p.ID,
		Name:     p.Name,
		Email:    p.Email,
		Phone:    p.Phone,
		Document: p.Document,
		Role:     RoleAdmin,
	}
}

type TokenStore interface {
	ReadToken() (string, bool)
	CachedUser() (tokenstore.UserData, bool)
	Write(token string, user tokenstore.UserData) error
	Clear() error
}

type Authenticator interface {
	Login(ctx context.Context, creds authclient.Credentials) (authclient.LoginResult, error)
	FetchProfile(ctx context.Context, token string) (model.Profile, error)
}

type Navigator interface {
	Location() string
	Push(path string)
	Replace(path string)
}

type Config struct {
	OnTokenExpiration string
	LoginPath         string
	HomePath          string
}

type LoginOptions struct {
	// Persist keeps the token and profile in the token store ("remember me").
	Persist bool
	// ReturnURL is where to go after login; HomePath when empty.
	ReturnURL string
}

type Controller struct {
	tokens TokenStore
	auth   Authenticator
	nav    Navigator
	log    *slog.Logger
	cfg    Config

	mu      sync.RWMutex
	state   State
	session *Session
}

func NewController(tokens TokenStore, auth Authenticator, nav Navigator, log *slog.Logger, cfg Config) *Controller {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.HomePath == "" {
		cfg.HomePath = "/"
	}
	return &Controller{
		tokens: tokens,
		auth:   auth,
		nav:    nav,
		log:    observability.OrDefault(log),
		cfg:    cfg,
		state:  Uninitialized,
	}
}

// Init restores the session from a stored token, if there is one.
func (c *Controller) Init(ctx context.Context) {
	token, ok := c.tokens.ReadToken()
	if !ok {
		c.setState(Anonymous, nil)
		return
	}

	// The cached user stands in while the token is being verified.
	var cached *Session
	if u, ok := c.tokens.CachedUser(); ok {
		sess := fromProfile(u.Profile)
		cached = &sess
	}
	c.setState(Loading, cached)
	profile, err := c.auth.FetchProfile(ctx, token)
	if err != nil {
		c.log.Error("verify stored session", "error", err)
		if clearErr := c.tokens.Clear(); clearErr != nil {
			c.log.Error("clear token store", "error", clearErr)
		}
		c.setState(Anonymous, nil)
		if c.cfg.OnTokenExpiration == PolicyLogout && !strings.Contains(c.nav.Location(), "login") {
			c.nav.Replace(c.cfg.LoginPath)
		}
		return
	}

	sess := fromProfile(profile)
	c.setState(Authenticated, &sess)
}

// Login authenticates and, on success, navigates to opts.ReturnURL. A failed
// login is logged and leaves the current state untouched.
func (c *Controller) Login(ctx context.Context, creds authclient.Credentials, opts LoginOptions) error {
	res, err := c.auth.Login(ctx, creds)
	if err != nil {
		c.log.Error("login", "email", creds.Email, "error", err)
		return err
	}

	sess := fromProfile(res.Profile)
	if opts.Persist {
		if err := c.tokens.Write(res.Token, tokenstore.UserData{Profile: res.Profile, Role: sess.Role}); err != nil {
			c.log.Error("persist session", "error", err)
		}
	}
	c.setState(Authenticated, &sess)

	dest := opts.ReturnURL
	if dest == "" {
		dest = c.cfg.HomePath
	}
	c.nav.Replace(dest)
	return nil
}

func (c *Controller) Logout() {
	c.setState(Anonymous, nil)
	if err := c.tokens.Clear(); err != nil {
		c.log.Error("clear token store", "error", err)
	}
	c.nav.Push(c.cfg.LoginPath)
}

// Current returns the signed-in user. While a stored token is being
// verified it returns the cached user, if one was saved.
func (c *Controller) Current() (Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

func (c *Controller) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state == Loading || c.state == Uninitialized
}

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Controller) setState(st State, sess *Session) {
	c.mu.Lock()
	c.state = st
	c.session = sess
	c.mu.Unlock()
}
