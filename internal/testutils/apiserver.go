// Package testutils provides an in-process stand-in for the remote travel
// authority, so session, gateway and cache behavior can be exercised against
// real HTTP round trips.
package testutils

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/nfrund/voyage/internal/domain"
)

type apiUser struct {
	id           string
	username     string
	email        string
	passwordHash []byte
}

// APIServer is a fake travel authority backed by in-memory state. Helper
// methods let tests seed users and destinations, revoke tokens and inject
// failures per operation.
type APIServer struct {
	srv *httptest.Server

	mu           sync.Mutex
	users        map[string]*apiUser             // keyed by email
	tokens       map[string]string               // token -> email
	destinations map[string][]domain.Destination // email -> ordered records
	failures     map[string]int                  // operation -> remaining forced failures
}

// NewAPIServer starts the fake authority and registers cleanup with t.
func NewAPIServer(t *testing.T) *APIServer {
	t.Helper()

	s := &APIServer{
		users:        make(map[string]*apiUser),
		tokens:       make(map[string]string),
		destinations: make(map[string][]domain.Destination),
		failures:     make(map[string]int),
	}

	e := echo.New()
	e.HideBanner = true

	e.POST("/auth/register", s.handleRegister)
	e.POST("/auth/login", s.handleLogin)
	e.GET("/auth/user", s.handleCurrentUser)
	e.GET("/destinations", s.handleList)
	e.POST("/destinations", s.handleCreate)
	e.PUT("/destinations/:id", s.handleUpdate)
	e.DELETE("/destinations/:id", s.handleDelete)

	s.srv = httptest.NewServer(e)
	t.Cleanup(s.srv.Close)
	return s
}

// URL returns the base URL the gateway should point at.
func (s *APIServer) URL() string { return s.srv.URL }

// MustRegister seeds a user directly and returns a valid token for them.
func (s *APIServer) MustRegister(t *testing.T, username, email, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user := &apiUser{
		id:           uuid.NewString(),
		username:     username,
		email:        email,
		passwordHash: hash,
	}
	s.users[email] = user
	token := uuid.NewString()
	s.tokens[token] = email
	return token
}

// Seed replaces the user's destination list, assigning ids where missing.
func (s *APIServer) Seed(email string, dests ...domain.Destination) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]domain.Destination, 0, len(dests))
	for _, d := range dests {
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		list = append(list, d)
	}
	s.destinations[email] = list
}

// Records returns a copy of the user's server-side destination list.
func (s *APIServer) Records(email string) []domain.Destination {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Destination, len(s.destinations[email]))
	copy(out, s.destinations[email])
	return out
}

// RevokeToken makes the token invalid, simulating an expired session.
func (s *APIServer) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// FailNext forces the next n calls of the operation ("user", "list",
// "create", "update", "delete") to fail with a 500.
func (s *APIServer) FailNext(operation string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[operation] = n
}

func (s *APIServer) shouldFail(operation string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures[operation] > 0 {
		s.failures[operation]--
		return true
	}
	return false
}

func (s *APIServer) authed(c echo.Context) (*apiUser, bool) {
	token := c.Request().Header.Get("x-auth-token")
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.tokens[token]
	if !ok {
		return nil, false
	}
	user, ok := s.users[email]
	return user, ok
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *APIServer) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Malformed request"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[req.Email]; exists {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "User already exists"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	user := &apiUser{
		id:           uuid.NewString(),
		username:     req.Username,
		email:        req.Email,
		passwordHash: hash,
	}
	s.users[req.Email] = user

	token := uuid.NewString()
	s.tokens[token] = req.Email

	return c.JSON(http.StatusOK, echo.Map{
		"token":    token,
		"id":       user.id,
		"username": user.username,
		"email":    user.email,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *APIServer) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Malformed request"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[req.Email]
	if !ok || bcrypt.CompareHashAndPassword(user.passwordHash, []byte(req.Password)) != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid credentials"})
	}

	token := uuid.NewString()
	s.tokens[token] = req.Email

	return c.JSON(http.StatusOK, echo.Map{
		"token":    token,
		"id":       user.id,
		"username": user.username,
		"email":    user.email,
	})
}

func (s *APIServer) handleCurrentUser(c echo.Context) error {
	if s.shouldFail("user") {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Simulated outage"})
	}
	user, ok := s.authed(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token is not valid"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":       user.id,
		"username": user.username,
		"email":    user.email,
	})
}

func (s *APIServer) handleList(c echo.Context) error {
	if s.shouldFail("list") {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Simulated outage"})
	}
	user, ok := s.authed(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token is not valid"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.destinations[user.email]
	if list == nil {
		list = []domain.Destination{}
	}
	return c.JSON(http.StatusOK, list)
}

func (s *APIServer) handleCreate(c echo.Context) error {
	if s.shouldFail("create") {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Simulated outage"})
	}
	user, ok := s.authed(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token is not valid"})
	}

	var d domain.Destination
	if err := c.Bind(&d); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Malformed request"})
	}
	d.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.destinations[user.email] = append(s.destinations[user.email], d)
	return c.JSON(http.StatusOK, d)
}

func (s *APIServer) handleUpdate(c echo.Context) error {
	if s.shouldFail("update") {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Simulated outage"})
	}
	user, ok := s.authed(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token is not valid"})
	}

	var patch domain.DestinationPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Malformed request"})
	}

	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.destinations[user.email]
	for i, d := range list {
		if d.ID == id {
			list[i] = patch.Apply(d)
			return c.JSON(http.StatusOK, list[i])
		}
	}
	return c.JSON(http.StatusNotFound, echo.Map{"message": "Destination not found"})
}

func (s *APIServer) handleDelete(c echo.Context) error {
	if s.shouldFail("delete") {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Simulated outage"})
	}
	user, ok := s.authed(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token is not valid"})
	}

	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.destinations[user.email]
	for i, d := range list {
		if d.ID == id {
			s.destinations[user.email] = append(list[:i], list[i+1:]...)
			return c.JSON(http.StatusOK, echo.Map{"message": "Destination removed"})
		}
	}
	return c.JSON(http.StatusNotFound, echo.Map{"message": "Destination not found"})
}
