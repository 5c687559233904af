// Package apitest is an in-memory Project Pulse API used by tests across the module.
package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"pulse-cli/internal/model"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var signingKey = []byte("apitest-signing-key")

type Call struct {
	Method string
	Path   string
	Auth   string
}

type failure struct {
	method string
	path   string
	status int
	detail string
}

type user struct {
	model.User
	password string
}

type Server struct {
	URL string

	mu       sync.Mutex
	users    []user
	projects []model.Project
	nextID   int
	calls    []Call
	failures []failure
	// unreachable makes every request hang up without a response.
	unreachable bool
}

// NewServer starts the fake API on an httptest server closed at test cleanup.
func NewServer(tb testing.TB) *Server {
	tb.Helper()
	s := &Server{nextID: 1}
	ts := httptest.NewServer(s.Handler())
	tb.Cleanup(ts.Close)
	s.URL = ts.URL
	return s
}

func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))
	r.Use(s.record, s.injectFailures)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	auth := r.Group("/auth")
	auth.POST("/register", s.register)
	auth.POST("/login", s.login)

	projects := r.Group("/projects", s.requireUser)
	projects.GET("/", s.listProjects)
	projects.POST("/", s.createProject)
	projects.PATCH("/:id", s.updateProject)
	projects.DELETE("/:id", s.deleteProject)
	return r
}

func (s *Server) record(c *gin.Context) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: c.Request.Method, Path: c.Request.URL.Path, Auth: c.GetHeader("Authorization")})
	unreachable := s.unreachable
	s.mu.Unlock()
	if unreachable {
		if hj, ok := c.Writer.(http.Hijacker); ok {
			if conn, _, err := hj.Hijack(); err == nil {
				_ = conn.Close()
			}
		}
		c.Abort()
		return
	}
	c.Next()
}

func (s *Server) injectFailures(c *gin.Context) {
	s.mu.Lock()
	for i, f := range s.failures {
		if f.method == c.Request.Method && strings.HasPrefix(c.Request.URL.Path, f.path) {
			s.failures = append(s.failures[:i], s.failures[i+1:]...)
			s.mu.Unlock()
			if f.detail == "" {
				c.AbortWithStatus(f.status)
			} else {
				c.AbortWithStatusJSON(f.status, gin.H{"detail": f.detail})
			}
			return
		}
	}
	s.mu.Unlock()
	c.Next()
}

// FailNext makes the next request matching method and path prefix fail with status.
func (s *Server) FailNext(method, pathPrefix string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{method: method, path: pathPrefix, status: status, detail: detail})
}

// SetUnreachable drops connections without a response (a transport failure for the client).
func (s *Server) SetUnreachable(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unreachable = v
}

func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallCount counts recorded calls matching method and path prefix.
func (s *Server) CallCount(method, pathPrefix string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method && strings.HasPrefix(c.Path, pathPrefix) {
			n++
		}
	}
	return n
}

func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// AddUser seeds an account.
func (s *Server) AddUser(email, password, fullName string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(email, password, fullName)
}

func (s *Server) addUserLocked(email, password, fullName string) model.User {
	u := model.User{ID: s.newIDLocked(), Email: email, Role: "member"}
	if fullName != "" {
		u.FullName = model.StrPtr(fullName)
	}
	s.users = append(s.users, user{User: u, password: password})
	return u
}

// AddProject seeds a project owned by ownerID.
func (s *Server) AddProject(ownerID model.ID, name string, status model.Status) model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := model.Project{ID: s.newIDLocked(), Name: name, Status: status, OwnerID: ownerID}
	s.projects = append(s.projects, p)
	return p
}

func (s *Server) Projects() []model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Project(nil), s.projects...)
}

// Token mints a valid access token for u.
func (s *Server) Token(u model.User) string {
	return mintToken(u.ID, time.Now().Add(24*time.Hour))
}

// ExpiredToken mints a token that expired an hour ago.
func (s *Server) ExpiredToken(u model.User) string {
	return mintToken(u.ID, time.Now().Add(-time.Hour))
}

func mintToken(id model.ID, exp time.Time) string {
	claims := jwt.RegisteredClaims{
		Subject:   string(id),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	return tok
}

func (s *Server) newIDLocked() model.ID {
	id := model.ID(strconv.Itoa(s.nextID))
	s.nextID++
	return id
}

func (s *Server) register(c *gin.Context) {
	var req struct {
		Email    string  `json:"email"`
		Password string  `json:"password"`
		FullName *string `json:"full_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	if len(req.Password) < 6 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"loc": []string{"body", "password"}, "msg": "String should have at least 6 characters"}}})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, req.Email) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Email already registered"})
			return
		}
	}
	name := ""
	if req.FullName != nil {
		name = *req.FullName
	}
	c.JSON(http.StatusCreated, s.addUserLocked(req.Email, req.Password, name))
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, req.Email) && u.password == req.Password {
			c.JSON(http.StatusOK, gin.H{
				"access_token": mintToken(u.ID, time.Now().Add(24*time.Hour)),
				"token_type":   "bearer",
				"user":         u.User,
			})
			return
		}
	}
	c.JSON(http.StatusUnauthorized, gin.H{"detail": "Incorrect email or password"})
}

func (s *Server) requireUser(c *gin.Context) {
	h := c.GetHeader("Authorization")
	raw, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return signingKey, nil
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
		return
	}
	c.Set("user_id", model.ID(claims.Subject))
	c.Next()
}

func currentUser(c *gin.Context) model.ID {
	id, _ := c.Get("user_id")
	uid, _ := id.(model.ID)
	return uid
}

func (s *Server) listProjects(c *gin.Context) {
	uid := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Project{}
	for _, p := range s.projects {
		if p.OwnerID == uid {
			out = append(out, p)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createProject(c *gin.Context) {
	var f model.ProjectFields
	if err := c.ShouldBindJSON(&f); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	if f.Name == nil || strings.TrimSpace(*f.Name) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "Field required"}}})
		return
	}
	st := model.StatusNotStarted
	if f.Status != nil {
		if !f.Status.Valid() {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Invalid status"})
			return
		}
		st = *f.Status
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := model.Project{ID: s.newIDLocked(), Name: *f.Name, Description: f.Description, Status: st, OwnerID: currentUser(c)}
	s.projects = append(s.projects, p)
	c.JSON(http.StatusCreated, p)
}

func (s *Server) findOwnedLocked(c *gin.Context) int {
	id := model.ID(c.Param("id"))
	uid := currentUser(c)
	for i, p := range s.projects {
		if p.ID == id && p.OwnerID == uid {
			return i
		}
	}
	return -1
}

func (s *Server) updateProject(c *gin.Context) {
	var f model.ProjectFields
	if err := c.ShouldBindJSON(&f); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	if f.Status != nil && !f.Status.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Invalid status"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findOwnedLocked(c)
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Project not found"})
		return
	}
	p := s.projects[i]
	if f.Name != nil {
		p.Name = *f.Name
	}
	if f.Description != nil {
		p.Description = f.Description
	}
	if f.Status != nil {
		p.Status = *f.Status
	}
	s.projects[i] = p
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProject(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findOwnedLocked(c)
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Project not found"})
		return
	}
	s.projects = append(s.projects[:i], s.projects[i+1:]...)
	c.Status(http.StatusNoContent)
}
