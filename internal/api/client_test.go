package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pulse-cli/internal/apitest"
	"pulse-cli/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(baseURL string, token *string) *Client {
	return New(Options{
		BaseURL: baseURL,
		Tokens:  TokenFunc(func() string { return *token }),
	})
}

func TestLoginAndProjectCRUD(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.AddUser("ada@example.com", "secret1", "Ada")

	token := ""
	c := newClient(srv.URL, &token)
	ctx := context.Background()

	tr, err := c.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, tr.AccessToken)
	assert.Equal(t, "ada@example.com", tr.User.Email)
	assert.Equal(t, "Ada", tr.User.DisplayName())
	token = tr.AccessToken

	created, err := c.CreateProject(ctx, model.ProjectFields{Name: model.StrPtr("Site Redesign"), Description: model.StrPtr("new landing page")})
	require.NoError(t, err)
	assert.Equal(t, model.StatusNotStarted, created.Status)
	assert.Equal(t, tr.User.ID, created.OwnerID)

	updated, err := c.UpdateProject(ctx, created.ID, model.ProjectFields{Status: model.StatusPtr(model.StatusInProgress)})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, updated.Status)
	assert.Equal(t, "Site Redesign", updated.Name)

	list, err := c.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	require.NoError(t, c.DeleteProject(ctx, created.ID))
	list, err = c.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	for _, call := range srv.Calls() {
		if strings.HasPrefix(call.Path, "/projects") {
			assert.Equal(t, "Bearer "+token, call.Auth, "call %s %s", call.Method, call.Path)
		}
	}
}

func TestNoAuthorizationHeaderWithoutSession(t *testing.T) {
	srv := apitest.NewServer(t)
	token := ""
	c := newClient(srv.URL, &token)

	_, err := c.ListProjects(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))

	calls := srv.Calls()
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Auth)
}

func TestErrorTaxonomy(t *testing.T) {
	srv := apitest.NewServer(t)
	u := srv.AddUser("bob@example.com", "secret1", "")
	token := srv.Token(u)
	c := newClient(srv.URL, &token)
	ctx := context.Background()

	srv.FailNext(http.MethodGet, "/projects/", http.StatusServiceUnavailable, "")
	_, err := c.ListProjects(ctx)
	require.Error(t, err)
	assert.True(t, IsServer(err))
	_, ok := ServerMessage(err)
	assert.False(t, ok)

	srv.FailNext(http.MethodPost, "/projects/", http.StatusBadRequest, "Project name already used")
	_, err = c.CreateProject(ctx, model.ProjectFields{Name: model.StrPtr("dup")})
	require.Error(t, err)
	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.True(t, ae.IsClient())
	msg, ok := ServerMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "Project name already used", msg)

	srv.SetUnreachable(true)
	_, err = c.ListProjects(ctx)
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
}

func TestRegisterValidationDetailList(t *testing.T) {
	srv := apitest.NewServer(t)
	token := ""
	c := newClient(srv.URL, &token)

	_, err := c.Register(context.Background(), RegisterRequest{Email: "x@example.com", Password: "123"})
	require.Error(t, err)
	msg, ok := ServerMessage(err)
	require.True(t, ok)
	assert.Contains(t, msg, "at least 6 characters")
}

func TestListDropsUnknownStatusesAndDuplicates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 1, "name": "A", "status": "NOT_STARTED", "owner_id": 1},
			{"id": 2, "name": "B", "status": "ARCHIVED", "owner_id": 1},
			{"id": 1, "name": "A again", "status": "COMPLETED", "owner_id": 1},
			{"id": "x-3", "name": "C", "status": "done", "owner_id": 1}
		]`))
	}))
	defer ts.Close()

	c := New(Options{BaseURL: ts.URL})
	list, err := c.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, model.ID("1"), list[0].ID)
	assert.Equal(t, "A", list[0].Name)
	assert.Equal(t, model.ID("x-3"), list[1].ID)
	assert.Equal(t, model.StatusCompleted, list[1].Status)
}

func TestUpdateRejectsInvalidServerRecord(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": 4, "name": "A", "status": "PAUSED", "owner_id": 1}`))
	}))
	defer ts.Close()

	c := New(Options{BaseURL: ts.URL})
	_, err := c.UpdateProject(context.Background(), "4", model.ProjectFields{Name: model.StrPtr("A")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestHealthAndRequestID(t *testing.T) {
	var gotID string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-ID")
		assert.Equal(t, "/api/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer ts.Close()

	c := New(Options{BaseURL: ts.URL + "/api/", RateLimit: 100, RateBurst: 1})
	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
	assert.Len(t, gotID, 36)
}

func TestParseDetail(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"detail":"Not found"}`, "Not found"},
		{`{"detail":[{"msg":"a"},{"msg":"b"}]}`, "a; b"},
		{`{"message":"m"}`, "m"},
		{`<html>oops</html>`, ""},
		{``, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseDetail([]byte(tc.body)), tc.body)
	}
}
