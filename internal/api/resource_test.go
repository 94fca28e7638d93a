package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/menuadmin/internal/model"
)

type staticToken string

func (s staticToken) Token() (string, bool) { return string(s), s != "" }

func newTestClient(t *testing.T, h http.Handler, tok TokenSource) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{BaseURL: srv.URL + "/api/", Tokens: tok})
	require.NoError(t, err)
	return c
}

func TestResourceList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		_, err := uuid.Parse(r.Header.Get("X-Request-ID"))
		assert.NoError(t, err)
		io.WriteString(w, `{"users":[{"id":7,"name":"Ada","email":"ada@example.com","is_blocked":true}]}`)
	})
	c := newTestClient(t, mux, staticToken("s3cret"))

	res, err := NewResource[model.Customer](c, "customers", Endpoint{ListPath: "/users", Extract: ".users"})
	require.NoError(t, err)

	got, err := res.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.ID("7"), got[0].ID)
	assert.True(t, got[0].Blocked)
}

func TestResourceListNestedCategories(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/restaurants/3/items", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":{"Pizza":[{"id":1,"name":"Margherita"}],"Drinks":[{"id":2,"name":"Cola"}]}}`)
	})
	c := newTestClient(t, mux, nil)

	res, err := NewResource[model.MenuItem](c, "restaurant-items", Endpoint{
		ListPath: "/restaurants/3/items",
		Extract:  "[.data | to_entries[] | .key as $c | .value[] | .category = $c]",
	})
	require.NoError(t, err)

	got, err := res.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	names := map[string]string{}
	for _, it := range got {
		names[it.Name] = it.Category
	}
	assert.Equal(t, map[string]string{"Margherita": "Pizza", "Cola": "Drinks"}, names)
}

func TestResourceSetFieldAndDelete(t *testing.T) {
	var toggled TogglePayload
	var deleted string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/items/toggle", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"id":1,"field":"on_homePage","value":true}`, string(raw))
		require.NoError(t, json.Unmarshal(raw, &toggled))
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("DELETE /api/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		deleted = r.PathValue("id")
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, mux, nil)

	res, err := NewResource[model.MenuItem](c, "items", Endpoint{
		ListPath:   "/items",
		TogglePath: "/items/toggle",
		DeletePath: "/items/",
	})
	require.NoError(t, err)

	require.NoError(t, res.SetField(context.Background(), "1", "on_homePage", true))
	assert.Equal(t, TogglePayload{ID: "1", Field: "on_homePage", Value: true}, toggled)

	require.NoError(t, res.Delete(context.Background(), "1"))
	assert.Equal(t, "1", deleted)
}

func TestResourceUnsupportedOperations(t *testing.T) {
	c, err := NewClient(Options{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)
	res, err := NewResource[model.LegalPage](c, "legal", Endpoint{ListPath: "/legal"})
	require.NoError(t, err)

	assert.ErrorIs(t, res.SetField(context.Background(), "1", "is_published", true), ErrNotSupported)
	assert.ErrorIs(t, res.Delete(context.Background(), "1"), ErrNotSupported)
}

func TestStatusErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/coupons", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message":"token expired"}`)
	})
	mux.HandleFunc("DELETE /api/coupons/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		io.WriteString(w, `{"error":{"code":3,"message":"coupon in use"}}`)
	})
	c := newTestClient(t, mux, nil)
	res, err := NewResource[model.Coupon](c, "coupons", Endpoint{ListPath: "/coupons", DeletePath: "/coupons"})
	require.NoError(t, err)

	_, err = res.List(context.Background())
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.ErrorContains(t, err, "token expired")

	err = res.Delete(context.Background(), "C1")
	assert.True(t, IsStatus(err, http.StatusConflict))
	assert.ErrorContains(t, err, "coupon in use")
}

func TestLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var cred Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cred))
		if cred.Password != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		io.WriteString(w, `{"data":{"token":"abc","user":{"id":"1","email":"admin@example.com"}}}`)
	})
	c := newTestClient(t, mux, nil)

	resp, err := c.Login(context.Background(), "/auth/login", Credentials{Email: "admin@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Token)
	assert.Equal(t, "admin@example.com", resp.User.Email)
	assert.Equal(t, model.ID("1"), resp.User.ID)

	_, err = c.Login(context.Background(), "/auth/login", Credentials{Email: "admin@example.com", Password: "x"})
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
}

func TestLoginNumericUserID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"token":"abc","user":{"id":1,"name":"Ops"}}`)
	})
	c := newTestClient(t, mux, nil)

	resp, err := c.Login(context.Background(), "/auth/login", Credentials{Email: "ops@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, model.ID("1"), resp.User.ID)
	assert.Equal(t, "Ops", resp.User.Name)
}

func TestResourceKeepsLargeIDs(t *testing.T) {
	var toggled string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/items", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":[{"id":9007199254740993,"name":"Margherita","price":9.5}]}`)
	})
	mux.HandleFunc("POST /api/items/toggle", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		toggled = string(raw)
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, mux, nil)

	res, err := NewResource[model.MenuItem](c, "items", Endpoint{ListPath: "/items", TogglePath: "/items/toggle"})
	require.NoError(t, err)

	got, err := res.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.ID("9007199254740993"), got[0].ID)

	require.NoError(t, res.SetField(context.Background(), got[0].Key(), "on_homePage", true))
	assert.Contains(t, toggled, `"id":9007199254740993,`)
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(Options{BaseURL: " "})
	assert.Error(t, err)
}
