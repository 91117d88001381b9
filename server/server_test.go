package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/existflow/neocount/internal/db"
	"github.com/existflow/neocount/internal/model"
	"github.com/existflow/neocount/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret"

func openStore(t *testing.T, name string) *store.Local {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	local, err := store.OpenLocal(context.Background(), database)
	require.NoError(t, err)
	return local
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(Options{Stores: LocalStores(openStore(t, "server.db")), TickInterval: 20 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func do(t *testing.T, s *Server, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestEventLifecycle(t *testing.T) {
	s := newTestServer(t)
	target := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)

	rec := do(t, s, http.MethodPost, "/api/v1/events", map[string]any{
		"name":        "Japan Trip",
		"description": "Tokyo",
		"target_date": target,
		"icon":        "✈️",
		"color":       "red",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.Event](t, rec)
	assert.NotEmpty(t, created.ID)

	rec = do(t, s, http.MethodGet, "/api/v1/events", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]model.Event](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Japan Trip", list[0].Name)
	assert.True(t, target.Equal(list[0].TargetDate))

	rec = do(t, s, http.MethodPatch, "/api/v1/events/"+created.ID, map[string]any{"color": "blue"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.ColorBlue, decode[model.Event](t, rec).Color)

	rec = do(t, s, http.MethodPatch, "/api/v1/events/"+created.ID, map[string]any{"color": "pink"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/v1/events/"+created.ID, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/v1/events/"+created.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateValidation(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/events", map[string]any{"name": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/events", map[string]any{"name": " ", "target_date": time.Now()}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), model.ErrNameRequired.Error())
}

func TestDetailedNotes(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/events", map[string]any{
		"name":        "Wedding",
		"description": "X",
		"target_date": time.Now().Add(time.Hour),
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[model.Event](t, rec).ID

	rec = do(t, s, http.MethodPut, "/api/v1/events/"+id+"/notes", map[string]any{"title": "Guests"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/events/"+id+"/detailed-notes", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	e := decode[model.Event](t, rec)
	assert.True(t, e.IsDetailedNotes)
	assert.Empty(t, e.Description)
	require.Len(t, e.Notes, 1)
	assert.Equal(t, model.GeneralNotesTitle, e.Notes[0].Title)
	assert.Equal(t, "X", e.Notes[0].Content)

	rec = do(t, s, http.MethodPut, "/api/v1/events/"+id+"/notes", map[string]any{"title": "", "content": "list"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved := decode[noteResponse](t, rec)
	assert.Equal(t, model.UntitledNote, saved.Page.Title)
	require.Len(t, saved.Event.Notes, 2)

	rec = do(t, s, http.MethodPut, "/api/v1/events/"+id+"/notes", map[string]any{
		"id": saved.Page.ID, "title": "Guests", "content": "list v2",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[noteResponse](t, rec)
	require.Len(t, updated.Event.Notes, 2)
	assert.Equal(t, "Guests", updated.Event.Notes[1].Title)

	rec = do(t, s, http.MethodPut, "/api/v1/events/"+id+"/notes", map[string]any{"id": "nope"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportICS(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/api/v1/events", map[string]any{
		"name": "Launch", "icon": "🚀", "target_date": time.Now().Add(time.Hour),
	}, "")

	rec := do(t, s, http.MethodGet, "/api/v1/events.ics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/calendar"))
	assert.Contains(t, rec.Body.String(), "SUMMARY:🚀 Launch")
}

func TestManifestAndInstallOutcome(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/manifest.webmanifest", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/manifest+json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "standalone", decode[webManifest](t, rec).Display)

	rec = do(t, s, http.MethodPost, "/api/v1/install-outcome", map[string]string{"outcome": "accepted"}, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, s, http.MethodPost, "/api/v1/install-outcome", map[string]string{"outcome": "maybe"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, map[string]int{"accepted": 1}, s.InstallOutcomes())
}

func signToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": exp.Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

func TestAuthScopesStorePerUser(t *testing.T) {
	stores := map[string]store.Store{
		"alice": openStore(t, "alice.db"),
		"bob":   openStore(t, "bob.db"),
	}
	s, err := New(Options{
		RequireAuth: true,
		JWTSecret:   testSecret,
		Stores: func(userID string) (store.Store, error) {
			st, ok := stores[userID]
			if !ok {
				return nil, store.ErrNoUser
			}
			return st, nil
		},
	})
	require.NoError(t, err)
	defer s.Close()

	rec := do(t, s, http.MethodGet, "/api/v1/events", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/events", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/events", nil, signToken(t, "alice", time.Now().Add(-time.Minute)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	alice := signToken(t, "alice", time.Now().Add(time.Hour))
	bob := signToken(t, "bob", time.Now().Add(time.Hour))

	rec = do(t, s, http.MethodPost, "/api/v1/events", map[string]any{"name": "Mine", "target_date": time.Now()}, alice)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/events", nil, bob)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]model.Event](t, rec))

	rec = do(t, s, http.MethodGet, "/api/v1/events", nil, alice)
	assert.Len(t, decode[[]model.Event](t, rec), 1)

	rec = do(t, s, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRejectsForeignSignature(t *testing.T) {
	_, err := New(Options{RequireAuth: true, Stores: LocalStores(openStore(t, "open.db"))})
	assert.ErrorIs(t, err, ErrSecretRequired)

	var resolved []string
	s, err := New(Options{
		RequireAuth: true,
		JWTSecret:   testSecret,
		Stores: func(userID string) (store.Store, error) {
			resolved = append(resolved, userID)
			return openStore(t, "victim.db"), nil
		},
	})
	require.NoError(t, err)
	defer s.Close()

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "victim-user-id",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("some-other-key"))
	require.NoError(t, err)

	rec := do(t, s, http.MethodGet, "/api/v1/events", nil, forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, resolved)

	rec = do(t, s, http.MethodGet, "/api/v1/events?access_token="+forged, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	valid := signToken(t, "alice", time.Now().Add(time.Hour))
	rec = do(t, s, http.MethodGet, "/api/v1/events?access_token="+valid, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"alice"}, resolved)
}

func TestCountdownStreamReleasesTimers(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/api/v1/events", map[string]any{"name": "A", "target_date": time.Now().Add(time.Hour)}, "")
	do(t, s, http.MethodPost, "/api/v1/events", map[string]any{"name": "B", "target_date": time.Now().Add(-time.Hour)}, "")

	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/countdown/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	seen := map[string]countdownFrame{}
	for len(seen) < 2 {
		var f countdownFrame
		require.NoError(t, conn.ReadJSON(&f))
		seen[f.Name] = f
	}
	assert.False(t, seen["A"].TimeLeft.IsPast)
	assert.True(t, seen["B"].TimeLeft.IsPast)
	assert.Equal(t, 2, s.ActiveStreams())

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return s.ActiveStreams() == 0 }, 2*time.Second, 10*time.Millisecond)
}
