package httpapi

import (
	"bytes"
	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/observability"
	"chat-relay/projection"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/search"
	"chat-relay/services"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	server     *httptest.Server
	repository repositories.IMessageRepository
	registry   *runtime.Registry
	index      *search.Index
}

func setup(t *testing.T, authRequired bool) *fixture {
	t.Helper()
	req := require.New(t)
	log := slog.Default()

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	req.NoError(err)
	t.Cleanup(func() { _ = writer.Close() })

	repository := repositories.NewMessageRepository(db, log)
	registry := runtime.NewRegistry()
	index := search.NewIndex(writer, log)
	timeline := projection.NewTimeline(100)
	monitor := observability.NewManager()
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	authService := services.NewAuthService(repositories.NewUserRepository(db), tokens)

	mux := http.NewServeMux()
	handler := NewHandler(log, repository, registry, authService,
		index, timeline, monitor, tokens, authRequired, 20)
	handler.Register(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return &fixture{server: server, repository: repository, registry: registry, index: index}
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url string, body any, out any) int {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHandler_Health(t *testing.T) {
	req := require.New(t)
	f := setup(t, false)

	var body map[string]string
	status := getJSON(t, f.server.URL+"/healthz", &body)
	req.Equal(http.StatusOK, status)
	req.Equal("ok", body["status"])
}

func TestHandler_MessagesAscending(t *testing.T) {
	req := require.New(t)
	f := setup(t, false)

	_, err := f.repository.Append("alice", "first")
	req.NoError(err)
	_, err = f.repository.Append("bob", "second")
	req.NoError(err)

	var messages []messageResponse
	status := getJSON(t, f.server.URL+"/api/messages", &messages)
	req.Equal(http.StatusOK, status)
	req.Len(messages, 2)
	req.Equal("first", messages[0].Content)
	req.Equal("second", messages[1].Content)
	req.Equal("CHAT", messages[0].Kind)
	req.NotEmpty(messages[0].ID)
	req.NotEmpty(messages[0].Timestamp)
}

func TestHandler_Presence(t *testing.T) {
	req := require.New(t)
	f := setup(t, false)

	_, err := f.registry.Register("conn-1", "alice")
	req.NoError(err)
	_, err = f.registry.Register("conn-2", "bob")
	req.NoError(err)

	var present []presenceResponse
	status := getJSON(t, f.server.URL+"/api/presence", &present)
	req.Equal(http.StatusOK, status)
	req.Len(present, 2)
	req.Equal("alice", present[0].DisplayName)
	req.Equal("bob", present[1].DisplayName)
}

func TestHandler_Search(t *testing.T) {
	req := require.New(t)
	f := setup(t, false)

	stored, err := f.repository.Append("alice", "release shipped today")
	req.NoError(err)
	req.NoError(f.index.Consume(context.Background(), domain.ChatEvent{
		ID:        stored.ID,
		Kind:      domain.KindChat,
		Sender:    stored.Sender,
		Content:   stored.Content,
		Timestamp: stored.At,
	}))

	var results []search.Result
	status := getJSON(t, f.server.URL+"/api/messages/search?q=release", &results)
	req.Equal(http.StatusOK, status)
	req.Len(results, 1)
	req.Equal("alice", results[0].Sender)

	status = getJSON(t, f.server.URL+"/api/messages/search", nil)
	req.Equal(http.StatusBadRequest, status)
}

func TestHandler_RegisterAndLogin(t *testing.T) {
	req := require.New(t)
	f := setup(t, false)

	credentials := map[string]string{"username": "alice42", "password": "ComplexPass123!"}

	var registered tokenResponse
	status := postJSON(t, f.server.URL+"/api/auth/register", credentials, &registered)
	req.Equal(http.StatusCreated, status)
	req.NotEmpty(registered.Token)

	// Same username again conflicts.
	status = postJSON(t, f.server.URL+"/api/auth/register", credentials, nil)
	req.Equal(http.StatusConflict, status)

	var loggedIn tokenResponse
	status = postJSON(t, f.server.URL+"/api/auth/login", credentials, &loggedIn)
	req.Equal(http.StatusOK, status)
	req.NotEmpty(loggedIn.Token)

	bad := map[string]string{"username": "alice42", "password": "WrongPass123!"}
	status = postJSON(t, f.server.URL+"/api/auth/login", bad, nil)
	req.Equal(http.StatusUnauthorized, status)

	weak := map[string]string{"username": "bob42", "password": "short"}
	status = postJSON(t, f.server.URL+"/api/auth/register", weak, nil)
	req.Equal(http.StatusBadRequest, status)
}

func TestHandler_ProtectedRoutesRequireToken(t *testing.T) {
	req := require.New(t)
	f := setup(t, true)

	status := getJSON(t, f.server.URL+"/api/messages", nil)
	req.Equal(http.StatusUnauthorized, status)

	var registered tokenResponse
	credentials := map[string]string{"username": "alice42", "password": "ComplexPass123!"}
	status = postJSON(t, f.server.URL+"/api/auth/register", credentials, &registered)
	req.Equal(http.StatusCreated, status)

	request, err := http.NewRequest(http.MethodGet, f.server.URL+"/api/messages", nil)
	req.NoError(err)
	request.Header.Set("Authorization", "Bearer "+registered.Token)
	resp, err := http.DefaultClient.Do(request)
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)
}
