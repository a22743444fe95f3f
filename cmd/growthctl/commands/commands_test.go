package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growth_hub/internal/assistant"
	"growth_hub/internal/stream"
)

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	t.Setenv("GROWTH_API_URL", "")
	t.Setenv("GROWTH_TOKEN", "")
	var out bytes.Buffer
	root := NewRootCommand(&out, srv.Client())
	root.SetArgs(append([]string{"--api", srv.URL}, args...))
	root.SetErr(&bytes.Buffer{})
	err := root.Execute()
	return out.String(), err
}

func TestGenerateStreamsFragments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ai/generate", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		var body struct {
			Type string         `json:"type"`
			Data map[string]any `json:"data"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, assistant.TypeChat, body.Type)
		assert.Equal(t, "hi", body.Data["message"])

		w.Header().Set("Content-Type", "text/event-stream")
		_ = stream.WriteDelta(w, "Hello")
		_ = stream.WriteDelta(w, ", world")
		_ = stream.WriteDone(w)
	}))
	defer srv.Close()

	out, err := run(t, srv, "--token", "tok", "generate", "--type", "chat", "--data", `{"message":"hi"}`)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world\n", out)
}

func TestGenerateExplainsQuota(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		fmt.Fprint(w, `{"error":"Daily AI quota exhausted"}`)
	}))
	defer srv.Close()

	_, err := run(t, srv, "--token", "tok", "generate", "-t", "chat", "-d", `{"message":"hi"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI quota exhausted")
}

func TestGenerateRequiresToken(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := run(t, srv, "generate", "--type", "chat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no token")
}

func TestGenerateRejectsNonObjectData(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := run(t, srv, "--token", "tok", "generate", "--type", "chat", "--data", `[1,2]`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JSON object")
}

func TestLoginPrintsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/user/login", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"token":"abc.def.ghi","role":"seller"}`)
	}))
	defer srv.Close()

	out, err := run(t, srv, "login", "-u", "alice", "-p", "password123")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi\n", out)
}

func TestLoginReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"Invalid credentials"}`)
	}))
	defer srv.Close()

	_, err := run(t, srv, "login", "-u", "alice", "-p", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestTypesListsEveryType(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	out, err := run(t, srv, "types")
	require.NoError(t, err)
	for _, kind := range assistant.Types() {
		assert.Contains(t, out, kind)
	}
}
