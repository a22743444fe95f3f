package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"growth_hub/internal/db"
	"growth_hub/internal/domain"
	"growth_hub/internal/gateway"
	"growth_hub/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeUpstream serves canned event streams in place of the LLM gateway.
type fakeUpstream struct {
	mu       sync.Mutex
	body     string // event stream returned by Open
	bodyErr  error  // read error after body is exhausted
	openErr  error  // returned by Open instead of a body
	messages [][]gateway.Message
}

func (f *fakeUpstream) Open(ctx context.Context, messages []gateway.Message) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, messages)
	if f.openErr != nil {
		return nil, f.openErr
	}
	var r io.Reader = strings.NewReader(f.body)
	if f.bodyErr != nil {
		r = io.MultiReader(r, &errReader{err: f.bodyErr})
	}
	return io.NopCloser(r), nil
}

func (f *fakeUpstream) Model() string { return "test-model" }

func (f *fakeUpstream) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

type errReader struct{ err error }

func (r *errReader) Read([]byte) (int, error) { return 0, r.err }

// upstreamBody renders fragments in the OpenAI chunk format, ending with [DONE].
func upstreamBody(fragments ...string) string {
	var b strings.Builder
	for _, f := range fragments {
		payload, _ := json.Marshal(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion.chunk",
			"choices": []any{map[string]any{"index": 0, "delta": map[string]any{"content": f}}},
		})
		b.WriteString("data: " + string(payload) + "\n\n")
	}
	b.WriteString("data: [DONE]\n\n")
	return b.String()
}

type testEnv struct {
	db       *gorm.DB
	mr       *miniredis.Miniredis
	rdb      *redis.Client
	upstream *fakeUpstream
	router   *gin.Engine
}

func newTestEnv(t *testing.T, tweak ...func(*Deps)) *testEnv {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gdb))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	up := &fakeUpstream{body: upstreamBody("Hello", " world")}
	deps := Deps{
		DB:           gdb,
		Redis:        rdb,
		Upstream:     up,
		JWTSecret:    testSecret,
		AIDailyQuota: 0,
	}
	for _, fn := range tweak {
		fn(&deps)
	}
	return &testEnv{db: gdb, mr: mr, rdb: rdb, upstream: up, router: NewRouter(deps)}
}

// user inserts an account with password "password123" and returns it with a token.
func (e *testEnv) user(t *testing.T, username, role string) (domain.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := domain.User{Username: username, Password: string(hash), Role: role}
	require.NoError(t, e.db.Create(&u).Error)
	token, err := utils.GenerateJWT(u.ID, u.Role, testSecret)
	require.NoError(t, err)
	return u, token
}

// wallet gives u a wallet with the given balance.
func (e *testEnv) wallet(t *testing.T, u domain.User, balance float64) domain.Wallet {
	t.Helper()
	w := domain.Wallet{UserID: u.ID, Balance: balance}
	require.NoError(t, e.db.Create(&w).Error)
	return w
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// decode unmarshals a JSON response body into a fresh T.
func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (e *testEnv) balance(t *testing.T, u domain.User) float64 {
	t.Helper()
	var w domain.Wallet
	require.NoError(t, e.db.Where("user_id = ?", u.ID).First(&w).Error)
	return w.Balance
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	e := newTestEnv(t)
	for _, path := range []string{"/wallet", "/products", "/services", "/campaigns", "/dashboard/stats", "/ai/generations", "/admin/users"} {
		w := e.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestPaginationHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		query      string
		page, size int
	}{
		{"", 1, defaultPageSize},
		{"?page=3&page_size=5", 3, 5},
		{"?page=0&page_size=1000", 1, defaultPageSize},
		{"?page=x&page_size=-1", 1, defaultPageSize},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
		page, size := pagination(c)
		require.Equal(t, tt.page, page, tt.query)
		require.Equal(t, tt.size, size, tt.query)
	}
	require.Equal(t, 0, totalPages(0, 20))
	require.Equal(t, 1, totalPages(20, 20))
	require.Equal(t, 2, totalPages(21, 20))
}
