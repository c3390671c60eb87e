package epicmix

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testUsername = "rider@example.com"
	testPassword = "s3cret"
)

// writeJSON encodes v as JSON into w.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic("test helper writeJSON: " + err.Error())
	}
}

// authRecorder is a fake authentication endpoint issuing token-1, token-2, ...
type authRecorder struct {
	mu      sync.Mutex
	queries []url.Values
	bodies  []string
	methods []string
	headers []http.Header
	// fail, when set, answers the n-th (1-based) call instead of issuing a token.
	fail func(w http.ResponseWriter, n int) bool
}

func (a *authRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	a.mu.Lock()
	a.queries = append(a.queries, r.URL.Query())
	a.bodies = append(a.bodies, string(body))
	a.methods = append(a.methods, r.Method)
	a.headers = append(a.headers, r.Header.Clone())
	n := len(a.queries)
	a.mu.Unlock()

	if a.fail != nil && a.fail(w, n) {
		return
	}

	writeJSON(w, map[string]any{
		"specific": map[string]any{
			"tokenResponse": map[string]any{
				"accessToken":  fmt.Sprintf("token-%d", n),
				"refreshToken": fmt.Sprintf("refresh-%d", n),
			},
			"customerId": 42,
		},
	})
}

func (a *authRecorder) modes() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	modes := make([]string, 0, len(a.queries))
	for _, q := range a.queries {
		modes = append(modes, q.Get("mode"))
	}
	return modes
}

func (a *authRecorder) body(i int) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bodies[i]
}

// apiRecorder is a fake proxy endpoint delegating to handle.
type apiRecorder struct {
	calls   atomic.Int32
	mu      sync.Mutex
	paths   []string
	bearers []string
	handle  func(w http.ResponseWriter, r *http.Request, n int)
}

func (a *apiRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := int(a.calls.Add(1))

	a.mu.Lock()
	a.paths = append(a.paths, r.URL.Query().Get("path"))
	a.bearers = append(a.bearers, r.Header.Get("Authorization"))
	a.mu.Unlock()

	if a.handle == nil {
		writeJSON(w, map[string]any{"data": map[string]any{}})
		return
	}
	a.handle(w, r, n)
}

// respondData returns an api handler answering every call with {"data": data}.
func respondData(data any) func(http.ResponseWriter, *http.Request, int) {
	return func(w http.ResponseWriter, _ *http.Request, _ int) {
		writeJSON(w, map[string]any{"data": data})
	}
}

type testEnv struct {
	server *httptest.Server
	auth   *authRecorder
	api    *apiRecorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{auth: &authRecorder{}, api: &apiRecorder{}}

	mux := http.NewServeMux()
	mux.Handle("/authentication.php", env.auth)
	mux.Handle("/proxy.php", env.api)

	env.server = httptest.NewServer(mux)
	t.Cleanup(env.server.Close)

	return env
}

func (e *testEnv) options(opts ...ClientOption) []ClientOption {
	authURL, _ := url.Parse(e.server.URL + "/authentication.php")
	apiURL, _ := url.Parse(e.server.URL + "/proxy.php")

	return append([]ClientOption{
		WithAuthURL(authURL),
		WithAPIURL(apiURL),
		WithHTTPClient(e.server.Client()),
	}, opts...)
}

// client creates an authenticated client against the fake endpoints.
func (e *testEnv) client(t *testing.T, opts ...ClientOption) *Client {
	t.Helper()

	c, err := New(context.Background(), testUsername, testPassword, e.options(opts...)...)
	require.NoError(t, err)

	return c
}
