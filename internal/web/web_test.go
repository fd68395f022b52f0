// ABOUTME: Tests for the web UI handlers
// ABOUTME: Covers the login gate, composer flow, CSRF, submit outcomes, and logout

package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrBorghi/XPost/internal/history"
	"github.com/BrBorghi/XPost/internal/session"
	"github.com/BrBorghi/XPost/internal/xapi"
)

const testPassword = "open sesame"

// stubPublisher records calls and returns a canned result.
type stubPublisher struct {
	mu      sync.Mutex
	calls   int
	text    string
	quoteID string

	postID string
	err    error
}

func (p *stubPublisher) CreatePost(ctx context.Context, text, quoteID string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.text = text
	p.quoteID = quoteID
	if p.err != nil {
		return "", p.err
	}
	return p.postID, nil
}

func (p *stubPublisher) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type testEnv struct {
	baseURL string
	client  *http.Client
	pub     *stubPublisher
	srv     *Server
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T, maxChars int, hist *history.Store) *testEnv {
	t.Helper()
	return newTestEnvTTL(t, maxChars, hist, time.Hour)
}

func newTestEnvTTL(t *testing.T, maxChars int, hist *history.Store, ttl time.Duration) *testEnv {
	t.Helper()

	store := session.NewStore(ttl, 16)
	t.Cleanup(store.Close)
	gate := session.NewGate(testPassword, store, discardLogger())

	pub := &stubPublisher{postID: "999"}
	srv := New(Config{PageTitle: "xpost", MaxChars: maxChars}, gate, pub, hist, discardLogger())

	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testEnv{
		baseURL: ts.URL,
		client:  &http.Client{Jar: jar},
		pub:     pub,
		srv:     srv,
	}
}

// composerCount reports how many per-session composers the server holds.
func (e *testEnv) composerCount() int {
	e.srv.mu.Lock()
	defer e.srv.mu.Unlock()
	return len(e.srv.composers)
}

// csrfToken fetches the login page to obtain a CSRF cookie and returns it.
func (e *testEnv) csrfToken(t *testing.T) string {
	t.Helper()

	resp, err := e.client.Get(e.baseURL + "/login")
	require.NoError(t, err)
	resp.Body.Close()

	u, _ := url.Parse(e.baseURL)
	for _, c := range e.client.Jar.Cookies(u) {
		if c.Name == CSRFCookieName {
			return c.Value
		}
	}
	t.Fatal("no CSRF cookie set")
	return ""
}

// login performs the full password login flow.
func (e *testEnv) login(t *testing.T) {
	t.Helper()

	token := e.csrfToken(t)
	resp, err := e.client.PostForm(e.baseURL+"/login", url.Values{
		"csrf_token": {token},
		"password":   {testPassword},
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	require.Contains(t, string(body), "Post on X", "login should land on the composer")
}

// postForm posts a form with the current CSRF token and returns the body.
func (e *testEnv) postForm(t *testing.T, path string, values url.Values) (int, string) {
	t.Helper()

	u, _ := url.Parse(e.baseURL)
	for _, c := range e.client.Jar.Cookies(u) {
		if c.Name == CSRFCookieName {
			values.Set("csrf_token", c.Value)
		}
	}

	resp, err := e.client.PostForm(e.baseURL+path, values)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (e *testEnv) get(t *testing.T, path string) (int, string) {
	t.Helper()

	resp, err := e.client.Get(e.baseURL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t, 280, nil)

	noRedirect := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	for _, path := range []string{"/", "/history"} {
		resp, err := noRedirect.Get(env.baseURL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, "path %s", path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), "path %s", path)
	}
}

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t, 280, nil)
	env.login(t)

	status, body := env.get(t, "/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Post on X")
	assert.Contains(t, body, "280 characters left")
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t, 280, nil)

	token := env.csrfToken(t)
	resp, err := env.client.PostForm(env.baseURL+"/login", url.Values{
		"csrf_token": {token},
		"password":   {"wrong"},
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Incorrect password")

	// Still locked out
	status, loginBody := env.get(t, "/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, loginBody, "Reserved access")
}

func TestLogin_MissingCSRF(t *testing.T) {
	env := newTestEnv(t, 280, nil)

	resp, err := env.client.PostForm(env.baseURL+"/login", url.Values{
		"password": {testPassword},
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Invalid request")
}

func TestCompose_CounterUpdates(t *testing.T) {
	env := newTestEnv(t, 10, nil)
	env.login(t)

	status, body := env.postForm(t, "/compose", url.Values{
		"text":  {"hello"},
		"quote": {""},
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "5 characters left")
	assert.NotContains(t, body, "invalid")
}

func TestCompose_NegativeRemaining(t *testing.T) {
	env := newTestEnv(t, 10, nil)
	env.login(t)

	// "hello world" is 11 chars against a limit of 10
	status, body := env.postForm(t, "/compose", url.Values{
		"text":  {"hello world"},
		"quote": {""},
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "-1 characters left")
	assert.Contains(t, body, "invalid")
}

func TestCompose_QuoteError(t *testing.T) {
	env := newTestEnv(t, 280, nil)
	env.login(t)

	_, body := env.postForm(t, "/compose", url.Values{
		"text":  {"hi"},
		"quote": {"garbage"},
	})
	assert.Contains(t, body, "Not a valid post URL or numeric id")
}

func TestSubmit_Success(t *testing.T) {
	env := newTestEnv(t, 280, nil)
	env.login(t)

	env.pub.postID = "1234567890"
	status, body := env.postForm(t, "/post", url.Values{
		"text":  {"hi"},
		"quote": {"https://x.com/user/status/12345"},
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Posted successfully! ID: 1234567890")

	assert.Equal(t, 1, env.pub.callCount())
	assert.Equal(t, "hi", env.pub.text)
	assert.Equal(t, "12345", env.pub.quoteID)

	// Draft cleared: the composer shows an empty textarea again
	_, pageBody := env.get(t, "/")
	assert.Contains(t, pageBody, "280 characters left")
}

func TestSubmit_EmptyTextNeverCallsPublisher(t *testing.T) {
	env := newTestEnv(t, 280, nil)
	env.login(t)

	_, body := env.postForm(t, "/post", url.Values{
		"text":  {""},
		"quote": {""},
	})
	assert.Contains(t, body, "The text cannot be empty!")
	assert.Equal(t, 0, env.pub.callCount())
}

func TestSubmit_OverLimitNeverCallsPublisher(t *testing.T) {
	env := newTestEnv(t, 10, nil)
	env.login(t)

	_, body := env.postForm(t, "/post", url.Values{
		"text":  {"hello world"},
		"quote": {""},
	})
	assert.Contains(t, body, "over the character limit")
	assert.Equal(t, 0, env.pub.callCount())
}

func TestSubmit_BadQuoteNeverCallsPublisher(t *testing.T) {
	env := newTestEnv(t, 280, nil)
	env.login(t)

	_, body := env.postForm(t, "/post", url.Values{
		"text":  {"hi"},
		"quote": {"not-a-reference"},
	})
	assert.Contains(t, body, "Validation error")
	assert.Equal(t, 0, env.pub.callCount())

	// The offending value is redisplayed for correction
	assert.Contains(t, body, "not-a-reference")
}

func TestSubmit_RemoteFailureKeepsDraft(t *testing.T) {
	env := newTestEnv(t, 280, nil)
	env.login(t)

	env.pub.err = &xapi.APIError{StatusCode: 429, Title: "Too Many Requests", Detail: "rate limit exceeded"}
	_, body := env.postForm(t, "/post", url.Values{
		"text":  {"hi there"},
		"quote": {""},
	})
	assert.Contains(t, body, "rate limit exceeded")
	assert.Contains(t, body, "try again")

	// Draft intact: the textarea still holds the text
	_, pageBody := env.get(t, "/")
	assert.Contains(t, pageBody, "hi there")

	// The user can retry
	env.pub.err = nil
	env.pub.postID = "7"
	_, retryBody := env.postForm(t, "/post", url.Values{
		"text":  {"hi there"},
		"quote": {""},
	})
	assert.Contains(t, retryBody, "Posted successfully! ID: 7")
}

func TestLogout_DiscardsDraftAndSession(t *testing.T) {
	env := newTestEnv(t, 280, nil)
	env.login(t)

	// Put something in the draft
	env.postForm(t, "/compose", url.Values{"text": {"work in progress"}, "quote": {""}})

	status, body := env.postForm(t, "/logout", url.Values{})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Reserved access")

	// Back in: fresh draft
	env.login(t)
	_, pageBody := env.get(t, "/")
	assert.NotContains(t, pageBody, "work in progress")
}

func TestSessionExpiry_DiscardsDraft(t *testing.T) {
	env := newTestEnvTTL(t, 280, nil, 200*time.Millisecond)
	env.login(t)

	env.postForm(t, "/compose", url.Values{"text": {"sensitive draft text"}, "quote": {""}})
	require.Equal(t, 1, env.composerCount())

	time.Sleep(250 * time.Millisecond)

	// Next touch with the expired session redirects to login and the
	// composer, draft included, is discarded just like on logout
	status, body := env.get(t, "/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Reserved access")
	assert.Equal(t, 0, env.composerCount())

	// A fresh login starts from an empty draft
	env.login(t)
	_, pageBody := env.get(t, "/")
	assert.NotContains(t, pageBody, "sensitive draft text")
}

func TestLogout_MissingCSRF(t *testing.T) {
	env := newTestEnv(t, 280, nil)
	env.login(t)

	env.postForm(t, "/compose", url.Values{"text": {"still here"}, "quote": {""}})

	// A logout request without the CSRF token is rejected
	resp, err := env.client.PostForm(env.baseURL+"/logout", url.Values{})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Session and draft survive
	status, body := env.get(t, "/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "still here")
}

func TestHistory_RecordsPublishedPosts(t *testing.T) {
	histStore, err := history.New(filepath.Join(t.TempDir(), "history.db"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = histStore.Close() })

	env := newTestEnv(t, 280, histStore)
	env.login(t)

	env.pub.postID = "555"
	env.postForm(t, "/post", url.Values{
		"text":  {"for the record"},
		"quote": {""},
	})

	status, body := env.get(t, "/history")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "for the record")
	assert.Contains(t, body, "555")
}

func TestHistory_DisabledRedirects(t *testing.T) {
	env := newTestEnv(t, 280, nil)
	env.login(t)

	status, body := env.get(t, "/history")
	assert.Equal(t, http.StatusOK, status)
	// Redirected back to the composer
	assert.Contains(t, body, "Post on X")
	assert.True(t, strings.Contains(body, "compose-form"))
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, 280, nil)

	status, body := env.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok\n", body)
}
