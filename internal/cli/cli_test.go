package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/WealthGo/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// fakeBackend serves the advisory API routes the commands use.
type fakeBackend struct {
	mu        sync.Mutex
	chatReply string
	chatCode  int
	marked    []models.MarkReadRequest
	deleted   []string
}

func (f *fakeBackend) router() chi.Router {
	r := chi.NewRouter()
	r.Post("/welcome", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"session_id":"sess-1"}`)
	})
	r.Post("/chat", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		code, body := f.chatCode, f.chatReply
		f.mu.Unlock()
		if code == 0 {
			code = http.StatusOK
		}
		writeJSON(w, code, body)
	})
	r.Post("/session/delete", func(w http.ResponseWriter, r *http.Request) {
		var req models.SessionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.deleted = append(f.deleted, req.SessionID)
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, `{"ok":true}`)
	})
	r.Get("/db/hnwi/all", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"person":"Jane Doe"},{"person":"John Roe"}]`)
	})
	r.Get("/db/articles/{person}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "person") != "Jane Doe" {
			writeJSON(w, http.StatusOK, `{"articles":[]}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"articles":[
			{"id":"a1","title":"Jane Doe files for IPO","source":"Reuters","url":"https://example.com/a1",
			 "summary":{"summary_text":"Filing expected next quarter"},"publish_date":"2024-05-01T10:00:00Z"}]}`)
	})
	r.Get("/db/financials/all", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"symbols":["AAPL","MSFT"]}`)
	})
	r.Get("/db/insights", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"value":[{"id":"i1","hnwi_name":"Jane Doe","session_id":"s-9",
			"updated_at":"2024-05-01T10:00:00Z","advice":{}}]}`)
	})
	r.Get("/notifications", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"count":2,"notifications":[
			{"id":"n1","person":"Jane Doe","message":"IPO filed","timestamp":"2024-05-02T08:00:00"},
			{"id":"n2","person":"John Roe","message":"Board seat","timestamp":"2024-05-02T09:00:00"}]}`)
	})
	r.Post("/notifications/mark-read", func(w http.ResponseWriter, r *http.Request) {
		var req models.MarkReadRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.marked = append(f.marked, req)
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, `{"ok":true}`)
	})
	return r
}

type cliEnv struct {
	backend    *fakeBackend
	url        string
	configPath string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("WEALTHGO_DATA_DIR", filepath.Join(dir, "data"))
	t.Setenv("WEALTHGO_HISTORY", "")
	for _, key := range []string{"API_URL", "NEXT_PUBLIC_API_URL", "WEALTHGO_API_URL"} {
		t.Setenv(key, "")
	}

	fb := &fakeBackend{chatReply: `{"text":"Hello","meta":{"intent":"unknown"}}`}
	srv := httptest.NewServer(fb.router())
	t.Cleanup(srv.Close)
	return &cliEnv{backend: fb, url: srv.URL, configPath: filepath.Join(dir, "config.json")}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(bytes.NewReader(nil))
	cmd.SetArgs(append([]string{"--config", e.configPath, "--backend", e.url}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "WealthGo "+Version)
}

func TestConfigSetShowAndPath(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "config", "set", "client_id", "advisor-B")
	require.NoError(t, err)

	out, err := env.run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "advisor-B")
	assert.Contains(t, out, env.url)

	out, err = env.run(t, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, env.configPath)
}

func TestConfigSetRejectsInvalidValue(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "config", "set", "request_timeout_sec", "0")
	assert.Error(t, err)
	_, err = env.run(t, "config", "set", "no_such_key", "1")
	assert.Error(t, err)
}

func TestAskRendersReply(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "ask", "hi")
	require.NoError(t, err)
	assert.Contains(t, out, "Hello")
}

func TestAskRendersNewsEmptyState(t *testing.T) {
	env := newCLIEnv(t)
	env.backend.chatReply = `{"text":"","meta":{"intent":"news_lookup","entity":"Jane Doe","since_days":30,"articles":[]}}`
	out, err := env.run(t, "ask", "news", "about", "Jane", "Doe")
	require.NoError(t, err)
	assert.Contains(t, out, "No articles found")
}

func TestAskFailureShowsApology(t *testing.T) {
	env := newCLIEnv(t)
	env.backend.chatCode = http.StatusInternalServerError
	env.backend.chatReply = `{"detail":"boom"}`
	out, err := env.run(t, "ask", "hi")
	assert.Error(t, err)
	assert.Contains(t, out, "I apologize")
}

func TestHNWIAndArticles(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "hnwi")
	require.NoError(t, err)
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "John Roe")

	out, err = env.run(t, "articles")
	require.NoError(t, err)
	assert.Contains(t, out, "Articles for Jane Doe")
	assert.Contains(t, out, "Reuters")

	out, err = env.run(t, "articles", "John Roe")
	require.NoError(t, err)
	assert.Contains(t, out, "No articles found for John Roe")
}

func TestFinancialsList(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "financials", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "MSFT")
}

func TestFinancialsRejectsBadSymbol(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "financials", "A/B")
	assert.Error(t, err)
}

func TestInsightsCommand(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "insights")
	require.NoError(t, err)
	assert.Contains(t, out, "Sessions: 1")
	assert.Contains(t, out, "Jane Doe")

	out, err = env.run(t, "insights", "--session", "other")
	require.NoError(t, err)
	assert.Contains(t, out, "No insights available")
}

func TestClientsAndAlertsUseSampleData(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "clients", "--search", "sarah")
	require.NoError(t, err)
	assert.Contains(t, out, "Sarah Chen")
	assert.NotContains(t, out, "Marcus Weber")

	out, err = env.run(t, "clients", "--show", "marcus weber")
	require.NoError(t, err)
	assert.Contains(t, out, "Marcus Weber")
	assert.Contains(t, out, "Portfolio")

	out, err = env.run(t, "alerts", "--audit")
	require.NoError(t, err)
	assert.Contains(t, out, "Compliance Alerts")
	assert.Contains(t, out, "Audit Trail")
}

func TestNotificationsMarkRead(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "notifications", "--mark-read")
	require.NoError(t, err)
	assert.Contains(t, out, "New article on Jane Doe")
	assert.Contains(t, out, "Marked 2 notification(s) read")

	require.Len(t, env.backend.marked, 1)
	assert.Equal(t, "frontend-A", env.backend.marked[0].ClientID)
	assert.Equal(t, []string{"n1", "n2"}, env.backend.marked[0].IDs)
}

func TestSessionNewAndDelete(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "session", "new")
	require.NoError(t, err)
	assert.Contains(t, out, "sess-1")

	_, err = env.run(t, "session", "delete", "sess-1", "--yes")
	require.NoError(t, err)
	assert.Equal(t, []string{"sess-1"}, env.backend.deleted)
}

func TestHistoryDisabledByDefault(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "history is disabled")
}

func TestHistoryRecordsAsk(t *testing.T) {
	env := newCLIEnv(t)
	t.Setenv("WEALTHGO_HISTORY", "true")

	_, err := env.run(t, "ask", "hi")
	require.NoError(t, err)

	out, err := env.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "sess-1")
	assert.Contains(t, out, "hi")

	out, err = env.run(t, "history", "sess-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Hello")
}

func TestPlainChatSendsAndExits(t *testing.T) {
	env := newCLIEnv(t)
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(bytes.NewBufferString("hi\n/save\n/exit\n"))
	cmd.SetArgs([]string{"--config", env.configPath, "--backend", env.url, "chat", "--plain"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Hello")
	assert.Contains(t, out.String(), "No advisory is waiting for a decision")
	assert.Contains(t, out.String(), "Goodbye")
}
