package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manjaword/config"
	"manjaword/middleware"
	"manjaword/socket"
)

const testSecret = "test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type backend struct {
	t     *testing.T
	srv   *httptest.Server
	hub   *socket.Hub
	token string
	dir   string
}

func newBackend(t *testing.T, grammarURL string) *backend {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite"},
		Auth:     config.AuthConfig{SessionSecret: testSecret},
		Storage:  config.StorageConfig{DataDir: filepath.Join(dir, "data")},
		Grammar:  config.GrammarConfig{URL: grammarURL, Language: "en-US", Burst: 1},
		WebSocket: config.WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		CORS: config.CORSConfig{
			AllowedOrigins: "http://localhost:1420",
			AllowedMethods: "GET,POST,DELETE,OPTIONS",
			AllowedHeaders: "Content-Type,Authorization",
		},
	}

	hub := socket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	app, err := NewApp(cfg, hub)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })

	srv := httptest.NewServer(app.Handler(hub))
	t.Cleanup(srv.Close)

	token, err := middleware.IssueToken(testSecret, time.Hour)
	require.NoError(t, err)

	return &backend{t: t, srv: srv, hub: hub, token: token, dir: dir}
}

func (b *backend) do(method, path string, body any) (int, envelope) {
	b.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(b.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, b.srv.URL+path, &buf)
	require.NoError(b.t, err)
	req.Header.Set("Authorization", "Bearer "+b.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.srv.Client().Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(b.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func ops(text string) map[string]any {
	return map[string]any{"ops": []any{map[string]any{"insert": text}}}
}

func TestAPI_RequiresToken(t *testing.T) {
	b := newBackend(t, "http://127.0.0.1:1")

	resp, err := http.Get(b.srv.URL + "/api/documents/recover")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(b.srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_SaveOpenExportRecent(t *testing.T) {
	b := newBackend(t, "http://127.0.0.1:1")
	target := filepath.Join(b.dir, "letter")

	status, env := b.do(http.MethodPost, "/api/documents/save", map[string]any{
		"path":    target,
		"content": ops("Dear team\n\nThanks\n"),
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	var saved struct{ Path string }
	require.NoError(t, json.Unmarshal(env.Data, &saved))
	assert.Equal(t, target+".manjaword.json", saved.Path)

	status, env = b.do(http.MethodPost, "/api/documents/open", map[string]any{"path": saved.Path})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.JSONEq(t, `{"path":"`+saved.Path+`","content":{"ops":[{"insert":"Dear team\n\nThanks\n"}]}}`, string(env.Data))

	status, env = b.do(http.MethodPost, "/api/export/docx", map[string]any{
		"path":    filepath.Join(b.dir, "letter"),
		"content": ops("Dear team\n"),
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.FileExists(t, filepath.Join(b.dir, "letter.docx"))

	status, _ = b.do(http.MethodPost, "/api/export/odt", map[string]any{"content": ops("x")})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = b.do(http.MethodGet, "/api/documents/recent", nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	var recent []struct {
		Path string `json:"path"`
		Kind string `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &recent))
	require.Len(t, recent, 2)
	kinds := map[string]string{}
	for _, r := range recent {
		kinds[r.Path] = r.Kind
	}
	assert.Equal(t, "open", kinds[saved.Path])
	assert.Equal(t, "export_docx", kinds[filepath.Join(b.dir, "letter.docx")])
}

func TestAPI_ErrorStatuses(t *testing.T) {
	b := newBackend(t, "http://127.0.0.1:1")

	status, env := b.do(http.MethodPost, "/api/documents/open", map[string]any{"path": filepath.Join(b.dir, "notes.txt")})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)

	corrupt := filepath.Join(b.dir, "broken.manjaword.json")
	require.NoError(t, os.WriteFile(corrupt, []byte(`{"version":"1.0.0"`), 0o644))
	status, _ = b.do(http.MethodPost, "/api/documents/open", map[string]any{"path": corrupt})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	// No editor window is connected, so the dialog resolves as nothing chosen.
	status, _ = b.do(http.MethodPost, "/api/documents/open", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = b.do(http.MethodPost, "/api/grammar/check", map[string]any{"text": "Hello"})
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestAPI_AutosaveAndRecover(t *testing.T) {
	b := newBackend(t, "http://127.0.0.1:1")

	status, env := b.do(http.MethodGet, "/api/documents/recover", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"document":null}`, string(env.Data))

	status, _ = b.do(http.MethodPost, "/api/documents/autosave", map[string]any{"content": ops("draft\n")})
	require.Equal(t, http.StatusOK, status)

	status, env = b.do(http.MethodGet, "/api/documents/recover", nil)
	require.Equal(t, http.StatusOK, status)
	var rec struct {
		Document struct {
			Version string         `json:"version"`
			Content map[string]any `json:"content"`
		} `json:"document"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, "1.0.0", rec.Document.Version)
	assert.Equal(t, ops("draft\n"), rec.Document.Content)
}

func TestAPI_GrammarProxy(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"matches":[{"message":"Possible typo","offset":5,"length":2,"replacements":[{"value":"is"}]}]}`))
	}))
	defer upstream.Close()
	b := newBackend(t, upstream.URL)

	status, env := b.do(http.MethodPost, "/api/grammar/check", map[string]any{"text": "This iz fine"})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.JSONEq(t, `{"matches":[{"message":"Possible typo","offset":5,"length":2,"replacements":["is"]}]}`, string(env.Data))
}

func TestAPI_SaveThroughEditorDialog(t *testing.T) {
	b := newBackend(t, "http://127.0.0.1:1")

	wsURL := "ws" + strings.TrimPrefix(b.srv.URL, "http") + "/ws?token=" + b.token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return b.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	chosen := filepath.Join(b.dir, "picked")
	go func() {
		var msg socket.WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		assert.Equal(t, socket.PickSaveType, msg.Type)
		payload, _ := json.Marshal(socket.PickResult{Path: &chosen})
		conn.WriteJSON(socket.WSMessage{Type: socket.PickResultType, ID: msg.ID, Payload: payload})
	}()

	status, env := b.do(http.MethodPost, "/api/documents/save", map[string]any{"content": ops("hello\n")})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.JSONEq(t, `{"path":"`+chosen+`.manjaword.json"}`, string(env.Data))
	assert.FileExists(t, chosen+".manjaword.json")
}

func TestAPI_NullContentRoundTrips(t *testing.T) {
	b := newBackend(t, "http://127.0.0.1:1")
	target := filepath.Join(b.dir, "blank")

	status, env := b.do(http.MethodPost, "/api/documents/save", map[string]any{"path": target, "content": nil})
	require.Equal(t, http.StatusOK, status, env.Error)

	status, env = b.do(http.MethodPost, "/api/documents/open", map[string]any{"path": target + ".manjaword.json"})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.JSONEq(t, `{"path":"`+target+`.manjaword.json","content":null}`, string(env.Data))

	status, env = b.do(http.MethodPost, "/api/documents/autosave", map[string]any{"content": nil})
	require.Equal(t, http.StatusOK, status, env.Error)

	status, env = b.do(http.MethodPost, "/api/export/pdf", map[string]any{"path": target, "content": nil})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.FileExists(t, target+".pdf")

	// A missing key is still rejected.
	status, _ = b.do(http.MethodPost, "/api/documents/save", map[string]any{"path": target})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = b.do(http.MethodPost, "/api/documents/autosave", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_ForgetRecentDocument(t *testing.T) {
	b := newBackend(t, "http://127.0.0.1:1")
	saved := filepath.Join(b.dir, "keep.manjaword.json")

	status, env := b.do(http.MethodPost, "/api/documents/save", map[string]any{"path": saved, "content": ops("x\n")})
	require.Equal(t, http.StatusOK, status, env.Error)

	status, _ = b.do(http.MethodDelete, "/api/documents/recent", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = b.do(http.MethodDelete, "/api/documents/recent?path="+url.QueryEscape(saved), nil)
	require.Equal(t, http.StatusOK, status, env.Error)

	status, env = b.do(http.MethodGet, "/api/documents/recent", nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.JSONEq(t, `[]`, string(env.Data))
	assert.FileExists(t, saved)
}

func TestAPI_OpeningDeletedDocumentForgetsIt(t *testing.T) {
	b := newBackend(t, "http://127.0.0.1:1")
	saved := filepath.Join(b.dir, "gone.manjaword.json")

	status, env := b.do(http.MethodPost, "/api/documents/save", map[string]any{"path": saved, "content": ops("x\n")})
	require.Equal(t, http.StatusOK, status, env.Error)
	require.NoError(t, os.Remove(saved))

	status, _ = b.do(http.MethodPost, "/api/documents/open", map[string]any{"path": saved})
	assert.Equal(t, http.StatusInternalServerError, status)

	_, env = b.do(http.MethodGet, "/api/documents/recent", nil)
	assert.JSONEq(t, `[]`, string(env.Data))
}
