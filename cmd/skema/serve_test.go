package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/skema"
	"github.com/reoring/skema/schemafile"
)

func loadFrom(path string) func() (skema.AnyType, error) {
	return func() (skema.AnyType, error) { return schemafile.LoadFile(path) }
}

func newTestHolder(t *testing.T, body string) (*schemaHolder, string) {
	t.Helper()
	path := writeFile(t, t.TempDir(), "schema.yaml", body)
	h, err := newSchemaHolder(path, loadFrom(path), zerolog.Nop())
	require.NoError(t, err)
	return h, path
}

func send(t *testing.T, h http.Handler, method, path, ct, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code, rec.Body.String()
}

func decodeBody(t *testing.T, body string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, gojson.Unmarshal([]byte(body), &out), body)
	return out
}

func TestServeHandler(t *testing.T) {
	holder, _ := newTestHolder(t, userSchema)
	var logs bytes.Buffer
	m := newServeMetrics()
	h := newServeHandler(holder, serveFlags{maxBytes: 1 << 10}, zerolog.New(&logs).Level(zerolog.DebugLevel), m)

	code, body := send(t, h, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", decodeBody(t, body)["status"])

	code, body = send(t, h, http.MethodPost, "/validate", "application/json", `{"name":"Reo","age":30}`)
	assert.Equal(t, http.StatusOK, code)
	out := decodeBody(t, body)
	assert.Equal(t, true, out["valid"])
	assert.Equal(t, "Reo", out["data"].(map[string]any)["name"])

	code, body = send(t, h, http.MethodPost, "/validate", "text/yaml", "name: R\n")
	assert.Equal(t, http.StatusBadRequest, code)
	iss := decodeBody(t, body)["issues"].([]any)
	assert.Equal(t, "/name", iss[0].(map[string]any)["path"])

	code, body = send(t, h, http.MethodPost, "/validate", "application/json", `{"name":"Reo","name":"Ren"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "duplicate_key", decodeBody(t, body)["issues"].([]any)[0].(map[string]any)["code"])

	code, body = send(t, h, http.MethodGet, "/schema", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "object", decodeBody(t, body)["type"])

	code, body = send(t, h, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `skema_validations_total{result="valid"} 1`)
	assert.Contains(t, body, `skema_validations_total{result="invalid"} 2`)
	assert.Contains(t, body, "skema_validation_duration_seconds_count 3")

	assert.Contains(t, logs.String(), `"path":"/validate"`)
	assert.NotContains(t, logs.String(), "/healthz")
	assert.NotContains(t, logs.String(), `"path":"/metrics"`)
}

func TestServeHandler_AllowDuplicateKeys(t *testing.T) {
	holder, _ := newTestHolder(t, userSchema)
	h := newServeHandler(holder, serveFlags{allowDup: true}, zerolog.Nop(), newServeMetrics())
	code, body := send(t, h, http.MethodPost, "/validate", "", `{"name":"Reo","name":"Ren"}`)
	assert.Equal(t, http.StatusOK, code, body)
}

func TestSchemaHolder_Reload(t *testing.T) {
	holder, path := newTestHolder(t, userSchema)
	m := newServeMetrics()
	holder.onReload = m.observeReload
	h := newServeHandler(holder, serveFlags{}, zerolog.Nop(), m)

	code, _ := send(t, h, http.MethodPost, "/validate", "", `{"name":"Reo","age":200}`)
	assert.Equal(t, http.StatusBadRequest, code)

	require.NoError(t, os.WriteFile(path, []byte("type: object\nproperties:\n  name: {type: string}\n"), 0o600))
	require.NoError(t, holder.Reload())
	code, body := send(t, h, http.MethodPost, "/validate", "", `{"name":"Reo","age":200}`)
	assert.Equal(t, http.StatusOK, code, body)

	// a broken schema keeps the previous one
	require.NoError(t, os.WriteFile(path, []byte("type: nope\n"), 0o600))
	assert.Error(t, holder.Reload())
	code, _ = send(t, h, http.MethodPost, "/validate", "", `{"name":"Reo"}`)
	assert.Equal(t, http.StatusOK, code)

	_, body = send(t, h, http.MethodGet, "/metrics", "", "")
	assert.Contains(t, body, `skema_schema_reloads_total{result="ok"} 1`)
	assert.Contains(t, body, `skema_schema_reloads_total{result="error"} 1`)
}

func TestSchemaHolder_Watch(t *testing.T) {
	holder, path := newTestHolder(t, userSchema)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, holder.Watch(ctx))

	require.NoError(t, os.WriteFile(path, []byte("type: object\nproperties:\n  id: {type: number}\n"), 0o600))
	require.Eventually(t, func() bool {
		s, err := holder.Get().JSONSchema()
		if err != nil {
			return false
		}
		_, ok := s.Properties["id"]
		return ok
	}, 5*time.Second, 20*time.Millisecond)

	// unrelated files in the directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.yaml"), []byte("type: nope\n"), 0o600))
	time.Sleep(50 * time.Millisecond)
	s, err := holder.Get().JSONSchema()
	require.NoError(t, err)
	assert.Contains(t, s.Properties, "id")
}

func TestNewSchemaHolder_Error(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "type: nope\n")
	_, err := newSchemaHolder(path, loadFrom(path), zerolog.New(io.Discard))
	assert.Error(t, err)
}
