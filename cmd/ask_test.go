package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestAskPrintsTranscript(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ask", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"Acme Traders"}`))
	}))
	defer srv.Close()

	stdout, _, err := runCLI(t, "ask", "--server", srv.URL, "who", "is", "the", "seller?")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"question": "who is the seller?"}, got)
	assert.Equal(t, "User: who is the seller?\nAssistant: Acme Traders\n", stdout)
}

func TestAskLogsFailureToStderr(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	stdout, stderr, err := runCLI(t, "ask", "--server", srv.URL, "total?")
	require.NoError(t, err)

	assert.Equal(t, "User: total?\n", stdout)
	assert.Contains(t, stderr, "Error:")
}

func TestAskRequiresQuestion(t *testing.T) {
	_, _, err := runCLI(t, "ask")
	assert.Error(t, err)
}

func TestServeRejectsMissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	_, _, err := runCLI(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}
