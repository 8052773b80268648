package auth_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/tkrm/internal/auth"
)

func TestDevProvider(t *testing.T) {
	cred, err := auth.DevProvider{}.Credential(context.Background(), "  ada@example.com ", nil)
	require.NoError(t, err)
	assert.Equal(t, "dev:ada@example.com", cred)

	_, err = auth.DevProvider{}.Credential(context.Background(), " ", nil)
	assert.Error(t, err)
}

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return strconv.Itoa(port)
}

func writeSecrets(t *testing.T, tokenURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	body := fmt.Sprintf(`{"installed":{
		"client_id":"cid","client_secret":"secret",
		"auth_uri":"https://accounts.example.com/auth",
		"token_uri":%q,
		"redirect_uris":["urn:ietf:wg:oauth:2.0:oob"]}}`, tokenURL)
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestGoogleProvider_LoopbackFlow(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"at","token_type":"Bearer","expires_in":3600,"id_token":"the-id-token"}`)
	}))
	defer tokenServer.Close()

	port := freePort(t)
	provider, err := auth.NewGoogleProvider(writeSecrets(t, tokenServer.URL), port)
	require.NoError(t, err)
	assert.Equal(t, "localhost:"+port, provider.RedirectURL().Host)

	urls := make(chan string, 1)
	type result struct {
		cred string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		cred, err := provider.Credential(context.Background(), "ada@example.com", func(u string) { urls <- u })
		done <- result{cred, err}
	}()

	var authURL *url.URL
	select {
	case raw := <-urls:
		authURL, err = url.Parse(raw)
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("no authorization URL")
	}
	q := authURL.Query()
	assert.Equal(t, "ada@example.com", q.Get("login_hint"))

	bad, err := http.Get(fmt.Sprintf("http://localhost:%s/oauth2callback?state=wrong&code=x", port))
	require.NoError(t, err)
	bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)

	resp, err := http.Get(fmt.Sprintf("http://localhost:%s/oauth2callback?state=%s&code=the-code", port, url.QueryEscape(q.Get("state"))))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, "the-id-token", r.cred)
	case <-time.After(5 * time.Second):
		t.Fatal("credential flow did not finish")
	}
}

func TestGoogleProvider_ContextCancel(t *testing.T) {
	provider, err := auth.NewGoogleProvider(writeSecrets(t, "http://127.0.0.1:1/token"), freePort(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	_, err = provider.Credential(ctx, "", func(string) { cancel() })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewGoogleProvider_MissingFile(t *testing.T) {
	_, err := auth.NewGoogleProvider(filepath.Join(t.TempDir(), "none.json"), "6789")
	assert.Error(t, err)
}
