package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sushihentaime/voidfusion/internal/authservice"
	"github.com/sushihentaime/voidfusion/internal/config"
	"github.com/sushihentaime/voidfusion/internal/poststore"
)

const (
	testAdminEmail = "admin@example.com"
	testJWTSecret  = "test-secret-0123456789"
	testJWTIssuer  = "https://id.example.com"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Port:             "4000",
		Environment:      "development",
		Version:          "test",
		TrustedOrigins:   []string{"http://example.com"},
		RequestTimeout:   5 * time.Second,
		AllowedEmails:    []string{testAdminEmail},
		JWTSecret:        testJWTSecret,
		JWTIssuer:        testJWTIssuer,
		StoreBackend:     config.BackendFS,
		StoreNamespace:   "posts",
		EventualCacheTTL: 50 * time.Millisecond,
		PostsDir:         filepath.Join(t.TempDir(), "posts"),
	}
}

// newTestApplication wires the application to a filesystem store in a temporary directory.
func newTestApplication(t *testing.T) (*application, *poststore.FSBucket) {
	t.Helper()

	cfg := testConfig(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	bucket, err := poststore.NewFSBucket(cfg.PostsDir)
	require.NoError(t, err)

	return newApplication(cfg, logger, bucket, poststore.FrontmatterCodec{}), bucket
}

func issueToken(t *testing.T, email string) *string {
	t.Helper()

	token, err := authservice.NewTokenIssuer(testJWTSecret, testJWTIssuer, "").Issue(email, time.Hour)
	require.NoError(t, err)
	return &token
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, string) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	return res.StatusCode, res.Header, string(responseBody)
}

func (ts *testServer) do(t *testing.T, method, path string, token *string, payload any) (int, http.Header, string) {
	var body io.Reader
	if payload != nil {
		jsonPayload, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) post(t *testing.T, path string, token *string, payload any) (int, http.Header, string) {
	return ts.do(t, http.MethodPost, path, token, payload)
}

func (ts *testServer) get(t *testing.T, path string, token *string) (int, http.Header, string) {
	return ts.do(t, http.MethodGet, path, token, nil)
}

func (ts *testServer) put(t *testing.T, path string, token *string, payload any) (int, http.Header, string) {
	return ts.do(t, http.MethodPut, path, token, payload)
}

func (ts *testServer) delete(t *testing.T, path string, token *string) (int, http.Header, string) {
	return ts.do(t, http.MethodDelete, path, token, nil)
}

func decodePost(t *testing.T, body string) poststore.Post {
	t.Helper()

	var p poststore.Post
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	return p
}

func decodePosts(t *testing.T, body string) []poststore.Post {
	t.Helper()

	var posts []poststore.Post
	require.NoError(t, json.Unmarshal([]byte(body), &posts))
	return posts
}

func marshalJSON(t *testing.T, v any) string {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func strptr(s string) *string {
	return &s
}
