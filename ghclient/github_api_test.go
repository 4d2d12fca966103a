package ghclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-github/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Client, *http.ServeMux) {
	t.Helper()
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	gh := github.NewClient(nil)
	u, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	gh.BaseURL = u
	gh.UploadURL = u
	return NewWithClient(gh, "dhleong", "judo"), mux
}

func TestClosedIssuesSincePaginates(t *testing.T) {
	c, mux := setup(t)
	since := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mux.HandleFunc("/repos/dhleong/judo/issues", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "closed", q.Get("state"))
		assert.Equal(t, "2026-03-01T12:00:00Z", q.Get("since"))
		switch q.Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s?page=2>; rel="next"`, "http://"+r.Host+r.URL.Path))
			fmt.Fprint(w, `[{"number":1,"title":"Crash","labels":[{"name":"bug"}],"user":{"login":"alice"}}]`)
		case "2":
			fmt.Fprint(w, `[{"number":2,"title":"Merge","labels":[],"pull_request":{"url":"x"}}]`)
		default:
			t.Errorf("unexpected page %q", q.Get("page"))
		}
	})

	issues, err := c.ClosedIssuesSince(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, 1, issues[0].Number)
	assert.Equal(t, []string{"bug"}, issues[0].Labels)
	assert.Equal(t, "alice", issues[0].User.Login)
	assert.False(t, issues[0].PullRequest)
	assert.True(t, issues[1].PullRequest)
}

func TestCreateReleaseAndUpload(t *testing.T) {
	c, mux := setup(t)
	var uploadURL string

	mux.HandleFunc("/repos/dhleong/judo/releases", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "1.3.0", body["tag_name"])
		assert.Equal(t, "**Bug Fixes**:\n- x (#1)", body["body"])
		fmt.Fprintf(w, `{"id":1,"tag_name":"1.3.0","upload_url":%q}`, uploadURL)
	})
	mux.HandleFunc("/repos/dhleong/judo/releases/1/assets", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "judo-1.3.0.jar", r.URL.Query().Get("name"))
		assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
		data, _ := io.ReadAll(r.Body)
		assert.Equal(t, "jar bytes", string(data))
		fmt.Fprint(w, `{"id":9,"name":"judo-1.3.0.jar"}`)
	})
	uploadURL = c.c.BaseURL.String() + "repos/dhleong/judo/releases/1/assets{?name,label}"

	rel, err := c.CreateRelease(context.Background(), "1.3.0", "**Bug Fixes**:\n- x (#1)")
	require.NoError(t, err)
	assert.Equal(t, "1.3.0", rel.TagName)

	path := filepath.Join(t.TempDir(), "judo-1.3.0.jar")
	require.NoError(t, os.WriteFile(path, []byte("jar bytes"), 0o644))
	require.NoError(t, c.UploadAsset(context.Background(), rel, path, "application/octet-stream"))
}

func TestUploadAssetMissingFile(t *testing.T) {
	c, _ := setup(t)
	err := c.UploadAsset(context.Background(), &Release{UploadURL: "http://x/assets{?name}"}, "/does/not/exist.jar", "application/octet-stream")
	assert.Error(t, err)
}

func TestGetAndUpdateFile(t *testing.T) {
	c, mux := setup(t)
	formula := "class Judo < Formula\n  url \"http://old\"\n  sha256 \"deadbeef\"\nend\n"

	mux.HandleFunc("/repos/dhleong/homebrew-tap/contents/judo.rb", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			fmt.Fprintf(w, `{"type":"file","encoding":"base64","sha":"abc123","content":%q}`,
				base64.StdEncoding.EncodeToString([]byte(formula)))
		case http.MethodPut:
			var body struct {
				Message string `json:"message"`
				Content string `json:"content"`
				SHA     string `json:"sha"`
				Branch  string `json:"branch"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Update for v1.3.0", body.Message)
			assert.Equal(t, "abc123", body.SHA)
			assert.Equal(t, "main", body.Branch)
			decoded, err := base64.StdEncoding.DecodeString(body.Content)
			require.NoError(t, err)
			assert.Equal(t, "new content", string(decoded))
			fmt.Fprint(w, `{"content":{"sha":"def456"},"commit":{"sha":"c0ffee"}}`)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})

	tap := c.ForRepo("dhleong", "homebrew-tap")
	content, sha, err := tap.GetFile(context.Background(), "judo.rb", "")
	require.NoError(t, err)
	assert.Equal(t, formula, content)
	assert.Equal(t, "abc123", sha)

	require.NoError(t, tap.UpdateFile(context.Background(), "judo.rb", "main", "new content", sha, "Update for v1.3.0"))
}

func TestNewHTTPClient(t *testing.T) {
	assert.Nil(t, NewHTTPClient(context.Background(), ""))
	assert.NotNil(t, NewHTTPClient(context.Background(), "token"))
}
