package reddit

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listingJSON(after string, posts ...string) string {
	children := ""
	for i, p := range posts {
		if i > 0 {
			children += ","
		}
		children += p
	}
	return fmt.Sprintf(`{"data": {"after": %q, "children": [%s]}}`, after, children)
}

func postJSON(name, title string, createdUTC int64) string {
	return fmt.Sprintf(`{"data": {
		"name": %q, "title": %q, "selftext": "body text", "author": "someone",
		"subreddit": "golang", "permalink": "/r/golang/comments/x", "url": "https://example.com",
		"created_utc": %d, "score": 5, "num_comments": 2, "over_18": false
	}}`, name, title, createdUTC)
}

func TestFetchNew_StopsAtBoundary(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	boundary := now.Add(-1 * time.Hour)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/golang/new.json", r.URL.Path)
		w.Write([]byte(listingJSON("t3_c",
			postJSON("t3_a", "newest", now.Unix()),
			postJSON("t3_b", "recent", now.Add(-30*time.Minute).Unix()),
			postJSON("t3_c", "too old", now.Add(-2*time.Hour).Unix()),
		)))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "subwatch-test")
	posts, err := client.FetchNew(context.Background(), "golang", boundary)
	require.NoError(t, err)

	require.Len(t, posts, 2)
	assert.Equal(t, "t3_a", posts[0].ExternalID)
	assert.Equal(t, "t3_b", posts[1].ExternalID)
	assert.Equal(t, "golang", posts[0].Subreddit)
	assert.Equal(t, "body text", posts[0].Body)
}

func TestFetchNew_Paginates(t *testing.T) {
	now := time.Now().UTC()
	calls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch r.URL.Query().Get("after") {
		case "":
			w.Write([]byte(listingJSON("t3_b", postJSON("t3_a", "page one", now.Unix()))))
		case "t3_b":
			w.Write([]byte(listingJSON("", postJSON("t3_b", "page two", now.Add(-time.Minute).Unix()))))
		default:
			t.Fatalf("unexpected cursor %q", r.URL.Query().Get("after"))
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "subwatch-test")
	posts, err := client.FetchNew(context.Background(), "golang", now.Add(-time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	require.Len(t, posts, 2)
	assert.Equal(t, "t3_b", posts[1].ExternalID)
}

func TestFetchNew_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "subwatch-test")
	_, err := client.FetchNew(context.Background(), "golang", time.Now().Add(-time.Hour))
	assert.Error(t, err)
}
