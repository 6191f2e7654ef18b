package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// SourcePost is a post as returned by the external source, before storage.
type SourcePost struct {
	ExternalID  string // Reddit fullname, e.g. "t3_abc123"
	Title       string
	Body        string
	Author      string
	Subreddit   string
	Permalink   string
	URL         string
	CreatedUTC  time.Time
	Score       int
	NumComments int
	NSFW        bool
}

// Client fetches new posts from Reddit's public JSON listing API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

func NewClient(baseURL, userAgent string) *Client {
	if baseURL == "" {
		baseURL = "https://www.reddit.com"
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type listing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data struct {
				Name        string  `json:"name"`
				Title       string  `json:"title"`
				SelfText    string  `json:"selftext"`
				Author      string  `json:"author"`
				Subreddit   string  `json:"subreddit"`
				Permalink   string  `json:"permalink"`
				URL         string  `json:"url"`
				CreatedUTC  float64 `json:"created_utc"`
				Score       int     `json:"score"`
				NumComments int     `json:"num_comments"`
				Over18      bool    `json:"over_18"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

const maxPages = 10

// FetchNew returns posts in /r/<subreddit>/new created strictly after the given
// boundary, newest first. Pagination stops as soon as a page crosses the
// boundary or the listing is exhausted.
func (c *Client) FetchNew(ctx context.Context, subreddit string, after time.Time) ([]SourcePost, error) {
	var posts []SourcePost
	cursor := ""

	for page := 0; page < maxPages; page++ {
		l, err := c.fetchPage(ctx, subreddit, cursor)
		if err != nil {
			return nil, err
		}
		if len(l.Data.Children) == 0 {
			break
		}

		crossed := false
		for _, child := range l.Data.Children {
			created := time.Unix(int64(child.Data.CreatedUTC), 0).UTC()
			if !created.After(after) {
				crossed = true
				break
			}
			posts = append(posts, SourcePost{
				ExternalID:  child.Data.Name,
				Title:       child.Data.Title,
				Body:        child.Data.SelfText,
				Author:      child.Data.Author,
				Subreddit:   child.Data.Subreddit,
				Permalink:   child.Data.Permalink,
				URL:         child.Data.URL,
				CreatedUTC:  created,
				Score:       child.Data.Score,
				NumComments: child.Data.NumComments,
				NSFW:        child.Data.Over18,
			})
		}

		if crossed || l.Data.After == "" {
			break
		}
		cursor = l.Data.After
	}

	return posts, nil
}

func (c *Client) fetchPage(ctx context.Context, subreddit, cursor string) (*listing, error) {
	q := url.Values{}
	q.Set("limit", "100")
	q.Set("raw_json", "1")
	if cursor != "" {
		q.Set("after", cursor)
	}
	reqURL := fmt.Sprintf("%s/r/%s/new.json?%s", c.baseURL, url.PathEscape(subreddit), q.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reddit request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit API error for r/%s: status %d", subreddit, resp.StatusCode)
	}

	var l listing
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}
	return &l, nil
}
