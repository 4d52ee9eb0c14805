// Package ghost talks to a Ghost CMS that hosts recipes as posts.
package ghost

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"meal-planner/internal/config"
)

const (
	contentPostsPath = "/ghost/api/v3/content/posts/"
	adminPostsPath   = "/ghost/api/v3/admin/posts/"
	pageSize         = 50
)

// Tag is a Ghost tag attached to a post.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Post represents a single recipe post from the Ghost API.
type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	HTML      string `json:"html"`
	Excerpt   string `json:"custom_excerpt,omitempty"`
	Tags      []Tag  `json:"tags,omitempty"`
	Status    string `json:"status,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

type pagination struct {
	Page  int  `json:"page"`
	Pages int  `json:"pages"`
	Next  *int `json:"next"`
}

// PostsResponse is the top-level structure of the Ghost API response for posts.
type PostsResponse struct {
	Posts []Post `json:"posts"`
	Meta  struct {
		Pagination pagination `json:"pagination"`
	} `json:"meta"`
}

// Client is a Ghost API client (Content & Admin).
type Client struct {
	http       *resty.Client
	contentKey string
	adminKey   string
}

// NewClient creates a new Ghost API client. When no content key is set,
// reads go through the Admin API instead.
func NewClient(cfg *config.Config) *Client {
	timeout := cfg.CatalogTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(cfg.GhostURL, "/")).
			SetHeader("Accept", "application/json").
			SetTimeout(timeout),
		contentKey: cfg.GhostContentKey,
		adminKey:   cfg.GhostAdminKey,
	}
}

// FetchPosts returns every post carrying tag, following pagination. An empty
// tag returns all posts.
func (c *Client) FetchPosts(ctx context.Context, tag string) ([]Post, error) {
	var all []Post
	for page := 1; ; page++ {
		resp, err := c.fetchPage(ctx, tag, page)
		if err != nil {
			return nil, err
		}
		all = append(all, resp.Posts...)
		if resp.Meta.Pagination.Next == nil || len(resp.Posts) == 0 {
			return all, nil
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, tag string, page int) (*PostsResponse, error) {
	params := map[string]string{
		"include": "tags",
		"formats": "html",
		"limit":   fmt.Sprint(pageSize),
		"page":    fmt.Sprint(page),
	}
	if tag != "" {
		params["filter"] = "tag:" + tag
	}

	var result PostsResponse
	req := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&result)

	path := contentPostsPath
	if c.contentKey != "" {
		req.SetQueryParam("key", c.contentKey)
	} else {
		token, err := c.createAdminToken()
		if err != nil {
			return nil, fmt.Errorf("failed to create admin token: %w", err)
		}
		req.SetHeader("Authorization", "Ghost "+token)
		path = adminPostsPath
	}

	resp, err := req.Get(path)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("ghost api error: status %d", resp.StatusCode())
	}
	return &result, nil
}

// CreatePost creates a new post using the Ghost Admin API.
func (c *Client) CreatePost(ctx context.Context, title, html string, tags []string, publish bool) (*Post, error) {
	token, err := c.createAdminToken()
	if err != nil {
		return nil, fmt.Errorf("failed to create admin token: %w", err)
	}

	status := "draft"
	if publish {
		status = "published"
	}

	post := map[string]any{
		"title":  title,
		"html":   html,
		"status": status,
	}
	if len(tags) > 0 {
		post["tags"] = tags
	}

	var result PostsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Ghost "+token).
		SetQueryParam("source", "html").
		SetBody(map[string]any{"posts": []map[string]any{post}}).
		SetResult(&result).
		Post(adminPostsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("admin api error: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	if len(result.Posts) == 0 {
		return nil, fmt.Errorf("no post returned from api")
	}
	return &result.Posts[0], nil
}

// createAdminToken generates a short-lived JWT for the Admin API.
func (c *Client) createAdminToken() (string, error) {
	keyParts := strings.Split(c.adminKey, ":")
	if len(keyParts) != 2 {
		return "", fmt.Errorf("invalid admin key format: expected id:secret")
	}

	secret, err := hex.DecodeString(keyParts[1])
	if err != nil {
		return "", fmt.Errorf("failed to decode secret hex: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(5 * time.Minute).Unix(),
		"aud": "/v3/admin/",
	})
	token.Header["kid"] = keyParts[0]

	return token.SignedString(secret)
}
