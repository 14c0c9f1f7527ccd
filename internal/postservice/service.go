// Package postservice answers queries about posts for the API and MCP layers.
package postservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/termblog/internal/catalog"
	"github.com/starford/termblog/internal/index"
	"github.com/starford/termblog/internal/models"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
	snippetRadius      = 60
)

// PostListItem is a lightweight item in a list response.
type PostListItem struct {
	Slug      string   `json:"slug" example:"building-a-blog"`
	Path      string   `json:"path" example:"/posts/2016/04/11-building-a-blog.md"`
	Title     string   `json:"title" example:"Building a blog"`
	Date      string   `json:"date" example:"2016-04-11"`
	Tags      []string `json:"tags"`
	Excerpt   string   `json:"excerpt,omitempty"`
	WordCount int      `json:"word_count" example:"1200"`
	// URL opens the post in the browser terminal.
	URL string `json:"url" example:"/post/building-a-blog"`
}

// PostDetail is a post with its normalized content.
type PostDetail struct {
	PostListItem
	Content string            `json:"content"`
	Images  map[string]string `json:"images"`
}

// Service exposes the current catalog and the search index.
type Service struct {
	lib    *catalog.Library
	db     index.PostIndex
	onLoad catalog.ReloadFunc
}

// Option configures a Service.
type Option func(*Service)

// WithIndex enables ranked search through the SQLite index. Without it,
// search scans the catalog.
func WithIndex(db index.PostIndex) Option {
	return func(s *Service) { s.db = db }
}

// WithReloadHook is called after every forced reload, as the watcher
// does after a change on disk.
func WithReloadHook(fn catalog.ReloadFunc) Option {
	return func(s *Service) { s.onLoad = fn }
}

// NewService creates a new API service.
func NewService(lib *catalog.Library, opts ...Option) *Service {
	s := &Service{lib: lib}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ListPosts returns every post, newest first, optionally filtered by tag.
func (s *Service) ListPosts(_ context.Context, tag string) []PostListItem {
	c := s.lib.Current()
	items := []PostListItem{}
	for _, e := range c.Posts() {
		if tag != "" && !hasTag(e, tag) {
			continue
		}
		items = append(items, listItem(e))
	}
	return items
}

// GetPost returns a post with its normalized content.
func (s *Service) GetPost(_ context.Context, slug string) (*PostDetail, error) {
	c := s.lib.Current()
	p, err := c.Post(slug)
	if err != nil {
		return nil, err
	}
	e := c.FindBySlug(slug)
	images := p.Images
	if images == nil {
		images = map[string]string{}
	}
	return &PostDetail{
		PostListItem: listItem(*e),
		Content:      p.Content,
		Images:       images,
	}, nil
}

// Tags returns the tag counts of the current catalog.
func (s *Service) Tags(_ context.Context) []catalog.TagCount {
	return s.lib.Current().Tags()
}

// Search looks up posts matching q.
func (s *Service) Search(_ context.Context, q string, limit int) ([]index.SearchResult, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)
	if s.db != nil {
		res, err := s.db.Search(q, limit)
		if err != nil {
			return nil, fmt.Errorf("postservice: search: %w", err)
		}
		if res == nil {
			res = []index.SearchResult{}
		}
		return res, nil
	}
	return scan(s.lib.Current(), q, limit)
}

// Reload rebuilds the catalog from disk.
func (s *Service) Reload(_ context.Context) (int, error) {
	c, err := s.lib.Reload()
	if s.onLoad != nil {
		s.onLoad(c, nil, err)
	}
	if err != nil {
		return 0, err
	}
	return len(c.Posts()), nil
}

func listItem(e models.Entry) PostListItem {
	tags := e.Meta.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostListItem{
		Slug:      e.Slug,
		Path:      e.Path,
		Title:     e.Meta.Title,
		Date:      e.Meta.Date,
		Tags:      tags,
		Excerpt:   e.Meta.Excerpt,
		WordCount: e.Meta.WordCount,
		URL:       "/post/" + e.Slug,
	}
}

func hasTag(e models.Entry, tag string) bool {
	for _, t := range e.Meta.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// scan is the search used when no index is configured: a case-insensitive
// substring match on title and content.
func scan(c *catalog.Catalog, q string, limit int) ([]index.SearchResult, error) {
	needle := strings.ToLower(q)
	out := []index.SearchResult{}
	for _, e := range c.Posts() {
		if len(out) >= limit {
			break
		}
		p, err := c.ReadPost(e)
		if err != nil {
			return nil, fmt.Errorf("postservice: search: %w", err)
		}
		titleHit := strings.Contains(strings.ToLower(p.Title), needle)
		i := strings.Index(strings.ToLower(p.Content), needle)
		if !titleHit && i < 0 {
			continue
		}
		out = append(out, index.SearchResult{
			Slug:    e.Slug,
			Path:    e.Path,
			Title:   p.Title,
			Snippet: snippet(p.Content, i, len(needle)),
		})
	}
	return out, nil
}

func snippet(content string, at, n int) string {
	if at < 0 {
		at, n = 0, 0
	}
	start := max(at-snippetRadius, 0)
	end := min(at+n+snippetRadius, len(content))
	// Stay on rune boundaries.
	for start > 0 && !isRuneStart(content[start]) {
		start--
	}
	for end < len(content) && !isRuneStart(content[end]) {
		end++
	}
	s := strings.Join(strings.Fields(content[start:end]), " ")
	if start > 0 {
		s = "..." + s
	}
	if end < len(content) {
		s += "..."
	}
	return s
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
