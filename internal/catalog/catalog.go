// Package catalog builds the post inventory from the content directory and
// keeps it current.
package catalog

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/starford/termblog/internal/apperr"
	"github.com/starford/termblog/internal/models"
	"github.com/starford/termblog/internal/parser"
	"github.com/starford/termblog/internal/storage"
	"github.com/starford/termblog/internal/vfs"
)

// PostsDir is the content subdirectory holding posts.
const PostsDir = "posts"

const sidecarSuffix = ".meta.yaml"

// ImageExts are the image extensions served and attached to posts.
var ImageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg"}

// Catalog is an immutable snapshot of the content directory.
type Catalog struct {
	store    storage.Provider
	mediaURL string
	fs       *vfs.FS
	images   []string // content-relative image paths
}

// Build reads every post and sidecar under PostsDir. Any malformed file or
// duplicate slug fails the whole build.
func Build(store storage.Provider, mediaURL string) (*Catalog, error) {
	files, err := store.List(PostsDir)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	present := make(map[string]struct{}, len(files))
	for _, f := range files {
		present[f.Path] = struct{}{}
	}

	var (
		entries []models.Entry
		images  []string
		slugs   = make(map[string]string)
	)
	add := func(e models.Entry) error {
		if prev, ok := slugs[e.Slug]; ok {
			return fmt.Errorf("catalog: %w: %q in %s and %s", apperr.ErrDuplicate, e.Slug, prev, e.Path)
		}
		slugs[e.Slug] = e.Path
		entries = append(entries, e)
		return nil
	}

	for _, f := range files {
		name := path.Base(f.Path)
		switch {
		case strings.HasSuffix(name, ".md"):
			e, err := markdownEntry(store, f)
			if err != nil {
				return nil, err
			}
			if err := add(e); err != nil {
				return nil, err
			}
		case strings.HasPrefix(name, ".") && strings.HasSuffix(name, sidecarSuffix):
			target := path.Join(path.Dir(f.Path), strings.TrimSuffix(name[1:], sidecarSuffix))
			if _, ok := present[target]; !ok || strings.HasSuffix(target, ".md") {
				continue
			}
			e, err := sidecarEntry(store, f, target)
			if err != nil {
				return nil, err
			}
			if err := add(e); err != nil {
				return nil, err
			}
		case IsImage(name):
			images = append(images, f.Path)
		}
	}

	sort.Strings(images)
	return &Catalog{
		store:    store,
		mediaURL: strings.TrimSuffix(mediaURL, "/"),
		fs:       vfs.New(entries),
		images:   images,
	}, nil
}

func markdownEntry(store storage.Provider, f storage.File) (models.Entry, error) {
	data, err := store.Read(f.Path)
	if err != nil {
		return models.Entry{}, fmt.Errorf("catalog: %w", err)
	}
	res, err := parser.Parse(data)
	if err != nil {
		return models.Entry{}, fmt.Errorf("catalog: %s: %w", f.Path, err)
	}
	e, err := newEntry(f, res.Frontmatter)
	if err != nil {
		return models.Entry{}, err
	}
	e.Meta.WordCount = res.WordCount
	return e, nil
}

func sidecarEntry(store storage.Provider, f storage.File, target string) (models.Entry, error) {
	data, err := store.Read(f.Path)
	if err != nil {
		return models.Entry{}, fmt.Errorf("catalog: %w", err)
	}
	fm, err := parser.ParseSidecar(data)
	if err != nil {
		return models.Entry{}, fmt.Errorf("catalog: %s: %w", f.Path, err)
	}
	return newEntry(storage.File{Path: target, Checksum: f.Checksum}, fm)
}

func newEntry(f storage.File, fm parser.Frontmatter) (models.Entry, error) {
	p := "/" + f.Path
	date := fm.Date
	if date == "" {
		date = parser.DateFromPath(p)
	}
	if err := parser.ValidateDate(date); err != nil {
		return models.Entry{}, fmt.Errorf("catalog: %s: %w", f.Path, err)
	}
	tags := []string(fm.Tags)
	if tags == nil {
		tags = []string{}
	}
	return models.Entry{
		Path:      p,
		Slug:      parser.Slug(p),
		Extension: path.Ext(p),
		Checksum:  f.Checksum,
		Meta: models.Meta{
			Title:   fm.Title,
			Date:    date,
			Tags:    tags,
			Excerpt: fm.Excerpt,
		},
	}, nil
}

// IsImage reports whether name has one of ImageExts.
func IsImage(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range ImageExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// FS returns the virtual filesystem of this snapshot.
func (c *Catalog) FS() *vfs.FS { return c.fs }

// Entries returns every entry, newest first.
func (c *Catalog) Entries() []models.Entry { return c.fs.Entries() }

// Posts returns the markdown entries, newest first.
func (c *Catalog) Posts() []models.Entry { return c.fs.Posts() }

// FindBySlug returns the entry with slug, or nil.
func (c *Catalog) FindBySlug(slug string) *models.Entry { return c.fs.FindBySlug(slug) }

// Slugs returns the slugs of all posts, newest first.
func (c *Catalog) Slugs() []string {
	posts := c.Posts()
	out := make([]string, len(posts))
	for i, e := range posts {
		out[i] = e.Slug
	}
	return out
}

// Post loads the post with the given slug.
func (c *Catalog) Post(slug string) (*models.Post, error) {
	e := c.FindBySlug(slug)
	if e == nil || !e.IsMarkdown() {
		return nil, fmt.Errorf("catalog: post %q: %w", slug, apperr.ErrNotFound)
	}
	return c.ReadPost(*e)
}

// ReadPost loads the content of a markdown entry. Lines are right-trimmed,
// tabs expanded to four spaces and joined with "\r\n".
func (c *Catalog) ReadPost(e models.Entry) (*models.Post, error) {
	if !e.IsMarkdown() {
		return nil, fmt.Errorf("catalog: %s: not a post: %w", e.Path, apperr.ErrNotFound)
	}
	data, err := c.store.Read(strings.TrimPrefix(e.Path, "/"))
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", e.Path, err)
	}

	lines := strings.Split(res.Body, "\n")
	for i, l := range lines {
		l = strings.TrimRight(l, " \t\r")
		lines[i] = strings.ReplaceAll(l, "\t", "    ")
	}

	return &models.Post{
		Slug:    e.Slug,
		Title:   e.Meta.Title,
		Date:    e.Meta.Date,
		Tags:    e.Meta.Tags,
		Excerpt: e.Meta.Excerpt,
		Content: strings.TrimSpace(strings.Join(lines, "\r\n")),
		Images:  c.imagesFor(e),
	}, nil
}

// imagesFor maps image filenames under posts/YYYY/MM/<slug>/ to URLs.
func (c *Catalog) imagesFor(e models.Entry) map[string]string {
	out := make(map[string]string)
	dir := path.Join(path.Dir(strings.TrimPrefix(e.Path, "/")), e.Slug) + "/"
	for _, img := range c.images {
		if strings.HasPrefix(img, dir) {
			out[path.Base(img)] = c.MediaURL(img)
		}
	}
	return out
}

// MediaURL returns the public URL of a content-relative path.
func (c *Catalog) MediaURL(rel string) string {
	return c.mediaURL + "/" + rel
}

// TagCount is a tag and the number of posts carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Tags counts tags across posts, most used first, then by name.
func (c *Catalog) Tags() []TagCount {
	counts := make(map[string]int)
	for _, e := range c.Posts() {
		for _, t := range e.Meta.Tags {
			counts[t]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TagCount{Tag: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

// IsNotFound reports whether err means a missing post.
func IsNotFound(err error) bool { return errors.Is(err, apperr.ErrNotFound) }
