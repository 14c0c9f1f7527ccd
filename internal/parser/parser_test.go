package parser

import (
	"errors"
	"testing"

	"github.com/starford/termblog/internal/apperr"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\ndate: 2016-04-11\ntags:\n  - go\n  - blog\n---\n# Hello\nBody text here.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter.Title != "Hello" {
		t.Errorf("title = %q, want %q", r.Frontmatter.Title, "Hello")
	}
	if r.Frontmatter.Date != "2016-04-11" {
		t.Errorf("date = %q", r.Frontmatter.Date)
	}
	if len(r.Frontmatter.Tags) != 2 || r.Frontmatter.Tags[0] != "go" || r.Frontmatter.Tags[1] != "blog" {
		t.Errorf("tags = %v, want [go blog]", r.Frontmatter.Tags)
	}
	if r.Body != "# Hello\nBody text here." {
		t.Errorf("body = %q", r.Body)
	}
	if r.WordCount != 5 {
		t.Errorf("word count = %d, want 5", r.WordCount)
	}
}

func TestParse_ScalarTags(t *testing.T) {
	r, err := Parse([]byte("---\ntags: solo\n---\nx"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Frontmatter.Tags) != 1 || r.Frontmatter.Tags[0] != "solo" {
		t.Errorf("tags = %v", r.Frontmatter.Tags)
	}
}

func TestParse_MissingOpening(t *testing.T) {
	_, err := Parse([]byte("# Just a heading\nSome text.\n"))
	if !errors.Is(err, apperr.ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestParse_MissingClosing(t *testing.T) {
	_, err := Parse([]byte("---\ntitle: x\nbody without end\n"))
	if !errors.Is(err, apperr.ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("---\n: invalid: yaml: {{{\n---\nBody\n"))
	if !errors.Is(err, apperr.ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestParseSidecar(t *testing.T) {
	fm, err := ParseSidecar([]byte("title: A photo\ntags: [travel, film]\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.Title != "A photo" || len(fm.Tags) != 2 {
		t.Errorf("sidecar = %+v", fm)
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"11-building-a-blog.md":        "building-a-blog",
		"/posts/2016/04/03-x-y.md":     "x-y",
		"no-prefix.md":                 "no-prefix",
		"15-my-photo.png":              "my-photo",
		"2024-in-review.md":            "in-review",
	}
	for in, want := range cases {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDateFromPath(t *testing.T) {
	if got := DateFromPath("/posts/2016/04/11-building-a-blog.md"); got != "2016-04-11" {
		t.Errorf("got %q", got)
	}
	if got := DateFromPath("/about.md"); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestValidateDate(t *testing.T) {
	if err := ValidateDate("2016-04-11"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateDate("2016-02-30"); !errors.Is(err, apperr.ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
}
