// Package vfs mounts content entries under a virtual home directory.
//
// The tree is built once and never mutated; a content reload builds a new
// FS. Lookups report absence with nil or empty results, never errors.
package vfs

import (
	"sort"
	"strings"

	"github.com/starford/termblog/internal/models"
)

// Home is the visitor's home directory.
const Home = "/home/visitor"

// Kind tells files and directories apart.
type Kind int

const (
	File Kind = iota
	Dir
)

// Node is a file or directory in the tree.
type Node struct {
	Name  string
	Kind  Kind
	Entry *models.Entry // set for files only

	children map[string]*Node
}

// IsDir reports whether n is a directory.
func (n *Node) IsDir() bool { return n.Kind == Dir }

// FS is an immutable virtual filesystem.
type FS struct {
	root    *Node
	entries []models.Entry
}

// New builds a tree with every entry mounted at Home + entry.Path.
func New(entries []models.Entry) *FS {
	fs := &FS{
		root:    newDir(""),
		entries: make([]models.Entry, len(entries)),
	}
	copy(fs.entries, entries)
	sort.SliceStable(fs.entries, func(i, j int) bool {
		return fs.entries[i].Meta.Date > fs.entries[j].Meta.Date
	})

	fs.mkdirp(Home)
	for i := range fs.entries {
		e := &fs.entries[i]
		parts := split(Home + e.Path)
		if len(parts) == 0 {
			continue
		}
		name := parts[len(parts)-1]
		dir := fs.mkdirp("/" + strings.Join(parts[:len(parts)-1], "/"))
		dir.children[name] = &Node{Name: name, Kind: File, Entry: e}
	}
	return fs
}

func newDir(name string) *Node {
	return &Node{Name: name, Kind: Dir, children: make(map[string]*Node)}
}

func (fs *FS) mkdirp(p string) *Node {
	node := fs.root
	for _, part := range split(p) {
		child, ok := node.children[part]
		if !ok {
			child = newDir(part)
			node.children[part] = child
		}
		node = child
	}
	return node
}

func split(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool { return r == '/' })
}

// Resolve turns path into a normalized absolute path relative to cwd.
// "~" expands to Home, "." and ".." are applied, and ".." at the root
// stays at the root.
func Resolve(cwd, path string) string {
	if path == "~" {
		return Home
	}
	if strings.HasPrefix(path, "~/") {
		path = Home + path[1:]
	}
	if !strings.HasPrefix(path, "/") {
		path = cwd + "/" + path
	}
	stack := make([]string, 0, 8)
	for _, part := range split(path) {
		switch part {
		case ".":
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, part)
		}
	}
	return "/" + strings.Join(stack, "/")
}

// Resolve is a convenience for the package-level Resolve.
func (fs *FS) Resolve(cwd, path string) string { return Resolve(cwd, path) }

// Stat returns the node at an absolute path, or nil.
func (fs *FS) Stat(path string) *Node {
	node := fs.root
	for _, part := range split(path) {
		if node.Kind != Dir {
			return nil
		}
		child, ok := node.children[part]
		if !ok {
			return nil
		}
		node = child
	}
	return node
}

// Readdir lists a directory sorted by name. It returns nil when path is
// missing or is not a directory.
func (fs *FS) Readdir(path string) []*Node {
	node := fs.Stat(path)
	if node == nil || node.Kind != Dir {
		return nil
	}
	out := make([]*Node, 0, len(node.children))
	for _, c := range node.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FindBySlug returns the entry with the given slug, or nil.
func (fs *FS) FindBySlug(slug string) *models.Entry {
	for i := range fs.entries {
		if fs.entries[i].Slug == slug {
			return &fs.entries[i]
		}
	}
	return nil
}

// Entries returns all entries, newest first.
func (fs *FS) Entries() []models.Entry {
	return fs.entries
}

// Posts returns the markdown entries, newest first.
func (fs *FS) Posts() []models.Entry {
	out := make([]models.Entry, 0, len(fs.entries))
	for _, e := range fs.entries {
		if e.IsMarkdown() {
			out = append(out, e)
		}
	}
	return out
}

// DisplayPath shortens an absolute path for the prompt by replacing Home with "~".
func DisplayPath(path string) string {
	if path == Home {
		return "~"
	}
	if strings.HasPrefix(path, Home+"/") {
		return "~" + path[len(Home):]
	}
	return path
}
