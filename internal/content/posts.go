package content

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/courtside/platform/internal/domain"
)

// postMeta is the YAML front-matter block of a post file.
type postMeta struct {
	Title      string   `yaml:"title"`
	Date       string   `yaml:"date"`
	Excerpt    string   `yaml:"excerpt"`
	Author     string   `yaml:"author"`
	AuthorRole string   `yaml:"authorRole"`
	CoverImage string   `yaml:"coverImage"`
	Tags       []string `yaml:"tags"`
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "January 2, 2006"}

// Loader reads media posts from a flat directory of .mdx files. The slug is
// the file's base name. Every call snapshots the directory; posts are
// immutable once loaded.
type Loader struct {
	dir    string
	logger *slog.Logger
}

// NewLoader creates a Loader rooted at the posts directory.
func NewLoader(dir string, logger *slog.Logger) *Loader {
	return &Loader{dir: dir, logger: logger}
}

// ListSlugs lists the base names of every .mdx file. A missing directory is
// an empty series, not a failure.
func (l *Loader) ListSlugs() []string {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn("read posts directory", "dir", l.dir, "error", err)
		}
		return nil
	}
	var slugs []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".mdx") {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(e.Name(), ".mdx"))
	}
	return slugs
}

// GetPostBySlug loads one post. A missing file returns (nil, nil); malformed
// front-matter is an error the caller surfaces as a render failure.
func (l *Loader) GetPostBySlug(slug string) (*domain.Post, error) {
	path := filepath.Join(l.dir, filepath.Base(slug)+".mdx")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open post %s: %w", slug, err)
	}
	defer f.Close()

	var meta postMeta
	body, err := frontmatter.Parse(f, &meta)
	if err != nil {
		return nil, domain.ErrRenderFailed("post "+slug+" has malformed front-matter", err)
	}

	post := &domain.Post{
		Slug:       slug,
		Title:      meta.Title,
		Date:       meta.Date,
		Excerpt:    meta.Excerpt,
		Author:     meta.Author,
		AuthorRole: meta.AuthorRole,
		CoverImage: meta.CoverImage,
		Tags:       meta.Tags,
		Content:    string(body),
	}
	post.SetParsedDate(parseDate(meta.Date))
	return post, nil
}

// GetAllPosts loads every slug, drops unreadable files, and sorts newest
// first. Posts whose date failed to parse sort after every dated post.
func (l *Loader) GetAllPosts() []*domain.Post {
	var posts []*domain.Post
	for _, slug := range l.ListSlugs() {
		post, err := l.GetPostBySlug(slug)
		if err != nil {
			l.logger.Warn("skipping unreadable post", "slug", slug, "error", err)
			continue
		}
		if post != nil {
			posts = append(posts, post)
		}
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].ParsedDate().After(posts[j].ParsedDate())
	})
	return posts
}

func parseDate(raw string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
