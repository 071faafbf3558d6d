package domain

import "time"

// Post is a media article sourced from a flat content file, never the database.
// The slug is the file's base name and is unique within the content directory.
type Post struct {
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Date       string    `json:"date"`
	Excerpt    string    `json:"excerpt,omitempty"`
	Author     string    `json:"author,omitempty"`
	AuthorRole string    `json:"authorRole,omitempty"`
	CoverImage string    `json:"coverImage,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	Content    string    `json:"content,omitempty"`

	parsedDate time.Time
}

// SetParsedDate records the parsed calendar date used for ordering.
func (p *Post) SetParsedDate(t time.Time) { p.parsedDate = t }

// ParsedDate returns the parsed calendar date; zero when the front-matter
// date was missing or malformed.
func (p *Post) ParsedDate() time.Time { return p.parsedDate }
