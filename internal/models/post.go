package models

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"
)

// Post represents a blog post in the Inkwell application.
//
// The slug is derived from the title; callers must go through SetTitle
// instead of assigning Title directly so the slug stays in sync.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Slug      string    `gorm:"size:200;index" json:"slug"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetTitle assigns the post title and keeps the slug in sync.
//
// The slug is recomputed when the post has no slug yet or when the new
// title differs from the current one. An empty title is ignored and an
// unchanged title leaves the existing slug alone, so re-saving a post
// never churns its URL.
func (p *Post) SetTitle(title string) {
	if title == "" {
		return
	}
	if p.Slug == "" || title != p.Title {
		p.Slug = Slugify(title)
	}
	p.Title = title
}

// Slugify converts a title into a URL-safe, lowercase, hyphen-joined
// identifier. It is a pure function and idempotent: slugifying an
// existing slug returns it unchanged.
func Slugify(title string) string {
	return slug.Make(title)
}

func (p *Post) String() string {
	return fmt.Sprintf("Post(%q, %q)", p.Title, p.CreatedAt.Format(time.RFC3339))
}
