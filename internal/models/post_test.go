package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple title", "Hello World!", "hello-world"},
		{"punctuation runs", "Go -- the good,   the bad & the ugly", "go-the-good-the-bad-and-the-ugly"},
		{"leading and trailing separators", "  ...trimmed...  ", "trimmed"},
		{"non-ascii transliteration", "Crème Brûlée", "creme-brulee"},
		{"already a slug", "hello-world", "hello-world"},
		{"uppercase", "SHOUTING TITLE", "shouting-title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	titles := []string{"Hello World!", "Crème Brûlée", "a  b  c", "123 Go"}
	for _, title := range titles {
		once := Slugify(title)
		assert.Equal(t, once, Slugify(once), "slugify(slugify(%q))", title)
	}
}

func TestSlugifyPure(t *testing.T) {
	// Same input, same output, regardless of call order.
	first := Slugify("Pure Function")
	_ = Slugify("Something Else Entirely")
	assert.Equal(t, first, Slugify("Pure Function"))
}

func TestPostSetTitle(t *testing.T) {
	t.Run("initial title derives slug", func(t *testing.T) {
		p := &Post{}
		p.SetTitle("Hello World!")
		assert.Equal(t, "Hello World!", p.Title)
		assert.Equal(t, "hello-world", p.Slug)
	})

	t.Run("changed title recomputes slug", func(t *testing.T) {
		p := &Post{}
		p.SetTitle("First Title")
		p.SetTitle("Second Title")
		assert.Equal(t, "Second Title", p.Title)
		assert.Equal(t, "second-title", p.Slug)
	})

	t.Run("empty title is a no-op", func(t *testing.T) {
		p := &Post{}
		p.SetTitle("Keep Me")
		p.SetTitle("")
		assert.Equal(t, "Keep Me", p.Title)
		assert.Equal(t, "keep-me", p.Slug)
	})

	t.Run("identical title preserves hand-set slug", func(t *testing.T) {
		p := &Post{}
		p.SetTitle("Stable Title")
		p.Slug = "custom-slug"
		p.SetTitle("Stable Title")
		assert.Equal(t, "custom-slug", p.Slug)
	})

	t.Run("missing slug is backfilled even for identical title", func(t *testing.T) {
		p := &Post{Title: "Loaded Title"}
		p.SetTitle("Loaded Title")
		assert.Equal(t, "loaded-title", p.Slug)
	})

	t.Run("title differing only in formatting still recomputes", func(t *testing.T) {
		p := &Post{}
		p.SetTitle("Hello World")
		p.Slug = "stale-slug"
		p.SetTitle("Hello  World")
		assert.Equal(t, "hello-world", p.Slug)
	})
}
