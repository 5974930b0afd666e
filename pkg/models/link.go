package models

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Link is a single bookmarked URL with metadata. A link's ID is unique within
// its owning container but travels with the link when it moves between
// containers.
type Link struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	URL         string         `json:"url"`
	Description string         `json:"description,omitempty"`
	Favicon     string         `json:"favicon,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Note        string         `json:"note,omitempty" validate:"max=100"`
	Emoji       string         `json:"emoji,omitempty"`
	IsPinned    bool           `json:"is_pinned,omitempty"`
	Clicks      int            `json:"clicks"`
	ClickStats  map[string]int `json:"click_stats,omitempty"`
	CreatedBy   uuid.UUID      `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NewLinkID mints a client-generated link identity. ULIDs are time-ordered and
// collision-resistant, which matters because link ids cross container
// boundaries on move.
func NewLinkID() string {
	return ulid.Make().String()
}

// RecordClick bumps the total counter and the per-day stat. Daily stats are
// append-only and never decremented.
func (l *Link) RecordClick(day string) {
	l.Clicks++
	if l.ClickStats == nil {
		l.ClickStats = make(map[string]int)
	}
	l.ClickStats[day]++
}

// LinkCreate represents data for creating a new link
type LinkCreate struct {
	Title       string   `json:"title" binding:"required"`
	URL         string   `json:"url" binding:"required"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Note        string   `json:"note,omitempty" validate:"max=100"`
	Emoji       string   `json:"emoji,omitempty"`
}

// Validate checks the length constraints.
func (l *LinkCreate) Validate() error {
	return validate.Struct(l)
}

// LinkUpdate represents data for updating a link. Nil fields are left
// unchanged.
type LinkUpdate struct {
	Title       *string   `json:"title,omitempty"`
	URL         *string   `json:"url,omitempty"`
	Description *string   `json:"description,omitempty"`
	Favicon     *string   `json:"favicon,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Note        *string   `json:"note,omitempty" validate:"omitempty,max=100"`
	Emoji       *string   `json:"emoji,omitempty"`
	IsPinned    *bool     `json:"is_pinned,omitempty"`
}

// Validate checks the length constraints.
func (l *LinkUpdate) Validate() error {
	return validate.Struct(l)
}

// Apply merges the non-nil fields into link and refreshes UpdatedAt.
func (l *LinkUpdate) Apply(link *Link) {
	if l.Title != nil {
		link.Title = *l.Title
	}
	if l.URL != nil {
		link.URL = *l.URL
	}
	if l.Description != nil {
		link.Description = *l.Description
	}
	if l.Favicon != nil {
		link.Favicon = *l.Favicon
	}
	if l.Tags != nil {
		link.Tags = NormalizeTags(*l.Tags)
	}
	if l.Note != nil {
		link.Note = *l.Note
	}
	if l.Emoji != nil {
		link.Emoji = *l.Emoji
	}
	if l.IsPinned != nil {
		link.IsPinned = *l.IsPinned
	}
	link.UpdatedAt = time.Now().UTC()
}

// NormalizeTags lowercases, trims, and de-duplicates while preserving first
// occurrence order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// SortLinksPinnedFirst returns the display ordering: all pinned links before
// all unpinned links, each group keeping its stored relative order.
func SortLinksPinnedFirst(links []Link) []Link {
	out := make([]Link, len(links))
	copy(out, links)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IsPinned && !out[j].IsPinned
	})
	return out
}
