package models

import (
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestNewLinkIDIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewLinkID()
		if seen[id] {
			t.Fatalf("duplicate link id %s", id)
		}
		seen[id] = true
	}
}

func TestRecordClick(t *testing.T) {
	var l Link
	l.RecordClick("2026-08-29")
	l.RecordClick("2026-08-29")
	l.RecordClick("2026-08-30")

	assert.Equal(t, l.Clicks, 3)
	assert.Equal(t, l.ClickStats["2026-08-29"], 2)
	assert.Equal(t, l.ClickStats["2026-08-30"], 1)
}

func TestLinkCreateValidateNoteLength(t *testing.T) {
	create := LinkCreate{
		Title: "t",
		URL:   "https://example.com",
		Note:  strings.Repeat("x", MaxLinkNoteLen),
	}
	if err := create.Validate(); err != nil {
		t.Fatalf("note at limit should pass: %v", err)
	}
	create.Note += "x"
	if err := create.Validate(); err == nil {
		t.Fatal("note over limit should fail")
	}
}

func TestLinkUpdateApply(t *testing.T) {
	l := Link{Title: "old", URL: "https://a.test", Note: "keep"}
	title := "new"
	pinned := true
	update := LinkUpdate{Title: &title, IsPinned: &pinned}
	update.Apply(&l)

	assert.Equal(t, l.Title, "new")
	assert.Equal(t, l.IsPinned, true)
	// Unset fields stay put.
	assert.Equal(t, l.URL, "https://a.test")
	assert.Equal(t, l.Note, "keep")
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Go ", "go", "", "Tools", "GO", "tools "})
	assert.Equal(t, got, []string{"go", "tools"})
}

func TestSortLinksPinnedFirstIsStable(t *testing.T) {
	links := []Link{
		{ID: "a"},
		{ID: "b", IsPinned: true},
		{ID: "c"},
		{ID: "d", IsPinned: true},
	}
	got := SortLinksPinnedFirst(links)

	assert.Equal(t, got[0].ID, "b")
	assert.Equal(t, got[1].ID, "d")
	assert.Equal(t, got[2].ID, "a")
	assert.Equal(t, got[3].ID, "c")
	// The input slice is untouched.
	assert.Equal(t, links[0].ID, "a")
}
