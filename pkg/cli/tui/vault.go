package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"linkvault/pkg/models"
	"linkvault/pkg/store"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

const (
	stepContainers = iota
	stepLinks
	stepAddLink
)

// vaultModel browses containers and the links inside them. Mutations go
// through the synchronization store, so the list the user sees is the local
// mirror: reorders apply instantly, deletes start an undo countdown.
type vaultModel struct {
	store *store.Store

	step       int
	containers []models.Container
	selected   int // index into containers or links, depending on step

	container *models.Container
	linkIdx   int

	// Add-link form state
	urlInput   textinput.Model
	titleInput textinput.Model
	formField  int // 0=url, 1=title

	// Undo state for the last deleted link
	undoLinkID string
	undoLeft   int // seconds remaining

	err   error
	ready bool
}

// NewVaultModel creates the container/link browser flow.
func NewVaultModel(s *store.Store) tea.Model {
	return &vaultModel{
		store: s,
		step:  stepContainers,
	}
}

func (m *vaultModel) Init() tea.Cmd {
	return func() tea.Msg {
		err := m.store.Refresh(context.Background())
		return refreshedMsg{err: err}
	}
}

func (m *vaultModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshedMsg:
		m.ready = true
		m.err = msg.err
		m.reload()
		return m, nil

	case opDoneMsg:
		m.err = msg.err
		m.reload()
		return m, nil

	case linkAddedMsg:
		m.err = msg.err
		m.reload()
		return m, nil

	case undoTickMsg:
		if m.undoLinkID == "" {
			return m, nil
		}
		m.undoLeft--
		if m.undoLeft <= 0 {
			m.undoLinkID = ""
			return m, nil
		}
		return m, undoTick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *vaultModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Text entry owns every printable key, so route form steps first.
	if m.step == stepAddLink {
		return m.handleAddLinkKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "esc", "b", "m":
		if m.step == stepLinks {
			m.step = stepContainers
			m.container = nil
			return m, nil
		}
		return m, func() tea.Msg { return backToMenuMsg{} }

	case "r":
		return m, m.Init()

	case "up", "k":
		m.moveCursor(-1)
		return m, nil

	case "down", "j":
		m.moveCursor(1)
		return m, nil
	}

	if m.step == stepContainers {
		return m.handleContainerKey(msg)
	}
	return m.handleLinkKey(msg)
}

func (m *vaultModel) handleContainerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.selected < len(m.containers) {
			c := m.containers[m.selected]
			m.container = &c
			m.step = stepLinks
			m.linkIdx = 0
		}
		return m, nil

	case "K", "J":
		// Reorder containers: swap selected with its neighbor.
		delta := -1
		if msg.String() == "J" {
			delta = 1
		}
		other := m.selected + delta
		if other < 0 || other >= len(m.containers) {
			return m, nil
		}
		ordered := make([]models.Container, len(m.containers))
		copy(ordered, m.containers)
		ordered[m.selected], ordered[other] = ordered[other], ordered[m.selected]
		m.selected = other
		return m, func() tea.Msg {
			ids := containerIDs(ordered)
			err := m.store.ReorderContainers(context.Background(), ids)
			return opDoneMsg{err: err}
		}
	}
	return m, nil
}

func (m *vaultModel) handleLinkKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	links := m.currentLinks()
	switch msg.String() {
	case "K", "J":
		// Reorder links: swap selected with its neighbor, keep everything else.
		delta := -1
		if msg.String() == "J" {
			delta = 1
		}
		other := m.linkIdx + delta
		if other < 0 || other >= len(links) {
			return m, nil
		}
		ordered := make([]string, len(links))
		for i, l := range links {
			ordered[i] = l.ID
		}
		ordered[m.linkIdx], ordered[other] = ordered[other], ordered[m.linkIdx]
		m.linkIdx = other
		containerID := m.container.ID
		return m, func() tea.Msg {
			err := m.store.ReorderLinks(context.Background(), containerID, ordered)
			return opDoneMsg{err: err}
		}

	case "d":
		if m.linkIdx >= len(links) {
			return m, nil
		}
		link := links[m.linkIdx]
		containerID := m.container.ID
		m.undoLinkID = link.ID
		m.undoLeft = int(m.store.GraceWindow() / time.Second)
		return m, tea.Batch(
			func() tea.Msg {
				err := m.store.DeleteLink(context.Background(), containerID, link.ID)
				return opDoneMsg{err: err}
			},
			undoTick(),
		)

	case "u":
		if m.undoLinkID == "" {
			return m, nil
		}
		linkID := m.undoLinkID
		m.undoLinkID = ""
		if m.store.UndoDelete(linkID) {
			m.reload()
		}
		return m, nil

	case "p":
		if m.linkIdx >= len(links) {
			return m, nil
		}
		link := links[m.linkIdx]
		pinned := !link.IsPinned
		containerID := m.container.ID
		return m, func() tea.Msg {
			err := m.store.UpdateLink(context.Background(), containerID, link.ID,
				models.LinkUpdate{IsPinned: &pinned})
			return opDoneMsg{err: err}
		}

	case "a":
		m.urlInput = textinput.New()
		m.urlInput.Placeholder = "https://example.com"
		m.urlInput.Width = 50
		m.urlInput.Focus()
		m.titleInput = textinput.New()
		m.titleInput.Placeholder = "Title"
		m.titleInput.Width = 50
		m.formField = 0
		m.step = stepAddLink
		m.err = nil
		return m, textinput.Blink

	case "enter", "o":
		if m.linkIdx >= len(links) {
			return m, nil
		}
		// Click tracking is optimistic and never surfaces errors.
		m.store.TrackClick(context.Background(), m.container.ID, links[m.linkIdx].ID)
		m.reload()
		return m, nil
	}
	return m, nil
}

func (m *vaultModel) handleAddLinkKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.step = stepLinks
		return m, nil

	case "enter":
		if m.formField == 0 {
			if strings.TrimSpace(m.urlInput.Value()) == "" {
				m.err = fmt.Errorf("url is required")
				return m, nil
			}
			m.err = nil
			m.formField = 1
			m.urlInput.Blur()
			m.titleInput.Focus()
			return m, textinput.Blink
		}
		if strings.TrimSpace(m.titleInput.Value()) == "" {
			m.err = fmt.Errorf("title is required")
			return m, nil
		}
		create := models.LinkCreate{
			Title: strings.TrimSpace(m.titleInput.Value()),
			URL:   strings.TrimSpace(m.urlInput.Value()),
		}
		containerID := m.container.ID
		m.step = stepLinks
		return m, func() tea.Msg {
			_, err := m.store.AddLink(context.Background(), containerID, create)
			return linkAddedMsg{err: err}
		}
	}

	var cmd tea.Cmd
	if m.formField == 0 {
		m.urlInput, cmd = m.urlInput.Update(msg)
	} else {
		m.titleInput, cmd = m.titleInput.Update(msg)
	}
	return m, cmd
}

func (m *vaultModel) moveCursor(delta int) {
	if m.step == stepContainers {
		m.selected = clamp(m.selected+delta, 0, len(m.containers)-1)
	} else {
		m.linkIdx = clamp(m.linkIdx+delta, 0, len(m.currentLinks())-1)
	}
}

// reload re-reads the mirror after any mutation.
func (m *vaultModel) reload() {
	m.containers = m.store.Containers()
	m.selected = clamp(m.selected, 0, len(m.containers)-1)
	if m.container != nil {
		if c, ok := m.store.Container(m.container.ID); ok {
			m.container = &c
		} else {
			// Container disappeared (deleted or access revoked).
			m.container = nil
			m.step = stepContainers
		}
	}
	m.linkIdx = clamp(m.linkIdx, 0, len(m.currentLinks())-1)
	if e := m.store.Err(); e != "" && m.err == nil {
		m.err = fmt.Errorf("%s", e)
		m.store.ClearErr()
	}
}

// currentLinks returns the open container's links in display order,
// pinned first.
func (m *vaultModel) currentLinks() []models.Link {
	if m.container == nil {
		return nil
	}
	return models.SortLinksPinnedFirst(m.container.Links)
}

func (m *vaultModel) View() string {
	if !m.ready {
		return "\nLoading vaults...\n"
	}

	var b strings.Builder
	switch m.step {
	case stepContainers:
		m.viewContainers(&b)
	case stepAddLink:
		m.viewAddLink(&b)
	default:
		m.viewLinks(&b)
	}

	if m.err != nil {
		b.WriteString("\n" + renderError(m.err.Error()) + "\n")
	}
	return b.String()
}

func (m *vaultModel) viewContainers(b *strings.Builder) {
	b.WriteString(renderTitle("Vaults"))
	b.WriteString(renderDivider(60))
	b.WriteString("\n\n")

	if len(m.containers) == 0 {
		b.WriteString("No vaults yet.\n")
	}
	for i, c := range m.containers {
		marker := "  "
		name := c.Name
		if i == m.selected {
			marker = selectedMarkerStyle.Render("> ")
			name = selectedStyle.Render(name)
		}
		shared := ""
		if c.IsShared(m.store.UserID()) {
			shared = warningStyle.Render("  (shared)")
		} else if len(c.AuthorizedUsers) > 0 {
			shared = warningStyle.Render("  (shared by me)")
		}
		b.WriteString(fmt.Sprintf("%s%s  %s%s\n",
			marker, name, itemURLStyle.Render(fmt.Sprintf("%d links", len(c.Links))), shared))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ navigate · Enter open · K/J reorder · r refresh · Esc menu · q quit") + "\n")
}

func (m *vaultModel) viewLinks(b *strings.Builder) {
	b.WriteString(renderTitle(m.container.Name))
	b.WriteString(renderDivider(60))
	b.WriteString("\n\n")

	links := m.currentLinks()
	if len(links) == 0 {
		b.WriteString("No links in this vault.\n")
	}
	for i, link := range links {
		marker := "  "
		title := link.Title
		if title == "" {
			title = "(no title)"
		}
		if i == m.linkIdx {
			marker = selectedMarkerStyle.Render("> ")
			title = selectedStyle.Render(title)
		} else {
			title = itemTitleStyle.Render(title)
		}
		pin := "  "
		if link.IsPinned {
			pin = pinStyle.Render("★ ")
		}

		url := link.URL
		if len(url) > 60 {
			url = url[:57] + "..."
		}
		b.WriteString(fmt.Sprintf("%s%s%s\n      %s\n", marker, pin, title, itemURLStyle.Render(url)))
	}

	if m.undoLinkID != "" {
		b.WriteString("\n" + warningStyle.Render(
			fmt.Sprintf("Link deleted. Press 'u' to undo (%ds)", m.undoLeft)) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ navigate · a add · K/J reorder · p pin · d delete · u undo · Enter open · Esc back") + "\n")
}

func (m *vaultModel) viewAddLink(b *strings.Builder) {
	b.WriteString(renderTitle("Add link to " + m.container.Name))
	b.WriteString(renderDivider(50))
	b.WriteString("\n\n")

	if m.formField == 0 {
		b.WriteString(boldStyle.Render("URL:") + "\n")
		b.WriteString(m.urlInput.View() + "\n")
	} else {
		b.WriteString(boldStyle.Render("Title:") + "\n")
		b.WriteString(m.titleInput.View() + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("Enter to continue · Esc to cancel") + "\n")
}

func containerIDs(containers []models.Container) []uuid.UUID {
	ids := make([]uuid.UUID, len(containers))
	for i, c := range containers {
		ids[i] = c.ID
	}
	return ids
}

func undoTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return undoTickMsg{}
	})
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
