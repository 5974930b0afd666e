package tui

import (
	"context"
	"fmt"
	"strings"

	"linkvault/pkg/models"
	"linkvault/pkg/store"

	tea "github.com/charmbracelet/bubbletea"
)

// invitationsModel lists the user's pending invitations and lets them accept
// or decline.
type invitationsModel struct {
	store *store.Store

	invitations []models.ShareInvitation
	selected    int
	err         error
	ready       bool
	notice      string
}

// NewInvitationsModel creates the invitations flow.
func NewInvitationsModel(s *store.Store) tea.Model {
	return &invitationsModel{store: s}
}

func (m *invitationsModel) Init() tea.Cmd {
	return m.load()
}

func (m *invitationsModel) load() tea.Cmd {
	return func() tea.Msg {
		// The gateway resolves the recipient from the API key.
		invitations, err := m.store.InvitationsForMe(context.Background(), "")
		return invitationsLoadedMsg{invitations: invitations, err: err}
	}
}

func (m *invitationsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case invitationsLoadedMsg:
		m.ready = true
		m.err = msg.err
		m.invitations = msg.invitations
		m.selected = clamp(m.selected, 0, len(m.invitations)-1)
		return m, nil

	case opDoneMsg:
		m.err = msg.err
		if msg.err == nil {
			m.notice = "Done"
		}
		return m, m.load()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc", "b", "m":
			return m, func() tea.Msg { return backToMenuMsg{} }
		case "up", "k":
			m.selected = clamp(m.selected-1, 0, len(m.invitations)-1)
			return m, nil
		case "down", "j":
			m.selected = clamp(m.selected+1, 0, len(m.invitations)-1)
			return m, nil
		case "a", "enter":
			if m.selected < len(m.invitations) {
				inv := m.invitations[m.selected]
				return m, func() tea.Msg {
					err := m.store.AcceptInvitation(context.Background(), inv.ID)
					return opDoneMsg{err: err}
				}
			}
		case "x", "d":
			if m.selected < len(m.invitations) {
				inv := m.invitations[m.selected]
				return m, func() tea.Msg {
					err := m.store.DeclineInvitation(context.Background(), inv.ID)
					return opDoneMsg{err: err}
				}
			}
		}
	}

	return m, nil
}

func (m *invitationsModel) View() string {
	if !m.ready {
		return "\nLoading invitations...\n"
	}

	var b strings.Builder
	b.WriteString(renderTitle("Invitations"))
	b.WriteString(renderDivider(60))
	b.WriteString("\n\n")

	if len(m.invitations) == 0 {
		b.WriteString("No pending invitations.\n")
	}
	for i, inv := range m.invitations {
		marker := "  "
		line := fmt.Sprintf("vault %s · %s access · expires %s",
			inv.ContainerID.String()[:8]+"...",
			inv.Permission,
			inv.ExpiresAt.Format("2006-01-02"),
		)
		if i == m.selected {
			marker = selectedMarkerStyle.Render("> ")
			line = selectedStyle.Render(line)
		}
		b.WriteString(marker + line + "\n")
	}

	if m.notice != "" {
		b.WriteString("\n" + renderSuccess(m.notice) + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + renderError(m.err.Error()) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ navigate · a accept · x decline · Esc menu · q quit") + "\n")
	return b.String()
}
