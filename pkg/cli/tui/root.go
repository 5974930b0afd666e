package tui

import (
	"strings"

	"linkvault/pkg/store"

	tea "github.com/charmbracelet/bubbletea"
)

// rootModel is the Bubble Tea model that acts as an app shell for multiple flows.
// It presents a simple menu and then hands control to a specific flow model.
type rootModel struct {
	store *store.Store

	// Current active flow (when nil, we are in the main menu)
	current tea.Model
}

// NewRootModel constructs the root app-shell model that can launch multiple flows.
func NewRootModel(s *store.Store) tea.Model {
	return &rootModel{
		store: s,
	}
}

func (m *rootModel) Init() tea.Cmd {
	// No async work on start; just render the menu.
	return nil
}

func (m *rootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Flows signal their exit by bubbling this up.
	if _, ok := msg.(backToMenuMsg); ok {
		m.current = nil
		return m, nil
	}

	// If we have an active flow, delegate all messages to it.
	if m.current != nil {
		var cmd tea.Cmd
		m.current, cmd = m.current.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit

		case "1":
			// Vault browser: containers, links, reorder, delete/undo.
			m.current = NewVaultModel(m.store)
			return m, m.current.Init()

		case "2":
			// New container form.
			m.current = NewContainerForm(m.store)
			return m, m.current.Init()

		case "3":
			// Pending invitations addressed to this user.
			m.current = NewInvitationsModel(m.store)
			return m, m.current.Init()
		}
	}

	return m, nil
}

func (m *rootModel) View() string {
	// When a flow is active, defer to its view.
	if m.current != nil {
		return m.current.View()
	}

	var b strings.Builder

	b.WriteString(renderTitle("LinkVault"))
	b.WriteString(renderDivider(60))
	b.WriteString("\n\n")
	b.WriteString(boldStyle.Render("Select an action:") + "\n\n")
	b.WriteString("  " + selectedMarkerStyle.Render("1)") + " Browse vaults (list, reorder, delete links)\n")
	b.WriteString("  " + selectedMarkerStyle.Render("2)") + " New vault\n")
	b.WriteString("  " + selectedMarkerStyle.Render("3)") + " Invitations\n")
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Press the number of an option, or 'q' / Esc to quit.") + "\n")

	return b.String()
}
