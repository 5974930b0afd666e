package tui

import (
	"context"
	"fmt"
	"strings"

	"linkvault/pkg/models"
	"linkvault/pkg/store"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// containerForm is a small stepped form for creating a vault.
type containerForm struct {
	store *store.Store

	nameInput textinput.Model
	descInput textinput.Model
	step      int // 0=name, 1=description, 2=done
	err       error
	created   *models.Container
}

// NewContainerForm creates the new-vault flow.
func NewContainerForm(s *store.Store) tea.Model {
	nameInput := textinput.New()
	nameInput.Placeholder = "Vault name"
	nameInput.Focus()
	nameInput.CharLimit = models.MaxContainerNameLen
	nameInput.Width = 50

	descInput := textinput.New()
	descInput.Placeholder = "Optional description"
	descInput.CharLimit = models.MaxContainerDescriptionLen
	descInput.Width = 50

	return &containerForm{
		store:     s,
		nameInput: nameInput,
		descInput: descInput,
	}
}

func (m *containerForm) Init() tea.Cmd {
	return textinput.Blink
}

func (m *containerForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			return m, func() tea.Msg { return backToMenuMsg{} }
		case "enter":
			switch m.step {
			case 0:
				if strings.TrimSpace(m.nameInput.Value()) == "" {
					m.err = fmt.Errorf("name is required")
					return m, nil
				}
				m.err = nil
				m.step = 1
				m.descInput.Focus()
				return m, textinput.Blink
			case 1:
				return m, m.submit()
			case 2:
				return m, func() tea.Msg { return backToMenuMsg{} }
			}
		}

	case containerCreatedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.created = msg.container
		m.step = 2
		return m, nil
	}

	var cmd tea.Cmd
	switch m.step {
	case 0:
		m.nameInput, cmd = m.nameInput.Update(msg)
	case 1:
		m.descInput, cmd = m.descInput.Update(msg)
	}
	return m, cmd
}

func (m *containerForm) submit() tea.Cmd {
	create := models.ContainerCreate{
		Name:        strings.TrimSpace(m.nameInput.Value()),
		Description: strings.TrimSpace(m.descInput.Value()),
	}
	return func() tea.Msg {
		container, err := m.store.CreateContainer(context.Background(), create)
		return containerCreatedMsg{container: container, err: err}
	}
}

func (m *containerForm) View() string {
	var b strings.Builder
	b.WriteString(renderTitle("New Vault"))
	b.WriteString(renderDivider(50))
	b.WriteString("\n\n")

	switch m.step {
	case 0:
		b.WriteString(boldStyle.Render("Name:") + "\n")
		b.WriteString(m.nameInput.View() + "\n")
	case 1:
		b.WriteString(boldStyle.Render("Description:") + "\n")
		b.WriteString(m.descInput.View() + "\n")
	case 2:
		b.WriteString(renderSuccess("Vault created") + "\n\n")
		b.WriteString(fmt.Sprintf("  %s %s\n", boldStyle.Render("Name:"), m.created.Name))
		b.WriteString(fmt.Sprintf("  %s %s\n", boldStyle.Render("ID:"), m.created.ID))
		b.WriteString("\n" + helpStyle.Render("Press Enter to return to the menu.") + "\n")
		return b.String()
	}

	if m.err != nil {
		b.WriteString("\n" + renderError(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("Enter to continue · Esc to cancel") + "\n")
	return b.String()
}
