package tui

import "linkvault/pkg/models"

// backToMenuMsg asks the root model to return to the main menu.
type backToMenuMsg struct{}

// refreshedMsg is emitted when the store has re-fetched the mirror.
type refreshedMsg struct {
	err error
}

// opDoneMsg is the result of a fire-and-report store mutation.
type opDoneMsg struct {
	err error
}

// containerCreatedMsg is emitted when a new container has been created.
type containerCreatedMsg struct {
	container *models.Container
	err       error
}

// linkAddedMsg is emitted when a link submission completes.
type linkAddedMsg struct {
	err error
}

// invitationsLoadedMsg carries the user's pending invitations.
type invitationsLoadedMsg struct {
	invitations []models.ShareInvitation
	err         error
}

// undoTickMsg drives the delete-undo countdown in the link browser.
type undoTickMsg struct{}
