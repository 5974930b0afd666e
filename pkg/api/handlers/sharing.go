package handlers

import (
	"net/http"
	"time"

	"linkvault/pkg/gateway/postgres"
	"linkvault/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SendInvitation invites an email address to a container.
func SendInvitation(g *postgres.Gateway, sharing *postgres.Sharing) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uuid.UUID)
		id, ok := containerID(c)
		if !ok {
			return
		}
		var req struct {
			Email      string            `json:"email" binding:"required,email"`
			Permission models.Permission `json:"permission" binding:"required"`
			ExpiresAt  *time.Time        `json:"expires_at,omitempty"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !req.Permission.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown permission level"})
			return
		}
		if err := requireEdit(c.Request.Context(), g, sharing, id, userID); err != nil {
			respondError(c, err)
			return
		}

		now := time.Now().UTC()
		expires := now.Add(7 * 24 * time.Hour)
		if req.ExpiresAt != nil {
			expires = *req.ExpiresAt
		}
		inv := &models.ShareInvitation{
			ID:          uuid.New(),
			ContainerID: id,
			Email:       req.Email,
			Permission:  req.Permission,
			InvitedBy:   userID,
			Status:      models.InvitationPending,
			CreatedAt:   now,
			ExpiresAt:   expires,
		}
		if err := sharing.SendInvitation(c.Request.Context(), inv); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, inv)
	}
}

// ListInvitations lists a container's invitations. Expired ones are filtered
// here rather than deleted.
func ListInvitations(g *postgres.Gateway, sharing *postgres.Sharing) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uuid.UUID)
		id, ok := containerID(c)
		if !ok {
			return
		}
		if err := requireView(c.Request.Context(), g, sharing, id, userID); err != nil {
			respondError(c, err)
			return
		}
		all, err := sharing.GetInvitationsForContainer(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		pending := make([]models.ShareInvitation, 0, len(all))
		for _, inv := range all {
			if inv.IsPending() {
				pending = append(pending, inv)
			}
		}
		c.JSON(http.StatusOK, pending)
	}
}

// MyInvitations lists the authenticated user's pending invitations.
func MyInvitations(sharing *postgres.Sharing) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*models.User)
		all, err := sharing.GetInvitationsForEmail(c.Request.Context(), user.Email)
		if err != nil {
			respondError(c, err)
			return
		}
		pending := make([]models.ShareInvitation, 0, len(all))
		for _, inv := range all {
			if inv.IsPending() {
				pending = append(pending, inv)
			}
		}
		c.JSON(http.StatusOK, pending)
	}
}

// AcceptInvitation converts a pending invitation into a grant for the
// requester.
func AcceptInvitation(sharing *postgres.Sharing) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uuid.UUID)
		invID, err := uuid.Parse(c.Param("invitationId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invitation ID"})
			return
		}
		if err := sharing.AcceptInvitation(c.Request.Context(), invID, userID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "invitation accepted"})
	}
}

// DeclineInvitation marks a pending invitation declined.
func DeclineInvitation(sharing *postgres.Sharing) gin.HandlerFunc {
	return func(c *gin.Context) {
		invID, err := uuid.Parse(c.Param("invitationId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invitation ID"})
			return
		}
		if err := sharing.DeclineInvitation(c.Request.Context(), invID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "invitation declined"})
	}
}

// CancelInvitation is the sender withdrawing a pending invitation.
func CancelInvitation(sharing *postgres.Sharing) gin.HandlerFunc {
	return func(c *gin.Context) {
		invID, err := uuid.Parse(c.Param("invitationId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invitation ID"})
			return
		}
		if err := sharing.CancelInvitation(c.Request.Context(), invID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "invitation cancelled"})
	}
}

// ListPermissions lists a container's grants.
func ListPermissions(g *postgres.Gateway, sharing *postgres.Sharing) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uuid.UUID)
		id, ok := containerID(c)
		if !ok {
			return
		}
		if err := requireView(c.Request.Context(), g, sharing, id, userID); err != nil {
			respondError(c, err)
			return
		}
		grants, err := sharing.GetAllPermissions(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if grants == nil {
			grants = []models.PermissionGrant{}
		}
		c.JSON(http.StatusOK, grants)
	}
}

// SetPermission changes a collaborator's level.
func SetPermission(g *postgres.Gateway, sharing *postgres.Sharing) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uuid.UUID)
		id, ok := containerID(c)
		if !ok {
			return
		}
		var req struct {
			UserID     uuid.UUID         `json:"user_id" binding:"required"`
			Permission models.Permission `json:"permission" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !req.Permission.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown permission level"})
			return
		}
		if err := requireEdit(c.Request.Context(), g, sharing, id, userID); err != nil {
			respondError(c, err)
			return
		}
		grant := &models.PermissionGrant{
			ContainerID: id,
			UserID:      req.UserID,
			Permission:  req.Permission,
			GrantedBy:   userID,
			GrantedAt:   time.Now().UTC(),
		}
		if err := sharing.SetPermission(c.Request.Context(), grant); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, grant)
	}
}

// RemoveUser revokes a collaborator's access.
func RemoveUser(g *postgres.Gateway, sharing *postgres.Sharing) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uuid.UUID)
		id, ok := containerID(c)
		if !ok {
			return
		}
		target, err := uuid.Parse(c.Param("userId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
			return
		}
		if err := requireEdit(c.Request.Context(), g, sharing, id, userID); err != nil {
			respondError(c, err)
			return
		}
		if err := sharing.RemoveUser(c.Request.Context(), id, target); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "user removed"})
	}
}

// CreateShareLink mints a token-based share link.
func CreateShareLink(g *postgres.Gateway, sharing *postgres.Sharing, shareLinks *postgres.ShareLinks) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uuid.UUID)
		id, ok := containerID(c)
		if !ok {
			return
		}
		var req struct {
			Permission models.Permission `json:"permission" binding:"required"`
			ExpiresAt  *time.Time        `json:"expires_at,omitempty"`
			MaxUses    *int              `json:"max_uses,omitempty"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !req.Permission.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown permission level"})
			return
		}
		if err := requireEdit(c.Request.Context(), g, sharing, id, userID); err != nil {
			respondError(c, err)
			return
		}
		link, err := shareLinks.Create(c.Request.Context(), id, req.Permission, req.ExpiresAt, req.MaxUses)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, link)
	}
}

// ListShareLinks lists a container's share links.
func ListShareLinks(g *postgres.Gateway, sharing *postgres.Sharing, shareLinks *postgres.ShareLinks) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uuid.UUID)
		id, ok := containerID(c)
		if !ok {
			return
		}
		if err := requireView(c.Request.Context(), g, sharing, id, userID); err != nil {
			respondError(c, err)
			return
		}
		links, err := shareLinks.ListForContainer(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if links == nil {
			links = []models.ShareLink{}
		}
		c.JSON(http.StatusOK, links)
	}
}

// GetShareLink resolves a token without consuming a use.
func GetShareLink(shareLinks *postgres.ShareLinks) gin.HandlerFunc {
	return func(c *gin.Context) {
		link, err := shareLinks.GetByToken(c.Request.Context(), c.Param("token"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"share_link": link, "valid": link.IsValid()})
	}
}

// UseShareLink consumes one use of a token if it is still valid.
func UseShareLink(shareLinks *postgres.ShareLinks) gin.HandlerFunc {
	return func(c *gin.Context) {
		link, err := shareLinks.Use(c.Request.Context(), c.Param("token"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, link)
	}
}

// DeactivateShareLink explicitly disables a share link.
func DeactivateShareLink(g *postgres.Gateway, sharing *postgres.Sharing, shareLinks *postgres.ShareLinks) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uuid.UUID)
		id, ok := containerID(c)
		if !ok {
			return
		}
		linkID, err := uuid.Parse(c.Param("shareLinkId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid share link ID"})
			return
		}
		if err := requireEdit(c.Request.Context(), g, sharing, id, userID); err != nil {
			respondError(c, err)
			return
		}
		if err := shareLinks.Deactivate(c.Request.Context(), id, linkID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "share link deactivated"})
	}
}

