package handlers

import (
	"net/http"
	"time"

	"linkvault/pkg/gateway"
	"linkvault/pkg/gateway/postgres"
	"linkvault/pkg/models"
	"linkvault/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListContainers lists all containers visible to the authenticated user,
// owned and shared.
func ListContainers(g *postgres.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uuid.UUID)

		containers, err := g.ListForUser(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		if containers == nil {
			containers = []models.Container{}
		}
		c.JSON(http.StatusOK, containers)
	}
}

// CreateContainer creates a new container owned by the requester.
func CreateContainer(g *postgres.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uuid.UUID)

		var create models.ContainerCreate
		if err := c.ShouldBindJSON(&create); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := create.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		now := time.Now().UTC()
		container := models.Container{
			Name:        create.Name,
			Description: create.Description,
			Color:       create.Color,
			OwnerID:     userID,
			Links:       []models.Link{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		id, err := g.Create(c.Request.Context(), &container)
		if err != nil {
			respondError(c, err)
			return
		}
		container.ID = id
		c.JSON(http.StatusCreated, container)
	}
}

// GetContainer retrieves a single container.
func GetContainer(g *postgres.Gateway, sharing *postgres.Sharing) gin.HandlerFunc {
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
		container, err := g.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, container)
	}
}

// UpdateContainer updates container metadata.
func UpdateContainer(g *postgres.Gateway, sharing *postgres.Sharing) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uuid.UUID)
		id, ok := containerID(c)
		if !ok {
			return
		}
		var update models.ContainerUpdate
		if err := c.ShouldBindJSON(&update); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := update.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := requireEdit(c.Request.Context(), g, sharing, id, userID); err != nil {
			respondError(c, err)
			return
		}
		if err := g.Update(c.Request.Context(), id, update); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "container updated"})
	}
}

// DeleteContainer deletes a container. Only the owner may do this.
func DeleteContainer(g *postgres.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uuid.UUID)
		id, ok := containerID(c)
		if !ok {
			return
		}
		container, err := g.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if container.OwnerID != userID {
			respondError(c, gateway.NewPermissionDeniedError("only the owner can delete a container"))
			return
		}
		if err := g.Delete(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "container deleted"})
	}
}

// AddLink appends a link to the container document. The client supplies the
// link identity so it can mirror the record before the response lands.
func AddLink(g *postgres.Gateway, sharing *postgres.Sharing) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uuid.UUID)
		id, ok := containerID(c)
		if !ok {
			return
		}
		var link models.Link
		if err := c.ShouldBindJSON(&link); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if link.ID == "" {
			link.ID = models.NewLinkID()
		}
		normalized, err := utils.NormalizeURL(link.URL)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		link.URL = normalized
		link.Tags = models.NormalizeTags(link.Tags)
		if len(link.Note) > models.MaxLinkNoteLen {
			c.JSON(http.StatusBadRequest, gin.H{"error": "note too long"})
			return
		}
		if link.CreatedBy == uuid.Nil {
			link.CreatedBy = userID
		}
		if err := requireEdit(c.Request.Context(), g, sharing, id, userID); err != nil {
			respondError(c, err)
			return
		}
		if err := g.AddLink(c.Request.Context(), id, link); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, link)
	}
}

// UpdateLink applies a partial link update inside the container document.
func UpdateLink(g *postgres.Gateway, sharing *postgres.Sharing) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uuid.UUID)
		id, ok := containerID(c)
		if !ok {
			return
		}
		linkID := c.Param("linkId")

		var update models.LinkUpdate
		if err := c.ShouldBindJSON(&update); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := update.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := requireEdit(c.Request.Context(), g, sharing, id, userID); err != nil {
			respondError(c, err)
			return
		}
		if err := g.UpdateLink(c.Request.Context(), id, linkID, update); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "link updated"})
	}
}

// DeleteLink removes a single link from the container document.
func DeleteLink(g *postgres.Gateway, sharing *postgres.Sharing) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uuid.UUID)
		id, ok := containerID(c)
		if !ok {
			return
		}
		if err := requireEdit(c.Request.Context(), g, sharing, id, userID); err != nil {
			respondError(c, err)
			return
		}
		if err := g.DeleteLink(c.Request.Context(), id, c.Param("linkId")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "link deleted"})
	}
}

// DeleteLinks bulk-deletes links as one all-or-nothing container write.
func DeleteLinks(g *postgres.Gateway, sharing *postgres.Sharing) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uuid.UUID)
		id, ok := containerID(c)
		if !ok {
			return
		}
		var req struct {
			LinkIDs []string `json:"link_ids" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := requireEdit(c.Request.Context(), g, sharing, id, userID); err != nil {
			respondError(c, err)
			return
		}
		if err := g.DeleteLinks(c.Request.Context(), id, req.LinkIDs); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "links deleted"})
	}
}

// ReorderLinks persists the full caller-computed link ordering.
func ReorderLinks(g *postgres.Gateway, sharing *postgres.Sharing) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uuid.UUID)
		id, ok := containerID(c)
		if !ok {
			return
		}
		var req struct {
			LinkIDs []string `json:"link_ids" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := requireEdit(c.Request.Context(), g, sharing, id, userID); err != nil {
			respondError(c, err)
			return
		}
		if err := g.ReorderLinks(c.Request.Context(), id, req.LinkIDs); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "links reordered"})
	}
}

// MoveLinks moves links from this container into another one.
func MoveLinks(g *postgres.Gateway, sharing *postgres.Sharing) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uuid.UUID)
		id, ok := containerID(c)
		if !ok {
			return
		}
		var req struct {
			TargetID uuid.UUID `json:"target_id" binding:"required"`
			LinkIDs  []string  `json:"link_ids" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx := c.Request.Context()
		if err := requireEdit(ctx, g, sharing, id, userID); err != nil {
			respondError(c, err)
			return
		}
		if err := requireEdit(ctx, g, sharing, req.TargetID, userID); err != nil {
			respondError(c, err)
			return
		}
		if err := g.MoveLinks(ctx, id, req.TargetID, req.LinkIDs); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "links moved"})
	}
}

// RecordClick bumps a link's click counters.
func RecordClick(g *postgres.Gateway, sharing *postgres.Sharing) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userID").(uuid.UUID)
		id, ok := containerID(c)
		if !ok {
			return
		}
		var req struct {
			Day string `json:"day"`
		}
		// Body is optional; default to today.
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		if req.Day == "" {
			req.Day = time.Now().UTC().Format("2006-01-02")
		}
		if err := requireView(c.Request.Context(), g, sharing, id, userID); err != nil {
			respondError(c, err)
			return
		}
		if err := g.RecordClick(c.Request.Context(), id, c.Param("linkId"), req.Day); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "click recorded"})
	}
}
