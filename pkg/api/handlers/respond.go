package handlers

import (
	"context"
	"errors"
	"net/http"

	"linkvault/pkg/gateway"
	"linkvault/pkg/gateway/postgres"
	"linkvault/pkg/permissions"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError maps the gateway error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var ge *gateway.Error
	if errors.As(err, &ge) {
		switch ge.Type {
		case gateway.ErrorTypeValidation:
			status = http.StatusBadRequest
		case gateway.ErrorTypeNotFound:
			status = http.StatusNotFound
		case gateway.ErrorTypePermissionDenied:
			status = http.StatusForbidden
		case gateway.ErrorTypeExpired:
			status = http.StatusGone
		case gateway.ErrorTypeGateway:
			status = http.StatusBadGateway
		}
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func containerID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid container ID"})
		return uuid.Nil, false
	}
	return id, true
}

// requireEdit checks that the requester owns the container or holds an edit
// grant. These checks mirror the client-side permission model at the service
// boundary.
func requireEdit(ctx context.Context, g *postgres.Gateway, sharing *postgres.Sharing, id, userID uuid.UUID) error {
	container, err := g.Get(ctx, id)
	if err != nil {
		return err
	}
	grant, err := sharing.GetPermission(ctx, id, userID)
	if err != nil {
		return err
	}
	if !permissions.CanEdit(container, grant, userID) {
		return gateway.NewPermissionDeniedError("container " + id.String())
	}
	return nil
}

// requireView checks that the requester can see the container at all.
func requireView(ctx context.Context, g *postgres.Gateway, sharing *postgres.Sharing, id, userID uuid.UUID) error {
	container, err := g.Get(ctx, id)
	if err != nil {
		return err
	}
	grant, err := sharing.GetPermission(ctx, id, userID)
	if err != nil {
		return err
	}
	if !permissions.CanView(container, grant, userID) {
		return gateway.NewPermissionDeniedError("container " + id.String())
	}
	return nil
}
