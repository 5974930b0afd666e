package api

import (
	"linkvault/pkg/api/handlers"
	"linkvault/pkg/api/middleware"
	"linkvault/pkg/gateway/postgres"

	"github.com/gin-gonic/gin"
)

func NewRouter(g *postgres.Gateway) *gin.Engine {
	router := gin.Default()

	sharing := g.Sharing()
	shareLinks := g.ShareLinks()
	users := g.Users()

	// Middleware
	router.Use(middleware.RequestLogger())
	router.Use(middleware.ErrorHandler())

	// Health check
	router.GET("/health", handlers.HealthCheck)

	// API routes
	v1 := router.Group("/api/v1")
	{
		// Containers and their embedded links
		containers := v1.Group("/containers")
		containers.Use(middleware.RequireAuth(users))
		{
			containers.GET("", handlers.ListContainers(g))
			containers.POST("", handlers.CreateContainer(g))
			containers.GET("/:id", handlers.GetContainer(g, sharing))
			containers.PUT("/:id", handlers.UpdateContainer(g, sharing))
			containers.DELETE("/:id", handlers.DeleteContainer(g))

			containers.POST("/:id/links", handlers.AddLink(g, sharing))
			containers.PUT("/:id/links/order", handlers.ReorderLinks(g, sharing))
			containers.POST("/:id/links/bulk-delete", handlers.DeleteLinks(g, sharing))
			containers.POST("/:id/links/move", handlers.MoveLinks(g, sharing))
			containers.PUT("/:id/links/:linkId", handlers.UpdateLink(g, sharing))
			containers.DELETE("/:id/links/:linkId", handlers.DeleteLink(g, sharing))
			containers.POST("/:id/links/:linkId/click", handlers.RecordClick(g, sharing))

			// Sharing
			containers.POST("/:id/invitations", handlers.SendInvitation(g, sharing))
			containers.GET("/:id/invitations", handlers.ListInvitations(g, sharing))
			containers.GET("/:id/permissions", handlers.ListPermissions(g, sharing))
			containers.PUT("/:id/permissions", handlers.SetPermission(g, sharing))
			containers.DELETE("/:id/permissions/:userId", handlers.RemoveUser(g, sharing))
			containers.POST("/:id/share-links", handlers.CreateShareLink(g, sharing, shareLinks))
			containers.GET("/:id/share-links", handlers.ListShareLinks(g, sharing, shareLinks))
			containers.DELETE("/:id/share-links/:shareLinkId", handlers.DeactivateShareLink(g, sharing, shareLinks))
		}

		// Invitation lifecycle from the invitee's side
		invitations := v1.Group("/invitations")
		invitations.Use(middleware.RequireAuth(users))
		{
			invitations.GET("", handlers.MyInvitations(sharing))
			invitations.POST("/:invitationId/accept", handlers.AcceptInvitation(sharing))
			invitations.POST("/:invitationId/decline", handlers.DeclineInvitation(sharing))
			invitations.DELETE("/:invitationId", handlers.CancelInvitation(sharing))
		}

		// Token-based access does not require an API key
		share := v1.Group("/share")
		{
			share.GET("/:token", handlers.GetShareLink(shareLinks))
			share.POST("/:token/use", handlers.UseShareLink(shareLinks))
		}

		// Users
		usersGroup := v1.Group("/users")
		{
			usersGroup.POST("", handlers.CreateUser(users))
			usersGroup.GET("/me", middleware.RequireAuth(users), handlers.GetCurrentUser())
			usersGroup.GET("/:id/display-name", middleware.RequireAuth(users), handlers.GetDisplayName(users))
		}
	}

	return router
}
