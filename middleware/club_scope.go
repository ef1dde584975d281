// Package middleware - request scoping for the assignment API.
// File: middleware/club_scope.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lineup-board/logger"
)

// ClubScopeKey is where the middleware stashes the match-club id.
const ClubScopeKey = "matchClubID"

// ClubScope requires a matchClubId path param and makes it available to
// the handlers. Every API operation is scoped to one match-club pairing;
// a request without one has nothing to act on.
func ClubScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		matchClubID := c.Param("matchClubId")
		if matchClubID == "" {
			logger.Warn.Printf("ClubScope: missing matchClubId on %s", c.FullPath())
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown match-club"})
			return
		}
		c.Set(ClubScopeKey, matchClubID)
		c.Next()
	}
}
