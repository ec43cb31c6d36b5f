package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ratatoing/ratatoing-server/internal/domain/users"
)

const ctxUserKey = "currentUser"

// authRequired resolves the bearer token into a user and stores it on
// the request context. Every downstream handler gets the caller
// explicitly instead of reading ambient session state.
func (a *API) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		claims, err := a.Tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		u, err := a.Users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown account"})
			return
		}
		if u.Status == users.StatusBanned {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account banned"})
			return
		}
		c.Set(ctxUserKey, u)
		c.Next()
	}
}

// requireActive keeps pending accounts out of the community until a
// reviewer approves them; they can still see /api/me.
func (a *API) requireActive() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c).Status != users.StatusActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account awaiting approval"})
			return
		}
		c.Next()
	}
}

func (a *API) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).Rank.CanAdministrate() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient rank"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *users.User {
	return c.MustGet(ctxUserKey).(*users.User)
}
