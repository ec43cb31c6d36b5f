package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ratatoing/ratatoing-server/internal/auth"
	"github.com/ratatoing/ratatoing-server/internal/domain/users"
	"github.com/ratatoing/ratatoing-server/internal/infra/metrics"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Email    string `json:"email" binding:"required,email"`
	Squeak   string `json:"squeak" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=8"`
}

func (a *API) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		a.fail(c, err)
		return
	}

	u, err := a.Users.Create(c.Request.Context(), users.NewUser{
		Username:     req.Username,
		Email:        req.Email,
		Squeak:       req.Squeak,
		PasswordHash: hash,
	})
	if err != nil {
		a.fail(c, err)
		return
	}

	metrics.Signups.Inc()
	a.Notify.SignupReceived(u)
	a.Log.Info("signup received", "user_id", u.ID, "username", u.Username)

	c.JSON(http.StatusCreated, gin.H{
		"user_id": u.ID,
		"status":  u.Status,
		"message": "registration received, awaiting approval",
	})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *API) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := a.Users.GetByUsername(c.Request.Context(), req.Username)
	if err != nil || !auth.CheckPassword(req.Password, u.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if u.Status == users.StatusBanned {
		c.JSON(http.StatusForbidden, gin.H{"error": "account banned"})
		return
	}

	token, expires, err := a.Tokens.Issue(u.ID, u.Username)
	if err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expires,
		"status":     u.Status,
	})
}

func (a *API) me(c *gin.Context) {
	c.JSON(http.StatusOK, userView(currentUser(c)))
}

// userView strips the password hash; everything else on the profile is
// visible to the owner and to admins.
func userView(u *users.User) gin.H {
	return gin.H{
		"id":              u.ID,
		"username":        u.Username,
		"email":           u.Email,
		"squeak":          u.Squeak,
		"rank":            u.Rank,
		"status":          u.Status,
		"job":             u.Job,
		"approved_by":     u.ApprovedBy,
		"pocket_sniffles": u.PocketSniffles,
		"created_at":      u.CreatedAt,
	}
}
