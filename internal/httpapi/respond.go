package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ratatoing/ratatoing-server/internal/domain/applications"
	"github.com/ratatoing/ratatoing-server/internal/domain/gallery"
	"github.com/ratatoing/ratatoing-server/internal/domain/ledger"
	"github.com/ratatoing/ratatoing-server/internal/domain/mail"
	"github.com/ratatoing/ratatoing-server/internal/domain/shop"
	"github.com/ratatoing/ratatoing-server/internal/domain/tasks"
	"github.com/ratatoing/ratatoing-server/internal/domain/users"
	"github.com/ratatoing/ratatoing-server/internal/moderation"
)

// fail maps domain errors onto HTTP statuses: unauthorized 403, missing
// targets 404, transitions on a decided record 409, constraint breaks 422.
func (a *API) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, moderation.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient rank"})
	case errors.Is(err, moderation.ErrNotFound),
		errors.Is(err, users.ErrNotFound),
		errors.Is(err, applications.ErrNotFound),
		errors.Is(err, tasks.ErrNotFound),
		errors.Is(err, shop.ErrNotFound),
		errors.Is(err, mail.ErrNotFound),
		errors.Is(err, gallery.ErrNotFound),
		errors.Is(err, ledger.ErrNoAccount):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, moderation.ErrInvalidState),
		errors.Is(err, users.ErrNotPending),
		errors.Is(err, applications.ErrNotPending),
		errors.Is(err, tasks.ErrAlreadyDone):
		c.JSON(http.StatusConflict, gin.H{"error": "already decided"})
	case errors.Is(err, moderation.ErrConstraint),
		errors.Is(err, applications.ErrUnknownJob),
		errors.Is(err, applications.ErrAlreadyPending),
		errors.Is(err, tasks.ErrNotEligible),
		errors.Is(err, shop.ErrOutOfStock),
		errors.Is(err, shop.ErrBadPrice),
		errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrBadAmount):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, users.ErrExists):
		c.JSON(http.StatusConflict, gin.H{"error": "username, email or squeak already taken"})
	default:
		a.Log.Error("request failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
