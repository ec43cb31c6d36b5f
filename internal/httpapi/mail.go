package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ratatoing/ratatoing-server/internal/domain/users"
)

type sendMailRequest struct {
	RecipientID int64  `json:"recipient_id" binding:"required"`
	Subject     string `json:"subject" binding:"required,max=200"`
	Body        string `json:"body" binding:"required"`
}

func (a *API) sendMail(c *gin.Context) {
	var req sendMailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Recipient must exist and not be banned.
	rcpt, err := a.Users.GetByID(c.Request.Context(), req.RecipientID)
	if err != nil {
		a.fail(c, err)
		return
	}
	if rcpt.Status == users.StatusBanned {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "recipient cannot receive mail"})
		return
	}

	m, err := a.Mail.Send(c.Request.Context(), currentUser(c).ID, rcpt.ID, req.Subject, req.Body)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (a *API) inbox(c *gin.Context) {
	list, err := a.Mail.Inbox(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"emails": list})
}

func (a *API) markMailRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := a.Mail.MarkRead(c.Request.Context(), id, currentUser(c).ID); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": id})
}
