package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ratatoing/ratatoing-server/internal/domain/users"
)

func (a *API) listJobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": users.AllJobs()})
}

type applyRequest struct {
	Job           string `json:"job" binding:"required"`
	Justification string `json:"justification" binding:"required,min=10"`
}

func (a *API) applyForJob(c *gin.Context) {
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u := currentUser(c)
	app, err := a.Apps.Create(c.Request.Context(), u.ID, users.Job(req.Job), req.Justification)
	if err != nil {
		a.fail(c, err)
		return
	}

	a.Notify.ApplicationReceived(u.Username, app.Job)
	a.Log.Info("job application filed", "user_id", u.ID, "job", app.Job)
	c.JSON(http.StatusCreated, app)
}
