package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ratatoing/ratatoing-server/internal/domain/tasks"
	"github.com/ratatoing/ratatoing-server/internal/domain/users"
)

// listTasks shows open tasks; workers see their own job category, admins
// see everything unless they filter by ?job=.
func (a *API) listTasks(c *gin.Context) {
	u := currentUser(c)

	var job *users.Job
	if q := c.Query("job"); q != "" {
		j := users.Job(q)
		job = &j
	} else if !u.Rank.CanAdministrate() {
		job = u.Job
	}
	if job != nil && !job.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown job"})
		return
	}

	list, err := a.Tasks.ListOpen(c.Request.Context(), job)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": list})
}

type createTaskRequest struct {
	Job        string `json:"job" binding:"required"`
	AssigneeID *int64 `json:"assignee_id"`
	Title      string `json:"title" binding:"required"`
	Details    string `json:"details"`
	Reward     int64  `json:"reward" binding:"min=0"`
	Recurring  bool   `json:"recurring"`
}

func (a *API) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job := users.Job(req.Job)
	if !job.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unknown job"})
		return
	}

	t, err := a.Tasks.Create(c.Request.Context(), tasks.NewTask{
		Job:        job,
		AssigneeID: req.AssigneeID,
		Title:      req.Title,
		Details:    req.Details,
		Reward:     req.Reward,
		Recurring:  req.Recurring,
		CreatedBy:  currentUser(c).ID,
	})
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (a *API) completeTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	u := currentUser(c)
	if u.Job == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no job assigned"})
		return
	}

	t, err := a.Tasks.Complete(c.Request.Context(), id, u.ID, *u.Job)
	if err != nil {
		a.fail(c, err)
		return
	}
	a.Log.Info("task completed", "task_id", t.ID, "worker_id", u.ID)
	c.JSON(http.StatusOK, t)
}
