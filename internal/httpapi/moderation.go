package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (a *API) pendingUsers(c *gin.Context) {
	list, err := a.Mod.PendingUsers(c.Request.Context(), currentUser(c))
	if err != nil {
		a.fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(list))
	for i := range list {
		out = append(out, userView(&list[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

func (a *API) decidedUsers(c *gin.Context) {
	list, err := a.Mod.RecentUsers(c.Request.Context(), currentUser(c), queryLimit(c))
	if err != nil {
		a.fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(list))
	for i := range list {
		out = append(out, userView(&list[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

func (a *API) approveUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	u, err := a.Mod.ApproveUser(c.Request.Context(), currentUser(c), id)
	if err != nil {
		a.fail(c, err)
		return
	}
	a.Notify.DecisionMade("user", u.Username, "approved")
	c.JSON(http.StatusOK, userView(u))
}

func (a *API) banUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	u, err := a.Mod.BanUser(c.Request.Context(), currentUser(c), id)
	if err != nil {
		a.fail(c, err)
		return
	}
	a.Notify.DecisionMade("user", u.Username, "banned")
	c.JSON(http.StatusOK, userView(u))
}

func (a *API) pendingApplications(c *gin.Context) {
	list, err := a.Mod.PendingApplications(c.Request.Context(), currentUser(c))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": list})
}

func (a *API) decidedApplications(c *gin.Context) {
	list, err := a.Mod.RecentApplications(c.Request.Context(), currentUser(c), queryLimit(c))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": list})
}

func (a *API) approveApplication(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	app, err := a.Mod.ApproveApplication(c.Request.Context(), currentUser(c), id)
	if err != nil {
		a.fail(c, err)
		return
	}
	a.Notify.DecisionMade("application", string(app.Job), "approved")
	c.JSON(http.StatusOK, app)
}

func (a *API) rejectApplication(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	app, err := a.Mod.RejectApplication(c.Request.Context(), currentUser(c), id)
	if err != nil {
		a.fail(c, err)
		return
	}
	a.Notify.DecisionMade("application", string(app.Job), "rejected")
	c.JSON(http.StatusOK, app)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func queryLimit(c *gin.Context) int {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
