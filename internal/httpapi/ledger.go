package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/ratatoing/ratatoing-server/internal/domain/ledger"
	"github.com/ratatoing/ratatoing-server/internal/domain/users"
)

type payoutRequest struct {
	Job    string `json:"job" binding:"required"`
	TaskID *int64 `json:"task_id"`
	UserID int64  `json:"user_id" binding:"required"`
	Amount int64  `json:"amount" binding:"required,min=1"`
	Note   string `json:"note"`
}

func (a *API) issuePayout(c *gin.Context) {
	var req payoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job := users.Job(req.Job)
	if !job.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unknown job"})
		return
	}

	p, err := a.Ledger.IssuePayout(c.Request.Context(), ledger.NewPayout{
		Job:      job,
		TaskID:   req.TaskID,
		UserID:   req.UserID,
		Amount:   req.Amount,
		IssuedBy: currentUser(c).ID,
		Note:     req.Note,
	})
	if err != nil {
		a.fail(c, err)
		return
	}
	a.Log.Info("payout issued", "payout_id", p.ID, "user_id", p.UserID, "amount", p.Amount)
	c.JSON(http.StatusCreated, p)
}

func (a *API) listPayouts(c *gin.Context) {
	list, err := a.Ledger.ListPayouts(c.Request.Context(), queryLimit(c))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payouts": list})
}

type transferRequest struct {
	ToUserID int64  `json:"to_user_id" binding:"required"`
	Amount   int64  `json:"amount" binding:"required,min=1"`
	Note     string `json:"note"`
}

func (a *API) transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u := currentUser(c)
	if req.ToUserID == u.ID {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "cannot transfer to yourself"})
		return
	}

	if err := a.Ledger.Transfer(c.Request.Context(), u.ID, req.ToUserID, req.Amount, req.Note); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transferred": req.Amount})
}

func (a *API) listTransactions(c *gin.Context) {
	list, err := a.Ledger.ListByUser(c.Request.Context(), currentUser(c).ID, queryLimit(c))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}

// exportTransactions streams the whole ledger as an xlsx workbook.
func (a *API) exportTransactions(c *gin.Context) {
	entries, err := a.Ledger.ListAll(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	header := []interface{}{"id", "user_id", "counterparty_id", "amount", "kind", "note", "created_at"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		a.fail(c, err)
		return
	}

	row := 2
	for _, e := range entries {
		var counterparty any
		if e.CounterpartyID != nil {
			counterparty = *e.CounterpartyID
		}
		excelRow := []interface{}{e.ID, e.UserID, counterparty, e.Amount, string(e.Kind), e.Note, e.CreatedAt.Format(time.RFC3339)}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			a.fail(c, err)
			return
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			a.fail(c, err)
			return
		}
		row++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		a.fail(c, err)
		return
	}

	fileName := fmt.Sprintf("transactions_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
