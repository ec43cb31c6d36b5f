// Package httpapi is the JSON surface of the Ratatoing backend.
package httpapi

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ratatoing/ratatoing-server/internal/auth"
	"github.com/ratatoing/ratatoing-server/internal/domain/applications"
	"github.com/ratatoing/ratatoing-server/internal/domain/gallery"
	"github.com/ratatoing/ratatoing-server/internal/domain/ledger"
	"github.com/ratatoing/ratatoing-server/internal/domain/mail"
	"github.com/ratatoing/ratatoing-server/internal/domain/shop"
	"github.com/ratatoing/ratatoing-server/internal/domain/tasks"
	"github.com/ratatoing/ratatoing-server/internal/domain/users"
	"github.com/ratatoing/ratatoing-server/internal/infra/notify"
	"github.com/ratatoing/ratatoing-server/internal/moderation"
)

// UserStore is the account access the API needs: signup and lookups for
// login and the auth middleware.
type UserStore interface {
	Create(ctx context.Context, nu users.NewUser) (*users.User, error)
	GetByID(ctx context.Context, id int64) (*users.User, error)
	GetByUsername(ctx context.Context, username string) (*users.User, error)
}

type ApplicationStore interface {
	Create(ctx context.Context, userID int64, job users.Job, justification string) (*applications.Application, error)
}

type TaskStore interface {
	Create(ctx context.Context, nt tasks.NewTask) (*tasks.Task, error)
	ListOpen(ctx context.Context, job *users.Job) ([]tasks.Task, error)
	Complete(ctx context.Context, taskID, workerID int64, job users.Job) (*tasks.Task, error)
}

type ShopStore interface {
	CreateItem(ctx context.Context, ni shop.NewItem) (*shop.Item, error)
	List(ctx context.Context, activeOnly bool) ([]shop.Item, error)
	Deactivate(ctx context.Context, id int64) error
	Purchase(ctx context.Context, buyerID, itemID int64) (*shop.Item, error)
}

type MailStore interface {
	Send(ctx context.Context, senderID, recipientID int64, subject, body string) (*mail.Message, error)
	Inbox(ctx context.Context, userID int64) ([]mail.Message, error)
	MarkRead(ctx context.Context, id, userID int64) error
}

type GalleryStore interface {
	Add(ctx context.Context, uploaderID int64, title, mime, fileName string, size int64) (*gallery.Item, error)
	List(ctx context.Context, includeHidden bool) ([]gallery.Item, error)
	Hide(ctx context.Context, id int64) error
}

type LedgerStore interface {
	IssuePayout(ctx context.Context, np ledger.NewPayout) (*ledger.Payout, error)
	Transfer(ctx context.Context, fromID, toID, amount int64, note string) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]ledger.Entry, error)
	ListAll(ctx context.Context) ([]ledger.Entry, error)
	ListPayouts(ctx context.Context, limit int) ([]ledger.Payout, error)
}

type Deps struct {
	Log     *slog.Logger
	Users   UserStore
	Apps    ApplicationStore
	Mod     *moderation.Service
	Tasks   TaskStore
	Shop    ShopStore
	Mail    MailStore
	Gallery GalleryStore
	Ledger  LedgerStore
	Notify  *notify.AdminChat
	Tokens  *auth.Tokens

	MediaDir       string
	MetricsEnabled bool
}

type API struct {
	Deps
}

func New(d Deps) *API { return &API{Deps: d} }

func (a *API) Routes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) { c.String(200, "OK") })
	if a.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	if a.MediaDir != "" {
		r.Static("/media", a.MediaDir)
	}

	api := r.Group("/api")
	api.POST("/auth/register", a.register)
	api.POST("/auth/login", a.login)

	authed := api.Group("", a.authRequired())
	authed.GET("/me", a.me)

	active := authed.Group("", a.requireActive())
	active.GET("/jobs", a.listJobs)
	active.POST("/jobs/apply", a.applyForJob)
	active.GET("/tasks", a.listTasks)
	active.POST("/tasks/:id/complete", a.completeTask)
	active.GET("/shop/items", a.listShopItems)
	active.POST("/shop/items/:id/buy", a.buyShopItem)
	active.POST("/transfers", a.transfer)
	active.GET("/transactions", a.listTransactions)
	active.GET("/emails", a.inbox)
	active.POST("/emails", a.sendMail)
	active.POST("/emails/:id/read", a.markMailRead)
	active.GET("/gallery", a.listGallery)
	active.POST("/gallery", a.uploadMedia)

	admin := active.Group("/admin", a.requireAdmin())
	admin.GET("/pending/users", a.pendingUsers)
	admin.GET("/pending/applications", a.pendingApplications)
	admin.GET("/decided/users", a.decidedUsers)
	admin.GET("/decided/applications", a.decidedApplications)
	admin.POST("/users/:id/approve", a.approveUser)
	admin.POST("/users/:id/ban", a.banUser)
	admin.POST("/applications/:id/approve", a.approveApplication)
	admin.POST("/applications/:id/reject", a.rejectApplication)
	admin.POST("/tasks", a.createTask)
	admin.POST("/shop/items", a.createShopItem)
	admin.POST("/shop/items/:id/retire", a.retireShopItem)
	admin.POST("/payouts", a.issuePayout)
	admin.GET("/payouts", a.listPayouts)
	admin.POST("/gallery/:id/hide", a.hideMedia)
	admin.GET("/export/transactions", a.exportTransactions)
}
