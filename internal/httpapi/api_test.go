package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratatoing/ratatoing-server/internal/auth"
	"github.com/ratatoing/ratatoing-server/internal/domain/applications"
	"github.com/ratatoing/ratatoing-server/internal/domain/users"
	"github.com/ratatoing/ratatoing-server/internal/infra/notify"
	"github.com/ratatoing/ratatoing-server/internal/moderation"
)

type fakeUsers struct {
	mu   sync.Mutex
	seq  int64
	rows map[int64]*users.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{rows: map[int64]*users.User{}} }

func (f *fakeUsers) Create(_ context.Context, nu users.NewUser) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if u.Username == nu.Username || u.Email == nu.Email || u.Squeak == nu.Squeak {
			return nil, users.ErrExists
		}
	}
	f.seq++
	u := &users.User{
		ID: f.seq, Username: nu.Username, Email: nu.Email, Squeak: nu.Squeak,
		PasswordHash: nu.PasswordHash, Rank: users.RankNibbler,
		Status: users.StatusPending, CreatedAt: time.Now(),
	}
	f.rows[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, users.ErrNotFound
}

func (f *fakeUsers) decide(id, reviewerID int64, to users.Status) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	if u.Status != users.StatusPending {
		return nil, users.ErrNotPending
	}
	now := time.Now()
	u.Status = to
	u.ApprovedBy = &reviewerID
	u.DecidedAt = &now
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Approve(_ context.Context, id, reviewerID int64) (*users.User, error) {
	return f.decide(id, reviewerID, users.StatusActive)
}

func (f *fakeUsers) Ban(_ context.Context, id, reviewerID int64) (*users.User, error) {
	return f.decide(id, reviewerID, users.StatusBanned)
}

func (f *fakeUsers) ListPending(context.Context) ([]users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []users.User
	for _, u := range f.rows {
		if u.Status == users.StatusPending {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeUsers) ListDecided(_ context.Context, limit int) ([]users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []users.User
	for _, u := range f.rows {
		if u.Status != users.StatusPending && u.DecidedAt != nil {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DecidedAt.After(*out[j].DecidedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// seed inserts a ready-made account, bypassing the signup flow.
func (f *fakeUsers) seed(t *testing.T, username string, rank users.Rank, status users.Status) *users.User {
	t.Helper()
	hash, err := auth.HashPassword("squeak-squeak")
	require.NoError(t, err)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	u := &users.User{
		ID: f.seq, Username: username, Email: username + "@ratatoing.example",
		Squeak: "@" + username, PasswordHash: hash, Rank: rank, Status: status,
		CreatedAt: time.Now(),
	}
	f.rows[u.ID] = u
	cp := *u
	return &cp
}

type fakeApps struct {
	mu    sync.Mutex
	seq   int64
	rows  map[int64]*applications.Application
	users *fakeUsers
}

func newFakeApps(u *fakeUsers) *fakeApps {
	return &fakeApps{rows: map[int64]*applications.Application{}, users: u}
}

func (f *fakeApps) Create(_ context.Context, userID int64, job users.Job, justification string) (*applications.Application, error) {
	if !job.Valid() {
		return nil, applications.ErrUnknownJob
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.rows {
		if a.UserID == userID && a.Status == applications.StatusPending {
			return nil, applications.ErrAlreadyPending
		}
	}
	f.seq++
	a := &applications.Application{
		ID: f.seq, UserID: userID, Job: job, Justification: justification,
		Status: applications.StatusPending, CreatedAt: time.Now(),
	}
	f.rows[a.ID] = a
	cp := *a
	return &cp, nil
}

func (f *fakeApps) Approve(_ context.Context, id, reviewerID int64) (*applications.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok {
		return nil, applications.ErrNotFound
	}
	if a.Status != applications.StatusPending {
		return nil, applications.ErrNotPending
	}
	f.users.mu.Lock()
	if u, ok := f.users.rows[a.UserID]; ok {
		job := a.Job
		u.Job = &job
	}
	f.users.mu.Unlock()
	now := time.Now()
	a.Status = applications.StatusApproved
	a.ReviewedBy = &reviewerID
	a.DecidedAt = &now
	cp := *a
	return &cp, nil
}

func (f *fakeApps) Reject(_ context.Context, id, reviewerID int64) (*applications.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok {
		return nil, applications.ErrNotFound
	}
	if a.Status != applications.StatusPending {
		return nil, applications.ErrNotPending
	}
	now := time.Now()
	a.Status = applications.StatusRejected
	a.ReviewedBy = &reviewerID
	a.DecidedAt = &now
	cp := *a
	return &cp, nil
}

func (f *fakeApps) ListPending(context.Context) ([]applications.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []applications.Application
	for _, a := range f.rows {
		if a.Status == applications.StatusPending {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeApps) ListDecided(_ context.Context, limit int) ([]applications.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []applications.Application
	for _, a := range f.rows {
		if a.Status != applications.StatusPending && a.DecidedAt != nil {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DecidedAt.After(*out[j].DecidedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *fakeUsers, *fakeApps) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fu := newFakeUsers()
	fa := newFakeApps(fu)
	log := slog.New(slog.DiscardHandler)

	api := New(Deps{
		Log:    log,
		Users:  fu,
		Apps:   fa,
		Mod:    moderation.NewService(log, fu, fa),
		Notify: notify.Disabled(),
		Tokens: auth.NewTokens("test-secret", time.Hour),
	})

	r := gin.New()
	api.Routes(r)
	return r, fu, fa
}

func doJSON(r *gin.Engine, method, url, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": username,
		"password": "squeak-squeak",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func TestRegister(t *testing.T) {
	r, _, _ := newTestRouter(t)

	body := gin.H{
		"username": "remy",
		"email":    "remy@ratatoing.example",
		"squeak":   "@remy",
		"password": "gorgonzola9000",
	}

	w := doJSON(r, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(users.StatusPending), resp["status"])

	// Same identity again is refused.
	w = doJSON(r, http.MethodPost, "/api/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Broken email never reaches the store.
	w = doJSON(r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "emile",
		"email":    "not-an-email",
		"squeak":   "@emile",
		"password": "gorgonzola9000",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPendingAccountIsGated(t *testing.T) {
	r, fu, _ := newTestRouter(t)
	fu.seed(t, "newcomer", users.RankNibbler, users.StatusPending)
	token := login(t, r, "newcomer")

	// The profile is reachable while pending...
	w := doJSON(r, http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// ...but the community is not.
	w = doJSON(r, http.MethodGet, "/api/jobs", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBannedAccountCannotLogin(t *testing.T) {
	r, fu, _ := newTestRouter(t)
	fu.seed(t, "villain", users.RankNibbler, users.StatusBanned)

	w := doJSON(r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "villain",
		"password": "squeak-squeak",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMissingOrBadToken(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserModerationFlow(t *testing.T) {
	r, fu, _ := newTestRouter(t)
	fu.seed(t, "banson", users.RankBanson, users.StatusActive)
	pending := fu.seed(t, "newcomer", users.RankNibbler, users.StatusPending)
	adminToken := login(t, r, "banson")

	w := doJSON(r, http.MethodGet, "/api/admin/pending/users", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "newcomer")

	url := fmt.Sprintf("/api/admin/users/%d/approve", pending.ID)
	w = doJSON(r, http.MethodPost, url, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// A decided user cannot be decided again.
	w = doJSON(r, http.MethodPost, url, adminToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = doJSON(r, http.MethodPost, fmt.Sprintf("/api/admin/users/%d/ban", pending.ID), adminToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown target.
	w = doJSON(r, http.MethodPost, "/api/admin/users/9999/approve", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/api/admin/decided/users?limit=5", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "newcomer")
}

func TestModerationRequiresTopRank(t *testing.T) {
	r, fu, _ := newTestRouter(t)
	fu.seed(t, "guard", users.RankCheeseGuard, users.StatusActive)
	pending := fu.seed(t, "newcomer", users.RankNibbler, users.StatusPending)
	token := login(t, r, "guard")

	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/admin/users/%d/approve", pending.ID), token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodGet, "/api/admin/pending/users", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Target stays pending.
	u, err := fu.GetByID(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, users.StatusPending, u.Status)
}

func TestJobApplicationFlow(t *testing.T) {
	r, fu, _ := newTestRouter(t)
	fu.seed(t, "banson", users.RankBanson, users.StatusActive)
	worker := fu.seed(t, "linguini", users.RankNibbler, users.StatusActive)
	workerToken := login(t, r, "linguini")
	adminToken := login(t, r, "banson")

	w := doJSON(r, http.MethodPost, "/api/jobs/apply", workerToken, gin.H{
		"job":           string(users.JobForumModerator),
		"justification": "I never sleep and I love rules.",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var app applications.Application
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &app))

	// Second pending application is refused.
	w = doJSON(r, http.MethodPost, "/api/jobs/apply", workerToken, gin.H{
		"job":           string(users.JobShopClerk),
		"justification": "Also I can count sniffles.",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Unknown job is a constraint violation.
	w = doJSON(r, http.MethodPost, "/api/jobs/apply", adminToken, gin.H{
		"job":           "Cheese Taster",
		"justification": "Surely this one exists.",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(r, http.MethodPost, fmt.Sprintf("/api/admin/applications/%d/approve", app.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The approved job landed on the user record.
	u, err := fu.GetByID(context.Background(), worker.ID)
	require.NoError(t, err)
	require.NotNil(t, u.Job)
	assert.Equal(t, users.JobForumModerator, *u.Job)

	// And the decision is final.
	w = doJSON(r, http.MethodPost, fmt.Sprintf("/api/admin/applications/%d/reject", app.ID), adminToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}
