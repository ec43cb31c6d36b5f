package users

import "time"

type Rank string

const (
	RankNibbler      Rank = "Nibbler"
	RankCheeseGuard  Rank = "Cheese Guard"
	RankEliteNibbler Rank = "Elite Nibbler"
	RankBanson       Rank = "Banson"
)

// rankOrder defines the hierarchy; higher value means more authority.
var rankOrder = map[Rank]int{
	RankNibbler:      0,
	RankCheeseGuard:  1,
	RankEliteNibbler: 2,
	RankBanson:       3,
}

func (r Rank) Valid() bool { _, ok := rankOrder[r]; return ok }

func (r Rank) Level() int { return rankOrder[r] }

func (r Rank) AtLeast(other Rank) bool {
	return r.Valid() && other.Valid() && rankOrder[r] >= rankOrder[other]
}

// CanAdministrate reports whether the rank carries moderation authority.
// Only the top rank qualifies.
func (r Rank) CanAdministrate() bool { return r == RankBanson }

type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusBanned  Status = "banned"
)

type Job string

const (
	JobForumModerator Job = "Forum Moderator"
	JobShopClerk      Job = "Shop Clerk"
	JobGalleryCurator Job = "Gallery Curator"
	JobPestControl    Job = "Pest Control"
)

func AllJobs() []Job {
	return []Job{JobForumModerator, JobShopClerk, JobGalleryCurator, JobPestControl}
}

func (j Job) Valid() bool {
	switch j {
	case JobForumModerator, JobShopClerk, JobGalleryCurator, JobPestControl:
		return true
	}
	return false
}

type User struct {
	ID           int64
	Username     string
	Email        string
	Squeak       string // unique contact handle shown on the profile
	PasswordHash []byte
	Rank         Rank
	Status       Status
	Job          *Job
	ApprovedBy   *int64
	// PocketSniffles is the account balance; never negative.
	PocketSniffles int64
	CreatedAt      time.Time
	DecidedAt      *time.Time
}
