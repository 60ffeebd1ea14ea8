package domain

// Platform identifies an external judge.
type Platform string

const (
	PlatformCodeforces Platform = "codeforces"
	PlatformAtCoder    Platform = "atcoder"
)

// Platforms lists all supported judges in canonical order.
var Platforms = []Platform{PlatformCodeforces, PlatformAtCoder}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	return p == PlatformCodeforces || p == PlatformAtCoder
}

// SessionStatus is the lifecycle state of a contest or room.
//
// Contests start in StatusCreated, rooms in StatusLobby; both then move
// through StatusRunning to StatusFinished. Progress is only mutated while
// running.
type SessionStatus string

const (
	StatusCreated  SessionStatus = "created"
	StatusLobby    SessionStatus = "lobby"
	StatusRunning  SessionStatus = "running"
	StatusFinished SessionStatus = "finished"
)

// NormalizedProblem is a judge problem reduced to the fields gauntlet
// cares about. Key is the platform-specific stable identifier (for
// Codeforces "1995A", for AtCoder the problem id such as "abc301_a").
// Within one session's problem list, (Platform, Key) pairs are unique.
type NormalizedProblem struct {
	Platform   Platform `json:"platform"`
	Key        string   `json:"key"`
	Name       string   `json:"name"`
	URL        string   `json:"url"`
	Difficulty *int     `json:"difficulty,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// ProblemSpec constrains one slot of a spec-mode selection: the problem
// must come from Platform and, when Min/Max are set, have a difficulty
// inside the closed range. Problems without a difficulty never match a
// range-constrained spec.
type ProblemSpec struct {
	Platform Platform `json:"platform" yaml:"platform"`
	Min      *int     `json:"min,omitempty" yaml:"min,omitempty"`
	Max      *int     `json:"max,omitempty" yaml:"max,omitempty"`
}

// Matches reports whether p satisfies the spec.
func (s ProblemSpec) Matches(p NormalizedProblem) bool {
	if p.Platform != s.Platform {
		return false
	}
	if s.Min != nil || s.Max != nil {
		if p.Difficulty == nil {
			return false
		}
		if s.Min != nil && *p.Difficulty < *s.Min {
			return false
		}
		if s.Max != nil && *p.Difficulty > *s.Max {
			return false
		}
	}
	return true
}

// SolvedInfo records the write-once credit for one solved problem.
type SolvedInfo struct {
	SolvedAt         int64    `json:"solvedAt"`
	SolveTimeSeconds int64    `json:"solveTimeSeconds"`
	Source           Platform `json:"source"`
	SubmissionID     string   `json:"submissionId"`
}

// LastPoll holds the forward-moving per-platform fetch cursors
// (next-fetch lower bounds, in source epoch seconds).
type LastPoll struct {
	CFFrom int64 `json:"cfFrom,omitempty"`
	ATFrom int64 `json:"atFrom,omitempty"`
}

// LastSync holds wall-clock timestamps of the last successful poll per
// platform. Used only for staleness display, never as a fetch cursor.
type LastSync struct {
	Codeforces int64 `json:"codeforces,omitempty"`
	AtCoder    int64 `json:"atcoder,omitempty"`
}

// Progress tracks one subject's solves and poll cursors within a session.
//
// Invariant: once a key appears in Solved it is never removed or
// overwritten. The matcher and the poller both enforce this.
type Progress struct {
	Solved   map[string]SolvedInfo `json:"solved"`
	LastPoll LastPoll              `json:"lastPoll"`
	LastSync LastSync              `json:"lastSync"`
}

// NewProgress returns an empty progress record with a non-nil solved map.
func NewProgress() Progress {
	return Progress{Solved: map[string]SolvedInfo{}}
}

// Contest is a single-user virtual contest session.
type Contest struct {
	ID              string              `json:"id"`
	OwnerUserID     string              `json:"ownerUserId"`
	Name            string              `json:"name"`
	Status          SessionStatus       `json:"status"`
	CreatedAt       int64               `json:"createdAt"`
	StartedAt       int64               `json:"startedAt,omitempty"`
	FinishedAt      int64               `json:"finishedAt,omitempty"`
	DurationSeconds int64               `json:"durationSeconds"`
	Seed            string              `json:"seed"`
	Problems        []NormalizedProblem `json:"problems"`
	Progress        Progress            `json:"progress"`
}

// HasPlatform reports whether any of the contest's problems come from p.
func (c *Contest) HasPlatform(p Platform) bool {
	return hasPlatform(c.Problems, p)
}

// RoomRole distinguishes the host from invited members.
type RoomRole string

const (
	RoleHost   RoomRole = "host"
	RoleMember RoomRole = "member"
)

// RoomMember is one participant of a room.
type RoomMember struct {
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
	Role     RoomRole `json:"role"`
	JoinedAt int64    `json:"joinedAt"`
}

// Room is a multi-user session sharing one problem set, with independent
// progress per member.
type Room struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	OwnerUserID      string              `json:"ownerUserId"`
	InviteCode       string              `json:"inviteCode"`
	Status           SessionStatus       `json:"status"`
	CreatedAt        int64               `json:"createdAt"`
	StartedAt        int64               `json:"startedAt,omitempty"`
	FinishedAt       int64               `json:"finishedAt,omitempty"`
	DurationSeconds  int64               `json:"durationSeconds"`
	Seed             string              `json:"seed"`
	Problems         []NormalizedProblem `json:"problems"`
	Members          []RoomMember        `json:"members"`
	ProgressByUserID map[string]Progress `json:"progressByUserId"`
}

// HasPlatform reports whether any of the room's problems come from p.
func (r *Room) HasPlatform(p Platform) bool {
	return hasPlatform(r.Problems, p)
}

// HasMember reports whether userID is a member of the room.
func (r *Room) HasMember(userID string) bool {
	for _, m := range r.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

func hasPlatform(problems []NormalizedProblem, p Platform) bool {
	for _, pr := range problems {
		if pr.Platform == p {
			return true
		}
	}
	return false
}

// RoomMessage is one chat line in a room.
type RoomMessage struct {
	ID       string `json:"id"`
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	At       int64  `json:"t"`
	Text     string `json:"text"`
}

// ActivityKind categorizes activity feed events.
type ActivityKind string

const (
	ActivityContest     ActivityKind = "contest"
	ActivityRoom        ActivityKind = "room"
	ActivitySolve       ActivityKind = "solve"
	ActivityAchievement ActivityKind = "achievement"
)

// ActivityTarget names the entity an activity event refers to.
type ActivityTarget struct {
	Type string `json:"type"` // "user", "contest", or "room"
	ID   string `json:"id"`
}

// ActivityEvent is one entry of the global activity feed.
type ActivityEvent struct {
	ID          string         `json:"id"`
	At          int64          `json:"t"`
	Kind        ActivityKind   `json:"kind"`
	ActorUserID string         `json:"actorUserId"`
	Target      ActivityTarget `json:"target"`
	Message     string         `json:"message"`
}

// AchievementID identifies one unlockable achievement.
type AchievementID string

const (
	AchFirstSolve   AchievementID = "first_solve"
	AchTenSolves    AchievementID = "ten_solves"
	AchFiftySolves  AchievementID = "fifty_solves"
	AchDualPlatform AchievementID = "dual_platform"
	AchStreak3      AchievementID = "streak_3"
	AchStreak7      AchievementID = "streak_7"
	AchSpeedrunner  AchievementID = "speedrunner"
)

// Unlock records when an achievement was earned.
type Unlock struct {
	UnlockedAt int64 `json:"unlockedAt"`
}

// SolvedByPlatform counts credited solves per judge.
type SolvedByPlatform struct {
	Codeforces int `json:"codeforces"`
	AtCoder    int `json:"atcoder"`
}

// UserStats is the XP/achievement bookkeeping mutated in-transaction by
// the stats engine whenever a solve is credited.
type UserStats struct {
	XP               int64                    `json:"xp"`
	TotalSolved      int                      `json:"totalSolved"`
	SolvedByPlatform SolvedByPlatform         `json:"solvedByPlatform"`
	StreakDays       int                      `json:"streakDays"`
	LastActiveDay    int64                    `json:"lastActiveDay,omitempty"`
	Achievements     map[AchievementID]Unlock `json:"achievements"`
}

// User is one registered account with linked judge handles.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	CFHandle    string    `json:"cfHandle,omitempty"`
	AtCoderUser string    `json:"atcoderUser,omitempty"`
	CreatedAt   int64     `json:"createdAt"`
	Stats       UserStats `json:"stats"`
}

// Document is the entire durable state as one JSON tree.
type Document struct {
	Users        []User          `json:"users"`
	Contests     []Contest       `json:"contests"`
	Rooms        []Room          `json:"rooms"`
	RoomMessages []RoomMessage   `json:"roomMessages"`
	Activities   []ActivityEvent `json:"activities"`
}
