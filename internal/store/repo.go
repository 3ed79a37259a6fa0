package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an insert violates a unique constraint.
	ErrConflict = errors.New("already exists")
)

// QuestionMode is how a learner answers questions.
type QuestionMode string

const (
	ModeMultipleChoice QuestionMode = "multiple_choice"
	ModeFreeRecall     QuestionMode = "free_recall"
)

// Valid reports whether m is a known mode.
func (m QuestionMode) Valid() bool {
	return m == ModeMultipleChoice || m == ModeFreeRecall
}

// Preferences are the per-user toggles that shape the learning flow.
type Preferences struct {
	DisplayExplanations bool         `json:"display_explanations"`
	QuestionMode        QuestionMode `json:"question_mode"`
	InteractiveMode     bool         `json:"interactive_mode"`
}

// DefaultPreferences returns the preferences a newly registered user gets.
func DefaultPreferences() Preferences {
	return Preferences{
		DisplayExplanations: true,
		QuestionMode:        ModeMultipleChoice,
		InteractiveMode:     false,
	}
}

// User is a registered learner.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	LastLogin    time.Time
	Preferences
}

// Subject groups questions by topic.
type Subject struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Options holds the four labeled choices of a multiple-choice question.
type Options struct {
	A string `json:"a"`
	B string `json:"b"`
	C string `json:"c"`
	D string `json:"d"`
}

// Question is a generated question. Options and CorrectOption are either
// both set or both empty.
type Question struct {
	ID            int64
	SubjectID     int64
	Text          string
	Answer        string
	Explanation   string
	Difficulty    int
	Options       *Options
	CorrectOption string
	CreatedAt     time.Time
}

// Answer is an immutable record of one submission.
type Answer struct {
	ID               int64
	UserID           int64
	QuestionID       int64
	UserResponse     string
	IsCorrect        bool
	ResponseTime     float64 // seconds
	Mode             QuestionMode
	DifficultyAtTime int
	CreatedAt        time.Time
}

// UserRepo manages registered users.
type UserRepo interface {
	// Create inserts u and sets its ID and CreatedAt. Returns ErrConflict
	// when the username or email is taken.
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
	UpdatePreferences(ctx context.Context, id int64, prefs Preferences) error
}

// SubjectRepo manages subjects.
type SubjectRepo interface {
	// Create inserts s. Returns ErrConflict when the name is taken.
	Create(ctx context.Context, s *Subject) error
	Get(ctx context.Context, id int64) (*Subject, error)
	GetByName(ctx context.Context, name string) (*Subject, error)
	List(ctx context.Context) ([]Subject, error)
}

// QuestionRepo manages generated questions. Questions are never updated.
type QuestionRepo interface {
	Create(ctx context.Context, q *Question) error
	Get(ctx context.Context, id int64) (*Question, error)

	// RecentTexts returns the text of the newest questions for a subject,
	// newest first.
	RecentTexts(ctx context.Context, subjectID int64, limit int) ([]string, error)
}

// AnswerRepo manages submitted answers. Answers are append-only.
type AnswerRepo interface {
	Create(ctx context.Context, a *Answer) error

	// ListByUser returns the full answer history of a user, oldest first.
	ListByUser(ctx context.Context, userID int64) ([]Answer, error)
}

// SubjectTally is the answer count for one subject.
type SubjectTally struct {
	Name    string
	Total   int
	Correct int
}

// DailyTally is the answer count for one UTC calendar day.
type DailyTally struct {
	Date    string // YYYY-MM-DD
	Total   int
	Correct int
}

// UserStats holds raw aggregates over a user's answers.
type UserStats struct {
	Total           int
	Correct         int
	AvgResponseTime float64
	ByDifficulty    map[int]int
	BySubject       []SubjectTally
	Daily           []DailyTally
}

// Activity is one row of a user's recent answer feed.
type Activity struct {
	QuestionText string
	Subject      string
	IsCorrect    bool
	AnsweredAt   time.Time
	Difficulty   int
	ResponseTime float64
}

// StatsRepo runs the dashboard aggregation queries.
type StatsRepo interface {
	// UserStats aggregates all answers of a user; Daily only covers
	// answers created at or after since.
	UserStats(ctx context.Context, userID int64, since time.Time) (*UserStats, error)

	// RecentActivity returns the newest answers of a user, newest first.
	RecentActivity(ctx context.Context, userID int64, limit int) ([]Activity, error)
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact purpose match ("" = any)
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLMRequestEventData.
type LLMRequestEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM events by purpose or model.
type LLMUsage struct {
	Key          string // purpose or model, depending on the query
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)
	GetLLMEvent(ctx context.Context, id int64) (*LLMRequestEvent, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}

// Repos is the full set of repositories.
type Repos interface {
	Users() UserRepo
	Subjects() SubjectRepo
	Questions() QuestionRepo
	Answers() AnswerRepo
	Stats() StatsRepo
	EventRepo() EventRepo
}
