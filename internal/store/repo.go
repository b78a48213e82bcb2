package store

import (
	"context"
	"time"
)

// QueryOpts configures queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To

	// SessionID restricts the query to one questionnaire session.
	SessionID string

	// Purpose restricts LLM event queries to one request purpose.
	Purpose string
}

// ResultRecord is one submitted questionnaire evaluation.
type ResultRecord struct {
	ID        int
	Sequence  int64
	SessionID string
	Timestamp time.Time
	Score     int
	MaxScore  int
	BandTitle string
	StyleTag  string

	// Answers maps question id to the chosen option value.
	Answers  map[int]int
	Complete bool
}

// ResultRepo stores submitted results.
type ResultRepo interface {
	// Save stores a new result. ID, Sequence and a zero Timestamp are
	// filled in.
	Save(ctx context.Context, r *ResultRecord) error

	// Latest returns the most recent result, or nil if none exist.
	Latest(ctx context.Context) (*ResultRecord, error)

	// List returns results newest first.
	List(ctx context.Context, opts QueryOpts) ([]ResultRecord, error)

	// Count returns the number of stored results.
	Count(ctx context.Context) (int, error)

	// Prune deletes all but the N most recent results.
	Prune(ctx context.Context, keep int) error
}

// SessionEventData captures a phase change of a questionnaire session.
type SessionEventData struct {
	SessionID string
	Action    string
	PhaseFrom string
	PhaseTo   string
}

// SessionEvent is a stored session event.
type SessionEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	// SessionID is empty for requests made outside a session, e.g. from
	// the CLI.
	SessionID    string
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

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM request events by one dimension.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to events.
type EventRepo interface {
	// AppendSessionEvent records a session phase change.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// QuerySessionEvents returns the events of one session in order.
	QuerySessionEvents(ctx context.Context, sessionID string) ([]SessionEvent, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns one LLM event, or nil if it doesn't exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}

// Well-known preference keys.
const (
	PrefTheme = "theme"
)

// PreferenceRepo is a small key-value store for user preferences.
type PreferenceRepo interface {
	// Get returns the value for key. ok is false when the key is unset.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
