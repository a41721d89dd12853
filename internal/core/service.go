package core

// service.go owns the live review sessions.
//
// Each session is one uploaded file under review: the frozen original
// extraction, the current table, its rules, history and violations. The
// engine functions are single-threaded, so every session carries its own
// mutex and each operation runs start to finish under it. Operations build
// the complete new state first and assign it only on success, so a failed
// call never leaves a session half-updated.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/JonMunkholm/tallyreview/internal/config"
	"github.com/JonMunkholm/tallyreview/internal/logging"
	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for an unknown or expired file ID.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidFileID is returned when a file ID is not safe to use in a path.
var ErrInvalidFileID = errors.New("invalid file id")

var fileIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,127}$`)

// ValidFileID reports whether id can be used as a file or session key.
func ValidFileID(id string) bool {
	return fileIDPattern.MatchString(id)
}

// NewFileID returns a fresh random file ID.
func NewFileID() string {
	return uuid.NewString()
}

// ValidUploadID reports whether id has the form NewFileID hands out for
// stored uploads.
func ValidUploadID(id string) bool {
	return ValidFileID(id) && uuid.Validate(id) == nil
}

// Dependencies are the collaborators a Service needs.
type Dependencies struct {
	Extractor Extractor
	Exporter  Exporter
	Changes   ChangeRecorder
}

// Service manages review sessions and wires the engine to its collaborators.
type Service struct {
	cfg       *config.Config
	extractor Extractor
	exporter  Exporter
	changes   ChangeRecorder
	limiter   *ConvertLimiter

	mu       sync.RWMutex
	sessions map[string]*session

	now func() time.Time
}

// NewService creates a Service.
func NewService(deps Dependencies, cfg *config.Config) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if deps.Extractor == nil {
		return nil, errors.New("extractor is required")
	}
	if deps.Exporter == nil {
		return nil, errors.New("exporter is required")
	}
	if deps.Changes == nil {
		return nil, errors.New("change recorder is required")
	}

	return &Service{
		cfg:       cfg,
		extractor: deps.Extractor,
		exporter:  deps.Exporter,
		changes:   deps.Changes,
		limiter:   NewConvertLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		sessions:  make(map[string]*session),
		now:       time.Now,
	}, nil
}

// Config returns the service configuration.
func (s *Service) Config() *config.Config {
	return s.cfg
}

type session struct {
	mu sync.Mutex

	id         string
	name       string
	createdAt  time.Time
	touchedAt  time.Time
	original   *TableData
	current    *TableData
	rules      Rules
	history    *History
	violations []ValidationError
	exported   map[ExportFormat]time.Time
	closed     bool
}

// Snapshot is a consistent, read-only view of a session.
type Snapshot struct {
	FileID    string                     `json:"file_id"`
	FileName  string                     `json:"file_name"`
	Table     *TableData                 `json:"table"`
	Errors    []ValidationError          `json:"errors"`
	Rules     Rules                      `json:"rules"`
	History   []EditHistoryEntry         `json:"history"`
	Cursor    int                        `json:"cursor"`
	CanUndo   bool                       `json:"can_undo"`
	CanRedo   bool                       `json:"can_redo"`
	Exported  map[ExportFormat]time.Time `json:"exported"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// Valid reports whether the snapshot has no violations.
func (s Snapshot) Valid() bool {
	return len(s.Errors) == 0
}

func (ss *session) snapshot() Snapshot {
	exported := make(map[ExportFormat]time.Time, len(ss.exported))
	for f, t := range ss.exported {
		exported[f] = t
	}
	history := ss.history.Entries()
	if history == nil {
		history = []EditHistoryEntry{}
	}
	violations := make([]ValidationError, len(ss.violations))
	copy(violations, ss.violations)

	return Snapshot{
		FileID:    ss.id,
		FileName:  ss.name,
		Table:     ss.current,
		Errors:    violations,
		Rules:     ss.rules.Clone(),
		History:   history,
		Cursor:    ss.history.Cursor(),
		CanUndo:   ss.history.CanUndo(),
		CanRedo:   ss.history.CanRedo(),
		Exported:  exported,
		CreatedAt: ss.createdAt,
		UpdatedAt: ss.touchedAt,
	}
}

// Open starts a review session for an extraction. An empty fileID gets a
// fresh one. Rules come from the configured default preset.
func (s *Service) Open(ctx context.Context, fileID, name string, ext *Extraction) (Snapshot, error) {
	sess, err := s.newSession(ctx, fileID, name, ext)
	if err != nil {
		return Snapshot{}, err
	}
	return s.publish(ctx, sess), nil
}

// newSession builds a session from an extraction without registering it.
func (s *Service) newSession(ctx context.Context, fileID, name string, ext *Extraction) (*session, error) {
	if ext == nil {
		return nil, ErrNoTables
	}
	if fileID == "" {
		fileID = NewFileID()
	}
	if !ValidFileID(fileID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFileID, fileID)
	}

	rules, err := PresetRules(s.cfg.Session.DefaultPreset)
	if err != nil {
		logging.WithFields(ctx, "file_id", fileID).Warn("default preset unavailable, starting without rules",
			"preset", s.cfg.Session.DefaultPreset,
			"error", err,
		)
		rules = Rules{}
	}

	table := ext.Table()
	now := s.now()
	return &session{
		id:         fileID,
		name:       name,
		createdAt:  now,
		touchedAt:  now,
		original:   table,
		current:    table,
		rules:      rules,
		history:    NewHistory(),
		violations: Validate(table, rules),
		exported:   make(map[ExportFormat]time.Time),
	}, nil
}

// publish registers sess, closing any session it replaces.
func (s *Service) publish(ctx context.Context, sess *session) Snapshot {
	s.mu.Lock()
	if old, ok := s.sessions[sess.id]; ok {
		old.mu.Lock()
		old.closed = true
		old.mu.Unlock()
	}
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	logging.WithFields(ctx, "file_id", sess.id).Info("review session opened",
		"file_name", sess.name,
		"rows", len(sess.current.Rows),
		"columns", len(sess.current.Headers),
		"violations", len(sess.violations),
	)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot()
}

// Get returns the current state of a session.
func (s *Service) Get(fileID string) (Snapshot, error) {
	return s.withSession(fileID, false, func(*session) error { return nil })
}

// Close ends a session and releases its tables.
func (s *Service) Close(ctx context.Context, fileID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[fileID]
	if ok {
		delete(s.sessions, fileID)
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, fileID)
	}

	sess.mu.Lock()
	sess.closed = true
	sess.mu.Unlock()

	logging.WithFields(ctx, "file_id", fileID).Info("review session closed")
	return nil
}

// SessionCount returns the number of open sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// LimiterStatus returns the conversion limiter state.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForConversions blocks until running conversions finish or ctx is done.
func (s *Service) WaitForConversions(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

func (s *Service) lookup(fileID string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[fileID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, fileID)
	}
	return sess, nil
}

// withSession runs fn under the session lock and returns the resulting
// snapshot. touch marks the session as active for the sweeper.
func (s *Service) withSession(fileID string, touch bool, fn func(*session) error) (Snapshot, error) {
	sess, err := s.lookup(fileID)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.closed {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrSessionNotFound, fileID)
	}
	if err := fn(sess); err != nil {
		return Snapshot{}, err
	}
	if touch {
		sess.touchedAt = s.now()
	}
	return sess.snapshot(), nil
}

// sweep closes sessions idle for longer than ttl and returns how many.
func (s *Service) sweep(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	closed := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		if sess.touchedAt.Before(cutoff) {
			sess.closed = true
			delete(s.sessions, id)
			closed++
			slog.Debug("session expired", "file_id", id, "idle_since", sess.touchedAt)
		}
		sess.mu.Unlock()
	}
	return closed
}
