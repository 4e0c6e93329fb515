// Package chat holds the conversation state and the pipelines that change it.
package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dyike/WealthGo/internal/api"
	"github.com/dyike/WealthGo/internal/models"
)

const (
	WelcomeText = "Hello! I'm your Wealth Advisory Assistant. I can help you with client intelligence, " +
		"portfolio analysis, and compliance checks. How can I assist you today?"
	ApologyText = "I apologize, but I encountered an error processing your request. " +
		"Please try again or contact support if the issue persists."

	AgentErrorHandler = "error_handler"
	AgentOrchestrator = "orchestrator"
	AgentAdvisory     = "advisory"
)

var (
	ErrBusy             = errors.New("a request is already in flight")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrEmptyInstruction = errors.New("edit instruction is required")
	ErrDecisionPending  = errors.New("a decision was already made on this advisory")
	ErrNoSession        = errors.New("no active session")
	ErrNotAdvisory      = errors.New("message is not an advisory")
	ErrUnknownMessage   = errors.New("message not found")
	// ErrStaleReply means the session was reset while the request was in flight.
	ErrStaleReply = errors.New("reply belongs to a previous session")
)

// Backend is the subset of the API client the pipelines need.
type Backend interface {
	Welcome(ctx context.Context) (string, error)
	Chat(ctx context.Context, text, sessionID string) (api.Envelope, error)
	Decide(ctx context.Context, req models.DecisionRequest) (api.Envelope, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// Recorder mirrors appended messages somewhere durable.
type Recorder interface {
	RecordMessage(ctx context.Context, sessionID string, msg models.ChatMessage) error
}

// Store is the single shared chat state. Only the send, decision and reset
// pipelines write to it; readers get copies.
type Store struct {
	backend  Backend
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string

	mu         sync.Mutex
	messages   []models.ChatMessage
	sessionID  string
	loading    bool
	generation uint64
}

type Option func(*Store)

func WithRecorder(r Recorder) Option {
	return func(s *Store) { s.recorder = r }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  zap.NewNop(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.messages = []models.ChatMessage{s.welcomeMessage()}
	return s
}

func (s *Store) welcomeMessage() models.ChatMessage {
	return models.ChatMessage{
		ID:        s.newID(),
		Content:   WelcomeText,
		Sender:    models.SenderAssistant,
		Timestamp: s.now(),
		AgentUsed: AgentOrchestrator,
	}
}

// Messages returns a copy of the transcript in display order.
func (s *Store) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Store) Message(id string) (models.ChatMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.messages[i], true
	}
	return models.ChatMessage{}, false
}

func (s *Store) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// PendingAdvisory is the newest advisory still waiting for a decision.
func (s *Store) PendingAdvisory() (models.ChatMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		msg := s.messages[i]
		if isAdvisory(msg) && msg.Meta.Decision == "" {
			return msg, true
		}
	}
	return models.ChatMessage{}, false
}

// Bootstrap opens a backend session. Call once per chat start.
func (s *Store) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	id, err := s.backend.Welcome(ctx)
	if err != nil {
		s.logger.Warn("session bootstrap failed", zap.Error(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return ErrStaleReply
	}
	s.sessionID = id
	s.logger.Info("session started", zap.String("session_id", id))
	return nil
}

// NewSession deletes the current backend session, resets the transcript to
// the welcome message and bootstraps a fresh session. Replies still in
// flight are dropped when they arrive.
func (s *Store) NewSession(ctx context.Context) error {
	s.mu.Lock()
	old := s.sessionID
	s.generation++
	s.sessionID = ""
	s.loading = false
	s.messages = []models.ChatMessage{s.welcomeMessage()}
	s.mu.Unlock()

	if old != "" {
		if err := s.backend.DeleteSession(ctx, old); err != nil {
			s.logger.Warn("delete session failed", zap.String("session_id", old), zap.Error(err))
		}
	}
	return s.Bootstrap(ctx)
}

func (s *Store) indexOf(id string) int {
	for i := range s.messages {
		if s.messages[i].ID == id {
			return i
		}
	}
	return -1
}

// appendLocked appends msg if gen is still current and clears loading.
func (s *Store) appendLocked(gen uint64, msgs ...models.ChatMessage) error {
	if gen != s.generation {
		return ErrStaleReply
	}
	s.messages = append(s.messages, msgs...)
	s.loading = false
	return nil
}

func (s *Store) record(ctx context.Context, sessionID string, msgs ...models.ChatMessage) {
	if s.recorder == nil {
		return
	}
	for _, msg := range msgs {
		if err := s.recorder.RecordMessage(ctx, sessionID, msg); err != nil {
			s.logger.Warn("record message failed", zap.String("message_id", msg.ID), zap.Error(err))
		}
	}
}

func isAdvisory(msg models.ChatMessage) bool {
	if msg.Sender != models.SenderAssistant || msg.Meta == nil || msg.Meta.Advice == nil || msg.Meta.Advice.Advice == nil {
		return false
	}
	return msg.Meta.Intent == models.IntentAdvisoryQuery || msg.Meta.Intent == models.IntentHITL
}
