package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dyike/WealthGo/internal/api"
	"github.com/dyike/WealthGo/internal/models"
)

type turnKind int

const (
	turnSend turnKind = iota + 1
	turnApprove
	turnEdit
)

// Turn is a request that has been accepted by the store but not yet sent.
// Begin* does the synchronous part (validation, user message, loading flag);
// Complete performs the request and appends exactly one assistant message.
type Turn struct {
	store      *Store
	kind       turnKind
	generation uint64
	sessionID  string

	text     string
	userMsg  models.ChatMessage
	targetID string

	insightID   string
	entityName  string
	generatedAt time.Time
	instruction string
}

// BeginSend appends the user message and marks the store loading.
func (s *Store) BeginSend(text string) (*Turn, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return nil, ErrBusy
	}

	msg := models.ChatMessage{
		ID:        s.newID(),
		Content:   text,
		Sender:    models.SenderUser,
		Timestamp: s.now(),
	}
	s.messages = append(s.messages, msg)
	s.loading = true

	return &Turn{
		store:      s,
		kind:       turnSend,
		generation: s.generation,
		sessionID:  s.sessionID,
		text:       text,
		userMsg:    msg,
	}, nil
}

// Send is BeginSend followed by Complete.
func (s *Store) Send(ctx context.Context, text string) (models.ChatMessage, error) {
	turn, err := s.BeginSend(text)
	if err != nil {
		return models.ChatMessage{}, err
	}
	return turn.Complete(ctx)
}

// BeginApprove marks the advisory in messageID as saved.
func (s *Store) BeginApprove(messageID string) (*Turn, error) {
	return s.beginDecision(messageID, models.DecisionSave, "")
}

func (s *Store) Approve(ctx context.Context, messageID string) (models.ChatMessage, error) {
	turn, err := s.BeginApprove(messageID)
	if err != nil {
		return models.ChatMessage{}, err
	}
	return turn.Complete(ctx)
}

// BeginEdit asks for a revised advisory. A blank instruction is rejected
// before anything changes.
func (s *Store) BeginEdit(messageID, instruction string) (*Turn, error) {
	if strings.TrimSpace(instruction) == "" {
		return nil, ErrEmptyInstruction
	}
	return s.beginDecision(messageID, models.DecisionEdit, strings.TrimSpace(instruction))
}

func (s *Store) RequestEdit(ctx context.Context, messageID, instruction string) (models.ChatMessage, error) {
	turn, err := s.BeginEdit(messageID, instruction)
	if err != nil {
		return models.ChatMessage{}, err
	}
	return turn.Complete(ctx)
}

func (s *Store) beginDecision(messageID string, decision models.Decision, instruction string) (*Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(messageID)
	if idx < 0 {
		return nil, ErrUnknownMessage
	}
	msg := s.messages[idx]
	if !isAdvisory(msg) {
		return nil, ErrNotAdvisory
	}
	if msg.Meta.Decision != "" {
		return nil, ErrDecisionPending
	}
	if s.loading {
		return nil, ErrBusy
	}
	if s.sessionID == "" {
		return nil, ErrNoSession
	}

	meta := msg.Meta.Clone()
	meta.Decision = decision
	s.messages[idx].Meta = meta
	s.loading = true

	kind := turnApprove
	if decision == models.DecisionEdit {
		kind = turnEdit
	}
	return &Turn{
		store:       s,
		kind:        kind,
		generation:  s.generation,
		sessionID:   s.sessionID,
		targetID:    messageID,
		insightID:   InsightID(msg),
		entityName:  entityName(msg),
		generatedAt: msg.Timestamp,
		instruction: instruction,
	}, nil
}

// Complete runs the request and appends the resulting assistant message,
// which is also returned. Failures become messages, so the only error is
// ErrStaleReply when the session was reset meanwhile.
func (t *Turn) Complete(ctx context.Context) (models.ChatMessage, error) {
	switch t.kind {
	case turnApprove:
		return t.completeApprove(ctx)
	case turnEdit:
		return t.completeEdit(ctx)
	default:
		return t.completeSend(ctx)
	}
}

func (t *Turn) completeSend(ctx context.Context) (models.ChatMessage, error) {
	s := t.store
	env, err := s.backend.Chat(ctx, t.text, t.sessionID)

	var reply models.ChatMessage
	sessionID := t.sessionID
	if err != nil {
		s.logger.Error("chat request failed", zap.String("session_id", t.sessionID), zap.Error(err))
		reply = s.apology()
	} else {
		reply = s.fromEnvelope(env, "")
		if p, ok := env.(api.EnvelopeParsed); ok && p.SessionID != "" {
			sessionID = p.SessionID
		}
	}

	s.mu.Lock()
	if err := s.appendLocked(t.generation, reply); err != nil {
		s.mu.Unlock()
		s.logger.Debug("dropping stale chat reply", zap.String("message_id", reply.ID))
		return models.ChatMessage{}, err
	}
	if sessionID != "" {
		s.sessionID = sessionID
	}
	s.mu.Unlock()

	s.record(ctx, sessionID, t.userMsg, reply)
	return reply, nil
}

func (t *Turn) completeApprove(ctx context.Context) (models.ChatMessage, error) {
	s := t.store
	_, err := s.backend.Decide(ctx, models.DecisionRequest{
		SessionID:       t.sessionID,
		Action:          models.ActionSave,
		TargetInsightID: t.insightID,
		EditInstruction: "",
	})

	var reply models.ChatMessage
	if err != nil {
		s.logger.Warn("save advisory failed", zap.String("insight_id", t.insightID), zap.Error(err))
		reply = s.assistant(fmt.Sprintf("Failed to save the advisory for %s: %s", t.entityName, errorDetail(err)))
	} else {
		reply = s.assistant(fmt.Sprintf("The advisory for %s generated at %s has been saved.",
			t.entityName, t.generatedAt.Format("2006-01-02 15:04")))
	}
	return t.finishDecision(ctx, reply, err != nil)
}

func (t *Turn) completeEdit(ctx context.Context) (models.ChatMessage, error) {
	s := t.store
	env, err := s.backend.Decide(ctx, models.DecisionRequest{
		SessionID:       t.sessionID,
		Action:          models.ActionRerun,
		TargetInsightID: t.insightID,
		EditInstruction: t.instruction,
	})

	var reply models.ChatMessage
	if err != nil {
		s.logger.Warn("advisory rerun failed", zap.String("insight_id", t.insightID), zap.Error(err))
		reply = s.assistant(fmt.Sprintf("Failed to revise the advisory for %s: %s", t.entityName, errorDetail(err)))
	} else {
		reply = s.fromEnvelope(env, models.IntentHITL)
	}
	return t.finishDecision(ctx, reply, err != nil)
}

// finishDecision appends reply. On failure the optimistic decision on the
// target message is cleared so the advisor can try again.
func (t *Turn) finishDecision(ctx context.Context, reply models.ChatMessage, failed bool) (models.ChatMessage, error) {
	s := t.store
	s.mu.Lock()
	if err := s.appendLocked(t.generation, reply); err != nil {
		s.mu.Unlock()
		return models.ChatMessage{}, err
	}
	if failed {
		if idx := s.indexOf(t.targetID); idx >= 0 && s.messages[idx].Meta != nil {
			meta := s.messages[idx].Meta.Clone()
			meta.Decision = ""
			s.messages[idx].Meta = meta
		}
	}
	s.mu.Unlock()

	s.record(ctx, t.sessionID, reply)
	return reply, nil
}

// fromEnvelope builds the assistant message for a decoded reply. A non-empty
// forceIntent replaces whatever intent the backend sent.
func (s *Store) fromEnvelope(env api.Envelope, forceIntent string) models.ChatMessage {
	msg := s.assistant("")
	switch e := env.(type) {
	case api.EnvelopeParsed:
		msg.Content = e.Text
		msg.Meta = e.Meta.Clone()
		if msg.Meta != nil {
			msg.Meta.Decision = ""
		}
	case api.EnvelopeUnparsed:
		s.logger.Warn("unparsed backend reply", zap.String("reason", e.Reason))
		msg.Content = e.Raw
	}
	if forceIntent != "" {
		if msg.Meta == nil {
			msg.Meta = &models.Meta{}
		}
		msg.Meta.Intent = forceIntent
	}
	return msg
}

func (s *Store) assistant(content string) models.ChatMessage {
	return models.ChatMessage{
		ID:        s.newID(),
		Content:   content,
		Sender:    models.SenderAssistant,
		Timestamp: s.now(),
	}
}

func (s *Store) apology() models.ChatMessage {
	msg := s.assistant(ApologyText)
	msg.RequiresEscalation = true
	msg.AgentUsed = AgentErrorHandler
	return msg
}

// InsightID is the id decisions target: the record's own insight_id, then
// the reply's, then the message id.
func InsightID(msg models.ChatMessage) string {
	if msg.Meta != nil {
		if msg.Meta.Advice != nil && msg.Meta.Advice.InsightID != "" {
			return msg.Meta.Advice.InsightID
		}
		if msg.Meta.InsightID != "" {
			return msg.Meta.InsightID
		}
	}
	return msg.ID
}

func entityName(msg models.ChatMessage) string {
	if msg.Meta != nil {
		if msg.Meta.Advice != nil && msg.Meta.Advice.EntityName != "" {
			return msg.Meta.Advice.EntityName
		}
		if msg.Meta.Entity != "" {
			return msg.Meta.Entity
		}
	}
	return "this client"
}

// errorDetail is the server's message when there is one.
func errorDetail(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return err.Error()
}
