package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/epa-labs/epa-coach/internal/coach"
	"github.com/epa-labs/epa-coach/internal/common"
	"github.com/epa-labs/epa-coach/internal/docs"
	"github.com/epa-labs/epa-coach/internal/store/memstore"
)

var (
	ErrConversationNotFound = errors.New("chat: conversation not found")
	ErrEmptyMessage         = errors.New("chat: message is empty")
	ErrReplyPending         = errors.New("chat: a reply is already pending")
	ErrEscalated            = errors.New("chat: conversation already escalated")
	ErrAwaitingConfirmation = errors.New("chat: escalation confirmation pending")
	ErrNoEscalationPending  = errors.New("chat: no escalation was requested")
)

// ResponderClient is what the controller needs from the AI responder.
// It never fails; failures below it arrive as fallback text.
type ResponderClient interface {
	GetResponse(ctx context.Context, message string, doc *coach.DocumentContext, history []coach.Turn, mode coach.Mode) string
}

// Service is the conversation controller. It owns transcripts, the
// escalation state machine and mode selection, and decides what goes
// to the responder.
type Service struct {
	repo         *Repo
	responder    ResponderClient
	conns        *memstore.Store
	log          *zap.Logger
	handoffDelay time.Duration

	// injectable for deterministic tests
	sleep func(ctx context.Context, d time.Duration)
	now   func() time.Time
}

func NewService(repo *Repo, responder ResponderClient, conns *memstore.Store, log *zap.Logger, handoffDelay time.Duration) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		repo:         repo,
		responder:    responder,
		conns:        conns,
		log:          log,
		handoffDelay: handoffDelay,
		sleep: func(ctx context.Context, d time.Duration) {
			if d <= 0 {
				return
			}
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-t.C:
			case <-ctx.Done():
			}
		},
		now: time.Now,
	}

	// Transcripts die with their conversation, whether it is closed
	// explicitly or expires from the store.
	conns.OnEvicted(func(key string, _ any) {
		if err := s.repo.DeleteMessages(context.Background(), key); err != nil {
			s.log.Warn("discarding transcript failed", zap.String("conversation_id", key), zap.Error(err))
		}
	})

	return s
}

// Open starts a conversation and synthesizes the greeting. With a
// document the greeting references its title and date; without one it
// is generic.
func (s *Service) Open(ctx context.Context, doc *docs.Document) (*Conversation, error) {
	id, err := common.NewULID()
	if err != nil {
		return nil, err
	}

	conv := &Conversation{
		ID:       id,
		Mode:     coach.ModeCoach,
		State:    StateNormal,
		Document: doc,
	}

	greeting := genericGreeting
	if doc != nil {
		greeting = documentGreeting(doc.Title, doc.Date)
	}
	if _, err := s.appendMessage(ctx, id, SenderCoach, greeting); err != nil {
		return nil, err
	}

	s.conns.Put(id, conv)
	return conv, nil
}

// Close discards a conversation and its transcript. The transcript
// cleanup runs through the store's eviction hook, the same path TTL
// expiry takes.
func (s *Service) Close(_ context.Context, conversationID string) error {
	s.conns.Delete(conversationID)
	return nil
}

// Send appends the user message, asks the responder for a reply and
// appends it tagged with the current persona. While the call is in
// flight the conversation rejects further sends.
func (s *Service) Send(ctx context.Context, conversationID, text string) (*Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	conv, err := s.get(conversationID)
	if err != nil {
		return nil, err
	}

	conv.mu.Lock()
	if conv.State == StatePendingConfirmation {
		conv.mu.Unlock()
		return nil, ErrAwaitingConfirmation
	}
	if conv.pending {
		conv.mu.Unlock()
		return nil, ErrReplyPending
	}
	conv.pending = true
	conv.typingMode = conv.Mode
	mode := conv.Mode
	escalated := conv.State == StateEscalated
	doc := conv.Document
	conv.mu.Unlock()

	defer func() {
		conv.mu.Lock()
		conv.pending = false
		conv.mu.Unlock()
	}()

	// History is assembled before the new user message is stored; the
	// message itself travels separately in the request.
	history, err := s.buildHistory(ctx, conversationID, escalated)
	if err != nil {
		return nil, err
	}

	if _, err := s.appendMessage(ctx, conversationID, SenderUser, text); err != nil {
		return nil, err
	}

	var docCtx *coach.DocumentContext
	if doc != nil {
		docCtx = &coach.DocumentContext{Title: doc.Title, Date: doc.Date, Content: doc.Content}
	}

	reply := s.responder.GetResponse(ctx, text, docCtx, history, mode)

	return s.appendMessage(ctx, conversationID, senderFor(mode), reply)
}

// RequestEscalation asks for a human advisor. The transcript is not
// touched; the UI shows a confirmation banner.
func (s *Service) RequestEscalation(conversationID string) error {
	conv, err := s.get(conversationID)
	if err != nil {
		return err
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()
	switch conv.State {
	case StateEscalated:
		return ErrEscalated
	case StatePendingConfirmation:
		return nil
	}
	conv.State = StatePendingConfirmation
	return nil
}

// CancelEscalation discards a pending hand-off request.
func (s *Service) CancelEscalation(conversationID string) error {
	conv, err := s.get(conversationID)
	if err != nil {
		return err
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()
	switch conv.State {
	case StateEscalated:
		return ErrEscalated
	case StateNormal:
		return ErrNoEscalationPending
	}
	conv.State = StateNormal
	return nil
}

// ConfirmEscalation hands the conversation to the advisor persona.
// The hand-off delay holds the same gate as message sends, so nothing
// can interleave with it; after the delay one advisor greeting is
// appended. Escalation is irreversible.
func (s *Service) ConfirmEscalation(ctx context.Context, conversationID string) (*Message, error) {
	conv, err := s.get(conversationID)
	if err != nil {
		return nil, err
	}

	conv.mu.Lock()
	switch conv.State {
	case StateEscalated:
		conv.mu.Unlock()
		return nil, ErrEscalated
	case StateNormal:
		conv.mu.Unlock()
		return nil, ErrNoEscalationPending
	}
	if conv.pending {
		conv.mu.Unlock()
		return nil, ErrReplyPending
	}
	conv.State = StateEscalated
	conv.Mode = coach.ModeAdvisor
	conv.pending = true
	conv.typingMode = coach.ModeAdvisor
	conv.mu.Unlock()

	defer func() {
		conv.mu.Lock()
		conv.pending = false
		conv.mu.Unlock()
	}()

	s.sleep(ctx, s.handoffDelay)

	return s.appendMessage(ctx, conversationID, SenderAdvisor, advisorGreeting)
}

// Snapshot returns the transcript and indicator state for rendering.
func (s *Service) Snapshot(ctx context.Context, conversationID string) (*Snapshot, error) {
	conv, err := s.get(conversationID)
	if err != nil {
		return nil, err
	}

	msgs, err := s.repo.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	snap := &Snapshot{
		ConversationID: conv.ID,
		Messages:       msgs,
		Mode:           conv.Mode,
		State:          conv.State,
		Typing:         conv.pending,
	}
	if conv.Document != nil {
		snap.DocumentID = conv.Document.ID
	}
	if conv.pending {
		if conv.typingMode == coach.ModeAdvisor {
			snap.TypingLabel = typingLabelAdvisor
		} else {
			snap.TypingLabel = typingLabelCoach
		}
	}
	return snap, nil
}

func (s *Service) get(conversationID string) (*Conversation, error) {
	v, ok := s.conns.Get(conversationID)
	if !ok {
		return nil, ErrConversationNotFound
	}
	conv, ok := v.(*Conversation)
	if !ok {
		return nil, ErrConversationNotFound
	}
	// any activity on a live conversation refreshes its TTL
	s.conns.Put(conversationID, conv)
	return conv, nil
}

func (s *Service) appendMessage(ctx context.Context, conversationID string, sender Sender, text string) (*Message, error) {
	id, err := common.NewULID()
	if err != nil {
		return nil, err
	}
	m := &Message{
		MessageID:      id,
		ConversationID: conversationID,
		Sender:         sender,
		Text:           text,
		Timestamp:      s.now().Format("15:04"),
	}
	if err := s.repo.InsertMessage(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// buildHistory maps the transcript to completion-service turns. The
// advisor filter mirrors the prototype's original condition; before
// escalation no advisor messages exist and after escalation the
// condition always passes, so it currently filters nothing. Keep it in
// mind before adding a fourth persona.
func (s *Service) buildHistory(ctx context.Context, conversationID string, escalated bool) ([]coach.Turn, error) {
	msgs, err := s.repo.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	turns := make([]coach.Turn, 0, len(msgs))
	for _, m := range msgs {
		if m.Sender == SenderAdvisor && !escalated {
			continue
		}
		role := "assistant"
		if m.Sender == SenderUser {
			role = "user"
		}
		turns = append(turns, coach.Turn{Role: role, Content: m.Text})
	}
	return turns, nil
}

func senderFor(mode coach.Mode) Sender {
	if mode == coach.ModeAdvisor {
		return SenderAdvisor
	}
	return SenderCoach
}
