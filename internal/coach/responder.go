package coach

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/epa-labs/epa-coach/internal/ai"
)

// Mode selects the persona used for a reply.
type Mode string

const (
	ModeCoach   Mode = "coach"
	ModeAdvisor Mode = "advisor"
)

// DocumentContext carries the document the user is looking at. Its
// fields are injected verbatim into the persona instructions.
type DocumentContext struct {
	Title   string `json:"title"`
	Date    string `json:"date"`
	Content string `json:"content"`
}

// Turn is one prior exchange as the completion service sees it: the
// external service knows a single assistant voice, disambiguated only
// by the system instructions.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Request is one completion call.
type Request struct {
	Message  string
	Document *DocumentContext
	History  []Turn
	Mode     Mode
}

// Responder assembles persona instructions and delegates to the
// configured completion provider.
type Responder struct {
	provider ai.Provider
	log      *zap.Logger
}

func NewResponder(provider ai.Provider, log *zap.Logger) *Responder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Responder{provider: provider, log: log}
}

// SystemPrompt returns the persona instructions for a request,
// extended with the document context when present.
func SystemPrompt(mode Mode, doc *DocumentContext) string {
	prompt := coachSystemPrompt
	if mode == ModeAdvisor {
		prompt = advisorSystemPrompt
	}
	if doc != nil {
		prompt += fmt.Sprintf(documentContextTemplate, doc.Title, doc.Date, doc.Content)
	}
	return prompt
}

// CheckCredential reports whether the configured provider can be
// called at all. Providers without a credential requirement pass.
func (r *Responder) CheckCredential() error {
	if p, ok := r.provider.(interface{ CheckCredential() error }); ok {
		return p.CheckCredential()
	}
	return nil
}

// Generate performs one completion call and surfaces errors to the
// caller. The HTTP chat endpoint uses it to map failures onto status
// codes; in-process callers should prefer GetResponse.
func (r *Responder) Generate(ctx context.Context, req Request) (string, error) {
	msgs := make([]ai.Message, 0, len(req.History)+2)
	msgs = append(msgs, ai.Message{Role: ai.RoleSystem, Content: SystemPrompt(req.Mode, req.Document)})
	for _, t := range req.History {
		msgs = append(msgs, ai.Message{Role: t.Role, Content: t.Content})
	}
	msgs = append(msgs, ai.Message{Role: ai.RoleUser, Content: req.Message})

	return r.provider.Chat(ctx, msgs)
}

// GetResponse never fails: any error below this boundary is converted
// to a polite static fallback and logged for operators.
func (r *Responder) GetResponse(ctx context.Context, message string, doc *DocumentContext, history []Turn, mode Mode) string {
	out, err := r.Generate(ctx, Request{Message: message, Document: doc, History: history, Mode: mode})
	if err != nil {
		if errors.Is(err, ai.ErrMissingCredential) {
			r.log.Error("responder: api credential not configured", zap.String("mode", string(mode)))
			return FallbackUnavailable
		}
		r.log.Error("responder: completion call failed",
			zap.String("mode", string(mode)),
			zap.Error(err),
		)
		return FallbackError
	}
	return out
}
