package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/epa-labs/epa-coach/internal/chat"
	"github.com/epa-labs/epa-coach/internal/coach"
	"github.com/epa-labs/epa-coach/internal/config"
	"github.com/epa-labs/epa-coach/internal/docs"
	"github.com/epa-labs/epa-coach/internal/store/memstore"
)

type Handler struct {
	Cfg       config.Config
	Docs      *docs.Store
	ChatSvc   *chat.Service
	Responder *coach.Responder
	Sessions  *memstore.Store
	Log       *zap.Logger
}

func NewHandler(cfg config.Config, store *docs.Store, chatSvc *chat.Service, responder *coach.Responder, sessions *memstore.Store, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}

	// A session that expires takes its conversation with it, exactly
	// as if the user had left the chat screen.
	sessions.OnEvicted(func(_ string, v any) {
		sess, ok := v.(*appSession)
		if !ok {
			return
		}
		sess.mu.Lock()
		convID := sess.conversationID
		sess.conversationID = ""
		sess.mu.Unlock()
		if convID == "" {
			return
		}
		if err := chatSvc.Close(context.Background(), convID); err != nil {
			log.Warn("closing conversation of expired session failed", zap.String("conversation_id", convID), zap.Error(err))
		}
	})

	return &Handler{
		Cfg:       cfg,
		Docs:      store,
		ChatSvc:   chatSvc,
		Responder: responder,
		Sessions:  sessions,
		Log:       log,
	}
}
