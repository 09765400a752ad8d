package handlers

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/epa-labs/epa-coach/internal/chat"
	"github.com/epa-labs/epa-coach/internal/common"
	"github.com/epa-labs/epa-coach/internal/nav"
)

// appSession ties one navigation shell to at most one live
// conversation. Sessions expire from the TTL store; expiry discards
// everything.
type appSession struct {
	mu             sync.Mutex
	shell          *nav.Shell
	conversationID string
}

func (h *Handler) session(c *gin.Context) (*appSession, bool) {
	v, ok := h.Sessions.Get(c.Param("id"))
	if !ok {
		common.Fail(c, http.StatusNotFound, 40402, "session not found")
		return nil, false
	}
	sess, ok := v.(*appSession)
	if !ok {
		common.Fail(c, http.StatusNotFound, 40402, "session not found")
		return nil, false
	}
	// any request against a live session refreshes its TTL
	h.Sessions.Put(c.Param("id"), sess)
	return sess, true
}

func (h *Handler) CreateSession(c *gin.Context) {
	id := uuid.NewString()
	sess := &appSession{shell: nav.NewShell()}
	h.Sessions.Put(id, sess)
	common.OK(c, gin.H{"session_id": id, "shell": sess.shell})
}

func (h *Handler) GetSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	common.OK(c, gin.H{"shell": sess.shell, "conversation_id": sess.conversationID})
}

func (h *Handler) SelectDocument(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	docID := c.Param("doc_id")
	if _, found := h.Docs.Get(docID); !found {
		common.Fail(c, http.StatusNotFound, 40401, "document not found")
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.shell.SelectDocument(docID); err != nil {
		common.Fail(c, http.StatusConflict, 40901, err.Error())
		return
	}
	common.OK(c, gin.H{"shell": sess.shell})
}

type switchTabReq struct {
	Tab string `json:"tab" binding:"required"`
}

func (h *Handler) SwitchTab(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req switchTabReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	closedChat, err := sess.shell.SwitchTab(nav.Tab(req.Tab))
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10002, "unknown tab")
		return
	}
	if closedChat {
		h.closeConversation(c, sess)
	}
	common.OK(c, gin.H{"shell": sess.shell})
}

func (h *Handler) Back(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if closedChat := sess.shell.Back(); closedChat {
		h.closeConversation(c, sess)
	}
	common.OK(c, gin.H{"shell": sess.shell})
}

// closeConversation discards the transcript when the user leaves the
// chat screen. Caller holds sess.mu.
func (h *Handler) closeConversation(c *gin.Context, sess *appSession) {
	if sess.conversationID == "" {
		return
	}
	if err := h.ChatSvc.Close(c.Request.Context(), sess.conversationID); err != nil {
		h.Log.Warn("closing conversation failed", zap.String("conversation_id", sess.conversationID), zap.Error(err))
	}
	sess.conversationID = ""
}

func (h *Handler) OpenChat(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.shell.OpenChat(); err != nil {
		common.Fail(c, http.StatusConflict, 40902, err.Error())
		return
	}

	doc, found := h.Docs.Get(sess.shell.ActiveDocumentID)
	if !found {
		common.Fail(c, http.StatusNotFound, 40401, "document not found")
		return
	}

	conv, err := h.ChatSvc.Open(c.Request.Context(), &doc)
	if err != nil {
		h.Log.Error("opening conversation failed", zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to open chat")
		return
	}
	sess.conversationID = conv.ID

	snap, err := h.ChatSvc.Snapshot(c.Request.Context(), conv.ID)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to open chat")
		return
	}
	common.OK(c, gin.H{"shell": sess.shell, "chat": snap})
}

func (h *Handler) conversationID(c *gin.Context) (string, bool) {
	sess, ok := h.session(c)
	if !ok {
		return "", false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.conversationID == "" {
		common.Fail(c, http.StatusConflict, 40903, "no open chat in this session")
		return "", false
	}
	return sess.conversationID, true
}

func (h *Handler) GetChat(c *gin.Context) {
	convID, ok := h.conversationID(c)
	if !ok {
		return
	}
	snap, err := h.ChatSvc.Snapshot(c.Request.Context(), convID)
	if err != nil {
		common.Fail(c, http.StatusNotFound, 40404, "conversation not found")
		return
	}
	common.OK(c, gin.H{"chat": snap})
}

type sendMessageReq struct {
	Message string `json:"message"`
}

func (h *Handler) SendChatMessage(c *gin.Context) {
	convID, ok := h.conversationID(c)
	if !ok {
		return
	}

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	appended := true
	if _, err := h.ChatSvc.Send(c.Request.Context(), convID, req.Message); err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			// silent no-op by contract, not an error
			appended = false
		case errors.Is(err, chat.ErrReplyPending):
			common.Fail(c, http.StatusConflict, 40904, "a reply is already pending")
			return
		case errors.Is(err, chat.ErrAwaitingConfirmation):
			common.Fail(c, http.StatusConflict, 40905, "confirm or cancel the hand-off first")
			return
		case errors.Is(err, chat.ErrConversationNotFound):
			common.Fail(c, http.StatusNotFound, 40404, "conversation not found")
			return
		default:
			h.Log.Error("send failed", zap.Error(err))
			common.Fail(c, http.StatusInternalServerError, 50002, "failed to send message")
			return
		}
	}

	snap, err := h.ChatSvc.Snapshot(c.Request.Context(), convID)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to send message")
		return
	}
	common.OK(c, gin.H{"appended": appended, "chat": snap})
}

func (h *Handler) escalationCall(c *gin.Context, op func(convID string) error) {
	convID, ok := h.conversationID(c)
	if !ok {
		return
	}

	if err := op(convID); err != nil {
		switch {
		case errors.Is(err, chat.ErrEscalated):
			common.Fail(c, http.StatusConflict, 40906, "conversation is already escalated")
		case errors.Is(err, chat.ErrNoEscalationPending):
			common.Fail(c, http.StatusConflict, 40907, "no escalation was requested")
		case errors.Is(err, chat.ErrReplyPending):
			common.Fail(c, http.StatusConflict, 40904, "a reply is already pending")
		case errors.Is(err, chat.ErrConversationNotFound):
			common.Fail(c, http.StatusNotFound, 40404, "conversation not found")
		default:
			h.Log.Error("escalation call failed", zap.Error(err))
			common.Fail(c, http.StatusInternalServerError, 50003, "escalation failed")
		}
		return
	}

	snap, err := h.ChatSvc.Snapshot(c.Request.Context(), convID)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50003, "escalation failed")
		return
	}
	common.OK(c, gin.H{"chat": snap})
}

func (h *Handler) RequestEscalation(c *gin.Context) {
	h.escalationCall(c, h.ChatSvc.RequestEscalation)
}

func (h *Handler) ConfirmEscalation(c *gin.Context) {
	h.escalationCall(c, func(convID string) error {
		_, err := h.ChatSvc.ConfirmEscalation(c.Request.Context(), convID)
		return err
	})
}

func (h *Handler) CancelEscalation(c *gin.Context) {
	h.escalationCall(c, h.ChatSvc.CancelEscalation)
}
