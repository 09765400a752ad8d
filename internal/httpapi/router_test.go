package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epa-labs/epa-coach/internal/ai"
	"github.com/epa-labs/epa-coach/internal/chat"
	"github.com/epa-labs/epa-coach/internal/coach"
	"github.com/epa-labs/epa-coach/internal/config"
	"github.com/epa-labs/epa-coach/internal/docs"
	"github.com/epa-labs/epa-coach/internal/httpapi/handlers"
	"github.com/epa-labs/epa-coach/internal/store/memstore"
)

// scriptedProvider stands in for the completion service. It records
// every request and replies with a canned string or error.
type scriptedProvider struct {
	mu    sync.Mutex
	calls [][]ai.Message
	reply string
	err   error
}

func (p *scriptedProvider) Chat(_ context.Context, messages []ai.Message) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, messages)
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

func (p *scriptedProvider) lastCall(t *testing.T) []ai.Message {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.calls)
	return p.calls[len(p.calls)-1]
}

func newTestRouter(t *testing.T, provider ai.Provider) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := chat.OpenMemoryDB()
	require.NoError(t, err)

	responder := coach.NewResponder(provider, nil)
	chatSvc := chat.NewService(chat.NewRepo(db), responder, memstore.New(time.Minute), nil, 0)
	h := handlers.NewHandler(config.Config{}, docs.NewStore(), chatSvc, responder, memstore.New(time.Minute), nil)
	return NewRouter(h)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	env := decodeEnvelope(t, w)
	require.Equal(t, 0, env.Code, "expected success envelope, got: %s", w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

type shellView struct {
	Screen           string `json:"screen"`
	Tab              string `json:"tab"`
	ActiveDocumentID string `json:"active_document_id"`
}

type chatView struct {
	ConversationID string `json:"conversation_id"`
	Messages       []struct {
		ID        string `json:"id"`
		Sender    string `json:"sender"`
		Text      string `json:"text"`
		Timestamp string `json:"timestamp"`
	} `json:"messages"`
	Mode        string `json:"mode"`
	State       string `json:"escalation_state"`
	Typing      bool   `json:"typing"`
	TypingLabel string `json:"typing_label"`
	DocumentID  string `json:"document_id"`
}

func TestPing(t *testing.T) {
	r := newTestRouter(t, &scriptedProvider{reply: "ok"})
	w := doJSON(t, r, http.MethodGet, "/ping", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decodeEnvelope(t, w).Code)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	r := newTestRouter(t, &scriptedProvider{reply: "ok"})

	w := doJSON(t, r, http.MethodGet, "/nope", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 40400, decodeEnvelope(t, w).Code)

	w = doJSON(t, r, http.MethodDelete, "/ping", nil)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, 40500, decodeEnvelope(t, w).Code)
}

func TestDocumentEndpoints(t *testing.T) {
	r := newTestRouter(t, &scriptedProvider{reply: "ok"})

	var listData struct {
		Documents []docs.Document `json:"documents"`
	}
	w := doJSON(t, r, http.MethodGet, "/documents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &listData)
	require.Len(t, listData.Documents, 3)
	assert.Equal(t, "Arztbrief Orthopädie", listData.Documents[0].Title)

	var docData struct {
		Document docs.Document `json:"document"`
	}
	w = doJSON(t, r, http.MethodGet, "/documents/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &docData)
	assert.Equal(t, "Laborbefund Blutwerte", docData.Document.Title)

	w = doJSON(t, r, http.MethodGet, "/documents/99", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 40401, decodeEnvelope(t, w).Code)
}

func TestCompleteChat_Success(t *testing.T) {
	p := &scriptedProvider{reply: "Das ist ein Arztbrief."}
	r := newTestRouter(t, p)

	w := doJSON(t, r, http.MethodPost, "/api/chat", gin.H{
		"message": "Was bedeutet das?",
		"mode":    "coach",
		"documentContext": gin.H{
			"title":   "Arztbrief Orthopädie",
			"date":    "12.01.2026",
			"content": "Diagnose: Lumboischialgie",
		},
		"conversationHistory": []gin.H{
			{"role": "user", "content": "Hallo"},
			{"role": "assistant", "content": "Guten Tag!"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Response string `json:"response"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Das ist ein Arztbrief.", resp.Response)

	msgs := p.lastCall(t)
	require.Len(t, msgs, 4)
	assert.Equal(t, ai.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "Titel: Arztbrief Orthopädie")
	assert.Contains(t, msgs[0].Content, "Diagnose: Lumboischialgie")
	assert.Equal(t, "Hallo", msgs[1].Content)
	assert.Equal(t, "Guten Tag!", msgs[2].Content)
	assert.Equal(t, ai.RoleUser, msgs[3].Role)
	assert.Equal(t, "Was bedeutet das?", msgs[3].Content)
}

func TestCompleteChat_AdvisorMode(t *testing.T) {
	p := &scriptedProvider{reply: "Gerne helfe ich weiter."}
	r := newTestRouter(t, p)

	w := doJSON(t, r, http.MethodPost, "/api/chat", gin.H{"message": "Hallo", "mode": "advisor"})
	require.Equal(t, http.StatusOK, w.Code)

	msgs := p.lastCall(t)
	assert.Contains(t, msgs[0].Content, "Thomas Schneider")
}

func TestCompleteChat_BadRequests(t *testing.T) {
	r := newTestRouter(t, &scriptedProvider{reply: "ok"})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")

	w = doJSON(t, r, http.MethodPost, "/api/chat", gin.H{"mode": "coach"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Message is required")
}

func TestCompleteChat_MissingCredential(t *testing.T) {
	p := &scriptedProvider{err: fmt.Errorf("openrouter: %w", ai.ErrMissingCredential)}
	r := newTestRouter(t, p)

	w := doJSON(t, r, http.MethodPost, "/api/chat", gin.H{"message": "Hallo"})
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp struct {
		Error    string `json:"error"`
		Fallback string `json:"fallback"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "API key not configured", resp.Error)
	assert.Equal(t, coach.FallbackUnavailable, resp.Fallback)
}

// gatedProvider additionally reports its credential state up front,
// like the key-based providers do.
type gatedProvider struct {
	scriptedProvider
	credentialErr error
}

func (p *gatedProvider) CheckCredential() error { return p.credentialErr }

func TestCompleteChat_CredentialGateBeforeValidation(t *testing.T) {
	p := &gatedProvider{credentialErr: fmt.Errorf("openrouter: %w", ai.ErrMissingCredential)}
	r := newTestRouter(t, p)

	// Without a credential even an invalid request yields the
	// unavailability payload, never a validation error.
	for _, body := range []string{"{", "{}", `{"mode":"coach"}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusInternalServerError, w.Code, "body %q", body)

		var resp struct {
			Error    string `json:"error"`
			Fallback string `json:"fallback"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "API key not configured", resp.Error)
		assert.Equal(t, coach.FallbackUnavailable, resp.Fallback)
	}
}

func TestCompleteChat_UpstreamFailure(t *testing.T) {
	p := &scriptedProvider{err: errors.New("status 502")}
	r := newTestRouter(t, p)

	w := doJSON(t, r, http.MethodPost, "/api/chat", gin.H{"message": "Hallo"})
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp struct {
		Error    string `json:"error"`
		Details  string `json:"details"`
		Fallback string `json:"fallback"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Failed to get response from AI", resp.Error)
	assert.Equal(t, "status 502", resp.Details)
	assert.Equal(t, coach.FallbackError, resp.Fallback)
}

func createSession(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		SessionID string    `json:"session_id"`
		Shell     shellView `json:"shell"`
	}
	decodeData(t, w, &data)
	require.NotEmpty(t, data.SessionID)
	require.Equal(t, "list", data.Shell.Screen)
	require.Equal(t, "home", data.Shell.Tab)
	return data.SessionID
}

func openChatOnDocument(t *testing.T, r *gin.Engine, sid, docID string) chatView {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/documents/"+docID+"/select", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/chat/open", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Shell shellView `json:"shell"`
		Chat  chatView  `json:"chat"`
	}
	decodeData(t, w, &data)
	require.Equal(t, "chat", data.Shell.Screen)
	return data.Chat
}

func TestSession_NotFound(t *testing.T) {
	r := newTestRouter(t, &scriptedProvider{reply: "ok"})
	w := doJSON(t, r, http.MethodGet, "/sessions/does-not-exist", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 40402, decodeEnvelope(t, w).Code)
}

func TestSelectDocument_Unknown(t *testing.T) {
	r := newTestRouter(t, &scriptedProvider{reply: "ok"})
	sid := createSession(t, r)

	w := doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/documents/99/select", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 40401, decodeEnvelope(t, w).Code)
}

func TestOpenChat_RequiresDetailScreen(t *testing.T) {
	r := newTestRouter(t, &scriptedProvider{reply: "ok"})
	sid := createSession(t, r)

	w := doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/chat/open", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 40902, decodeEnvelope(t, w).Code)
}

func TestSessionFlow_DocumentChat(t *testing.T) {
	p := &scriptedProvider{reply: "In einfachen Worten: Ihr Rücken braucht Physiotherapie."}
	r := newTestRouter(t, p)
	sid := createSession(t, r)

	cv := openChatOnDocument(t, r, sid, "1")
	require.Len(t, cv.Messages, 1)
	assert.Equal(t, "coach", cv.Messages[0].Sender)
	assert.Contains(t, cv.Messages[0].Text, "Arztbrief Orthopädie")
	assert.Contains(t, cv.Messages[0].Text, "12.01.2026")
	assert.Equal(t, "coach", cv.Mode)
	assert.Equal(t, "normal", cv.State)
	assert.Equal(t, "1", cv.DocumentID)

	w := doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/chat/messages", gin.H{"message": "Was bedeutet das?"})
	require.Equal(t, http.StatusOK, w.Code)
	var sent struct {
		Appended bool     `json:"appended"`
		Chat     chatView `json:"chat"`
	}
	decodeData(t, w, &sent)
	assert.True(t, sent.Appended)
	require.Len(t, sent.Chat.Messages, 3)
	assert.Equal(t, "user", sent.Chat.Messages[1].Sender)
	assert.Equal(t, "coach", sent.Chat.Messages[2].Sender)
	assert.Equal(t, p.reply, sent.Chat.Messages[2].Text)

	// The coach sees the document the user is looking at.
	msgs := p.lastCall(t)
	assert.Contains(t, msgs[0].Content, "Titel: Arztbrief Orthopädie")
}

func TestSessionFlow_EmptyMessageIsNoOp(t *testing.T) {
	r := newTestRouter(t, &scriptedProvider{reply: "ok"})
	sid := createSession(t, r)
	openChatOnDocument(t, r, sid, "1")

	w := doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/chat/messages", gin.H{"message": "   "})
	require.Equal(t, http.StatusOK, w.Code)
	var sent struct {
		Appended bool     `json:"appended"`
		Chat     chatView `json:"chat"`
	}
	decodeData(t, w, &sent)
	assert.False(t, sent.Appended)
	assert.Len(t, sent.Chat.Messages, 1)
}

func TestSessionFlow_Escalation(t *testing.T) {
	p := &scriptedProvider{reply: "Ich kümmere mich darum."}
	r := newTestRouter(t, p)
	sid := createSession(t, r)
	openChatOnDocument(t, r, sid, "1")

	w := doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/chat/escalation", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var esc struct {
		Chat chatView `json:"chat"`
	}
	decodeData(t, w, &esc)
	assert.Equal(t, "pending_confirmation", esc.Chat.State)
	assert.Len(t, esc.Chat.Messages, 1, "requesting a hand-off must not touch the transcript")

	// While the confirmation banner is up, sending is rejected.
	w = doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/chat/messages", gin.H{"message": "Hallo?"})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 40905, decodeEnvelope(t, w).Code)

	w = doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/chat/escalation/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &esc)
	assert.Equal(t, "normal", esc.Chat.State)

	w = doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/chat/escalation", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/chat/escalation/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &esc)
	assert.Equal(t, "escalated", esc.Chat.State)
	assert.Equal(t, "advisor", esc.Chat.Mode)
	require.Len(t, esc.Chat.Messages, 2)
	assert.Equal(t, "advisor", esc.Chat.Messages[1].Sender)
	assert.Contains(t, esc.Chat.Messages[1].Text, "Kundenberater")

	// Escalation is terminal: a second confirm is rejected.
	w = doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/chat/escalation/confirm", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 40906, decodeEnvelope(t, w).Code)

	// Replies now come from the advisor persona.
	w = doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/chat/messages", gin.H{"message": "Übernehmen Sie das?"})
	require.Equal(t, http.StatusOK, w.Code)
	var sent struct {
		Chat chatView `json:"chat"`
	}
	decodeData(t, w, &sent)
	require.Len(t, sent.Chat.Messages, 4)
	assert.Equal(t, "advisor", sent.Chat.Messages[3].Sender)

	msgs := p.lastCall(t)
	assert.Contains(t, msgs[0].Content, "Thomas Schneider")
}

func TestSessionFlow_CancelWithoutRequest(t *testing.T) {
	r := newTestRouter(t, &scriptedProvider{reply: "ok"})
	sid := createSession(t, r)
	openChatOnDocument(t, r, sid, "1")

	w := doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/chat/escalation/cancel", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 40907, decodeEnvelope(t, w).Code)

	w = doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/chat/escalation/confirm", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 40907, decodeEnvelope(t, w).Code)
}

func TestSessionFlow_BackDiscardsChat(t *testing.T) {
	r := newTestRouter(t, &scriptedProvider{reply: "ok"})
	sid := createSession(t, r)
	openChatOnDocument(t, r, sid, "1")

	w := doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/back", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var back struct {
		Shell shellView `json:"shell"`
	}
	decodeData(t, w, &back)
	assert.Equal(t, "detail", back.Shell.Screen)

	w = doJSON(t, r, http.MethodGet, "/sessions/"+sid+"/chat", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 40903, decodeEnvelope(t, w).Code)

	// Reopening starts a fresh conversation with only the greeting.
	w = doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/chat/open", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var reopened struct {
		Chat chatView `json:"chat"`
	}
	decodeData(t, w, &reopened)
	assert.Len(t, reopened.Chat.Messages, 1)
}

func TestSessionExpiry_ClosesConversation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := chat.OpenMemoryDB()
	require.NoError(t, err)

	responder := coach.NewResponder(&scriptedProvider{reply: "ok"}, nil)
	chatSvc := chat.NewService(chat.NewRepo(db), responder, memstore.New(time.Minute), nil, 0)
	sessions := memstore.New(20 * time.Millisecond)
	h := handlers.NewHandler(config.Config{}, docs.NewStore(), chatSvc, responder, sessions, nil)
	r := NewRouter(h)

	sid := createSession(t, r)
	cv := openChatOnDocument(t, r, sid, "1")
	require.NotEmpty(t, cv.ConversationID)

	// Session expiry must take the conversation down with it.
	deadline := time.Now().Add(2 * time.Second)
	for {
		_, err := chatSvc.Snapshot(context.Background(), cv.ConversationID)
		if errors.Is(err, chat.ErrConversationNotFound) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("conversation survived session expiry: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	w := doJSON(t, r, http.MethodGet, "/sessions/"+sid, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 40402, decodeEnvelope(t, w).Code)
}

func TestSessionFlow_TabSwitchClosesChat(t *testing.T) {
	r := newTestRouter(t, &scriptedProvider{reply: "ok"})
	sid := createSession(t, r)
	openChatOnDocument(t, r, sid, "1")

	w := doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/tab", gin.H{"tab": "profile"})
	require.Equal(t, http.StatusOK, w.Code)
	var sw struct {
		Shell shellView `json:"shell"`
	}
	decodeData(t, w, &sw)
	assert.Equal(t, "list", sw.Shell.Screen)
	assert.Equal(t, "profile", sw.Shell.Tab)
	assert.Empty(t, sw.Shell.ActiveDocumentID)

	w = doJSON(t, r, http.MethodGet, "/sessions/"+sid+"/chat", nil)
	require.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, "/sessions/"+sid+"/tab", gin.H{"tab": "nope"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 10002, decodeEnvelope(t, w).Code)
}
