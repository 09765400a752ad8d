package chat

import (
	"sync"
	"time"

	"github.com/epa-labs/epa-coach/internal/coach"
	"github.com/epa-labs/epa-coach/internal/docs"
)

// Sender identifies who authored a transcript message. Exactly one of
// the three tags per message.
type Sender string

const (
	SenderUser    Sender = "user"
	SenderCoach   Sender = "coach"
	SenderAdvisor Sender = "advisor"
)

// EscalationState is the hand-off state machine of a conversation.
// Escalated is terminal for the session.
type EscalationState string

const (
	StateNormal              EscalationState = "normal"
	StatePendingConfirmation EscalationState = "pending_confirmation"
	StateEscalated           EscalationState = "escalated"
)

// Message is one transcript entry. The transcript is append-only;
// rows are never updated, only deleted wholesale when the chat closes.
type Message struct {
	Seq            uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	MessageID      string    `gorm:"type:varchar(26);uniqueIndex;not null" json:"id"`
	ConversationID string    `gorm:"type:varchar(26);index;not null" json:"-"`
	Sender         Sender    `gorm:"type:varchar(16);not null" json:"sender"`
	Text           string    `gorm:"type:text;not null" json:"text"`
	Timestamp      string    `gorm:"type:varchar(5);not null" json:"timestamp"`
	CreatedAt      time.Time `json:"-"`
}

func (Message) TableName() string { return "chat_messages" }

// Conversation is the live, in-memory state of one chat session. The
// transcript rows live in the repo; everything here dies with the
// session.
type Conversation struct {
	ID       string
	Mode     coach.Mode
	State    EscalationState
	Document *docs.Document // owned by the document store, may be nil

	// mu guards the fields below. The pending gate covers both an
	// in-flight completion call and the escalation hand-off delay, so
	// at most one of the two runs at a time.
	mu         sync.Mutex
	pending    bool
	typingMode coach.Mode
}

// Snapshot is a render-ready view of a conversation.
type Snapshot struct {
	ConversationID string          `json:"conversation_id"`
	Messages       []Message       `json:"messages"`
	Mode           coach.Mode      `json:"mode"`
	State          EscalationState `json:"escalation_state"`
	Typing         bool            `json:"typing"`
	TypingLabel    string          `json:"typing_label,omitempty"`
	DocumentID     string          `json:"document_id,omitempty"`
}
