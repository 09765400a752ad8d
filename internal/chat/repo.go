package chat

import (
	"context"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// Repo stores transcripts in an in-memory sqlite database. The shared
// cache keeps every pooled connection on the same database; nothing is
// written to disk and everything is gone on restart.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// OpenMemoryDB opens the in-memory transcript database and migrates
// the message table.
func OpenMemoryDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Message{}); err != nil {
		return nil, err
	}
	return db, nil
}

func (r *Repo) InsertMessage(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// ListMessages returns a conversation's transcript in insertion order.
func (r *Repo) ListMessages(ctx context.Context, conversationID string) ([]Message, error) {
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("seq ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// DeleteMessages discards a transcript when its chat session ends.
func (r *Repo) DeleteMessages(ctx context.Context, conversationID string) error {
	return r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Delete(&Message{}).Error
}
