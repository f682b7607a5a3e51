package archive

import (
	"context"
	"database/sql"
	"time"
)

// ArchivedMessage is one queue message persisted by the drain worker.
type ArchivedMessage struct {
	MessageID  string    `json:"messageId"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Store contract for the message archive.
type Store interface {
	SaveMessage(ctx context.Context, msg ArchivedMessage) error
	GetMessage(ctx context.Context, messageID string) (*ArchivedMessage, error)
}

// MessageStore is the concrete implementation for a PostgreSQL database.
type MessageStore struct {
	DB *sql.DB
}

// NewMessageStore create new instance
func NewMessageStore(db *sql.DB) Store {
	return &MessageStore{DB: db}
}

// SaveMessage persists a received message. SQS delivers at least once, so
// a message id that already exists is left untouched.
func (s *MessageStore) SaveMessage(ctx context.Context, msg ArchivedMessage) error {
	query := `INSERT INTO archived_messages (message_id, body, received_at)
              VALUES ($1, $2, $3)
              ON CONFLICT (message_id) DO NOTHING`

	_, err := s.DB.ExecContext(ctx, query, msg.MessageID, msg.Body, msg.ReceivedAt)
	return err
}

// GetMessage fetches an archived message by its id.
func (s *MessageStore) GetMessage(ctx context.Context, messageID string) (*ArchivedMessage, error) {
	query := `SELECT message_id, body, received_at FROM archived_messages WHERE message_id = $1`

	msg := &ArchivedMessage{}
	err := s.DB.QueryRowContext(ctx, query, messageID).Scan(&msg.MessageID, &msg.Body, &msg.ReceivedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}
