package chat

import (
	"time"

	"github.com/DhavalSuthar-24/huddle/internal/models"
)

// CommunityChat is either the chat room of an event (EventID set, membership follows the
// event's host and participants) or a free-standing community chat with explicit members.
type CommunityChat struct {
	models.BaseModel
	Title                string     `json:"title" gorm:"not null"`
	EventID              *string    `json:"event_id,omitempty" gorm:"type:varchar(36);uniqueIndex"`
	CreatedBy            string     `json:"created_by" gorm:"type:varchar(36)"`
	LastMessage          string     `json:"last_message"`
	LastMessageTimestamp *time.Time `json:"last_message_timestamp,omitempty" gorm:"index"`
}

// ChatMember links users to community chats that are not bound to an event.
type ChatMember struct {
	ChatID   string    `json:"chat_id" gorm:"primaryKey;type:varchar(36)"`
	UserID   string    `json:"user_id" gorm:"primaryKey;type:varchar(36);index"`
	JoinedAt time.Time `json:"joined_at"`
}

// ChatMessage is append-only.
type ChatMessage struct {
	models.BaseModel
	ChatID     string    `json:"chat_id" gorm:"type:varchar(36);index;not null"`
	SenderID   string    `json:"sender_id" gorm:"type:varchar(36);not null"`
	SenderName string    `json:"sender_name"`
	Text       string    `json:"text" gorm:"not null"`
	Timestamp  time.Time `json:"timestamp" gorm:"index"`
}

type CreateChatRequest struct {
	Title     string   `json:"title" binding:"required,min=1,max=120"`
	MemberIDs []string `json:"member_ids"`
}

type PostMessageRequest struct {
	Text string `json:"text" binding:"required,min=1,max=2000"`
}

// Models lists the tables owned by this package, in migration order.
func Models() []interface{} {
	return []interface{}{&CommunityChat{}, &ChatMember{}, &ChatMessage{}}
}
