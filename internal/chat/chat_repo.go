package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/DhavalSuthar-24/huddle/internal/common"
	"github.com/DhavalSuthar-24/huddle/internal/store"
	"gorm.io/gorm"
)

// MembershipSource resolves who belongs to an event's chat: its host and participants.
type MembershipSource interface {
	Members(ctx context.Context, eventID string) ([]string, error)
}

type ChatRepository interface {
	ListForUser(ctx context.Context, userID string, eventIDs []string) ([]CommunityChat, error)
	CreateCommunity(ctx context.Context, creatorID, title string, memberIDs []string) (*CommunityChat, error)
	GetChat(ctx context.Context, chatID string) (*CommunityChat, error)
	IsMember(ctx context.Context, room *CommunityChat, userID string) (bool, error)
	PostMessage(ctx context.Context, msg *ChatMessage) error
	Messages(ctx context.Context, chatID string, page, pageSize int) ([]ChatMessage, int64, error)
}

type chatRepository struct {
	db      *gorm.DB
	members MembershipSource
}

func NewChatRepository(db *gorm.DB, members MembershipSource) ChatRepository {
	return &chatRepository{db: db, members: members}
}

// ListForUser returns the community chats the user was added to plus the rooms of the
// given events, most recently active first.
func (r *chatRepository) ListForUser(ctx context.Context, userID string, eventIDs []string) ([]CommunityChat, error) {
	chats := []CommunityChat{}
	memberOf := r.db.Model(&ChatMember{}).Select("chat_id").Where("user_id = ?", userID)

	query := r.db.WithContext(ctx).Where("id IN (?)", memberOf)
	if len(eventIDs) > 0 {
		query = query.Or("event_id IN ?", eventIDs)
	}
	err := query.
		Order("CASE WHEN last_message_timestamp IS NULL THEN 1 ELSE 0 END").
		Order("last_message_timestamp DESC").
		Order("created_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, store.Wrap(err)
	}
	return chats, nil
}

func (r *chatRepository) CreateCommunity(ctx context.Context, creatorID, title string, memberIDs []string) (*CommunityChat, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: chat title is required", common.ErrValidation)
	}
	room := &CommunityChat{Title: title, CreatedBy: creatorID}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		seen := map[string]bool{}
		for _, id := range append([]string{creatorID}, memberIDs...) {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			if err := tx.Create(&ChatMember{ChatID: room.ID, UserID: id, JoinedAt: now}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, store.Wrap(err)
	}
	return room, nil
}

func (r *chatRepository) GetChat(ctx context.Context, chatID string) (*CommunityChat, error) {
	var room CommunityChat
	if err := r.db.WithContext(ctx).First(&room, "id = ?", chatID).Error; err != nil {
		return nil, store.Wrap(err)
	}
	return &room, nil
}

func (r *chatRepository) IsMember(ctx context.Context, room *CommunityChat, userID string) (bool, error) {
	if room.EventID != nil {
		members, err := r.members.Members(ctx, *room.EventID)
		if err != nil {
			return false, err
		}
		for _, id := range members {
			if id == userID {
				return true, nil
			}
		}
		return false, nil
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&ChatMember{}).
		Where("chat_id = ? AND user_id = ?", room.ID, userID).
		Count(&count).Error
	if err != nil {
		return false, store.Wrap(err)
	}
	return count > 0, nil
}

// PostMessage appends msg and updates the room's last-message preview in one transaction.
func (r *chatRepository) PostMessage(ctx context.Context, msg *ChatMessage) error {
	if msg.Text == "" {
		return fmt.Errorf("%w: message text is required", common.ErrValidation)
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		res := tx.Model(&CommunityChat{}).Where("id = ?", msg.ChatID).Updates(map[string]interface{}{
			"last_message":           msg.Text,
			"last_message_timestamp": msg.Timestamp,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return store.Wrap(err)
}

// Messages lists a chat's messages oldest first.
func (r *chatRepository) Messages(ctx context.Context, chatID string, page, pageSize int) ([]ChatMessage, int64, error) {
	var total int64
	messages := []ChatMessage{}

	query := r.db.WithContext(ctx).Model(&ChatMessage{}).Where("chat_id = ?", chatID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, store.Wrap(err)
	}
	err := query.
		Order("timestamp ASC").
		Order("created_at ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&messages).Error
	if err != nil {
		return nil, 0, store.Wrap(err)
	}
	return messages, total, nil
}
