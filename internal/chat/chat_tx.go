package chat

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateEventChat opens the chat room for an event inside the caller's transaction.
func CreateEventChat(tx *gorm.DB, eventID, hostID, title string) (*CommunityChat, error) {
	room := &CommunityChat{
		Title:     title,
		EventID:   &eventID,
		CreatedBy: hostID,
	}
	room.ID = uuid.NewString()
	if err := tx.Create(room).Error; err != nil {
		return nil, err
	}
	return room, nil
}

// DeleteEventChat removes an event's chat room and its messages inside the caller's transaction.
// Events without a room are ignored.
func DeleteEventChat(tx *gorm.DB, eventID string) error {
	var ids []string
	if err := tx.Model(&CommunityChat{}).Where("event_id = ?", eventID).Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("chat_id IN ?", ids).Delete(&ChatMessage{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&CommunityChat{}).Error
}
