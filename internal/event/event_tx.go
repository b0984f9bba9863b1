package event

import (
	"github.com/DhavalSuthar-24/huddle/internal/store"
	"gorm.io/gorm"
)

// Load reads an event inside tx. A missing row surfaces as gorm.ErrRecordNotFound.
func Load(tx *gorm.DB, id string) (*Event, error) {
	var e Event
	if err := tx.First(&e, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// Save writes the given columns of e guarded by the version it was read with.
func Save(tx *gorm.DB, e *Event, updates map[string]interface{}) error {
	if err := store.CompareAndSwap(tx, &Event{}, e.ID, e.Version, updates); err != nil {
		return err
	}
	e.Version++
	return nil
}
