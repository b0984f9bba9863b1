package user

import (
	"github.com/DhavalSuthar-24/huddle/internal/store"
	"gorm.io/gorm"
)

// Load reads a user inside tx. A missing row surfaces as gorm.ErrRecordNotFound.
func Load(tx *gorm.DB, id string) (*User, error) {
	var u User
	if err := tx.First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Save writes the given columns of u guarded by the version it was read with.
func Save(tx *gorm.DB, u *User, updates map[string]interface{}) error {
	if err := store.CompareAndSwap(tx, &User{}, u.ID, u.Version, updates); err != nil {
		return err
	}
	u.Version++
	return nil
}
