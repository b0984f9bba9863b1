// internal/models/base.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel replaces gorm.Model for records whose identity is an opaque string
// assigned by the store.
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// StringSlice is an ordered list of strings stored as a JSON column.
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan unmarshals a JSON column into the slice.
func (s *StringSlice) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*s = StringSlice{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("StringSlice: expected []byte or string, got %T", src)
	}
	if len(b) == 0 {
		*s = StringSlice{}
		return nil
	}
	return json.Unmarshal(b, s)
}

func (s StringSlice) Contains(v string) bool {
	for _, item := range s {
		if item == v {
			return true
		}
	}
	return false
}

// Add appends v unless it is already present. The original slice is never modified.
func (s StringSlice) Add(v string) (StringSlice, bool) {
	if s.Contains(v) {
		return s, false
	}
	out := make(StringSlice, 0, len(s)+1)
	out = append(out, s...)
	return append(out, v), true
}

// Remove drops every occurrence of v. The original slice is never modified.
func (s StringSlice) Remove(v string) (StringSlice, bool) {
	out := make(StringSlice, 0, len(s))
	removed := false
	for _, item := range s {
		if item == v {
			removed = true
			continue
		}
		out = append(out, item)
	}
	if !removed {
		return s, false
	}
	return out, true
}
