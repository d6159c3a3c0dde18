package models

import (
	"encoding/json"
	"time"
)

// User is the account record the backend returns at login and caches in the session.
type User struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required"`
	Email     string    `json:"email" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"createdAt"`
}

// UnmarshalJSON accepts loosely formatted ids and timestamps.
func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	aux := struct {
		*alias
		ID        FlexibleID `json:"id"`
		CreatedAt Timestamp  `json:"createdAt"`
	}{alias: (*alias)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	u.ID = int(aux.ID)
	u.CreatedAt = aux.CreatedAt.Time
	return nil
}
