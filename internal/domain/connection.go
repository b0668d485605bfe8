package domain

import "time"

type ConnectionType string

const (
	ConnectionQR     ConnectionType = "qr"
	ConnectionSwipe  ConnectionType = "swipe"
	ConnectionManual ConnectionType = "manual"
)

func (t ConnectionType) IsValid() bool {
	switch t {
	case ConnectionQR, ConnectionSwipe, ConnectionManual:
		return true
	}
	return false
}

// Connection is an address-book entry owned by UserID. ConnectionData is the
// counterpart's profile as it was when the entry was saved.
type Connection struct {
	ID              string         `json:"id" db:"id"`
	UserID          string         `json:"user_id" db:"user_id"`
	ConnectedUserID string         `json:"connected_user_id" db:"connected_user_id"`
	ConnectionData  *Profile       `json:"connection_data" db:"-"`
	Notes           string         `json:"notes" db:"notes"`
	ConnectionType  ConnectionType `json:"connection_type" db:"connection_type"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

func (c *Connection) Validate() error {
	if c.UserID == "" || c.ConnectedUserID == "" {
		return ErrInvalidUserID
	}
	if c.UserID == c.ConnectedUserID {
		return ErrCannotConnectSelf
	}
	if IsSyntheticUserID(c.ConnectedUserID) {
		return ErrSyntheticTarget
	}
	if !c.ConnectionType.IsValid() {
		return ErrInvalidConnection
	}
	return nil
}
