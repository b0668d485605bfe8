package domain

import "time"

type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

func (d Direction) IsValid() bool {
	return d == DirectionLeft || d == DirectionRight
}

// Swipe is a viewer's decision about a target. One row per ordered pair;
// re-swiping overwrites the direction.
type Swipe struct {
	UserID          string    `json:"user_id" db:"user_id"`
	TargetUserID    string    `json:"target_user_id" db:"target_user_id"`
	Direction       Direction `json:"direction" db:"direction"`
	SharedPoapCount int       `json:"shared_poap_count" db:"shared_poap_count"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

func (s *Swipe) IsRight() bool {
	return s != nil && s.Direction == DirectionRight
}

// Validate rejects malformed swipes before anything is written.
func (s *Swipe) Validate() error {
	if s.UserID == "" || s.TargetUserID == "" {
		return ErrInvalidUserID
	}
	if s.UserID == s.TargetUserID {
		return ErrCannotSwipeSelf
	}
	if IsSyntheticUserID(s.TargetUserID) || IsSyntheticUserID(s.UserID) {
		return ErrSyntheticTarget
	}
	if !s.Direction.IsValid() {
		return ErrInvalidDirection
	}
	if s.SharedPoapCount < 0 {
		s.SharedPoapCount = 0
	}
	return nil
}
