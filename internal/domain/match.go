package domain

import "time"

type MatchStatus string

const (
	MatchStatusActive    MatchStatus = "active"
	MatchStatusUnmatched MatchStatus = "unmatched"
)

type Match struct {
	ID          string      `json:"id" db:"id"`
	UserAID     string      `json:"user_a_id" db:"user_a_id"`
	UserBID     string      `json:"user_b_id" db:"user_b_id"`
	SharedPoaps []string    `json:"shared_poaps" db:"shared_poaps"`
	Status      MatchStatus `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

func (m *Match) HasUser(userID string) bool {
	return m.UserAID == userID || m.UserBID == userID
}

func (m *Match) GetOtherUserID(userID string) (string, bool) {
	if m.UserAID == userID {
		return m.UserBID, true
	}
	if m.UserBID == userID {
		return m.UserAID, true
	}
	return "", false
}

// CanonicalPair orders two user ids so that a < b. Matches are stored under
// this ordering, which makes the unordered pair a single unique key.
func CanonicalPair(x, y string) (a, b string) {
	if x > y {
		return y, x
	}
	return x, y
}

// MatchWithProfile is a match as seen by one of its members.
type MatchWithProfile struct {
	*Match
	OtherUser *Profile `json:"other_user,omitempty"`
}
