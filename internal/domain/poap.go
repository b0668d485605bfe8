package domain

import "time"

// PoapRecord is one attendance token held by a wallet. POAPs are keyed by
// wallet, not by user.
type PoapRecord struct {
	WalletAddress string     `json:"wallet_address" db:"wallet_address"`
	EventID       string     `json:"event_id" db:"event_id"`
	TokenID       string     `json:"token_id" db:"token_id"`
	EventName     string     `json:"event_name" db:"event_name"`
	ImageURL      string     `json:"image_url" db:"image_url"`
	EventDate     *time.Time `json:"event_date,omitempty" db:"event_date"`
}

// SharedPoaps returns the records of a whose event id also appears in b,
// one per event, in a's order.
func SharedPoaps(a, b []PoapRecord) []PoapRecord {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	inB := make(map[string]struct{}, len(b))
	for _, r := range b {
		inB[r.EventID] = struct{}{}
	}
	seen := make(map[string]struct{})
	var shared []PoapRecord
	for _, r := range a {
		if _, ok := inB[r.EventID]; !ok {
			continue
		}
		if _, dup := seen[r.EventID]; dup {
			continue
		}
		seen[r.EventID] = struct{}{}
		shared = append(shared, r)
	}
	return shared
}

// EventIDs returns the distinct event ids of records.
func EventIDs(records []PoapRecord) []string {
	seen := make(map[string]struct{}, len(records))
	ids := make([]string, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.EventID]; ok {
			continue
		}
		seen[r.EventID] = struct{}{}
		ids = append(ids, r.EventID)
	}
	return ids
}
