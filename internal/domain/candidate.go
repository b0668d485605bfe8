package domain

// Candidate is a profile shown to a viewer in the discovery feed.
type Candidate struct {
	Profile
	CompatibilityScore int  `json:"compatibility_score"`
	SharedPoapCount    int  `json:"shared_poap_count"`
	IsSynthetic        bool `json:"is_synthetic"`
}
