package cache

import "time"

// Outcome classifies the result of a store lookup.
type Outcome int

const (
	// OutcomeMiss means no entry exists for the key. Not an error.
	OutcomeMiss Outcome = iota

	// OutcomeHit means the entry was found and decoded successfully.
	OutcomeHit

	// OutcomeCorrupted means an entry existed but could not be decoded. The
	// file has been quarantined; the key behaves as absent until the next Set.
	OutcomeCorrupted
)

// String renders the outcome for logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomeCorrupted:
		return "corrupted"
	default:
		return "miss"
	}
}

// Result carries the outcome of a lookup together with the decoded value and
// the entry's creation timestamp on a hit. CreatedAt lets collaborators
// layer expiry on top without the store mandating it.
type Result struct {
	Outcome   Outcome
	Value     any
	CreatedAt time.Time
}
