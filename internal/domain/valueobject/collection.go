package valueobject

import "fmt"

// CollectionCaseStatus tracks collections work on a defaulted account.
type CollectionCaseStatus struct {
	value string
}

const (
	collectionOpen       = "OPEN"
	collectionInProgress = "IN_PROGRESS"
	collectionResolved   = "RESOLVED"
	collectionClosed     = "CLOSED"
)

var (
	CollectionCaseStatusOpen       = CollectionCaseStatus{value: collectionOpen}
	CollectionCaseStatusInProgress = CollectionCaseStatus{value: collectionInProgress}
	CollectionCaseStatusResolved   = CollectionCaseStatus{value: collectionResolved}
	CollectionCaseStatusClosed     = CollectionCaseStatus{value: collectionClosed}
)

// NewCollectionCaseStatus parses a persisted status value.
func NewCollectionCaseStatus(s string) (CollectionCaseStatus, error) {
	switch s {
	case collectionOpen, collectionInProgress, collectionResolved, collectionClosed:
		return CollectionCaseStatus{value: s}, nil
	default:
		return CollectionCaseStatus{}, fmt.Errorf("invalid collection case status: %q", s)
	}
}

func (s CollectionCaseStatus) String() string { return s.value }

func (s CollectionCaseStatus) Equal(other CollectionCaseStatus) bool { return s.value == other.value }

// IsOpen reports whether collections work is still outstanding.
func (s CollectionCaseStatus) IsOpen() bool {
	return s == CollectionCaseStatusOpen || s == CollectionCaseStatusInProgress
}
