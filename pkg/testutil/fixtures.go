package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fixed identifiers and instants for deterministic tests.
var (
	TestBorrowerID    = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestApplicationID = uuid.MustParse("00000000-0000-0000-0000-000000000010")
	TestAccountID     = uuid.MustParse("00000000-0000-0000-0000-000000000020")

	TestNow = time.Date(2025, time.January, 15, 9, 30, 0, 0, time.UTC)
)

// D parses a decimal literal and panics on malformed input.
func D(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// FixedClock returns a clock function that always reports at.
func FixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
