package valueobject

import (
	"errors"
	"fmt"
)

// ErrInvalidStatusTransition is returned for any (state, event) pair not in
// the transition table.
var ErrInvalidStatusTransition = errors.New("invalid status transition")

// LifecycleState is the stage of an application and, after disbursement, of
// its loan account.
type LifecycleState struct {
	value string
}

const (
	stateDraft       = "DRAFT"
	stateSubmitted   = "SUBMITTED"
	stateUnderReview = "UNDER_REVIEW"
	stateApproved    = "APPROVED"
	stateRejected    = "REJECTED"
	stateDisbursed   = "DISBURSED"
	stateActive      = "ACTIVE"
	statePaidOff     = "PAID_OFF"
	stateDefaulted   = "DEFAULTED"
)

var (
	StateDraft       = LifecycleState{value: stateDraft}
	StateSubmitted   = LifecycleState{value: stateSubmitted}
	StateUnderReview = LifecycleState{value: stateUnderReview}
	StateApproved    = LifecycleState{value: stateApproved}
	StateRejected    = LifecycleState{value: stateRejected}
	StateDisbursed   = LifecycleState{value: stateDisbursed}
	StateActive      = LifecycleState{value: stateActive}
	StatePaidOff     = LifecycleState{value: statePaidOff}
	StateDefaulted   = LifecycleState{value: stateDefaulted}
)

var validStates = map[string]LifecycleState{
	stateDraft:       StateDraft,
	stateSubmitted:   StateSubmitted,
	stateUnderReview: StateUnderReview,
	stateApproved:    StateApproved,
	stateRejected:    StateRejected,
	stateDisbursed:   StateDisbursed,
	stateActive:      StateActive,
	statePaidOff:     StatePaidOff,
	stateDefaulted:   StateDefaulted,
}

// NewLifecycleState parses a persisted state value.
func NewLifecycleState(s string) (LifecycleState, error) {
	v, ok := validStates[s]
	if !ok {
		return LifecycleState{}, fmt.Errorf("invalid lifecycle state: %q", s)
	}
	return v, nil
}

func (s LifecycleState) String() string { return s.value }

func (s LifecycleState) IsZero() bool { return s.value == "" }

func (s LifecycleState) Equal(other LifecycleState) bool { return s.value == other.value }

// IsTerminal reports whether no event can leave the state.
func (s LifecycleState) IsTerminal() bool {
	return s == StateRejected || s == StatePaidOff || s == StateDefaulted
}

// LifecycleEvent drives a transition.
type LifecycleEvent string

const (
	EventSubmit      LifecycleEvent = "SUBMIT"
	EventStartReview LifecycleEvent = "START_REVIEW"
	EventApprove     LifecycleEvent = "APPROVE"
	EventReject      LifecycleEvent = "REJECT"
	EventDisburse    LifecycleEvent = "DISBURSE"
	EventActivate    LifecycleEvent = "ACTIVATE"
	EventPayOff      LifecycleEvent = "PAY_OFF"
	EventDefault     LifecycleEvent = "DEFAULT"
)

type transitionKey struct {
	from  LifecycleState
	event LifecycleEvent
}

var transitions = map[transitionKey]LifecycleState{
	{StateDraft, EventSubmit}:          StateSubmitted,
	{StateSubmitted, EventStartReview}: StateUnderReview,
	{StateUnderReview, EventApprove}:   StateApproved,
	{StateUnderReview, EventReject}:    StateRejected,
	{StateApproved, EventDisburse}:     StateDisbursed,
	{StateDisbursed, EventActivate}:    StateActive,
	{StateActive, EventPayOff}:         StatePaidOff,
	{StateActive, EventDefault}:        StateDefaulted,
}

// Transition is the single authority on lifecycle moves.
func Transition(from LifecycleState, ev LifecycleEvent) (LifecycleState, error) {
	to, ok := transitions[transitionKey{from, ev}]
	if !ok {
		return from, fmt.Errorf("%w: %s on %s", ErrInvalidStatusTransition, ev, from.value)
	}
	return to, nil
}

// CanTransition reports whether ev is legal from s.
func (s LifecycleState) CanTransition(ev LifecycleEvent) bool {
	_, ok := transitions[transitionKey{s, ev}]
	return ok
}
