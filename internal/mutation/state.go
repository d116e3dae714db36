package mutation

import (
	"errors"
	"time"

	"github.com/papapumpkin/sarf/internal/api"
)

// State is a position in a key's mutation lifecycle.
type State int

const (
	Idle       State = iota // Nothing pending.
	Confirming              // A delete awaits confirmation.
	Executing               // A gateway call is in flight.
	Succeeded               // The server accepted the change.
	Failed                  // The change was rejected or could not be sent.
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Confirming:
		return "confirming"
	case Executing:
		return "executing"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is a result waiting to be acknowledged.
func (s State) Terminal() bool {
	return s == Succeeded || s == Failed
}

// Target is the kind of entity a mutation acts on.
type Target string

const (
	TargetRoot   Target = "root"
	TargetScheme Target = "scheme"
)

// Key identifies the entity a mutation acts on: a root text or a scheme name.
type Key struct {
	Target Target
	Name   string
}

// RootKey returns the key for root text.
func RootKey(text string) Key { return Key{Target: TargetRoot, Name: text} }

// SchemeKey returns the key for a scheme name.
func SchemeKey(name string) Key { return Key{Target: TargetScheme, Name: name} }

func (k Key) String() string { return string(k.Target) + " " + k.Name }

// Op is the mutation a key is going through.
type Op string

const (
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Failure explains a Failed state.
type Failure struct {
	Kind   api.Kind
	Reason string
}

// Status is a key's current lifecycle state. Failure is set only when State
// is Failed. Warning is set when the change succeeded but the refreshed
// collection could not be loaded.
type Status struct {
	Key     Key
	State   State
	Op      Op
	Failure *Failure
	Warning string
	Since   time.Time
}

// Outcome is a terminal result, as handed to an OutcomeSink.
type Outcome struct {
	Key     Key
	Op      Op
	State   State
	Failure *Failure
	Warning string
	At      time.Time
}

// Errors returned for transitions the state machine does not allow.
var (
	ErrNotIdle       = errors.New("mutation: another action on this entry is pending")
	ErrNotConfirming = errors.New("mutation: no delete awaiting confirmation")
	ErrBusy          = errors.New("mutation: a change to this entry is already in progress")
	ErrNotTerminal   = errors.New("mutation: no result to acknowledge")
	ErrUnknownTarget = errors.New("mutation: unknown target")
)
