// Package mutation drives add, update and delete requests against the
// dictionary service through an explicit per-entry state machine:
//
//	Idle -> Confirming -> Executing -> Succeeded|Failed -> Idle   (delete)
//	Confirming -> Idle                                            (cancel)
//	Idle -> Executing -> Succeeded|Failed -> Idle                  (add, update)
//
// At most one call per entry is in flight. Gateway failures never escape as
// errors; they end in Failed with a reason. After every successful change the
// controller reloads the whole collection instead of patching it.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/papapumpkin/sarf/internal/api"
	"github.com/papapumpkin/sarf/internal/catalog"
	"github.com/papapumpkin/sarf/internal/lexicon"
	"github.com/papapumpkin/sarf/internal/telemetry"
)

// Gateway issues the service calls a mutation needs.
type Gateway interface {
	AddRoot(ctx context.Context, root string) error
	UpdateRoot(ctx context.Context, old, renamed string) error
	DeleteRoot(ctx context.Context, root string) error
	AddScheme(ctx context.Context, in api.SchemeInput) error
	UpdateScheme(ctx context.Context, old, newPattern string) error
	DeleteScheme(ctx context.Context, name string) error
}

// Reloader refreshes the displayed collection from the service.
type Reloader interface {
	Reload(ctx context.Context) (*catalog.Snapshot, error)
}

// Recorder receives one telemetry event per transition.
type Recorder interface {
	Emit(evt telemetry.Event) error
}

// OutcomeSink stores terminal outcomes.
type OutcomeSink interface {
	Record(ctx context.Context, o Outcome) error
}

// Options configures a Controller.
type Options struct {
	Logger   *zap.Logger
	Recorder Recorder
	Sink     OutcomeSink
	// ResultTTL, when positive, returns Succeeded and Failed entries to
	// Idle after the delay unless they were acknowledged first.
	ResultTTL time.Duration
	Now       func() time.Time
}

// Input describes an entity to add. Type and Description apply to schemes.
type Input struct {
	Target      Target
	Name        string
	Type        lexicon.SchemeType
	Description string
}

// Controller tracks mutation state per key. It is safe for concurrent use;
// calls on different keys proceed independently.
type Controller struct {
	gw       Gateway
	reloader Reloader
	logger   *zap.Logger
	recorder Recorder
	sink     OutcomeSink
	ttl      time.Duration
	now      func() time.Time

	mu      sync.Mutex
	entries map[Key]*entry
	// gen numbers every transition. It is never reset, so an expiry timer
	// cannot match a later entry for the same key.
	gen uint64
}

type entry struct {
	status Status
	gen    uint64
}

// New creates a Controller. reloader may be nil when nothing displays the
// collection.
func New(gw Gateway, reloader Reloader, opts Options) *Controller {
	c := &Controller{
		gw:       gw,
		reloader: reloader,
		logger:   opts.Logger,
		recorder: opts.Recorder,
		sink:     opts.Sink,
		ttl:      opts.ResultTTL,
		now:      opts.Now,
		entries:  make(map[Key]*entry),
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Status returns the current state of key. Unknown keys are Idle.
func (c *Controller) Status(key Key) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked(key)
}

// Statuses returns every non-idle key, ordered by target then name.
func (c *Controller) Statuses() []Status {
	c.mu.Lock()
	out := make([]Status, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.status)
	}
	c.mu.Unlock()

	slices.SortFunc(out, func(a, b Status) int {
		if n := strings.Compare(string(a.Key.Target), string(b.Key.Target)); n != 0 {
			return n
		}
		return strings.Compare(a.Key.Name, b.Key.Name)
	})
	return out
}

// RequestDelete asks for confirmation before deleting key. No call is made.
// An empty name fails validation without asking.
func (c *Controller) RequestDelete(key Key) (Status, error) {
	if err := checkTarget(key.Target); err != nil {
		return Status{}, err
	}
	key = cleanKey(key)
	if key.Name == "" {
		return c.begin(key, OpDelete, emptyKeyError(key))
	}
	c.mu.Lock()
	if st := c.statusLocked(key); st.State != Idle {
		c.mu.Unlock()
		return st, guardError(st.State)
	}
	prev, st := c.setLocked(key, OpDelete, Confirming, nil, "")
	c.mu.Unlock()

	c.publish(prev, st)
	return st, nil
}

// Cancel abandons a pending delete.
func (c *Controller) Cancel(key Key) (Status, error) {
	key = cleanKey(key)
	c.mu.Lock()
	if st := c.statusLocked(key); st.State != Confirming {
		c.mu.Unlock()
		return st, ErrNotConfirming
	}
	prev, st := c.setLocked(key, OpDelete, Idle, nil, "")
	c.mu.Unlock()

	c.publish(prev, st)
	return st, nil
}

// ConfirmDelete deletes a key awaiting confirmation. It returns once the
// entry is Succeeded or Failed; it never leaves the entry Confirming.
func (c *Controller) ConfirmDelete(ctx context.Context, key Key) (Status, error) {
	key = cleanKey(key)
	c.mu.Lock()
	st := c.statusLocked(key)
	switch st.State {
	case Confirming:
	case Executing:
		c.mu.Unlock()
		return st, ErrBusy
	default:
		c.mu.Unlock()
		return st, ErrNotConfirming
	}
	prev, st := c.setLocked(key, OpDelete, Executing, nil, "")
	c.mu.Unlock()
	c.publish(prev, st)

	return c.execute(ctx, key, OpDelete, func(ctx context.Context) error {
		if key.Target == TargetScheme {
			return c.gw.DeleteScheme(ctx, key.Name)
		}
		return c.gw.DeleteRoot(ctx, key.Name)
	}), nil
}

// Add creates an entity. Roots must be three Arabic letters and scheme
// names must carry the radicals ف ع ل; anything else fails without a call.
func (c *Controller) Add(ctx context.Context, in Input) (Status, error) {
	if err := checkTarget(in.Target); err != nil {
		return Status{}, err
	}
	name, verr := validate(in.Target, in.Name)
	key := Key{Target: in.Target, Name: name}

	st, err := c.begin(key, OpAdd, verr)
	if err != nil || st.State != Executing {
		return st, err
	}
	return c.execute(ctx, key, OpAdd, func(ctx context.Context) error {
		if in.Target == TargetScheme {
			return c.gw.AddScheme(ctx, api.SchemeInput{Name: name, Type: in.Type, Description: in.Description})
		}
		return c.gw.AddRoot(ctx, name)
	}), nil
}

// Update renames the entity at key to value: a new root text, or a new
// pattern for a scheme. value is validated like an added name.
func (c *Controller) Update(ctx context.Context, key Key, value string) (Status, error) {
	if err := checkTarget(key.Target); err != nil {
		return Status{}, err
	}
	key = cleanKey(key)
	renamed, verr := validate(key.Target, value)
	if verr == nil && key.Name == "" {
		verr = emptyKeyError(key)
	}

	st, err := c.begin(key, OpUpdate, verr)
	if err != nil || st.State != Executing {
		return st, err
	}
	return c.execute(ctx, key, OpUpdate, func(ctx context.Context) error {
		if key.Target == TargetScheme {
			return c.gw.UpdateScheme(ctx, key.Name, renamed)
		}
		return c.gw.UpdateRoot(ctx, key.Name, renamed)
	}), nil
}

var errEmptyKey = errors.New("must not be empty")

// cleanKey normalizes the name the same way added names are, so every
// spelling of an entry shares one state.
func cleanKey(key Key) Key {
	key.Name = lexicon.Clean(key.Name)
	return key
}

func emptyKeyError(key Key) error {
	return &lexicon.ValidationError{Field: string(key.Target), Value: key.Name, Err: errEmptyKey}
}

// Ack dismisses a Succeeded or Failed result. Acknowledging an Idle key is
// a no-op.
func (c *Controller) Ack(key Key) (Status, error) {
	key = cleanKey(key)
	c.mu.Lock()
	st := c.statusLocked(key)
	switch {
	case st.State == Idle:
		c.mu.Unlock()
		return st, nil
	case !st.State.Terminal():
		c.mu.Unlock()
		return st, ErrNotTerminal
	}
	prev, st := c.setLocked(key, st.Op, Idle, nil, "")
	c.mu.Unlock()

	c.publish(prev, st)
	return st, nil
}

// begin moves an Idle key to Executing, or straight to Failed when verr is
// set.
func (c *Controller) begin(key Key, op Op, verr error) (Status, error) {
	c.mu.Lock()
	if st := c.statusLocked(key); st.State != Idle {
		c.mu.Unlock()
		return st, guardError(st.State)
	}
	var prev, st Status
	if verr != nil {
		prev, st = c.setLocked(key, op, Failed, &Failure{Kind: api.KindValidation, Reason: verr.Error()}, "")
	} else {
		prev, st = c.setLocked(key, op, Executing, nil, "")
	}
	c.mu.Unlock()

	c.publish(prev, st)
	return st, nil
}

// execute runs call for a key already in Executing and records the result.
func (c *Controller) execute(ctx context.Context, key Key, op Op, call func(context.Context) error) Status {
	start := c.now()
	err := call(ctx)

	var (
		to      = Succeeded
		fail    *Failure
		warning string
	)
	if err != nil {
		to = Failed
		fail = &Failure{Kind: api.KindOf(err), Reason: api.ReasonOf(err)}
		c.logger.Info("mutation failed",
			zap.Stringer("key", key), zap.String("op", string(op)),
			zap.String("kind", string(fail.Kind)), zap.Error(err))
	} else if c.reloader != nil {
		// The reload belongs to the completed change, not to the caller's
		// request, so it outlives a cancelled ctx.
		if _, rerr := c.reloader.Reload(context.WithoutCancel(ctx)); rerr != nil {
			warning = fmt.Sprintf("change saved but the list could not be refreshed: %s", api.ReasonOf(rerr))
			c.logger.Warn("reload after mutation failed", zap.Stringer("key", key), zap.Error(rerr))
		}
	}

	c.mu.Lock()
	prev, st := c.setLocked(key, op, to, fail, warning)
	c.mu.Unlock()

	c.logger.Debug("mutation finished",
		zap.Stringer("key", key), zap.String("op", string(op)),
		zap.Stringer("state", st.State), zap.Duration("elapsed", c.now().Sub(start)))
	c.publish(prev, st)
	return st
}

func (c *Controller) statusLocked(key Key) Status {
	if e, ok := c.entries[key]; ok {
		return e.status
	}
	return Status{Key: key, State: Idle}
}

// setLocked moves key to state and returns the previous and new status.
// Idle entries are dropped from the map.
func (c *Controller) setLocked(key Key, op Op, state State, fail *Failure, warning string) (Status, Status) {
	prev := c.statusLocked(key)
	st := Status{Key: key, State: state, Op: op, Failure: fail, Warning: warning, Since: c.now()}

	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	c.gen++
	e.gen = c.gen
	e.status = st
	if state == Idle {
		delete(c.entries, key)
	}

	if state.Terminal() && c.ttl > 0 {
		gen := e.gen
		time.AfterFunc(c.ttl, func() { c.expire(key, gen) })
	}
	return prev, st
}

// expire resets key to Idle if it is still in the terminal state that
// scheduled the expiry.
func (c *Controller) expire(key Key, gen uint64) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok || e.gen != gen || !e.status.State.Terminal() {
		c.mu.Unlock()
		return
	}
	prev, st := c.setLocked(key, e.status.Op, Idle, nil, "")
	c.mu.Unlock()

	c.publish(prev, st)
}

// publish reports a transition to the logger, the recorder and, for
// terminal states, the outcome sink.
func (c *Controller) publish(prev, st Status) {
	c.logger.Debug("mutation transition",
		zap.Stringer("key", st.Key), zap.String("op", string(st.Op)),
		zap.Stringer("from", prev.State), zap.Stringer("to", st.State))

	if c.recorder != nil {
		data := map[string]any{"op": string(st.Op), "from": prev.State.String(), "to": st.State.String()}
		if st.Failure != nil {
			data["kind"] = string(st.Failure.Kind)
			data["reason"] = st.Failure.Reason
		}
		if st.Warning != "" {
			data["warning"] = st.Warning
		}
		evt := telemetry.Event{
			Timestamp: st.Since,
			Kind:      telemetry.KindMutationState,
			Target:    string(st.Key.Target),
			Subject:   st.Key.Name,
			Data:      data,
		}
		if err := c.recorder.Emit(evt); err != nil {
			c.logger.Warn("telemetry emit failed", zap.Error(err))
		}
	}

	if c.sink != nil && st.State.Terminal() {
		o := Outcome{Key: st.Key, Op: st.Op, State: st.State, Failure: st.Failure, Warning: st.Warning, At: st.Since}
		if err := c.sink.Record(context.Background(), o); err != nil {
			c.logger.Warn("recording mutation outcome failed", zap.Stringer("key", st.Key), zap.Error(err))
		}
	}
}

func checkTarget(t Target) error {
	switch t {
	case TargetRoot, TargetScheme:
		return nil
	default:
		return fmt.Errorf("%w %q", ErrUnknownTarget, t)
	}
}

func guardError(s State) error {
	if s == Executing {
		return ErrBusy
	}
	return ErrNotIdle
}

func validate(t Target, name string) (string, error) {
	if t == TargetScheme {
		return lexicon.ValidateScheme(name)
	}
	return lexicon.ValidateRoot(name)
}
