package mutation

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/sarf/internal/api"
	"github.com/papapumpkin/sarf/internal/catalog"
	"github.com/papapumpkin/sarf/internal/telemetry"
)

// fakeGateway records calls. err is returned from every call. When block is
// set, calls signal entered and then wait on block.
type fakeGateway struct {
	mu      sync.Mutex
	calls   []string
	schemes []api.SchemeInput
	err     error
	block   chan struct{}
	entered chan string
}

func (g *fakeGateway) record(ctx context.Context, call string) error {
	g.mu.Lock()
	g.calls = append(g.calls, call)
	block, entered, err := g.block, g.entered, g.err
	g.mu.Unlock()
	if entered != nil {
		entered <- call
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (g *fakeGateway) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func (g *fakeGateway) AddRoot(ctx context.Context, root string) error {
	return g.record(ctx, "add root "+root)
}

func (g *fakeGateway) UpdateRoot(ctx context.Context, old, renamed string) error {
	return g.record(ctx, "update root "+old+" "+renamed)
}

func (g *fakeGateway) DeleteRoot(ctx context.Context, root string) error {
	return g.record(ctx, "delete root "+root)
}

func (g *fakeGateway) AddScheme(ctx context.Context, in api.SchemeInput) error {
	g.mu.Lock()
	g.schemes = append(g.schemes, in)
	g.mu.Unlock()
	return g.record(ctx, "add scheme "+in.Name)
}

func (g *fakeGateway) UpdateScheme(ctx context.Context, old, newPattern string) error {
	return g.record(ctx, "update scheme "+old+" "+newPattern)
}

func (g *fakeGateway) DeleteScheme(ctx context.Context, name string) error {
	return g.record(ctx, "delete scheme "+name)
}

type fakeReloader struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *fakeReloader) Reload(context.Context) (*catalog.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &catalog.Snapshot{}, nil
}

func (r *fakeReloader) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []telemetry.Event
}

func (r *fakeRecorder) Emit(evt telemetry.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

// transitions renders recorded events as "from->to".
func (r *fakeRecorder) transitions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		d := e.Data.(map[string]any)
		out = append(out, d["from"].(string)+"->"+d["to"].(string))
	}
	return out
}

type fakeSink struct {
	mu       sync.Mutex
	outcomes []Outcome
	err      error
}

func (s *fakeSink) Record(_ context.Context, o Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, o)
	return s.err
}

func newController(gw *fakeGateway, opts Options) (*Controller, *fakeReloader) {
	r := &fakeReloader{}
	return New(gw, r, opts), r
}

var kataba = RootKey("كتب")

func TestRequestDelete_MovesToConfirming(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	c, _ := newController(gw, Options{})

	st, err := c.RequestDelete(kataba)
	if err != nil {
		t.Fatalf("RequestDelete: %v", err)
	}
	if st.State != Confirming || st.Op != OpDelete {
		t.Errorf("status = %+v, want confirming delete", st)
	}
	if got := c.Status(kataba).State; got != Confirming {
		t.Errorf("Status = %s, want confirming", got)
	}
	if len(gw.Calls()) != 0 {
		t.Errorf("RequestDelete made calls: %v", gw.Calls())
	}

	if _, err := c.RequestDelete(kataba); !errors.Is(err, ErrNotIdle) {
		t.Errorf("second RequestDelete error = %v, want ErrNotIdle", err)
	}
}

func TestCancel(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	c, _ := newController(gw, Options{})

	if _, err := c.Cancel(kataba); !errors.Is(err, ErrNotConfirming) {
		t.Errorf("Cancel from idle error = %v, want ErrNotConfirming", err)
	}
	if _, err := c.RequestDelete(kataba); err != nil {
		t.Fatalf("RequestDelete: %v", err)
	}
	st, err := c.Cancel(kataba)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if st.State != Idle {
		t.Errorf("state after cancel = %s, want idle", st.State)
	}
	if len(c.Statuses()) != 0 {
		t.Errorf("idle keys should not be listed: %+v", c.Statuses())
	}
	if len(gw.Calls()) != 0 {
		t.Errorf("Cancel made calls: %v", gw.Calls())
	}
}

func TestConfirmDelete_RequiresConfirming(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	c, _ := newController(gw, Options{})

	if _, err := c.ConfirmDelete(context.Background(), kataba); !errors.Is(err, ErrNotConfirming) {
		t.Errorf("error = %v, want ErrNotConfirming", err)
	}
	if len(gw.Calls()) != 0 {
		t.Errorf("unexpected calls: %v", gw.Calls())
	}
}

func TestConfirmDelete_Outcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		key         Key
		gwErr       error
		wantState   State
		wantKind    api.Kind
		wantReloads int
		wantCall    string
	}{
		{
			name:        "root deleted",
			key:         kataba,
			wantState:   Succeeded,
			wantReloads: 1,
			wantCall:    "delete root كتب",
		},
		{
			name:        "scheme deleted",
			key:         SchemeKey("فاعل"),
			wantState:   Succeeded,
			wantReloads: 1,
			wantCall:    "delete scheme فاعل",
		},
		{
			name:      "already gone",
			key:       kataba,
			gwErr:     &api.Error{Op: "delete root", Kind: api.KindNotFound, Status: http.StatusNotFound, Subject: "كتب"},
			wantState: Failed,
			wantKind:  api.KindNotFound,
			wantCall:  "delete root كتب",
		},
		{
			name:      "network",
			key:       kataba,
			gwErr:     &api.Error{Op: "delete root", Kind: api.KindNetwork, BaseURL: "http://localhost:8080/api"},
			wantState: Failed,
			wantKind:  api.KindNetwork,
			wantCall:  "delete root كتب",
		},
		{
			name:      "unclassified error",
			key:       kataba,
			gwErr:     errors.New("boom"),
			wantState: Failed,
			wantKind:  api.KindServer,
			wantCall:  "delete root كتب",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gw := &fakeGateway{err: tt.gwErr}
			c, reloader := newController(gw, Options{})

			if _, err := c.RequestDelete(tt.key); err != nil {
				t.Fatalf("RequestDelete: %v", err)
			}
			st, err := c.ConfirmDelete(context.Background(), tt.key)
			if err != nil {
				t.Fatalf("ConfirmDelete returned error %v; failures belong in the status", err)
			}
			if st.State != tt.wantState {
				t.Errorf("state = %s, want %s", st.State, tt.wantState)
			}
			if st.State == Confirming {
				t.Error("ConfirmDelete left the key confirming")
			}
			if tt.wantState == Failed {
				if st.Failure == nil || st.Failure.Kind != tt.wantKind || st.Failure.Reason == "" {
					t.Errorf("failure = %+v, want kind %s with a reason", st.Failure, tt.wantKind)
				}
			} else if st.Failure != nil {
				t.Errorf("unexpected failure %+v", st.Failure)
			}
			if got := reloader.Calls(); got != tt.wantReloads {
				t.Errorf("reloads = %d, want %d", got, tt.wantReloads)
			}
			if diff := cmp.Diff([]string{tt.wantCall}, gw.Calls()); diff != "" {
				t.Errorf("calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExecuting_RejectsSecondRequest(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{block: make(chan struct{}), entered: make(chan string, 1)}
	c, _ := newController(gw, Options{})

	if _, err := c.RequestDelete(kataba); err != nil {
		t.Fatalf("RequestDelete: %v", err)
	}
	done := make(chan Status, 1)
	go func() {
		st, _ := c.ConfirmDelete(context.Background(), kataba)
		done <- st
	}()
	<-gw.entered

	if got := c.Status(kataba).State; got != Executing {
		t.Fatalf("state = %s, want executing", got)
	}
	if _, err := c.ConfirmDelete(context.Background(), kataba); !errors.Is(err, ErrBusy) {
		t.Errorf("ConfirmDelete while executing: %v, want ErrBusy", err)
	}
	if _, err := c.Add(context.Background(), Input{Target: TargetRoot, Name: "كتب"}); !errors.Is(err, ErrBusy) {
		t.Errorf("Add while executing: %v, want ErrBusy", err)
	}
	if _, err := c.Update(context.Background(), kataba, "درس"); !errors.Is(err, ErrBusy) {
		t.Errorf("Update while executing: %v, want ErrBusy", err)
	}
	if _, err := c.RequestDelete(kataba); !errors.Is(err, ErrBusy) {
		t.Errorf("RequestDelete while executing: %v, want ErrBusy", err)
	}

	close(gw.block)
	if st := <-done; st.State != Succeeded {
		t.Errorf("final state = %s, want succeeded", st.State)
	}
	if n := len(gw.Calls()); n != 1 {
		t.Errorf("gateway calls = %d, want 1", n)
	}
}

func TestExecuting_OtherKeysProceed(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{block: make(chan struct{}), entered: make(chan string, 2)}
	c, _ := newController(gw, Options{})

	first := make(chan Status, 1)
	go func() {
		st, _ := c.Add(context.Background(), Input{Target: TargetRoot, Name: "كتب"})
		first <- st
	}()
	<-gw.entered

	second := make(chan Status, 1)
	go func() {
		st, _ := c.Add(context.Background(), Input{Target: TargetRoot, Name: "درس"})
		second <- st
	}()
	<-gw.entered

	if got := len(c.Statuses()); got != 2 {
		t.Errorf("in-flight keys = %d, want 2", got)
	}
	close(gw.block)
	for _, ch := range []chan Status{first, second} {
		if st := <-ch; st.State != Succeeded {
			t.Errorf("state = %s, want succeeded", st.State)
		}
	}
}

func TestAdd_ValidationFailsWithoutCall(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Input
	}{
		{"two letters", Input{Target: TargetRoot, Name: "كت"}},
		{"four letters", Input{Target: TargetRoot, Name: "كتبت"}},
		{"latin", Input{Target: TargetRoot, Name: "abc"}},
		{"empty root", Input{Target: TargetRoot, Name: "  "}},
		{"scheme without radicals", Input{Target: TargetScheme, Name: "مكتوب"}},
		{"empty scheme", Input{Target: TargetScheme}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gw := &fakeGateway{}
			c, reloader := newController(gw, Options{})

			st, err := c.Add(context.Background(), tt.in)
			if err != nil {
				t.Fatalf("Add: %v", err)
			}
			if st.State != Failed || st.Failure == nil || st.Failure.Kind != api.KindValidation {
				t.Errorf("status = %+v, want failed validation", st)
			}
			if len(gw.Calls()) != 0 || reloader.Calls() != 0 {
				t.Errorf("validation failure made calls: %v, reloads %d", gw.Calls(), reloader.Calls())
			}
		})
	}
}

func TestAdd_Conflict(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{err: &api.Error{Op: "add root", Kind: api.KindConflict, Status: http.StatusConflict, Subject: "كتب"}}
	c, reloader := newController(gw, Options{})

	st, err := c.Add(context.Background(), Input{Target: TargetRoot, Name: " كتب "})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if st.Key != kataba {
		t.Errorf("key = %v, want trimmed root", st.Key)
	}
	want := &Failure{Kind: api.KindConflict, Reason: `"كتب" already exists`}
	if diff := cmp.Diff(want, st.Failure); diff != "" {
		t.Errorf("failure mismatch (-want +got):\n%s", diff)
	}
	if reloader.Calls() != 0 {
		t.Error("failed add should not reload")
	}
}

func TestAdd_SchemeCarriesDetails(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	c, reloader := newController(gw, Options{})

	st, err := c.Add(context.Background(), Input{Target: TargetScheme, Name: "مفعال", Type: "MAZID", Description: "instrument"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if st.State != Succeeded {
		t.Fatalf("state = %s, want succeeded", st.State)
	}
	want := []api.SchemeInput{{Name: "مفعال", Type: "MAZID", Description: "instrument"}}
	if diff := cmp.Diff(want, gw.schemes); diff != "" {
		t.Errorf("scheme input mismatch (-want +got):\n%s", diff)
	}
	if reloader.Calls() != 1 {
		t.Errorf("reloads = %d, want 1", reloader.Calls())
	}
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		key       Key
		value     string
		wantState State
		wantCalls []string
	}{
		{"rename root", kataba, "درس", Succeeded, []string{"update root كتب درس"}},
		{"rename scheme", SchemeKey("فاعل"), "فعّال", Succeeded, []string{"update scheme فاعل فعّال"}},
		{"invalid new root", kataba, "د", Failed, nil},
		{"invalid new pattern", SchemeKey("فاعل"), "abc", Failed, nil},
		{"missing old name", RootKey(""), "درس", Failed, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gw := &fakeGateway{}
			c, _ := newController(gw, Options{})

			st, err := c.Update(context.Background(), tt.key, tt.value)
			if err != nil {
				t.Fatalf("Update: %v", err)
			}
			if st.State != tt.wantState || st.Op != OpUpdate {
				t.Errorf("status = %+v, want %s update", st, tt.wantState)
			}
			if diff := cmp.Diff(tt.wantCalls, gw.Calls()); diff != "" {
				t.Errorf("calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSuccess_ReloadFailureWarns(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	reloader := &fakeReloader{err: &api.Error{Op: "list roots", Kind: api.KindNetwork, BaseURL: "http://x"}}
	c := New(gw, reloader, Options{})

	st, err := c.Add(context.Background(), Input{Target: TargetRoot, Name: "كتب"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if st.State != Succeeded {
		t.Errorf("state = %s, want succeeded", st.State)
	}
	if !strings.Contains(st.Warning, "could not be refreshed") {
		t.Errorf("warning = %q", st.Warning)
	}
}

func TestSuccess_ReloadSurvivesCancelledContext(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	c, reloader := newController(gw, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// The fake gateway ignores ctx unless blocked, so the call succeeds.
	st, _ := c.Add(ctx, Input{Target: TargetRoot, Name: "كتب"})
	if st.State != Succeeded || st.Warning != "" || reloader.Calls() != 1 {
		t.Errorf("status = %+v, reloads = %d", st, reloader.Calls())
	}
}

func TestAck(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	c, _ := newController(gw, Options{})

	if st, err := c.Ack(kataba); err != nil || st.State != Idle {
		t.Errorf("Ack on idle = %+v, %v", st, err)
	}
	if _, err := c.RequestDelete(kataba); err != nil {
		t.Fatalf("RequestDelete: %v", err)
	}
	if _, err := c.Ack(kataba); !errors.Is(err, ErrNotTerminal) {
		t.Errorf("Ack on confirming = %v, want ErrNotTerminal", err)
	}
	if _, err := c.ConfirmDelete(context.Background(), kataba); err != nil {
		t.Fatalf("ConfirmDelete: %v", err)
	}
	if _, err := c.Add(context.Background(), Input{Target: TargetRoot, Name: "كتب"}); !errors.Is(err, ErrNotIdle) {
		t.Errorf("Add before ack = %v, want ErrNotIdle", err)
	}
	st, err := c.Ack(kataba)
	if err != nil || st.State != Idle {
		t.Fatalf("Ack = %+v, %v", st, err)
	}
	if _, err := c.RequestDelete(kataba); err != nil {
		t.Errorf("RequestDelete after ack: %v", err)
	}
}

func TestResultTTL_ResetsToIdle(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	c, _ := newController(gw, Options{ResultTTL: 10 * time.Millisecond})

	if st, _ := c.Add(context.Background(), Input{Target: TargetRoot, Name: "كتب"}); st.State != Succeeded {
		t.Fatalf("state = %s, want succeeded", st.State)
	}
	deadline := time.Now().Add(2 * time.Second)
	for c.Status(kataba).State != Idle {
		if time.Now().After(deadline) {
			t.Fatal("result never expired")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestResultTTL_DoesNotClobberNewerState(t *testing.T) {
	t.Parallel()

	t.Run("confirming", func(t *testing.T) {
		t.Parallel()
		c, _ := newController(&fakeGateway{}, Options{ResultTTL: 30 * time.Millisecond})

		if _, err := c.Add(context.Background(), Input{Target: TargetRoot, Name: "كتب"}); err != nil {
			t.Fatalf("Add: %v", err)
		}
		if _, err := c.Ack(kataba); err != nil {
			t.Fatalf("Ack: %v", err)
		}
		if _, err := c.RequestDelete(kataba); err != nil {
			t.Fatalf("RequestDelete: %v", err)
		}
		time.Sleep(90 * time.Millisecond)
		if got := c.Status(kataba).State; got != Confirming {
			t.Errorf("state = %s, want confirming", got)
		}
	})

	t.Run("later result", func(t *testing.T) {
		t.Parallel()
		c, _ := newController(&fakeGateway{}, Options{ResultTTL: 400 * time.Millisecond})
		add := func() {
			t.Helper()
			st, err := c.Add(context.Background(), Input{Target: TargetRoot, Name: "كتب"})
			if err != nil || st.State != Succeeded {
				t.Fatalf("Add = %s, %v; want succeeded", st.State, err)
			}
		}

		add()
		if _, err := c.Ack(kataba); err != nil {
			t.Fatalf("Ack: %v", err)
		}
		time.Sleep(250 * time.Millisecond)
		add()

		// The first result's timer fires here; the second result must survive it.
		time.Sleep(250 * time.Millisecond)
		if got := c.Status(kataba).State; got != Succeeded {
			t.Fatalf("state = %s, want succeeded until its own timer fires", got)
		}

		time.Sleep(300 * time.Millisecond)
		if got := c.Status(kataba).State; got != Idle {
			t.Errorf("state = %s, want idle after the second timer", got)
		}
	})
}

func TestDelete_NormalizesKey(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	c, _ := newController(gw, Options{})
	padded := RootKey(" كتب ")

	st, err := c.RequestDelete(padded)
	if err != nil {
		t.Fatalf("RequestDelete: %v", err)
	}
	if st.Key != kataba {
		t.Errorf("key = %q, want %q", st.Key.Name, kataba.Name)
	}
	if got := c.Status(kataba).State; got != Confirming {
		t.Errorf("Status(كتب) = %s, want confirming", got)
	}
	if _, err := c.Update(context.Background(), padded, "درس"); !errors.Is(err, ErrNotIdle) {
		t.Errorf("Update on the same root error = %v, want ErrNotIdle", err)
	}

	if _, err := c.ConfirmDelete(context.Background(), RootKey("كتب ")); err != nil {
		t.Fatalf("ConfirmDelete: %v", err)
	}
	if diff := cmp.Diff([]string{"delete root كتب"}, gw.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if _, err := c.Ack(padded); err != nil {
		t.Fatalf("Ack: %v", err)
	}
	if got := c.Status(kataba).State; got != Idle {
		t.Errorf("state after ack = %s, want idle", got)
	}
}

func TestRequestDelete_EmptyName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  Key
	}{
		{"empty root", RootKey("")},
		{"blank scheme", SchemeKey("   ")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gw := &fakeGateway{}
			c, _ := newController(gw, Options{})

			st, err := c.RequestDelete(tt.key)
			if err != nil {
				t.Fatalf("RequestDelete: %v", err)
			}
			if st.State != Failed || st.Failure == nil || st.Failure.Kind != api.KindValidation {
				t.Errorf("status = %+v, want failed validation", st)
			}
			if len(gw.Calls()) != 0 {
				t.Errorf("calls = %v, want none", gw.Calls())
			}
		})
	}
}

func TestSinks(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	rec := &fakeRecorder{}
	sink := &fakeSink{err: errors.New("disk full")}
	fixed := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	c, _ := newController(gw, Options{Recorder: rec, Sink: sink, Now: func() time.Time { return fixed }})

	if _, err := c.RequestDelete(kataba); err != nil {
		t.Fatalf("RequestDelete: %v", err)
	}
	if _, err := c.ConfirmDelete(context.Background(), kataba); err != nil {
		t.Fatalf("ConfirmDelete: %v", err)
	}
	if _, err := c.Ack(kataba); err != nil {
		t.Fatalf("Ack: %v", err)
	}

	wantTransitions := []string{"idle->confirming", "confirming->executing", "executing->succeeded", "succeeded->idle"}
	if diff := cmp.Diff(wantTransitions, rec.transitions()); diff != "" {
		t.Errorf("transitions mismatch (-want +got):\n%s", diff)
	}

	wantOutcomes := []Outcome{{Key: kataba, Op: OpDelete, State: Succeeded, At: fixed}}
	if diff := cmp.Diff(wantOutcomes, sink.outcomes); diff != "" {
		t.Errorf("outcomes mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownTarget(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	c, _ := newController(gw, Options{})
	bad := Key{Target: "word", Name: "كاتب"}

	if _, err := c.RequestDelete(bad); !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("RequestDelete = %v, want ErrUnknownTarget", err)
	}
	if _, err := c.Add(context.Background(), Input{Target: "word", Name: "كاتب"}); !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("Add = %v, want ErrUnknownTarget", err)
	}
	if _, err := c.Update(context.Background(), bad, "كتب"); !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("Update = %v, want ErrUnknownTarget", err)
	}
}

func TestStatuses_Ordered(t *testing.T) {
	t.Parallel()

	c, _ := newController(&fakeGateway{}, Options{})
	for _, k := range []Key{SchemeKey("فاعل"), RootKey("كتب"), RootKey("درس")} {
		if _, err := c.RequestDelete(k); err != nil {
			t.Fatalf("RequestDelete(%v): %v", k, err)
		}
	}

	var got []Key
	for _, st := range c.Statuses() {
		got = append(got, st.Key)
	}
	want := []Key{RootKey("درس"), RootKey("كتب"), SchemeKey("فاعل")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	tests := map[State]string{
		Idle:       "idle",
		Confirming: "confirming",
		Executing:  "executing",
		Succeeded:  "succeeded",
		Failed:     "failed",
		State(42):  "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
