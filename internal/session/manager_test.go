package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

type memChecker map[string]bool

func (m memChecker) PromoCodeExists(_ context.Context, code string) (bool, error) {
	return m[code], nil
}

func advance(t *testing.T, m *Manager, userID int64, inputs ...string) Result {
	t.Helper()
	var result Result
	var err error
	for _, input := range inputs {
		result, err = m.Advance(context.Background(), userID, input)
		if err != nil {
			t.Fatalf("advance %q: %v", input, err)
		}
	}
	return result
}

func TestPromoFullFlow(t *testing.T) {
	m := NewManager(memChecker{})
	start := m.Start(1, FlowPromoFull)
	if start.Prompt == "" {
		t.Fatal("empty first prompt")
	}

	result := advance(t, m, 1, "summer24", "100", "10", "5", "30")
	if !result.Done {
		t.Fatal("flow not done after all steps")
	}
	want := PromoDraft{Code: "SUMMER24", Amount: 100, DiscountPercent: 10, MaxUses: 5, ExpiresDays: 30}
	if result.Draft != want {
		t.Errorf("draft = %+v, want %+v", result.Draft, want)
	}

	// The session is gone once the flow completes.
	if _, ok := m.Active(1); ok {
		t.Error("session still active after completion")
	}
	if _, err := m.Advance(context.Background(), 1, "anything"); !errors.Is(err, ErrNoSession) {
		t.Errorf("err = %v, want ErrNoSession", err)
	}
}

func TestPromoCustomFlowSkipsDiscount(t *testing.T) {
	m := NewManager(memChecker{})
	m.Start(1, FlowPromoCustom)

	result := advance(t, m, 1, "GIFT2024", "200", "0", "0")
	if !result.Done {
		t.Fatal("flow not done")
	}
	want := PromoDraft{Code: "GIFT2024", Amount: 200, DiscountPercent: 0, MaxUses: 0, ExpiresDays: 0}
	if result.Draft != want {
		t.Errorf("draft = %+v, want %+v", result.Draft, want)
	}
}

func TestInvalidInputKeepsStep(t *testing.T) {
	m := NewManager(memChecker{})
	m.Start(1, FlowPromoCustom)

	result, err := m.Advance(context.Background(), 1, "a b")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if result.Prompt == "" {
		t.Error("re-prompt missing on validation failure")
	}

	// Still on the code step: a bad amount is not accepted as a code either.
	if _, err := m.Advance(context.Background(), 1, "???"); !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}

	// A valid code moves on and previously entered garbage left no trace.
	final := advance(t, m, 1, "OKCODE1", "150", "3", "0")
	want := PromoDraft{Code: "OKCODE1", Amount: 150, MaxUses: 3}
	if !final.Done || final.Draft != want {
		t.Errorf("draft = %+v, want %+v", final.Draft, want)
	}
}

func TestTakenCodeRejected(t *testing.T) {
	m := NewManager(memChecker{"TAKEN123": true})
	m.Start(1, FlowPromoCustom)

	_, err := m.Advance(context.Background(), 1, "taken123")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want ValidationError for taken code", err)
	}
}

func TestCancelDiscardsSession(t *testing.T) {
	m := NewManager(memChecker{})
	m.Start(1, FlowPromoFull)
	advance(t, m, 1, "SOME1234")

	m.Cancel(1)
	if _, ok := m.Active(1); ok {
		t.Error("session active after cancel")
	}
	if _, err := m.Advance(context.Background(), 1, "100"); !errors.Is(err, ErrNoSession) {
		t.Errorf("err = %v, want ErrNoSession", err)
	}
}

func TestRestartDiscardsProgress(t *testing.T) {
	m := NewManager(memChecker{})
	m.Start(1, FlowPromoFull)
	advance(t, m, 1, "FIRST123", "500")

	// Starting again puts the flow back on the code step.
	m.Start(1, FlowPromoCustom)
	result := advance(t, m, 1, "SECOND12", "50", "1", "0")
	want := PromoDraft{Code: "SECOND12", Amount: 50, MaxUses: 1}
	if !result.Done || result.Draft != want {
		t.Errorf("draft = %+v, want %+v", result.Draft, want)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	m := NewManager(memChecker{})
	m.Start(1, FlowPromoCustom)
	m.Start(2, FlowPromoCustom)

	advance(t, m, 1, "USERONE1", "100")
	result := advance(t, m, 2, "USERTWO2", "200", "0", "0")
	if result.Draft.Code != "USERTWO2" || result.Draft.Amount != 200 {
		t.Errorf("draft = %+v", result.Draft)
	}

	// User 1 is still mid-flow on the uses step.
	kind, ok := m.Active(1)
	if !ok || kind != FlowPromoCustom {
		t.Errorf("active = %v, %v", kind, ok)
	}
}

func TestRedeemFlow(t *testing.T) {
	m := NewManager(memChecker{})
	m.Start(1, FlowRedeemCode)

	_, err := m.Advance(context.Background(), 1, "   ")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want ValidationError for blank input", err)
	}

	result := advance(t, m, 1, "  bonus55 ")
	if !result.Done || result.Text != "bonus55" {
		t.Errorf("result = %+v, want trimmed text", result)
	}
}

func TestDepositFlowBounds(t *testing.T) {
	m := NewManager(memChecker{})
	m.StartDeposit(1, 100, 10000)

	var vErr *ValidationError
	for _, bad := range []string{"99", "10001", "-5", "сто"} {
		if _, err := m.Advance(context.Background(), 1, bad); !errors.As(err, &vErr) {
			t.Errorf("Advance(%q) err = %v, want ValidationError", bad, err)
		}
	}

	result := advance(t, m, 1, "500")
	if !result.Done || result.Amount != 500 {
		t.Errorf("result = %+v, want amount 500", result)
	}
}

func TestDiscountRange(t *testing.T) {
	m := NewManager(memChecker{})
	m.Start(1, FlowPromoFull)
	advance(t, m, 1, "DISC1234", "100")

	var vErr *ValidationError
	if _, err := m.Advance(context.Background(), 1, "101"); !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want ValidationError for discount > 100", err)
	}

	result := advance(t, m, 1, "100", "0", "0")
	if !result.Done || result.Draft.DiscountPercent != 100 {
		t.Errorf("draft = %+v", result.Draft)
	}
}

// stallChecker parks inside the uniqueness lookup until released, so tests
// can observe what the manager allows while a lookup is in flight.
type stallChecker struct {
	entered  chan struct{}
	released chan struct{}
}

func (c *stallChecker) PromoCodeExists(context.Context, string) (bool, error) {
	close(c.entered)
	<-c.released
	return false, nil
}

func TestCodeLookupDoesNotBlockOtherUsers(t *testing.T) {
	checker := &stallChecker{entered: make(chan struct{}), released: make(chan struct{})}
	m := NewManager(checker)
	m.Start(1, FlowPromoCustom)

	go func() {
		_, _ = m.Advance(context.Background(), 1, "SLOW1234")
	}()
	<-checker.entered

	// Another user's flow must run to completion while user 1 is stuck in
	// the lookup.
	done := make(chan error, 1)
	go func() {
		m.Start(2, FlowRedeemCode)
		_, err := m.Advance(context.Background(), 2, "FAST1234")
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("second user's advance: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second user's flow blocked behind the first user's code lookup")
	}
	close(checker.released)
}

func TestCancelDuringCodeLookup(t *testing.T) {
	checker := &stallChecker{entered: make(chan struct{}), released: make(chan struct{})}
	m := NewManager(checker)
	m.Start(1, FlowPromoCustom)

	errCh := make(chan error, 1)
	go func() {
		_, err := m.Advance(context.Background(), 1, "SLOW1234")
		errCh <- err
	}()
	<-checker.entered
	m.Cancel(1)
	close(checker.released)

	if err := <-errCh; !errors.Is(err, ErrNoSession) {
		t.Errorf("err = %v, want ErrNoSession", err)
	}
	if _, ok := m.Active(1); ok {
		t.Error("cancelled session still active")
	}
}
