package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// FlowKind tags the dialogue a user is in the middle of.
type FlowKind int

const (
	FlowPromoCustom   FlowKind = iota + 1 // code -> amount -> uses -> expiry
	FlowPromoFull                         // code -> amount -> discount -> uses -> expiry
	FlowRedeemCode                        // single step
	FlowDepositAmount                     // single step
)

type Step int

const (
	StepCode Step = iota
	StepAmount
	StepDiscount
	StepUses
	StepExpiry
)

// PromoDraft accumulates the fields collected across a guided promo flow.
type PromoDraft struct {
	Code            string
	Amount          int64
	DiscountPercent int
	MaxUses         int
	ExpiresDays     int
}

// ValidationError marks malformed input: the flow stays on the same step
// and already-collected fields are preserved.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ErrNoSession is returned when Advance is called with no active flow.
var ErrNoSession = errors.New("no active session")

// Result of one Advance (or Start) call. When Done is false, Prompt asks
// for the current step's input; when Done is true the flow is finished and
// the session is already cleared.
type Result struct {
	Done   bool
	Prompt string
	Draft  PromoDraft // populated for promo flows on Done
	Text   string     // validated raw input for FlowRedeemCode
	Amount int64      // validated amount for FlowDepositAmount
}

type state struct {
	kind  FlowKind
	step  Step
	draft PromoDraft

	minDeposit int64
	maxDeposit int64
}

// CodeChecker verifies promo-code uniqueness during the code step.
type CodeChecker interface {
	PromoCodeExists(ctx context.Context, code string) (bool, error)
}

// Manager holds per-user transient dialogue state in memory, keyed by
// telegram id. One flow per user: starting a new flow discards any prior
// incomplete one. Sessions never expire.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*state
	codes    CodeChecker
}

func NewManager(codes CodeChecker) *Manager {
	return &Manager{
		sessions: make(map[int64]*state),
		codes:    codes,
	}
}

// Start begins a flow for the user, replacing any active one, and returns
// the first prompt.
func (m *Manager) Start(userID int64, kind FlowKind) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := &state{kind: kind, step: StepCode}
	switch kind {
	case FlowRedeemCode, FlowDepositAmount:
		st.step = StepAmount // single-step flows have no code step
	}
	m.sessions[userID] = st
	return Result{Prompt: m.prompt(st)}
}

// StartDeposit begins a deposit flow carrying the current bounds, so
// validation reflects runtime settings.
func (m *Manager) StartDeposit(userID, min, max int64) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := &state{kind: FlowDepositAmount, step: StepAmount, minDeposit: min, maxDeposit: max}
	m.sessions[userID] = st
	return Result{Prompt: fmt.Sprintf("💰 Введите сумму пополнения (от %d до %d):", min, max)}
}

// Cancel discards the user's flow and any partial input unconditionally.
func (m *Manager) Cancel(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// Active reports the user's current flow, if any.
func (m *Manager) Active(userID int64) (FlowKind, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.sessions[userID]
	if !ok {
		return 0, false
	}
	return st.kind, true
}

// Advance feeds one inbound message into the user's flow. A
// *ValidationError keeps the flow on the same step; on the final step the
// session is cleared whatever the caller does next.
func (m *Manager) Advance(ctx context.Context, userID int64, text string) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[userID]
	if !ok {
		return Result{}, ErrNoSession
	}

	text = strings.TrimSpace(text)

	switch st.kind {
	case FlowRedeemCode:
		if text == "" {
			return Result{Prompt: m.prompt(st)}, invalid("Введите промокод текстом.")
		}
		delete(m.sessions, userID)
		return Result{Done: true, Text: text}, nil

	case FlowDepositAmount:
		amount, err := strconv.ParseInt(text, 10, 64)
		if err != nil || amount < st.minDeposit || amount > st.maxDeposit {
			return Result{Prompt: m.prompt(st)},
				invalid("Некорректная сумма. Введите число от %d до %d.", st.minDeposit, st.maxDeposit)
		}
		delete(m.sessions, userID)
		return Result{Done: true, Amount: amount}, nil
	}

	// Guided promo flows.
	switch st.step {
	case StepCode:
		code := strings.ToUpper(text)
		if !codeFormatOK(code) {
			return Result{Prompt: m.prompt(st)}, invalid("Код должен состоять из 4-20 букв и цифр.")
		}
		// The uniqueness check hits the database; drop the lock so other
		// users' sessions are not serialized behind it.
		m.mu.Unlock()
		exists, err := m.codes.PromoCodeExists(ctx, code)
		m.mu.Lock()
		if err != nil {
			return Result{}, err
		}
		// The session may have been cancelled or restarted while unlocked.
		if cur, ok := m.sessions[userID]; !ok || cur != st || st.step != StepCode {
			return Result{}, ErrNoSession
		}
		if exists {
			return Result{Prompt: m.prompt(st)}, invalid("Такой промокод уже существует, введите другой.")
		}
		st.draft.Code = code
		st.step = StepAmount

	case StepAmount:
		amount, err := parseNonNegative(text)
		if err != nil {
			return Result{Prompt: m.prompt(st)}, err
		}
		st.draft.Amount = amount
		if st.kind == FlowPromoFull {
			st.step = StepDiscount
		} else {
			st.step = StepUses
		}

	case StepDiscount:
		discount, err := parseNonNegative(text)
		if err != nil {
			return Result{Prompt: m.prompt(st)}, err
		}
		if discount > 100 {
			return Result{Prompt: m.prompt(st)}, invalid("Процент скидки должен быть от 0 до 100.")
		}
		st.draft.DiscountPercent = int(discount)
		st.step = StepUses

	case StepUses:
		uses, err := parseNonNegative(text)
		if err != nil {
			return Result{Prompt: m.prompt(st)}, err
		}
		st.draft.MaxUses = int(uses)
		st.step = StepExpiry

	case StepExpiry:
		days, err := parseNonNegative(text)
		if err != nil {
			return Result{Prompt: m.prompt(st)}, err
		}
		st.draft.ExpiresDays = int(days)
		draft := st.draft
		delete(m.sessions, userID)
		return Result{Done: true, Draft: draft}, nil
	}

	return Result{Prompt: m.prompt(st)}, nil
}

func (m *Manager) prompt(st *state) string {
	switch st.kind {
	case FlowRedeemCode:
		return "🎫 Введите промокод:"
	case FlowDepositAmount:
		return fmt.Sprintf("💰 Введите сумму пополнения (от %d до %d):", st.minDeposit, st.maxDeposit)
	}
	switch st.step {
	case StepCode:
		return "🎫 Введите название промокода (4-20 букв и цифр):"
	case StepAmount:
		return "💰 Введите сумму промокода:"
	case StepDiscount:
		return "📉 Введите процент скидки (0-100):"
	case StepUses:
		return "📊 Введите лимит использований (0 — без лимита):"
	case StepExpiry:
		return "📅 Введите срок действия в днях (0 — бессрочно):"
	}
	return ""
}

func codeFormatOK(code string) bool {
	if len(code) < 4 || len(code) > 20 {
		return false
	}
	for _, r := range code {
		if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

func parseNonNegative(text string) (int64, error) {
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil || v < 0 {
		return 0, invalid("Введите целое неотрицательное число.")
	}
	return v, nil
}
