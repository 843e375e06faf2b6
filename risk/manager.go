package risk

import (
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/propsim/sim"
)

// Account is the mutable per-run account state. It is owned by a single
// Manager; each simulation run constructs its own.
type Account struct {
	Equity            float64
	PeakEquity        float64
	TradesToday       int
	Day               time.Time // date of the last daily reset (UTC midnight)
	DayStartEquity    float64
	ConsecutiveLosses int
}

// Manager is the stateful gatekeeper for one simulation run. It approves or
// rejects candidate entries and enforces the circuit breakers. It is not safe
// for concurrent use; parallel runs each get their own Manager.
type Manager struct {
	policy Policy
	log    *zap.Logger

	acct    Account
	open    *sim.Position
	breaker bool
}

// NewManager builds a manager with the given policy and starting equity.
func NewManager(policy Policy, initialEquity float64) *Manager {
	return &Manager{
		policy: policy,
		log:    zap.NewNop(),
		acct: Account{
			Equity:         initialEquity,
			PeakEquity:     initialEquity,
			DayStartEquity: initialEquity,
		},
	}
}

// SetLogger installs a structured logger; by default the manager is silent.
func (m *Manager) SetLogger(log *zap.Logger) {
	if log != nil {
		m.log = log
	}
}

// Account returns a copy of the current account state.
func (m *Manager) Account() Account { return m.acct }

// OpenPosition returns the registered open position, or nil.
func (m *Manager) OpenPosition() *sim.Position { return m.open }

// CanOpen decides whether a new position may be opened at the given time.
// The daily counters roll over first if the date changed.
func (m *Manager) CanOpen(at time.Time) Decision {
	m.rollover(at)

	var d Decision
	switch {
	case m.open != nil:
		d = deny(DenyPositionOpen)
	case m.breaker || m.checkDailyBreaker(at):
		d = deny(DenyDailyBreaker)
	case m.acct.TradesToday >= m.policy.MaxDailyTrades:
		d = deny(DenyDailyTradeLimit)
	case m.acct.ConsecutiveLosses >= m.policy.MaxConsecutiveLosses:
		d = deny(DenyLossStreak)
	case m.Drawdown() >= m.policy.MaxDrawdown:
		d = deny(DenyMaxDrawdown)
	default:
		d = allow()
	}

	if !d.Allowed {
		m.log.Debug("entry denied",
			zap.Time("at", at),
			zap.String("reason", d.Reason),
			zap.Float64("equity", m.acct.Equity),
			zap.Int("trades_today", m.acct.TradesToday),
		)
	}
	return d
}

// RegisterOpen records an approved, opened position and counts the trade
// against the daily limit.
func (m *Manager) RegisterOpen(p *sim.Position) {
	m.rollover(p.EntryTime)
	m.open = p
	m.acct.TradesToday++
}

// RegisterClose applies a closed trade to the account: realized P&L, peak
// equity, and the loss streak (reset on a win, extended on a loss, untouched
// by a flat breakeven exit).
func (m *Manager) RegisterClose(ct sim.ClosedTrade) {
	if m.open != nil && m.open.ID == ct.ID {
		m.open = nil
	}

	m.acct.Equity += ct.PnL
	if m.acct.Equity > m.acct.PeakEquity {
		m.acct.PeakEquity = m.acct.Equity
	}

	switch {
	case ct.PnL > 0:
		m.acct.ConsecutiveLosses = 0
	case ct.PnL < 0:
		m.acct.ConsecutiveLosses++
	}

	m.log.Debug("trade closed",
		zap.String("id", ct.ID),
		zap.String("reason", string(ct.Reason)),
		zap.Float64("pnl", ct.PnL),
		zap.Float64("equity", m.acct.Equity),
		zap.Int("loss_streak", m.acct.ConsecutiveLosses),
	)
}

// CheckDailyBreaker evaluates the daily-loss circuit breaker at the given
// time and reports whether it is tripped. Once tripped it stays tripped for
// the remainder of that date, even if equity recovers; an open position is
// still managed to closure.
func (m *Manager) CheckDailyBreaker(at time.Time) bool {
	m.rollover(at)
	return m.breaker || m.checkDailyBreaker(at)
}

// BreakerTripped reports whether the daily breaker is currently tripped,
// without re-evaluating it.
func (m *Manager) BreakerTripped() bool { return m.breaker }

// Drawdown is the fractional decline from peak equity, marking any open
// position at its worst case (current stop). Never negative.
func (m *Manager) Drawdown() float64 {
	if m.acct.PeakEquity <= 0 {
		return 0
	}
	dd := (m.acct.PeakEquity - m.worstCaseEquity()) / m.acct.PeakEquity
	if dd < 0 {
		return 0
	}
	return dd
}

// worstCaseEquity is realized equity plus the open position's P&L if its
// current stop were hit.
func (m *Manager) worstCaseEquity() float64 {
	eq := m.acct.Equity
	if m.open != nil {
		eq += m.open.WorstCasePnL()
	}
	return eq
}

func (m *Manager) checkDailyBreaker(at time.Time) bool {
	if m.acct.DayStartEquity <= 0 {
		return m.breaker
	}
	loss := m.acct.DayStartEquity - m.worstCaseEquity()
	if loss >= m.policy.MaxDailyLoss*m.acct.DayStartEquity {
		if !m.breaker {
			m.log.Warn("daily loss breaker tripped",
				zap.Time("at", at),
				zap.Float64("day_start_equity", m.acct.DayStartEquity),
				zap.Float64("intraday_loss", loss),
			)
		}
		m.breaker = true
	}
	return m.breaker
}

// rollover resets the daily counters when the calendar date (UTC) changes.
// The consecutive-loss streak persists across days unless the policy says
// otherwise.
func (m *Manager) rollover(at time.Time) {
	day := date(at)
	if m.acct.Day.Equal(day) {
		return
	}
	m.acct.Day = day
	m.acct.TradesToday = 0
	m.acct.DayStartEquity = m.acct.Equity
	m.breaker = false
	if m.policy.ResetLossStreakDaily {
		m.acct.ConsecutiveLosses = 0
	}
}

func date(t time.Time) time.Time {
	y, mo, d := t.UTC().Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
