package alerting

import (
	"math"
	"sync"
	"time"

	"github.com/hostwatch/hostwatch/internal/logger"
	"github.com/hostwatch/hostwatch/pkg/models"
)

// Action is the outcome of evaluating one rule against one sample.
type Action int

const (
	ActionNone Action = iota
	ActionFire
	ActionResolve
)

// SuppressionChecker reports whether alerting for a rule is currently
// suppressed. Checked only at the moment a rule would fire.
type SuppressionChecker interface {
	RuleSuppressed(ruleID string, now time.Time) bool
}

type ruleState struct {
	conditionSince   time.Time
	conditionMet     bool
	firing           bool
	lastNotification time.Time
}

// Config holds evaluator tuning knobs.
type Config struct {
	Epsilon float64
}

// Evaluator tracks per-rule transient state (condition onset, firing flag,
// last notification time) and decides when rules fire and resolve. State is
// in-memory only and starts clean on every process start.
type Evaluator struct {
	epsilon float64

	mu     sync.Mutex
	states map[string]*ruleState
}

func NewEvaluator(cfg Config) *Evaluator {
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = 0.01
	}
	return &Evaluator{
		epsilon: cfg.Epsilon,
		states:  make(map[string]*ruleState),
	}
}

// Evaluate runs one rule against the current value of its metric. It returns
// ActionFire when an incident should open or an already firing rule is due
// for re-notification, ActionResolve when the rule's open incident should
// auto-resolve, and ActionNone otherwise. A missing sample (ok false) leaves
// the rule's state untouched.
func (e *Evaluator) Evaluate(rule models.AlertRule, value float64, ok bool, now time.Time, sup SuppressionChecker) Action {
	if !rule.Enabled || !ok {
		return ActionNone
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	state := e.states[rule.ID]
	if state == nil {
		state = &ruleState{}
		e.states[rule.ID] = state
	}

	if !e.conditionMet(rule, value) {
		state.conditionMet = false
		if state.firing && rule.AutoResolve {
			state.firing = false
			logger.WithRule(rule.ID).Info("alert condition cleared, auto-resolving")
			return ActionResolve
		}
		return ActionNone
	}

	if !state.conditionMet {
		state.conditionMet = true
		state.conditionSince = now
	}

	if now.Sub(state.conditionSince) < rule.Duration() {
		return ActionNone
	}
	if !state.lastNotification.IsZero() && now.Sub(state.lastNotification) < rule.Cooldown() {
		return ActionNone
	}
	if sup != nil && sup.RuleSuppressed(rule.ID, now) {
		return ActionNone
	}

	// While the condition keeps holding, the rule re-fires once per cooldown
	// window so the open incident is re-dispatched rather than going silent.
	if state.firing {
		state.lastNotification = now
		logger.WithRule(rule.ID).Warnf("alert rule still firing: %s %s %.2f (value %.2f)",
			rule.Metric, rule.Condition, rule.Threshold, value)
		return ActionFire
	}

	state.firing = true
	state.lastNotification = now
	logger.WithRule(rule.ID).Warnf("alert rule fired: %s %s %.2f (value %.2f)",
		rule.Metric, rule.Condition, rule.Threshold, value)
	return ActionFire
}

// ClearFiring marks a rule's incident as closed without resetting its
// cooldown, used when an incident is resolved outside the evaluate loop.
func (e *Evaluator) ClearFiring(ruleID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if state, ok := e.states[ruleID]; ok {
		state.firing = false
	}
}

// Forget drops all state for a rule, used when the rule is deleted.
func (e *Evaluator) Forget(ruleID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.states, ruleID)
}

func (e *Evaluator) conditionMet(rule models.AlertRule, value float64) bool {
	switch rule.Condition {
	case models.CondGreater:
		return value > rule.Threshold
	case models.CondGreaterEqual:
		return value >= rule.Threshold
	case models.CondLess:
		return value < rule.Threshold
	case models.CondLessEqual:
		return value <= rule.Threshold
	case models.CondEqual:
		return math.Abs(value-rule.Threshold) < e.epsilon
	case models.CondNotEqual:
		return math.Abs(value-rule.Threshold) >= e.epsilon
	default:
		return false
	}
}
