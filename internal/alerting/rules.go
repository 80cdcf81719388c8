package alerting

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hostwatch/hostwatch/internal/logger"
	"github.com/hostwatch/hostwatch/pkg/models"
	"github.com/hostwatch/hostwatch/pkg/validation"
)

var (
	ErrRuleNotFound = errors.New("alert rule not found")
	ErrInvalidRule  = errors.New("invalid alert rule")
)

// RuleStore holds the alert rule set. All accessors return copies.
type RuleStore struct {
	mu    sync.RWMutex
	rules map[string]models.AlertRule
}

func NewRuleStore() *RuleStore {
	return &RuleStore{
		rules: make(map[string]models.AlertRule),
	}
}

// SeedDefaults installs the built-in rule set when the store is empty.
// The load average threshold scales with the host's CPU count.
func (s *RuleStore) SeedDefaults(numCPU int, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.rules) > 0 {
		return
	}
	if numCPU < 1 {
		numCPU = 1
	}

	defaults := []models.AlertRule{
		{
			ID:          "default-cpu-high",
			Name:        "High CPU usage",
			Description: "CPU usage sustained above 80%",
			Category:    models.CategoryPerformance,
			Metric:      models.MetricCPUPercent,
			Condition:   models.CondGreater,
			Threshold:   80,
			Level:       models.LevelWarning,
			DurationSec: 120,
			CooldownSec: 300,
		},
		{
			ID:          "default-memory-high",
			Name:        "High memory usage",
			Description: "Memory usage sustained above 90%",
			Category:    models.CategorySystem,
			Metric:      models.MetricMemoryPercent,
			Condition:   models.CondGreater,
			Threshold:   90,
			Level:       models.LevelCritical,
			DurationSec: 60,
			CooldownSec: 600,
		},
		{
			ID:          "default-disk-high",
			Name:        "High disk usage",
			Description: "Disk usage above 85%",
			Category:    models.CategoryStorage,
			Metric:      models.MetricDiskPercent,
			Condition:   models.CondGreater,
			Threshold:   85,
			Level:       models.LevelWarning,
			DurationSec: 300,
			CooldownSec: 1800,
		},
		{
			ID:          "default-load-high",
			Name:        "High load average",
			Description: "1-minute load average above CPU count",
			Category:    models.CategoryPerformance,
			Metric:      models.MetricLoadAvg1Min,
			Condition:   models.CondGreater,
			Threshold:   float64(numCPU),
			Level:       models.LevelWarning,
			DurationSec: 180,
			CooldownSec: 300,
		},
	}

	for _, r := range defaults {
		r.Enabled = true
		r.AutoResolve = true
		r.CreatedAt = now
		r.UpdatedAt = now
		s.rules[r.ID] = r
	}
	logger.Infof("seeded %d default alert rules", len(defaults))
}

// List returns every rule sorted by name.
func (s *RuleStore) List() []models.AlertRule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AlertRule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *RuleStore) Get(id string) (models.AlertRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rules[id]
	if !ok {
		return models.AlertRule{}, ErrRuleNotFound
	}
	return r, nil
}

// Create validates and stores a new rule, assigning an ID when absent.
func (s *RuleStore) Create(rule models.AlertRule, now time.Time) (models.AlertRule, error) {
	if err := validateRule(rule); err != nil {
		return models.AlertRule{}, err
	}
	if rule.ID == "" {
		rule.ID = models.NewUUID()
	}
	rule.CreatedAt = now
	rule.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rules[rule.ID]; exists {
		return models.AlertRule{}, fmt.Errorf("%w: duplicate id %s", ErrInvalidRule, rule.ID)
	}
	s.rules[rule.ID] = rule
	logger.WithRule(rule.ID).Infof("alert rule created: %s", rule.Name)
	return rule, nil
}

// Update applies the non-nil fields of patch to an existing rule.
func (s *RuleStore) Update(id string, patch models.RulePatch, now time.Time) (models.AlertRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rule, ok := s.rules[id]
	if !ok {
		return models.AlertRule{}, ErrRuleNotFound
	}

	if patch.Name != nil {
		rule.Name = *patch.Name
	}
	if patch.Description != nil {
		rule.Description = *patch.Description
	}
	if patch.Category != nil {
		rule.Category = *patch.Category
	}
	if patch.Metric != nil {
		rule.Metric = *patch.Metric
	}
	if patch.Condition != nil {
		rule.Condition = *patch.Condition
	}
	if patch.Threshold != nil {
		rule.Threshold = *patch.Threshold
	}
	if patch.Level != nil {
		rule.Level = *patch.Level
	}
	if patch.Enabled != nil {
		rule.Enabled = *patch.Enabled
	}
	if patch.DurationSec != nil {
		rule.DurationSec = *patch.DurationSec
	}
	if patch.CooldownSec != nil {
		rule.CooldownSec = *patch.CooldownSec
	}
	if patch.AutoResolve != nil {
		rule.AutoResolve = *patch.AutoResolve
	}
	if patch.NotificationChannels != nil {
		rule.NotificationChannels = *patch.NotificationChannels
	}
	if patch.Tags != nil {
		rule.Tags = *patch.Tags
	}

	if err := validateRule(rule); err != nil {
		return models.AlertRule{}, err
	}
	rule.UpdatedAt = now
	s.rules[id] = rule
	logger.WithRule(id).Info("alert rule updated")
	return rule, nil
}

func (s *RuleStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rules[id]; !ok {
		return ErrRuleNotFound
	}
	delete(s.rules, id)
	logger.WithRule(id).Info("alert rule deleted")
	return nil
}

// Toggle flips a rule's enabled flag and returns the new state.
func (s *RuleStore) Toggle(id string, now time.Time) (models.AlertRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rule, ok := s.rules[id]
	if !ok {
		return models.AlertRule{}, ErrRuleNotFound
	}
	rule.Enabled = !rule.Enabled
	rule.UpdatedAt = now
	s.rules[id] = rule
	return rule, nil
}

// Replace swaps in a full rule set, used when loading a snapshot.
func (s *RuleStore) Replace(rules []models.AlertRule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rules = make(map[string]models.AlertRule, len(rules))
	for _, r := range rules {
		s.rules[r.ID] = r
	}
}

func (s *RuleStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

func validateRule(rule models.AlertRule) error {
	if err := validation.ValidateRuleName(rule.Name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	if err := validation.ValidateMetricName(rule.Metric); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	if !rule.Condition.Valid() {
		return fmt.Errorf("%w: unknown condition %q", ErrInvalidRule, rule.Condition)
	}
	if !rule.Level.Valid() {
		return fmt.Errorf("%w: unknown level %q", ErrInvalidRule, rule.Level)
	}
	if !rule.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidRule, rule.Category)
	}
	if rule.DurationSec < 0 {
		return fmt.Errorf("%w: duration must not be negative", ErrInvalidRule)
	}
	if rule.CooldownSec < 0 {
		return fmt.Errorf("%w: cooldown must not be negative", ErrInvalidRule)
	}
	return nil
}
