package alerting_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostwatch/hostwatch/internal/alerting"
	"github.com/hostwatch/hostwatch/pkg/models"
)

func validRule() models.AlertRule {
	return models.AlertRule{
		Name:      "Memory pressure",
		Category:  models.CategorySystem,
		Metric:    models.MetricMemoryPercent,
		Condition: models.CondGreaterEqual,
		Threshold: 92,
		Level:     models.LevelCritical,
		Enabled:   true,
	}
}

func TestRuleStore_SeedDefaults(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := alerting.NewRuleStore()

	s.SeedDefaults(8, now)
	require.Equal(t, 4, s.Count())

	load, err := s.Get("default-load-high")
	require.NoError(t, err)
	assert.Equal(t, 8.0, load.Threshold)
	assert.True(t, load.Enabled)
	assert.True(t, load.AutoResolve)

	// Seeding is a no-op when rules already exist
	s.SeedDefaults(16, now)
	load, err = s.Get("default-load-high")
	require.NoError(t, err)
	assert.Equal(t, 8.0, load.Threshold)
}

func TestRuleStore_CreateAssignsID(t *testing.T) {
	now := time.Now()
	s := alerting.NewRuleStore()

	created, err := s.Create(validRule(), now)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, now, created.CreatedAt)
}

func TestRuleStore_CreateRejectsInvalid(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name   string
		mutate func(*models.AlertRule)
	}{
		{"empty name", func(r *models.AlertRule) { r.Name = "" }},
		{"bad metric name", func(r *models.AlertRule) { r.Metric = "CPU Percent" }},
		{"unknown condition", func(r *models.AlertRule) { r.Condition = "~=" }},
		{"unknown level", func(r *models.AlertRule) { r.Level = "severe" }},
		{"unknown category", func(r *models.AlertRule) { r.Category = "misc" }},
		{"negative duration", func(r *models.AlertRule) { r.DurationSec = -1 }},
		{"negative cooldown", func(r *models.AlertRule) { r.CooldownSec = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := alerting.NewRuleStore()
			rule := validRule()
			tt.mutate(&rule)
			_, err := s.Create(rule, now)
			assert.ErrorIs(t, err, alerting.ErrInvalidRule)
		})
	}
}

func TestRuleStore_UpdatePatchesFields(t *testing.T) {
	now := time.Now()
	s := alerting.NewRuleStore()
	created, err := s.Create(validRule(), now)
	require.NoError(t, err)

	threshold := 95.0
	enabled := false
	later := now.Add(time.Minute)
	updated, err := s.Update(created.ID, models.RulePatch{
		Threshold: &threshold,
		Enabled:   &enabled,
	}, later)
	require.NoError(t, err)

	assert.Equal(t, 95.0, updated.Threshold)
	assert.False(t, updated.Enabled)
	assert.Equal(t, created.Name, updated.Name)
	assert.Equal(t, later, updated.UpdatedAt)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestRuleStore_UpdateValidatesResult(t *testing.T) {
	now := time.Now()
	s := alerting.NewRuleStore()
	created, err := s.Create(validRule(), now)
	require.NoError(t, err)

	bad := models.Condition("~=")
	_, err = s.Update(created.ID, models.RulePatch{Condition: &bad}, now)
	assert.ErrorIs(t, err, alerting.ErrInvalidRule)

	// Rejected patch leaves the rule unchanged
	got, err := s.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CondGreaterEqual, got.Condition)
}

func TestRuleStore_DeleteAndNotFound(t *testing.T) {
	now := time.Now()
	s := alerting.NewRuleStore()
	created, err := s.Create(validRule(), now)
	require.NoError(t, err)

	require.NoError(t, s.Delete(created.ID))
	assert.ErrorIs(t, s.Delete(created.ID), alerting.ErrRuleNotFound)

	_, err = s.Get(created.ID)
	assert.ErrorIs(t, err, alerting.ErrRuleNotFound)

	_, err = s.Update(created.ID, models.RulePatch{}, now)
	assert.ErrorIs(t, err, alerting.ErrRuleNotFound)

	_, err = s.Toggle(created.ID, now)
	assert.ErrorIs(t, err, alerting.ErrRuleNotFound)
}

func TestRuleStore_Toggle(t *testing.T) {
	now := time.Now()
	s := alerting.NewRuleStore()
	created, err := s.Create(validRule(), now)
	require.NoError(t, err)

	toggled, err := s.Toggle(created.ID, now)
	require.NoError(t, err)
	assert.False(t, toggled.Enabled)

	toggled, err = s.Toggle(created.ID, now)
	require.NoError(t, err)
	assert.True(t, toggled.Enabled)
}

func TestRuleStore_ListSortedByName(t *testing.T) {
	now := time.Now()
	s := alerting.NewRuleStore()

	a := validRule()
	a.Name = "Zed rule"
	b := validRule()
	b.Name = "Alpha rule"
	_, err := s.Create(a, now)
	require.NoError(t, err)
	_, err = s.Create(b, now)
	require.NoError(t, err)

	rules := s.List()
	require.Len(t, rules, 2)
	assert.Equal(t, "Alpha rule", rules[0].Name)
	assert.Equal(t, "Zed rule", rules[1].Name)
}

func TestRuleStore_Replace(t *testing.T) {
	now := time.Now()
	s := alerting.NewRuleStore()
	s.SeedDefaults(4, now)

	s.Replace([]models.AlertRule{{ID: "only", Name: "Only rule"}})
	assert.Equal(t, 1, s.Count())
	_, err := s.Get("only")
	assert.NoError(t, err)
}
