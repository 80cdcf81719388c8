package incident

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hostwatch/hostwatch/internal/logger"
	"github.com/hostwatch/hostwatch/pkg/models"
)

var ErrIncidentNotFound = errors.New("incident not found")

// ListFilter narrows List results. Zero values match everything.
type ListFilter struct {
	Status   models.IncidentStatus
	Level    models.AlertLevel
	Category models.AlertCategory
	Since    time.Time
	Limit    int
}

// Manager owns the incident ledger. At most one open incident exists per
// rule; resolving closes it and frees the slot.
type Manager struct {
	mu         sync.RWMutex
	incidents  map[string]*models.Incident
	openByRule map[string]string
}

func NewManager() *Manager {
	return &Manager{
		incidents:  make(map[string]*models.Incident),
		openByRule: make(map[string]string),
	}
}

// Create opens an incident for a fired rule. When the rule already has an
// open incident, that incident is returned unchanged with created false,
// which is how repeat notifications for a still-firing rule reuse the open
// incident instead of stacking duplicates.
func (m *Manager) Create(rule models.AlertRule, value float64, now time.Time) (models.Incident, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.openByRule[rule.ID]; ok {
		return *m.incidents[id], false
	}

	inc := &models.Incident{
		ID:          models.NewUUID(),
		RuleID:      rule.ID,
		RuleName:    rule.Name,
		Level:       rule.Level,
		Category:    rule.Category,
		Status:      models.IncidentActive,
		Title:       rule.Name,
		Message: fmt.Sprintf("%s: %s %s %.2f (current value %.2f)",
			rule.Name, rule.Metric, rule.Condition, rule.Threshold, value),
		MetricValue: value,
		Threshold:   rule.Threshold,
		StartedAt:   now,
		Tags:        rule.Tags,
	}
	m.incidents[inc.ID] = inc
	m.openByRule[rule.ID] = inc.ID

	logger.WithIncident(inc.ID).WithField("rule_id", rule.ID).
		Warnf("incident opened: %s", inc.Title)
	return *inc, true
}

// Acknowledge marks an active incident as acknowledged. The incident stays
// open, so the rule cannot fire a duplicate.
func (m *Manager) Acknowledge(id, by string, now time.Time) (models.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inc, ok := m.incidents[id]
	if !ok {
		return models.Incident{}, ErrIncidentNotFound
	}
	if inc.Status == models.IncidentResolved {
		return *inc, nil
	}
	inc.Status = models.IncidentAcknowledged
	inc.AcknowledgedAt = &now
	inc.AcknowledgedBy = by

	logger.WithIncident(id).Infof("incident acknowledged by %s", by)
	return *inc, nil
}

// Resolve closes an incident. Resolving an already resolved incident is a
// no-op returning the incident as is.
func (m *Manager) Resolve(id string, now time.Time) (models.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveLocked(id, now)
}

func (m *Manager) resolveLocked(id string, now time.Time) (models.Incident, error) {
	inc, ok := m.incidents[id]
	if !ok {
		return models.Incident{}, ErrIncidentNotFound
	}
	if inc.Status == models.IncidentResolved {
		return *inc, nil
	}
	inc.Status = models.IncidentResolved
	inc.ResolvedAt = &now
	delete(m.openByRule, inc.RuleID)

	logger.WithIncident(id).Info("incident resolved")
	return *inc, nil
}

// AutoResolve closes the open incident of a rule whose condition cleared.
// Only incidents still in the active state auto-resolve; acknowledged and
// suppressed ones are in an operator's hands and stay open until resolved
// explicitly. Returns false when nothing was resolved.
func (m *Manager) AutoResolve(ruleID string, now time.Time) (models.Incident, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.openByRule[ruleID]
	if !ok {
		return models.Incident{}, false
	}
	if m.incidents[id].Status != models.IncidentActive {
		return models.Incident{}, false
	}
	inc, err := m.resolveLocked(id, now)
	if err != nil {
		return models.Incident{}, false
	}
	return inc, true
}

// Suppress mutes an incident until the given time. Alerting for its rule is
// skipped while the suppression holds.
func (m *Manager) Suppress(id string, until time.Time) (models.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inc, ok := m.incidents[id]
	if !ok {
		return models.Incident{}, ErrIncidentNotFound
	}
	if inc.Status == models.IncidentResolved {
		return *inc, nil
	}
	inc.Status = models.IncidentSuppressed
	inc.SuppressedUntil = &until

	logger.WithIncident(id).Infof("incident suppressed until %s", until.Format(time.RFC3339))
	return *inc, nil
}

// RuleSuppressed reports whether the rule's open incident is suppressed at
// the given time. Expired suppressions simply stop matching.
func (m *Manager) RuleSuppressed(ruleID string, now time.Time) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.openByRule[ruleID]
	if !ok {
		return false
	}
	return m.incidents[id].SuppressedAt(now)
}

// IncrementNotification bumps the incident's delivery counter.
func (m *Manager) IncrementNotification(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if inc, ok := m.incidents[id]; ok {
		inc.NotificationCount++
	}
}

func (m *Manager) Get(id string) (models.Incident, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inc, ok := m.incidents[id]
	if !ok {
		return models.Incident{}, ErrIncidentNotFound
	}
	return *inc, nil
}

// List returns incidents matching the filter, newest first.
func (m *Manager) List(filter ListFilter) []models.Incident {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Incident, 0, len(m.incidents))
	for _, inc := range m.incidents {
		if filter.Status != "" && inc.Status != filter.Status {
			continue
		}
		if filter.Level != "" && inc.Level != filter.Level {
			continue
		}
		if filter.Category != "" && inc.Category != filter.Category {
			continue
		}
		if !filter.Since.IsZero() && inc.StartedAt.Before(filter.Since) {
			continue
		}
		out = append(out, *inc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out
}

// Active returns all open incidents (active, acknowledged, or suppressed),
// newest first.
func (m *Manager) Active() []models.Incident {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Incident, 0, len(m.openByRule))
	for _, id := range m.openByRule {
		out = append(out, *m.incidents[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out
}

// All returns every incident, used for snapshots.
func (m *Manager) All() []models.Incident {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Incident, 0, len(m.incidents))
	for _, inc := range m.incidents {
		out = append(out, *inc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}

// Replace swaps in a full incident set, used when loading a snapshot.
func (m *Manager) Replace(incidents []models.Incident) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.incidents = make(map[string]*models.Incident, len(incidents))
	m.openByRule = make(map[string]string)
	for i := range incidents {
		inc := incidents[i]
		m.incidents[inc.ID] = &inc
		if inc.Status != models.IncidentResolved {
			m.openByRule[inc.RuleID] = inc.ID
		}
	}
}

// Summary aggregates incident counts for the dashboard.
func (m *Manager) Summary(now time.Time) models.IncidentSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := models.IncidentSummary{}
	categories := make(map[string]int)
	var resolutionTotal time.Duration
	var resolvedCount int
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, inc := range m.incidents {
		summary.TotalAlerts++

		switch inc.Status {
		case models.IncidentActive, models.IncidentSuppressed:
			summary.ActiveAlerts++
		case models.IncidentAcknowledged:
			summary.ActiveAlerts++
			summary.AcknowledgedAlerts++
		case models.IncidentResolved:
			resolvedCount++
			resolutionTotal += inc.ResolutionTime()
			if inc.ResolvedAt != nil && !inc.ResolvedAt.Before(today) {
				summary.ResolvedToday++
			}
		}
		if inc.Status != models.IncidentResolved {
			categories[string(inc.Category)]++
			switch inc.Level {
			case models.LevelCritical, models.LevelEmergency:
				summary.CriticalAlerts++
			case models.LevelWarning:
				summary.WarningAlerts++
			}
		}
	}

	if resolvedCount > 0 {
		summary.AvgResolutionMinutes = resolutionTotal.Minutes() / float64(resolvedCount)
	}

	summary.TopCategories = make([]models.CategoryCount, 0, len(categories))
	for name, count := range categories {
		summary.TopCategories = append(summary.TopCategories, models.CategoryCount{Name: name, Count: count})
	}
	sort.Slice(summary.TopCategories, func(i, j int) bool {
		a, b := summary.TopCategories[i], summary.TopCategories[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})
	if len(summary.TopCategories) > 5 {
		summary.TopCategories = summary.TopCategories[:5]
	}
	return summary
}
