package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hostwatch/hostwatch/internal/logger"
	"github.com/hostwatch/hostwatch/pkg/models"
)

const (
	rulesFile     = "rules.json"
	incidentsFile = "incidents.json"
	baselinesFile = "baselines.json"
)

// Snapshot persists rules, incidents, and baselines as JSON files in a data
// directory. Writes go through a temp file and rename, so a crash mid-write
// never leaves a truncated snapshot behind.
type Snapshot struct {
	dir string
}

func NewSnapshot(dir string) (*Snapshot, error) {
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Snapshot{dir: dir}, nil
}

// SaveRules writes the rule set keyed by rule ID.
func (s *Snapshot) SaveRules(rules []models.AlertRule) error {
	byID := make(map[string]models.AlertRule, len(rules))
	for _, r := range rules {
		byID[r.ID] = r
	}
	return s.writeFile(rulesFile, byID)
}

// LoadRules reads the rule set. A missing file yields an empty slice.
func (s *Snapshot) LoadRules() ([]models.AlertRule, error) {
	var byID map[string]models.AlertRule
	if err := s.readFile(rulesFile, &byID); err != nil {
		return nil, err
	}
	rules := make([]models.AlertRule, 0, len(byID))
	for id, r := range byID {
		if r.ID == "" {
			r.ID = id
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func (s *Snapshot) SaveIncidents(incidents []models.Incident) error {
	return s.writeFile(incidentsFile, incidents)
}

func (s *Snapshot) LoadIncidents() ([]models.Incident, error) {
	var incidents []models.Incident
	if err := s.readFile(incidentsFile, &incidents); err != nil {
		return nil, err
	}
	return incidents, nil
}

func (s *Snapshot) SaveBaselines(baselines map[string]models.Baseline) error {
	return s.writeFile(baselinesFile, baselines)
}

func (s *Snapshot) LoadBaselines() (map[string]models.Baseline, error) {
	var baselines map[string]models.Baseline
	if err := s.readFile(baselinesFile, &baselines); err != nil {
		return nil, err
	}
	if baselines == nil {
		baselines = make(map[string]models.Baseline)
	}
	return baselines, nil
}

func (s *Snapshot) writeFile(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	target := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("rename %s into place: %w", name, err)
	}

	logger.Debugf("snapshot written: %s", target)
	return nil
}

func (s *Snapshot) readFile(name string, v interface{}) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
