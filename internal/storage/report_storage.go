// Package storage persists completed one-shot analysis reports as JSON
// files. Live session state is deliberately not persisted.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/avelling/codescope/internal/engine"
)

var (
	ErrReportNotFound     = errors.New("report not found")
	ErrInvalidReportID    = errors.New("invalid report id")
	ErrReportFileTooLarge = errors.New("report file too large")
)

const maxReportFileSize = 10 * 1024 * 1024

var reportIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Report is one persisted one-shot analysis outcome.
type Report struct {
	ID             string               `json:"id"`
	Target         string               `json:"target"`
	Success        bool                 `json:"success"`
	Summary        engine.Summary       `json:"summary"`
	Phases         []engine.PhaseResult `json:"phases,omitempty"`
	Error          string               `json:"error,omitempty"`
	ProcessingTime float64              `json:"processing_time"`
	CreatedAt      time.Time            `json:"created_at"`
}

type ReportStorage struct {
	baseDir string
	mu      sync.RWMutex
}

func validateReportID(id string) error {
	if !reportIDRegex.MatchString(id) {
		return fmt.Errorf("%w: %s", ErrInvalidReportID, id)
	}
	return nil
}

func NewReportStorage(baseDir string) (*ReportStorage, error) {
	reportsDir := filepath.Join(baseDir, "reports")
	if err := os.MkdirAll(reportsDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}
	return &ReportStorage{baseDir: baseDir}, nil
}

func (s *ReportStorage) path(id string) string {
	return filepath.Join(s.baseDir, "reports", id+".json")
}

func (s *ReportStorage) Save(report *Report) error {
	if err := validateReportID(report.ID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report %s: %w", report.ID, err)
	}

	// Write to a temp file first so a crash never leaves a half-written
	// report behind.
	tmp := s.path(report.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write report %s: %w", report.ID, err)
	}
	if err := os.Rename(tmp, s.path(report.ID)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit report %s: %w", report.ID, err)
	}
	return nil
}

func (s *ReportStorage) Load(id string) (*Report, error) {
	if err := validateReportID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := os.Stat(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrReportNotFound, id)
		}
		return nil, err
	}
	if info.Size() > maxReportFileSize {
		return nil, fmt.Errorf("%w: %s", ErrReportFileTooLarge, id)
	}

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", id, err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return &report, nil
}

func (s *ReportStorage) Delete(id string) error {
	if err := validateReportID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrReportNotFound, id)
		}
		return err
	}
	return nil
}

// List returns every stored report, newest first. Unreadable files are
// skipped rather than failing the whole listing.
func (s *ReportStorage) List() ([]*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(s.baseDir, "reports"))
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	reports := make([]*Report, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, "reports", entry.Name()))
		if err != nil {
			continue
		}
		var report Report
		if err := json.Unmarshal(data, &report); err != nil {
			continue
		}
		reports = append(reports, &report)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}
