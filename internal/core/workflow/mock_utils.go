package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lucenz/chartgen/internal/core/caseplan"
	"github.com/lucenz/chartgen/internal/core/model"
	"github.com/lucenz/chartgen/internal/render"
)

// MockSource is an in-memory case plan.
type MockSource struct {
	Cases map[string]model.CaseContext
	IDs   []string
}

func (m *MockSource) Case(patientID string) (*model.CaseContext, error) {
	c, ok := m.Cases[patientID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", caseplan.ErrCaseNotFound, patientID)
	}
	return &c, nil
}

func (m *MockSource) AllIDs() ([]string, error) {
	return m.IDs, nil
}

// MockRenderer records jobs and writes an empty file at each job path so
// filesystem scans behave as they would after a real render.
type MockRenderer struct {
	Jobs []render.Job
	Err  error
}

func (m *MockRenderer) Render(ctx context.Context, job render.Job) error {
	m.Jobs = append(m.Jobs, job)
	if m.Err != nil {
		return m.Err
	}
	if err := os.MkdirAll(filepath.Dir(job.Path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(job.Path, []byte("artifact"), 0o644)
}
