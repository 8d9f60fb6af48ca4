package caseplan

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lucenz/chartgen/internal/core/model"
)

// ErrCaseNotFound is returned when the requested patient id has no row in the
// test plan. The caller aborts that patient without touching any store.
var ErrCaseNotFound = errors.New("patient id not found in case plan")

// Source supplies read-only case requirements.
type Source interface {
	Case(patientID string) (*model.CaseContext, error)
	AllIDs() ([]string, error)
}

type planFile struct {
	Cases []model.CaseContext `yaml:"cases"`
}

// FileSource loads the YAML test plan once and serves lookups from memory.
type FileSource struct {
	cases map[string]model.CaseContext
}

func LoadFile(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case plan '%s': %w", path, err)
	}

	var plan planFile
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse case plan: %w", err)
	}

	cases := make(map[string]model.CaseContext, len(plan.Cases))
	for _, c := range plan.Cases {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			continue
		}
		c.ID = id
		cases[id] = c
	}

	return &FileSource{cases: cases}, nil
}

func (s *FileSource) Case(patientID string) (*model.CaseContext, error) {
	c, ok := s.cases[strings.TrimSpace(patientID)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, patientID)
	}
	return &c, nil
}

func (s *FileSource) AllIDs() ([]string, error) {
	ids := make([]string, 0, len(s.cases))
	for id := range s.cases {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
