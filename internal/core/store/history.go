package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// HistoryLog keeps one append-only text file per patient: a timestamped block
// of feedback and oracle change summary per run. It is replayed verbatim as
// oracle context and never parsed structurally.
type HistoryLog struct {
	dir string
	now func() time.Time
}

func NewHistoryLog(dir string) *HistoryLog {
	return &HistoryLog{dir: dir, now: time.Now}
}

func (h *HistoryLog) path(patientID string) string {
	return filepath.Join(h.dir, patientID+".txt")
}

// Read returns the full history text, or "" when the patient has no log.
func (h *HistoryLog) Read(patientID string) (string, error) {
	data, err := os.ReadFile(h.path(patientID))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read history for %s: %w", patientID, err)
	}
	return string(data), nil
}

// Append records one run. The block format is load-bearing only for humans.
func (h *HistoryLog) Append(patientID, feedback, changesSummary string) error {
	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	if strings.TrimSpace(feedback) == "" {
		feedback = "None"
	}

	var b strings.Builder
	b.WriteString("\n--------------------------------------------------\n")
	fmt.Fprintf(&b, "RUN TIMESTAMP: %s\n", h.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "USER FEEDBACK: %s\n", feedback)
	fmt.Fprintf(&b, "AI CHANGES: %s\n", changesSummary)

	f, err := os.OpenFile(h.path(patientID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open history for %s: %w", patientID, err)
	}
	defer f.Close()

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to append history for %s: %w", patientID, err)
	}
	return nil
}

// Delete removes a patient's log file. Used by the purge path.
func (h *HistoryLog) Delete(patientID string) error {
	err := os.Remove(h.path(patientID))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
