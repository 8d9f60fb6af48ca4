package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lucenz/chartgen/internal/core/identity"
	"github.com/lucenz/chartgen/internal/core/purge"
	"github.com/lucenz/chartgen/internal/core/store"
	"github.com/lucenz/chartgen/internal/core/workflow"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Shell is the interactive entrypoint: single-id runs with optional feedback,
// '*' for a batch pass, '--' prefixed purge commands, 'q' to quit.
type Shell struct {
	orch     *workflow.Orchestrator
	sched    *workflow.Scheduler
	purger   *purge.Purger
	patients *store.PatientDB

	in  *bufio.Scanner
	out io.Writer
}

func New(orch *workflow.Orchestrator, sched *workflow.Scheduler, purger *purge.Purger, patients *store.PatientDB, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		orch:     orch,
		sched:    sched,
		purger:   purger,
		patients: patients,
		in:       bufio.NewScanner(in),
		out:      out,
	}
}

func (s *Shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) readLine(prompt string) (string, bool) {
	s.printf("%s", promptStyle.Render(prompt))
	if !s.in.Scan() {
		return "", false
	}
	return strings.Trim(strings.TrimSpace(s.in.Text()), `'"`), true
}

// SetPurger breaks the construction cycle: the purger needs the shell's
// Confirm prompt, the shell needs the purger.
func (s *Shell) SetPurger(p *purge.Purger) {
	s.purger = p
}

// Confirm satisfies purge.Confirm.
func (s *Shell) Confirm(message string) bool {
	s.printf("%s\n", warnStyle.Render("WARNING: "+message))
	answer, ok := s.readLine("Are you sure? This cannot be undone. (y/n): ")
	return ok && strings.EqualFold(answer, "y")
}

func (s *Shell) Run(ctx context.Context) error {
	s.printf("%s\n", titleStyle.Render("Clinical Chart Generator"))

	for {
		input, ok := s.readLine("\nEnter patient id ('*' for batch, '--' to purge, 'q' to quit): ")
		if !ok {
			return nil
		}
		if input == "" {
			s.printf("%s\n", errStyle.Render("input required"))
			continue
		}

		switch {
		case strings.EqualFold(input, "q"), strings.EqualFold(input, "quit"), strings.EqualFold(input, "exit"):
			s.printf("bye\n")
			return nil

		case strings.HasPrefix(input, "--"):
			s.runPurge(input)

		case input == "*":
			s.runBatch(ctx)

		default:
			s.runSingle(ctx, input)
		}
	}
}

func (s *Shell) runPurge(command string) {
	var err error
	switch command {
	case "--":
		err = s.purger.All()
	case "--personas":
		err = s.purger.Personas()
	case "--documents":
		err = s.purger.Documents()
	default:
		err = s.purger.Patient(strings.TrimPrefix(command, "--"))
	}
	if err != nil {
		s.printf("%s\n", errStyle.Render("purge failed: "+err.Error()))
		return
	}
	s.printf("%s\n", okStyle.Render("purge complete"))
}

func (s *Shell) runBatch(ctx context.Context) {
	s.printf("starting batch run for missing/incomplete patients...\n")
	report, err := s.sched.RunBatch(ctx)
	if err != nil {
		s.printf("%s\n", errStyle.Render("batch failed: "+err.Error()))
		return
	}
	s.printf("%s\n", okStyle.Render(fmt.Sprintf(
		"batch complete: %d processed, %d skipped, %d failed",
		len(report.Processed), len(report.Skipped), len(report.Failed))))
	for id, msg := range report.Failed {
		s.printf("  %s\n", errStyle.Render(fmt.Sprintf("%s: %s", id, msg)))
	}
}

func (s *Shell) runSingle(ctx context.Context, patientID string) {
	feedback, ok := s.readLine("Feedback for the generator [enter to skip]: ")
	if !ok {
		return
	}

	names, err := s.patients.AllDisplayNames()
	if err != nil {
		s.printf("%s\n", errStyle.Render("failed to read patient store: "+err.Error()))
		return
	}

	run, err := s.orch.ProcessPatient(ctx, patientID, feedback, identity.NewExclusionSet(names))
	if err != nil {
		s.printf("%s\n", errStyle.Render("run aborted: "+err.Error()))
		return
	}

	if run.NoOp {
		s.printf("%s\n", okStyle.Render("existing evidence sufficient, no new documents"))
		return
	}

	s.printf("%s\n", okStyle.Render(fmt.Sprintf("run complete for %s (%s)", patientID, run.PersonaName)))
	for _, d := range run.Documents {
		line := fmt.Sprintf("  [%03d] %s %s (%s)", d.Sequence, d.Action, d.Title, d.Outcome)
		if d.RenderErr != "" {
			s.printf("%s\n", errStyle.Render(line+" render failed: "+d.RenderErr))
			continue
		}
		s.printf("%s\n", line)
	}
}
