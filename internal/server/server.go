package server

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lucenz/chartgen/internal/config"
	"github.com/lucenz/chartgen/internal/core/caseplan"
	"github.com/lucenz/chartgen/internal/core/identity"
	"github.com/lucenz/chartgen/internal/core/oracle"
	"github.com/lucenz/chartgen/internal/core/purge"
	"github.com/lucenz/chartgen/internal/core/store"
	"github.com/lucenz/chartgen/internal/core/validate"
	"github.com/lucenz/chartgen/internal/core/workflow"
	"github.com/lucenz/chartgen/internal/llm"
	"github.com/lucenz/chartgen/internal/logger"
	"github.com/lucenz/chartgen/internal/render"
)

type Server struct {
	log      *logger.Logger
	orch     *workflow.Orchestrator
	sched    *workflow.Scheduler
	purger   *purge.Purger
	patients *store.PatientDB
}

// New wires the full pipeline from configuration. Every dependency is
// constructed here and passed down; nothing reads the environment after this
// point.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Server, error) {
	cases, err := caseplan.LoadFile(cfg.Paths.CasePlan)
	if err != nil {
		return nil, err
	}

	client, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}

	renderer, err := render.NewChartRenderer(cfg.Render)
	if err != nil {
		return nil, err
	}

	patients := store.NewPatientDB(cfg.StorePath())
	history := store.NewHistoryLog(cfg.LogsDir())

	orch := workflow.NewOrchestrator(
		cfg, log, cases, patients, history,
		oracle.New(client, cfg.Generation.MinDocuments, time.Duration(cfg.LLM.TimeoutSeconds)*time.Second),
		validate.NewValidator(cfg.Validation),
		identity.NewBuilder(cfg.Generation.ExclusionCap, rand.New(rand.NewSource(time.Now().UnixNano()))),
		renderer,
	)

	return &Server{
		log:      log,
		orch:     orch,
		sched:    workflow.NewScheduler(orch),
		purger:   purge.New(cfg, log, patients, history, nil),
		patients: patients,
	}, nil
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/patients/:id/generate", s.GeneratePatient)
	r.POST("/batch", s.RunBatch)
	r.GET("/patients/:id", s.GetPatient)
	r.DELETE("/patients/:id", s.PurgePatient)

	return r
}

type GenerateRequest struct {
	Feedback string `json:"feedback"`
}

func (s *Server) GeneratePatient(c *gin.Context) {
	var req GenerateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
	}

	names, err := s.patients.AllDisplayNames()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	run, err := s.orch.ProcessPatient(c.Request.Context(), c.Param("id"), req.Feedback, identity.NewExclusionSet(names))
	if err != nil {
		s.log.Error("generation failed", "patient_id", c.Param("id"), "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, caseplan.ErrCaseNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error(), "state": run.State})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":     run.State,
		"noop":      run.NoOp,
		"persona":   run.PersonaName,
		"documents": run.Documents,
	})
}

func (s *Server) RunBatch(c *gin.Context) {
	report, err := s.sched.RunBatch(c.Request.Context())
	if err != nil {
		s.log.Error("batch failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"processed": report.Processed,
		"skipped":   report.Skipped,
		"failed":    report.Failed,
	})
}

func (s *Server) GetPatient(c *gin.Context) {
	persona, err := s.patients.Load(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if persona == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "patient not found"})
		return
	}
	c.JSON(http.StatusOK, persona)
}

func (s *Server) PurgePatient(c *gin.Context) {
	if err := s.purger.Patient(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "purged"})
}
