package render

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucenz/chartgen/internal/config"
	"github.com/lucenz/chartgen/internal/core/model"
	"github.com/lucenz/chartgen/internal/core/validate"
)

func testJob(path string) Job {
	return Job{
		Path:  path,
		Title: "Knee_MRI_Report",
		Meta: validate.ReportMetadata{
			PatientID:   "300",
			MRN:         "MRN-300-2026",
			PatientName: "George Costanza",
			DOB:         "1971-06-22",
			Gender:      "male",
			ReportDate:  "2026-08-01",
			Provider:    "Dr. Sarah Smith, MD",
			Facility:    "Mercy General Hospital",
			AccessionID: "ACC-300-1",
			DocType:     "IMAGING",
		},
		Content: "--- REPORT START ---\n[FINDINGS]\nComplex tear of the medial meniscus.\n--- REPORT END ---",
	}
}

func TestChartRendererWritesDecodablePNG(t *testing.T) {
	r, err := NewChartRenderer(config.Default().Render)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "reports", "DOC-300-001-Knee_MRI_Report.png")
	require.NoError(t, r.Render(context.Background(), testJob(path)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 1240, img.Bounds().Dx())
	assert.Greater(t, img.Bounds().Dy(), 100)
}

func TestChartRendererHonorsPageWidth(t *testing.T) {
	cfg := config.Default().Render
	cfg.PageWidth = 800

	r, err := NewChartRenderer(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "DOC-300-001-Note.png")
	require.NoError(t, r.Render(context.Background(), testJob(path)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
}

func TestChartRendererMissingFontFileFails(t *testing.T) {
	cfg := config.Default().Render
	cfg.FontPath = filepath.Join(t.TempDir(), "absent.ttf")

	_, err := NewChartRenderer(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read font")
}

func TestChartRendererCancelledContext(t *testing.T) {
	r, err := NewChartRenderer(config.Default().Render)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "DOC-300-001-Note.png")
	require.Error(t, r.Render(ctx, testJob(path)))
	assert.NoFileExists(t, path)
}

// captureRenderer records the job instead of rasterizing.
type captureRenderer struct {
	job Job
}

func (c *captureRenderer) Render(ctx context.Context, job Job) error {
	c.job = job
	return nil
}

func TestPersonaSheetBuildsFaceSheetJob(t *testing.T) {
	p := &model.PatientPersona{
		FirstName:    "George",
		LastName:     "Costanza",
		Gender:       "male",
		DOB:          "1971-06-22",
		Address:      "129 West 81st St, New York, NY",
		Telecom:      "555-867-5309",
		Provider:     model.PatientProvider{GeneralPractitioner: "Dr. Sarah Smith, MD", ManagingOrganization: "Mercy General Hospital"},
		Payer:        model.PayerDetails{PayerName: "UnitedHealthcare", PlanName: "Choice Plus"},
		BioNarrative: "Long-standing knee pain following a fall.",
	}

	capture := &captureRenderer{}
	path, err := PersonaSheet(context.Background(), capture, "/out/personas", "300", "MRN-300-2026", p)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/out/personas", "Persona_300_Costanza.png"), path)
	assert.Equal(t, path, capture.job.Path)
	assert.Equal(t, "PERSONA", capture.job.Meta.DocType)
	assert.Equal(t, "George Costanza", capture.job.Meta.PatientName)
	assert.Contains(t, capture.job.Content, "UnitedHealthcare")
	assert.Contains(t, capture.job.Content, "Long-standing knee pain")
}
