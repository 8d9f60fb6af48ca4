package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/lucenz/chartgen/internal/config"
	"github.com/lucenz/chartgen/internal/core/validate"
)

// Job is one artifact to render: validated (or degraded) content plus the
// header metadata, at a deterministic path.
type Job struct {
	Path    string
	Title   string
	Meta    validate.ReportMetadata
	Content string
}

// Renderer turns content and metadata into a durable artifact. The chart
// pipeline treats it as an external collaborator; a failure is fatal for the
// one document only.
type Renderer interface {
	Render(ctx context.Context, job Job) error
}

// ChartRenderer rasterizes documents into single-page PNG charts with a
// facility/patient face-sheet header.
type ChartRenderer struct {
	cfg      config.RenderConfig
	face     font.Face
	lineH    float64
	margin   float64
	fontSize float64
}

func NewChartRenderer(cfg config.RenderConfig) (*ChartRenderer, error) {
	r := &ChartRenderer{cfg: cfg, margin: 60}

	r.fontSize = cfg.FontSize
	if r.fontSize <= 0 {
		r.fontSize = 13
	}

	if cfg.FontPath != "" {
		data, err := os.ReadFile(cfg.FontPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read font '%s': %w", cfg.FontPath, err)
		}
		f, err := truetype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse font: %w", err)
		}
		r.face = truetype.NewFace(f, &truetype.Options{Size: r.fontSize})
		r.lineH = r.fontSize * 1.45
	} else {
		r.face = basicfont.Face7x13
		r.lineH = 16
	}

	return r, nil
}

func (r *ChartRenderer) pageWidth() int {
	if r.cfg.PageWidth > 0 {
		return r.cfg.PageWidth
	}
	return 1240
}

func (r *ChartRenderer) Render(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	width := r.pageWidth()
	textWidth := float64(width) - 2*r.margin

	// Measure pass to size the canvas before drawing.
	measure := gg.NewContext(width, 10)
	measure.SetFontFace(r.face)

	header := r.headerLines(job.Meta)
	bodyLines := wrapLines(measure, job.Content, textWidth)

	height := int(2*r.margin + float64(len(header)+len(bodyLines)+4)*r.lineH + 40)
	dc := gg.NewContext(width, height)
	dc.SetFontFace(r.face)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	y := r.margin

	dc.SetRGB(0.2, 0.29, 0.37)
	for _, line := range header {
		dc.DrawString(line, r.margin, y)
		y += r.lineH
	}

	y += r.lineH / 2
	dc.SetLineWidth(1)
	dc.DrawLine(r.margin, y, float64(width)-r.margin, y)
	dc.Stroke()
	y += r.lineH

	title := strings.ToUpper(strings.ReplaceAll(job.Title, "_", " "))
	dc.DrawString(title, r.margin, y)
	y += 2 * r.lineH

	dc.SetRGB(0.1, 0.1, 0.1)
	for _, line := range bodyLines {
		dc.DrawString(line, r.margin, y)
		y += r.lineH
	}

	if err := os.MkdirAll(filepath.Dir(job.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := dc.SavePNG(job.Path); err != nil {
		return fmt.Errorf("failed to write artifact '%s': %w", job.Path, err)
	}
	return nil
}

func (r *ChartRenderer) headerLines(meta validate.ReportMetadata) []string {
	return []string{
		meta.Facility,
		fmt.Sprintf("PATIENT: %s    MRN: %s    DOB: %s", strings.ToUpper(meta.PatientName), meta.MRN, meta.DOB),
		fmt.Sprintf("GENDER: %s    SERVICE DATE: %s", strings.ToUpper(meta.Gender), meta.ReportDate),
		fmt.Sprintf("ORDERING PROVIDER: %s    ACCESSION #: %s", meta.Provider, meta.AccessionID),
	}
}

func wrapLines(dc *gg.Context, content string, width float64) []string {
	var out []string
	for _, raw := range strings.Split(content, "\n") {
		if strings.TrimSpace(raw) == "" {
			out = append(out, "")
			continue
		}
		out = append(out, dc.WordWrap(raw, width)...)
	}
	return out
}
