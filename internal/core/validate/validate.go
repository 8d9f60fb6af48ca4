package validate

import (
	"fmt"
	"strings"

	"github.com/lucenz/chartgen/internal/config"
	"github.com/lucenz/chartgen/internal/core/model"
)

const (
	StartMarker   = "--- REPORT START ---"
	EndMarker     = "--- REPORT END ---"
	MetadataBlock = "[REPORT_METADATA]"
)

// RequiredMetadataKeys are the literal KEY: tokens every document must carry
// somewhere in its text.
var RequiredMetadataKeys = []string{
	"PATIENT_ID:", "MRN:", "PATIENT_NAME:", "DOB:", "REPORT_DATE:",
}

// Validator checks generated content against the fixed structural contract.
type Validator struct {
	cfg config.ValidationConfig
}

func NewValidator(cfg config.ValidationConfig) *Validator {
	return &Validator{cfg: cfg}
}

// Validate runs every rule and collects all violations in order; it never
// short-circuits, so a single pass reports every defect for the repair prompt.
func (v *Validator) Validate(content string) model.ValidationResult {
	var errs []string

	if !strings.Contains(content, StartMarker) {
		errs = append(errs, "Missing Start Marker")
	}
	if !strings.Contains(content, EndMarker) {
		errs = append(errs, "Missing End Marker")
	}

	if v.cfg.RequireMetadataBlock && !strings.Contains(content, MetadataBlock) {
		errs = append(errs, "Missing "+MetadataBlock)
	}

	for _, key := range RequiredMetadataKeys {
		if !strings.Contains(content, key) {
			errs = append(errs, fmt.Sprintf("Missing Metadata Field: %s", key))
		}
	}

	if !v.cfg.AllowTripleQuotes && strings.Contains(content, `"""`) {
		errs = append(errs, "Triple quotes detected")
	}
	// Generated records must read like genuine hospital exports.
	if strings.Contains(content, "Redacted") {
		errs = append(errs, "Redaction detected")
	}
	if !v.cfg.AllowMarkdownBold && strings.Contains(content, "**") {
		errs = append(errs, "Markdown bold detected")
	}

	return model.ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
