package validate

import (
	"fmt"
	"strings"
)

// ReportMetadata is the deterministic header block of every document.
type ReportMetadata struct {
	PatientID   string
	MRN         string
	PatientName string
	DOB         string
	Gender      string
	ReportDate  string
	Provider    string
	Facility    string
	AccessionID string
	DocType     string
}

// FormatDocument renders the machine-first report template: header, ordered
// body sections, trailing narrative, wrapped in the literal markers the
// validator checks for. Used to build reference documents in tests and to
// normalize repaired content.
func FormatDocument(meta ReportMetadata, sections []Section, narrative string) string {
	var b strings.Builder

	b.WriteString(StartMarker + "\n")
	b.WriteString(MetadataBlock + "\n")
	fmt.Fprintf(&b, "PATIENT_ID: %s\n", meta.PatientID)
	fmt.Fprintf(&b, "MRN: %s\n", meta.MRN)
	fmt.Fprintf(&b, "PATIENT_NAME: %s\n", meta.PatientName)
	fmt.Fprintf(&b, "DOB: %s\n", meta.DOB)
	fmt.Fprintf(&b, "GENDER: %s\n", meta.Gender)
	fmt.Fprintf(&b, "REPORT_DATE: %s\n", meta.ReportDate)
	fmt.Fprintf(&b, "PROVIDER: %s\n", meta.Provider)
	fmt.Fprintf(&b, "FACILITY: %s\n", meta.Facility)
	fmt.Fprintf(&b, "ACCESSION_ID: %s\n", meta.AccessionID)
	fmt.Fprintf(&b, "DOC_TYPE: %s\n", meta.DocType)

	for _, s := range sections {
		fmt.Fprintf(&b, "\n[%s]\n%s\n", strings.ToUpper(s.Name), strings.TrimSpace(s.Body))
	}

	if narrative != "" {
		fmt.Fprintf(&b, "\n[CLINICAL_TEXT]\n%s\n", narrative)
	}

	b.WriteString("\n" + EndMarker)
	return b.String()
}

// Section is one labeled body block, e.g. HPI or FINDINGS.
type Section struct {
	Name string
	Body string
}
