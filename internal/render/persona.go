package render

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/lucenz/chartgen/internal/core/model"
	"github.com/lucenz/chartgen/internal/core/validate"
)

// PersonaSheet renders the face-sheet artifact for a persona: demographics,
// insurance and the bio narrative as one chart in the personas directory.
func PersonaSheet(ctx context.Context, r Renderer, dir, patientID, mrn string, p *model.PatientPersona) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("Persona_%s_%s.png", patientID, p.LastName))

	content := fmt.Sprintf(`DEMOGRAPHICS
Address: %s
Phone: %s
Race: %s    Height: %s    Weight: %s
Marital Status: %s    Language: %s

EMERGENCY CONTACT
%s (%s) - %s

CARE TEAM
%s
%s

INSURANCE
%s - %s (%s)
Member ID: %s    Group: %s (%s)
Policy: %s    Effective: %s
Copay: %s    Deductible: %s
Subscriber: %s (%s)

HISTORY
%s`,
		p.Address, p.Telecom,
		p.Race, p.Height, p.Weight,
		p.MaritalStatus, p.Communication.Language,
		p.Contact.Name, p.Contact.Relationship, p.Contact.Telecom,
		p.Provider.GeneralPractitioner, p.Provider.ManagingOrganization,
		p.Payer.PayerName, p.Payer.PlanName, p.Payer.PlanType,
		p.Payer.MemberID, p.Payer.GroupName, p.Payer.GroupID,
		p.Payer.PolicyNumber, p.Payer.EffectiveDate,
		p.Payer.CopayAmount, p.Payer.DeductibleAmount,
		p.Payer.Subscriber.SubscriberName, p.Payer.Subscriber.SubscriberRelationship,
		p.BioNarrative)

	job := Job{
		Path:  path,
		Title: fmt.Sprintf("Patient Persona - %s", p.DisplayName()),
		Meta: validate.ReportMetadata{
			PatientID:   patientID,
			MRN:         mrn,
			PatientName: p.DisplayName(),
			DOB:         p.DOB,
			Gender:      p.Gender,
			Provider:    p.Provider.GeneralPractitioner,
			Facility:    p.Provider.ManagingOrganization,
			DocType:     "PERSONA",
		},
		Content: content,
	}

	if err := r.Render(ctx, job); err != nil {
		return "", err
	}
	return path, nil
}
