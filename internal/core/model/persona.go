package model

import "fmt"

// PatientContact is the emergency contact or guardian attached to a persona.
type PatientContact struct {
	Relationship string `json:"relationship"`
	Name         string `json:"name"`
	Telecom      string `json:"telecom"`
	Address      string `json:"address"`
	Gender       string `json:"gender"`
	Organization string `json:"organization"`
	PeriodStart  string `json:"period_start"`
	PeriodEnd    string `json:"period_end"`
}

type PatientCommunication struct {
	Language  string `json:"language"`
	Preferred bool   `json:"preferred"`
}

type PatientProvider struct {
	GeneralPractitioner  string `json:"generalPractitioner"`
	ManagingOrganization string `json:"managingOrganization"`
}

type PatientLink struct {
	OtherPatient string `json:"other_patient"`
	LinkType     string `json:"link_type"`
}

type SubscriberDetails struct {
	SubscriberID           string `json:"subscriber_id"`
	SubscriberName         string `json:"subscriber_name"`
	SubscriberRelationship string `json:"subscriber_relationship"`
	SubscriberDOB          string `json:"subscriber_dob"`
	SubscriberAddress      string `json:"subscriber_address"`
}

type PayerDetails struct {
	PayerID          string            `json:"payer_id"`
	PayerName        string            `json:"payer_name"`
	PlanName         string            `json:"plan_name"`
	PlanType         string            `json:"plan_type"`
	GroupID          string            `json:"group_id"`
	GroupName        string            `json:"group_name"`
	MemberID         string            `json:"member_id"`
	PolicyNumber     string            `json:"policy_number"`
	EffectiveDate    string            `json:"effective_date"`
	TerminationDate  string            `json:"termination_date"`
	CopayAmount      string            `json:"copay_amount"`
	DeductibleAmount string            `json:"deductible_amount"`
	Subscriber       SubscriberDetails `json:"subscriber"`
}

// PatientPersona is the full synthetic patient identity. The snake_case JSON
// tags match the on-disk store format, so records written by earlier runs keep
// loading unchanged.
type PatientPersona struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    string `json:"gender"`
	DOB       string `json:"dob"`
	Address   string `json:"address"`
	Telecom   string `json:"telecom"`

	Race   string `json:"race"`
	Height string `json:"height"`
	Weight string `json:"weight"`

	MaritalStatus        string `json:"maritalStatus"`
	MultipleBirthBoolean bool   `json:"multipleBirthBoolean"`
	MultipleBirthInteger int    `json:"multipleBirthInteger"`
	Photo                string `json:"photo"`

	Communication PatientCommunication `json:"communication"`
	Contact       PatientContact       `json:"contact"`
	Provider      PatientProvider      `json:"provider"`
	Link          PatientLink          `json:"link"`
	Payer         PayerDetails         `json:"payer"`

	BioNarrative string `json:"bio_narrative"`
}

func (p *PatientPersona) DisplayName() string {
	return fmt.Sprintf("%s %s", p.FirstName, p.LastName)
}

// ApplyIdentityLock overwrites the identity-bearing fields with the stored
// values. Oracle output is advisory for an existing patient; the store is
// authoritative, regardless of what the prompt asked for.
func (p *PatientPersona) ApplyIdentityLock(stored *PatientPersona) {
	if stored == nil {
		return
	}
	p.FirstName = stored.FirstName
	p.LastName = stored.LastName
	p.Gender = stored.Gender
	p.DOB = stored.DOB
	p.Address = stored.Address
	p.Telecom = stored.Telecom
	p.Provider = stored.Provider
}
