package models

import (
	"fmt"
	"time"
)

// Status is the listing status of an enterprise.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusPending  Status = "PENDING"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusPending:
		return true
	}
	return false
}

// EnterpriseType is the legal form of an enterprise.
type EnterpriseType string

const (
	TypeLLC       EnterpriseType = "LLC"
	TypeInsurance EnterpriseType = "INSURANCE"
	TypeCredits   EnterpriseType = "CREDITS"
)

// Enterprise is a business listed in the directory.
type Enterprise struct {
	ID                         string         `json:"id"`
	LongName                   string         `json:"long_name"`
	ShortName                  string         `json:"short_name"`
	LogoURL                    string         `json:"logo_url,omitempty"`
	IsIndividualBusiness       bool           `json:"is_individual_business"`
	Description                string         `json:"description"`
	Keywords                   []string       `json:"keywords"`
	Type                       EnterpriseType `json:"type"`
	Status                     Status         `json:"status"`
	IsActive                   bool           `json:"is_active"`
	BusinessDomains            []string       `json:"business_domains"` // domain ids
	OrgContact                 string         `json:"org_contact,omitempty"`
	Email                      string         `json:"email,omitempty"`
	WebsiteURL                 string         `json:"website_url,omitempty"`
	SocialNetwork              string         `json:"social_network,omitempty"`
	BusinessRegistrationNumber string         `json:"business_registration_number,omitempty"`
	TaxNumber                  string         `json:"tax_number,omitempty"`
	CEOName                    string         `json:"ceo_name,omitempty"`
	NumberOfEmployees          int            `json:"number_of_employees"`
	CapitalShare               float64        `json:"capital_share"`
	RegistrationDate           time.Time      `json:"registration_date"`
	YearFounded                time.Time      `json:"year_founded"`
	BusinessActorID            string         `json:"business_actor_id,omitempty"`
}

// Clone returns a deep copy so callers can never alias store-owned slices.
func (e Enterprise) Clone() Enterprise {
	out := e
	if e.Keywords != nil {
		out.Keywords = append([]string(nil), e.Keywords...)
	}
	if e.BusinessDomains != nil {
		out.BusinessDomains = append([]string(nil), e.BusinessDomains...)
	}
	return out
}

// Suspended returns a copy marked INACTIVE. Status and IsActive always move together.
func (e Enterprise) Suspended() Enterprise {
	out := e.Clone()
	out.Status = StatusInactive
	out.IsActive = false
	return out
}

// Validate checks identity and the status/is_active pairing.
func (e Enterprise) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("enterprise: empty id")
	}
	if !e.Status.Valid() {
		return fmt.Errorf("enterprise %s: unknown status %q", e.ID, e.Status)
	}
	if (e.Status == StatusInactive) == e.IsActive {
		return fmt.Errorf("enterprise %s: status %s disagrees with is_active=%t", e.ID, e.Status, e.IsActive)
	}
	return nil
}
