package models

// DomainName is the taxonomy tag of a business domain.
type DomainName string

const (
	DomainLLC       DomainName = "LLC"
	DomainInsurance DomainName = "INSURANCE"
	DomainCredits   DomainName = "CREDITS"
)

// Domain is a business domain enterprises can be filed under.
type Domain struct {
	ID          string     `json:"id"`
	DomainName  DomainName `json:"domain_name"`
	Description string     `json:"description"`
}
