package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/businessbook/directory/internal/models"
)

// Querier is the part of *pgxpool.Pool the source reads with.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource imports the catalog from the domains and enterprises tables.
type PostgresSource struct {
	pool Querier
}

// NewPostgresSource creates a Postgres-backed catalog source.
func NewPostgresSource(pool Querier) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// Name implements Source.
func (s *PostgresSource) Name() string { return "postgres" }

// Load reads every domain and enterprise.
func (s *PostgresSource) Load(ctx context.Context) (Catalog, error) {
	domains, err := s.loadDomains(ctx)
	if err != nil {
		return Catalog{}, err
	}
	enterprises, err := s.loadEnterprises(ctx)
	if err != nil {
		return Catalog{}, err
	}
	c := Catalog{Enterprises: enterprises, Domains: domains}
	if err := c.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("invalid catalog: %w", err)
	}
	return c, nil
}

func (s *PostgresSource) loadDomains(ctx context.Context) ([]models.Domain, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, domain_name, COALESCE(description,'') FROM domains ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query domains: %w", err)
	}
	defer rows.Close()
	var list []models.Domain
	for rows.Next() {
		var d models.Domain
		var name string
		if err := rows.Scan(&d.ID, &name, &d.Description); err != nil {
			return nil, fmt.Errorf("scan domain: %w", err)
		}
		d.DomainName = models.DomainName(name)
		list = append(list, d)
	}
	return list, rows.Err()
}

func (s *PostgresSource) loadEnterprises(ctx context.Context) ([]models.Enterprise, error) {
	const q = `SELECT id, long_name, COALESCE(short_name,''), COALESCE(logo_url,''), is_individual_business,
		COALESCE(description,''), keywords, type, status, is_active, business_domains,
		COALESCE(org_contact,''), COALESCE(email,''), COALESCE(website_url,''), COALESCE(social_network,''),
		COALESCE(business_registration_number,''), COALESCE(tax_number,''), COALESCE(ceo_name,''),
		number_of_employees, capital_share, registration_date, year_founded, COALESCE(business_actor_id,'')
		FROM enterprises ORDER BY position, id`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query enterprises: %w", err)
	}
	defer rows.Close()
	var list []models.Enterprise
	for rows.Next() {
		var e models.Enterprise
		var typ, status string
		var registered, founded *time.Time
		if err := rows.Scan(&e.ID, &e.LongName, &e.ShortName, &e.LogoURL, &e.IsIndividualBusiness,
			&e.Description, &e.Keywords, &typ, &status, &e.IsActive, &e.BusinessDomains,
			&e.OrgContact, &e.Email, &e.WebsiteURL, &e.SocialNetwork,
			&e.BusinessRegistrationNumber, &e.TaxNumber, &e.CEOName,
			&e.NumberOfEmployees, &e.CapitalShare, &registered, &founded, &e.BusinessActorID); err != nil {
			return nil, fmt.Errorf("scan enterprise: %w", err)
		}
		e.Type = models.EnterpriseType(typ)
		e.Status = models.Status(status)
		if registered != nil {
			e.RegistrationDate = *registered
		}
		if founded != nil {
			e.YearFounded = *founded
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
