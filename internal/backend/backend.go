// Package backend is the data-access contract screens call, and a simulated
// implementation over the in-memory catalog with configurable latency and
// fault injection.
package backend

import (
	"context"

	"github.com/businessbook/directory/internal/models"
)

// Op names a backend operation.
type Op string

const (
	OpGetEnterprises    Op = "getEnterprises"
	OpGetEnterpriseByID Op = "getEnterpriseById"
	OpGetDomains        Op = "getDomains"
	OpSearchEnterprises Op = "searchEnterprises"
	OpHinderEnterprise  Op = "hinderEnterprise"
	OpDeleteEnterprise  Op = "deleteEnterprise"
	OpGetAllTrafics     Op = "getAllTrafics"
)

// DataSource is everything the app reads and writes.
type DataSource interface {
	GetEnterprises(ctx context.Context) ([]models.Enterprise, error)
	GetEnterpriseByID(ctx context.Context, id string) (models.Enterprise, error)
	GetDomains(ctx context.Context) ([]models.Domain, error)
	SearchEnterprises(ctx context.Context, query string, domainIDs []string) ([]models.Enterprise, error)
	HinderEnterprise(ctx context.Context, id string) (models.Enterprise, error)
	DeleteEnterprise(ctx context.Context, id string) error
	GetAllTrafics(ctx context.Context) (models.TrafficStats, error)
}
