// README: Pricing service loads the ticket catalog and produces quotes.
package pricing

import (
	"context"

	"ridepass/internal/utils"
)

// BundleSource supplies the configured bundles; *Store is the production one.
type BundleSource interface {
	ListBundles(ctx context.Context) ([]TicketBundle, string, error)
}

type Service struct {
	source   BundleSource
	fallback Catalog
}

func NewService(source BundleSource) *Service {
	return &Service{source: source, fallback: DefaultCatalog()}
}

// Catalog returns the configured catalog, or the default one when nothing is
// configured or the stored rows do not form a valid catalog.
func (s *Service) Catalog(ctx context.Context) Catalog {
	if s.source == nil {
		return s.fallback
	}
	bundles, currency, err := s.source.ListBundles(ctx)
	if err != nil {
		utils.LogEvent("pricing", "catalog", "load failed, using defaults: %v", err)
		return s.fallback
	}
	if len(bundles) == 0 {
		return s.fallback
	}
	c, err := NewCatalog(currency, bundles...)
	if err != nil {
		utils.LogEvent("pricing", "catalog", "rejected stored catalog, using defaults: %v", err)
		return s.fallback
	}
	return c
}

// Quote prices requestedRides against the current catalog.
func (s *Service) Quote(ctx context.Context, requestedRides int) (Quote, error) {
	q, err := ComputeQuote(requestedRides, s.Catalog(ctx))
	if err != nil {
		return Quote{}, err
	}
	utils.LogEvent("pricing", "quote", "rides=%d total=%d granted=%d", q.RequestedRides, q.TotalPrice, q.GrantedRides)
	return q, nil
}

// CatalogWriter persists a catalog; *Store implements it.
type CatalogWriter interface {
	ReplaceCatalog(ctx context.Context, c Catalog) error
}

// ImportCatalog decodes an upstream catalog payload and makes it the active
// catalog.
func ImportCatalog(ctx context.Context, w CatalogWriter, raw []byte, currency string) (Catalog, error) {
	c, err := DecodeCatalog(raw, currency)
	if err != nil {
		return Catalog{}, err
	}
	if err := w.ReplaceCatalog(ctx, c); err != nil {
		return Catalog{}, err
	}
	utils.LogEvent("pricing", "import", "bundles=%d currency=%s", len(c.Bundles()), c.Currency)
	return c, nil
}
