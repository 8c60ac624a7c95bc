package addon

import "context"

// Repository defines the interface for addon catalog persistence. The
// institution has a single active catalog.
type Repository interface {
	Get(ctx context.Context) (*Catalog, error)
	Update(ctx context.Context, catalog *Catalog) error
}
