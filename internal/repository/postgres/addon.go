package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/feeflow/feeflow/internal/domain/addon"
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/logger"
	"github.com/feeflow/feeflow/internal/postgres"
	"github.com/feeflow/feeflow/internal/types"
)

type addonRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewAddonRepository(db *postgres.DB, log *logger.Logger) addon.Repository {
	return &addonRepository{
		db:     db,
		logger: log,
	}
}

// addonCatalogRow stores the tier groups and one-time charges as JSONB. The
// institution keeps a single published catalog row.
type addonCatalogRow struct {
	ID             string    `db:"id"`
	HostelTiers    []byte    `db:"hostel_tiers"`
	TransportTiers []byte    `db:"transport_tiers"`
	OneTimeCharges []byte    `db:"one_time_charges"`
	Status         string    `db:"status"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
	CreatedBy      string    `db:"created_by"`
	UpdatedBy      string    `db:"updated_by"`
}

func toAddonCatalogRow(c *addon.Catalog) (*addonCatalogRow, error) {
	hostel, err := json.Marshal(c.HostelTiers)
	if err != nil {
		return nil, encodeErr(err)
	}
	transport, err := json.Marshal(c.TransportTiers)
	if err != nil {
		return nil, encodeErr(err)
	}
	charges, err := json.Marshal(c.OneTimeCharges)
	if err != nil {
		return nil, encodeErr(err)
	}
	return &addonCatalogRow{
		ID:             c.ID,
		HostelTiers:    hostel,
		TransportTiers: transport,
		OneTimeCharges: charges,
		Status:         string(c.Status),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		CreatedBy:      c.CreatedBy,
		UpdatedBy:      c.UpdatedBy,
	}, nil
}

func encodeErr(err error) error {
	return ierr.WithError(err).
		WithHint("Failed to encode addon catalog").
		Mark(ierr.ErrDatabase)
}

func (r *addonCatalogRow) toDomain() (*addon.Catalog, error) {
	catalog := &addon.Catalog{
		ID: r.ID,
		BaseModel: types.BaseModel{
			Status:    types.Status(r.Status),
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			CreatedBy: r.CreatedBy,
			UpdatedBy: r.UpdatedBy,
		},
	}
	if err := json.Unmarshal(r.HostelTiers, &catalog.HostelTiers); err != nil {
		return nil, decodeErr(err)
	}
	if err := json.Unmarshal(r.TransportTiers, &catalog.TransportTiers); err != nil {
		return nil, decodeErr(err)
	}
	if err := json.Unmarshal(r.OneTimeCharges, &catalog.OneTimeCharges); err != nil {
		return nil, decodeErr(err)
	}
	return catalog, nil
}

func decodeErr(err error) error {
	return ierr.WithError(err).
		WithHint("Failed to decode addon catalog").
		Mark(ierr.ErrDatabase)
}

// Get returns the institution's active catalog.
func (r *addonRepository) Get(ctx context.Context) (*addon.Catalog, error) {
	var row addonCatalogRow
	query := `SELECT * FROM addon_catalogs WHERE status = $1 ORDER BY updated_at DESC LIMIT 1`

	q := r.db.GetQuerier(ctx)
	if err := q.GetContext(ctx, &row, query, types.StatusPublished); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("addon catalog not configured").
				WithHint("No add-on catalog has been configured").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get addon catalog").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain()
}

// Update upserts the catalog row.
func (r *addonRepository) Update(ctx context.Context, catalog *addon.Catalog) error {
	catalog.UpdatedAt = time.Now().UTC()
	row, err := toAddonCatalogRow(catalog)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO addon_catalogs (
			id, hostel_tiers, transport_tiers, one_time_charges,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :hostel_tiers, :transport_tiers, :one_time_charges,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)
		ON CONFLICT (id) DO UPDATE SET
			hostel_tiers = EXCLUDED.hostel_tiers,
			transport_tiers = EXCLUDED.transport_tiers,
			one_time_charges = EXCLUDED.one_time_charges,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update addon catalog").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
