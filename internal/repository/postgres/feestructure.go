package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/feeflow/feeflow/internal/domain/feestructure"
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/logger"
	"github.com/feeflow/feeflow/internal/postgres"
	"github.com/feeflow/feeflow/internal/types"
	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type feeStructureRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewFeeStructureRepository(db *postgres.DB, log *logger.Logger) feestructure.Repository {
	return &feeStructureRepository{
		db:     db,
		logger: log,
	}
}

// feeStructureRow is the database projection of a fee structure. Categories
// are stored as JSONB, the applicability lists as text arrays.
type feeStructureRow struct {
	ID                 string          `db:"id"`
	Name               string          `db:"name"`
	Description        string          `db:"description"`
	BaseAmount         decimal.Decimal `db:"base_amount"`
	Categories         []byte          `db:"categories"`
	ApplicablePrograms pq.StringArray  `db:"applicable_programs"`
	ApplicableYears    pq.StringArray  `db:"applicable_years"`
	Status             string          `db:"status"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
	CreatedBy          string          `db:"created_by"`
	UpdatedBy          string          `db:"updated_by"`
}

func toFeeStructureRow(f *feestructure.FeeStructure) (*feeStructureRow, error) {
	categories, err := json.Marshal(f.Categories)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to encode fee categories").
			Mark(ierr.ErrDatabase)
	}
	return &feeStructureRow{
		ID:                 f.ID,
		Name:               f.Name,
		Description:        f.Description,
		BaseAmount:         f.BaseAmount,
		Categories:         categories,
		ApplicablePrograms: f.ApplicablePrograms,
		ApplicableYears:    f.ApplicableYears,
		Status:             string(f.Status),
		CreatedAt:          f.CreatedAt,
		UpdatedAt:          f.UpdatedAt,
		CreatedBy:          f.CreatedBy,
		UpdatedBy:          f.UpdatedBy,
	}, nil
}

func (r *feeStructureRow) toDomain() (*feestructure.FeeStructure, error) {
	var categories []feestructure.FeeCategory
	if err := json.Unmarshal(r.Categories, &categories); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to decode fee categories").
			Mark(ierr.ErrDatabase)
	}
	return &feestructure.FeeStructure{
		ID:                 r.ID,
		Name:               r.Name,
		Description:        r.Description,
		BaseAmount:         r.BaseAmount,
		Categories:         categories,
		ApplicablePrograms: r.ApplicablePrograms,
		ApplicableYears:    r.ApplicableYears,
		BaseModel: types.BaseModel{
			Status:    types.Status(r.Status),
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			CreatedBy: r.CreatedBy,
			UpdatedBy: r.UpdatedBy,
		},
	}, nil
}

func (r *feeStructureRepository) Create(ctx context.Context, structure *feestructure.FeeStructure) error {
	row, err := toFeeStructureRow(structure)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO fee_structures (
			id, name, description, base_amount, categories,
			applicable_programs, applicable_years,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :name, :description, :base_amount, :categories,
			:applicable_programs, :applicable_years,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHintf("A fee structure named %s already exists", structure.Name).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create fee structure").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *feeStructureRepository) Get(ctx context.Context, id string) (*feestructure.FeeStructure, error) {
	var row feeStructureRow
	query := `SELECT * FROM fee_structures WHERE id = $1 AND status != $2`

	q := r.db.GetQuerier(ctx)
	if err := q.GetContext(ctx, &row, query, id, types.StatusDeleted); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("fee structure not found").
				WithHintf("Fee structure %s does not exist", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get fee structure").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain()
}

func (r *feeStructureRepository) Update(ctx context.Context, structure *feestructure.FeeStructure) error {
	structure.UpdatedAt = time.Now().UTC()
	row, err := toFeeStructureRow(structure)
	if err != nil {
		return err
	}

	query := `
		UPDATE fee_structures SET
			name = :name,
			description = :description,
			base_amount = :base_amount,
			categories = :categories,
			applicable_programs = :applicable_programs,
			applicable_years = :applicable_years,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND status != 'deleted'`

	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update fee structure").
			Mark(ierr.ErrDatabase)
	}
	return requireRowAffected(result, "fee structure", structure.ID)
}

func (r *feeStructureRepository) Archive(ctx context.Context, id string) error {
	query := `UPDATE fee_structures SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`

	q := r.db.GetQuerier(ctx)
	result, err := q.ExecContext(ctx, query, types.StatusArchived, time.Now().UTC(), id, types.StatusPublished)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to archive fee structure").
			Mark(ierr.ErrDatabase)
	}
	return requireRowAffected(result, "fee structure", id)
}

func (r *feeStructureRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE fee_structures SET status = $1, updated_at = $2 WHERE id = $3 AND status != $1`

	q := r.db.GetQuerier(ctx)
	result, err := q.ExecContext(ctx, query, types.StatusDeleted, time.Now().UTC(), id)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete fee structure").
			Mark(ierr.ErrDatabase)
	}
	return requireRowAffected(result, "fee structure", id)
}

func (r *feeStructureRepository) List(ctx context.Context, filter *feestructure.Filter) ([]*feestructure.FeeStructure, error) {
	query, args := buildFeeStructureQuery(`SELECT * FROM fee_structures`, filter)
	query += ` ORDER BY created_at DESC`

	var rows []feeStructureRow
	q := r.db.GetQuerier(ctx)
	if err := q.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list fee structures").
			Mark(ierr.ErrDatabase)
	}

	structures := make([]*feestructure.FeeStructure, 0, len(rows))
	for i := range rows {
		structure, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		structures = append(structures, structure)
	}
	return structures, nil
}

func (r *feeStructureRepository) Count(ctx context.Context, filter *feestructure.Filter) (int, error) {
	query, args := buildFeeStructureQuery(`SELECT COUNT(*) FROM fee_structures`, filter)

	var count int
	q := r.db.GetQuerier(ctx)
	if err := q.GetContext(ctx, &count, query, args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count fee structures").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func buildFeeStructureQuery(base string, filter *feestructure.Filter) (string, []interface{}) {
	query := base + ` WHERE status != 'deleted'`
	args := []interface{}{}
	idx := 1

	if filter == nil {
		return query, args
	}
	if filter.ActiveOnly {
		query += ` AND status = 'published'`
	}
	if filter.Program != nil {
		query += argClause(` AND $%d = ANY(applicable_programs)`, &idx)
		args = append(args, *filter.Program)
	}
	if filter.Year != nil {
		query += argClause(` AND $%d = ANY(applicable_years)`, &idx)
		args = append(args, *filter.Year)
	}
	return query, args
}
