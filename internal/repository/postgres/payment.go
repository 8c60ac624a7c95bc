package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/feeflow/feeflow/internal/domain/payment"
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/logger"
	"github.com/feeflow/feeflow/internal/postgres"
	"github.com/feeflow/feeflow/internal/types"
	"github.com/shopspring/decimal"
)

type paymentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPaymentRepository(db *postgres.DB, log *logger.Logger) payment.Repository {
	return &paymentRepository{
		db:     db,
		logger: log,
	}
}

type paymentRow struct {
	ID            string          `db:"id"`
	StudentID     string          `db:"student_id"`
	PlanID        sql.NullString  `db:"plan_id"`
	InstallmentID sql.NullString  `db:"installment_id"`
	Amount        decimal.Decimal `db:"amount"`
	PaymentDate   time.Time       `db:"payment_date"`
	PaymentMethod string          `db:"payment_method"`
	TransactionID string          `db:"transaction_id"`
	Category      string          `db:"category"`
	PaymentStatus string          `db:"payment_status"`
	Source        string          `db:"source"`
	ReceiptNumber string          `db:"receipt_number"`
	VerifiedBy    *string         `db:"verified_by"`
	VerifiedAt    *time.Time      `db:"verified_at"`
	Version       int             `db:"version"`
	Status        string          `db:"status"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
	CreatedBy     string          `db:"created_by"`
	UpdatedBy     string          `db:"updated_by"`
}

func toPaymentRow(p *payment.Payment) *paymentRow {
	return &paymentRow{
		ID:            p.ID,
		StudentID:     p.StudentID,
		PlanID:        toNullString(p.PlanID),
		InstallmentID: toNullString(p.InstallmentID),
		Amount:        p.Amount,
		PaymentDate:   p.PaymentDate,
		PaymentMethod: string(p.PaymentMethod),
		TransactionID: p.TransactionID,
		Category:      p.Category,
		PaymentStatus: string(p.PaymentStatus),
		Source:        string(p.Source),
		ReceiptNumber: p.ReceiptNumber,
		VerifiedBy:    p.VerifiedBy,
		VerifiedAt:    p.VerifiedAt,
		Version:       p.Version,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		CreatedBy:     p.CreatedBy,
		UpdatedBy:     p.UpdatedBy,
	}
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *paymentRow) toDomain() *payment.Payment {
	return &payment.Payment{
		ID:            r.ID,
		StudentID:     r.StudentID,
		PlanID:        r.PlanID.String,
		InstallmentID: r.InstallmentID.String,
		Amount:        r.Amount,
		PaymentDate:   r.PaymentDate,
		PaymentMethod: types.PaymentMethod(r.PaymentMethod),
		TransactionID: r.TransactionID,
		Category:      r.Category,
		PaymentStatus: types.PaymentStatus(r.PaymentStatus),
		Source:        types.PaymentSource(r.Source),
		ReceiptNumber: r.ReceiptNumber,
		VerifiedBy:    r.VerifiedBy,
		VerifiedAt:    r.VerifiedAt,
		Version:       r.Version,
		BaseModel: types.BaseModel{
			Status:    types.Status(r.Status),
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			CreatedBy: r.CreatedBy,
			UpdatedBy: r.UpdatedBy,
		},
	}
}

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (
			id, student_id, plan_id, installment_id, amount, payment_date,
			payment_method, transaction_id, category, payment_status, source,
			receipt_number, verified_by, verified_at, version,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :student_id, :plan_id, :installment_id, :amount, :payment_date,
			:payment_method, :transaction_id, :category, :payment_status, :source,
			:receipt_number, :verified_by, :verified_at, :version,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, toPaymentRow(p)); err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A payment with this transaction ID already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create payment").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	var row paymentRow
	query := `SELECT * FROM payments WHERE id = $1 AND status != $2`

	q := r.db.GetQuerier(ctx)
	if err := q.GetContext(ctx, &row, query, id, types.StatusDeleted); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("payment not found").
				WithHintf("Payment %s does not exist", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get payment").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain(), nil
}

// UpdateWithVersion applies the state transition under the expected version.
// A zero-row update means a concurrent writer won.
func (r *paymentRepository) UpdateWithVersion(ctx context.Context, p *payment.Payment, expectedVersion int) error {
	p.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE payments SET
			payment_status = $1,
			receipt_number = $2,
			verified_by = $3,
			verified_at = $4,
			version = $5,
			updated_at = $6,
			updated_by = $7
		WHERE id = $8 AND version = $9 AND status != 'deleted'`

	q := r.db.GetQuerier(ctx)
	result, err := q.ExecContext(ctx, query,
		p.PaymentStatus, p.ReceiptNumber, p.VerifiedBy, p.VerifiedAt,
		p.Version, p.UpdatedAt, p.UpdatedBy,
		p.ID, expectedVersion)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update payment").
			Mark(ierr.ErrDatabase)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to read update result").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("payment version conflict").
			WithHint("The payment was modified concurrently, retry with the latest version").
			WithReportableDetails(map[string]any{
				"payment_id":       p.ID,
				"expected_version": expectedVersion,
			}).
			Mark(ierr.ErrVersionConflict)
	}
	return nil
}

func (r *paymentRepository) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	query, args := buildPaymentQuery(`SELECT * FROM payments`, filter)
	query += ` ORDER BY payment_date DESC`

	var rows []paymentRow
	q := r.db.GetQuerier(ctx)
	if err := q.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list payments").
			Mark(ierr.ErrDatabase)
	}

	payments := make([]*payment.Payment, len(rows))
	for i := range rows {
		payments[i] = rows[i].toDomain()
	}
	return payments, nil
}

func (r *paymentRepository) Count(ctx context.Context, filter *types.PaymentFilter) (int, error) {
	query, args := buildPaymentQuery(`SELECT COUNT(*) FROM payments`, filter)

	var count int
	q := r.db.GetQuerier(ctx)
	if err := q.GetContext(ctx, &count, query, args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count payments").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *paymentRepository) ListByInstallment(ctx context.Context, installmentID string) ([]*payment.Payment, error) {
	filter := &types.PaymentFilter{InstallmentID: &installmentID}
	return r.List(ctx, filter)
}

func (r *paymentRepository) ListByPlan(ctx context.Context, planID string) ([]*payment.Payment, error) {
	filter := &types.PaymentFilter{PlanID: &planID}
	return r.List(ctx, filter)
}

func buildPaymentQuery(base string, filter *types.PaymentFilter) (string, []interface{}) {
	query := base + ` WHERE status != 'deleted'`
	args := []interface{}{}
	idx := 1

	if filter == nil {
		return query, args
	}
	if filter.StudentID != nil {
		query += argClause(` AND student_id = $%d`, &idx)
		args = append(args, *filter.StudentID)
	}
	if filter.PlanID != nil {
		query += argClause(` AND plan_id = $%d`, &idx)
		args = append(args, *filter.PlanID)
	}
	if filter.InstallmentID != nil {
		query += argClause(` AND installment_id = $%d`, &idx)
		args = append(args, *filter.InstallmentID)
	}
	if filter.PaymentStatus != nil {
		query += argClause(` AND payment_status = $%d`, &idx)
		args = append(args, *filter.PaymentStatus)
	}
	if filter.PaymentMethod != nil {
		query += argClause(` AND payment_method = $%d`, &idx)
		args = append(args, *filter.PaymentMethod)
	}
	if filter.StartTime != nil {
		query += argClause(` AND payment_date >= $%d`, &idx)
		args = append(args, *filter.StartTime)
	}
	if filter.EndTime != nil {
		query += argClause(` AND payment_date <= $%d`, &idx)
		args = append(args, *filter.EndTime)
	}
	return query, args
}
