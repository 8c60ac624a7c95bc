package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/feeflow/feeflow/internal/domain/installment"
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/logger"
	"github.com/feeflow/feeflow/internal/postgres"
	"github.com/feeflow/feeflow/internal/types"
	"github.com/shopspring/decimal"
)

type installmentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInstallmentRepository(db *postgres.DB, log *logger.Logger) installment.Repository {
	return &installmentRepository{
		db:     db,
		logger: log,
	}
}

type planRow struct {
	ID                   string          `db:"id"`
	StudentID            string          `db:"student_id"`
	FeeStructureID       string          `db:"fee_structure_id"`
	TotalAmount          decimal.Decimal `db:"total_amount"`
	DiscountPercent      decimal.Decimal `db:"discount_percent"`
	NumberOfInstallments int             `db:"number_of_installments"`
	StartDate            time.Time       `db:"start_date"`
	DueDateType          string          `db:"due_date_type"`
	LateFeePercentage    decimal.Decimal `db:"late_fee_percentage"`
	GracePeriodDays      int             `db:"grace_period_days"`
	PlanStatus           string          `db:"plan_status"`
	Version              int             `db:"version"`
	Status               string          `db:"status"`
	CreatedAt            time.Time       `db:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at"`
	CreatedBy            string          `db:"created_by"`
	UpdatedBy            string          `db:"updated_by"`
}

type installmentRow struct {
	ID                string          `db:"id"`
	PlanID            string          `db:"plan_id"`
	InstallmentNumber int             `db:"installment_number"`
	DueDate           time.Time       `db:"due_date"`
	Amount            decimal.Decimal `db:"amount"`
	PaidAmount        decimal.Decimal `db:"paid_amount"`
	PaidDate          *time.Time      `db:"paid_date"`
	ReceiptNumber     string          `db:"receipt_number"`
	Status            string          `db:"status"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
	CreatedBy         string          `db:"created_by"`
	UpdatedBy         string          `db:"updated_by"`
}

func toPlanRow(p *installment.Plan) *planRow {
	return &planRow{
		ID:                   p.ID,
		StudentID:            p.StudentID,
		FeeStructureID:       p.FeeStructureID,
		TotalAmount:          p.TotalAmount,
		DiscountPercent:      p.DiscountPercent,
		NumberOfInstallments: p.NumberOfInstallments,
		StartDate:            p.StartDate,
		DueDateType:          string(p.DueDateType),
		LateFeePercentage:    p.LateFeePercentage,
		GracePeriodDays:      p.GracePeriodDays,
		PlanStatus:           string(p.PlanStatus),
		Version:              p.Version,
		Status:               string(p.Status),
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
		CreatedBy:            p.CreatedBy,
		UpdatedBy:            p.UpdatedBy,
	}
}

func (r *planRow) toDomain() *installment.Plan {
	return &installment.Plan{
		ID:                   r.ID,
		StudentID:            r.StudentID,
		FeeStructureID:       r.FeeStructureID,
		TotalAmount:          r.TotalAmount,
		DiscountPercent:      r.DiscountPercent,
		NumberOfInstallments: r.NumberOfInstallments,
		StartDate:            r.StartDate,
		DueDateType:          types.DueDateType(r.DueDateType),
		LateFeePercentage:    r.LateFeePercentage,
		GracePeriodDays:      r.GracePeriodDays,
		PlanStatus:           types.PlanStatus(r.PlanStatus),
		Version:              r.Version,
		BaseModel: types.BaseModel{
			Status:    types.Status(r.Status),
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			CreatedBy: r.CreatedBy,
			UpdatedBy: r.UpdatedBy,
		},
	}
}

func toInstallmentRow(i *installment.Installment) *installmentRow {
	return &installmentRow{
		ID:                i.ID,
		PlanID:            i.PlanID,
		InstallmentNumber: i.InstallmentNumber,
		DueDate:           i.DueDate,
		Amount:            i.Amount,
		PaidAmount:        i.PaidAmount,
		PaidDate:          i.PaidDate,
		ReceiptNumber:     i.ReceiptNumber,
		Status:            string(i.Status),
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
		CreatedBy:         i.CreatedBy,
		UpdatedBy:         i.UpdatedBy,
	}
}

func (r *installmentRow) toDomain() *installment.Installment {
	return &installment.Installment{
		ID:                r.ID,
		PlanID:            r.PlanID,
		InstallmentNumber: r.InstallmentNumber,
		DueDate:           r.DueDate,
		Amount:            r.Amount,
		PaidAmount:        r.PaidAmount,
		PaidDate:          r.PaidDate,
		ReceiptNumber:     r.ReceiptNumber,
		BaseModel: types.BaseModel{
			Status:    types.Status(r.Status),
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			CreatedBy: r.CreatedBy,
			UpdatedBy: r.UpdatedBy,
		},
	}
}

// CreatePlan persists the plan and its installments in one transaction.
func (r *installmentRepository) CreatePlan(ctx context.Context, plan *installment.Plan) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		planQuery := `
			INSERT INTO installment_plans (
				id, student_id, fee_structure_id, total_amount, discount_percent,
				number_of_installments, start_date, due_date_type,
				late_fee_percentage, grace_period_days, plan_status, version,
				status, created_at, updated_at, created_by, updated_by
			) VALUES (
				:id, :student_id, :fee_structure_id, :total_amount, :discount_percent,
				:number_of_installments, :start_date, :due_date_type,
				:late_fee_percentage, :grace_period_days, :plan_status, :version,
				:status, :created_at, :updated_at, :created_by, :updated_by
			)`

		if _, err := r.db.NamedExecContext(ctx, planQuery, toPlanRow(plan)); err != nil {
			if isUniqueViolation(err) {
				return ierr.WithError(err).
					WithHint("A plan with this ID already exists").
					Mark(ierr.ErrAlreadyExists)
			}
			return ierr.WithError(err).
				WithHint("Failed to create installment plan").
				Mark(ierr.ErrDatabase)
		}

		instQuery := `
			INSERT INTO installments (
				id, plan_id, installment_number, due_date, amount,
				paid_amount, paid_date, receipt_number,
				status, created_at, updated_at, created_by, updated_by
			) VALUES (
				:id, :plan_id, :installment_number, :due_date, :amount,
				:paid_amount, :paid_date, :receipt_number,
				:status, :created_at, :updated_at, :created_by, :updated_by
			)`

		for _, inst := range plan.Installments {
			if _, err := r.db.NamedExecContext(ctx, instQuery, toInstallmentRow(inst)); err != nil {
				return ierr.WithError(err).
					WithHint("Failed to create installment").
					Mark(ierr.ErrDatabase)
			}
		}
		return nil
	})
}

func (r *installmentRepository) GetPlan(ctx context.Context, id string) (*installment.Plan, error) {
	var row planRow
	query := `SELECT * FROM installment_plans WHERE id = $1 AND status != $2`

	q := r.db.GetQuerier(ctx)
	if err := q.GetContext(ctx, &row, query, id, types.StatusDeleted); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("plan not found").
				WithHintf("Installment plan %s does not exist", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get installment plan").
			Mark(ierr.ErrDatabase)
	}

	plan := row.toDomain()
	installments, err := r.listInstallments(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	plan.Installments = installments
	return plan, nil
}

func (r *installmentRepository) listInstallments(ctx context.Context, planID string) ([]*installment.Installment, error) {
	var rows []installmentRow
	query := `SELECT * FROM installments WHERE plan_id = $1 ORDER BY installment_number ASC`

	q := r.db.GetQuerier(ctx)
	if err := q.SelectContext(ctx, &rows, query, planID); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list installments").
			Mark(ierr.ErrDatabase)
	}

	installments := make([]*installment.Installment, len(rows))
	for i := range rows {
		installments[i] = rows[i].toDomain()
	}
	return installments, nil
}

func (r *installmentRepository) ListPlans(ctx context.Context, filter *installment.PlanFilter) ([]*installment.Plan, error) {
	query := `SELECT * FROM installment_plans WHERE status != 'deleted'`
	args := []interface{}{}
	idx := 1

	if filter != nil {
		if filter.StudentID != nil {
			query += argClause(` AND student_id = $%d`, &idx)
			args = append(args, *filter.StudentID)
		}
		if filter.FeeStructureID != nil {
			query += argClause(` AND fee_structure_id = $%d`, &idx)
			args = append(args, *filter.FeeStructureID)
		}
		if filter.PlanStatus != nil {
			query += argClause(` AND plan_status = $%d`, &idx)
			args = append(args, *filter.PlanStatus)
		}
	}
	query += ` ORDER BY created_at DESC`

	var rows []planRow
	q := r.db.GetQuerier(ctx)
	if err := q.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list installment plans").
			Mark(ierr.ErrDatabase)
	}

	plans := make([]*installment.Plan, len(rows))
	for i := range rows {
		plans[i] = rows[i].toDomain()
		installments, err := r.listInstallments(ctx, plans[i].ID)
		if err != nil {
			return nil, err
		}
		plans[i].Installments = installments
	}
	return plans, nil
}

// UpdatePlanWithVersion applies an optimistic update. A zero-row update on an
// existing plan means a concurrent writer advanced the version first.
func (r *installmentRepository) UpdatePlanWithVersion(ctx context.Context, plan *installment.Plan, expectedVersion int) error {
	plan.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE installment_plans SET
			plan_status = $1,
			version = $2,
			updated_at = $3,
			updated_by = $4
		WHERE id = $5 AND version = $6 AND status != 'deleted'`

	q := r.db.GetQuerier(ctx)
	result, err := q.ExecContext(ctx, query,
		plan.PlanStatus, plan.Version, plan.UpdatedAt, plan.UpdatedBy,
		plan.ID, expectedVersion)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update installment plan").
			Mark(ierr.ErrDatabase)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to read update result").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("plan version conflict").
			WithHint("The plan was modified concurrently, retry with the latest version").
			WithReportableDetails(map[string]any{
				"plan_id":          plan.ID,
				"expected_version": expectedVersion,
			}).
			Mark(ierr.ErrVersionConflict)
	}
	return nil
}

func (r *installmentRepository) GetInstallment(ctx context.Context, id string) (*installment.Installment, error) {
	var row installmentRow
	query := `SELECT * FROM installments WHERE id = $1`

	q := r.db.GetQuerier(ctx)
	if err := q.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("installment not found").
				WithHintf("Installment %s does not exist", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get installment").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain(), nil
}

// ApplyPayment credits a payment additively, so two concurrent applications
// of different payments to the same installment both land. The paid date only
// moves forward and the receipt number is kept once set.
func (r *installmentRepository) ApplyPayment(ctx context.Context, installmentID string, amount decimal.Decimal, paidDate time.Time, receiptNumber string) error {
	query := `
		UPDATE installments SET
			paid_amount = paid_amount + $1,
			paid_date = GREATEST(COALESCE(paid_date, $2), $2),
			receipt_number = CASE WHEN $3 = '' THEN receipt_number ELSE $3 END,
			updated_at = $4,
			updated_by = $5
		WHERE id = $6`

	q := r.db.GetQuerier(ctx)
	result, err := q.ExecContext(ctx, query,
		amount, paidDate, receiptNumber,
		time.Now().UTC(), types.GetUserID(ctx), installmentID)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to apply payment to installment").
			Mark(ierr.ErrDatabase)
	}
	return requireRowAffected(result, "installment", installmentID)
}

func (r *installmentRepository) CountByFeeStructure(ctx context.Context, feeStructureID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM installment_plans WHERE fee_structure_id = $1 AND status != $2`

	q := r.db.GetQuerier(ctx)
	if err := q.GetContext(ctx, &count, query, feeStructureID, types.StatusDeleted); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count plans for fee structure").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}
