package types

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// StudentCategory represents the admission category of a student. The
// category drives the tuition multiplier applied by the fee calculator.
type StudentCategory string

const (
	StudentCategoryRegular         StudentCategory = "REGULAR"
	StudentCategoryScholarship     StudentCategory = "SCHOLARSHIP"
	StudentCategoryManagementQuota StudentCategory = "MANAGEMENT_QUOTA"
)

// Tuition multipliers per category. These are fixed business constants, not
// per-institution configuration.
var (
	tuitionMultiplierRegular         = decimal.NewFromInt(1)
	tuitionMultiplierScholarship     = decimal.RequireFromString("0.80")
	tuitionMultiplierManagementQuota = decimal.RequireFromString("1.30")
)

func (c StudentCategory) String() string {
	return string(c)
}

func (c StudentCategory) Validate() error {
	allowed := []StudentCategory{
		StudentCategoryRegular,
		StudentCategoryScholarship,
		StudentCategoryManagementQuota,
	}
	if !lo.Contains(allowed, c) {
		return fmt.Errorf("invalid student category: %s", c)
	}
	return nil
}

// TuitionMultiplier returns the multiplier applied to the tuition line for
// this category. An unknown category is an error, never a silent 1.00.
func (c StudentCategory) TuitionMultiplier() (decimal.Decimal, error) {
	switch c {
	case StudentCategoryRegular:
		return tuitionMultiplierRegular, nil
	case StudentCategoryScholarship:
		return tuitionMultiplierScholarship, nil
	case StudentCategoryManagementQuota:
		return tuitionMultiplierManagementQuota, nil
	default:
		return decimal.Zero, fmt.Errorf("unknown student category: %s", c)
	}
}
