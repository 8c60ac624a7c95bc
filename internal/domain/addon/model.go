package addon

import (
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/types"
	"github.com/shopspring/decimal"
)

// Tier is one priced option of an add-on group (a hostel room class or a
// transport route band). Exactly one tier per group is the default applied
// when a student opts in without choosing.
type Tier struct {
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	IsDefault bool            `json:"is_default"`
}

// Charge is a one-time fee applied verbatim at admission (admission fee,
// caution deposit, ID card, uniform, prospectus).
type Charge struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// Catalog holds the institution's add-on pricing: hostel tiers, transport
// tiers, and configured one-time charges. It is read-mostly reference data.
type Catalog struct {
	ID             string  `json:"id"`
	HostelTiers    []Tier  `json:"hostel_tiers"`
	TransportTiers []Tier  `json:"transport_tiers"`
	OneTimeCharges []Charge `json:"one_time_charges"`

	types.BaseModel
}

// Validate validates the catalog
func (c *Catalog) Validate() error {
	for _, t := range append(append([]Tier{}, c.HostelTiers...), c.TransportTiers...) {
		if t.Name == "" {
			return ierr.NewError("tier name is required").
				WithHint("Every add-on tier needs a name").
				Mark(ierr.ErrValidation)
		}
		if t.Amount.IsNegative() {
			return ierr.NewError("tier amount cannot be negative").
				WithHintf("Tier %s has a negative amount", t.Name).
				Mark(ierr.ErrValidation)
		}
	}
	for _, ch := range c.OneTimeCharges {
		if ch.Name == "" {
			return ierr.NewError("one-time charge name is required").
				WithHint("Every one-time charge needs a name").
				Mark(ierr.ErrValidation)
		}
		if ch.Amount.IsNegative() {
			return ierr.NewError("one-time charge amount cannot be negative").
				WithHintf("Charge %s has a negative amount", ch.Name).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

// DefaultHostelTier returns the default hostel tier.
func (c *Catalog) DefaultHostelTier() (*Tier, error) {
	return defaultTier(c.HostelTiers, types.AdditionalFeeHostel)
}

// DefaultTransportTier returns the default transport tier.
func (c *Catalog) DefaultTransportTier() (*Tier, error) {
	return defaultTier(c.TransportTiers, types.AdditionalFeeTransport)
}

func defaultTier(tiers []Tier, group string) (*Tier, error) {
	for i := range tiers {
		if tiers[i].IsDefault {
			return &tiers[i], nil
		}
	}
	// Fall back to the first tier when none is flagged.
	if len(tiers) > 0 {
		return &tiers[0], nil
	}
	return nil, ierr.NewError("no tier configured").
		WithHintf("The %s add-on has no tiers configured", group).
		Mark(ierr.ErrInvariantViolation)
}

// TableName returns the table name for the addon catalog
func (c *Catalog) TableName() string {
	return "addon_catalogs"
}
