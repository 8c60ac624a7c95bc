package types

import (
	"fmt"

	"github.com/samber/lo"
)

// Status is the lifecycle status of a persisted record. Archived records are
// kept for referential integrity (e.g. a fee structure still referenced by a
// plan) but are excluded from active listings.
type Status string

const (
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
	StatusDeleted   Status = "deleted"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) Validate() error {
	allowed := []Status{
		StatusPublished,
		StatusArchived,
		StatusDeleted,
	}
	if !lo.Contains(allowed, s) {
		return fmt.Errorf("invalid status: %s", s)
	}
	return nil
}
