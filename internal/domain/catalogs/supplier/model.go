// Package supplier provides the Supplier catalog.
package supplier

import (
	"context"
	"regexp"

	"supplyscope/internal/core/apperror"
	"supplyscope/internal/core/entity"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Supplier is a vendor that delivers batches.
// CreatedAt doubles as the start of the supplier's activity window for scoring.
type Supplier struct {
	entity.Catalog

	ContactName *string `db:"contact_name" json:"contactName,omitempty"`
	Email       *string `db:"email" json:"email,omitempty"`
	Phone       *string `db:"phone" json:"phone,omitempty"`
	Address     *string `db:"address" json:"address,omitempty"`
}

// NewSupplier creates a new Supplier with required fields.
func NewSupplier(name string) *Supplier {
	return &Supplier{Catalog: entity.NewCatalog(name)}
}

// Validate implements entity.Validatable interface.
func (s *Supplier) Validate(ctx context.Context) error {
	if err := s.Catalog.Validate(ctx); err != nil {
		return err
	}
	if s.Email != nil && *s.Email != "" && !emailRE.MatchString(*s.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}
	return nil
}
