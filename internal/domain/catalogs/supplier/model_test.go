package supplier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	ctx := context.Background()

	s := NewSupplier("Fresh Farms")
	assert.NoError(t, s.Validate(ctx))
	assert.False(t, s.IsDeleted())

	bad := "not-an-email"
	s.Email = &bad
	assert.Error(t, s.Validate(ctx))

	assert.Error(t, NewSupplier("").Validate(ctx))
}
