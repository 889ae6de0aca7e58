package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/optica-pos/internal/core/domain"
)

func TestAttributeCustomer(t *testing.T) {
	tests := []struct {
		name        string
		actor       domain.Actor
		req         domain.CustomerRequest
		wantID      *int64
		wantName    string
		needsLookup bool
	}{
		{
			name:     "optica_is_forced_to_itself",
			actor:    domain.Actor{ID: 21, Name: "Óptica Centro", Role: domain.RoleOptica},
			req:      domain.CustomerRequest{ID: ptr(int64(99)), Name: "Someone Else"},
			wantID:   ptr(int64(21)),
			wantName: "Óptica Centro",
		},
		{
			name:     "optica_without_name_uses_fallback",
			actor:    domain.Actor{ID: 21, Role: domain.RoleOptica},
			wantID:   ptr(int64(21)),
			wantName: domain.OpticaFallbackName,
		},
		{
			name:     "employee_without_customer_is_walk_in",
			actor:    domain.Actor{ID: 2, Name: "Caja", Role: domain.RoleEmployee},
			wantName: domain.WalkInCustomerName,
		},
		{
			name:     "admin_keeps_free_text_name",
			actor:    domain.Actor{ID: 1, Role: domain.RoleAdmin},
			req:      domain.CustomerRequest{Name: "  Juan Pérez "},
			wantName: "Juan Pérez",
		},
		{
			name:        "employee_with_customer_id_requires_lookup",
			actor:       domain.Actor{ID: 2, Role: domain.RoleEmployee},
			req:         domain.CustomerRequest{ID: ptr(int64(21))},
			wantID:      ptr(int64(21)),
			wantName:    "",
			needsLookup: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.AttributeCustomer(tt.actor, tt.req)

			assert.Equal(t, tt.wantName, got.CustomerName)
			assert.Equal(t, tt.needsLookup, got.NeedsLookup)
			if tt.wantID == nil {
				assert.Nil(t, got.CustomerID)
			} else {
				require.NotNil(t, got.CustomerID)
				assert.Equal(t, *tt.wantID, *got.CustomerID)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	r, err := domain.ParseRole(" Optica ")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOptica, r)
	assert.Equal(t, int16(3), r.ID())

	_, err = domain.ParseRole("cashier")
	assert.Error(t, err)
	assert.False(t, domain.Role("cashier").Valid())
}
