package lease

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/renthub/home-rental/internal/model"
)

func TestAuthorize(t *testing.T) {
	own := Ownership{TenantID: 10, OwnerID: 20}

	tests := []struct {
		name      string
		principal Principal
		action    Action
		wantErr   error
	}{
		{
			name:      "tenant acts on own booking",
			principal: Principal{ID: 10, Role: model.RoleTenant},
			action:    ActionCreateBooking,
		},
		{
			name:      "tenant acts on another tenant's booking",
			principal: Principal{ID: 11, Role: model.RoleTenant},
			action:    ActionProposeDuration,
			wantErr:   ErrForbidden,
		},
		{
			name:      "owner decides own property's booking",
			principal: Principal{ID: 20, Role: model.RoleOwner},
			action:    ActionDecideBooking,
		},
		{
			name:      "owner decides another owner's booking",
			principal: Principal{ID: 21, Role: model.RoleOwner},
			action:    ActionDecideBooking,
			wantErr:   ErrForbidden,
		},
		{
			name:      "owner attempts a tenant action",
			principal: Principal{ID: 20, Role: model.RoleOwner},
			action:    ActionPayDeposit,
			wantErr:   ErrForbidden,
		},
		{
			name:      "tenant attempts an owner action",
			principal: Principal{ID: 10, Role: model.RoleTenant},
			action:    ActionSetAgreementStatus,
			wantErr:   ErrForbidden,
		},
		{
			name:      "admin bypasses ownership on owner actions",
			principal: Principal{ID: 999, Role: model.RoleAdmin},
			action:    ActionDecideBooking,
		},
		{
			name:      "admin bypasses ownership on tenant actions",
			principal: Principal{ID: 999, Role: model.RoleAdmin},
			action:    ActionPayDeposit,
		},
		{
			name:      "admin cannot sign another tenant's agreement",
			principal: Principal{ID: 999, Role: model.RoleAdmin},
			action:    ActionRespondAgreement,
			wantErr:   ErrForbidden,
		},
		{
			name:      "admin signs their own agreement",
			principal: Principal{ID: 10, Role: model.RoleAdmin},
			action:    ActionRespondAgreement,
		},
		{
			name:      "unknown role",
			principal: Principal{ID: 10, Role: "AUDITOR"},
			action:    ActionCreateBooking,
			wantErr:   ErrForbidden,
		},
		{
			name:      "unknown action",
			principal: Principal{ID: 10, Role: model.RoleTenant},
			action:    Action("drop_tables"),
			wantErr:   ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.principal, tt.action, own)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
