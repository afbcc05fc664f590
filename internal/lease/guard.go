package lease

import "github.com/renthub/home-rental/internal/model"

// Principal identifies an authenticated caller.  It carries only what
// authorization needs: the user ID and the role claim from the token.
type Principal struct {
	ID   uint64
	Role string
}

// Action enumerates the operations the guard knows how to authorize.
type Action string

const (
	ActionCreateBooking      Action = "create_booking"
	ActionDecideBooking      Action = "decide_booking"
	ActionProposeDuration    Action = "propose_duration"
	ActionApproveDuration    Action = "approve_duration"
	ActionRespondAgreement   Action = "respond_agreement"
	ActionSetAgreementStatus Action = "set_agreement_status"
	ActionPayDeposit         Action = "pay_deposit"
	ActionRecordRent         Action = "record_rent"
)

// Ownership carries the ownership fields of the target entity.  The
// guard compares these against the principal rather than consulting a
// static permission table.
type Ownership struct {
	TenantID uint64
	OwnerID  uint64
}

// actionScope describes how one action is gated: which role it is
// scoped to, and whether an admin may perform it regardless of
// ownership.  Signing actions are tenant-only even for admins, since a
// signature must come from the contract party itself.
type actionScope struct {
	role    string
	adminOk bool
}

var actionScopes = map[Action]actionScope{
	ActionCreateBooking:      {role: model.RoleTenant, adminOk: true},
	ActionDecideBooking:      {role: model.RoleOwner, adminOk: true},
	ActionProposeDuration:    {role: model.RoleTenant, adminOk: true},
	ActionApproveDuration:    {role: model.RoleOwner, adminOk: true},
	ActionRespondAgreement:   {role: model.RoleTenant, adminOk: false},
	ActionSetAgreementStatus: {role: model.RoleOwner, adminOk: true},
	ActionPayDeposit:         {role: model.RoleTenant, adminOk: true},
	ActionRecordRent:         {role: model.RoleTenant, adminOk: true},
}

// Authorize decides whether the principal may perform action on an
// entity with the given ownership fields.  The entity must already be
// known to exist: absence is reported as ErrNotFound by the caller
// before authorization runs, so a denial here is always ErrForbidden.
func Authorize(p Principal, action Action, own Ownership) error {
	scope, ok := actionScopes[action]
	if !ok {
		return ErrForbidden
	}
	if p.Role == model.RoleAdmin {
		if scope.adminOk {
			return nil
		}
		// Tenant-only signing actions: an admin may still sign when
		// they are themselves the agreement's tenant.
		if p.ID == own.TenantID {
			return nil
		}
		return ErrForbidden
	}
	if p.Role != scope.role {
		return ErrForbidden
	}
	switch scope.role {
	case model.RoleOwner:
		if p.ID != own.OwnerID {
			return ErrForbidden
		}
	case model.RoleTenant:
		if p.ID != own.TenantID {
			return ErrForbidden
		}
	}
	return nil
}
