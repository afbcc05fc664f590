package model

// Role names stored in the users.role column and embedded in JWT claims.
// TENANT accounts request bookings and sign agreements, OWNER accounts list
// properties and decide on bookings, ADMIN accounts may perform any action
// except tenant-only signing.
const (
	RoleTenant = "TENANT"
	RoleOwner  = "OWNER"
	RoleAdmin  = "ADMIN"
)
