package model

import "time"

// Roles stored in users.role.
const (
	RoleOwner  = "OWNER"
	RoleTenant = "TENANT"
)

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. Handlers define separate response types so the password
// hash never leaves the repository layer.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	Phone        – ten digit phone number (may be empty for owners).
//	Role         – OWNER or TENANT.
//	CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Phone        string    // users.phone
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
}
