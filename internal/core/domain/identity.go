// internal/core/domain/identity.go
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is the access role of an authenticated user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleOptica   Role = "optica"
)

// Role ids as stored in the roles table.
var roleIDs = map[Role]int16{
	RoleAdmin:    1,
	RoleEmployee: 2,
	RoleOptica:   3,
}

// ParseRole maps a role name to a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleIDs[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// ID returns the roles table id.
func (r Role) ID() int16 {
	return roleIDs[r]
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleIDs[r]
	return ok
}

// Actor is the authenticated identity performing a request.
type Actor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// User is a stored account.
type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	Role         Role       `json:"role"`
	Active       bool       `json:"active"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"-"`
}

// Actor returns the request identity for u.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Name: u.Name, Role: u.Role}
}

const (
	// WalkInCustomerName is used when a sale has no customer.
	WalkInCustomerName = "Mostrador"
	// OpticaFallbackName is used when an optica account has no name.
	OpticaFallbackName = "Óptica"
)

// CustomerRequest is the customer part of a sale payload.
type CustomerRequest struct {
	ID   *int64
	Name string
}

// Attribution is the resolved customer of a sale.
// NeedsLookup is set when ID must still be checked against the wholesale
// accounts before the sale may proceed.
type Attribution struct {
	CustomerID   *int64
	CustomerName string
	NeedsLookup  bool
}

// AttributeCustomer decides who a sale is for. Optica accounts always buy
// for themselves; the payload's customer fields are ignored for them. Other
// roles may name an optica customer, which the caller must verify.
func AttributeCustomer(actor Actor, req CustomerRequest) Attribution {
	if actor.Role == RoleOptica {
		id := actor.ID
		name := strings.TrimSpace(actor.Name)
		if name == "" {
			name = OpticaFallbackName
		}
		return Attribution{CustomerID: &id, CustomerName: name}
	}

	name := strings.TrimSpace(req.Name)
	if req.ID != nil {
		id := *req.ID
		return Attribution{CustomerID: &id, CustomerName: name, NeedsLookup: true}
	}
	if name == "" {
		name = WalkInCustomerName
	}
	return Attribution{CustomerName: name}
}
