// Package principal carries the authenticated caller into the services and
// centralizes every role and ownership decision.
package principal

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RoleCreator = "creator"
	RoleStaff   = "staff"
	RoleAdmin   = "admin"
)

// roleAliases maps legacy role names issued by the identity service.
var roleAliases = map[string]string{
	"chef":         RoleCreator,
	"food_creator": RoleCreator,
}

const localsKey = "principal"

type Principal struct {
	ID          uuid.UUID `json:"id"`
	Roles       []string  `json:"roles"`
	DisplayName string    `json:"display_name,omitempty"`
}

func (p *Principal) Has(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// CanAuthor reports whether p may create video posts and live sessions.
func CanAuthor(p *Principal) bool {
	return p.Has(RoleCreator) || p.Has(RoleStaff) || p.Has(RoleAdmin)
}

// CanModerate reports whether p may work the report queue.
func CanModerate(p *Principal) bool {
	return p.Has(RoleStaff) || p.Has(RoleAdmin)
}

func IsAdmin(p *Principal) bool {
	return p.Has(RoleAdmin)
}

// CanMutate reports whether p may change a resource owned by ownerID.
func CanMutate(p *Principal, ownerID uuid.UUID) bool {
	if p == nil {
		return false
	}
	return p.ID == ownerID || IsAdmin(p)
}

// CanHost reports whether p may drive a live session hosted by hostID.
func CanHost(p *Principal, hostID uuid.UUID) bool {
	if p == nil {
		return false
	}
	return p.ID == hostID || CanModerate(p)
}

// FromClaims builds a principal from verified JWT claims. IDs in adminIDs
// are granted the admin role.
func FromClaims(claims jwt.MapClaims, adminIDs []string) (*Principal, error) {
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, errors.New("missing sub claim")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, errors.New("invalid sub claim")
	}

	p := &Principal{ID: id}
	if name, ok := claims["name"].(string); ok {
		p.DisplayName = name
	}

	seen := make(map[string]bool)
	add := func(role string) {
		role = strings.ToLower(strings.TrimSpace(role))
		if alias, ok := roleAliases[role]; ok {
			role = alias
		}
		if role != "" && !seen[role] {
			seen[role] = true
			p.Roles = append(p.Roles, role)
		}
	}
	switch roles := claims["roles"].(type) {
	case []interface{}:
		for _, r := range roles {
			if s, ok := r.(string); ok {
				add(s)
			}
		}
	case string:
		for _, r := range strings.Split(roles, ",") {
			add(r)
		}
	}
	if role, ok := claims["role"].(string); ok {
		add(role)
	}
	for _, adminID := range adminIDs {
		if adminID == sub {
			add(RoleAdmin)
		}
	}
	return p, nil
}

// Set stores p on the request.
func Set(c *fiber.Ctx, p *Principal) {
	c.Locals(localsKey, p)
}

// FromContext returns the request principal, or nil for anonymous callers.
func FromContext(c *fiber.Ctx) *Principal {
	if p, ok := c.Locals(localsKey).(*Principal); ok {
		return p
	}
	return nil
}
