package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID        uuid.UUID
	ActiveStoreID *uuid.UUID
	Role          enums.MemberRole
	JTI           string
}

// AccessTokenClaims represents the typed JWT presented by clients.
type AccessTokenClaims struct {
	UserID        uuid.UUID        `json:"user_id"`
	ActiveStoreID *uuid.UUID       `json:"active_store_id,omitempty"`
	Role          enums.MemberRole `json:"role"`
	jwt.RegisteredClaims
}

// IsVendorOf reports whether the claims belong to a vendor acting for storeID.
func (c *AccessTokenClaims) IsVendorOf(storeID uuid.UUID) bool {
	if c == nil || c.ActiveStoreID == nil {
		return false
	}
	if c.Role != enums.MemberRoleVendor && c.Role != enums.MemberRoleAdmin {
		return false
	}
	return *c.ActiveStoreID == storeID
}

func (c *AccessTokenClaims) validate() error {
	if !c.Role.IsValid() {
		return fmt.Errorf("invalid member role %q", c.Role)
	}
	if c.UserID == uuid.Nil {
		return fmt.Errorf("user id is required")
	}
	return nil
}
