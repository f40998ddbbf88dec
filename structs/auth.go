package structs

import (
	"time"

	"github.com/google/uuid"
)

// AuthClaims are the claims this service consumes from access tokens issued
// by the external auth provider. Tokens are never minted here.
type AuthClaims struct {
	Sub  uuid.UUID `json:"sub"`
	Role string    `json:"role"`
	Iat  time.Time `json:"iat"`
	Exp  time.Time `json:"exp"`
}
