package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Roles known to the system. Governance endpoints are restricted to
// GovernanceRoles.
const (
	RoleConsultant        = "Consultant"
	RoleKnowledgeChampion = "KnowledgeChampion"
	RoleGovCouncil        = "GovCouncil"
	RoleRegionalManager   = "RegionalManager"
)

var GovernanceRoles = []string{RoleKnowledgeChampion, RoleGovCouncil}

// Claims is the verified identity carried by every authenticated request.
type Claims struct {
	UserID   int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	RegionID int64  `json:"region_id"`
	OfficeID int64  `json:"office_id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies the service's own HS256 tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

func (t *TokenIssuer) Issue(c *Consultant) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   c.ID,
		Name:     c.Name,
		Email:    c.Email,
		Role:     c.Role,
		RegionID: c.RegionID,
		OfficeID: c.OfficeID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (t *TokenIssuer) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
