package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("security: invalid token")

// AdminClaims are the JWT claims carried by platform admin tokens.
type AdminClaims struct {
	AdminID  uint64 `json:"adminId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// ActorClaims are the JWT claims carried by tenant-scoped user tokens.
type ActorClaims struct {
	UserID   string `json:"userId"`
	TenantID string `json:"tenantId"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// SignAdminToken issues a signed admin JWT valid for the given duration.
func SignAdminToken(secret string, adminID uint64, username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		AdminID:  adminID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseAdminToken validates an admin JWT and returns its claims.
func ParseAdminToken(secret, token string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	parsed, errParse := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(secret), nil
	})
	if errParse != nil || !parsed.Valid {
		return nil, errInvalidToken
	}
	return claims, nil
}

// SignActorToken issues a signed tenant-actor JWT valid for the given
// duration.
func SignActorToken(secret, userID, tenantID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := ActorClaims{
		UserID:   userID,
		TenantID: tenantID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseActorToken validates a tenant-actor JWT and returns its claims.
func ParseActorToken(secret, token string) (*ActorClaims, error) {
	claims := &ActorClaims{}
	parsed, errParse := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(secret), nil
	})
	if errParse != nil || !parsed.Valid {
		return nil, errInvalidToken
	}
	return claims, nil
}

// GenerateRandomString returns a hex string of n random bytes.
func GenerateRandomString(n int) (string, error) {
	buf := make([]byte, n)
	if _, errRead := rand.Read(buf); errRead != nil {
		return "", errRead
	}
	return hex.EncodeToString(buf), nil
}
