package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/application/workflow"
	"github.com/stockflow/backend/internal/infrastructure/config"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrInvalidClaims    = errors.New("invalid token claims")
)

// Claims are the access token claims issued by the identity service.
// Workers carry the inventory they are assigned to.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
	InventoryID string `json:"inventory_id,omitempty"`
}

// Actor converts validated claims into the workflow caller
func (c *Claims) Actor() (workflow.Actor, error) {
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return workflow.Actor{}, ErrInvalidClaims
	}
	role := workflow.Role(c.Role)
	if !role.IsValid() {
		return workflow.Actor{}, ErrInvalidClaims
	}
	actor := workflow.Actor{UserID: userID, Role: role}
	if c.InventoryID != "" {
		if actor.InventoryID, err = uuid.Parse(c.InventoryID); err != nil {
			return workflow.Actor{}, ErrInvalidClaims
		}
	}
	return actor, nil
}

// JWTService validates HS256 access tokens
type JWTService struct {
	secret []byte
	issuer string
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{secret: []byte(cfg.Secret), issuer: cfg.Issuer}
}

// Validate parses a token and checks signature, expiry and issuer
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// Issue signs an access token for the actor. Production tokens come from the
// identity service; this is used by tooling and tests.
func (s *JWTService) Issue(actor workflow.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   actor.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: actor.UserID.String(),
		Role:   string(actor.Role),
	}
	if actor.InventoryID != uuid.Nil {
		claims.InventoryID = actor.InventoryID.String()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
