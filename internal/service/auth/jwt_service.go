package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-reports/internal/domain"
	"github.com/seu-repo/sigec-reports/internal/ports"
)

const tokenTypeAccess = "access"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")
)

// ViewerClaims are the JWT claims of a report viewer.
type ViewerClaims struct {
	jwt.RegisteredClaims
	OrgID      string `json:"org_id,omitempty"`
	Capability string `json:"capability,omitempty"`
	Role       string `json:"role,omitempty"`
	Type       string `json:"type"`
}

// JWTService validates viewer tokens. Revocations live in the cache when one
// is configured.
type JWTService struct {
	secret         string
	issuer         string
	accessDuration time.Duration
	cache          ports.Cache
	log            *zap.Logger
}

func NewJWTService(secret, issuer string, accessDuration time.Duration, cache ports.Cache, log *zap.Logger) *JWTService {
	log.Info("JWT service initialized",
		zap.String("issuer", issuer),
		zap.Duration("access_duration", accessDuration),
	)

	return &JWTService{
		secret:         secret,
		issuer:         issuer,
		accessDuration: accessDuration,
		cache:          cache,
		log:            log,
	}
}

// GenerateAccessToken signs an access token for the viewer.
func (s *JWTService) GenerateAccessToken(viewer domain.Viewer) (string, error) {
	jti := uuid.New().String()
	now := time.Now()

	claims := ViewerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   viewer.ID,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
		OrgID:      viewer.OrgID,
		Capability: string(viewer.Capability),
		Role:       viewer.Role,
		Type:       tokenTypeAccess,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.secret))
	if err != nil {
		s.log.Error("failed to sign access token",
			zap.String("viewer_id", viewer.ID),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	s.log.Debug("access token generated",
		zap.String("viewer_id", viewer.ID),
		zap.String("jti", jti),
	)

	return signedToken, nil
}

// ValidateToken implements ports.AuthService.
func (s *JWTService) ValidateToken(ctx context.Context, tokenString string) (*domain.Viewer, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &ViewerClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.secret), nil
	}, opts...)
	if err != nil {
		s.log.Debug("token validation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*ViewerClaims)
	if !ok || !token.Valid || claims.Subject == "" || claims.Type != tokenTypeAccess {
		return nil, ErrInvalidToken
	}

	var capability domain.OwnerCapability
	if claims.Capability != "" {
		capability, err = domain.ParseOwnerCapability(claims.Capability)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	if s.IsTokenRevoked(ctx, claims.ID) {
		return nil, ErrTokenRevoked
	}

	return &domain.Viewer{
		ID:         claims.Subject,
		OrgID:      claims.OrgID,
		Capability: capability,
		Role:       claims.Role,
	}, nil
}

// RevokeToken blacklists a token ID until it would have expired anyway.
func (s *JWTService) RevokeToken(ctx context.Context, tokenID string) error {
	if s.cache == nil {
		return fmt.Errorf("token revocation requires a cache")
	}

	if err := s.cache.Set(ctx, revokedKey(tokenID), "revoked", s.accessDuration); err != nil {
		s.log.Error("failed to revoke token",
			zap.String("token_id", tokenID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	s.log.Info("token revoked", zap.String("token_id", tokenID))
	return nil
}

// IsTokenRevoked treats cache errors as "not revoked".
func (s *JWTService) IsTokenRevoked(ctx context.Context, tokenID string) bool {
	if s.cache == nil || tokenID == "" {
		return false
	}

	val, err := s.cache.Get(ctx, revokedKey(tokenID))
	if err != nil {
		return false
	}
	return val == "revoked"
}

func revokedKey(tokenID string) string {
	return fmt.Sprintf("revoked_token:%s", tokenID)
}
