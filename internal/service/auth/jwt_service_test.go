package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-reports/internal/domain"
	"github.com/seu-repo/sigec-reports/internal/mocks"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func TestJWTService_RoundTrip(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service := NewJWTService("test-secret-key", "sigec-ve", 15*time.Minute, mocks.NewMockCache(), newTestLogger())
	viewer := domain.Viewer{ID: "owner-1", OrgID: "org-1", Capability: domain.CapabilitySwap, Role: "owner"}

	// Act
	token, err := service.GenerateAccessToken(viewer)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	got, err := service.ValidateToken(ctx, token)

	// Assert
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if *got != viewer {
		t.Errorf("expected %+v, got %+v", viewer, *got)
	}
}

func TestJWTService_RejectsWrongSecretAndIssuer(t *testing.T) {
	ctx := context.Background()
	issuer := NewJWTService("secret-a", "sigec-ve", time.Minute, nil, zap.NewNop())
	token, _ := issuer.GenerateAccessToken(domain.Viewer{ID: "owner-1"})

	other := NewJWTService("secret-b", "sigec-ve", time.Minute, nil, zap.NewNop())
	if _, err := other.ValidateToken(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong secret, got %v", err)
	}

	otherIssuer := NewJWTService("secret-a", "someone-else", time.Minute, nil, zap.NewNop())
	if _, err := otherIssuer.ValidateToken(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong issuer, got %v", err)
	}
}

func TestJWTService_RejectsExpired(t *testing.T) {
	service := NewJWTService("secret", "", -time.Minute, nil, zap.NewNop())
	token, _ := service.GenerateAccessToken(domain.Viewer{ID: "owner-1"})

	if _, err := service.ValidateToken(context.Background(), token); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestJWTService_RejectsNonAccessAndBadCapability(t *testing.T) {
	ctx := context.Background()
	service := NewJWTService("secret", "", time.Minute, nil, zap.NewNop())

	sign := func(claims ViewerClaims) string {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Minute))
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		if err != nil {
			t.Fatalf("failed to sign: %v", err)
		}
		return token
	}

	refresh := sign(ViewerClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "owner-1"}, Type: "refresh"})
	if _, err := service.ValidateToken(ctx, refresh); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected refresh token to be rejected, got %v", err)
	}

	badCap := sign(ViewerClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "owner-1"}, Type: "access", Capability: "SOLAR"})
	if _, err := service.ValidateToken(ctx, badCap); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected unknown capability to be rejected, got %v", err)
	}
}

func TestJWTService_Revocation(t *testing.T) {
	ctx := context.Background()
	cache := mocks.NewMockCache()
	service := NewJWTService("secret", "", time.Minute, cache, zap.NewNop())

	token, _ := service.GenerateAccessToken(domain.Viewer{ID: "owner-1"})

	parsed, _, err := jwt.NewParser().ParseUnverified(token, &ViewerClaims{})
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}
	jti := parsed.Claims.(*ViewerClaims).ID

	if err := service.RevokeToken(ctx, jti); err != nil {
		t.Fatalf("RevokeToken failed: %v", err)
	}

	if _, err := service.ValidateToken(ctx, token); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("expected ErrTokenRevoked, got %v", err)
	}
}
