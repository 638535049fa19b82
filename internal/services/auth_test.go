package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/reflecta/reflecta-backend/internal/requestdata"
	"github.com/reflecta/reflecta-backend/internal/types"
)

func newAuthForTokens(t *testing.T) *authService {
	t.Helper()
	return &authService{
		log:          testLogger(t),
		jwtSecretKey: "test-secret",
		accessTTL:    time.Hour,
		refreshTTL:   24 * time.Hour,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	as := newAuthForTokens(t)
	user := &types.User{ID: uuid.New(), Role: types.RoleCounselor}

	tok, err := as.generateAccessToken(user)
	if err != nil {
		t.Fatalf("generateAccessToken: %v", err)
	}

	ctx, err := as.SetContextFromToken(context.Background(), tok)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		t.Fatal("no request data in context")
	}
	if rd.UserID != user.ID {
		t.Fatalf("UserID = %s, want %s", rd.UserID, user.ID)
	}
	if rd.Role != types.RoleCounselor {
		t.Fatalf("Role = %q, want counselor", rd.Role)
	}
	if rd.TokenString != tok {
		t.Fatal("TokenString not carried through")
	}
}

func TestSetContextFromTokenRejectsBadTokens(t *testing.T) {
	as := newAuthForTokens(t)

	if _, err := as.SetContextFromToken(context.Background(), "not-a-jwt"); err == nil {
		t.Fatal("malformed token accepted")
	}

	// Token signed with a different key.
	other := newAuthForTokens(t)
	other.jwtSecretKey = "different-secret"
	tok, err := other.generateAccessToken(&types.User{ID: uuid.New(), Role: types.RoleStudent})
	if err != nil {
		t.Fatalf("generateAccessToken: %v", err)
	}
	if _, err := as.SetContextFromToken(context.Background(), tok); err == nil {
		t.Fatal("token with wrong signature accepted")
	}
}

func TestSetContextFromTokenRejectsExpired(t *testing.T) {
	as := newAuthForTokens(t)
	as.accessTTL = -time.Minute
	tok, err := as.generateAccessToken(&types.User{ID: uuid.New(), Role: types.RoleStudent})
	if err != nil {
		t.Fatalf("generateAccessToken: %v", err)
	}
	if _, err := as.SetContextFromToken(context.Background(), tok); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestSetContextFromTokenEmptyString(t *testing.T) {
	as := newAuthForTokens(t)
	ctx, err := as.SetContextFromToken(context.Background(), "")
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if requestdata.GetRequestData(ctx) != nil {
		t.Fatal("empty token should not populate request data")
	}
}
