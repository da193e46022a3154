package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/orderdesk-backend/pkg/config"
	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "orderdesk",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()
	userID := uuid.New()
	storeID := uuid.New()

	payload := AccessTokenPayload{
		UserID:        userID,
		ActiveStoreID: &storeID,
		Role:          enums.MemberRoleVendor,
		JTI:           "access-1",
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.ActiveStoreID == nil || *claims.ActiveStoreID != storeID {
		t.Fatalf("active store id not preserved")
	}
	if claims.Role != enums.MemberRoleVendor {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.ID != "access-1" {
		t.Fatalf("expected jti access-1, got %q", claims.ID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	exp := now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp.UTC(), claims.ExpiresAt.UTC(), diff)
	}
	if !claims.IsVendorOf(storeID) {
		t.Fatalf("expected vendor of %s", storeID)
	}
	if claims.IsVendorOf(uuid.New()) {
		t.Fatalf("vendor must not match another store")
	}
}

func TestIsVendorOfRejectsBuyers(t *testing.T) {
	storeID := uuid.New()
	claims := &AccessTokenClaims{UserID: uuid.New(), ActiveStoreID: &storeID, Role: enums.MemberRoleBuyer}
	if claims.IsVendorOf(storeID) {
		t.Fatal("buyers never act for a store")
	}
	var nilClaims *AccessTokenClaims
	if nilClaims.IsVendorOf(storeID) {
		t.Fatal("nil claims never match")
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "orderdesk",
		ExpirationMinutes: 10,
	}
	payload := AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.MemberRoleBuyer,
	}

	token, err := MintAccessToken(cfg, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	if _, err = ParseAccessToken(cfg, token+"x"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected invalid signature error, got %v", err)
	}

	other := cfg
	other.Issuer = "someone-else"
	if _, err = ParseAccessToken(other, token); err == nil {
		t.Fatal("expected issuer mismatch error")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "orderdesk",
		ExpirationMinutes: 15,
	}
	payload := AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.MemberRoleAdmin,
	}

	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = ParseAccessToken(cfg, token)
	if err == nil {
		t.Fatal("expected expiration error")
	}
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMintAccessTokenInvalidRole(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "orderdesk",
		ExpirationMinutes: 5,
	}
	payload := AccessTokenPayload{
		UserID: uuid.New(),
		Role:   "",
	}

	if _, err := MintAccessToken(cfg, time.Now(), payload); err == nil {
		t.Fatal("expected invalid role error")
	}
}

func TestParseAccessTokenToleratesClockSkew(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "orderdesk", ExpirationMinutes: 1}
	payload := AccessTokenPayload{UserID: uuid.New(), Role: enums.MemberRoleBuyer}

	// Expired ten seconds ago, inside the leeway.
	token, err := MintAccessToken(cfg, time.Now().Add(-70*time.Second), payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err != nil {
		t.Fatalf("expected token within skew to parse: %v", err)
	}
}

func TestMintAccessTokenRejectsBadConfig(t *testing.T) {
	payload := AccessTokenPayload{UserID: uuid.New(), Role: enums.MemberRoleBuyer}
	cases := []config.JWTConfig{
		{Issuer: "orderdesk", ExpirationMinutes: 5},
		{Secret: "secret", Issuer: "  ", ExpirationMinutes: 5},
		{Secret: "secret", Issuer: "orderdesk"},
	}
	for i, cfg := range cases {
		if _, err := MintAccessToken(cfg, time.Now(), payload); err == nil {
			t.Fatalf("case %d: expected config error", i)
		}
	}
	valid := config.JWTConfig{Secret: "secret", Issuer: "orderdesk", ExpirationMinutes: 5}
	if _, err := MintAccessToken(valid, time.Now(), AccessTokenPayload{Role: enums.MemberRoleBuyer}); err == nil {
		t.Fatal("expected missing user id error")
	}
}
