package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret"

func TestGenerateAndValidateToken(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken(testSecret, userID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ValidateToken(testSecret, token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user_id: got %v, want %v", claims.UserID, userID)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, uuid.New())
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := ValidateToken("other-secret", token); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	if _, err := ValidateToken(testSecret, "not.a.token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestValidateToken_Expired(t *testing.T) {
	claims := Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := ValidateToken(testSecret, token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestValidateToken_RejectsUnexpectedSigningMethod(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: uuid.New()})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := ValidateToken(testSecret, signed); err == nil {
		t.Fatal("expected error for alg=none token")
	}
}

func TestGenerateRefreshToken_SubjectIsUserID(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateRefreshToken(testSecret, userID)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil {
		t.Fatalf("parse refresh token: %v", err)
	}

	claims := parsed.Claims.(*jwt.RegisteredClaims)
	if claims.Subject != userID.String() {
		t.Errorf("subject: got %s, want %s", claims.Subject, userID)
	}
}
