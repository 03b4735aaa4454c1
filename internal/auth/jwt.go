package auth

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// Issuer claim stamped on every token; verification rejects tokens
	// minted for anything else.
	tokenIssuer = "vigil"

	// Default session length, matching the 7-day auth cookie.
	defaultTokenTTL = 168 * time.Hour
)

var (
	jwtSecret []byte
	tokenTTL  = defaultTokenTTL
)

// InvalidTokenError covers every verification failure: bad signature, wrong
// issuer, expired, malformed.
type InvalidTokenError struct {
	Err error
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("invalid or expired token: %v", e.Err)
}

func (e *InvalidTokenError) Unwrap() error {
	return e.Err
}

// InitJWTSecret loads the signing secret and optional session length from the
// environment. Must be called before any token is issued or verified.
func InitJWTSecret() error {
	secret := os.Getenv("JWT_SECRET")

	if secret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	jwtSecret = []byte(secret)
	tokenTTL = defaultTokenTTL

	if raw := os.Getenv("JWT_TTL_HOURS"); raw != "" {
		hours, err := strconv.Atoi(raw)

		if err != nil || hours <= 0 {
			return fmt.Errorf("invalid JWT_TTL_HOURS %q", raw)
		}

		tokenTTL = time.Duration(hours) * time.Hour
	}

	return nil
}

// GenerateJWT issues a dashboard session token for the user.
func GenerateJWT(userID uint, email string) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"iss":     tokenIssuer,
		"user_id": userID,
		"email":   email,
		"iat":     now.Unix(),
		"exp":     now.Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(jwtSecret)
}

// VerifyJWT checks the signature, issuer, and expiry of a session token.
func VerifyJWT(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())

	if err != nil {
		return nil, &InvalidTokenError{Err: err}
	}

	if !token.Valid {
		return nil, &InvalidTokenError{Err: fmt.Errorf("token is not valid")}
	}

	return token, nil
}
