package timeproof

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wealthpath/edu-gateway/internal/curriculum"
)

const tokenIssuer = "edu-gateway/timeproof"

var (
	ErrMalformed       = errors.New("time token malformed")
	ErrExpired         = errors.New("time token expired")
	ErrAlreadyRedeemed = errors.New("time token already redeemed")
	ErrMismatched      = errors.New("time token bound to a different task")
)

// Binding names the task slot a token was issued for. Redemption binds the
// token permanently to this triple; a token for one task can never score
// another.
type Binding struct {
	Tutorial curriculum.Tutorial
	Unit     int
	Task     int
}

func (b Binding) String() string {
	return fmt.Sprintf("%s/unit%d/task%d", b.Tutorial, b.Unit, b.Task)
}

type claims struct {
	Tutorial string `json:"tut"`
	Unit     int    `json:"unit"`
	Task     int    `json:"task"`
	jwt.RegisteredClaims
}

func signToken(hmac []byte, b Binding, ttl time.Duration, now time.Time) (string, error) {
	c := &claims{
		Tutorial: string(b.Tutorial),
		Unit:     b.Unit,
		Task:     b.Task,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString(hmac)
}

func parseToken(hmac []byte, tokenStr string, now time.Time) (*claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return hmac, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrMalformed
	}
	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid || c.ID == "" || c.IssuedAt == nil {
		return nil, ErrMalformed
	}
	return c, nil
}

// wellFormed is the cheap local shape check used to reject garbage before a
// round trip: three dot-separated non-empty segments.
func wellFormed(tokenStr string) bool {
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}
