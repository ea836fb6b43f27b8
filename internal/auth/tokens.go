package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"teklip/marketplace/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/errgroup"
)

type TokenKind int

const (
	AccessToken TokenKind = iota
	RefreshToken
)

func (k TokenKind) subjectPrefix() string {
	if k == RefreshToken {
		return "refresh"
	}
	return "token"
}

var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload carried by both token kinds.
type Claims struct {
	Email  string `json:"email"`
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// Payload is the public view of verified claims.
type Payload struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	ID    string `json:"id"`
}

func (c Claims) Payload() Payload {
	return Payload{Sub: c.Subject, Email: c.Email, ID: c.UserID}
}

type signingContext struct {
	secret []byte
	ttl    time.Duration
}

type TokenIssuer struct {
	access  signingContext
	refresh signingContext
	now     func() time.Time
}

func NewTokenIssuer(accessSecret string, accessTTL time.Duration, refreshSecret string, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		access:  signingContext{secret: []byte(accessSecret), ttl: accessTTL},
		refresh: signingContext{secret: []byte(refreshSecret), ttl: refreshTTL},
		now:     time.Now,
	}
}

// WithClock replaces the time source used for iat/exp.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	t.now = now
	return t
}

func (t *TokenIssuer) context(kind TokenKind) signingContext {
	if kind == RefreshToken {
		return t.refresh
	}
	return t.access
}

// Issue signs an access and a refresh token concurrently.
func (t *TokenIssuer) Issue(ctx context.Context, userID, email string) (model.TokenPair, error) {
	var pair model.TokenPair
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		tok, err := t.sign(AccessToken, userID, email)
		pair.AccessToken = tok
		return err
	})
	g.Go(func() error {
		tok, err := t.sign(RefreshToken, userID, email)
		pair.RefreshToken = tok
		return err
	})
	if err := g.Wait(); err != nil {
		return model.TokenPair{}, err
	}
	return pair, nil
}

func (t *TokenIssuer) sign(kind TokenKind, userID, email string) (string, error) {
	marker, err := randomDigits(10)
	if err != nil {
		return "", err
	}
	sc := t.context(kind)
	now := t.now()
	claims := Claims{
		Email:  email,
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   kind.subjectPrefix() + marker,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sc.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sc.secret)
}

// Verify checks signature, signing method and expiry for the given kind. The
// subject prefix must match kind as well, so the kinds stay apart even when
// both secrets are equal.
func (t *TokenIssuer) Verify(kind TokenKind, tokenStr string) (Claims, error) {
	sc := t.context(kind)
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return sc.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.UserID == "" || !strings.HasPrefix(claims.Subject, kind.subjectPrefix()) {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
