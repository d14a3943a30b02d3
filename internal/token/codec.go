package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token has expired")
	ErrMalformed        = errors.New("token is malformed")
)

// Class selects which signing key a token is issued and verified with
type Class int

const (
	Access Class = iota
	Refresh
)

func (c Class) String() string {
	if c == Refresh {
		return "refresh"
	}
	return "access"
}

// Subject is what a token is issued for
type Subject struct {
	Email       string
	FullName    string
	Authorities []string
}

// Claims is the signed payload of both access and refresh tokens
type Claims struct {
	Username    string `json:"username"`
	Authorities string `json:"authorities"`
	Nonce       string `json:"nonce"`
	jwt.RegisteredClaims
}

// AuthorityList splits the comma-joined authorities claim
func (c *Claims) AuthorityList() []string {
	if c.Authorities == "" {
		return nil
	}
	parts := strings.Split(c.Authorities, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// KeyConfig is the key material and lifetime of one token class.
// Previous secrets verify tokens signed before a rotation but never sign.
type KeyConfig struct {
	Secret          string
	PreviousSecrets []string
	TTL             time.Duration
}

// Config holds codec configuration
type Config struct {
	Issuer  string
	Access  KeyConfig
	Refresh KeyConfig
}

type keySet struct {
	signing []byte
	verify  [][]byte
	ttl     time.Duration
}

// Codec signs and verifies HS256 tokens
type Codec struct {
	issuer string
	keys   map[Class]keySet
	now    func() time.Time
}

// NewCodec creates a codec; both secrets are required and must differ
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.Access.Secret == "" || cfg.Refresh.Secret == "" {
		return nil, errors.New("access and refresh secrets are required")
	}
	if cfg.Access.Secret == cfg.Refresh.Secret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "TVM"
	}
	if cfg.Access.TTL <= 0 {
		cfg.Access.TTL = 15 * time.Minute
	}
	if cfg.Refresh.TTL <= 0 {
		cfg.Refresh.TTL = 7 * 24 * time.Hour
	}

	return &Codec{
		issuer: cfg.Issuer,
		keys: map[Class]keySet{
			Access:  newKeySet(cfg.Access),
			Refresh: newKeySet(cfg.Refresh),
		},
		now: time.Now,
	}, nil
}

func newKeySet(kc KeyConfig) keySet {
	ks := keySet{signing: []byte(kc.Secret), ttl: kc.TTL}
	ks.verify = append(ks.verify, ks.signing)
	for _, s := range kc.PreviousSecrets {
		if s != "" {
			ks.verify = append(ks.verify, []byte(s))
		}
	}
	return ks
}

// TTL returns the lifetime of tokens of class
func (c *Codec) TTL(class Class) time.Duration {
	return c.keys[class].ttl
}

// Issue signs a new token of class for subject
func (c *Codec) Issue(subject Subject, class Class) (string, *Claims, error) {
	ks := c.keys[class]
	now := c.now()

	claims := &Claims{
		Username:    subject.FullName,
		Authorities: strings.Join(subject.Authorities, ","),
		Nonce:       uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   subject.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ks.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ks.signing)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign %s token: %w", class, err)
	}
	return signed, claims, nil
}

// Verify checks signature and expiry against the keys of class
func (c *Codec) Verify(tokenString string, class Class) (*Claims, error) {
	ks := c.keys[class]
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)

	var lastErr error = ErrInvalidSignature
	for _, key := range ks.verify {
		claims := &Claims{}
		_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err == nil {
			return claims, nil
		}

		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			lastErr = ErrInvalidSignature
			continue
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformed
		default:
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	return nil, lastErr
}
