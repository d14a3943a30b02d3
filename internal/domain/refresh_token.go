package domain

import "time"

// RefreshTokenRecord is the ledger entry for an issued refresh token.
// Only the hash of the raw token is ever stored.
type RefreshTokenRecord struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"userId"`
	TokenHash  string     `json:"-"`
	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  time.Time  `json:"expiresAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	UserAgent  string     `json:"userAgent"`
	Revoked    bool       `json:"revoked"`
}

// IsExpired reports whether the record's expiry has passed at now
func (r *RefreshTokenRecord) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Principal is the verified identity of a request, taken from access token
// claims and resolved against the user store
type Principal struct {
	UserID      int64
	Email       string
	FullName    string
	Authorities []string
}

// HasRole reports whether the principal was granted role
func (p *Principal) HasRole(role Role) bool {
	want := role.Authority()
	for _, a := range p.Authorities {
		if a == want {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the principal was granted at least one of roles
func (p *Principal) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}
