package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role represents user role
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// ParseRole parses a role case-insensitively
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleTeacher:
		return RoleTeacher, nil
	case RoleStudent:
		return RoleStudent, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// Authority returns the granted authority string carried in tokens, e.g. ROLE_STUDENT
func (r Role) Authority() string {
	return "ROLE_" + strings.ToUpper(string(r))
}

// RoleFromAuthority is the inverse of Role.Authority
func RoleFromAuthority(authority string) (Role, error) {
	name, ok := strings.CutPrefix(strings.TrimSpace(authority), "ROLE_")
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, authority)
	}
	return ParseRole(name)
}

// UserStatus represents the account lifecycle state
type UserStatus string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusInactive  UserStatus = "inactive"
)

// ParseUserStatus parses a user status case-insensitively
func ParseUserStatus(s string) (UserStatus, error) {
	switch UserStatus(strings.ToLower(strings.TrimSpace(s))) {
	case UserStatusPending:
		return UserStatusPending, nil
	case UserStatusActive:
		return UserStatusActive, nil
	case UserStatusSuspended:
		return UserStatusSuspended, nil
	case UserStatusInactive:
		return UserStatusInactive, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// User represents a user entity
type User struct {
	ID           int64      `json:"id"`
	FullName     string     `json:"fullName"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Authorities returns the authorities granted to the user
func (u *User) Authorities() []string {
	return []string{u.Role.Authority()}
}

// CanAuthenticate reports whether the account may obtain tokens.
// Pending accounts can sign in; only suspended ones are locked out.
func (u *User) CanAuthenticate() bool {
	return u.Status != UserStatusSuspended
}

// TeacherProfile holds teacher-specific registration data
type TeacherProfile struct {
	UserID          int64  `json:"userId"`
	Qualification   string `json:"qualification"`
	ExperienceYears int    `json:"experienceYears"`
	Specialization  string `json:"specialization"`
	Bio             string `json:"bio"`
}

// StudentProfile holds student-specific registration data
type StudentProfile struct {
	UserID        int64  `json:"userId"`
	Age           int    `json:"age"`
	ClassLevel    string `json:"classLevel"`
	ParentName    string `json:"parentName"`
	ContactNumber string `json:"contactNumber"`
}
