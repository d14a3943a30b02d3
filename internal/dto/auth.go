package dto

import (
	"time"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/domain"
)

// LoginRequest represents login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents the common registration body
type RegisterRequest struct {
	FullName string `json:"fullName" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// TeacherRegisterRequest represents teacher registration body
type TeacherRegisterRequest struct {
	RegisterRequest
	Qualification   string `json:"qualification"`
	ExperienceYears int    `json:"experienceYears" binding:"gte=0"`
	Specialization  string `json:"specialization"`
	Bio             string `json:"bio"`
}

// Profile returns the teacher profile carried by the request
func (r *TeacherRegisterRequest) Profile() *domain.TeacherProfile {
	return &domain.TeacherProfile{
		Qualification:   r.Qualification,
		ExperienceYears: r.ExperienceYears,
		Specialization:  r.Specialization,
		Bio:             r.Bio,
	}
}

// StudentRegisterRequest represents student registration body
type StudentRegisterRequest struct {
	RegisterRequest
	Age           int    `json:"age" binding:"gte=0,lte=120"`
	ClassLevel    string `json:"classLevel"`
	ParentName    string `json:"parentName"`
	ContactNumber string `json:"contactNumber"`
}

// Profile returns the student profile carried by the request
func (r *StudentRegisterRequest) Profile() *domain.StudentProfile {
	return &domain.StudentProfile{
		Age:           r.Age,
		ClassLevel:    r.ClassLevel,
		ParentName:    r.ParentName,
		ContactNumber: r.ContactNumber,
	}
}

// TokenResponse carries a freshly issued access token
type TokenResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
}

// LoginResult is what a successful login yields; the refresh token goes
// to the cookie only
type LoginResult struct {
	AccessToken  string
	RefreshToken string
}

// UserResponse represents the caller's account
type UserResponse struct {
	ID        int64  `json:"id"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

// NewUserResponse converts a domain user
func NewUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      string(u.Role),
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// UpdateUserStatusRequest represents admin status change body
type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
