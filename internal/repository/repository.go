package repository

import (
	"context"
	"time"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Not-found lookups return (nil, nil); callers decide which domain error applies.

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create inserts a user and sets its ID. Returns domain.ErrDuplicateEmail on email conflict
	Create(ctx context.Context, user *domain.User) error
	// CreateWithTeacherProfile inserts a user and its teacher profile atomically
	CreateWithTeacherProfile(ctx context.Context, user *domain.User, profile *domain.TeacherProfile) error
	// CreateWithStudentProfile inserts a user and its student profile atomically
	CreateWithStudentProfile(ctx context.Context, user *domain.User, profile *domain.StudentProfile) error
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// ExistsByEmail checks if a user exists with the given email
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// UpdateStatus sets the lifecycle status of a user
	UpdateStatus(ctx context.Context, id int64, status domain.UserStatus) error
}

// RefreshTokenRepository defines the interface for the refresh token ledger
type RefreshTokenRepository interface {
	// Create inserts a ledger record and sets its ID
	Create(ctx context.Context, record *domain.RefreshTokenRecord) error
	// GetByHash retrieves a record by token hash
	GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshTokenRecord, error)
	// TouchLastUsed stamps the last-used time of a record
	TouchLastUsed(ctx context.Context, id int64, at time.Time) error
	// Revoke marks the record with tokenHash revoked; reports whether a row matched
	Revoke(ctx context.Context, tokenHash string, at time.Time) (bool, error)
	// RevokeAllForUser revokes every live record of a user
	RevokeAllForUser(ctx context.Context, userID int64, at time.Time) (int64, error)
	// DeleteExpired removes up to limit records whose expiry is before cutoff
	DeleteExpired(ctx context.Context, cutoff time.Time, limit int) (int64, error)
	// DeleteRevokedBefore removes up to limit records revoked before cutoff
	DeleteRevokedBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}

// LevelRepository defines read access to course levels
type LevelRepository interface {
	// GetByID retrieves a level by ID
	GetByID(ctx context.Context, id int64) (*domain.CourseLevel, error)
}

// ActivityRepository defines read access to level activities
type ActivityRepository interface {
	// GetByID retrieves an activity by ID
	GetByID(ctx context.Context, id int64) (*domain.LevelActivity, error)
	// ListByLevel lists all activities of a level in creation order
	ListByLevel(ctx context.Context, levelID int64) ([]*domain.LevelActivity, error)
	// ListRequiredByLevel lists the activities of a level flagged required
	ListRequiredByLevel(ctx context.Context, levelID int64) ([]*domain.LevelActivity, error)
}

// ContentRepository defines read access to level content
type ContentRepository interface {
	// GetByID retrieves a content item by ID
	GetByID(ctx context.Context, id int64) (*domain.LevelContent, error)
	// ListByLevel lists the content of a level by ascending content order
	ListByLevel(ctx context.Context, levelID int64) ([]*domain.LevelContent, error)
}

// SubmissionRepository defines the interface for activity submissions
type SubmissionRepository interface {
	// CountByStudentAndActivity counts a student's attempts at an activity
	CountByStudentAndActivity(ctx context.Context, studentID, activityID int64) (int, error)
	// Create inserts a submission and sets its ID. Returns
	// domain.ErrAttemptConflict when the attempt number is already taken
	Create(ctx context.Context, sub *domain.LevelActivitySubmission) error
	// GetByID retrieves a submission by ID
	GetByID(ctx context.Context, id int64) (*domain.LevelActivitySubmission, error)
	// UpdateGrade persists score, percentage, status, feedback and graded time
	UpdateGrade(ctx context.Context, sub *domain.LevelActivitySubmission) error
	// GetLatest retrieves the highest-numbered attempt of a student at an activity
	GetLatest(ctx context.Context, studentID, activityID int64) (*domain.LevelActivitySubmission, error)
	// ListByStudentAndLevel lists a student's submissions across a level's activities
	ListByStudentAndLevel(ctx context.Context, studentID, levelID int64) ([]*domain.LevelActivitySubmission, error)
}

// ProgressRepository defines the interface for student progress
type ProgressRepository interface {
	// Get retrieves the progress row of a (student, course, level) triple
	Get(ctx context.Context, studentID, courseID, levelID int64) (*domain.StudentProgress, error)
	// Save upserts a progress row on its (student, course, level) key and sets its ID
	Save(ctx context.Context, progress *domain.StudentProgress) error
	// ListByStudent lists all progress rows of a student
	ListByStudent(ctx context.Context, studentID int64) ([]*domain.StudentProgress, error)
	// ListByStudentAndCourse lists a student's progress rows within a course
	ListByStudentAndCourse(ctx context.Context, studentID, courseID int64) ([]*domain.StudentProgress, error)
}

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
