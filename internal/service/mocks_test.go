package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/domain"
)

// mockUserRepository is a mock implementation of UserRepository
type mockUserRepository struct {
	mu              sync.Mutex
	users           map[int64]*domain.User
	emailIndex      map[string]*domain.User
	teacherProfiles map[int64]*domain.TeacherProfile
	studentProfiles map[int64]*domain.StudentProfile
	nextID          int64
	createError     error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:           make(map[int64]*domain.User),
		emailIndex:      make(map[string]*domain.User),
		teacherProfiles: make(map[int64]*domain.TeacherProfile),
		studentProfiles: make(map[int64]*domain.StudentProfile),
	}
}

func (r *mockUserRepository) insert(user *domain.User) error {
	if r.createError != nil {
		return r.createError
	}
	if _, ok := r.emailIndex[user.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	r.emailIndex[user.Email] = user
	return nil
}

func (r *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insert(user)
}

func (r *mockUserRepository) CreateWithTeacherProfile(ctx context.Context, user *domain.User, profile *domain.TeacherProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.insert(user); err != nil {
		return err
	}
	profile.UserID = user.ID
	r.teacherProfiles[user.ID] = profile
	return nil
}

func (r *mockUserRepository) CreateWithStudentProfile(ctx context.Context, user *domain.User, profile *domain.StudentProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.insert(user); err != nil {
		return err
	}
	profile.UserID = user.ID
	r.studentProfiles[user.ID] = profile
	return nil
}

func (r *mockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

func (r *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.emailIndex[email], nil
}

func (r *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.emailIndex[email]
	return ok, nil
}

func (r *mockUserRepository) UpdateStatus(ctx context.Context, id int64, status domain.UserStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.Status = status
	return nil
}

// mockRefreshTokenRepository is a mock implementation of RefreshTokenRepository
type mockRefreshTokenRepository struct {
	records map[string]*domain.RefreshTokenRecord
	nextID  int64
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{records: make(map[string]*domain.RefreshTokenRecord)}
}

func (r *mockRefreshTokenRepository) Create(ctx context.Context, record *domain.RefreshTokenRecord) error {
	r.nextID++
	record.ID = r.nextID
	r.records[record.TokenHash] = record
	return nil
}

func (r *mockRefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshTokenRecord, error) {
	return r.records[tokenHash], nil
}

func (r *mockRefreshTokenRepository) TouchLastUsed(ctx context.Context, id int64, at time.Time) error {
	for _, rec := range r.records {
		if rec.ID == id {
			rec.LastUsedAt = &at
		}
	}
	return nil
}

func (r *mockRefreshTokenRepository) Revoke(ctx context.Context, tokenHash string, at time.Time) (bool, error) {
	rec, ok := r.records[tokenHash]
	if !ok {
		return false, nil
	}
	rec.Revoked = true
	return true, nil
}

func (r *mockRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID int64, at time.Time) (int64, error) {
	var n int64
	for _, rec := range r.records {
		if rec.UserID == userID && !rec.Revoked {
			rec.Revoked = true
			n++
		}
	}
	return n, nil
}

func (r *mockRefreshTokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	var n int64
	for hash, rec := range r.records {
		if int(n) < limit && rec.ExpiresAt.Before(cutoff) {
			delete(r.records, hash)
			n++
		}
	}
	return n, nil
}

func (r *mockRefreshTokenRepository) DeleteRevokedBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	var n int64
	for hash, rec := range r.records {
		if int(n) < limit && rec.Revoked && rec.CreatedAt.Before(cutoff) {
			delete(r.records, hash)
			n++
		}
	}
	return n, nil
}

// mockCatalog implements LevelRepository, ActivityRepository and ContentRepository
type mockCatalog struct {
	levels     map[int64]*domain.CourseLevel
	activities map[int64]*domain.LevelActivity
	contents   map[int64]*domain.LevelContent
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		levels:     make(map[int64]*domain.CourseLevel),
		activities: make(map[int64]*domain.LevelActivity),
		contents:   make(map[int64]*domain.LevelContent),
	}
}

func (c *mockCatalog) addLevel(id, courseID int64) *domain.CourseLevel {
	level := &domain.CourseLevel{ID: id, CourseID: courseID, LevelNumber: int(id), LevelName: "Level"}
	c.levels[id] = level
	return level
}

func (c *mockCatalog) addActivity(a *domain.LevelActivity) *domain.LevelActivity {
	c.activities[a.ID] = a
	return a
}

func (c *mockCatalog) GetByID(ctx context.Context, id int64) (*domain.CourseLevel, error) {
	return c.levels[id], nil
}

// activityRepo exposes the catalog's activity side under ActivityRepository
func (c *mockCatalog) activityRepo() *mockActivityRepository {
	return &mockActivityRepository{catalog: c}
}

type mockActivityRepository struct {
	catalog *mockCatalog
}

// clone hands out copies so callers cannot mutate the stored row
func clone(a *domain.LevelActivity) *domain.LevelActivity {
	cp := *a
	return &cp
}

func (r *mockActivityRepository) GetByID(ctx context.Context, id int64) (*domain.LevelActivity, error) {
	a, ok := r.catalog.activities[id]
	if !ok {
		return nil, nil
	}
	return clone(a), nil
}

func (r *mockActivityRepository) ListByLevel(ctx context.Context, levelID int64) ([]*domain.LevelActivity, error) {
	return r.list(levelID, false), nil
}

func (r *mockActivityRepository) ListRequiredByLevel(ctx context.Context, levelID int64) ([]*domain.LevelActivity, error) {
	return r.list(levelID, true), nil
}

func (r *mockActivityRepository) list(levelID int64, requiredOnly bool) []*domain.LevelActivity {
	var out []*domain.LevelActivity
	for _, a := range r.catalog.activities {
		if a.LevelID == levelID && (!requiredOnly || a.IsRequired) {
			out = append(out, clone(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *mockCatalog) addContent(item *domain.LevelContent) *domain.LevelContent {
	c.contents[item.ID] = item
	return item
}

// contentRepo exposes the catalog's content side under ContentRepository
func (c *mockCatalog) contentRepo() *mockContentRepository {
	return &mockContentRepository{catalog: c}
}

type mockContentRepository struct {
	catalog *mockCatalog
}

func (r *mockContentRepository) GetByID(ctx context.Context, id int64) (*domain.LevelContent, error) {
	return r.catalog.contents[id], nil
}

func (r *mockContentRepository) ListByLevel(ctx context.Context, levelID int64) ([]*domain.LevelContent, error) {
	var out []*domain.LevelContent
	for _, c := range r.catalog.contents {
		if c.LevelID == levelID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// mockSubmissionRepository enforces the (student, activity, attempt) uniqueness
type mockSubmissionRepository struct {
	mu          sync.Mutex
	submissions []*domain.LevelActivitySubmission
	nextID      int64
	// racers inserts a competing row before the next N creates, simulating concurrent writers
	racers int
}

func newMockSubmissionRepository() *mockSubmissionRepository {
	return &mockSubmissionRepository{}
}

func (r *mockSubmissionRepository) CountByStudentAndActivity(ctx context.Context, studentID, activityID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.submissions {
		if s.StudentID == studentID && s.ActivityID == activityID {
			n++
		}
	}
	return n, nil
}

func (r *mockSubmissionRepository) Create(ctx context.Context, sub *domain.LevelActivitySubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.racers > 0 {
		r.racers--
		r.nextID++
		r.submissions = append(r.submissions, &domain.LevelActivitySubmission{
			ID:            r.nextID,
			StudentID:     sub.StudentID,
			ActivityID:    sub.ActivityID,
			AttemptNumber: sub.AttemptNumber,
			Status:        domain.SubmissionSubmitted,
			SubmittedAt:   sub.SubmittedAt,
		})
	}
	for _, s := range r.submissions {
		if s.StudentID == sub.StudentID && s.ActivityID == sub.ActivityID && s.AttemptNumber == sub.AttemptNumber {
			return domain.ErrAttemptConflict
		}
	}
	r.nextID++
	sub.ID = r.nextID
	cp := *sub
	r.submissions = append(r.submissions, &cp)
	return nil
}

func (r *mockSubmissionRepository) GetByID(ctx context.Context, id int64) (*domain.LevelActivitySubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.submissions {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *mockSubmissionRepository) UpdateGrade(ctx context.Context, sub *domain.LevelActivitySubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.submissions {
		if s.ID == sub.ID {
			cp := *sub
			r.submissions[i] = &cp
			return nil
		}
	}
	return domain.ErrSubmissionNotFound
}

func (r *mockSubmissionRepository) GetLatest(ctx context.Context, studentID, activityID int64) (*domain.LevelActivitySubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.LevelActivitySubmission
	for _, s := range r.submissions {
		if s.StudentID == studentID && s.ActivityID == activityID {
			if latest == nil || s.AttemptNumber > latest.AttemptNumber {
				latest = s
			}
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *mockSubmissionRepository) ListByStudentAndLevel(ctx context.Context, studentID, levelID int64) ([]*domain.LevelActivitySubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.LevelActivitySubmission
	for _, s := range r.submissions {
		if s.StudentID == studentID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

// mockProgressRepository is a mock implementation of ProgressRepository
type mockProgressRepository struct {
	rows   map[[3]int64]*domain.StudentProgress
	nextID int64
	saves  int
}

func newMockProgressRepository() *mockProgressRepository {
	return &mockProgressRepository{rows: make(map[[3]int64]*domain.StudentProgress)}
}

func (r *mockProgressRepository) Get(ctx context.Context, studentID, courseID, levelID int64) (*domain.StudentProgress, error) {
	p, ok := r.rows[[3]int64{studentID, courseID, levelID}]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *mockProgressRepository) Save(ctx context.Context, p *domain.StudentProgress) error {
	r.saves++
	key := [3]int64{p.StudentID, p.CourseID, p.LevelID}
	if existing, ok := r.rows[key]; ok {
		p.ID = existing.ID
	} else {
		r.nextID++
		p.ID = r.nextID
	}
	cp := *p
	r.rows[key] = &cp
	return nil
}

func (r *mockProgressRepository) ListByStudent(ctx context.Context, studentID int64) ([]*domain.StudentProgress, error) {
	var out []*domain.StudentProgress
	for _, p := range r.rows {
		if p.StudentID == studentID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *mockProgressRepository) ListByStudentAndCourse(ctx context.Context, studentID, courseID int64) ([]*domain.StudentProgress, error) {
	all, _ := r.ListByStudent(ctx, studentID)
	var out []*domain.StudentProgress
	for _, p := range all {
		if p.CourseID == courseID {
			out = append(out, p)
		}
	}
	return out, nil
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []*domain.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event *domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.EventType
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
