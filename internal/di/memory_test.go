package di

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/domain"
)

// memoryStore backs in-memory implementations of every repository
type memoryStore struct {
	mu          sync.Mutex
	users       map[int64]*domain.User
	tokens      map[string]*domain.RefreshTokenRecord
	levels      map[int64]*domain.CourseLevel
	activities  map[int64]*domain.LevelActivity
	contents    map[int64]*domain.LevelContent
	submissions map[int64]*domain.LevelActivitySubmission
	progress    map[[3]int64]*domain.StudentProgress
	nextID      int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:       map[int64]*domain.User{},
		tokens:      map[string]*domain.RefreshTokenRecord{},
		levels:      map[int64]*domain.CourseLevel{},
		activities:  map[int64]*domain.LevelActivity{},
		contents:    map[int64]*domain.LevelContent{},
		submissions: map[int64]*domain.LevelActivitySubmission{},
		progress:    map[[3]int64]*domain.StudentProgress{},
	}
}

func (s *memoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memoryStore) repositories() *Repositories {
	return &Repositories{
		Users:         memoryUsers{s},
		RefreshTokens: memoryTokens{s},
		Levels:        memoryLevels{s},
		Activities:    memoryActivities{s},
		Contents:      memoryContents{s},
		Submissions:   memorySubmissions{s},
		Progress:      memoryProgress{s},
	}
}

type memoryUsers struct{ s *memoryStore }

func (r memoryUsers) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return domain.ErrDuplicateEmail
		}
	}
	user.ID = r.s.id()
	user.CreatedAt = time.Now()
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r memoryUsers) CreateWithTeacherProfile(ctx context.Context, user *domain.User, _ *domain.TeacherProfile) error {
	return r.Create(ctx, user)
}

func (r memoryUsers) CreateWithStudentProfile(ctx context.Context, user *domain.User, _ *domain.StudentProfile) error {
	return r.Create(ctx, user)
}

func (r memoryUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memoryUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	u, err := r.GetByEmail(ctx, email)
	return u != nil, err
}

func (r memoryUsers) UpdateStatus(_ context.Context, id int64, status domain.UserStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		u.Status = status
	}
	return nil
}

type memoryTokens struct{ s *memoryStore }

func (r memoryTokens) Create(_ context.Context, record *domain.RefreshTokenRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	record.ID = r.s.id()
	cp := *record
	r.s.tokens[record.TokenHash] = &cp
	return nil
}

func (r memoryTokens) GetByHash(_ context.Context, tokenHash string) (*domain.RefreshTokenRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rec, ok := r.s.tokens[tokenHash]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, nil
}

func (r memoryTokens) TouchLastUsed(_ context.Context, id int64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.tokens {
		if rec.ID == id {
			rec.LastUsedAt = &at
		}
	}
	return nil
}

func (r memoryTokens) Revoke(_ context.Context, tokenHash string, _ time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.tokens[tokenHash]
	if ok {
		rec.Revoked = true
	}
	return ok, nil
}

func (r memoryTokens) RevokeAllForUser(_ context.Context, userID int64, _ time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, rec := range r.s.tokens {
		if rec.UserID == userID && !rec.Revoked {
			rec.Revoked = true
			n++
		}
	}
	return n, nil
}

func (r memoryTokens) DeleteExpired(context.Context, time.Time, int) (int64, error) {
	return 0, nil
}

func (r memoryTokens) DeleteRevokedBefore(context.Context, time.Time, int) (int64, error) {
	return 0, nil
}

type memoryLevels struct{ s *memoryStore }

func (r memoryLevels) GetByID(_ context.Context, id int64) (*domain.CourseLevel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.levels[id], nil
}

type memoryActivities struct{ s *memoryStore }

func (r memoryActivities) GetByID(_ context.Context, id int64) (*domain.LevelActivity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.activities[id], nil
}

func (r memoryActivities) ListByLevel(_ context.Context, levelID int64) ([]*domain.LevelActivity, error) {
	return r.list(levelID, false), nil
}

func (r memoryActivities) ListRequiredByLevel(_ context.Context, levelID int64) ([]*domain.LevelActivity, error) {
	return r.list(levelID, true), nil
}

func (r memoryActivities) list(levelID int64, requiredOnly bool) []*domain.LevelActivity {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.LevelActivity
	for _, a := range r.s.activities {
		if a.LevelID == levelID && (!requiredOnly || a.IsRequired) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memoryContents struct{ s *memoryStore }

func (r memoryContents) GetByID(_ context.Context, id int64) (*domain.LevelContent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.contents[id], nil
}

func (r memoryContents) ListByLevel(_ context.Context, levelID int64) ([]*domain.LevelContent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.LevelContent
	for _, c := range r.s.contents {
		if c.LevelID == levelID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type memorySubmissions struct{ s *memoryStore }

func (r memorySubmissions) CountByStudentAndActivity(_ context.Context, studentID, activityID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, sub := range r.s.submissions {
		if sub.StudentID == studentID && sub.ActivityID == activityID {
			n++
		}
	}
	return n, nil
}

func (r memorySubmissions) Create(_ context.Context, sub *domain.LevelActivitySubmission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.submissions {
		if existing.StudentID == sub.StudentID && existing.ActivityID == sub.ActivityID && existing.AttemptNumber == sub.AttemptNumber {
			return domain.ErrAttemptConflict
		}
	}
	sub.ID = r.s.id()
	cp := *sub
	r.s.submissions[sub.ID] = &cp
	return nil
}

func (r memorySubmissions) GetByID(_ context.Context, id int64) (*domain.LevelActivitySubmission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sub, ok := r.s.submissions[id]; ok {
		cp := *sub
		return &cp, nil
	}
	return nil, nil
}

func (r memorySubmissions) UpdateGrade(_ context.Context, sub *domain.LevelActivitySubmission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *sub
	r.s.submissions[sub.ID] = &cp
	return nil
}

func (r memorySubmissions) GetLatest(_ context.Context, studentID, activityID int64) (*domain.LevelActivitySubmission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *domain.LevelActivitySubmission
	for _, sub := range r.s.submissions {
		if sub.StudentID == studentID && sub.ActivityID == activityID && (latest == nil || sub.AttemptNumber > latest.AttemptNumber) {
			latest = sub
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r memorySubmissions) ListByStudentAndLevel(_ context.Context, studentID, levelID int64) ([]*domain.LevelActivitySubmission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.LevelActivitySubmission
	for _, sub := range r.s.submissions {
		if a, ok := r.s.activities[sub.ActivityID]; ok && a.LevelID == levelID && sub.StudentID == studentID {
			cp := *sub
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memoryProgress struct{ s *memoryStore }

func (r memoryProgress) Get(_ context.Context, studentID, courseID, levelID int64) (*domain.StudentProgress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.progress[[3]int64{studentID, courseID, levelID}]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r memoryProgress) Save(_ context.Context, p *domain.StudentProgress) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [3]int64{p.StudentID, p.CourseID, p.LevelID}
	if existing, ok := r.s.progress[key]; ok {
		p.ID = existing.ID
	} else {
		p.ID = r.s.id()
	}
	cp := *p
	r.s.progress[key] = &cp
	return nil
}

func (r memoryProgress) ListByStudent(_ context.Context, studentID int64) ([]*domain.StudentProgress, error) {
	return r.list(func(p *domain.StudentProgress) bool { return p.StudentID == studentID }), nil
}

func (r memoryProgress) ListByStudentAndCourse(_ context.Context, studentID, courseID int64) ([]*domain.StudentProgress, error) {
	return r.list(func(p *domain.StudentProgress) bool { return p.StudentID == studentID && p.CourseID == courseID }), nil
}

func (r memoryProgress) list(keep func(*domain.StudentProgress) bool) []*domain.StudentProgress {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.StudentProgress
	for _, p := range r.s.progress {
		if keep(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
