package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"campus-feedback/backend/internal/model"
	"campus-feedback/backend/internal/repository"
	pkgerrors "campus-feedback/backend/pkg/errors"
)

// 所有 mock 存取的都是副本，未调用 Update 的修改不会落库

// ── Mock UserRepository ──

type mockUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*model.User // key: user_id
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email ||
			(u.StudentID != nil && user.StudentID != nil && *u.StudentID == *user.StudentID) {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%03d", m.seq)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.UserID == id })
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Email == email })
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Username == username })
}

func (m *mockUserRepo) GetByStudentID(_ context.Context, studentID string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.StudentID != nil && *u.StudentID == studentID })
}

func (m *mockUserRepo) find(match func(*model.User) bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *mockUserRepo) List(_ context.Context, role string, offset, limit int) ([]model.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.User
	for _, u := range m.users {
		if role == "" || u.Role == role {
			all = append(all, *u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UserID < all[j].UserID })
	return paginate(all, offset, limit), int64(len(all)), nil
}

// get 测试中直接读取存储状态
func (m *mockUserRepo) get(id string) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp
	}
	return nil
}

// ── Mock PasswordResetRepository ──

type mockPasswordResetRepo struct {
	mu     sync.Mutex
	seq    int
	tokens map[string]*model.PasswordResetToken // key: token_id
}

func newMockPasswordResetRepo() *mockPasswordResetRepo {
	return &mockPasswordResetRepo{tokens: make(map[string]*model.PasswordResetToken)}
}

func (m *mockPasswordResetRepo) Create(_ context.Context, token *model.PasswordResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token.TokenID == "" {
		m.seq++
		token.TokenID = fmt.Sprintf("reset-%03d", m.seq)
	}
	cp := *token
	m.tokens[token.TokenID] = &cp
	return nil
}

func (m *mockPasswordResetRepo) GetUnusedByToken(_ context.Context, token string) (*model.PasswordResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.Token == token && !t.Used {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPasswordResetRepo) MarkUsed(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok || t.Used {
		return false, nil
	}
	t.Used = true
	return true, nil
}

func (m *mockPasswordResetRepo) CountByEmail(_ context.Context, email string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, t := range m.tokens {
		if t.Email == email {
			n++
		}
	}
	return n, nil
}

// latest 返回最近一次签发的令牌
func (m *mockPasswordResetRepo) latest() *model.PasswordResetToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	var last *model.PasswordResetToken
	for _, t := range m.tokens {
		if last == nil || t.TokenID > last.TokenID {
			last = t
		}
	}
	if last == nil {
		return nil
	}
	cp := *last
	return &cp
}

// ── Mock DepartmentRepository ──

type mockDeptRepo struct {
	mu          sync.Mutex
	seq         int
	departments map[string]*model.Department
	categories  *mockCategoryRepo
}

func newMockDeptRepo(categories *mockCategoryRepo) *mockDeptRepo {
	return &mockDeptRepo{departments: make(map[string]*model.Department), categories: categories}
}

func (m *mockDeptRepo) Create(_ context.Context, dept *model.Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if dept.DepartmentID == "" {
		m.seq++
		dept.DepartmentID = fmt.Sprintf("dept-%03d", m.seq)
	}
	cp := *dept
	m.departments[dept.DepartmentID] = &cp
	return nil
}

func (m *mockDeptRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.departments[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) GetByName(_ context.Context, name string) (*model.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.departments {
		if d.Name == name {
			cp := *d
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) List(_ context.Context) ([]model.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Department
	for _, d := range m.departments {
		result = append(result, *d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockDeptRepo) Update(_ context.Context, dept *model.Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *dept
	m.departments[dept.DepartmentID] = &cp
	return nil
}

func (m *mockDeptRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.departments, id)
	return nil
}

func (m *mockDeptRepo) CountCategories(ctx context.Context, departmentID string) (int64, error) {
	cats, _ := m.categories.List(ctx, departmentID)
	return int64(len(cats)), nil
}

func (m *mockDeptRepo) CategoryCounts(ctx context.Context) (map[string]int64, error) {
	cats, _ := m.categories.List(ctx, "")
	counts := make(map[string]int64)
	for _, c := range cats {
		counts[c.DepartmentID]++
	}
	return counts, nil
}

// ── Mock CategoryRepository ──

type mockCategoryRepo struct {
	mu         sync.Mutex
	seq        int
	categories map[string]*model.Category
	feedback   *mockFeedbackRepo
}

func newMockCategoryRepo(feedback *mockFeedbackRepo) *mockCategoryRepo {
	return &mockCategoryRepo{categories: make(map[string]*model.Category), feedback: feedback}
}

func (m *mockCategoryRepo) Create(_ context.Context, cat *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cat.CategoryID == "" {
		m.seq++
		cat.CategoryID = fmt.Sprintf("cat-%03d", m.seq)
	}
	cp := *cat
	m.categories[cat.CategoryID] = &cp
	return nil
}

func (m *mockCategoryRepo) GetByID(_ context.Context, id string) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.categories[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCategoryRepo) GetByName(_ context.Context, departmentID, name string) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.DepartmentID == departmentID && c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCategoryRepo) List(_ context.Context, departmentID string) ([]model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Category
	for _, c := range m.categories {
		if departmentID == "" || c.DepartmentID == departmentID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockCategoryRepo) Update(_ context.Context, cat *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *cat
	m.categories[cat.CategoryID] = &cp
	return nil
}

func (m *mockCategoryRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepo) CountFeedback(ctx context.Context, categoryID string) (int64, error) {
	_, total, _ := m.feedback.ListWithFilters(ctx, repository.FeedbackFilter{CategoryID: categoryID})
	return total, nil
}

// ── Mock FeedbackRepository ──

type mockFeedbackRepo struct {
	mu       sync.Mutex
	seq      int
	feedback map[string]*model.Feedback
}

func newMockFeedbackRepo() *mockFeedbackRepo {
	return &mockFeedbackRepo{feedback: make(map[string]*model.Feedback)}
}

func (m *mockFeedbackRepo) Create(_ context.Context, fb *model.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if fb.FeedbackID == "" {
		m.seq++
		fb.FeedbackID = fmt.Sprintf("fb-%03d", m.seq)
	}
	cp := *fb
	m.feedback[fb.FeedbackID] = &cp
	return nil
}

func (m *mockFeedbackRepo) GetByID(_ context.Context, id string) (*model.Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.feedback[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// Update 与真实实现一致的乐观锁语义
func (m *mockFeedbackRepo) Update(_ context.Context, fb *model.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.feedback[fb.FeedbackID]
	if !ok || stored.Version != fb.Version {
		return pkgerrors.ErrOptimisticLock
	}
	fb.Version++
	cp := *fb
	m.feedback[fb.FeedbackID] = &cp
	return nil
}

func (m *mockFeedbackRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.feedback, id)
	return nil
}

func (m *mockFeedbackRepo) ListWithFilters(_ context.Context, filter repository.FeedbackFilter) ([]model.Feedback, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var all []model.Feedback
	for _, f := range m.feedback {
		if filter.Status != "" && string(f.Status) != filter.Status {
			continue
		}
		if filter.Priority != "" && string(f.Priority) != filter.Priority {
			continue
		}
		if filter.CategoryID != "" && f.CategoryID != filter.CategoryID {
			continue
		}
		if filter.UserID != "" && f.UserID != filter.UserID {
			continue
		}
		if filter.AssignedToID != "" && (f.AssignedToID == nil || *f.AssignedToID != filter.AssignedToID) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(f.Title), search) &&
			!strings.Contains(strings.ToLower(f.Description), search) {
			continue
		}
		all = append(all, *f)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].FeedbackID > all[j].FeedbackID
	})
	return paginate(all, filter.Offset, filter.Limit), int64(len(all)), nil
}

func (m *mockFeedbackRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.feedback)), nil
}

func (m *mockFeedbackRepo) CountByStatus(_ context.Context) ([]repository.GroupCount, error) {
	return m.group(func(f *model.Feedback) string { return string(f.Status) }), nil
}

func (m *mockFeedbackRepo) CountByPriority(_ context.Context) ([]repository.GroupCount, error) {
	return m.group(func(f *model.Feedback) string { return string(f.Priority) }), nil
}

func (m *mockFeedbackRepo) CountByCategory(_ context.Context) ([]repository.GroupCount, error) {
	return m.group(func(f *model.Feedback) string { return f.CategoryID }), nil
}

func (m *mockFeedbackRepo) group(key func(*model.Feedback) string) []repository.GroupCount {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int64)
	for _, f := range m.feedback {
		counts[key(f)]++
	}
	var rows []repository.GroupCount
	for k, n := range counts {
		rows = append(rows, repository.GroupCount{Key: k, Count: n})
	}
	return rows
}

func (m *mockFeedbackRepo) ListCreatedSince(_ context.Context, since time.Time) ([]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var times []time.Time
	for _, f := range m.feedback {
		if !f.CreatedAt.Before(since) {
			times = append(times, f.CreatedAt)
		}
	}
	return times, nil
}

// ── Mock CommentRepository ──

type mockCommentRepo struct {
	mu       sync.Mutex
	seq      int
	base     time.Time
	comments map[string]*model.Comment
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{
		base:     time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		comments: make(map[string]*model.Comment),
	}
}

// Create 按写入顺序递增 created_at，保证排序稳定
func (m *mockCommentRepo) Create(_ context.Context, c *model.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if c.CommentID == "" {
		c.CommentID = fmt.Sprintf("comment-%03d", m.seq)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = m.base.Add(time.Duration(m.seq) * time.Minute)
		c.UpdatedAt = c.CreatedAt
	}
	cp := *c
	m.comments[c.CommentID] = &cp
	return nil
}

func (m *mockCommentRepo) GetByID(_ context.Context, id string) (*model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.comments[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCommentRepo) ListByFeedback(_ context.Context, feedbackID string, includeInternal bool) ([]model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Comment
	for _, c := range m.comments {
		if c.FeedbackID != feedbackID || (c.IsInternal && !includeInternal) {
			continue
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].CommentID < result[j].CommentID
	})
	return result, nil
}

func (m *mockCommentRepo) Update(_ context.Context, c *model.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.comments[c.CommentID] = &cp
	return nil
}

func (m *mockCommentRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.comments, id)
	return nil
}

func (m *mockCommentRepo) DeleteByFeedback(_ context.Context, feedbackID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.comments {
		if c.FeedbackID == feedbackID {
			delete(m.comments, id)
		}
	}
	return nil
}

func (m *mockCommentRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.comments)
}

// ── Mock Cache / Mailer ──

type mockCache struct {
	mu          sync.Mutex
	data        map[string][]byte
	blacklisted map[string]time.Duration
	sets        int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte), blacklisted: make(map[string]time.Duration)}
}

func (m *mockCache) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blacklisted[jti] = ttl
	return nil
}

func (m *mockCache) GetBytes(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mockCache) SetBytes(_ context.Context, key string, val []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = val
	m.sets++
	return nil
}

func (m *mockCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type sentMail struct {
	To, Subject, Body string
}

type mockMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *mockMailer) Dispatch(to, subject, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
}

func (m *mockMailer) messages() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

// ── 测试辅助 ──

func paginate[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}

// mockRepos 持有各 mock 的具体类型，便于测试直接检查存储状态
type mockRepos struct {
	users    *mockUserRepo
	resets   *mockPasswordResetRepo
	depts    *mockDeptRepo
	cats     *mockCategoryRepo
	feedback *mockFeedbackRepo
	comments *mockCommentRepo
	repo     *repository.Repository
}

func newMockRepos() *mockRepos {
	fb := newMockFeedbackRepo()
	cats := newMockCategoryRepo(fb)
	m := &mockRepos{
		users:    newMockUserRepo(),
		resets:   newMockPasswordResetRepo(),
		depts:    newMockDeptRepo(cats),
		cats:     cats,
		feedback: fb,
		comments: newMockCommentRepo(),
	}
	m.repo = &repository.Repository{
		User:          m.users,
		PasswordReset: m.resets,
		Department:    m.depts,
		Category:      m.cats,
		Feedback:      m.feedback,
		Comment:       m.comments,
	}
	return m
}
