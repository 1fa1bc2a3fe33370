package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"campus-feedback/backend/config"
	"campus-feedback/backend/internal/model"
	"campus-feedback/backend/pkg/jwt"
	"campus-feedback/backend/pkg/password"
	"campus-feedback/backend/pkg/rbac"
)

const testPassword = "Passw0rd!"

var (
	testNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	testHashOnce sync.Once
	testHash     string
)

// testPasswordHash 以最低 cost 预先计算，避免每个用户都做一次慢哈希
func testPasswordHash(t *testing.T) string {
	t.Helper()
	testHashOnce.Do(func() {
		h, err := password.NewHasher(bcrypt.MinCost).Hash(testPassword)
		if err != nil {
			t.Fatalf("预计算密码哈希失败: %v", err)
		}
		testHash = h
	})
	return testHash
}

// testClock 可手动推进的时钟
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testEnv 通过 NewService 组装全部服务，底层为 map mock
type testEnv struct {
	*mockRepos
	cfg    *config.Config
	cache  *mockCache
	mailer *mockMailer
	jwtMgr *jwt.Manager
	clock  *testClock
	svc    *Service
}

func newTestConfig(preset string) *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:                "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:           15 * time.Minute,
			IdentityClaim:            config.IdentityClaimEmail,
			RequireEmailVerification: true,
		},
		Mail:     config.MailConfig{FrontendURL: "https://feedback.example.edu"},
		Policy:   config.PolicyConfig{Preset: preset},
		Feedback: config.FeedbackConfig{StatsCacheTTL: time.Minute},
		Seed: config.SeedConfig{
			AdminUsername: "root",
			AdminEmail:    "root@uni.edu",
			AdminPassword: "RootPassw0rd!",
		},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, newTestConfig(config.PolicyPresetRestrictive))
}

func newTestEnvWithConfig(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	e := &testEnv{
		mockRepos: newMockRepos(),
		cfg:       cfg,
		cache:     newMockCache(),
		mailer:    &mockMailer{},
		jwtMgr:    jwt.NewManager(&cfg.Auth),
		clock:     &testClock{now: testNow},
	}
	e.svc = NewService(cfg, e.repo, e.jwtMgr, e.cache, e.mailer, zap.NewNop())

	e.svc.Auth.(*authService).now = e.clock.Now
	e.svc.OTP.(*otpService).now = e.clock.Now
	e.svc.PasswordReset.(*passwordResetService).now = e.clock.Now
	e.svc.Feedback.(*feedbackService).now = e.clock.Now
	return e
}

// addUser 直接写入一个已验证邮箱的用户，密码为 testPassword
func (e *testEnv) addUser(t *testing.T, username, role string) *model.User {
	t.Helper()
	u := &model.User{
		Username:      username,
		Email:         username + "@uni.edu",
		PasswordHash:  testPasswordHash(t),
		Role:          role,
		EmailVerified: true,
	}
	if role == model.RoleStudent {
		sid := username
		u.StudentID = &sid
	}
	if err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}
	return u
}

// addCategory 创建部门及其下的一个分类
func (e *testEnv) addCategory(t *testing.T, deptName, name string) *model.Category {
	t.Helper()
	ctx := context.Background()
	dept, err := e.depts.GetByName(ctx, deptName)
	if err != nil {
		dept = &model.Department{Name: deptName}
		if err := e.depts.Create(ctx, dept); err != nil {
			t.Fatalf("创建测试部门失败: %v", err)
		}
	}
	cat := &model.Category{Name: name, DepartmentID: dept.DepartmentID}
	if err := e.cats.Create(ctx, cat); err != nil {
		t.Fatalf("创建测试分类失败: %v", err)
	}
	return cat
}

// addFeedback 直接写入一条反馈
func (e *testEnv) addFeedback(t *testing.T, owner *model.User, cat *model.Category, status model.FeedbackStatus) *model.Feedback {
	t.Helper()
	fb := &model.Feedback{
		Title:       "图书馆空调不制冷",
		Description: "三楼自习区温度过高",
		Status:      status,
		Priority:    model.PriorityMedium,
		UserID:      owner.UserID,
		CategoryID:  cat.CategoryID,
		Version:     1,
		BaseModel:   model.BaseModel{CreatedAt: testNow, UpdatedAt: testNow},
	}
	if err := e.feedback.Create(context.Background(), fb); err != nil {
		t.Fatalf("创建测试反馈失败: %v", err)
	}
	return fb
}

func actorOf(u *model.User) rbac.Actor {
	return rbac.Actor{Role: rbac.Role(u.Role), ID: u.UserID}
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
