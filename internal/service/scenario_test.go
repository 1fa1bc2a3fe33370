package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"campus-feedback/backend/internal/dto"
	"campus-feedback/backend/internal/model"
	"campus-feedback/backend/pkg/rbac"
)

// 学生注册到反馈结案的完整流程
func TestScenario_StudentFeedbackLifecycle(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	cat := e.addCategory(t, "后勤处", "宿舍")
	mod := e.addUser(t, "mod1", model.RoleModerator)

	reg, err := e.svc.Auth.Register(ctx, validRegisterRequest())
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	loginReq := &dto.LoginRequest{Identifier: "alice", Password: testPassword}
	if _, err := e.svc.Auth.Login(ctx, loginReq); !errors.Is(err, ErrEmailNotVerified) {
		t.Fatalf("验证前登录期望 ErrEmailNotVerified，实际: %v", err)
	}

	code := *e.users.get(reg.User.ID).OTPCode
	verified, err := e.svc.OTP.Verify(ctx, reg.User.Email, code)
	if err != nil || !verified.Verified {
		t.Fatalf("验证邮箱失败: %+v %v", verified, err)
	}

	token, err := e.svc.Auth.Login(ctx, loginReq)
	if err != nil {
		t.Fatalf("验证后登录失败: %v", err)
	}
	claims, err := e.jwtMgr.ParseToken(token.AccessToken)
	if err != nil {
		t.Fatalf("解析 Token 失败: %v", err)
	}
	student := rbac.Actor{Role: rbac.Role(claims.Role), ID: claims.UserID}

	fb, err := e.svc.Feedback.Create(ctx, student, &dto.CreateFeedbackRequest{
		CategoryID:  cat.CategoryID,
		Title:       "宿舍楼热水器故障",
		Description: "3 号楼热水器已经坏了两天",
		Priority:    "high",
	})
	if err != nil {
		t.Fatalf("提交反馈失败: %v", err)
	}
	if _, err := e.svc.Comment.Create(ctx, student, fb.ID, &dto.CreateCommentRequest{Content: "今天仍然没有热水"}); err != nil {
		t.Fatalf("学生评论失败: %v", err)
	}
	if _, err := e.svc.Comment.Create(ctx, actorOf(mod), fb.ID,
		&dto.CreateCommentRequest{Content: "已派单给维修班", IsInternal: true}); err != nil {
		t.Fatalf("审核员内部评论失败: %v", err)
	}

	for _, status := range []string{"in_progress", "approved", "resolved"} {
		if _, err := e.svc.Feedback.UpdateStatus(ctx, actorOf(mod), fb.ID, status); err != nil {
			t.Fatalf("流转到 %s 失败: %v", status, err)
		}
	}
	if _, err := e.svc.Feedback.UpdateStatus(ctx, actorOf(mod), fb.ID, "closed"); !errors.Is(err, ErrFeedbackTerminal) {
		t.Errorf("resolved 后再流转期望 ErrFeedbackTerminal，实际: %v", err)
	}

	final, err := e.svc.Feedback.Get(ctx, student, fb.ID)
	if err != nil {
		t.Fatalf("学生查看反馈失败: %v", err)
	}
	if final.Status != "resolved" || final.ResolvedAt == nil {
		t.Errorf("反馈应为 resolved 且带有解决时间: %+v", final)
	}
	comments, _ := e.svc.Comment.List(ctx, student, fb.ID)
	if len(comments) != 1 {
		t.Errorf("学生应只看到 1 条公开评论，实际: %d", len(comments))
	}

	issuedAt := claims.IssuedAt.Time
	e.svc.Auth.(*authService).now = func() time.Time { return issuedAt }
	if err := e.svc.Auth.Logout(ctx, claims); err != nil {
		t.Fatalf("登出失败: %v", err)
	}
	if _, ok := e.cache.blacklisted[claims.ID]; !ok {
		t.Error("登出后 jti 应进入黑名单")
	}
}

// 忘记密码到使用新密码登录
// 重置密码的完整流程：未知邮箱、签发、错误令牌、过期、成功兑换
func TestScenario_PasswordReset(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.addUser(t, "s2024001", model.RoleStudent)

	if err := e.svc.PasswordReset.Request(ctx, "ghost@uni.edu"); err != nil {
		t.Fatalf("未知邮箱应返回成功，实际: %v", err)
	}
	if e.resets.latest() != nil {
		t.Fatal("未知邮箱不应创建令牌")
	}

	if err := e.svc.PasswordReset.Request(ctx, u.Email); err != nil {
		t.Fatalf("申请重置失败: %v", err)
	}
	if n, _ := e.resets.CountByEmail(ctx, u.Email); n != 1 {
		t.Fatalf("期望恰好 1 个令牌，实际: %d", n)
	}
	token := e.resets.latest()
	if token.Used {
		t.Fatal("新令牌应为未使用状态")
	}

	if err := e.svc.PasswordReset.Redeem(ctx, strings.Repeat("0", 64), newTestPassword); !errors.Is(err, ErrResetTokenNotFound) {
		t.Errorf("错误令牌期望 ErrResetTokenNotFound，实际: %v", err)
	}

	// 过期令牌
	e.clock.Advance(61 * time.Minute)
	if err := e.svc.PasswordReset.Redeem(ctx, token.Token, newTestPassword); !errors.Is(err, ErrResetTokenExpired) {
		t.Fatalf("61 分钟后兑换期望 ErrResetTokenExpired，实际: %v", err)
	}

	// 重新申请后在有效期内兑换
	if err := e.svc.PasswordReset.Request(ctx, u.Email); err != nil {
		t.Fatalf("再次申请重置失败: %v", err)
	}
	fresh := e.resets.latest()
	if err := e.svc.PasswordReset.Redeem(ctx, fresh.Token, newTestPassword); err != nil {
		t.Fatalf("重置密码失败: %v", err)
	}

	if _, err := e.svc.Auth.Login(ctx, &dto.LoginRequest{Identifier: u.Email, Password: testPassword}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("旧密码登录期望 ErrInvalidCredentials，实际: %v", err)
	}
	if _, err := e.svc.Auth.Login(ctx, &dto.LoginRequest{Identifier: u.Email, Password: newTestPassword}); err != nil {
		t.Errorf("新密码登录应成功: %v", err)
	}
}
