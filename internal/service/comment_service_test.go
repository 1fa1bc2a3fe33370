package service

import (
	"context"
	"errors"
	"testing"

	"campus-feedback/backend/config"
	"campus-feedback/backend/internal/dto"
	"campus-feedback/backend/internal/model"
)

// seedComments 在反馈下写入一条公开评论与一条内部评论
func seedComments(t *testing.T, f *feedbackFixture, fb *model.Feedback) (public, internal *dto.CommentResponse) {
	t.Helper()
	var err error
	public, err = f.svc.Comment.Create(context.Background(), actorOf(f.student), fb.FeedbackID,
		&dto.CreateCommentRequest{Content: "请尽快处理"})
	if err != nil {
		t.Fatalf("学生发表公开评论应成功: %v", err)
	}
	internal, err = f.svc.Comment.Create(context.Background(), actorOf(f.mod), fb.FeedbackID,
		&dto.CreateCommentRequest{Content: "已联系后勤，周三上门", IsInternal: true})
	if err != nil {
		t.Fatalf("审核员发表内部评论应成功: %v", err)
	}
	return public, internal
}

func TestComment_InternalHiddenFromStudent(t *testing.T) {
	f := newFeedbackFixture(t, config.PolicyPresetRestrictive)
	fb := f.addFeedback(t, f.student, f.cat, model.StatusNew)
	public, internal := seedComments(t, f, fb)

	list, err := f.svc.Comment.List(context.Background(), actorOf(f.student), fb.FeedbackID)
	if err != nil {
		t.Fatalf("所有者查看评论应成功: %v", err)
	}
	if len(list) != 1 || list[0].ID != public.ID {
		t.Errorf("学生只应看到公开评论，实际: %+v", list)
	}
	if _, err := f.svc.Comment.Get(context.Background(), actorOf(f.student), internal.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("学生读取内部评论期望 ErrForbidden，实际: %v", err)
	}

	list, err = f.svc.Comment.List(context.Background(), actorOf(f.mod), fb.FeedbackID)
	if err != nil {
		t.Fatalf("审核员查看评论应成功: %v", err)
	}
	if len(list) != 2 || list[0].ID != public.ID || list[1].ID != internal.ID {
		t.Errorf("审核员应按时间升序看到全部评论，实际: %+v", list)
	}
}

func TestComment_CreatePermissions(t *testing.T) {
	f := newFeedbackFixture(t, config.PolicyPresetRestrictive)
	fb := f.addFeedback(t, f.student, f.cat, model.StatusNew)

	tests := []struct {
		name     string
		actor    func(f *feedbackFixture) *model.User
		internal bool
		want     error
	}{
		{"所有者公开评论", func(f *feedbackFixture) *model.User { return f.student }, false, nil},
		{"所有者内部评论", func(f *feedbackFixture) *model.User { return f.student }, true, ErrForbidden},
		{"其他学生", func(f *feedbackFixture) *model.User { return f.other }, false, ErrForbidden},
		{"审核员内部评论", func(f *feedbackFixture) *model.User { return f.mod }, true, nil},
		{"管理员公开评论", func(f *feedbackFixture) *model.User { return f.admin }, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Comment.Create(context.Background(), actorOf(tt.actor(f)), fb.FeedbackID,
				&dto.CreateCommentRequest{Content: "内容", IsInternal: tt.internal})
			if !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际: %v", tt.want, err)
			}
		})
	}

	if f.comments.count() != 3 {
		t.Errorf("期望写入 3 条评论，实际: %d", f.comments.count())
	}
	if _, err := f.svc.Comment.Create(context.Background(), actorOf(f.admin), "missing",
		&dto.CreateCommentRequest{Content: "内容"}); !errors.Is(err, ErrFeedbackNotFound) {
		t.Errorf("期望 ErrFeedbackNotFound，实际: %v", err)
	}
}

func TestComment_ListForbiddenForOtherStudent(t *testing.T) {
	f := newFeedbackFixture(t, config.PolicyPresetRestrictive)
	fb := f.addFeedback(t, f.student, f.cat, model.StatusNew)
	seedComments(t, f, fb)

	if _, err := f.svc.Comment.List(context.Background(), actorOf(f.other), fb.FeedbackID); !errors.Is(err, ErrForbidden) {
		t.Errorf("期望 ErrForbidden，实际: %v", err)
	}
}

func TestComment_ToggleInternal(t *testing.T) {
	f := newFeedbackFixture(t, config.PolicyPresetRestrictive)
	fb := f.addFeedback(t, f.student, f.cat, model.StatusNew)
	public, internal := seedComments(t, f, fb)

	// 作者本人也不能把自己的评论转为内部
	_, err := f.svc.Comment.Update(context.Background(), actorOf(f.student), public.ID,
		&dto.UpdateCommentRequest{IsInternal: boolPtr(true)})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("学生切换内部标记期望 ErrForbidden，实际: %v", err)
	}
	stored, _ := f.comments.GetByID(context.Background(), public.ID)
	if stored.IsInternal {
		t.Error("被拒绝的更新不应写入")
	}

	// 值不变时不需要额外权限
	updated, err := f.svc.Comment.Update(context.Background(), actorOf(f.student), public.ID,
		&dto.UpdateCommentRequest{Content: strPtr("补充：三楼也有问题"), IsInternal: boolPtr(false)})
	if err != nil || updated.Content != "补充：三楼也有问题" {
		t.Errorf("作者修改内容应成功: %+v %v", updated, err)
	}

	updated, err = f.svc.Comment.Update(context.Background(), actorOf(f.mod), internal.ID,
		&dto.UpdateCommentRequest{IsInternal: boolPtr(false)})
	if err != nil || updated.IsInternal {
		t.Errorf("审核员公开自己的内部评论应成功: %+v %v", updated, err)
	}
}

func TestComment_EditAndDeleteOwnership(t *testing.T) {
	f := newFeedbackFixture(t, config.PolicyPresetRestrictive)
	fb := f.addFeedback(t, f.student, f.cat, model.StatusNew)
	public, internal := seedComments(t, f, fb)
	mod2 := f.addUser(t, "mod2", model.RoleModerator)

	if _, err := f.svc.Comment.Update(context.Background(), actorOf(mod2), internal.ID,
		&dto.UpdateCommentRequest{Content: strPtr("改写")}); !errors.Is(err, ErrForbidden) {
		t.Errorf("审核员修改他人评论期望 ErrForbidden，实际: %v", err)
	}
	if _, err := f.svc.Comment.Update(context.Background(), actorOf(f.mod), public.ID,
		&dto.UpdateCommentRequest{Content: strPtr("改写")}); !errors.Is(err, ErrForbidden) {
		t.Errorf("审核员修改学生评论期望 ErrForbidden，实际: %v", err)
	}
	if _, err := f.svc.Comment.Update(context.Background(), actorOf(f.admin), public.ID,
		&dto.UpdateCommentRequest{Content: strPtr("管理员更正")}); err != nil {
		t.Errorf("管理员修改任意评论应成功: %v", err)
	}
	if _, err := f.svc.Comment.Update(context.Background(), actorOf(f.admin), public.ID,
		&dto.UpdateCommentRequest{}); !errors.Is(err, ErrEmptyPatch) {
		t.Errorf("空补丁期望 ErrEmptyPatch，实际: %v", err)
	}

	if err := f.svc.Comment.Delete(context.Background(), actorOf(f.other), public.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("他人删除期望 ErrForbidden，实际: %v", err)
	}
	if err := f.svc.Comment.Delete(context.Background(), actorOf(f.student), public.ID); err != nil {
		t.Errorf("作者删除应成功: %v", err)
	}
	if err := f.svc.Comment.Delete(context.Background(), actorOf(f.admin), internal.ID); err != nil {
		t.Errorf("管理员删除应成功: %v", err)
	}
	if _, err := f.svc.Comment.Get(context.Background(), actorOf(f.admin), internal.ID); !errors.Is(err, ErrCommentNotFound) {
		t.Errorf("删除后期望 ErrCommentNotFound，实际: %v", err)
	}
}
