package rbac

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// expect[action][role] = {own, other}
type pair struct{ own, other bool }

var restrictiveTable = map[Action]map[Role]pair{
	FeedbackView:          {RoleStudent: {true, false}, RoleModerator: {true, true}, RoleAdmin: {true, true}},
	FeedbackEditContent:   {RoleStudent: {true, false}, RoleModerator: {false, false}, RoleAdmin: {true, true}},
	FeedbackEditStatus:    {RoleStudent: {false, false}, RoleModerator: {true, true}, RoleAdmin: {true, true}},
	FeedbackDelete:        {RoleStudent: {false, false}, RoleModerator: {true, true}, RoleAdmin: {true, true}},
	FeedbackStatistics:    {RoleStudent: {false, false}, RoleModerator: {true, true}, RoleAdmin: {true, true}},
	CommentCreate:         {RoleStudent: {true, false}, RoleModerator: {true, true}, RoleAdmin: {true, true}},
	CommentView:           {RoleStudent: {true, false}, RoleModerator: {true, true}, RoleAdmin: {true, true}},
	CommentEdit:           {RoleStudent: {true, false}, RoleModerator: {true, false}, RoleAdmin: {true, true}},
	CommentDelete:         {RoleStudent: {true, false}, RoleModerator: {true, false}, RoleAdmin: {true, true}},
	CommentToggleInternal: {RoleStudent: {false, false}, RoleModerator: {true, true}, RoleAdmin: {true, true}},
	CatalogManage:         {RoleStudent: {false, false}, RoleModerator: {false, false}, RoleAdmin: {true, true}},
	UserManage:            {RoleStudent: {false, false}, RoleModerator: {false, false}, RoleAdmin: {true, true}},
}

func TestRestrictive_Exhaustive(t *testing.T) {
	p := Restrictive()
	assert.Len(t, restrictiveTable, len(Actions()), "表格应覆盖全部操作")

	for _, action := range Actions() {
		for _, role := range Roles() {
			want := restrictiveTable[action][role]
			actor := Actor{Role: role, ID: "actor-1"}

			t.Run(fmt.Sprintf("%s/%s/own", action, role), func(t *testing.T) {
				assert.Equal(t, want.own, p.CanAccess(actor, "actor-1", action, Options{}))
			})
			t.Run(fmt.Sprintf("%s/%s/other", action, role), func(t *testing.T) {
				assert.Equal(t, want.other, p.CanAccess(actor, "someone-else", action, Options{}))
			})
		}
	}
}

func TestInternalComments_StaffOnly(t *testing.T) {
	p := Restrictive()
	internal := Options{IsInternal: true}

	for _, action := range []Action{CommentCreate, CommentView} {
		// 学生即便是反馈所有者也不能创建或查看内部评论
		assert.False(t, p.CanAccess(Actor{RoleStudent, "s1"}, "s1", action, internal), action)
		assert.True(t, p.CanAccess(Actor{RoleModerator, "m1"}, "s1", action, internal), action)
		assert.True(t, p.CanAccess(Actor{RoleAdmin, "a1"}, "s1", action, internal), action)
	}

	// 其他操作不受 IsInternal 影响
	assert.True(t, p.CanAccess(Actor{RoleStudent, "s1"}, "s1", CommentEdit, internal))
}

func TestOwnerDelete_Preset(t *testing.T) {
	p := OwnerDelete()

	assert.True(t, p.CanAccess(Actor{RoleStudent, "s1"}, "s1", FeedbackDelete, Options{}))
	assert.False(t, p.CanAccess(Actor{RoleStudent, "s1"}, "s2", FeedbackDelete, Options{}))
	assert.True(t, p.CanAccess(Actor{RoleModerator, "m1"}, "s2", FeedbackDelete, Options{}))

	// 派生预设不应修改默认预设
	assert.False(t, Restrictive().CanAccess(Actor{RoleStudent, "s1"}, "s1", FeedbackDelete, Options{}))
}

func TestCanAccess_Total(t *testing.T) {
	p := Restrictive()

	assert.False(t, p.CanAccess(Actor{Role: "janitor", ID: "x"}, "x", FeedbackView, Options{}), "未知角色应拒绝")
	assert.False(t, p.CanAccess(Actor{RoleAdmin, "a1"}, "a1", Action("feedback:archive"), Options{}), "未知操作应拒绝")
	assert.False(t, p.CanAccess(Actor{RoleStudent, ""}, "", FeedbackView, Options{}), "空 ID 不应匹配所有者")
}

func TestCanAccessAny(t *testing.T) {
	p := Restrictive()

	assert.True(t, p.CanAccessAny(Actor{RoleModerator, "m1"}, FeedbackView))
	assert.False(t, p.CanAccessAny(Actor{RoleStudent, "s1"}, FeedbackView))
	assert.False(t, p.CanAccessAny(Actor{RoleAdmin, "a1"}, Action("unknown")))
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"student", RoleStudent, true},
		{"MODERATOR", RoleModerator, true},
		{"teacher", RoleModerator, true},
		{" Admin ", RoleAdmin, true},
		{"root", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestPresetByName(t *testing.T) {
	_, ok := PresetByName("owner_delete")
	assert.True(t, ok)
	_, ok = PresetByName("everyone")
	assert.False(t, ok)
}

func TestClone_Independent(t *testing.T) {
	p := Restrictive()
	c := p.Clone()
	c[FeedbackView][RoleStudent] = Grant{Any: true}

	assert.False(t, p.CanAccess(Actor{RoleStudent, "s1"}, "s2", FeedbackView, Options{}))
}
