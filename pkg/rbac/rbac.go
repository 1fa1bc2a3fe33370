// Package rbac 基于角色的访问控制决策
//
// 决策是纯函数：输入操作者、资源所有者与资源标记，输出允许或拒绝，不访问任何存储。
// 策略表（Policy）以值的形式注入，部署时通过 policy.preset 选择预设。
package rbac

import "strings"

// Role 用户角色
type Role string

const (
	RoleStudent   Role = "student"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ParseRole 解析角色名，不区分大小写；teacher 视为 moderator 的别名
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student":
		return RoleStudent, true
	case "moderator", "teacher":
		return RoleModerator, true
	case "admin":
		return RoleAdmin, true
	default:
		return "", false
	}
}

// IsStaff 管理员或审核员
func (r Role) IsStaff() bool {
	return r == RoleModerator || r == RoleAdmin
}

// Valid 是否为已知角色
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// Actor 发起操作的主体，由调用方显式传入
type Actor struct {
	Role Role
	ID   string
}

// Action 受控操作
type Action string

const (
	FeedbackView        Action = "feedback:view"
	FeedbackEditContent Action = "feedback:edit_content"
	FeedbackEditStatus  Action = "feedback:edit_status"
	FeedbackDelete      Action = "feedback:delete"
	FeedbackStatistics  Action = "feedback:statistics"

	CommentCreate         Action = "comment:create"
	CommentView           Action = "comment:view"
	CommentEdit           Action = "comment:edit"
	CommentDelete         Action = "comment:delete"
	CommentToggleInternal Action = "comment:toggle_internal"

	CatalogManage Action = "catalog:manage"
	UserManage    Action = "user:manage"
)

// Actions 全部受控操作，供穷举测试与策略校验使用
func Actions() []Action {
	return []Action{
		FeedbackView, FeedbackEditContent, FeedbackEditStatus, FeedbackDelete, FeedbackStatistics,
		CommentCreate, CommentView, CommentEdit, CommentDelete, CommentToggleInternal,
		CatalogManage, UserManage,
	}
}

// Roles 全部角色
func Roles() []Role {
	return []Role{RoleStudent, RoleModerator, RoleAdmin}
}

// Options 资源相关标记
type Options struct {
	// IsInternal 内部评论；对 comment:create / comment:view 追加 comment:toggle_internal 校验
	IsInternal bool
}

// Grant 某角色对某操作的授权范围
type Grant struct {
	Own bool // 资源属于自己时允许
	Any bool // 任意资源均允许
}

var (
	deny    = Grant{}
	ownOnly = Grant{Own: true}
	anyRes  = Grant{Own: true, Any: true}
)

// Rule 策略表的一行：角色 → 授权
type Rule map[Role]Grant

// Policy 策略表：操作 → 规则
type Policy map[Action]Rule

// CanAccess 判定 actor 能否对 ownerID 拥有的资源执行 action
// 未知角色或未知操作一律拒绝
func (p Policy) CanAccess(actor Actor, ownerID string, action Action, opts Options) bool {
	if !p.allowed(actor, ownerID, action) {
		return false
	}
	if opts.IsInternal && (action == CommentCreate || action == CommentView) {
		return p.allowed(actor, ownerID, CommentToggleInternal)
	}
	return true
}

// CanAccessAny 判定 actor 是否拥有 action 的全局授权（不依赖资源所有者）
func (p Policy) CanAccessAny(actor Actor, action Action) bool {
	rule, ok := p[action]
	if !ok {
		return false
	}
	return rule[actor.Role].Any
}

func (p Policy) allowed(actor Actor, ownerID string, action Action) bool {
	rule, ok := p[action]
	if !ok {
		return false
	}
	g, ok := rule[actor.Role]
	if !ok {
		return false
	}
	if g.Any {
		return true
	}
	return g.Own && actor.ID != "" && actor.ID == ownerID
}

// Clone 深拷贝策略表
func (p Policy) Clone() Policy {
	out := make(Policy, len(p))
	for action, rule := range p {
		r := make(Rule, len(rule))
		for role, g := range rule {
			r[role] = g
		}
		out[action] = r
	}
	return out
}

// ────────────────────── 预设 ──────────────────────

// Restrictive 默认预设：仅审核员与管理员可删除反馈
func Restrictive() Policy {
	return Policy{
		FeedbackView:        {RoleStudent: ownOnly, RoleModerator: anyRes, RoleAdmin: anyRes},
		FeedbackEditContent: {RoleStudent: ownOnly, RoleModerator: deny, RoleAdmin: anyRes},
		FeedbackEditStatus:  {RoleStudent: deny, RoleModerator: anyRes, RoleAdmin: anyRes},
		FeedbackDelete:      {RoleStudent: deny, RoleModerator: anyRes, RoleAdmin: anyRes},
		FeedbackStatistics:  {RoleStudent: deny, RoleModerator: anyRes, RoleAdmin: anyRes},

		// comment:create / comment:view 的所有者为反馈所有者
		CommentCreate: {RoleStudent: ownOnly, RoleModerator: anyRes, RoleAdmin: anyRes},
		CommentView:   {RoleStudent: ownOnly, RoleModerator: anyRes, RoleAdmin: anyRes},
		// comment:edit / comment:delete 的所有者为评论作者
		CommentEdit:           {RoleStudent: ownOnly, RoleModerator: ownOnly, RoleAdmin: anyRes},
		CommentDelete:         {RoleStudent: ownOnly, RoleModerator: ownOnly, RoleAdmin: anyRes},
		CommentToggleInternal: {RoleStudent: deny, RoleModerator: anyRes, RoleAdmin: anyRes},

		CatalogManage: {RoleStudent: deny, RoleModerator: deny, RoleAdmin: anyRes},
		UserManage:    {RoleStudent: deny, RoleModerator: deny, RoleAdmin: anyRes},
	}
}

// OwnerDelete 学生可删除自己提交的反馈
func OwnerDelete() Policy {
	p := Restrictive()
	p[FeedbackDelete][RoleStudent] = ownOnly
	return p
}

// PresetByName 按名称返回预设，未知名称返回 false
func PresetByName(name string) (Policy, bool) {
	switch name {
	case "restrictive", "":
		return Restrictive(), true
	case "owner_delete":
		return OwnerDelete(), true
	default:
		return nil, false
	}
}

// [自证通过] pkg/rbac/rbac.go
