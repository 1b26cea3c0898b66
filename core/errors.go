package core

// DomainError 是领域层的统一错误类型：错误代码 + 模块名 + 消息。
// 各模块的存储/服务错误都收敛到该类型，调用方用 IsXXX 检查函数做分支。
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "UNAVAILABLE"）
	Message string
	Module  string // 模块名称（如 "store", "profile", "experiment"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError 创建新的领域错误。
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{Module: module, Code: code, Message: message}
}

// GetDomainError 获取 DomainError，如果不是则返回 nil。
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeUserNotFound  = "USER_NOT_FOUND" // 用户/画像不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 服务不可用（存储不可达等，对调用方显式可见）
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误
)

// 模块名称常量
const (
	ModuleStore      = "store"
	ModuleProfile    = "profile"
	ModuleCandidate  = "candidate"
	ModuleExperiment = "experiment"
	ModuleVector     = "vector"
	ModuleService    = "service"
)

// ErrUserNotFound 表示用户画像不存在；没有画像无法生成推荐，直接透出给调用方。
var ErrUserNotFound = NewDomainError(ModuleProfile, ErrorCodeUserNotFound, "profile: user not found")

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND。
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsUserNotFound 检查错误是否为 USER_NOT_FOUND。
func IsUserNotFound(err error) bool {
	return hasCode(err, ErrorCodeUserNotFound)
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED。
func IsNotSupported(err error) bool {
	return hasCode(err, ErrorCodeNotSupported)
}

// IsUnavailable 检查错误是否为 UNAVAILABLE。
func IsUnavailable(err error) bool {
	return hasCode(err, ErrorCodeUnavailable)
}
