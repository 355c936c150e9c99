package settlement

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration 结算参数无效 (例如总股数为 0)
var ErrInvalidConfiguration = errors.New("invalid settlement configuration")

var (
	ErrEmptyCycle      = errors.New("dividend cycle has no days")
	ErrIncompleteCycle = errors.New("dividend cycle is not complete")
	ErrCycleMismatch   = errors.New("ledger entries belong to different cycles")
	ErrDuplicatePeriod = errors.New("duplicate period in dividend cycle")
	ErrUnknownAccount  = errors.New("unknown balance account")
)

// ConfigurationError 配置错误, 在计算每股金额之前同步返回, 不重试
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfiguration
}
