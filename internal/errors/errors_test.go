package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ErrorsTestSuite 错误包测试套件
type ErrorsTestSuite struct {
	suite.Suite
}

// 测试创建新错误
func (suite *ErrorsTestSuite) TestNew() {
	// 测试基本错误创建
	err := New(ErrInvalidParam)
	suite.NotNil(err)
	suite.Equal(ErrInvalidParam, err.Code)
	suite.Equal("无效的参数", err.Message)
	suite.Empty(err.Details)

	// 测试带详情的错误
	err = New(ErrSessionNotFound, "session-404")
	suite.NotNil(err)
	suite.Equal(ErrSessionNotFound, err.Code)
	suite.Equal("会话未找到", err.Message)
	suite.Equal("session-404", err.Details)

	// 测试多个详情
	err = New(ErrDatabaseConnect, "连接失败", "主机: localhost", "端口: 3306")
	suite.Equal("连接失败; 主机: localhost; 端口: 3306", err.Details)

	// 未知错误码回退到通用消息
	err = New(ErrorCode(9999))
	suite.Equal("未知错误", err.Message)
}

// 测试格式化错误创建
func (suite *ErrorsTestSuite) TestNewf() {
	err := Newf(ErrVersionConflict, "期望版本 %d 实际版本 %d", 3, 5)
	suite.NotNil(err)
	suite.Equal(ErrVersionConflict, err.Code)
	suite.Equal("期望版本 3 实际版本 5", err.Details)
}

// 测试错误包装
func (suite *ErrorsTestSuite) TestWrap() {
	// 包装标准错误
	originalErr := errors.New("原始错误")
	wrappedErr := Wrap(originalErr, ErrDatabaseQuery)
	suite.NotNil(wrappedErr)
	suite.Equal(ErrDatabaseQuery, wrappedErr.Code)
	suite.Equal(originalErr, wrappedErr.Cause)
	suite.Equal("原始错误", wrappedErr.Details)

	// 包装nil返回nil
	suite.Nil(Wrap(nil, ErrDatabaseQuery))

	// 包装AppError保留原始错误码
	inner := New(ErrPolicyViolation, "TURN_NOT_CURRENT_PLAYER")
	rewrapped := Wrap(inner, ErrUnknown, "提交失败")
	suite.Equal(ErrPolicyViolation, rewrapped.Code)
	suite.Equal("提交失败; TURN_NOT_CURRENT_PLAYER", rewrapped.Details)
}

// 测试Error字符串格式
func (suite *ErrorsTestSuite) TestErrorString() {
	err := New(ErrMissingIdempotencyKey)
	suite.Equal("[2005] 缺少幂等键", err.Error())

	err = New(ErrIdempotencyMismatch, "key-1")
	suite.Equal("[2006] 幂等键对应的命令内容不一致: key-1", err.Error())
}

// 测试Unwrap
func (suite *ErrorsTestSuite) TestUnwrap() {
	cause := errors.New("底层错误")
	err := Wrap(cause, ErrTransaction)
	suite.Equal(cause, errors.Unwrap(err))
	suite.True(errors.Is(err, cause))
}

// 测试错误码判断
func (suite *ErrorsTestSuite) TestIsAndGetCode() {
	err := New(ErrVersionConflict)
	suite.True(Is(err, ErrVersionConflict))
	suite.False(Is(err, ErrSessionNotFound))
	suite.False(Is(nil, ErrVersionConflict))

	suite.Equal(ErrVersionConflict, GetCode(err))
	suite.Equal(ErrorCode(0), GetCode(nil))
	suite.Equal(ErrUnknown, GetCode(errors.New("普通错误")))
}

// 测试HTTP状态码映射
func (suite *ErrorsTestSuite) TestHTTPStatus() {
	cases := []struct {
		code   ErrorCode
		status int
	}{
		{ErrInvalidParam, 400},
		{ErrEnvelopeInvalid, 400},
		{ErrMissingIdempotencyKey, 400},
		{ErrNotFound, 404},
		{ErrSessionNotFound, 404},
		{ErrAlreadyExists, 409},
		{ErrVersionConflict, 409},
		{ErrIdempotencyMismatch, 409},
		{ErrPolicyViolation, 422},
		{ErrStateNotActive, 422},
		{ErrPermissionDenied, 403},
		{ErrUnauthorizedActor, 403},
		{ErrTimeout, 408},
		{ErrAuthentication, 401},
		{ErrTokenExpired, 401},
		{ErrDatabaseConnect, 503},
		{ErrPersistFailed, 503},
		{ErrUnknown, 500},
	}

	for _, tc := range cases {
		suite.Equal(tc.status, New(tc.code).HTTPStatus(), "错误码 %d", tc.code)
	}
}

// 测试可重试判断
func (suite *ErrorsTestSuite) TestIsRetryable() {
	suite.True(IsRetryable(New(ErrTimeout)))
	suite.True(IsRetryable(New(ErrTransaction)))
	suite.True(IsRetryable(New(ErrPersistFailed)))
	suite.False(IsRetryable(New(ErrVersionConflict)))
	suite.False(IsRetryable(New(ErrPolicyViolation)))
	suite.False(IsRetryable(nil))
}

// 测试严重错误判断
func (suite *ErrorsTestSuite) TestIsCritical() {
	suite.True(IsCritical(New(ErrDataIntegrity)))
	suite.True(IsCritical(New(ErrStateInvariantBroken)))
	suite.False(IsCritical(New(ErrInvalidParam)))
	suite.False(IsCritical(nil))
}

// 测试WithDetails与WithCause
func (suite *ErrorsTestSuite) TestWithDetailsAndCause() {
	err := New(ErrEngineFailure).WithDetails("STATE_VERSION_MISMATCH")
	suite.Equal("STATE_VERSION_MISMATCH", err.Details)

	cause := errors.New("底层错误")
	err = New(ErrPersistFailed).WithCause(cause)
	suite.Equal(cause, err.Cause)
	suite.Equal("底层错误", err.Details)
}

// 测试调用栈捕获
func (suite *ErrorsTestSuite) TestStackCapture() {
	err := New(ErrUnknown)
	suite.NotEmpty(err.Stack)
	suite.NotEmpty(err.GetStack())
}

// 测试错误响应结构
func (suite *ErrorsTestSuite) TestErrorResponse() {
	err := New(ErrVersionConflict, "EXPECTED_VERSION_MISMATCH")
	resp := NewErrorResponse(err, "req-1")
	suite.False(resp.Success)
	suite.Equal(err, resp.Error)
	suite.Equal("req-1", resp.RequestID)
	suite.NotZero(resp.Timestamp)
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}
