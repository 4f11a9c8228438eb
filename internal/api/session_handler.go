package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/wfunc/gem-game/internal/errors"
	"github.com/wfunc/gem-game/internal/game"
	"github.com/wfunc/gem-game/internal/middleware"
	"github.com/wfunc/gem-game/internal/service"
)

// ErrorResponse API错误响应
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SessionHandler 会话处理器
type SessionHandler struct {
	sessionService service.SessionService
	commandService service.CommandService
}

// NewSessionHandler 创建会话处理器
func NewSessionHandler(sessionService service.SessionService, commandService service.CommandService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		commandService: commandService,
	}
}

// CreateSession 创建会话
// @Summary 创建游戏会话
// @Description 按玩家列表与种子初始化一局新会话
// @Tags Session
// @Accept json
// @Produce json
// @Param request body service.CreateSessionRequest true "会话信息"
// @Success 201 {object} service.SessionSnapshot
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req service.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "请求参数错误",
			Details: err.Error(),
		})
		return
	}

	snapshot, err := h.sessionService.CreateSession(c.Request.Context(), &req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, snapshot)
}

// GetSession 查询会话
// @Summary 查询会话快照
// @Tags Session
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} service.SessionSnapshot
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	snapshot, err := h.sessionService.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// SubmitCommand 提交命令
// @Summary 提交游戏命令
// @Description 对指定会话提交一条命令，结果为接受、重放或拒绝
// @Tags Session
// @Accept json
// @Produce json
// @Param id path string true "会话ID"
// @Param request body game.Command true "命令"
// @Success 200 {object} service.CommandResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} service.CommandResult
// @Router /api/v1/sessions/{id}/commands [post]
func (h *SessionHandler) SubmitCommand(c *gin.Context) {
	var cmd game.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "请求参数错误",
			Details: err.Error(),
		})
		return
	}

	// 携带身份时提交方必须与命令actorId一致
	if !middleware.ActorAllowed(c, cmd.ActorID) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Code:    "UNAUTHORIZED_ACTOR",
			Message: "身份与命令actorId不一致",
		})
		return
	}

	result, err := h.commandService.Submit(c.Request.Context(), c.Param("id"), &cmd)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(commandResultStatus(result), result)
}

// ListEvents 查询事件流
// @Summary 按版本升序查询会话事件
// @Tags Session
// @Produce json
// @Param id path string true "会话ID"
// @Param fromVersion query int false "起始版本（不含）"
// @Param page query int false "页码"
// @Param page_size query int false "每页条数"
// @Success 200 {object} service.EventPage
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/sessions/{id}/events [get]
func (h *SessionHandler) ListEvents(c *gin.Context) {
	fromVersion, _ := strconv.Atoi(c.DefaultQuery("fromVersion", "0"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	events, err := h.sessionService.ListEvents(c.Request.Context(), c.Param("id"), fromVersion, page, pageSize)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// commandResultStatus 命令结果到HTTP状态码的映射
func commandResultStatus(result *service.CommandResult) int {
	if result.Kind != service.ResultRejected {
		return http.StatusOK
	}

	switch result.Rejection.Reason {
	case service.RejectMissingIdempotencyKey:
		return http.StatusBadRequest
	case service.RejectStateNotFound:
		return http.StatusNotFound
	case service.RejectIdempotencyMismatch, service.RejectVersionConflict:
		return http.StatusConflict
	case service.RejectPolicyViolation:
		return http.StatusUnprocessableEntity
	case service.RejectEngineFailure:
		// 信封级错误属于请求格式问题
		if strings.HasPrefix(result.Rejection.Details, string(game.FailureEnvelopeInvalid)) {
			return http.StatusBadRequest
		}
		return http.StatusUnprocessableEntity
	case service.RejectInfraFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError 输出服务层错误
func (h *SessionHandler) writeServiceError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if e, ok := err.(*apperrors.AppError); ok {
		appErr = e
	} else {
		appErr = apperrors.Wrap(err, apperrors.ErrUnknown)
	}

	c.JSON(appErr.HTTPStatus(), ErrorResponse{
		Code:    strconv.Itoa(int(appErr.Code)),
		Message: appErr.Message,
		Details: appErr.Details,
	})
}
