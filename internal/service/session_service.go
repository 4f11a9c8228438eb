package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/wfunc/gem-game/internal/errors"
	"github.com/wfunc/gem-game/internal/game"
	"github.com/wfunc/gem-game/internal/models"
	"github.com/wfunc/gem-game/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// sessionService 会话服务实现
type sessionService struct {
	db             *gorm.DB
	sessionRepo    repository.GameSessionRepository
	eventRepo      repository.GameEventRepository
	defaultPlayers []string
	logger         *zap.Logger
}

// NewSessionService 创建会话服务
func NewSessionService(
	db *gorm.DB,
	sessionRepo repository.GameSessionRepository,
	eventRepo repository.GameEventRepository,
	defaultPlayers []string,
	logger *zap.Logger,
) SessionService {
	return &sessionService{
		db:             db,
		sessionRepo:    sessionRepo,
		eventRepo:      eventRepo,
		defaultPlayers: defaultPlayers,
		logger:         logger,
	}
}

// CreateSession 创建新会话。
// 未指定会话ID时生成UUID；未指定seed时使用会话ID；未指定玩家时使用配置默认值。
func (s *sessionService) CreateSession(ctx context.Context, req *CreateSessionRequest) (*SessionSnapshot, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	playerIDs := req.PlayerIDs
	if len(playerIDs) == 0 {
		playerIDs = s.defaultPlayers
	}

	seed := strings.TrimSpace(req.Seed)
	if seed == "" {
		seed = sessionID
	}

	gameCtx, err := game.NewSessionContext(sessionID, playerIDs, seed)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidParam, "玩家配置无效")
	}

	existing, err := s.sessionRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery, "查询会话失败")
	}
	if existing != nil {
		return nil, errors.New(errors.ErrAlreadyExists, "会话已存在")
	}

	model, err := encodeSessionModel(sessionID, gameCtx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDataIntegrity, "序列化会话状态失败")
	}

	if err := s.sessionRepo.Create(ctx, model); err != nil {
		// 并发创建同ID会话时存在性检查可能同时通过，由唯一约束兜底
		if isUniqueViolation(err) {
			return nil, errors.New(errors.ErrAlreadyExists, "会话已存在")
		}
		return nil, errors.Wrap(err, errors.ErrPersistFailed, "创建会话失败")
	}

	s.logger.Info("会话已创建",
		zap.String("session_id", sessionID),
		zap.Int("players", len(gameCtx.PlayerOrder)),
	)

	return &SessionSnapshot{
		SessionID:   sessionID,
		State:       gameCtx.State,
		PlayerOrder: gameCtx.PlayerOrder,
	}, nil
}

// GetSession 获取会话快照
func (s *sessionService) GetSession(ctx context.Context, sessionID string) (*SessionSnapshot, error) {
	model, err := s.sessionRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery, "查询会话失败")
	}
	if model == nil {
		return nil, errors.New(errors.ErrSessionNotFound, "会话不存在")
	}

	gameCtx, err := decodeSessionModel(model)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDataIntegrity, "会话状态数据损坏")
	}

	return &SessionSnapshot{
		SessionID:   sessionID,
		State:       gameCtx.State,
		PlayerOrder: gameCtx.PlayerOrder,
	}, nil
}

// ListEvents 按版本升序列出会话事件
func (s *sessionService) ListEvents(ctx context.Context, sessionID string, fromVersion, page, pageSize int) (*EventPage, error) {
	model, err := s.sessionRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery, "查询会话失败")
	}
	if model == nil {
		return nil, errors.New(errors.ErrSessionNotFound, "会话不存在")
	}

	p := repository.NewPagination(page, pageSize)
	records, err := s.eventRepo.ListBySession(ctx, sessionID, fromVersion, p)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery, "查询事件失败")
	}

	events := make([]EventView, 0, len(records))
	for _, record := range records {
		var payload interface{}
		if err := json.Unmarshal([]byte(record.PayloadData), &payload); err != nil {
			return nil, errors.Wrap(err, errors.ErrDataIntegrity, "事件负载数据损坏")
		}
		events = append(events, EventView{
			Type:    record.Type,
			ActorID: record.ActorID,
			Version: record.Version,
			Payload: payload,
		})
	}

	return &EventPage{
		SessionID: sessionID,
		Events:    events,
		Total:     p.Total,
		Page:      p.Page,
		PageSize:  p.PageSize,
	}, nil
}

// encodeSessionModel 会话上下文编码为持久化模型
func encodeSessionModel(sessionID string, gameCtx *game.SessionContext) (*models.GameSession, error) {
	stateData, err := json.Marshal(gameCtx.State)
	if err != nil {
		return nil, err
	}
	orderData, err := json.Marshal(gameCtx.PlayerOrder)
	if err != nil {
		return nil, err
	}
	deckData, err := json.Marshal(gameCtx.DeckCardIDsByTier)
	if err != nil {
		return nil, err
	}

	return &models.GameSession{
		SessionID:       sessionID,
		Status:          string(gameCtx.State.Status),
		Seed:            gameCtx.State.Seed,
		Version:         gameCtx.State.Version,
		CurrentPlayerID: gameCtx.State.CurrentPlayerID,
		StateData:       string(stateData),
		PlayerOrderData: string(orderData),
		DeckData:        string(deckData),
	}, nil
}

// decodeSessionModel 持久化模型解码为会话上下文
func decodeSessionModel(model *models.GameSession) (*game.SessionContext, error) {
	var state game.State
	if err := json.Unmarshal([]byte(model.StateData), &state); err != nil {
		return nil, err
	}

	var playerOrder []string
	if err := json.Unmarshal([]byte(model.PlayerOrderData), &playerOrder); err != nil {
		return nil, err
	}

	var decks map[game.DeckTier][]string
	if err := json.Unmarshal([]byte(model.DeckData), &decks); err != nil {
		return nil, err
	}

	return &game.SessionContext{
		GameID:            model.SessionID,
		State:             &state,
		PlayerOrder:       playerOrder,
		DeckCardIDsByTier: decks,
	}, nil
}
