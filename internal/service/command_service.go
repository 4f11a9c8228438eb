package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/wfunc/gem-game/internal/game"
	"github.com/wfunc/gem-game/internal/models"
	"github.com/wfunc/gem-game/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// commandService 命令服务实现。
// 同一会话的命令经会话锁串行执行；幂等键重复提交时重放已提交结果；
// 提交成功后在锁外通知订阅者。
type commandService struct {
	db       *gorm.DB
	manager  *repository.Manager
	locker   *sessionLocker
	notifier ChangeNotifier
	logger   *zap.Logger
}

// NewCommandService 创建命令服务，notifier可为nil
func NewCommandService(db *gorm.DB, manager *repository.Manager, notifier ChangeNotifier, logger *zap.Logger) CommandService {
	return &commandService{
		db:       db,
		manager:  manager,
		locker:   newSessionLocker(),
		notifier: notifier,
		logger:   logger,
	}
}

// Submit 提交命令
func (s *commandService) Submit(ctx context.Context, sessionID string, cmd *game.Command) (*CommandResult, error) {
	if strings.TrimSpace(cmd.IdempotencyKey) == "" {
		return rejected(&Rejection{Reason: RejectMissingIdempotencyKey}), nil
	}

	// defer兜底：流程内panic也要归还会话锁，否则该会话永久阻塞
	release := s.locker.Acquire(sessionID)
	defer release()

	result := s.submitLocked(ctx, sessionID, cmd)
	release()

	if result.Kind == ResultAccepted && s.notifier != nil {
		s.notifier.NotifySessionChanged(sessionID, result.Events, result.State)
	}

	return result, nil
}

// submitLocked 持有会话锁时的提交流程
func (s *commandService) submitLocked(ctx context.Context, sessionID string, cmd *game.Command) *CommandResult {
	model, err := s.manager.GameSession().FindBySessionID(ctx, sessionID)
	if err != nil {
		s.logger.Error("查询会话失败", zap.String("session_id", sessionID), zap.Error(err))
		return rejected(&Rejection{Reason: RejectInfraFailure, Details: err.Error(), Retryable: true})
	}
	if model == nil {
		return rejected(&Rejection{Reason: RejectStateNotFound, Details: "GAME_CONTEXT_NOT_FOUND"})
	}

	gameCtx, err := decodeSessionModel(model)
	if err != nil {
		s.logger.Error("会话状态数据损坏", zap.String("session_id", sessionID), zap.Error(err))
		return rejected(&Rejection{Reason: RejectInfraFailure, Details: err.Error(), Retryable: true})
	}

	fingerprint, err := game.CanonicalFingerprint(cmd)
	if err != nil {
		return rejected(&Rejection{Reason: RejectInfraFailure, Details: err.Error(), Retryable: true})
	}

	record, err := s.manager.CommandRecord().FindBySessionAndKey(ctx, sessionID, cmd.IdempotencyKey)
	if err != nil {
		return rejected(&Rejection{Reason: RejectInfraFailure, Details: err.Error(), Retryable: true})
	}
	if record != nil {
		return s.replayFromRecord(record, fingerprint)
	}

	if cmd.ExpectedVersion != gameCtx.State.Version {
		return rejected(&Rejection{Reason: RejectVersionConflict, Details: "EXPECTED_VERSION_MISMATCH"})
	}

	applyResult, failure := game.Apply(game.ApplyInput{
		State:             gameCtx.State,
		Command:           cmd,
		PlayerOrder:       gameCtx.PlayerOrder,
		DeckCardIDsByTier: gameCtx.DeckCardIDsByTier,
	})
	if failure != nil {
		if failure.Code == game.FailurePolicyViolation {
			return rejected(&Rejection{Reason: RejectPolicyViolation, PolicyCode: failure.PolicyCode})
		}
		return rejected(&Rejection{Reason: RejectEngineFailure, Details: failure.Error()})
	}

	if rejection := s.persistCommit(ctx, sessionID, cmd, fingerprint, gameCtx.State.Version, applyResult); rejection != nil {
		// 并发重复提交：另一请求先落库，按幂等重放处理
		if rejection.Details == "IDEMPOTENCY_RECORD_EXISTS" {
			committed, err := s.manager.CommandRecord().FindBySessionAndKey(ctx, sessionID, cmd.IdempotencyKey)
			if err == nil && committed != nil {
				return s.replayFromRecord(committed, fingerprint)
			}
			return rejected(&Rejection{Reason: RejectInfraFailure, Details: "IDEMPOTENCY_RECORD_MISSING", Retryable: true})
		}
		return rejected(rejection)
	}

	s.logger.Info("命令已提交",
		zap.String("session_id", sessionID),
		zap.String("type", string(cmd.Type)),
		zap.String("actor_id", cmd.ActorID),
		zap.Int("version", applyResult.NextState.Version),
	)

	return &CommandResult{
		Kind:   ResultAccepted,
		Events: applyResult.Events,
		State:  applyResult.NextState,
	}
}

// persistCommit 原子落库：版本守卫更新会话 + 命令记录 + 事件流。
// 任一步失败则整体回滚。
func (s *commandService) persistCommit(
	ctx context.Context,
	sessionID string,
	cmd *game.Command,
	fingerprint string,
	fromVersion int,
	applyResult *game.ApplyResult,
) *Rejection {
	eventsData, err := json.Marshal(applyResult.Events)
	if err != nil {
		return &Rejection{Reason: RejectInfraFailure, Details: err.Error(), Retryable: true}
	}
	stateData, err := json.Marshal(applyResult.NextState)
	if err != nil {
		return &Rejection{Reason: RejectInfraFailure, Details: err.Error(), Retryable: true}
	}

	eventRecords := make([]*models.GameEventRecord, 0, len(applyResult.Events))
	for _, event := range applyResult.Events {
		payloadData, err := json.Marshal(event.Payload)
		if err != nil {
			return &Rejection{Reason: RejectInfraFailure, Details: err.Error(), Retryable: true}
		}
		eventRecords = append(eventRecords, &models.GameEventRecord{
			SessionID:   sessionID,
			Version:     event.Version,
			Type:        string(event.Type),
			ActorID:     event.ActorID,
			PayloadData: string(payloadData),
		})
	}

	next := applyResult.NextState
	err = s.manager.WithTransaction(ctx, func(tx *repository.Transaction) error {
		affected, err := tx.GameSession().UpdateWithVersionGuard(ctx, sessionID, fromVersion, map[string]interface{}{
			"status":            string(next.Status),
			"version":           next.Version,
			"current_player_id": next.CurrentPlayerID,
			"state_data":        string(stateData),
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			return errVersionGuard
		}

		if err := tx.CommandRecord().Create(ctx, &models.CommandRecord{
			SessionID:      sessionID,
			IdempotencyKey: cmd.IdempotencyKey,
			Fingerprint:    fingerprint,
			EventsData:     string(eventsData),
			NextStateData:  string(stateData),
		}); err != nil {
			if isUniqueViolation(err) {
				return errDuplicateCommand
			}
			return err
		}

		return tx.GameEvent().CreateBatch(ctx, eventRecords)
	})

	switch err {
	case nil:
		return nil
	case errVersionGuard:
		return &Rejection{Reason: RejectVersionConflict, Details: "EXPECTED_VERSION_MISMATCH"}
	case errDuplicateCommand:
		return &Rejection{Reason: RejectInfraFailure, Details: "IDEMPOTENCY_RECORD_EXISTS", Retryable: true}
	default:
		s.logger.Error("命令落库失败", zap.String("session_id", sessionID), zap.Error(err))
		return &Rejection{Reason: RejectInfraFailure, Details: err.Error(), Retryable: true}
	}
}

// replayFromRecord 从已提交记录重放结果
func (s *commandService) replayFromRecord(record *models.CommandRecord, fingerprint string) *CommandResult {
	if record.Fingerprint != fingerprint {
		return rejected(&Rejection{Reason: RejectIdempotencyMismatch})
	}

	var events []game.Event
	if err := json.Unmarshal([]byte(record.EventsData), &events); err != nil {
		return rejected(&Rejection{Reason: RejectInfraFailure, Details: err.Error(), Retryable: true})
	}

	var state game.State
	if err := json.Unmarshal([]byte(record.NextStateData), &state); err != nil {
		return rejected(&Rejection{Reason: RejectInfraFailure, Details: err.Error(), Retryable: true})
	}

	return &CommandResult{
		Kind:   ResultReplayed,
		Events: events,
		State:  &state,
	}
}

func rejected(rejection *Rejection) *CommandResult {
	return &CommandResult{
		Kind:      ResultRejected,
		Rejection: rejection,
	}
}

var (
	errVersionGuard     = &sentinelError{"版本守卫未命中"}
	errDuplicateCommand = &sentinelError{"命令记录已存在"}
)

type sentinelError struct {
	msg string
}

func (e *sentinelError) Error() string {
	return e.msg
}

// isUniqueViolation 判断是否为唯一约束冲突
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}
