package logic

import (
	"context"

	"gameforum/dao/database"
	"gameforum/models"
	"gameforum/pkg/errorx"
	"gameforum/pkg/mq"

	"go.uber.org/zap"
)

func (s *Service) TogglePin(ctx context.Context, user *models.SessionUser, id models.ThreadID) (*models.ModerationFlags, error) {
	return s.toggleFlag(ctx, user, id, "is_pinned")
}

func (s *Service) ToggleLock(ctx context.Context, user *models.SessionUser, id models.ThreadID) (*models.ModerationFlags, error) {
	return s.toggleFlag(ctx, user, id, "is_locked")
}

// toggleFlag flips one moderation flag with a compare-and-set on the value
// read. On failure it returns the flags as they were before, alongside
// the error, so callers can restore what they displayed.
func (s *Service) toggleFlag(ctx context.Context, user *models.SessionUser, id models.ThreadID, column string) (*models.ModerationFlags, error) {
	if err := requireStaff(user); err != nil {
		return nil, err
	}
	t, err := s.threadOrNotFound(ctx, id)
	if err != nil {
		return nil, err
	}

	prev := &models.ModerationFlags{ThreadID: t.ID, IsPinned: t.IsPinned, IsLocked: t.IsLocked}
	next := *prev
	current := prev.IsPinned
	if column == "is_locked" {
		current = prev.IsLocked
		next.IsLocked = !current
	} else {
		next.IsPinned = !current
	}

	ok, err := database.SetThreadFlag(ctx, s.DB, id, column, current, !current)
	if err != nil {
		return prev, storageErr("database.SetThreadFlag", err, nil, zap.Int64("thread_id", int64(id)), zap.String("flag", column))
	}
	if !ok {
		// Someone else wrote first. If they already produced the state we
		// were asked for, that is success; anything else is a conflict.
		again, err := database.GetThread(ctx, s.DB, id)
		if err != nil {
			return prev, storageErr("database.GetThread", err, nil, zap.Int64("thread_id", int64(id)))
		}
		if again.IsPinned != next.IsPinned || again.IsLocked != next.IsLocked {
			zap.L().Warn("moderation flag changed concurrently",
				zap.Int64("thread_id", int64(id)),
				zap.String("flag", column))
			return prev, errorx.ErrServerBusy.WithMsg("thread was modified concurrently, reload and retry")
		}
	}

	s.publish(ctx, mq.ThreadUpdated, id)
	return &next, nil
}
