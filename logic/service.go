package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gameforum/dao/database"
	"gameforum/dao/redis"
	"gameforum/models"
	"gameforum/pkg/assistant"
	"gameforum/pkg/cache"
	"gameforum/pkg/errorx"
	"gameforum/pkg/jwt"
	"gameforum/pkg/mq"
	"gameforum/settings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ThreadSearcher is the full-text index. A nil searcher makes thread
// search fall back to SQL LIKE matching.
type ThreadSearcher interface {
	Search(ctx context.Context, term string, limit int) ([]models.ThreadID, error)
}

// Advisor drafts moderation hints.
type Advisor interface {
	Suggest(ctx context.Context, in assistant.ReportInput) (string, error)
}

// StatsSource runs the admin dashboard aggregate query.
type StatsSource interface {
	AdminStats(ctx context.Context, now time.Time) (*models.AdminStats, error)
}

// BlobStore keeps uploaded avatars.
type BlobStore interface {
	Upload(ctx context.Context, bucket, name string, data []byte) (string, error)
	RemoveURL(ctx context.Context, url string) error
}

// Deps lists everything a Service talks to. DB, Redis, Codec and the
// config sections are required; the rest may be nil.
type Deps struct {
	DB     database.QueryClient
	Stats  StatsSource
	Redis  *redis.Store
	Codec  *jwt.Codec
	Blobs  BlobStore
	Search ThreadSearcher
	Events mq.Publisher
	Advice Advisor
	L1     *cache.BigCache

	JWT     *settings.JWTConfig
	Forum   *settings.ForumConfig
	Storage *settings.StorageConfig
	Cache   *settings.CacheConfig

	// Now defaults to time.Now; tests pin it.
	Now func() time.Time
}

// Service implements every forum operation on top of Deps.
type Service struct {
	Deps
	sf singleflight.Group
}

func New(d Deps) *Service {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Events == nil {
		d.Events = mq.Nop{}
	}
	if d.Forum == nil {
		d.Forum = &settings.ForumConfig{}
	}
	if d.Forum.FanOut <= 0 {
		d.Forum.FanOut = 8
	}
	if d.Cache == nil {
		d.Cache = &settings.CacheConfig{}
	}
	return &Service{Deps: d}
}

func (s *Service) now() time.Time {
	return s.Now().UTC()
}

// storageErr logs a storage failure under op and converts it into the
// business error the controller understands. NotFound becomes notFound
// (ErrNotFound when nil); everything else is ErrServerBusy.
func storageErr(op string, err error, notFound *errorx.CodeError, fields ...zap.Field) error {
	if errors.Is(err, database.ErrNotFound) {
		if notFound == nil {
			return errorx.ErrNotFound
		}
		return notFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errorx.ErrTimeout
	}
	zap.L().Error(op+" failed", append(fields, zap.Error(err))...)
	return errorx.ErrServerBusy
}

// profileOf resolves the profile acting for an authenticated user.
func (s *Service) profileOf(ctx context.Context, uid models.UserID) (*models.Profile, error) {
	p, err := database.GetProfileByUserID(ctx, s.DB, uid)
	if err != nil {
		return nil, storageErr("database.GetProfileByUserID", err, errorx.ErrUserNotExist, zap.Int64("user_id", int64(uid)))
	}
	return p, nil
}

// publish hands e to the event bus. The write behind it already
// committed, so failures are only logged.
func (s *Service) publish(ctx context.Context, eventType string, id models.ThreadID) {
	e := mq.Event{Type: eventType, ThreadID: id, At: s.now()}
	if err := s.Events.Publish(ctx, e); err != nil {
		zap.L().Warn("publish event failed",
			zap.String("type", eventType),
			zap.Int64("thread_id", int64(id)),
			zap.Error(err))
	}
}

func clamp(n, def, hi int) int {
	if n <= 0 {
		return def
	}
	if n > hi {
		return hi
	}
	return n
}

// Health reports whether the database and the session registry answer.
func (s *Service) Health(ctx context.Context) error {
	if _, err := s.DB.Count(ctx, &models.Category{}, database.Where()); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := s.Redis.Ping(ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}
