package logic

import (
	"context"
	"errors"
	"fmt"

	"gameforum/dao/database"
	"gameforum/dao/es"
	"gameforum/models"
	"gameforum/pkg/mq"

	"go.uber.org/zap"
)

// ThreadIndexer is the write side of the full-text index.
type ThreadIndexer interface {
	Index(ctx context.Context, id models.ThreadID, doc es.ThreadDoc) error
	Delete(ctx context.Context, id models.ThreadID) error
}

// Indexer keeps the search index in step with thread events. Events carry
// only the id; the current row is read back so replays are harmless.
type Indexer struct {
	DB    database.QueryClient
	Index ThreadIndexer
}

func NewIndexer(db database.QueryClient, index ThreadIndexer) *Indexer {
	return &Indexer{DB: db, Index: index}
}

// Handle satisfies mq.Handler.
func (x *Indexer) Handle(ctx context.Context, e mq.Event) error {
	switch e.Type {
	case mq.ThreadCreated, mq.ThreadUpdated:
		t, err := database.GetThread(ctx, x.DB, e.ThreadID)
		if errors.Is(err, database.ErrNotFound) {
			return x.Index.Delete(ctx, e.ThreadID)
		}
		if err != nil {
			return err
		}
		return x.Index.Index(ctx, t.ID, es.NewThreadDoc(t))
	case mq.ThreadDeleted:
		return x.Index.Delete(ctx, e.ThreadID)
	default:
		zap.L().Warn("indexer: unknown event type", zap.String("type", e.Type))
		return fmt.Errorf("unknown event type %q", e.Type)
	}
}
