package logic

import (
	"context"

	"gameforum/dao/database"
	"gameforum/models"
	"gameforum/pkg/errorx"
	"gameforum/pkg/mq"
	"gameforum/pkg/snowflake"

	"go.uber.org/zap"
)

// CreateThread opens a thread in an existing category.
func (s *Service) CreateThread(ctx context.Context, user *models.SessionUser, p *models.ParamThread) (*models.ThreadSummary, error) {
	title, err := validateText("title", p.Title, MaxTitleLen)
	if err != nil {
		return nil, err
	}
	content, err := validateText("content", p.Content, MaxContentLen)
	if err != nil {
		return nil, err
	}
	if p.CategoryID == 0 {
		return nil, errorx.ErrInvalidParam.WithMsg("category is required")
	}

	author, err := s.profileOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	category, err := database.GetCategoryByID(ctx, s.DB, p.CategoryID)
	if err != nil {
		return nil, storageErr("database.GetCategoryByID", err, nil, zap.Int64("category_id", int64(p.CategoryID)))
	}
	if category == nil {
		return nil, errorx.ErrInvalidParam.WithMsg("category does not exist")
	}

	t := &models.Thread{
		ID:         models.ThreadID(snowflake.GenID()),
		Title:      title,
		Content:    content,
		AuthorID:   author.ID,
		CategoryID: category.ID,
	}
	if err = database.InsertThread(ctx, s.DB, t); err != nil {
		return nil, storageErr("database.InsertThread", err, nil, zap.Int64("thread_id", int64(t.ID)))
	}

	// The ranking is derived data; the thread exists either way.
	if err = s.Redis.AddThread(ctx, t.ID, t.CreatedAt); err != nil {
		zap.L().Error("redis.AddThread failed", zap.Int64("thread_id", int64(t.ID)), zap.Error(err))
	}
	s.publish(ctx, mq.ThreadCreated, t.ID)

	t.Author = author
	t.Category = category
	return newSummary(t), nil
}

// DeleteThread removes a thread with its posts and likes. Admins only.
func (s *Service) DeleteThread(ctx context.Context, user *models.SessionUser, id models.ThreadID) error {
	if user.Role != models.RoleAdmin {
		return errorx.ErrForbidden
	}
	err := s.DB.Transaction(ctx, func(tx database.QueryClient) error {
		return database.DeleteThread(ctx, tx, id)
	})
	if err != nil {
		return storageErr("database.DeleteThread", err, errorx.ErrNotFound.WithMsg("thread not found"), zap.Int64("thread_id", int64(id)))
	}
	if err = s.Redis.RemoveThread(ctx, id); err != nil {
		zap.L().Error("redis.RemoveThread failed", zap.Int64("thread_id", int64(id)), zap.Error(err))
	}
	s.publish(ctx, mq.ThreadDeleted, id)
	return nil
}

// CreatePost replies to a thread unless it is locked.
func (s *Service) CreatePost(ctx context.Context, user *models.SessionUser, threadID models.ThreadID, p *models.ParamPost) (*models.PostView, error) {
	content, err := validateText("content", p.Content, MaxContentLen)
	if err != nil {
		return nil, err
	}
	t, err := s.threadOrNotFound(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if t.IsLocked {
		return nil, errorx.ErrThreadLocked
	}
	author, err := s.profileOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:       models.PostID(snowflake.GenID()),
		Content:  content,
		AuthorID: author.ID,
		ThreadID: t.ID,
	}
	if err = database.InsertPost(ctx, s.DB, post); err != nil {
		return nil, storageErr("database.InsertPost", err, nil, zap.Int64("thread_id", int64(t.ID)))
	}

	position := 0
	if counts, err := database.PostCountsByThread(ctx, s.DB, []models.ThreadID{t.ID}); err == nil {
		position = int(counts[t.ID])
	} else {
		degraded("post", "position", err)
	}
	return &models.PostView{
		ID:        post.ID,
		ThreadID:  post.ThreadID,
		Content:   post.Content,
		Author:    models.NewAuthorView(author.ID, author),
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
		Position:  position,
	}, nil
}
