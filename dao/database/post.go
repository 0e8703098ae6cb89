package database

import (
	"context"

	"gameforum/models"
)

func InsertPost(ctx context.Context, q QueryClient, p *models.Post) error {
	return wrap("InsertPost", q.Insert(ctx, p))
}

func GetPost(ctx context.Context, q QueryClient, id models.PostID) (*models.Post, error) {
	p := new(models.Post)
	if err := q.First(ctx, p, Where(Eq("id", id))); err != nil {
		return nil, wrap("GetPost", err)
	}
	return p, nil
}

// PostsByThread returns the replies of a thread oldest first with their
// authors preloaded.
func PostsByThread(ctx context.Context, q QueryClient, thread models.ThreadID) ([]*models.Post, error) {
	posts := make([]*models.Post, 0)
	err := q.Select(ctx, &posts,
		Where(Eq("thread_id", thread)).With("Author").OrderBy("created_at ASC", "id ASC"))
	return posts, wrap("PostsByThread", err)
}

func LatestPostsByAuthor(ctx context.Context, q QueryClient, author models.ProfileID, limit int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, limit)
	err := q.Select(ctx, &posts,
		Where(Eq("author_id", author)).With("Thread").OrderBy("created_at DESC", "id DESC").Take(limit))
	return posts, wrap("LatestPostsByAuthor", err)
}

func LatestPosts(ctx context.Context, q QueryClient, limit int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, limit)
	err := q.Select(ctx, &posts,
		Query{}.With("Author", "Thread").OrderBy("created_at DESC", "id DESC").Take(limit))
	return posts, wrap("LatestPosts", err)
}

func CountPostsByAuthor(ctx context.Context, q QueryClient, author models.ProfileID) (int64, error) {
	n, err := q.Count(ctx, &models.Post{}, Where(Eq("author_id", author)))
	return n, wrap("CountPostsByAuthor", err)
}

func PostIDsByAuthor(ctx context.Context, q QueryClient, author models.ProfileID) ([]models.PostID, error) {
	var ids []models.PostID
	err := q.Pluck(ctx, &models.Post{}, "id", Where(Eq("author_id", author)), &ids)
	return ids, wrap("PostIDsByAuthor", err)
}

// PostPositions returns the 1-based place of every post of the given
// threads inside its thread, using the same (created_at, id) order the
// thread page shows.
func PostPositions(ctx context.Context, q QueryClient, threads []models.ThreadID) (map[models.PostID]int, error) {
	out := make(map[models.PostID]int)
	if len(threads) == 0 {
		return out, nil
	}
	posts := make([]*models.Post, 0)
	err := q.Select(ctx, &posts,
		Where(In("thread_id", threads)).Only("id", "thread_id", "created_at").OrderBy("created_at ASC", "id ASC"))
	if err != nil {
		return nil, wrap("PostPositions", err)
	}
	seen := make(map[models.ThreadID]int, len(threads))
	for _, p := range posts {
		seen[p.ThreadID]++
		out[p.ID] = seen[p.ThreadID]
	}
	return out, nil
}
