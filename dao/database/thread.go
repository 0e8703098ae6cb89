package database

import (
	"context"

	"gameforum/models"
)

// ThreadFilter drives every thread list query. Zero values mean "no
// filter"; AuthorIDs is applied when FilterAuthors is set, so an author
// search that matched nobody yields an empty list instead of every thread.
type ThreadFilter struct {
	CategoryID    models.CategoryID
	Search        string
	SearchColumns []string
	AuthorIDs     []models.ProfileID
	FilterAuthors bool
	Status        string
	ExcludeID     models.ThreadID
	Sort          string
	PinnedFirst   bool
	Limit         int
	Offset        int
}

const postCountExpr = "(SELECT COUNT(*) FROM posts WHERE posts.thread_id = threads.id)"

// threadOrder maps a sort key onto ORDER BY terms. Every order ends in a
// unique column so paging is stable.
func threadOrder(sort string, pinnedFirst bool) []string {
	var orders []string
	if pinnedFirst {
		orders = append(orders, "is_pinned DESC")
	}
	switch sort {
	case models.SortOldest:
		orders = append(orders, "created_at ASC", "id ASC")
	case models.SortPopular, models.SortViews:
		orders = append(orders, "view_count DESC", "created_at DESC", "id DESC")
	case models.SortMostReplies, models.SortActivity:
		orders = append(orders, postCountExpr+" DESC", "created_at DESC", "id DESC")
	case models.SortTitle:
		orders = append(orders, "title ASC", "id ASC")
	default:
		orders = append(orders, "created_at DESC", "id DESC")
	}
	return orders
}

func (f ThreadFilter) query() Query {
	q := Query{}.With("Author", "Category").OrderBy(threadOrder(f.Sort, f.PinnedFirst)...)
	if f.CategoryID != 0 {
		q = q.And(Eq("category_id", f.CategoryID))
	}
	if f.ExcludeID != 0 {
		q = q.And(Neq("id", f.ExcludeID))
	}
	if f.Search != "" {
		cols := f.SearchColumns
		if len(cols) == 0 {
			cols = []string{"title"}
		}
		matches := make([]Filter, 0, len(cols))
		for _, c := range cols {
			matches = append(matches, Contains(c, f.Search))
		}
		q = q.And(Or(matches...))
	}
	if f.FilterAuthors {
		q = q.And(In("author_id", f.AuthorIDs))
	}
	switch f.Status {
	case models.StatusPinned:
		q = q.And(Eq("is_pinned", true))
	case models.StatusLocked:
		q = q.And(Eq("is_locked", true))
	case models.StatusNormal:
		q = q.And(Eq("is_pinned", false), Eq("is_locked", false))
	}
	return q.Take(f.Limit).Skip(f.Offset)
}

func InsertThread(ctx context.Context, q QueryClient, t *models.Thread) error {
	return wrap("InsertThread", q.Insert(ctx, t))
}

// GetThread loads one thread with its author and category.
func GetThread(ctx context.Context, q QueryClient, id models.ThreadID) (*models.Thread, error) {
	t := new(models.Thread)
	if err := q.First(ctx, t, Where(Eq("id", id)).With("Author", "Category")); err != nil {
		return nil, wrap("GetThread", err)
	}
	return t, nil
}

func ListThreads(ctx context.Context, q QueryClient, f ThreadFilter) ([]*models.Thread, error) {
	if f.FilterAuthors && len(f.AuthorIDs) == 0 {
		return []*models.Thread{}, nil
	}
	threads := make([]*models.Thread, 0, f.Limit)
	err := q.Select(ctx, &threads, f.query())
	return threads, wrap("ListThreads", err)
}

func CountThreads(ctx context.Context, q QueryClient, f ThreadFilter) (int64, error) {
	if f.FilterAuthors && len(f.AuthorIDs) == 0 {
		return 0, nil
	}
	query := f.query()
	n, err := q.Count(ctx, &models.Thread{}, Query{Filters: query.Filters})
	return n, wrap("CountThreads", err)
}

// ThreadsByIDs loads threads in the order of ids, skipping missing ones.
func ThreadsByIDs(ctx context.Context, q QueryClient, ids []models.ThreadID) ([]*models.Thread, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	threads := make([]*models.Thread, 0, len(ids))
	if err := q.Select(ctx, &threads, Where(In("id", ids)).With("Author", "Category")); err != nil {
		return nil, wrap("ThreadsByIDs", err)
	}
	byID := make(map[models.ThreadID]*models.Thread, len(threads))
	for _, t := range threads {
		byID[t.ID] = t
	}
	ordered := make([]*models.Thread, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			ordered = append(ordered, t)
		}
	}
	return ordered, nil
}

// ThreadTitles maps thread ids to titles for report listings.
func ThreadTitles(ctx context.Context, q QueryClient, ids []models.ThreadID) (map[models.ThreadID]string, error) {
	out := make(map[models.ThreadID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	threads := make([]*models.Thread, 0, len(ids))
	if err := q.Select(ctx, &threads, Where(In("id", ids)).Only("id", "title")); err != nil {
		return nil, wrap("ThreadTitles", err)
	}
	for _, t := range threads {
		out[t.ID] = t.Title
	}
	return out, nil
}

func LatestThreadsByAuthor(ctx context.Context, q QueryClient, author models.ProfileID, limit int) ([]*models.Thread, error) {
	threads := make([]*models.Thread, 0, limit)
	err := q.Select(ctx, &threads,
		Where(Eq("author_id", author)).With("Category").OrderBy("created_at DESC", "id DESC").Take(limit))
	return threads, wrap("LatestThreadsByAuthor", err)
}

// LatestThreads is the unfiltered newest-first feed used by the admin
// activity stream.
func LatestThreads(ctx context.Context, q QueryClient, limit int) ([]*models.Thread, error) {
	threads := make([]*models.Thread, 0, limit)
	err := q.Select(ctx, &threads,
		Query{}.With("Author", "Category").OrderBy("created_at DESC", "id DESC").Take(limit))
	return threads, wrap("LatestThreads", err)
}

func CountThreadsByAuthor(ctx context.Context, q QueryClient, author models.ProfileID) (int64, error) {
	n, err := q.Count(ctx, &models.Thread{}, Where(Eq("author_id", author)))
	return n, wrap("CountThreadsByAuthor", err)
}

func SumThreadViewsByAuthor(ctx context.Context, q QueryClient, author models.ProfileID) (int64, error) {
	n, err := q.Sum(ctx, &models.Thread{}, "view_count", Where(Eq("author_id", author)))
	return n, wrap("SumThreadViewsByAuthor", err)
}

func IncrementThreadViews(ctx context.Context, q QueryClient, id models.ThreadID) error {
	return wrap("IncrementThreadViews", q.Increment(ctx, &models.Thread{}, Where(Eq("id", id)), "view_count", 1))
}

// SetThreadFlag flips column from expected to next only if the row still
// holds expected. It reports whether the write happened.
func SetThreadFlag(ctx context.Context, q QueryClient, id models.ThreadID, column string, expected, next bool) (bool, error) {
	n, err := q.Update(ctx, &models.Thread{},
		Where(Eq("id", id), Eq(column, expected)),
		map[string]any{column: next})
	if err != nil {
		return false, wrap("SetThreadFlag", err)
	}
	return n > 0, nil
}

// DeleteThread removes a thread with its posts and every like pointing at
// either. Reports keep their dangling ids as history. Run it inside a
// transaction.
func DeleteThread(ctx context.Context, q QueryClient, id models.ThreadID) error {
	var postIDs []models.PostID
	if err := q.Pluck(ctx, &models.Post{}, "id", Where(Eq("thread_id", id)), &postIDs); err != nil {
		return wrap("DeleteThread", err)
	}
	if len(postIDs) > 0 {
		if _, err := q.Delete(ctx, &models.Like{}, Where(In("post_id", postIDs))); err != nil {
			return wrap("DeleteThread", err)
		}
		if _, err := q.Delete(ctx, &models.Post{}, Where(Eq("thread_id", id))); err != nil {
			return wrap("DeleteThread", err)
		}
	}
	if _, err := q.Delete(ctx, &models.ThreadLike{}, Where(Eq("thread_id", id))); err != nil {
		return wrap("DeleteThread", err)
	}
	n, err := q.Delete(ctx, &models.Thread{}, Where(Eq("id", id)))
	if err != nil {
		return wrap("DeleteThread", err)
	}
	if n == 0 {
		return &DataError{Op: "DeleteThread", Kind: KindNotFound, Err: ErrNotFound}
	}
	return nil
}

// PostCountsByThread counts replies per thread; threads without replies
// are absent from the map.
func PostCountsByThread(ctx context.Context, q QueryClient, ids []models.ThreadID) (map[models.ThreadID]int64, error) {
	out := make(map[models.ThreadID]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	counts, err := q.CountBy(ctx, &models.Post{}, "thread_id", Where(In("thread_id", ids)))
	if err != nil {
		return nil, wrap("PostCountsByThread", err)
	}
	for k, n := range counts {
		out[models.ThreadID(k)] = n
	}
	return out, nil
}
