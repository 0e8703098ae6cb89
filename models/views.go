package models

import "time"

// DeletedAuthorName stands in for an author whose profile is gone.
const DeletedAuthorName = "Deleted User"

// SessionUser is the identity attached to an authenticated request.
type SessionUser struct {
	ID          UserID    `json:"id,string"`
	ProfileID   ProfileID `json:"profile_id,string"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
}

type AuthResult struct {
	User      *SessionUser `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type AuthorView struct {
	ID          ProfileID `json:"id,string"`
	UserID      UserID    `json:"user_id,string"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	Role        string    `json:"role"`
}

// NewAuthorView renders p, or the deleted-user placeholder when p is nil.
func NewAuthorView(id ProfileID, p *Profile) AuthorView {
	if p == nil {
		return AuthorView{ID: id, Username: DeletedAuthorName, DisplayName: DeletedAuthorName, Role: RoleUser}
	}
	return AuthorView{
		ID:          p.ID,
		UserID:      p.UserID,
		Username:    p.Username,
		DisplayName: p.Name(),
		AvatarURL:   p.AvatarURL,
		Role:        p.Role,
	}
}

type CategoryView struct {
	ID   CategoryID `json:"id,string"`
	Name string     `json:"name"`
}

// ThreadSummary is one row of every thread list.
type ThreadSummary struct {
	ID        ThreadID      `json:"id,string"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Author    AuthorView    `json:"author"`
	Category  *CategoryView `json:"category"`
	ViewCount int64         `json:"view_count"`
	IsPinned  bool          `json:"is_pinned"`
	IsLocked  bool          `json:"is_locked"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	PostCount int64         `json:"post_count"`
	LikeCount int64         `json:"like_count"`
	UserLiked bool          `json:"user_liked"`
}

type PostView struct {
	ID        PostID     `json:"id,string"`
	ThreadID  ThreadID   `json:"thread_id,string"`
	Content   string     `json:"content"`
	Author    AuthorView `json:"author"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Position  int        `json:"position"`
	LikeCount int64      `json:"like_count"`
	UserLiked bool       `json:"user_liked"`
}

type ThreadDetail struct {
	Thread  *ThreadSummary   `json:"thread"`
	Posts   []*PostView      `json:"posts"`
	Related []*ThreadSummary `json:"related"`
}

// LatestThread is a profile page entry.
type LatestThread struct {
	ID           ThreadID  `json:"id,string"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	CategoryName string    `json:"category_name"`
	ViewCount    int64     `json:"view_count"`
	PostCount    int64     `json:"post_count"`
	LikeCount    int64     `json:"like_count"`
}

// LatestPost is a profile page entry; Position is the 1-based place of
// the post inside its thread.
type LatestPost struct {
	ID          PostID    `json:"id,string"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	ThreadID    ThreadID  `json:"thread_id,string"`
	ThreadTitle string    `json:"thread_title"`
	Position    int       `json:"position"`
	LikeCount   int64     `json:"like_count"`
}

type ProfileStats struct {
	ThreadCount    int64 `json:"thread_count"`
	PostCount      int64 `json:"post_count"`
	LikeCount      int64 `json:"like_count"`
	TotalViews     int64 `json:"total_views"`
	FollowerCount  int64 `json:"follower_count"`
	FollowingCount int64 `json:"following_count"`
}

type ProfileView struct {
	UserID        UserID          `json:"user_id,string"`
	ProfileID     ProfileID       `json:"profile_id,string"`
	Username      string          `json:"username"`
	DisplayName   string          `json:"display_name"`
	AvatarURL     string          `json:"avatar_url"`
	Bio           string          `json:"bio"`
	Role          string          `json:"role"`
	Views         int64           `json:"views"`
	Joined        time.Time       `json:"joined"`
	Stats         ProfileStats    `json:"stats"`
	LatestThreads []*LatestThread `json:"latest_threads"`
	LatestPosts   []*LatestPost   `json:"latest_posts"`
	Settings      *UserSettings   `json:"settings,omitempty"`
	IsOwner       bool            `json:"is_owner"`
	IsFollowing   bool            `json:"is_following"`
}

type FollowEntry struct {
	ID          UserID    `json:"id,string"`
	ProfileID   ProfileID `json:"profile_id,string"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
}

type FollowCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

type LikeState struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

type HomeView struct {
	LatestThreads []*ThreadSummary `json:"latest_threads"`
	LatestReviews []*ThreadSummary `json:"latest_reviews"`
	Trending      []*ThreadSummary `json:"trending"`
}

type SearchResult struct {
	Threads []*ThreadSummary `json:"threads"`
	Users   []*FollowEntry   `json:"users"`
}

type AdminStats struct {
	TotalUsers     int64 `json:"total_users" db:"total_users"`
	TotalThreads   int64 `json:"total_threads" db:"total_threads"`
	TotalPosts     int64 `json:"total_posts" db:"total_posts"`
	TotalReports   int64 `json:"total_reports" db:"total_reports"`
	PendingReports int64 `json:"pending_reports" db:"pending_reports"`
	TodayUsers     int64 `json:"today_users" db:"today_users"`
	TodayThreads   int64 `json:"today_threads" db:"today_threads"`
	TodayPosts     int64 `json:"today_posts" db:"today_posts"`
}

// Activity feed entry kinds.
const (
	ActivityUser   = "user"
	ActivityThread = "thread"
	ActivityReport = "report"
	ActivityPost   = "post"
)

// Activity severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
)

// UnknownActorName stands in for an activity actor whose profile is gone.
const UnknownActorName = "Unknown"

type ActivityItem struct {
	Type        string    `json:"type"`
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	At          time.Time `json:"at"`
	// When is At rendered relative to the moment the feed was built.
	When string `json:"when"`
}

type AdminDashboard struct {
	Stats    *AdminStats     `json:"stats"`
	Activity []*ActivityItem `json:"activity"`
}

type ReportView struct {
	*Report
	ReporterName string `json:"reporter_name"`
	TargetTitle  string `json:"target_title"`
}

// ModerationFlags is the state of a thread before and after a toggle.
type ModerationFlags struct {
	ThreadID ThreadID `json:"thread_id,string"`
	IsPinned bool     `json:"is_pinned"`
	IsLocked bool     `json:"is_locked"`
}
