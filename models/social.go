package models

import "time"

// Like is a post like. The unique index makes a second like a no-op.
type Like struct {
	ID        int64     `json:"id" gorm:"column:id;primaryKey"`
	UserID    ProfileID `json:"user_id,string" gorm:"column:user_id;uniqueIndex:idx_like_user_post;not null"`
	PostID    PostID    `json:"post_id,string" gorm:"column:post_id;uniqueIndex:idx_like_user_post;index;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (Like) TableName() string {
	return "likes"
}

// ThreadLike is kept apart from Like on purpose: thread and post likes are
// counted and displayed separately.
type ThreadLike struct {
	ID        int64     `json:"id" gorm:"column:id;primaryKey"`
	UserID    ProfileID `json:"user_id,string" gorm:"column:user_id;uniqueIndex:idx_thread_like_user_thread;not null"`
	ThreadID  ThreadID  `json:"thread_id,string" gorm:"column:thread_id;uniqueIndex:idx_thread_like_user_thread;index;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (ThreadLike) TableName() string {
	return "thread_likes"
}

// Follow is a directed edge between two profiles.
type Follow struct {
	ID          int64     `json:"id" gorm:"column:id;primaryKey"`
	FollowerID  ProfileID `json:"follower_id,string" gorm:"column:follower_id;uniqueIndex:idx_follow_pair;not null"`
	FollowingID ProfileID `json:"following_id,string" gorm:"column:following_id;uniqueIndex:idx_follow_pair;index;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`

	Follower  *Profile `json:"follower,omitempty" gorm:"foreignKey:FollowerID;references:ID"`
	Following *Profile `json:"following,omitempty" gorm:"foreignKey:FollowingID;references:ID"`
}

func (Follow) TableName() string {
	return "follows"
}
