package models

import "time"

// Thread is a top-level topic. AuthorID points at a Profile.
type Thread struct {
	ID         ThreadID   `json:"id,string" gorm:"column:id;primaryKey;autoIncrement:false"`
	Title      string     `json:"title" gorm:"column:title;size:200;not null"`
	Content    string     `json:"content" gorm:"column:content;type:text;not null"`
	AuthorID   ProfileID  `json:"author_id,string" gorm:"column:author_id;index;not null"`
	CategoryID CategoryID `json:"category_id,string" gorm:"column:category_id;index;not null"`
	ViewCount  int64      `json:"view_count" gorm:"column:view_count;not null"`
	IsPinned   bool       `json:"is_pinned" gorm:"column:is_pinned;not null"`
	IsLocked   bool       `json:"is_locked" gorm:"column:is_locked;not null"`
	CreatedAt  time.Time  `json:"created_at" gorm:"column:created_at;index;autoCreateTime"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`

	// Loaded with Preload; nil when the row they point at is gone.
	Author   *Profile  `json:"author,omitempty" gorm:"foreignKey:AuthorID;references:ID"`
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;references:ID"`
}

func (Thread) TableName() string {
	return "threads"
}

// Post is a reply inside a thread, ordered by (created_at, id).
type Post struct {
	ID        PostID    `json:"id,string" gorm:"column:id;primaryKey;autoIncrement:false"`
	Content   string    `json:"content" gorm:"column:content;type:text;not null"`
	AuthorID  ProfileID `json:"author_id,string" gorm:"column:author_id;index;not null"`
	ThreadID  ThreadID  `json:"thread_id,string" gorm:"column:thread_id;index;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;index;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`

	Author *Profile `json:"author,omitempty" gorm:"foreignKey:AuthorID;references:ID"`
	Thread *Thread  `json:"thread,omitempty" gorm:"foreignKey:ThreadID;references:ID"`
}

func (Post) TableName() string {
	return "posts"
}
