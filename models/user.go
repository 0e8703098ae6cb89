package models

import "time"

// User is the bare account record. Password holds a bcrypt hash.
type User struct {
	ID        UserID    `json:"id,string" gorm:"column:id;primaryKey;autoIncrement:false"`
	Username  string    `json:"username" gorm:"column:username;size:64;uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"column:email;size:255;uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"column:password;size:255;not null"`
	Role      string    `json:"role" gorm:"column:role;size:16;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

// Profile is the forum-facing identity of a User. Username is copied from
// the account so content queries can show it without a second hop.
type Profile struct {
	ID          ProfileID `json:"id,string" gorm:"column:id;primaryKey;autoIncrement:false"`
	UserID      UserID    `json:"user_id,string" gorm:"column:user_id;uniqueIndex;not null"`
	Username    string    `json:"username" gorm:"column:username;size:64;index;not null"`
	DisplayName string    `json:"display_name" gorm:"column:display_name;size:64"`
	AvatarURL   string    `json:"avatar_url" gorm:"column:avatar_url;size:512"`
	Bio         string    `json:"bio" gorm:"column:bio;type:text"`
	Views       int64     `json:"views" gorm:"column:views;not null"`
	Role        string    `json:"role" gorm:"column:role;size:16;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (Profile) TableName() string {
	return "profiles"
}

// Name returns the display name, falling back to the username.
func (p *Profile) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Username
}

// UserSettings holds the privacy flags of a user. A missing row means
// every flag is on; see DefaultUserSettings.
type UserSettings struct {
	UserID             UserID    `json:"user_id,string" gorm:"column:user_id;primaryKey;autoIncrement:false"`
	ShowLikes          bool      `json:"show_likes" gorm:"column:show_likes;not null"`
	ShowFollowers      bool      `json:"show_followers" gorm:"column:show_followers;not null"`
	ShowFollowing      bool      `json:"show_following" gorm:"column:show_following;not null"`
	ShowOnlineStatus   bool      `json:"show_online_status" gorm:"column:show_online_status;not null"`
	ShowProfileToGuest bool      `json:"show_profile_to_guests" gorm:"column:show_profile_to_guests;not null"`
	AllowMessages      bool      `json:"allow_messages" gorm:"column:allow_messages;not null"`
	UpdatedAt          time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (UserSettings) TableName() string {
	return "user_settings"
}

func DefaultUserSettings(uid UserID) *UserSettings {
	return &UserSettings{
		UserID:             uid,
		ShowLikes:          true,
		ShowFollowers:      true,
		ShowFollowing:      true,
		ShowOnlineStatus:   true,
		ShowProfileToGuest: true,
		AllowMessages:      true,
	}
}
