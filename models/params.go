package models

// ParamSignUp is the registration body. Username rules are enforced by
// the "forum_username" validator registered in the controller package.
type ParamSignUp struct {
	Username   string `json:"username" binding:"required,min=3,max=20,forum_username"`
	Email      string `json:"email" binding:"required,email,max=255"`
	Password   string `json:"password" binding:"required,min=5,max=72"`
	RePassword string `json:"re_password" binding:"required"`
}

type ParamLogin struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ParamThread struct {
	Title      string     `json:"title" binding:"required,max=200"`
	Content    string     `json:"content" binding:"required,max=5000"`
	CategoryID CategoryID `json:"category_id,string" binding:"required"`
}

type ParamPost struct {
	Content string `json:"content" binding:"required,max=5000"`
}

type ParamCategory struct {
	Name        string `json:"name" binding:"required,max=128"`
	Description string `json:"description" binding:"max=1000"`
}

// Thread list sort orders.
const (
	SortNewest      = "newest"
	SortOldest      = "oldest"
	SortPopular     = "popular"
	SortMostReplies = "most_replies"
	SortTitle       = "title"
	SortViews       = "views"
	SortActivity    = "activity"
)

// Thread list search modes.
const (
	SearchTitle   = "title"
	SearchContent = "content"
	SearchAuthor  = "author"
)

// ParamThreadList filters the forum page. Zero values mean "no filter".
type ParamThreadList struct {
	CategoryID CategoryID `json:"category_id" form:"category_id"`
	Search     string     `json:"search" form:"search" binding:"max=100"`
	SearchType string     `json:"search_type" form:"search_type" binding:"omitempty,oneof=title content author"`
	Sort       string     `json:"sort" form:"sort" binding:"omitempty,oneof=newest oldest popular most_replies"`
	Limit      int        `json:"limit" form:"limit" binding:"omitempty,min=1,max=100"`
	Offset     int        `json:"offset" form:"offset" binding:"omitempty,min=0"`
}

// Admin thread list status filters.
const (
	StatusAll    = "all"
	StatusPinned = "pinned"
	StatusLocked = "locked"
	StatusNormal = "normal"
)

type ParamAdminThreadList struct {
	CategoryID CategoryID `json:"category_id" form:"category_id"`
	Search     string     `json:"search" form:"search" binding:"max=100"`
	Status     string     `json:"status" form:"status" binding:"omitempty,oneof=all pinned locked normal"`
	Sort       string     `json:"sort" form:"sort" binding:"omitempty,oneof=newest oldest title views activity"`
	Limit      int        `json:"limit" form:"limit" binding:"omitempty,min=1,max=100"`
	Offset     int        `json:"offset" form:"offset" binding:"omitempty,min=0"`
}

// ParamReport identifies the reported content. Exactly the id matching
// ReportType must be set.
type ParamReport struct {
	ReportType     string     `json:"report_type" binding:"required,oneof=thread post profile"`
	Reason         string     `json:"reason" binding:"required,oneof=spam harassment inappropriate_content hate_speech misinformation copyright_violation other"`
	Description    string     `json:"description" binding:"max=1000"`
	ThreadID       *ThreadID  `json:"thread_id,omitempty,string"`
	PostID         *PostID    `json:"post_id,omitempty,string"`
	ReportedUserID *ProfileID `json:"reported_user_id,omitempty,string"`
}

type ParamReportList struct {
	Status string `form:"status" binding:"omitempty,oneof=pending resolved dismissed"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type ParamUpdateProfile struct {
	DisplayName string `json:"display_name" form:"display_name" binding:"max=64"`
	Bio         string `json:"bio" form:"bio" binding:"max=500"`
}

type ParamPrivacySettings struct {
	ShowLikes          bool `json:"show_likes"`
	ShowFollowers      bool `json:"show_followers"`
	ShowFollowing      bool `json:"show_following"`
	ShowOnlineStatus   bool `json:"show_online_status"`
	ShowProfileToGuest bool `json:"show_profile_to_guests"`
	AllowMessages      bool `json:"allow_messages"`
}

type ParamSearch struct {
	Query string `form:"q" binding:"required,min=2,max=100"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

// AvatarUpload is an image sent along with a profile update.
type AvatarUpload struct {
	Filename string
	Data     []byte
}
