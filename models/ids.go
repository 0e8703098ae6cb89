package models

import "strconv"

// Each table has its own id type so a user id can never be passed where a
// profile id is expected. Content tables (threads, posts, likes, follows,
// reports) reference profiles, not users.
type (
	UserID     int64
	ProfileID  int64
	CategoryID int64
	ThreadID   int64
	PostID     int64
	ReportID   int64
)

func (id UserID) String() string     { return strconv.FormatInt(int64(id), 10) }
func (id ProfileID) String() string  { return strconv.FormatInt(int64(id), 10) }
func (id CategoryID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id ThreadID) String() string   { return strconv.FormatInt(int64(id), 10) }
func (id PostID) String() string     { return strconv.FormatInt(int64(id), 10) }
func (id ReportID) String() string   { return strconv.FormatInt(int64(id), 10) }

// Roles shared by User and Profile.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// IsStaff reports whether role may pin and lock threads or handle reports.
func IsStaff(role string) bool {
	return role == RoleAdmin || role == RoleModerator
}
