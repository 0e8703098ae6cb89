package models

import "time"

const (
	ReportTypeThread  = "thread"
	ReportTypePost    = "post"
	ReportTypeProfile = "profile"
)

const (
	ReportPending   = "pending"
	ReportResolved  = "resolved"
	ReportDismissed = "dismissed"
)

// ReportReasons lists the accepted values of Report.Reason.
var ReportReasons = []string{
	"spam",
	"harassment",
	"inappropriate_content",
	"hate_speech",
	"misinformation",
	"copyright_violation",
	"other",
}

// Report is a moderation flag. Exactly one of ThreadID, PostID or
// ReportedUserID identifies the target, chosen by ReportType; for thread
// and post reports ReportedUserID additionally records the content owner.
type Report struct {
	ID             ReportID   `json:"id,string" gorm:"column:id;primaryKey;autoIncrement:false"`
	ReporterID     ProfileID  `json:"reporter_id,string" gorm:"column:reporter_id;index;not null"`
	ReportType     string     `json:"report_type" gorm:"column:report_type;size:16;not null"`
	Reason         string     `json:"reason" gorm:"column:reason;size:32;not null"`
	Description    string     `json:"description,omitempty" gorm:"column:description;type:text"`
	ThreadID       *ThreadID  `json:"thread_id,omitempty,string" gorm:"column:thread_id;index"`
	PostID         *PostID    `json:"post_id,omitempty,string" gorm:"column:post_id;index"`
	ReportedUserID *ProfileID `json:"reported_user_id,omitempty,string" gorm:"column:reported_user_id;index"`
	Status         string     `json:"status" gorm:"column:status;size:16;index;not null"`
	ResolvedBy     *ProfileID `json:"resolved_by,omitempty,string" gorm:"column:resolved_by"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty" gorm:"column:resolved_at"`
	CreatedAt      time.Time  `json:"created_at" gorm:"column:created_at;index;autoCreateTime"`

	Reporter *Profile `json:"reporter,omitempty" gorm:"foreignKey:ReporterID;references:ID"`
}

func (Report) TableName() string {
	return "reports"
}

// IsFinal reports whether status can no longer change.
func IsFinal(status string) bool {
	return status == ReportResolved || status == ReportDismissed
}
