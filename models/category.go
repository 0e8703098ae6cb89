package models

import "time"

type Category struct {
	ID          CategoryID `json:"id,string" gorm:"column:id;primaryKey;autoIncrement:false"`
	Name        string     `json:"name" gorm:"column:name;size:128;uniqueIndex;not null"`
	Description string     `json:"description" gorm:"column:description;type:text"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (Category) TableName() string {
	return "categories"
}
