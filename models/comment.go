package models

import "time"

// Comment is a reader-submitted remark attached to one blog. Comments are
// created unapproved and only surface in public listings once moderated.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"_id"`
	BlogID     uint      `gorm:"index;not null" json:"blogId"`
	Blog       *Blog     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"blog,omitempty"`
	Name       string    `gorm:"size:128;not null" json:"name"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	IsApproved bool      `gorm:"not null;default:false" json:"isApproved"`
	CreatedAt  time.Time `json:"createdAt"`
}
