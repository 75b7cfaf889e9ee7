package models

import "time"

// Review states for blogs submitted through the public writer path.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Blog is the unit of publishable content. Status tracks the review
// workflow; IsPublished independently gates visibility in public listings.
type Blog struct {
	ID                 uint      `gorm:"primaryKey" json:"_id"`
	Title              string    `gorm:"size:255;not null" json:"title"`
	SubTitle           string    `gorm:"size:255" json:"subTitle"`
	WriterName         string    `gorm:"size:128;not null" json:"writerName"`
	Description        string    `gorm:"type:text;not null" json:"description"` // rich-text HTML
	Category           string    `gorm:"size:64;not null" json:"category"`
	Image              string    `gorm:"size:1024;not null" json:"image"` // CDN delivery URL
	IsPublished        bool      `gorm:"not null;default:false" json:"isPublished"`
	Status             string    `gorm:"size:16;not null;default:'pending'" json:"status"`
	SubmittedForReview bool      `gorm:"not null;default:false" json:"submittedForReview"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}
