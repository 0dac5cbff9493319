package model

import "time"

// ConversionEvent records that a user converted a whiteboard image. Only
// metadata is kept; neither the image nor the text is stored.
type ConversionEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"size:64;not null;index" json:"username"`
	Strategy   string    `gorm:"size:32;not null" json:"strategy"`
	TextLength int       `gorm:"not null" json:"text_length"`
	SlideCount int       `gorm:"not null" json:"slide_count"`
	CreatedAt  time.Time `json:"created_at"`
}
