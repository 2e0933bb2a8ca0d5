package models

import "time"

type User struct {
	ID        uint      `gorm:"primaryKey" json:"user_id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:255" json:"-"`
	Name      string    `gorm:"size:100" json:"name,omitempty"`
	Nickname  string    `gorm:"size:50" json:"nickname,omitempty"`
	Phone     string    `gorm:"size:30" json:"phone,omitempty"`
	Points    int       `gorm:"not null;default:0" json:"points"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}
