package model

import "time"

type User struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"type:varchar(50);not null"`
	Lastname  string    `json:"lastname" gorm:"type:varchar(50);not null"`
	Email     string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	Password  string    `json:"-" gorm:"type:varchar(100);not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Session is the revocation-list row behind logout. ID is the
// token's JTI, so lookups never need to parse the token again.
type Session struct {
	ID        string    `gorm:"type:varchar(36);primarykey"`
	UserID    uint      `gorm:"not null;index"`
	IsRevoked bool      `gorm:"not null;default:false"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}
