package models

import "time"

// Client is a party that commissions surveys. Projects reference their
// owning client through Project.ClientID; the client side holds no list.
type Client struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"size:128;not null"`
	Email       string    `gorm:"size:128"`
	CompanyName string    `gorm:"size:128"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}
