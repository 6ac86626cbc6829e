package models

import "time"

type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"-" gorm:"autoUpdateTime"`
	CreateBy  string    `json:"-" gorm:"size:64"`
	UpdateBy  string    `json:"-" gorm:"size:64"`
}
