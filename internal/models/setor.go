package models

import "time"

// Setor is a department. Rows are reference data created out-of-band.
type Setor struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Nome      string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Setor) TableName() string {
	return "setores"
}
