// models/group.go
package models

import "time"

// Group is the tenant root: every player and submission belongs to
// exactly one group. Groups are created once at registration and never
// mutated afterwards.
type Group struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null;size:50"`
	CreatedAt time.Time `json:"created_at"`
	Players   []User    `json:"players,omitempty" gorm:"foreignKey:GroupID"`
}

func (Group) TableName() string {
	return "groups"
}
