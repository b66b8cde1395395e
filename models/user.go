// models/user.go
package models

import "time"

// User is a player inside a group. Usernames are unique per group, not
// globally.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"not null;size:20;uniqueIndex:idx_users_group_username"`
	GroupID   uint      `json:"group_id" gorm:"not null;uniqueIndex:idx_users_group_username"`
	Group     *Group    `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
