package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleStudent     = "STUDENT"
	RoleFacilitator = "FACILITATOR"
	RoleAdmin       = "ADMIN"
)

type User struct {
	gorm.Model
	ProfileImage string    `json:"profile_image" gorm:"default:''"`
	Name         string    `json:"name" gorm:"default:''"`
	Email        string    `json:"email" gorm:"unique;not null"`
	Mobile       string    `json:"mobile" gorm:"default:''"`
	Role         string    `json:"role" gorm:"default:'STUDENT'"` // STUDENT, FACILITATOR, ADMIN
	Password     string    `json:"-" gorm:"not null"`
	LastLogin    time.Time `json:"last_login" gorm:"default:NULL"`
	IsBlocked    bool      `json:"is_blocked" gorm:"default:false"`
	IsDeleted    bool      `json:"-" gorm:"default:false"`
}

// HasRole reports whether the user holds one of the given roles.
func (u User) HasRole(roles ...string) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
