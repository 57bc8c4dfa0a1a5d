package course

import "gorm.io/gorm"

// Module groups the lessons of a course. Deleting a module soft deletes its
// lessons with it, so they drop out of the course's lesson total.
type Module struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"` // position within the course, ascending
	IsDeleted   bool   `json:"-" gorm:"default:false"`
}
