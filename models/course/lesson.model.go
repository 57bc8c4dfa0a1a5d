package course

import "gorm.io/gorm"

// Lesson represents a unit of content within a module
type Lesson struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	ModuleID    uint   `json:"module_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ContentType string `json:"content_type" gorm:"default:'TEXT'"` // TEXT, VIDEO, IMAGE
	TextContent string `json:"text_content" gorm:"type:text"`      // For TEXT type
	VideoURL    string `json:"video_url"`                          // For VIDEO type
	ImageURL    string `json:"image_url"`                          // For IMAGE type
	OrderIndex  int    `json:"order_index" gorm:"default:0"`       // Order within module
	IsPublished bool   `json:"is_published" gorm:"default:false"`
	IsDeleted   bool   `json:"-" gorm:"default:false"`
}

// CountCourseLessons returns the number of published lessons a student must finish.
func CountCourseLessons(db *gorm.DB, courseID uint) (int, error) {
	var total int64
	err := db.Model(&Lesson{}).
		Where("course_id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).
		Count(&total).Error
	return int(total), err
}

// CountDoneLessons counts how many of ids are still published lessons of the
// course. Ids of deleted or unpublished lessons are ignored.
func CountDoneLessons(db *gorm.DB, courseID uint, ids []uint) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var done int64
	err := db.Model(&Lesson{}).
		Where("course_id = ? AND is_deleted = ? AND is_published = ? AND id IN ?", courseID, false, true, ids).
		Count(&done).Error
	return int(done), err
}
