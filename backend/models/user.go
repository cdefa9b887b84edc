package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	ExternalID   string `gorm:"uniqueIndex;not null" json:"external_id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Name         string `gorm:"not null" json:"name"`
	Role         string `gorm:"default:student;index" json:"role"` // student, instructor, admin
	ProfileImage string `json:"profile_image"`
	PhoneNumber  string `json:"phone_number"`
}

// Enrollment links a user to a course. The pair is unique so repeated
// enroll calls cannot create duplicates.
type Enrollment struct {
	gorm.Model
	UserID   uint `gorm:"uniqueIndex:idx_enrollment_user_course" json:"user_id"`
	CourseID uint `gorm:"uniqueIndex:idx_enrollment_user_course" json:"course_id"`
}

var ValidRoles = []string{"student", "instructor", "admin"}

func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
