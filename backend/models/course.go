package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type Course struct {
	gorm.Model
	Title           string  `gorm:"not null" json:"title"`
	Description     string  `gorm:"not null" json:"description"`
	ExamType        string  `gorm:"not null;index" json:"exam_type"` // IPMAT, CAT, CLAT
	Duration        string  `gorm:"default:'6 months'" json:"duration"`
	Price           float64 `gorm:"not null" json:"price"`
	DiscountedPrice float64 `json:"discounted_price"`
	Thumbnail       string  `json:"thumbnail"`
	InstructorName  string  `json:"instructor_name"`
	InstructorBio   string  `json:"instructor_bio"`
	InstructorImage string  `json:"instructor_image"`
	EnrolledCount   int     `gorm:"default:0" json:"enrolled_count"`
	Rating          float64 `gorm:"default:0" json:"rating"` // mean of review ratings
	IsPublished     bool    `gorm:"default:false;index" json:"is_published"`

	Curriculum []CurriculumModule `json:"curriculum"`
	Videos     []Video            `json:"videos"`
	Materials  []Material         `json:"materials"`
	Reviews    []Review           `json:"reviews"`
}

// CurriculumModule is a named grouping of topics, distinct from the
// module tag on a video.
type CurriculumModule struct {
	gorm.Model
	CourseID   uint   `gorm:"index" json:"course_id"`
	ModuleName string `gorm:"not null" json:"module_name"`
	Topics     string `json:"topics"` // JSON array of topic strings
}

type Video struct {
	gorm.Model
	CourseID      uint   `gorm:"index" json:"course_id"`
	VideoID       string `gorm:"not null;index" json:"video_id"`
	Title         string `gorm:"not null" json:"title"`
	URL           string `gorm:"not null" json:"url"`
	Duration      int    `gorm:"default:0" json:"duration"` // seconds
	SequenceOrder int    `gorm:"default:0" json:"order"`
	Module        string `json:"module"`
}

type Material struct {
	gorm.Model
	CourseID uint   `gorm:"index" json:"course_id"`
	Title    string `gorm:"not null" json:"title"`
	Type     string `gorm:"default:pdf" json:"type"` // pdf, doc, video, link
	URL      string `gorm:"not null" json:"url"`
}

// Review holds one user's rating of a course. A user re-reviewing
// replaces their earlier entry, never adds a second one.
type Review struct {
	gorm.Model
	CourseID uint      `gorm:"uniqueIndex:idx_review_user_course" json:"course_id"`
	UserID   uint      `gorm:"uniqueIndex:idx_review_user_course" json:"user_id"`
	Rating   int       `gorm:"not null" json:"rating"` // 1-5
	Comment  string    `json:"comment"`
	Date     time.Time `json:"date"`
}

var ValidExamTypes = []string{"IPMAT", "CAT", "CLAT"}

func IsValidExamType(examType string) bool {
	for _, t := range ValidExamTypes {
		if t == examType {
			return true
		}
	}
	return false
}

func (cm *CurriculumModule) TopicList() []string {
	var topics []string
	json.Unmarshal([]byte(cm.Topics), &topics)
	return topics
}

func (cm *CurriculumModule) SetTopicList(topics []string) {
	data, _ := json.Marshal(topics)
	cm.Topics = string(data)
}
