package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Progress is the per (user, course) ledger entry: which videos and
// modules are done, the derived overall percentage and the quiz score
// history. Exactly one row per enrollment, created lazily.
type Progress struct {
	gorm.Model
	UserID           uint      `gorm:"uniqueIndex:idx_progress_user_course" json:"user_id"`
	CourseID         uint      `gorm:"uniqueIndex:idx_progress_user_course" json:"course_id"`
	CompletedVideos  string    `json:"-"` // JSON array of video ids
	CompletedModules string    `json:"-"` // JSON array of module names
	OverallProgress  int       `gorm:"default:0" json:"overall_progress"` // 0-100
	LastAccessed     time.Time `json:"last_accessed"`

	QuizScores []QuizScore `json:"quiz_scores"`
}

// QuizScore is an append-only record of one scored quiz submission.
// It never feeds back into OverallProgress.
type QuizScore struct {
	gorm.Model
	ProgressID  uint      `gorm:"index" json:"-"`
	QuizID      uint      `gorm:"not null" json:"quiz_id"`
	Score       int       `gorm:"not null" json:"score"`
	TotalMarks  int       `gorm:"not null" json:"total_marks"`
	AttemptDate time.Time `json:"attempt_date"`
}

func (p *Progress) CompletedVideoList() []string {
	var videos []string
	json.Unmarshal([]byte(p.CompletedVideos), &videos)
	return videos
}

func (p *Progress) SetCompletedVideoList(videos []string) {
	data, _ := json.Marshal(videos)
	p.CompletedVideos = string(data)
}

func (p *Progress) CompletedModuleList() []string {
	var modules []string
	json.Unmarshal([]byte(p.CompletedModules), &modules)
	return modules
}

func (p *Progress) SetCompletedModuleList(modules []string) {
	data, _ := json.Marshal(modules)
	p.CompletedModules = string(data)
}

// MarshalJSON exposes the completed sets as arrays instead of the raw
// JSON text columns.
func (p Progress) MarshalJSON() ([]byte, error) {
	videos := p.CompletedVideoList()
	if videos == nil {
		videos = []string{}
	}
	modules := p.CompletedModuleList()
	if modules == nil {
		modules = []string{}
	}

	type alias Progress
	return json.Marshal(struct {
		alias
		CompletedVideos  []string `json:"completed_videos"`
		CompletedModules []string `json:"completed_modules"`
	}{
		alias:            alias(p),
		CompletedVideos:  videos,
		CompletedModules: modules,
	})
}
