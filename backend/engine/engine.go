package engine

import (
	"errors"
	"time"

	"github.com/Atri9Ghosh/thinkplus/backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Engine owns the Progress and Test-attempt records. It is the single
// source of truth for how much of a course a user has finished and how
// they performed on a quiz. All mutations happen inside a transaction
// so the add-and-recompute step cannot lose a concurrent update.
type Engine struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Engine {
	return &Engine{DB: db}
}

var (
	ErrCourseNotFound   = errors.New("course not found")
	ErrTestNotFound     = errors.New("test not found")
	ErrProgressNotFound = errors.New("progress not found")
	ErrAttemptNotFound  = errors.New("no attempt found")
	ErrNotEnrolled      = errors.New("not enrolled in this course")
	ErrUnknownVideo     = errors.New("video does not belong to this course")
	ErrUnknownModule    = errors.New("module does not belong to this course")
)

// GetProgress returns the ledger entry for (user, course), creating it
// lazily on first access.
func (e *Engine) GetProgress(userID, courseID uint) (*models.Progress, error) {
	var progress models.Progress
	err := e.DB.Preload("QuizScores").
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&progress).Error
	if err == nil {
		return &progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	progress = models.Progress{
		UserID:       userID,
		CourseID:     courseID,
		LastAccessed: time.Now(),
	}
	progress.SetCompletedVideoList([]string{})
	progress.SetCompletedModuleList([]string{})
	if err := e.DB.Create(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

// EnsureProgress creates the ledger entry for a fresh enrollment if it
// does not exist yet.
func (e *Engine) EnsureProgress(userID, courseID uint) (*models.Progress, error) {
	return e.GetProgress(userID, courseID)
}

// MarkVideoComplete adds the video to the completed set (idempotent)
// and recomputes the overall percentage against the course's video
// count.
func (e *Engine) MarkVideoComplete(userID, courseID uint, videoID string) (*models.Progress, error) {
	var progress *models.Progress

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		course, err := loadCourse(tx, courseID)
		if err != nil {
			return err
		}
		if err := requireEnrollment(tx, userID, courseID); err != nil {
			return err
		}

		// Courses with no uploaded videos still accept completion
		// events; the percentage just stays 0.
		if len(course.Videos) > 0 && !videoBelongsToCourse(course, videoID) {
			return ErrUnknownVideo
		}

		p, err := lockProgress(tx, userID, courseID)
		if err != nil {
			return err
		}

		completed := p.CompletedVideoList()
		if !contains(completed, videoID) {
			completed = append(completed, videoID)
			p.SetCompletedVideoList(completed)
		}

		p.OverallProgress = OverallProgress(len(completed), len(course.Videos))
		p.LastAccessed = time.Now()

		if err := tx.Save(p).Error; err != nil {
			return err
		}
		progress = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// MarkModuleComplete mirrors MarkVideoComplete but tracks curriculum
// modules and recomputes the percentage against the module count. The
// last of the two operations to run wins the OverallProgress field.
func (e *Engine) MarkModuleComplete(userID, courseID uint, moduleName string) (*models.Progress, error) {
	var progress *models.Progress

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		course, err := loadCourse(tx, courseID)
		if err != nil {
			return err
		}
		if err := requireEnrollment(tx, userID, courseID); err != nil {
			return err
		}

		if len(course.Curriculum) > 0 && !moduleBelongsToCourse(course, moduleName) {
			return ErrUnknownModule
		}

		p, err := lockProgress(tx, userID, courseID)
		if err != nil {
			return err
		}

		completed := p.CompletedModuleList()
		if !contains(completed, moduleName) {
			completed = append(completed, moduleName)
			p.SetCompletedModuleList(completed)
		}

		p.OverallProgress = OverallProgress(len(completed), len(course.Curriculum))
		p.LastAccessed = time.Now()

		if err := tx.Save(p).Error; err != nil {
			return err
		}
		progress = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// UpdateProgress is the direct override path. A supplied percentage
// replaces the stored value without recomputation, clamped to [0,100].
func (e *Engine) UpdateProgress(userID, courseID uint, overallProgress *int, lastAccessed *time.Time) (*models.Progress, error) {
	var progress *models.Progress

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		p, err := lockProgress(tx, userID, courseID)
		if err != nil {
			return err
		}

		if overallProgress != nil {
			p.OverallProgress = clamp(*overallProgress, 0, 100)
		}
		if lastAccessed != nil {
			p.LastAccessed = *lastAccessed
		}

		if err := tx.Save(p).Error; err != nil {
			return err
		}
		progress = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

func loadCourse(tx *gorm.DB, courseID uint) (*models.Course, error) {
	var course models.Course
	err := tx.Preload("Videos").Preload("Curriculum").First(&course, courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func requireEnrollment(tx *gorm.DB, userID, courseID uint) error {
	var count int64
	if err := tx.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotEnrolled
	}
	return nil
}

// lockProgress fetches the row FOR UPDATE inside the transaction, so a
// concurrent writer blocks until this one commits. The row is created
// when the completion event arrives before any explicit enrollment
// bookkeeping.
func lockProgress(tx *gorm.DB, userID, courseID uint) (*models.Progress, error) {
	var progress models.Progress
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = models.Progress{
			UserID:       userID,
			CourseID:     courseID,
			LastAccessed: time.Now(),
		}
		progress.SetCompletedVideoList([]string{})
		progress.SetCompletedModuleList([]string{})
		if err := tx.Create(&progress).Error; err != nil {
			return nil, err
		}
		return &progress, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func videoBelongsToCourse(course *models.Course, videoID string) bool {
	for _, video := range course.Videos {
		if video.VideoID == videoID {
			return true
		}
	}
	return false
}

func moduleBelongsToCourse(course *models.Course, moduleName string) bool {
	for _, module := range course.Curriculum {
		if module.ModuleName == moduleName {
			return true
		}
	}
	return false
}

func contains(items []string, item string) bool {
	for _, existing := range items {
		if existing == item {
			return true
		}
	}
	return false
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
