package engine

import (
	"errors"
	"time"

	"github.com/Atri9Ghosh/thinkplus/backend/models"
	"gorm.io/gorm"
)

// SubmitResult is returned to the submitter. The full answer key is
// included regardless of role, matching the product's review-after-
// submit flow.
type SubmitResult struct {
	Score          int                   `json:"score"`
	TotalMarks     int                   `json:"total_marks"`
	Percentage     int                   `json:"percentage"`
	Passed         bool                  `json:"passed"`
	Answers        []models.AnswerRecord `json:"answers"`
	CorrectAnswers []int                 `json:"correct_answers"`
}

// Analytics aggregates a test's attempt history. All values are 0 when
// no attempts exist.
type Analytics struct {
	TotalAttempts int              `json:"total_attempts"`
	AverageScore  float64          `json:"average_score"`
	PassCount     int              `json:"pass_count"`
	PassRate      float64          `json:"pass_rate"`
	Attempts      []models.Attempt `json:"attempts"`
}

// SubmitTest scores the answers against the test's current question
// list and appends an immutable attempt record. If the test belongs to
// a course and the user has a Progress row there, a quiz-score entry is
// appended to it; a deleted course or missing row is tolerated and the
// linkage is simply skipped.
func (e *Engine) SubmitTest(userID, testID uint, answers []int, timeTaken int) (*SubmitResult, error) {
	var result *SubmitResult

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		test, err := loadTest(tx, testID)
		if err != nil {
			return err
		}

		score, records := ScoreAnswers(test.Questions, answers)
		now := time.Now()

		attempt := models.Attempt{
			TestID:      test.ID,
			UserID:      userID,
			Score:       score,
			SubmittedAt: now,
			TimeTaken:   timeTaken,
		}
		attempt.SetAnswerList(records)
		if err := tx.Create(&attempt).Error; err != nil {
			return err
		}

		if test.CourseID != nil {
			if err := linkQuizScore(tx, userID, *test.CourseID, test, score, now); err != nil {
				return err
			}
		}

		correctAnswers := make([]int, 0, len(test.Questions))
		for _, question := range test.Questions {
			correctAnswers = append(correctAnswers, question.CorrectAnswer)
		}

		result = &SubmitResult{
			Score:          score,
			TotalMarks:     test.TotalMarks,
			Percentage:     Percentage(score, test.TotalMarks),
			Passed:         score >= test.PassingMarks,
			Answers:        records,
			CorrectAnswers: correctAnswers,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// TestResults returns the user's earliest attempt plus the test it was
// made against.
func (e *Engine) TestResults(userID, testID uint) (*models.Attempt, *models.Test, error) {
	test, err := loadTest(e.DB, testID)
	if err != nil {
		return nil, nil, err
	}

	var attempt models.Attempt
	err = e.DB.Where("test_id = ? AND user_id = ?", testID, userID).
		Order("submitted_at ASC").
		First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrAttemptNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	return &attempt, test, nil
}

// TestAnalytics is a pure read-side reduction over the attempt list.
func (e *Engine) TestAnalytics(testID uint) (*Analytics, error) {
	test, err := loadTest(e.DB, testID)
	if err != nil {
		return nil, err
	}

	var attempts []models.Attempt
	if err := e.DB.Where("test_id = ?", testID).Order("submitted_at ASC").Find(&attempts).Error; err != nil {
		return nil, err
	}

	analytics := &Analytics{
		TotalAttempts: len(attempts),
		Attempts:      attempts,
	}

	if len(attempts) == 0 {
		return analytics, nil
	}

	sum := 0
	for _, attempt := range attempts {
		sum += attempt.Score
		if attempt.Score >= test.PassingMarks {
			analytics.PassCount++
		}
	}

	analytics.AverageScore = round2(float64(sum) / float64(len(attempts)))
	analytics.PassRate = round2(float64(analytics.PassCount) / float64(len(attempts)) * 100)
	return analytics, nil
}

// linkQuizScore appends a quiz-score entry to the user's Progress row
// for the test's course, if one exists. The list accumulates and never
// feeds back into OverallProgress.
func linkQuizScore(tx *gorm.DB, userID, courseID uint, test *models.Test, score int, at time.Time) error {
	var progress models.Progress
	err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	return tx.Create(&models.QuizScore{
		ProgressID:  progress.ID,
		QuizID:      test.ID,
		Score:       score,
		TotalMarks:  test.TotalMarks,
		AttemptDate: at,
	}).Error
}

func loadTest(tx *gorm.DB, testID uint) (*models.Test, error) {
	var test models.Test
	err := tx.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence_order ASC, id ASC")
	}).First(&test, testID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &test, nil
}
