package engine

import (
	"math"

	"github.com/Atri9Ghosh/thinkplus/backend/models"
)

// OverallProgress derives the percentage from completed item count.
// A course with no items always reports 0.
func OverallProgress(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// Percentage converts a score into a 0-100 integer. Zero total marks
// reports 0.
func Percentage(score, totalMarks int) int {
	if totalMarks <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(totalMarks) * 100))
}

// ScoreAnswers grades a positionally-aligned answer list against the
// question list. Answers beyond the question list are ignored; missing
// answers are recorded as unanswered (selected answer -1) and score
// nothing. One record is produced per question.
func ScoreAnswers(questions []models.Question, answers []int) (int, []models.AnswerRecord) {
	score := 0
	records := make([]models.AnswerRecord, 0, len(questions))

	for i, question := range questions {
		selected := -1
		if i < len(answers) {
			selected = answers[i]
		}

		correct := selected >= 0 && selected == question.CorrectAnswer
		if correct {
			score += question.Marks
		}

		records = append(records, models.AnswerRecord{
			QuestionIndex:  i,
			SelectedAnswer: selected,
			IsCorrect:      correct,
		})
	}

	return score, records
}

// MeanRating averages review ratings; used to keep Course.Rating equal
// to the arithmetic mean of its reviews.
func MeanRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}

	total := 0
	for _, review := range reviews {
		total += review.Rating
	}
	return float64(total) / float64(len(reviews))
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
