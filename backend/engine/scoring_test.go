package engine_test

import (
	"testing"

	"github.com/Atri9Ghosh/thinkplus/backend/engine"
	"github.com/Atri9Ghosh/thinkplus/backend/models"
	"github.com/stretchr/testify/assert"
)

func TestOverallProgress(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		total     int
		want      int
	}{
		{"none completed", 0, 4, 0},
		{"half", 2, 4, 50},
		{"three of four rounds up", 3, 4, 75},
		{"one of three rounds", 1, 3, 33},
		{"two of three rounds", 2, 3, 67},
		{"all completed", 4, 4, 100},
		{"zero total", 3, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.OverallProgress(tt.completed, tt.total))
		})
	}
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 100, engine.Percentage(10, 10))
	assert.Equal(t, 50, engine.Percentage(1, 2))
	assert.Equal(t, 33, engine.Percentage(1, 3))
	assert.Equal(t, 0, engine.Percentage(0, 10))
	assert.Equal(t, 0, engine.Percentage(5, 0))
}

func makeQuestions(correct []int, marks []int) []models.Question {
	questions := make([]models.Question, len(correct))
	for i := range correct {
		questions[i] = models.Question{
			Question:      "q",
			CorrectAnswer: correct[i],
			Marks:         marks[i],
		}
		questions[i].SetOptionList([]string{"a", "b", "c", "d"})
	}
	return questions
}

func TestScoreAnswers(t *testing.T) {
	t.Run("all correct", func(t *testing.T) {
		questions := makeQuestions([]int{1, 2, 0}, []int{1, 2, 3})

		score, records := engine.ScoreAnswers(questions, []int{1, 2, 0})

		assert.Equal(t, 6, score)
		assert.Len(t, records, 3)
		for i, record := range records {
			assert.Equal(t, i, record.QuestionIndex)
			assert.True(t, record.IsCorrect)
		}
	})

	t.Run("partially correct", func(t *testing.T) {
		questions := makeQuestions([]int{1, 1}, []int{1, 1})

		score, records := engine.ScoreAnswers(questions, []int{1, 0})

		assert.Equal(t, 1, score)
		assert.True(t, records[0].IsCorrect)
		assert.False(t, records[1].IsCorrect)
	})

	t.Run("short answer list scores missing as incorrect", func(t *testing.T) {
		questions := makeQuestions([]int{0, 1, 2}, []int{1, 1, 1})

		score, records := engine.ScoreAnswers(questions, []int{0})

		assert.Equal(t, 1, score)
		assert.Len(t, records, 3)
		assert.Equal(t, -1, records[1].SelectedAnswer)
		assert.False(t, records[1].IsCorrect)
		assert.Equal(t, -1, records[2].SelectedAnswer)
		assert.False(t, records[2].IsCorrect)
	})

	t.Run("extra answers are ignored", func(t *testing.T) {
		questions := makeQuestions([]int{0}, []int{1})

		score, records := engine.ScoreAnswers(questions, []int{0, 3, 3, 3})

		assert.Equal(t, 1, score)
		assert.Len(t, records, 1)
	})

	t.Run("empty question list", func(t *testing.T) {
		score, records := engine.ScoreAnswers(nil, []int{1, 2})

		assert.Equal(t, 0, score)
		assert.Empty(t, records)
	})
}

func TestMeanRating(t *testing.T) {
	assert.Equal(t, 0.0, engine.MeanRating(nil))
	assert.Equal(t, 4.0, engine.MeanRating([]models.Review{{Rating: 4}}))
	assert.InDelta(t, 4.5, engine.MeanRating([]models.Review{{Rating: 4}, {Rating: 5}}), 0.0001)
	assert.InDelta(t, 3.6666, engine.MeanRating([]models.Review{{Rating: 3}, {Rating: 3}, {Rating: 5}}), 0.001)
}
