package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type Test struct {
	gorm.Model
	CourseID     *uint  `gorm:"index" json:"course_id"`
	Title        string `gorm:"not null" json:"title"`
	Description  string `json:"description"`
	Duration     int    `gorm:"not null" json:"duration"` // minutes
	TotalMarks   int    `gorm:"not null" json:"total_marks"`
	PassingMarks int    `gorm:"default:0" json:"passing_marks"`
	IsActive     bool   `gorm:"default:true;index" json:"is_active"`

	Questions []Question `json:"questions"`
	Attempts  []Attempt  `json:"attempts,omitempty"`
}

type Question struct {
	gorm.Model
	TestID        uint   `gorm:"index" json:"test_id"`
	Question      string `gorm:"not null" json:"question"`
	Options       string `gorm:"not null" json:"-"` // JSON array of option strings
	CorrectAnswer int    `gorm:"not null" json:"correct_answer"` // index into Options
	Marks         int    `gorm:"default:1" json:"marks"`
	Explanation   string `json:"explanation"`
	SequenceOrder int    `gorm:"default:0" json:"order"`
}

// Attempt is one scored submission. Attempts are immutable once
// appended; resubmission creates a new row.
type Attempt struct {
	gorm.Model
	TestID      uint      `gorm:"index" json:"test_id"`
	UserID      uint      `gorm:"index" json:"user_id"`
	Score       int       `gorm:"not null" json:"score"`
	Answers     string    `json:"-"` // JSON array of AnswerRecord
	SubmittedAt time.Time `json:"submitted_at"`
	TimeTaken   int       `gorm:"default:0" json:"time_taken"` // minutes
}

// AnswerRecord captures correctness for one question of an attempt.
// SelectedAnswer is -1 when the question was left unanswered.
type AnswerRecord struct {
	QuestionIndex  int  `json:"question_index"`
	SelectedAnswer int  `json:"selected_answer"`
	IsCorrect      bool `json:"is_correct"`
}

func (q *Question) OptionList() []string {
	var options []string
	json.Unmarshal([]byte(q.Options), &options)
	return options
}

func (q *Question) SetOptionList(options []string) {
	data, _ := json.Marshal(options)
	q.Options = string(data)
}

func (a *Attempt) AnswerList() []AnswerRecord {
	var answers []AnswerRecord
	json.Unmarshal([]byte(a.Answers), &answers)
	return answers
}

func (a *Attempt) SetAnswerList(answers []AnswerRecord) {
	data, _ := json.Marshal(answers)
	a.Answers = string(data)
}

func (q Question) MarshalJSON() ([]byte, error) {
	options := q.OptionList()
	if options == nil {
		options = []string{}
	}

	type alias Question
	return json.Marshal(struct {
		alias
		Options []string `json:"options"`
	}{alias: alias(q), Options: options})
}

func (a Attempt) MarshalJSON() ([]byte, error) {
	answers := a.AnswerList()
	if answers == nil {
		answers = []AnswerRecord{}
	}

	type alias Attempt
	return json.Marshal(struct {
		alias
		Answers []AnswerRecord `json:"answers"`
	}{alias: alias(a), Answers: answers})
}
