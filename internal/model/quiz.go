package model

import (
	"encoding/json"
	"time"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
	TrueFalse      QuestionType = "TRUE_FALSE"
	ShortAnswer    QuestionType = "SHORT_ANSWER"
)

// swagger:model Quiz
type Quiz struct {
	UUIDBase
	Title        string `gorm:"size:255;not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	TimeLimit    *int   `json:"timeLimit"` // minutes, nil = untimed
	PassingScore int    `gorm:"default:70" json:"passingScore"`
	MaxAttempts  *int   `json:"maxAttempts"` // nil = unlimited
	IsActive     bool   `gorm:"default:true" json:"isActive"`
	CreatedByID  string `gorm:"index;type:varchar(36)" json:"createdById"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// swagger:model Question
type Question struct {
	UUIDBase
	QuizID        string          `gorm:"index;type:varchar(36)" json:"quizId"`
	Prompt        string          `gorm:"type:text;not null" json:"prompt"`
	Type          QuestionType    `gorm:"size:50;default:'MULTIPLE_CHOICE'" json:"type"`
	Options       json.RawMessage `gorm:"type:json" json:"options,omitempty"` // MULTIPLE_CHOICE only
	CorrectAnswer string          `gorm:"type:text;not null" json:"correctAnswer"`
	Points        int             `gorm:"default:1" json:"points"`
	Order         int             `gorm:"not null" json:"order"`
}

func (Question) TableName() string {
	return "questions"
}

// QuizAttempt is created exactly once at submission time and never
// mutated afterwards.
// swagger:model QuizAttempt
type QuizAttempt struct {
	UUIDBase
	QuizID       string     `gorm:"index:idx_attempt_quiz_user;type:varchar(36)" json:"quizId"`
	UserID       string     `gorm:"index:idx_attempt_quiz_user;type:varchar(36)" json:"userId"`
	Score        int        `gorm:"default:0" json:"score"` // percentage
	TotalPoints  int        `gorm:"default:0" json:"totalPoints"`
	EarnedPoints int        `gorm:"default:0" json:"earnedPoints"`
	Passed       bool       `gorm:"default:false" json:"passed"`
	StartedAt    time.Time  `json:"startedAt"`
	CompletedAt  *time.Time `json:"completedAt"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// swagger:model UserAnswer
type UserAnswer struct {
	UUIDBase
	AttemptID    string `gorm:"index;type:varchar(36)" json:"attemptId"`
	QuestionID   string `gorm:"index;type:varchar(36)" json:"questionId"`
	Answer       string `gorm:"type:text" json:"answer"`
	IsCorrect    bool   `gorm:"default:false" json:"isCorrect"`
	PointsEarned int    `gorm:"default:0" json:"pointsEarned"`
}

func (UserAnswer) TableName() string {
	return "user_answers"
}
