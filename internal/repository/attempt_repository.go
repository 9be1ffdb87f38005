package repository

import (
	"time"

	"quizhub_backend/internal/model"

	"gorm.io/gorm"
)

// AttemptRepository is the GORM-backed storage collaborator of the
// submission pipeline (it satisfies service.SubmissionStore together with
// the quiz queries below).
type AttemptRepository struct {
	DB   *gorm.DB
	Quiz *QuizRepository
}

func NewAttemptRepository(db *gorm.DB, quizRepo *QuizRepository) *AttemptRepository {
	return &AttemptRepository{DB: db, Quiz: quizRepo}
}

func (r *AttemptRepository) GetQuiz(id string) (*model.Quiz, error) {
	return r.Quiz.FindByID(id)
}

func (r *AttemptRepository) GetQuestions(quizID string) ([]model.Question, error) {
	return r.Quiz.ListQuestions(quizID)
}

// CountAttempts counts every attempt row ever created for (user, quiz),
// completed or not.
func (r *AttemptRepository) CountAttempts(userID, quizID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Count(&count).Error
	return count, err
}

// CreateAttemptWithAnswers writes the attempt and all its answer rows in a
// single transaction. Either everything lands or nothing does.
func (r *AttemptRepository) CreateAttemptWithAnswers(attempt *model.QuizAttempt, answers []model.UserAnswer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}
		for i := range answers {
			answers[i].AttemptID = attempt.ID
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

type AttemptHistoryRow struct {
	ID               string     `json:"id"`
	Score            int        `json:"score"`
	Passed           bool       `json:"passed"`
	CompletedAt      *time.Time `json:"completedAt"`
	QuizTitle        string     `json:"quizTitle"`
	QuizPassingScore int        `json:"quizPassingScore"`
}

// ListByUser returns the user's attempts newest first, joined with the quiz
// title and passing score.
func (r *AttemptRepository) ListByUser(userID string) ([]AttemptHistoryRow, error) {
	var rows []AttemptHistoryRow
	err := r.DB.Table("quiz_attempts a").
		Select("a.id, a.score, a.passed, a.completed_at, q.title as quiz_title, q.passing_score as quiz_passing_score").
		Joins("JOIN quizzes q ON a.quiz_id = q.id").
		Where("a.user_id = ? AND a.deleted_at IS NULL", userID).
		Order("a.completed_at desc").
		Scan(&rows).Error
	return rows, err
}

type QuizResultRow struct {
	ID          string     `json:"id"`
	Score       int        `json:"score"`
	Passed      bool       `json:"passed"`
	CompletedAt *time.Time `json:"completedAt"`
	UserName    string     `json:"userName"`
	UserEmail   string     `json:"userEmail"`
}

// ListByQuiz returns all attempts against a quiz with the attempting user's
// name and email, newest first.
func (r *AttemptRepository) ListByQuiz(quizID string) ([]QuizResultRow, error) {
	var rows []QuizResultRow
	err := r.DB.Table("quiz_attempts a").
		Select("a.id, a.score, a.passed, a.completed_at, u.name as user_name, u.email as user_email").
		Joins("JOIN users u ON a.user_id = u.id").
		Where("a.quiz_id = ? AND a.deleted_at IS NULL", quizID).
		Order("a.completed_at desc").
		Scan(&rows).Error
	return rows, err
}
