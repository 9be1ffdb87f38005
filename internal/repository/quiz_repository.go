package repository

import (
	"errors"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/util"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

// CreateQuizWithQuestions persists a quiz and its questions in one
// transaction so authoring never leaves a half-written quiz behind.
func (r *QuizRepository) CreateQuizWithQuestions(quiz *model.Quiz, questions []model.Question) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quiz).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].QuizID = quiz.ID
			if err := tx.Create(&questions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *QuizRepository) FindByID(id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.First(&quiz, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuizNotFound
	}
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizRepository) Update(quiz *model.Quiz) error {
	return r.DB.Save(quiz).Error
}

// Delete removes the quiz together with its questions, attempts and answer
// rows. The cascade is an explicit transactional contract, not a DB-engine
// foreign key setting.
func (r *QuizRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var attemptIDs []string
		if err := tx.Model(&model.QuizAttempt{}).Where("quiz_id = ?", id).Pluck("id", &attemptIDs).Error; err != nil {
			return err
		}
		if len(attemptIDs) > 0 {
			if err := tx.Where("attempt_id IN ?", attemptIDs).Delete(&model.UserAnswer{}).Error; err != nil {
				return err
			}
			if err := tx.Where("quiz_id = ?", id).Delete(&model.QuizAttempt{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("quiz_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Quiz{}, "id = ?", id).Error
	})
}

type QuizListRow struct {
	model.Quiz
	QuestionCount int `json:"questionCount"`
}

// List returns quizzes with their question counts. When activeOnly is set,
// inactive quizzes are filtered out (the student view).
func (r *QuizRepository) List(activeOnly bool) ([]QuizListRow, error) {
	var rows []QuizListRow
	query := r.DB.Table("quizzes q").
		Select("q.*, " +
			"(SELECT COUNT(*) FROM questions qs WHERE qs.quiz_id = q.id AND qs.deleted_at IS NULL) as question_count").
		Where("q.deleted_at IS NULL")

	if activeOnly {
		query = query.Where("q.is_active = ?", true)
	}

	err := query.Order("q.created_at desc").Scan(&rows).Error
	return rows, err
}

func (r *QuizRepository) ListQuestions(quizID string) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("quiz_id = ?", quizID).Order("`order` asc").Find(&qs).Error
	return qs, err
}

func (r *QuizRepository) CreateQuestion(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuizRepository) UpdateQuestion(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *QuizRepository) DeleteQuestion(id string) error {
	return r.DB.Delete(&model.Question{}, "id = ?", id).Error
}
