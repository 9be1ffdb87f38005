package service

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"
	"quizhub_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	quizDetailKeyPrefix = "quiz:student_detail:"
	quizDetailTTL       = 10 * time.Minute
)

type QuizService struct {
	QuizRepo    *repository.QuizRepository
	AttemptRepo *repository.AttemptRepository
	Redis       *redis.Client
}

func NewQuizService(quizRepo *repository.QuizRepository, attemptRepo *repository.AttemptRepository, rdb *redis.Client) *QuizService {
	return &QuizService{QuizRepo: quizRepo, AttemptRepo: attemptRepo, Redis: rdb}
}

type QuestionReq struct {
	ID            string   `json:"id"`
	Prompt        string   `json:"prompt" binding:"required"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer" binding:"required"`
	Points        int      `json:"points"`
}

type CreateQuizReq struct {
	Title        string        `json:"title" binding:"required"`
	Description  string        `json:"description"`
	TimeLimit    *int          `json:"timeLimit"`
	PassingScore *int          `json:"passingScore"`
	MaxAttempts  *int          `json:"maxAttempts"`
	IsActive     *bool         `json:"isActive"`
	Questions    []QuestionReq `json:"questions"`
}

type UpdateQuizReq struct {
	Title        *string        `json:"title"`
	Description  *string        `json:"description"`
	TimeLimit    *int           `json:"timeLimit"`
	PassingScore *int           `json:"passingScore"`
	MaxAttempts  *int           `json:"maxAttempts"`
	IsActive     *bool          `json:"isActive"`
	Questions    *[]QuestionReq `json:"questions"`
}

// ValidateQuestion checks the authoring-time shape of a question: the
// option payload is a tagged variant keyed by question type, so malformed
// shapes are rejected here rather than discovered at grading time.
func ValidateQuestion(req QuestionReq) error {
	if req.CorrectAnswer == "" {
		return util.NewValidationError("correctAnswer", "correct answer is required")
	}
	if req.Points < 0 {
		return util.NewValidationError("points", "points must be at least 1")
	}

	qType := model.QuestionType(req.Type)
	if req.Type == "" {
		qType = model.MultipleChoice
	}

	switch qType {
	case model.MultipleChoice:
		if len(req.Options) < 2 {
			return util.NewValidationError("options", "multiple choice questions need at least 2 options")
		}
		found := false
		for _, opt := range req.Options {
			if normalizeAnswer(opt) == normalizeAnswer(req.CorrectAnswer) {
				found = true
				break
			}
		}
		if !found {
			return util.NewValidationError("correctAnswer", "correct answer must be one of the options")
		}
	case model.TrueFalse:
		if len(req.Options) > 0 {
			return util.NewValidationError("options", "true/false questions carry no options")
		}
		norm := normalizeAnswer(req.CorrectAnswer)
		if norm != "true" && norm != "false" {
			return util.NewValidationError("correctAnswer", "true/false answer must be 'true' or 'false'")
		}
	case model.ShortAnswer:
		if len(req.Options) > 0 {
			return util.NewValidationError("options", "short answer questions carry no options")
		}
	default:
		return util.NewValidationError("type", "unknown question type")
	}

	return nil
}

func validateQuizFields(passingScore, maxAttempts, timeLimit *int) error {
	if passingScore != nil && (*passingScore < 0 || *passingScore > 100) {
		return util.NewValidationError("passingScore", "passing score must be between 0 and 100")
	}
	if maxAttempts != nil && *maxAttempts < 1 {
		return util.NewValidationError("maxAttempts", "max attempts must be at least 1")
	}
	if timeLimit != nil && *timeLimit < 1 {
		return util.NewValidationError("timeLimit", "time limit must be at least 1 minute")
	}
	return nil
}

func buildQuestion(quizID string, order int, req QuestionReq) (model.Question, error) {
	if err := ValidateQuestion(req); err != nil {
		return model.Question{}, err
	}

	qType := model.QuestionType(req.Type)
	if req.Type == "" {
		qType = model.MultipleChoice
	}
	points := req.Points
	if points == 0 {
		points = 1
	}

	q := model.Question{
		QuizID:        quizID,
		Prompt:        req.Prompt,
		Type:          qType,
		CorrectAnswer: req.CorrectAnswer,
		Points:        points,
		Order:         order,
	}
	if qType == model.MultipleChoice {
		opts, err := json.Marshal(req.Options)
		if err != nil {
			return model.Question{}, err
		}
		q.Options = opts
	}
	return q, nil
}

func (s *QuizService) CreateQuiz(principal model.Principal, req CreateQuizReq) (*model.Quiz, error) {
	if !CanMutateQuiz(principal) {
		return nil, util.ErrPermissionDenied
	}
	if err := validateQuizFields(req.PassingScore, req.MaxAttempts, req.TimeLimit); err != nil {
		return nil, err
	}

	quiz := &model.Quiz{
		Title:        req.Title,
		Description:  req.Description,
		TimeLimit:    req.TimeLimit,
		PassingScore: 70,
		MaxAttempts:  req.MaxAttempts,
		IsActive:     true,
		CreatedByID:  principal.UserID,
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}
	if req.IsActive != nil {
		quiz.IsActive = *req.IsActive
	}

	questions := make([]model.Question, 0, len(req.Questions))
	for i, qReq := range req.Questions {
		q, err := buildQuestion("", i+1, qReq)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}

	if err := s.QuizRepo.CreateQuizWithQuestions(quiz, questions); err != nil {
		return nil, err
	}

	return quiz, nil
}

func (s *QuizService) UpdateQuiz(principal model.Principal, quizID string, req UpdateQuizReq) (*model.Quiz, error) {
	if !CanMutateQuiz(principal) {
		return nil, util.ErrPermissionDenied
	}
	if err := validateQuizFields(req.PassingScore, req.MaxAttempts, req.TimeLimit); err != nil {
		return nil, err
	}

	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.TimeLimit != nil {
		quiz.TimeLimit = req.TimeLimit
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}
	if req.MaxAttempts != nil {
		quiz.MaxAttempts = req.MaxAttempts
	}
	if req.IsActive != nil {
		quiz.IsActive = *req.IsActive
	}

	if err := s.QuizRepo.Update(quiz); err != nil {
		return nil, err
	}

	if req.Questions != nil {
		if err := s.replaceQuestions(quizID, *req.Questions); err != nil {
			return nil, err
		}
	}

	s.invalidateCache(quizID)
	return quiz, nil
}

// replaceQuestions merges the authored question set into storage: requests
// carrying an existing id update that row, the rest are created, and rows
// absent from the request are removed. Order follows request position.
func (s *QuizService) replaceQuestions(quizID string, reqs []QuestionReq) error {
	existingQs, err := s.QuizRepo.ListQuestions(quizID)
	if err != nil {
		return err
	}
	existingMap := make(map[string]*model.Question)
	for i := range existingQs {
		existingMap[existingQs[i].ID] = &existingQs[i]
	}

	keptIDs := make(map[string]bool)
	for i, qReq := range reqs {
		built, err := buildQuestion(quizID, i+1, qReq)
		if err != nil {
			return err
		}

		if qReq.ID != "" {
			if q, ok := existingMap[qReq.ID]; ok {
				q.Prompt = built.Prompt
				q.Type = built.Type
				q.Options = built.Options
				q.CorrectAnswer = built.CorrectAnswer
				q.Points = built.Points
				q.Order = built.Order
				if err := s.QuizRepo.UpdateQuestion(q); err != nil {
					return err
				}
				keptIDs[q.ID] = true
				continue
			}
		}
		if err := s.QuizRepo.CreateQuestion(&built); err != nil {
			return err
		}
	}

	for id := range existingMap {
		if !keptIDs[id] {
			if err := s.QuizRepo.DeleteQuestion(id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *QuizService) DeleteQuiz(principal model.Principal, quizID string) error {
	if !CanMutateQuiz(principal) {
		return util.ErrPermissionDenied
	}
	if _, err := s.QuizRepo.FindByID(quizID); err != nil {
		return err
	}
	if err := s.QuizRepo.Delete(quizID); err != nil {
		return err
	}
	s.invalidateCache(quizID)
	return nil
}

func (s *QuizService) ListQuizzes(principal model.Principal) ([]repository.QuizListRow, error) {
	return s.QuizRepo.List(!principal.IsAdmin())
}

type QuestionView struct {
	ID            string          `json:"id"`
	Prompt        string          `json:"prompt"`
	Type          string          `json:"type"`
	Options       json.RawMessage `json:"options,omitempty"`
	Points        int             `json:"points"`
	Order         int             `json:"order"`
	CorrectAnswer string          `json:"correctAnswer,omitempty"` // admins only
}

type QuizDetail struct {
	model.Quiz
	Questions []QuestionView `json:"questions"`
}

// GetQuiz returns the quiz with its questions in order. Students only see
// active quizzes and never the stored correct answers; the student view is
// served from Redis when warm.
func (s *QuizService) GetQuiz(principal model.Principal, quizID string) (*QuizDetail, error) {
	if !principal.IsAdmin() {
		if detail := s.cachedDetail(quizID); detail != nil {
			return detail, nil
		}
	}

	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, err
	}
	if !CanViewQuiz(principal, *quiz) {
		return nil, util.ErrQuizNotAvailable
	}

	questions, err := s.QuizRepo.ListQuestions(quizID)
	if err != nil {
		return nil, err
	}

	detail := &QuizDetail{Quiz: *quiz, Questions: make([]QuestionView, len(questions))}
	for i, q := range questions {
		view := QuestionView{
			ID:      q.ID,
			Prompt:  q.Prompt,
			Type:    string(q.Type),
			Options: q.Options,
			Points:  q.Points,
			Order:   q.Order,
		}
		if principal.IsAdmin() {
			view.CorrectAnswer = q.CorrectAnswer
		}
		detail.Questions[i] = view
	}

	if !principal.IsAdmin() {
		s.storeDetail(quizID, detail)
	}

	return detail, nil
}

func (s *QuizService) cachedDetail(quizID string) *QuizDetail {
	if s.Redis == nil {
		return nil
	}
	val, err := s.Redis.Get(context.Background(), quizDetailKeyPrefix+quizID).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("quiz cache read failed", zap.Error(err))
		}
		return nil
	}
	var detail QuizDetail
	if err := json.Unmarshal([]byte(val), &detail); err != nil {
		return nil
	}
	return &detail
}

func (s *QuizService) storeDetail(quizID string, detail *QuizDetail) {
	if s.Redis == nil {
		return
	}
	val, err := json.Marshal(detail)
	if err != nil {
		return
	}
	if err := s.Redis.Set(context.Background(), quizDetailKeyPrefix+quizID, val, quizDetailTTL).Err(); err != nil {
		logger.Log.Warn("quiz cache write failed", zap.Error(err))
	}
}

func (s *QuizService) invalidateCache(quizID string) {
	if s.Redis == nil {
		return
	}
	s.Redis.Del(context.Background(), quizDetailKeyPrefix+quizID)
}

func (s *QuizService) AttemptHistory(principal model.Principal) ([]repository.AttemptHistoryRow, error) {
	return s.AttemptRepo.ListByUser(principal.UserID)
}

type QuizResultsReport struct {
	Quiz          *model.Quiz                `json:"quiz"`
	TotalAttempts int                        `json:"totalAttempts"`
	PassedCount   int                        `json:"passedCount"`
	PassRate      int                        `json:"passRate"`
	AverageScore  int                        `json:"averageScore"`
	Attempts      []repository.QuizResultRow `json:"attempts"`
}

// QuizResults aggregates all attempts against a quiz for the admin results
// view.
func (s *QuizService) QuizResults(principal model.Principal, quizID string) (*QuizResultsReport, error) {
	if !CanMutateQuiz(principal) {
		return nil, util.ErrPermissionDenied
	}

	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, err
	}

	rows, err := s.AttemptRepo.ListByQuiz(quizID)
	if err != nil {
		return nil, err
	}

	report := &QuizResultsReport{Quiz: quiz, TotalAttempts: len(rows), Attempts: rows}
	if len(rows) > 0 {
		scoreSum := 0
		for _, row := range rows {
			if row.Passed {
				report.PassedCount++
			}
			scoreSum += row.Score
		}
		report.PassRate = int(math.Round(float64(report.PassedCount) / float64(len(rows)) * 100))
		report.AverageScore = int(math.Round(float64(scoreSum) / float64(len(rows))))
	}

	return report, nil
}
