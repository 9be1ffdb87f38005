package service

import (
	"math"
	"sync"
	"time"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/util"
	"quizhub_backend/pkg/monitoring"
)

// SubmissionStore is the storage collaborator of the submission pipeline.
// CreateAttemptWithAnswers must persist the attempt and all its answer rows
// as one atomic unit: a failed write leaves nothing behind.
type SubmissionStore interface {
	GetQuiz(id string) (*model.Quiz, error)
	GetQuestions(quizID string) ([]model.Question, error)
	CountAttempts(userID, quizID string) (int64, error)
	CreateAttemptWithAnswers(attempt *model.QuizAttempt, answers []model.UserAnswer) error
}

type QuestionAnswer struct {
	QuestionID string `json:"questionId" binding:"required"`
	Answer     string `json:"answer"`
}

type SubmitQuizResult struct {
	Score        int  `json:"score"`
	TotalPoints  int  `json:"totalPoints"`
	EarnedPoints int  `json:"earnedPoints"`
	Passed       bool `json:"passed"`
	PassingScore int  `json:"passingScore"`
}

type SubmissionService struct {
	Store SubmissionStore

	// Serializes the attempt-count check and the attempt insert per
	// (user, quiz) pair so concurrent submissions cannot both claim the
	// last remaining attempt slot.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSubmissionService(store SubmissionStore) *SubmissionService {
	return &SubmissionService{
		Store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *SubmissionService) lockFor(userID, quizID string) *sync.Mutex {
	key := userID + ":" + quizID
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// SubmitQuiz runs the whole submission pipeline: resolve the quiz, gate on
// visibility and attempt policy, grade every question in order, and persist
// the attempt with its answer rows atomically. Answers referencing unknown
// question ids are ignored; unanswered questions grade as empty strings.
func (s *SubmissionService) SubmitQuiz(principal model.Principal, quizID string, answers []QuestionAnswer) (*SubmitQuizResult, error) {
	quiz, err := s.Store.GetQuiz(quizID)
	if err != nil {
		return nil, err
	}
	if !CanViewQuiz(principal, *quiz) {
		return nil, util.ErrQuizNotAvailable
	}

	lock := s.lockFor(principal.UserID, quizID)
	lock.Lock()
	defer lock.Unlock()

	priorAttempts, err := s.Store.CountAttempts(principal.UserID, quizID)
	if err != nil {
		return nil, &util.StorageError{Err: err}
	}
	if !CanAttempt(priorAttempts, *quiz) {
		if !quiz.IsActive {
			return nil, util.ErrQuizNotAvailable
		}
		return nil, util.ErrAttemptLimitExceeded
	}

	questions, err := s.Store.GetQuestions(quizID)
	if err != nil {
		return nil, &util.StorageError{Err: err}
	}
	if len(questions) == 0 {
		return nil, util.ErrQuizHasNoQuestions
	}

	submitted := make(map[string]string, len(answers))
	for _, a := range answers {
		submitted[a.QuestionID] = a.Answer
	}

	totalPoints := 0
	earnedPoints := 0
	graded := make([]model.UserAnswer, 0, len(questions))

	for _, q := range questions {
		answer := submitted[q.ID]
		isCorrect, pointsEarned := GradeAnswer(q, answer)

		totalPoints += q.Points
		earnedPoints += pointsEarned

		graded = append(graded, model.UserAnswer{
			QuestionID:   q.ID,
			Answer:       answer,
			IsCorrect:    isCorrect,
			PointsEarned: pointsEarned,
		})
	}

	score := 0
	if totalPoints > 0 {
		score = int(math.Round(float64(earnedPoints) / float64(totalPoints) * 100))
	}
	passed := score >= quiz.PassingScore

	now := time.Now()
	attempt := &model.QuizAttempt{
		QuizID:       quizID,
		UserID:       principal.UserID,
		Score:        score,
		TotalPoints:  totalPoints,
		EarnedPoints: earnedPoints,
		Passed:       passed,
		StartedAt:    now,
		CompletedAt:  &now,
	}

	if err := s.Store.CreateAttemptWithAnswers(attempt, graded); err != nil {
		return nil, &util.StorageError{Err: err}
	}

	monitoring.RecordSubmission(passed)

	return &SubmitQuizResult{
		Score:        score,
		TotalPoints:  totalPoints,
		EarnedPoints: earnedPoints,
		Passed:       passed,
		PassingScore: quiz.PassingScore,
	}, nil
}
