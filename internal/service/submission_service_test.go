package service

import (
	"errors"
	"sync"
	"testing"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/util"
)

// fakeStore is an in-memory SubmissionStore. Writes under createErr fail
// atomically, leaving no rows behind.
type fakeStore struct {
	mu        sync.Mutex
	quiz      model.Quiz
	questions []model.Question
	attempts  []model.QuizAttempt
	answers   []model.UserAnswer

	countErr     error
	questionsErr error
	createErr    error
}

func (f *fakeStore) GetQuiz(id string) (*model.Quiz, error) {
	if id != f.quiz.ID {
		return nil, util.ErrQuizNotFound
	}
	q := f.quiz
	return &q, nil
}

func (f *fakeStore) GetQuestions(quizID string) ([]model.Question, error) {
	if f.questionsErr != nil {
		return nil, f.questionsErr
	}
	return f.questions, nil
}

func (f *fakeStore) CountAttempts(userID, quizID string) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, a := range f.attempts {
		if a.UserID == userID && a.QuizID == quizID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CreateAttemptWithAnswers(attempt *model.QuizAttempt, answers []model.UserAnswer) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, *attempt)
	f.answers = append(f.answers, answers...)
	return nil
}

func (f *fakeStore) attemptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.attempts)
}

func newFiveQuestionStore() *fakeStore {
	questions := make([]model.Question, 5)
	for i := range questions {
		questions[i] = model.Question{
			Prompt:        "q",
			Type:          model.ShortAnswer,
			CorrectAnswer: "right",
			Points:        1,
			Order:         i + 1,
		}
		questions[i].ID = string(rune('a' + i))
		questions[i].QuizID = "quiz1"
	}
	store := &fakeStore{
		quiz:      model.Quiz{IsActive: true, PassingScore: 70},
		questions: questions,
	}
	store.quiz.ID = "quiz1"
	return store
}

var student = model.Principal{UserID: "u1", Role: model.RoleStudent}

func TestSubmitQuizPartialScoreFails(t *testing.T) {
	store := newFiveQuestionStore()
	svc := NewSubmissionService(store)

	result, err := svc.SubmitQuiz(student, "quiz1", []QuestionAnswer{
		{QuestionID: "a", Answer: "right"},
		{QuestionID: "b", Answer: "right"},
		{QuestionID: "c", Answer: "wrong"},
	})
	if err != nil {
		t.Fatalf("SubmitQuiz: %v", err)
	}

	if result.EarnedPoints != 2 || result.TotalPoints != 5 {
		t.Fatalf("got %d/%d points, want 2/5", result.EarnedPoints, result.TotalPoints)
	}
	if result.Score != 40 {
		t.Fatalf("got score %d, want 40", result.Score)
	}
	if result.Passed {
		t.Fatal("40 against passing score 70 must not pass")
	}
	if store.attemptCount() != 1 {
		t.Fatalf("got %d stored attempts, want 1", store.attemptCount())
	}
	if len(store.answers) != 5 {
		t.Fatalf("got %d answer rows, want one per question", len(store.answers))
	}
}

func TestSubmitQuizPerfectScorePasses(t *testing.T) {
	store := newFiveQuestionStore()
	svc := NewSubmissionService(store)

	answers := make([]QuestionAnswer, 5)
	for i := range answers {
		answers[i] = QuestionAnswer{QuestionID: string(rune('a' + i)), Answer: "RIGHT "}
	}

	result, err := svc.SubmitQuiz(student, "quiz1", answers)
	if err != nil {
		t.Fatalf("SubmitQuiz: %v", err)
	}
	if result.Score != 100 || !result.Passed {
		t.Fatalf("got score=%d passed=%v, want 100 true", result.Score, result.Passed)
	}
}

func TestSubmitQuizScoreRoundsHalfUp(t *testing.T) {
	store := newFiveQuestionStore()
	store.questions = store.questions[:3]
	svc := NewSubmissionService(store)

	result, err := svc.SubmitQuiz(student, "quiz1", []QuestionAnswer{
		{QuestionID: "a", Answer: "right"},
		{QuestionID: "b", Answer: "right"},
	})
	if err != nil {
		t.Fatalf("SubmitQuiz: %v", err)
	}
	// 2/3 of 100 rounds to 67
	if result.Score != 67 {
		t.Fatalf("got score %d, want 67", result.Score)
	}
}

func TestSubmitQuizUnansweredAndUnknownQuestions(t *testing.T) {
	store := newFiveQuestionStore()
	svc := NewSubmissionService(store)

	result, err := svc.SubmitQuiz(student, "quiz1", []QuestionAnswer{
		{QuestionID: "a", Answer: "right"},
		{QuestionID: "not-a-question", Answer: "right"},
	})
	if err != nil {
		t.Fatalf("SubmitQuiz: %v", err)
	}

	if result.EarnedPoints != 1 {
		t.Fatalf("got %d earned points, want 1; unknown ids must not score", result.EarnedPoints)
	}
	if len(store.answers) != 5 {
		t.Fatalf("got %d answer rows, want 5; unanswered questions still get rows", len(store.answers))
	}
	for _, a := range store.answers {
		if a.QuestionID == "b" && (a.IsCorrect || a.Answer != "") {
			t.Fatalf("unanswered question graded as %+v, want incorrect empty answer", a)
		}
	}
}

func TestSubmitQuizUnknownQuiz(t *testing.T) {
	store := newFiveQuestionStore()
	svc := NewSubmissionService(store)

	_, err := svc.SubmitQuiz(student, "missing", nil)
	if !errors.Is(err, util.ErrQuizNotFound) {
		t.Fatalf("got %v, want ErrQuizNotFound", err)
	}
}

func TestSubmitQuizInactiveQuiz(t *testing.T) {
	store := newFiveQuestionStore()
	store.quiz.IsActive = false
	svc := NewSubmissionService(store)

	_, err := svc.SubmitQuiz(student, "quiz1", nil)
	if !errors.Is(err, util.ErrQuizNotAvailable) {
		t.Fatalf("student: got %v, want ErrQuizNotAvailable", err)
	}

	// Admins can see inactive quizzes but still cannot submit to them.
	admin := model.Principal{UserID: "a1", Role: model.RoleAdmin}
	_, err = svc.SubmitQuiz(admin, "quiz1", nil)
	if !errors.Is(err, util.ErrQuizNotAvailable) {
		t.Fatalf("admin: got %v, want ErrQuizNotAvailable", err)
	}
	if store.attemptCount() != 0 {
		t.Fatal("no attempt may be recorded against an inactive quiz")
	}
}

func TestSubmitQuizNoQuestions(t *testing.T) {
	store := newFiveQuestionStore()
	store.questions = nil
	svc := NewSubmissionService(store)

	_, err := svc.SubmitQuiz(student, "quiz1", nil)
	if !errors.Is(err, util.ErrQuizHasNoQuestions) {
		t.Fatalf("got %v, want ErrQuizHasNoQuestions", err)
	}
	if store.attemptCount() != 0 {
		t.Fatal("no attempt may be recorded for a quiz without questions")
	}
}

func TestSubmitQuizAttemptLimit(t *testing.T) {
	store := newFiveQuestionStore()
	store.quiz.MaxAttempts = intPtr(2)
	store.attempts = []model.QuizAttempt{
		{QuizID: "quiz1", UserID: "u1"},
		{QuizID: "quiz1", UserID: "u1"},
	}
	svc := NewSubmissionService(store)

	_, err := svc.SubmitQuiz(student, "quiz1", nil)
	if !errors.Is(err, util.ErrAttemptLimitExceeded) {
		t.Fatalf("got %v, want ErrAttemptLimitExceeded", err)
	}
	if store.attemptCount() != 2 {
		t.Fatal("rejected submission must not add an attempt row")
	}

	// Another user is unaffected by u1's attempts.
	other := model.Principal{UserID: "u2", Role: model.RoleStudent}
	if _, err := svc.SubmitQuiz(other, "quiz1", nil); err != nil {
		t.Fatalf("other user: %v", err)
	}
}

func TestSubmitQuizStorageFailureIsAtomic(t *testing.T) {
	store := newFiveQuestionStore()
	store.createErr = errors.New("disk on fire")
	svc := NewSubmissionService(store)

	_, err := svc.SubmitQuiz(student, "quiz1", []QuestionAnswer{{QuestionID: "a", Answer: "right"}})

	var sErr *util.StorageError
	if !errors.As(err, &sErr) {
		t.Fatalf("got %v, want StorageError", err)
	}
	if store.attemptCount() != 0 || len(store.answers) != 0 {
		t.Fatal("failed write must leave no attempt or answer rows")
	}

	// The failed submission must not consume an attempt slot.
	store.createErr = nil
	store.quiz.MaxAttempts = intPtr(1)
	if _, err := svc.SubmitQuiz(student, "quiz1", nil); err != nil {
		t.Fatalf("retry after storage failure: %v", err)
	}
}

func TestSubmitQuizConcurrentLastSlot(t *testing.T) {
	store := newFiveQuestionStore()
	store.quiz.MaxAttempts = intPtr(1)
	svc := NewSubmissionService(store)

	const workers = 8
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SubmitQuiz(student, "quiz1", []QuestionAnswer{{QuestionID: "a", Answer: "right"}})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, util.ErrAttemptLimitExceeded) {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if succeeded != 1 {
		t.Fatalf("%d submissions succeeded, want exactly 1", succeeded)
	}
	if store.attemptCount() != 1 {
		t.Fatalf("got %d stored attempts, want exactly 1", store.attemptCount())
	}
}

func TestSubmitQuizScoreStaysInBounds(t *testing.T) {
	store := newFiveQuestionStore()
	svc := NewSubmissionService(store)

	result, err := svc.SubmitQuiz(student, "quiz1", nil)
	if err != nil {
		t.Fatalf("SubmitQuiz: %v", err)
	}
	if result.Score < 0 || result.Score > 100 {
		t.Fatalf("score %d out of bounds", result.Score)
	}
	if result.Score != 0 {
		t.Fatalf("all wrong answers should score 0, got %d", result.Score)
	}
}
