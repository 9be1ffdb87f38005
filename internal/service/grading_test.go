package service

import (
	"testing"

	"quizhub_backend/internal/model"
)

func TestGradeAnswerExactMatch(t *testing.T) {
	q := model.Question{CorrectAnswer: "Paris", Points: 3}

	correct, points := GradeAnswer(q, "Paris")
	if !correct || points != 3 {
		t.Fatalf("exact match: got correct=%v points=%d, want true 3", correct, points)
	}
}

func TestGradeAnswerIgnoresCaseAndWhitespace(t *testing.T) {
	q := model.Question{CorrectAnswer: "Paris", Points: 2}

	for _, submitted := range []string{"paris", "PARIS", "  Paris  ", "\tpArIs\n"} {
		correct, points := GradeAnswer(q, submitted)
		if !correct || points != 2 {
			t.Fatalf("submitted %q: got correct=%v points=%d, want true 2", submitted, correct, points)
		}
	}
}

func TestGradeAnswerWrongAnswer(t *testing.T) {
	q := model.Question{CorrectAnswer: "Paris", Points: 2}

	for _, submitted := range []string{"London", "Pariss", "Par is", ""} {
		correct, points := GradeAnswer(q, submitted)
		if correct || points != 0 {
			t.Fatalf("submitted %q: got correct=%v points=%d, want false 0", submitted, correct, points)
		}
	}
}

func TestGradeAnswerNormalizesStoredAnswerToo(t *testing.T) {
	q := model.Question{CorrectAnswer: "  TRUE ", Points: 1}

	if correct, _ := GradeAnswer(q, "true"); !correct {
		t.Fatal("stored answer with padding should still match")
	}
}

func TestGradeAnswerIsDeterministic(t *testing.T) {
	q := model.Question{CorrectAnswer: "42", Points: 5}

	for i := 0; i < 100; i++ {
		correct, points := GradeAnswer(q, "42")
		if !correct || points != 5 {
			t.Fatalf("iteration %d: got correct=%v points=%d", i, correct, points)
		}
	}
}

func intPtr(n int) *int { return &n }

func TestCanAttemptInactiveQuiz(t *testing.T) {
	quiz := model.Quiz{IsActive: false}
	if CanAttempt(0, quiz) {
		t.Fatal("inactive quiz must not accept attempts")
	}
}

func TestCanAttemptUnlimited(t *testing.T) {
	quiz := model.Quiz{IsActive: true, MaxAttempts: nil}
	if !CanAttempt(1000, quiz) {
		t.Fatal("nil maxAttempts means unlimited attempts")
	}
}

func TestCanAttemptBelowAndAtLimit(t *testing.T) {
	quiz := model.Quiz{IsActive: true, MaxAttempts: intPtr(3)}

	if !CanAttempt(2, quiz) {
		t.Fatal("2 prior attempts of 3 allowed should permit another")
	}
	if CanAttempt(3, quiz) {
		t.Fatal("3 prior attempts of 3 allowed should block")
	}
	if CanAttempt(4, quiz) {
		t.Fatal("past the limit should block")
	}
}
