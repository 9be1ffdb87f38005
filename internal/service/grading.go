package service

import (
	"strings"

	"quizhub_backend/internal/model"
)

// GradeAnswer compares a submitted answer against the question's stored
// correct answer, case- and whitespace-insensitively. The same rule applies
// to every question type; an unanswered question grades as the empty string.
// Returns correctness and the points earned (the question's points or 0).
func GradeAnswer(q model.Question, submitted string) (bool, int) {
	if normalizeAnswer(submitted) == normalizeAnswer(q.CorrectAnswer) {
		return true, q.Points
	}
	return false, 0
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CanAttempt decides whether a user with priorAttempts recorded rows for a
// quiz may start another attempt. Every attempt ever created counts,
// completed or not, so abandoning an attempt does not free up a slot.
func CanAttempt(priorAttempts int64, quiz model.Quiz) bool {
	if !quiz.IsActive {
		return false
	}
	if quiz.MaxAttempts == nil {
		return true
	}
	return priorAttempts < int64(*quiz.MaxAttempts)
}
