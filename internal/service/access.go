package service

import (
	"quizhub_backend/internal/model"
)

// CanViewQuiz reports whether the principal may read the quiz. Inactive
// quizzes are invisible to everyone but admins, regardless of ownership.
func CanViewQuiz(p model.Principal, quiz model.Quiz) bool {
	return p.IsAdmin() || quiz.IsActive
}

// CanMutateQuiz reports whether the principal may create, update or delete
// quizzes and their questions.
func CanMutateQuiz(p model.Principal) bool {
	return p.IsAdmin()
}
