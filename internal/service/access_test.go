package service

import (
	"testing"

	"quizhub_backend/internal/model"
)

func TestCanViewQuiz(t *testing.T) {
	student := model.Principal{UserID: "u1", Role: model.RoleStudent}
	admin := model.Principal{UserID: "a1", Role: model.RoleAdmin}

	cases := []struct {
		name      string
		principal model.Principal
		active    bool
		want      bool
	}{
		{"student active", student, true, true},
		{"student inactive", student, false, false},
		{"admin active", admin, true, true},
		{"admin inactive", admin, false, true},
	}

	for _, tc := range cases {
		got := CanViewQuiz(tc.principal, model.Quiz{IsActive: tc.active})
		if got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCanMutateQuiz(t *testing.T) {
	if CanMutateQuiz(model.Principal{UserID: "u1", Role: model.RoleStudent}) {
		t.Fatal("students must not mutate quizzes")
	}
	if !CanMutateQuiz(model.Principal{UserID: "a1", Role: model.RoleAdmin}) {
		t.Fatal("admins must be allowed to mutate quizzes")
	}
}
