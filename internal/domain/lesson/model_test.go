package lesson_test

import (
	"strings"
	"testing"
	"time"

	"sqnportal/internal/domain/lesson"
)

// TestLesson_Validate tests validation of Lesson.
func TestLesson_Validate(t *testing.T) {
	date := time.Date(2025, 7, 2, 19, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		lesson  lesson.Lesson
		wantErr bool
	}{
		{
			name:   "valid",
			lesson: lesson.Lesson{ID: "1", Title: "Radio Procedures", Description: "**Prowords** revision", LessonDate: date},
		},
		{
			name:   "no description is fine",
			lesson: lesson.Lesson{ID: "2", Title: "Drill Night", LessonDate: date},
		},
		{
			name:    "empty title",
			lesson:  lesson.Lesson{ID: "3", LessonDate: date},
			wantErr: true,
		},
		{
			name:    "title too long",
			lesson:  lesson.Lesson{ID: "4", Title: strings.Repeat("x", 201), LessonDate: date},
			wantErr: true,
		},
		{
			name:    "zero date",
			lesson:  lesson.Lesson{ID: "5", Title: "Navigation"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.lesson.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestAssignment_Validate tests validation of Assignment.
func TestAssignment_Validate(t *testing.T) {
	a := lesson.Assignment{ID: "1", LessonID: "l1", UserID: "u1"}
	if err := a.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	a.UserID = ""
	if err := a.Validate(); err != lesson.ErrEmptyUserID {
		t.Errorf("Validate() = %v, want ErrEmptyUserID", err)
	}
}

// TestResource_Validate tests validation of Resource.
func TestResource_Validate(t *testing.T) {
	r := lesson.Resource{ID: "1", LessonID: "l1", FileName: "handout.pdf", FilePath: "/uploads/lessons/handout.pdf"}
	if err := r.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	r.FilePath = " "
	if err := r.Validate(); err != lesson.ErrEmptyFilePath {
		t.Errorf("Validate() = %v, want ErrEmptyFilePath", err)
	}
}
