package taskform

import (
	"testing"

	"github.com/nhle/task-tracker/internal/model"
)

func TestDiff(t *testing.T) {
	orig := model.Task{ID: "1", Title: "Old", Description: "d", Completed: false}

	p := Diff(orig, "Old", "d", false)
	if !p.IsEmpty() {
		t.Errorf("expected empty patch, got %+v", p)
	}

	p = Diff(orig, "New", "d", true)
	if p.Title == nil || *p.Title != "New" {
		t.Errorf("Title = %v", p.Title)
	}
	if p.Description != nil {
		t.Errorf("Description should be unchanged, got %q", *p.Description)
	}
	if p.Completed == nil || !*p.Completed {
		t.Errorf("Completed = %v", p.Completed)
	}
}

func TestValidateRequired(t *testing.T) {
	v := validateRequired("Title")
	if err := v("  "); err == nil {
		t.Error("expected error for blank title")
	}
	if err := v("x"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStartEditSeedsBindings(t *testing.T) {
	m := New(80, 24)
	m.StartEdit(model.Task{ID: "7", Title: "Ship", Description: "v1", Completed: true})

	if !m.Editing() {
		t.Fatal("expected edit mode")
	}
	if m.fb.title != "Ship" || m.fb.description != "v1" || !m.fb.completed {
		t.Errorf("bindings = %+v", *m.fb)
	}

	m.StartCreate()
	if m.Editing() || m.fb.title != "" {
		t.Errorf("create should reset bindings, got %+v", *m.fb)
	}
}
