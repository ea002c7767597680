package model

import (
	"encoding/json"
	"testing"
)

func TestSecondsUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Seconds
	}{
		{"number", `{"timeSpent": 105}`, 105},
		{"numeric string", `{"timeSpent": "42"}`, 42},
		{"padded string", `{"timeSpent": " 7 "}`, 7},
		{"fractional", `{"timeSpent": 12.9}`, 12},
		{"null", `{"timeSpent": null}`, 0},
		{"missing", `{}`, 0},
		{"garbage string", `{"timeSpent": "abc"}`, 0},
		{"negative", `{"timeSpent": -5}`, 0},
		{"bool", `{"timeSpent": true}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var task Task
			if err := json.Unmarshal([]byte(tt.raw), &task); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if task.TimeSpent != tt.want {
				t.Errorf("TimeSpent = %d, want %d", task.TimeSpent, tt.want)
			}
		})
	}
}

func TestTaskDecodesServerPayload(t *testing.T) {
	raw := `{
		"id": "t1",
		"title": "Write report",
		"description": "quarterly",
		"completed": true,
		"timeSpent": "100",
		"createdAt": "2024-05-01T10:00:00.000Z",
		"updatedAt": "2024-05-02T10:00:00.000Z"
	}`

	var task Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if task.ID != "t1" || task.Title != "Write report" || !task.Completed {
		t.Errorf("unexpected task: %+v", task)
	}
	if task.TimeSpent.Int() != 100 {
		t.Errorf("TimeSpent = %d, want 100", task.TimeSpent)
	}
	if task.StatusLabel() != StatusCompleted {
		t.Errorf("StatusLabel = %q", task.StatusLabel())
	}
}

func TestTaskPatchOmitsNilFields(t *testing.T) {
	done := true
	data, err := json.Marshal(TaskPatch{Completed: &done})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"completed":true}` {
		t.Errorf("patch body = %s", data)
	}
	if (TaskPatch{}).IsEmpty() != true {
		t.Error("empty patch should report IsEmpty")
	}
}
