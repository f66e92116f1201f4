package domain

import (
	"strings"
	"testing"
)

func TestInternalModel(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "sora2", input: "sora-2", want: "grok-imagine-0.9"},
		{name: "sora2_pro", input: "sora-2-pro", want: "grok-imagine-0.9"},
		{name: "bare_sora", input: "sora", want: "grok-imagine-0.9"},
		{name: "mixed_case", input: "Sora-2", want: "grok-imagine-0.9"},
		{name: "unknown_defaults", input: "dall-e-3", want: "grok-imagine-0.9"},
		{name: "empty_defaults", input: "", want: "grok-imagine-0.9"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := InternalModel(tc.input); got != tc.want {
				t.Fatalf("InternalModel(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestPublicModel(t *testing.T) {
	t.Parallel()
	if got := PublicModel("grok-imagine-0.9"); got != "sora-2" {
		t.Fatalf("PublicModel = %q, want %q", got, "sora-2")
	}
	if got := PublicModel("something-else"); got != "something-else" {
		t.Fatalf("PublicModel passthrough = %q, want %q", got, "something-else")
	}
}

func TestNewTaskID(t *testing.T) {
	t.Parallel()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewTaskID()
		if !strings.HasPrefix(id, "video_") {
			t.Fatalf("id %q missing prefix", id)
		}
		if len(id) != len("video_")+12 {
			t.Fatalf("id %q has wrong length", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestNewVideoTaskDefaults(t *testing.T) {
	t.Parallel()
	task := NewVideoTask("a dog running", "grok-imagine-0.9")
	if task.Status != TaskStatusQueued {
		t.Fatalf("Status = %q, want %q", task.Status, TaskStatusQueued)
	}
	if task.Progress != 0 {
		t.Fatalf("Progress = %d, want 0", task.Progress)
	}
	if task.Size != "720x1280" || task.Seconds != "4" || task.Quality != "standard" {
		t.Fatalf("defaults mismatch: %+v", task)
	}
	if task.CreatedAt == 0 {
		t.Fatal("CreatedAt not set")
	}
}

func TestTaskStatusTerminal(t *testing.T) {
	t.Parallel()
	if TaskStatusQueued.Terminal() || TaskStatusInProgress.Terminal() {
		t.Fatal("active statuses must not be terminal")
	}
	if !TaskStatusCompleted.Terminal() || !TaskStatusFailed.Terminal() {
		t.Fatal("completed and failed must be terminal")
	}
}
