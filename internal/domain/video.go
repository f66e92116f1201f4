package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus enumerates the lifecycle states of a video generation task.
type TaskStatus string

const (
	TaskStatusQueued     TaskStatus = "queued"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// DefaultInternalModel is the provider model used when a public name is unknown.
const DefaultInternalModel = "grok-imagine-0.9"

// publicToInternal maps OpenAI-style model names to the provider model.
var publicToInternal = map[string]string{
	"sora-2":     DefaultInternalModel,
	"sora-2-pro": DefaultInternalModel,
	"sora":       DefaultInternalModel,
}

// internalToPublic maps provider models back to the name shown in responses.
var internalToPublic = map[string]string{
	DefaultInternalModel: "sora-2",
}

// InternalModel resolves a public model name to the internal provider model.
// Unknown names fall back to the default provider model.
func InternalModel(public string) string {
	if internal, ok := publicToInternal[strings.ToLower(strings.TrimSpace(public))]; ok {
		return internal
	}
	return DefaultInternalModel
}

// PublicModel resolves an internal provider model to its public-facing name.
// Models without an alias are returned unchanged.
func PublicModel(internal string) string {
	if public, ok := internalToPublic[internal]; ok {
		return public
	}
	return internal
}

// VideoTask is the canonical state of one video generation job. The JSON shape
// doubles as the persisted snapshot record, so field names stay snake_case.
type VideoTask struct {
	ID                 string     `json:"id"`
	Model              string     `json:"model"`
	Status             TaskStatus `json:"status"`
	Progress           int        `json:"progress"`
	CreatedAt          int64      `json:"created_at"`
	CompletedAt        int64      `json:"completed_at,omitempty"`
	ExpiresAt          int64      `json:"expires_at,omitempty"`
	Prompt             string     `json:"prompt"`
	Size               string     `json:"size"`
	Seconds            string     `json:"seconds"`
	Quality            string     `json:"quality"`
	ErrorCode          string     `json:"error_code,omitempty"`
	ErrorMessage       string     `json:"error_message,omitempty"`
	RemixedFromVideoID string     `json:"remixed_from_video_id,omitempty"`
	VideoURL           string     `json:"video_url,omitempty"`
	VideoPath          string     `json:"video_path,omitempty"`
	ThumbnailURL       string     `json:"thumbnail_url,omitempty"`
	InputReference     string     `json:"input_reference,omitempty"`
	User               string     `json:"user,omitempty"`
}

// NewTaskID returns a fresh task identifier: "video_" plus 12 hex characters.
func NewTaskID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "video_" + raw[:12]
}

// NewVideoTask builds a queued task with generation defaults applied.
func NewVideoTask(prompt, model string) VideoTask {
	return VideoTask{
		ID:        NewTaskID(),
		Model:     model,
		Status:    TaskStatusQueued,
		Progress:  0,
		CreatedAt: time.Now().Unix(),
		Prompt:    prompt,
		Size:      "720x1280",
		Seconds:   "4",
		Quality:   "standard",
	}
}
