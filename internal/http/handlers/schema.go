package handlers

import "videorelay/internal/domain"

// maxPromptLength bounds create and remix prompts.
const maxPromptLength = 32000

type createVideoRequest struct {
	Prompt         string `json:"prompt"`
	Model          string `json:"model"`
	InputReference string `json:"input_reference"`
	Seconds        string `json:"seconds"`
	Size           string `json:"size"`
	User           string `json:"user"`
}

type remixVideoRequest struct {
	Prompt string `json:"prompt"`
}

type videoError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// videoJob is the OpenAI-compatible wire shape of a task.
type videoJob struct {
	ID                 string      `json:"id"`
	Object             string      `json:"object"`
	Model              string      `json:"model"`
	Status             string      `json:"status"`
	Progress           int         `json:"progress"`
	CreatedAt          int64       `json:"created_at"`
	CompletedAt        int64       `json:"completed_at,omitempty"`
	ExpiresAt          int64       `json:"expires_at,omitempty"`
	Prompt             string      `json:"prompt,omitempty"`
	Size               string      `json:"size"`
	Seconds            string      `json:"seconds"`
	Quality            string      `json:"quality"`
	Error              *videoError `json:"error,omitempty"`
	RemixedFromVideoID string      `json:"remixed_from_video_id,omitempty"`
	VideoURL           string      `json:"video_url,omitempty"`
	ThumbnailURL       string      `json:"thumbnail_url,omitempty"`
}

// videoJobFromTask converts a task record to its public representation. The
// internal provider model is mapped back to its public alias and failure
// state is folded into the error substructure.
func videoJobFromTask(t domain.VideoTask) videoJob {
	job := videoJob{
		ID:                 t.ID,
		Object:             "video",
		Model:              domain.PublicModel(t.Model),
		Status:             string(t.Status),
		Progress:           t.Progress,
		CreatedAt:          t.CreatedAt,
		CompletedAt:        t.CompletedAt,
		ExpiresAt:          t.ExpiresAt,
		Prompt:             t.Prompt,
		Size:               t.Size,
		Seconds:            t.Seconds,
		Quality:            t.Quality,
		RemixedFromVideoID: t.RemixedFromVideoID,
		VideoURL:           t.VideoURL,
		ThumbnailURL:       t.ThumbnailURL,
	}
	if t.ErrorCode != "" || t.ErrorMessage != "" {
		job.Error = &videoError{Code: t.ErrorCode, Message: t.ErrorMessage}
		if job.Error.Code == "" {
			job.Error.Code = "unknown_error"
		}
		if job.Error.Message == "" {
			job.Error.Message = "unknown error occurred"
		}
	}
	return job
}

type videoListResponse struct {
	Object  string     `json:"object"`
	Data    []videoJob `json:"data"`
	HasMore bool       `json:"has_more"`
	FirstID *string    `json:"first_id"`
	LastID  *string    `json:"last_id"`
}

type videoDeleteResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}
