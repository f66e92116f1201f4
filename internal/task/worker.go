package task

import (
	"context"
	"regexp"
	"strings"
	"time"

	"videorelay/internal/calllog"
	"videorelay/internal/domain"
	"videorelay/internal/providers/grok"
)

// videoSrcPattern extracts the source of an embedded video tag from the
// textual response body.
var videoSrcPattern = regexp.MustCompile(`<video[^>]+src="([^"]+)"`)

var videoExtensions = []string{".mp4", ".webm", ".mov"}

const (
	errCodeNoVideo    = "no_video_generated"
	errCodeGeneration = "generation_error"
)

// process is the generation worker: exactly one runs per task, spawned by
// Create and never retried. Provider failures become terminal task state,
// never an error to the caller of Create. The worker holds no per-call
// timeout of its own; the provider client's timeout is the only bound.
func (s *Service) process(id string) {
	ctx := context.Background()
	start := time.Now()

	t, ok := s.Get(id)
	if !ok {
		s.logger.Error().Str("task_id", id).Msg("worker: task vanished before processing")
		return
	}

	var credential string
	if s.creds != nil {
		credential = s.creds.Next()
	}
	country := s.callerCountry(id)

	defer s.markDirty()

	s.mutate(id, func(t *domain.VideoTask) {
		t.Status = domain.TaskStatusInProgress
		t.Progress = 10
	})

	req := grok.ChatRequest{
		Model:    t.Model,
		Messages: []grok.Message{buildUserTurn(t)},
		Stream:   false,
	}

	s.mutate(id, func(t *domain.VideoTask) { t.Progress = 30 })

	s.logger.Info().Str("task_id", id).Str("model", t.Model).Msg("worker: generation started")
	resp, mediaURLs, err := s.gen.CreateCompletion(ctx, credential, req)
	if err != nil {
		s.failTask(id, errCodeGeneration, err.Error())
		s.logger.Error().Err(err).Str("task_id", id).Msg("worker: generation failed")
		s.audit(calllog.Entry{
			Credential: credential,
			Model:      t.Model,
			Success:    false,
			StatusCode: 500,
			ElapsedMS:  time.Since(start).Milliseconds(),
			Error:      err.Error(),
			Country:    country,
		})
		return
	}

	s.mutate(id, func(t *domain.VideoTask) { t.Progress = 80 })

	videoURL := extractVideoURL(resp.Content(), mediaURLs)
	if videoURL == "" {
		s.failTask(id, errCodeNoVideo, "no video url returned by provider")
		s.logger.Error().Str("task_id", id).Msg("worker: no video url in provider response")
		return
	}

	videoPath := deriveVideoPath(videoURL)
	s.mutate(id, func(t *domain.VideoTask) {
		t.Status = domain.TaskStatusCompleted
		t.Progress = 100
		t.CompletedAt = time.Now().Unix()
		t.VideoURL = videoURL
		t.VideoPath = videoPath
	})
	s.logger.Info().Str("task_id", id).Str("video_url", videoURL).Msg("worker: generation completed")

	s.audit(calllog.Entry{
		Credential: credential,
		Model:      t.Model,
		Success:    true,
		StatusCode: 200,
		ElapsedMS:  time.Since(start).Milliseconds(),
		MediaURLs:  []string{videoURL},
		Country:    country,
	})
}

// failTask records a terminal failure on the task.
func (s *Service) failTask(id, code, message string) {
	s.mutate(id, func(t *domain.VideoTask) {
		t.Status = domain.TaskStatusFailed
		t.ErrorCode = code
		t.ErrorMessage = message
	})
}

// audit hands the entry to the call log, if one is wired. Recording is
// best-effort and never blocks the worker.
func (s *Service) audit(e calllog.Entry) {
	if s.calls == nil {
		return
	}
	s.calls.Record(e)
}

// buildUserTurn assembles the single conversational turn for the provider:
// image reference and prompt as separate parts when the task carries a
// conditioning image, plain text content otherwise.
func buildUserTurn(t domain.VideoTask) grok.Message {
	if t.InputReference == "" {
		return grok.Message{Role: "user", Content: t.Prompt}
	}
	return grok.Message{
		Role: "user",
		Content: []grok.ContentPart{
			{Type: "image_url", ImageURL: &grok.ImageRef{URL: t.InputReference}},
			{Type: "text", Text: t.Prompt},
		},
	}
}

// extractVideoURL scans the textual body for an embedded video tag first,
// then falls back to the first provider-supplied media URL that looks like a
// video container.
func extractVideoURL(content string, mediaURLs []string) string {
	if m := videoSrcPattern.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	for _, url := range mediaURLs {
		lower := strings.ToLower(url)
		for _, ext := range videoExtensions {
			if strings.Contains(lower, ext) {
				return url
			}
		}
	}
	return ""
}

// deriveVideoPath strips the known asset prefix from the video URL, producing
// the key used for later cache lookups. URLs without the prefix yield "".
func deriveVideoPath(videoURL string) string {
	const prefix = "/images/"
	if idx := strings.Index(videoURL, prefix); idx >= 0 {
		return videoURL[idx+len(prefix):]
	}
	return ""
}
