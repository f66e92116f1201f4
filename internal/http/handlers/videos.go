package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"videorelay/internal/domain"
	"videorelay/internal/middleware"
	"videorelay/internal/task"

	"github.com/go-chi/chi/v5"
)

// VideosCreate handles POST /v1/videos: it registers the generation task and
// answers immediately with the queued job; generation runs in the background.
func (a *App) VideosCreate(w http.ResponseWriter, r *http.Request) {
	var req createVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "invalid_request_error", "bad_request")
		return
	}
	if req.Prompt == "" {
		a.error(w, r, http.StatusBadRequest, "invalid_request_error", "prompt_required")
		return
	}
	if len(req.Prompt) > maxPromptLength {
		a.error(w, r, http.StatusBadRequest, "invalid_request_error", "prompt_too_long")
		return
	}

	t := a.Tasks.Create(task.CreateRequest{
		Prompt:         req.Prompt,
		Model:          req.Model,
		InputReference: req.InputReference,
		Seconds:        req.Seconds,
		Size:           req.Size,
		User:           req.User,
		Country:        middleware.CountryFromContext(r.Context()),
	})
	a.Logger.Info().Str("task_id", t.ID).Str("model", req.Model).Msg("api: video task created")
	a.json(w, http.StatusOK, videoJobFromTask(t))
}

// VideosList handles GET /v1/videos with cursor pagination.
func (a *App) VideosList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 20
	if v := query.Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 100 {
			a.error(w, r, http.StatusBadRequest, "invalid_request_error", "bad_request")
			return
		}
		limit = parsed
	}
	order := query.Get("order")
	if order == "" {
		order = "desc"
	}

	result := a.Tasks.List(task.ListOptions{
		Limit: limit,
		After: query.Get("after"),
		Order: order,
		User:  query.Get("user"),
	})

	resp := videoListResponse{Object: "list", Data: make([]videoJob, 0, len(result.Tasks)), HasMore: result.HasMore}
	for _, t := range result.Tasks {
		resp.Data = append(resp.Data, videoJobFromTask(t))
	}
	if result.FirstID != "" {
		resp.FirstID = &result.FirstID
	}
	if result.LastID != "" {
		resp.LastID = &result.LastID
	}
	a.json(w, http.StatusOK, resp)
}

// VideosGet handles GET /v1/videos/{video_id}.
func (a *App) VideosGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "video_id")
	t, ok := a.Tasks.Get(id)
	if !ok {
		a.error(w, r, http.StatusNotFound, "not_found", "video_not_found")
		return
	}
	a.json(w, http.StatusOK, videoJobFromTask(t))
}

// VideosDelete handles DELETE /v1/videos/{video_id}.
func (a *App) VideosDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "video_id")
	if _, ok := a.Tasks.Delete(id); !ok {
		a.error(w, r, http.StatusNotFound, "not_found", "video_not_found")
		return
	}
	a.json(w, http.StatusOK, videoDeleteResponse{ID: id, Object: "video", Deleted: true})
}

// VideosRemix handles POST /v1/videos/{video_id}/remix: it derives a new task
// from a completed source, distinguishing a missing source from one that is
// not yet completed.
func (a *App) VideosRemix(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "video_id")
	var req remixVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "invalid_request_error", "bad_request")
		return
	}
	if req.Prompt == "" {
		a.error(w, r, http.StatusBadRequest, "invalid_request_error", "prompt_required")
		return
	}
	if len(req.Prompt) > maxPromptLength {
		a.error(w, r, http.StatusBadRequest, "invalid_request_error", "prompt_too_long")
		return
	}

	t, err := a.Tasks.Remix(id, req.Prompt)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, r, http.StatusNotFound, "not_found", "video_not_found")
		return
	case errors.Is(err, domain.ErrNotCompleted):
		a.error(w, r, http.StatusBadRequest, "invalid_request_error", "remix_not_completed")
		return
	case err != nil:
		a.error(w, r, http.StatusInternalServerError, "internal_error", "internal")
		return
	}
	a.Logger.Info().Str("task_id", t.ID).Str("source_id", id).Msg("api: remix task created")
	a.json(w, http.StatusOK, videoJobFromTask(t))
}

// VideosContent handles GET /v1/videos/{video_id}/content: it serves the
// locally cached file when materialized, and otherwise redirects to the
// remote video URL.
func (a *App) VideosContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "video_id")
	t, ok := a.Tasks.Get(id)
	if !ok {
		a.error(w, r, http.StatusNotFound, "not_found", "video_not_found")
		return
	}
	if t.Status != domain.TaskStatusCompleted {
		a.error(w, r, http.StatusBadRequest, "invalid_request_error", "video_not_completed")
		return
	}

	local, err := a.Tasks.ContentPath(id)
	if err != nil || local == "" {
		if t.VideoURL != "" {
			http.Redirect(w, r, t.VideoURL, http.StatusFound)
			return
		}
		a.error(w, r, http.StatusNotFound, "not_found", "content_unavailable")
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.mp4"`)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, local)
}
