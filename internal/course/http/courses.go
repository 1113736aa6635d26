package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/edustack/coursegate/internal/course/store"
	"github.com/edustack/coursegate/pkg/httpx"
	"github.com/edustack/coursegate/pkg/identity"
	"github.com/edustack/coursegate/pkg/idx"
	"github.com/edustack/coursegate/pkg/slogx"
)

// CreateCourseRequest is the admin-facing creation payload.
type CreateCourseRequest struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CourseResponse is the public projection of a catalogue entry.
type CourseResponse struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedBy   string `json:"createdBy"`
	CreatedAt   string `json:"createdAt"`
}

func toCourseResponse(c store.Course) CourseResponse {
	return CourseResponse{
		ID:          c.ID,
		Code:        c.Code,
		Title:       c.Title,
		Description: c.Description,
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

type CoursesHandler struct {
	Store store.Store
}

func (h *CoursesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	courses, err := h.Store.Courses().ListCourses(ctx)
	if err != nil {
		log.Error("list courses failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "could not list courses")
		return
	}

	out := make([]CourseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, toCourseResponse(c))
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *CoursesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	c, err := h.Store.Courses().GetCourse(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "course not found")
			return
		}
		log.Error("load course failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "could not load course")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toCourseResponse(c))
}

func (h *CoursesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	p, ok := identity.PrincipalFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateCourseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Code = strings.TrimSpace(req.Code)
	req.Title = strings.TrimSpace(req.Title)
	if req.Code == "" || req.Title == "" {
		httpx.WriteError(w, http.StatusBadRequest, "code and title are required")
		return
	}

	c := store.Course{
		ID:          idx.New().String(),
		Code:        req.Code,
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   p.Subject,
	}
	if err := h.Store.Courses().CreateCourse(ctx, c); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			httpx.WriteError(w, http.StatusConflict, "course code already exists")
			return
		}
		log.Error("create course failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "could not create course")
		return
	}

	created, err := h.Store.Courses().GetCourse(ctx, c.ID)
	if err != nil {
		// Row was written; fall back to what we have.
		created = c
	}

	httpx.WriteJSON(w, http.StatusCreated, toCourseResponse(created))
}

func (h *CoursesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := h.Store.Courses().DeleteCourse(ctx, r.PathValue("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "course not found")
			return
		}
		log.Error("delete course failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "could not delete course")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
