package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"teklip/marketplace/internal/apperr"
	"teklip/marketplace/internal/model"
	"teklip/marketplace/internal/post"

	"github.com/go-chi/chi/v5"
)

type moderationRequest struct {
	Decision model.ModerationDecision `json:"decision"`
	Reason   string                   `json:"reason"`
}

func parseLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Validation([]model.FieldError{{
			Field:   "limit",
			Value:   raw,
			Message: "limit has wrong value " + raw + ".",
			Errors:  []string{"limit must be a positive integer"},
		}})
	}
	return n, nil
}

// mustActor is only called behind requireToken.
func mustActor(r *http.Request) post.Actor {
	if a := actorFromContext(r.Context()); a != nil {
		return *a
	}
	return post.Actor{}
}

func (s *Server) handlePostsList(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	list, err := s.posts.ListPublished(r.Context(), post.ListFilter{
		Category: model.PostCategory(strings.TrimSpace(r.URL.Query().Get("category"))),
		Limit:    limit,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": list})
}

func (s *Server) handlePostsMine(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	list, err := s.posts.ListByOwner(r.Context(), mustActor(r).ID, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": list})
}

func (s *Server) handlePostCreate(w http.ResponseWriter, r *http.Request) {
	var in model.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.posts.Create(r.Context(), mustActor(r), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"post": p})
}

func (s *Server) handlePostGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.posts.Get(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"post": p})
}

func (s *Server) handlePostUpdate(w http.ResponseWriter, r *http.Request) {
	var in model.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.posts.Update(r.Context(), mustActor(r), chi.URLParam(r, "id"), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"post": p})
}

func (s *Server) handlePostDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.posts.Delete(r.Context(), mustActor(r), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePostModerate(w http.ResponseWriter, r *http.Request) {
	var req moderationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.posts.Moderate(r.Context(), mustActor(r), chi.URLParam(r, "id"), req.Decision, req.Reason)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"post": p})
}
