// Package post manages vehicle and property listings and their moderation.
package post

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"teklip/marketplace/internal/apperr"
	"teklip/marketplace/internal/metrics"
	"teklip/marketplace/internal/model"
	"teklip/marketplace/internal/store"

	"go.uber.org/zap"
)

// Actor is the authenticated caller.
type Actor struct {
	ID    string
	Email string
}

type ListFilter struct {
	Category model.PostCategory
	Limit    int
}

type Service struct {
	posts      store.PostStore
	bus        *Bus
	moderators map[string]struct{}
	metrics    *metrics.Metrics
	log        *zap.Logger
	now        func() time.Time
}

func NewService(posts store.PostStore, bus *Bus, moderatorEmails []string, m *metrics.Metrics, log *zap.Logger) *Service {
	if bus == nil {
		bus = NewBus()
	}
	if log == nil {
		log = zap.NewNop()
	}
	mods := make(map[string]struct{}, len(moderatorEmails))
	for _, e := range moderatorEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			mods[e] = struct{}{}
		}
	}
	return &Service{
		posts:      posts,
		bus:        bus,
		moderators: mods,
		metrics:    m,
		log:        log.Named("post"),
		now:        time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Bus() *Bus { return s.bus }

func (s *Service) IsModerator(a *Actor) bool {
	if a == nil {
		return false
	}
	_, ok := s.moderators[strings.ToLower(a.Email)]
	return ok
}

func errPostNotFound() error {
	return apperr.NotFound(apperr.CodePostNotFound, "Post not found")
}

func (s *Service) load(ctx context.Context, id string) (*model.Post, error) {
	p, err := s.posts.GetPost(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errPostNotFound()
	}
	if err != nil {
		return nil, apperr.Internal("", fmt.Errorf("get post: %w", err))
	}
	return p, nil
}

// loadOwned returns the post if actor owns it. Other callers get 403.
func (s *Service) loadOwned(ctx context.Context, actor Actor, id string) (*model.Post, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != actor.ID {
		return nil, apperr.Forbidden(apperr.CodeForbidden, "Only the owner can change this post")
	}
	return p, nil
}

func (s *Service) publish(typ string, p model.Post) {
	s.bus.Publish(Event{Type: typ, PostID: p.ID, OwnerID: p.OwnerID, Status: p.Status, Time: s.now().UTC()})
}

func (s *Service) Create(ctx context.Context, actor Actor, in model.PostInput) (model.Post, error) {
	if errs := model.ValidatePost(in); len(errs) > 0 {
		return model.Post{}, apperr.Validation(errs)
	}

	p := model.Post{OwnerID: actor.ID, Status: model.PostStatusModeration, IsFeatured: false}
	p.ApplyInput(in)

	created, err := s.posts.CreatePost(ctx, p)
	if err != nil {
		return model.Post{}, apperr.Internal("", fmt.Errorf("create post: %w", err))
	}
	s.publish(EventCreated, created)
	return created, nil
}

// Get returns a post. Unpublished posts are visible only to their owner and
// to moderators; anyone else gets post_not_found.
func (s *Service) Get(ctx context.Context, viewer *Actor, id string) (model.Post, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return model.Post{}, err
	}
	if p.Status != model.PostStatusPublished {
		if viewer == nil || (viewer.ID != p.OwnerID && !s.IsModerator(viewer)) {
			return model.Post{}, errPostNotFound()
		}
	}
	return *p, nil
}

func (s *Service) ListPublished(ctx context.Context, f ListFilter) ([]model.Post, error) {
	if f.Category != "" && f.Category != model.PostCategoryVehicle && f.Category != model.PostCategoryProperty {
		return nil, apperr.Validation([]model.FieldError{{
			Field:   "category",
			Value:   string(f.Category),
			Message: fmt.Sprintf("category has wrong value %s.", f.Category),
			Errors:  []string{"category must be one of vehicle, property"},
		}})
	}
	list, err := s.posts.ListPosts(ctx, store.PostFilter{
		Status:   model.PostStatusPublished,
		Category: f.Category,
		Limit:    f.Limit,
	})
	if err != nil {
		return nil, apperr.Internal("", fmt.Errorf("list posts: %w", err))
	}
	return list, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string, limit int) ([]model.Post, error) {
	list, err := s.posts.ListPosts(ctx, store.PostFilter{OwnerID: ownerID, Limit: limit})
	if err != nil {
		return nil, apperr.Internal("", fmt.Errorf("list own posts: %w", err))
	}
	return list, nil
}

// Update replaces the owner editable fields and sends the post back to moderation.
func (s *Service) Update(ctx context.Context, actor Actor, id string, in model.PostInput) (model.Post, error) {
	if errs := model.ValidatePost(in); len(errs) > 0 {
		return model.Post{}, apperr.Validation(errs)
	}
	p, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return model.Post{}, err
	}
	if !p.Status.Editable() {
		return model.Post{}, apperr.Unprocessable(apperr.CodeInvalidTransition, "Banned posts cannot be edited")
	}

	p.ApplyInput(in)
	p.Status = model.PostStatusModeration
	p.RejectReason = ""

	updated, err := s.posts.UpdatePost(ctx, *p)
	if errors.Is(err, store.ErrNotFound) {
		return model.Post{}, errPostNotFound()
	}
	if err != nil {
		return model.Post{}, apperr.Internal("", fmt.Errorf("update post: %w", err))
	}
	s.publish(EventUpdated, updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, actor Actor, id string) error {
	p, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return err
	}
	err = s.posts.DeletePost(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return errPostNotFound()
	}
	if err != nil {
		return apperr.Internal("", fmt.Errorf("delete post: %w", err))
	}
	s.publish(EventDeleted, *p)
	return nil
}

func (s *Service) Moderate(ctx context.Context, actor Actor, id string, decision model.ModerationDecision, reason string) (model.Post, error) {
	if !s.IsModerator(&actor) {
		return model.Post{}, apperr.Forbidden(apperr.CodeForbidden, "Moderator role required")
	}
	target, ok := decision.Target()
	if !ok {
		return model.Post{}, apperr.Validation([]model.FieldError{{
			Field:   "decision",
			Value:   string(decision),
			Message: fmt.Sprintf("decision has wrong value %s.", decision),
			Errors:  []string{"decision must be one of publish, request_changes, reject, ban"},
		}})
	}
	reason = strings.TrimSpace(reason)
	if decision.RequiresReason() && reason == "" {
		return model.Post{}, apperr.BadRequest(apperr.CodeReasonRequired, "A reason is required for this decision")
	}

	p, err := s.load(ctx, id)
	if err != nil {
		return model.Post{}, err
	}
	if !p.Status.CanModerateTo(target) {
		return model.Post{}, apperr.Unprocessable(apperr.CodeInvalidTransition,
			fmt.Sprintf("Cannot move post from %s to %s", p.Status, target))
	}

	p.Status = target
	p.ModeratedBy = actor.ID
	p.RejectReason = reason
	if target == model.PostStatusPublished {
		now := s.now().UTC()
		p.PublishedAt = &now
		p.RejectReason = ""
	}

	updated, err := s.posts.UpdatePost(ctx, *p)
	if errors.Is(err, store.ErrNotFound) {
		return model.Post{}, errPostNotFound()
	}
	if err != nil {
		return model.Post{}, apperr.Internal("", fmt.Errorf("moderate post: %w", err))
	}

	if s.metrics != nil {
		s.metrics.PostsModeratedTotal.WithLabelValues(string(decision)).Inc()
	}
	s.log.Info("post moderated",
		zap.String("post_id", updated.ID),
		zap.String("decision", string(decision)),
		zap.String("moderator_id", actor.ID),
	)
	s.publish(EventModerated, updated)
	return updated, nil
}
