package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/suportehub/helpdesk-service/internal/domain"
	"github.com/suportehub/helpdesk-service/internal/repository"
	apperrors "github.com/suportehub/helpdesk-service/pkg/util"
)

const groupListCacheKey = "helpdesk:assignment_groups"

// GroupService manages assignment groups. The full group list is consulted
// on every routed ticket creation and on most page loads, so reads go
// through a short-lived Redis cache when one is configured.
type GroupService struct {
	groups   repository.AssignmentGroupRepository
	cache    *redis.Client
	cacheTTL time.Duration
}

// GroupInput describes group creation/update payloads.
type GroupInput struct {
	Key         string
	Name        string
	Color       string
	Description *string
}

// NewGroupService constructs the service. cache may be nil.
func NewGroupService(groups repository.AssignmentGroupRepository, cache *redis.Client, cacheTTL time.Duration) *GroupService {
	return &GroupService{groups: groups, cache: cache, cacheTTL: cacheTTL}
}

// List returns all groups ordered by name.
func (s *GroupService) List(ctx context.Context) ([]domain.AssignmentGroup, error) {
	if cached, ok := s.readCache(ctx); ok {
		return cached, nil
	}
	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.writeCache(ctx, groups)
	return groups, nil
}

// Get fetches a single group.
func (s *GroupService) Get(ctx context.Context, id string) (*domain.AssignmentGroup, error) {
	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("assignment group", map[string]any{"group_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return group, nil
}

// Create validates the key format and uniqueness before inserting.
func (s *GroupService) Create(ctx context.Context, input GroupInput) (*domain.AssignmentGroup, error) {
	key := strings.TrimSpace(input.Key)
	if !domain.ValidGroupKey(key) {
		return nil, apperrors.NewValidationError("key must be lowercase kebab-case", map[string]any{"key": key})
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}

	if _, err := s.groups.GetByKey(ctx, key); err == nil {
		return nil, apperrors.NewDuplicateKey("group key already exists", map[string]any{"key": key})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	group := &domain.AssignmentGroup{
		Key:         key,
		Name:        strings.TrimSpace(input.Name),
		Color:       input.Color,
		Description: input.Description,
	}
	if group.Color == "" {
		group.Color = "#64748b"
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.dropCache(ctx)
	return group, nil
}

// Update applies a partial update; a changed key must stay unique.
func (s *GroupService) Update(ctx context.Context, id string, input GroupInput) (*domain.AssignmentGroup, error) {
	group, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if key := strings.TrimSpace(input.Key); key != "" && key != group.Key {
		if !domain.ValidGroupKey(key) {
			return nil, apperrors.NewValidationError("key must be lowercase kebab-case", map[string]any{"key": key})
		}
		if existing, err := s.groups.GetByKey(ctx, key); err == nil && existing.ID != id {
			return nil, apperrors.NewDuplicateKey("group key already in use", map[string]any{"key": key})
		} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		group.Key = key
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		group.Name = name
	}
	if input.Color != "" {
		group.Color = input.Color
	}
	if input.Description != nil {
		group.Description = input.Description
	}

	if err := s.groups.Update(ctx, group); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.dropCache(ctx)
	return group, nil
}

// Delete removes a group; tickets pointing at it fall back to no group.
func (s *GroupService) Delete(ctx context.Context, id string) error {
	if err := s.groups.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("assignment group", map[string]any{"group_id": id})
		}
		return apperrors.MapError(err)
	}
	s.dropCache(ctx)
	return nil
}

func (s *GroupService) readCache(ctx context.Context) ([]domain.AssignmentGroup, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, groupListCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var groups []domain.AssignmentGroup
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, false
	}
	return groups, true
}

func (s *GroupService) writeCache(ctx context.Context, groups []domain.AssignmentGroup) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(groups)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, groupListCacheKey, raw, s.cacheTTL).Err()
}

func (s *GroupService) dropCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, groupListCacheKey).Err()
}
