package api

import (
	"context"

	"lessonforge/internal/project"
)

// ProjectStore abstracts the persistence interactions needed for API queries.
type ProjectStore interface {
	Create(ctx context.Context, p *project.Project) (*project.Project, error)
	GetByID(ctx context.Context, id string) (*project.Project, error)
	List(ctx context.Context, statuses ...project.Status) ([]*project.Project, error)
	Remove(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context) (map[project.Status]int, error)
}

// ProjectService exposes project CRUD operations returning API DTOs.
type ProjectService struct {
	store ProjectStore
}

// NewProjectService constructs a ProjectService around the provided store.
func NewProjectService(store ProjectStore) *ProjectService {
	if store == nil {
		return nil
	}
	return &ProjectService{store: store}
}

// List returns projects filtered by status.
func (s *ProjectService) List(ctx context.Context, statuses ...project.Status) ([]Project, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	projects, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromProjects(projects), nil
}

// Describe fetches a single project, nil when it does not exist.
func (s *ProjectService) Describe(ctx context.Context, id string) (*Project, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	p, err := s.store.GetByID(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}
	dto := FromProject(p)
	return &dto, nil
}

// Create validates and persists a new draft project.
func (s *ProjectService) Create(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	created, err := s.store.Create(ctx, ToProject(req))
	if err != nil {
		return nil, err
	}
	dto := FromProject(created)
	return &dto, nil
}

// Remove deletes a project, reporting whether it existed.
func (s *ProjectService) Remove(ctx context.Context, id string) (bool, error) {
	if s == nil || s.store == nil {
		return false, nil
	}
	return s.store.Remove(ctx, id)
}

// Stats returns project counts keyed by status string.
func (s *ProjectService) Stats(ctx context.Context) (map[string]int, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeProjectStats(stats), nil
}
