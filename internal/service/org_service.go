package service

import (
	"context"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// OrgService administers the organization/department/category hierarchy
// tickets are filed under.
type OrgService struct {
	orgs       repository.OrganizationRepository
	depts      repository.DepartmentRepository
	categories repository.CategoryRepository
}

// NewOrgService builds the service.
func NewOrgService(orgs repository.OrganizationRepository, depts repository.DepartmentRepository, categories repository.CategoryRepository) *OrgService {
	return &OrgService{orgs: orgs, depts: depts, categories: categories}
}

// ListOrganizations returns every organization. Admin only.
func (s *OrgService) ListOrganizations(ctx context.Context, actor *domain.User) ([]domain.Organization, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	orgs, err := s.orgs.List(ctx)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return orgs, nil
}

// CreateOrganization registers a new tenant. Admin only.
func (s *OrgService) CreateOrganization(ctx context.Context, actor *domain.User, name, description string) (*domain.Organization, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, errorutil.NewValidationError("organization name is required", nil)
	}
	org := &domain.Organization{
		Name:        strings.TrimSpace(name),
		Description: description,
		IsActive:    true,
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, errorutil.MapError(err)
	}
	return org, nil
}

// ListDepartments returns the actor's organization's departments.
func (s *OrgService) ListDepartments(ctx context.Context, actor *domain.User) ([]domain.Department, error) {
	if actor == nil {
		return nil, errorutil.NewUnauthorized("authentication required")
	}
	depts, err := s.depts.ListByOrganization(ctx, actor.OrganizationID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return depts, nil
}

// CreateDepartment adds a department to the actor's organization. Admin
// only.
func (s *OrgService) CreateDepartment(ctx context.Context, actor *domain.User, name, description string) (*domain.Department, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, errorutil.NewValidationError("department name is required", nil)
	}
	dept := &domain.Department{
		Name:           strings.TrimSpace(name),
		Description:    description,
		OrganizationID: actor.OrganizationID,
		IsActive:       true,
	}
	if err := s.depts.Create(ctx, dept); err != nil {
		return nil, errorutil.MapError(err)
	}
	return dept, nil
}

// ListCategories returns the actor's organization's ticket categories.
func (s *OrgService) ListCategories(ctx context.Context, actor *domain.User) ([]domain.Category, error) {
	if actor == nil {
		return nil, errorutil.NewUnauthorized("authentication required")
	}
	categories, err := s.categories.ListByOrganization(ctx, actor.OrganizationID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return categories, nil
}

// CreateCategory adds a ticket category to the actor's organization.
// Admin only.
func (s *OrgService) CreateCategory(ctx context.Context, actor *domain.User, name, description string) (*domain.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, errorutil.NewValidationError("category name is required", nil)
	}
	category := &domain.Category{
		Name:           strings.TrimSpace(name),
		Description:    description,
		OrganizationID: actor.OrganizationID,
		IsActive:       true,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, errorutil.MapError(err)
	}
	return category, nil
}
