package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"galaxyco.ai/api-server/common"
	"galaxyco.ai/api-server/internal/cache"
	"galaxyco.ai/api-server/internal/model"
	"galaxyco.ai/api-server/internal/store"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
)

// TemplateListing is a marketplace entry as presented to clients: the stored
// 0..500 rating scaled back to 0.00..5.00 stars.
type TemplateListing struct {
	model.AgentTemplate
	Rating float64 `json:"rating"`
}

// ListTemplatesParams narrows the marketplace listing.
type ListTemplatesParams struct {
	Category     string
	SortBy       string
	Limit        int
	FeaturedOnly bool
}

type NewTemplateParams struct {
	Name             string
	Slug             *string
	Description      string
	ShortDescription string
	Category         string
	Config           []byte
	Tags             []string
}

type MarketplaceService interface {
	ListTemplates(ctx context.Context, params ListTemplatesParams) ([]TemplateListing, error)
	GetTemplate(ctx context.Context, idOrSlug string) (*TemplateListing, error)
	// Install clones the template into the workspace as an agent and bumps
	// install counters, all in one transaction.
	Install(ctx context.Context, tc *TenantContext, templateID uuid.UUID, agentName string) (*model.Agent, error)
	// Rate records a 1..5 star rating into the template's running average.
	Rate(ctx context.Context, tc *TenantContext, templateID uuid.UUID, stars int) (*TemplateListing, error)
	CreateTemplate(ctx context.Context, tc *TenantContext, params NewTemplateParams) (*TemplateListing, error)
	ListAgents(ctx context.Context, tc *TenantContext) ([]model.Agent, error)
}

// MarketplaceCache is the listing cache the service reads through and
// invalidates on installs and ratings. A nil *cache.Cache satisfies it as a
// no-op, so the service runs unchanged without redis.
type MarketplaceCache interface {
	Get(ctx context.Context, key string, valuePtr any) error
	Set(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context, keys ...string) error
}

type marketplaceService struct {
	tx     store.TxRunner
	stores store.StoreProvider
	cache  MarketplaceCache
}

func NewMarketplaceService(tx store.TxRunner, stores store.StoreProvider, c MarketplaceCache) MarketplaceService {
	if c == nil {
		c = (*cache.Cache)(nil)
	}
	return &marketplaceService{tx: tx, stores: stores, cache: c}
}

func presentTemplate(tpl model.AgentTemplate) TemplateListing {
	return TemplateListing{
		AgentTemplate: tpl,
		Rating:        float64(tpl.Rating) / 100,
	}
}

// cacheKeyFor maps a listing query to its fixed cache key. Only the default
// and featured listings are cached; filtered queries go to the database.
func cacheKeyFor(params ListTemplatesParams) string {
	if params.Category != "" || params.SortBy != "" || params.Limit != 0 {
		return ""
	}
	if params.FeaturedOnly {
		return cache.KeyMarketplaceFeatured
	}
	return cache.KeyMarketplaceListing
}

func (s *marketplaceService) ListTemplates(ctx context.Context, params ListTemplatesParams) ([]TemplateListing, error) {
	key := cacheKeyFor(params)
	if key != "" {
		var cached []TemplateListing
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			slog.WarnContext(ctx, "marketplace cache read failed", "key", key, "error", err)
		}
	}

	templates, err := s.stores.Templates().ListPublished(ctx, store.TemplateFilter{
		Category:     params.Category,
		SortBy:       params.SortBy,
		Limit:        params.Limit,
		FeaturedOnly: params.FeaturedOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}

	listings := make([]TemplateListing, 0, len(templates))
	for _, tpl := range templates {
		listings = append(listings, presentTemplate(tpl))
	}

	if key != "" {
		if err := s.cache.Set(ctx, key, listings); err != nil {
			slog.WarnContext(ctx, "marketplace cache write failed", "key", key, "error", err)
		}
	}
	return listings, nil
}

func (s *marketplaceService) GetTemplate(ctx context.Context, idOrSlug string) (*TemplateListing, error) {
	var (
		tpl *model.AgentTemplate
		err error
	)
	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		tpl, err = s.stores.Templates().GetByID(ctx, id)
	} else {
		tpl, err = s.stores.Templates().GetBySlug(ctx, idOrSlug)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading template: %w", err)
	}
	listing := presentTemplate(*tpl)
	return &listing, nil
}

func (s *marketplaceService) Install(ctx context.Context, tc *TenantContext, templateID uuid.UUID, agentName string) (*model.Agent, error) {
	if err := RequireRole(tc, model.RoleMember); err != nil {
		return nil, err
	}

	tpl, err := s.stores.Templates().GetByID(ctx, templateID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading template: %w", err)
	}
	if !tpl.IsPublished {
		return nil, ErrTemplateNotFound
	}

	if agentName == "" {
		agentName = tpl.Name
	}
	agent := &model.Agent{
		ID:               uuid.New(),
		WorkspaceID:      tc.WorkspaceID,
		CreatedBy:        tc.UserID,
		Name:             agentName,
		Description:      tpl.ShortDescription,
		Status:           "inactive",
		Config:           tpl.Config,
		SourceTemplateID: &tpl.ID,
	}

	err = s.tx.WithTx(ctx, func(stores store.StoreProvider) error {
		if err := stores.Agents().Create(ctx, agent); err != nil {
			return fmt.Errorf("creating agent: %w", err)
		}
		if err := stores.Templates().RecordInstall(ctx, templateID); err != nil {
			return fmt.Errorf("recording install: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	auditWith(ctx, s.stores.Audit(), tc, model.AuditTemplateInstalled, "agent_template", templateID.String())

	// Cache invalidation runs after commit and never fails the install.
	if err := s.cache.Invalidate(ctx, cache.MarketplaceKeys...); err != nil {
		slog.WarnContext(ctx, "marketplace cache invalidation failed",
			"template_id", templateID,
			"error", err)
	}

	return agent, nil
}

func (s *marketplaceService) Rate(ctx context.Context, tc *TenantContext, templateID uuid.UUID, stars int) (*TemplateListing, error) {
	if err := RequireRole(tc, model.RoleMember); err != nil {
		return nil, err
	}
	if stars < 1 || stars > 5 {
		return nil, ErrInvalidRating
	}

	var updated *model.AgentTemplate
	err := s.tx.WithTx(ctx, func(stores store.StoreProvider) error {
		tpl, err := stores.Templates().GetByID(ctx, templateID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrTemplateNotFound
		}
		if err != nil {
			return fmt.Errorf("loading template: %w", err)
		}

		// Running average in the 0..500 scale: fold the new 1..5 vote in
		// as stars*100.
		total := tpl.Rating*tpl.ReviewCount + stars*100
		reviewCount := tpl.ReviewCount + 1
		rating := total / reviewCount

		if err := stores.Templates().ApplyRating(ctx, templateID, rating, reviewCount); err != nil {
			return fmt.Errorf("applying rating: %w", err)
		}
		tpl.Rating = rating
		tpl.ReviewCount = reviewCount
		updated = tpl
		return nil
	})
	if err != nil {
		return nil, err
	}

	auditWith(ctx, s.stores.Audit(), tc, model.AuditTemplateRated, "agent_template", templateID.String())

	if err := s.cache.Invalidate(ctx, cache.MarketplaceKeys...); err != nil {
		slog.WarnContext(ctx, "marketplace cache invalidation failed",
			"template_id", templateID,
			"error", err)
	}

	listing := presentTemplate(*updated)
	return &listing, nil
}

func (s *marketplaceService) CreateTemplate(ctx context.Context, tc *TenantContext, params NewTemplateParams) (*TemplateListing, error) {
	if err := RequireRole(tc, model.RoleAdmin); err != nil {
		return nil, err
	}

	slug, err := common.Slugify(orElse(params.Slug, params.Name), uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("building slug: %w", err)
	}

	// New templates start as drafts; they only enter the marketplace listing
	// once published, so no cache invalidation is needed here.
	tpl := &model.AgentTemplate{
		ID:               uuid.New(),
		Name:             params.Name,
		Slug:             slug,
		Description:      params.Description,
		ShortDescription: params.ShortDescription,
		Category:         params.Category,
		Config:           params.Config,
		Tags:             params.Tags,
		AuthorID:         &tc.UserID,
	}
	if err := s.stores.Templates().Create(ctx, tpl); err != nil {
		return nil, fmt.Errorf("creating template: %w", err)
	}

	listing := presentTemplate(*tpl)
	return &listing, nil
}

func (s *marketplaceService) ListAgents(ctx context.Context, tc *TenantContext) ([]model.Agent, error) {
	return s.stores.Agents().ListByWorkspace(ctx, tc.WorkspaceID)
}

func orElse(ptr *string, fallback string) string {
	if ptr != nil && *ptr != "" {
		return *ptr
	}
	return fallback
}
