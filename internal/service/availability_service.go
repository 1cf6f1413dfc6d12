package service

import (
	"context"

	"medibook/internal/domain"
	"medibook/internal/models"
	"medibook/internal/scheduling"

	"github.com/rs/zerolog"
)

// AvailabilityService manages the weekly templates of providers.
type AvailabilityService struct {
	store     domain.AvailabilityStore
	directory domain.ProviderDirectory
	logger    *zerolog.Logger
}

func NewAvailabilityService(store domain.AvailabilityStore, directory domain.ProviderDirectory, logger *zerolog.Logger) *AvailabilityService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &AvailabilityService{store: store, directory: directory, logger: logger}
}

// ReplaceAvailability swaps the whole week of (kind, provider, resource) for req.Templates.
func (s *AvailabilityService) ReplaceAvailability(ctx context.Context, req *models.ReplaceAvailabilityRequest) ([]models.AvailabilityTemplate, error) {
	if !req.Actor.Valid() {
		return nil, scheduling.ErrForbidden
	}
	if !req.Actor.IsElevated() && !req.Actor.IsProvider(req.Kind, req.ProviderID) {
		return nil, scheduling.ErrForbidden
	}
	if err := s.checkProvider(ctx, req.Kind, req.ProviderID, req.ResourceID); err != nil {
		return nil, err
	}

	seen := make(map[int]struct{}, len(req.Templates))
	templates := make([]models.AvailabilityTemplate, 0, len(req.Templates))
	for _, tpl := range req.Templates {
		tpl.Kind = req.Kind
		tpl.ProviderID = req.ProviderID
		tpl.ResourceID = req.ResourceID
		scheduling.NormalizeTemplate(&tpl)
		if err := scheduling.ValidateTemplate(&tpl); err != nil {
			return nil, err
		}
		if _, dup := seen[tpl.DayOfWeek]; dup {
			return nil, scheduling.Validationf("day_of_week %d listed twice", tpl.DayOfWeek)
		}
		seen[tpl.DayOfWeek] = struct{}{}
		templates = append(templates, tpl)
	}

	if err := s.store.ReplaceTemplates(ctx, req.Kind, req.ProviderID, req.ResourceID, templates); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("kind", string(req.Kind)).
		Int64("provider_id", req.ProviderID).
		Int("days", len(templates)).
		Msg("availability replaced")
	return s.store.ListTemplates(ctx, req.Kind, req.ProviderID, req.ResourceID)
}

// GetAvailability returns the stored week, ordered by day.
func (s *AvailabilityService) GetAvailability(ctx context.Context, kind models.Kind, providerID int64, resourceID *int64) ([]models.AvailabilityTemplate, error) {
	if err := s.checkProvider(ctx, kind, providerID, resourceID); err != nil {
		return nil, err
	}
	return s.store.ListTemplates(ctx, kind, providerID, resourceID)
}

func (s *AvailabilityService) checkProvider(ctx context.Context, kind models.Kind, providerID int64, resourceID *int64) error {
	if !kind.Valid() {
		return scheduling.ErrInvalidKind
	}
	if providerID <= 0 {
		return scheduling.Validationf("provider_id is required")
	}
	provider, err := s.directory.GetProvider(ctx, kind, providerID)
	if err != nil {
		return err
	}
	if resourceID == nil {
		return nil
	}
	if _, err := s.directory.GetResource(ctx, *resourceID); err != nil {
		return err
	}
	if !provider.HasResource(*resourceID) {
		return scheduling.ErrNotAssociated
	}
	return nil
}
