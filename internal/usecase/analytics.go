package usecase

import (
	"context"
	"errors"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/crud"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
)

// AnalyticsService records visitor interactions with companies.
type AnalyticsService struct {
	records   *crud.Factory[domain.AnalyticsRecord, *domain.AnalyticsRecord]
	repo      domain.AnalyticsRepository
	companies crud.Store[domain.Company]
	effects   Effects
}

func NewAnalyticsService(
	records *crud.Factory[domain.AnalyticsRecord, *domain.AnalyticsRecord],
	repo domain.AnalyticsRepository,
	companies crud.Store[domain.Company],
	effects Effects,
) *AnalyticsService {
	return &AnalyticsService{records: records, repo: repo, companies: companies, effects: effects}
}

// Track stores one event. Anonymous visitors are recorded without a user.
func (s *AnalyticsService) Track(ctx context.Context, actor domain.Actor, payload map[string]interface{}) (*domain.AnalyticsRecord, error) {
	rawID, _ := payload["companyId"].(string)
	if _, err := s.company(ctx, rawID); err != nil {
		return nil, err
	}
	record, err := s.records.Create(ctx, payload, func(_ context.Context, r *domain.AnalyticsRecord) error {
		if !actor.IsAnonymous() {
			id := actor.ID
			r.UserID = &id
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.effects.Publish(ctx, domain.SubjectAnalyticsEventTracked, record)
	return record, nil
}

// Summary counts the events of a company. Only its owner and staff may read it.
func (s *AnalyticsService) Summary(ctx context.Context, actor domain.Actor, companyID string) (*domain.AnalyticsSummary, error) {
	company, err := s.company(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && !actor.Owns(company.UserID) {
		return nil, domain.Forbidden(msgForbidden)
	}
	counts, err := s.repo.CountByEvent(ctx, company.ID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	summary := &domain.AnalyticsSummary{CompanyID: company.ID, Events: counts}
	for _, n := range counts {
		summary.Total += n
	}
	return summary, nil
}

func (s *AnalyticsService) company(ctx context.Context, id string) (*domain.Company, error) {
	oid, err := parseID(id, "company")
	if err != nil {
		return nil, err
	}
	company, err := s.companies.FindByID(ctx, oid)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("No company for this id " + id)
	}
	if err != nil {
		return nil, domain.Internal(err)
	}
	return company, nil
}
