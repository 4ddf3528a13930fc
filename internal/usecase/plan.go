package usecase

import (
	"context"
	"net/url"
	"strings"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/crud"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanService manages subscription plans. Option final prices are derived
// from price and discount on every write.
type PlanService struct {
	plans *crud.Factory[domain.Plan, *domain.Plan]
}

func NewPlanService(plans *crud.Factory[domain.Plan, *domain.Plan]) *PlanService {
	return &PlanService{plans: plans}
}

// List returns active plans, or all plans for staff.
func (s *PlanService) List(ctx context.Context, actor domain.Actor, params url.Values) (*crud.ListResult[domain.Plan], error) {
	var pre bson.M
	if !actor.IsStaff() {
		pre = bson.M{"isActive": true}
	}
	return s.plans.List(ctx, pre, params)
}

func (s *PlanService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Plan, error) {
	plan, err := s.plans.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive && !actor.IsStaff() {
		return nil, domain.NotFound("No plan for this id " + id)
	}
	return plan, nil
}

func (s *PlanService) Create(ctx context.Context, payload map[string]interface{}) (*domain.Plan, error) {
	return s.plans.Create(ctx, payload, planPricing)
}

func (s *PlanService) Update(ctx context.Context, id string, payload map[string]interface{}) (*domain.Plan, error) {
	return s.plans.Update(ctx, id, payload, planPricing)
}

func (s *PlanService) Delete(ctx context.Context, id string) error {
	return s.plans.Delete(ctx, id)
}

func planPricing(_ context.Context, p *domain.Plan) error {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	for i := range p.Options {
		if p.Options[i].ID.IsZero() {
			p.Options[i].ID = primitive.NewObjectID()
		}
		p.Options[i].FinalPrice = p.Options[i].ComputeFinalPrice()
	}
	return nil
}
