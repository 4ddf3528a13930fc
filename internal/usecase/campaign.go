package usecase

import (
	"context"
	"errors"
	"net/url"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/crud"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
)

// CampaignService manages promotion campaigns. Users only see and change
// their own campaigns.
type CampaignService struct {
	campaigns *crud.Factory[domain.Campaign, *domain.Campaign]
	companies crud.Store[domain.Company]
}

func NewCampaignService(campaigns *crud.Factory[domain.Campaign, *domain.Campaign], companies crud.Store[domain.Company]) *CampaignService {
	return &CampaignService{campaigns: campaigns, companies: companies}
}

func (s *CampaignService) List(ctx context.Context, actor domain.Actor, params url.Values) (*crud.ListResult[domain.Campaign], error) {
	var pre bson.M
	if !actor.IsAdmin() {
		pre = bson.M{"userId": actor.ID}
	}
	return s.campaigns.List(ctx, pre, params)
}

func (s *CampaignService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Campaign, error) {
	campaign, err := s.campaigns.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(campaign.UserID) {
		return nil, domain.NotFound("No campaign for this id " + id)
	}
	return campaign, nil
}

// Create starts a campaign for one of the caller's companies.
func (s *CampaignService) Create(ctx context.Context, actor domain.Actor, payload map[string]interface{}) (*domain.Campaign, error) {
	rawID, _ := payload["companyId"].(string)
	companyID, err := parseID(rawID, "company")
	if err != nil {
		return nil, err
	}
	company, err := s.companies.FindByID(ctx, companyID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("No company for this id " + rawID)
	}
	if err != nil {
		return nil, domain.Internal(err)
	}
	if !actor.Owns(company.UserID) {
		return nil, domain.Forbidden(msgForbidden)
	}

	return s.campaigns.Create(ctx, payload, func(_ context.Context, c *domain.Campaign) error {
		c.UserID = company.UserID
		if c.Status == "" {
			c.Status = domain.CampaignDraft
		}
		return nil
	})
}

func (s *CampaignService) Update(ctx context.Context, actor domain.Actor, id string, payload map[string]interface{}) (*domain.Campaign, error) {
	campaign, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.campaigns.UpdateLoaded(ctx, campaign, payload)
}

func (s *CampaignService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	return s.campaigns.Delete(ctx, id)
}

func (s *CampaignService) owned(ctx context.Context, actor domain.Actor, id string) (*domain.Campaign, error) {
	campaign, err := s.campaigns.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(campaign.UserID) {
		return nil, domain.Forbidden(msgForbidden)
	}
	return campaign, nil
}
