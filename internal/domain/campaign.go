package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CampaignStatus string

const (
	CampaignDraft  CampaignStatus = "draft"
	CampaignActive CampaignStatus = "active"
	CampaignPaused CampaignStatus = "paused"
	CampaignEnded  CampaignStatus = "ended"
)

type Campaign struct {
	Base        `bson:",inline"`
	UserID      primitive.ObjectID `json:"userId" bson:"userId" validate:"required"`
	CompanyID   primitive.ObjectID `json:"companyId" bson:"companyId" validate:"required"`
	Title       string             `json:"title" bson:"title" validate:"required,min=2,max=120"`
	Description string             `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	Budget      float64            `json:"budget" bson:"budget" validate:"gte=0"`
	StartDate   time.Time          `json:"startDate" bson:"startDate" validate:"required"`
	EndDate     time.Time          `json:"endDate" bson:"endDate" validate:"required,gtfield=StartDate"`
	Status      CampaignStatus     `json:"status" bson:"status" validate:"required,oneof=draft active paused ended"`

	Company Ref `json:"company,omitempty" bson:"company,omitempty"`
}

var (
	CampaignCreatable   = []string{"companyId", "title", "description", "budget", "startDate", "endDate", "status"}
	CampaignUpdatable   = []string{"title", "description", "budget", "startDate", "endDate", "status"}
	CampaignSearchable  = []string{"title", "description"}
	CampaignExactFields = []string{"status"}
)
