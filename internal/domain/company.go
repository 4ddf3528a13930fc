package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

type AdType string

const (
	AdTypeNormal AdType = "normal"
	AdTypeVIP    AdType = "vip"
)

type Company struct {
	Base            `bson:",inline"`
	CompanyName     string             `json:"companyName" bson:"companyName" validate:"required,min=2,max=100"`
	CompanyNameEn   string             `json:"companyNameEn,omitempty" bson:"companyNameEn,omitempty" validate:"omitempty,max=100"`
	Slug            string             `json:"slug" bson:"slug"`
	Description     string             `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	DescriptionEn   string             `json:"descriptionEn,omitempty" bson:"descriptionEn,omitempty" validate:"omitempty,max=2000"`
	Logo            string             `json:"logo,omitempty" bson:"logo,omitempty"`
	Video           string             `json:"video,omitempty" bson:"video,omitempty"`
	Country         string             `json:"country,omitempty" bson:"country,omitempty"`
	City            string             `json:"city,omitempty" bson:"city,omitempty"`
	Email           string             `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	Phone           string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Whatsapp        string             `json:"whatsapp,omitempty" bson:"whatsapp,omitempty"`
	Website         string             `json:"website,omitempty" bson:"website,omitempty" validate:"omitempty,url"`
	Facebook        string             `json:"facebook,omitempty" bson:"facebook,omitempty"`
	Instagram       string             `json:"instagram,omitempty" bson:"instagram,omitempty"`
	IsApproved      bool               `json:"isApproved" bson:"isApproved"`
	AdType          AdType             `json:"adType" bson:"adType" validate:"required,oneof=normal vip"`
	RatingsAverage  float64            `json:"ratingsAverage" bson:"ratingsAverage"`
	RatingsQuantity int                `json:"ratingsQuantity" bson:"ratingsQuantity"`
	Views           int64              `json:"views" bson:"views"`
	UserID          primitive.ObjectID `json:"userId" bson:"userId" validate:"required"`
	CategoryID      primitive.ObjectID `json:"categoryId" bson:"categoryId" validate:"required"`

	User     Ref `json:"user,omitempty" bson:"user,omitempty"`
	Category Ref `json:"category,omitempty" bson:"category,omitempty"`
}

var (
	CompanyCreatable = []string{
		"companyName", "companyNameEn", "description", "descriptionEn", "country", "city",
		"email", "phone", "whatsapp", "website", "facebook", "instagram", "adType", "categoryId",
	}
	CompanySearchable  = []string{"companyName", "companyNameEn", "description", "descriptionEn", "city", "country"}
	CompanyExactFields = []string{"adType", "country", "city"}
)
