package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

type Review struct {
	Base       `bson:",inline"`
	Title      string             `json:"title,omitempty" bson:"title,omitempty" validate:"omitempty,max=500"`
	Ratings    float64            `json:"ratings" bson:"ratings" validate:"required,min=1,max=5"`
	UserID     primitive.ObjectID `json:"userId" bson:"userId" validate:"required"`
	CompanyID  primitive.ObjectID `json:"companyId" bson:"companyId" validate:"required"`
	IsApproved bool               `json:"isApproved" bson:"isApproved"`

	User    Ref `json:"user,omitempty" bson:"user,omitempty"`
	Company Ref `json:"company,omitempty" bson:"company,omitempty"`
}

var (
	ReviewCreatable  = []string{"title", "ratings", "companyId"}
	ReviewUpdatable  = []string{"title", "ratings"}
	ReviewSearchable = []string{"title"}
)
