package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionSnapshot is the copy of the active subscription kept on the user
// so that posting an ad needs a single document read.
type SubscriptionSnapshot struct {
	SubscriptionID primitive.ObjectID `json:"subscriptionId,omitempty" bson:"subscriptionId,omitempty"`
	PlanID         primitive.ObjectID `json:"planId,omitempty" bson:"planId,omitempty"`
	OptionID       primitive.ObjectID `json:"optionId,omitempty" bson:"optionId,omitempty"`
	StartDate      time.Time          `json:"startDate" bson:"startDate"`
	EndDate        time.Time          `json:"endDate" bson:"endDate"`
	AdsQuota       int                `json:"adsQuota" bson:"adsQuota"`
	AdsUsed        int                `json:"adsUsed" bson:"adsUsed"`
	IsActive       bool               `json:"isActive" bson:"isActive"`
}

// CanPostAd reports whether another ad fits into the snapshot at now.
func (s *SubscriptionSnapshot) CanPostAd(now time.Time) bool {
	return s != nil && s.IsActive && now.Before(s.EndDate) && s.AdsUsed < s.AdsQuota
}

type User struct {
	Base                  `bson:",inline"`
	Name                  string                `json:"name" bson:"name" validate:"required,min=2,max=64"`
	Slug                  string                `json:"slug" bson:"slug"`
	Email                 string                `json:"email" bson:"email" validate:"required,email"`
	Phone                 string                `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,min=6,max=20"`
	ProfileImg            string                `json:"profileImg,omitempty" bson:"profileImg,omitempty"`
	Password              string                `json:"-" bson:"password"`
	PasswordChangedAt     *time.Time            `json:"passwordChangedAt,omitempty" bson:"passwordChangedAt,omitempty"`
	PasswordResetCode     string                `json:"-" bson:"passwordResetCode,omitempty"`
	PasswordResetExpires  *time.Time            `json:"-" bson:"passwordResetExpires,omitempty"`
	PasswordResetVerified bool                  `json:"-" bson:"passwordResetVerified"`
	Role                  Role                  `json:"role" bson:"role" validate:"required,oneof=user manager admin"`
	Active                bool                  `json:"active" bson:"active"`
	LastLogin             *time.Time            `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
	Subscription          *SubscriptionSnapshot `json:"subscription,omitempty" bson:"subscription,omitempty"`
}

// ChangedPasswordAfter reports whether the password changed after a token
// issued at iat. Comparison is in whole seconds, the resolution of JWT iat.
func (u *User) ChangedPasswordAfter(iat time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Unix() > iat.Unix()
}

var (
	UserCreatable = []string{"name", "email", "phone", "profileImg", "role", "active"}
	UserUpdatable = []string{"name", "email", "phone", "profileImg", "role", "active"}
	// UserSelfUpdatable is what a user may change on their own profile.
	UserSelfUpdatable = []string{"name", "email", "phone", "profileImg"}
	UserSearchable    = []string{"name", "email", "phone"}
	UserSensitive     = []string{"password", "passwordResetCode", "passwordResetExpires", "passwordResetVerified"}
)
