package app

import (
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/crud"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/query"
)

func populateUser(field, as string) crud.Populate {
	return crud.Populate{Field: field, As: as, Collection: mongodb.UsersCollection, Select: []string{"name", "email", "profileImg"}}
}

var (
	userResource = crud.Resource{
		Name:       "user",
		Creatable:  domain.UserCreatable,
		Updatable:  domain.UserUpdatable,
		Searchable: domain.UserSearchable,
		Sensitive:  domain.UserSensitive,
		Filter:     query.FilterOptions{ExactFields: []string{"role"}},
	}

	categoryResource = crud.Resource{
		Name:       "category",
		Creatable:  domain.CategoryCreatable,
		Searchable: domain.CategorySearchable,
	}

	companyResource = crud.Resource{
		Name:       "company",
		Creatable:  domain.CompanyCreatable,
		Searchable: domain.CompanySearchable,
		Populate: []crud.Populate{
			populateUser("userId", "user"),
			{Field: "categoryId", As: "category", Collection: mongodb.CategoriesCollection, Select: []string{"nameAr", "nameEn", "nameTr", "color"}},
		},
		Filter: query.FilterOptions{ExactFields: domain.CompanyExactFields},
	}

	reviewResource = crud.Resource{
		Name:       "review",
		Creatable:  domain.ReviewCreatable,
		Updatable:  domain.ReviewUpdatable,
		Searchable: domain.ReviewSearchable,
		Populate: []crud.Populate{
			populateUser("userId", "user"),
			{Field: "companyId", As: "company", Collection: mongodb.CompaniesCollection, Select: []string{"companyName", "logo"}},
		},
	}

	couponResource = crud.Resource{
		Name:       "coupon",
		Creatable:  domain.CouponCreatable,
		Searchable: domain.CouponSearchable,
		Filter:     query.FilterOptions{ExactFields: domain.CouponExactFields},
	}

	planResource = crud.Resource{
		Name:       "plan",
		Creatable:  domain.PlanCreatable,
		Searchable: domain.PlanSearchable,
		Filter:     query.FilterOptions{ExactFields: domain.PlanExactFields},
	}

	subscriptionResource = crud.Resource{
		Name: "subscription",
		Populate: []crud.Populate{
			populateUser("userId", "user"),
			{Field: "planId", As: "plan", Collection: mongodb.PlansCollection, Select: []string{"name", "code", "type"}},
		},
		Filter: query.FilterOptions{ExactFields: domain.SubscriptionExactFields},
	}

	campaignResource = crud.Resource{
		Name:       "campaign",
		Creatable:  domain.CampaignCreatable,
		Updatable:  domain.CampaignUpdatable,
		Searchable: domain.CampaignSearchable,
		Populate: []crud.Populate{
			{Field: "companyId", As: "company", Collection: mongodb.CompaniesCollection, Select: []string{"companyName"}},
		},
		Filter: query.FilterOptions{ExactFields: domain.CampaignExactFields},
	}

	notificationResource = crud.Resource{
		Name:      "notification",
		Creatable: domain.NotificationCreatable,
		Filter:    query.FilterOptions{ExactFields: domain.NotificationExactFields},
	}

	analyticsResource = crud.Resource{
		Name:      "analytics",
		Creatable: domain.AnalyticsCreatable,
		Filter:    query.FilterOptions{ExactFields: []string{"event"}},
	}

	miaResource = crud.Resource{
		Name:       "mia",
		Creatable:  domain.MiaCreatable,
		Searchable: domain.MiaSearchable,
		Filter:     query.FilterOptions{ExactFields: domain.MiaExactFields},
	}
)
