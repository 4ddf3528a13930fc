package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/crud"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const msgNeedSubscription = "You need an active subscription with remaining ads to post a company"

// CompanyService manages company ads. Posting consumes one ad from the
// owner's subscription unless the caller is staff.
type CompanyService struct {
	companies     *crud.Factory[domain.Company, *domain.Company]
	repo          domain.CompanyRepository
	categories    crud.Store[domain.Category]
	users         domain.UserRepository
	userStore     crud.Store[domain.User]
	plans         crud.Store[domain.Plan]
	subscriptions domain.SubscriptionRepository
	reviews       domain.ReviewRepository
	notifier      *NotificationService
	storage       domain.FileStorage
	effects       Effects
	now           Clock
	logger        *logger.Logger
}

// CompanyDeps groups the collaborators of CompanyService.
type CompanyDeps struct {
	Companies     *crud.Factory[domain.Company, *domain.Company]
	Repo          domain.CompanyRepository
	Categories    crud.Store[domain.Category]
	Users         domain.UserRepository
	UserStore     crud.Store[domain.User]
	Plans         crud.Store[domain.Plan]
	Subscriptions domain.SubscriptionRepository
	Reviews       domain.ReviewRepository
	Notifier      *NotificationService
	Storage       domain.FileStorage
	Effects       Effects
	Now           Clock
}

func NewCompanyService(deps CompanyDeps, log *logger.Logger) *CompanyService {
	if deps.Now == nil {
		deps.Now = SystemClock
	}
	return &CompanyService{
		companies:     deps.Companies,
		repo:          deps.Repo,
		categories:    deps.Categories,
		users:         deps.Users,
		userStore:     deps.UserStore,
		plans:         deps.Plans,
		subscriptions: deps.Subscriptions,
		reviews:       deps.Reviews,
		notifier:      deps.Notifier,
		storage:       deps.Storage,
		effects:       deps.Effects,
		now:           deps.Now,
		logger:        log.Named("companies"),
	}
}

// List returns approved companies, or every company for staff.
func (s *CompanyService) List(ctx context.Context, actor domain.Actor, params url.Values) (*crud.ListResult[domain.Company], error) {
	return s.companies.List(ctx, s.visibility(actor), params)
}

func (s *CompanyService) ListByCategory(ctx context.Context, actor domain.Actor, categoryID string, params url.Values) (*crud.ListResult[domain.Company], error) {
	oid, err := parseID(categoryID, "category")
	if err != nil {
		return nil, err
	}
	return s.companies.List(ctx, withField(s.visibility(actor), "categoryId", oid), params)
}

func (s *CompanyService) ListMine(ctx context.Context, actor domain.Actor, params url.Values) (*crud.ListResult[domain.Company], error) {
	return s.companies.List(ctx, bson.M{"userId": actor.ID}, params)
}

// Get returns a company and counts the view. Unapproved companies are only
// visible to their owner and staff.
func (s *CompanyService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Company, error) {
	company, err := s.companies.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !company.IsApproved && !actor.IsStaff() && !actor.Owns(company.UserID) {
		return nil, domain.NotFound("No company for this id " + id)
	}
	if err := s.repo.IncrementViews(ctx, company.ID); err != nil {
		s.logger.Warn("Failed to count company view", zap.String("company_id", id), zap.Error(err))
	} else {
		company.Views++
	}
	return company, nil
}

func (s *CompanyService) Create(ctx context.Context, actor domain.Actor, payload map[string]interface{}) (*domain.Company, error) {
	categoryID, err := s.requireCategory(ctx, payload)
	if err != nil {
		return nil, err
	}

	var snapshot *domain.SubscriptionSnapshot
	if !actor.IsStaff() {
		if snapshot, err = s.consumeAd(ctx, actor, categoryID); err != nil {
			return nil, err
		}
	}

	company, err := s.companies.Create(ctx, payload, func(_ context.Context, c *domain.Company) error {
		c.UserID = actor.ID
		c.Slug = makeSlug(c.CompanyName)
		c.IsApproved = actor.IsStaff()
		if c.AdType == "" {
			c.AdType = domain.AdTypeNormal
		}
		return nil
	})
	if err != nil {
		if snapshot != nil {
			if refundErr := s.users.RefundAdQuota(ctx, actor.ID); refundErr != nil {
				s.logger.Error("Failed to refund ad quota", zap.String("user_id", actor.ID.Hex()), zap.Error(refundErr))
			}
		}
		return nil, err
	}

	if snapshot != nil && snapshot.AdsUsed >= snapshot.AdsQuota {
		if err := s.subscriptions.MarkPartiallyExpired(ctx, snapshot.SubscriptionID); err != nil {
			s.logger.Warn("Failed to mark subscription partially expired",
				zap.String("subscription_id", snapshot.SubscriptionID.Hex()), zap.Error(err))
		}
	}

	s.logger.Info("Company created", zap.String("company_id", company.ID.Hex()), zap.String("user_id", actor.ID.Hex()))
	s.effects.Publish(ctx, domain.SubjectCompanyCreated, company)
	if !company.IsApproved {
		s.notifier.NotifyAdmins(ctx, Notice{
			Title:   "New company awaiting approval",
			Message: fmt.Sprintf("%s was posted and needs review.", company.CompanyName),
			Type:    domain.NotifyCompanyCreated,
			Link:    "/companies/" + company.ID.Hex(),
		})
	}
	return company, nil
}

func (s *CompanyService) Update(ctx context.Context, actor domain.Actor, id string, payload map[string]interface{}) (*domain.Company, error) {
	company, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if _, ok := payload["categoryId"]; ok {
		if _, err := s.requireCategory(ctx, payload); err != nil {
			return nil, err
		}
	}
	return s.companies.UpdateLoaded(ctx, company, payload, func(_ context.Context, c *domain.Company) error {
		c.Slug = makeSlug(c.CompanyName)
		return nil
	})
}

// Delete removes the company and its reviews.
func (s *CompanyService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	company, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.companies.Delete(ctx, id); err != nil {
		return err
	}
	if n, err := s.reviews.DeleteByCompany(ctx, company.ID); err != nil {
		s.logger.Warn("Failed to delete company reviews", zap.String("company_id", id), zap.Error(err))
	} else if n > 0 {
		s.logger.Info("Deleted company reviews", zap.String("company_id", id), zap.Int64("count", n))
	}
	return nil
}

// SetApproval approves or rejects a company and tells its owner.
func (s *CompanyService) SetApproval(ctx context.Context, id string, approved bool) (*domain.Company, error) {
	oid, err := parseID(id, "company")
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetApproval(ctx, oid, approved); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("No company for this id " + id)
		}
		return nil, domain.Internal(err)
	}
	s.companies.Invalidate(ctx)

	company, err := s.companies.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	notice := Notice{
		UserID:  company.UserID,
		Title:   "Your company was approved",
		Message: fmt.Sprintf("%s is now visible to everyone.", company.CompanyName),
		Type:    domain.NotifyCompanyApproved,
		Link:    "/companies/" + id,
		Email:   true,
	}
	if approved {
		s.effects.Publish(ctx, domain.SubjectCompanyApproved, company)
	} else {
		notice.Title = "Your company was not approved"
		notice.Message = fmt.Sprintf("%s is hidden until it is approved.", company.CompanyName)
		notice.Type = domain.NotifyCompanyRejected
	}
	s.notifier.Notify(ctx, notice)
	return company, nil
}

// UploadMedia stores the company logo or video.
func (s *CompanyService) UploadMedia(ctx context.Context, actor domain.Actor, id, field string, file FileUpload) (*domain.Company, error) {
	if s.storage == nil {
		return nil, errNoStorage
	}
	switch field {
	case "logo":
		if !strings.HasPrefix(file.ContentType, "image/") {
			return nil, domain.BadRequest("Only images are allowed")
		}
	case "video":
		if !strings.HasPrefix(file.ContentType, "video/") {
			return nil, domain.BadRequest("Only videos are allowed")
		}
	default:
		return nil, domain.BadRequest("Unknown media field " + field)
	}

	company, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	fileURL, err := s.storage.Upload(ctx, "companies", file.Name, file.ContentType, file.Data)
	if err != nil {
		s.logger.Error("Failed to upload company media", zap.String("company_id", id), zap.String("field", field), zap.Error(err))
		return nil, domain.Internal(err)
	}
	if err := s.repo.SetMedia(ctx, company.ID, field, fileURL); err != nil {
		return nil, domain.Internal(err)
	}
	s.companies.Invalidate(ctx)
	if field == "logo" {
		company.Logo = fileURL
	} else {
		company.Video = fileURL
	}
	return company, nil
}

func (s *CompanyService) visibility(actor domain.Actor) bson.M {
	if actor.IsStaff() {
		return bson.M{}
	}
	return bson.M{"isApproved": true}
}

// owned loads the company and checks that actor may modify it.
func (s *CompanyService) owned(ctx context.Context, actor domain.Actor, id string) (*domain.Company, error) {
	company, err := s.companies.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(company.UserID) {
		return nil, domain.Forbidden(msgForbidden)
	}
	return company, nil
}

func (s *CompanyService) requireCategory(ctx context.Context, payload map[string]interface{}) (primitive.ObjectID, error) {
	raw, _ := payload["categoryId"].(string)
	if raw == "" {
		return primitive.NilObjectID, domain.Validation("categoryId is required", map[string]string{"categoryId": "required"})
	}
	oid, err := parseID(raw, "category")
	if err != nil {
		return primitive.NilObjectID, err
	}
	if _, err := s.categories.FindByID(ctx, oid); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return primitive.NilObjectID, domain.NotFound("No category for this id " + raw)
		}
		return primitive.NilObjectID, domain.Internal(err)
	}
	return oid, nil
}

// consumeAd checks that the user's plan covers the category and takes one ad
// from the quota.
func (s *CompanyService) consumeAd(ctx context.Context, actor domain.Actor, categoryID primitive.ObjectID) (*domain.SubscriptionSnapshot, error) {
	user, err := s.userStore.FindByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Unauthorized("The user that belong to this token does no longer exist")
		}
		return nil, domain.Internal(err)
	}
	now := s.now()
	if !user.Subscription.CanPostAd(now) {
		return nil, domain.Forbidden(msgNeedSubscription)
	}

	plan, err := s.plans.FindByID(ctx, user.Subscription.PlanID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Internal(err)
	}
	if plan != nil {
		if option, ok := plan.Option(user.Subscription.OptionID); ok && !option.AllowsCategory(categoryID) {
			return nil, domain.Forbidden("Your plan does not cover this category")
		}
	}

	snapshot, err := s.users.ConsumeAdQuota(ctx, actor.ID, now)
	if errors.Is(err, domain.ErrQuotaExhausted) {
		return nil, domain.Forbidden(msgNeedSubscription)
	}
	if err != nil {
		return nil, domain.Internal(err)
	}
	return snapshot, nil
}
