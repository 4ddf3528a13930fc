package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/crud"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const msgAlreadyReviewed = "You have already reviewed this company"

// ReviewService manages reviews and keeps the company rating in sync with the
// approved ones.
type ReviewService struct {
	reviews   *crud.Factory[domain.Review, *domain.Review]
	repo      domain.ReviewRepository
	companies *crud.Factory[domain.Company, *domain.Company]
	ratings   domain.CompanyRepository
	notifier  *NotificationService
	effects   Effects
	logger    *logger.Logger
}

func NewReviewService(
	reviews *crud.Factory[domain.Review, *domain.Review],
	repo domain.ReviewRepository,
	companies *crud.Factory[domain.Company, *domain.Company],
	ratings domain.CompanyRepository,
	notifier *NotificationService,
	effects Effects,
	log *logger.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:   reviews,
		repo:      repo,
		companies: companies,
		ratings:   ratings,
		notifier:  notifier,
		effects:   effects,
		logger:    log.Named("reviews"),
	}
}

// List returns reviews, optionally of one company. Non-staff only see
// approved reviews.
func (s *ReviewService) List(ctx context.Context, actor domain.Actor, companyID string, params url.Values) (*crud.ListResult[domain.Review], error) {
	pre := bson.M{}
	if !actor.IsStaff() {
		pre["isApproved"] = true
	}
	if companyID != "" {
		oid, err := parseID(companyID, "company")
		if err != nil {
			return nil, err
		}
		pre["companyId"] = oid
	}
	return s.reviews.List(ctx, pre, params)
}

func (s *ReviewService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Review, error) {
	review, err := s.reviews.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !review.IsApproved && !actor.IsStaff() && !actor.Owns(review.UserID) {
		return nil, domain.NotFound("No review for this id " + id)
	}
	return review, nil
}

// Create adds the caller's review of a company. A user reviews a company once.
// companyID, when set, overrides the payload's companyId.
func (s *ReviewService) Create(ctx context.Context, actor domain.Actor, companyID string, payload map[string]interface{}) (*domain.Review, error) {
	if companyID == "" {
		companyID, _ = payload["companyId"].(string)
	}
	cid, err := parseID(companyID, "company")
	if err != nil {
		return nil, err
	}
	company, err := s.companies.Store().FindByID(ctx, cid)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("No company for this id " + companyID)
	}
	if err != nil {
		return nil, domain.Internal(err)
	}

	exists, err := s.repo.ExistsForUser(ctx, actor.ID, cid)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if exists {
		return nil, domain.Conflict(msgAlreadyReviewed)
	}

	review, err := s.reviews.Create(ctx, payload, func(_ context.Context, r *domain.Review) error {
		r.UserID = actor.ID
		r.CompanyID = cid
		r.IsApproved = actor.IsStaff()
		return nil
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindConflict {
			return nil, domain.Conflict(msgAlreadyReviewed)
		}
		return nil, err
	}

	if err := s.recompute(ctx, cid); err != nil {
		return nil, err
	}
	s.effects.Publish(ctx, domain.SubjectReviewCreated, review)
	s.notifier.Notify(ctx, Notice{
		UserID:  company.UserID,
		Title:   "New review",
		Message: fmt.Sprintf("%s received a %.1f star review.", company.CompanyName, review.Ratings),
		Type:    domain.NotifyReviewCreated,
		Link:    "/companies/" + cid.Hex(),
	})
	return review, nil
}

// Update lets the author or an admin edit a review. An edit by a non-staff
// author sends the review back to moderation.
func (s *ReviewService) Update(ctx context.Context, actor domain.Actor, id string, payload map[string]interface{}) (*domain.Review, error) {
	review, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	review, err = s.reviews.UpdateLoaded(ctx, review, payload, func(_ context.Context, r *domain.Review) error {
		if !actor.IsStaff() {
			r.IsApproved = false
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.recompute(ctx, review.CompanyID); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	review, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return err
	}
	return s.recompute(ctx, review.CompanyID)
}

func (s *ReviewService) SetApproval(ctx context.Context, id string, approved bool) (*domain.Review, error) {
	review, err := s.reviews.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetApproval(ctx, review.ID, approved); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("No review for this id " + id)
		}
		return nil, domain.Internal(err)
	}
	s.reviews.Invalidate(ctx)
	review.IsApproved = approved
	if err := s.recompute(ctx, review.CompanyID); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) owned(ctx context.Context, actor domain.Actor, id string) (*domain.Review, error) {
	review, err := s.reviews.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(review.UserID) {
		return nil, domain.Forbidden(msgForbidden)
	}
	return review, nil
}

// recompute stores the average of the approved ratings, rounded to one decimal.
func (s *ReviewService) recompute(ctx context.Context, companyID primitive.ObjectID) error {
	avg, count, err := s.repo.RatingStats(ctx, companyID)
	if err != nil {
		s.logger.Error("Failed to aggregate ratings", zap.String("company_id", companyID.Hex()), zap.Error(err))
		return domain.Internal(err)
	}
	avg = math.Round(avg*10) / 10
	if err := s.ratings.SetRating(ctx, companyID, avg, count); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		s.logger.Error("Failed to store rating", zap.String("company_id", companyID.Hex()), zap.Error(err))
		return domain.Internal(err)
	}
	s.companies.Invalidate(ctx)
	return nil
}
