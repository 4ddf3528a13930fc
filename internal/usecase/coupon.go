package usecase

import (
	"context"
	"errors"
	"math"
	"net/url"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/crud"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type ApplyCouponInput struct {
	Code   string  `json:"code" validate:"required"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

// CouponQuote is the effect of a coupon on an amount.
type CouponQuote struct {
	Code          string              `json:"code"`
	DiscountType  domain.DiscountType `json:"discountType"`
	Amount        float64             `json:"amount"`
	Discount      float64             `json:"discount"`
	FinalAmount   float64             `json:"finalAmount"`
	FreeShipping  bool                `json:"freeShipping"`
	RemainingUses *int                `json:"remainingUses,omitempty"`
}

type CouponService struct {
	coupons  *crud.Factory[domain.Coupon, *domain.Coupon]
	repo     domain.CouponRepository
	effects  Effects
	validate *validator.Validate
	now      Clock
	logger   *logger.Logger
}

func NewCouponService(
	coupons *crud.Factory[domain.Coupon, *domain.Coupon],
	repo domain.CouponRepository,
	effects Effects,
	now Clock,
	log *logger.Logger,
) *CouponService {
	if now == nil {
		now = SystemClock
	}
	return &CouponService{
		coupons:  coupons,
		repo:     repo,
		effects:  effects,
		validate: crud.NewValidator(),
		now:      now,
		logger:   log.Named("coupons"),
	}
}

func (s *CouponService) List(ctx context.Context, params url.Values) (*crud.ListResult[domain.Coupon], error) {
	return s.coupons.List(ctx, nil, params)
}

func (s *CouponService) Get(ctx context.Context, id string) (*domain.Coupon, error) {
	return s.coupons.Get(ctx, id)
}

func (s *CouponService) Create(ctx context.Context, payload map[string]interface{}) (*domain.Coupon, error) {
	_, hasActive := payload["isActive"]
	return s.coupons.Create(ctx, payload, func(ctx context.Context, c *domain.Coupon) error {
		if !hasActive {
			c.IsActive = true
		}
		return s.rules(ctx, c)
	})
}

func (s *CouponService) Update(ctx context.Context, id string, payload map[string]interface{}) (*domain.Coupon, error) {
	return s.coupons.Update(ctx, id, payload, s.rules)
}

func (s *CouponService) Delete(ctx context.Context, id string) error {
	return s.coupons.Delete(ctx, id)
}

// Apply redeems the coupon once and returns the discount on in.Amount. The
// redemption is a single conditional update, so concurrent callers never
// exceed maxUses.
func (s *CouponService) Apply(ctx context.Context, actor domain.Actor, in ApplyCouponInput) (*CouponQuote, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, crud.ValidationError(err)
	}
	coupon, err := s.repo.Redeem(ctx, in.Code, s.now())
	if errors.Is(err, domain.ErrCouponUnavailable) {
		return nil, s.unavailable(ctx, in.Code)
	}
	if err != nil {
		return nil, domain.Internal(err)
	}

	if coupon.Exhausted() {
		if err := s.repo.DeactivateExhausted(ctx, coupon.ID); err != nil {
			s.logger.Warn("Failed to deactivate exhausted coupon", zap.String("code", coupon.Code), zap.Error(err))
		}
	}
	s.coupons.Invalidate(ctx)
	s.logger.Info("Coupon redeemed",
		zap.String("code", coupon.Code), zap.Int("used", coupon.UsedCount), zap.String("user_id", actor.ID.Hex()))
	s.effects.Publish(ctx, domain.SubjectCouponRedeemed, map[string]interface{}{
		"couponId":  coupon.ID,
		"code":      coupon.Code,
		"userId":    actor.ID,
		"usedCount": coupon.UsedCount,
	})
	return quote(coupon, in.Amount), nil
}

// Validate checks the coupon without redeeming it.
func (s *CouponService) Validate(ctx context.Context, in ApplyCouponInput) (*CouponQuote, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, crud.ValidationError(err)
	}
	coupon, err := s.repo.FindByCode(ctx, in.Code)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("Coupon not found")
	}
	if err != nil {
		return nil, domain.Internal(err)
	}
	if err := s.explain(coupon); err != nil {
		return nil, err
	}
	return quote(coupon, in.Amount), nil
}

// DeactivateExpired switches off every coupon past its expiry date.
func (s *CouponService) DeactivateExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeactivateExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.coupons.Invalidate(ctx)
	}
	return n, nil
}

// unavailable reports why a redemption did not match.
func (s *CouponService) unavailable(ctx context.Context, code string) error {
	coupon, err := s.repo.FindByCode(ctx, code)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("Coupon not found")
	}
	if err != nil {
		return domain.Internal(err)
	}
	if err := s.explain(coupon); err != nil {
		return err
	}
	return domain.Conflict("Coupon could not be applied, please try again")
}

func (s *CouponService) explain(c *domain.Coupon) error {
	switch {
	case c.Exhausted():
		return domain.Conflict("Coupon usage limit reached")
	case !c.IsActive:
		return domain.BadRequest("Coupon is not active")
	case !c.ExpiryDate.After(s.now()):
		return domain.BadRequest("Coupon has expired")
	}
	return nil
}

// rules normalizes the code and switches off coupons that are already
// exhausted or expired.
func (s *CouponService) rules(_ context.Context, c *domain.Coupon) error {
	c.Code = domain.NormalizeCouponCode(c.Code)
	if c.DiscountType == domain.DiscountPercentage && c.DiscountValue > 100 {
		return domain.Validation("discountValue must be at most 100 for percentage coupons",
			map[string]string{"discountValue": "max=100"})
	}
	if c.Exhausted() || !c.ExpiryDate.After(s.now()) {
		c.IsActive = false
	}
	return nil
}

func quote(c *domain.Coupon, amount float64) *CouponQuote {
	discount := c.Discount(amount)
	q := &CouponQuote{
		Code:         c.Code,
		DiscountType: c.DiscountType,
		Amount:       amount,
		Discount:     discount,
		FinalAmount:  math.Round((amount-discount)*100) / 100,
		FreeShipping: c.DiscountType == domain.DiscountFreeShipping,
	}
	if c.MaxUses != nil {
		left := *c.MaxUses - c.UsedCount
		if left < 0 {
			left = 0
		}
		q.RemainingUses = &left
	}
	return q
}
