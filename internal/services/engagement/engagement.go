// Package engagement awards loyalty bonuses for reviews and product
// interactions. Bonuses are a background enhancement: a failed award is logged
// and never fails the user action.
package engagement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/entities"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/points"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/storage"
)

var (
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrUnknownInteraction = errors.New("unknown interaction kind")
	ErrProductNotFound    = errors.New("product not found")
)

type Service struct {
	repo   storage.Repository
	engine *points.Engine
}

func NewService(repo storage.Repository, engine *points.Engine) *Service {
	return &Service{
		repo:   repo,
		engine: engine,
	}
}

func ReviewLabel(productID string) string {
	return "Review for product " + productID
}

func InteractionLabel(kind string, productID string) string {
	switch kind {
	case entities.InteractionShare:
		return "Shared product " + productID
	default:
		return "Viewed product " + productID
	}
}

func DailyLoginLabel(day time.Time) string {
	return "Daily login " + day.Format("2006-01-02")
}

// SubmitReview creates or edits the user's review of a product. Only the first
// creation earns the review bonus.
func (s *Service) SubmitReview(ctx context.Context, review entities.Review) (bool, points.Result, error) {
	if review.Rating < 1 || review.Rating > 5 {
		return false, points.Result{}, ErrInvalidRating
	}

	if _, err := s.repo.GetProduct(ctx, review.ProductID); err != nil {
		if errors.Is(err, storage.ErrNoRows) {
			return false, points.Result{}, ErrProductNotFound
		}

		return false, points.Result{}, fmt.Errorf("error get product: %w", err)
	}

	created, err := s.repo.SaveReview(ctx, review)
	if err != nil {
		return false, points.Result{}, fmt.Errorf("error save review: %w", err)
	}

	if !created {
		return false, points.Result{}, nil
	}

	return true, s.awardOnce(ctx, review.UserID, points.ActionReviewWritten, ReviewLabel(review.ProductID), review.ProductID), nil
}

// TrackInteraction records a view or share. The bonus is only awarded the first
// time the user interacts with the product in that way.
func (s *Service) TrackInteraction(ctx context.Context, userID string, productID string, kind string) (points.Result, error) {
	action, ok := interactionActions[kind]
	if !ok {
		return points.Result{}, fmt.Errorf("%w: %q", ErrUnknownInteraction, kind)
	}

	first, err := s.repo.RecordInteraction(ctx, userID, productID, kind)
	if err != nil {
		if errors.Is(err, storage.ErrNoRows) {
			return points.Result{}, ErrProductNotFound
		}

		return points.Result{}, fmt.Errorf("error record interaction: %w", err)
	}

	if !first {
		return points.Result{}, nil
	}

	return s.awardOnce(ctx, userID, action, InteractionLabel(kind, productID), productID), nil
}

// DailyLogin awards the daily login bonus at most once per calendar day.
func (s *Service) DailyLogin(ctx context.Context, userID string, now time.Time) points.Result {
	return s.awardOnce(ctx, userID, points.ActionDailyLogin, DailyLoginLabel(now.UTC()), "")
}

// SignupBonus enrols a new user in the lowest tier and awards the signup bonus.
func (s *Service) SignupBonus(ctx context.Context, userID string) points.Result {
	if _, err := s.engine.UpdateMembershipTier(ctx, userID); err != nil {
		return points.Result{Err: err}
	}

	return s.awardOnce(ctx, userID, points.ActionSignupBonus, "", "")
}

func (s *Service) awardOnce(ctx context.Context, userID string, action string, label string, relatedID string) points.Result {
	if label == "" {
		label = s.engine.Rules().Label(action)
	}

	received, err := s.engine.HasReceivedPointsFor(ctx, userID, label)
	if err != nil {
		return points.Result{Err: err}
	}

	if received {
		return points.Result{Err: storage.ErrAlreadyAwarded}
	}

	return s.engine.AwardAction(ctx, points.Request{
		UserID:    userID,
		Action:    action,
		Label:     label,
		OneShot:   true,
		RelatedID: relatedID,
	})
}

var interactionActions = map[string]string{
	entities.InteractionView:  points.ActionProductViewed,
	entities.InteractionShare: points.ActionProductShared,
}
