package points

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/entities"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/notifier"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/tier"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrUserNotFound = errors.New("user not found")

type Request struct {
	UserID string
	Action string
	// Label is the history action recorded for the award. It defaults to the
	// rule label and is the idempotency key for one-shot awards.
	Label     string
	Amount    decimal.Decimal
	OneShot   bool
	RelatedID string
}

type Result struct {
	Success            bool
	PointsAwarded      int
	NewPointsTotal     int
	MembershipUpgraded bool
	Tier               *entities.Membership
	Err                error

	notification *entities.Notification
}

type Engine struct {
	repo     storage.Repository
	rules    Rules
	notifier notifier.Notifier
}

func NewEngine(repo storage.Repository, rules Rules, n notifier.Notifier) *Engine {
	if rules == nil {
		rules = DefaultRules()
	}

	if n == nil {
		n = notifier.LogNotifier{}
	}

	return &Engine{
		repo:     repo,
		rules:    rules,
		notifier: n,
	}
}

func (e *Engine) Rules() Rules {
	return e.rules
}

// Award credits points in its own transaction and notifies the user once the
// transaction has committed.
func (e *Engine) Award(ctx context.Context, req Request) (Result, error) {
	var result Result

	err := e.repo.WithinTx(ctx, func(repo storage.Repository) error {
		var err error
		result, err = e.AwardIn(ctx, repo, req)
		return err
	})
	if err != nil {
		return Result{Err: err}, err
	}

	e.Notify(ctx, result)

	return result, nil
}

// AwardOnce awards req at most once per user and label. The history check and
// the award share one transaction and the store rejects a second one-shot row,
// so concurrent duplicates fail with storage.ErrAlreadyAwarded.
func (e *Engine) AwardOnce(ctx context.Context, req Request) (Result, error) {
	req.OneShot = true
	return e.Award(ctx, req)
}

// AwardAction is Award for callers that prefer a flat result. Failures are
// logged and reported through Result.Err.
func (e *Engine) AwardAction(ctx context.Context, req Request) Result {
	award := e.Award
	if req.OneShot {
		award = e.AwardOnce
	}

	result, err := award(ctx, req)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyAwarded) {
			zap.L().Info("points already awarded", zap.String("user_id", req.UserID), zap.String("action", req.Action))
		} else {
			zap.L().Error("error award points", zap.String("user_id", req.UserID), zap.String("action", req.Action), zap.Error(err))
		}

		return Result{Err: err}
	}

	return result
}

// AwardIn applies the award through repo, which may be part of a larger
// transaction. The returned result must be passed to Notify after that
// transaction commits.
func (e *Engine) AwardIn(ctx context.Context, repo storage.Repository, req Request) (Result, error) {
	delta, err := e.rules.Resolve(req.Action, req.Amount)
	if err != nil {
		if errors.Is(err, ErrInvalidAction) {
			zap.L().DPanic("unknown points action", zap.String("action", req.Action), zap.Error(err))
		}

		return Result{}, err
	}

	label := req.Label
	if label == "" {
		label = e.rules.Label(req.Action)
	}

	if req.OneShot {
		received, err := hasReceived(ctx, repo, req.UserID, label)
		if err != nil {
			return Result{}, err
		}

		if received {
			return Result{}, storage.ErrAlreadyAwarded
		}
	}

	// The tier is evaluated against the row returned by the increment, which
	// holds the lock, so concurrent awards cannot report the same upgrade.
	user, err := repo.IncrementUserPoints(ctx, req.UserID, delta)
	if err != nil {
		if errors.Is(err, storage.ErrNoRows) {
			return Result{}, fmt.Errorf("%w: %s", ErrUserNotFound, req.UserID)
		}

		return Result{}, fmt.Errorf("error increment user points: %w", err)
	}

	if err := repo.AppendMembershipHistory(ctx, entities.MembershipHistory{
		UserID:  req.UserID,
		Action:  label,
		Points:  delta,
		OneShot: req.OneShot,
	}); err != nil {
		if errors.Is(err, storage.ErrAlreadyAwarded) {
			return Result{}, err
		}

		return Result{}, fmt.Errorf("error append membership history: %w", err)
	}

	total := user.Points

	change, err := e.applyTier(ctx, repo, user, total, delta)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Success:            true,
		PointsAwarded:      delta,
		NewPointsTotal:     total,
		MembershipUpgraded: change.Upgraded(),
		Tier:               change.NewTier,
	}

	switch {
	case change.Upgraded():
		result.notification = &entities.Notification{
			UserID:    req.UserID,
			Message:   fmt.Sprintf("Congratulations! You have been upgraded to %s membership", change.NewTier.Title),
			Type:      entities.NotificationSuccess,
			Category:  entities.CategoryMembership,
			RelatedID: change.NewTier.ID,
		}
	default:
		result.notification = &entities.Notification{
			UserID:    req.UserID,
			Message:   fmt.Sprintf("You earned %d points for %s", delta, label),
			Type:      entities.NotificationSuccess,
			Category:  entities.CategoryPoints,
			RelatedID: req.RelatedID,
		}
	}

	return result, nil
}

// UpdateMembershipTier re-resolves the user's tier from the current points
// total without awarding anything.
func (e *Engine) UpdateMembershipTier(ctx context.Context, userID string) (tier.Change, error) {
	var change tier.Change

	err := e.repo.WithinTx(ctx, func(repo storage.Repository) error {
		// A zero increment locks the row and returns its current state.
		user, err := repo.IncrementUserPoints(ctx, userID, 0)
		if err != nil {
			if errors.Is(err, storage.ErrNoRows) {
				return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
			}

			return fmt.Errorf("error get user: %w", err)
		}

		change, err = e.applyTier(ctx, repo, user, user.Points, 0)
		return err
	})
	if err != nil {
		return tier.Change{}, err
	}

	return change, nil
}

func (e *Engine) applyTier(ctx context.Context, repo storage.Repository, user entities.User, total int, gained int) (tier.Change, error) {
	tiers, err := repo.GetMemberships(ctx)
	if err != nil {
		return tier.Change{}, fmt.Errorf("error get memberships: %w", err)
	}

	change := tier.Evaluate(user.MembershipID.String, total, gained, tiers)
	if !change.Upgraded() {
		return change, nil
	}

	if err := repo.SetUserMembership(ctx, user.ID, change.NewTier.ID); err != nil {
		return tier.Change{}, fmt.Errorf("error set user membership: %w", err)
	}

	if err := repo.AppendMembershipHistory(ctx, entities.MembershipHistory{
		UserID: user.ID,
		Action: fmt.Sprintf("Upgraded to %s membership", change.NewTier.Title),
	}); err != nil {
		return tier.Change{}, fmt.Errorf("error append membership history: %w", err)
	}

	return change, nil
}

// Notify delivers the notification produced by an award. Delivery failures are
// logged and never affect the award.
func (e *Engine) Notify(ctx context.Context, result Result) {
	if result.notification == nil {
		return
	}

	n := *result.notification
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now()

	if err := e.notifier.Notify(ctx, n); err != nil {
		zap.L().Warn("error send notification", zap.String("user_id", n.UserID), zap.Error(err))
	}
}

func (e *Engine) HasReceivedPointsFor(ctx context.Context, userID string, action string) (bool, error) {
	return hasReceived(ctx, e.repo, userID, action)
}

func hasReceived(ctx context.Context, repo storage.Repository, userID string, action string) (bool, error) {
	count, err := repo.CountMembershipHistory(ctx, userID, action)
	if err != nil {
		return false, fmt.Errorf("error count membership history: %w", err)
	}

	return count > 0, nil
}
