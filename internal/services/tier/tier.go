package tier

import "github.com/senzo-zwelihle-masango/elysian-emporium/internal/entities"

// Change describes the outcome of re-evaluating a user's tier. NewTier is nil
// when the tier stays the same.
type Change struct {
	OldTier      *entities.Membership
	NewTier      *entities.Membership
	PointsGained int
}

func (c Change) Upgraded() bool {
	return c.NewTier != nil
}

// Resolve picks the tier with the highest MinPoints not above points. MaxPoints
// is ignored, so gaps and overlaps in the catalog still map every total to one
// tier. On equal MinPoints the earlier tier in the slice wins.
func Resolve(points int, tiers []entities.Membership) (entities.Membership, bool) {
	var (
		best  entities.Membership
		found bool
	)

	for _, t := range tiers {
		if points < t.MinPoints {
			continue
		}

		if !found || t.MinPoints > best.MinPoints {
			best = t
			found = true
		}
	}

	return best, found
}

// Evaluate resolves the tier for the new points total against the user's current
// tier. It never reports a downgrade.
func Evaluate(currentID string, points int, gained int, tiers []entities.Membership) Change {
	change := Change{PointsGained: gained}

	for i := range tiers {
		if tiers[i].ID == currentID {
			old := tiers[i]
			change.OldTier = &old
			break
		}
	}

	resolved, ok := Resolve(points, tiers)
	if !ok {
		return change
	}

	if change.OldTier != nil {
		if resolved.ID == change.OldTier.ID || resolved.MinPoints <= change.OldTier.MinPoints {
			return change
		}
	}

	change.NewTier = &resolved

	return change
}

// Lowest returns the default enrolment tier.
func Lowest(tiers []entities.Membership) (entities.Membership, bool) {
	var (
		lowest entities.Membership
		found  bool
	)

	for _, t := range tiers {
		if !found || t.MinPoints < lowest.MinPoints {
			lowest = t
			found = true
		}
	}

	return lowest, found
}
