package importers

import "context"

// Unlimited is the MaxAllowed value of plans without a contact ceiling.
const Unlimited = -1

// LimitStatus is what the subscription layer knows about a user's allowance.
type LimitStatus struct {
	Allowed      bool
	CurrentCount int
	MaxAllowed   int
	Tier         string
}

// LimitChecker reports a user's contact allowance.
type LimitChecker interface {
	ContactLimits(ctx context.Context, userID uint) (LimitStatus, error)
}

// CheckQuota decides whether incoming new contacts fit the allowance. It is
// all-or-nothing: a batch that does not fit entirely is rejected.
func CheckQuota(status LimitStatus, incoming int) error {
	if status.MaxAllowed == Unlimited {
		return nil
	}

	if !status.Allowed {
		return &LimitError{
			Reached:      true,
			CurrentCount: status.CurrentCount,
			MaxAllowed:   status.MaxAllowed,
			Tier:         status.Tier,
		}
	}

	if status.CurrentCount+incoming > status.MaxAllowed {
		return &LimitError{
			CurrentCount: status.CurrentCount,
			MaxAllowed:   status.MaxAllowed,
			Tier:         status.Tier,
			CanImport:    max(status.MaxAllowed-status.CurrentCount, 0),
		}
	}

	return nil
}
