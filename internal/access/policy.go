package access

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/accesskeeper/internal/common"
	"github.com/dmitrijs2005/accesskeeper/internal/models"
)

// Policy drives every state transition. It is immutable once built.
type Policy struct {
	SessionDuration   time.Duration
	MaxFailedAttempts int
	BlockDuration     time.Duration
}

// NewPolicy validates and returns a Policy.
func NewPolicy(session time.Duration, maxFailed int, block time.Duration) (Policy, error) {
	p := Policy{SessionDuration: session, MaxFailedAttempts: maxFailed, BlockDuration: block}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

func (p Policy) Validate() error {
	switch {
	case p.SessionDuration < 0:
		return fmt.Errorf("%w: negative session duration %s", common.ErrInvalidPolicy, p.SessionDuration)
	case p.MaxFailedAttempts < 0:
		return fmt.Errorf("%w: negative max failed attempts %d", common.ErrInvalidPolicy, p.MaxFailedAttempts)
	case p.BlockDuration < 0:
		return fmt.Errorf("%w: negative block duration %s", common.ErrInvalidPolicy, p.BlockDuration)
	}
	return nil
}

// Status evaluates u at now. A live session wins over a live block.
func (p Policy) Status(u *models.User, now time.Time) Status {
	if u.SessionRenewedAt != nil && now.Before(u.SessionRenewedAt.Add(p.SessionDuration)) {
		return Authenticated()
	}
	if u.BlockedAt != nil {
		if until := u.BlockedAt.Add(p.BlockDuration); now.Before(until) {
			return Blocked(until.Sub(now))
		}
	}
	return NotAuthenticated()
}

// AttemptsRemaining is never negative.
func (p Policy) AttemptsRemaining(u *models.User) int {
	return max(0, p.MaxFailedAttempts-u.FailedAttempts)
}

// exceeded reports whether failures has gone strictly past the maximum.
func (p Policy) exceeded(failures int) bool {
	return failures > p.MaxFailedAttempts
}
