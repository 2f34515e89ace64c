package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/accesskeeper/internal/biometry"
	"github.com/dmitrijs2005/accesskeeper/internal/common"
	"github.com/dmitrijs2005/accesskeeper/internal/cryptox"
	"github.com/dmitrijs2005/accesskeeper/internal/logging"
	"github.com/dmitrijs2005/accesskeeper/internal/models"
	"github.com/dmitrijs2005/accesskeeper/internal/repositories/users"
	"github.com/dmitrijs2005/accesskeeper/internal/timex"
	"github.com/google/uuid"
)

// Service is the single authority over users' sessions and lockout
// counters. Every operation reads the clock once, so one call evaluates
// against a single instant.
type Service struct {
	policy   Policy
	repo     users.Repository
	hasher   cryptox.Hasher
	biometry biometry.Provider
	clock    timex.Clock
	log      logging.Logger
	locks    *userLocks
}

// NewService wires the collaborators. A nil provider means no biometric
// hardware; a nil clock uses the system clock; a nil logger discards.
func NewService(
	policy Policy,
	repo users.Repository,
	hasher cryptox.Hasher,
	provider biometry.Provider,
	clock timex.Clock,
	logger logging.Logger,
) *Service {
	if clock == nil {
		clock = timex.SystemClock{}
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Service{
		policy:   policy,
		repo:     repo,
		hasher:   hasher,
		biometry: provider,
		clock:    clock,
		log:      logger,
		locks:    newUserLocks(),
	}
}

// Policy returns the lockout policy the service enforces.
func (s *Service) Policy() Policy { return s.policy }

// RegisterUser creates a user under a fresh random id.
func (s *Service) RegisterUser(ctx context.Context, secret string) (uuid.UUID, error) {
	id := uuid.New()
	if err := s.RegisterUserWithID(ctx, id, secret); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// RegisterUserWithID creates a user with the given id. It fails with
// common.ErrUserAlreadyExists when the id is taken.
func (s *Service) RegisterUserWithID(ctx context.Context, id uuid.UUID, secret string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	err := s.inTx(ctx, func(ctx context.Context, repo users.Repository) error {
		_, err := repo.Find(ctx, id)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %s", common.ErrUserAlreadyExists, id)
		case !errors.Is(err, common.ErrorNotFound):
			return fmt.Errorf("load user %s: %w", id, err)
		}

		digest, err := s.hasher.Digest(secret)
		if err != nil {
			return err
		}
		if err := repo.Save(ctx, models.NewUser(id, digest)); err != nil {
			return fmt.Errorf("save user %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "user registered", "user_id", id)
	return nil
}

// DeleteUser removes the user. Unknown ids yield common.ErrUserDoesNotExist.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	err := s.inTx(ctx, func(ctx context.Context, repo users.Repository) error {
		if _, err := s.load(ctx, repo, id); err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete user %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "user deleted", "user_id", id)
	return nil
}

// User returns a copy of the stored record.
func (s *Service) User(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.load(ctx, s.repo, id)
}

// Users returns copies of every stored user.
func (s *Service) Users(ctx context.Context) ([]*models.User, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return all, nil
}

// UpdatePassword replaces the stored digest. Session and lockout state are
// left as they are.
func (s *Service) UpdatePassword(ctx context.Context, id uuid.UUID, secret string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	_, err := s.mutate(ctx, id, func(u *models.User) error {
		digest, err := s.hasher.Digest(secret)
		if err != nil {
			return err
		}
		u.UpdatePassword(digest)
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "password updated", "user_id", id)
	return nil
}

// VerifyPassword compares secret with the stored digest. It never counts
// as an attempt.
func (s *Service) VerifyPassword(ctx context.Context, id uuid.UUID, secret string) (bool, error) {
	u, err := s.load(ctx, s.repo, id)
	if err != nil {
		return false, err
	}
	return s.hasher.Matches(u.PasswordDigest, secret)
}

// AuthenticationStatus evaluates the user at the current instant: a valid
// session, then an active block, otherwise not authenticated.
func (s *Service) AuthenticationStatus(ctx context.Context, id uuid.UUID) (Status, error) {
	u, err := s.load(ctx, s.repo, id)
	if err != nil {
		return Status{}, err
	}
	return s.policy.Status(u, s.clock.Now()), nil
}

// IsSupportedMethod reports whether method can be used on this device.
// Password is always supported and never consults the biometric provider.
func (s *Service) IsSupportedMethod(ctx context.Context, method Method) (bool, error) {
	if method.Contains(MethodPassword) {
		return true, nil
	}
	if !method.Intersects(MethodBiometry) {
		return false, nil
	}

	m, err := s.modality(ctx)
	if err != nil {
		return false, err
	}
	return method.Intersects(MethodForModality(m)), nil
}

// IsPossibleMethod is IsSupportedMethod for a user who is not blocked.
func (s *Service) IsPossibleMethod(ctx context.Context, id uuid.UUID, method Method) (bool, error) {
	st, err := s.AuthenticationStatus(ctx, id)
	if err != nil {
		return false, err
	}
	if st.IsBlocked() {
		return false, nil
	}
	return s.IsSupportedMethod(ctx, method)
}

// RequestBiometryAccess shows the platform's activation prompt.
func (s *Service) RequestBiometryAccess(ctx context.Context) (bool, error) {
	if s.biometry == nil {
		return false, common.ErrBiometryUnavailable
	}
	ok, err := s.biometry.RequestEnrollment(ctx)
	if err != nil {
		if isCancellation(ctx, err) {
			return false, fmt.Errorf("%w: %w", common.ErrBiometryCancelled, err)
		}
		return false, fmt.Errorf("%w: %w", common.ErrBiometryUnavailable, err)
	}
	return ok, nil
}

// Authenticate processes one credential presentation.
//
// A blocked user gets the block back and the attempt is not counted. A
// matching password or a successful challenge allows access; a wrong
// password or an unrecognised biometric denies it. A cancelled challenge
// returns the current status with common.ErrBiometryCancelled and changes
// nothing; any other provider failure returns
// common.ErrBiometryChallengeFailure and changes nothing.
func (s *Service) Authenticate(ctx context.Context, id uuid.UUID, req Request) (Status, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	now := s.clock.Now()
	u, err := s.load(ctx, s.repo, id)
	if err != nil {
		return Status{}, err
	}
	current := s.policy.Status(u, now)
	if current.IsBlocked() {
		return current, nil
	}

	var granted bool
	if req.IsBiometry() {
		granted, err = s.challenge(ctx, id)
	} else {
		granted, err = s.hasher.Matches(u.PasswordDigest, req.secret)
	}
	if err != nil {
		return current, err
	}

	if granted {
		return s.allow(ctx, id, now)
	}
	return s.deny(ctx, id, now)
}

// DenyAccess records one failed attempt. Going strictly past the maximum
// stamps a new block, even over an expired one.
func (s *Service) DenyAccess(ctx context.Context, id uuid.UUID) (Status, error) {
	unlock := s.locks.Lock(id)
	defer unlock()
	return s.deny(ctx, id, s.clock.Now())
}

// AllowAccess renews the session and starts a fresh lockout cycle.
func (s *Service) AllowAccess(ctx context.Context, id uuid.UUID) (Status, error) {
	unlock := s.locks.Lock(id)
	defer unlock()
	return s.allow(ctx, id, s.clock.Now())
}

// Logout ends the session. Lockout state is untouched. Logging out twice is
// not an error.
func (s *Service) Logout(ctx context.Context, id uuid.UUID) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	_, err := s.mutate(ctx, id, func(u *models.User) error {
		u.EndSession()
		return nil
	})
	return err
}

// AttemptsRemaining reports how many more failures the user can make before
// the next one blocks access. It never goes below zero.
func (s *Service) AttemptsRemaining(ctx context.Context, id uuid.UUID) (int, error) {
	u, err := s.load(ctx, s.repo, id)
	if err != nil {
		return 0, err
	}
	return s.policy.AttemptsRemaining(u), nil
}

func (s *Service) deny(ctx context.Context, id uuid.UUID, now time.Time) (Status, error) {
	u, err := s.mutate(ctx, id, func(u *models.User) error {
		u.FailedAttempts++
		if s.policy.exceeded(u.FailedAttempts) {
			u.BlockAccess(now)
		}
		return nil
	})
	if err != nil {
		return Status{}, err
	}

	st := s.policy.Status(u, now)
	if st.IsBlocked() {
		s.log.Warn(ctx, "access blocked", "user_id", id, "failed_attempts", u.FailedAttempts, "remaining", st.Remaining)
	} else {
		s.log.Info(ctx, "access denied", "user_id", id, "failed_attempts", u.FailedAttempts)
	}
	return st, nil
}

func (s *Service) allow(ctx context.Context, id uuid.UUID, now time.Time) (Status, error) {
	_, err := s.mutate(ctx, id, func(u *models.User) error {
		u.RenewSession(now)
		u.ResetFailedAttempts()
		return nil
	})
	if err != nil {
		return Status{}, err
	}

	s.log.Debug(ctx, "access allowed", "user_id", id)
	return Authenticated(), nil
}

// challenge runs the biometric check. Cancellation and unavailability are
// reported as errors so the caller does not count them.
func (s *Service) challenge(ctx context.Context, id uuid.UUID) (bool, error) {
	if s.biometry == nil {
		return false, common.ErrBiometryUnavailable
	}

	ok, err := s.biometry.Challenge(ctx)
	if err != nil {
		switch {
		case errors.Is(err, biometry.ErrUnavailable):
			s.log.Info(ctx, "biometric sensor unavailable", "user_id", id)
			return false, fmt.Errorf("%w: %w", common.ErrBiometryUnavailable, err)
		case isCancellation(ctx, err):
			s.log.Info(ctx, "biometric challenge cancelled", "user_id", id)
			return false, fmt.Errorf("%w: %w", common.ErrBiometryCancelled, err)
		}
		s.log.Error(ctx, "biometric challenge failed", "user_id", id, "error", err)
		return false, fmt.Errorf("%w: %w", common.ErrBiometryChallengeFailure, err)
	}
	return ok, nil
}

func (s *Service) modality(ctx context.Context) (biometry.Modality, error) {
	if s.biometry == nil {
		return biometry.ModalityNone, nil
	}
	m, err := s.biometry.Modality(ctx)
	if err != nil {
		return biometry.ModalityNone, fmt.Errorf("%w: %w", common.ErrBiometryUnavailable, err)
	}
	return m, nil
}

func isCancellation(ctx context.Context, err error) bool {
	return errors.Is(err, biometry.ErrCancelled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		ctx.Err() != nil
}

// mutate is one load-mutate-persist cycle. The caller holds the user lock.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn func(u *models.User) error) (*models.User, error) {
	var out *models.User
	err := s.inTx(ctx, func(ctx context.Context, repo users.Repository) error {
		u, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		if err := fn(u); err != nil {
			return err
		}
		if err := repo.Save(ctx, u); err != nil {
			return fmt.Errorf("save user %s: %w", id, err)
		}
		out = u
		return nil
	})
	return out, err
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context, repo users.Repository) error) error {
	if tx, ok := s.repo.(users.Transactional); ok {
		return tx.InTx(ctx, fn)
	}
	return fn(ctx, s.repo)
}

func (s *Service) load(ctx context.Context, repo users.Repository, id uuid.UUID) (*models.User, error) {
	u, err := repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: %s", common.ErrUserDoesNotExist, id)
		}
		return nil, fmt.Errorf("load user %s: %w", id, err)
	}
	return u, nil
}
