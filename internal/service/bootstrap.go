package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/RealCodeCrafter/trt-backend/internal/auth"
	"github.com/RealCodeCrafter/trt-backend/internal/domain"
	"github.com/RealCodeCrafter/trt-backend/internal/repository"
)

// BootstrapState reports whether the super-admin invariant has been resolved.
type BootstrapState int

const (
	NeedsBootstrap BootstrapState = iota
	Bootstrapped
)

func (s BootstrapState) String() string {
	if s == Bootstrapped {
		return "bootstrapped"
	}
	return "needs_bootstrap"
}

const superAdminPasswordLength = 24

// Bootstrapper makes sure a super-admin account exists before traffic is served.
type Bootstrapper struct {
	users      repository.UserRepository
	email      string
	bcryptCost int
	out        io.Writer
	logger     *zap.Logger
	now        func() time.Time
	state      BootstrapState
}

// NewBootstrapper builds the routine. Generated credentials are written to out, never to the logger.
func NewBootstrapper(users repository.UserRepository, email string, bcryptCost int, out io.Writer, logger *zap.Logger) *Bootstrapper {
	if out == nil {
		out = io.Discard
	}
	return &Bootstrapper{
		users:      users,
		email:      email,
		bcryptCost: bcryptCost,
		out:        out,
		logger:     logger,
		now:        time.Now,
	}
}

// State returns the current state.
func (b *Bootstrapper) State() BootstrapState {
	return b.state
}

// Run probes for a super-admin and creates one if absent. Any error must stop startup.
func (b *Bootstrapper) Run(ctx context.Context) error {
	existing, err := b.users.FindByRole(ctx, domain.RoleSuperAdmin)
	if err != nil {
		return fmt.Errorf("probe super-admin: %w", err)
	}
	if existing != nil {
		b.logExisting(existing)
		b.state = Bootstrapped
		return nil
	}

	username, err := auth.GenerateSuperAdminUsername(b.now())
	if err != nil {
		return fmt.Errorf("generate super-admin username: %w", err)
	}
	password, err := auth.GenerateStrongPassword(superAdminPasswordLength)
	if err != nil {
		return fmt.Errorf("generate super-admin password: %w", err)
	}
	hash, err := auth.HashPassword(password, b.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash super-admin password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Email:        b.email,
		Role:         domain.RoleSuperAdmin,
	}
	if err := b.users.Create(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrConflict) {
			return fmt.Errorf("create super-admin: %w", err)
		}
		// Another instance created it between the probe and the insert.
		winner, probeErr := b.users.FindByRole(ctx, domain.RoleSuperAdmin)
		if probeErr != nil {
			return fmt.Errorf("re-probe super-admin: %w", probeErr)
		}
		if winner == nil {
			return fmt.Errorf("create super-admin: %w", err)
		}
		b.logExisting(winner)
		b.state = Bootstrapped
		return nil
	}

	b.logger.Info("super-admin created",
		zap.Int64("id", user.ID),
		zap.String("username", user.Username),
		zap.String("email", user.Email),
	)
	b.writeBanner(user, password)
	b.state = Bootstrapped
	return nil
}

func (b *Bootstrapper) logExisting(user *domain.User) {
	b.logger.Info("super-admin already exists",
		zap.String("username", user.Username),
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)),
	)
}

func (b *Bootstrapper) writeBanner(user *domain.User, password string) {
	line := strings.Repeat("=", 40)
	fmt.Fprintf(b.out, "%s\nSuper-admin account created\n%s\nUsername: %s\nPassword: %s\nEmail:    %s\nRole:     %s\n%s\nStore these credentials now; the password is not shown again.\n%s\n",
		line, line, user.Username, password, user.Email, user.Role, line, line)
}
