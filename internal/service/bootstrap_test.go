package service

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/RealCodeCrafter/trt-backend/internal/auth"
	"github.com/RealCodeCrafter/trt-backend/internal/domain"
)

var bannerPassword = regexp.MustCompile(`(?m)^Password: (\S+)$`)

func TestBootstrapper_CreatesOnceAcrossRestarts(t *testing.T) {
	repo := &memUserRepo{}
	ctx := context.Background()

	var firstOut bytes.Buffer
	first := NewBootstrapper(repo, "root@trt.test", bcrypt.MinCost, &firstOut, zap.NewNop())
	assert.Equal(t, NeedsBootstrap, first.State())
	require.NoError(t, first.Run(ctx))
	assert.Equal(t, Bootstrapped, first.State())

	var secondOut bytes.Buffer
	second := NewBootstrapper(repo, "root@trt.test", bcrypt.MinCost, &secondOut, zap.NewNop())
	require.NoError(t, second.Run(ctx))
	assert.Equal(t, Bootstrapped, second.State())

	assert.Equal(t, 1, repo.countRole(domain.RoleSuperAdmin))
	assert.Len(t, bannerPassword.FindAllString(firstOut.String(), -1), 1)
	assert.Empty(t, secondOut.String())

	admin, err := repo.FindByRole(ctx, domain.RoleSuperAdmin)
	require.NoError(t, err)
	assert.Equal(t, "root@trt.test", admin.Email)
	assert.Regexp(t, `^superadmin_[a-z0-9]{8}_[a-z0-9]{6}$`, admin.Username)
	assert.Contains(t, firstOut.String(), admin.Username)

	m := bannerPassword.FindStringSubmatch(firstOut.String())
	require.Len(t, m, 2)
	password := m[1]
	assert.Len(t, password, superAdminPasswordLength)
	assert.NoError(t, auth.ComparePassword(admin.PasswordHash, password))
	assert.True(t, strings.ContainsAny(password, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
	assert.True(t, strings.ContainsAny(password, "abcdefghijklmnopqrstuvwxyz"))
	assert.True(t, strings.ContainsAny(password, "0123456789"))
	assert.True(t, strings.ContainsAny(password, "!@#$%^&*()_+-=[]{}|;:,.<>?"))
}

func TestBootstrapper_ExistingSuperAdminIsLeftAlone(t *testing.T) {
	repo := &memUserRepo{}
	require.NoError(t, repo.Create(context.Background(), &domain.User{Username: "root", Role: domain.RoleSuperAdmin}))

	var out bytes.Buffer
	b := NewBootstrapper(repo, "x@trt.test", bcrypt.MinCost, &out, zap.NewNop())
	require.NoError(t, b.Run(context.Background()))

	assert.Equal(t, Bootstrapped, b.State())
	assert.Equal(t, 1, repo.countRole(domain.RoleSuperAdmin))
	assert.Empty(t, out.String())
}

func TestBootstrapper_CreateFailureHaltsStartup(t *testing.T) {
	repo := &memUserRepo{createErr: errBoom}
	var out bytes.Buffer
	b := NewBootstrapper(repo, "x@trt.test", bcrypt.MinCost, &out, zap.NewNop())

	err := b.Run(context.Background())
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, NeedsBootstrap, b.State())
	assert.Empty(t, out.String())
}

func TestBootstrapper_LostRaceEndsBootstrappedWithoutPassword(t *testing.T) {
	repo := &memUserRepo{}
	repo.beforeCreate = func() {
		repo.beforeCreate = nil
		require.NoError(t, repo.Create(context.Background(), &domain.User{Username: "other-instance", Role: domain.RoleSuperAdmin}))
	}

	var out bytes.Buffer
	b := NewBootstrapper(repo, "x@trt.test", bcrypt.MinCost, &out, zap.NewNop())
	require.NoError(t, b.Run(context.Background()))

	assert.Equal(t, Bootstrapped, b.State())
	assert.Equal(t, 1, repo.countRole(domain.RoleSuperAdmin))
	assert.NotContains(t, out.String(), "Password:")
}

func TestBootstrapState_String(t *testing.T) {
	assert.Equal(t, "needs_bootstrap", NeedsBootstrap.String())
	assert.Equal(t, "bootstrapped", Bootstrapped.String())
}
