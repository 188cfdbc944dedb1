package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/orris-inc/licensor/internal/application/auditlog"
	"github.com/orris-inc/licensor/internal/domain/license"
	"github.com/orris-inc/licensor/internal/infrastructure/auth"
	"github.com/orris-inc/licensor/internal/infrastructure/metrics"
	"github.com/orris-inc/licensor/internal/infrastructure/persistence/testdb"
	"github.com/orris-inc/licensor/internal/infrastructure/repository"
	"github.com/orris-inc/licensor/internal/infrastructure/token"
	"github.com/orris-inc/licensor/internal/shared/biztime"
	"github.com/orris-inc/licensor/internal/shared/config"
	"github.com/orris-inc/licensor/internal/shared/db"
	"github.com/orris-inc/licensor/internal/shared/logger"
)

var testStart = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int {
	return &v
}

// cheapKDF keeps Argon2 fast in tests.
var cheapKDF = config.KDFConfig{TimeCost: 1, MemoryCost: 1024, Parallelism: 1}

type testEnv struct {
	db       *gorm.DB
	repo     *repository.LicenseRepository
	recorder *auditlog.Recorder
	hasher   *auth.Argon2CodeHasher
	clock    *biztime.FakeClock
	tx       *db.TransactionManager
	metrics  *metrics.Metrics
	generate *GenerateLicenseUseCase
	verify   *VerifyLicenseUseCase
	revoke   *RevokeLicenseUseCase
}

func newTestEnv(t *testing.T, maxDevices int) *testEnv {
	t.Helper()

	gdb := testdb.Open(t)
	log := logger.NewNopLogger()
	clock := biztime.NewFakeClock(testStart)
	m := metrics.New()

	env := &testEnv{
		db:       gdb,
		repo:     repository.NewLicenseRepository(gdb, log),
		recorder: auditlog.NewRecorder(repository.NewAuditLogRepository(gdb), clock, m, log),
		hasher:   auth.NewArgon2CodeHasher("master-secret", cheapKDF),
		clock:    clock,
		tx:       db.NewTransactionManager(gdb),
		metrics:  m,
	}
	env.generate = NewGenerateLicenseUseCase(env.repo, token.NewCodeGenerator(24), env.hasher, env.recorder, clock, maxDevices, m, log)
	env.verify = NewVerifyLicenseUseCase(env.repo, env.tx, env.hasher, env.recorder, clock, license.DefaultLockoutPolicy(), m, log)
	env.revoke = NewRevokeLicenseUseCase(env.repo, env.tx, env.recorder, clock, m, log)
	return env
}

func (e *testEnv) issue(t *testing.T, planID string, days *int) string {
	t.Helper()
	rec, err := e.generate.Execute(context.Background(), GenerateLicenseCommand{PlanID: planID, ValidityDays: days})
	require.NoError(t, err)
	return rec.Code
}

func (e *testEnv) load(t *testing.T, code string) *license.License {
	t.Helper()
	l, err := e.repo.GetByCode(context.Background(), code)
	require.NoError(t, err)
	require.NotNil(t, l)
	return l
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendLicense(ctx context.Context, to string, n license.Notification) error {
	args := m.Called(ctx, to, n)
	return args.Error(0)
}
