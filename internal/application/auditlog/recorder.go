// Package auditlog appends and queries license audit entries on behalf of
// the license and payment use cases.
package auditlog

import (
	"context"

	"github.com/orris-inc/licensor/internal/domain/audit"
	"github.com/orris-inc/licensor/internal/infrastructure/metrics"
	"github.com/orris-inc/licensor/internal/shared/biztime"
	"github.com/orris-inc/licensor/internal/shared/logger"
)

// DefaultQueryLimit bounds admin audit queries that do not ask for a limit.
const DefaultQueryLimit = 200

// Recorder is the Audit Log. Appends are best-effort: a failed write is
// logged and counted but never returned to the caller.
type Recorder struct {
	repo    audit.Repository
	clock   biztime.Clock
	metrics *metrics.Metrics
	logger  logger.Interface
}

func NewRecorder(repo audit.Repository, clock biztime.Clock, m *metrics.Metrics, logger logger.Interface) *Recorder {
	return &Recorder{
		repo:    repo,
		clock:   clock,
		metrics: m,
		logger:  logger,
	}
}

// Record describes one audited operation.
type Record struct {
	LicenseID string
	Action    audit.Action
	Success   bool
	ClientIP  string
	DeviceID  string
	Details   string
}

func (r *Recorder) Append(ctx context.Context, rec Record) {
	entry := audit.NewEntry(
		rec.LicenseID,
		rec.Action,
		audit.StatusOf(rec.Success),
		rec.ClientIP,
		rec.DeviceID,
		rec.Details,
		r.clock.Now(),
	)

	// The primary operation has already committed; a cancelled request
	// context must not drop its audit trail.
	if err := r.repo.Append(context.WithoutCancel(ctx), entry); err != nil {
		r.metrics.AuditAppendFailed()
		r.logger.Errorw("failed to append audit entry",
			"action", rec.Action,
			"license_id", rec.LicenseID,
			"status", entry.Status,
			"error", err,
		)
	}
}

// Query returns a license's entries newest first.
func (r *Recorder) Query(ctx context.Context, licenseID string, limit int) ([]*audit.Entry, error) {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	return r.repo.ListByLicense(ctx, licenseID, limit)
}
