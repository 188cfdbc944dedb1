package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/orris-inc/licensor/internal/application/license/dto"
	"github.com/orris-inc/licensor/internal/domain/license"
	"github.com/orris-inc/licensor/internal/shared/biztime"
	"github.com/orris-inc/licensor/internal/shared/logger"
)

const repairBatchSize = 100

type RepairLicenseHashesCommand struct {
	// Code limits the run to one license. Empty scans the whole store.
	Code string
	// VerifyExisting also checks stored hashes and reports mismatches.
	VerifyExisting bool
}

// RepairLicenseHashesUseCase rebuilds missing hashes from the stored code.
// Mismatched hashes are only reported; replacing them would re-enable a
// code whose hash was changed on purpose.
type RepairLicenseHashesUseCase struct {
	licenseRepo license.Repository
	hasher      license.CodeHasher
	clock       biztime.Clock
	logger      logger.Interface
}

func NewRepairLicenseHashesUseCase(
	licenseRepo license.Repository,
	hasher license.CodeHasher,
	clock biztime.Clock,
	logger logger.Interface,
) *RepairLicenseHashesUseCase {
	return &RepairLicenseHashesUseCase{
		licenseRepo: licenseRepo,
		hasher:      hasher,
		clock:       clock,
		logger:      logger,
	}
}

func (uc *RepairLicenseHashesUseCase) Execute(ctx context.Context, cmd RepairLicenseHashesCommand) (*dto.RepairReport, error) {
	report := &dto.RepairReport{
		Repaired:   []string{},
		Mismatched: []string{},
		Failed:     []string{},
	}

	if code := strings.TrimSpace(cmd.Code); code != "" {
		l, err := findByCode(ctx, uc.licenseRepo, code)
		if err != nil {
			return nil, err
		}
		uc.inspect(ctx, l, true, report)
		return report, nil
	}

	if !cmd.VerifyExisting {
		// Repaired rows drop out of the missing-hash set, failed ones do not,
		// so stop once a page yields nothing new.
		seen := make(map[string]struct{})
		for {
			batch, err := uc.licenseRepo.ListMissingHash(ctx, repairBatchSize)
			if err != nil {
				return nil, fmt.Errorf("list licenses missing hash: %w", err)
			}
			progressed := false
			for _, l := range batch {
				if _, ok := seen[l.SID()]; ok {
					continue
				}
				seen[l.SID()] = struct{}{}
				progressed = true
				uc.inspect(ctx, l, false, report)
			}
			if !progressed || len(batch) < repairBatchSize {
				break
			}
		}
		uc.logSummary(report)
		return report, nil
	}

	var afterID uint
	for {
		batch, err := uc.licenseRepo.ListAfter(ctx, afterID, repairBatchSize)
		if err != nil {
			return nil, fmt.Errorf("list licenses: %w", err)
		}
		for _, l := range batch {
			uc.inspect(ctx, l, true, report)
			afterID = l.ID()
		}
		if len(batch) < repairBatchSize {
			break
		}
	}
	uc.logSummary(report)
	return report, nil
}

func (uc *RepairLicenseHashesUseCase) inspect(ctx context.Context, l *license.License, verify bool, report *dto.RepairReport) {
	report.Scanned++

	if l.NeedsHashRepair() {
		if err := uc.rebuild(ctx, l); err != nil {
			uc.logger.Errorw("failed to repair license hash", "license_id", l.SID(), "error", err)
			report.Failed = append(report.Failed, l.SID())
			return
		}
		report.Repaired = append(report.Repaired, l.SID())
		return
	}

	if !verify {
		return
	}
	ok, err := uc.hasher.Verify(l.Code(), l.Salt(), l.Hash())
	if err != nil {
		uc.logger.Errorw("failed to verify license hash", "license_id", l.SID(), "error", err)
		report.Failed = append(report.Failed, l.SID())
		return
	}
	if !ok {
		uc.logger.Warnw("stored license hash does not match code", "license_id", l.SID())
		report.Mismatched = append(report.Mismatched, l.SID())
	}
}

func (uc *RepairLicenseHashesUseCase) rebuild(ctx context.Context, l *license.License) error {
	salt, err := uc.hasher.NewSalt()
	if err != nil {
		return err
	}
	hash, err := uc.hasher.Hash(l.Code(), salt)
	if err != nil {
		return err
	}
	if err := l.RepairHash(salt, hash, uc.clock.Now()); err != nil {
		return err
	}
	return uc.licenseRepo.Update(ctx, l)
}

func (uc *RepairLicenseHashesUseCase) logSummary(report *dto.RepairReport) {
	uc.logger.Infow("license hash repair finished",
		"scanned", report.Scanned,
		"repaired", len(report.Repaired),
		"mismatched", len(report.Mismatched),
		"failed", len(report.Failed),
	)
}
