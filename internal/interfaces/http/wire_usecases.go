package http

import (
	licenseUsecases "github.com/orris-inc/licensor/internal/application/license/usecases"
	paymentUsecases "github.com/orris-inc/licensor/internal/application/payment/usecases"
	"github.com/orris-inc/licensor/internal/domain/license"
)

// UseCases is the application layer as wired for this process.
type UseCases struct {
	GenerateLicense     *licenseUsecases.GenerateLicenseUseCase
	VerifyLicense       *licenseUsecases.VerifyLicenseUseCase
	RevokeLicense       *licenseUsecases.RevokeLicenseUseCase
	RenewLicense        *licenseUsecases.RenewLicenseUseCase
	GetLicense          *licenseUsecases.GetLicenseUseCase
	ListLicenseAudit    *licenseUsecases.ListLicenseAuditUseCase
	SendLicenseEmail    *licenseUsecases.SendLicenseEmailUseCase
	RepairLicenseHashes *licenseUsecases.RepairLicenseHashesUseCase
	HandlePayment       *paymentUsecases.HandlePaymentUseCase
	RetryProvisioning   *paymentUsecases.RetryProvisioningUseCase
}

// ============================================================
// Section 2: Use cases
// ============================================================

func (c *Container) initUseCases() {
	cfg := c.cfg
	log := c.log
	repos := c.repos
	svcs := c.svcs

	policy := license.LockoutPolicy{
		MaxFailedAttempts: cfg.License.MaxFailedAttempts,
		Duration:          cfg.License.LockoutDuration,
	}

	generate := licenseUsecases.NewGenerateLicenseUseCase(
		repos.licenseRepo, svcs.codes, svcs.hasher, svcs.recorder, c.clock,
		cfg.License.MaxDevices, c.metrics, log.Named("generate_license"),
	)
	verify := licenseUsecases.NewVerifyLicenseUseCase(
		repos.licenseRepo, svcs.txManager, svcs.hasher, svcs.recorder, c.clock,
		policy, c.metrics, log.Named("verify_license"),
	)
	revoke := licenseUsecases.NewRevokeLicenseUseCase(
		repos.licenseRepo, svcs.txManager, svcs.recorder, c.clock,
		c.metrics, log.Named("revoke_license"),
	)
	if svcs.verificationCache != nil {
		verify.SetVerificationCache(svcs.verificationCache)
		revoke.SetVerificationCache(svcs.verificationCache)
	}

	c.ucs = &UseCases{
		GenerateLicense: generate,
		VerifyLicense:   verify,
		RevokeLicense:   revoke,
		RenewLicense: licenseUsecases.NewRenewLicenseUseCase(
			repos.licenseRepo, generate, revoke, log.Named("renew_license"),
		),
		GetLicense: licenseUsecases.NewGetLicenseUseCase(repos.licenseRepo, log.Named("get_license")),
		ListLicenseAudit: licenseUsecases.NewListLicenseAuditUseCase(
			repos.licenseRepo, svcs.recorder, log.Named("license_audit"),
		),
		SendLicenseEmail: licenseUsecases.NewSendLicenseEmailUseCase(
			repos.licenseRepo, svcs.notifier, c.metrics, log.Named("license_email"),
		),
		RepairLicenseHashes: licenseUsecases.NewRepairLicenseHashesUseCase(
			repos.licenseRepo, svcs.hasher, c.clock, log.Named("repair_hashes"),
		),
		HandlePayment: paymentUsecases.NewHandlePaymentUseCase(
			repos.paymentRepo, repos.licenseRepo, generate, svcs.notifier, svcs.paymentLock,
			cfg.Payment.LockTimeout, cfg.License.DefaultValidityDays, c.clock, c.metrics,
			log.Named("payment_intake"),
		),
		RetryProvisioning: paymentUsecases.NewRetryProvisioningUseCase(
			repos.paymentRepo, generate, svcs.notifier, svcs.paymentLock,
			cfg.License.DefaultValidityDays, c.clock, c.metrics, log.Named("retry_provisioning"),
		),
	}
}
