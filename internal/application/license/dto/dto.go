package dto

import (
	"time"

	"github.com/orris-inc/licensor/internal/domain/audit"
	"github.com/orris-inc/licensor/internal/domain/license"
)

// LicenseRecord is returned once, at generation time. It is the only
// response that carries a freshly minted code to an issuer.
type LicenseRecord struct {
	LicenseID  string     `json:"license_id" yaml:"license_id"`
	Code       string     `json:"code" yaml:"code"`
	PlanID     string     `json:"plan_id" yaml:"plan_id"`
	CreatedAt  time.Time  `json:"created_at" yaml:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	ExpiryDate string     `json:"expiry_date" yaml:"expiry_date"`
}

func ToLicenseRecord(l *license.License) *LicenseRecord {
	return &LicenseRecord{
		LicenseID:  l.SID(),
		Code:       l.Code(),
		PlanID:     l.PlanID(),
		CreatedAt:  l.CreatedAt(),
		ExpiresAt:  l.ExpiresAt(),
		ExpiryDate: l.ExpiryDate(),
	}
}

// LicenseInfo is the payload of a granted verification.
type LicenseInfo struct {
	LicenseID   string     `json:"license_id"`
	Code        string     `json:"code"`
	PlanID      string     `json:"plan_id"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ExpiryDate  string     `json:"expiry_date"`
	DeviceCount int        `json:"device_count"`
}

func ToLicenseInfo(l *license.License) *LicenseInfo {
	return &LicenseInfo{
		LicenseID:   l.SID(),
		Code:        l.Code(),
		PlanID:      l.PlanID(),
		ExpiresAt:   l.ExpiresAt(),
		ExpiryDate:  l.ExpiryDate(),
		DeviceCount: l.DeviceCount(),
	}
}

// VerifyResult is either a grant with Info or a denial with Reason.
type VerifyResult struct {
	Granted bool                  `json:"granted"`
	Reason  license.FailureReason `json:"reason,omitempty"`
	Info    *LicenseInfo          `json:"info,omitempty"`
}

func Granted(info *LicenseInfo) *VerifyResult {
	return &VerifyResult{Granted: true, Info: info}
}

func Denied(reason license.FailureReason) *VerifyResult {
	return &VerifyResult{Reason: reason}
}

// LicenseDetail is the admin view of a license.
type LicenseDetail struct {
	LicenseID      string     `json:"license_id" yaml:"license_id"`
	Code           string     `json:"code" yaml:"code"`
	PlanID         string     `json:"plan_id" yaml:"plan_id"`
	CreatedAt      time.Time  `json:"created_at" yaml:"created_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	ExpiryDate     string     `json:"expiry_date" yaml:"expiry_date"`
	IsActive       bool       `json:"is_active" yaml:"is_active"`
	Devices        []string   `json:"devices" yaml:"devices"`
	MaxDevices     int        `json:"max_devices" yaml:"max_devices"`
	FailedAttempts int        `json:"failed_attempts" yaml:"failed_attempts"`
	LastVerifiedAt *time.Time `json:"last_verified_at,omitempty" yaml:"last_verified_at,omitempty"`
	HashPresent    bool       `json:"hash_present" yaml:"hash_present"`
}

func ToLicenseDetail(l *license.License) *LicenseDetail {
	return &LicenseDetail{
		LicenseID:      l.SID(),
		Code:           l.Code(),
		PlanID:         l.PlanID(),
		CreatedAt:      l.CreatedAt(),
		ExpiresAt:      l.ExpiresAt(),
		ExpiryDate:     l.ExpiryDate(),
		IsActive:       l.IsActive(),
		Devices:        l.Devices(),
		MaxDevices:     l.MaxDevices(),
		FailedAttempts: l.FailedAttempts(),
		LastVerifiedAt: l.LastVerifiedAt(),
		HashPresent:    !l.NeedsHashRepair(),
	}
}

type AuditEntryDTO struct {
	ID        uint      `json:"id" yaml:"id"`
	LicenseID string    `json:"license_id,omitempty" yaml:"license_id,omitempty"`
	Action    string    `json:"action" yaml:"action"`
	Status    string    `json:"status" yaml:"status"`
	ClientIP  string    `json:"client_ip,omitempty" yaml:"client_ip,omitempty"`
	DeviceID  string    `json:"device_id,omitempty" yaml:"device_id,omitempty"`
	Details   string    `json:"details,omitempty" yaml:"details,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

func ToAuditEntryDTOs(entries []*audit.Entry) []*AuditEntryDTO {
	out := make([]*AuditEntryDTO, 0, len(entries))
	for _, e := range entries {
		d := &AuditEntryDTO{
			ID:        e.ID,
			Action:    string(e.Action),
			Status:    string(e.Status),
			ClientIP:  e.ClientIP,
			Details:   e.Details,
			CreatedAt: e.CreatedAt,
		}
		if e.LicenseID != nil {
			d.LicenseID = *e.LicenseID
		}
		if e.DeviceID != nil {
			d.DeviceID = *e.DeviceID
		}
		out = append(out, d)
	}
	return out
}

// RepairReport summarizes a hash repair run.
type RepairReport struct {
	Scanned    int      `json:"scanned" yaml:"scanned"`
	Repaired   []string `json:"repaired" yaml:"repaired"`
	Mismatched []string `json:"mismatched" yaml:"mismatched"`
	Failed     []string `json:"failed" yaml:"failed"`
}
