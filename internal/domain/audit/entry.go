// Package audit models the append-only record of license operations.
package audit

import "time"

type Action string

const (
	ActionGenerate Action = "generate"
	ActionVerify   Action = "verify"
	ActionRevoke   Action = "revoke"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Entry is written once and never updated.
type Entry struct {
	ID        uint
	LicenseID *string
	Action    Action
	ClientIP  string
	DeviceID  *string
	Status    Status
	Details   string
	CreatedAt time.Time
}

// NewEntry builds an entry. Empty licenseID and deviceID are stored as null.
func NewEntry(licenseID string, action Action, status Status, clientIP, deviceID, details string, now time.Time) *Entry {
	e := &Entry{
		Action:    action,
		ClientIP:  clientIP,
		Status:    status,
		Details:   details,
		CreatedAt: now,
	}
	if licenseID != "" {
		e.LicenseID = &licenseID
	}
	if deviceID != "" {
		e.DeviceID = &deviceID
	}
	return e
}

func StatusOf(ok bool) Status {
	if ok {
		return StatusSuccess
	}
	return StatusFailed
}
