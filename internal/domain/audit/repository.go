package audit

import "context"

type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	// ListByLicense returns entries newest first. limit <= 0 means no limit.
	ListByLicense(ctx context.Context, licenseID string, limit int) ([]*Entry, error)
}
