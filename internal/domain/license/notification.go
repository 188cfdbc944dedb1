package license

import (
	"context"
	"time"
)

// Notification is what the customer receives after a license is issued.
type Notification struct {
	Code       string
	PlanID     string
	IssuedAt   time.Time
	ExpiryDate string
}

func NewNotification(l *License) Notification {
	return Notification{
		Code:       l.Code(),
		PlanID:     l.PlanID(),
		IssuedAt:   l.CreatedAt(),
		ExpiryDate: l.ExpiryDate(),
	}
}

// Notifier delivers license notifications to customers.
type Notifier interface {
	SendLicense(ctx context.Context, to string, n Notification) error
}
