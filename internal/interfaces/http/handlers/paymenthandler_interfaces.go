package handlers

import (
	"context"

	paymentUsecases "github.com/orris-inc/licensor/internal/application/payment/usecases"
)

// Use case interfaces for PaymentHandler

type handlePaymentUseCase interface {
	Execute(ctx context.Context, cmd paymentUsecases.HandlePaymentCommand) (*paymentUsecases.HandlePaymentResult, error)
}
