package worker

import (
	"context"
	"time"

	"github.com/Akshaygupta0409/school-payments-microservice/internal/logger"
)

const refreshInterval = 30 * time.Second

type PaymentService interface {
	// RefreshStatuses reconciles collect ids from the channel against the gateway
	RefreshStatuses(ctx context.Context, ch <-chan string)
	// PendingCollects writes collect ids awaiting settlement to the channel
	PendingCollects(ctx context.Context, ch chan<- string) error
}

// StatusProcessor is worker performing settlement refresh for pending
// collect requests
type StatusProcessor struct {
	svc PaymentService
}

// NewStatusProcessor creates new status processor
func NewStatusProcessor(svc PaymentService) *StatusProcessor {
	return &StatusProcessor{svc: svc}
}

// ProcessStatuses periodically enumerates pending collect requests and
// feeds them to the refresher until ctx is done.
func (sp *StatusProcessor) ProcessStatuses(ctx context.Context) {
	collects := make(chan string, 10)

	go sp.svc.RefreshStatuses(ctx, collects)

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Debug("status processor is done")
			return
		case <-ticker.C:
			if err := sp.svc.PendingCollects(ctx, collects); err != nil {
				logger.Log.Error("error listing pending collect requests")
			}
		}
	}
}
