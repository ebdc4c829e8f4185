package payments

import (
	"context"
	"fmt"

	"cinebook/pkg/logger"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v3"
)

// MockGateway stands in for a real payment provider. It accepts every
// charge and hands back a reference; the outcome arrives later through the
// callback endpoint, which is how real providers behave too.
type MockGateway struct {
	log *logger.Logger
}

func NewMockGateway(log *logger.Logger) *MockGateway {
	return &MockGateway{log: log}
}

func (g *MockGateway) Charge(ctx context.Context, bookingID uuid.UUID, amount float64, currency string) (string, error) {
	reference := fmt.Sprintf("PAY-%s", shortuuid.New())
	g.log.InfoWithContext(ctx, "payment charge initiated", map[string]interface{}{
		"booking_id": bookingID.String(),
		"amount":     amount,
		"currency":   currency,
		"reference":  reference,
	})
	return reference, nil
}
