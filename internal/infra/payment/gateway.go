package payment

import (
	"context"
	"strings"

	"mobirent/internal/usecase/commands"

	"github.com/google/uuid"
)

const (
	declinedPrefix = "0000"
	pendingPrefix  = "1111"
)

// SimulatedGateway stands in for a real payment provider. The card number
// prefix drives the outcome so every path is reachable from a demo client.
type SimulatedGateway struct{}

func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{}
}

func (g *SimulatedGateway) Process(_ context.Context, card commands.CardDetails, _ int64) (commands.GatewayResult, error) {
	number := strings.ReplaceAll(card.Number, " ", "")

	result := commands.GatewayResult{
		TransactionID: "TX-" + uuid.NewString(),
	}
	switch {
	case strings.HasPrefix(number, declinedPrefix):
		result.Status = commands.GatewayRejected
	case strings.HasPrefix(number, pendingPrefix):
		result.Status = commands.GatewayPending
	default:
		result.Status = commands.GatewayApproved
	}
	return result, nil
}
