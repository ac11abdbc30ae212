package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/DucLoc1999/Dexonic-Trading/internal/registry"
)

// ViewCaller is the slice of the ledger-read collaborator the contract
// quoter needs
type ViewCaller interface {
	View(ctx context.Context, function string, typeArgs []string, args []any) ([]json.RawMessage, error)
}

// ContractQuoter asks the on-chain aggregator contract for its own best
// route. Its answer joins the candidate pool as the Aggregator
// pseudo-venue; absence just means "DEX quotes only".
type ContractQuoter struct {
	client   ViewCaller
	registry *registry.Registry
	address  string
	logger   *logrus.Logger
}

// NewContractQuoter creates a quoter for the aggregator contract at the
// given address
func NewContractQuoter(client ViewCaller, reg *registry.Registry, address string, logger *logrus.Logger) *ContractQuoter {
	if logger == nil {
		logger = logrus.New()
	}
	return &ContractQuoter{client: client, registry: reg, address: address, logger: logger}
}

// Simulate calls simulate_swap and maps the tuple
// (outputAmount, dexId, fee, priceImpact, hops, route) into a Quote
func (q *ContractQuoter) Simulate(ctx context.Context, req Request) (*Quote, error) {
	fn := q.address + "::multiswap_aggregator_v4::simulate_swap"

	values, err := q.client.View(ctx,
		fn,
		[]string{req.InputToken, req.OutputToken},
		[]any{strconv.FormatUint(req.AmountIn, 10)},
	)
	if err != nil {
		return nil, fmt.Errorf("simulate_swap view: %w", err)
	}
	if len(values) < 5 {
		return nil, fmt.Errorf("simulate_swap returned %d values, want at least 5", len(values))
	}

	var outputAmount, dexID, feeBps, impactBps, hops U64
	for i, dst := range []*U64{&outputAmount, &dexID, &feeBps, &impactBps, &hops} {
		if err := json.Unmarshal(values[i], dst); err != nil {
			return nil, fmt.Errorf("simulate_swap value %d: %w", i, err)
		}
	}

	if outputAmount == 0 {
		return nil, fmt.Errorf("simulate_swap returned zero output")
	}

	route := []string{registry.AggregatorVenue}
	if len(values) > 5 {
		var ids []U64
		if err := json.Unmarshal(values[5], &ids); err == nil && len(ids) > 0 {
			route = make([]string, 0, len(ids))
			for _, id := range ids {
				route = append(route, q.registry.VenueNameByID(uint64(id)))
			}
		}
	}

	hopCount := int(hops)
	if hopCount == 0 {
		hopCount = 1
	}

	quote := &Quote{
		Venue:          registry.AggregatorVenue,
		OutputAmount:   uint64(outputAmount),
		OutputDecimal:  HumanAmount(uint64(outputAmount), req.OutputToken),
		FeeBps:         uint16(feeBps),
		PriceImpactBps: uint16(impactBps),
		Route:          route,
		Hops:           hopCount,
	}

	q.logger.WithFields(logrus.Fields{
		"output": quote.OutputAmount,
		"dexId":  uint64(dexID),
		"hops":   quote.Hops,
	}).Debug("aggregator contract quote")

	return quote, nil
}
