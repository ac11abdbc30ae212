package quote

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DucLoc1999/Dexonic-Trading/internal/amm"
	"github.com/DucLoc1999/Dexonic-Trading/internal/econia"
	"github.com/DucLoc1999/Dexonic-Trading/internal/panora"
	"github.com/DucLoc1999/Dexonic-Trading/internal/registry"
)

// VenueFlags reports venues disabled at runtime. An error reads as "none
// disabled" so a flags-store outage never blocks quoting.
type VenueFlags interface {
	DisabledVenues(ctx context.Context) (map[string]bool, error)
}

// OrchestratorConfig holds the per-call budgets
type OrchestratorConfig struct {
	VenueTimeout    time.Duration // budget for one venue's quote computation
	ContractTimeout time.Duration // budget for the aggregator-contract view
}

// DefaultOrchestratorConfig returns the budgets observed to work against
// mainnet fullnodes
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		VenueTimeout:    5 * time.Second,
		ContractTimeout: 10 * time.Second,
	}
}

// Orchestrator fans one request out to every matching venue plus the
// aggregator contract, each under its own timeout, and folds whatever
// survives into an AggregatedResult. Venue failures are absorbed here;
// they reduce the candidate set and nothing else.
type Orchestrator struct {
	registry *registry.Registry
	resolver *Resolver
	book     *econia.Strategy
	pricing  *panora.Client
	contract *ContractQuoter
	flags    VenueFlags // optional
	logger   *logrus.Logger
	cfg      OrchestratorConfig
}

// OrchestratorDeps bundles the orchestrator's collaborators
type OrchestratorDeps struct {
	Registry *registry.Registry
	Resolver *Resolver
	Book     *econia.Strategy
	Pricing  *panora.Client
	Contract *ContractQuoter
	Flags    VenueFlags
	Logger   *logrus.Logger
	Config   OrchestratorConfig
}

// NewOrchestrator wires up the quote pipeline
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}
	if deps.Config.VenueTimeout <= 0 {
		deps.Config.VenueTimeout = DefaultOrchestratorConfig().VenueTimeout
	}
	if deps.Config.ContractTimeout <= 0 {
		deps.Config.ContractTimeout = DefaultOrchestratorConfig().ContractTimeout
	}
	return &Orchestrator{
		registry: deps.Registry,
		resolver: deps.Resolver,
		book:     deps.Book,
		pricing:  deps.Pricing,
		contract: deps.Contract,
		flags:    deps.Flags,
		logger:   deps.Logger,
		cfg:      deps.Config,
	}
}

// Aggregate runs one quote request end to end. It returns an error only
// for invalid requests; venue failures shrink the quote list instead.
func (o *Orchestrator) Aggregate(ctx context.Context, req Request) (*AggregatedResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	venues := o.registry.VenuesForPair(req.InputToken, req.OutputToken)

	results := make(chan *Quote, len(venues)+1)
	var wg sync.WaitGroup

	for _, v := range venues {
		wg.Add(1)
		go func(v *registry.Venue) {
			defer wg.Done()
			o.runVenue(ctx, v, req, results)
		}(v)
	}

	if o.contract != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.runContract(ctx, req, results)
		}()
	}

	wg.Wait()
	close(results)

	var quotes []*Quote
	for q := range results {
		quotes = append(quotes, q)
	}

	filtered, best := Select(quotes, o.allowedFunc(ctx))

	res := &AggregatedResult{
		Quotes:      filtered,
		TotalQuotes: len(filtered),
		BestQuote:   best,
	}

	o.logger.WithFields(logrus.Fields{
		"pair":       req.InputToken + "/" + req.OutputToken,
		"candidates": len(quotes),
		"quotes":     res.TotalQuotes,
		"hasBest":    best != nil,
	}).Info("aggregated quotes")

	return res, nil
}

// allowedFunc combines the static allow-list with runtime kill-switches
func (o *Orchestrator) allowedFunc(ctx context.Context) func(string) bool {
	disabled := map[string]bool{}
	if o.flags != nil {
		if d, err := o.flags.DisabledVenues(ctx); err == nil {
			disabled = d
		} else {
			o.logger.WithError(err).Warn("venue flags unavailable, treating all venues as enabled")
		}
	}
	return func(venue string) bool {
		return o.registry.IsAllowed(venue) && !disabled[venue]
	}
}

// runVenue computes one venue's quote under its own timeout. Panics are
// contained here: a defect in one strategy must not take down the other
// venues or the process.
func (o *Orchestrator) runVenue(ctx context.Context, v *registry.Venue, req Request, results chan<- *Quote) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.WithField("venue", v.Name).Errorf("venue quote panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, o.cfg.VenueTimeout)
	defer cancel()

	q, err := o.quoteVenue(ctx, v, req)
	if err != nil {
		o.logger.WithError(err).WithField("venue", v.Name).Debug("venue produced no quote")
		return
	}
	if q.OutputAmount == 0 {
		return
	}
	results <- q
}

func (o *Orchestrator) runContract(ctx context.Context, req Request, results chan<- *Quote) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Errorf("contract quote panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, o.cfg.ContractTimeout)
	defer cancel()

	q, err := o.contract.Simulate(ctx, req)
	if err != nil {
		o.logger.WithError(err).Debug("aggregator contract produced no quote")
		return
	}
	results <- q
}

// quoteVenue dispatches on the venue's capability tag
func (o *Orchestrator) quoteVenue(ctx context.Context, v *registry.Venue, req Request) (*Quote, error) {
	pool, ok := v.Pool(req.InputToken, req.OutputToken)
	if !ok {
		return nil, fmt.Errorf("no pool for pair")
	}
	feeBps := v.EffectiveFeeBps(pool)

	switch v.Capability {
	case registry.CapReservePair:
		pair, err := o.resolver.Resolve(ctx, pool, req.InputToken, req.OutputToken)
		if err != nil {
			return nil, err
		}
		out, err := amm.ComputeOutput(req.AmountIn, pair.ReserveIn, pair.ReserveOut, feeBps)
		if err != nil {
			return nil, err
		}
		return o.newQuote(v, pool, req, out,
			amm.PriceImpactBps(req.AmountIn, out, pair.ReserveIn, pair.ReserveOut)), nil

	case registry.CapOrderBook:
		if o.book == nil {
			return nil, fmt.Errorf("order-book strategy not configured")
		}
		out, err := o.book.BestAskOutput(ctx, v.Address, req.InputToken, req.OutputToken, req.AmountIn, v.PriceScale)
		if err != nil {
			return nil, err
		}
		return o.newQuote(v, pool, req, out, 0), nil

	case registry.CapExternalAPI:
		if o.pricing == nil {
			return nil, fmt.Errorf("pricing client not configured")
		}
		exists, err := o.pricing.PairExists(ctx, req.InputToken, req.OutputToken)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("pair not listed")
		}
		// Approximation: the service confirms the pair only, so the
		// quote is the input less a flat discount.
		out := amm.ApplySlippage(req.AmountIn, panora.DefaultDiscountBps)
		return o.newQuote(v, pool, req, out, 0), nil

	default:
		return nil, fmt.Errorf("unknown capability %q", v.Capability)
	}
}

func (o *Orchestrator) newQuote(v *registry.Venue, pool *registry.PoolInstance, req Request, out uint64, impactBps uint16) *Quote {
	return &Quote{
		Venue:          v.Name,
		OutputAmount:   out,
		OutputDecimal:  HumanAmount(out, req.OutputToken),
		FeeBps:         v.EffectiveFeeBps(pool),
		PriceImpactBps: impactBps,
		Route:          []string{v.Name},
		Hops:           1,
		PoolAddress:    pool.Address,
	}
}
