package payment

import (
	"fmt"
)

const (
	defaultSuccessWeight = 0.7
	defaultCostWeight    = 0.3
)

type RouterConfig struct {
	SuccessWeight float64
	CostWeight    float64
}

// Router picks a primary processor and an optional backup from the registry's
// cached rolling metrics. It performs no I/O; routing stays synchronous and
// cheap relative to processor invocation.
type Router struct {
	registry *Registry
	cfg      RouterConfig
}

func NewRouter(registry *Registry, cfg RouterConfig) *Router {
	if cfg.SuccessWeight == 0 && cfg.CostWeight == 0 {
		cfg = RouterConfig{SuccessWeight: defaultSuccessWeight, CostWeight: defaultCostWeight}
	}
	return &Router{registry: registry, cfg: cfg}
}

// Route scores every capable processor and returns the decision. The verdict's
// risk score is informational only; it never overrides capability constraints.
func (r *Router) Route(req *ValidatedRequest, verdict FraudVerdict) (*RoutingDecision, error) {
	candidates := r.registry.Candidates(req.Method, req.Currency)
	if len(candidates) == 0 {
		return nil, NewPaymentError(
			CodeNoProcessorAvailable,
			fmt.Sprintf("no processor available for method %s and currency %s", req.Method, req.Currency),
		)
	}

	// Strictly-greater comparison keeps ties on the earliest registered
	// processor, so routing is reproducible for identical registry state.
	best := 0
	bestScore := r.score(candidates[0])
	for i := 1; i < len(candidates); i++ {
		if s := r.score(candidates[i]); s > bestScore {
			best = i
			bestScore = s
		}
	}
	primary := candidates[best]

	backup := ""
	backupScore := -1.0
	for i, c := range candidates {
		if i == best || c.Type == primary.Type {
			continue
		}
		if s := r.score(c); s > backupScore {
			backup = c.Type
			backupScore = s
		}
	}

	reason := fmt.Sprintf(
		"selected %s: success rate %.1f%%, cost rating %.2f, risk score %d",
		primary.Type, primary.SuccessRate*100, primary.CostRating, verdict.RiskScore,
	)

	return &RoutingDecision{
		Primary:          primary.Type,
		Backup:           backup,
		Reason:           reason,
		EstimatedLatency: primary.AvgLatency,
		EstimatedFees:    ComputeFee(req.Amount, req.Currency, req.Method, req.Customer.Country, req.MerchantTier),
	}, nil
}

func (r *Router) score(c Candidate) float64 {
	return c.SuccessRate*r.cfg.SuccessWeight + (1-c.CostRating)*r.cfg.CostWeight
}
