package payment

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"payment-orchestrator/infrastructure/service"
)

// ProcessorDescriptor registers a payment rail with its capability set and
// metric seeds. SuccessRate and CostRating are in [0, 1].
type ProcessorDescriptor struct {
	Type        string
	Methods     []string
	Currencies  []string
	CostRating  float64
	SuccessRate float64
	AvgLatency  time.Duration
}

// metricAlpha is the EWMA weight for rolling metric updates. Metrics have no
// hard staleness bound; old observations decay geometrically instead.
const metricAlpha = 0.2

type registryEntry struct {
	descriptor ProcessorDescriptor
	impl       service.Processor
	methods    map[string]struct{}
	currencies map[string]struct{}

	successRateBits atomic.Uint64
	avgLatencyNs    atomic.Int64
	attempts        atomic.Int64
}

// Candidate is a point-in-time metric snapshot the router scores. Slices of
// candidates preserve registration order for deterministic tie-breaks.
type Candidate struct {
	Type        string
	SuccessRate float64
	CostRating  float64
	AvgLatency  time.Duration
}

// Registry holds the available processors and their rolling performance
// metrics. Registration happens once at composition time; metric updates are
// lock-free so routing reads never contend with the coordinator.
type Registry struct {
	mu      sync.RWMutex
	entries []*registryEntry
	byType  map[string]*registryEntry
}

func NewRegistry() *Registry {
	return &Registry{byType: make(map[string]*registryEntry)}
}

func (r *Registry) Register(desc ProcessorDescriptor, impl service.Processor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byType[desc.Type]; exists {
		return fmt.Errorf("processor %s already registered", desc.Type)
	}

	entry := &registryEntry{
		descriptor: desc,
		impl:       impl,
		methods:    make(map[string]struct{}, len(desc.Methods)),
		currencies: make(map[string]struct{}, len(desc.Currencies)),
	}
	for _, m := range desc.Methods {
		entry.methods[m] = struct{}{}
	}
	for _, c := range desc.Currencies {
		entry.currencies[c] = struct{}{}
	}
	entry.successRateBits.Store(math.Float64bits(desc.SuccessRate))
	entry.avgLatencyNs.Store(int64(desc.AvgLatency))

	r.entries = append(r.entries, entry)
	r.byType[desc.Type] = entry
	return nil
}

func (r *Registry) Processor(processorType string) (service.Processor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.byType[processorType]
	if !ok {
		return nil, false
	}
	return entry.impl, true
}

// Candidates returns metric snapshots for every processor capable of the
// method/currency pair, in registration order.
func (r *Registry) Candidates(method, currency string) []Candidate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var candidates []Candidate
	for _, entry := range r.entries {
		if _, ok := entry.methods[method]; !ok {
			continue
		}
		if _, ok := entry.currencies[currency]; !ok {
			continue
		}
		candidates = append(candidates, Candidate{
			Type:        entry.descriptor.Type,
			SuccessRate: entry.loadSuccessRate(),
			CostRating:  entry.descriptor.CostRating,
			AvgLatency:  time.Duration(entry.avgLatencyNs.Load()),
		})
	}
	return candidates
}

// UpdateSuccessRate folds one attempt outcome into the rolling success rate.
// Every attempt counts, regardless of which attempt settles the transaction.
func (r *Registry) UpdateSuccessRate(processorType string, success bool) {
	r.mu.RLock()
	entry, ok := r.byType[processorType]
	r.mu.RUnlock()
	if !ok {
		return
	}

	outcome := 0.0
	if success {
		outcome = 1.0
	}

	for {
		oldBits := entry.successRateBits.Load()
		current := math.Float64frombits(oldBits)
		next := current + metricAlpha*(outcome-current)
		if entry.successRateBits.CompareAndSwap(oldBits, math.Float64bits(next)) {
			break
		}
	}
	entry.attempts.Add(1)
}

// ObserveLatency folds a measured attempt duration into the rolling average.
func (r *Registry) ObserveLatency(processorType string, d time.Duration) {
	r.mu.RLock()
	entry, ok := r.byType[processorType]
	r.mu.RUnlock()
	if !ok {
		return
	}

	for {
		old := entry.avgLatencyNs.Load()
		next := old + int64(metricAlpha*float64(int64(d)-old))
		if entry.avgLatencyNs.CompareAndSwap(old, next) {
			break
		}
	}
}

func (r *Registry) SuccessRate(processorType string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.byType[processorType]
	if !ok {
		return 0
	}
	return entry.loadSuccessRate()
}

func (r *Registry) Attempts(processorType string) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.byType[processorType]
	if !ok {
		return 0
	}
	return entry.attempts.Load()
}

func (e *registryEntry) loadSuccessRate() float64 {
	return math.Float64frombits(e.successRateBits.Load())
}
