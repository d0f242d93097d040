package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Config carries the ledger's construction dependencies and behavior
// switches.
type Config struct {
	// Algebra performs homomorphic addition and oracle serialization.
	// Required.
	Algebra CiphertextAlgebra

	// Oracle is the external decryption service. Required.
	Oracle DecryptionOracle

	// Store holds the persisted state surface. Defaults to an in-memory
	// store.
	Store Store

	// Policy gates site-suggestion requests. Defaults to allowing every
	// caller.
	Policy AuthorizationPolicy

	// Notifier receives fire-and-forget event notifications. Defaults to
	// discarding them.
	Notifier Notifier

	// RejectRepeatDelivery, when set, fails a second delivery for an
	// already revealed request with ErrRepeatDelivery. When unset a later
	// delivery overwrites the earlier result (last write wins).
	RejectRepeatDelivery bool

	// Log is the structured logger for ledger operations. Defaults to
	// slog.Default.
	Log *slog.Logger

	// Now overrides the wall clock, for tests.
	Now func() time.Time
}

// Ledger is the aggregation and decryption-request-correlation engine.
//
// All public entry points run to completion under one mutex, totally
// ordering state mutations. In particular the correlation entry for a
// request id is always visible before any delivery for that id can start:
// the oracle call happens inside the same critical section that writes
// the correlation, so a callback racing the request blocks until the
// request has committed.
type Ledger struct {
	mu sync.Mutex

	algebra  CiphertextAlgebra
	oracle   DecryptionOracle
	store    Store
	policy   AuthorizationPolicy
	notifier Notifier

	rejectRepeat bool
	log          *slog.Logger
	now          func() time.Time
}

// New creates a ledger from the given configuration.
func New(cfg *Config) (*Ledger, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Algebra == nil {
		return nil, fmt.Errorf("ciphertext algebra cannot be nil")
	}
	if cfg.Oracle == nil {
		return nil, fmt.Errorf("decryption oracle cannot be nil")
	}

	l := &Ledger{
		algebra:      cfg.Algebra,
		oracle:       cfg.Oracle,
		store:        cfg.Store,
		policy:       cfg.Policy,
		notifier:     cfg.Notifier,
		rejectRepeat: cfg.RejectRepeatDelivery,
		log:          cfg.Log,
		now:          cfg.Now,
	}
	if l.store == nil {
		l.store = NewMemoryStore()
	}
	if l.policy == nil {
		l.policy = AllowAllPolicy{}
	}
	if l.notifier == nil {
		l.notifier = NopNotifier{}
	}
	if l.log == nil {
		l.log = slog.Default()
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l, nil
}

// SubmitSession stores one encrypted session record verbatim and returns
// its sequence number. Inputs are opaque ciphertexts; no plaintext
// validation is possible or attempted.
func (l *Ledger) SubmitSession(stationID, startBucket, durationBucket, energy Ciphertext) (SessionID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	session := &EncryptedSession{
		StationID:      stationID.Clone(),
		StartBucket:    startBucket.Clone(),
		DurationBucket: durationBucket.Clone(),
		Energy:         energy.Clone(),
		SubmittedAt:    l.now(),
	}

	id, err := l.store.InsertSession(session)
	if err != nil {
		return 0, fmt.Errorf("storing session: %w", err)
	}

	l.notifier.SessionSubmitted(SessionSubmittedEvent{ID: id, SubmittedAt: session.SubmittedAt})
	return id, nil
}

// Session returns a stored session record.
func (l *Ledger) Session(id SessionID) (*EncryptedSession, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Session(id)
}

// Accumulate folds one encrypted contribution into a window aggregate.
// The first contribution to a window sets the baseline; every later one
// replaces the stored fields with the homomorphic sum of stored and
// delta. The count delta uses the narrow ciphertext width, the energy
// delta the wide width. No decryption happens here.
func (l *Ledger) Accumulate(key WindowKey, countDelta, energyDelta Ciphertext) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok, err := l.store.Window(key)
	if err != nil {
		return fmt.Errorf("loading window %q: %w", string(key), err)
	}

	if !ok || !current.Initialized {
		return l.store.PutWindow(key, &WindowMetrics{
			TotalEnergy:  energyDelta.Clone(),
			SessionCount: countDelta.Clone(),
			Initialized:  true,
		})
	}

	energy, err := l.algebra.AddWide(current.TotalEnergy, energyDelta)
	if err != nil {
		return fmt.Errorf("adding energy delta to window %q: %w", string(key), err)
	}
	count, err := l.algebra.AddNarrow(current.SessionCount, countDelta)
	if err != nil {
		return fmt.Errorf("adding count delta to window %q: %w", string(key), err)
	}

	return l.store.PutWindow(key, &WindowMetrics{
		TotalEnergy:  energy,
		SessionCount: count,
		Initialized:  true,
	})
}

// Window returns the aggregate for a window key.
func (l *Ledger) Window(key WindowKey) (*WindowMetrics, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Window(key)
}

// RequestDemandForecast asks the oracle to reveal a window's total energy
// and session count. The window must have received at least one
// contribution. The returned request id resolves asynchronously through
// Deliver.
func (l *Ledger) RequestDemandForecast(ctx context.Context, key WindowKey) (RequestID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	metrics, err := l.initializedWindow(key)
	if err != nil {
		return "", err
	}

	return l.requestReveal(ctx, ForecastRequest, key.Context(),
		metrics.TotalEnergy, metrics.SessionCount)
}

// RequestLoadBalance asks the oracle to reveal a window's total energy
// and session count together with a caller-supplied encrypted priority
// value.
func (l *Ledger) RequestLoadBalance(ctx context.Context, key WindowKey, priority Ciphertext) (RequestID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	metrics, err := l.initializedWindow(key)
	if err != nil {
		return "", err
	}

	return l.requestReveal(ctx, LoadBalanceRequest, key.Context(),
		metrics.TotalEnergy, metrics.SessionCount, priority)
}

// RequestSiteSuggestion asks the oracle to reveal a caller-supplied
// regional demand metric and station count. The operation is gated by the
// authorization policy injected at construction.
func (l *Ledger) RequestSiteSuggestion(ctx context.Context, caller Caller, key RegionKey, demand, stationCount Ciphertext) (RequestID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.policy.Authorize(caller); err != nil {
		return "", err
	}

	return l.requestReveal(ctx, SiteSuggestionRequest, key.Context(),
		demand, stationCount)
}

// initializedWindow loads a window and enforces the broker precondition.
func (l *Ledger) initializedWindow(key WindowKey) (*WindowMetrics, error) {
	metrics, ok, err := l.store.Window(key)
	if err != nil {
		return nil, fmt.Errorf("loading window %q: %w", string(key), err)
	}
	if !ok || !metrics.Initialized {
		return nil, fmt.Errorf("window %q: %w", string(key), ErrNoMetricsForWindow)
	}
	return metrics, nil
}

// requestReveal is the shared broker mechanics for all three call sites:
// serialize the ciphertexts in delivery order, hand them to the oracle,
// and record the correlation before returning. Callers hold l.mu, which
// also orders the correlation write before any delivery of the resulting
// request id.
func (l *Ledger) requestReveal(ctx context.Context, kind RequestKind, contextKey ContextKey, cts ...Ciphertext) (RequestID, error) {
	handles := make([]OracleHandle, len(cts))
	for i, ct := range cts {
		h, err := l.algebra.SerializeForOracle(ct)
		if err != nil {
			return "", fmt.Errorf("serializing ciphertext %d for oracle: %w", i, err)
		}
		handles[i] = h
	}

	id, err := l.oracle.RequestDecryption(ctx, handles, callbackFor(kind))
	if err != nil {
		return "", fmt.Errorf("requesting decryption: %w", err)
	}

	if _, exists, err := l.store.Correlation(id); err != nil {
		return "", fmt.Errorf("checking correlation for %q: %w", string(id), err)
	} else if exists {
		return "", fmt.Errorf("oracle returned duplicate request id %q", string(id))
	}

	if err := l.store.PutCorrelation(id, Correlation{Kind: kind, Context: contextKey}); err != nil {
		return "", fmt.Errorf("recording correlation for %q: %w", string(id), err)
	}

	l.log.Debug("decryption requested",
		"kind", string(kind), "requestID", string(id), "context", string(contextKey))
	l.notifier.RevealRequested(RevealRequestedEvent{Kind: kind, RequestID: id, Context: contextKey})
	return id, nil
}

// Deliver is the oracle-initiated callback entry point. It routes the
// result back to its originating context, verifies the proof of correct
// decryption, decodes the [label, payload] pair and commits it as the
// revealed result for the request id. On any failure nothing is
// committed.
func (l *Ledger) Deliver(ctx context.Context, id RequestID, cleartexts, proof []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	corr, ok, err := l.store.Correlation(id)
	if err != nil {
		return fmt.Errorf("looking up correlation for %q: %w", string(id), err)
	}
	if !ok {
		return fmt.Errorf("request %q: %w", string(id), ErrUnknownRequest)
	}

	if l.rejectRepeat {
		if prior, exists, err := l.store.Result(id); err != nil {
			return fmt.Errorf("checking prior result for %q: %w", string(id), err)
		} else if exists && prior.Revealed {
			return fmt.Errorf("request %q: %w", string(id), ErrRepeatDelivery)
		}
	}

	if err := l.oracle.VerifyProof(ctx, id, cleartexts, proof); err != nil {
		return fmt.Errorf("request %q: %w: %w", string(id), ErrInvalidProof, err)
	}

	label, payload, err := DecodeCleartexts(cleartexts)
	if err != nil {
		return fmt.Errorf("request %q: %w", string(id), err)
	}

	if err := l.store.PutResult(id, &RevealedResult{Label: label, Payload: payload, Revealed: true}); err != nil {
		return fmt.Errorf("committing result for %q: %w", string(id), err)
	}

	l.log.Debug("decryption delivered",
		"kind", string(corr.Kind), "requestID", string(id), "context", string(corr.Context))
	l.notifier.RevealDelivered(RevealDeliveredEvent{Kind: corr.Kind, RequestID: id, Context: corr.Context})
	return nil
}

// Result returns the revealed result for a request id. If nothing has
// been delivered yet it returns empty strings and revealed=false; callers
// poll until revealed, with no upper bound guarantee.
func (l *Ledger) Result(id RequestID) (label, payload string, revealed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok, err := l.store.Result(id)
	if err != nil || !ok {
		return "", "", false
	}
	return r.Label, r.Payload, r.Revealed
}
