package fhe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/he/heint"

	"github.com/voltaic-labs/gridveil/crypto"
	"github.com/voltaic-labs/gridveil/ledger"
)

// DeliverFunc is the sink a local oracle pushes results into, normally
// the ledger's Deliver entry point.
type DeliverFunc func(ctx context.Context, id ledger.RequestID, cleartexts, proof []byte) error

// Renderer turns decrypted values into the [label, payload] pair the
// verifier decodes. The values arrive in the order the handles were
// requested; the callback reference says which call site asked.
type Renderer func(cb ledger.CallbackRef, values []uint64) (label, payload string)

// DefaultRenderer formats results for the three ledger call sites.
func DefaultRenderer(cb ledger.CallbackRef, values []uint64) (string, string) {
	switch cb {
	case ledger.ForecastCallback:
		if len(values) == 2 {
			return "forecast", fmt.Sprintf("demand=%dkWh/%dsessions", values[0], values[1])
		}
	case ledger.LoadBalanceCallback:
		if len(values) == 3 {
			return "load-balance", fmt.Sprintf("energy=%dkWh sessions=%d priority=%d", values[0], values[1], values[2])
		}
	case ledger.SiteSuggestionCallback:
		if len(values) == 2 {
			return "site-suggestion", fmt.Sprintf("demand=%d stations=%d", values[0], values[1])
		}
	}

	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return string(cb), strings.Join(parts, ",")
}

type pendingDelivery struct {
	id         ledger.RequestID
	cleartexts []byte
	proof      []byte
}

// LocalOracle implements ledger.DecryptionOracle in-process. It decrypts
// with the scheme secret keys, signs each result, and delivers it to the
// bound sink strictly after the request call has returned, so the
// ledger's correlation entry is always in place first.
//
// Results queue internally; Flush pushes them out synchronously (tests,
// demos) and Start runs a background delivery loop (service deployments).
type LocalOracle struct {
	mu sync.Mutex

	params    Params
	narrowDec *rlwe.Decryptor
	wideDec   *rlwe.Decryptor
	narrowEcd *heint.Encoder
	wideEcd   *heint.Encoder

	signingKey crypto.PrivateKey
	publicKey  crypto.PublicKey

	render   Renderer
	deliver  DeliverFunc
	pending  []pendingDelivery
	interval time.Duration
	log      *slog.Logger
}

// OracleOption customizes a LocalOracle.
type OracleOption func(*LocalOracle)

// WithRenderer replaces the default result renderer.
func WithRenderer(r Renderer) OracleOption {
	return func(o *LocalOracle) { o.render = r }
}

// WithDeliveryInterval sets how often the Start loop flushes pending
// results.
func WithDeliveryInterval(d time.Duration) OracleOption {
	return func(o *LocalOracle) { o.interval = d }
}

// WithLogger sets the oracle's logger.
func WithLogger(log *slog.Logger) OracleOption {
	return func(o *LocalOracle) { o.log = log }
}

// NewLocalOracle creates an oracle holding the given secret keys and
// proof signing key.
func NewLocalOracle(params Params, keys *KeySet, signingKey crypto.PrivateKey, opts ...OracleOption) (*LocalOracle, error) {
	if keys == nil || keys.NarrowSK == nil || keys.WideSK == nil {
		return nil, fmt.Errorf("key set must carry both secret keys")
	}
	publicKey, err := signingKey.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("deriving proof public key: %w", err)
	}

	o := &LocalOracle{
		params:     params,
		narrowDec:  heint.NewDecryptor(params.Narrow, keys.NarrowSK),
		wideDec:    heint.NewDecryptor(params.Wide, keys.WideSK),
		narrowEcd:  heint.NewEncoder(params.Narrow),
		wideEcd:    heint.NewEncoder(params.Wide),
		signingKey: signingKey,
		publicKey:  publicKey,
		render:     DefaultRenderer,
		interval:   100 * time.Millisecond,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// PublicKey returns the key that verifies this oracle's proofs.
func (o *LocalOracle) PublicKey() crypto.PublicKey {
	return o.publicKey
}

// Bind registers the delivery sink. Must be called before the first
// request is flushed.
func (o *LocalOracle) Bind(deliver DeliverFunc) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.deliver = deliver
}

// RequestDecryption decrypts the handles, renders and signs the result,
// and queues it for delivery. The assigned request id is returned
// immediately; delivery happens on a later Flush.
func (o *LocalOracle) RequestDecryption(ctx context.Context, handles []ledger.OracleHandle, cb ledger.CallbackRef) (ledger.RequestID, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	values := make([]uint64, len(handles))
	for i, h := range handles {
		v, err := o.decryptHandle(h)
		if err != nil {
			return "", fmt.Errorf("handle %d: %w", i, err)
		}
		values[i] = v
	}

	id := ledger.RequestID(uuid.NewString())
	label, payload := o.render(cb, values)
	cleartexts := ledger.EncodeCleartexts(label, payload)

	proof, err := SignProof(o.signingKey, id, cleartexts)
	if err != nil {
		return "", err
	}

	o.pending = append(o.pending, pendingDelivery{id: id, cleartexts: cleartexts, proof: proof})
	return id, nil
}

func (o *LocalOracle) decryptHandle(h ledger.OracleHandle) (uint64, error) {
	w, ct, err := unwrap(ledger.Ciphertext(h))
	if err != nil {
		return 0, err
	}

	var pt *rlwe.Plaintext
	var ecd *heint.Encoder
	var params heint.Parameters
	switch w {
	case WidthNarrow:
		pt, ecd, params = o.narrowDec.DecryptNew(ct), o.narrowEcd, o.params.Narrow
	case WidthWide:
		pt, ecd, params = o.wideDec.DecryptNew(ct), o.wideEcd, o.params.Wide
	default:
		return 0, fmt.Errorf("unknown ciphertext width 0x%02x", byte(w))
	}

	values := make([]uint64, params.MaxSlots())
	if err := ecd.Decode(pt, values); err != nil {
		return 0, fmt.Errorf("decoding %s plaintext: %w", w, err)
	}
	return values[0], nil
}

// VerifyProof checks a delivered proof against the oracle's signing key.
func (o *LocalOracle) VerifyProof(ctx context.Context, id ledger.RequestID, cleartexts, proof []byte) error {
	return VerifyProofSignature(o.publicKey, id, cleartexts, proof)
}

// Flush delivers all queued results to the bound sink. Delivery happens
// outside the oracle lock so the sink may take its own locks freely.
func (o *LocalOracle) Flush(ctx context.Context) error {
	o.mu.Lock()
	deliver := o.deliver
	batch := o.pending
	o.pending = nil
	o.mu.Unlock()

	if deliver == nil {
		if len(batch) > 0 {
			return fmt.Errorf("no delivery sink bound for %d pending results", len(batch))
		}
		return nil
	}

	for _, p := range batch {
		if err := deliver(ctx, p.id, p.cleartexts, p.proof); err != nil {
			o.log.Error("result delivery failed", "requestID", string(p.id), "err", err)
		}
	}
	return nil
}

// Start runs the background delivery loop until the context is done.
func (o *LocalOracle) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(o.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := o.Flush(ctx); err != nil {
					o.log.Error("oracle flush failed", "err", err)
				}
			}
		}
	}()
}
