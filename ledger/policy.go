package ledger

import "fmt"

// AllowAllPolicy authorizes every caller. This is the deployment default
// until operator identity is wired to a real claim source.
type AllowAllPolicy struct{}

func (AllowAllPolicy) Authorize(Caller) error { return nil }

// AllowListPolicy authorizes only an explicit set of callers.
type AllowListPolicy struct {
	allowed map[Caller]bool
}

// NewAllowListPolicy builds a policy permitting exactly the given callers.
func NewAllowListPolicy(callers ...Caller) *AllowListPolicy {
	allowed := make(map[Caller]bool, len(callers))
	for _, c := range callers {
		allowed[c] = true
	}
	return &AllowListPolicy{allowed: allowed}
}

// Allow adds a caller to the allow-list.
func (p *AllowListPolicy) Allow(c Caller) {
	p.allowed[c] = true
}

func (p *AllowListPolicy) Authorize(c Caller) error {
	if !p.allowed[c] {
		return fmt.Errorf("caller %q: %w", string(c), ErrUnauthorized)
	}
	return nil
}
