package models

import "encoding/json"

// StripeCapabilities mirrors the capability statuses we act on. Each value is
// a Stripe capability status string ("active", "inactive", "pending").
type StripeCapabilities struct {
	CardPayments string `json:"card_payments,omitempty"`
	Transfers    string `json:"transfers,omitempty"`
}

// StripeRequirements is the persisted snapshot of an account's outstanding
// requirements. Fields we act on are explicit; any other keys Stripe sends
// are kept in Extra and survive a marshal/unmarshal round trip.
type StripeRequirements struct {
	CurrentlyDue        []string            `json:"currently_due,omitempty"`
	EventuallyDue       []string            `json:"eventually_due,omitempty"`
	PastDue             []string            `json:"past_due,omitempty"`
	PendingVerification []string            `json:"pending_verification,omitempty"`
	DisabledReason      string              `json:"disabled_reason,omitempty"`
	CurrentDeadline     int64               `json:"current_deadline,omitempty"`
	Capabilities        *StripeCapabilities `json:"capabilities,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var knownRequirementKeys = map[string]struct{}{
	"currently_due":        {},
	"eventually_due":       {},
	"past_due":             {},
	"pending_verification": {},
	"disabled_reason":      {},
	"current_deadline":     {},
	"capabilities":         {},
}

func (r *StripeRequirements) UnmarshalJSON(data []byte) error {
	type alias StripeRequirements
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k := range raw {
		if _, known := knownRequirementKeys[k]; known {
			delete(raw, k)
		}
	}
	if len(raw) > 0 {
		a.Extra = raw
	}

	*r = StripeRequirements(a)
	return nil
}

func (r StripeRequirements) MarshalJSON() ([]byte, error) {
	type alias StripeRequirements
	base, err := json.Marshal(alias(r))
	if err != nil {
		return nil, err
	}

	if len(r.Extra) == 0 {
		return base, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range r.Extra {
		// Explicit fields win over stale Extra entries.
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}
