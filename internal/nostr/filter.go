package nostr

// Filter selects events within a subscription request. Servus relays only
// honor kind filters today; authors and limit are carried for protocol
// completeness.
type Filter struct {
	Kinds   []int    `json:"kinds,omitempty"`
	Authors []string `json:"authors,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}
