package platform

import "math/big"

// ContentID identifies a piece of content. IDs are dense, allocated in call
// order starting at zero, and never reused.
type ContentID = uint64

// Profile records a creator's registration. Profiles are created exactly once
// per address and never deleted.
type Profile struct {
	Address     [20]byte `json:"address"`
	ProfileData string   `json:"profileData"`
	CreatedAt   int64    `json:"createdAt"`
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

// Stats maintains the cumulative accounting for a creator. It is co-created
// with the profile and mutated by posting, subscriptions and tips.
//
// TotalSubscribers counts successful subscribe calls, including renewals by
// the same subscriber, so it can exceed the number of distinct active
// subscribers.
type Stats struct {
	Address           [20]byte `json:"address"`
	TotalSubscribers  uint64   `json:"totalSubscribers"`
	TotalContent      uint64   `json:"totalContent"`
	TotalTipsReceived *big.Int `json:"totalTipsReceived"`
	SubscriptionFee   *big.Int `json:"subscriptionFee"`
	// EngagementScore is reserved for a creator-level aggregate that is not
	// yet populated by any operation.
	EngagementScore uint64 `json:"engagementScore"`
}

// Clone returns a deep copy of the stats record.
func (s *Stats) Clone() *Stats {
	if s == nil {
		return nil
	}
	clone := *s
	if s.TotalTipsReceived != nil {
		clone.TotalTipsReceived = new(big.Int).Set(s.TotalTipsReceived)
	}
	if s.SubscriptionFee != nil {
		clone.SubscriptionFee = new(big.Int).Set(s.SubscriptionFee)
	}
	return &clone
}

// Content represents a published piece of media. Only the tip and engagement
// counters mutate after creation.
type Content struct {
	ID               ContentID `json:"id"`
	Creator          [20]byte  `json:"creator"`
	Hash             string    `json:"hash"`
	Timestamp        int64     `json:"timestamp"`
	IsPremium        bool      `json:"isPremium"`
	TipEnabled       bool      `json:"tipEnabled"`
	TotalTips        *big.Int  `json:"totalTips"`
	TotalEngagements uint64    `json:"totalEngagements"`
}

// Clone returns a deep copy of the content record.
func (c *Content) Clone() *Content {
	if c == nil {
		return nil
	}
	clone := *c
	if c.TotalTips != nil {
		clone.TotalTips = new(big.Int).Set(c.TotalTips)
	}
	return &clone
}

// Subscription captures a subscriber's window against a creator. Absence of a
// record is equivalent to Active=false; expiry is evaluated lazily at use
// time and records are never swept.
type Subscription struct {
	Subscriber [20]byte `json:"subscriber"`
	Creator    [20]byte `json:"creator"`
	Active     bool     `json:"active"`
	Expiry     int64    `json:"expiry"`
}

// Clone returns a copy of the subscription record.
func (s *Subscription) Clone() *Subscription {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

// Engagement captures a successful engagement call for event reporting.
type Engagement struct {
	ContentID ContentID `json:"contentId"`
	User      [20]byte  `json:"user"`
	Kind      string    `json:"kind"`
	At        int64     `json:"at"`
}
