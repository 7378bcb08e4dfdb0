package platform

import (
	"fmt"

	"creatorhub/core/events"
	"creatorhub/core/types"
)

const (
	// EventTypeCreatorRegistered is emitted when an address registers as a creator.
	EventTypeCreatorRegistered = "platform.creator.registered"
	// EventTypeSubscriptionFeeUpdated is emitted when a creator changes their fee.
	EventTypeSubscriptionFeeUpdated = "platform.creator.fee_updated"
	// EventTypeContentPosted is emitted when a creator publishes content.
	EventTypeContentPosted = "platform.content.posted"
	// EventTypeSubscribed is emitted when a subscription window opens or renews.
	EventTypeSubscribed = "platform.subscription.created"
	// EventTypeContentTipped is emitted when a user tips a piece of content.
	EventTypeContentTipped = "platform.content.tipped"
	// EventTypeContentEngaged is emitted when a user engages with content.
	EventTypeContentEngaged = "platform.content.engaged"
)

type eventEnvelope struct {
	evt *types.Event
}

func (e eventEnvelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e eventEnvelope) Event() *types.Event { return e.evt }

// WrapEvent converts a raw event payload into the emitter-friendly envelope.
func WrapEvent(evt *types.Event) events.Event { return eventEnvelope{evt: evt} }

// CreatorRegisteredEvent returns the payload announcing a new creator.
func CreatorRegisteredEvent(creator string, profileData string, timestamp int64) *types.Event {
	return &types.Event{
		Type: EventTypeCreatorRegistered,
		Attributes: map[string]string{
			"creator":     creator,
			"profileData": profileData,
			"timestamp":   fmt.Sprintf("%d", timestamp),
		},
	}
}

// SubscriptionFeeUpdatedEvent returns the payload for a fee change.
func SubscriptionFeeUpdatedEvent(creator string, fee string) *types.Event {
	return &types.Event{
		Type: EventTypeSubscriptionFeeUpdated,
		Attributes: map[string]string{
			"creator": creator,
			"fee":     fee,
		},
	}
}

// ContentPostedEvent returns the payload for a publication announcement.
func ContentPostedEvent(id ContentID, creator string, hash string, isPremium bool) *types.Event {
	return &types.Event{
		Type: EventTypeContentPosted,
		Attributes: map[string]string{
			"contentId": fmt.Sprintf("%d", id),
			"creator":   creator,
			"hash":      hash,
			"isPremium": fmt.Sprintf("%t", isPremium),
		},
	}
}

// SubscribedEvent returns the payload for a subscription window.
func SubscribedEvent(subscriber string, creator string, expiry int64) *types.Event {
	return &types.Event{
		Type: EventTypeSubscribed,
		Attributes: map[string]string{
			"subscriber": subscriber,
			"creator":    creator,
			"expiry":     fmt.Sprintf("%d", expiry),
		},
	}
}

// ContentTippedEvent returns the payload for tip activity.
func ContentTippedEvent(id ContentID, tipper string, amount string) *types.Event {
	return &types.Event{
		Type: EventTypeContentTipped,
		Attributes: map[string]string{
			"contentId": fmt.Sprintf("%d", id),
			"tipper":    tipper,
			"amount":    amount,
		},
	}
}

// ContentEngagedEvent returns the payload for an engagement.
func ContentEngagedEvent(id ContentID, user string, engagementType string) *types.Event {
	return &types.Event{
		Type: EventTypeContentEngaged,
		Attributes: map[string]string{
			"contentId": fmt.Sprintf("%d", id),
			"user":      user,
			"type":      engagementType,
		},
	}
}
