package platform

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"creatorhub/core/events"
	"creatorhub/core/types"
)

var (
	// ErrNilState marks calls against an engine without a configured state
	// backend.
	ErrNilState = errors.New("platform engine: state not configured")
	// ErrEmptyProfile rejects registrations without profile data.
	ErrEmptyProfile = errors.New("platform engine: profile data required")
	// ErrAlreadyRegistered rejects a second registration for an address.
	ErrAlreadyRegistered = errors.New("platform engine: creator already registered")
	// ErrNotCreator marks operations that require a registered creator.
	ErrNotCreator = errors.New("platform engine: not a registered creator")
	// ErrSubscriptionsDisabled rejects subscriptions to creators with a zero fee.
	ErrSubscriptionsDisabled = errors.New("platform engine: subscriptions not enabled")
	// ErrContentNotFound marks lookups of unassigned content ids.
	ErrContentNotFound = errors.New("platform engine: content not found")
	// ErrTippingDisabled rejects tips on content posted with tipping off.
	ErrTippingDisabled = errors.New("platform engine: tipping not enabled")
	// ErrInvalidAmount rejects nil, zero or negative amounts.
	ErrInvalidAmount = errors.New("platform engine: amount must be positive")
	// ErrAlreadyEngaged rejects a second engagement on the same content by the
	// same user.
	ErrAlreadyEngaged = errors.New("platform engine: content already engaged")
	// ErrNotSubscribed rejects premium engagement without an active subscription.
	ErrNotSubscribed = errors.New("platform engine: active subscription required")
	// ErrFeeTooHigh rejects platform fees above the protocol ceiling.
	ErrFeeTooHigh = errors.New("platform engine: platform fee exceeds ceiling")
	// ErrPaymentFailed marks calls aborted because the payment collaborator
	// refused the transfer. No state changes when it is returned.
	ErrPaymentFailed = errors.New("platform engine: payment transfer failed")
)

const (
	// maxPlatformFeeBps caps the platform cut at 10%. Fixed at construction,
	// never re-settable.
	maxPlatformFeeBps = 1000

	// subscriptionPeriodSeconds is the fixed subscription window. Renewals
	// overwrite the expiry rather than extending it.
	subscriptionPeriodSeconds = 30 * 24 * 60 * 60
)

// engineState is the subset of ledger state the platform engine mutates. Each
// accessor is scoped to a single table so a persistent backend and the test
// fake stay interchangeable.
type engineState interface {
	PlatformProfileGet(addr [20]byte) (*Profile, bool, error)
	PlatformProfilePut(profile *Profile) error
	PlatformStatsGet(addr [20]byte) (*Stats, bool, error)
	PlatformStatsPut(stats *Stats) error
	PlatformContentGet(id ContentID) (*Content, bool, error)
	PlatformContentPut(content *Content) error
	PlatformContentSeqGet() (uint64, error)
	PlatformContentSeqPut(next uint64) error
	PlatformSubscriptionGet(subscriber, creator [20]byte) (*Subscription, bool, error)
	PlatformSubscriptionPut(sub *Subscription) error
	PlatformEngagementMarkGet(id ContentID, user [20]byte) (bool, error)
	PlatformEngagementMarkPut(id ContentID, user [20]byte) error
	PlatformEngagementScoreGet(user [20]byte) (uint64, error)
	PlatformEngagementScorePut(user [20]byte, score uint64) error
}

// PaymentCollaborator moves token value between accounts on behalf of the
// ledger. The engine only defines the call sites; the transfer mechanism is
// external.
type PaymentCollaborator interface {
	Transfer(token [20]byte, from [20]byte, to [20]byte, amount *big.Int) error
}

// Engine wires the platform ledger business logic with persistence and event
// emission. Every operation is a total function of the current state, the
// call inputs, the caller identity and the injected clock; the surrounding
// runtime serializes calls, so the engine holds no locks of its own.
type Engine struct {
	state          engineState
	emitter        events.Emitter
	nowFn          func() int64
	paymentToken   [20]byte
	feeCollector   [20]byte
	platformFeeBps uint32
	payments       PaymentCollaborator
}

// NewEngine constructs a platform engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn: func() int64 {
			return time.Now().Unix()
		},
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetPaymentToken configures the token reference handed to the payment
// collaborator.
func (e *Engine) SetPaymentToken(token [20]byte) { e.paymentToken = token }

// SetFeeCollector configures the account credited with the platform cut.
func (e *Engine) SetFeeCollector(addr [20]byte) { e.feeCollector = addr }

// SetPlatformFeeBps fixes the platform fee percentage in basis points. The
// value is an initialization parameter; it is validated once and callers must
// not change it after the engine starts serving.
func (e *Engine) SetPlatformFeeBps(bps uint32) error {
	if bps > maxPlatformFeeBps {
		return ErrFeeTooHigh
	}
	e.platformFeeBps = bps
	return nil
}

// SetPayments configures the external payment collaborator. With a nil
// collaborator the engine reproduces the reference behavior: counters move
// and no value transfer is attempted.
func (e *Engine) SetPayments(p PaymentCollaborator) { e.payments = p }

func (e *Engine) emit(evt *types.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(WrapEvent(evt))
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

// collectPayment routes the amount through the payment collaborator, crediting
// the creator with the amount net of the platform cut. It runs after all
// precondition checks and before any state write so a refused transfer aborts
// the call with no observable change.
func (e *Engine) collectPayment(from [20]byte, creator [20]byte, amount *big.Int) error {
	if e.payments == nil {
		return nil
	}
	creatorShare, platformCut := splitFee(amount, e.platformFeeBps)
	if creatorShare.Sign() > 0 {
		if err := e.payments.Transfer(e.paymentToken, from, creator, creatorShare); err != nil {
			return fmt.Errorf("%w: %v", ErrPaymentFailed, err)
		}
	}
	if platformCut.Sign() > 0 {
		if err := e.payments.Transfer(e.paymentToken, from, e.feeCollector, platformCut); err != nil {
			return fmt.Errorf("%w: %v", ErrPaymentFailed, err)
		}
	}
	return nil
}

// Register creates the creator profile and zeroed stats for the caller.
// Registration is exactly-once per address, permanently.
func (e *Engine) Register(caller [20]byte, profileData string) (*Profile, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	trimmed := strings.TrimSpace(profileData)
	if trimmed == "" {
		return nil, ErrEmptyProfile
	}
	if _, ok, err := e.state.PlatformProfileGet(caller); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrAlreadyRegistered
	}
	profile := &Profile{
		Address:     caller,
		ProfileData: trimmed,
		CreatedAt:   e.now(),
	}
	if err := e.state.PlatformProfilePut(profile); err != nil {
		return nil, err
	}
	stats := &Stats{
		Address:           caller,
		TotalTipsReceived: big.NewInt(0),
		SubscriptionFee:   big.NewInt(0),
	}
	if err := e.state.PlatformStatsPut(stats); err != nil {
		return nil, err
	}
	e.emit(CreatorRegisteredEvent(FormatAddress(caller), trimmed, profile.CreatedAt))
	return profile.Clone(), nil
}

// SetSubscriptionFee overwrites the caller's subscription fee. A zero fee
// disables subscriptions; no upper bound is enforced.
func (e *Engine) SetSubscriptionFee(caller [20]byte, fee *big.Int) (*Stats, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if fee == nil || fee.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	stats, ok, err := e.state.PlatformStatsGet(caller)
	if err != nil {
		return nil, err
	}
	if !ok || stats == nil {
		return nil, ErrNotCreator
	}
	stats.SubscriptionFee = new(big.Int).Set(fee)
	if err := e.state.PlatformStatsPut(stats); err != nil {
		return nil, err
	}
	e.emit(SubscriptionFeeUpdatedEvent(FormatAddress(caller), fee.String()))
	return stats.Clone(), nil
}

// PostContent allocates the next dense content id for the caller. The id
// allocation, the sequence bump and the creator stats increment commit as one
// atomic step under the runtime's serialized-call model.
func (e *Engine) PostContent(caller [20]byte, hash string, isPremium bool, tipEnabled bool) (*Content, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	stats, ok, err := e.state.PlatformStatsGet(caller)
	if err != nil {
		return nil, err
	}
	if !ok || stats == nil {
		return nil, ErrNotCreator
	}
	id, err := e.state.PlatformContentSeqGet()
	if err != nil {
		return nil, err
	}
	content := &Content{
		ID:         id,
		Creator:    caller,
		Hash:       strings.TrimSpace(hash),
		Timestamp:  e.now(),
		IsPremium:  isPremium,
		TipEnabled: tipEnabled,
		TotalTips:  big.NewInt(0),
	}
	if err := e.state.PlatformContentPut(content); err != nil {
		return nil, err
	}
	if err := e.state.PlatformContentSeqPut(id + 1); err != nil {
		return nil, err
	}
	stats.TotalContent++
	if err := e.state.PlatformStatsPut(stats); err != nil {
		return nil, err
	}
	e.emit(ContentPostedEvent(id, FormatAddress(caller), content.Hash, isPremium))
	return content.Clone(), nil
}

// Subscribe opens (or renews) a 30-day subscription window against the
// creator. Renewal overwrites the expiry rather than extending it, and the
// subscriber counter increments on every successful call, renewals included.
func (e *Engine) Subscribe(caller [20]byte, creator [20]byte) (*Subscription, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	stats, ok, err := e.state.PlatformStatsGet(creator)
	if err != nil {
		return nil, err
	}
	if !ok || stats == nil {
		return nil, ErrNotCreator
	}
	if stats.SubscriptionFee == nil || stats.SubscriptionFee.Sign() == 0 {
		return nil, ErrSubscriptionsDisabled
	}
	if err := e.collectPayment(caller, creator, stats.SubscriptionFee); err != nil {
		return nil, err
	}
	sub := &Subscription{
		Subscriber: caller,
		Creator:    creator,
		Active:     true,
		Expiry:     e.now() + subscriptionPeriodSeconds,
	}
	if err := e.state.PlatformSubscriptionPut(sub); err != nil {
		return nil, err
	}
	stats.TotalSubscribers++
	if err := e.state.PlatformStatsPut(stats); err != nil {
		return nil, err
	}
	e.emit(SubscribedEvent(FormatAddress(caller), FormatAddress(creator), sub.Expiry))
	return sub.Clone(), nil
}

// IsSubscribed reports whether the user holds an active, unexpired
// subscription to the creator. Expiry is strict: a subscription whose expiry
// equals the current time is no longer active.
func (e *Engine) IsSubscribed(user [20]byte, creator [20]byte) (bool, error) {
	if e == nil || e.state == nil {
		return false, ErrNilState
	}
	sub, ok, err := e.state.PlatformSubscriptionGet(user, creator)
	if err != nil {
		return false, err
	}
	if !ok || sub == nil {
		return false, nil
	}
	return sub.Active && sub.Expiry > e.now(), nil
}

// Tip adds the amount to the content's tip total and the owning creator's
// received total as one atomic step.
func (e *Engine) Tip(caller [20]byte, id ContentID, amount *big.Int) (*Content, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	content, ok, err := e.state.PlatformContentGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || content == nil {
		return nil, ErrContentNotFound
	}
	if !content.TipEnabled {
		return nil, ErrTippingDisabled
	}
	stats, ok, err := e.state.PlatformStatsGet(content.Creator)
	if err != nil {
		return nil, err
	}
	if !ok || stats == nil {
		return nil, ErrNotCreator
	}
	if err := e.collectPayment(caller, content.Creator, amount); err != nil {
		return nil, err
	}
	content.TotalTips = new(big.Int).Add(content.TotalTips, amount)
	if err := e.state.PlatformContentPut(content); err != nil {
		return nil, err
	}
	if stats.TotalTipsReceived == nil {
		stats.TotalTipsReceived = big.NewInt(0)
	}
	stats.TotalTipsReceived = new(big.Int).Add(stats.TotalTipsReceived, amount)
	if err := e.state.PlatformStatsPut(stats); err != nil {
		return nil, err
	}
	e.emit(ContentTippedEvent(id, FormatAddress(caller), amount.String()))
	return content.Clone(), nil
}

// Engage records a one-shot engagement on the content for the caller. The
// write-once mark is checked before any other gate so a repeat attempt always
// surfaces as ErrAlreadyEngaged, and premium content additionally requires an
// active subscription at engagement time.
func (e *Engine) Engage(caller [20]byte, id ContentID, engagementType string) (*Engagement, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	content, ok, err := e.state.PlatformContentGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || content == nil {
		return nil, ErrContentNotFound
	}
	marked, err := e.state.PlatformEngagementMarkGet(id, caller)
	if err != nil {
		return nil, err
	}
	if marked {
		return nil, ErrAlreadyEngaged
	}
	if content.IsPremium {
		active, err := e.IsSubscribed(caller, content.Creator)
		if err != nil {
			return nil, err
		}
		if !active {
			return nil, ErrNotSubscribed
		}
	}
	if err := e.state.PlatformEngagementMarkPut(id, caller); err != nil {
		return nil, err
	}
	content.TotalEngagements++
	if err := e.state.PlatformContentPut(content); err != nil {
		return nil, err
	}
	score, err := e.state.PlatformEngagementScoreGet(caller)
	if err != nil {
		return nil, err
	}
	if err := e.state.PlatformEngagementScorePut(caller, score+1); err != nil {
		return nil, err
	}
	engagement := &Engagement{
		ContentID: id,
		User:      caller,
		Kind:      engagementType,
		At:        e.now(),
	}
	e.emit(ContentEngagedEvent(id, FormatAddress(caller), engagementType))
	return engagement, nil
}

// CreatorStats returns the stats record for the address without mutating
// state. Unregistered addresses read as a zero-valued record.
func (e *Engine) CreatorStats(addr [20]byte) (*Stats, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	stats, ok, err := e.state.PlatformStatsGet(addr)
	if err != nil {
		return nil, err
	}
	if !ok || stats == nil {
		return &Stats{
			Address:           addr,
			TotalTipsReceived: big.NewInt(0),
			SubscriptionFee:   big.NewInt(0),
		}, nil
	}
	return stats.Clone(), nil
}

// ContentByID returns the content record for an assigned id.
func (e *Engine) ContentByID(id ContentID) (*Content, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	content, ok, err := e.state.PlatformContentGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || content == nil {
		return nil, ErrContentNotFound
	}
	return content.Clone(), nil
}

// UserEngagementScore returns the user's cumulative engagement count across
// all content.
func (e *Engine) UserEngagementScore(addr [20]byte) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	return e.state.PlatformEngagementScoreGet(addr)
}

// NextContentID reports the id the next successful post will receive.
func (e *Engine) NextContentID() (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	return e.state.PlatformContentSeqGet()
}
