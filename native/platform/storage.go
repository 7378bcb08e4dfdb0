package platform

import (
	"errors"
	"fmt"
	"math/big"
)

// kvStore abstracts the subset of the typed key-value layer the platform
// state needs. storage.KV satisfies it in the daemon; tests provide a map
// backed fake.
type kvStore interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

const (
	profilePrefix      = "platform/profile/"
	statsPrefix        = "platform/stats/"
	contentPrefix      = "platform/content/"
	subscriptionPrefix = "platform/sub/"
	markPrefix         = "platform/mark/"
	scorePrefix        = "platform/score/"
	contentSeqKey      = "platform/meta/content-seq"
)

func profileKey(addr [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x", profilePrefix, addr))
}

func statsKey(addr [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x", statsPrefix, addr))
}

func contentKey(id ContentID) []byte {
	return []byte(fmt.Sprintf("%s%d", contentPrefix, id))
}

func subscriptionKey(subscriber, creator [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x/%x", subscriptionPrefix, subscriber, creator))
}

func markKey(id ContentID, user [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%d/%x", markPrefix, id, user))
}

func scoreKey(user [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x", scorePrefix, user))
}

// Stored records keep to RLP's type surface; signed timestamps convert at the
// boundary.

type profileRecord struct {
	ProfileData string
	CreatedAt   uint64
}

type statsRecord struct {
	TotalSubscribers  uint64
	TotalContent      uint64
	TotalTipsReceived *big.Int
	SubscriptionFee   *big.Int
	EngagementScore   uint64
}

type contentRecord struct {
	Creator          [20]byte
	Hash             string
	Timestamp        uint64
	IsPremium        bool
	TipEnabled       bool
	TotalTips        *big.Int
	TotalEngagements uint64
}

type subscriptionRecord struct {
	Active bool
	Expiry uint64
}

// State persists the platform ledger tables in prefix-keyed KV storage. It
// implements the engine's state interface so the same engine runs against a
// memory database in tests and leveldb in the daemon.
type State struct {
	kv kvStore
}

// NewState binds the platform tables to the provided key-value layer.
func NewState(kv kvStore) *State {
	return &State{kv: kv}
}

func (s *State) withKV() (kvStore, error) {
	if s == nil || s.kv == nil {
		return nil, errors.New("platform state: kv not configured")
	}
	return s.kv, nil
}

// PlatformProfileGet loads the creator profile for the address.
func (s *State) PlatformProfileGet(addr [20]byte) (*Profile, bool, error) {
	kv, err := s.withKV()
	if err != nil {
		return nil, false, err
	}
	var stored profileRecord
	ok, err := kv.KVGet(profileKey(addr), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &Profile{
		Address:     addr,
		ProfileData: stored.ProfileData,
		CreatedAt:   int64(stored.CreatedAt),
	}, true, nil
}

// PlatformProfilePut stores the creator profile.
func (s *State) PlatformProfilePut(profile *Profile) error {
	kv, err := s.withKV()
	if err != nil {
		return err
	}
	if profile == nil {
		return errors.New("platform state: profile required")
	}
	record := profileRecord{
		ProfileData: profile.ProfileData,
		CreatedAt:   uint64(profile.CreatedAt),
	}
	return kv.KVPut(profileKey(profile.Address), record)
}

// PlatformStatsGet loads the creator stats for the address.
func (s *State) PlatformStatsGet(addr [20]byte) (*Stats, bool, error) {
	kv, err := s.withKV()
	if err != nil {
		return nil, false, err
	}
	var stored statsRecord
	ok, err := kv.KVGet(statsKey(addr), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	stats := &Stats{
		Address:           addr,
		TotalSubscribers:  stored.TotalSubscribers,
		TotalContent:      stored.TotalContent,
		TotalTipsReceived: stored.TotalTipsReceived,
		SubscriptionFee:   stored.SubscriptionFee,
		EngagementScore:   stored.EngagementScore,
	}
	if stats.TotalTipsReceived == nil {
		stats.TotalTipsReceived = big.NewInt(0)
	}
	if stats.SubscriptionFee == nil {
		stats.SubscriptionFee = big.NewInt(0)
	}
	return stats, true, nil
}

// PlatformStatsPut stores the creator stats.
func (s *State) PlatformStatsPut(stats *Stats) error {
	kv, err := s.withKV()
	if err != nil {
		return err
	}
	if stats == nil {
		return errors.New("platform state: stats required")
	}
	record := statsRecord{
		TotalSubscribers:  stats.TotalSubscribers,
		TotalContent:      stats.TotalContent,
		TotalTipsReceived: stats.TotalTipsReceived,
		SubscriptionFee:   stats.SubscriptionFee,
		EngagementScore:   stats.EngagementScore,
	}
	if record.TotalTipsReceived == nil {
		record.TotalTipsReceived = big.NewInt(0)
	}
	if record.SubscriptionFee == nil {
		record.SubscriptionFee = big.NewInt(0)
	}
	return kv.KVPut(statsKey(stats.Address), record)
}

// PlatformContentGet loads the content record for the id.
func (s *State) PlatformContentGet(id ContentID) (*Content, bool, error) {
	kv, err := s.withKV()
	if err != nil {
		return nil, false, err
	}
	var stored contentRecord
	ok, err := kv.KVGet(contentKey(id), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	content := &Content{
		ID:               id,
		Creator:          stored.Creator,
		Hash:             stored.Hash,
		Timestamp:        int64(stored.Timestamp),
		IsPremium:        stored.IsPremium,
		TipEnabled:       stored.TipEnabled,
		TotalTips:        stored.TotalTips,
		TotalEngagements: stored.TotalEngagements,
	}
	if content.TotalTips == nil {
		content.TotalTips = big.NewInt(0)
	}
	return content, true, nil
}

// PlatformContentPut stores the content record.
func (s *State) PlatformContentPut(content *Content) error {
	kv, err := s.withKV()
	if err != nil {
		return err
	}
	if content == nil {
		return errors.New("platform state: content required")
	}
	record := contentRecord{
		Creator:          content.Creator,
		Hash:             content.Hash,
		Timestamp:        uint64(content.Timestamp),
		IsPremium:        content.IsPremium,
		TipEnabled:       content.TipEnabled,
		TotalTips:        content.TotalTips,
		TotalEngagements: content.TotalEngagements,
	}
	if record.TotalTips == nil {
		record.TotalTips = big.NewInt(0)
	}
	return kv.KVPut(contentKey(content.ID), record)
}

// PlatformContentSeqGet returns the next content id to allocate.
func (s *State) PlatformContentSeqGet() (uint64, error) {
	kv, err := s.withKV()
	if err != nil {
		return 0, err
	}
	var next uint64
	ok, err := kv.KVGet([]byte(contentSeqKey), &next)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return next, nil
}

// PlatformContentSeqPut advances the content id sequence.
func (s *State) PlatformContentSeqPut(next uint64) error {
	kv, err := s.withKV()
	if err != nil {
		return err
	}
	return kv.KVPut([]byte(contentSeqKey), next)
}

// PlatformSubscriptionGet loads the subscription for the pair.
func (s *State) PlatformSubscriptionGet(subscriber, creator [20]byte) (*Subscription, bool, error) {
	kv, err := s.withKV()
	if err != nil {
		return nil, false, err
	}
	var stored subscriptionRecord
	ok, err := kv.KVGet(subscriptionKey(subscriber, creator), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &Subscription{
		Subscriber: subscriber,
		Creator:    creator,
		Active:     stored.Active,
		Expiry:     int64(stored.Expiry),
	}, true, nil
}

// PlatformSubscriptionPut stores the subscription, overwriting any prior
// record for the pair.
func (s *State) PlatformSubscriptionPut(sub *Subscription) error {
	kv, err := s.withKV()
	if err != nil {
		return err
	}
	if sub == nil {
		return errors.New("platform state: subscription required")
	}
	record := subscriptionRecord{
		Active: sub.Active,
		Expiry: uint64(sub.Expiry),
	}
	return kv.KVPut(subscriptionKey(sub.Subscriber, sub.Creator), record)
}

// PlatformEngagementMarkGet reports whether the user has engaged the content.
func (s *State) PlatformEngagementMarkGet(id ContentID, user [20]byte) (bool, error) {
	kv, err := s.withKV()
	if err != nil {
		return false, err
	}
	return kv.KVGet(markKey(id, user), nil)
}

// PlatformEngagementMarkPut sets the write-once engagement mark.
func (s *State) PlatformEngagementMarkPut(id ContentID, user [20]byte) error {
	kv, err := s.withKV()
	if err != nil {
		return err
	}
	return kv.KVPut(markKey(id, user), true)
}

// PlatformEngagementScoreGet returns the user's engagement score, zero when
// the user has never engaged.
func (s *State) PlatformEngagementScoreGet(user [20]byte) (uint64, error) {
	kv, err := s.withKV()
	if err != nil {
		return 0, err
	}
	var score uint64
	ok, err := kv.KVGet(scoreKey(user), &score)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return score, nil
}

// PlatformEngagementScorePut stores the user's engagement score.
func (s *State) PlatformEngagementScorePut(user [20]byte, score uint64) error {
	kv, err := s.withKV()
	if err != nil {
		return err
	}
	return kv.KVPut(scoreKey(user), score)
}
