package rpc

import (
	"math/big"
	"strings"

	"creatorhub/core/types"
	"creatorhub/native/platform"
)

type registerParams struct {
	Caller      string `json:"caller"`
	ProfileData string `json:"profileData"`
}

type setFeeParams struct {
	Caller string `json:"caller"`
	Fee    string `json:"fee"`
}

type postContentParams struct {
	Caller     string `json:"caller"`
	Hash       string `json:"hash"`
	IsPremium  bool   `json:"isPremium"`
	TipEnabled bool   `json:"tipEnabled"`
}

type subscribeParams struct {
	Caller  string `json:"caller"`
	Creator string `json:"creator"`
}

type tipParams struct {
	Caller    string `json:"caller"`
	ContentID uint64 `json:"contentId"`
	Amount    string `json:"amount"`
}

type engageParams struct {
	Caller    string `json:"caller"`
	ContentID uint64 `json:"contentId"`
	Type      string `json:"type"`
}

type addressParams struct {
	Address string `json:"address"`
}

type contentParams struct {
	ContentID uint64 `json:"contentId"`
}

type isSubscribedParams struct {
	User    string `json:"user"`
	Creator string `json:"creator"`
}

type profileResult struct {
	Address     string `json:"address"`
	ProfileData string `json:"profileData"`
	CreatedAt   int64  `json:"createdAt"`
}

type statsResult struct {
	Address           string `json:"address"`
	TotalSubscribers  uint64 `json:"totalSubscribers"`
	TotalContent      uint64 `json:"totalContent"`
	TotalTipsReceived string `json:"totalTipsReceived"`
	SubscriptionFee   string `json:"subscriptionFee"`
	EngagementScore   uint64 `json:"engagementScore"`
}

type contentResult struct {
	ID               uint64 `json:"id"`
	Creator          string `json:"creator"`
	Hash             string `json:"hash"`
	Timestamp        int64  `json:"timestamp"`
	IsPremium        bool   `json:"isPremium"`
	TipEnabled       bool   `json:"tipEnabled"`
	TotalTips        string `json:"totalTips"`
	TotalEngagements uint64 `json:"totalEngagements"`
}

type subscriptionResult struct {
	Subscriber string `json:"subscriber"`
	Creator    string `json:"creator"`
	Active     bool   `json:"active"`
	Expiry     int64  `json:"expiry"`
}

type engagementResult struct {
	ContentID uint64 `json:"contentId"`
	User      string `json:"user"`
	Type      string `json:"type"`
	At        int64  `json:"at"`
}

type isSubscribedResult struct {
	Subscribed bool `json:"subscribed"`
}

type engagementScoreResult struct {
	Address string `json:"address"`
	Score   uint64 `json:"score"`
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseAmount(raw string) (*big.Int, *RPCError) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errInvalidParams("amount is required")
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, errInvalidParams("amount must be a base-10 integer")
	}
	return amount, nil
}

func parseAddr(raw, field string) ([20]byte, *RPCError) {
	addr, err := platform.ParseAddress(raw)
	if err != nil {
		return addr, errInvalidParams("invalid " + field + " address")
	}
	return addr, nil
}

func formatStats(stats *platform.Stats) statsResult {
	return statsResult{
		Address:           platform.FormatAddress(stats.Address),
		TotalSubscribers:  stats.TotalSubscribers,
		TotalContent:      stats.TotalContent,
		TotalTipsReceived: bigString(stats.TotalTipsReceived),
		SubscriptionFee:   bigString(stats.SubscriptionFee),
		EngagementScore:   stats.EngagementScore,
	}
}

func formatContent(content *platform.Content) contentResult {
	return contentResult{
		ID:               content.ID,
		Creator:          platform.FormatAddress(content.Creator),
		Hash:             content.Hash,
		Timestamp:        content.Timestamp,
		IsPremium:        content.IsPremium,
		TipEnabled:       content.TipEnabled,
		TotalTips:        bigString(content.TotalTips),
		TotalEngagements: content.TotalEngagements,
	}
}

func (s *Server) handleRegister(req *RPCRequest) (interface{}, *RPCError) {
	var params registerParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAddr(params.Caller, "caller")
	if rpcErr != nil {
		return nil, rpcErr
	}
	profile, err := s.engine.Register(caller, params.ProfileData)
	if err != nil {
		return nil, errLedger(err)
	}
	return profileResult{
		Address:     platform.FormatAddress(profile.Address),
		ProfileData: profile.ProfileData,
		CreatedAt:   profile.CreatedAt,
	}, nil
}

func (s *Server) handleSetSubscriptionFee(req *RPCRequest) (interface{}, *RPCError) {
	var params setFeeParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAddr(params.Caller, "caller")
	if rpcErr != nil {
		return nil, rpcErr
	}
	fee, rpcErr := parseAmount(params.Fee)
	if rpcErr != nil {
		return nil, rpcErr
	}
	stats, err := s.engine.SetSubscriptionFee(caller, fee)
	if err != nil {
		return nil, errLedger(err)
	}
	return formatStats(stats), nil
}

func (s *Server) handlePostContent(req *RPCRequest) (interface{}, *RPCError) {
	var params postContentParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAddr(params.Caller, "caller")
	if rpcErr != nil {
		return nil, rpcErr
	}
	content, err := s.engine.PostContent(caller, params.Hash, params.IsPremium, params.TipEnabled)
	if err != nil {
		return nil, errLedger(err)
	}
	return formatContent(content), nil
}

func (s *Server) handleSubscribe(req *RPCRequest) (interface{}, *RPCError) {
	var params subscribeParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAddr(params.Caller, "caller")
	if rpcErr != nil {
		return nil, rpcErr
	}
	creator, rpcErr := parseAddr(params.Creator, "creator")
	if rpcErr != nil {
		return nil, rpcErr
	}
	sub, err := s.engine.Subscribe(caller, creator)
	if err != nil {
		return nil, errLedger(err)
	}
	return subscriptionResult{
		Subscriber: platform.FormatAddress(sub.Subscriber),
		Creator:    platform.FormatAddress(sub.Creator),
		Active:     sub.Active,
		Expiry:     sub.Expiry,
	}, nil
}

func (s *Server) handleTip(req *RPCRequest) (interface{}, *RPCError) {
	var params tipParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAddr(params.Caller, "caller")
	if rpcErr != nil {
		return nil, rpcErr
	}
	amount, rpcErr := parseAmount(params.Amount)
	if rpcErr != nil {
		return nil, rpcErr
	}
	content, err := s.engine.Tip(caller, params.ContentID, amount)
	if err != nil {
		return nil, errLedger(err)
	}
	return formatContent(content), nil
}

func (s *Server) handleEngage(req *RPCRequest) (interface{}, *RPCError) {
	var params engageParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAddr(params.Caller, "caller")
	if rpcErr != nil {
		return nil, rpcErr
	}
	engagement, err := s.engine.Engage(caller, params.ContentID, params.Type)
	if err != nil {
		return nil, errLedger(err)
	}
	return engagementResult{
		ContentID: engagement.ContentID,
		User:      platform.FormatAddress(engagement.User),
		Type:      engagement.Kind,
		At:        engagement.At,
	}, nil
}

func (s *Server) handleCreatorStats(req *RPCRequest) (interface{}, *RPCError) {
	var params addressParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	addr, rpcErr := parseAddr(params.Address, "creator")
	if rpcErr != nil {
		return nil, rpcErr
	}
	stats, err := s.engine.CreatorStats(addr)
	if err != nil {
		return nil, errLedger(err)
	}
	return formatStats(stats), nil
}

func (s *Server) handleContent(req *RPCRequest) (interface{}, *RPCError) {
	var params contentParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	content, err := s.engine.ContentByID(params.ContentID)
	if err != nil {
		return nil, errLedger(err)
	}
	return formatContent(content), nil
}

func (s *Server) handleIsSubscribed(req *RPCRequest) (interface{}, *RPCError) {
	var params isSubscribedParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	user, rpcErr := parseAddr(params.User, "user")
	if rpcErr != nil {
		return nil, rpcErr
	}
	creator, rpcErr := parseAddr(params.Creator, "creator")
	if rpcErr != nil {
		return nil, rpcErr
	}
	subscribed, err := s.engine.IsSubscribed(user, creator)
	if err != nil {
		return nil, errLedger(err)
	}
	return isSubscribedResult{Subscribed: subscribed}, nil
}

func (s *Server) handleEngagementScore(req *RPCRequest) (interface{}, *RPCError) {
	var params addressParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	addr, rpcErr := parseAddr(params.Address, "user")
	if rpcErr != nil {
		return nil, rpcErr
	}
	score, err := s.engine.UserEngagementScore(addr)
	if err != nil {
		return nil, errLedger(err)
	}
	return engagementScoreResult{Address: platform.FormatAddress(addr), Score: score}, nil
}

func (s *Server) handleEvents(req *RPCRequest) (interface{}, *RPCError) {
	if len(req.Params) != 0 {
		return nil, errInvalidParams("no parameters expected")
	}
	if s.recorder == nil {
		return []*types.Event{}, nil
	}
	tail := s.recorder.Events()
	out := make([]*types.Event, 0, len(tail))
	for _, evt := range tail {
		if carrier, ok := evt.(interface{ Event() *types.Event }); ok {
			out = append(out, carrier.Event())
		}
	}
	return out, nil
}
