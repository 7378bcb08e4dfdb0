package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"creatorhub/core/events"
	"creatorhub/native/platform"
	"creatorhub/storage"
)

const testAuthToken = "local-test-token"

func newTestServer(t *testing.T) (*httptest.Server, *platform.Engine) {
	t.Helper()
	engine := platform.NewEngine()
	engine.SetState(platform.NewState(storage.NewKV(storage.NewMemDB())))
	engine.SetNowFunc(func() int64 { return 1_000 })
	recorder := events.NewRecorder(32)
	engine.SetEmitter(recorder)
	server := httptest.NewServer(NewServer(engine, recorder, testAuthToken, nil))
	t.Cleanup(server.Close)
	return server, engine
}

func rpcCall(t *testing.T, url, method string, params interface{}, authed bool) RPCResponse {
	t.Helper()
	envelope := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
	}
	if params != nil {
		envelope["params"] = []interface{}{params}
	} else {
		envelope["params"] = []interface{}{}
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+testAuthToken)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("call %s: %v", method, err)
	}
	defer resp.Body.Close()
	var decoded RPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode %s response: %v", method, err)
	}
	return decoded
}

func resultInto(t *testing.T, resp RPCResponse, out interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected rpc error: %+v", resp.Error)
	}
	raw, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("re-marshal result: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode result: %v", err)
	}
}

func testAddr(last byte) string {
	return fmt.Sprintf("0x%038x%02x", 0, last)
}

func TestMutatingMethodsRequireAuth(t *testing.T) {
	server, _ := newTestServer(t)
	resp := rpcCall(t, server.URL, "platform_register", registerParams{
		Caller:      testAddr(0x01),
		ProfileData: "alice",
	}, false)
	if resp.Error == nil || resp.Error.Code != codeUnauthorized {
		t.Fatalf("expected unauthorized, got %+v", resp.Error)
	}
}

func TestLedgerFlowOverRPC(t *testing.T) {
	server, _ := newTestServer(t)
	creator := testAddr(0x01)
	fan := testAddr(0x02)

	var profile profileResult
	resultInto(t, rpcCall(t, server.URL, "platform_register", registerParams{
		Caller:      creator,
		ProfileData: "alice",
	}, true), &profile)
	if profile.ProfileData != "alice" {
		t.Fatalf("profile: %+v", profile)
	}

	resp := rpcCall(t, server.URL, "platform_register", registerParams{
		Caller:      creator,
		ProfileData: "alice",
	}, true)
	if resp.Error == nil || resp.Error.Code != codeLedgerRejected {
		t.Fatalf("expected ledger rejection for repeat registration, got %+v", resp.Error)
	}

	var stats statsResult
	resultInto(t, rpcCall(t, server.URL, "platform_setSubscriptionFee", setFeeParams{
		Caller: creator,
		Fee:    "100",
	}, true), &stats)
	if stats.SubscriptionFee != "100" {
		t.Fatalf("fee: %+v", stats)
	}

	var content contentResult
	resultInto(t, rpcCall(t, server.URL, "platform_postContent", postContentParams{
		Caller:     creator,
		Hash:       "hash1",
		IsPremium:  true,
		TipEnabled: true,
	}, true), &content)
	if content.ID != 0 || !content.IsPremium {
		t.Fatalf("content: %+v", content)
	}

	resp = rpcCall(t, server.URL, "platform_engage", engageParams{
		Caller:    fan,
		ContentID: 0,
		Type:      "LIKE",
	}, true)
	if resp.Error == nil || resp.Error.Code != codeLedgerRejected {
		t.Fatalf("expected premium gate, got %+v", resp.Error)
	}

	var sub subscriptionResult
	resultInto(t, rpcCall(t, server.URL, "platform_subscribe", subscribeParams{
		Caller:  fan,
		Creator: creator,
	}, true), &sub)
	if !sub.Active {
		t.Fatalf("subscription: %+v", sub)
	}

	var engagement engagementResult
	resultInto(t, rpcCall(t, server.URL, "platform_engage", engageParams{
		Caller:    fan,
		ContentID: 0,
		Type:      "LIKE",
	}, true), &engagement)
	if engagement.Type != "LIKE" {
		t.Fatalf("engagement: %+v", engagement)
	}

	resultInto(t, rpcCall(t, server.URL, "platform_tip", tipParams{
		Caller:    fan,
		ContentID: 0,
		Amount:    "50",
	}, true), &content)
	if content.TotalTips != "50" || content.TotalEngagements != 1 {
		t.Fatalf("content after tip: %+v", content)
	}

	var subscribed isSubscribedResult
	resultInto(t, rpcCall(t, server.URL, "platform_isSubscribed", isSubscribedParams{
		User:    fan,
		Creator: creator,
	}, false), &subscribed)
	if !subscribed.Subscribed {
		t.Fatal("expected active subscription")
	}

	var score engagementScoreResult
	resultInto(t, rpcCall(t, server.URL, "platform_engagementScore", addressParams{
		Address: fan,
	}, false), &score)
	if score.Score != 1 {
		t.Fatalf("score: %+v", score)
	}

	resultInto(t, rpcCall(t, server.URL, "platform_creatorStats", addressParams{
		Address: creator,
	}, false), &stats)
	if stats.TotalContent != 1 || stats.TotalSubscribers != 1 || stats.TotalTipsReceived != "50" {
		t.Fatalf("stats: %+v", stats)
	}

	var tail []struct {
		Type string `json:"type"`
	}
	resultInto(t, rpcCall(t, server.URL, "platform_events", nil, false), &tail)
	if len(tail) == 0 {
		t.Fatal("expected recorded events")
	}
	if tail[0].Type != platform.EventTypeCreatorRegistered {
		t.Fatalf("first event: %+v", tail[0])
	}
}

func TestUnknownMethod(t *testing.T) {
	server, _ := newTestServer(t)
	resp := rpcCall(t, server.URL, "platform_unknown", nil, false)
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("expected method not found, got %+v", resp.Error)
	}
}

func TestContentNotFoundOverRPC(t *testing.T) {
	server, _ := newTestServer(t)
	resp := rpcCall(t, server.URL, "platform_content", contentParams{ContentID: 7}, false)
	if resp.Error == nil || resp.Error.Code != codeLedgerRejected {
		t.Fatalf("expected not found rejection, got %+v", resp.Error)
	}
}
