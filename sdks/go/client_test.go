package sentinelgate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestEvaluateCapabilityAllow(t *testing.T) {
	var receivedBody CapabilityEvaluateRequest
	var receivedTenant, receivedSession string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/api/v1/policy/evaluate-capability" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		receivedTenant = r.Header.Get("x-tenant-id")
		receivedSession = r.Header.Get("x-session-id")

		if err := json.NewDecoder(r.Body).Decode(&receivedBody); err != nil {
			t.Fatalf("decode request body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(EvaluateResponse{
			Decision: PolicyDecision{Type: DecisionAllow},
			Explanation: Explanation{
				Decision:     DecisionAllow,
				CapabilityID: "fs.read",
				ReasonChain:  []string{"capability allowed"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(
		WithServerAddr(server.URL),
		WithTenantID("tenant-1"),
		WithSessionID("session-1"),
	)

	resp, err := client.EvaluateCapability(context.Background(), CapabilityEvaluateRequest{
		CapabilityID: "fs.read",
		IntentType:   "tool_call",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Decision.Type != DecisionAllow {
		t.Errorf("expected allow, got %s", resp.Decision.Type)
	}
	if receivedBody.CapabilityID != "fs.read" {
		t.Errorf("expected CapabilityID=fs.read, got %s", receivedBody.CapabilityID)
	}
	if receivedTenant != "tenant-1" {
		t.Errorf("expected x-tenant-id=tenant-1, got %s", receivedTenant)
	}
	if receivedSession != "session-1" {
		t.Errorf("expected x-session-id=session-1, got %s", receivedSession)
	}
}

func TestEvaluateCapabilityDeny(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(EvaluateResponse{
			Decision: PolicyDecision{Type: DecisionDeny, Reason: "write operations not permitted"},
			Explanation: Explanation{
				Decision:      DecisionDeny,
				CapabilityID:  "fs.write",
				FailedRule:    "fs.write requires step-up",
				CorrelationID: "corr-1",
			},
		})
	}))
	defer server.Close()

	client := NewClient(WithServerAddr(server.URL))

	_, err := client.EvaluateCapability(context.Background(), CapabilityEvaluateRequest{
		CapabilityID: "fs.write",
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var denied *PolicyDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected *PolicyDeniedError, got %T: %v", err, err)
	}
	if denied.Reason != "write operations not permitted" {
		t.Errorf("unexpected reason: %s", denied.Reason)
	}
	if !errors.Is(err, ErrPolicyDenied) {
		t.Error("expected errors.Is(err, ErrPolicyDenied) to be true")
	}
}

func TestEvaluateCapabilityStepUpRequired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(EvaluateResponse{
			Decision: PolicyDecision{Type: DecisionRequireStepUp, ChallengeID: "chal-9"},
		})
	}))
	defer server.Close()

	client := NewClient(WithServerAddr(server.URL))

	_, err := client.EvaluateCapability(context.Background(), CapabilityEvaluateRequest{
		CapabilityID: "governance.override",
	})
	var stepUp *StepUpRequiredError
	if !errors.As(err, &stepUp) {
		t.Fatalf("expected *StepUpRequiredError, got %T: %v", err, err)
	}
	if stepUp.ChallengeID != "chal-9" {
		t.Errorf("expected challenge chal-9, got %s", stepUp.ChallengeID)
	}
	if !errors.Is(err, ErrStepUpRequired) {
		t.Error("expected errors.Is(err, ErrStepUpRequired) to be true")
	}
}

func TestEvaluateSpaceAccess(t *testing.T) {
	var receivedBody SpaceEvaluateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/api/v1/policy/evaluate-space" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&receivedBody); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(EvaluateResponse{
			Decision: PolicyDecision{Type: DecisionAllow},
		})
	}))
	defer server.Close()

	client := NewClient(WithServerAddr(server.URL))

	resp, err := client.EvaluateSpaceAccess(context.Background(), SpaceEvaluateRequest{
		SpaceID: "workspace-main",
		Action:  SpaceActionOpenWindow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Decision.Type != DecisionAllow {
		t.Errorf("expected allow, got %s", resp.Decision.Type)
	}
	if receivedBody.SpaceID != "workspace-main" {
		t.Errorf("expected SpaceID=workspace-main, got %s", receivedBody.SpaceID)
	}
	if receivedBody.Action != SpaceActionOpenWindow {
		t.Errorf("expected Action=openWindow, got %s", receivedBody.Action)
	}
}

func TestCheckCapability(t *testing.T) {
	allow := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := PolicyDecision{Type: DecisionDeny, Reason: "no"}
		if allow {
			decision = PolicyDecision{Type: DecisionAllow}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(EvaluateResponse{Decision: decision})
	}))
	defer server.Close()

	client := NewClient(WithServerAddr(server.URL))

	ok, err := client.CheckCapability(context.Background(), CapabilityEvaluateRequest{CapabilityID: "fs.read"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected true")
	}

	allow = false
	ok, err = client.CheckCapability(context.Background(), CapabilityEvaluateRequest{CapabilityID: "fs.write"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected false on deny")
	}
}

func TestEvaluateCapability_ServerUnreachable_FailOpen(t *testing.T) {
	client := NewClient(
		WithServerAddr("http://127.0.0.1:1"), // nothing listens here
		WithFailMode("open"),
		WithTimeout(200*time.Millisecond),
	)

	resp, err := client.EvaluateCapability(context.Background(), CapabilityEvaluateRequest{CapabilityID: "fs.read"})
	if err != nil {
		t.Fatalf("expected fail-open to suppress the error, got: %v", err)
	}
	if resp.Decision.Type != DecisionAllow {
		t.Errorf("expected allow on fail-open, got %s", resp.Decision.Type)
	}
}

func TestEvaluateCapability_ServerUnreachable_FailClosed(t *testing.T) {
	client := NewClient(
		WithServerAddr("http://127.0.0.1:1"),
		WithFailMode("closed"),
		WithTimeout(200*time.Millisecond),
	)

	_, err := client.EvaluateCapability(context.Background(), CapabilityEvaluateRequest{CapabilityID: "fs.read"})
	if err == nil {
		t.Fatal("expected error")
	}
	var unreachable *ServerUnreachableError
	if !errors.As(err, &unreachable) {
		t.Fatalf("expected *ServerUnreachableError, got %T: %v", err, err)
	}
	if !errors.Is(err, ErrServerUnreachable) {
		t.Error("expected errors.Is(err, ErrServerUnreachable) to be true")
	}
}

func TestEvaluateCapability_CachesAllowDecisions(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(EvaluateResponse{Decision: PolicyDecision{Type: DecisionAllow}})
	}))
	defer server.Close()

	client := NewClient(WithServerAddr(server.URL), WithCacheTTL(time.Minute))

	req := CapabilityEvaluateRequest{CapabilityID: "fs.read"}
	if _, err := client.EvaluateCapability(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := client.EvaluateCapability(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 server call (second served from cache), got %d", calls)
	}
}

func TestEvaluateCapability_DoesNotCacheDeny(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(EvaluateResponse{Decision: PolicyDecision{Type: DecisionDeny, Reason: "no"}})
	}))
	defer server.Close()

	client := NewClient(WithServerAddr(server.URL), WithCacheTTL(time.Minute))

	req := CapabilityEvaluateRequest{CapabilityID: "fs.write"}
	client.EvaluateCapability(context.Background(), req)
	client.EvaluateCapability(context.Background(), req)
	if calls != 2 {
		t.Errorf("expected 2 server calls (deny never cached), got %d", calls)
	}
}
