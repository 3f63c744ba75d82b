package main

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
)

func apiEvent(method, path, query, body string, headers map[string]string) events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		RawPath:        path,
		RawQueryString: query,
		Body:           body,
		Headers:        headers,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			DomainName: "hooks.ares.com.py",
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method: method,
				Path:   path,
			},
		},
	}
}

func testConfig(url string) config {
	return config{upstreamBaseURL: url, upstreamTimeout: time.Second}
}

func TestHandleHealth(t *testing.T) {
	resp := handle(context.Background(), testConfig("http://example.com"), http.DefaultClient, apiEvent(http.MethodGet, "/health", "", "", nil))
	if resp.StatusCode != http.StatusOK || resp.Body != "ok" {
		t.Fatalf("unexpected health response %d %q", resp.StatusCode, resp.Body)
	}
}

func TestHandleRejectsUnknownPathAndMethod(t *testing.T) {
	cfg := testConfig("http://example.com")
	if resp := handle(context.Background(), cfg, http.DefaultClient, apiEvent(http.MethodPost, "/webhooks/telnyx", "", "", nil)); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if resp := handle(context.Background(), cfg, http.DefaultClient, apiEvent(http.MethodPut, "/webhook", "", "", nil)); resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestHandleForwardsVerification(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/webhook" {
			t.Errorf("unexpected upstream request %s %s", r.Method, r.URL.Path)
		}
		_, _ = io.WriteString(w, r.URL.Query().Get("hub.challenge"))
	}))
	defer upstream.Close()

	evt := apiEvent(http.MethodGet, "/webhook", "hub.mode=subscribe&hub.verify_token=t&hub.challenge=987", "", nil)
	resp := handle(context.Background(), testConfig(upstream.URL), upstream.Client(), evt)
	if resp.StatusCode != http.StatusOK || resp.Body != "987" {
		t.Fatalf("unexpected verification response %d %q", resp.StatusCode, resp.Body)
	}
}

func TestHandleForwardsSignedDelivery(t *testing.T) {
	payload := `{"object":"whatsapp_business_account"}`
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if string(body) != payload {
			t.Errorf("body was not forwarded verbatim: %q", body)
		}
		if got := r.Header.Get("X-Hub-Signature-256"); got != "sha256=abc" {
			t.Errorf("signature header not forwarded: %q", got)
		}
		if got := r.Header.Get("X-Forwarded-Host"); got != "hooks.ares.com.py" {
			t.Errorf("unexpected forwarded host %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"success"}`)
	}))
	defer upstream.Close()

	evt := apiEvent(http.MethodPost, "/webhooks/whatsapp", "", base64.StdEncoding.EncodeToString([]byte(payload)), map[string]string{
		"content-type":        "application/json",
		"x-hub-signature-256": "sha256=abc",
	})
	evt.IsBase64Encoded = true

	resp := handle(context.Background(), testConfig(upstream.URL), upstream.Client(), evt)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Headers["content-type"] != "application/json" {
		t.Fatalf("expected content type passthrough, got %v", resp.Headers)
	}
}

func TestHandleUpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := upstream.URL
	upstream.Close()

	resp := handle(context.Background(), testConfig(url), http.DefaultClient, apiEvent(http.MethodPost, "/webhook", "", "{}", nil))
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "")
	if _, err := loadConfig(); err == nil {
		t.Fatal("expected error without upstream url")
	}
	t.Setenv("UPSTREAM_BASE_URL", "https://api.ares.com.py/")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.upstreamBaseURL != "https://api.ares.com.py" || cfg.upstreamTimeout != 3*time.Second {
		t.Fatalf("unexpected config %+v", cfg)
	}
}
