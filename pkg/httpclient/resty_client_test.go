package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRestyClientPostSendsBodyVerbatim(t *testing.T) {
	var gotBody string
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		if got := r.Header.Get("X-Test"); got != "1" {
			t.Errorf("missing header, got %q", got)
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := NewRestyClient(0)
	resp, err := client.Post(context.Background(), srv.URL, []byte("[out:csv];"), map[string]string{"X-Test": "1"})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Fatalf("expected POST, got %s", gotMethod)
	}
	if gotBody != "[out:csv];" {
		t.Fatalf("unexpected body %q", gotBody)
	}
	if !IsSuccess(resp) || string(resp.Body()) != "ok" {
		t.Fatalf("unexpected response %d %q", resp.StatusCode(), resp.Body())
	}
}

func TestRestyClientGetReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "busy", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	resp, err := NewRestyClient(0).Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode() != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode())
	}
	if IsSuccess(resp) {
		t.Fatalf("429 must not count as success")
	}
	if resp.Status() == "" {
		t.Fatalf("expected status text")
	}
}

func TestIsSuccessNilResponse(t *testing.T) {
	if IsSuccess(nil) {
		t.Fatalf("nil response must not be a success")
	}
}
