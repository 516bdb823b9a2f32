package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t, "")
	out, _, err := env.run(t, "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "ntfy topic not configured")
}

func TestTestNotifySends(t *testing.T) {
	var title string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title = r.Header.Get("Title")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	env := setupCLITestEnv(t, "[notifications]\nntfy_topic = \""+server.URL+"\"\n")
	out, _, err := env.run(t, "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Test notification sent")
	if title != "wordglow - Test" {
		t.Fatalf("unexpected title %q", title)
	}
}
