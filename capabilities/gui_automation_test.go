package capabilities

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPerformComputerAction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/computers/comp-1/actions" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer orgo-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if body["action"] != "click the button" {
			http.Error(w, "bad action", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, `{"status": "done", "detail": "button clicked"}`)
	}))
	defer server.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loader := testLoader(t, fmt.Sprintf(`
orgo_endpoint: %q
orgo_computer_id: "comp-1"
`, server.URL))
	var module Module
	perform := module.PerformComputerAction(server.Client(), loader, "orgo-key", logger)

	report, err := perform(t.Context(), "click the button")
	if err != nil {
		t.Fatal(err)
	}
	// the report is relayed verbatim
	if report != `{"status": "done", "detail": "button clicked"}` {
		t.Fatalf("got %q", report)
	}
}

func TestPerformComputerActionUnconfigured(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loader := testLoader(t, "")
	var module Module
	perform := module.PerformComputerAction(http.DefaultClient, loader, "", logger)

	_, err := perform(t.Context(), "click")
	if err == nil {
		t.Fatal("should error")
	}
}
