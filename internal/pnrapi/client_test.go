package pnrapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/guestlist-ops/ticket-reconciler/internal/common"
)

const samplePayload = `{
	"success": true,
	"data": {
		"pnrNumber": "6562526496",
		"trainNumber": "12817",
		"trainName": "JHARKHAND SJ EXP",
		"dateOfJourney": "Feb 13, 2026 4:25:00 PM",
		"arrivalDate": "Feb 14, 2026 6:10:00 AM",
		"passengerList": [
			{"currentCoachId": "B2", "currentBerthNo": 32, "currentBerthCode": "LB", "currentStatusDetails": "CNF"},
			{"bookingCoachId": "B2", "bookingBerthNo": 33, "bookingBerthCode": "MB", "currentStatusDetails": "CNF"}
		]
	}
}`

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("example.test", "key", 2*time.Second, nil)
	c.baseURL = srv.URL
	return c
}

func TestLookupSuccess(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getPNRStatus/6562526496" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("x-rapidapi-key") != "key" {
			t.Errorf("missing api key header")
		}
		w.Write([]byte(samplePayload))
	})

	data, err := c.Lookup(context.Background(), "6562526496")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if data.TrainNumber != "12817" || len(data.PassengerList) != 2 {
		t.Errorf("unexpected data: %+v", data)
	}
}

func TestLookupFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "success false",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"success": false}`))
			},
		},
		{
			name: "missing data",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"success": true}`))
			},
		},
		{
			name: "schema violation",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"success": "yes"}`))
			},
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>rate limited</html>`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, tt.handler)
			_, err := c.Lookup(context.Background(), "6562526496")
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, common.ErrLookupFailed) {
				t.Errorf("error %v is not ErrLookupFailed", err)
			}
		})
	}
}

func TestLookupTruncatedBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Promise more bytes than are sent; the client's read fails mid-body.
		w.Header().Set("Content-Length", "500")
		w.Write([]byte(`{"success": true`))
	})

	_, err := c.Lookup(context.Background(), "6562526496")
	if err == nil {
		t.Fatal("expected error")
	}
	var appErr *common.AppError
	if !errors.As(err, &appErr) || appErr.Code != "LOOKUP_TRANSPORT" {
		t.Errorf("error %v, want LOOKUP_TRANSPORT", err)
	}
}

func TestLookupTransportError(t *testing.T) {
	c := NewClient("example.test", "key", time.Second, nil)
	c.baseURL = "http://127.0.0.1:1" // nothing listens here

	_, err := c.Lookup(context.Background(), "6562526496")
	if !errors.Is(err, common.ErrLookupFailed) {
		t.Errorf("error %v is not ErrLookupFailed", err)
	}
}
