// Package pnrapi talks to the external PNR status service and merges its
// authoritative passenger data with OCR-extracted names.
package pnrapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/guestlist-ops/ticket-reconciler/internal/common"
)

// StatusData is the authoritative per-PNR payload. Date fields are free-form
// strings like "Feb 13, 2026 4:25:00 PM".
type StatusData struct {
	PNRNumber     string            `json:"pnrNumber"`
	TrainNumber   string            `json:"trainNumber"`
	TrainName     string            `json:"trainName"`
	DateOfJourney string            `json:"dateOfJourney"`
	ArrivalDate   string            `json:"arrivalDate"`
	PassengerList []StatusPassenger `json:"passengerList"`
}

// StatusPassenger carries booking and current seat assignments; current
// values win when present.
type StatusPassenger struct {
	BookingCoachID       string      `json:"bookingCoachId"`
	CurrentCoachID       string      `json:"currentCoachId"`
	BookingBerthNo       json.Number `json:"bookingBerthNo"`
	CurrentBerthNo       json.Number `json:"currentBerthNo"`
	BookingBerthCode     string      `json:"bookingBerthCode"`
	CurrentBerthCode     string      `json:"currentBerthCode"`
	CurrentStatusDetails string      `json:"currentStatusDetails"`
}

type statusResponse struct {
	Success bool        `json:"success"`
	Data    *StatusData `json:"data"`
}

// Client queries the PNR status service. The service is treated as
// unreliable: timeouts, non-200s and empty payloads all map to
// common.ErrLookupFailed rather than raw transport errors.
type Client struct {
	httpClient *http.Client
	baseURL    string
	host       string
	apiKey     string
	logger     *slog.Logger
}

func NewClient(host, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://" + host,
		host:       host,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// Lookup fetches the status record for one PNR.
func (c *Client) Lookup(ctx context.Context, pnr string) (*StatusData, error) {
	url := fmt.Sprintf("%s/getPNRStatus/%s", c.baseURL, pnr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, common.WrapError(err, "build request")
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("pnrapi.lookup.transport_error", "pnr", pnr, "error", err)
		return nil, common.NewAppError("LOOKUP_TRANSPORT", "pnr status request failed", common.ErrLookupFailed)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.logger.Warn("pnrapi.lookup.body_close_error", "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("pnrapi.lookup.read_error", "pnr", pnr, "error", err)
		return nil, common.NewAppError("LOOKUP_TRANSPORT", "reading status payload", common.ErrLookupFailed)
	}
	c.logger.Info("pnrapi.lookup.response",
		"pnr", pnr,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, common.NewAppError("LOOKUP_STATUS",
			fmt.Sprintf("pnr status returned %d", resp.StatusCode), common.ErrLookupFailed)
	}

	if err := validateStatusPayload(raw); err != nil {
		c.logger.Error("pnrapi.lookup.schema_error", "pnr", pnr, "error", err)
		return nil, common.NewAppError("LOOKUP_SCHEMA", "malformed status payload", common.ErrLookupFailed)
	}

	var sr statusResponse
	if err := json.Unmarshal(raw, &sr); err != nil {
		return nil, common.NewAppError("LOOKUP_DECODE", "decoding status payload", common.ErrLookupFailed)
	}
	if !sr.Success || sr.Data == nil {
		return nil, common.NewAppError("LOOKUP_EMPTY", "status payload carries no data", common.ErrLookupFailed)
	}
	return sr.Data, nil
}
