package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SpreadsheetClient appends and rewrites rows in the events sheet.
type SpreadsheetClient interface {
	IsConfigured() bool
	AppendRow(ctx context.Context, sheetID string, values []string) (string, error)
	UpdateRow(ctx context.Context, sheetID, rowRef string, values []string) error
}

// SheetWebhookClient posts rows to a spreadsheet webhook (for example an
// Apps Script deployment) that answers with the row reference it wrote.
type SheetWebhookClient struct {
	webhookURL string
	apiKey     string
	httpClient *http.Client
}

func NewSheetWebhookClient(webhookURL, apiKey string) *SheetWebhookClient {
	return &SheetWebhookClient{
		webhookURL: strings.TrimSpace(webhookURL),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (sc *SheetWebhookClient) IsConfigured() bool {
	return sc.webhookURL != ""
}

type sheetRequest struct {
	Action  string   `json:"action"`
	SheetID string   `json:"sheet_id"`
	RowRef  string   `json:"row_ref,omitempty"`
	Values  []string `json:"values"`
}

type sheetResponse struct {
	RowRef string `json:"row_ref"`
	Error  string `json:"error"`
}

func (sc *SheetWebhookClient) AppendRow(ctx context.Context, sheetID string, values []string) (string, error) {
	out, err := sc.post(ctx, sheetRequest{Action: "append", SheetID: sheetID, Values: values})
	if err != nil {
		return "", err
	}
	if out.RowRef == "" {
		return "", fmt.Errorf("sheet webhook returned no row reference")
	}
	return out.RowRef, nil
}

func (sc *SheetWebhookClient) UpdateRow(ctx context.Context, sheetID, rowRef string, values []string) error {
	_, err := sc.post(ctx, sheetRequest{Action: "update", SheetID: sheetID, RowRef: rowRef, Values: values})
	return err
}

func (sc *SheetWebhookClient) post(ctx context.Context, payload sheetRequest) (*sheetResponse, error) {
	if !sc.IsConfigured() {
		return nil, fmt.Errorf("SHEET_WEBHOOK_URL is not set")
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshaling sheet request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sc.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating sheet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if sc.apiKey != "" {
		req.Header.Set("X-API-Key", sc.apiKey)
	}

	resp, err := sc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending sheet request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("error reading sheet response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sheet webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out sheetResponse
	if len(body) > 0 {
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("error decoding sheet response: %w", err)
		}
	}
	if out.Error != "" {
		return nil, fmt.Errorf("sheet webhook error: %s", out.Error)
	}
	return &out, nil
}
