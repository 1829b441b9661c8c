package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/starixlabs/starix-core/internal/app/models"
	"github.com/starixlabs/starix-core/internal/infrastructures"
)

// QuoteParams are the inputs for a fixed-rate quote request: convert a USD
// settle amount into the deposit asset amount the exchange requires.
type QuoteParams struct {
	DepositCoin     string
	DepositNetwork  string
	SettleCoin      string
	SettleNetwork   string
	SettleAmountUSD decimal.Decimal
	ClientIP        string
}

type SideShiftService struct {
	client *infrastructures.SideShiftClient
}

func NewSideShiftService(client *infrastructures.SideShiftClient) *SideShiftService {
	return &SideShiftService{
		client: client,
	}
}

// GetPair fetches the exchange's limits and current rate for a pair. Used to
// reject redemptions outside exchange limits before a quote is attempted.
func (s *SideShiftService) GetPair(ctx context.Context, depositCoin, depositNetwork, settleCoin, settleNetwork string) (*models.SideShiftPair, error) {
	endpoint := fmt.Sprintf("/pair/%s-%s/%s-%s", depositCoin, depositNetwork, settleCoin, settleNetwork)

	var pair models.SideShiftPair
	if err := s.doRequest(ctx, "GET", endpoint, nil, "", &pair); err != nil {
		return nil, err
	}

	return &pair, nil
}

// RequestQuote requests a fixed-rate quote for converting the deposit asset
// into the settle asset worth the given USD amount.
func (s *SideShiftService) RequestQuote(ctx context.Context, params QuoteParams) (*models.SideShiftQuote, error) {
	quoteRequest := models.SideShiftQuoteRequest{
		DepositCoin:    params.DepositCoin,
		DepositNetwork: params.DepositNetwork,
		SettleCoin:     params.SettleCoin,
		SettleNetwork:  params.SettleNetwork,
		SettleAmount:   params.SettleAmountUSD.String(),
		AffiliateID:    s.client.AffiliateID,
	}

	var quote models.SideShiftQuote
	if err := s.doRequest(ctx, "POST", "/quotes", quoteRequest, params.ClientIP, &quote); err != nil {
		return nil, err
	}

	return &quote, nil
}

// CreateShift binds a quote to a concrete settle destination. The returned
// shift carries the deposit address the treasury must pay into. Fails when
// the quote has expired or the exchange rejects the destination.
func (s *SideShiftService) CreateShift(ctx context.Context, quoteID, settleAddress, settleMemo, clientIP string) (*models.SideShiftShift, error) {
	shiftRequest := models.SideShiftCreateShiftRequest{
		QuoteID:       quoteID,
		SettleAddress: settleAddress,
		SettleMemo:    settleMemo,
		AffiliateID:   s.client.AffiliateID,
	}

	var shift models.SideShiftShift
	if err := s.doRequest(ctx, "POST", "/shifts/fixed", shiftRequest, clientIP, &shift); err != nil {
		return nil, err
	}

	return &shift, nil
}

// GetShift fetches the current state of a shift. Shift status transitions
// are driven entirely by the exchange; this is a read-only poll.
func (s *SideShiftService) GetShift(ctx context.Context, shiftID string) (*models.SideShiftShift, error) {
	var shift models.SideShiftShift
	if err := s.doRequest(ctx, "GET", fmt.Sprintf("/shifts/%s", shiftID), nil, "", &shift); err != nil {
		return nil, err
	}

	return &shift, nil
}

func (s *SideShiftService) doRequest(ctx context.Context, method, endpoint string, payload any, clientIP string, out any) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.client.GetFullURL(endpoint), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	s.client.SetAuthHeaders(req, clientIP)

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errorResp models.SideShiftErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err == nil && errorResp.Error.Message != "" {
			return fmt.Errorf("exchange API error: %s", errorResp.Error.Message)
		}
		return fmt.Errorf("exchange API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
