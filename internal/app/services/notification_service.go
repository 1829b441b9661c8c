package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/starixlabs/starix-core/internal/app/models"
	"github.com/starixlabs/starix-core/internal/infrastructures"
)

// NotificationService delivers best-effort webhook notifications. Failures
// are logged and swallowed: a redemption that already moved funds must never
// surface a notification error to the caller.
type NotificationService struct {
	httpClient      *http.Client
	adminWebhookURL string
	userWebhookURL  string
}

func NewNotificationService() *NotificationService {
	var adminURL, userURL string
	if infrastructures.Config != nil {
		adminURL = infrastructures.Config.ADMIN_WEBHOOK_URL
		userURL = infrastructures.Config.USER_WEBHOOK_URL
	}

	return &NotificationService{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		adminWebhookURL: adminURL,
		userWebhookURL:  userURL,
	}
}

// NotifyRedemptionPending tells the user their redemption is in flight.
func (s *NotificationService) NotifyRedemptionPending(redemption *models.Redemption) {
	s.post(s.userWebhookURL, map[string]interface{}{
		"event":            "redemption_pending",
		"redemption_id":    redemption.ID,
		"settle_coin":      redemption.SettleCoin,
		"settle_network":   redemption.SettleNetwork,
		"estimated_amount": redemption.EstimatedSettleAmount,
	})
}

// NotifyAdminRedemptionFailed alerts admins that a redemption failed at or
// after the send stage.
func (s *NotificationService) NotifyAdminRedemptionFailed(card *models.GiftCard, reason string) {
	s.post(s.adminWebhookURL, map[string]interface{}{
		"event":     "redemption_failed",
		"card_code": card.Code,
		"value_usd": card.ValueUSD,
		"reason":    reason,
	})
}

// NotifyAdminTreasuryInsufficient alerts admins that the treasury needs
// funding, with the exact shortfall.
func (s *NotificationService) NotifyAdminTreasuryInsufficient(asset, network string, required, available string) {
	s.post(s.adminWebhookURL, map[string]interface{}{
		"event":     "treasury_insufficient",
		"asset":     asset,
		"network":   network,
		"required":  required,
		"available": available,
	})
}

func (s *NotificationService) post(url string, payload map[string]interface{}) {
	if url == "" {
		return
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		logrus.Warnf("notification marshal failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		logrus.Warnf("notification request failed: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logrus.Warnf("notification delivery failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		logrus.Warnf("notification delivery returned status %d", resp.StatusCode)
	}
}
