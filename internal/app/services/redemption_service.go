package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/starixlabs/starix-core/internal/app/errors"
	"github.com/starixlabs/starix-core/internal/app/models"
	"github.com/starixlabs/starix-core/internal/infrastructures"
	"gorm.io/gorm"
)

// CardGateway is the slice of gift card operations the orchestrator needs.
type CardGateway interface {
	FindByAnyCode(code string) (*models.GiftCard, error)
	VerifyPassword(card *models.GiftCard, password string) bool
	MarkExpired(cardId uuid.UUID) error
	MarkRedeemed(cardId uuid.UUID, meta models.GiftCardRedemptionMeta) (bool, error)
	Reactivate(cardId uuid.UUID) error
}

// TreasuryGateway is the slice of treasury operations the orchestrator needs.
type TreasuryGateway interface {
	GetPrimaryWallet() (*models.TreasuryWallet, error)
	CanAutoSend(network string) bool
	GetBalance(ctx context.Context, address, asset, network string) (*models.TreasuryBalance, error)
	SendFromTreasury(ctx context.Context, asset, network, destination string, amount decimal.Decimal) *models.TreasurySendResult
}

// ShiftGateway talks to the conversion exchange.
type ShiftGateway interface {
	RequestQuote(ctx context.Context, params QuoteParams) (*models.SideShiftQuote, error)
	CreateShift(ctx context.Context, quoteID, settleAddress, settleMemo, clientIP string) (*models.SideShiftShift, error)
	GetShift(ctx context.Context, shiftID string) (*models.SideShiftShift, error)
}

// RedemptionNotifier delivers best-effort notifications.
type RedemptionNotifier interface {
	NotifyRedemptionPending(redemption *models.Redemption)
	NotifyAdminRedemptionFailed(card *models.GiftCard, reason string)
	NotifyAdminTreasuryInsufficient(asset, network, required, available string)
}

// IntentLogger writes the durable pre-send intent record.
type IntentLogger interface {
	LogRedemptionAttempt(cardID uuid.UUID, shiftID string, detail interface{}) error
}

// walletLocks serializes the balance-check-then-send window per treasury
// wallet, so two concurrent redemptions cannot both pass the solvency gate
// and overdraw. In-process only; a multi-instance deployment would need a
// shared lease instead.
type walletLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newWalletLocks() *walletLocks {
	return &walletLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *walletLocks) get(id uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}

// RedemptionService sequences a gift card redemption: lookup, password and
// status checks, payout calculation, treasury solvency, quote, shift
// creation, the irreversible treasury send, and only then the durable
// commit. The ordering is the core correctness property: the card flips to
// REDEEMED strictly after on-chain inclusion is confirmed, so every failure
// before that point leaves the card redeemable.
type RedemptionService struct {
	validator *infrastructures.Validator
	cards     CardGateway
	treasury  TreasuryGateway
	shifts    ShiftGateway
	store     RedemptionStore
	audits    IntentLogger
	notifier  RedemptionNotifier
	sendLocks *walletLocks
}

func NewRedemptionService(db *gorm.DB, validator *infrastructures.Validator, cards *GiftCardService, treasury *TreasuryService, shifts *SideShiftService, audits *AuditService, notifier *NotificationService) *RedemptionService {
	return &RedemptionService{
		validator: validator,
		cards:     cards,
		treasury:  treasury,
		shifts:    shifts,
		store:     NewRedemptionStore(db),
		audits:    audits,
		notifier:  notifier,
		sendLocks: newWalletLocks(),
	}
}

// RedeemCard executes the full redemption pipeline for a card. clientIP is
// forwarded to the exchange for jurisdiction checks.
func (s *RedemptionService) RedeemCard(ctx context.Context, req *models.RedeemRequest, clientIP string) (*models.RedeemResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	card, err := s.cards.FindByAnyCode(req.Code)
	if err != nil {
		return nil, err
	}

	if err := s.checkPassword(card, req.Password); err != nil {
		return nil, err
	}

	if err := s.checkCardState(card); err != nil {
		return nil, err
	}

	// Zero platform fee on redemption: the full face value, minus only the
	// exchange's and network's intrinsic costs, is redeemable.
	sendAmountUSD := card.ValueUSD

	wallet, err := s.treasury.GetPrimaryWallet()
	if err != nil {
		return nil, errors.NewServiceUnavailableError("Treasury is not configured").
			WithCode(errors.CodeTreasuryNotConfigured)
	}

	// Checked before any quote or shift exists, so an unsupported treasury
	// network never leaves a dangling exchange order.
	if !s.treasury.CanAutoSend(wallet.Network) {
		return nil, errors.NewServiceUnavailableError(
			fmt.Sprintf("Automatic payout is not supported on network %s, please contact support", wallet.Network)).
			WithCode(errors.CodeAutoSendNotSupported)
	}

	// Serialize the solvency-check-then-send window per treasury wallet.
	lock := s.sendLocks.get(wallet.ID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock: another request for the same card may have
	// committed while this one waited.
	card, err = s.cards.FindByAnyCode(req.Code)
	if err != nil {
		return nil, err
	}
	if err := s.checkCardState(card); err != nil {
		return nil, err
	}

	// Fresh balance snapshot for every redemption; it gates an irreversible
	// transfer, so a failed fetch aborts rather than proceeding optimistically.
	balance, err := s.treasury.GetBalance(ctx, wallet.Address, wallet.Asset, wallet.Network)
	if err != nil {
		return nil, errors.NewServiceUnavailableError("Could not verify platform balance, please try again later").
			WithCode(errors.CodeTreasuryCheckFailed)
	}

	quote, err := s.shifts.RequestQuote(ctx, QuoteParams{
		DepositCoin:     wallet.Asset,
		DepositNetwork:  wallet.Network,
		SettleCoin:      req.SettleCoin,
		SettleNetwork:   req.SettleNetwork,
		SettleAmountUSD: sendAmountUSD,
		ClientIP:        clientIP,
	})
	if err != nil {
		return nil, errors.NewServiceUnavailableError(fmt.Sprintf("Failed to price redemption: %v", err)).
			WithCode(errors.CodeQuoteFailed)
	}

	if quote.DepositAmount.GreaterThan(balance.Balance) {
		go s.notifier.NotifyAdminTreasuryInsufficient(wallet.Asset, wallet.Network,
			quote.DepositAmount.String(), balance.Balance.String())
		return nil, errors.NewServiceUnavailableError(
			fmt.Sprintf("Treasury balance insufficient: need %s %s, have %s",
				quote.DepositAmount, strings.ToUpper(wallet.Asset), balance.Balance)).
			WithCode(errors.CodeTreasuryInsufficient)
	}

	shift, err := s.shifts.CreateShift(ctx, quote.ID, req.SettleAddress, derefOrEmpty(req.SettleMemo), clientIP)
	if err != nil {
		return nil, errors.NewServiceUnavailableError(fmt.Sprintf("Failed to create conversion order: %v", err)).
			WithCode(errors.CodeOrderFailed)
	}

	// Durable intent record: if the process dies between the send below and
	// the commit, this row is the evidence funds may have moved. The send is
	// gated on it; without the row such a crash would be undetectable. No
	// funds have moved yet, so aborting here is safe and the shift
	// self-expires.
	if err := s.audits.LogRedemptionAttempt(card.ID, shift.ID, map[string]interface{}{
		"wallet_id":       wallet.ID,
		"deposit_amount":  quote.DepositAmount,
		"deposit_address": shift.DepositAddress,
	}); err != nil {
		logrus.Errorf("failed to write redemption intent for card %s: %v", card.ID, err)
		return nil, errors.NewServiceUnavailableError("Redemption could not be recorded, please try again")
	}

	// The irreversible step. The treasury always pays the exchange's deposit
	// address, never the user's settle address.
	sendResult := s.treasury.SendFromTreasury(ctx, wallet.Asset, wallet.Network, shift.DepositAddress, quote.DepositAmount)
	if sendResult == nil {
		return nil, errors.NewInternalServerError(fmt.Errorf("treasury send returned no result"), "Redemption failed, please try again").
			WithCode(errors.CodeTreasurySendError)
	}
	if !sendResult.Success {
		// No funds moved: the card stays ACTIVE and the shift self-expires.
		go s.notifier.NotifyAdminRedemptionFailed(card, sendResult.Error)
		return nil, errors.NewServiceUnavailableError("Redemption failed, please try again").
			WithCode(errors.CodeTreasurySendFailed)
	}

	// Commit: a single conditional update keyed on status=ACTIVE upholds
	// at-most-once redemption even across process instances.
	applied, err := s.cards.MarkRedeemed(card.ID, models.GiftCardRedemptionMeta{
		Coin:    req.SettleCoin,
		Network: req.SettleNetwork,
		Amount:  quote.SettleAmount,
		Address: req.SettleAddress,
	})
	if err != nil || !applied {
		// Funds already left the treasury; the intent record and this alert
		// are what make the inconsistency recoverable.
		logrus.Errorf("treasury sent %s %s for card %s but redeemed commit failed (applied=%v, err=%v)",
			quote.DepositAmount, wallet.Asset, card.ID, applied, err)
		go s.notifier.NotifyAdminRedemptionFailed(card,
			fmt.Sprintf("funds sent (tx %s) but card commit failed", sendResult.TxHash))
	}

	shiftID := shift.ID
	redemption := &models.Redemption{
		GiftCardID:            card.ID,
		ValueUSD:              card.ValueUSD,
		SettleCoin:            req.SettleCoin,
		SettleNetwork:         req.SettleNetwork,
		SettleAddress:         req.SettleAddress,
		SettleMemo:            req.SettleMemo,
		DepositCoin:           wallet.Asset,
		DepositNetwork:        wallet.Network,
		DepositAmount:         quote.DepositAmount,
		EstimatedSettleAmount: quote.SettleAmount,
		ShiftID:               &shiftID,
		Status:                models.RedemptionStatusProcessing,
		TreasuryTxHash:        &sendResult.TxHash,
	}
	if err := s.store.Create(redemption); err != nil {
		logrus.Errorf("treasury sent tx %s but redemption row write failed: %v", sendResult.TxHash, err)
		go s.notifier.NotifyAdminRedemptionFailed(card,
			fmt.Sprintf("funds sent (tx %s) but redemption record write failed", sendResult.TxHash))
	}

	go s.notifier.NotifyRedemptionPending(redemption)

	return &models.RedeemResponse{
		RedemptionID:    redemption.ID,
		ShiftID:         shift.ID,
		DepositAddress:  shift.DepositAddress,
		DepositCoin:     wallet.Asset,
		DepositNetwork:  wallet.Network,
		EstimatedAmount: quote.SettleAmount,
		SettleCoin:      req.SettleCoin,
		TreasuryTxHash:  sendResult.TxHash,
	}, nil
}

func (s *RedemptionService) checkPassword(card *models.GiftCard, password *string) error {
	if !card.HasPassword() {
		return nil
	}
	if password == nil || *password == "" {
		return errors.NewUnauthorizedError("This card is password protected").
			WithCode(errors.CodeCardPasswordRequired)
	}
	if !s.cards.VerifyPassword(card, *password) {
		return errors.NewUnauthorizedError("Incorrect card password").
			WithCode(errors.CodeCardPasswordIncorrect)
	}
	return nil
}

func (s *RedemptionService) checkCardState(card *models.GiftCard) error {
	switch card.Status {
	case models.GiftCardStatusActive:
	case models.GiftCardStatusRedeemed:
		return errors.NewConflictError("Gift card has already been redeemed").
			WithCode(errors.CodeCardAlreadyRedeemed)
	default:
		return errors.NewConflictError(
			fmt.Sprintf("Gift card is %s and cannot be redeemed", strings.ToLower(string(card.Status)))).
			WithCode(errors.CodeCardNotActive)
	}

	if card.IsExpired(time.Now()) {
		if err := s.cards.MarkExpired(card.ID); err != nil {
			logrus.Warnf("failed to expire card %s: %v", card.ID, err)
		}
		return errors.NewConflictError("Gift card has expired").
			WithCode(errors.CodeCardExpired)
	}

	return nil
}

// QuotePreview prices a redemption without creating anything: the estimated
// settle amount a card would currently yield for a destination asset.
func (s *RedemptionService) QuotePreview(ctx context.Context, req *models.RedeemQuoteRequest, clientIP string) (*models.RedeemQuoteResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	card, err := s.cards.FindByAnyCode(req.Code)
	if err != nil {
		return nil, err
	}
	if err := s.checkCardState(card); err != nil {
		return nil, err
	}

	wallet, err := s.treasury.GetPrimaryWallet()
	if err != nil {
		return nil, errors.NewServiceUnavailableError("Treasury is not configured").
			WithCode(errors.CodeTreasuryNotConfigured)
	}
	if !s.treasury.CanAutoSend(wallet.Network) {
		return nil, errors.NewServiceUnavailableError(
			fmt.Sprintf("Automatic payout is not supported on network %s, please contact support", wallet.Network)).
			WithCode(errors.CodeAutoSendNotSupported)
	}

	quote, err := s.shifts.RequestQuote(ctx, QuoteParams{
		DepositCoin:     wallet.Asset,
		DepositNetwork:  wallet.Network,
		SettleCoin:      req.SettleCoin,
		SettleNetwork:   req.SettleNetwork,
		SettleAmountUSD: card.ValueUSD,
		ClientIP:        clientIP,
	})
	if err != nil {
		return nil, errors.NewServiceUnavailableError(fmt.Sprintf("Failed to price redemption: %v", err)).
			WithCode(errors.CodeQuoteFailed)
	}

	return &models.RedeemQuoteResponse{
		ValueUSD:         card.ValueUSD,
		SettleCoin:       req.SettleCoin,
		SettleNetwork:    req.SettleNetwork,
		EstimatedReceive: quote.SettleAmount,
		QuoteID:          quote.ID,
		ExpiresAt:        quote.ExpiresAt,
	}, nil
}

func (s *RedemptionService) GetRedemption(redemptionId string) (*models.Redemption, error) {
	redemptionUUID, err := uuid.Parse(redemptionId)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid redemption ID format")
	}
	return s.store.Get(redemptionUUID)
}

func (s *RedemptionService) ListRedemptions(pagination *models.PaginationRequest, status *models.RedemptionStatus) (*models.Pagination[[]models.Redemption], error) {
	return s.store.List(pagination, status)
}

// ReconcileRedemption polls the exchange for a processing redemption and
// applies the observed terminal state. A failed shift does not reactivate
// the card: treasury funds are already in flight to a third party, so
// recovery is a support matter. That asymmetry with pre-send failures is
// deliberate.
func (s *RedemptionService) ReconcileRedemption(ctx context.Context, redemptionId string) (*models.Redemption, error) {
	redemption, err := s.GetRedemption(redemptionId)
	if err != nil {
		return nil, err
	}

	if redemption.Status != models.RedemptionStatusProcessing || redemption.ShiftID == nil {
		return redemption, nil
	}

	shift, err := s.shifts.GetShift(ctx, *redemption.ShiftID)
	if err != nil {
		return nil, errors.NewServiceUnavailableError(fmt.Sprintf("Failed to fetch conversion order status: %v", err))
	}

	switch {
	case shift.Status.IsComplete():
		redemption.Status = models.RedemptionStatusCompleted
		redemption.ActualSettleAmount = shift.SettleAmount
		for _, deposit := range shift.Deposits {
			if deposit.SettleHash != "" {
				settleHash := deposit.SettleHash
				redemption.SettleTxHash = &settleHash
				break
			}
		}
	case shift.Status.IsFailed():
		redemption.Status = models.RedemptionStatusFailed
		msg := fmt.Sprintf("conversion order %s", shift.Status)
		redemption.ErrorMessage = &msg
	default:
		return redemption, nil
	}

	if err := s.store.Update(redemption); err != nil {
		return nil, err
	}

	return redemption, nil
}

// ReconcileProcessing sweeps every processing redemption. Intended for a
// periodic admin-triggered or scheduled run; per-row failures are logged and
// skipped so one bad shift cannot stall the sweep.
func (s *RedemptionService) ReconcileProcessing(ctx context.Context) (int, error) {
	redemptions, err := s.store.ListProcessing()
	if err != nil {
		return 0, err
	}

	updated := 0
	for i := range redemptions {
		before := redemptions[i].Status
		after, err := s.ReconcileRedemption(ctx, redemptions[i].ID.String())
		if err != nil {
			logrus.Warnf("reconcile failed for redemption %s: %v", redemptions[i].ID, err)
			continue
		}
		if after.Status != before {
			updated++
		}
	}

	return updated, nil
}

// CreateManualRedemption marks a card redeemed for an off-system payout.
// Used when the treasury lives on a network without signing capability. The
// conditional card update still upholds at-most-once.
func (s *RedemptionService) CreateManualRedemption(req *models.ManualRedemptionRequest) (*models.Redemption, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	card, err := s.cards.FindByAnyCode(req.Code)
	if err != nil {
		return nil, err
	}
	if err := s.checkCardState(card); err != nil {
		return nil, err
	}

	applied, err := s.cards.MarkRedeemed(card.ID, models.GiftCardRedemptionMeta{
		Coin:    req.SettleCoin,
		Network: req.SettleNetwork,
		Amount:  decimal.Zero,
		Address: req.SettleAddress,
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, errors.NewConflictError("Gift card has already been redeemed").
			WithCode(errors.CodeCardAlreadyRedeemed)
	}

	redemption := &models.Redemption{
		GiftCardID:    card.ID,
		ValueUSD:      card.ValueUSD,
		SettleCoin:    req.SettleCoin,
		SettleNetwork: req.SettleNetwork,
		SettleAddress: req.SettleAddress,
		SettleMemo:    req.SettleMemo,
		Status:        models.RedemptionStatusPendingManual,
	}
	if err := s.store.Create(redemption); err != nil {
		return nil, err
	}

	return redemption, nil
}

// CancelRedemption cancels a manual redemption before any payout and
// reactivates its card. Only PENDING_MANUAL rows qualify: everything else
// either already moved treasury funds or is terminal.
func (s *RedemptionService) CancelRedemption(redemptionId string) (*models.Redemption, error) {
	redemption, err := s.GetRedemption(redemptionId)
	if err != nil {
		return nil, err
	}

	if redemption.Status != models.RedemptionStatusPendingManual {
		return nil, errors.NewConflictError(
			fmt.Sprintf("Only manual pending redemptions can be cancelled, this one is %s", redemption.Status))
	}

	redemption.Status = models.RedemptionStatusCancelled
	if err := s.store.Update(redemption); err != nil {
		return nil, err
	}

	if err := s.cards.Reactivate(redemption.GiftCardID); err != nil {
		return nil, err
	}

	return redemption, nil
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
