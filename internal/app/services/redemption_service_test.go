package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	apperrors "github.com/starixlabs/starix-core/internal/app/errors"
	"github.com/starixlabs/starix-core/internal/app/models"
	"github.com/starixlabs/starix-core/internal/infrastructures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCards struct {
	mu          sync.Mutex
	card        *models.GiftCard
	password    string
	expireCalls int
	redeemCalls int
	redeemErr   error
	failRedeem  bool
}

func (f *fakeCards) FindByAnyCode(code string) (*models.GiftCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.card == nil || f.card.Code != code {
		return nil, apperrors.NewNotFoundError("Gift card not found").WithCode(apperrors.CodeCardNotFound)
	}
	copied := *f.card
	return &copied, nil
}

func (f *fakeCards) VerifyPassword(card *models.GiftCard, password string) bool {
	return password == f.password
}

func (f *fakeCards) MarkExpired(cardId uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expireCalls++
	f.card.Status = models.GiftCardStatusExpired
	return nil
}

func (f *fakeCards) MarkRedeemed(cardId uuid.UUID, meta models.GiftCardRedemptionMeta) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.redeemCalls++
	if f.redeemErr != nil {
		return false, f.redeemErr
	}
	if f.failRedeem || f.card.Status != models.GiftCardStatusActive {
		return false, nil
	}
	f.card.Status = models.GiftCardStatusRedeemed
	return true, nil
}

func (f *fakeCards) Reactivate(cardId uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.card.Status = models.GiftCardStatusActive
	return nil
}

type fakeTreasury struct {
	mu         sync.Mutex
	wallet     *models.TreasuryWallet
	walletErr  error
	evm        bool
	balance    decimal.Decimal
	balanceErr error
	sendResult *models.TreasurySendResult
	sendCalls  int
	lastSendTo string
}

func (f *fakeTreasury) GetPrimaryWallet() (*models.TreasuryWallet, error) {
	if f.walletErr != nil {
		return nil, f.walletErr
	}
	return f.wallet, nil
}

func (f *fakeTreasury) CanAutoSend(network string) bool {
	return f.evm
}

func (f *fakeTreasury) GetBalance(ctx context.Context, address, asset, network string) (*models.TreasuryBalance, error) {
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	return &models.TreasuryBalance{Asset: asset, Network: network, Balance: f.balance, USDValue: f.balance, PricedFrom: "stable"}, nil
}

func (f *fakeTreasury) SendFromTreasury(ctx context.Context, asset, network, destination string, amount decimal.Decimal) *models.TreasurySendResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	f.lastSendTo = destination
	return f.sendResult
}

type fakeShifts struct {
	mu          sync.Mutex
	quote       *models.SideShiftQuote
	quoteErr    error
	quoteCalls  int
	shift       *models.SideShiftShift
	shiftErr    error
	createCalls int
	getShift    *models.SideShiftShift
	getShiftErr error
}

func (f *fakeShifts) RequestQuote(ctx context.Context, params QuoteParams) (*models.SideShiftQuote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quoteCalls++
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	return f.quote, nil
}

func (f *fakeShifts) CreateShift(ctx context.Context, quoteID, settleAddress, settleMemo, clientIP string) (*models.SideShiftShift, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.shiftErr != nil {
		return nil, f.shiftErr
	}
	return f.shift, nil
}

func (f *fakeShifts) GetShift(ctx context.Context, shiftID string) (*models.SideShiftShift, error) {
	if f.getShiftErr != nil {
		return nil, f.getShiftErr
	}
	return f.getShift, nil
}

type fakeNotifier struct {
	mu                sync.Mutex
	pendingCalls      int
	failedCalls       int
	insufficientCalls int
}

func (f *fakeNotifier) NotifyRedemptionPending(redemption *models.Redemption) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendingCalls++
}

func (f *fakeNotifier) NotifyAdminRedemptionFailed(card *models.GiftCard, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failedCalls++
}

func (f *fakeNotifier) NotifyAdminTreasuryInsufficient(asset, network, required, available string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insufficientCalls++
}

func (f *fakeNotifier) failed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failedCalls
}

func (f *fakeNotifier) insufficient() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insufficientCalls
}

type fakeIntents struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeIntents) LogRedemptionAttempt(cardID uuid.UUID, shiftID string, detail interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

type fakeStore struct {
	mu          sync.Mutex
	rows        map[uuid.UUID]*models.Redemption
	createCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[uuid.UUID]*models.Redemption)}
}

func (f *fakeStore) Create(r *models.Redemption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	copied := *r
	f.rows[r.ID] = &copied
	return nil
}

func (f *fakeStore) Get(id uuid.UUID) (*models.Redemption, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("Redemption not found")
	}
	copied := *row
	return &copied, nil
}

func (f *fakeStore) Update(r *models.Redemption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *r
	f.rows[r.ID] = &copied
	return nil
}

func (f *fakeStore) ListProcessing() ([]models.Redemption, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []models.Redemption
	for _, row := range f.rows {
		if row.Status == models.RedemptionStatusProcessing {
			result = append(result, *row)
		}
	}
	return result, nil
}

func (f *fakeStore) List(pagination *models.PaginationRequest, status *models.RedemptionStatus) (*models.Pagination[[]models.Redemption], error) {
	return &models.Pagination[[]models.Redemption]{}, nil
}

type redemptionFixture struct {
	service  *RedemptionService
	cards    *fakeCards
	treasury *fakeTreasury
	shifts   *fakeShifts
	store    *fakeStore
	notifier *fakeNotifier
	intents  *fakeIntents
}

func newRedemptionFixture() *redemptionFixture {
	cards := &fakeCards{
		card: &models.GiftCard{
			ID:       uuid.New(),
			Code:     "STARIX-AAAA-BBBB-CCCC",
			ValueUSD: decimal.NewFromInt(50),
			Status:   models.GiftCardStatusActive,
		},
	}
	treasury := &fakeTreasury{
		wallet: &models.TreasuryWallet{
			ID:      uuid.New(),
			Asset:   "usdt",
			Network: "bsc",
			Address: "0x1111111111111111111111111111111111111111",
		},
		evm:     true,
		balance: decimal.NewFromInt(1000),
		sendResult: &models.TreasurySendResult{
			Success: true,
			TxHash:  "0xdeadbeef",
		},
	}
	shifts := &fakeShifts{
		quote: &models.SideShiftQuote{
			ID:            "quote-1",
			DepositAmount: decimal.NewFromInt(50),
			SettleAmount:  decimal.RequireFromString("0.0125"),
			ExpiresAt:     time.Now().Add(10 * time.Minute),
		},
		shift: &models.SideShiftShift{
			ID:             "shift-1",
			DepositAddress: "0x2222222222222222222222222222222222222222",
			Status:         models.ShiftStatusWaiting,
		},
	}
	store := newFakeStore()
	notifier := &fakeNotifier{}
	intents := &fakeIntents{}

	service := &RedemptionService{
		validator: infrastructures.NewValidator(),
		cards:     cards,
		treasury:  treasury,
		shifts:    shifts,
		store:     store,
		audits:    intents,
		notifier:  notifier,
		sendLocks: newWalletLocks(),
	}

	return &redemptionFixture{
		service:  service,
		cards:    cards,
		treasury: treasury,
		shifts:   shifts,
		store:    store,
		notifier: notifier,
		intents:  intents,
	}
}

func validRedeemRequest() *models.RedeemRequest {
	return &models.RedeemRequest{
		Code:          "STARIX-AAAA-BBBB-CCCC",
		SettleCoin:    "btc",
		SettleNetwork: "bitcoin",
		SettleAddress: "bc1qexampleaddress",
	}
}

func requireAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok, "expected *AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func TestRedeemCard_Success(t *testing.T) {
	f := newRedemptionFixture()

	resp, err := f.service.RedeemCard(context.Background(), validRedeemRequest(), "203.0.113.7")
	require.NoError(t, err)

	assert.Equal(t, "shift-1", resp.ShiftID)
	assert.Equal(t, "0xdeadbeef", resp.TreasuryTxHash)
	assert.Equal(t, "usdt", resp.DepositCoin)
	assert.Equal(t, "bsc", resp.DepositNetwork)
	assert.Equal(t, "btc", resp.SettleCoin)

	// The treasury pays the exchange deposit address, never the user address.
	assert.Equal(t, "0x2222222222222222222222222222222222222222", f.treasury.lastSendTo)

	assert.Equal(t, models.GiftCardStatusRedeemed, f.cards.card.Status)
	assert.Equal(t, 1, f.intents.calls)
	assert.Equal(t, 1, f.store.createCalls)

	row, err := f.store.Get(resp.RedemptionID)
	require.NoError(t, err)
	assert.Equal(t, models.RedemptionStatusProcessing, row.Status)
	require.NotNil(t, row.TreasuryTxHash)
	assert.Equal(t, "0xdeadbeef", *row.TreasuryTxHash)
}

func TestRedeemCard_ValidationFailure(t *testing.T) {
	f := newRedemptionFixture()

	_, err := f.service.RedeemCard(context.Background(), &models.RedeemRequest{Code: "STARIX-AAAA-BBBB-CCCC"}, "")
	requireAppErrorCode(t, err, apperrors.CodeValidationError)
	assert.Equal(t, 0, f.shifts.quoteCalls)
}

func TestRedeemCard_CardNotFound(t *testing.T) {
	f := newRedemptionFixture()
	req := validRedeemRequest()
	req.Code = "STARIX-ZZZZ-ZZZZ-ZZZZ"

	_, err := f.service.RedeemCard(context.Background(), req, "")
	requireAppErrorCode(t, err, apperrors.CodeCardNotFound)
}

func TestRedeemCard_PasswordRequired(t *testing.T) {
	f := newRedemptionFixture()
	hash := "$2a$10$notarealhashbutnonempty"
	f.cards.card.PasswordHash = &hash
	f.cards.password = "hunter2"

	_, err := f.service.RedeemCard(context.Background(), validRedeemRequest(), "")
	requireAppErrorCode(t, err, apperrors.CodeCardPasswordRequired)

	wrong := "wrong"
	req := validRedeemRequest()
	req.Password = &wrong
	_, err = f.service.RedeemCard(context.Background(), req, "")
	requireAppErrorCode(t, err, apperrors.CodeCardPasswordIncorrect)

	right := "hunter2"
	req = validRedeemRequest()
	req.Password = &right
	_, err = f.service.RedeemCard(context.Background(), req, "")
	require.NoError(t, err)
}

func TestRedeemCard_AlreadyRedeemed(t *testing.T) {
	f := newRedemptionFixture()
	f.cards.card.Status = models.GiftCardStatusRedeemed

	_, err := f.service.RedeemCard(context.Background(), validRedeemRequest(), "")
	requireAppErrorCode(t, err, apperrors.CodeCardAlreadyRedeemed)
	assert.Equal(t, 0, f.shifts.quoteCalls)
	assert.Equal(t, 0, f.treasury.sendCalls)
}

func TestRedeemCard_NotActive(t *testing.T) {
	f := newRedemptionFixture()
	f.cards.card.Status = models.GiftCardStatusPending

	_, err := f.service.RedeemCard(context.Background(), validRedeemRequest(), "")
	requireAppErrorCode(t, err, apperrors.CodeCardNotActive)
}

func TestRedeemCard_Expired(t *testing.T) {
	f := newRedemptionFixture()
	past := time.Now().Add(-time.Hour)
	f.cards.card.ExpiresAt = &past

	_, err := f.service.RedeemCard(context.Background(), validRedeemRequest(), "")
	requireAppErrorCode(t, err, apperrors.CodeCardExpired)
	assert.Equal(t, 1, f.cards.expireCalls)
	assert.Equal(t, 0, f.treasury.sendCalls)
}

func TestRedeemCard_TreasuryNotConfigured(t *testing.T) {
	f := newRedemptionFixture()
	f.treasury.wallet = nil
	f.treasury.walletErr = apperrors.NewNotFoundError("No primary treasury wallet configured")

	_, err := f.service.RedeemCard(context.Background(), validRedeemRequest(), "")
	requireAppErrorCode(t, err, apperrors.CodeTreasuryNotConfigured)
}

func TestRedeemCard_AutoSendNotSupported(t *testing.T) {
	f := newRedemptionFixture()
	f.treasury.evm = false
	f.treasury.wallet.Network = "bitcoin"

	_, err := f.service.RedeemCard(context.Background(), validRedeemRequest(), "")
	requireAppErrorCode(t, err, apperrors.CodeAutoSendNotSupported)

	// Rejected before any quote or order exists at the exchange.
	assert.Equal(t, 0, f.shifts.quoteCalls)
	assert.Equal(t, 0, f.shifts.createCalls)
}

func TestRedeemCard_BalanceCheckFailure(t *testing.T) {
	f := newRedemptionFixture()
	f.treasury.balanceErr = apperrors.NewServiceUnavailableError("rpc down")

	_, err := f.service.RedeemCard(context.Background(), validRedeemRequest(), "")
	requireAppErrorCode(t, err, apperrors.CodeTreasuryCheckFailed)
	assert.Equal(t, 0, f.shifts.quoteCalls)
	assert.Equal(t, 0, f.treasury.sendCalls)
}

func TestRedeemCard_QuoteFailure(t *testing.T) {
	f := newRedemptionFixture()
	f.shifts.quoteErr = apperrors.NewServiceUnavailableError("exchange down")

	_, err := f.service.RedeemCard(context.Background(), validRedeemRequest(), "")
	requireAppErrorCode(t, err, apperrors.CodeQuoteFailed)
	assert.Equal(t, 0, f.shifts.createCalls)
	assert.Equal(t, 0, f.treasury.sendCalls)
	assert.Equal(t, models.GiftCardStatusActive, f.cards.card.Status)
}

func TestRedeemCard_TreasuryInsufficient(t *testing.T) {
	f := newRedemptionFixture()
	f.treasury.balance = decimal.NewFromInt(10)

	_, err := f.service.RedeemCard(context.Background(), validRedeemRequest(), "")
	requireAppErrorCode(t, err, apperrors.CodeTreasuryInsufficient)

	// No order is created and nothing is sent when the treasury cannot cover
	// the deposit.
	assert.Equal(t, 0, f.shifts.createCalls)
	assert.Equal(t, 0, f.treasury.sendCalls)
	assert.Equal(t, models.GiftCardStatusActive, f.cards.card.Status)

	require.Eventually(t, func() bool {
		return f.notifier.insufficient() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestRedeemCard_OrderFailure(t *testing.T) {
	f := newRedemptionFixture()
	f.shifts.shiftErr = apperrors.NewServiceUnavailableError("quote expired")

	_, err := f.service.RedeemCard(context.Background(), validRedeemRequest(), "")
	requireAppErrorCode(t, err, apperrors.CodeOrderFailed)
	assert.Equal(t, 0, f.treasury.sendCalls)
	assert.Equal(t, models.GiftCardStatusActive, f.cards.card.Status)
}

func TestRedeemCard_SendFailureLeavesCardActive(t *testing.T) {
	f := newRedemptionFixture()
	f.treasury.sendResult = &models.TreasurySendResult{Success: false, Error: "nonce too low"}

	_, err := f.service.RedeemCard(context.Background(), validRedeemRequest(), "")
	requireAppErrorCode(t, err, apperrors.CodeTreasurySendFailed)

	// No funds moved, so the card must remain redeemable and no redemption
	// row may exist.
	assert.Equal(t, models.GiftCardStatusActive, f.cards.card.Status)
	assert.Equal(t, 0, f.cards.redeemCalls)
	assert.Equal(t, 0, f.store.createCalls)

	require.Eventually(t, func() bool {
		return f.notifier.failed() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestRedeemCard_IntentWriteFailureAbortsBeforeSend(t *testing.T) {
	f := newRedemptionFixture()
	f.intents.err = errors.New("audit store down")

	// The intent row is the crash evidence for the send-to-commit window, so
	// the irreversible send must not run without it.
	_, err := f.service.RedeemCard(context.Background(), validRedeemRequest(), "")
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, 503, appErr.StatusCode)

	assert.Equal(t, 0, f.treasury.sendCalls)
	assert.Equal(t, 0, f.store.createCalls)
	assert.Equal(t, models.GiftCardStatusActive, f.cards.card.Status)
}

func TestRedeemCard_NilSendResult(t *testing.T) {
	f := newRedemptionFixture()
	f.treasury.sendResult = nil

	_, err := f.service.RedeemCard(context.Background(), validRedeemRequest(), "")
	requireAppErrorCode(t, err, apperrors.CodeTreasurySendError)
	assert.Equal(t, models.GiftCardStatusActive, f.cards.card.Status)
}

func TestRedeemCard_CommitFailureStillRecordsRedemption(t *testing.T) {
	f := newRedemptionFixture()
	f.cards.failRedeem = true

	// Funds already left the treasury, so the pipeline must not fail the
	// request; it records the redemption and alerts an operator.
	resp, err := f.service.RedeemCard(context.Background(), validRedeemRequest(), "")
	require.NoError(t, err)
	assert.Equal(t, "0xdeadbeef", resp.TreasuryTxHash)
	assert.Equal(t, 1, f.store.createCalls)

	require.Eventually(t, func() bool {
		return f.notifier.failed() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestRedeemCard_ConcurrentSameCard(t *testing.T) {
	f := newRedemptionFixture()

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.service.RedeemCard(context.Background(), validRedeemRequest(), "")
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		appErr, ok := err.(*apperrors.AppError)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeCardAlreadyRedeemed, appErr.Code)
		conflicts++
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)
	assert.Equal(t, 1, f.treasury.sendCalls)
}

func TestQuotePreview(t *testing.T) {
	f := newRedemptionFixture()

	quote, err := f.service.QuotePreview(context.Background(), &models.RedeemQuoteRequest{
		Code:          "STARIX-AAAA-BBBB-CCCC",
		SettleCoin:    "btc",
		SettleNetwork: "bitcoin",
	}, "203.0.113.7")
	require.NoError(t, err)

	assert.Equal(t, "quote-1", quote.QuoteID)
	assert.True(t, quote.EstimatedReceive.Equal(decimal.RequireFromString("0.0125")))
	assert.True(t, quote.ValueUSD.Equal(decimal.NewFromInt(50)))

	// Preview never creates an order or moves funds.
	assert.Equal(t, 0, f.shifts.createCalls)
	assert.Equal(t, 0, f.treasury.sendCalls)
	assert.Equal(t, models.GiftCardStatusActive, f.cards.card.Status)
}

func TestReconcileRedemption_Settled(t *testing.T) {
	f := newRedemptionFixture()
	shiftID := "shift-1"
	settleAmount := decimal.RequireFromString("0.0124")
	redemption := &models.Redemption{
		GiftCardID: f.cards.card.ID,
		Status:     models.RedemptionStatusProcessing,
		ShiftID:    &shiftID,
	}
	require.NoError(t, f.store.Create(redemption))

	f.shifts.getShift = &models.SideShiftShift{
		ID:           shiftID,
		Status:       models.ShiftStatusSettled,
		SettleAmount: &settleAmount,
		Deposits: []models.SideShiftDeposit{
			{Amount: decimal.NewFromInt(50), SettleHash: "settle-tx-1"},
		},
	}

	updated, err := f.service.ReconcileRedemption(context.Background(), redemption.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.RedemptionStatusCompleted, updated.Status)
	require.NotNil(t, updated.ActualSettleAmount)
	assert.True(t, updated.ActualSettleAmount.Equal(settleAmount))
	require.NotNil(t, updated.SettleTxHash)
	assert.Equal(t, "settle-tx-1", *updated.SettleTxHash)
}

func TestReconcileRedemption_Failed(t *testing.T) {
	f := newRedemptionFixture()
	shiftID := "shift-1"
	redemption := &models.Redemption{
		GiftCardID: f.cards.card.ID,
		Status:     models.RedemptionStatusProcessing,
		ShiftID:    &shiftID,
	}
	require.NoError(t, f.store.Create(redemption))

	f.shifts.getShift = &models.SideShiftShift{ID: shiftID, Status: models.ShiftStatusExpired}

	updated, err := f.service.ReconcileRedemption(context.Background(), redemption.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.RedemptionStatusFailed, updated.Status)
	require.NotNil(t, updated.ErrorMessage)

	// The card is not reactivated: treasury funds are already with the
	// exchange, so recovery is a support matter.
	assert.Equal(t, models.GiftCardStatusActive, f.cards.card.Status)
}

func TestReconcileRedemption_StillProcessing(t *testing.T) {
	f := newRedemptionFixture()
	shiftID := "shift-1"
	redemption := &models.Redemption{
		GiftCardID: f.cards.card.ID,
		Status:     models.RedemptionStatusProcessing,
		ShiftID:    &shiftID,
	}
	require.NoError(t, f.store.Create(redemption))

	f.shifts.getShift = &models.SideShiftShift{ID: shiftID, Status: models.ShiftStatusSettling}

	updated, err := f.service.ReconcileRedemption(context.Background(), redemption.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.RedemptionStatusProcessing, updated.Status)
}

func TestCreateManualRedemption(t *testing.T) {
	f := newRedemptionFixture()

	redemption, err := f.service.CreateManualRedemption(&models.ManualRedemptionRequest{
		Code:          "STARIX-AAAA-BBBB-CCCC",
		SettleCoin:    "xmr",
		SettleNetwork: "monero",
		SettleAddress: "4AdUndXHHZ6cfufTMvppY6JwXNouMBzSkbLYfpAV5Usx3skxNgYeYTRj5UzqtReoS44qo9mtmXCqY45DJ852K5Jv2684Rge",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RedemptionStatusPendingManual, redemption.Status)
	assert.Equal(t, models.GiftCardStatusRedeemed, f.cards.card.Status)

	// A second manual redemption of the same card must be rejected.
	_, err = f.service.CreateManualRedemption(&models.ManualRedemptionRequest{
		Code:          "STARIX-AAAA-BBBB-CCCC",
		SettleCoin:    "xmr",
		SettleNetwork: "monero",
		SettleAddress: "4AdUndXHHZ6cfufTMvppY6JwXNouMBzSkbLYfpAV5Usx3skxNgYeYTRj5UzqtReoS44qo9mtmXCqY45DJ852K5Jv2684Rge",
	})
	requireAppErrorCode(t, err, apperrors.CodeCardAlreadyRedeemed)
}

func TestCancelRedemption(t *testing.T) {
	f := newRedemptionFixture()

	redemption, err := f.service.CreateManualRedemption(&models.ManualRedemptionRequest{
		Code:          "STARIX-AAAA-BBBB-CCCC",
		SettleCoin:    "btc",
		SettleNetwork: "bitcoin",
		SettleAddress: "bc1qexampleaddress",
	})
	require.NoError(t, err)

	cancelled, err := f.service.CancelRedemption(redemption.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.RedemptionStatusCancelled, cancelled.Status)
	assert.Equal(t, models.GiftCardStatusActive, f.cards.card.Status)

	// Cancelling a processing redemption is refused: funds are in flight.
	shiftID := "shift-9"
	processing := &models.Redemption{
		GiftCardID: f.cards.card.ID,
		Status:     models.RedemptionStatusProcessing,
		ShiftID:    &shiftID,
	}
	require.NoError(t, f.store.Create(processing))
	_, err = f.service.CancelRedemption(processing.ID.String())
	require.Error(t, err)
}
