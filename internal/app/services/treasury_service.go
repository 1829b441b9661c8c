package services

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/starixlabs/starix-core/internal/app/errors"
	"github.com/starixlabs/starix-core/internal/app/models"
	"github.com/starixlabs/starix-core/internal/infrastructures"
	"gorm.io/gorm"
)

// PriceSource provides USD spot prices. Nil means valuation unavailable.
type PriceSource interface {
	GetUsdPrice(ctx context.Context, symbol string) *decimal.Decimal
}

// ChainPool provides RPC connections per network.
type ChainPool interface {
	GetClient(ctx context.Context, network string) *ethclient.Client
	IsEVMNetwork(network string) bool
}

const nativeTransferGasLimit = 21000

// TreasuryService is the single point of custody and movement of platform
// funds. The signing key is loaded from the environment at construction and
// never persisted.
type TreasuryService struct {
	db            *gorm.DB
	validator     *infrastructures.Validator
	pool          ChainPool
	oracle        PriceSource
	signer        *ecdsa.PrivateKey
	signerAddress common.Address
}

func NewTreasuryService(db *gorm.DB, validator *infrastructures.Validator, pool *ChainPoolService, oracle *PriceOracleService) *TreasuryService {
	s := &TreasuryService{
		db:        db,
		validator: validator,
		pool:      pool,
		oracle:    oracle,
	}

	if infrastructures.Config != nil && infrastructures.Config.TREASURY_PRIVATE_KEY != "" {
		keyHex := strings.TrimPrefix(infrastructures.Config.TREASURY_PRIVATE_KEY, "0x")
		signer, err := crypto.HexToECDSA(keyHex)
		if err != nil {
			logrus.Errorf("invalid treasury private key, auto-send disabled: %v", err)
		} else {
			s.signer = signer
			s.signerAddress = crypto.PubkeyToAddress(signer.PublicKey)
		}
	} else {
		logrus.Warn("no treasury private key configured, auto-send disabled")
	}

	return s
}

// CanAutoSend reports whether the platform holds signing capability for the
// network. Non-EVM networks always require manual processing.
func (s *TreasuryService) CanAutoSend(network string) bool {
	return s.pool.IsEVMNetwork(network)
}

// GetBalance fetches the live on-chain balance of an asset held at an
// address, with a best-effort USD valuation. A price-feed outage degrades the
// valuation rather than failing the call, because solvency checks must not be
// blocked by the oracle; the degraded figure is flagged as "raw".
func (s *TreasuryService) GetBalance(ctx context.Context, address, asset, network string) (*models.TreasuryBalance, error) {
	chain, ok := LookupChain(network)
	if !ok || !chain.EVM {
		return nil, errors.NewBadRequestError(fmt.Sprintf("Balance lookup is not supported on network %s", network))
	}

	client := s.pool.GetClient(ctx, network)
	if client == nil {
		return nil, errors.NewServiceUnavailableError(fmt.Sprintf("No reachable RPC endpoint for network %s", network))
	}
	defer client.Close()

	balance, err := s.readBalance(ctx, client, chain, address, asset)
	if err != nil {
		return nil, err
	}

	result := &models.TreasuryBalance{
		Asset:   strings.ToLower(asset),
		Network: chain.Network,
		Balance: balance,
	}

	switch {
	case IsStablecoin(asset):
		result.USDValue = balance
		result.PricedFrom = "stable"
	default:
		if price := s.oracle.GetUsdPrice(ctx, asset); price != nil {
			result.USDValue = balance.Mul(*price)
			result.PricedFrom = "oracle"
		} else {
			logrus.Warnf("no USD price for %s, treating raw balance as USD", asset)
			result.USDValue = balance
			result.PricedFrom = "raw"
		}
	}

	return result, nil
}

func (s *TreasuryService) readBalance(ctx context.Context, client *ethclient.Client, chain models.ChainInfo, address, asset string) (decimal.Decimal, error) {
	if token, ok := LookupToken(chain.Network, asset); ok {
		contract := bindERC20(common.HexToAddress(token.Contract), client)
		opts := &bind.CallOpts{Context: ctx}

		var out []interface{}
		if err := contract.Call(opts, &out, "balanceOf", common.HexToAddress(address)); err != nil {
			return decimal.Zero, errors.NewServiceUnavailableError(fmt.Sprintf("Failed to read %s balance: %v", asset, err))
		}
		raw := out[0].(*big.Int)

		decimals := token.Decimals
		var decOut []interface{}
		if err := contract.Call(opts, &decOut, "decimals"); err == nil {
			decimals = int32(decOut[0].(uint8))
		}

		return decimal.NewFromBigInt(raw, -decimals), nil
	}

	if strings.EqualFold(asset, chain.NativeSymbol) {
		raw, err := client.BalanceAt(ctx, common.HexToAddress(address), nil)
		if err != nil {
			return decimal.Zero, errors.NewServiceUnavailableError(fmt.Sprintf("Failed to read native balance: %v", err))
		}
		return decimal.NewFromBigInt(raw, -18), nil
	}

	return decimal.Zero, errors.NewBadRequestError(fmt.Sprintf("Unsupported asset %s on network %s", asset, chain.Network))
}

// SendFromTreasury executes a signed transfer from the treasury wallet and
// blocks until the transaction is mined. The orchestrator must not mark a
// card redeemed before on-chain inclusion is confirmed, so an unconfirmed
// submission is reported as failure. The method never returns a Go error and
// never panics past this boundary; Success=false always means "do not
// commit".
func (s *TreasuryService) SendFromTreasury(ctx context.Context, asset, network, destination string, amount decimal.Decimal) (result *models.TreasurySendResult) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("treasury send panic: %v", r)
			result = sendFailure(fmt.Sprintf("unexpected send failure: %v", r))
		}
	}()

	if asset == "" || network == "" || destination == "" || !amount.IsPositive() {
		return sendFailure("asset, network, destination and a positive amount are all required")
	}

	if s.signer == nil {
		return sendFailure("treasury signing key is not configured")
	}

	chain, ok := LookupChain(network)
	if !ok || !chain.EVM {
		return sendFailure(fmt.Sprintf("network %s requires manual processing", network))
	}

	if !common.IsHexAddress(destination) {
		return sendFailure(fmt.Sprintf("invalid destination address %s", destination))
	}

	client := s.pool.GetClient(ctx, network)
	if client == nil {
		return sendFailure(fmt.Sprintf("no reachable RPC endpoint for network %s", network))
	}
	defer client.Close()

	to := common.HexToAddress(destination)
	chainID := big.NewInt(chain.ChainID)

	var tx *types.Transaction
	if token, isToken := LookupToken(chain.Network, asset); isToken {
		auth, err := bind.NewKeyedTransactorWithChainID(s.signer, chainID)
		if err != nil {
			return sendFailure(fmt.Sprintf("failed to create transactor: %v", err))
		}
		auth.Context = ctx

		value := amount.Shift(token.Decimals).BigInt()
		contract := bindERC20(common.HexToAddress(token.Contract), client)
		tx, err = contract.Transact(auth, "transfer", to, value)
		if err != nil {
			return sendFailure(fmt.Sprintf("failed to submit token transfer: %v", err))
		}
	} else if strings.EqualFold(asset, chain.NativeSymbol) {
		nonce, err := client.PendingNonceAt(ctx, s.signerAddress)
		if err != nil {
			return sendFailure(fmt.Sprintf("failed to get nonce: %v", err))
		}

		gasPrice, err := client.SuggestGasPrice(ctx)
		if err != nil {
			return sendFailure(fmt.Sprintf("failed to get gas price: %v", err))
		}

		value := amount.Shift(18).BigInt()
		rawTx := types.NewTransaction(nonce, to, value, nativeTransferGasLimit, gasPrice, nil)
		signedTx, err := types.SignTx(rawTx, types.LatestSignerForChainID(chainID), s.signer)
		if err != nil {
			return sendFailure(fmt.Sprintf("failed to sign transaction: %v", err))
		}

		if err := client.SendTransaction(ctx, signedTx); err != nil {
			return sendFailure(fmt.Sprintf("failed to submit transaction: %v", err))
		}
		tx = signedTx
	} else {
		return sendFailure(fmt.Sprintf("unsupported asset %s on network %s", asset, chain.Network))
	}

	logrus.Infof("treasury transfer submitted: %s %s on %s to %s, tx %s", amount, asset, chain.Network, destination, tx.Hash().Hex())

	receipt, err := bind.WaitMined(ctx, client, tx)
	if err != nil {
		// Outcome unknown: the transaction may still be mined. Reported as
		// failure so the caller never commits on an unconfirmed send.
		return sendFailure(fmt.Sprintf("transaction %s submitted but inclusion not confirmed: %v", tx.Hash().Hex(), err))
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return sendFailure(fmt.Sprintf("transaction %s reverted on-chain", tx.Hash().Hex()))
	}

	feeWei := new(big.Int).Mul(new(big.Int).SetUint64(receipt.GasUsed), receipt.EffectiveGasPrice)
	fee := decimal.NewFromBigInt(feeWei, -18)

	return &models.TreasurySendResult{
		Success:    true,
		TxHash:     tx.Hash().Hex(),
		NetworkFee: &fee,
	}
}

func sendFailure(message string) *models.TreasurySendResult {
	logrus.Errorf("treasury send failed: %s", message)
	return &models.TreasurySendResult{Success: false, Error: message}
}

// GetPrimaryWallet fetches the single primary treasury wallet configuration.
func (s *TreasuryService) GetPrimaryWallet() (*models.TreasuryWallet, error) {
	var wallet models.TreasuryWallet
	err := s.db.Where("is_primary = ?", true).First(&wallet).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("No primary treasury wallet configured")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get treasury wallet")
	}

	return &wallet, nil
}

// CreateWallet registers a treasury wallet. Marking a wallet primary demotes
// any existing primary in the same transaction so exactly one remains.
func (s *TreasuryService) CreateWallet(req *models.TreasuryWalletCreateRequest) (*models.TreasuryWallet, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	wallet := &models.TreasuryWallet{
		Asset:     strings.ToLower(req.Asset),
		Network:   strings.ToLower(req.Network),
		Address:   req.Address,
		IsPrimary: req.IsPrimary,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.IsPrimary {
			if err := tx.Model(&models.TreasuryWallet{}).Where("is_primary = ?", true).Update("is_primary", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(wallet).Error
	})
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to create treasury wallet")
	}

	return wallet, nil
}

// SetPrimaryWallet promotes a wallet to primary, demoting the current one.
func (s *TreasuryService) SetPrimaryWallet(walletId string) (*models.TreasuryWallet, error) {
	walletUUID, err := uuid.Parse(walletId)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid wallet ID format")
	}

	var wallet models.TreasuryWallet
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", walletUUID).First(&wallet).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.TreasuryWallet{}).Where("is_primary = ?", true).Update("is_primary", false).Error; err != nil {
			return err
		}
		wallet.IsPrimary = true
		return tx.Save(&wallet).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Treasury wallet not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to set primary treasury wallet")
	}

	return &wallet, nil
}

func (s *TreasuryService) ListWallets() ([]models.TreasuryWallet, error) {
	var wallets []models.TreasuryWallet
	if err := s.db.Order("created_at DESC").Find(&wallets).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to list treasury wallets")
	}
	return wallets, nil
}

func (s *TreasuryService) DeleteWallet(walletId string) error {
	walletUUID, err := uuid.Parse(walletId)
	if err != nil {
		return errors.NewBadRequestError("Invalid wallet ID format")
	}

	var wallet models.TreasuryWallet
	if err := s.db.Where("id = ?", walletUUID).First(&wallet).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.NewNotFoundError("Treasury wallet not found")
		}
		return errors.NewInternalServerError(err, "Failed to get treasury wallet")
	}

	if err := s.db.Delete(&wallet).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to delete treasury wallet")
	}

	return nil
}

// GetPrimaryBalance is the admin dashboard view: the live balance of the
// primary treasury wallet.
func (s *TreasuryService) GetPrimaryBalance(ctx context.Context) (*models.TreasuryBalance, error) {
	wallet, err := s.GetPrimaryWallet()
	if err != nil {
		return nil, err
	}
	return s.GetBalance(ctx, wallet.Address, wallet.Asset, wallet.Network)
}
