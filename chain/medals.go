package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Gas limit for the simple medal-vault calls below.
const medalCallGasLimit = 150_000

// medalVaultABI covers only the functions the claim flow needs.
const medalVaultABI = `[
	{"inputs":[{"internalType":"address","name":"account","type":"address"},{"internalType":"uint256","name":"medalId","type":"uint256"}],"name":"isOptedIn","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"uint256","name":"medalId","type":"uint256"}],"name":"optIn","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"internalType":"address","name":"to","type":"address"},{"internalType":"uint256","name":"medalId","type":"uint256"},{"internalType":"uint256","name":"amount","type":"uint256"}],"name":"transferMedal","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

// MedalVault wraps the medal-vault smart contract: opt-in status reads,
// unsigned opt-in transaction construction for player wallets, and
// operator-signed medal transfers.
type MedalVault struct {
	client       *ethclient.Client
	address      common.Address
	abi          abi.ABI
	chainID      *big.Int
	operatorKey  *ecdsa.PrivateKey
	operatorAddr common.Address
}

// NewMedalVault creates a MedalVault instance. operatorKeyHex is the hex
// private key of the account holding the medal supply; it signs the
// transfer transactions server-side.
func NewMedalVault(client *ethclient.Client, address string, chainID int64, operatorKeyHex string) (*MedalVault, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid medal vault address: %s", address)
	}

	parsedABI, err := abi.JSON(strings.NewReader(medalVaultABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse medal vault ABI: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(operatorKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse operator key: %w", err)
	}

	return &MedalVault{
		client:       client,
		address:      common.HexToAddress(address),
		abi:          parsedABI,
		chainID:      big.NewInt(chainID),
		operatorKey:  key,
		operatorAddr: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func parseMedalID(assetID string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(assetID, 10)
	if !ok {
		return nil, fmt.Errorf("invalid medal asset id: %q", assetID)
	}
	return id, nil
}

// IsOptedIn calls the isOptedIn(address,uint256) view on the vault.
func (v *MedalVault) IsOptedIn(ctx context.Context, wallet, assetID string) (bool, error) {
	medalID, err := parseMedalID(assetID)
	if err != nil {
		return false, err
	}

	callData, err := v.abi.Pack("isOptedIn", common.HexToAddress(wallet), medalID)
	if err != nil {
		return false, fmt.Errorf("failed to pack isOptedIn call: %w", err)
	}

	result, err := v.client.CallContract(ctx, ethereum.CallMsg{
		To:   &v.address,
		Data: callData,
	}, nil)
	if err != nil {
		return false, fmt.Errorf("failed to call isOptedIn: %w", err)
	}

	var optedIn bool
	if err := v.abi.UnpackIntoInterface(&optedIn, "isOptedIn", result); err != nil {
		return false, fmt.Errorf("failed to unpack isOptedIn result: %w", err)
	}
	return optedIn, nil
}

// BuildOptInTxn builds an unsigned optIn(uint256) transaction from the
// player's wallet, serialized for the client to sign and submit. The
// server never sees the player's key.
func (v *MedalVault) BuildOptInTxn(ctx context.Context, wallet, assetID string) ([]byte, error) {
	medalID, err := parseMedalID(assetID)
	if err != nil {
		return nil, err
	}

	callData, err := v.abi.Pack("optIn", medalID)
	if err != nil {
		return nil, fmt.Errorf("failed to pack optIn call: %w", err)
	}

	from := common.HexToAddress(wallet)
	nonce, err := v.client.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wallet nonce: %w", err)
	}
	gasPrice, err := v.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gas price: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &v.address,
		Value:    big.NewInt(0),
		Gas:      medalCallGasLimit,
		GasPrice: gasPrice,
		Data:     callData,
	})

	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to encode opt-in transaction: %w", err)
	}
	return raw, nil
}

// TransferAsset sends amount units of the medal to the wallet, signed by
// the operator key, and returns the transaction hash.
func (v *MedalVault) TransferAsset(ctx context.Context, wallet, assetID string, amount uint64) (string, error) {
	medalID, err := parseMedalID(assetID)
	if err != nil {
		return "", err
	}

	callData, err := v.abi.Pack("transferMedal", common.HexToAddress(wallet), medalID, new(big.Int).SetUint64(amount))
	if err != nil {
		return "", fmt.Errorf("failed to pack transferMedal call: %w", err)
	}

	nonce, err := v.client.PendingNonceAt(ctx, v.operatorAddr)
	if err != nil {
		return "", fmt.Errorf("failed to fetch operator nonce: %w", err)
	}
	gasPrice, err := v.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch gas price: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &v.address,
		Value:    big.NewInt(0),
		Gas:      medalCallGasLimit,
		GasPrice: gasPrice,
		Data:     callData,
	})

	signed, err := types.SignTx(tx, types.NewEIP155Signer(v.chainID), v.operatorKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign transfer transaction: %w", err)
	}

	if err := v.client.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("failed to submit transfer transaction: %w", err)
	}
	return signed.Hash().Hex(), nil
}
