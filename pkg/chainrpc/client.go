package chainrpc

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ERC20 balanceOf function ABI
const erc20BalanceOfABI = `[{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"}]`

// Client wraps an EVM JSON-RPC endpoint for one named chain
type Client struct {
	name       string
	chainID    *big.Int
	ec         *ethclient.Client
	balanceABI abi.ABI
}

// Dial connects to an EVM RPC endpoint
func Dial(name, rpcURL string, chainID uint64) (*Client, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("RPC URL not configured for chain %s", name)
	}

	ec, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint for %s: %w", name, err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(erc20BalanceOfABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse balanceOf ABI: %w", err)
	}

	return &Client{
		name:       name,
		chainID:    new(big.Int).SetUint64(chainID),
		ec:         ec,
		balanceABI: parsedABI,
	}, nil
}

// Name returns the chain identifier this client serves
func (c *Client) Name() string {
	return c.name
}

// ChainID returns the chain's numeric id
func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// GetBalance returns the address's native coin balance in wei
func (c *Client) GetBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	balance, err := c.ec.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance on %s: %w", c.name, err)
	}
	return balance, nil
}

// GetTokenBalance returns the ERC-20 balance the contract reports for
// the holder, in the token's base units
func (c *Client) GetTokenBalance(ctx context.Context, contract, holder common.Address) (*big.Int, error) {
	data, err := c.balanceABI.Pack("balanceOf", holder)
	if err != nil {
		return nil, fmt.Errorf("failed to pack balanceOf data: %w", err)
	}

	msg := ethereum.CallMsg{
		To:   &contract,
		Data: data,
	}
	result, err := c.ec.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call balanceOf on %s: %w", c.name, err)
	}

	return new(big.Int).SetBytes(result), nil
}

// GetTransactionCount returns the pending nonce for an address
func (c *Client) GetTransactionCount(ctx context.Context, addr common.Address) (uint64, error) {
	nonce, err := c.ec.PendingNonceAt(ctx, addr)
	if err != nil {
		return 0, fmt.Errorf("failed to get nonce on %s: %w", c.name, err)
	}
	return nonce, nil
}

// SuggestGasTipCap returns the suggested priority fee per gas
func (c *Client) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	tip, err := c.ec.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas tip cap on %s: %w", c.name, err)
	}
	return tip, nil
}

// SuggestGasPrice returns the suggested gas price
func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	price, err := c.ec.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price on %s: %w", c.name, err)
	}
	return price, nil
}

// SendRawTransaction broadcasts a signed transaction and returns its hash
func (c *Client) SendRawTransaction(ctx context.Context, tx *types.Transaction) (common.Hash, error) {
	if err := c.ec.SendTransaction(ctx, tx); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction on %s: %w", c.name, err)
	}
	return tx.Hash(), nil
}

// TransactionReceipt fetches the receipt for a transaction hash
func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt, err := c.ec.TransactionReceipt(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt on %s: %w", c.name, err)
	}
	return receipt, nil
}

// WaitMined polls for a transaction receipt until it appears or the
// context is cancelled
func (c *Client) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		receipt, err := c.ec.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gave up waiting for %s on %s: %w", hash.Hex(), c.name, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Close closes the underlying RPC connection
func (c *Client) Close() {
	if c.ec != nil {
		c.ec.Close()
	}
}
