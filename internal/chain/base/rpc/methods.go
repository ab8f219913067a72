package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

func (c *Client) ChainID(ctx context.Context) (int64, error) {
	hexID, err := c.callString(ctx, "eth_chainId", nil)
	if err != nil {
		return 0, fmt.Errorf("eth_chainId: %w", err)
	}
	id, err := ParseHexInt64(hexID)
	if err != nil {
		return 0, fmt.Errorf("parse chain id: %w", err)
	}
	return id, nil
}

// GetBalance returns the 0x-hex wei balance of address at block.
func (c *Client) GetBalance(ctx context.Context, address, block string) (string, error) {
	balance, err := c.callString(ctx, "eth_getBalance", []any{address, blockTag(block)})
	if err != nil {
		return "", fmt.Errorf("eth_getBalance(%s): %w", address, err)
	}
	return balance, nil
}

func (c *Client) GetTransactionCount(ctx context.Context, address, block string) (int64, error) {
	hexNonce, err := c.callString(ctx, "eth_getTransactionCount", []any{address, blockTag(block)})
	if err != nil {
		return 0, fmt.Errorf("eth_getTransactionCount(%s): %w", address, err)
	}
	n, err := ParseHexInt64(hexNonce)
	if err != nil {
		return 0, fmt.Errorf("parse transaction count: %w", err)
	}
	return n, nil
}

// Call executes a read-only eth_call and returns the raw hex return data.
func (c *Client) Call(ctx context.Context, msg CallMsg, block string) (string, error) {
	out, err := c.callString(ctx, "eth_call", []any{msg, blockTag(block)})
	if err != nil {
		return "", fmt.Errorf("eth_call(%s): %w", msg.To, err)
	}
	return out, nil
}

func (c *Client) callString(ctx context.Context, method string, params []any) (string, error) {
	result, err := c.call(ctx, method, params)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(result, &s); err != nil {
		return "", fmt.Errorf("unmarshal %s result: %w", method, err)
	}
	return s, nil
}

func blockTag(block string) string {
	if strings.TrimSpace(block) == "" {
		return BlockLatest
	}
	return block
}

func ParseHexInt64(value string) (int64, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 0, fmt.Errorf("empty hex value")
	}
	raw = strings.TrimPrefix(strings.ToLower(raw), "0x")
	if raw == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseUint(raw, 16, 63)
	if err != nil {
		return 0, fmt.Errorf("parse hex %q: %w", value, err)
	}
	return int64(parsed), nil
}
