package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

const maxEndBlock = "99999999"

// TransactionList returns one page of normal transactions, most recent first.
func (c *Client) TransactionList(ctx context.Context, address string, page, offset int) ([]Transaction, error) {
	raw, err := c.get(ctx, "txlist", listParams(address, page, offset, true))
	if err != nil {
		return nil, err
	}
	return decodeList[Transaction]("txlist", raw)
}

func (c *Client) NFTTransfers(ctx context.Context, address string, offset int) ([]TokenTransfer, error) {
	raw, err := c.get(ctx, "tokennfttx", listParams(address, 1, offset, false))
	if err != nil {
		return nil, err
	}
	return decodeList[TokenTransfer]("tokennfttx", raw)
}

func (c *Client) InternalTransactions(ctx context.Context, address string, offset int) ([]InternalTransaction, error) {
	raw, err := c.get(ctx, "txlistinternal", listParams(address, 1, offset, true))
	if err != nil {
		return nil, err
	}
	return decodeList[InternalTransaction]("txlistinternal", raw)
}

// Balance returns the latest balance in wei as a base-10 string.
func (c *Client) Balance(ctx context.Context, address string) (string, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("tag", "latest")

	raw, err := c.get(ctx, "balance", params)
	if err != nil {
		return "", err
	}
	var wei string
	if err := json.Unmarshal(raw, &wei); err != nil {
		return "", fmt.Errorf("%w: balance: %v", ErrMalformedResult, err)
	}
	if !isDecimal(wei) {
		return "", fmt.Errorf("%w: balance %q", ErrMalformedResult, wei)
	}
	return wei, nil
}

func listParams(address string, page, offset int, blockRange bool) url.Values {
	if page <= 0 {
		page = 1
	}
	params := url.Values{}
	params.Set("address", address)
	if blockRange {
		params.Set("startblock", "0")
		params.Set("endblock", maxEndBlock)
	}
	params.Set("page", strconv.Itoa(page))
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}
	params.Set("sort", "desc")
	return params
}

func decodeList[T any](action string, raw json.RawMessage) ([]T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResult, action, err)
	}
	return out, nil
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
