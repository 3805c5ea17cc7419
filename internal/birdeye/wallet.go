package birdeye

import (
	"context"
	"net/url"
	"strconv"
)

// WalletService covers wallet endpoints
type WalletService struct {
	client *Client
}

// TokenList returns the token holdings of a wallet
func (s *WalletService) TokenList(ctx context.Context, wallet string) (*Response, error) {
	return s.client.get(ctx, "/v1/wallet/token_list", url.Values{"wallet": {wallet}})
}

// TokenBalance returns the balance of one token in a wallet
func (s *WalletService) TokenBalance(ctx context.Context, wallet, tokenAddress string) (*Response, error) {
	params := url.Values{
		"wallet":        {wallet},
		"token_address": {tokenAddress},
	}
	return s.client.get(ctx, "/v1/wallet/token_balance", params)
}

// TransactionHistory returns wallet transactions, optionally before a signature
func (s *WalletService) TransactionHistory(ctx context.Context, wallet string, limit int, before string) (*Response, error) {
	if limit == 0 {
		limit = 100
	}
	params := url.Values{
		"wallet": {wallet},
		"limit":  {strconv.Itoa(limit)},
	}
	if before != "" {
		params.Set("before", before)
	}
	return s.client.get(ctx, "/v1/wallet/tx_list", params)
}
