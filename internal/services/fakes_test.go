package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"trader-portfolio-api/internal/birdeye"
	"trader-portfolio-api/internal/models"
	"trader-portfolio-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func strPtr(s string) *string { return &s }

// fakeWarehouse hands out a single fakeSession
type fakeWarehouse struct {
	session *fakeSession
	openErr error
	opened  int
}

func (w *fakeWarehouse) OpenSession(ctx context.Context) (repositories.WarehouseSession, error) {
	if w.openErr != nil {
		return nil, w.openErr
	}
	w.opened++
	return w.session, nil
}

func (w *fakeWarehouse) Close() error { return nil }

// fakeSession serves canned rows per category
type fakeSession struct {
	fetchDates map[string]models.FetchDate
	aggregates map[string][]models.PortfolioAggregate
	traders    map[string][]string
	tokens     map[string]models.WarehouseToken

	queryErr error
	closed   bool

	topLimit       int
	detailRequests [][]string
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		fetchDates: map[string]models.FetchDate{
			"whales": models.ParseFetchDate("2024-10-01"),
		},
		aggregates: map[string][]models.PortfolioAggregate{
			"whales": {
				{Token: strPtr("BONK"), TokenAddress: strPtr("mintBonk"), Category: strPtr("whales")},
				{Token: strPtr("SOL"), TokenAddress: strPtr("mintSol"), Category: strPtr("whales")},
				{Token: strPtr("BONK"), TokenAddress: strPtr("mintBonk"), Category: strPtr("whales")},
				{Token: strPtr("NOADDR"), Category: strPtr("whales")},
			},
		},
		traders: map[string][]string{
			"whales": {"walletA", "walletB", "walletC"},
		},
		tokens: map[string]models.WarehouseToken{
			"mintBonk": {TokenAddress: "mintBonk", Symbol: strPtr("BONK")},
		},
	}
}

func (s *fakeSession) MaxFetchDate(ctx context.Context, category string) (models.FetchDate, error) {
	if s.queryErr != nil {
		return models.FetchDate{}, s.queryErr
	}
	return s.fetchDates[category], nil
}

func (s *fakeSession) PortfolioAggregates(ctx context.Context, category string, fetchDate models.FetchDate) ([]models.PortfolioAggregate, error) {
	return s.aggregates[category], nil
}

func (s *fakeSession) TraderAddresses(ctx context.Context, category string) ([]string, error) {
	return s.traders[category], nil
}

func (s *fakeSession) TopTraderAddresses(ctx context.Context, category string, limit int) ([]string, error) {
	s.topLimit = limit
	addresses := s.traders[category]
	if len(addresses) > limit {
		addresses = addresses[:limit]
	}
	return addresses, nil
}

func (s *fakeSession) TraderDetails(ctx context.Context, addresses []string) ([]models.TraderDetail, error) {
	s.detailRequests = append(s.detailRequests, addresses)
	details := make([]models.TraderDetail, 0, len(addresses))
	for _, address := range addresses {
		details = append(details, models.TraderDetail{Address: strPtr(address)})
	}
	return details, nil
}

func (s *fakeSession) TokenData(ctx context.Context, addresses []string) (map[string]models.WarehouseToken, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	result := make(map[string]models.WarehouseToken)
	for _, address := range addresses {
		if token, ok := s.tokens[address]; ok {
			result[address] = token
		}
	}
	return result, nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

// fakeBirdeye answers token requests with one entry per requested address
type fakeBirdeye struct {
	mu sync.Mutex

	metadataCalls []string
	tradeCalls    []string
	priceCalls    []string

	failBatch string
	err       error
}

func (b *fakeBirdeye) respond(listAddress string, build func(address string) string) (*birdeye.Response, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.failBatch != "" && strings.Contains(listAddress, b.failBatch) {
		return nil, errors.New("birdeye batch failed")
	}

	data := make(map[string]json.RawMessage)
	for _, address := range strings.Split(listAddress, ",") {
		data[address] = json.RawMessage(build(address))
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &birdeye.Response{Success: true, Data: raw}, nil
}

func (b *fakeBirdeye) MetadataMultiple(ctx context.Context, listAddress string) (*birdeye.Response, error) {
	b.mu.Lock()
	b.metadataCalls = append(b.metadataCalls, listAddress)
	b.mu.Unlock()
	return b.respond(listAddress, func(address string) string {
		return fmt.Sprintf(`{"address":%q}`, address)
	})
}

func (b *fakeBirdeye) TradeDataMultiple(ctx context.Context, listAddress string) (*birdeye.Response, error) {
	b.mu.Lock()
	b.tradeCalls = append(b.tradeCalls, listAddress)
	b.mu.Unlock()
	return b.respond(listAddress, func(address string) string {
		return `{"price":1.5}`
	})
}

func (b *fakeBirdeye) PriceVolumeMulti(ctx context.Context, listAddress, interval string) (*birdeye.Response, error) {
	b.mu.Lock()
	b.priceCalls = append(b.priceCalls, listAddress+"@"+interval)
	b.mu.Unlock()
	return b.respond(listAddress, func(address string) string {
		if address == "mintUnpriced" {
			return "null"
		}
		return `{"price":2,"volumeUSD":10}`
	})
}

// downCache fails every call, as an unreachable redis does
type downCache struct {
	mu     sync.Mutex
	reads  int
	writes int
}

func (c *downCache) GetMany(context.Context, []string) (map[string][]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads++
	return nil, errors.New("dial tcp: connection refused")
}

func (c *downCache) SetMany(context.Context, map[string][]byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes++
	return errors.New("dial tcp: connection refused")
}

func (c *downCache) Close() error { return nil }
