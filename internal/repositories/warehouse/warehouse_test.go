package warehouse

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"trader-portfolio-api/internal/config"
	"trader-portfolio-api/internal/database"
	"trader-portfolio-api/internal/models"
	"trader-portfolio-api/internal/repositories"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
)

func setupTestWarehouse(t *testing.T) *Repository {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	cfg := &config.WarehouseConfig{
		Driver:          config.DriverSQLite,
		DSN:             filepath.Join(t.TempDir(), "warehouse.db"),
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}

	connector := database.NewConnector(cfg, logger)
	db, err := connector.DB(context.Background())
	if err != nil {
		t.Fatalf("Failed to open warehouse: %v", err)
	}

	if err := database.NewMigrationManager(db, cfg.Driver, logger).RunMigrations(); err != nil {
		t.Fatalf("Failed to migrate warehouse: %v", err)
	}

	seed := []string{
		`INSERT INTO TRADER_PORTFOLIO_AGG (TOKEN_SYMBOL, TOKEN_ADDRESS, CATEGORY, TOTAL_VALUE_USD, TOTAL_BALANCE, TRADER_COUNT, FETCH_DATE) VALUES
			('OLD', 'OldMint', 'whales', 10, 1, 1, '2024-09-30'),
			('SOL', 'So11111111111111111111111111111111111111112', 'whales', 1500.5, 10, 3, '2024-10-01'),
			('BONK', 'DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263', 'whales', 2500, 1000000, 2, '2024-10-01'),
			('NOADDR', '', 'whales', 5, 1, 1, '2024-10-01'),
			('SOL', 'So11111111111111111111111111111111111111112', 'degens', 100, 1, 1, '2024-10-02')`,
		`INSERT INTO TRADERS (DATE_ADDED, ADDRESS, CATEGORY, FREQ) VALUES
			('2024-09-01', 'walletC', 'whales', 7),
			('2024-09-02', 'walletA', 'whales', 9),
			('2024-09-03', 'walletB', 'whales', 9),
			('2024-09-04', 'walletD', 'whales', 1),
			('2024-09-05', 'walletZ', 'degens', 3)`,
		`INSERT INTO TOKEN_DATA (TOKEN_ADDRESS, SYMBOL, DECIMALS, NAME, PRICE, LAST_UPDATED, DATE_ADDED) VALUES
			('So11111111111111111111111111111111111111112', 'SOL', 9, 'Wrapped SOL', 150.25, '2024-10-01 12:30:00', '2024-01-01')`,
	}
	for _, stmt := range seed {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("Failed to seed warehouse: %v", err)
		}
	}

	repo := NewRepository(connector, logger)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func openSession(t *testing.T, repo *Repository) repositories.WarehouseSession {
	t.Helper()
	session, err := repo.OpenSession(context.Background())
	if err != nil {
		t.Fatalf("OpenSession() failed: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func TestSession_MaxFetchDate(t *testing.T) {
	session := openSession(t, setupTestWarehouse(t))
	ctx := context.Background()

	t.Run("LatestDate", func(t *testing.T) {
		fetchDate, err := session.MaxFetchDate(ctx, "whales")
		if err != nil {
			t.Fatalf("MaxFetchDate() failed: %v", err)
		}
		if !fetchDate.Valid {
			t.Fatal("Expected a valid fetch date")
		}
		if fetchDate.String() != "2024-10-01" {
			t.Errorf("Expected 2024-10-01, got %s", fetchDate.String())
		}
	})

	t.Run("UnknownCategory", func(t *testing.T) {
		fetchDate, err := session.MaxFetchDate(ctx, "nobody")
		if err != nil {
			t.Fatalf("MaxFetchDate() failed: %v", err)
		}
		if fetchDate.Valid {
			t.Errorf("Expected no fetch date, got %s", fetchDate.String())
		}
	})
}

func TestSession_PortfolioAggregates(t *testing.T) {
	session := openSession(t, setupTestWarehouse(t))
	ctx := context.Background()

	fetchDate, err := session.MaxFetchDate(ctx, "whales")
	if err != nil {
		t.Fatalf("MaxFetchDate() failed: %v", err)
	}

	aggregates, err := session.PortfolioAggregates(ctx, "whales", fetchDate)
	if err != nil {
		t.Fatalf("PortfolioAggregates() failed: %v", err)
	}

	if len(aggregates) != 3 {
		t.Fatalf("Expected 3 aggregates for the latest date, got %d", len(aggregates))
	}

	var symbols []string
	for _, a := range aggregates {
		symbols = append(symbols, *a.Token)
		if a.FetchDate.String() != "2024-10-01" {
			t.Errorf("Expected FETCH_DATE 2024-10-01, got %s", a.FetchDate.String())
		}
	}

	if diff := cmp.Diff([]string{"BONK", "SOL", "NOADDR"}, symbols); diff != "" {
		t.Errorf("Unexpected aggregate order (-want +got):\n%s", diff)
	}

	want := []string{
		"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263",
		"So11111111111111111111111111111111111111112",
	}
	if diff := cmp.Diff(want, models.UniqueTokenAddresses(aggregates)); diff != "" {
		t.Errorf("Unexpected token addresses (-want +got):\n%s", diff)
	}
}

func TestSession_TraderAddresses(t *testing.T) {
	session := openSession(t, setupTestWarehouse(t))
	ctx := context.Background()

	addresses, err := session.TraderAddresses(ctx, "whales")
	if err != nil {
		t.Fatalf("TraderAddresses() failed: %v", err)
	}

	if diff := cmp.Diff([]string{"walletA", "walletB", "walletC", "walletD"}, addresses); diff != "" {
		t.Errorf("Unexpected addresses (-want +got):\n%s", diff)
	}

	empty, err := session.TraderAddresses(ctx, "nobody")
	if err != nil {
		t.Fatalf("TraderAddresses() failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("Expected an empty non-nil slice, got %#v", empty)
	}
}

func TestSession_TopTraderAddresses(t *testing.T) {
	session := openSession(t, setupTestWarehouse(t))
	ctx := context.Background()

	top, err := session.TopTraderAddresses(ctx, "whales", 3)
	if err != nil {
		t.Fatalf("TopTraderAddresses() failed: %v", err)
	}

	if diff := cmp.Diff([]string{"walletA", "walletB", "walletC"}, top); diff != "" {
		t.Errorf("Unexpected top traders (-want +got):\n%s", diff)
	}

	_, err = session.TopTraderAddresses(ctx, "whales", 0)
	if !errors.Is(err, repositories.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestSession_TraderDetails(t *testing.T) {
	session := openSession(t, setupTestWarehouse(t))
	ctx := context.Background()

	t.Run("OrderedByAddress", func(t *testing.T) {
		details, err := session.TraderDetails(ctx, []string{"walletC", "walletA", "unknown"})
		if err != nil {
			t.Fatalf("TraderDetails() failed: %v", err)
		}

		if len(details) != 2 {
			t.Fatalf("Expected 2 details, got %d", len(details))
		}

		if *details[0].Address != "walletA" || *details[1].Address != "walletC" {
			t.Errorf("Expected walletA then walletC, got %s then %s", *details[0].Address, *details[1].Address)
		}

		if *details[0].Freq != 9 {
			t.Errorf("Expected FREQ 9, got %d", *details[0].Freq)
		}

		if details[0].DateAdded.String() != "2024-09-02" {
			t.Errorf("Expected DATE_ADDED 2024-09-02, got %s", details[0].DateAdded.String())
		}
	})

	t.Run("EmptyInput", func(t *testing.T) {
		details, err := session.TraderDetails(ctx, nil)
		if err != nil {
			t.Fatalf("TraderDetails() failed: %v", err)
		}
		if details == nil || len(details) != 0 {
			t.Errorf("Expected an empty non-nil slice, got %#v", details)
		}
	})
}

func TestSession_TokenData(t *testing.T) {
	session := openSession(t, setupTestWarehouse(t))
	ctx := context.Background()

	sol := "So11111111111111111111111111111111111111112"
	tokens, err := session.TokenData(ctx, []string{sol, "missing"})
	if err != nil {
		t.Fatalf("TokenData() failed: %v", err)
	}

	if len(tokens) != 1 {
		t.Fatalf("Expected 1 token, got %d", len(tokens))
	}

	token, ok := tokens[sol]
	if !ok {
		t.Fatal("Expected SOL in token data")
	}

	if token.Symbol == nil || *token.Symbol != "SOL" {
		t.Errorf("Expected symbol SOL, got %v", token.Symbol)
	}

	if token.Price == nil || *token.Price != 150.25 {
		t.Errorf("Expected price 150.25, got %v", token.Price)
	}

	if token.CreationTimestamp.Valid {
		t.Error("Expected CREATION_TIMESTAMP to be null")
	}
}

func TestSession_Close(t *testing.T) {
	repo := setupTestWarehouse(t)
	session, err := repo.OpenSession(context.Background())
	if err != nil {
		t.Fatalf("OpenSession() failed: %v", err)
	}

	if err := session.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	if err := session.Close(); err != nil {
		t.Errorf("second Close() should be a no-op, got %v", err)
	}

	_, err = session.TraderAddresses(context.Background(), "whales")
	if !errors.Is(err, repositories.ErrSessionClosed) {
		t.Errorf("Expected ErrSessionClosed, got %v", err)
	}
}

func TestSession_Timeout(t *testing.T) {
	session := openSession(t, setupTestWarehouse(t))

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := session.TraderAddresses(ctx, "whales")
	if err == nil {
		t.Fatal("Expected an error for an expired context")
	}

	if !repositories.IsTimeout(err) {
		t.Errorf("Expected a timeout error, got %v", err)
	}
}

func TestDialect(t *testing.T) {
	tests := []struct {
		driver string
		query  string
		want   string
	}{
		{config.DriverSnowflake, "A = ? AND B = ?", "A = ? AND B = ?"},
		{config.DriverSQLite, "A = ?", "A = ?"},
		{config.DriverPostgres, "A = ? AND B IN (?, ?)", "A = $1 AND B IN ($2, $3)"},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			if got := DialectFor(tt.driver).Rebind(tt.query); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExpandIn(t *testing.T) {
	query, args, err := expandIn("SELECT ADDRESS FROM TRADERS WHERE CATEGORY = 'whales' AND ADDRESS IN (?)", []string{"walletA", "walletB"})
	if err != nil {
		t.Fatalf("expandIn() failed: %v", err)
	}

	if got := DialectFor(config.DriverPostgres).Rebind(query); got != "SELECT ADDRESS FROM TRADERS WHERE CATEGORY = 'whales' AND ADDRESS IN ($1, $2)" {
		t.Errorf("Unexpected postgres query %q", got)
	}
	if diff := cmp.Diff([]interface{}{"walletA", "walletB"}, args); diff != "" {
		t.Errorf("Args mismatch (-want +got):\n%s", diff)
	}
}
