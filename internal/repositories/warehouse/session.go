package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"trader-portfolio-api/internal/models"
	"trader-portfolio-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// Table names
const (
	TablePortfolioAgg = "TRADER_PORTFOLIO_AGG"
	TableTraders      = "TRADERS"
	TableTokenData    = "TOKEN_DATA"
)

// Session runs the portfolio queries on one dedicated connection
type Session struct {
	conn    *sql.Conn
	dialect Dialect
	logger  *logrus.Entry

	mu     sync.Mutex
	closed bool
}

// NewSession wraps a connection taken from the pool
func NewSession(conn *sql.Conn, dialect Dialect, logger *logrus.Entry) *Session {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Session{
		conn:    conn,
		dialect: dialect,
		logger:  logger,
	}
}

// MaxFetchDate returns the latest snapshot date for a category
func (s *Session) MaxFetchDate(ctx context.Context, category string) (models.FetchDate, error) {
	query := fmt.Sprintf("SELECT MAX(FETCH_DATE) FROM %s WHERE CATEGORY = ?", TablePortfolioAgg)

	var fetchDate models.FetchDate
	err := s.queryRow(ctx, "max_fetch_date", TablePortfolioAgg, query, category).Scan(&fetchDate)
	if err != nil {
		return models.FetchDate{}, repositories.QueryError("max_fetch_date", TablePortfolioAgg, err)
	}

	return fetchDate, nil
}

// PortfolioAggregates returns the aggregates of a category snapshot, largest holdings first
func (s *Session) PortfolioAggregates(ctx context.Context, category string, fetchDate models.FetchDate) ([]models.PortfolioAggregate, error) {
	query := fmt.Sprintf(`SELECT TOKEN_SYMBOL AS TOKEN, TOKEN_ADDRESS, CATEGORY, TOTAL_VALUE_USD,
		TOTAL_BALANCE, TRADER_COUNT, FETCH_DATE
		FROM %s
		WHERE CATEGORY = ? AND FETCH_DATE = ?
		ORDER BY TOTAL_VALUE_USD DESC`, TablePortfolioAgg)

	rows, err := s.query(ctx, "portfolio_aggregates", TablePortfolioAgg, query, category, fetchDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	aggregates := []models.PortfolioAggregate{}
	for rows.Next() {
		var a models.PortfolioAggregate
		if err := rows.Scan(
			&a.Token,
			&a.TokenAddress,
			&a.Category,
			&a.TotalValueUSD,
			&a.TotalBalance,
			&a.TraderCount,
			&a.FetchDate,
		); err != nil {
			return nil, repositories.QueryError("portfolio_aggregates", TablePortfolioAgg, err)
		}
		aggregates = append(aggregates, a)
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.QueryError("portfolio_aggregates", TablePortfolioAgg, err)
	}

	return aggregates, nil
}

// TraderAddresses returns every trader address in a category
func (s *Session) TraderAddresses(ctx context.Context, category string) ([]string, error) {
	query := fmt.Sprintf("SELECT ADDRESS FROM %s WHERE CATEGORY = ? ORDER BY ADDRESS", TableTraders)
	return s.addresses(ctx, "trader_addresses", query, category)
}

// TopTraderAddresses returns the limit most frequent trader addresses in a category
func (s *Session) TopTraderAddresses(ctx context.Context, category string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, repositories.NewRepositoryError("top_trader_addresses", TableTraders,
			fmt.Errorf("%w: limit must be positive, got %d", repositories.ErrInvalidArgument, limit))
	}

	// LIMIT is formatted in since not every driver binds it
	query := fmt.Sprintf("SELECT ADDRESS FROM %s WHERE CATEGORY = ? ORDER BY FREQ DESC, ADDRESS LIMIT %d",
		TableTraders, limit)
	return s.addresses(ctx, "top_trader_addresses", query, category)
}

// TraderDetails returns the TRADERS rows of the given addresses ordered by address
func (s *Session) TraderDetails(ctx context.Context, addresses []string) ([]models.TraderDetail, error) {
	details := []models.TraderDetail{}
	if len(addresses) == 0 {
		return details, nil
	}

	query, args, err := expandIn(fmt.Sprintf(`SELECT DATE_ADDED, ADDRESS, CATEGORY, FREQ
		FROM %s
		WHERE ADDRESS IN (?)
		ORDER BY ADDRESS`, TableTraders), addresses)
	if err != nil {
		return nil, repositories.QueryError("trader_details", TableTraders, err)
	}

	rows, err := s.query(ctx, "trader_details", TableTraders, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var d models.TraderDetail
		if err := rows.Scan(&d.DateAdded, &d.Address, &d.Category, &d.Freq); err != nil {
			return nil, repositories.QueryError("trader_details", TableTraders, err)
		}
		details = append(details, d)
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.QueryError("trader_details", TableTraders, err)
	}

	return details, nil
}

// TokenData returns TOKEN_DATA rows keyed by token address
func (s *Session) TokenData(ctx context.Context, addresses []string) (map[string]models.WarehouseToken, error) {
	tokens := make(map[string]models.WarehouseToken, len(addresses))
	if len(addresses) == 0 {
		return tokens, nil
	}

	query, args, err := expandIn(fmt.Sprintf(`SELECT TOKEN_ADDRESS, SYMBOL, DECIMALS, NAME, WEBSITE, TWITTER, DESCRIPTION,
		LOGO_URI, LIQUIDITY, MARKET_CAP, HOLDER_COUNT, PRICE, V24H_USD, V_BUY_HISTORY_24H_USD,
		V_SELL_HISTORY_24H_USD, CREATION_TIMESTAMP, OWNER, TOP10_HOLDER_PERCENT, OWNER_PERCENTAGE,
		CREATOR_PERCENTAGE, LAST_UPDATED, DATE_ADDED
		FROM %s
		WHERE TOKEN_ADDRESS IN (?)`, TableTokenData), addresses)
	if err != nil {
		return nil, repositories.QueryError("token_data", TableTokenData, err)
	}

	rows, err := s.query(ctx, "token_data", TableTokenData, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t models.WarehouseToken
		if err := rows.Scan(
			&t.TokenAddress,
			&t.Symbol,
			&t.Decimals,
			&t.Name,
			&t.Website,
			&t.Twitter,
			&t.Description,
			&t.LogoURI,
			&t.Liquidity,
			&t.MarketCap,
			&t.HolderCount,
			&t.Price,
			&t.Volume24hUSD,
			&t.BuyVolume24hUSD,
			&t.SellVolume24hUSD,
			&t.CreationTimestamp,
			&t.Owner,
			&t.Top10HolderPercent,
			&t.OwnerPercentage,
			&t.CreatorPercentage,
			&t.LastUpdated,
			&t.DateAdded,
		); err != nil {
			return nil, repositories.QueryError("token_data", TableTokenData, err)
		}
		tokens[t.TokenAddress] = t
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.QueryError("token_data", TableTokenData, err)
	}

	return tokens, nil
}

// Close returns the connection to the pool. Closing twice is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.conn.Close(); err != nil {
		return repositories.NewRepositoryError("close", "session", err)
	}
	return nil
}

func (s *Session) addresses(ctx context.Context, operation, query string, args ...interface{}) ([]string, error) {
	rows, err := s.query(ctx, operation, TableTraders, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	addresses := []string{}
	for rows.Next() {
		var address sql.NullString
		if err := rows.Scan(&address); err != nil {
			return nil, repositories.QueryError(operation, TableTraders, err)
		}
		if address.Valid {
			addresses = append(addresses, address.String)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.QueryError(operation, TableTraders, err)
	}

	return addresses, nil
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// query executes a query and logs the result
func (s *Session) query(ctx context.Context, operation, table, query string, args ...interface{}) (*sql.Rows, error) {
	if s.isClosed() {
		return nil, repositories.NewRepositoryError(operation, table, repositories.ErrSessionClosed)
	}

	query = s.dialect.Rebind(query)

	start := time.Now()
	rows, err := s.conn.QueryContext(ctx, query, args...)
	s.logQuery(operation, table, query, args, time.Since(start), err)

	if err != nil {
		return nil, repositories.QueryError(operation, table, err)
	}

	return rows, nil
}

// queryRow executes a single-row query and logs it
func (s *Session) queryRow(ctx context.Context, operation, table, query string, args ...interface{}) rowScanner {
	if s.isClosed() {
		return errRow{err: repositories.ErrSessionClosed}
	}

	query = s.dialect.Rebind(query)

	start := time.Now()
	row := s.conn.QueryRowContext(ctx, query, args...)
	s.logQuery(operation, table, query, args, time.Since(start), row.Err())

	return row
}

// logQuery logs a query with its execution time
func (s *Session) logQuery(operation, table, query string, args []interface{}, duration time.Duration, err error) {
	fields := logrus.Fields{
		"operation": operation,
		"table":     table,
		"query":     query,
		"args":      len(args),
		"duration":  duration,
	}

	if err != nil {
		fields["error"] = err.Error()
		s.logger.WithFields(fields).Error("Query failed")
	} else {
		s.logger.WithFields(fields).Debug("Query executed")
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type errRow struct {
	err error
}

func (r errRow) Scan(...interface{}) error {
	return r.err
}
