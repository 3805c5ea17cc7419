package models

// WarehouseToken is one TOKEN_DATA row, used when token data is served from the warehouse
type WarehouseToken struct {
	TokenAddress       string    `json:"TOKEN_ADDRESS" db:"token_address"`
	Symbol             *string   `json:"SYMBOL" db:"symbol"`
	Decimals           *int64    `json:"DECIMALS" db:"decimals"`
	Name               *string   `json:"NAME" db:"name"`
	Website            *string   `json:"WEBSITE" db:"website"`
	Twitter            *string   `json:"TWITTER" db:"twitter"`
	Description        *string   `json:"DESCRIPTION" db:"description"`
	LogoURI            *string   `json:"LOGO_URI" db:"logo_uri"`
	Liquidity          *float64  `json:"LIQUIDITY" db:"liquidity"`
	MarketCap          *float64  `json:"MARKET_CAP" db:"market_cap"`
	HolderCount        *int64    `json:"HOLDER_COUNT" db:"holder_count"`
	Price              *float64  `json:"PRICE" db:"price"`
	Volume24hUSD       *float64  `json:"V24H_USD" db:"v24h_usd"`
	BuyVolume24hUSD    *float64  `json:"V_BUY_HISTORY_24H_USD" db:"v_buy_history_24h_usd"`
	SellVolume24hUSD   *float64  `json:"V_SELL_HISTORY_24H_USD" db:"v_sell_history_24h_usd"`
	CreationTimestamp  FetchDate `json:"CREATION_TIMESTAMP" db:"creation_timestamp"`
	Owner              *string   `json:"OWNER" db:"owner"`
	Top10HolderPercent *float64  `json:"TOP10_HOLDER_PERCENT" db:"top10_holder_percent"`
	OwnerPercentage    *float64  `json:"OWNER_PERCENTAGE" db:"owner_percentage"`
	CreatorPercentage  *float64  `json:"CREATOR_PERCENTAGE" db:"creator_percentage"`
	LastUpdated        FetchDate `json:"LAST_UPDATED" db:"last_updated"`
	DateAdded          FetchDate `json:"DATE_ADDED" db:"date_added"`
}
