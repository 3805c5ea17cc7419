package handlers

// @title Trader Portfolio API
// @version 1.0
// @description Latest trader portfolio aggregates from the data warehouse, enriched with Birdeye token data

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8081
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token. Only required when AUTH_JWT_SECRET is set.

// @tag.name portfolio
// @tag.description Trader portfolio operations
