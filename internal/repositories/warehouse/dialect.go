package warehouse

import (
	"github.com/jmoiron/sqlx"
)

// Dialect binds queries written with ? placeholders for a warehouse driver
type Dialect struct {
	bindType int
}

// DialectFor returns the placeholder dialect for a driver name.
// Postgres uses $n placeholders; Snowflake and SQLite accept ?.
func DialectFor(driver string) Dialect {
	return Dialect{bindType: sqlx.BindType(driver)}
}

// Rebind rewrites ? placeholders in query to the dialect's form
func (d Dialect) Rebind(query string) string {
	return sqlx.Rebind(d.bindType, query)
}

// expandIn expands the single IN (?) of query into one placeholder per value
func expandIn(query string, values []string) (string, []interface{}, error) {
	return sqlx.In(query, values)
}
