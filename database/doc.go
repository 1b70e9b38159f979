// Package database manages the bun connection used by crudkit stores: YAML
// and environment configuration, the mysql, postgres and sqlite dialects,
// pool tuning, health checks with reconnect, query logging hooks, driver
// error classification and table bootstrap for registered models.
package database
