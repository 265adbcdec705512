// Package postgres implements the store interfaces on PostgreSQL,
// including the mapping from driver error codes to the store's error
// sentinels. Schema migrations live in the embedded migrations subpackage.
package postgres
