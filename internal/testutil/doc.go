// Package testutil contains helper builders and utilities used across tests
// to reduce boilerplate when constructing raw model responses and asserting
// on emitted log entries. These helpers are not intended for production usage.
package testutil
