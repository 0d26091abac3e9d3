// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing conversation states and evidence sets. They
// are not intended for production usage.
package testutil
