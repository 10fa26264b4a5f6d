// Package testutil contains helper builders and mocks used across tests to
// reduce boilerplate when constructing inventories and container doubles.
// They are not intended for production usage.
package testutil
