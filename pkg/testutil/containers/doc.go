// Package containers manages shared test containers for integration suites.
// All functionality is behind the integration build tag; without it the
// package is empty so plain builds never pull in testcontainers.
package containers
