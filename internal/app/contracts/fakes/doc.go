// Package fakes provides in-memory implementations of the repository and service contracts for tests.
package fakes
