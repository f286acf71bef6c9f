// Package domain contains the core business entities and errors for
// elfeed-ai. It has no dependencies on adapters or infrastructure.
package domain
