// Package tx lets domain services group writes without importing a driver.
package tx

import "context"

// Manager runs fn as one atomic unit of work. Calls made while a unit is
// already open in ctx join it.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
