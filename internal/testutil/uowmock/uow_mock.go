package uowmock

import (
	"context"
	"errors"

	"stablelend-backend/internal/domain/pool"
	"stablelend-backend/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn     func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinPoolTxFn func(ctx context.Context, token string, fn func(r uow.Repos, p *pool.Pool) error) error
}

// Convenience fluent setters
func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}
func (m *UoW) WithWithinPoolTx(fn func(context.Context, string, func(uow.Repos, *pool.Pool) error) error) *UoW {
	m.WithinPoolTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

// Methods implementing UnitOfWork
func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinPoolTx(ctx context.Context, token string, fn func(r uow.Repos, p *pool.Pool) error) error {
	if m.WithinPoolTxFn != nil {
		return m.WithinPoolTxFn(ctx, token, fn)
	}
	return errUnimplemented
}
