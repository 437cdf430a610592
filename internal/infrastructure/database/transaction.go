package database

import (
	"context"

	"gorm.io/gorm"
)

// TxManager hands out connections and runs work inside a transaction.
// Usecases depend on it instead of *gorm.DB so the unit of atomicity stays explicit.
type TxManager interface {
	Conn(ctx context.Context) *gorm.DB
	WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) Conn(ctx context.Context) *gorm.DB {
	return m.db.WithContext(ctx)
}

// WithinTransaction commits when fn returns nil and rolls back otherwise.
func (m *gormTxManager) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return m.db.WithContext(ctx).Transaction(fn)
}
