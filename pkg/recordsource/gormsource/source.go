// Package gormsource serves backoffice tables from a SQL database through gorm.
package gormsource

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/recliq/go-backoffice/components/backoffice"
)

// Source fetches records of type T. Filters whose key appears in the column
// map are pushed down as exact-match WHERE clauses; the rest are left to the
// table's in-memory filtering.
type Source[T any] struct {
	db      *gorm.DB
	columns map[string]string
	order   string
}

var _ backoffice.Source[backoffice.Payment] = (*Source[backoffice.Payment])(nil)

// New builds a source. columns maps filter keys to database columns.
func New[T any](db *gorm.DB, columns map[string]string) (*Source[T], error) {
	if db == nil {
		return nil, errors.New("gormsource: db is required")
	}
	return &Source[T]{db: db, columns: columns, order: "id"}, nil
}

// Fetch loads records ordered by primary key.
func (s *Source[T]) Fetch(ctx context.Context, filters map[string]string) ([]T, error) {
	query := s.db.WithContext(ctx).Model(new(T))
	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		column, ok := s.columns[key]
		if !ok {
			continue
		}
		query = query.Where(clause.Eq{Column: clause.Column{Name: column}, Value: filters[key]})
	}
	var out []T
	if err := query.Order(s.order).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("gormsource: fetch: %w", err)
	}
	return out, nil
}

// Sources binds the seven record tables to db. Interventions come from log when set.
func Sources(db *gorm.DB, log *backoffice.ActionLog) (backoffice.Sources, error) {
	var src backoffice.Sources
	var err error
	if src.Payments, err = New[backoffice.Payment](db, map[string]string{"status": "status", "method": "method"}); err != nil {
		return src, err
	}
	if src.Commissions, err = New[backoffice.Commission](db, map[string]string{"status": "status", "period": "period"}); err != nil {
		return src, err
	}
	if src.Balances, err = New[backoffice.Balance](db, map[string]string{"status": "status", "account_type": "account_type"}); err != nil {
		return src, err
	}
	if src.FraudFlags, err = New[backoffice.FraudFlag](db, map[string]string{"status": "status", "severity": "severity", "subject_type": "subject_type"}); err != nil {
		return src, err
	}
	if src.Referrals, err = New[backoffice.Referral](db, map[string]string{"status": "status"}); err != nil {
		return src, err
	}
	if src.Agents, err = New[backoffice.AgentPerformance](db, map[string]string{"status": "status", "region": "region"}); err != nil {
		return src, err
	}
	if src.Users, err = New[backoffice.ActiveUser](db, map[string]string{"status": "status", "region": "region"}); err != nil {
		return src, err
	}
	if log != nil {
		src.Interventions = log
	}
	return src, nil
}

// Migrate creates or updates the record tables.
func Migrate(ctx context.Context, db *gorm.DB) error {
	err := db.WithContext(ctx).AutoMigrate(
		&backoffice.Payment{},
		&backoffice.Commission{},
		&backoffice.Balance{},
		&backoffice.FraudFlag{},
		&backoffice.Referral{},
		&backoffice.AgentPerformance{},
		&backoffice.ActiveUser{},
	)
	if err != nil {
		return fmt.Errorf("gormsource: migrate: %w", err)
	}
	return nil
}

// Seed migrates db and inserts the sample fixtures. Existing rows are kept.
func Seed(ctx context.Context, db *gorm.DB) error {
	if err := Migrate(ctx, db); err != nil {
		return err
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return errors.Join(
			seed(tx, "payments", backoffice.SamplePayments()),
			seed(tx, "commissions", backoffice.SampleCommissions()),
			seed(tx, "balances", backoffice.SampleBalances()),
			seed(tx, "fraud flags", backoffice.SampleFraudFlags()),
			seed(tx, "referrals", backoffice.SampleReferrals()),
			seed(tx, "agents", backoffice.SampleAgents()),
			seed(tx, "users", backoffice.SampleUsers()),
		)
	})
}

func seed[T any](tx *gorm.DB, name string, records []T) error {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&records).Error; err != nil {
		return fmt.Errorf("gormsource: seed %s: %w", name, err)
	}
	return nil
}
