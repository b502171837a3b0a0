package table

import (
	"context"
	"fmt"
	"time"

	"github.com/example/homecook/pkg/config"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// GormStore serves the table API from MySQL through gorm.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(cfg *config.MySQLConfig) (*GormStore, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &GormStore{db: db}, nil
}

// Migrate creates or updates the tables for the given models.
func (s *GormStore) Migrate(ctx context.Context, models ...interface{}) error {
	return s.db.WithContext(ctx).AutoMigrate(models...)
}

func (s *GormStore) scoped(ctx context.Context, table string, filters []Filter) (*gorm.DB, error) {
	if err := checkIdent(table); err != nil {
		return nil, err
	}
	tx := s.db.WithContext(ctx).Table(table)
	for _, f := range filters {
		if err := checkIdent(f.Column); err != nil {
			return nil, err
		}
		col := mysqlDialect.quote(f.Column)
		switch f.Op {
		case OpIn:
			tx = tx.Where(col+" IN ?", f.Value)
		default:
			tx = tx.Where(col+" = ?", f.Value)
		}
	}
	return tx, nil
}

func (s *GormStore) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	tx, err := s.scoped(ctx, table, q.Filters)
	if err != nil {
		return nil, newError("select", table, err)
	}
	for _, o := range q.Sort {
		if err := checkIdent(o.Column); err != nil {
			return nil, newError("select", table, err)
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Column}, Desc: o.Desc})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var maps []map[string]interface{}
	if err := tx.Find(&maps).Error; err != nil {
		return nil, newError("select", table, err)
	}
	out := make([]Row, len(maps))
	for i, m := range maps {
		r := make(Row, len(m))
		for k, v := range m {
			r[k] = normalize(v)
		}
		out[i] = r
	}

	if err := embed(ctx, s, out, q.Relations); err != nil {
		return nil, err
	}
	return out, nil
}

// Insert has no RETURNING on MySQL; the inserted rows are echoed back.
func (s *GormStore) Insert(ctx context.Context, table string, rows ...Row) ([]Row, error) {
	if err := checkIdent(table); err != nil {
		return nil, newError("insert", table, err)
	}
	out := make([]Row, 0, len(rows))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range rows {
			if err := tx.Table(table).Create(map[string]interface{}(r.Clone())).Error; err != nil {
				return err
			}
			out = append(out, r.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, newError("insert", table, err)
	}
	return out, nil
}

func (s *GormStore) Update(ctx context.Context, table string, patch Row, filters ...Filter) ([]Row, error) {
	before, err := s.Select(ctx, table, Query{Filters: filters})
	if err != nil {
		return nil, newError("update", table, err)
	}
	if len(before) == 0 {
		return []Row{}, nil
	}

	tx, err := s.scoped(ctx, table, filters)
	if err != nil {
		return nil, newError("update", table, err)
	}
	if err := tx.Updates(map[string]interface{}(patch)).Error; err != nil {
		return nil, newError("update", table, err)
	}

	out := make([]Row, len(before))
	for i, r := range before {
		for k, v := range patch {
			r[k] = v
		}
		out[i] = r
	}
	return out, nil
}

func (s *GormStore) Delete(ctx context.Context, table string, filters ...Filter) ([]Row, error) {
	before, err := s.Select(ctx, table, Query{Filters: filters})
	if err != nil {
		return nil, newError("delete", table, err)
	}

	sql, args, err := mysqlDialect.deleteSQL(table, filters)
	if err != nil {
		return nil, newError("delete", table, err)
	}
	if err := s.db.WithContext(ctx).Exec(sql, args...).Error; err != nil {
		return nil, newError("delete", table, err)
	}
	return before, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
