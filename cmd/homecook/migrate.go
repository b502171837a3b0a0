package main

import (
	"context"
	"fmt"

	"github.com/example/homecook/pkg/models"
	"github.com/example/homecook/pkg/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the backend tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := cmd.Context()
			switch cfg.Backend.Driver {
			case "mysql":
				store, err := table.NewGormStore(&cfg.Backend.MySQL)
				if err != nil {
					return err
				}
				defer store.Close()
				if err := store.Migrate(ctx, models.All()...); err != nil {
					return fmt.Errorf("auto-migrate: %w", err)
				}
			case "postgres":
				store, err := table.NewPostgresStore(ctx, cfg.Backend.Postgres)
				if err != nil {
					return err
				}
				defer store.Close()
				if err := migratePostgres(ctx, store); err != nil {
					return err
				}
			default:
				logger.Info("Memory backend needs no migration")
				return nil
			}
			logger.Info("Migration complete", zap.String("backend", cfg.Backend.Driver))
			return nil
		},
	}
}

func migratePostgres(ctx context.Context, store *table.PostgresStore) error {
	for i, stmt := range postgresSchema {
		if err := store.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id varchar(36) PRIMARY KEY,
		name varchar(100) NOT NULL,
		email varchar(100) NOT NULL UNIQUE,
		role varchar(20) NOT NULL DEFAULT 'customer',
		avatar_url varchar(255) NOT NULL DEFAULT '',
		phone varchar(20) NOT NULL DEFAULT '',
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS credentials (
		user_id varchar(36) PRIMARY KEY,
		password_hash varchar(100) NOT NULL,
		email_confirmed boolean NOT NULL DEFAULT false,
		confirmation_token varchar(36) NOT NULL DEFAULT '',
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_credentials_token ON credentials (confirmation_token)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id varchar(36) PRIMARY KEY,
		user_id varchar(36) NOT NULL UNIQUE,
		address varchar(255) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS cookers (
		id varchar(36) PRIMARY KEY,
		user_id varchar(36) NOT NULL UNIQUE,
		kitchen_name varchar(100) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cookers_kitchen ON cookers (kitchen_name)`,
	`CREATE TABLE IF NOT EXISTS menu_items (
		id varchar(36) PRIMARY KEY,
		cooker_id varchar(36) NOT NULL,
		title varchar(120) NOT NULL,
		description text NOT NULL DEFAULT '',
		price numeric(10,2) NOT NULL,
		image_url varchar(255) NOT NULL DEFAULT '',
		category varchar(50) NOT NULL DEFAULT '',
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_menu_items_cooker ON menu_items (cooker_id)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id varchar(36) PRIMARY KEY,
		customer_id varchar(36) NOT NULL,
		cooker_id varchar(36) NOT NULL,
		status varchar(20) NOT NULL DEFAULT 'placed',
		total numeric(10,2) NOT NULL DEFAULT 0,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders (customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_cooker ON orders (cooker_id)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id varchar(36) PRIMARY KEY,
		order_id varchar(36) NOT NULL,
		menu_item_id varchar(36) NOT NULL,
		quantity integer NOT NULL,
		price numeric(10,2) NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items (order_id)`,
	`CREATE TABLE IF NOT EXISTS deliveries (
		id varchar(36) PRIMARY KEY,
		order_id varchar(36) NOT NULL UNIQUE,
		courier_id varchar(36) NOT NULL DEFAULT '',
		address varchar(255) NOT NULL DEFAULT '',
		status varchar(20) NOT NULL DEFAULT 'pending',
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id varchar(36) PRIMARY KEY,
		order_id varchar(36) NOT NULL,
		token varchar(100) NOT NULL DEFAULT '',
		amount numeric(10,2) NOT NULL DEFAULT 0,
		status varchar(20) NOT NULL DEFAULT '',
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id varchar(36) PRIMARY KEY,
		customer_id varchar(36) NOT NULL,
		cooker_id varchar(36) NOT NULL,
		rating integer NOT NULL CHECK (rating BETWEEN 1 AND 5),
		comment text NOT NULL DEFAULT '',
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS reports (
		id varchar(36) PRIMARY KEY,
		reporter_id varchar(36) NOT NULL,
		target_type varchar(20) NOT NULL,
		target_id varchar(36) NOT NULL,
		reason varchar(255) NOT NULL,
		details text NOT NULL DEFAULT '',
		order_id varchar(36) NOT NULL DEFAULT '',
		status varchar(20) NOT NULL DEFAULT 'open',
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
}
