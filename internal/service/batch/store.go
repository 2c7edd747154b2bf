package batch

import (
	"context"
	"fmt"
	"log"

	"github.com/uma-arai/sbcntr-hotel/internal/common/config"
	"github.com/uma-arai/sbcntr-hotel/internal/common/database"
	"github.com/uma-arai/sbcntr-hotel/internal/repository"
)

// stores は設定されたドライバで開いた永続化先です
type stores struct {
	catalog       repository.CatalogStore
	notifications repository.NotificationRepository
}

// openStores は STORE_DRIVER に応じて PostgreSQL または Badger を開きます
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		conn, err := database.Open(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to create database connection: %w", err)
		}
		db := repository.NewDB(conn)
		store := repository.NewPostgresCatalogStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		log.Println("DB connected successfully")
		return &stores{catalog: store, notifications: repository.NewNotificationRepository(db)}, nil

	case config.StoreDriverBadger:
		store, err := repository.OpenBadgerStore(cfg.Store.BadgerDir)
		if err != nil {
			return nil, err
		}
		log.Printf("Badger opened at %s", cfg.Store.BadgerDir)
		return &stores{catalog: store, notifications: store}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
