package repository

import (
	"context"

	"github.com/uma-arai/sbcntr-hotel/internal/model"
)

// CatalogStore はバッチ実行間で台帳のスナップショットを永続化するインターフェースです
type CatalogStore interface {
	// LoadSnapshot は保存済みのスナップショットを返します。未保存の場合は空のスナップショットを返します
	LoadSnapshot(ctx context.Context) (model.CatalogSnapshot, error)
	// SaveSnapshot はスナップショットを保存します。同じIDのエンティティは上書きされます
	SaveSnapshot(ctx context.Context, snap model.CatalogSnapshot) error
	// GetClientContact は顧客IDから通知先の連絡先を取得します
	GetClientContact(ctx context.Context, clientID int64) (model.ClientContact, error)
	Close() error
}
