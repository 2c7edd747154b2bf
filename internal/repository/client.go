package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/uma-arai/sbcntr-hotel/internal/model"
)

// GetClientContact は指定された顧客IDから通知先の連絡先を取得します
func (s *PostgresCatalogStore) GetClientContact(ctx context.Context, clientID int64) (model.ClientContact, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "PostgresCatalogStore.GetClientContact")
	defer seg.Close(nil)

	query := `
		SELECT id, name, email
		FROM clients
		WHERE id = $1`

	var contact model.ClientContact
	err := s.db.GetContext(ctx, &contact, query, clientID)
	if errors.Is(err, sql.ErrNoRows) {
		err = &model.NotFoundError{Entity: "client", ID: clientID}
	}
	if err != nil {
		seg.Close(err)
		return model.ClientContact{}, fmt.Errorf("failed to get client contact: %w", err)
	}

	return contact, nil
}
