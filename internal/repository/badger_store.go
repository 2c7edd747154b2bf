package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/dgraph-io/badger/v4"
	"github.com/uma-arai/sbcntr-hotel/internal/model"
)

const (
	clientPrefix       = "cliente/"
	roomPrefix         = "habitacion/"
	reservationPrefix  = "reserva/"
	notificationPrefix = "notificacion/"
	notificationSeqKey = "seq/notificacion"
)

// BadgerStore は台帳と通知をローカルの Badger に保存します
// ENV=LOCAL で PostgreSQL を用意せずにバッチを実行するために利用します
type BadgerStore struct {
	db  *badger.DB
	seq *badger.Sequence
}

// OpenBadgerStore は dir に Badger を開きます。dir が空の場合はインメモリで開きます
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", dir, err)
	}

	seq, err := db.GetSequence([]byte(notificationSeqKey), 100)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to get notification sequence: %w", err)
	}

	return &BadgerStore{db: db, seq: seq}, nil
}

// Close はシーケンスを解放し、Badger を閉じます
func (s *BadgerStore) Close() error {
	if err := s.seq.Release(); err != nil {
		log.Printf("Failed to release notification sequence: %v", err)
	}
	return s.db.Close()
}

func entityKey(prefix string, id int64) []byte {
	// 辞書順とID順を一致させるためゼロ埋めする
	return []byte(fmt.Sprintf("%s%020d", prefix, id))
}

// LoadSnapshot は保存済みのエンティティからスナップショットを組み立てます
func (s *BadgerStore) LoadSnapshot(ctx context.Context) (model.CatalogSnapshot, error) {
	_, seg := xray.BeginSubsegment(ctx, "BadgerStore.LoadSnapshot")
	defer seg.Close(nil)

	var snap model.CatalogSnapshot
	err := s.db.View(func(txn *badger.Txn) error {
		if err := scanPrefix(txn, clientPrefix, func(v []byte) error {
			var rec model.ClientRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			snap.Clients = append(snap.Clients, rec)
			return nil
		}); err != nil {
			return fmt.Errorf("failed to load clients: %w", err)
		}

		if err := scanPrefix(txn, roomPrefix, func(v []byte) error {
			var rec model.RoomRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			snap.Rooms = append(snap.Rooms, rec)
			return nil
		}); err != nil {
			return fmt.Errorf("failed to load rooms: %w", err)
		}

		if err := scanPrefix(txn, reservationPrefix, func(v []byte) error {
			var rec model.ReservationRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			snap.Reservations = append(snap.Reservations, rec)
			return nil
		}); err != nil {
			return fmt.Errorf("failed to load reservations: %w", err)
		}
		return nil
	})
	if err != nil {
		seg.Close(err)
		return model.CatalogSnapshot{}, err
	}

	log.Printf("Loaded snapshot from badger: clients=%d rooms=%d reservations=%d",
		len(snap.Clients), len(snap.Rooms), len(snap.Reservations))
	return snap, nil
}

func scanPrefix(txn *badger.Txn, prefix string, fn func([]byte) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return fmt.Errorf("key %s: %w", it.Item().Key(), err)
		}
	}
	return nil
}

// SaveSnapshot はスナップショットの各エンティティを上書き保存します
func (s *BadgerStore) SaveSnapshot(ctx context.Context, snap model.CatalogSnapshot) error {
	_, seg := xray.BeginSubsegment(ctx, "BadgerStore.SaveSnapshot")
	defer seg.Close(nil)

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	set := func(key []byte, v interface{}) error {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return wb.Set(key, b)
	}

	for _, rec := range snap.Clients {
		if err := set(entityKey(clientPrefix, rec.ID), rec); err != nil {
			seg.Close(err)
			return fmt.Errorf("failed to save client %d: %w", rec.ID, err)
		}
	}
	for _, rec := range snap.Rooms {
		if err := set(entityKey(roomPrefix, rec.ID), rec); err != nil {
			seg.Close(err)
			return fmt.Errorf("failed to save room %d: %w", rec.ID, err)
		}
	}
	for _, rec := range snap.Reservations {
		if err := set(entityKey(reservationPrefix, rec.ID), rec); err != nil {
			seg.Close(err)
			return fmt.Errorf("failed to save reservation %d: %w", rec.ID, err)
		}
	}

	if err := wb.Flush(); err != nil {
		seg.Close(err)
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	return nil
}

// GetClientContact は保存済みの顧客レコードから連絡先を取得します
func (s *BadgerStore) GetClientContact(ctx context.Context, clientID int64) (model.ClientContact, error) {
	_, seg := xray.BeginSubsegment(ctx, "BadgerStore.GetClientContact")
	defer seg.Close(nil)

	var rec model.ClientRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(entityKey(clientPrefix, clientID))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		err = &model.NotFoundError{Entity: "client", ID: clientID}
	}
	if err != nil {
		seg.Close(err)
		return model.ClientContact{}, fmt.Errorf("failed to get client contact: %w", err)
	}

	return model.ClientContact{ID: rec.ID, Name: rec.Name, Email: rec.Email}, nil
}

// CreateNotifications は通知レコードを保存し、採番したIDを records に書き戻します
func (s *BadgerStore) CreateNotifications(ctx context.Context, records []model.NotificationRecord) error {
	_, seg := xray.BeginSubsegment(ctx, "BadgerStore.CreateNotifications")
	defer seg.Close(nil)

	err := s.db.Update(func(txn *badger.Txn) error {
		for i := range records {
			next, err := s.seq.Next()
			if err != nil {
				return err
			}
			records[i].ID = int(next) + 1
			b, err := json.Marshal(records[i])
			if err != nil {
				return err
			}
			if err := txn.Set(entityKey(notificationPrefix, int64(records[i].ID)), b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		seg.Close(err)
		return fmt.Errorf("failed to create notifications: %w", err)
	}
	return nil
}

// GetByClientID は指定された顧客IDの通知を新しい順に取得します
func (s *BadgerStore) GetByClientID(ctx context.Context, clientID int64) ([]model.NotificationRecord, error) {
	_, seg := xray.BeginSubsegment(ctx, "BadgerStore.GetByClientID")
	defer seg.Close(nil)

	var records []model.NotificationRecord
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, notificationPrefix, func(v []byte) error {
			var rec model.NotificationRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if rec.ClientID == clientID {
				records = append(records, rec)
			}
			return nil
		})
	})
	if err != nil {
		seg.Close(err)
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// UpdateIsRead は通知の既読状態を更新します
func (s *BadgerStore) UpdateIsRead(ctx context.Context, id int, isRead bool) error {
	_, seg := xray.BeginSubsegment(ctx, "BadgerStore.UpdateIsRead")
	defer seg.Close(nil)

	key := entityKey(notificationPrefix, int64(id))
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		var rec model.NotificationRecord
		if err := item.Value(func(v []byte) error {
			return json.Unmarshal(v, &rec)
		}); err != nil {
			return err
		}
		rec.IsRead = isRead
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return txn.Set(key, b)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		err = &model.NotFoundError{Entity: "notification", ID: int64(id)}
	}
	if err != nil {
		seg.Close(err)
		return fmt.Errorf("failed to update notification is_read: %w", err)
	}
	return nil
}
