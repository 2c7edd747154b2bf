package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/uma-arai/sbcntr-hotel/internal/model"
)

// Schema は PostgresCatalogStore が利用するテーブル定義です
const Schema = `
CREATE TABLE IF NOT EXISTS clients (
	id      BIGINT PRIMARY KEY,
	name    TEXT NOT NULL,
	email   TEXT NOT NULL,
	phone   TEXT NOT NULL,
	history JSONB NOT NULL DEFAULT '[]'
);
CREATE TABLE IF NOT EXISTS rooms (
	id    BIGINT PRIMARY KEY,
	type  TEXT NOT NULL,
	price DOUBLE PRECISION NOT NULL,
	state TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS reservations (
	id            BIGINT PRIMARY KEY,
	client_id     BIGINT NOT NULL REFERENCES clients (id),
	room_id       BIGINT NOT NULL REFERENCES rooms (id),
	check_in      DATE NOT NULL,
	check_out     DATE NOT NULL,
	nightly_price DOUBLE PRECISION NOT NULL,
	state         TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS notifications (
	id         SERIAL PRIMARY KEY,
	client_id  BIGINT NOT NULL,
	email      TEXT NOT NULL,
	title      TEXT NOT NULL,
	message    TEXT NOT NULL,
	is_read    BOOLEAN NOT NULL DEFAULT FALSE,
	type       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`

type clientRow struct {
	ID      int64          `db:"id"`
	Name    string         `db:"name"`
	Email   string         `db:"email"`
	Phone   string         `db:"phone"`
	History types.JSONText `db:"history"`
}

type roomRow struct {
	ID    int64   `db:"id"`
	Type  string  `db:"type"`
	Price float64 `db:"price"`
	State string  `db:"state"`
}

type reservationRow struct {
	ID           int64     `db:"id"`
	ClientID     int64     `db:"client_id"`
	RoomID       int64     `db:"room_id"`
	CheckIn      time.Time `db:"check_in"`
	CheckOut     time.Time `db:"check_out"`
	NightlyPrice float64   `db:"nightly_price"`
	State        string    `db:"state"`
}

// PostgresCatalogStore は台帳を PostgreSQL に永続化します
type PostgresCatalogStore struct {
	db *DB
}

// NewPostgresCatalogStore は新しいPostgresCatalogStoreを作成します
func NewPostgresCatalogStore(db *DB) *PostgresCatalogStore {
	return &PostgresCatalogStore{db: db}
}

// EnsureSchema はテーブルが存在しない場合に作成します
func (s *PostgresCatalogStore) EnsureSchema(ctx context.Context) error {
	ctx, seg := xray.BeginSubsegment(ctx, "PostgresCatalogStore.EnsureSchema")
	defer seg.Close(nil)

	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		seg.Close(err)
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// LoadSnapshot はテーブルの内容からスナップショットを組み立てます
func (s *PostgresCatalogStore) LoadSnapshot(ctx context.Context) (model.CatalogSnapshot, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "PostgresCatalogStore.LoadSnapshot")
	defer seg.Close(nil)

	var snap model.CatalogSnapshot

	var clients []clientRow
	if err := s.db.SelectContext(ctx, &clients, `SELECT id, name, email, phone, history FROM clients ORDER BY id`); err != nil {
		seg.Close(err)
		return snap, fmt.Errorf("failed to query clients: %w", err)
	}
	for _, row := range clients {
		rec := model.ClientRecord{ID: row.ID, Name: row.Name, Email: row.Email, Phone: row.Phone}
		if len(row.History) > 0 {
			if err := row.History.Unmarshal(&rec.History); err != nil {
				seg.Close(err)
				return snap, fmt.Errorf("failed to decode history of client %d: %w", row.ID, err)
			}
		}
		snap.Clients = append(snap.Clients, rec)
	}

	var rooms []roomRow
	if err := s.db.SelectContext(ctx, &rooms, `SELECT id, type, price, state FROM rooms ORDER BY id`); err != nil {
		seg.Close(err)
		return snap, fmt.Errorf("failed to query rooms: %w", err)
	}
	for _, row := range rooms {
		snap.Rooms = append(snap.Rooms, model.RoomRecord{
			ID:    row.ID,
			Type:  row.Type,
			Price: row.Price,
			State: model.RoomState(row.State),
		})
	}

	var reservations []reservationRow
	query := `
		SELECT id, client_id, room_id, check_in, check_out, nightly_price, state
		FROM reservations
		ORDER BY id`
	if err := s.db.SelectContext(ctx, &reservations, query); err != nil {
		seg.Close(err)
		return snap, fmt.Errorf("failed to query reservations: %w", err)
	}
	for _, row := range reservations {
		snap.Reservations = append(snap.Reservations, model.ReservationRecord{
			ID:           row.ID,
			ClientID:     row.ClientID,
			RoomID:       row.RoomID,
			CheckIn:      model.FormatDate(row.CheckIn),
			CheckOut:     model.FormatDate(row.CheckOut),
			NightlyPrice: row.NightlyPrice,
			State:        model.ReservationState(row.State),
		})
	}

	log.Printf("Loaded snapshot from postgres: clients=%d rooms=%d reservations=%d",
		len(snap.Clients), len(snap.Rooms), len(snap.Reservations))
	return snap, nil
}

// SaveSnapshot はスナップショットを1トランザクションで upsert します
func (s *PostgresCatalogStore) SaveSnapshot(ctx context.Context, snap model.CatalogSnapshot) (err error) {
	ctx, seg := xray.BeginSubsegment(ctx, "PostgresCatalogStore.SaveSnapshot")
	defer seg.Close(nil)

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		seg.Close(err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// エラーが発生した場合のみロールバックを実行
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("rollback failed: %v, original error: %v", rbErr, err)
			}
			seg.Close(err)
		}
	}()

	if err = upsertClients(ctx, tx, snap.Clients); err != nil {
		return err
	}
	if err = upsertRooms(ctx, tx, snap.Rooms); err != nil {
		return err
	}
	if err = upsertReservations(ctx, tx, snap.Reservations); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func upsertClients(ctx context.Context, tx *sqlx.Tx, records []model.ClientRecord) error {
	query := `
		INSERT INTO clients (id, name, email, phone, history)
		VALUES (:id, :name, :email, :phone, :history)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			history = EXCLUDED.history`

	for _, rec := range records {
		history := rec.History
		if history == nil {
			history = []model.ReservationSummary{}
		}
		raw, err := json.Marshal(history)
		if err != nil {
			return fmt.Errorf("failed to encode history of client %d: %w", rec.ID, err)
		}
		row := clientRow{ID: rec.ID, Name: rec.Name, Email: rec.Email, Phone: rec.Phone, History: types.JSONText(raw)}
		// PERF: bulk insertにしたほうがパフォーマンス上は望ましい
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return fmt.Errorf("failed to upsert client %d: %w", rec.ID, err)
		}
	}
	return nil
}

func upsertRooms(ctx context.Context, tx *sqlx.Tx, records []model.RoomRecord) error {
	query := `
		INSERT INTO rooms (id, type, price, state)
		VALUES (:id, :type, :price, :state)
		ON CONFLICT (id) DO UPDATE
		SET type = EXCLUDED.type,
			price = EXCLUDED.price,
			state = EXCLUDED.state`

	for _, rec := range records {
		row := roomRow{ID: rec.ID, Type: rec.Type, Price: rec.Price, State: string(rec.State)}
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return fmt.Errorf("failed to upsert room %d: %w", rec.ID, err)
		}
	}
	return nil
}

func upsertReservations(ctx context.Context, tx *sqlx.Tx, records []model.ReservationRecord) error {
	query := `
		INSERT INTO reservations (id, client_id, room_id, check_in, check_out, nightly_price, state)
		VALUES (:id, :client_id, :room_id, :check_in, :check_out, :nightly_price, :state)
		ON CONFLICT (id) DO UPDATE
		SET nightly_price = EXCLUDED.nightly_price,
			state = EXCLUDED.state`

	sorted := append([]model.ReservationRecord(nil), records...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	for _, rec := range sorted {
		in, err := model.ParseDate(rec.CheckIn)
		if err != nil {
			return fmt.Errorf("reservation %d: %w", rec.ID, err)
		}
		out, err := model.ParseDate(rec.CheckOut)
		if err != nil {
			return fmt.Errorf("reservation %d: %w", rec.ID, err)
		}
		row := reservationRow{
			ID:           rec.ID,
			ClientID:     rec.ClientID,
			RoomID:       rec.RoomID,
			CheckIn:      in,
			CheckOut:     out,
			NightlyPrice: rec.NightlyPrice,
			State:        string(rec.State),
		}
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return fmt.Errorf("failed to upsert reservation %d: %w", rec.ID, err)
		}
	}
	return nil
}

// Close はデータベース接続を閉じます
func (s *PostgresCatalogStore) Close() error {
	return s.db.Close()
}
