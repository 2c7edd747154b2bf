package catalog

import (
	"fmt"

	"github.com/uma-arai/sbcntr-hotel/internal/model"
)

// Snapshot は台帳全体の永続化用スナップショットを返します
func (c *Catalog) Snapshot() model.CatalogSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := model.CatalogSnapshot{
		Clients:      make([]model.ClientRecord, 0, len(c.clients)),
		Rooms:        make([]model.RoomRecord, 0, len(c.rooms)),
		Reservations: make([]model.ReservationRecord, 0, len(c.reservations)),
	}
	for _, cl := range c.clients {
		snap.Clients = append(snap.Clients, cl.Record())
	}
	for _, r := range c.rooms {
		snap.Rooms = append(snap.Rooms, r.Record())
	}
	for _, r := range c.reservations {
		snap.Reservations = append(snap.Reservations, r.Record())
	}
	return snap
}

// Restore はスナップショットから台帳を再構築します
// 既存の内容は置き換えられます。失敗した場合は台帳を変更しません
func (c *Catalog) Restore(snap model.CatalogSnapshot) error {
	clients := make([]*model.Client, 0, len(snap.Clients))
	clientByID := make(map[int64]*model.Client, len(snap.Clients))
	var lastClientID int64
	for _, rec := range snap.Clients {
		cl, err := model.RestoreClient(rec)
		if err != nil {
			return fmt.Errorf("failed to restore client %d: %w", rec.ID, err)
		}
		if _, dup := clientByID[cl.ID]; dup {
			return fmt.Errorf("duplicate client id %d in snapshot", cl.ID)
		}
		clients = append(clients, cl)
		clientByID[cl.ID] = cl
		lastClientID = max(lastClientID, cl.ID)
	}

	rooms := make([]*model.Room, 0, len(snap.Rooms))
	roomByID := make(map[int64]*model.Room, len(snap.Rooms))
	var lastRoomID int64
	for _, rec := range snap.Rooms {
		r, err := model.NewRoom(rec.ID, rec.Type, rec.Price, string(rec.State))
		if err != nil {
			return fmt.Errorf("failed to restore room %d: %w", rec.ID, err)
		}
		if _, dup := roomByID[r.ID]; dup {
			return fmt.Errorf("duplicate room id %d in snapshot", r.ID)
		}
		rooms = append(rooms, r)
		roomByID[r.ID] = r
		lastRoomID = max(lastRoomID, r.ID)
	}

	reservations := make([]*model.Reservation, 0, len(snap.Reservations))
	var lastReservationID int64
	for _, rec := range snap.Reservations {
		cl, ok := clientByID[rec.ClientID]
		if !ok {
			return &model.NotFoundError{Entity: "client", ID: rec.ClientID}
		}
		r, ok := roomByID[rec.RoomID]
		if !ok {
			return &model.NotFoundError{Entity: "room", ID: rec.RoomID}
		}
		in, err := model.ParseDate(rec.CheckIn)
		if err != nil {
			return fmt.Errorf("failed to restore reservation %d: %w", rec.ID, err)
		}
		out, err := model.ParseDate(rec.CheckOut)
		if err != nil {
			return fmt.Errorf("failed to restore reservation %d: %w", rec.ID, err)
		}
		res, err := model.RestoreReservation(rec.ID, cl, r, in, out, rec.NightlyPrice, rec.State)
		if err != nil {
			return fmt.Errorf("failed to restore reservation %d: %w", rec.ID, err)
		}
		reservations = append(reservations, res)
		lastReservationID = max(lastReservationID, res.ID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.clients = clients
	c.rooms = rooms
	c.reservations = reservations
	c.lastClientID = lastClientID
	c.lastRoomID = lastRoomID
	c.lastReservationID = lastReservationID
	return nil
}
