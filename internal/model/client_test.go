package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name       string
		inName     string
		inEmail    string
		inPhone    string
		wantErr    bool
		wantFields []string
		wantName   string
		wantEmail  string
	}{
		{
			name:      "正常系: 正規化される",
			inName:    "  juan PÉREZ ",
			inEmail:   " Juan.Perez@GMAIL.com ",
			inPhone:   "3001234567",
			wantName:  "Juan Pérez",
			wantEmail: "juan.perez@gmail.com",
		},
		{
			name:      "先頭0の電話番号",
			inName:    "ana",
			inEmail:   "ana@gmail.com",
			inPhone:   "0123456789",
			wantName:  "Ana",
			wantEmail: "ana@gmail.com",
		},
		{
			name:       "空白のみの名前",
			inName:     "   ",
			inEmail:    "ana@gmail.com",
			inPhone:    "3001234567",
			wantErr:    true,
			wantFields: []string{"name"},
		},
		{
			name:       "@がないメール",
			inName:     "Ana",
			inEmail:    "ana.gmail.com",
			inPhone:    "3001234567",
			wantErr:    true,
			wantFields: []string{"email"},
		},
		{
			name:       "ドメインが違うメール",
			inName:     "Ana",
			inEmail:    "ana@hotmail.com",
			inPhone:    "3001234567",
			wantErr:    true,
			wantFields: []string{"email"},
		},
		{
			name:       "すべて不正",
			inName:     "",
			inEmail:    "nope",
			inPhone:    "12",
			wantErr:    true,
			wantFields: []string{"name", "email", "phone"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(1, tt.inName, tt.inEmail, tt.inPhone)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, c)
				assert.True(t, IsValidationError(err))
				for _, field := range tt.wantFields {
					assert.Contains(t, err.Error(), field)
				}
				return
			}
			require.NoError(t, err)
			info := c.Describe()
			assert.Equal(t, int64(1), info.ID)
			assert.Equal(t, tt.wantName, info.Name)
			assert.Equal(t, tt.wantEmail, info.Email)
			assert.Equal(t, tt.inPhone, info.Phone)
			assert.Equal(t, 0, info.Reservations)
		})
	}
}

func TestNewClient_InvalidPhones(t *testing.T) {
	phones := []string{"", "123456789", "12345678901", "30012345a7", "300-123-45", "３００１２３４５６７", "+573001234"}
	for _, phone := range phones {
		t.Run(phone, func(t *testing.T) {
			_, err := NewClient(1, "Ana", "ana@gmail.com", phone)
			require.Error(t, err)
			var v *ValidationError
			require.True(t, errors.As(err, &v))
			assert.Equal(t, "phone", v.Field)
		})
	}
}

func TestClient_Update(t *testing.T) {
	c, err := NewClient(1, "Ana", "ana@gmail.com", "3001234567")
	require.NoError(t, err)

	name := "ana maría"
	badEmail := "ana@yahoo.com"
	phone := "3109876543"
	report := c.Update(ClientUpdate{Name: &name, Email: &badEmail, Phone: &phone})

	assert.False(t, report.OK())
	assert.True(t, report.Applied("name"))
	assert.False(t, report.Applied("email"))
	assert.True(t, report.Applied("phone"))
	require.Len(t, report.Failed(), 1)
	assert.Equal(t, "email", report.Failed()[0].Field)
	assert.True(t, IsValidationError(report.Err()))

	assert.Equal(t, "Ana María", c.Name())
	assert.Equal(t, "ana@gmail.com", c.Email())
	assert.Equal(t, "3109876543", c.Phone())
}

func TestClient_UpdateNothing(t *testing.T) {
	c, err := NewClient(1, "Ana", "ana@gmail.com", "3001234567")
	require.NoError(t, err)

	report := c.Update(ClientUpdate{})
	assert.Empty(t, report)
	assert.True(t, report.OK())
	assert.NoError(t, report.Err())
}

func TestClient_HistoryIsSnapshot(t *testing.T) {
	c, err := NewClient(1, "Ana", "ana@gmail.com", "3001234567")
	require.NoError(t, err)

	c.RecordReservation(ReservationSummary{ID: 1, State: ReservationActive})
	c.RecordReservation(ReservationSummary{ID: 2, State: ReservationActive})

	history := c.History()
	require.Len(t, history, 2)
	history[0].State = ReservationCancelled

	assert.Equal(t, ReservationActive, c.History()[0].State)
	assert.Equal(t, 2, c.Describe().Reservations)
}
