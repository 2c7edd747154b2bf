package email

import (
	"mime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"有効な設定", Config{Host: "smtp.gmail.com", Port: 587, FromEmail: "hotel@gmail.com"}, false},
		{"ホスト未設定", Config{Port: 587, FromEmail: "hotel@gmail.com"}, true},
		{"送信元未設定", Config{Host: "smtp.gmail.com", Port: 587}, true},
		{"ポート不正", Config{Host: "smtp.gmail.com", FromEmail: "hotel@gmail.com"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClient_newMessage(t *testing.T) {
	c, err := NewClient(Config{Host: "smtp.gmail.com", Port: 587, FromName: "Hotel", FromEmail: "hotel@gmail.com"})
	require.NoError(t, err)

	m, err := c.newMessage("ana@gmail.com", "Reservación #1 confirmada", "hola")
	require.NoError(t, err)

	// 非ASCIIの件名はQエンコードされて格納される
	subject := m.GetGenHeader(mail.HeaderSubject)
	require.Len(t, subject, 1)
	decoded, err := new(mime.WordDecoder).DecodeHeader(subject[0])
	require.NoError(t, err)
	assert.Equal(t, "Reservación #1 confirmada", decoded)
	assert.Len(t, m.GetAddrHeaderString(mail.HeaderTo), 1)

	_, err = c.newMessage("no-es-correo", "asunto", "hola")
	assert.Error(t, err)
}
