package batch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/uma-arai/sbcntr-hotel/internal/common/config"
	"github.com/uma-arai/sbcntr-hotel/internal/model"
)

// MockNotificationRepository はテスト用のモックリポジトリです
type MockNotificationRepository struct {
	createNotificationsCalled bool
	createNotificationsError  error
	notifications             []model.NotificationRecord
}

func (m *MockNotificationRepository) CreateNotifications(ctx context.Context, records []model.NotificationRecord) error {
	m.createNotificationsCalled = true
	m.notifications = records
	return m.createNotificationsError
}

func (m *MockNotificationRepository) GetByClientID(ctx context.Context, clientID int64) ([]model.NotificationRecord, error) {
	return nil, nil
}

func (m *MockNotificationRepository) UpdateIsRead(ctx context.Context, id int, isRead bool) error {
	return nil
}

// MockContactRepository はテスト用のモックリポジトリです
type MockContactRepository struct {
	calls int
	err   error
}

func (m *MockContactRepository) GetClientContact(ctx context.Context, clientID int64) (model.ClientContact, error) {
	m.calls++
	if m.err != nil {
		return model.ClientContact{}, m.err
	}
	if clientID == 404 {
		return model.ClientContact{}, &model.NotFoundError{Entity: "client", ID: clientID}
	}
	return model.ClientContact{ID: clientID, Name: "Ana", Email: "ana@gmail.com"}, nil
}

// MockMailer はテスト用のモックです
type MockMailer struct {
	subjects []string
	err      error
}

func (m *MockMailer) SendEmail(ctx context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.subjects = append(m.subjects, subject)
	return nil
}

// newTestNotificationBatchService はテスト用のNotificationBatchServiceを作成します
func newTestNotificationBatchService(repo *MockNotificationRepository, contacts *MockContactRepository, mailer Mailer) *NotificationBatchService {
	return &NotificationBatchService{
		notificationRepo: repo,
		contactRepo:      contacts,
		mailer:           mailer,
		cfg:              &config.Config{},
	}
}

func newTestNotification(t model.NotificationType, clientID, reservationID int64, now time.Time) model.Notification {
	return model.NewNotification(model.ReservationEvent{
		Type:          t,
		ClientID:      clientID,
		ReservationID: reservationID,
		RoomID:        1,
		CheckIn:       "2025-10-20",
		CheckOut:      "2025-10-25",
		TotalPrice:    500000,
		CreatedAt:     now,
	})
}

func TestNotificationBatchService_Run(t *testing.T) {
	// X-Rayのセグメントを設定
	ctx, seg := xray.BeginSegment(context.Background(), "TestNotificationBatchService_Run")
	defer seg.Close(nil)

	now := time.Now().UTC()
	tests := []struct {
		name          string
		notifications []model.Notification
		wantRecords   int
		wantLookups   int
	}{
		{
			name:          "0件の通知を正常に処理",
			notifications: []model.Notification{},
		},
		{
			name: "1件の通知を正常に処理",
			notifications: []model.Notification{
				newTestNotification(model.NotificationTypeReservation, 1, 1, now),
			},
			wantRecords: 1,
			wantLookups: 1,
		},
		{
			name: "同じ顧客の通知は連絡先を1回だけ取得",
			notifications: []model.Notification{
				newTestNotification(model.NotificationTypeReservation, 1, 1, now),
				newTestNotification(model.NotificationTypeCancellation, 1, 1, now),
				newTestNotification(model.NotificationTypeReservation, 2, 2, now),
			},
			wantRecords: 3,
			wantLookups: 2,
		},
		{
			name: "存在しない顧客の通知はスキップ",
			notifications: []model.Notification{
				newTestNotification(model.NotificationTypeReservation, 404, 1, now),
				newTestNotification(model.NotificationTypePayment, 2, 2, now),
			},
			wantRecords: 1,
			wantLookups: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockNotificationRepository{}
			contacts := &MockContactRepository{}
			mailer := &MockMailer{}

			service := newTestNotificationBatchService(repo, contacts, mailer)
			service.SetArgs(tt.notifications)
			if err := service.Run(ctx); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if !repo.createNotificationsCalled {
				t.Error("CreateNotifications was not called")
			}
			if len(repo.notifications) != tt.wantRecords {
				t.Errorf("Expected %d notifications, got %d", tt.wantRecords, len(repo.notifications))
			}
			if contacts.calls != tt.wantLookups {
				t.Errorf("Expected %d contact lookups, got %d", tt.wantLookups, contacts.calls)
			}
			if len(mailer.subjects) != tt.wantRecords {
				t.Errorf("Expected %d mails, got %d", tt.wantRecords, len(mailer.subjects))
			}
		})
	}
}

func TestNotificationBatchService_RunErrors(t *testing.T) {
	ctx, seg := xray.BeginSegment(context.Background(), "TestNotificationBatchService_RunErrors")
	defer seg.Close(nil)

	now := time.Now().UTC()
	notifications := []model.Notification{newTestNotification(model.NotificationTypeReservation, 1, 1, now)}

	tests := []struct {
		name     string
		repo     *MockNotificationRepository
		contacts *MockContactRepository
		args     []model.Notification
	}{
		{
			name:     "通知の保存に失敗",
			repo:     &MockNotificationRepository{createNotificationsError: errors.New("db down")},
			contacts: &MockContactRepository{},
			args:     notifications,
		},
		{
			name:     "連絡先の取得に失敗",
			repo:     &MockNotificationRepository{},
			contacts: &MockContactRepository{err: errors.New("db down")},
			args:     notifications,
		},
		{
			name:     "client_idがない通知",
			repo:     &MockNotificationRepository{},
			contacts: &MockContactRepository{},
			args:     []model.Notification{{Type: model.NotificationTypeCommon, Data: map[string]interface{}{}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newTestNotificationBatchService(tt.repo, tt.contacts, nil)
			service.SetArgs(tt.args)
			if err := service.Run(ctx); err == nil {
				t.Error("Run() should return error")
			}
		})
	}
}

func TestNotificationBatchService_MailFailureIsNotFatal(t *testing.T) {
	ctx, seg := xray.BeginSegment(context.Background(), "TestNotificationBatchService_MailFailureIsNotFatal")
	defer seg.Close(nil)

	repo := &MockNotificationRepository{}
	service := newTestNotificationBatchService(repo, &MockContactRepository{}, &MockMailer{err: errors.New("smtp down")})
	service.SetArgs([]model.Notification{newTestNotification(model.NotificationTypeReservation, 1, 1, time.Now())})

	if err := service.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(repo.notifications) != 1 {
		t.Errorf("Expected 1 notification, got %d", len(repo.notifications))
	}
}
