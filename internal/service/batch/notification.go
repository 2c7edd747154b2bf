package batch

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/uma-arai/sbcntr-hotel/internal/common/config"
	"github.com/uma-arai/sbcntr-hotel/internal/email"
	"github.com/uma-arai/sbcntr-hotel/internal/model"
	"github.com/uma-arai/sbcntr-hotel/internal/repository"
)

// ContactRepository は通知先の連絡先を取得します
type ContactRepository interface {
	GetClientContact(ctx context.Context, clientID int64) (model.ClientContact, error)
}

// Mailer は通知メールを送信します
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// NotificationBatchService は通知バッチ処理を担当します
type NotificationBatchService struct {
	args             []model.Notification
	closer           func() error
	notificationRepo repository.NotificationRepository
	contactRepo      ContactRepository
	mailer           Mailer
	cfg              *config.Config
}

// NewNotificationBatchService は新しいNotificationBatchServiceを作成します
// SMTPが設定されていない場合、メールは送信しません
func NewNotificationBatchService(ctx context.Context, cfg *config.Config) (*NotificationBatchService, error) {
	st, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := &NotificationBatchService{
		closer:           st.catalog.Close,
		notificationRepo: st.notifications,
		contactRepo:      st.catalog,
		cfg:              cfg,
	}

	if cfg.SMTP.Enabled() {
		mailer, err := email.NewClient(cfg.SMTP)
		if err != nil {
			st.catalog.Close()
			return nil, fmt.Errorf("failed to create mail client: %w", err)
		}
		s.mailer = mailer
	} else {
		log.Println("SMTP is not configured, notification e-mails are disabled")
	}

	return s, nil
}

// Close は終了処理を行います
func (s *NotificationBatchService) Close() error {
	if s.closer != nil {
		return s.closer()
	}
	return nil
}

// SetArgs は通知バッチ処理の引数を設定します
func (s *NotificationBatchService) SetArgs(args []model.Notification) {
	s.args = args
}

// Run は通知バッチ処理を実行します
func (s *NotificationBatchService) Run(ctx context.Context) error {
	// X-Rayセグメントの作成
	ctx, seg := xray.BeginSubsegment(ctx, "NotificationBatchService.Run")
	defer seg.Close(nil)

	notifications := s.args
	log.Printf("Starting notification batch process for %d notifications...", len(notifications))

	// セグメントにメタデータを追加
	if err := seg.AddMetadata("notification_count", len(notifications)); err != nil {
		log.Printf("Failed to add notification_count metadata: %v", err)
	}

	// 処理開始時刻を記録
	startTime := time.Now()

	// 顧客の連絡先を取得
	contacts, err := s.getContactMap(ctx, notifications)
	if err != nil {
		seg.Close(err)
		return err
	}

	// 通知をレコードに変換
	// 連絡先が見つからない顧客の通知はスキップする
	records := make([]model.NotificationRecord, 0, len(notifications))
	for _, notification := range notifications {
		clientID, err := notification.ClientID()
		if err != nil {
			seg.Close(err)
			return fmt.Errorf("invalid notification: %w", err)
		}
		if _, ok := contacts[clientID]; !ok {
			log.Printf("Skipping notification for unknown client %d", clientID)
			continue
		}
		record, err := notification.ToNotificationRecord(contacts)
		if err != nil {
			seg.Close(err)
			return err
		}
		records = append(records, *record)
	}

	// 通知レコードを作成
	if err := s.notificationRepo.CreateNotifications(ctx, records); err != nil {
		seg.Close(err)
		return fmt.Errorf("failed to create notifications: %w", err)
	}

	sent := s.sendMails(ctx, records)

	// 処理終了時刻を記録し、実行時間を計算
	duration := time.Since(startTime)

	// セグメントにメタデータを追加
	if err := seg.AddMetadata("duration", duration.String()); err != nil {
		log.Printf("Failed to add duration metadata: %v", err)
	}
	if err := seg.AddMetadata("client_count", len(contacts)); err != nil {
		log.Printf("Failed to add client_count metadata: %v", err)
	}

	log.Printf("Notification batch process completed successfully. records=%d mails=%d Duration: %v",
		len(records), sent, duration)
	return nil
}

// sendMails は通知レコードをメールで送信し、送信できた件数を返します
// 送信に失敗してもバッチは継続します
func (s *NotificationBatchService) sendMails(ctx context.Context, records []model.NotificationRecord) int {
	if s.mailer == nil {
		return 0
	}

	ctx, seg := xray.BeginSubsegment(ctx, "NotificationBatchService.sendMails")
	defer seg.Close(nil)

	sent := 0
	for _, record := range records {
		if err := s.mailer.SendEmail(ctx, record.Email, record.Title, record.Message); err != nil {
			log.Printf("Failed to send notification %d to %s: %v", record.ID, record.Email, err)
			continue
		}
		sent++
	}
	return sent
}

// 通知データに含まれる顧客IDから連絡先を取得する
// N+1とならないように先に重複がない顧客IDを取得をしておく
// 1. 重複がない顧客IDを取得
// 2. 顧客IDから連絡先を取得してMapとして保持する
func (s *NotificationBatchService) getContactMap(ctx context.Context, notifications []model.Notification) (map[int64]model.ClientContact, error) {
	// X-Rayセグメントの作成
	ctx, seg := xray.BeginSubsegment(ctx, "NotificationBatchService.getContactMap")
	defer seg.Close(nil)

	clientIDs := make([]int64, 0)
	contacts := make(map[int64]model.ClientContact)
	for _, notification := range notifications {
		clientID, err := notification.ClientID()
		if err != nil {
			err = fmt.Errorf("client_id is not a number: %w", err)
			seg.Close(err)
			return nil, err
		}

		// clientIDが重複している場合はスキップ
		if slices.Contains(clientIDs, clientID) {
			continue
		}

		clientIDs = append(clientIDs, clientID)
	}

	// セグメントにメタデータを追加
	if err := seg.AddMetadata("unique_client_count", len(clientIDs)); err != nil {
		log.Printf("Failed to add unique_client_count metadata: %v", err)
	}

	for _, clientID := range clientIDs {
		contact, err := s.contactRepo.GetClientContact(ctx, clientID)
		if model.IsNotFound(err) {
			log.Printf("Client %d not found: %v", clientID, err)
			continue
		}
		if err != nil {
			seg.Close(err)
			return nil, err
		}
		contacts[clientID] = contact
	}

	return contacts, nil
}
