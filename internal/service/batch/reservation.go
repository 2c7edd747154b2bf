package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/google/uuid"
	"github.com/uma-arai/sbcntr-hotel/internal/common/config"
	"github.com/uma-arai/sbcntr-hotel/internal/common/utils"
	"github.com/uma-arai/sbcntr-hotel/internal/model"
	"github.com/uma-arai/sbcntr-hotel/internal/repository"
	"github.com/uma-arai/sbcntr-hotel/internal/service/catalog"
	"github.com/uma-arai/sbcntr-hotel/internal/service/payment"
)

// SFNClient は Step Functions へのタスク結果通知を行います
type SFNClient interface {
	SendTaskSuccess(ctx context.Context, params *sfn.SendTaskSuccessInput, optFns ...func(*sfn.Options)) (*sfn.SendTaskSuccessOutput, error)
}

// LogArchiver はバッチ実行後のログを保管します
type LogArchiver interface {
	Archive(ctx context.Context, runID string, paths ...string) ([]string, error)
}

// RunReport は予約バッチ1回分の実行結果です
type RunReport struct {
	RunID    string                   `json:"run_id"`
	Results  []OperationResult        `json:"results"`
	Events   []model.ReservationEvent `json:"events"`
	Applied  int                      `json:"applied"`
	Failed   int                      `json:"failed"`
	Duration time.Duration            `json:"duration"`
}

// ReservationBatchService は予約バッチ処理を担当します
// 操作ファイルの内容を台帳に順番に適用し、結果を保存します
type ReservationBatchService struct {
	args      []Operation
	store     repository.CatalogStore
	catalog   *catalog.Catalog
	logPaths  []string
	archiver  LogArchiver
	sfnClient SFNClient
	cfg       *config.Config
	now       func() time.Time
	report    *RunReport
}

// NewReservationBatchService は新しいReservationBatchServiceを作成します
// awsCfg が nil の場合、ログのS3保管は行いません
func NewReservationBatchService(ctx context.Context, cfg *config.Config, sfnClient *sfn.Client, awsCfg *aws.Config) (*ReservationBatchService, error) {
	st, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	reservationLog := repository.NewJSONLog(cfg.Logs.ReservationsPath)
	paymentLog := repository.NewJSONLog(cfg.Logs.PaymentsPath)

	s := &ReservationBatchService{
		store: st.catalog,
		catalog: catalog.New(
			catalog.WithStrictAvailability(cfg.StrictAvailability),
			catalog.WithReservationLog(reservationLog),
			catalog.WithPaymentLog(paymentLog),
			catalog.WithPaymentProcessor(payment.NewProcessor(payment.WithDelay(cfg.PaymentDelay))),
		),
		logPaths: []string{reservationLog.Path(), paymentLog.Path()},
		cfg:      cfg,
		now:      time.Now,
	}
	if sfnClient != nil {
		s.sfnClient = sfnClient
	}
	if cfg.Logs.S3Bucket != "" && awsCfg != nil {
		s.archiver = repository.NewLogArchiver(s3.NewFromConfig(*awsCfg), cfg.Logs.S3Bucket)
	}

	return s, nil
}

// Close は終了処理を行います
func (s *ReservationBatchService) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// SetArgs は予約バッチ処理の引数を設定します
func (s *ReservationBatchService) SetArgs(args []Operation) {
	s.args = args
}

// Report は直近の実行結果を返します
func (s *ReservationBatchService) Report() *RunReport {
	return s.report
}

// Run は予約バッチ処理を実行します
func (s *ReservationBatchService) Run(ctx context.Context) error {
	// X-Rayセグメントの作成
	ctx, seg := xray.BeginSubsegment(ctx, "ReservationBatchService.Run")
	defer seg.Close(nil)

	startTime := time.Now()
	report := &RunReport{RunID: uuid.NewString()}
	s.report = report

	if err := seg.AddMetadata("run_id", report.RunID); err != nil {
		log.Printf("Failed to add run_id metadata: %v", err)
	}
	log.Printf("Starting reservation batch %s with %d operations...", report.RunID, len(s.args))

	// 前回までの台帳を復元
	snap, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return utils.GetStackWithError(fmt.Errorf("failed to load snapshot: %w", err))
	}
	if err := s.catalog.Restore(snap); err != nil {
		return utils.GetStackWithError(fmt.Errorf("failed to restore catalog: %w", err))
	}

	if err := s.seedInventory(); err != nil {
		return utils.GetStackWithError(err)
	}

	if err := s.applyOperations(ctx, report); err != nil {
		return utils.GetStackWithError(err)
	}

	if err := s.store.SaveSnapshot(ctx, s.catalog.Snapshot()); err != nil {
		return utils.GetStackWithError(fmt.Errorf("failed to save snapshot: %w", err))
	}

	s.archiveLogs(ctx, report.RunID)

	// イベントを発行
	if err := s.sendTaskSuccess(ctx, report.Events); err != nil {
		return utils.GetStackWithError(fmt.Errorf("failed to send task success: %w", err))
	}

	report.Duration = time.Since(startTime)

	// セグメントにメタデータを追加
	if err := seg.AddMetadata("duration", report.Duration.String()); err != nil {
		log.Printf("Failed to add duration metadata: %v", err)
	}
	if err := seg.AddMetadata("failed_operations", report.Failed); err != nil {
		log.Printf("Failed to add failed_operations metadata: %v", err)
	}

	log.Printf("Reservation batch process completed successfully. applied=%d failed=%d events=%d Duration: %v",
		report.Applied, report.Failed, len(report.Events), report.Duration)
	return nil
}

// seedInventory は台帳に客室が1件もない場合のみ在庫ファイルから客室を登録します
func (s *ReservationBatchService) seedInventory() error {
	if s.cfg.InventoryFile == "" || len(s.catalog.Rooms()) > 0 {
		return nil
	}

	inv, err := repository.LoadInventory(s.cfg.InventoryFile)
	if err != nil {
		return err
	}
	for _, r := range inv.Rooms {
		if _, err := s.catalog.RegisterRoom(r.Type, r.Price, r.State); err != nil {
			log.Printf("Skipping inventory room %q: %v", r.Type, err)
		}
	}
	log.Printf("Seeded %d rooms from %s", len(s.catalog.Rooms()), s.cfg.InventoryFile)
	return nil
}

// applyOperations は操作を順番に適用します
// 1件の操作の失敗はログに記録して次の操作に進みます
func (s *ReservationBatchService) applyOperations(ctx context.Context, report *RunReport) error {
	for i, op := range s.args {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("aborted at operation %d: %w", i, err)
		}

		res, event, err := applyOperation(ctx, s.catalog, op, s.now())
		res.Index = i
		if err != nil {
			res.OK = false
			res.Error = err.Error()
			report.Failed++
			log.Printf("Operation %d (%s) failed: %v", i, op.Op, err)
		} else {
			res.OK = true
			report.Applied++
			log.Printf("Operation %d (%s): %s", i, op.Op, res.Detail)
		}
		report.Results = append(report.Results, res)
		if event != nil {
			report.Events = append(report.Events, *event)
		}
	}
	return nil
}

// archiveLogs はログをS3に保管します。失敗してもバッチは継続します
func (s *ReservationBatchService) archiveLogs(ctx context.Context, runID string) {
	if s.archiver == nil {
		return
	}
	if _, err := s.archiver.Archive(ctx, runID, s.logPaths...); err != nil {
		log.Printf("Failed to archive logs: %v", err)
	}
}

// sendTaskSuccess は、Step Functionsのタスク成功を通知し、イベントを返却します
func (s *ReservationBatchService) sendTaskSuccess(ctx context.Context, events []model.ReservationEvent) error {
	// ローカルの場合はStep Functionsの処理をスキップ
	if s.cfg.Local || s.sfnClient == nil {
		log.Printf("Local environment detected. Skipping Step Functions task success notification")
		return nil
	}

	output, err := MarshalNotifications(events)
	if err != nil {
		return err
	}

	taskToken := s.cfg.SFN.TaskToken
	if taskToken == "" {
		return fmt.Errorf("SFN_TASK_TOKEN is not set in config")
	}

	input := &sfn.SendTaskSuccessInput{
		TaskToken: aws.String(taskToken),
		Output:    aws.String(string(output)),
	}
	if _, err := s.sfnClient.SendTaskSuccess(ctx, input); err != nil {
		return fmt.Errorf("failed to send task success: %w", err)
	}

	log.Printf("Successfully sent task success with %d notifications", len(events))
	return nil
}

// MarshalNotifications はイベントを通知バッチの入力形式に変換します
func MarshalNotifications(events []model.ReservationEvent) ([]byte, error) {
	notifications := make([]model.Notification, len(events))
	for i, event := range events {
		notifications[i] = model.NewNotification(event)
	}

	output, err := json.Marshal(map[string]any{
		"notifications": notifications,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notifications: %w", err)
	}
	return output, nil
}

// ParseNotifications は通知バッチの入力を読み込みます
func ParseNotifications(b []byte) ([]model.Notification, error) {
	var input struct {
		Notifications []model.Notification `json:"notifications"`
	}
	if err := json.Unmarshal(b, &input); err != nil {
		return nil, fmt.Errorf("failed to parse notifications: %w", err)
	}
	return input.Notifications, nil
}
