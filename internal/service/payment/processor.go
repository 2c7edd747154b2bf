package payment

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/google/uuid"
	"github.com/uma-arai/sbcntr-hotel/internal/model"
)

// DefaultDelay は決済処理のシミュレーション時間です
const DefaultDelay = 1500 * time.Millisecond

// Processor は決済処理のスタブです
// 支払い方法が不正な場合は rechazado、それ以外はランダムに aprobado / fallido になります
type Processor struct {
	delay   time.Duration
	approve func() bool
}

// Option は Processor の設定を変更します
type Option func(*Processor)

// WithDelay は決済処理の待ち時間を設定します
func WithDelay(d time.Duration) Option {
	return func(p *Processor) {
		p.delay = d
	}
}

// WithOutcome は承認可否の判定関数を設定します。テストで結果を固定する場合に利用します
func WithOutcome(approve func() bool) Option {
	return func(p *Processor) {
		p.approve = approve
	}
}

// NewProcessor は新しい Processor を作成します
func NewProcessor(opts ...Option) *Processor {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	p := &Processor{
		delay: DefaultDelay,
		approve: func() bool {
			return rng.Intn(2) == 0
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewPaymentID は 1000〜9999 の支払いIDを生成します
func NewPaymentID() int {
	return 1000 + rand.Intn(9000)
}

// Process は支払いを処理し、結果を payment に反映します
// コンテキストがキャンセルされた場合、支払いは pendiente のままエラーを返します
func (p *Processor) Process(ctx context.Context, payment *model.Payment) (model.PaymentRecord, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "PaymentProcessor.Process")
	defer seg.Close(nil)

	if !payment.Method.IsValid() {
		log.Printf("Payment %d rejected: invalid method %q", payment.ID, payment.Method)
		payment.Reject()
		return payment.Record(), nil
	}

	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return payment.Record(), ctx.Err()
		}
	}

	payment.Reference = uuid.NewString()
	payment.Complete(p.approve())
	log.Printf("Payment %d processed: amount=%s method=%s status=%s",
		payment.ID, model.FormatMoney(payment.Amount), payment.Method, payment.Status)

	return payment.Record(), nil
}
