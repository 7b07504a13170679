package service

import (
	"context"
	"sync"
	"time"

	"github.com/restapp/backend/internal/logging"
	"github.com/restapp/backend/internal/model"
)

const defaultSendTimeout = 30 * time.Second

// MailSender - 실제 전송 수단 (SMTP, Kafka)
type MailSender interface {
	Send(ctx context.Context, msg model.ConfirmationEmail) error
}

// MailDeliveryService - 확인 메일을 백그라운드 워커로 전송하는 서비스
//
// 요청 처리와 독립적으로 동작합니다.
// 전송 실패 시 로그만 남기고 재시도하지 않습니다.
type MailDeliveryService struct {
	sender      MailSender
	queue       chan model.ConfirmationEmail
	sendTimeout time.Duration
	log         logging.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewMailDeliveryService 생성자 - workers 개수만큼 워커를 바로 시작
func NewMailDeliveryService(sender MailSender, workers, queueSize int, log logging.Logger) *MailDeliveryService {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}

	s := &MailDeliveryService{
		sender:      sender,
		queue:       make(chan model.ConfirmationEmail, queueSize),
		sendTimeout: defaultSendTimeout,
		log:         log.With("component", "mail_delivery"),
	}
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

// Enqueue - 큐가 가득 찼거나 종료된 경우 메일을 버리고 경고 로그만 남김
func (s *MailDeliveryService) Enqueue(msg model.ConfirmationEmail) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.log.Warn(context.Background(), "mail dropped: delivery stopped", "user_id", msg.UserID)
		return
	}

	select {
	case s.queue <- msg:
	default:
		s.log.Warn(context.Background(), "mail dropped: queue full", "user_id", msg.UserID)
	}
}

// Close - 남은 메일을 모두 처리한 뒤 워커 종료
func (s *MailDeliveryService) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *MailDeliveryService) worker() {
	defer s.wg.Done()
	for msg := range s.queue {
		s.deliver(msg)
	}
}

func (s *MailDeliveryService) deliver(msg model.ConfirmationEmail) {
	ctx, cancel := context.WithTimeout(context.Background(), s.sendTimeout)
	defer cancel()

	if err := s.sender.Send(ctx, msg); err != nil {
		s.log.Error(ctx, "confirmation mail delivery failed", "user_id", msg.UserID, "error", err)
		return
	}
	s.log.Info(ctx, "confirmation mail delivered", "user_id", msg.UserID)
}
