// 확인 메일을 직접 보내지 않고 Kafka 토픽으로 넘기는 퍼블리셔
//
// 별도의 메일 서비스가 토픽을 구독해서 실제 전송을 담당합니다.
// 이벤트에는 렌더링된 제목/본문이 포함되므로 소비자는 템플릿을 알 필요가 없습니다.

package client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"

	"github.com/restapp/backend/internal/config"
	"github.com/restapp/backend/internal/model"
	"github.com/restapp/backend/internal/template"
)

const ConfirmationEventType = "confirmation_email"

// messageWriter - kafka.Writer 중 사용하는 부분만 (테스트용 대체 가능)
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConfirmationEvent - 토픽에 기록되는 JSON 페이로드
type ConfirmationEvent struct {
	Type      string    `json:"type"`
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	VerifyURL string    `json:"verify_url"`
	ExpiresAt time.Time `json:"expires_at"`
	Subject   string    `json:"subject"`
	HTML      string    `json:"html"`
}

type KafkaPublisher struct {
	writer messageWriter
	now    func() time.Time
}

// NewKafkaPublisher - KAFKA_USERNAME이 있으면 SASL/PLAIN + TLS 사용
func NewKafkaPublisher(cfg config.KafkaConfig) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Broker),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
	}
	if cfg.Username != "" {
		writer.Transport = &kafka.Transport{
			SASL: plain.Mechanism{Username: cfg.Username, Password: cfg.Password},
			TLS:  &tls.Config{},
		}
	}
	return &KafkaPublisher{writer: writer, now: time.Now}
}

// Send - user_id를 키로 사용해 같은 사용자의 메일 순서를 유지
func (p *KafkaPublisher) Send(ctx context.Context, msg model.ConfirmationEmail) error {
	data := template.ConfirmationDataFromModel(msg)
	event := ConfirmationEvent{
		Type:      ConfirmationEventType,
		UserID:    msg.UserID,
		Email:     msg.Email,
		FirstName: msg.FirstName,
		VerifyURL: msg.VerifyURL,
		ExpiresAt: msg.ExpiresAt,
		Subject:   template.ConfirmationSubject,
		HTML:      template.RenderBody(template.ConfirmationBody, &data),
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal confirmation event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(msg.UserID, 10)),
		Value: value,
		Time:  p.now(),
	})
	if err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
