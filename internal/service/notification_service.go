package service

import (
	"context"
	"log"
	"time"

	"instasphere/internal/changefeed"
	"instasphere/internal/model"
	"instasphere/internal/pkg"
	"instasphere/internal/repository/mysql"

	"github.com/google/uuid"
)

type NotificationService struct {
	repo *mysql.NotificationRepository
	pub  *changefeed.Publisher
}

func NewNotificationService(pub *changefeed.Publisher) *NotificationService {
	return &NotificationService{repo: &mysql.NotificationRepository{}, pub: pub}
}

func (s *NotificationService) List(ctx context.Context, userID string) ([]model.Notification, error) {
	list, err := s.repo.ListByUser(ctx, userID, 50)
	if err != nil {
		return nil, mysql.WrapLoadErr(err)
	}
	return list, nil
}

// Notify 通知行 + 外发行同事务落库，落库成功后发布变更
func (s *NotificationService) Notify(ctx context.Context, userID, typ, title, message, data string) error {
	n := &model.Notification{
		ID:      uuid.NewString(),
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
		Data:    data,
	}
	ob := &model.NotificationOutbox{
		EventType: typ,
		UserID:    userID,
		Payload:   data,
	}
	if ob.Payload == "" {
		ob.Payload = "{}"
	}
	if err := s.repo.CreateWithOutbox(ctx, n, ob); err != nil {
		return pkg.Writef("%v", err)
	}

	s.pub.Publish(ctx, changefeed.TableNotifications, changefeed.OpInsert, n, nil)
	return nil
}

// MarkRead 只有属主能标已读
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	affected, err := s.repo.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return pkg.Writef("%v", err)
	}
	if affected == 0 {
		return pkg.Authorizationf("notification not found or not yours")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return pkg.Writef("%v", err)
	}
	return nil
}

// OutboxRelayer 轮询外发表，把待投递事件批量送进 kafka。
// 投递失败计入重试，超限置 failed
type OutboxRelayer struct {
	repo     *mysql.OutboxRepository
	producer *pkg.KafkaProducer

	Interval  time.Duration
	BatchSize int
	MaxRetry  int
}

func NewOutboxRelayer(producer *pkg.KafkaProducer) *OutboxRelayer {
	return &OutboxRelayer{
		repo:      &mysql.OutboxRepository{},
		producer:  producer,
		Interval:  2 * time.Second,
		BatchSize: 100,
		MaxRetry:  5,
	}
}

func (r *OutboxRelayer) Run(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.drainOnce(ctx)
		}
	}
}

func (r *OutboxRelayer) drainOnce(ctx context.Context) {
	rows, err := r.repo.ListPending(ctx, r.BatchSize)
	if err != nil {
		log.Printf("outbox: list pending failed: %v", err)
		return
	}
	for _, row := range rows {
		if err := r.producer.Send(ctx, row.UserID, []byte(row.Payload)); err != nil {
			log.Printf("outbox: send event %d failed: %v", row.ID, err)
			if err := r.repo.MarkRetry(ctx, row.ID, r.MaxRetry); err != nil {
				log.Printf("outbox: mark retry %d failed: %v", row.ID, err)
			}
			continue
		}
		if err := r.repo.MarkSent(ctx, row.ID); err != nil {
			log.Printf("outbox: mark sent %d failed: %v", row.ID, err)
		}
	}
}
