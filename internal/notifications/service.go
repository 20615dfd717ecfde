package notifications

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/ProRenterv1/Renter-sub002/internal/shared/config"
)

// NotificationService is the facade the domain services publish through. It
// owns the Kafka producer, consumer workers, and the SMTP sender.
type NotificationService interface {
	SendNotification(ctx context.Context, notification *EmailNotification) error
	SendBatchNotifications(ctx context.Context, notifications []*EmailNotification) error

	SendDisputeNotification(ctx context.Context, userID uuid.UUID, email, name string,
		disputeID, bookingID uuid.UUID, notificationType NotificationType,
		templateData map[string]interface{}) error

	SendBookingNotification(ctx context.Context, userID uuid.UUID, email, name string,
		bookingID uuid.UUID, notificationType NotificationType,
		templateData map[string]interface{}) error

	Start(ctx context.Context) error
	Stop() error
	HealthCheck(ctx context.Context) error
}

type EmailNotificationService struct {
	cfg          *config.Config
	producer     NotificationProducer
	consumer     NotificationConsumer
	publisher    *NotificationPublisher
	emailService EmailService

	// State
	isRunning bool
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewEmailNotificationService(cfg *config.Config) (NotificationService, error) {
	// Fall back to a logging sender when SMTP is not configured, so local
	// development does not need a mail account
	var emailService EmailService
	if cfg.Email.SMTPHost != "" && cfg.Email.SMTPUsername != "" {
		smtpService, err := NewSMTPEmailService(&SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  "ProRenter",
			UseTLS:    true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create SMTP email service: %w", err)
		}
		emailService = smtpService
	} else {
		log.Println("SMTP not configured, using mock email service")
		emailService = NewMockEmailService()
	}

	producerConfig := DefaultKafkaProducerConfig()
	producerConfig.Brokers = cfg.Kafka.Brokers
	producerConfig.NotificationTopic = cfg.Kafka.NotificationTopic
	producerConfig.DeadLetterTopic = cfg.Kafka.DeadLetterTopic

	producer, err := NewKafkaNotificationProducer(producerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification producer: %w", err)
	}

	consumerConfig := DefaultConsumerConfig()
	consumerConfig.Brokers = cfg.Kafka.Brokers
	consumerConfig.Topics = []string{cfg.Kafka.NotificationTopic}
	consumerConfig.DeadLetterTopic = cfg.Kafka.DeadLetterTopic
	consumerConfig.GroupID = cfg.Kafka.ConsumerGroupID

	consumer, err := NewKafkaNotificationConsumer(consumerConfig, emailService)
	if err != nil {
		producer.Close()
		return nil, fmt.Errorf("failed to create notification consumer: %w", err)
	}

	publisher := NewNotificationPublisher(producer)

	ctx, cancel := context.WithCancel(context.Background())

	log.Printf("Notification service initialized (brokers: %v, topic: %s)",
		cfg.Kafka.Brokers, cfg.Kafka.NotificationTopic)

	return &EmailNotificationService{
		cfg:          cfg,
		producer:     producer,
		consumer:     consumer,
		publisher:    publisher,
		emailService: emailService,
		isRunning:    false,
		ctx:          ctx,
		cancel:       cancel,
	}, nil
}

func (ens *EmailNotificationService) Start(ctx context.Context) error {
	ens.mu.Lock()
	defer ens.mu.Unlock()

	if ens.isRunning {
		return fmt.Errorf("notification service is already running")
	}

	log.Printf("Starting notification service...")

	err := ens.consumer.StartConsumers(ens.ctx, ens.cfg.Kafka.ConsumerWorkers)
	if err != nil {
		return fmt.Errorf("failed to start consumers: %w", err)
	}

	ens.isRunning = true
	log.Printf("Notification service started successfully")

	return nil
}

func (ens *EmailNotificationService) Stop() error {
	ens.mu.Lock()
	defer ens.mu.Unlock()

	if !ens.isRunning {
		return fmt.Errorf("notification service is not running")
	}

	log.Printf("Stopping notification service...")

	ens.cancel()

	if err := ens.consumer.Stop(); err != nil {
		log.Printf("Error stopping consumer: %v", err)
	}

	if err := ens.producer.Close(); err != nil {
		log.Printf("Error closing producer: %v", err)
	}

	ens.isRunning = false
	log.Printf("Notification service stopped")

	return nil
}

func (ens *EmailNotificationService) SendNotification(ctx context.Context, notification *EmailNotification) error {
	return ens.producer.PublishNotification(ctx, notification)
}

func (ens *EmailNotificationService) SendBatchNotifications(ctx context.Context, notifications []*EmailNotification) error {
	return ens.producer.PublishBatchNotifications(ctx, notifications)
}

func (ens *EmailNotificationService) SendDisputeNotification(ctx context.Context, userID uuid.UUID, email, name string,
	disputeID, bookingID uuid.UUID, notificationType NotificationType,
	templateData map[string]interface{}) error {

	return ens.publisher.PublishDisputeNotification(ctx, userID, email, name, disputeID, bookingID, notificationType, templateData)
}

func (ens *EmailNotificationService) SendBookingNotification(ctx context.Context, userID uuid.UUID, email, name string,
	bookingID uuid.UUID, notificationType NotificationType,
	templateData map[string]interface{}) error {

	return ens.publisher.PublishBookingNotification(ctx, userID, email, name, bookingID, notificationType, templateData)
}

func (ens *EmailNotificationService) HealthCheck(ctx context.Context) error {
	ens.mu.RLock()
	isRunning := ens.isRunning
	ens.mu.RUnlock()

	if !isRunning {
		return fmt.Errorf("notification service is not running")
	}

	if err := ens.producer.HealthCheck(ctx); err != nil {
		return fmt.Errorf("producer health check failed: %w", err)
	}

	if err := ens.consumer.HealthCheck(ctx); err != nil {
		return fmt.Errorf("consumer health check failed: %w", err)
	}

	return nil
}

// NoopNotificationService satisfies NotificationService without Kafka, used
// in tests and when the broker is unavailable.
type NoopNotificationService struct{}

func NewNoopNotificationService() NotificationService {
	return &NoopNotificationService{}
}

func (n *NoopNotificationService) SendNotification(ctx context.Context, notification *EmailNotification) error {
	return nil
}

func (n *NoopNotificationService) SendBatchNotifications(ctx context.Context, notifications []*EmailNotification) error {
	return nil
}

func (n *NoopNotificationService) SendDisputeNotification(ctx context.Context, userID uuid.UUID, email, name string,
	disputeID, bookingID uuid.UUID, notificationType NotificationType,
	templateData map[string]interface{}) error {
	return nil
}

func (n *NoopNotificationService) SendBookingNotification(ctx context.Context, userID uuid.UUID, email, name string,
	bookingID uuid.UUID, notificationType NotificationType,
	templateData map[string]interface{}) error {
	return nil
}

func (n *NoopNotificationService) Start(ctx context.Context) error { return nil }
func (n *NoopNotificationService) Stop() error                     { return nil }
func (n *NoopNotificationService) HealthCheck(ctx context.Context) error {
	return nil
}
