//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/leavedesk/service-booking/internal/application"
	"github.com/leavedesk/service-booking/internal/calendar"
	bookingDomain "github.com/leavedesk/service-booking/internal/domain/booking"
	bookingEvents "github.com/leavedesk/service-booking/internal/events"
	"github.com/leavedesk/service-booking/internal/notify"
	"github.com/leavedesk/service-booking/internal/repository"
	"github.com/leavedesk/service-booking/pkg/kafka"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// bookingStack holds wired-up booking service components.
type bookingStack struct {
	Service         *application.BookingService
	History         *application.HistoryService
	Repo            *repository.GormBookingRepository
	Calendar        *calendar.Calendar
	CleanupProducer func()
}

// setupPostgres starts a PostgreSQL container and returns a migrated GORM DB.
func setupPostgres(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_leave",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_leave sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(&repository.BookingModel{}, &repository.HistoryModel{}, &repository.MemberModel{}))

	return db, func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}
}

// setupContainers starts PostgreSQL and Kafka testcontainers.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	db, cleanupPG := setupPostgres(t)

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers, bookingEvents.TopicBookingEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		cleanupPG()
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupRedis starts a Redis container and returns a connected client.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start Redis container")

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	require.Eventually(t, func() bool {
		return client.Ping(ctx).Err() == nil
	}, 15*time.Second, 200*time.Millisecond, "Redis not ready")

	return client, func() {
		_ = client.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Redis container: %v", err)
		}
	}
}

// setupBookingStack wires up the full booking service stack. A nil lock runs
// without date serialisation; empty brokers disable event publishing.
func setupBookingStack(t *testing.T, db *gorm.DB, brokers []string, lock application.DateLock) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	cal, err := calendar.Load(calendar.DefaultTimezone)
	require.NoError(t, err)

	if lock == nil {
		lock = repository.NoopDateLock{}
	}

	bookingRepo := repository.NewGormBookingRepository(db)
	historyRepo := repository.NewGormHistoryRepository(db)
	memberRepo := repository.NewGormMemberRepository(db)

	var publisher application.EventPublisher
	cleanupProducer := func() {}
	if len(brokers) > 0 {
		producer := kafka.NewProducer(brokers, logger)
		publisher = producer
		cleanupProducer = func() { _ = producer.Close() }
	}

	bookingSvc := application.NewBookingService(
		bookingRepo,
		memberRepo,
		bookingDomain.NewValidator(bookingRepo, cal),
		cal,
		lock,
		application.NewAuditLogger(historyRepo, logger),
		publisher,
		logger,
	)

	return &bookingStack{
		Service:         bookingSvc,
		History:         application.NewHistoryService(historyRepo, logger),
		Repo:            bookingRepo,
		Calendar:        cal,
		CleanupProducer: cleanupProducer,
	}
}

// newNotificationConsumer builds a consumer in a fresh group pushing to pusher.
func newNotificationConsumer(brokers []string, pusher notify.Pusher) *bookingEvents.NotificationConsumer {
	logger, _ := zap.NewDevelopment()
	groupID := fmt.Sprintf("test-notifier-%s", uuid.New().String()[:8])
	return bookingEvents.NewNotificationConsumer(brokers, groupID, pusher, logger)
}

// futureDate returns a civil date days ahead of today, always inside the booking window.
func futureDate(cal *calendar.Calendar, days int) calendar.Date {
	return cal.Today().AddDays(days)
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
