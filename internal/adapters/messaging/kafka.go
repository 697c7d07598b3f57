package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"

	"github.com/athebyme/shopify-product-service/pkg/interfaces"
)

// KafkaOptions параметры подключения к Kafka
type KafkaOptions struct {
	Brokers           []string
	GroupID           string
	ClientID          string
	AutoOffsetReset   string
	SessionTimeout    time.Duration
	PollTimeout       time.Duration
	WriteTimeout      time.Duration
	EnableIdempotence bool
	CompressionType   string
}

// KafkaMessaging реализация MessagingPort с использованием Kafka
type KafkaMessaging struct {
	producer       *kafka.Producer
	consumers      map[string]func() error // handlerID -> отписка
	consumersMutex sync.Mutex
	opts           KafkaOptions
	logger         interfaces.LoggerPort
	wg             sync.WaitGroup
}

var _ interfaces.MessagingPort = (*KafkaMessaging)(nil)

// NewKafkaMessaging создает новый экземпляр KafkaMessaging
func NewKafkaMessaging(opts KafkaOptions, logger interfaces.LoggerPort) (*KafkaMessaging, error) {
	if len(opts.Brokers) == 0 {
		return nil, errors.New("не заданы брокеры Kafka")
	}
	if opts.ClientID == "" {
		opts.ClientID = "shopify-product-service"
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 100 * time.Millisecond
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.CompressionType == "" {
		opts.CompressionType = "snappy"
	}

	producer, err := kafka.NewProducer(producerConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Kafka producer: %w", err)
	}

	k := &KafkaMessaging{
		producer:  producer,
		consumers: make(map[string]func() error),
		opts:      opts,
		logger:    logger,
	}

	k.wg.Add(1)
	go k.watchProducerEvents()

	return k, nil
}

func producerConfig(opts KafkaOptions) *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers":            strings.Join(opts.Brokers, ","),
		"client.id":                    opts.ClientID + "-producer",
		"acks":                         "all", // максимальная надежность
		"enable.idempotence":           opts.EnableIdempotence,
		"compression.type":             opts.CompressionType,
		"linger.ms":                    10, // небольшая задержка для батчинга
		"message.max.bytes":            1000000,
		"queue.buffering.max.messages": 100000,
	}
}

func consumerConfig(opts KafkaOptions, cfg *interfaces.ConsumerConfig) *kafka.ConfigMap {
	offsetReset := cfg.AutoOffsetReset
	if offsetReset == "" {
		offsetReset = "latest"
	}
	sessionTimeout := opts.SessionTimeout
	if sessionTimeout <= 0 {
		sessionTimeout = 30 * time.Second
	}
	return &kafka.ConfigMap{
		"bootstrap.servers":        strings.Join(opts.Brokers, ","),
		"client.id":                opts.ClientID + "-consumer",
		"group.id":                 cfg.GroupID,
		"auto.offset.reset":        offsetReset,
		"enable.auto.commit":       cfg.AutoCommit,
		"auto.commit.interval.ms":  int(cfg.AutoCommitInterval.Milliseconds()),
		"session.timeout.ms":       int(sessionTimeout.Milliseconds()),
		"max.poll.interval.ms":     300000,
		"heartbeat.interval.ms":    3000,
		"fetch.wait.max.ms":        500,
		"reconnect.backoff.ms":     50,
		"reconnect.backoff.max.ms": 10000,
	}
}

// messageToKafkaMessage преобразует сообщение в kafka.Message
func messageToKafkaMessage(topic string, message []byte, key string, headers map[string]string) *kafka.Message {
	var kafkaHeaders []kafka.Header
	for k, v := range headers {
		kafkaHeaders = append(kafkaHeaders, kafka.Header{
			Key:   k,
			Value: []byte(v),
		})
	}

	// Добавляем служебные заголовки
	kafkaHeaders = append(kafkaHeaders,
		kafka.Header{Key: "message_id", Value: []byte(uuid.New().String())},
		kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339Nano))},
	)

	var keyBytes []byte
	if key != "" {
		keyBytes = []byte(key)
	}

	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          message,
		Key:            keyBytes,
		Headers:        kafkaHeaders,
	}
}

// kafkaMessageToMessage преобразует kafka.Message в Message
func kafkaMessageToMessage(msg *kafka.Message) *interfaces.Message {
	headers := make(map[string]string)
	for _, header := range msg.Headers {
		headers[header.Key] = string(header.Value)
	}

	var key string
	if msg.Key != nil {
		key = string(msg.Key)
	}

	var topic string
	if msg.TopicPartition.Topic != nil {
		topic = *msg.TopicPartition.Topic
	}

	// Извлекаем время публикации из заголовков
	publishedAt := msg.Timestamp
	if tsStr, ok := headers["timestamp"]; ok {
		if ts, err := time.Parse(time.RFC3339Nano, tsStr); err == nil {
			publishedAt = ts
		}
	}

	return &interfaces.Message{
		ID:          headers["message_id"],
		Topic:       topic,
		Key:         key,
		Value:       msg.Value,
		Headers:     headers,
		PublishedAt: publishedAt,
	}
}

// Publish публикует сообщение в указанную тему
func (k *KafkaMessaging) Publish(ctx context.Context, topic string, message []byte) error {
	return k.produce(ctx, messageToKafkaMessage(topic, message, "", nil))
}

// PublishWithKey публикует сообщение с указанным ключом
func (k *KafkaMessaging) PublishWithKey(ctx context.Context, topic string, key string, message []byte) error {
	return k.produce(ctx, messageToKafkaMessage(topic, message, key, nil))
}

// produce отправляет сообщение и ждет отчета о доставке
func (k *KafkaMessaging) produce(ctx context.Context, msg *kafka.Message) error {
	delivery := make(chan kafka.Event, 1)
	if err := k.producer.Produce(msg, delivery); err != nil {
		return fmt.Errorf("ошибка отправки сообщения в Kafka: %w", err)
	}

	timer := time.NewTimer(k.opts.WriteTimeout)
	defer timer.Stop()

	select {
	case ev := <-delivery:
		m, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("неожиданное событие доставки: %v", ev)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("сообщение не доставлено: %w", m.TopicPartition.Error)
		}
		return nil
	case <-timer.C:
		return fmt.Errorf("таймаут доставки сообщения в %s", *msg.TopicPartition.Topic)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe подписывается на указанную тему и обрабатывает сообщения с помощью handler.
// Смещение фиксируется после обработки, в том числе неуспешной.
func (k *KafkaMessaging) Subscribe(ctx context.Context, topic string, handler interfaces.MessageHandler) (func() error, error) {
	return k.SubscribeWithConfig(ctx, topic, handler, &interfaces.ConsumerConfig{
		GroupID:         k.opts.GroupID,
		AutoCommit:      false,
		PollTimeout:     k.opts.PollTimeout,
		AutoOffsetReset: k.opts.AutoOffsetReset,
	})
}

// SubscribeWithConfig подписывается на указанную тему с дополнительными настройками
func (k *KafkaMessaging) SubscribeWithConfig(ctx context.Context, topic string, handler interfaces.MessageHandler, cfg *interfaces.ConsumerConfig) (func() error, error) {
	consumer, err := kafka.NewConsumer(consumerConfig(k.opts, cfg))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Kafka consumer: %w", err)
	}

	if err := consumer.Subscribe(topic, nil); err != nil {
		_ = consumer.Close()
		return nil, fmt.Errorf("ошибка подписки на топик %s: %w", topic, err)
	}

	handlerID := uuid.New().String()
	consumeCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		k.consumeMessages(consumeCtx, consumer, handler, cfg)
	}()

	var once sync.Once
	unsubscribe := func() error {
		var closeErr error
		once.Do(func() {
			cancel()
			<-done

			k.consumersMutex.Lock()
			delete(k.consumers, handlerID)
			k.consumersMutex.Unlock()

			closeErr = consumer.Close()
		})
		return closeErr
	}

	k.consumersMutex.Lock()
	k.consumers[handlerID] = unsubscribe
	k.consumersMutex.Unlock()

	return unsubscribe, nil
}

// consumeMessages обрабатывает сообщения из Kafka до отмены контекста
func (k *KafkaMessaging) consumeMessages(ctx context.Context, consumer *kafka.Consumer, handler interfaces.MessageHandler, cfg *interfaces.ConsumerConfig) {
	pollMs := int(cfg.PollTimeout.Milliseconds())
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		ev := consumer.Poll(pollMs)
		if ev == nil {
			continue
		}

		switch e := ev.(type) {
		case *kafka.Message:
			msg := kafkaMessageToMessage(e)
			if err := handler(ctx, msg); err != nil {
				k.logger.WarnWithContext(ctx, "Ошибка обработки сообщения",
					interfaces.LogField{Key: "topic", Value: msg.Topic},
					interfaces.LogField{Key: "message_id", Value: msg.ID},
					interfaces.LogField{Key: "error", Value: err.Error()},
				)
			}

			if !cfg.AutoCommit {
				if _, err := consumer.CommitMessage(e); err != nil {
					k.logger.ErrorWithContext(ctx, "Ошибка фиксации смещения",
						interfaces.LogField{Key: "topic", Value: msg.Topic},
						interfaces.LogField{Key: "error", Value: err.Error()},
					)
				}
			}

		case kafka.Error:
			k.logger.ErrorWithContext(ctx, "Ошибка Kafka consumer",
				interfaces.LogField{Key: "code", Value: e.Code().String()},
				interfaces.LogField{Key: "error", Value: e.Error()},
			)
			if e.IsFatal() {
				return
			}

		default:
			// ребалансировки и PartitionEOF не требуют действий
		}
	}
}

// watchProducerEvents логирует ошибки producer, не связанные с конкретным сообщением
func (k *KafkaMessaging) watchProducerEvents() {
	defer k.wg.Done()
	for ev := range k.producer.Events() {
		if e, ok := ev.(kafka.Error); ok {
			k.logger.Error("Ошибка Kafka producer",
				interfaces.LogField{Key: "code", Value: e.Code().String()},
				interfaces.LogField{Key: "error", Value: e.Error()},
			)
		}
	}
}

// Close закрывает соединение с системой обмена сообщениями
func (k *KafkaMessaging) Close() error {
	k.consumersMutex.Lock()
	unsubscribers := make([]func() error, 0, len(k.consumers))
	for _, unsubscribe := range k.consumers {
		unsubscribers = append(unsubscribers, unsubscribe)
	}
	k.consumersMutex.Unlock()

	for _, unsubscribe := range unsubscribers {
		if err := unsubscribe(); err != nil {
			k.logger.Warn("Ошибка закрытия Kafka consumer",
				interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}

	// Ждем до 15 секунд для отправки всех сообщений
	if remaining := k.producer.Flush(15 * 1000); remaining > 0 {
		k.logger.Warn("Не все сообщения отправлены при закрытии",
			interfaces.LogField{Key: "remaining", Value: remaining})
	}
	k.producer.Close()
	k.wg.Wait()

	return nil
}
