package kafka

import (
	"context"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Mathoholic/exchange-updater/internal/logger"
	"github.com/Mathoholic/exchange-updater/internal/model/rates"
)

type producerConfig interface {
	Brokers() []string
	UpdatesTopic() string
}

// Producer announces finished updates on a Kafka topic, keyed by base currency.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewProducer(cfg producerConfig) (*Producer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_5_0_0
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers(), config)
	if err != nil {
		return nil, errors.Wrap(err, "new sync producer")
	}
	return &Producer{
		producer: producer,
		topic:    cfg.UpdatesTopic(),
	}, nil
}

func (p *Producer) NotifyUpdate(_ context.Context, summary rates.Summary) error {
	payload, err := encodeSummary(summary)
	if err != nil {
		return err
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(summary.Base),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return errors.Wrap(err, "send update event")
	}
	logger.Debug("update event sent", zap.Int32("partition", partition), zap.Int64("offset", offset))
	return nil
}

func encodeSummary(summary rates.Summary) ([]byte, error) {
	msg, err := structpb.NewStruct(map[string]interface{}{
		"base":    summary.Base,
		"latest":  summary.Latest,
		"saved":   summary.Saved,
		"added":   toList(summary.Added),
		"skipped": toList(summary.Skipped),
	})
	if err != nil {
		return nil, errors.Wrap(err, "build update event")
	}
	raw, err := proto.Marshal(msg)
	return raw, errors.Wrap(err, "marshal update event")
}

func toList(dates []string) []interface{} {
	res := make([]interface{}, 0, len(dates))
	for _, d := range dates {
		res = append(res, d)
	}
	return res
}

func (p *Producer) Close() {
	err := p.producer.Close()
	if err != nil {
		logger.Error("failed to close producer", zap.Error(err))
	}
}
