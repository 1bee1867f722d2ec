package producer

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/sportsbook-backend/pkg/contracts/events"
)

// KafkaPublisher publica os eventos de domínio nos tópicos do Kafka
type KafkaPublisher struct {
	ResultWriter  *kafka.Writer
	SettledWriter *kafka.Writer
}

func NewKafkaPublisher(resultWriter, settledWriter *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{ResultWriter: resultWriter, SettledWriter: settledWriter}
}

func (p *KafkaPublisher) PublishGameResultRecorded(ctx context.Context, e events.GameResultRecorded) error {
	if p.ResultWriter == nil {
		return nil
	}
	b, _ := json.Marshal(e)
	return p.ResultWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.GameID), Value: b})
}

func (p *KafkaPublisher) PublishBetSettled(ctx context.Context, e events.BetSettled) error {
	if p.SettledWriter == nil {
		return nil
	}
	b, _ := json.Marshal(e)
	return p.SettledWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.BetID), Value: b})
}
