package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gate_access/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
)

// GateService sends barrier commands to the gate controller over the AWS
// IoT data plane.
type GateService struct {
	iotDataClient *iotdataplane.Client
	topic         string
}

func NewGateService(iotDataClient *iotdataplane.Client, cfg *config.Config) *GateService {
	return &GateService{
		iotDataClient: iotDataClient,
		topic:         cfg.BarrierTopic,
	}
}

type barrierCommand struct {
	RequestID string    `json:"request_id"`
	Command   string    `json:"command"`
	Plate     string    `json:"plate"`
	IssuedAt  time.Time `json:"issued_at"`
}

func (s *GateService) OpenBarrier(ctx context.Context, requestID string, plate string) error {
	if s.iotDataClient == nil {
		return fmt.Errorf("IoT data plane client not configured")
	}

	payload, err := json.Marshal(barrierCommand{
		RequestID: requestID,
		Command:   "open",
		Plate:     plate,
		IssuedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshaling barrier command: %w", err)
	}

	_, err = s.iotDataClient.Publish(ctx, &iotdataplane.PublishInput{
		Topic:   aws.String(s.topic),
		Qos:     1,
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("publishing barrier command: %w", err)
	}

	log.Printf("GateService: sent open command (req %s) for plate %s to %s", requestID, plate, s.topic)
	return nil
}
