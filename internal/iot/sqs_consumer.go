package iot

import (
	"context"
	"log"
	"time"

	"gate_access/internal/config"
	"gate_access/internal/service"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQSConsumer long-polls the ANPR event queue for recognitions posted by
// standalone gate cameras.
type SQSConsumer struct {
	sqsClient    *sqs.Client
	queueURL     string
	eventService *service.CameraEventService
}

func NewSQSConsumer(client *sqs.Client, cfg *config.Config, eventService *service.CameraEventService) *SQSConsumer {
	return &SQSConsumer{
		sqsClient:    client,
		queueURL:     cfg.SQSEventQueueURL,
		eventService: eventService,
	}
}

func (c *SQSConsumer) Start(ctx context.Context) {
	log.Printf("SQS Consumer: listening on queue %s", c.queueURL)
	for {
		select {
		case <-ctx.Done():
			log.Println("SQS Consumer: context cancelled, stopping.")
			return
		default:
			receiveInput := &sqs.ReceiveMessageInput{
				QueueUrl:            &c.queueURL,
				MaxNumberOfMessages: 10,
				WaitTimeSeconds:     20,
				VisibilityTimeout:   60,
			}

			result, err := c.sqsClient.ReceiveMessage(ctx, receiveInput)
			if err != nil {
				log.Printf("SQS Consumer: receive error: %v", err)
				select {
				case <-time.After(5 * time.Second):
				case <-ctx.Done():
					return
				}
				continue
			}

			for _, message := range result.Messages {
				if message.Body == nil {
					c.deleteMessage(ctx, message.ReceiptHandle)
					continue
				}

				if err := c.eventService.HandleCameraEvent(ctx, *message.Body); err != nil {
					// Unparseable payloads will never succeed; delete them
					// instead of cycling through the visibility timeout.
					log.Printf("SQS Consumer: dropping message %s: %v", *message.MessageId, err)
				}
				c.deleteMessage(ctx, message.ReceiptHandle)
			}
		}
	}
}

func (c *SQSConsumer) deleteMessage(ctx context.Context, receiptHandle *string) {
	if receiptHandle == nil {
		return
	}
	_, err := c.sqsClient.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      &c.queueURL,
		ReceiptHandle: receiptHandle,
	})
	if err != nil {
		log.Printf("SQS Consumer: delete error: %v", err)
	}
}
