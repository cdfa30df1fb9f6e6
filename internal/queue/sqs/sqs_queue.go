package sqs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"reportsvc/internal/config"
	"reportsvc/internal/port"
)

type sqsQueue struct {
	client   *sqs.Client
	queueURL string
}

// NewSQSQueue creates a new SQS-backed ParseQueue implementation.
func NewSQSQueue(cfg *config.QueueConfig) (port.ParseQueue, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	var sqsOpts []func(*sqs.Options)
	if cfg.Endpoint != "" {
		sqsOpts = append(sqsOpts, func(o *sqs.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	return &sqsQueue{
		client:   sqs.NewFromConfig(awsCfg, sqsOpts...),
		queueURL: cfg.QueueURL,
	}, nil
}

func (q *sqsQueue) SendParseJob(ctx context.Context, job port.ParseJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshaling parse job: %w", err)
	}

	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("sqs send: %w", err)
	}
	return nil
}
