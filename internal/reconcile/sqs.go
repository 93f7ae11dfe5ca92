package reconcile

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"resume-builder/internal/shared/telemetry"
)

// SQSAPI is the subset of the SQS client the poller needs.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSPoller long-polls the alert queue and feeds messages to a Processor.
type SQSPoller struct {
	Client            SQSAPI
	QueueURL          string
	Processor         *Processor
	Concurrency       int
	VisibilitySeconds int32
	ShutdownTimeout   time.Duration
}

// Run polls until ctx is cancelled, then waits for in-flight messages up to
// ShutdownTimeout.
func (p *SQSPoller) Run(ctx context.Context) error {
	sem := make(chan struct{}, max(1, p.Concurrency))
	var wg sync.WaitGroup

	telemetry.Info("reconcile.sqs.started", map[string]any{
		"queue":       p.QueueURL,
		"concurrency": max(1, p.Concurrency),
	})

pollLoop:
	for {
		if ctx.Err() != nil {
			break
		}
		resp, err := p.Client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(p.QueueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
			VisibilityTimeout:   p.VisibilitySeconds,
			AttributeNames:      []sqstypes.QueueAttributeName{sqstypes.QueueAttributeName("ApproximateReceiveCount")},
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				break
			}
			telemetry.Error("reconcile.sqs.receive_failed", map[string]any{"error": err.Error()})
			select {
			case <-ctx.Done():
				break pollLoop
			case <-time.After(time.Second):
			}
			continue
		}

		for _, msg := range resp.Messages {
			select {
			case <-ctx.Done():
				break pollLoop
			case sem <- struct{}{}:
			}
			wg.Add(1)
			go func(m sqstypes.Message) {
				defer wg.Done()
				defer func() { <-sem }()
				// In-flight refunds finish even after shutdown starts.
				p.HandleMessage(context.WithoutCancel(ctx), m)
			}(msg)
		}
	}

	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(p.ShutdownTimeout):
		telemetry.Warn("reconcile.sqs.shutdown_timeout", map[string]any{"timeout": p.ShutdownTimeout.String()})
	}
	return nil
}

// HandleMessage processes one SQS message. Successful and permanently invalid
// messages are deleted; transient failures are left for redelivery.
func (p *SQSPoller) HandleMessage(ctx context.Context, msg sqstypes.Message) {
	body := aws.ToString(msg.Body)
	decoded, meta, err := ParseMessage(body)
	if err != nil {
		fields := baseFields(msg, decoded.OperationID, decoded.RequestID)
		fields["body_len"] = meta.BodyLen
		if meta.BodySHA != "" {
			fields["body_sha256"] = meta.BodySHA
		}
		fields["error"] = err.Error()
		telemetry.Error("reconcile.sqs.invalid_message", fields)
		p.delete(ctx, msg, decoded.OperationID, decoded.RequestID)
		return
	}

	if _, err := p.Processor.Process(ctx, decoded); err != nil {
		fields := baseFields(msg, decoded.OperationID, decoded.RequestID)
		fields["error"] = err.Error()
		telemetry.Error("reconcile.sqs.failed", fields)
		return
	}
	p.delete(ctx, msg, decoded.OperationID, decoded.RequestID)
}

func (p *SQSPoller) delete(ctx context.Context, msg sqstypes.Message, operationID, requestID string) bool {
	receipt := aws.ToString(msg.ReceiptHandle)
	if receipt == "" {
		fields := baseFields(msg, operationID, requestID)
		fields["error"] = "missing receipt handle"
		telemetry.Error("reconcile.sqs.delete_failed", fields)
		return false
	}
	if _, err := p.Client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(p.QueueURL),
		ReceiptHandle: aws.String(receipt),
	}); err != nil {
		fields := baseFields(msg, operationID, requestID)
		fields["error"] = err.Error()
		telemetry.Error("reconcile.sqs.delete_failed", fields)
		return false
	}
	return true
}

func baseFields(msg sqstypes.Message, operationID, requestID string) map[string]any {
	fields := map[string]any{
		"operation_id":   operationID,
		"sqs_message_id": aws.ToString(msg.MessageId),
		"receive_count":  receiveCount(msg),
	}
	if strings.TrimSpace(requestID) != "" {
		fields["request_id"] = requestID
	}
	return fields
}

func receiveCount(msg sqstypes.Message) int {
	raw := msg.Attributes["ApproximateReceiveCount"]
	if raw == "" {
		return 0
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return parsed
}
