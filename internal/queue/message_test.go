package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"resume-builder/internal/shared/telemetry"
)

func TestMessageRoundTrip(t *testing.T) {
	msg := NewRefundFailed("op-123", "user-1", "translate", 5, "db down", "req-456",
		time.Date(2026, 1, 30, 22, 0, 0, 0, time.UTC))

	payload, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}

	got, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}

	if !reflect.DeepEqual(got, msg) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, msg)
	}
	if got.EnqueuedAt != "2026-01-30T22:00:00Z" || got.Type != TypeRefundFailed || got.Version != MessageVersion {
		t.Fatalf("unexpected envelope %+v", got)
	}
}

type fakeSQS struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQS) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	return &sqs.SendMessageOutput{}, f.err
}

func TestSQSClientSend(t *testing.T) {
	fake := &fakeSQS{}
	client := &SQSClient{client: fake, queueURL: "https://sqs.example/queue"}
	msg := NewRefundFailed("op-1", "u1", "enhance", 1, "boom", "", time.Now())
	if err := client.Send(context.Background(), msg); err != nil {
		t.Fatalf("send: %v", err)
	}
	if aws.ToString(fake.input.QueueUrl) != "https://sqs.example/queue" {
		t.Fatalf("queue url = %s", aws.ToString(fake.input.QueueUrl))
	}
	decoded, err := DecodeMessage([]byte(aws.ToString(fake.input.MessageBody)))
	if err != nil || decoded.OperationID != "op-1" {
		t.Fatalf("body = %s (%v)", aws.ToString(fake.input.MessageBody), err)
	}

	if fake.input.MessageDeduplicationId != nil {
		t.Fatalf("standard queue got dedup id %s", aws.ToString(fake.input.MessageDeduplicationId))
	}
	if attr := fake.input.MessageAttributes["type"]; aws.ToString(attr.StringValue) != TypeRefundFailed {
		t.Fatalf("type attribute = %v", attr.StringValue)
	}

	fake.err = errors.New("throttled")
	if err := client.Send(context.Background(), msg); err == nil {
		t.Fatalf("expected send error")
	}
}

func TestSQSClientSendFIFO(t *testing.T) {
	fake := &fakeSQS{}
	client := &SQSClient{client: fake, queueURL: "https://sqs.example/alerts.fifo"}
	if err := client.Send(context.Background(), NewRefundFailed("op-9", "u1", "translate", 5, "boom", "", time.Now())); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got := aws.ToString(fake.input.MessageDeduplicationId); got != "refund_failed:op-9" {
		t.Fatalf("dedup id = %q", got)
	}
	if got := aws.ToString(fake.input.MessageGroupId); got != "u1" {
		t.Fatalf("group id = %q", got)
	}
}

func TestLogClientWritesAlert(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(telemetry.SetOutput(&buf))
	if err := (LogClient{}).Send(context.Background(), NewRefundFailed("op-1", "u1", "translate", 5, "boom", "", time.Now())); err != nil {
		t.Fatalf("send: %v", err)
	}
	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("log line: %v", err)
	}
	if line["msg"] != "queue.alert" || line["operation_id"] != "op-1" || line["level"] != "error" {
		t.Fatalf("line = %v", line)
	}
}

func TestNewSQSClientRequiresURL(t *testing.T) {
	if _, err := NewSQSClient(context.Background(), " ", "us-east-1"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewAMQPClientRequiresURL(t *testing.T) {
	if _, err := NewAMQPClient("", "alerts"); err == nil {
		t.Fatalf("expected error")
	}
}
