// Package notify provisions the ephemeral SNS topic and SQS queue pair a
// deployment reports its progress through, and drains the queue for the
// watch loop.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/envforge/envforge/internal/monitor"
	"github.com/envforge/envforge/internal/util/retry"
)

// snsAPI is the subset of the SNS client the transport uses.
type snsAPI interface {
	CreateTopic(ctx context.Context, in *sns.CreateTopicInput, opts ...func(*sns.Options)) (*sns.CreateTopicOutput, error)
	Subscribe(ctx context.Context, in *sns.SubscribeInput, opts ...func(*sns.Options)) (*sns.SubscribeOutput, error)
	DeleteTopic(ctx context.Context, in *sns.DeleteTopicInput, opts ...func(*sns.Options)) (*sns.DeleteTopicOutput, error)
}

// sqsAPI is the subset of the SQS client the transport uses.
type sqsAPI interface {
	CreateQueue(ctx context.Context, in *sqs.CreateQueueInput, opts ...func(*sqs.Options)) (*sqs.CreateQueueOutput, error)
	GetQueueAttributes(ctx context.Context, in *sqs.GetQueueAttributesInput, opts ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error)
	SetQueueAttributes(ctx context.Context, in *sqs.SetQueueAttributesInput, opts ...func(*sqs.Options)) (*sqs.SetQueueAttributesOutput, error)
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, opts ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, opts ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	DeleteQueue(ctx context.Context, in *sqs.DeleteQueueInput, opts ...func(*sqs.Options)) (*sqs.DeleteQueueOutput, error)
}

// Transport implements monitor.Transport on SNS and SQS. One channel pair is
// a topic and a queue sharing a run-scoped name, with the queue subscribed
// to the topic.
type Transport struct {
	sns snsAPI
	sqs sqsAPI
}

// NewTransport builds a Transport from a resolved AWS configuration.
func NewTransport(cfg aws.Config) *Transport {
	return &Transport{
		sns: sns.NewFromConfig(cfg),
		sqs: sqs.NewFromConfig(cfg),
	}
}

// CreateChannelPair provisions the topic and queue and wires them together.
// If any step fails, everything created so far is deleted before returning
// so a failed setup leaves no orphaned resources.
func (t *Transport) CreateChannelPair(ctx context.Context, name string) (monitor.ChannelPair, error) {
	topic, err := t.sns.CreateTopic(ctx, &sns.CreateTopicInput{Name: aws.String(name)})
	if err != nil {
		return monitor.ChannelPair{}, fmt.Errorf("failed to create topic %s: %w", name, err)
	}
	topicArn := aws.ToString(topic.TopicArn)

	queue, err := t.sqs.CreateQueue(ctx, &sqs.CreateQueueInput{QueueName: aws.String(name)})
	if err != nil {
		t.rollback(ctx, topicArn, "")
		return monitor.ChannelPair{}, fmt.Errorf("failed to create queue %s: %w", name, err)
	}
	queueURL := aws.ToString(queue.QueueUrl)

	queueArn, err := t.queueArn(ctx, queueURL)
	if err != nil {
		t.rollback(ctx, topicArn, queueURL)
		return monitor.ChannelPair{}, err
	}

	policy, err := queuePolicy(topicArn, queueArn)
	if err != nil {
		t.rollback(ctx, topicArn, queueURL)
		return monitor.ChannelPair{}, err
	}
	_, err = t.sqs.SetQueueAttributes(ctx, &sqs.SetQueueAttributesInput{
		QueueUrl: aws.String(queueURL),
		Attributes: map[string]string{
			string(sqstypes.QueueAttributeNamePolicy): policy,
		},
	})
	if err != nil {
		t.rollback(ctx, topicArn, queueURL)
		return monitor.ChannelPair{}, fmt.Errorf("failed to set queue policy: %w", err)
	}

	_, err = t.sns.Subscribe(ctx, &sns.SubscribeInput{
		TopicArn: aws.String(topicArn),
		Protocol: aws.String("sqs"),
		Endpoint: aws.String(queueArn),
	})
	if err != nil {
		t.rollback(ctx, topicArn, queueURL)
		return monitor.ChannelPair{}, fmt.Errorf("failed to subscribe queue to topic: %w", err)
	}

	return monitor.ChannelPair{
		Name:            name,
		PublishEndpoint: topicArn,
		PullEndpoint:    queueURL,
	}, nil
}

// DeleteChannelPair removes both halves of the pair. Both deletions are
// attempted even if the first fails.
func (t *Transport) DeleteChannelPair(ctx context.Context, pair monitor.ChannelPair) error {
	var errs []error
	if pair.PublishEndpoint != "" {
		if _, err := t.sns.DeleteTopic(ctx, &sns.DeleteTopicInput{TopicArn: aws.String(pair.PublishEndpoint)}); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete topic %s: %w", pair.Name, err))
		}
	}
	if pair.PullEndpoint != "" {
		if _, err := t.sqs.DeleteQueue(ctx, &sqs.DeleteQueueInput{QueueUrl: aws.String(pair.PullEndpoint)}); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete queue %s: %w", pair.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Pull long-polls the queue for up to maxMessages messages.
func (t *Transport) Pull(ctx context.Context, pair monitor.ChannelPair, maxMessages int, wait time.Duration) ([]monitor.RawMessage, error) {
	out, err := t.sqs.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(pair.PullEndpoint),
		MaxNumberOfMessages: int32(maxMessages),
		WaitTimeSeconds:     int32(wait / time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to receive messages from queue %s: %w", pair.Name, err)
	}

	msgs := make([]monitor.RawMessage, 0, len(out.Messages))
	for _, m := range out.Messages {
		msgs = append(msgs, monitor.RawMessage{
			Handle: aws.ToString(m.ReceiptHandle),
			Body:   []byte(aws.ToString(m.Body)),
		})
	}
	return msgs, nil
}

// DeleteMessage acknowledges one processed message.
func (t *Transport) DeleteMessage(ctx context.Context, pair monitor.ChannelPair, handle string) error {
	_, err := t.sqs.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(pair.PullEndpoint),
		ReceiptHandle: aws.String(handle),
	})
	if err != nil {
		return fmt.Errorf("failed to delete message from queue %s: %w", pair.Name, err)
	}
	return nil
}

// queueArn resolves the ARN of a freshly created queue. Creation is
// eventually consistent, so the attribute lookup is retried briefly before
// giving up.
func (t *Transport) queueArn(ctx context.Context, queueURL string) (string, error) {
	var arn string
	err := retry.Do(ctx, func() error {
		out, err := t.sqs.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
			QueueUrl:       aws.String(queueURL),
			AttributeNames: []sqstypes.QueueAttributeName{sqstypes.QueueAttributeNameQueueArn},
		})
		if err != nil {
			return err
		}
		arn = out.Attributes[string(sqstypes.QueueAttributeNameQueueArn)]
		if arn == "" {
			return fmt.Errorf("queue %s reported no ARN", queueURL)
		}
		return nil
	}, retry.WithMaxRetries(3), retry.WithInitialDelay(200*time.Millisecond), retry.WithMaxDelay(2*time.Second))
	if err != nil {
		return "", fmt.Errorf("failed to resolve queue ARN: %w", err)
	}
	return arn, nil
}

// queuePolicy allows the topic, and only the topic, to send to the queue.
func queuePolicy(topicArn, queueArn string) (string, error) {
	doc := map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{{
			"Sid":       "AllowTopicSendMessage",
			"Effect":    "Allow",
			"Principal": map[string]string{"Service": "sns.amazonaws.com"},
			"Action":    "sqs:SendMessage",
			"Resource":  queueArn,
			"Condition": map[string]any{
				"ArnEquals": map[string]string{"aws:SourceArn": topicArn},
			},
		}},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode queue policy: %w", err)
	}
	return string(data), nil
}

// rollback tears down partially created resources after a failed setup.
// Failures here are swallowed: the original error is what the caller needs.
func (t *Transport) rollback(ctx context.Context, topicArn, queueURL string) {
	if topicArn != "" {
		_, _ = t.sns.DeleteTopic(ctx, &sns.DeleteTopicInput{TopicArn: aws.String(topicArn)})
	}
	if queueURL != "" {
		_, _ = t.sqs.DeleteQueue(ctx, &sqs.DeleteQueueInput{QueueUrl: aws.String(queueURL)})
	}
}
