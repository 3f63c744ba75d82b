package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/ares-whatsapp-router/pkg/logging"
)

type fakeAMQPChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
	closed   bool
}

func (f *fakeAMQPChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange = exchange
	f.key = key
	f.msg = msg
	return f.err
}

func (f *fakeAMQPChannel) Close() error {
	f.closed = true
	return nil
}

func TestRabbitPublisherPublish(t *testing.T) {
	ch := &fakeAMQPChannel{}
	p := &RabbitPublisher{
		openChannel: func() (amqpChannel, error) { return ch, nil },
		exchange:    "ares.whatsapp",
		logger:      logging.Default(),
	}

	env := NewEnvelope(TypeLeadCaptured, "wamid.1", LeadCapturedV1{LeadID: "l-1", Phone: "595981000000"})
	require.NoError(t, p.Publish(context.Background(), env))

	assert.Equal(t, "ares.whatsapp", ch.exchange)
	assert.Equal(t, TypeLeadCaptured, ch.key)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, env.Meta.ID, ch.msg.MessageId)
	assert.Equal(t, "wamid.1", ch.msg.CorrelationId)
	assert.True(t, ch.closed)

	var decoded struct {
		Meta Meta           `json:"meta"`
		Data LeadCapturedV1 `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, Producer, decoded.Meta.Producer)
	assert.Equal(t, "l-1", decoded.Data.LeadID)
}

func TestRabbitPublisherErrors(t *testing.T) {
	p := &RabbitPublisher{
		openChannel: func() (amqpChannel, error) { return nil, errors.New("closed") },
		exchange:    "x",
		logger:      logging.Default(),
	}
	require.Error(t, p.Publish(context.Background(), NewEnvelope(TypeInteractionSaved, "", nil)))

	ch := &fakeAMQPChannel{err: errors.New("nack")}
	p.openChannel = func() (amqpChannel, error) { return ch, nil }
	err := p.Publish(context.Background(), NewEnvelope(TypeInteractionSaved, "", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), TypeInteractionSaved)
	assert.True(t, ch.closed)
}

type fakeSQS struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestSQSPublisher(t *testing.T) {
	client := &fakeSQS{}
	p := NewSQSPublisher(client, "https://sqs.local/queue")
	env := NewEnvelope(TypeInteractionSaved, "", InteractionLoggedV1{Phone: "1", IntentLabel: "sales"})
	require.NoError(t, p.Publish(context.Background(), env))

	require.NotNil(t, client.input)
	assert.Equal(t, "https://sqs.local/queue", aws.ToString(client.input.QueueUrl))
	assert.Equal(t, TypeInteractionSaved, aws.ToString(client.input.MessageAttributes["event_type"].StringValue))
	assert.Contains(t, aws.ToString(client.input.MessageBody), `"intent_label":"sales"`)

	client.err = errors.New("throttled")
	assert.Error(t, p.Publish(context.Background(), env))
}

func TestNewSQSPublisherValidates(t *testing.T) {
	assert.Panics(t, func() { NewSQSPublisher(nil, "q") })
	assert.Panics(t, func() { NewSQSPublisher(&fakeSQS{}, "") })
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), Envelope{}))
	assert.NoError(t, p.Close())
}
