package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/mmdatafocus/requisition_inbound/config"
	"github.com/mmdatafocus/requisition_inbound/models"
	"github.com/sirupsen/logrus"
)

const defaultPublishTimeout = 30 * time.Second

// publishFunc sends one message and returns the server-assigned id.
type publishFunc func(ctx context.Context, data []byte, attributes map[string]string) (string, error)

// RFCPublisher hands the T_DATA request to a Pub/Sub topic consumed by the
// system that talks to SAP. A publish is considered a successful call.
type RFCPublisher struct {
	topicName string
	publish   publishFunc
	timeout   time.Duration
	now       func() time.Time
}

var _ models.RFCCaller = (*RFCPublisher)(nil)

// NewRFCPublisher resolves the topic with the shared client. The topic is created
// outside production so local emulators work without setup.
func NewRFCPublisher(ctx context.Context, topicName string, createTopic bool) (*RFCPublisher, error) {
	if topicName == "" {
		return nil, errors.New("RFC_PUBSUB_TOPIC is required")
	}
	client, err := config.GetPubSubClient(ctx)
	if err != nil {
		return nil, err
	}
	topic, err := config.TopicIfExists(ctx, client, topicName, createTopic)
	if err != nil {
		return nil, err
	}
	return newRFCPublisher(topicName, topicPublisher(topic)), nil
}

func newRFCPublisher(topicName string, publish publishFunc) *RFCPublisher {
	return &RFCPublisher{
		topicName: topicName,
		publish:   publish,
		timeout:   defaultPublishTimeout,
		now:       time.Now,
	}
}

func topicPublisher(topic *pubsub.Topic) publishFunc {
	return func(ctx context.Context, data []byte, attributes map[string]string) (string, error) {
		result := topic.Publish(ctx, &pubsub.Message{Data: data, Attributes: attributes})
		return result.Get(ctx)
	}
}

func (p *RFCPublisher) Call(ctx context.Context, functionModule string, request models.RFCRequest) models.RFCOutcome {
	started := p.now()
	outcome := models.RFCOutcome{}

	data, err := json.Marshal(request)
	if err != nil {
		outcome.ErrorMessage = err.Error()
		outcome.Response = map[string]string{"message": "request could not be encoded"}
		return outcome
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	messageId, err := p.publish(ctx, data, map[string]string{
		"function_module": functionModule,
		"lines":           strconv.Itoa(len(request.TData)),
	})
	outcome.Duration = p.now().Sub(started)
	if err != nil {
		config.GetLogger().WithFields(logrus.Fields{
			"field":           "RFCPublisher",
			"topic":           p.topicName,
			"function_module": functionModule,
		}).Error("rfc publish failed: " + err.Error())
		outcome.ErrorMessage = err.Error()
		outcome.Response = map[string]string{"message": "publish failed"}
		return outcome
	}

	outcome.Success = true
	outcome.Response = map[string]string{"message_id": messageId, "topic": p.topicName}
	return outcome
}
