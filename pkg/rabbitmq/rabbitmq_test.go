package rabbitmq

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"tokodash/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAck struct {
	mock.Mock
}

func (m *mockAck) Ack(multiple bool) error {
	return m.Called(multiple).Error(0)
}

func (m *mockAck) Nack(multiple, requeue bool) error {
	return m.Called(multiple, requeue).Error(0)
}

func decisionBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(models.DecisionEvent{
		ID:        "evt-1",
		Kind:      models.KindOrders,
		ItemID:    101,
		Decision:  models.DecisionApproved,
		DecidedBy: "admin",
		DecidedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return body
}

func TestSettleAcksHandledEvent(t *testing.T) {
	ack := new(mockAck)
	ack.On("Ack", false).Return(nil).Once()

	var got models.DecisionEvent
	settle(ack, 1, decisionBody(t), func(e models.DecisionEvent) error {
		got = e
		return nil
	})

	ack.AssertExpectations(t)
	assert.Equal(t, 101, got.ItemID)
	assert.Equal(t, models.KindOrders, got.Kind)
}

func TestSettleRequeuesOnHandlerError(t *testing.T) {
	ack := new(mockAck)
	ack.On("Nack", false, true).Return(nil).Once()

	settle(ack, 2, decisionBody(t), func(models.DecisionEvent) error {
		return errors.New("downstream unavailable")
	})

	ack.AssertExpectations(t)
}

func TestSettleDropsUndecodableMessage(t *testing.T) {
	ack := new(mockAck)
	ack.On("Nack", false, false).Return(nil).Once()

	called := false
	settle(ack, 3, []byte("not json"), func(models.DecisionEvent) error {
		called = true
		return nil
	})

	ack.AssertExpectations(t)
	assert.False(t, called)
}

func TestPublishWithoutChannel(t *testing.T) {
	c := &Client{}
	assert.Error(t, c.PublishDecision(models.DecisionEvent{ID: "x"}))
	_, err := c.ConsumeDecisions(func(models.DecisionEvent) error { return nil })
	assert.Error(t, err)
	assert.NoError(t, c.Close())
}
