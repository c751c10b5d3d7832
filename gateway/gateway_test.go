package gateway

import (
	"context"
	"testing"
	"time"

	"confessions/gateway/gatewaytest"
	"confessions/model"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingGateway struct {
	*gatewaytest.Fake
}

func (blockingGateway) Publish(ctx context.Context, _ model.Content) error {
	<-ctx.Done()
	return ctx.Err()
}

// slowGateway finishes the publish after the deadline without looking at ctx.
type slowGateway struct {
	*gatewaytest.Fake
	delay time.Duration
}

func (g slowGateway) Publish(ctx context.Context, c model.Content) error {
	time.Sleep(g.delay)
	return g.Fake.Publish(ctx, c)
}

func TestWithTimeout_LateSuccessIsSuccess(t *testing.T) {
	t.Parallel()
	fake := gatewaytest.New()
	g := WithTimeout(slowGateway{Fake: fake, delay: 60 * time.Millisecond}, 20*time.Millisecond)

	require.NoError(t, g.Publish(context.Background(), model.Text{Body: "hola"}))
	assert.Equal(t, 1, fake.PublishedCount())
}

func TestWithTimeout_PassesThrough(t *testing.T) {
	t.Parallel()
	fake := gatewaytest.New()
	g := WithTimeout(fake, time.Second)

	require.NoError(t, g.Publish(context.Background(), model.Text{Body: "hola"}))
	require.NoError(t, g.Notify(context.Background(), 1, "aviso"))
	ref, err := g.PresentQuestion(context.Background(), model.Question{ID: "q1"})
	require.NoError(t, err)
	assert.Equal(t, "inbox-q1", ref)

	assert.Equal(t, 1, fake.PublishedCount())
	assert.Equal(t, []string{"aviso"}, fake.NoticesFor(1))
}

func TestWithTimeout_WrapsFailures(t *testing.T) {
	t.Parallel()
	fake := gatewaytest.New()
	fake.FailNotify(1)
	g := WithTimeout(fake, time.Second)

	err := g.Notify(context.Background(), 1, "aviso")
	require.Error(t, err)
	assert.True(t, IsDelivery(err))
	assert.ErrorIs(t, err, gatewaytest.ErrInjected)

	var de *DeliveryError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "notify", de.Op)
}

func TestWithTimeout_TimeoutIsDeliveryFailure(t *testing.T) {
	t.Parallel()
	g := WithTimeout(blockingGateway{gatewaytest.New()}, 20*time.Millisecond)

	start := time.Now()
	err := g.Publish(context.Background(), model.Text{Body: "hola"})
	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, IsDelivery(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIsDelivery(t *testing.T) {
	t.Parallel()
	assert.False(t, IsDelivery(nil))
	assert.False(t, IsDelivery(errors.New("other")))
	assert.True(t, IsDelivery(errors.Wrap(&DeliveryError{Op: "x", Err: errors.New("y")}, "ctx")))
}
