package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
)

func TestEffectsPublish_SwallowsErrorsAndNotifiesObservers(t *testing.T) {
	ctx := context.Background()
	pub := &MockPublisher{}
	pub.On("Publish", ctx, "adwall.company.created", "payload").Return(errors.New("nats down"))

	var seen []string
	effects := NewEffects(pub, logger.NewNop(), func(subject string) { seen = append(seen, subject) })

	assert.NotPanics(t, func() { effects.Publish(ctx, "adwall.company.created", "payload") })
	assert.Equal(t, []string{"adwall.company.created"}, seen)
	pub.AssertExpectations(t)
}

func TestEffectsPublish_WithoutBus(t *testing.T) {
	assert.NotPanics(t, func() { noEffects().Publish(context.Background(), "x", nil) })
}
