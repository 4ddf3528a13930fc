package email

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type MockDialer struct{ mock.Mock }

func (m *MockDialer) DialAndSend(msgs ...*gomail.Message) error {
	args := m.Called(msgs)
	return args.Error(0)
}

func TestMailerSend(t *testing.T) {
	d := new(MockDialer)
	var sent *gomail.Message
	d.On("DialAndSend", mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(0).([]*gomail.Message)[0]
	}).Return(nil)

	m := NewMailerWithDialer(d, "noreply@adwall.test", logger.NewNop())
	err := m.Send(context.Background(), []string{"owner@example.com"}, "Reset code", "<p>123456</p>")
	require.NoError(t, err)

	require.NotNil(t, sent)
	assert.Equal(t, []string{"noreply@adwall.test"}, sent.GetHeader("From"))
	assert.Equal(t, []string{"owner@example.com"}, sent.GetHeader("To"))
	assert.Equal(t, []string{"Reset code"}, sent.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = sent.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "123456")
}

func TestMailerSend_DialError(t *testing.T) {
	d := new(MockDialer)
	d.On("DialAndSend", mock.Anything).Return(errors.New("connection refused"))

	m := NewMailerWithDialer(d, "noreply@adwall.test", logger.NewNop())
	err := m.Send(context.Background(), []string{"a@example.com"}, "Hi", "body")
	assert.ErrorContains(t, err, "connection refused")
}

func TestMailerSend_NoRecipients(t *testing.T) {
	d := new(MockDialer)
	m := NewMailerWithDialer(d, "noreply@adwall.test", logger.NewNop())

	assert.NoError(t, m.Send(context.Background(), nil, "Hi", "body"))
	d.AssertNotCalled(t, "DialAndSend", mock.Anything)
}
