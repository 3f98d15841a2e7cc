// internal/workers/movie/send-notification/handler_test.go
package sendnotification

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listingreel-workers/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		EmailEnabled: true,
		SMSEnabled:   true,
		FromEmail:    "noreply@listingreel.example",
		AWSRegion:    "us-east-1",
		Timeout:      3 * time.Second,
	}
}

type mockSES struct {
	sent []string
	err  error
}

func (m *mockSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, params.Destination.ToAddresses...)
	return &ses.SendEmailOutput{}, nil
}

type mockSNS struct {
	published []string
	err       error
}

func (m *mockSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.published = append(m.published, *params.PhoneNumber)
	return &sns.PublishOutput{}, nil
}

func newTestHandler(cfg *Config, sesClient *mockSES, snsClient *mockSNS) *Handler {
	return NewHandlerWithClients(cfg, sesClient, snsClient, logger.NewNoOpLogger())
}

// ==========================
// Tests
// ==========================

func TestExecute_SendsMovieReadyEmail(t *testing.T) {
	sesClient := &mockSES{}
	h := newTestHandler(createTestConfig(), sesClient, &mockSNS{})

	output, err := h.Execute(context.Background(), &Input{
		UserID:           "user-1",
		ProjectID:        "proj-1",
		NotificationType: TypeMovieReady,
		Emails:           []string{"agent@example.com"},
		VideoURI:         "gs://out/movie.mp4",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusSent, output.Status)
	assert.NotEmpty(t, output.NotificationID)
	assert.Equal(t, []string{"agent@example.com"}, sesClient.sent)
}

func TestExecute_SendsSMS(t *testing.T) {
	snsClient := &mockSNS{}
	h := newTestHandler(createTestConfig(), &mockSES{}, snsClient)

	output, err := h.Execute(context.Background(), &Input{
		UserID:           "user-1",
		ProjectID:        "proj-1",
		NotificationType: TypeMovieFailed,
		Phone:            "+15550001111",
		Reason:           "render timed out",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusSent, output.Status)
	assert.Equal(t, []string{"+15550001111"}, snsClient.published)
}

func TestExecute_EmailFailureReportsFailedStatus(t *testing.T) {
	sesClient := &mockSES{err: fmt.Errorf("ses throttled")}
	h := newTestHandler(createTestConfig(), sesClient, &mockSNS{})

	output, err := h.Execute(context.Background(), &Input{
		UserID:           "user-1",
		ProjectID:        "proj-1",
		NotificationType: TypeMovieReady,
		Emails:           []string{"agent@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, output.Status)
}

func TestExecute_SkipsInvalidEmail(t *testing.T) {
	sesClient := &mockSES{}
	h := newTestHandler(createTestConfig(), sesClient, &mockSNS{})

	output, err := h.Execute(context.Background(), &Input{
		UserID:           "user-1",
		ProjectID:        "proj-1",
		NotificationType: TypeMovieReady,
		Emails:           []string{"not-an-email", "agent@example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusSent, output.Status)
	assert.Equal(t, []string{"agent@example.com"}, sesClient.sent)
}

func TestExecute_DisabledWhenNothingSent(t *testing.T) {
	cfg := createTestConfig()
	cfg.EmailEnabled = false
	cfg.SMSEnabled = false
	h := newTestHandler(cfg, &mockSES{}, &mockSNS{})

	output, err := h.Execute(context.Background(), &Input{
		UserID:           "user-1",
		ProjectID:        "proj-1",
		NotificationType: TypeMovieReady,
		Emails:           []string{"agent@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, output.Status)
}

func TestExecute_UnknownTemplate(t *testing.T) {
	h := newTestHandler(createTestConfig(), &mockSES{}, &mockSNS{})

	_, err := h.Execute(context.Background(), &Input{
		UserID:           "user-1",
		ProjectID:        "proj-1",
		NotificationType: "carrier_pigeon",
	})
	assert.ErrorContains(t, err, "template not found")
}

func TestExecute_NilInput(t *testing.T) {
	h := newTestHandler(createTestConfig(), &mockSES{}, &mockSNS{})

	_, err := h.Execute(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilInput)
}
