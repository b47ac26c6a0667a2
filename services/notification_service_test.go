package services

import (
	"testing"

	"temple-system/config"
	"temple-system/models"

	"github.com/stretchr/testify/assert"
)

func TestFormatPhoneE164(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare 10 digits defaults to +91", "9876543210", "+919876543210"},
		{"formatted 10 digits", "98765-43210", "+919876543210"},
		{"11 digits with leading 1", "14155552671", "+14155552671"},
		{"already E.164", "+919876543210", "+919876543210"},
		{"E.164 with spaces", "+91 98765 43210", "+919876543210"},
		{"odd length passes through", "123456", "+123456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPhoneE164(tt.input))
		})
	}
}

func TestNotificationService_DisabledMode(t *testing.T) {
	// no Twilio credentials configured
	service := NewNotificationService(&config.Config{})
	assert.False(t, service.enabled)

	// disabled mode only logs; it never errors and never trips the breaker
	assert.NoError(t, service.SendSMS("9876543210", "hello"))

	position := 3
	wait := 15
	booking := &models.Booking{
		TokenNumber:   "TKN20260830AB12",
		TimeSlot:      "14:00-15:00",
		QueueStatus:   models.QueueLinkInQueue,
		QueuePosition: &position,
		EstimatedWait: &wait,
	}
	assert.NoError(t, service.SendTokenConfirmation("9876543210", booking))
	assert.NoError(t, service.SendQueueUpdateNotification("9876543210", "Shri Ganesh Mandir", 2, 10))
}
