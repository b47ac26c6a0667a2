package services

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"temple-system/config"
	"temple-system/models"
	"temple-system/monitoring"
	"temple-system/utils"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

var nonDigits = regexp.MustCompile(`\D`)

// NotificationService sends SMS through Twilio. When credentials are not
// configured it runs in disabled mode and only logs the messages, so local
// development never needs a Twilio account.
type NotificationService struct {
	client  *twilio.RestClient
	from    string
	enabled bool
	breaker *utils.CircuitBreaker
}

func NewNotificationService(cfg *config.Config) *NotificationService {
	svc := &NotificationService{
		from:    cfg.TwilioPhoneNumber,
		breaker: utils.NewCircuitBreaker("twilio-sms"),
	}

	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioPhoneNumber == "" {
		slog.Warn("twilio credentials not configured, SMS disabled")
		return svc
	}

	svc.client = twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	svc.enabled = true
	return svc
}

// FormatPhoneE164 normalizes a raw phone number to E.164. Bare 10-digit
// numbers default to +91, 11 digits with a leading 1 to +1.
func FormatPhoneE164(phone string) string {
	if strings.HasPrefix(strings.TrimSpace(phone), "+") {
		return "+" + nonDigits.ReplaceAllString(phone, "")
	}

	digits := nonDigits.ReplaceAllString(phone, "")
	switch {
	case len(digits) == 10:
		return "+91" + digits
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return "+" + digits
	default:
		return "+" + digits
	}
}

// SendSMS delivers one message. Failures count against the circuit breaker
// so a dead provider stops being retried per request.
func (n *NotificationService) SendSMS(to, body string) error {
	if !n.enabled {
		slog.Info("[SMS DISABLED]", "to", to, "body", body)
		return nil
	}

	to = FormatPhoneE164(to)
	err := n.breaker.Execute(func() error {
		params := &twilioapi.CreateMessageParams{}
		params.SetTo(to)
		params.SetFrom(n.from)
		params.SetBody(body)

		_, err := n.client.Api.CreateMessage(params)
		return err
	})
	if err != nil {
		monitoring.TrackSMSDelivery("error")
		return fmt.Errorf("send sms: %w", err)
	}

	monitoring.TrackSMSDelivery("success")
	return nil
}

// SendTokenConfirmation confirms a fresh booking. When the booking was
// auto-queued the message also carries the live position and wait.
func (n *NotificationService) SendTokenConfirmation(phone string, booking *models.Booking) error {
	body := fmt.Sprintf("Your temple visit is confirmed. Token: %s, Date: %s, Slot: %s.",
		booking.TokenNumber, booking.VisitDate.Format("02 Jan 2006"), booking.TimeSlot)

	if booking.QueueStatus == models.QueueLinkInQueue && booking.QueuePosition != nil {
		wait := 0
		if booking.EstimatedWait != nil {
			wait = *booking.EstimatedWait
		}
		body += fmt.Sprintf(" You are in the queue at position %d (approx. %d min wait).",
			*booking.QueuePosition, wait)
	}

	return n.SendSMS(phone, body)
}

// SendQueueUpdateNotification tells a visitor their turn is near.
func (n *NotificationService) SendQueueUpdateNotification(phone, templeName string, position, waitMinutes int) error {
	body := fmt.Sprintf("Queue update for %s: you are now at position %d, approx. %d min wait.",
		templeName, position, waitMinutes)
	return n.SendSMS(phone, body)
}

// SendEmergencyAlert notifies responders about a new emergency request.
func (n *NotificationService) SendEmergencyAlert(phone string, req *models.EmergencyRequest) error {
	body := fmt.Sprintf("EMERGENCY [%s/%s] at %s: %s",
		strings.ToUpper(string(req.Type)), req.Priority, req.Location, req.Description)
	return n.SendSMS(phone, body)
}
