package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// SMSService delivers consumption codes through an SMS gateway. Delivery is
// best effort: the code remains valid even when the gateway call fails, and
// dev environments simply run without a token.
type SMSService struct {
	gatewayURL string
	token      string
	sender     string
}

// NewSMSService creates a new SMSService.
func NewSMSService(gatewayURL, token, sender string) *SMSService {
	return &SMSService{
		gatewayURL: gatewayURL,
		token:      token,
		sender:     sender,
	}
}

type smsMessage struct {
	MobilePhone string `json:"mobile_phone"`
	Message     string `json:"message"`
	From        string `json:"from"`
}

// Send posts a single message to the gateway.
func (s *SMSService) Send(phone, text string) error {
	if s.token == "" {
		log.Printf("[SMS] gateway token not configured, message for %s dropped", phone)
		return nil
	}

	msg := smsMessage{
		MobilePhone: phone,
		Message:     text,
		From:        s.sender,
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("[SMS] failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[SMS] unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}

	return nil
}

// SendConsumptionCode delivers an OTP to the customer. Failures are logged
// and swallowed so issuance never depends on the gateway.
func (s *SMSService) SendConsumptionCode(phone, code string, expiresAt time.Time) {
	text := fmt.Sprintf("Oblako: your consumption code is %s. Valid until %s.",
		code, expiresAt.Format("15:04"))
	if err := s.Send(phone, text); err != nil {
		log.Printf("[SMS] consumption code delivery to %s failed: %v", phone, err)
	}
}

// SendVerificationCode delivers a signup verification code.
func (s *SMSService) SendVerificationCode(phone, code string) {
	text := fmt.Sprintf("Oblako: your verification code is %s.", code)
	if err := s.Send(phone, text); err != nil {
		log.Printf("[SMS] verification code delivery to %s failed: %v", phone, err)
	}
}
