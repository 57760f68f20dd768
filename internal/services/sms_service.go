package services

import (
	"fmt"

	"mingle/internal/utils"
)

type SMSService interface {
	SendOTPSMS(mobile, otp string) error
}

type smsService struct {
	client *utils.TwilioClient
}

func NewSMSService(client *utils.TwilioClient) SMSService {
	return &smsService{client: client}
}

func (s *smsService) SendOTPSMS(mobile, otp string) error {
	body := fmt.Sprintf("Your Mingle verification code is: %s. This code will expire in 10 minutes.", otp)
	if err := s.client.SendSMS(mobile, body); err != nil {
		return fmt.Errorf("failed to send OTP SMS: %w", err)
	}
	return nil
}
