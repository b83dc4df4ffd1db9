package services

import (
	"errors"

	"go.uber.org/zap"
)

// ErrInvalidOTP is returned when bank linking is attempted with a wrong code.
var ErrInvalidOTP = errors.New("invalid OTP")

// BankService simulates linking a bank card to an account. Card details are
// not checked or stored; only the one-time password decides the outcome.
type BankService struct {
	otp    string
	logger *zap.Logger
}

// NewBankService creates a BankService accepting the given one-time password.
func NewBankService(otp string, logger *zap.Logger) *BankService {
	return &BankService{otp: otp, logger: logger}
}

// DemoOTP returns the one-time password this mock bank accepts, shown as a
// hint when prompting.
func (s *BankService) DemoOTP() string {
	return s.otp
}

// LinkAccount links a card for userID when otp matches.
func (s *BankService) LinkAccount(userID int, cardNumber, cvv, otp string) error {
	if otp != s.otp {
		s.logger.Info("bank linking rejected", zap.Int("user_id", userID))
		return ErrInvalidOTP
	}
	s.logger.Info("bank account linked", zap.Int("user_id", userID))
	return nil
}
