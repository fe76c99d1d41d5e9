package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/RubachokBoss/mx-portal/internal/models"
	"github.com/RubachokBoss/mx-portal/internal/service/integration"
)

// ContactService relays contact-form submissions as SMS, at most a few per
// source IP per rolling hour.
type ContactService interface {
	SendContactMessage(ctx context.Context, sourceIP string, req *models.ContactRequest) error
}

type contactService struct {
	sms       integration.SMSClient
	toNumber  string
	rateLimit int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	logger zerolog.Logger
}

func NewContactService(sms integration.SMSClient, toNumber string, rateLimit int, logger zerolog.Logger) ContactService {
	if rateLimit < 1 {
		rateLimit = 3
	}
	return &contactService{
		sms:       sms,
		toNumber:  toNumber,
		rateLimit: rateLimit,
		limiters:  make(map[string]*rate.Limiter),
		logger:    logger,
	}
}

func (s *contactService) SendContactMessage(ctx context.Context, sourceIP string, req *models.ContactRequest) error {
	if s.sms == nil {
		return ErrSMSDisabled
	}

	if !s.allow(sourceIP) {
		s.logger.Warn().Str("ip", sourceIP).Msg("Contact message rate limited")
		return ErrRateLimited
	}

	body := fmt.Sprintf("Portal contact from %s: %s", req.Name, req.Message)
	if req.Phone != "" {
		body = fmt.Sprintf("%s (call back: %s)", body, req.Phone)
	}

	if err := s.sms.SendSMS(ctx, s.toNumber, body); err != nil {
		return fmt.Errorf("failed to send contact sms: %w", err)
	}

	s.logger.Info().Str("ip", sourceIP).Str("name", req.Name).Msg("Contact message relayed")

	return nil
}

// allow enforces rateLimit sends per IP per rolling hour: burst of
// rateLimit tokens refilled evenly over the hour.
func (s *contactService) allow(sourceIP string) bool {
	s.mu.Lock()
	limiter, ok := s.limiters[sourceIP]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Hour/time.Duration(s.rateLimit)), s.rateLimit)
		s.limiters[sourceIP] = limiter
	}
	s.mu.Unlock()

	return limiter.Allow()
}
