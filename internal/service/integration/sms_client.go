package integration

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SMSClient sends outbound text messages through a Twilio-compatible REST
// API.
type SMSClient interface {
	SendSMS(ctx context.Context, to, body string) error
}

type smsClient struct {
	baseURL    string
	accountSID string
	authToken  string
	fromNumber string
	timeout    time.Duration
	retryCount int
	retryDelay time.Duration
	client     *http.Client
	logger     zerolog.Logger
}

func NewSMSClient(baseURL, accountSID, authToken, fromNumber string, timeout time.Duration, retryCount int, retryDelay time.Duration, logger zerolog.Logger) SMSClient {
	return &smsClient{
		baseURL:    baseURL,
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		timeout:    timeout,
		retryCount: retryCount,
		retryDelay: retryDelay,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *smsClient) SendSMS(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("From", c.fromNumber)
	form.Set("To", to)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)

	// Выполняем запрос с повторными попытками
	var lastErr error
	for i := 0; i <= c.retryCount; i++ {
		if i > 0 {
			c.logger.Warn().Int("attempt", i).Msg("Retrying SMS send")
			time.Sleep(c.retryDelay * time.Duration(i))
		}

		req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.SetBasicAuth(c.accountSID, c.authToken)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			resp.Body.Close()
			c.logger.Info().Str("to", to).Msg("SMS sent")
			return nil
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("sms provider returned status %d: %s", resp.StatusCode, string(respBody))

		// Клиентские ошибки ретраить бессмысленно.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			break
		}
	}

	return fmt.Errorf("failed to send sms after %d attempts: %w", c.retryCount+1, lastErr)
}
