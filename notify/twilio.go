package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hupe1980/folio/core"
)

// DefaultTwilioBaseURL is the Twilio REST API root.
const DefaultTwilioBaseURL = "https://api.twilio.com"

// TwilioOptions configure a TwilioSMS sender.
type TwilioOptions struct {
	BaseURL    string
	HTTPClient *http.Client
}

// TwilioSMS sends text messages through the Twilio Messages API.
type TwilioSMS struct {
	accountSID string
	authToken  string
	from       string
	opts       TwilioOptions
}

var _ core.SMSSender = (*TwilioSMS)(nil)

// NewTwilioSMS creates a sender for the given account and sender number.
func NewTwilioSMS(accountSID, authToken, from string, optFns ...func(o *TwilioOptions)) *TwilioSMS {
	opts := TwilioOptions{
		BaseURL:    DefaultTwilioBaseURL,
		HTTPClient: http.DefaultClient,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &TwilioSMS{accountSID: accountSID, authToken: authToken, from: from, opts: opts}
}

// SendSMS implements core.SMSSender.
func (t *TwilioSMS) SendSMS(ctx context.Context, to, message string) error {
	if to == "" {
		return fmt.Errorf("recipient cannot be empty")
	}
	if message == "" {
		return fmt.Errorf("message cannot be empty")
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", t.from)
	form.Set("Body", message)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.opts.BaseURL, url.PathEscape(t.accountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build twilio request: %w", err)
	}
	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := t.opts.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("twilio returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
