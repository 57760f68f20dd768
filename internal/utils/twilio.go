package utils

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
)

// TwilioClient sends SMS through the Twilio REST API. With DryRun set (or no
// credentials) it logs instead of calling out, which is what tests and local
// development use.
type TwilioClient struct {
	AccountSID string
	AuthToken  string
	From       string
	DryRun     bool

	HTTPClient *http.Client
}

func NewTwilioClient(accountSID, authToken, from string, dryRun bool) *TwilioClient {
	return &TwilioClient{
		AccountSID: accountSID,
		AuthToken:  authToken,
		From:       from,
		DryRun:     dryRun,
		HTTPClient: http.DefaultClient,
	}
}

// SendSMS delivers body to the given phone number.
func (c *TwilioClient) SendSMS(to, body string) error {
	if c.DryRun || c.AccountSID == "" || c.AuthToken == "" {
		log.Printf("sms: [dry-run] to=%s body=%q", to, body)
		return nil
	}

	apiURL := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", c.AccountSID)

	form := url.Values{
		"To":   {to},
		"From": {c.From},
		"Body": {body},
	}

	req, err := http.NewRequest(http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build SMS request: %w", err)
	}
	req.SetBasicAuth(c.AccountSID, c.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("send SMS request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("twilio returned %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}
