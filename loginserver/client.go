// Package loginserver is a synchronous HTTP/JSON client for the remote
// login server: account creation, sign-in, recovery, password change, PIN
// and OTP endpoints, and the v2 login/password/recovery surface. It's
// modeled on esplora.Client's doGet/doRequest split — a small retrying
// transport helper with one typed method per endpoint on top.
package loginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the login server's base URL, e.g.
	// "https://login.example.com/api/v1".
	BaseURL string

	// RequestTimeout bounds a single HTTP round trip.
	RequestTimeout time.Duration

	// MaxRetries is how many additional attempts a request gets after a
	// transport-level failure. It does not apply to requests that
	// received a response the server considers final (any parsed
	// status, success or failure).
	MaxRetries int
}

// DefaultConfig returns reasonable defaults for a production login server
// client.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:        baseURL,
		RequestTimeout: 15 * time.Second,
		MaxRetries:     2,
	}
}

// Client is a stateless HTTP client over a fixed login server base URL.
type Client struct {
	cfg  Config
	http *http.Client
}

// New returns a Client for the given configuration.
func New(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

func jsonMarshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// doJSON sends a request with the given method to path, with reqBody (if
// non-nil) encoded as the JSON body, decodes the structured
// serverResponse, and maps a non-OK status to the error taxonomy in
// spec.md §7. On success it unmarshals Results into out (which may be nil
// for endpoints with no payload).
func (c *Client) doJSON(ctx context.Context, method, path string,
	reqBody interface{}, out interface{}) error {

	var data []byte
	if reqBody != nil {
		var err error
		data, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("%w: encoding request: %v", ErrJSON, err)
		}
	}

	url := c.cfg.BaseURL + path

	var lastErr error
	attempts := c.cfg.MaxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrServer, ctx.Err())
		default:
		}

		var body io.Reader
		if data != nil {
			body = bytes.NewReader(data)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrURL, err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			log.Debugf("Request to %s failed (attempt %d/%d): %v",
				path, attempt+1, attempts, err)
			if attempt < attempts-1 {
				time.Sleep(time.Duration(attempt+1) * 100 * time.Millisecond)
			}
			continue
		}

		respErr := c.handleResponse(resp, out)
		resp.Body.Close()
		return respErr
	}

	return fmt.Errorf("%w: request failed after %d attempts: %w",
		ErrServer, attempts, lastErr)
}

func (c *Client) handleResponse(resp *http.Response, out interface{}) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrServer, err)
	}

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: server returned %d", ErrServer, resp.StatusCode)
	}
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusOK {
		// The server should still describe 4xx failures using the
		// structured status payload below; if it didn't, surface the
		// raw status code.
		var sr serverResponse
		if jsonErr := json.Unmarshal(data, &sr); jsonErr != nil {
			return fmt.Errorf("%w: server returned %d", ErrServer,
				resp.StatusCode)
		}
		return statusToError(sr)
	}

	var sr serverResponse
	if err := json.Unmarshal(data, &sr); err != nil {
		return fmt.Errorf("%w: %v", ErrJSON, err)
	}

	if sr.Status != statusOK {
		return statusToError(sr)
	}

	if out != nil && len(sr.Results) > 0 {
		if err := json.Unmarshal(sr.Results, out); err != nil {
			return fmt.Errorf("%w: decoding results: %v", ErrJSON, err)
		}
	}
	return nil
}

func statusToError(sr serverResponse) error {
	switch sr.Status {
	case statusAccountAlreadyExists:
		return ErrAccountAlreadyExists
	case statusAccountDoesNotExist:
		return ErrAccountDoesNotExist
	case statusBadPassword:
		return &AuthError{Err: ErrBadPassword}
	case statusNoRecoveryQuestions:
		return ErrNoRecoveryQuestions
	case statusInvalidOTP:
		return &AuthError{
			Err:      ErrInvalidOTP,
			OTPDate:  sr.OTPResetDate,
			OTPToken: sr.OTPResetToken,
		}
	case statusInvalidPinWait:
		return &AuthError{Err: ErrInvalidPinWait, PinWait: sr.PinWait}
	default:
		msg := sr.Message
		if msg == "" {
			msg = fmt.Sprintf("unrecognized status %d", sr.Status)
		}
		return fmt.Errorf("%w: %s", ErrServer, msg)
	}
}
