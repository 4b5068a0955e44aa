// Package gateway is a client for the Edviron payment API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Akshaygupta0409/school-payments-microservice/internal/models"
	"github.com/golang-jwt/jwt/v4"
)

// Client represents HTTP client for gateway collect requests
type Client struct {
	client   *http.Client
	baseURL  string
	signKey  []byte
	apiKey   string
	schoolID string
}

// NewClient creates new Client instance
func NewClient(baseURL, signKey, apiKey, schoolID string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL:  baseURL,
		signKey:  []byte(signKey),
		apiKey:   apiKey,
		schoolID: schoolID,
	}
}

// CollectRequest is result of creating a collect request
type CollectRequest struct {
	RedirectURL string
	RequestID   string
}

// CollectStatus is the raw settlement payload reported by the gateway
type CollectStatus struct {
	CollectRequestID  string   `json:"collect_request_id"`
	Status            string   `json:"status"`
	OrderAmount       *float64 `json:"order_amount"`
	TransactionAmount *float64 `json:"transaction_amount"`
	PaymentMode       string   `json:"payment_mode"`
	BankReference     string   `json:"bank_reference"`
	PaymentMessage    string   `json:"payment_message"`
	PaymentTime       string   `json:"payment_time"`
	ErrorMessage      string   `json:"error_message"`
}

// sign builds HS256 token whose claims are exactly the payload fields
func (c *Client) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.signKey)
}

type createCollectResponse struct {
	CollectRequestID     string `json:"collect_request_id"`
	CollectRequestURL    string `json:"collect_request_url"`
	CollectRequestURLAlt string `json:"Collect_request_url"`
	PaymentURL           string `json:"payment_url"`
}

// redirectURL picks the redirect URL out of a create response. The gateway
// has been observed answering with any of three field spellings.
func (r createCollectResponse) redirectURL() string {
	switch {
	case r.CollectRequestURL != "":
		return r.CollectRequestURL
	case r.CollectRequestURLAlt != "":
		return r.CollectRequestURLAlt
	default:
		return r.PaymentURL
	}
}

// CreateCollectRequest creates a collect request at the gateway and returns
// the redirect URL with the gateway-assigned request id. Network errors,
// non-2xx responses and responses without a redirect URL all wrap
// models.ErrPaymentInitFailed; the underlying detail stays in the chain for
// logging only.
func (c *Client) CreateCollectRequest(ctx context.Context, amount float64, callbackURL string) (*CollectRequest, error) {
	amountStr := strconv.FormatFloat(amount, 'f', -1, 64)

	sign, err := c.sign(jwt.MapClaims{
		"school_id":    c.schoolID,
		"amount":       amountStr,
		"callback_url": callbackURL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: signing payload: %v", models.ErrPaymentInitFailed, err)
	}

	reqBody, err := json.Marshal(map[string]string{
		"school_id":    c.schoolID,
		"amount":       amountStr,
		"callback_url": callbackURL,
		"sign":         sign,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %v", models.ErrPaymentInitFailed, err)
	}

	endpoint, err := url.JoinPath(c.baseURL, "create-collect-request")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrPaymentInitFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrPaymentInitFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrPaymentInitFailed, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: gateway returned status %d", models.ErrPaymentInitFailed, resp.StatusCode)
	}

	createResp := createCollectResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&createResp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", models.ErrPaymentInitFailed, err)
	}

	redirect := createResp.redirectURL()
	if redirect == "" {
		return nil, fmt.Errorf("%w: payment URL not found in response", models.ErrPaymentInitFailed)
	}

	return &CollectRequest{
		RedirectURL: redirect,
		RequestID:   createResp.CollectRequestID,
	}, nil
}

// CollectRequestStatus fetches the current settlement status of a collect
// request via a signed GET.
func (c *Client) CollectRequestStatus(ctx context.Context, collectID string) (*CollectStatus, error) {
	sign, err := c.sign(jwt.MapClaims{
		"school_id":          c.schoolID,
		"collect_request_id": collectID,
	})
	if err != nil {
		return nil, err
	}

	endpoint, err := url.JoinPath(c.baseURL, "collect-request", collectID)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("school_id", c.schoolID)
	query.Set("sign", sign)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		cs := CollectStatus{}
		if err := json.NewDecoder(resp.Body).Decode(&cs); err != nil {
			return nil, err
		}
		return &cs, nil
	case http.StatusNotFound:
		return nil, models.ErrDataNotFound
	default:
		return nil, fmt.Errorf("gateway status lookup failed: status %d", resp.StatusCode)
	}
}

// VerifyWebhookSign verifies the signature accompanying a webhook push
// against the shared signing key.
func (c *Client) VerifyWebhookSign(sign string) error {
	token, err := jwt.Parse(sign, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.signKey, nil
	})
	if err != nil || !token.Valid {
		return models.ErrInvalidSignature
	}
	return nil
}
