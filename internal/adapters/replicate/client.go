package replicate

import (
	"context"
	"fmt"
	"net/http"

	sdk "github.com/replicate/replicate-go"
)

const defaultUserAgent = "retina-gateway"

// Client runs predictions through the Replicate HTTP API.
type Client struct {
	api        *sdk.Client
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// New builds a Runner authenticated with token. When the SDK cannot be built,
// for instance because token is empty, the returned Runner fails every call
// with the construction error.
func New(token string, opts ...Option) Runner {
	c, err := NewClient(token, opts...)
	if err != nil {
		return Unavailable(err)
	}
	return c
}

// NewClient builds a Client or reports why it cannot.
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	c := &Client{userAgent: defaultUserAgent}
	for _, opt := range opts {
		opt(c)
	}

	sdkOpts := []sdk.ClientOption{
		sdk.WithToken(token),
		sdk.WithUserAgent(c.userAgent),
	}
	if c.baseURL != "" {
		sdkOpts = append(sdkOpts, sdk.WithBaseURL(c.baseURL))
	}
	if c.httpClient != nil {
		sdkOpts = append(sdkOpts, sdk.WithHTTPClient(c.httpClient))
	}

	api, err := sdk.NewClient(sdkOpts...)
	if err != nil {
		return nil, fmt.Errorf("create replicate client: %w", err)
	}
	c.api = api
	return c, nil
}

// Run creates a prediction for ref and waits for it to reach a terminal state.
func (c *Client) Run(ctx context.Context, ref string, input map[string]any) (any, error) {
	m, err := ParseModelRef(ref)
	if err != nil {
		return nil, err
	}

	var p *sdk.Prediction
	if m.Version != "" {
		p, err = c.api.CreatePrediction(ctx, m.Version, sdk.PredictionInput(input), nil, false)
	} else {
		p, err = c.api.CreatePredictionWithModel(ctx, m.Owner, m.Name, sdk.PredictionInput(input), nil, false)
	}
	if err != nil {
		return nil, fmt.Errorf("create prediction for %s: %w", m, err)
	}

	if err := c.api.Wait(ctx, p); err != nil {
		return nil, fmt.Errorf("wait for prediction %s: %w", p.ID, err)
	}

	switch p.Status {
	case sdk.Succeeded:
		return p.Output, nil
	case sdk.Failed, sdk.Canceled:
		if p.Error != nil {
			return nil, fmt.Errorf("%w: %s %s: %v", ErrPredictionFail, p.ID, p.Status, p.Error)
		}
		return nil, fmt.Errorf("%w: %s %s", ErrPredictionFail, p.ID, p.Status)
	default:
		return p.Output, nil
	}
}
