package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"assetfolio/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ErrPriceUnavailable means the provider answered but had no entry for the
// requested symbol.
var ErrPriceUnavailable = errors.New("price unavailable")

const (
	DefaultCryptoURL = "https://api.coingecko.com/api/v3"
	DefaultForexURL  = "https://api.exchangerate-api.com"
)

// Source hands out a current unit price in USD for a priced asset type.
type Source interface {
	UnitPrice(ctx context.Context, typ models.AssetType, symbol string) (decimal.Decimal, error)
}

// Client talks to the two HTTP providers: a CoinGecko-style crypto quote
// endpoint and an exchangerate-api style USD rate table. Base URLs are
// injected so tests can point it at a fake.
type Client struct {
	httpClient *http.Client
	cryptoURL  string
	forexURL   string
	log        *logrus.Logger
}

func NewClient(cryptoURL, forexURL string, log *logrus.Logger) *Client {
	if cryptoURL == "" {
		cryptoURL = DefaultCryptoURL
	}
	if forexURL == "" {
		forexURL = DefaultForexURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cryptoURL:  strings.TrimRight(cryptoURL, "/"),
		forexURL:   strings.TrimRight(forexURL, "/"),
		log:        log,
	}
}

func (c *Client) UnitPrice(ctx context.Context, typ models.AssetType, symbol string) (decimal.Decimal, error) {
	switch typ {
	case models.TypeCrypto:
		return c.cryptoPrice(ctx, symbol)
	case models.TypeCurrency:
		return c.forexRate(ctx, symbol)
	default:
		return decimal.Zero, fmt.Errorf("%w: %s", models.ErrUnsupportedType, typ)
	}
}

// cryptoPrice queries the quote service by the provider's lower-cased
// identifier, e.g. "bitcoin".
func (c *Client) cryptoPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	id := strings.ToLower(strings.TrimSpace(symbol))
	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.cryptoURL, url.QueryEscape(id))

	var payload map[string]struct {
		USD decimal.Decimal `json:"usd"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return decimal.Zero, err
	}
	quote, ok := payload[id]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: crypto %q", ErrPriceUnavailable, id)
	}
	return quote.USD, nil
}

// forexRate pulls the full USD-base rate table and looks up the upper-cased
// currency code.
func (c *Client) forexRate(ctx context.Context, symbol string) (decimal.Decimal, error) {
	code := strings.ToUpper(strings.TrimSpace(symbol))
	endpoint := c.forexURL + "/v4/latest/USD"

	var payload struct {
		Rates map[string]decimal.Decimal `json:"rates"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return decimal.Zero, err
	}
	rate, ok := payload.Rates[code]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: currency %q", ErrPriceUnavailable, code)
	}
	return rate, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	c.log.Debugf("fetching %s", endpoint)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("price provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("price provider returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}
