package cep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/vitalmed/loan-ledger/pkg/utils"
)

// Errors returned by the lookup client.
var (
	ErrInvalidCEP  = errors.New("invalid CEP")
	ErrCEPNotFound = errors.New("CEP not found")
)

// Address is the resolved postal address for a CEP.
type Address struct {
	CEP          string `json:"cep"`
	Street       string `json:"logradouro"`
	Complement   string `json:"complemento,omitempty"`
	Neighborhood string `json:"bairro"`
	City         string `json:"localidade"`
	State        string `json:"uf"`
	NotFound     bool   `json:"erro,omitempty"`
}

// Client resolves Brazilian postal codes against the ViaCEP API, with a
// Redis-backed cache in front of it.
type Client struct {
	baseURL  string
	http     *http.Client
	redis    *redis.Client
	cacheTTL time.Duration
}

func NewClient(baseURL string, timeout time.Duration, redisClient *redis.Client, cacheTTL time.Duration) *Client {
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: timeout},
		redis:    redisClient,
		cacheTTL: cacheTTL,
	}
}

// Lookup resolves a CEP to an address. Accepts the code with or without
// the dash.
func (c *Client) Lookup(ctx context.Context, cep string) (*Address, error) {
	digits := utils.OnlyDigits(cep)
	if !utils.ValidCEP(digits) {
		return nil, ErrInvalidCEP
	}

	if cached := c.cached(ctx, digits); cached != nil {
		return cached, nil
	}

	url := fmt.Sprintf("%s/%s/json/", c.baseURL, digits)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// ViaCEP answers 400 for malformed codes and a JSON "erro" flag for
	// well-formed codes that do not exist.
	if resp.StatusCode == http.StatusBadRequest {
		return nil, ErrInvalidCEP
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cep lookup: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var address Address
	if err := json.Unmarshal(body, &address); err != nil {
		return nil, err
	}

	if address.NotFound {
		return nil, ErrCEPNotFound
	}

	c.cache(ctx, digits, &address)

	return &address, nil
}

func cacheKey(digits string) string {
	return "cep:" + digits
}

func (c *Client) cached(ctx context.Context, digits string) *Address {
	if c.redis == nil {
		return nil
	}

	payload, err := c.redis.Get(ctx, cacheKey(digits)).Bytes()
	if err != nil {
		return nil
	}

	var address Address
	if err := json.Unmarshal(payload, &address); err != nil {
		return nil
	}

	return &address
}

func (c *Client) cache(ctx context.Context, digits string, address *Address) {
	if c.redis == nil {
		return
	}

	payload, err := json.Marshal(address)
	if err != nil {
		return
	}

	if err := c.redis.Set(ctx, cacheKey(digits), payload, c.cacheTTL).Err(); err != nil {
		logrus.WithError(err).Warn("caching CEP lookup")
	}
}
