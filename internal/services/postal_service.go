package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-user/internal/validation"
	"github.com/go-resty/resty/v2"
)

type PostalAddress struct {
	Zipcode string
	City    string
	State   string
}

// brasilAPIResponse is the CEP v2 payload; only city and state are used.
type brasilAPIResponse struct {
	Cep          string `json:"cep"`
	State        string `json:"state"`
	City         string `json:"city"`
	Neighborhood string `json:"neighborhood"`
	Street       string `json:"street"`
}

// PostalService looks postal codes up in an external directory.
type PostalService struct {
	client *resty.Client
}

func NewPostalService(baseURL string, timeout time.Duration) *PostalService {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &PostalService{client: client}
}

// Lookup never touches the network unless raw is five digits, an optional
// dash, then three digits.
func (s *PostalService) Lookup(ctx context.Context, raw string) (*PostalAddress, error) {
	if !validation.IsPostalCodeInput(raw) {
		return nil, ErrInvalidPostalCode
	}
	cep := validation.NormalizePostalCode(raw)

	var body brasilAPIResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("cep", cep).
		SetResult(&body).
		Get("/{cep}")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusNotFound || code == http.StatusBadRequest:
		return nil, ErrPostalCodeNotFound
	case resp.IsError():
		return nil, fmt.Errorf("%w: postal directory returned status %d", ErrUpstream, code)
	}

	if body.City == "" || body.State == "" {
		return nil, ErrPostalCodeNotFound
	}

	return &PostalAddress{
		Zipcode: cep,
		City:    strings.TrimSpace(body.City),
		State:   strings.ToUpper(strings.TrimSpace(body.State)),
	}, nil
}
