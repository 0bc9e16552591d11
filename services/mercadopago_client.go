// services/mercadopago_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// MercadoPagoClient talks to the Mercado Pago REST API. It is constructed
// once in main and injected into the services that need it, so tests can
// point it at a local double.
type MercadoPagoClient struct {
	BaseURL       string // e.g. https://api.mercadopago.com
	AccessToken   string
	PublicBaseURL string // our own public URL, used for back_urls and notification_url
	Client        *http.Client
}

func NewMercadoPagoClient(baseURL, accessToken, publicBaseURL string) *MercadoPagoClient {
	if baseURL == "" {
		baseURL = "https://api.mercadopago.com"
	}
	return &MercadoPagoClient{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		AccessToken:   accessToken,
		PublicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		Client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// PaymentInfo is the canonical payment record fetched from the provider.
type PaymentInfo struct {
	ID                string
	Status            string
	StatusDetail      string
	ExternalReference string
	TransactionAmount float64
}

// GetPaymentInfo fetches the authoritative payment record for a provider
// payment id.
func (c *MercadoPagoClient) GetPaymentInfo(ctx context.Context, paymentID string) (*PaymentInfo, error) {
	url := fmt.Sprintf("%s/v1/payments/%s", c.BaseURL, paymentID)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mercadopago payment fetch failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("MercadoPago /v1/payments/%s returned %d: %s", paymentID, resp.StatusCode, string(body))
		return nil, fmt.Errorf("mercadopago payment fetch returned %d", resp.StatusCode)
	}

	var raw struct {
		ID                json.Number `json:"id"`
		Status            string      `json:"status"`
		StatusDetail      string      `json:"status_detail"`
		ExternalReference string      `json:"external_reference"`
		TransactionAmount float64     `json:"transaction_amount"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode mercadopago payment response: %w", err)
	}

	return &PaymentInfo{
		ID:                raw.ID.String(),
		Status:            raw.Status,
		StatusDetail:      raw.StatusDetail,
		ExternalReference: raw.ExternalReference,
		TransactionAmount: raw.TransactionAmount,
	}, nil
}

// PreferenceRequest carries everything needed to build a checkout preference
// for one tournament inscription.
type PreferenceRequest struct {
	TournamentID   string
	TournamentName string
	RoomType       string
	UserID         string
	UserEmail      string
	UserName       string
	Amount         float64
}

// Preference is the provider's created checkout preference: the reference id
// plus the redirect URLs the payer is sent to.
type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// CreatePreference creates a checkout preference. external_reference is the
// fixed "<tournament_id>_<user_id>" pair the webhook later uses to correlate
// the payment back to local rows.
func (c *MercadoPagoClient) CreatePreference(ctx context.Context, pref PreferenceRequest) (*Preference, error) {
	roomLabel := "Básica"
	if pref.RoomType == "vip" {
		roomLabel = "VIP"
	}

	payload := map[string]interface{}{
		"items": []map[string]interface{}{
			{
				"title":       fmt.Sprintf("Inscripción %s (%s)", pref.TournamentName, strings.ToUpper(pref.RoomType)),
				"description": fmt.Sprintf("Torneo Tutti Frutti - Sala %s", roomLabel),
				"quantity":    1,
				"currency_id": "ARS",
				"unit_price":  pref.Amount,
			},
		},
		"payer": map[string]interface{}{
			"email": pref.UserEmail,
			"name":  pref.UserName,
		},
		"external_reference": fmt.Sprintf("%s_%s", pref.TournamentID, pref.UserID),
		"back_urls": map[string]string{
			"success": c.PublicBaseURL + "/payment/success",
			"failure": c.PublicBaseURL + "/payment/failure",
			"pending": c.PublicBaseURL + "/payment/pending",
		},
		"auto_return":      "approved",
		"notification_url": c.PublicBaseURL + "/webhooks/payment",
		"metadata": map[string]string{
			"tournament_id": pref.TournamentID,
			"user_id":       pref.UserID,
			"room_type":     pref.RoomType,
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/checkout/preferences", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mercadopago preference create failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("MercadoPago /checkout/preferences returned %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("mercadopago preference create returned %d", resp.StatusCode)
	}

	var out Preference
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode mercadopago preference response: %w", err)
	}
	if out.ID == "" {
		return nil, fmt.Errorf("mercadopago preference response missing id")
	}

	return &out, nil
}
