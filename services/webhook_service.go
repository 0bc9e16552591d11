// services/webhook_service.go
package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"tutti-frutti-service/models"
	"tutti-frutti-service/store"

	"github.com/gofiber/fiber/v2"
)

// PaymentInfoFetcher is the provider-facing lookup the webhook depends on.
// *MercadoPagoClient satisfies it in production.
type PaymentInfoFetcher interface {
	GetPaymentInfo(ctx context.Context, paymentID string) (*PaymentInfo, error)
}

// PaymentNotification is the provider's webhook body. Anything with a type
// other than "payment" is acknowledged and dropped.
type PaymentNotification struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// WebhookService reconciles local payment/participant state with the
// provider's authoritative payment status. Each delivery is handled as an
// independent request; the relational store is the only shared state, so
// duplicate and concurrent deliveries are defused by the idempotency
// pre-check plus the conditional approving write in the store.
type WebhookService struct {
	Store    store.Store
	Fetcher  PaymentInfoFetcher
	Earnings *EarningsService
	Secret   string // shared webhook secret; empty means misconfigured
}

func NewWebhookService(st store.Store, fetcher PaymentInfoFetcher, earnings *EarningsService, secret string) *WebhookService {
	return &WebhookService{
		Store:    st,
		Fetcher:  fetcher,
		Earnings: earnings,
		Secret:   secret,
	}
}

// verifySignature checks the x-signature header: hex HMAC-SHA256 over the
// raw request body with the shared secret, compared in constant time.
func (s *WebhookService) verifySignature(rawBody []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.Secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// splitExternalReference parses the fixed "<tournament_id>_<user_id>" form.
func splitExternalReference(ref string) (tournamentID, userID string, ok bool) {
	parts := strings.SplitN(ref, "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// HandleNotification is POST /webhooks/payment. Pipeline, each step
// short-circuiting on failure: raw body → signature → parse → fetch payment
// → idempotency check → dispatch by status → 200 {received:true}.
func (s *WebhookService) HandleNotification(c *fiber.Ctx) error {
	rawBody := c.Body()

	if s.Secret == "" {
		log.Println("❌ [WEBHOOK] MP_WEBHOOK_SECRET not configured — rejecting notification")
		return c.Status(500).JSON(fiber.Map{"error": "server misconfiguration"})
	}

	if !s.verifySignature(rawBody, c.Get("x-signature")) {
		log.Printf("🚫 [WEBHOOK] Invalid signature from %s", c.IP())
		return c.Status(401).JSON(fiber.Map{"error": "invalid signature"})
	}

	var notif PaymentNotification
	if err := json.Unmarshal(rawBody, &notif); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid notification body"})
	}

	if notif.Type != "payment" {
		log.Printf("[WEBHOOK] Ignoring notification type %q", notif.Type)
		return c.JSON(fiber.Map{"received": true})
	}

	ctx := c.UserContext()

	info, err := s.Fetcher.GetPaymentInfo(ctx, notif.Data.ID)
	if err != nil || info == nil || info.ID == "" {
		log.Printf("❌ [WEBHOOK] Could not retrieve payment info for id %s: %v", notif.Data.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "could not retrieve payment info"})
	}

	// Idempotency guard: the provider delivers at least once.
	existing, err := s.Store.GetPaymentByExternalID(ctx, info.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("❌ [WEBHOOK] Idempotency lookup failed for payment %s: %v", info.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "database error during idempotency check"})
	}
	if existing != nil && existing.Status == models.PaymentApproved {
		log.Printf("[WEBHOOK] Payment %s already approved, skipping duplicate notification", info.ID)
		return c.JSON(fiber.Map{"received": true})
	}

	switch info.Status {
	case models.PaymentApproved:
		return s.handleApproved(c, info)
	case models.PaymentPending:
		// Still processing on the provider side; nothing to record yet.
		log.Printf("[WEBHOOK] Payment %s is pending", info.ID)
	case models.PaymentRejected, models.PaymentCancelled:
		// TODO: release the reserved tournament slot once product decides
		// whether rejection frees it or holds it for a retry.
		log.Printf("[WEBHOOK] Payment %s was %s", info.ID, info.Status)
	default:
		log.Printf("[WEBHOOK] Payment %s has unhandled status %q", info.ID, info.Status)
	}

	return c.JSON(fiber.Map{"received": true})
}

// handleApproved applies the pending → approved transition: CAS-approve the
// payment row, confirm the participant, then recompute tournament stats.
// The stats step is advisory and eventually consistent — its failure is
// logged but never fails the webhook, since payment/participant state is
// already committed.
func (s *WebhookService) handleApproved(c *fiber.Ctx, info *PaymentInfo) error {
	tournamentID, userID, ok := splitExternalReference(info.ExternalReference)
	if !ok {
		log.Printf("❌ [WEBHOOK] Invalid external_reference %q on payment %s", info.ExternalReference, info.ID)
		return c.Status(400).JSON(fiber.Map{"error": "invalid external reference"})
	}

	ctx := c.UserContext()

	rows, err := s.Store.ApprovePayment(ctx, tournamentID, userID, info.ID, time.Now().UTC())
	if err != nil {
		log.Printf("❌ [WEBHOOK] Error approving payment %s: %v", info.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "error updating payment"})
	}
	if rows == 0 {
		// A concurrent delivery already approved it; state is correct as-is.
		log.Printf("[WEBHOOK] Payment %s approved by a concurrent delivery, nothing to do", info.ID)
		return c.JSON(fiber.Map{"received": true})
	}

	if err := s.Store.ConfirmParticipant(ctx, tournamentID, userID); err != nil {
		log.Printf("❌ [WEBHOOK] Error confirming participant (tournament=%s user=%s): %v", tournamentID, userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "error updating participant"})
	}

	if err := s.Earnings.RecomputeTournamentStats(ctx, tournamentID); err != nil {
		log.Printf("⚠️ [WEBHOOK] Failed to recompute stats for tournament %s: %v", tournamentID, err)
	}

	log.Printf("✅ [WEBHOOK] Payment approved for user %s in tournament %s", userID, tournamentID)
	return c.JSON(fiber.Map{"received": true})
}

// Healthcheck is GET /webhooks/payment — a static liveness payload so the
// provider's endpoint test succeeds.
func (s *WebhookService) Healthcheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "webhook endpoint is working"})
}
