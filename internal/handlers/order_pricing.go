package handlers

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"embalini-backend/internal/models"
)

// Tolerance for comparing the client-claimed total against the recomputed
// one. Anything beyond a cent is treated as tampering or staleness.
const totalTolerance = 0.01

type createOrderItemRequest struct {
	ID           string  `json:"id" binding:"required"`
	Titre        string  `json:"titre"`
	Quantite     int     `json:"quantite" binding:"required"`
	PrixUnitaire float64 `json:"prix_unitaire"`
	PrixTotal    string  `json:"prix_total"`
	ProductImage string  `json:"productimage"`
}

type createOrderRequest struct {
	Nom       string `json:"nom" binding:"required"`
	Prenom    string `json:"prenom" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Telephone string `json:"telephone" binding:"required"`

	Societe          string `json:"societe"`
	MatriculeFiscale string `json:"matricule_fiscale"`
	Personnalisation string `json:"personnalisation"`
	Message          string `json:"message"`

	TotalEstimation string                   `json:"total_estimation"`
	Currency        string                   `json:"currency"`
	Items           []createOrderItemRequest `json:"items" binding:"required"`
}

type productNotFoundError struct {
	ProductID string
}

func (e productNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ProductID)
}

type quantityError struct {
	ProductID string
	Quantite  int
}

func (e quantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than zero for product %s", e.ProductID)
}

type totalMismatchError struct {
	Claimed  float64
	Computed float64
}

func (e totalMismatchError) Error() string {
	return fmt.Sprintf("total mismatch: claimed %.2f, computed %.2f", e.Claimed, e.Computed)
}

func roundMoney(value float64) float64 {
	return math.Round(value*100) / 100
}

// priceOrderItems snapshots each requested line against the authoritative
// product record. Unit prices always come from the catalog, never from the
// client payload.
func priceOrderItems(items []createOrderItemRequest, productByID map[string]models.Product) ([]models.OrderItem, float64, error) {
	if len(items) == 0 {
		return nil, 0, fmt.Errorf("at least one item is required")
	}

	priced := make([]models.OrderItem, 0, len(items))
	total := 0.0

	for _, item := range items {
		if item.Quantite <= 0 {
			return nil, 0, quantityError{ProductID: item.ID, Quantite: item.Quantite}
		}

		product, ok := productByID[item.ID]
		if !ok {
			return nil, 0, productNotFoundError{ProductID: item.ID}
		}

		lineTotal := roundMoney(product.Price * float64(item.Quantite))
		priced = append(priced, models.OrderItem{
			ProductID:    product.ID,
			Titre:        product.Title,
			Quantite:     item.Quantite,
			PrixUnitaire: product.Price,
			PrixTotal:    lineTotal,
			ProductImage: product.Image,
		})
		total += lineTotal
	}

	return priced, roundMoney(total), nil
}

// validateClaimedTotal rejects orders whose client-computed estimation has
// drifted from the authoritative one. An empty claim is accepted; the stored
// total is always the server's number either way.
func validateClaimedTotal(claimed string, computed float64) error {
	trimmed := strings.TrimSpace(claimed)
	if trimmed == "" {
		return nil
	}

	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fmt.Errorf("invalid total_estimation: %q", claimed)
	}

	if math.Abs(value-computed) > totalTolerance {
		return totalMismatchError{Claimed: value, Computed: computed}
	}
	return nil
}

func validOrderStatus(status string) bool {
	switch status {
	case models.StatusPendingReview, models.StatusConfirmed, models.StatusShipped, models.StatusCancelled:
		return true
	}
	return false
}

// Legacy clients packed business metadata into the free-text message as
// "Société: X | MF: Y | Perso: Z". New orders carry the structured fields
// directly; the packed form is decomposed once on create, never re-encoded.
var (
	societeRe = regexp.MustCompile(`(?i)soci[ée]t[ée]\s*:\s*([^|]+)`)
	mfRe      = regexp.MustCompile(`(?i)\bMF\s*:\s*([^|]+)`)
	persoRe   = regexp.MustCompile(`(?i)\bperso\s*:\s*([^|]+)`)
)

func parseLegacyMessage(message string) (societe, matriculeFiscale, personnalisation string) {
	if m := societeRe.FindStringSubmatch(message); m != nil {
		societe = strings.TrimSpace(m[1])
	}
	if m := mfRe.FindStringSubmatch(message); m != nil {
		matriculeFiscale = strings.TrimSpace(m[1])
	}
	if m := persoRe.FindStringSubmatch(message); m != nil {
		personnalisation = strings.TrimSpace(m[1])
	}
	return societe, matriculeFiscale, personnalisation
}

// buildOrder assembles the order document from a validated request and its
// priced items. Identifiers (order_id, secret_code) are filled by the caller.
func buildOrder(req createOrderRequest, items []models.OrderItem, total float64, currency string) models.Order {
	societe := strings.TrimSpace(req.Societe)
	mf := strings.TrimSpace(req.MatriculeFiscale)
	perso := strings.TrimSpace(req.Personnalisation)

	if societe == "" && mf == "" && perso == "" && strings.TrimSpace(req.Message) != "" {
		societe, mf, perso = parseLegacyMessage(req.Message)
	}

	if c := strings.TrimSpace(req.Currency); c != "" {
		currency = c
	}

	return models.Order{
		Nom:              strings.TrimSpace(req.Nom),
		Prenom:           strings.TrimSpace(req.Prenom),
		Email:            strings.TrimSpace(req.Email),
		Telephone:        strings.TrimSpace(req.Telephone),
		Societe:          societe,
		MatriculeFiscale: mf,
		Personnalisation: perso,
		Message:          strings.TrimSpace(req.Message),
		TotalEstimation:  total,
		Currency:         currency,
		Status:           models.StatusPendingReview,
		Items:            items,
	}
}
