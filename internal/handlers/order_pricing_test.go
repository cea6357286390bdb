package handlers

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"embalini-backend/internal/models"
)

func testCatalog() (map[string]models.Product, primitive.ObjectID, primitive.ObjectID) {
	boxID := primitive.NewObjectID()
	bagID := primitive.NewObjectID()
	catalog := map[string]models.Product{
		boxID.Hex(): {ID: boxID, Title: "Boite kraft", Price: 2.5, Image: "/uploads/box.jpg"},
		bagID.Hex(): {ID: bagID, Title: "Sac papier", Price: 0.8},
	}
	return catalog, boxID, bagID
}

func TestPriceOrderItems(t *testing.T) {
	catalog, boxID, bagID := testCatalog()

	items := []createOrderItemRequest{
		{ID: boxID.Hex(), Quantite: 10, PrixUnitaire: 99, PrixTotal: "990.00"},
		{ID: bagID.Hex(), Quantite: 5},
	}

	priced, total, err := priceOrderItems(items, catalog)
	if err != nil {
		t.Fatal(err)
	}
	if len(priced) != 2 {
		t.Fatalf("expected 2 priced lines, got %d", len(priced))
	}
	// catalog price wins over whatever the client claimed
	if priced[0].PrixUnitaire != 2.5 || priced[0].PrixTotal != 25.0 {
		t.Fatalf("unexpected first line: %+v", priced[0])
	}
	if priced[0].Titre != "Boite kraft" || priced[0].ProductImage != "/uploads/box.jpg" {
		t.Fatalf("snapshot fields not taken from catalog: %+v", priced[0])
	}
	if total != 29.0 {
		t.Fatalf("expected total 29.00, got %v", total)
	}
}

func TestPriceOrderItemsRejectsBadQuantity(t *testing.T) {
	catalog, boxID, _ := testCatalog()

	_, _, err := priceOrderItems([]createOrderItemRequest{{ID: boxID.Hex(), Quantite: 0}}, catalog)
	var qErr quantityError
	if !errors.As(err, &qErr) {
		t.Fatalf("expected quantityError, got %v", err)
	}
}

func TestPriceOrderItemsRejectsUnknownProduct(t *testing.T) {
	catalog, _, _ := testCatalog()

	_, _, err := priceOrderItems([]createOrderItemRequest{{ID: "deadbeefdeadbeefdeadbeef", Quantite: 1}}, catalog)
	var nfErr productNotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected productNotFoundError, got %v", err)
	}
}

func TestPriceOrderItemsRequiresItems(t *testing.T) {
	catalog, _, _ := testCatalog()
	if _, _, err := priceOrderItems(nil, catalog); err == nil {
		t.Fatal("expected error for empty item list")
	}
}

func TestValidateClaimedTotal(t *testing.T) {
	tests := []struct {
		name     string
		claimed  string
		computed float64
		wantErr  bool
		mismatch bool
	}{
		{name: "empty claim accepted", claimed: "", computed: 42},
		{name: "exact match", claimed: "25.00", computed: 25},
		{name: "within tolerance", claimed: "25.005", computed: 25},
		{name: "stale price", claimed: "20.00", computed: 25, wantErr: true, mismatch: true},
		{name: "garbage", claimed: "abc", computed: 25, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateClaimedTotal(tt.claimed, tt.computed)
			if tt.wantErr && err == nil {
				t.Fatal("expected an error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var mErr totalMismatchError
			if got := errors.As(err, &mErr); got != tt.mismatch {
				t.Fatalf("totalMismatchError = %v, want %v (err=%v)", got, tt.mismatch, err)
			}
		})
	}
}

func TestParseLegacyMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		societe string
		mf      string
		perso   string
	}{
		{
			name:    "full packed form",
			message: "Société: Plastico SARL | MF: 123456A | Perso: logo recto",
			societe: "Plastico SARL",
			mf:      "123456A",
			perso:   "logo recto",
		},
		{
			name:    "accent-free spelling",
			message: "societe: Dupont | mf: 99X",
			societe: "Dupont",
			mf:      "99X",
		},
		{
			name:    "partial",
			message: "Perso: impression deux couleurs",
			perso:   "impression deux couleurs",
		},
		{
			name:    "free text untouched",
			message: "merci de livrer avant vendredi",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			societe, mf, perso := parseLegacyMessage(tt.message)
			if societe != tt.societe || mf != tt.mf || perso != tt.perso {
				t.Fatalf("got (%q, %q, %q), want (%q, %q, %q)",
					societe, mf, perso, tt.societe, tt.mf, tt.perso)
			}
		})
	}
}

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []string{
		models.StatusPendingReview, models.StatusConfirmed,
		models.StatusShipped, models.StatusCancelled,
	} {
		if !validOrderStatus(s) {
			t.Fatalf("expected %s to be valid", s)
		}
	}
	for _, s := range []string{"", "pending_review", "DONE"} {
		if validOrderStatus(s) {
			t.Fatalf("expected %s to be rejected", s)
		}
	}
}

func TestBuildOrderDecomposesLegacyMessage(t *testing.T) {
	req := createOrderRequest{
		Nom:       "Trabelsi",
		Prenom:    "Sami",
		Email:     "sami@example.tn",
		Telephone: "71123456",
		Message:   "Société: Embal+ | MF: 1357B | Perso: sans impression",
	}

	order := buildOrder(req, nil, 25, "TND")
	if order.Societe != "Embal+" || order.MatriculeFiscale != "1357B" || order.Personnalisation != "sans impression" {
		t.Fatalf("legacy message not decomposed: %+v", order)
	}
	if order.Message == "" {
		t.Fatal("original message should be preserved")
	}
	if order.Status != models.StatusPendingReview {
		t.Fatalf("expected new orders to start pending, got %s", order.Status)
	}
	if order.Currency != "TND" {
		t.Fatalf("expected default currency, got %s", order.Currency)
	}
}

func TestBuildOrderPrefersStructuredFields(t *testing.T) {
	req := createOrderRequest{
		Nom:       "Trabelsi",
		Prenom:    "Sami",
		Email:     "sami@example.tn",
		Telephone: "71123456",
		Societe:   "Carton du Sud",
		Message:   "Société: autre | MF: 0000",
		Currency:  "EUR",
	}

	order := buildOrder(req, nil, 10, "TND")
	if order.Societe != "Carton du Sud" {
		t.Fatalf("structured societe should win, got %q", order.Societe)
	}
	if order.MatriculeFiscale != "" {
		t.Fatal("legacy decomposition must not run when structured fields are set")
	}
	if order.Currency != "EUR" {
		t.Fatalf("request currency should override the default, got %s", order.Currency)
	}
}
