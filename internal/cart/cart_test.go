package cart

import (
	"testing"
)

type memoryStorage struct {
	data []byte
}

func (m *memoryStorage) Load() ([]byte, error) { return m.data, nil }
func (m *memoryStorage) Save(d []byte) error   { m.data = d; return nil }

func TestAddMergesByProductID(t *testing.T) {
	c, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Add(Item{ProductID: "p1", Titre: "Boite kraft", Quantite: 2, PrixUnitaire: 5}); err != nil {
		t.Fatal(err)
	}
	if err := c.Add(Item{ProductID: "p1", Titre: "Boite kraft", Quantite: 3, PrixUnitaire: 5}); err != nil {
		t.Fatal(err)
	}

	items := c.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(items))
	}
	if items[0].Quantite != 5 {
		t.Fatalf("expected merged quantity 5, got %d", items[0].Quantite)
	}
	if items[0].PrixTotal != "25.00" {
		t.Fatalf("expected line total 25.00, got %s", items[0].PrixTotal)
	}
}

func TestAddRejectsInvalidItems(t *testing.T) {
	c, _ := New(nil)
	if err := c.Add(Item{Quantite: 1}); err == nil {
		t.Fatal("expected error for missing product id")
	}
	if err := c.Add(Item{ProductID: "p1", Quantite: 0}); err == nil {
		t.Fatal("expected error for zero quantity")
	}
}

func TestRemoveAndSetQuantity(t *testing.T) {
	c, _ := New(nil)
	c.Add(Item{ProductID: "p1", Quantite: 1, PrixUnitaire: 2})
	c.Add(Item{ProductID: "p2", Quantite: 1, PrixUnitaire: 3})

	if err := c.Remove(5); err == nil {
		t.Fatal("expected error for out-of-range index")
	}
	if err := c.Remove(0); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 line, got %d", c.Len())
	}
	if c.Items()[0].ProductID != "p2" {
		t.Fatal("removed the wrong line")
	}

	if err := c.SetQuantity(0, 4); err != nil {
		t.Fatal(err)
	}
	if got := c.Total(); got != 12 {
		t.Fatalf("expected total 12, got %v", got)
	}

	// quantity zero removes the line
	if err := c.SetQuantity(0, 0); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 0 {
		t.Fatal("expected empty cart")
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	store := &memoryStorage{}
	c, err := New(store)
	if err != nil {
		t.Fatal(err)
	}
	c.Add(Item{ProductID: "p1", Titre: "Sac papier", Quantite: 2, PrixUnitaire: 1.5})

	reloaded, err := New(store)
	if err != nil {
		t.Fatal(err)
	}
	items := reloaded.Items()
	if len(items) != 1 || items[0].Titre != "Sac papier" || items[0].Quantite != 2 {
		t.Fatalf("unexpected reloaded items: %+v", items)
	}
}

func TestLegacyBareArrayMigration(t *testing.T) {
	store := &memoryStorage{data: []byte(`[{"id":"p1","titre":"Gobelet","quantite":3,"prix_unitaire":0.5}]`)}
	c, err := New(store)
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 1 {
		t.Fatalf("expected legacy item to load, got %d lines", c.Len())
	}

	// next mutation rewrites the envelope format
	c.Add(Item{ProductID: "p2", Quantite: 1, PrixUnitaire: 1})
	reloaded, err := New(store)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("expected 2 lines after migration, got %d", reloaded.Len())
	}
}

func TestUnreadableStorage(t *testing.T) {
	store := &memoryStorage{data: []byte(`{{not json`)}
	if _, err := New(store); err == nil {
		t.Fatal("expected error for corrupt cart data")
	}
}

func TestSubscribeSignalsMutations(t *testing.T) {
	c, _ := New(nil)
	ch := c.Subscribe()

	c.Add(Item{ProductID: "p1", Quantite: 1, PrixUnitaire: 1})
	select {
	case <-ch:
	default:
		t.Fatal("expected a signal after Add")
	}

	c.Clear()
	select {
	case <-ch:
	default:
		t.Fatal("expected a signal after Clear")
	}
}

func TestCheckoutRequest(t *testing.T) {
	c, _ := New(nil)
	if _, err := c.CheckoutRequest(Buyer{}); err == nil {
		t.Fatal("expected error for empty cart")
	}

	c.Add(Item{ProductID: "p1", Titre: "Boite pizza", Quantite: 10, PrixUnitaire: 2.5})
	payload, err := c.CheckoutRequest(Buyer{Nom: "Ben Salah", Prenom: "Amine", Email: "amine@example.tn", Telephone: "20123456"})
	if err != nil {
		t.Fatal(err)
	}
	if payload.TotalEstimation != "25.00" {
		t.Fatalf("expected total 25.00, got %s", payload.TotalEstimation)
	}
	if len(payload.Items) != 1 || payload.Items[0].ProductID != "p1" {
		t.Fatalf("unexpected payload items: %+v", payload.Items)
	}
	if payload.Nom != "Ben Salah" {
		t.Fatal("buyer details not carried into payload")
	}
}
