package storage

import (
	"testing"

	"github.com/cockroachdb/pebble"

	"github.com/mmeshcher/vinayak-store/internal/cart"
	"github.com/mmeshcher/vinayak-store/internal/model"
)

func openTestCarts(t *testing.T) *PebbleCarts {
	t.Helper()
	carts, err := OpenPebbleCarts(t.TempDir())
	if err != nil {
		t.Fatalf("pebble open: %v", err)
	}
	t.Cleanup(func() { _ = carts.Close() })
	return carts
}

func mixedCart() []model.CartLine {
	return []model.CartLine{
		{ID: "l1", CatalogID: "p1", Kind: model.KindProduct, Name: "Camphor", UnitPrice: 40, Image: "c.jpg", Quantity: 3},
		{
			ID:        "l2",
			CatalogID: "s1",
			Kind:      model.KindService,
			Name:      "Mandap decoration",
			UnitPrice: 6500,
			Quantity:  1,
			Booking:   &model.BookingDetails{Date: "2026-11-01", Time: "18:00", Venue: "Community hall"},
		},
		{
			ID:            "l3",
			CatalogID:     "kit",
			Kind:          model.KindPackage,
			Name:          "Puja kit",
			UnitPrice:     670,
			Quantity:      2,
			Variant:       "custom-0-2",
			Customization: []string{"Diya", "Garland"},
		},
	}
}

func TestDeviceCart_RoundTrip(t *testing.T) {
	carts := openTestCarts(t)
	p := carts.ForDevice("dev-1")

	want := mixedCart()
	if err := p.SaveCart(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := p.LoadCart()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("loaded %d lines, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Kind != want[i].Kind || got[i].UnitPrice != want[i].UnitPrice ||
			got[i].Quantity != want[i].Quantity || got[i].Variant != want[i].Variant {
			t.Fatalf("line %d mismatch: got %+v want %+v", i, got[i], want[i])
		}
	}
	if *got[1].Booking != *want[1].Booking {
		t.Fatalf("booking mismatch: %+v", got[1].Booking)
	}
	if len(got[2].Customization) != 2 || got[2].Customization[1] != "Garland" {
		t.Fatalf("customization mismatch: %v", got[2].Customization)
	}
	if got[0].Booking != nil || got[0].Customization != nil {
		t.Fatalf("product line gained optional fields: %+v", got[0])
	}
}

func TestDeviceCart_MissingIsEmpty(t *testing.T) {
	carts := openTestCarts(t)

	lines, err := carts.ForDevice("new-device").LoadCart()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected empty cart, got %v", lines)
	}
}

func TestDeviceCart_DevicesIsolated(t *testing.T) {
	carts := openTestCarts(t)

	if err := carts.ForDevice("a").SaveCart(mixedCart()); err != nil {
		t.Fatalf("save: %v", err)
	}

	lines, err := carts.ForDevice("b").LoadCart()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("device b sees device a cart: %v", lines)
	}
}

func TestDeviceCart_CorruptPayload(t *testing.T) {
	carts := openTestCarts(t)
	if err := carts.db.Set([]byte(cartKeyPrefix+"broken"), []byte("{not json"), pebble.Sync); err != nil {
		t.Fatalf("seed: %v", err)
	}

	p := carts.ForDevice("broken")
	if _, err := p.LoadCart(); err == nil {
		t.Fatalf("expected decode error")
	}

	s := cart.New(p, nil)
	if len(s.Lines()) != 0 {
		t.Fatalf("store must fall back to an empty cart")
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	carts, err := OpenPebbleCarts(dir)
	if err != nil {
		t.Fatalf("pebble open: %v", err)
	}
	s := cart.New(carts.ForDevice("dev"), nil)
	s.Add(model.CartLine{CatalogID: "p1", Kind: model.KindProduct, Name: "Camphor", UnitPrice: 40, Quantity: 2})
	if err := carts.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	carts, err = OpenPebbleCarts(dir)
	if err != nil {
		t.Fatalf("pebble reopen: %v", err)
	}
	t.Cleanup(func() { _ = carts.Close() })

	restored := cart.New(carts.ForDevice("dev"), nil)
	if restored.Total() != 80 || restored.Count() != 2 {
		t.Fatalf("restored total=%d count=%d, want 80 and 2", restored.Total(), restored.Count())
	}
}
