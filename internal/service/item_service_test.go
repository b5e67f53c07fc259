package service

import (
	"context"
	"errors"
	"testing"

	"go-leather-stock/internal/model"
	"go-leather-stock/pkg/apperror"

	"github.com/shopspring/decimal"
)

func TestCreateItemNormalizesAndRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.items.CreateItem(ctx, ItemInput{SKU: " lth-500 ", Name: "Veg tan side", Kind: "leather"}, "owner")
	if err != nil {
		t.Fatal(err)
	}
	if item.SKU != "LTH-500" || item.Kind != model.KindLeather {
		t.Errorf("got sku %q kind %q", item.SKU, item.Kind)
	}
	if item.Status != model.StatusOutOfStock || !item.IsActive {
		t.Errorf("new item status %s active %v", item.Status, item.IsActive)
	}

	_, err = f.items.CreateItem(ctx, ItemInput{SKU: "LTH-500", Name: "Other", Kind: model.KindLeather}, "owner")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestCreateItemValidation(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name string
		in   ItemInput
	}{
		{"missing sku", ItemInput{Name: "x", Kind: model.KindTool}},
		{"missing name", ItemInput{SKU: "T-1", Kind: model.KindTool}},
		{"unknown kind", ItemInput{SKU: "T-1", Name: "x", Kind: "FOOD"}},
		{"negative threshold", ItemInput{SKU: "T-1", Name: "x", Kind: model.KindTool, MinStockLevel: decimal.NewNullDecimal(dec("-1"))}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.items.CreateItem(context.Background(), tc.in, "owner")
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUpdateItemRecomputesStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.createItem(t, "LTH-600")
	f.createRecord(t, item, "Shelf A", "8")
	f.createRecord(t, item, "Shelf B", "4")

	current, err := f.items.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if current.Status != model.StatusInStock {
		t.Fatalf("rollup of 12 against 5 should be IN_STOCK, got %s", current.Status)
	}

	updated, err := f.items.UpdateItem(ctx, item.ID, ItemInput{
		SKU:           item.SKU,
		Name:          item.Name,
		Kind:          item.Kind,
		MinStockLevel: decimal.NewNullDecimal(dec("20")),
	}, "owner")
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != model.StatusLowStock {
		t.Errorf("rollup of 12 against 20 should be LOW_STOCK, got %s", updated.Status)
	}

	other := f.createItem(t, "LTH-601")
	_, err = f.items.UpdateItem(ctx, other.ID, ItemInput{SKU: "lth-600", Name: "dup", Kind: model.KindLeather}, "owner")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("expected conflict on SKU change, got %v", err)
	}
}

func TestListItemsByKind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createItem(t, "LTH-700")
	if _, err := f.items.CreateItem(ctx, ItemInput{SKU: "TL-700", Name: "Edge beveler", Kind: model.KindTool}, "owner"); err != nil {
		t.Fatal(err)
	}

	tools, err := f.items.ListItems(ctx, "tool")
	if err != nil {
		t.Fatal(err)
	}
	if len(tools) != 1 || tools[0].SKU != "TL-700" {
		t.Errorf("unexpected tools %+v", tools)
	}
	all, err := f.items.ListItems(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 items, got %d", len(all))
	}
}
