package validator

import (
	"errors"
	"testing"

	"go-leather-stock/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type adjustInput struct {
	RecordID uuid.UUID `validate:"uuid_required"`
	Reason   string    `validate:"required,reason"`
}

func TestCheckPasses(t *testing.T) {
	in := adjustInput{RecordID: uuid.New(), Reason: "physical count"}
	if err := Check("test", in); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCheckRejectsNilUUID(t *testing.T) {
	errs := ValidateStruct(adjustInput{Reason: "usage"})
	if len(errs) != 1 || errs[0].Tag != "uuid_required" {
		t.Fatalf("expected one uuid_required failure, got %+v", errs)
	}
}

func TestCheckRejectsUnknownReason(t *testing.T) {
	err := Check("test", adjustInput{RecordID: uuid.New(), Reason: "borrowed"})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if apperror.MessageOf(err) != "field 'adjustInput.Reason' failed on tag 'reason'" {
		t.Errorf("unexpected message %q", apperror.MessageOf(err))
	}
}

type transferInput struct {
	Quantity decimal.Decimal `validate:"decimal_gt0"`
	Delta    decimal.Decimal `validate:"decimal_ne0"`
}

func TestDecimalTags(t *testing.T) {
	cases := []struct {
		name string
		in   transferInput
		tag  string
	}{
		{"valid", transferInput{decimal.NewFromInt(5), decimal.NewFromInt(-2)}, ""},
		{"zero quantity", transferInput{decimal.Zero, decimal.NewFromInt(1)}, "decimal_gt0"},
		{"negative quantity", transferInput{decimal.NewFromInt(-1), decimal.NewFromInt(1)}, "decimal_gt0"},
		{"zero delta", transferInput{decimal.NewFromInt(1), decimal.Zero}, "decimal_ne0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := ValidateStruct(tc.in)
			if tc.tag == "" {
				if len(errs) != 0 {
					t.Fatalf("unexpected failures %+v", errs)
				}
				return
			}
			if len(errs) != 1 || errs[0].Tag != tc.tag {
				t.Fatalf("expected one %s failure, got %+v", tc.tag, errs)
			}
		})
	}
}
