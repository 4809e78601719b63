package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// reviewPayload mirrors the shape of a review submission
type reviewPayload struct {
	ProductID string `json:"product_id" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Rating    int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment   string `json:"comment"`
}

func decodePayload(t *testing.T, body map[string]interface{}, dst interface{}) error {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest("POST", "/reviews", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return DecodeAndValidate(req, dst)
}

func TestProperty_MissingRequiredFieldsAreRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("validation passes exactly when every required field is present", prop.ForAll(
		func(withProduct bool, withEmail bool, withRating bool) bool {
			body := make(map[string]interface{})
			if withProduct {
				body["product_id"] = "f7b0c9a2-0000-0000-0000-000000000001"
			}
			if withEmail {
				body["email"] = "marie@example.com"
			}
			if withRating {
				body["rating"] = 4
			}

			var payload reviewPayload
			err := decodePayload(t, body, &payload)

			complete := withProduct && withEmail && withRating
			return (err == nil) == complete
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestFormatValidationErrors_NamesEveryBrokenField(t *testing.T) {
	var payload reviewPayload
	err := decodePayload(t, map[string]interface{}{
		"product_id": "f7b0c9a2-0000-0000-0000-000000000001",
		"email":      "not-an-email",
		"rating":     9,
	}, &payload)
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	formatted := FormatValidationErrors(err)
	if len(formatted) != 2 {
		t.Fatalf("expected 2 field errors, got %d: %v", len(formatted), formatted)
	}

	fields := make(map[string]string)
	for _, ve := range formatted {
		if ve.Field == "" || ve.Message == "" {
			t.Fatalf("empty field or message in %v", ve)
		}
		fields[ve.Field] = ve.Message
	}
	if _, ok := fields["Email"]; !ok {
		t.Errorf("expected an Email error, got %v", fields)
	}
	if _, ok := fields["Rating"]; !ok {
		t.Errorf("expected a Rating error, got %v", fields)
	}
}

func TestProperty_RatingRangeIsEnforced(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("ratings outside 1-5 are rejected", prop.ForAll(
		func(rating int) bool {
			var payload reviewPayload
			err := decodePayload(t, map[string]interface{}{
				"product_id": "f7b0c9a2-0000-0000-0000-000000000001",
				"email":      "marie@example.com",
				"rating":     rating,
			}, &payload)

			// A zero rating trips the required tag before the range check
			valid := rating >= 1 && rating <= 5
			return (err == nil) == valid
		},
		gen.IntRange(-3, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestDecodeAndValidate_RejectsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/reviews", bytes.NewReader([]byte(`{"rating": `)))
	req.Header.Set("Content-Type", "application/json")

	var payload reviewPayload
	if err := DecodeAndValidate(req, &payload); err == nil {
		t.Fatal("expected a decode error for truncated JSON")
	}
}
