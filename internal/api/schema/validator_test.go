package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/99minutos/product-catalog/internal/core/domain"
)

func TestValidator_CreateProductRequest(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"name":"Widget","price":19.99}`, ""},
		{"valid string price", `{"name":"Widget","price":"0.0001"}`, ""},
		{"short name", `{"name":"W","price":1}`, "name must be at least 2 characters"},
		{"long name", `{"name":"` + strings.Repeat("x", 201) + `","price":1}`, "name must be at most 200 characters"},
		{"missing name", `{"price":1}`, "name is required"},
		{"zero price", `{"name":"Widget","price":0}`, "price must be a positive number"},
		{"negative price", `{"name":"Widget","price":-3}`, "price must be a positive number"},
		{"too precise", `{"name":"Widget","price":1.23456}`, "price must have at most 4 decimal places"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req CreateProductRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("decode: %v", err)
			}
			err := v.Validate(req)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected %q in %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestValidator_UpdateProductRequest(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name  string
		body  string
		valid bool
	}{
		{"empty patch", `{}`, true},
		{"name only", `{"name":"Gadget"}`, true},
		{"price only", `{"price":"2.5"}`, true},
		{"empty name", `{"name":""}`, false},
		{"bad price", `{"price":-1}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateProductRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("decode: %v", err)
			}
			err := v.Validate(req)
			if tt.valid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidator_PaginationRequest(t *testing.T) {
	v := NewValidator()

	req := NewPaginationRequest()
	if err := v.Validate(req); err != nil {
		t.Fatalf("defaults must be valid: %v", err)
	}
	if err := v.Validate(PaginationRequest{Page: MaxPage, Limit: MaxLimit}); err != nil {
		t.Fatalf("upper bounds must be valid: %v", err)
	}

	for _, bad := range []PaginationRequest{{Page: 0, Limit: 10}, {Page: 1, Limit: 0}, {Page: 1, Limit: 101}, {Page: MaxPage + 1, Limit: 10}} {
		if err := v.Validate(bad); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("%+v: expected ErrInvalidInput, got %v", bad, err)
		}
	}
}
