package domain

import (
	"context"
	"errors"
	"fmt"
)

// PurchaseGateway is the port to the platform in-app purchase SDK.
type PurchaseGateway interface {
	// Init establishes the SDK connection. Safe to call repeatedly.
	Init(ctx context.Context) error
	// ActiveProductIDs lists product ids with an active purchase.
	ActiveProductIDs(ctx context.Context) ([]string, error)
	// Purchase runs one purchase attempt for the given product and
	// blocks until it settles or ctx expires.
	Purchase(ctx context.Context, productID string) error
}

// Vendor error codes surfaced by purchase gateways.
const (
	PurchaseCodeCancelled       = "E_USER_CANCELLED"
	PurchaseCodeItemUnavailable = "E_ITEM_UNAVAILABLE"
	PurchaseCodeNetwork         = "E_NETWORK_ERROR"
	PurchaseCodeNotInitialized  = "E_NOT_INITIALIZED"
)

// PurchaseError is a classified failure reported by a purchase gateway.
type PurchaseError struct {
	Code    string
	Message string
}

func (e *PurchaseError) Error() string {
	return fmt.Sprintf("purchase error %s: %s", e.Code, e.Message)
}

// PurchaseCode extracts the vendor code from err, or "" when err is
// not a PurchaseError.
func PurchaseCode(err error) string {
	var pe *PurchaseError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
