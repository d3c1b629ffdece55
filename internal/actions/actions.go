// Package actions encodes and decodes inline button payloads.
//
// Payloads are plain strings so they survive Telegram's 64 byte callback limit:
//
//	add_<category>/<item>   add one unit to the cart
//	cat_<category>          show a category
//	cart, checkout, clear_cart, menu
//	ship_<id>, deliver_<id>, cancel_<id>   operator controls
package actions

import (
	"strings"
)

// Kind is the decoded payload type.
type Kind int

const (
	Unknown Kind = iota
	AddItem
	ShowCategory
	ViewCart
	Checkout
	ClearCart
	MainMenu
	Ship
	Deliver
	Cancel
)

const (
	prefixAdd      = "add_"
	prefixCategory = "cat_"
	prefixShip     = "ship_"
	prefixDeliver  = "deliver_"
	prefixCancel   = "cancel_"

	payloadCart      = "cart"
	payloadCheckout  = "checkout"
	payloadClearCart = "clear_cart"
	payloadMenu      = "menu"
)

// MaxPayloadLen is Telegram's callback_data limit in bytes.
const MaxPayloadLen = 64

// Fits reports whether payload can be sent as callback data.
func Fits(payload string) bool {
	return len(payload) <= MaxPayloadLen
}

// Action is a decoded payload.
type Action struct {
	Kind     Kind
	Category string
	Item     string
	OrderID  string
}

// Operator reports whether the action is restricted to the operator.
func (a Action) Operator() bool {
	return a.Kind == Ship || a.Kind == Deliver || a.Kind == Cancel
}

// Add encodes an add-to-cart payload.
func Add(category, item string) string { return prefixAdd + category + "/" + item }

// Category encodes a show-category payload.
func Category(name string) string { return prefixCategory + name }

// ShipOrder encodes the operator ship control.
func ShipOrder(id string) string { return prefixShip + id }

// DeliverOrder encodes the operator deliver control.
func DeliverOrder(id string) string { return prefixDeliver + id }

// CancelOrder encodes the operator cancel control.
func CancelOrder(id string) string { return prefixCancel + id }

// Cart, CheckoutPayload, Clear and Menu return the fixed payloads.
func Cart() string            { return payloadCart }
func CheckoutPayload() string { return payloadCheckout }
func Clear() string           { return payloadClearCart }
func Menu() string            { return payloadMenu }

// Parse decodes a payload. Unrecognised payloads yield Kind Unknown.
func Parse(payload string) Action {
	p := strings.TrimSpace(payload)
	switch p {
	case payloadCart:
		return Action{Kind: ViewCart}
	case payloadCheckout:
		return Action{Kind: Checkout}
	case payloadClearCart:
		return Action{Kind: ClearCart}
	case payloadMenu:
		return Action{Kind: MainMenu}
	}

	switch {
	case strings.HasPrefix(p, prefixAdd):
		category, item, ok := strings.Cut(strings.TrimPrefix(p, prefixAdd), "/")
		if !ok || category == "" || item == "" {
			return Action{}
		}
		return Action{Kind: AddItem, Category: category, Item: item}
	case strings.HasPrefix(p, prefixCategory):
		if name := strings.TrimPrefix(p, prefixCategory); name != "" {
			return Action{Kind: ShowCategory, Category: name}
		}
	case strings.HasPrefix(p, prefixShip):
		return orderAction(Ship, strings.TrimPrefix(p, prefixShip))
	case strings.HasPrefix(p, prefixDeliver):
		return orderAction(Deliver, strings.TrimPrefix(p, prefixDeliver))
	case strings.HasPrefix(p, prefixCancel):
		return orderAction(Cancel, strings.TrimPrefix(p, prefixCancel))
	}
	return Action{}
}

// IsOperatorPayload reports whether payload carries an operator prefix, even if malformed.
func IsOperatorPayload(payload string) bool {
	p := strings.TrimSpace(payload)
	return strings.HasPrefix(p, prefixShip) || strings.HasPrefix(p, prefixDeliver) || strings.HasPrefix(p, prefixCancel)
}

func orderAction(kind Kind, id string) Action {
	if id == "" {
		return Action{}
	}
	return Action{Kind: kind, OrderID: id}
}
