package models

import "strings"

// Variant tags which of the three account collections a principal lives in.
type Variant uint8

const (
	Customer Variant = iota + 1
	Practitioner
	Affiliate
)

// Role names carried in tokens and documents.
const (
	RoleUser    = "user"
	RoleDoctor  = "doctor"
	RolePartner = "partner"
	RoleAdmin   = "admin"
)

// ResolutionOrder is the order in which referral codes are looked up.
// A code present in more than one collection belongs to the first match.
var ResolutionOrder = [...]Variant{Customer, Practitioner, Affiliate}

// Role returns the role tag stored on documents of this variant.
func (v Variant) Role() string {
	switch v {
	case Customer:
		return RoleUser
	case Practitioner:
		return RoleDoctor
	case Affiliate:
		return RolePartner
	}
	return ""
}

// Collection returns the MongoDB collection holding this variant.
func (v Variant) Collection() string {
	switch v {
	case Customer:
		return "users"
	case Practitioner:
		return "doctors"
	case Affiliate:
		return "partners"
	}
	return ""
}

func (v Variant) String() string {
	switch v {
	case Customer:
		return "customer"
	case Practitioner:
		return "practitioner"
	case Affiliate:
		return "affiliate"
	}
	return "unknown"
}

// Valid reports whether v is one of the three account variants.
func (v Variant) Valid() bool {
	return v >= Customer && v <= Affiliate
}

// ParseVariant accepts either the role tag ("user", "doctor", "partner") or
// the variant name ("customer", "practitioner", "affiliate"), case-insensitively.
func ParseVariant(s string) (Variant, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case RoleUser, "customer":
		return Customer, true
	case RoleDoctor, "practitioner":
		return Practitioner, true
	case RolePartner, "affiliate":
		return Affiliate, true
	}
	return 0, false
}
