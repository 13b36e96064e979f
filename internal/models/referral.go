package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ReferralOwner is the account a referral code resolved to.
type ReferralOwner struct {
	ID             primitive.ObjectID   `json:"_id"`
	Variant        Variant              `json:"-"`
	Role           string               `json:"role"`
	Name           string               `json:"name"`
	Email          string               `json:"email"`
	Phone          string               `json:"phone,omitempty"`
	Specialization string               `json:"specialization,omitempty"`
	ReferralCode   string               `json:"-"`
	Referrals      []primitive.ObjectID `json:"-"`
}

// CommissionView is the public projection returned after a ledger write.
// Members fill FullName/Phone, doctors fill DoctorName/Specialization.
type CommissionView struct {
	ID             primitive.ObjectID `bson:"_id" json:"_id"`
	FullName       string             `bson:"fullName,omitempty" json:"fullName,omitempty"`
	DoctorName     string             `bson:"doctorName,omitempty" json:"doctorName,omitempty"`
	Email          string             `bson:"email" json:"email"`
	Phone          string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Specialization string             `bson:"specialization,omitempty" json:"specialization,omitempty"`
	Commission     float64            `bson:"commission" json:"commission"`
}
