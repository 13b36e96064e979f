package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Doctor struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	DoctorName       string               `bson:"doctorName" json:"doctorName"`
	Email            string               `bson:"email" json:"email"`
	Password         string               `bson:"password" json:"-"` // bcrypt hash
	Specialization   string               `bson:"specialization" json:"specialization"`
	Images           []string             `bson:"images" json:"images"`
	Hospitals        []primitive.ObjectID `bson:"hospitals" json:"hospitals"`
	Address          string               `bson:"address,omitempty" json:"address,omitempty"`
	Experience       string               `bson:"experience,omitempty" json:"experience,omitempty"`
	Clients          string               `bson:"clients,omitempty" json:"clients,omitempty"`
	About            string               `bson:"about,omitempty" json:"about,omitempty"`
	ReferralCode     string               `bson:"referralCode" json:"referralCode"`
	Role             string               `bson:"role" json:"role"`
	Commission       float64              `bson:"commission" json:"commission"`
	Referrals        []primitive.ObjectID `bson:"referrals" json:"referrals"`
	IsAccountDetails bool                 `bson:"isAccountDetails" json:"isAccountDetails"`
	Wishlisted       bool                 `bson:"wishlisted" json:"wishlisted"`
	CreatedAt        time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// DoctorProfile is a doctor with its referrals expanded to summaries.
type DoctorProfile struct {
	Doctor
	Referrals []MemberSummary `json:"referrals"`
}

// DoctorUpdate carries admin edits. Images replace the stored list only when non-empty.
type DoctorUpdate struct {
	DoctorName     *string
	Specialization *string
	About          *string
	Address        *string
	Experience     *string
	Hospitals      []primitive.ObjectID
	Images         []string
}
