package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member is the document shape shared by customers ("users") and
// affiliates ("partners"). Both sign in with a phone OTP.
type Member struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	FullName         string               `bson:"fullName" json:"fullName"`
	Phone            string               `bson:"phone" json:"phone"`
	Email            string               `bson:"email" json:"email"`
	City             primitive.ObjectID   `bson:"city" json:"city"`
	Role             string               `bson:"role" json:"role"` // "user" or "partner"
	ReferralCode     string               `bson:"referralCode" json:"referralCode"`
	Commission       float64              `bson:"commission" json:"commission"`
	Referrals        []primitive.ObjectID `bson:"referrals" json:"referrals"`
	IsAccountDetails bool                 `bson:"isAccountDetails" json:"isAccountDetails"`
	OTP              string               `bson:"otp,omitempty" json:"-"`
	OTPExpires       *time.Time           `bson:"otpExpires,omitempty" json:"-"`
	CreatedAt        time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// MemberSummary is the populated form of an entry in a referrals list.
type MemberSummary struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	FullName  string             `bson:"fullName" json:"fullName"`
	Phone     string             `bson:"phone" json:"phone"`
	Email     string             `bson:"email" json:"email"`
	City      primitive.ObjectID `bson:"city" json:"city"`
	Role      string             `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// MemberProfile is a member with its referrals expanded to summaries.
type MemberProfile struct {
	Member
	Referrals []MemberSummary `json:"referrals"`
}

// MemberUpdate holds the self-service editable fields; nil means unchanged.
type MemberUpdate struct {
	FullName *string
	Phone    *string
	Email    *string
	City     *primitive.ObjectID
}
