package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking is an appointment request placed by a customer. It is never
// updated after creation.
type Booking struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Name               string              `bson:"name" json:"name"`
	City               primitive.ObjectID  `bson:"city" json:"city"`
	Relation           string              `bson:"relation" json:"relation"`
	Age                int                 `bson:"age" json:"age"`
	TreatmentCondition primitive.ObjectID  `bson:"treatmentCondition" json:"treatmentCondition"`
	DoctorID           *primitive.ObjectID `bson:"doctorId" json:"doctorId"`
	Date               time.Time           `bson:"date" json:"date"`
	Gender             string              `bson:"gender" json:"gender"`
	UsedReferral       *string             `bson:"usedReferral" json:"usedReferral"` // verbatim, resolved on read
	CreatedBy          primitive.ObjectID  `bson:"createdBy" json:"createdBy"`
	CreatedAt          time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// BookingInput is the raw booking request as submitted by a customer.
type BookingInput struct {
	Name               string
	CityID             string
	Relation           string
	Age                int
	TreatmentCondition string
	DoctorID           string
	Date               string
	Gender             string
	UsedReferral       string
}

// BookingView is a booking decorated with the referrer its code resolves to today.
type BookingView struct {
	Booking    `bson:",inline"`
	ReferredBy *ReferralOwner `json:"referredBy"`
}
