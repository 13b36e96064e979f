package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type City struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type DurationRange struct {
	DurationMin string `bson:"durationMin" json:"durationMin"`
	DurationMax string `bson:"durationMax" json:"durationMax"`
}

type CostRange struct {
	CostMin float64 `bson:"costMin" json:"costMin"`
	CostMax float64 `bson:"costMax" json:"costMax"`
}

type Treatment struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name              string             `bson:"name" json:"name"`
	Image             string             `bson:"image,omitempty" json:"image,omitempty"`
	TreatmentDuration []DurationRange    `bson:"treatmentDuration" json:"treatmentDuration"`
	TreatmentCost     []CostRange        `bson:"treatmentCost" json:"treatmentCost"`
	Overview          string             `bson:"overview,omitempty" json:"overview,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Condition groups the treatments offered for one medical condition.
type Condition struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name       string               `bson:"name" json:"name"`
	Image      string               `bson:"image,omitempty" json:"image,omitempty"`
	Treatments []primitive.ObjectID `bson:"treatments" json:"treatments"`
	Overview   string               `bson:"overview,omitempty" json:"overview,omitempty"`
	CreatedAt  time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time            `bson:"updatedAt" json:"updatedAt"`
}

type Speciality struct {
	WebsiteURL  string `bson:"websiteURL,omitempty" json:"websiteURL,omitempty"`
	PhoneNumber string `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
}

type Hospital struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	HospitalName           string             `bson:"hospitalName" json:"hospitalName"`
	Address                string             `bson:"address" json:"address"`
	Images                 []string           `bson:"images" json:"images"`
	Conditions             primitive.ObjectID `bson:"conditions" json:"conditions"`
	Overview               string             `bson:"overview,omitempty" json:"overview,omitempty"`
	Timings                string             `bson:"timings,omitempty" json:"timings,omitempty"`
	SpecialitiesTreatments []Speciality       `bson:"specialitiesTreatments" json:"specialitiesTreatments"`
	CreatedAt              time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt              time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Banner struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image" json:"image"`
	URL       string             `bson:"url" json:"url"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AccountDetails are the bank coordinates an account holder is paid out to.
type AccountDetails struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	BankName       string             `bson:"bankName" json:"bankName"`
	AccountNumber  string             `bson:"accountNumber" json:"accountNumber"`
	IFSCCode       string             `bson:"ifscCode" json:"ifscCode"`
	UPI            string             `bson:"upi" json:"upi"`
	CreatedBy      primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedByModel string             `bson:"createdByModel" json:"createdByModel"` // role of the owner
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func stamp(id *primitive.ObjectID, created, updated *time.Time, now time.Time) {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

// Stamp assigns an id on first save and refreshes the timestamps.
func (c *City) Stamp(now time.Time) { stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt, now) }

func (t *Treatment) Stamp(now time.Time) { stamp(&t.ID, &t.CreatedAt, &t.UpdatedAt, now) }

func (c *Condition) Stamp(now time.Time) { stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt, now) }

func (h *Hospital) Stamp(now time.Time) { stamp(&h.ID, &h.CreatedAt, &h.UpdatedAt, now) }

func (b *Banner) Stamp(now time.Time) { stamp(&b.ID, &b.CreatedAt, &b.UpdatedAt, now) }

func (d *AccountDetails) Stamp(now time.Time) { stamp(&d.ID, &d.CreatedAt, &d.UpdatedAt, now) }
