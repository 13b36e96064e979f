package services

import (
	"context"
	"testing"

	"github.com/harentsoaR/healthref-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func amount(v float64) *float64 { return &v }

func TestLedgerIncrementThenSet(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	u := f.customers.seed(models.Member{FullName: "Ravi", Commission: 100})
	ledger := NewLedger(f.registry)

	view, err := ledger.Increment(ctx, CommissionInput{ID: u.ID.Hex(), Role: "user", Amount: amount(50)})
	require.NoError(t, err)
	assert.Equal(t, 150.0, view.Commission)
	assert.Equal(t, "Ravi", view.FullName)

	view, err = ledger.Set(ctx, CommissionInput{ID: u.ID.Hex(), Role: "user", Amount: amount(20)})
	require.NoError(t, err)
	assert.Equal(t, 20.0, view.Commission)
	assert.Equal(t, 20.0, f.customers.get(u.ID).Commission)
}

func TestLedgerRoleAliasesAndNoFloor(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	d := f.doctors.seed(models.Doctor{DoctorName: "Dr. Rao", Commission: 10})
	p := f.affiliates.seed(models.Member{FullName: "Asha"})
	ledger := NewLedger(f.registry)

	view, err := ledger.Increment(ctx, CommissionInput{ID: d.ID.Hex(), Role: "practitioner", Amount: amount(-25)})
	require.NoError(t, err)
	assert.Equal(t, -15.0, view.Commission)
	assert.Equal(t, "Dr. Rao", view.DoctorName)

	view, err = ledger.Set(ctx, CommissionInput{ID: p.ID.Hex(), Role: "Partner", Amount: amount(0)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, view.Commission)
}

func TestLedgerRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	u := f.customers.seed(models.Member{Commission: 100})
	ledger := NewLedger(f.registry)

	tests := []struct {
		name string
		in   CommissionInput
		kind error
	}{
		{name: "unknown role", in: CommissionInput{ID: u.ID.Hex(), Role: "unknown", Amount: amount(5)}, kind: ErrValidation},
		{name: "admin role", in: CommissionInput{ID: u.ID.Hex(), Role: "admin", Amount: amount(5)}, kind: ErrValidation},
		{name: "missing id", in: CommissionInput{Role: "user", Amount: amount(5)}, kind: ErrValidation},
		{name: "missing role", in: CommissionInput{ID: u.ID.Hex(), Amount: amount(5)}, kind: ErrValidation},
		{name: "missing amount", in: CommissionInput{ID: u.ID.Hex(), Role: "user"}, kind: ErrValidation},
		{name: "malformed id", in: CommissionInput{ID: "nope", Role: "user", Amount: amount(5)}, kind: ErrValidation},
		{name: "wrong collection", in: CommissionInput{ID: u.ID.Hex(), Role: "doctor", Amount: amount(5)}, kind: ErrNotFound},
		{name: "unknown account", in: CommissionInput{ID: primitive.NewObjectID().Hex(), Role: "user", Amount: amount(5)}, kind: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.Increment(ctx, tt.in)
			assert.ErrorIs(t, err, tt.kind)
			_, err = ledger.Set(ctx, tt.in)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, 100.0, f.customers.get(u.ID).Commission)
		})
	}
}
