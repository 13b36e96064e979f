package services

import (
	"context"
	"errors"
	"testing"

	"github.com/harentsoaR/healthref-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnroll(t *testing.T) {
	ctx := context.Background()

	t.Run("retries when the code is taken in the same collection", func(t *testing.T) {
		f := newFixture()
		f.customers.seed(models.Member{ReferralCode: "111111", Email: "a@x.io", Phone: "1"})
		f.registry.newCode = codes("111111", "111111", "222222")

		svc := NewMemberService(models.Customer, MemberDeps{Members: f.customers, Registry: f.registry, Cities: idSet{}})
		m := &models.Member{Email: "b@x.io", Phone: "2"}
		code, err := f.registry.Enroll(ctx, func(ctx context.Context, code string) error {
			m.ID = primitive.NewObjectID()
			m.ReferralCode = code
			return svc.Members.Create(ctx, m)
		})
		require.NoError(t, err)
		assert.Equal(t, "222222", code)
		assert.Equal(t, 3, f.customers.createAttempts)
		assert.Equal(t, 2, f.customers.count())
	})

	t.Run("gives up after the attempt cap", func(t *testing.T) {
		f := newFixture()
		f.customers.seed(models.Member{ReferralCode: "111111"})
		f.registry.newCode = codes("111111")

		_, err := f.registry.Enroll(ctx, func(ctx context.Context, code string) error {
			return f.customers.Create(ctx, &models.Member{ID: primitive.NewObjectID(), ReferralCode: code, Email: "n@x.io", Phone: "9"})
		})
		assert.ErrorIs(t, err, ErrCodeSpaceExhausted)
		assert.Equal(t, maxCodeAttempts, f.customers.createAttempts)
	})

	t.Run("other errors are returned without retry", func(t *testing.T) {
		f := newFixture()
		boom := errors.New("boom")
		calls := 0
		_, err := f.registry.Enroll(ctx, func(context.Context, string) error {
			calls++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("codes are unique per collection only", func(t *testing.T) {
		f := newFixture()
		f.customers.seed(models.Member{ReferralCode: "123456"})
		f.registry.newCode = codes("123456")

		d := &models.Doctor{Email: "doc@x.io"}
		code, err := f.registry.Enroll(ctx, func(ctx context.Context, code string) error {
			d.ID = primitive.NewObjectID()
			d.ReferralCode = code
			return f.doctors.Create(ctx, d)
		})
		require.NoError(t, err)
		assert.Equal(t, "123456", code)
	})
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		customer  string
		doctor    string
		affiliate string
		code      string
		want      models.Variant
		wantErr   error
	}{
		{name: "affiliate only", affiliate: "300000", code: "300000", want: models.Affiliate},
		{name: "doctor only", doctor: "200000", code: "200000", want: models.Practitioner},
		{name: "customer beats affiliate", customer: "400000", affiliate: "400000", code: "400000", want: models.Customer},
		{name: "customer beats doctor", customer: "500000", doctor: "500000", code: "500000", want: models.Customer},
		{name: "doctor beats affiliate", doctor: "600000", affiliate: "600000", code: "600000", want: models.Practitioner},
		{name: "unknown", customer: "700000", code: "999999", wantErr: ErrReferralNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.customer != "" {
				f.customers.seed(models.Member{ReferralCode: tt.customer})
			}
			if tt.doctor != "" {
				f.doctors.seed(models.Doctor{ReferralCode: tt.doctor})
			}
			if tt.affiliate != "" {
				f.affiliates.seed(models.Member{ReferralCode: tt.affiliate})
			}

			owner, err := f.registry.Resolve(ctx, tt.code)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, owner.Variant)
			assert.Equal(t, tt.want.Role(), owner.Role)
		})
	}

	t.Run("store failure is not a miss", func(t *testing.T) {
		f := newFixture()
		boom := errors.New("network down")
		f.customers.findErr = boom
		f.affiliates.seed(models.Member{ReferralCode: "300000"})

		_, err := f.registry.Resolve(ctx, "300000")
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrReferralNotFound)
	})
}

func TestRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	referrer := f.customers.seed(models.Member{ReferralCode: "123456"})
	customer := primitive.NewObjectID()

	owner, err := f.registry.Resolve(ctx, "123456")
	require.NoError(t, err)

	changed, err := f.registry.Record(ctx, owner, customer)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = f.registry.Record(ctx, owner, customer)
	require.NoError(t, err)
	assert.False(t, changed)

	assert.Equal(t, []primitive.ObjectID{customer}, f.customers.get(referrer.ID).Referrals)

	t.Run("non-customer owners are left alone", func(t *testing.T) {
		partner := f.affiliates.seed(models.Member{ReferralCode: "654321"})
		owner, err := f.registry.Resolve(ctx, "654321")
		require.NoError(t, err)

		changed, err := f.registry.Record(ctx, owner, customer)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Empty(t, f.affiliates.get(partner.ID).Referrals)
		assert.Zero(t, f.affiliates.addCalls)
	})
}
