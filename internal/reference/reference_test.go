package reference

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFullReference(t *testing.T) {
	ref, err := Parse("user_42_qty10_cupom7", "")
	require.NoError(t, err)
	assert.Equal(t, uint(42), ref.UserID)
	assert.Equal(t, int64(10), ref.Quantity)
	require.NotNil(t, ref.CouponID)
	assert.Equal(t, uint(7), *ref.CouponID)
}

func TestParseCaseInsensitiveAnyOrder(t *testing.T) {
	ref, err := Parse("CUPOM3_QTY5_USER_9_1700000000000", "")
	require.NoError(t, err)
	assert.Equal(t, uint(9), ref.UserID)
	assert.Equal(t, int64(5), ref.Quantity)
	require.NotNil(t, ref.CouponID)
	assert.Equal(t, uint(3), *ref.CouponID)
}

func TestParseQuantityFallbacks(t *testing.T) {
	cases := []struct {
		name        string
		ref         string
		description string
		want        int64
	}{
		{name: "reference wins", ref: "user_1_qty4", description: "Compra de 9 créditos", want: 4},
		{name: "description fallback", ref: "user_1_123", description: "Pacote 25 cr", want: 25},
		{name: "description with space", ref: "user_1_123", description: "Compra de 3 créditos", want: 3},
		{name: "zero qty falls through", ref: "user_1_qty0", description: "", want: 1},
		{name: "default one", ref: "user_1_123", description: "sem quantidade", want: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ref, err := Parse(tc.ref, tc.description)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ref.Quantity)
		})
	}
}

func TestParseWithoutCoupon(t *testing.T) {
	ref, err := Parse("user_5_1700000000000_qty2", "")
	require.NoError(t, err)
	assert.Nil(t, ref.CouponID)
}

func TestParseMissingUser(t *testing.T) {
	for _, input := range []string{"", "qty10_cupom7", "user_abc_qty1", "user_0_qty1", "user_12"} {
		_, err := Parse(input, "10 cr")
		assert.ErrorIs(t, err, ErrMissingUser, "input %q", input)
	}
}

func TestBuildRoundTrip(t *testing.T) {
	couponID := uint(11)
	now := time.UnixMilli(1700000000123)

	built := Build(42, 3, &couponID, now)
	assert.Equal(t, "user_42_1700000000123_qty3_cupom11", built)

	ref, err := Parse(built, "")
	require.NoError(t, err)
	assert.Equal(t, uint(42), ref.UserID)
	assert.Equal(t, int64(3), ref.Quantity)
	require.NotNil(t, ref.CouponID)
	assert.Equal(t, couponID, *ref.CouponID)

	assert.Equal(t, "user_7_1700000000123_qty1", Build(7, 1, nil, now))
}
