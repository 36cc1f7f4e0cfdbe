package postgres

import (
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/testutil"
)

func TestAssessmentEncoding(t *testing.T) {
	raw, err := encodeAssessment(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)

	decoded, err := decodeAssessment(nil)
	require.NoError(t, err)
	assert.Nil(t, decoded)

	in := &model.Assessment{
		IsEligible:              true,
		RiskScore:               valueobject.RiskScore(22),
		RecommendedAmount:       testutil.D("10000000"),
		RecommendedInterestRate: testutil.D("13"),
		EvaluatedAt:             testutil.TestNow,
	}
	raw, err = encodeAssessment(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"risk_score":22`)

	out, err := decodeAssessment(raw)
	require.NoError(t, err)
	assert.Equal(t, in.RiskScore, out.RiskScore)
	assert.True(t, in.EvaluatedAt.Equal(out.EvaluatedAt))
	testutil.AssertDecimalEqual(t, in.RecommendedAmount, out.RecommendedAmount)

	_, err = decodeAssessment([]byte("{"))
	assert.Error(t, err)
}

func TestNullTime(t *testing.T) {
	assert.Nil(t, nullTime(time.Time{}))
	assert.True(t, timeOrZero(nil).IsZero())

	local := time.Date(2025, 2, 15, 7, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	got := nullTime(local)
	require.NotNil(t, got)
	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, local.Equal(timeOrZero(got)))
}

func TestNotFound(t *testing.T) {
	err := notFound(pgx.ErrNoRows, "loan account", "acc-1")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Contains(t, err.Error(), "acc-1")

	other := errors.New("connection reset")
	assert.Equal(t, other, notFound(other, "loan account", "acc-1"))
}

func TestParseCurrency(t *testing.T) {
	c, err := parseCurrency("")
	require.NoError(t, err)
	assert.True(t, c.IsZero())

	c, err = parseCurrency("JPY")
	require.NoError(t, err)
	assert.Equal(t, int32(0), c.Exponent())

	_, err = parseCurrency("usd")
	assert.Error(t, err)
}

func TestMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(Migrations, MigrationsDir+"/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(Migrations, MigrationsDir+"/*.down.sql")
	require.NoError(t, err)

	assert.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}
