package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCrypto_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterCrypto(reg))
	require.NoError(t, RegisterCrypto(reg))
}

func TestResult(t *testing.T) {
	assert.Equal(t, ResultOK, Result(nil))
	assert.Equal(t, ResultError, Result(errors.New("x")))
}

func TestKeyRotationsCounter(t *testing.T) {
	before := testutil.ToFloat64(KeyRotations.WithLabelValues(ResultOK))
	KeyRotations.WithLabelValues(ResultOK).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(KeyRotations.WithLabelValues(ResultOK)))
}
