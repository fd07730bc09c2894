package InputParameters

import (
	"path/filepath"
	"testing"

	"github.com/notargets/sobolsa/distribution"
	"github.com/notargets/sobolsa/sensitivity"
	"github.com/notargets/sobolsa/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	ip, err := Read("testdata/eye2brain.yaml")
	require.NoError(t, err)
	assert.Equal(t, "rb", ip.Model)
	assert.Equal(t, filepath.Join("..", "model_problems", "ReducedBasis", "testdata", "eye2brain.yaml"), ip.RBFile)
	assert.Equal(t, 128, ip.SamplingSize)
	require.NotNil(t, ip.SecondOrder)
	assert.False(t, *ip.SecondOrder)
	require.Len(t, ip.Distributions, 4)
	{
		s := ip.Distributions["h_amb"]
		assert.Equal(t, distribution.TruncatedLogNormal, s.Family)
		assert.Equal(t, 0.4, s.Sigma)
		require.NotNil(t, s.Lower)
		assert.Equal(t, 8., *s.Lower)
		assert.Nil(t, s.Min)
	}
	{
		s := ip.Distributions["T_bl"]
		assert.Equal(t, distribution.Uniform, s.Family)
		assert.Equal(t, 309., *s.Min)
	}
	assert.Equal(t, "truncated-lognormal mu=2.222585092994046 sigma=0.4 lower=8 upper=100", formatSpec(ip.Distributions["h_amb"]))
	assert.Equal(t, "loguniform", formatSpec(ip.Distributions["E"]))
	ip.Print()
}

func TestApply(t *testing.T) {
	ip, err := Read("testdata/eye2brain.yaml")
	require.NoError(t, err)
	cfg := sensitivity.DefaultConfig()
	cfg.SecondOrder = true
	cfg.Threads = 3
	ip.Apply(&cfg)
	assert.Equal(t, 128, cfg.SamplingSize)
	assert.False(t, cfg.SecondOrder)
	assert.Equal(t, 4, cfg.NRun)
	assert.Equal(t, 0.005, cfg.AdaptTol)
	assert.Equal(t, 2, cfg.Degree)
	assert.Equal(t, 200, cfg.ValidationSize)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, uint64(1234), cfg.Seed)
	assert.Equal(t, 1.e-4, cfg.Run.Tolerance)
	assert.Equal(t, 3, cfg.Run.RBDim)
	// Settings absent from the file are kept
	assert.Equal(t, 3, cfg.Threads)
	assert.Equal(t, 100, cfg.BootstrapSize)
	assert.Equal(t, 0.95, cfg.Confidence)
	assert.NoError(t, cfg.Validate())
}

func TestParseErrors(t *testing.T) {
	{
		var ip InputParameters
		err := ip.Parse([]byte("SamplingSize: [1, 2"))
		assert.True(t, errors.Is(err, types.ErrConfig))
	}
	{
		_, err := Read("testdata/missing.yaml")
		assert.True(t, errors.Is(err, types.ErrConfig))
	}
}
