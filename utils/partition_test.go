package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	{ // Bucket sizes
		getHisto := func(K, Np int) (histo map[int]int) {
			pm := NewPartitionMap(Np, K)
			histo = make(map[int]int)
			for np := 0; np < pm.ParallelDegree; np++ {
				histo[pm.GetBucketDimension(np)]++
			}
			return
		}
		getTotal := func(histo map[int]int) (total int) {
			for key, count := range histo {
				total += key * count
			}
			return
		}
		assert.Equal(t, map[int]int{0: 30, 1: 2}, getHisto(2, 32))
		assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
		assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
		for n := 64; n < 5000; n++ {
			var (
				keys   [2]float64
				keyNum int
			)
			histo := getHisto(n, 32)
			for key := range histo {
				keys[keyNum] = float64(key)
				keyNum++
			}
			if keyNum == 2 {
				assert.Equal(t, 1., math.Abs(keys[0]-keys[1])) // Maximum imbalance of 1
			}
			assert.Equal(t, n, getTotal(histo))
		}
	}
	{ // Buckets are contiguous and GetBucket inverts them
		for maxIndex := 10; maxIndex < 500; maxIndex++ {
			pm := NewPartitionMap(7, maxIndex)
			assert.Equal(t, 0, pm.Partitions[0][0])
			assert.Equal(t, maxIndex, pm.Partitions[6][1])
			for k := 0; k < maxIndex; k++ {
				bn := pm.GetBucket(k)
				kMin, kMax := pm.GetBucketRange(bn)
				assert.True(t, k >= kMin && k < kMax)
			}
			assert.Equal(t, -1, pm.GetBucket(maxIndex))
		}
	}
	{
		assert.Equal(t, 3, ParallelDegree(8, 3))
		assert.Equal(t, 2, ParallelDegree(2, 100))
		assert.Equal(t, 1, ParallelDegree(4, 0))
		assert.True(t, ParallelDegree(0, 1000) >= 1)
	}
	{
		assert.True(t, IsNan([]float64{1, math.NaN()}))
		assert.True(t, IsNan([][]float64{{1}, {math.NaN()}}))
		assert.False(t, IsNan(2.))
		assert.False(t, IsFinite(math.Inf(-1)))
		assert.True(t, IsFinite(1))
		assert.NotEmpty(t, GetMemUsage())
	}
}
