package utils

import "runtime"

// PartitionMap splits the index range [0, MaxIndex) into ParallelDegree
// contiguous buckets whose sizes differ by at most one.
type PartitionMap struct {
	MaxIndex       int
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of each bucket
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

// ParallelDegree is the number of goroutines to use for maxIndex items when
// at most procLimit are wanted, procLimit <= 0 meaning one per CPU. No bucket is left empty.
func ParallelDegree(procLimit, maxIndex int) (np int) {
	np = runtime.NumCPU()
	if procLimit > 0 {
		np = procLimit
	}
	if np > maxIndex {
		np = maxIndex
	}
	if np < 1 {
		np = 1
	}
	return
}

// Split1D returns the bucket of threadNum, the first MaxIndex % ParallelDegree buckets carry one extra item
func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	var (
		Npart     = pm.MaxIndex / pm.ParallelDegree
		remainder = pm.MaxIndex % pm.ParallelDegree
	)
	bucket[0] = threadNum*Npart + min(threadNum, remainder)
	bucket[1] = bucket[0] + Npart
	if threadNum < remainder {
		bucket[1]++
	}
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetBucketDimension(bn int) int {
	kMin, kMax := pm.GetBucketRange(bn)
	return kMax - kMin
}

// GetBucket finds the bucket holding index k, -1 when k is out of range
func (pm *PartitionMap) GetBucket(k int) (bucketNum int) {
	if k < 0 || k >= pm.MaxIndex {
		return -1
	}
	var (
		Npart     = pm.MaxIndex / pm.ParallelDegree
		remainder = pm.MaxIndex % pm.ParallelDegree
		wide      = remainder * (Npart + 1) // items held by the larger buckets
	)
	if k < wide {
		return k / (Npart + 1)
	}
	return remainder + (k-wide)/Npart
}
