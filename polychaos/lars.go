package polychaos

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// larsOrder returns columns 1..P-1 of Psi (column 0 is the constant term) in
// the order least angle regression activates them. The path stops after
// maxSteps activations, when the residual is uncorrelated with every inactive
// column, or when the active set becomes collinear.
func larsOrder(Psi *mat.Dense, y []float64, maxSteps int) (order []int) {
	n, P := Psi.Dims()
	m := P - 1
	if m == 0 || n == 0 {
		return
	}
	var (
		Xs         = mat.NewDense(n, m, nil)
		degenerate = make([]bool, m)
		isActive   = make([]bool, m)
		yc         = make([]float64, n)
		mu         = make([]float64, n)
		r          = make([]float64, n)
		c          = mat.NewVecDense(m, nil)
		active     []int
	)
	// Centered, unit norm copy of the non constant columns
	col := make([]float64, n)
	for j := 0; j < m; j++ {
		mat.Col(col, j+1, Psi)
		floats.AddConst(-stat.Mean(col, nil), col)
		norm := floats.Norm(col, 2)
		if norm < 1.e-12 {
			degenerate[j] = true
			continue
		}
		floats.Scale(1/norm, col)
		Xs.SetCol(j, col)
	}
	copy(yc, y)
	floats.AddConst(-stat.Mean(yc, nil), yc)
	cTol := 1.e-12 * math.Max(floats.Norm(yc, 2), 1.e-300)

	if maxSteps > m {
		maxSteps = m
	}
	for len(active) < maxSteps {
		floats.SubTo(r, yc, mu)
		c.MulVec(Xs.T(), mat.NewVecDense(n, r))

		best, C := -1, 0.
		for j := 0; j < m; j++ {
			if isActive[j] || degenerate[j] {
				continue
			}
			if a := math.Abs(c.AtVec(j)); a > C {
				best, C = j, a
			}
		}
		if best < 0 || C <= cTol {
			break
		}
		for _, j := range active {
			C = math.Max(C, math.Abs(c.AtVec(j)))
		}
		active = append(active, best)
		isActive[best] = true

		k := len(active)
		XA := mat.NewDense(n, k, nil)
		for a, j := range active {
			mat.Col(col, j, Xs)
			if c.AtVec(j) < 0 {
				floats.Scale(-1, col)
			}
			XA.SetCol(a, col)
		}
		var (
			G    mat.SymDense
			chol mat.Cholesky
			z    mat.VecDense
		)
		G.SymOuterK(1, XA.T())
		if ok := chol.Factorize(&G); !ok {
			// The new column is collinear with the active set
			active = active[:k-1]
			break
		}
		ones := mat.NewVecDense(k, nil)
		for a := 0; a < k; a++ {
			ones.SetVec(a, 1)
		}
		if err := chol.SolveVecTo(&z, ones); err != nil {
			active = active[:k-1]
			break
		}
		AA := 1. / math.Sqrt(mat.Dot(ones, &z))
		z.ScaleVec(AA, &z)
		var u, a mat.VecDense
		u.MulVec(XA, &z)
		a.MulVec(Xs.T(), &u)

		gamma := C / AA
		for j := 0; j < m; j++ {
			if isActive[j] || degenerate[j] {
				continue
			}
			cj, aj := c.AtVec(j), a.AtVec(j)
			for _, g := range [2]float64{(C - cj) / (AA - aj), (C + cj) / (AA + aj)} {
				if g > 1.e-15 && g < gamma {
					gamma = g
				}
			}
		}
		floats.AddScaled(mu, gamma, u.RawVector().Data)
	}
	order = make([]int, len(active))
	for i, j := range active {
		order[i] = j + 1
	}
	return
}

// selection is the outcome of scanning nested least squares models.
type selection struct {
	Columns []int     // columns of Psi retained, constant first
	Coefs   []float64 // least squares coefficients of the retained columns
	LOO     float64   // corrected leave-one-out error relative to the output variance
}

// selectNested fits the nested models {cols[0]}, {cols[0], cols[1]}, ... by an
// incremental Gram-Schmidt QR and keeps the one with the smallest corrected
// leave-one-out error. Columns that are linearly dependent on the previous
// ones are skipped.
func selectNested(Psi *mat.Dense, y []float64, cols []int) (sel selection) {
	var (
		n, _  = Psi.Dims()
		Q     [][]float64 // orthonormal columns
		R     [][]float64 // R[j] holds entries 0..j of column j of the triangular factor
		kept  []int
		zy    []float64 // Q^T y
		h     = make([]float64, n)
		res   = make([]float64, n)
		varY  = stat.Variance(y, nil)
		best  = math.Inf(1)
		bestK int
	)
	copy(res, y)
	for _, cj := range cols {
		v := mat.Col(nil, cj, Psi)
		orig := floats.Norm(v, 2)
		rcol := make([]float64, len(Q)+1)
		for pass := 0; pass < 2; pass++ {
			for i, q := range Q {
				rij := floats.Dot(q, v)
				rcol[i] += rij
				floats.AddScaled(v, -rij, q)
			}
		}
		nv := floats.Norm(v, 2)
		if nv == 0 || nv < 1.e-10*orig {
			continue
		}
		floats.Scale(1/nv, v)
		rcol[len(Q)] = nv
		Q = append(Q, v)
		R = append(R, rcol)
		kept = append(kept, cj)
		zj := floats.Dot(v, y)
		zy = append(zy, zj)
		floats.AddScaled(res, -zj, v)
		for i, vi := range v {
			h[i] += vi * vi
		}
		k := len(Q)
		if k >= n {
			break
		}
		loo := correctedLOO(res, h, traceInverseGram(R), k)
		if varY > 0 {
			loo /= varY
		}
		if loo < best || bestK == 0 {
			best, bestK = loo, k
		}
	}
	sel.Columns = kept[:bestK]
	sel.Coefs = backSubstitute(R[:bestK], zy[:bestK])
	sel.LOO = best
	return
}

// correctedLOO is the leave-one-out mean squared error scaled by the
// Chapelle correction n/(n-k) * (1 + tr((Psi^T Psi)^-1))
func correctedLOO(res, h []float64, trInv float64, k int) float64 {
	var (
		n   = len(res)
		sum float64
	)
	if n <= k {
		return math.Inf(1)
	}
	for i, r := range res {
		d := 1 - h[i]
		if d <= 1.e-12 {
			return math.Inf(1)
		}
		e := r / d
		sum += e * e
	}
	T := float64(n) / float64(n-k) * (1 + trInv)
	return sum / float64(n) * T
}

// traceInverseGram returns tr((R^T R)^-1) = ||R^-1||_F^2
func traceInverseGram(R [][]float64) (tr float64) {
	var (
		k  = len(R)
		T  = mat.NewTriDense(k, mat.Upper, nil)
		Ti mat.TriDense
	)
	for j, rcol := range R {
		for i := 0; i <= j; i++ {
			T.SetTri(i, j, rcol[i])
		}
	}
	if err := Ti.InverseTri(T); err != nil {
		return math.Inf(1)
	}
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			v := Ti.At(i, j)
			tr += v * v
		}
	}
	return
}

// backSubstitute solves R beta = z for the upper triangular factor stored by column
func backSubstitute(R [][]float64, z []float64) (beta []float64) {
	var (
		k = len(z)
	)
	beta = make([]float64, k)
	for j := k - 1; j >= 0; j-- {
		s := z[j]
		for l := j + 1; l < k; l++ {
			s -= R[l][j] * beta[l]
		}
		beta[j] = s / R[j][j]
	}
	return
}
