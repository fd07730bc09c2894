package types

// RunOptions are the per call controls of a model evaluation.
type RunOptions struct {
	Tolerance      float64 // online tolerance of adaptive reduced models
	RBDim          int     // reduced basis dimension, <= 0 lets the model choose
	ExportMatrices bool    // log the reduced operators assembled for the call
}

// Result is the part of a model evaluation consumed by the analysis.
type Result struct {
	Output     float64
	ErrorBound float64
}

// Model evaluates a scalar output for a parameter vector. Run must be safe for
// concurrent use.
type Model interface {
	Name() string
	Dimension() int
	ParameterNames() []string
	Min() []float64
	Max() []float64
	Run(mu ParameterVector, opts RunOptions) (Result, error)
}
