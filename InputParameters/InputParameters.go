package InputParameters

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ghodss/yaml"
	"github.com/notargets/sobolsa/distribution"
	"github.com/notargets/sobolsa/sensitivity"
	"github.com/notargets/sobolsa/types"
	"github.com/pkg/errors"
)

// Parameters obtained from the YAML input file. Fields left out keep the
// value given on the command line; pointers mark the booleans that can be
// switched off from the file.
type InputParameters struct {
	Title          string             `json:"Title"`
	Model          string             `json:"Model"`
	RBFile         string             `json:"RBFile"`
	Algo           string             `json:"Algo"`
	SamplingSize   int                `json:"SamplingSize"`
	SamplingType   string             `json:"SamplingType"`
	SecondOrder    *bool              `json:"SecondOrder"`
	NRun           int                `json:"NRun"`
	AdaptTol       float64            `json:"AdaptTol"`
	MaxIterations  int                `json:"MaxIterations"`
	Bootstrap      *bool              `json:"Bootstrap"`
	BootstrapSize  int                `json:"BootstrapSize"`
	BootstrapAlpha float64            `json:"BootstrapAlpha"`
	Degree         int                `json:"Degree"`
	ValidationSize int                `json:"ValidationSize"`
	Confidence     float64            `json:"Confidence"`
	Workers        int                `json:"Workers"`
	Seed           uint64             `json:"Seed"`
	OnlineTol      float64            `json:"OnlineTol"`
	RBDim          *int               `json:"RBDim"`
	Distributions  distribution.Table `json:"Distributions"` // keyed by parameter name
}

func (ip *InputParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ip); err != nil {
		return errors.Wrapf(types.ErrConfig, "input file: %v", err)
	}
	return nil
}

func Read(path string) (ip *InputParameters, err error) {
	var (
		data []byte
	)
	if data, err = os.ReadFile(path); err != nil {
		return nil, errors.Wrapf(types.ErrConfig, "reading input file %s: %v", path, err)
	}
	ip = &InputParameters{}
	if err = ip.Parse(data); err != nil {
		return nil, errors.Wrap(err, path)
	}
	// A relative model file is found next to the input file
	if ip.RBFile != "" && !filepath.IsAbs(ip.RBFile) {
		ip.RBFile = filepath.Join(filepath.Dir(path), ip.RBFile)
	}
	return
}

// Apply overrides the analysis settings with the ones present in the file.
func (ip *InputParameters) Apply(cfg *sensitivity.Config) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}
	setFloat := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	setString(&cfg.Algo, ip.Algo)
	setString(&cfg.SamplingType, ip.SamplingType)
	setInt(&cfg.SamplingSize, ip.SamplingSize)
	setInt(&cfg.NRun, ip.NRun)
	setInt(&cfg.MaxIterations, ip.MaxIterations)
	setInt(&cfg.BootstrapSize, ip.BootstrapSize)
	setInt(&cfg.Degree, ip.Degree)
	setInt(&cfg.ValidationSize, ip.ValidationSize)
	setInt(&cfg.Workers, ip.Workers)
	setFloat(&cfg.AdaptTol, ip.AdaptTol)
	setFloat(&cfg.BootstrapAlpha, ip.BootstrapAlpha)
	setFloat(&cfg.Confidence, ip.Confidence)
	setFloat(&cfg.Run.Tolerance, ip.OnlineTol)
	if ip.SecondOrder != nil {
		cfg.SecondOrder = *ip.SecondOrder
	}
	if ip.Bootstrap != nil {
		cfg.Bootstrap = *ip.Bootstrap
	}
	if ip.RBDim != nil {
		cfg.Run.RBDim = *ip.RBDim
	}
	if ip.Seed != 0 {
		cfg.Seed = ip.Seed
	}
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t\t= Model\n", ip.Model)
	if ip.RBFile != "" {
		fmt.Printf("[%s]\t= RBFile\n", ip.RBFile)
	}
	if ip.Algo != "" {
		fmt.Printf("[%s]\t= Algo\n", ip.Algo)
	}
	if ip.SamplingSize != 0 {
		fmt.Printf("[%d]\t\t\t= Sampling Size\n", ip.SamplingSize)
	}
	keys := make([]string, len(ip.Distributions))
	i := 0
	for k := range ip.Distributions {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("Distributions[%s] = %s\n", key, formatSpec(ip.Distributions[key]))
	}
}

func formatSpec(s distribution.Spec) (out string) {
	out = string(s.Family)
	opt := func(name string, v *float64) {
		if v != nil {
			out += fmt.Sprintf(" %s=%g", name, *v)
		}
	}
	if s.Family != "" && s.Family != distribution.Uniform && s.Family != distribution.LogUniform {
		out += fmt.Sprintf(" mu=%g sigma=%g", s.Mu, s.Sigma)
		if s.Gamma != 0 {
			out += fmt.Sprintf(" gamma=%g", s.Gamma)
		}
	}
	opt("min", s.Min)
	opt("max", s.Max)
	opt("lower", s.Lower)
	opt("upper", s.Upper)
	if s.Free {
		out += " free"
	}
	return
}
