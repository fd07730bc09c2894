/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/notargets/sobolsa/InputParameters"
	"github.com/notargets/sobolsa/distribution"
	"github.com/notargets/sobolsa/model_problems"
	"github.com/notargets/sobolsa/results"
	"github.com/notargets/sobolsa/sensitivity"
	"github.com/notargets/sobolsa/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type SobolRun struct {
	ModelName string
	RBFile    string
	ICFile    string
	Output    string // empty picks the default artifact name of the algorithm
	Config    sensitivity.Config
}

// SobolCmd represents the sobol command
var SobolCmd = &cobra.Command{
	Use:   "sobol",
	Short: "Sobol indices by polynomial chaos or Saltelli pick-freeze",
	Long: `
Draws samples of the model parameters, evaluates the model and estimates the
first and total order Sobol indices, refining the sampling size until the
indices stabilize or bootstrapping a single sample for confidence intervals.

sobolsa sobol -m ishigami -a saltelli -n 4096`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		_, err = RunSobol(context.Background(), sobolFromViper(), logger)
		return
	},
}

// sobolFlags maps each sobol flag to its configuration key
var sobolFlags = map[string]string{
	"sampling-size":   "sampling.size",
	"sampling-type":   "sampling.type",
	"second-order":    "sampling.second-order",
	"algo":            "algo",
	"nrun":            "algo.nrun",
	"adapt-tol":       "adapt.tol",
	"max-iterations":  "adapt.max-iterations",
	"bootstrap":       "bootstrap",
	"bootstrap-size":  "bootstrap.size",
	"bootstrap-alpha": "bootstrap.alpha",
	"bootstrap-eps":   "bootstrap.eps",
	"degree":          "chaos.degree",
	"validation-size": "validation.size",
	"confidence":      "confidence",
	"workers":         "workers",
	"seed":            "seed",
	"output":          "output",
	"dump-sample":     "dump-sample",
}

func init() {
	rootCmd.AddCommand(SobolCmd)
	var (
		def = sensitivity.DefaultConfig()
	)
	SobolCmd.Flags().IntP("sampling-size", "n", def.SamplingSize, "sampling size of the first batch, per worker")
	SobolCmd.Flags().String("sampling-type", "", "random or design, default follows the algorithm")
	SobolCmd.Flags().Bool("second-order", def.SecondOrder, "estimate second order indices")
	SobolCmd.Flags().StringP("algo", "a", def.Algo, "polynomial-chaos or saltelli")
	SobolCmd.Flags().Int("nrun", def.NRun, "independent estimates per adaptive iteration")
	SobolCmd.Flags().Float64("adapt-tol", def.AdaptTol, "run to run spread of the first order indices ending the refinement")
	SobolCmd.Flags().Int("max-iterations", def.MaxIterations, "maximum number of adaptive iterations")
	SobolCmd.Flags().BoolP("bootstrap", "b", def.Bootstrap, "bootstrap a single sample instead of refining")
	SobolCmd.Flags().Int("bootstrap-size", def.BootstrapSize, "bootstrap replicates")
	SobolCmd.Flags().Float64("bootstrap-alpha", def.BootstrapAlpha, "coverage of the bootstrap intervals")
	SobolCmd.Flags().Float64("bootstrap-eps", def.BootstrapEps, "replicates with an index outside (eps, 1-eps) are dropped")
	SobolCmd.Flags().Int("degree", def.Degree, "total degree of the polynomial chaos basis")
	SobolCmd.Flags().Int("validation-size", def.ValidationSize, "held out points for the Q2 predictivity factor")
	SobolCmd.Flags().Float64("confidence", def.Confidence, "confidence level of the Saltelli intervals")
	SobolCmd.Flags().IntP("workers", "w", def.Workers, "workers, each drawing and evaluating its own sample")
	SobolCmd.Flags().Uint64("seed", 0, "base seed, 0 for a time based seed")
	SobolCmd.Flags().StringP("output", "o", "", "JSON artifact, default sensitivity.json or sensitivity-saltelli.json")
	SobolCmd.Flags().String("dump-sample", "", "write the final merged sample as CSV, zstd compressed for a .zst path")
	for flag, key := range sobolFlags {
		_ = viper.BindPFlag(key, SobolCmd.Flags().Lookup(flag))
	}
}

func sobolFromViper() (sr *SobolRun) {
	cfg := sensitivity.Config{
		Algo:           viper.GetString("algo"),
		SamplingSize:   viper.GetInt("sampling.size"),
		SamplingType:   viper.GetString("sampling.type"),
		SecondOrder:    viper.GetBool("sampling.second-order"),
		NRun:           viper.GetInt("algo.nrun"),
		AdaptTol:       viper.GetFloat64("adapt.tol"),
		MaxIterations:  viper.GetInt("adapt.max-iterations"),
		Bootstrap:      viper.GetBool("bootstrap"),
		BootstrapSize:  viper.GetInt("bootstrap.size"),
		BootstrapAlpha: viper.GetFloat64("bootstrap.alpha"),
		BootstrapEps:   viper.GetFloat64("bootstrap.eps"),
		Degree:         viper.GetInt("chaos.degree"),
		ValidationSize: viper.GetInt("validation.size"),
		Confidence:     viper.GetFloat64("confidence"),
		Workers:        viper.GetInt("workers"),
		Threads:        viper.GetInt("threads"),
		Seed:           viper.GetUint64("seed"),
		Run: types.RunOptions{
			Tolerance:      viper.GetFloat64("online-tol"),
			RBDim:          viper.GetInt("rb-dim"),
			ExportMatrices: viper.GetBool("export-matrices"),
		},
		DumpSample: viper.GetString("dump-sample"),
	}
	sr = &SobolRun{
		ModelName: viper.GetString("model"),
		RBFile:    viper.GetString("rb-file"),
		ICFile:    viper.GetString("inputConditionsFile"),
		Output:    viper.GetString("output"),
		Config:    cfg,
	}
	return
}

// DefaultOutput is the JSON artifact name used when none is given.
func DefaultOutput(algo string) string {
	if algo == sensitivity.AlgoSaltelli {
		return "sensitivity-saltelli.json"
	}
	return "sensitivity.json"
}

// RunSobol runs the analysis, prints the summary table and writes the JSON artifact.
func RunSobol(ctx context.Context, sr *SobolRun, logger *zap.Logger) (r *results.Results, err error) {
	var (
		ip    *InputParameters.InputParameters
		model types.Model
		joint *distribution.Joint
	)
	if ip, err = readInput(sr.ICFile); err != nil {
		return
	}
	if ip != nil {
		ip.Apply(&sr.Config)
	}
	if model, joint, err = setup(sr.ModelName, sr.RBFile, ip, logger); err != nil {
		return
	}
	joint.Print()
	if r, err = sensitivity.Analyze(ctx, sr.Config, model, joint, logger); err != nil {
		return nil, err
	}
	r.Print()
	output := sr.Output
	if output == "" {
		output = DefaultOutput(sr.Config.Algo)
	}
	if err = r.WriteJSON(output); err != nil {
		return nil, err
	}
	fmt.Printf("results written to %s\n", output)
	return
}

func readInput(path string) (ip *InputParameters.InputParameters, err error) {
	if path == "" {
		return
	}
	if ip, err = InputParameters.Read(path); err != nil {
		return nil, err
	}
	ip.Print()
	return
}

// setup loads the model named on the command line, or in the input file when
// the command line names none, and builds its joint distribution. Table
// entries of the input file replace the default policy of the model.
func setup(name, rbFile string, ip *InputParameters.InputParameters, logger *zap.Logger) (model types.Model, joint *distribution.Joint, err error) {
	if ip != nil {
		if name == "" {
			name = ip.Model
		}
		if rbFile == "" {
			rbFile = ip.RBFile
		}
	}
	if model, err = model_problems.NewModel(name, rbFile, logger); err != nil {
		return
	}
	table := distribution.Table{}
	for k, v := range model_problems.DefaultTable(model) {
		table[k] = v
	}
	if ip != nil {
		for k, v := range ip.Distributions {
			table[k] = v
		}
	}
	joint, err = distribution.Build(model.ParameterNames(), model.Min(), model.Max(), table)
	return
}
