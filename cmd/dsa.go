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
	"math"

	"github.com/notargets/sobolsa/model_problems"
	"github.com/notargets/sobolsa/results"
	"github.com/notargets/sobolsa/sensitivity"
	"github.com/notargets/sobolsa/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type DSARun struct {
	ModelName string
	RBFile    string
	ICFile    string
	Param     string
	Min, Max  float64 // NaN for the model bound
	N         int
	Output    string // empty for deterministic_analysis_<param>.csv
	Threads   int
	Run       types.RunOptions
}

// DSACmd represents the dsa command
var DSACmd = &cobra.Command{
	Use:   "dsa",
	Short: "Deterministic sweep of one parameter",
	Long: `
Evaluates the model along evenly spaced values of one parameter, the others
held at their baseline, and writes param,output as CSV (or XLSX for a .xlsx
output path).

sobolsa dsa -m rb -r eye2brain.yaml -p h_amb -n 50`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		_, err = RunDSA(context.Background(), dsaFromViper(), logger)
		return
	},
}

var dsaFlags = map[string]string{
	"param":         "parameter.name",
	"min":           "parameter.min",
	"max":           "parameter.max",
	"sampling-size": "dsa.size",
	"output":        "dsa.output",
}

func init() {
	rootCmd.AddCommand(DSACmd)
	DSACmd.Flags().StringP("param", "p", "", "parameter to sweep")
	DSACmd.Flags().Float64("min", math.NaN(), "lower end of the sweep, default the model bound")
	DSACmd.Flags().Float64("max", math.NaN(), "upper end of the sweep, default the model bound")
	DSACmd.Flags().IntP("sampling-size", "n", 100, "number of points of the sweep")
	DSACmd.Flags().StringP("output", "o", "", "CSV or XLSX artifact, default deterministic_analysis_<param>.csv")
	for flag, key := range dsaFlags {
		_ = viper.BindPFlag(key, DSACmd.Flags().Lookup(flag))
	}
}

func dsaFromViper() *DSARun {
	return &DSARun{
		ModelName: viper.GetString("model"),
		RBFile:    viper.GetString("rb-file"),
		ICFile:    viper.GetString("inputConditionsFile"),
		Param:     viper.GetString("parameter.name"),
		Min:       viper.GetFloat64("parameter.min"),
		Max:       viper.GetFloat64("parameter.max"),
		N:         viper.GetInt("dsa.size"),
		Output:    viper.GetString("dsa.output"),
		Threads:   viper.GetInt("threads"),
		Run: types.RunOptions{
			Tolerance:      viper.GetFloat64("online-tol"),
			RBDim:          viper.GetInt("rb-dim"),
			ExportMatrices: viper.GetBool("export-matrices"),
		},
	}
}

// RunDSA sweeps the parameter from the model baseline and writes the artifact.
func RunDSA(ctx context.Context, dr *DSARun, logger *zap.Logger) (sw *results.Sweep, err error) {
	ip, err := readInput(dr.ICFile)
	if err != nil {
		return
	}
	model, _, err := setup(dr.ModelName, dr.RBFile, ip, logger)
	if err != nil {
		return
	}
	fmt.Printf("Running deterministic analysis for parameter %s of model %s, %d points\n",
		dr.Param, model.Name(), dr.N)
	sw, err = sensitivity.Sweep(ctx, model, model_problems.Baseline(model), dr.Param, dr.Min, dr.Max, dr.N,
		sensitivity.EvalOptions{Threads: dr.Threads, Run: dr.Run, Logger: logger})
	if err != nil {
		return nil, err
	}
	output := dr.Output
	if output == "" {
		output = results.SweepFileName(dr.Param)
	}
	if err = sw.Write(output); err != nil {
		return nil, err
	}
	fmt.Printf("sweep written to %s\n", output)
	return
}
