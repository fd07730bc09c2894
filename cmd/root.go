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
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile  string
	logger   = zap.NewNop()
	profiler interface{ Stop() }
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sobolsa",
	Short: "Global sensitivity analysis of parametric models",
	Long: `
Estimates first and total order Sobol indices of a model output, by a Saltelli
pick-freeze design or a sparse polynomial chaos expansion, and sweeps single
parameters for deterministic studies.

sobolsa sobol -m rb -r eye2brain.yaml
sobolsa dsa -m rb -r eye2brain.yaml -p h_bl`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		if logger, err = newLogger(viper.GetBool("verbose")); err != nil {
			return
		}
		switch mode := viper.GetString("profile"); mode {
		case "":
		case "cpu":
			profiler = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
		case "mem":
			profiler = profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook)
		default:
			return fmt.Errorf("unknown profile mode %q, want cpu or mem", mode)
		}
		return
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if profiler != nil {
			profiler.Stop()
		}
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sobolsa.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "development logging at debug level")
	rootCmd.PersistentFlags().String("profile", "", "write a cpu or mem profile to the current directory")
	rootCmd.PersistentFlags().StringP("model", "m", "", "model to analyze: additive, borehole, ishigami or rb")
	rootCmd.PersistentFlags().StringP("rb-file", "r", "", "YAML file of the affine reduced basis model (model rb)")
	rootCmd.PersistentFlags().StringP("inputConditionsFile", "I", "", "YAML input file: options and distribution table")
	rootCmd.PersistentFlags().Int("threads", runtime.NumCPU(), "goroutines evaluating the model, per worker")
	rootCmd.PersistentFlags().Int("rb-dim", -1, "reduced basis dimension, 0 or negative for adaptive")
	rootCmd.PersistentFlags().Float64("online-tol", 1.e-2, "relative output increment ending the adaptive reduced basis solve")
	rootCmd.PersistentFlags().Bool("export-matrices", false, "log the reduced operators of every model evaluation at debug level")
	for _, name := range []string{"verbose", "profile", "model", "rb-file", "inputConditionsFile", "threads",
		"rb-dim", "online-tol", "export-matrices"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

// initConfig reads in a .env file, the config file and ENV variables if set.
func initConfig() {
	_ = godotenv.Load()
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		// Search config in home directory with name ".sobolsa" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".sobolsa")
	}
	viper.SetEnvPrefix("SOBOLSA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	return cfg.Build()
}
