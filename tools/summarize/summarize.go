package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/notargets/sobolsa/results"
	"gonum.org/v1/gonum/floats"
)

var (
	jsonFile string
)

func main() {
	jsonFilePtr := flag.String("jsonFile", jsonFile, "sensitivity artifact written by sobolsa sobol, more may follow as arguments")
	flag.Parse()
	files := flag.Args()
	if *jsonFilePtr != "" {
		files = append([]string{*jsonFilePtr}, files...)
	}
	if len(files) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	for _, path := range files {
		s, err := summarize(path)
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		fmt.Printf("Input file: %v\n", path)
		s.Print()
	}
}

type Summary struct {
	Algo                string
	SamplingSize        int
	Names               []string
	First, Total        []float64
	FirstSum, TotalSum  float64
	WidestFirstInterval float64 // zero without intervals
}

func summarize(path string) (s *Summary, err error) {
	var (
		r *results.Results
	)
	if r, err = results.ReadJSON(path); err != nil {
		return
	}
	s = &Summary{
		Algo:         r.Algo,
		SamplingSize: r.SamplingSize,
		Names:        r.Names,
		First:        r.FirstOrder.Values,
		Total:        r.TotalOrder.Values,
		FirstSum:     floats.Sum(r.FirstOrder.Values),
		TotalSum:     floats.Sum(r.TotalOrder.Values),
	}
	for _, iv := range r.FirstOrder.Intervals {
		s.WidestFirstInterval = max(s.WidestFirstInterval, iv[1]-iv[0])
	}
	return
}

func (s *Summary) Print() {
	fmt.Printf("Algo = %s, Sampling size = %d\n", s.Algo, s.SamplingSize)
	for i, name := range s.Names {
		fmt.Printf("%s, %v, %v\n", name, s.First[i], s.Total[i])
	}
	fmt.Printf("First order sum %v\n", s.FirstSum)
	fmt.Printf("Total order sum %v\n", s.TotalSum)
	if s.WidestFirstInterval > 0 {
		fmt.Printf("Widest first order interval %v\n", s.WidestFirstInterval)
	}
}
