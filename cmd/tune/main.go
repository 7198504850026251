// Command tune searches spatial.cellSize/maxNeighbors and physics.*
// config space for the combination that drives a simulated population
// toward a target mean-neighbor-count, using gonum's CMA-ES optimizer
// over a normalized parameter vector. Evaluations are CSV-logged and the
// best config found is written out as YAML.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/swarmcore/config"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	entities := flag.Int("entities", 2000, "Entity count for the evaluation run")
	frames := flag.Int("frames", 120, "Frames to simulate per evaluation")
	targetNeighbors := flag.Float64("target", 12, "Target mean neighbor count")
	maxEvals := flag.Int("max-evals", 100, "Maximum number of evaluations")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	baseCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	params := NewParamVector()
	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector(baseCfg))

	evaluator := &Evaluator{
		params:          params,
		entities:        *entities,
		frames:          *frames,
		targetNeighbors: *targetNeighbors,
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			cfg := *baseCfg
			params.ApplyToConfig(&cfg, params.Denormalize(x))
			return evaluator.Evaluate(&cfg)
		},
	}

	settings := &optimize.Settings{FuncEvaluations: *maxEvals, Concurrent: 0}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: 4 + 3*dim/2}

	logPath := filepath.Join(*outputDir, "tune_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()
	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()

	header := []string{"eval", "fitness"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	logWriter.Write(header)

	evalCount := 0
	bestFitness := math.Inf(1)
	var bestParams []float64
	start := time.Now()

	originalFunc := problem.Func
	problem.Func = func(x []float64) float64 {
		fitness := originalFunc(x)
		evalCount++
		raw := params.Clamp(params.Denormalize(x))
		if fitness < bestFitness {
			bestFitness = fitness
			bestParams = append([]float64(nil), raw...)
		}

		row := []string{strconv.Itoa(evalCount), fmt.Sprintf("%.6f", fitness)}
		for _, v := range raw {
			row = append(row, fmt.Sprintf("%.6f", v))
		}
		logWriter.Write(row)
		logWriter.Flush()

		fmt.Printf("eval %d/%d: |mean_neighbors-target|=%.3f (best=%.3f) elapsed=%s\n",
			evalCount, *maxEvals, fitness, bestFitness, time.Since(start).Round(time.Second))
		return fitness
	}

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if bestParams == nil {
		bestParams = params.Denormalize(result.X)
	}

	fmt.Println("\nbest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Name, bestParams[i])
	}

	bestCfg := *baseCfg
	params.ApplyToConfig(&bestCfg, bestParams)
	out, err := yaml.Marshal(&bestCfg)
	if err != nil {
		log.Fatalf("failed to marshal best config: %v", err)
	}
	outPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := os.WriteFile(outPath, out, 0644); err != nil {
		log.Fatalf("failed to write best config: %v", err)
	}
	fmt.Printf("\nbest config saved to: %s\n", outPath)
}
