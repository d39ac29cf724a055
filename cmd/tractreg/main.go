package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"tractreg/pkg/config"
	"tractreg/pkg/geometry"
	"tractreg/pkg/metric"
	"tractreg/pkg/registration"
	"tractreg/pkg/resample"
	"tractreg/pkg/trackio"
	"tractreg/pkg/voxel"
)

func main() {
	// Parse command line arguments
	staticPath := flag.String("static", "", "JSON file holding the static (reference) bundle")
	movingPath := flag.String("moving", "", "JSON file holding the moving bundle to align")
	outputPath := flag.String("output", "moved.json", "Output file for the registered moving bundle")
	matrixPath := flag.String("matrix", "transform.txt", "Output file for the fitted 4x4 transform")
	configPath := flag.String("config", "tractreg.yaml", "YAML configuration file (optional)")
	metricName := flag.String("metric", "", "Distance metric: sum or min (overrides config)")
	kindName := flag.String("kind", "", "Transform kind: rigid or affine (overrides config)")
	numPoints := flag.Int("points", 0, "Points per streamline after resampling (overrides config)")
	center := flag.Bool("center", true, "Center the static bundle before optimizing")
	overlap := flag.Bool("overlap", false, "Report voxel overlap between static and moved bundles")
	slicesDir := flag.String("slices-dir", "overlap_slices", "Directory to save occupancy slice images")
	flag.Parse()

	// Validate inputs
	if *staticPath == "" || *movingPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *metricName != "" {
		cfg.Registration.Metric = *metricName
	}
	if *kindName != "" {
		cfg.Registration.Kind = *kindName
	}
	if *numPoints > 0 {
		cfg.Resample.NumPoints = *numPoints
	}

	m, err := metric.ByName(cfg.Registration.Metric)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	kind, err := registration.ParseKind(cfg.Registration.Kind)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Println("================================")
	fmt.Println("TRACTREG - STREAMLINE BUNDLE REGISTRATION")
	fmt.Println("================================")

	// Load the input bundles
	static, err := trackio.LoadBundle(*staticPath)
	if err != nil {
		log.Fatalf("Failed to load static bundle: %v", err)
	}
	moving, err := trackio.LoadBundle(*movingPath)
	if err != nil {
		log.Fatalf("Failed to load moving bundle: %v", err)
	}
	fmt.Printf("Loaded %d static and %d moving streamlines (%d / %d points)\n",
		len(static), len(moving), static.TotalPoints(), moving.TotalPoints())

	// Resample both bundles to a common point count for the metric
	staticRes := resample.Bundle(static, cfg.Resample.NumPoints)
	movingRes := resample.Bundle(moving, cfg.Resample.NumPoints)

	// Center the static bundle so the rotation search stays well conditioned.
	// The shift is undone on the registered output below.
	var shift [3]float64
	if *center {
		staticRes, shift = geometry.CenterBundle(staticRes)
	}

	opts := registration.DefaultOptions()
	opts.Kind = kind
	opts.MaxIterations = cfg.Registration.MaxIterations
	opts.Tolerance = cfg.Registration.Tolerance
	opts.FullOutput = cfg.Registration.FullOutput

	fmt.Printf("Fitting %s transform with %s metric...\n", kind, cfg.Registration.Metric)
	startTime := time.Now()

	reg := registration.New(m, opts)
	result, err := reg.Optimize(staticRes, movingRes)
	if err != nil {
		log.Fatalf("Registration failed: %v", err)
	}
	elapsed := time.Since(startTime)

	fmt.Printf("\nRegistration completed in %.2f seconds\n", elapsed.Seconds())
	if opts.FullOutput {
		fmt.Printf("Final objective: %.6f\n", result.Objective)
		fmt.Printf("Iterations: %d (%d objective evaluations)\n", result.Iterations, result.FuncEvaluations)
		if result.Converged {
			fmt.Println("Optimizer converged within tolerance")
		} else {
			fmt.Println("Warning: optimizer did not converge, best-found transform is reported")
		}
	}

	// Apply the fit to the full-resolution moving bundle and undo centering
	moved := result.Transform(moving)
	finalMatrix := result.Matrix
	if *center {
		shiftBack := geometry.Translation(shift[0], shift[1], shift[2])
		moved = geometry.ApplyTransform(moved, shiftBack)
		finalMatrix = geometry.Compose(result.Matrix, shiftBack)
	}

	if err := trackio.SaveBundle(*outputPath, moved); err != nil {
		log.Fatalf("Failed to save registered bundle: %v", err)
	}
	if err := trackio.SaveMatrix(*matrixPath, finalMatrix); err != nil {
		log.Fatalf("Failed to save transform: %v", err)
	}
	fmt.Printf("Registered bundle saved to: %s\n", *outputPath)
	fmt.Printf("Fitted transform saved to: %s\n", *matrixPath)

	// Report spatial overlap between the static and moved bundles
	if *overlap {
		movedGrid := voxel.BoundingGrid(cfg.Output.VoxelSize, static, moved)
		staticGrid := voxel.BoundingGrid(cfg.Output.VoxelSize, static, moved)
		movedGrid.Rasterize(moved)
		staticGrid.Rasterize(static)

		frac, err := voxel.Overlap(staticGrid, movedGrid)
		if err != nil {
			log.Fatalf("Failed to compute overlap: %v", err)
		}
		fmt.Printf("\nVoxel overlap: %.1f%% of the moved bundle's %d occupied voxels\n",
			frac*100, movedGrid.OccupiedCount())

		if cfg.Output.SaveOverlapSlices {
			dir := filepath.Join(filepath.Dir(*outputPath), *slicesDir)
			fmt.Printf("Saving occupancy slices to: %s\n", dir)
			if err := movedGrid.SaveSliceSequence("z", dir); err != nil {
				log.Printf("Warning: Failed to save occupancy slices: %v", err)
			}
		}
	}
}
