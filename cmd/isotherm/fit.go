package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/uyouii/isotherm-augmentor/model"
	"github.com/uyouii/isotherm-augmentor/pipeline"
	"github.com/uyouii/isotherm-augmentor/tabular"
)

type fitOptions struct {
	file       string
	manual     string
	nPoints    int
	smoothingS float64
	polyDegree int
	format     string
	methods    []string
	out        string
}

func newFitCmd() *cobra.Command {
	opts := &fitOptions{}
	defaults := pipeline.NewRequest()

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a table or manual points and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFit(cmd, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.file, "file", "", "CSV or XLSX file with pressure and uptake columns")
	flags.StringVar(&opts.manual, "manual", "", `manual points as JSON, e.g. '[{"p":1,"q":2}]'`)
	flags.IntVar(&opts.nPoints, "n-points", defaults.NPoints, "number of grid points")
	flags.Float64Var(&opts.smoothingS, "smoothing", defaults.SmoothingS, "smoothing spline residual budget")
	flags.IntVar(&opts.polyDegree, "degree", defaults.PolyDegree, "polynomial degree")
	flags.StringVar(&opts.format, "format", "json", "output format: json, csv or xlsx")
	flags.StringSliceVar(&opts.methods, "methods", nil, "methods to export (csv/xlsx), default all")
	flags.StringVar(&opts.out, "out", "", "output path, default stdout")
	return cmd
}

func runFit(cmd *cobra.Command, opts *fitOptions) error {
	req := pipeline.NewRequest()
	req.NPoints = opts.nPoints
	req.SmoothingS = opts.smoothingS
	req.PolyDegree = opts.polyDegree

	var format tabular.ExportFormat
	if opts.format != "json" {
		var err error
		if format, err = tabular.ParseExportFormat(opts.format); err != nil {
			return err
		}
	}
	methods, err := parseMethods(opts.methods)
	if err != nil {
		return err
	}

	if req.ManualPoints, err = tabular.DecodeManualPoints(opts.manual); err != nil {
		return err
	}
	if opts.file != "" {
		f, err := os.Open(opts.file)
		if err != nil {
			return fmt.Errorf("error reading file: %w", err)
		}
		defer f.Close()
		if req.File, err = tabular.ParseUpload(filepath.Base(opts.file), f); err != nil {
			return fmt.Errorf("error reading file: %w", err)
		}
	}

	out, err := pipeline.Compute(cmd.Context(), req)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if format == "" {
		return writeJSON(w, out)
	}
	table, err := tabular.TableFromOutput(out, methods)
	if err != nil {
		return err
	}
	return table.Write(w, format)
}

func parseMethods(names []string) ([]model.MethodID, error) {
	methods := make([]model.MethodID, 0, len(names))
	for _, name := range names {
		id := model.MethodID(name)
		if !id.Valid() {
			return nil, fmt.Errorf("unknown method %q", name)
		}
		methods = append(methods, id)
	}
	return methods, nil
}

func writeJSON(w io.Writer, out *model.ComputationOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
