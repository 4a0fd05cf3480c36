package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/san-kum/attractor/internal/sim"
)

// Meta describes the run an export came from.
type Meta struct {
	Scene      string  `json:"scene"`
	Integrator string  `json:"integrator"`
	G          float64 `json:"g"`
	Dt         float64 `json:"dt"`
	Duration   float64 `json:"duration"`
}

type ExportBody struct {
	Name     string     `json:"name"`
	Mass     float64    `json:"mass"`
	Position [3]float64 `json:"position"`
	Velocity [3]float64 `json:"velocity"`
	Force    [3]float64 `json:"force"`
	Active   bool       `json:"active"`
}

type ExportFrame struct {
	Time   float64      `json:"time"`
	Step   int          `json:"step"`
	Bodies []ExportBody `json:"bodies"`
}

type ExportData struct {
	Meta
	Steps           int                `json:"steps"`
	EnergyDrift     float64            `json:"energy_drift"`
	CoincidentPairs int                `json:"coincident_pairs"`
	Frames          []ExportFrame      `json:"frames"`
	Metrics         map[string]float64 `json:"metrics"`
}

var csvHeader = []string{"time", "step", "body", "mass", "x", "y", "z", "vx", "vy", "vz", "fx", "fy", "fz", "active"}

// WriteCSV writes one row per body per recorded frame.
func WriteCSV(w io.Writer, result *sim.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	row := make([]string, len(csvHeader))
	for _, f := range result.Frames {
		for _, b := range f.Bodies {
			row[0] = formatFloat(f.Time)
			row[1] = strconv.Itoa(f.Step)
			row[2] = b.Name
			row[3] = formatFloat(b.Mass)
			row[4] = formatFloat(b.Position.X)
			row[5] = formatFloat(b.Position.Y)
			row[6] = formatFloat(b.Position.Z)
			row[7] = formatFloat(b.Velocity.X)
			row[8] = formatFloat(b.Velocity.Y)
			row[9] = formatFloat(b.Velocity.Z)
			row[10] = formatFloat(b.Force.X)
			row[11] = formatFloat(b.Force.Y)
			row[12] = formatFloat(b.Force.Z)
			row[13] = strconv.FormatBool(b.Active)
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func WriteJSON(w io.Writer, meta Meta, result *sim.Result) error {
	data := ExportData{
		Meta:            meta,
		Steps:           result.StepsTaken,
		EnergyDrift:     result.EnergyDrift,
		CoincidentPairs: result.CoincidentPairs,
		Frames:          make([]ExportFrame, len(result.Frames)),
		Metrics:         result.Metrics,
	}

	for i, f := range result.Frames {
		ef := ExportFrame{Time: f.Time, Step: f.Step, Bodies: make([]ExportBody, len(f.Bodies))}
		for j, b := range f.Bodies {
			ef.Bodies[j] = ExportBody{
				Name:     b.Name,
				Mass:     b.Mass,
				Position: [3]float64{b.Position.X, b.Position.Y, b.Position.Z},
				Velocity: [3]float64{b.Velocity.X, b.Velocity.Y, b.Velocity.Z},
				Force:    [3]float64{b.Force.X, b.Force.Y, b.Force.Z},
				Active:   b.Active,
			}
		}
		data.Frames[i] = ef
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// SVGSize is the width and height used by ExportFile for SVG output.
const SVGSize = 800

// ExportFile writes result to path as CSV, JSON or an SVG orbit plot
// depending on the extension.
func ExportFile(path string, meta Meta, result *sim.Result) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".json" && ext != ".svg" {
		return fmt.Errorf("unsupported export format %q (want .csv, .json or .svg)", ext)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	switch ext {
	case ".csv":
		err = WriteCSV(file, result)
	case ".svg":
		err = WriteSVG(file, result, SVGSize, SVGSize)
	default:
		err = WriteJSON(file, meta, result)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return file.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
