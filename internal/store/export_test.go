package store

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/attractor/internal/sim"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		Frames: []sim.Frame{
			{Time: 0, Step: 0, Bodies: []sim.BodyState{
				{Name: "a", Mass: 1, Active: true},
				{Name: "b", Mass: 2, Position: r3.Vec{X: 1}, Active: true},
			}},
			{Time: 0.5, Step: 5, Bodies: []sim.BodyState{
				{Name: "a", Mass: 1, Position: r3.Vec{X: 0.1}, Velocity: r3.Vec{X: 0.2}, Force: r3.Vec{X: 3}, Active: true},
				{Name: "b", Mass: 2, Position: r3.Vec{X: 0.95}, Force: r3.Vec{X: -3}, Active: false},
			}},
		},
		Metrics:     map[string]float64{"energy": -1.5},
		StepsTaken:  5,
		EnergyDrift: 0.01,
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleResult()); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected header + 4 rows, got %d", len(records))
	}
	if records[0][0] != "time" || records[0][2] != "body" {
		t.Errorf("unexpected header: %v", records[0])
	}

	row := records[3]
	if row[0] != "0.5" || row[1] != "5" || row[2] != "a" || row[4] != "0.1" || row[7] != "0.2" || row[10] != "3" {
		t.Errorf("unexpected row: %v", row)
	}
	if records[4][13] != "false" {
		t.Errorf("expected inactive flag, got %v", records[4])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	meta := Meta{Scene: "pair", Integrator: "euler", G: 667.4, Dt: 0.1, Duration: 0.5}
	if err := WriteJSON(&buf, meta, sampleResult()); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if data.Scene != "pair" || data.G != 667.4 || data.Steps != 5 {
		t.Errorf("unexpected metadata: %+v", data.Meta)
	}
	if len(data.Frames) != 2 || len(data.Frames[1].Bodies) != 2 {
		t.Fatalf("unexpected frames: %+v", data.Frames)
	}
	if data.Frames[1].Bodies[0].Force != [3]float64{3, 0, 0} {
		t.Errorf("unexpected force: %v", data.Frames[1].Bodies[0].Force)
	}
	if data.Metrics["energy"] != -1.5 {
		t.Errorf("expected energy metric, got %v", data.Metrics)
	}
}

func TestExportFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"run.csv", "run.json", "run.svg"} {
		path := filepath.Join(dir, name)
		if err := ExportFile(path, Meta{Scene: "pair"}, sampleResult()); err != nil {
			t.Fatalf("export %s: %v", name, err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("%s not created: %v", name, err)
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}

	if err := ExportFile(filepath.Join(dir, "run.txt"), Meta{}, sampleResult()); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestWriteSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, sampleResult(), 200, 100); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "<?xml") || !strings.HasSuffix(out, "</svg>\n") {
		t.Fatalf("not an svg document:\n%s", out)
	}
	if strings.Count(out, "<path ") != 2 {
		t.Errorf("expected one path per body:\n%s", out)
	}
	if !strings.Contains(out, `id="a"`) || !strings.Contains(out, `id="b"`) {
		t.Errorf("paths should be named after bodies:\n%s", out)
	}
	// a is active in both frames, b only in the first.
	if strings.Count(out, " L") != 1 {
		t.Errorf("expected a single line segment:\n%s", out)
	}
	if strings.Count(out, "<circle") != 2 {
		t.Errorf("expected an end marker per visible body:\n%s", out)
	}
}

func TestWriteSVGEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, &sim.Result{}, 100, 100); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if strings.Contains(buf.String(), "<path") {
		t.Error("empty result should draw no paths")
	}
}
