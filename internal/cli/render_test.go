package cli

import (
	"reflect"
	"testing"

	"github.com/matzehuels/barstack/pkg/pipeline"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty defaults to svg", input: "", want: []string{"svg"}},
		{name: "single", input: "png", want: []string{"png"}},
		{name: "multiple", input: "svg,json", want: []string{"svg", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFormats(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "single", input: "q1", want: []string{"q1"}},
		{name: "trims whitespace", input: "q1, q2", want: []string{"q1", "q2"}},
		{name: "drops empty entries", input: "q1,,q2,", want: []string{"q1", "q2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseList(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseList(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{name: "derive from input", output: "", input: "rows.json", want: "rows"},
		{name: "strip format extension", output: "chart.svg", input: "rows.json", want: "chart"},
		{name: "keep other extension", output: "chart.out", input: "rows.json", want: "chart.out"},
		{name: "plain base", output: "chart", input: "rows.json", want: "chart"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		name        string
		base        string
		output      string
		format      string
		formatCount int
		want        string
	}{
		{name: "single format honors output", base: "chart", output: "chart.svg", format: "svg", formatCount: 1, want: "chart.svg"},
		{name: "single format no output", base: "rows", output: "", format: "svg", formatCount: 1, want: "rows.svg"},
		{name: "multiple formats use base", base: "chart", output: "chart.svg", format: "png", formatCount: 2, want: "chart.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := artifactPath(tt.base, tt.output, tt.format, tt.formatCount); got != tt.want {
				t.Errorf("artifactPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPipelineOptions(t *testing.T) {
	opts := renderOpts{
		chart:    "chart.toml",
		label:    "region",
		values:   []string{"q1", "q2"},
		mode:     "clustered",
		formats:  []string{"svg", "json"},
		barWidth: 0.5,
		refresh:  true,
	}

	popts := pipelineOptions("rows.json", &opts)
	if popts.RowsPath != "rows.json" {
		t.Errorf("RowsPath = %q", popts.RowsPath)
	}
	if popts.ChartPath != "chart.toml" {
		t.Errorf("ChartPath = %q", popts.ChartPath)
	}
	if popts.Mode != "clustered" || popts.BarWidth != 0.5 {
		t.Errorf("overrides not carried: %+v", popts)
	}
	if !reflect.DeepEqual(popts.Formats, []string{pipeline.FormatSVG, pipeline.FormatJSON}) {
		t.Errorf("Formats = %v", popts.Formats)
	}
	if !popts.Refresh {
		t.Error("Refresh not carried")
	}
}
