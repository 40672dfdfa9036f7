package mastering

import (
	"testing"

	"freestyle/internal/engine"
)

var target = engine.LoudnessTarget{IntegratedLUFS: -14, RangeLU: 11, TruePeakDBTP: -1}

const loudnormReport = `[Parsed_loudnorm_5 @ 0x55d1c7a3c0] 
{
	"input_i" : "-20.31",
	"input_tp" : "-3.12",
	"input_lra" : "6.40",
	"input_thresh" : "-30.55",
	"output_i" : "-14.02",
	"output_tp" : "-1.00",
	"output_lra" : "5.10",
	"output_thresh" : "-24.21",
	"normalization_type" : "dynamic",
	"target_offset" : "0.02"
}
size=N/A time=00:00:10.00 bitrate=N/A speed= 210x`

func TestParseMeasurement(t *testing.T) {
	diag := "ffmpeg version 6.1 {config: noise}\nInput #0, wav\n" + loudnormReport
	got, exact := ParseMeasurement(diag, target)
	if !exact {
		t.Fatal("expected exact measurement")
	}
	want := engine.Measurement{InputI: "-20.31", InputLRA: "6.40", InputTP: "-3.12", InputThresh: "-30.55"}
	if got != want {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseMeasurementFallbacks(t *testing.T) {
	defaults := engine.Measurement{InputI: "-14", InputLRA: "11", InputTP: "-1", InputThresh: "-24"}

	tests := []struct {
		name      string
		diag      string
		want      engine.Measurement
		wantExact bool
	}{
		{name: "no braces", diag: "Conversion failed!", want: defaults},
		{name: "empty", diag: "", want: defaults},
		{name: "unbalanced", diag: `"input_i" : "-20" }`, want: defaults},
		{name: "malformed json", diag: `{ "input_i" : -20.0 , }`, want: defaults},
		{
			name: "partial report",
			diag: `{"input_i": "-18.5", "input_tp": "-2.0"}`,
			want: engine.Measurement{InputI: "-18.5", InputLRA: "11", InputTP: "-2.0", InputThresh: "-24"},
		},
		{
			name: "silent input reports -inf",
			diag: `{"input_i": "-inf", "input_lra": "0.00", "input_tp": "-inf", "input_thresh": "-70.00"}`,
			want: engine.Measurement{InputI: "-14", InputLRA: "0.00", InputTP: "-1", InputThresh: "-70.00"},
		},
		{
			name:      "numeric values",
			diag:      `{"input_i": -19.5, "input_lra": 7, "input_tp": -0.5, "input_thresh": -29.75}`,
			want:      engine.Measurement{InputI: "-19.5", InputLRA: "7", InputTP: "-0.5", InputThresh: "-29.75"},
			wantExact: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, exact := ParseMeasurement(tc.diag, target)
			if got != tc.want {
				t.Fatalf("got %#v, want %#v", got, tc.want)
			}
			if exact != tc.wantExact {
				t.Fatalf("exact = %v, want %v", exact, tc.wantExact)
			}
		})
	}
}

func TestLastJSONBlockPicksOutermost(t *testing.T) {
	block, ok := lastJSONBlock(`noise {"a": {"b": 1}} tail`)
	if !ok || block != `{"a": {"b": 1}}` {
		t.Fatalf("got %q, %v", block, ok)
	}
}

func TestFallbackTracksTarget(t *testing.T) {
	got := FallbackMeasurement(engine.LoudnessTarget{IntegratedLUFS: -16, RangeLU: 9, TruePeakDBTP: -1.5})
	want := engine.Measurement{InputI: "-16", InputLRA: "9", InputTP: "-1.5", InputThresh: "-24"}
	if got != want {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}
