package dither

import "testing"

func TestResolveMode(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  Mode
	}{
		{"gaussian", "gaussian", Gaussian},
		{"atkinson", "atkinson", Atkinson},
		{"noise", "noise", Noise},
		{"absent", "", Atkinson},
		{"unknown", "floyd", Atkinson},
		{"case sensitive", "Noise", Atkinson},
		{"whitespace", " noise", Atkinson},
		{"numeric", "2", Atkinson},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveMode(tt.value); got != tt.want {
				t.Errorf("ResolveMode(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestModeValues(t *testing.T) {
	if Gaussian != 0 || Atkinson != 1 || Noise != 2 {
		t.Errorf("mode values = %d,%d,%d, want 0,1,2", Gaussian, Atkinson, Noise)
	}
	if DefaultMode != Atkinson {
		t.Errorf("DefaultMode = %v, want atkinson", DefaultMode)
	}
}

func TestLookupMode(t *testing.T) {
	if m, ok := LookupMode("noise"); !ok || m != Noise {
		t.Errorf("LookupMode(noise) = %v, %v", m, ok)
	}
	if m, ok := LookupMode("bayer"); ok || m != DefaultMode {
		t.Errorf("LookupMode(bayer) = %v, %v, want default, false", m, ok)
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{Gaussian, "gaussian"},
		{Atkinson, "atkinson"},
		{Noise, "noise"},
		{Mode(7), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
		if tt.mode.Valid() {
			if back := ResolveMode(tt.want); back != tt.mode {
				t.Errorf("ResolveMode(%q) = %v, want %v", tt.want, back, tt.mode)
			}
		}
	}
}

func TestModeThresholdDispatch(t *testing.T) {
	x, y := float32(13.5), float32(6.5)
	if got, want := Gaussian.Threshold(x, y), OrderedThreshold(x, y); got != want {
		t.Errorf("Gaussian threshold = %v, want %v", got, want)
	}
	if got, want := Atkinson.Threshold(x, y), ClusteredThreshold(x, y); got != want {
		t.Errorf("Atkinson threshold = %v, want %v", got, want)
	}
	if got, want := Noise.Threshold(x, y), Hash(x, y); got != want {
		t.Errorf("Noise threshold = %v, want %v", got, want)
	}
}

func TestModeAdjust(t *testing.T) {
	if got := Gaussian.Adjust(0.5); got != 0.5 {
		t.Errorf("Gaussian.Adjust(0.5) = %v", got)
	}
	if got := Noise.Adjust(0.5); got != 0.5 {
		t.Errorf("Noise.Adjust(0.5) = %v", got)
	}
	if got := Atkinson.Adjust(0.05); got != 0 {
		t.Errorf("Atkinson.Adjust(0.05) = %v, want 0", got)
	}
	if got := Atkinson.Adjust(1); got != 1 {
		t.Errorf("Atkinson.Adjust(1) = %v, want 1 (clamped)", got)
	}
}

func TestModeFromQuery(t *testing.T) {
	tests := []struct {
		query string
		want  Mode
	}{
		{"dither=noise", Noise},
		{"?dither=gaussian", Gaussian},
		{"page=2&dither=atkinson", Atkinson},
		{"page=2", Atkinson},
		{"", Atkinson},
		{"dither=sierra", Atkinson},
		{"dither=%zz", Atkinson},
	}
	for _, tt := range tests {
		if got := ModeFromQuery(tt.query); got != tt.want {
			t.Errorf("ModeFromQuery(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestModeFromEnv(t *testing.T) {
	t.Setenv(EnvVar, "gaussian")
	if got := ModeFromEnv(); got != Gaussian {
		t.Errorf("ModeFromEnv() = %v, want gaussian", got)
	}
	t.Setenv(EnvVar, "")
	if got := ModeFromEnv(); got != Atkinson {
		t.Errorf("ModeFromEnv() with empty env = %v, want atkinson", got)
	}
}
