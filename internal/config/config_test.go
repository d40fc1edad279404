package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prism.json")
	data := `{"fov_degrees": 75, "near": -0.5, "background": "1,2,3", "show_bounds": true, "light": [0, 5, 0]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FOV != 75 || cfg.Near != -0.5 || cfg.Background != "1,2,3" || !cfg.ShowBounds || cfg.Light != [3]float64{0, 5, 0} {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Far != 0 {
		t.Errorf("unset Far = %v, want zero before Resolve", cfg.Far)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected parse error")
	}
}

func TestResolveDefaults(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{})
	if cfg.FOV != 60 || cfg.Near != -0.1 || cfg.Far != -100 || cfg.FPS != 30 {
		t.Errorf("defaults = %+v", cfg)
	}
	if !(cfg.Far < cfg.Near && cfg.Near < 0) {
		t.Errorf("far %v / near %v ordering", cfg.Far, cfg.Near)
	}
}

func TestResolveFlagsOverride(t *testing.T) {
	cfg := Config{FPS: 10, Background: "0,0,0", Width: 100}
	cfg.Resolve(Flags{FPS: 60, Background: "9,9,9", ShowBounds: true})
	if cfg.FPS != 60 || cfg.Background != "9,9,9" || !cfg.ShowBounds || cfg.Width != 100 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestResolveFixesInvalidPlanes(t *testing.T) {
	cfg := Config{Near: 1, Far: 5}
	cfg.Resolve(Flags{})
	if !(cfg.Far < cfg.Near && cfg.Near < 0) {
		t.Errorf("near %v, far %v", cfg.Near, cfg.Far)
	}
}

func TestBackgroundRGB(t *testing.T) {
	tests := []struct {
		in      string
		want    [3]uint8
		wantErr bool
	}{
		{"30,30,40", [3]uint8{30, 30, 40}, false},
		{" 1, 2 ,3", [3]uint8{1, 2, 3}, false},
		{"1,2", [3]uint8{}, true},
		{"1,2,300", [3]uint8{}, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			cfg := Config{Background: tc.in}
			r, g, b, err := cfg.BackgroundRGB()
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v", err)
			}
			if !tc.wantErr && [3]uint8{r, g, b} != tc.want {
				t.Errorf("got %v, want %v", [3]uint8{r, g, b}, tc.want)
			}
		})
	}
}

func TestLevel(t *testing.T) {
	cfg := Config{LogLevel: "debug"}
	if l, err := cfg.Level(); err != nil || l != slog.LevelDebug {
		t.Errorf("Level() = %v, %v", l, err)
	}
	cfg.LogLevel = "loud"
	if _, err := cfg.Level(); err == nil {
		t.Error("expected error")
	}
}
