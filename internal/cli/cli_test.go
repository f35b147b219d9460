package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/ppiankov/inmueble/internal/cache"
	"github.com/ppiankov/inmueble/internal/model"
)

func setupViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.SetEnvPrefix("INMUEBLE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := registerDefaults(); err != nil {
		t.Fatalf("registerDefaults: %v", err)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	setupViper(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	want := model.DefaultConfig()
	if cfg.Scoring != want.Scoring {
		t.Errorf("scoring = %+v, want %+v", cfg.Scoring, want.Scoring)
	}
	if len(cfg.Fallback.Tiers) != len(want.Fallback.Tiers) {
		t.Fatalf("got %d tiers, want %d", len(cfg.Fallback.Tiers), len(want.Fallback.Tiers))
	}
	if cfg.Fallback.Tiers[1].Model != want.Fallback.Tiers[1].Model {
		t.Errorf("tier 2 model = %q", cfg.Fallback.Tiers[1].Model)
	}
	if len(cfg.Fallback.Fields) != len(want.Fallback.Fields) {
		t.Errorf("fields = %v", cfg.Fallback.Fields)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("INMUEBLE_SCORING_MIN_PRICE", "25000")
	t.Setenv("INMUEBLE_CACHE_BACKEND", "sqlite")
	setupViper(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Scoring.MinPrice != 25000 {
		t.Errorf("min price = %v, want 25000", cfg.Scoring.MinPrice)
	}
	if cfg.Cache.Backend != "sqlite" {
		t.Errorf("cache backend = %q, want sqlite", cfg.Cache.Backend)
	}
}

func TestLoadConfig_FileReplacesTiers(t *testing.T) {
	setupViper(t)

	viper.SetConfigType("yaml")
	config := []byte(`
fallback:
  enabled: true
  tiers:
    - provider: ollama
      model: llama3.1:8b
`)
	if err := viper.ReadConfig(bytes.NewReader(config)); err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if !cfg.Fallback.Enabled {
		t.Error("fallback should be enabled")
	}
	if len(cfg.Fallback.Tiers) != 1 || cfg.Fallback.Tiers[0].Provider != "ollama" {
		t.Errorf("tiers = %+v", cfg.Fallback.Tiers)
	}
}

func TestOpenCache(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		backend string
		wantErr bool
	}{
		{"memory", false},
		{"disk", false},
		{"sqlite", false},
		{"redis", true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			c, err := openCache(model.CacheConfig{
				Backend: tt.backend,
				Dir:     filepath.Join(dir, "cache"),
				Path:    filepath.Join(dir, "cache.db"),
			})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("openCache: %v", err)
			}
			defer func() { _ = cache.Close(c) }()

			if err := c.Set("k", []byte(`{"levels":2}`)); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if got, ok := c.Get("k"); !ok || string(got) != `{"levels":2}` {
				t.Errorf("Get = %q, %v", got, ok)
			}
		})
	}
}

func TestNewResolver_Disabled(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Fallback.Enabled = false

	r, err := newResolver(cfg, "run", cache.NewMemoryCache(), nil)
	if err != nil {
		t.Fatalf("newResolver: %v", err)
	}
	if r != nil {
		t.Error("expected no resolver when fallback is disabled")
	}
}

func TestNewResolver_NoProviders(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Fallback.Enabled = true
	cfg.Fallback.Tiers = []model.TierConfig{{Provider: ""}}

	r, err := newResolver(cfg, "run", cache.NewMemoryCache(), nil)
	if err != nil {
		t.Fatalf("newResolver: %v", err)
	}
	if r != nil {
		t.Error("expected no resolver without providers")
	}
}

func TestNewResolver_UnknownProvider(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Fallback.Enabled = true
	cfg.Fallback.Tiers = []model.TierConfig{{Provider: "mystery"}}

	if _, err := newResolver(cfg, "run", cache.NewMemoryCache(), nil); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewResolver_ProviderCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		check   bool
		wantNil bool
	}{
		{"available tier kept", http.StatusOK, true, false},
		{"unavailable tier skipped", http.StatusInternalServerError, true, true},
		{"check disabled keeps tier", http.StatusInternalServerError, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			cfg := model.DefaultConfig()
			cfg.Fallback.Enabled = true
			cfg.Fallback.CheckProviders = tt.check
			cfg.Fallback.Tiers = []model.TierConfig{{Provider: "ollama", Model: "llama3.1:8b", BaseURL: server.URL}}

			r, err := newResolver(cfg, "run", cache.NewMemoryCache(), nil)
			if err != nil {
				t.Fatalf("newResolver: %v", err)
			}
			if (r == nil) != tt.wantNil {
				t.Errorf("resolver nil = %v, want %v", r == nil, tt.wantNil)
			}
		})
	}
}

func TestExtractCommand(t *testing.T) {
	setupViper(t)
	viper.Set("cache.backend", "memory")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"extract",
		"Casa en venta, 3 recámaras, 2 baños, 1 nivel, con alberca",
		"--price", "$1,200,000", "--id", "X1"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("extract: %v", err)
	}

	var res struct {
		ID             string               `json:"id"`
		Fields         map[string]any       `json:"fields"`
		Classification model.Classification `json:"classification"`
	}
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if res.ID != "X1" {
		t.Errorf("id = %q", res.ID)
	}
	if res.Fields[model.FieldBedrooms] != float64(3) {
		t.Errorf("bedrooms = %v", res.Fields[model.FieldBedrooms])
	}
	if res.Classification.Status != model.StatusValid {
		t.Errorf("status = %s, reasons %v", res.Classification.Status, res.Classification.Reasons)
	}
}
