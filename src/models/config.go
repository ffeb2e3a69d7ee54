package models

// MConfig Structure
type MConfig struct {
	Name      string           `yaml:"name"`
	Host      string           `yaml:"host"`
	Port      int              `yaml:"port"`
	LogLevel  string           `yaml:"log_level"`
	GrpcHost  string           `yaml:"grpc_host"`
	GrpcPort  int              `yaml:"grpc_port"` // 0 disables the gRPC listener
	Generator MGeneratorConfig `yaml:"generator"`
	Render    MRenderConfig    `yaml:"render"`
	UI        MUIConfig        `yaml:"ui"`
}

type MGeneratorConfig struct {
	Seed       int64   `yaml:"seed"` // 0 seeds from the clock
	NoiseScale float64 `yaml:"noise_scale"`
	MaxPoints  int     `yaml:"max_points"`
}

type MRenderConfig struct {
	Width        int     `yaml:"width"`
	Height       int     `yaml:"height"`
	Scale        float64 `yaml:"scale"`
	HeatmapBinsX int     `yaml:"heatmap_bins_x"`
	HeatmapBinsY int     `yaml:"heatmap_bins_y"`
}

type MUIConfig struct {
	DefaultSymbol    string `yaml:"default_symbol"`
	DefaultRangeDays int    `yaml:"default_range_days"`
}

// DefaultMConfig returns the built-in configuration. YAML files are decoded
// on top of it, so absent keys keep these values.
func DefaultMConfig() MConfig {
	return MConfig{
		Name:     "cycle-dashboard",
		Host:     "0.0.0.0",
		Port:     8000,
		LogLevel: "INFO",
		GrpcHost: "0.0.0.0",
		GrpcPort: 0,
		Generator: MGeneratorConfig{
			Seed:       0,
			NoiseScale: 0.1,
			MaxPoints:  24 * 366,
		},
		Render: MRenderConfig{
			Width:        800,
			Height:       400,
			Scale:        2,
			HeatmapBinsX: 40,
			HeatmapBinsY: 20,
		},
		UI: MUIConfig{
			DefaultSymbol:    DefaultSymbol,
			DefaultRangeDays: 7,
		},
	}
}
