// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Camera  CameraConfig  `yaml:"camera"`
	Scene   SceneConfig   `yaml:"scene"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	Samples    int    `yaml:"samples"` // MSAA samples, 0 disables
}

// CameraConfig holds projection and free-fly camera settings.
type CameraConfig struct {
	FOVDegrees    float32    `yaml:"fov_degrees"`
	Near          float32    `yaml:"near"`
	Far           float32    `yaml:"far"`
	MovementSpeed float32    `yaml:"movement_speed"` // world units per 60 FPS frame
	RotationSpeed float32    `yaml:"rotation_speed"` // radians per pixel of drag
	Position      [3]float32 `yaml:"position"`
}

// SceneConfig holds asset locations and scene animation settings.
type SceneConfig struct {
	AssetsDir          string  `yaml:"assets_dir"`
	TrainRotationSpeed float32 `yaml:"train_rotation_speed"` // radians per frame
	WatchAssets        bool    `yaml:"watch_assets"`
	ScreenshotDir      string  `yaml:"screenshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the values the scene was authored for.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "Auction house",
			Width:      1024,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			Samples:    4,
		},
		Camera: CameraConfig{
			FOVDegrees:    45,
			Near:          1,
			Far:           1000,
			MovementSpeed: 0.1,
			RotationSpeed: 0.02,
			Position:      [3]float32{0, 3, 0},
		},
		Scene: SceneConfig{
			AssetsDir:          ".",
			TrainRotationSpeed: 0.01,
			WatchAssets:        false,
			ScreenshotDir:      "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
