package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging and the FPS counter")
	flagMode     = flag.String("mode", "", "Display mode: terminal, window or headless")
	flagWindow   = flag.Bool("window", false, "Shorthand for -mode window")
	flagHeadless = flag.Bool("headless", false, "Shorthand for -mode headless")
	flagWidth    = flag.Int("width", 0, "Framebuffer width")
	flagHeight   = flag.Int("height", 0, "Framebuffer height")
	flagScene    = flag.String("scene", "", "Start scene (stage or crate)")
	flagAssets   = flag.String("assets", "", "Path to asset manifest")
	flagFrames   = flag.Int("frames", 0, "Frames to render in headless mode")
	flagOut      = flag.String("out", "", "Output directory for headless captures")
	flagLogFile  = flag.String("log", "", "Log file path")
	flagNoDark   = flag.Bool("no-darkness", false, "Disable distance darkening")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Game.ShowFPS = true
	}
	if *flagMode != "" {
		cfg.Graphics.Mode = *flagMode
	}
	if *flagWindow {
		cfg.Graphics.Mode = ModeWindow
	}
	if *flagHeadless {
		cfg.Graphics.Mode = ModeHeadless
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagScene != "" {
		cfg.Game.StartScene = *flagScene
	}
	if *flagAssets != "" {
		cfg.Assets.Manifest = *flagAssets
	}
	if *flagFrames > 0 {
		cfg.Capture.Frames = *flagFrames
	}
	if *flagOut != "" {
		cfg.Capture.OutDir = *flagOut
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagNoDark {
		cfg.Render.Darkness = false
	}
}
