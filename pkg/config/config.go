package config

import (
	"log/slog"
	"time"

	"github.com/shirou/gopsutil/v4/mem"
)

// Config is the full configuration tree.
type Config struct {
	General   GeneralConfig   `toml:"general"`
	Cache     CacheConfig     `toml:"cache"`
	Slideshow SlideshowConfig `toml:"slideshow"`
	Display   DisplayConfig   `toml:"display"`
}

// GeneralConfig holds logging settings.
type GeneralConfig struct {
	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`
}

// CacheConfig bounds the decoded-image cache.
type CacheConfig struct {
	// Capacity is the byte budget for decoded pixel data.
	Capacity ByteSize `toml:"capacity"`
}

// SlideshowConfig drives automatic advancing.
type SlideshowConfig struct {
	Interval Duration `toml:"interval"`
	Shuffle  bool     `toml:"shuffle"`
}

// DisplayConfig selects how images reach the terminal.
type DisplayConfig struct {
	// Protocol is auto, kitty, iterm2, sixel or halfblocks.
	Protocol string `toml:"protocol"`
	// Background is auto, dark or light; auto asks the terminal.
	Background string `toml:"background"`
	// Checkered draws the classic transparency checkerboard behind
	// images with an alpha channel.
	Checkered bool `toml:"checkered"`
	// ShowSidebar opens the properties sidebar at startup.
	ShowSidebar bool `toml:"show_sidebar"`
}

// SlogLevel maps the configured log level onto slog. Unknown values fall
// back to info.
func (g GeneralConfig) SlogLevel() slog.Level {
	switch g.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DefaultConfig returns the defaults used when no file or key is present.
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
		},
		Cache: CacheConfig{
			Capacity: defaultCacheCapacity(),
		},
		Slideshow: SlideshowConfig{
			Interval: Duration{5 * time.Second},
		},
		Display: DisplayConfig{
			Protocol:   "auto",
			Background: "auto",
			Checkered:  true,
		},
	}
}

// defaultCacheCapacity is 1 GiB, or a quarter of physical memory on
// smaller machines.
func defaultCacheCapacity() ByteSize {
	const gib = ByteSize(1 << 30)
	vm, err := mem.VirtualMemory()
	if err != nil || vm.Total == 0 {
		return gib
	}
	if quarter := ByteSize(vm.Total / 4); quarter < gib {
		return quarter
	}
	return gib
}
