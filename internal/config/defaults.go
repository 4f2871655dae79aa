package config

const (
	defaultStateDir     = "~/.local/share/btroute"
	defaultLogDir       = "~/.local/share/btroute/logs"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	defaultQueueSize    = 64
	defaultBlueZAdapter = "hci0"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Profiles: Profiles{
			ClassicMedia: true,
			ClassicCall:  true,
			HearingAid:   true,
			LEAudio:      true,
			LEHearingAid: true,
		},
		Arbiter: Arbiter{
			QueueSize: defaultQueueSize,
		},
		BlueZ: BlueZ{
			Enabled: true,
			Adapter: defaultBlueZAdapter,
		},
		WiredJack: WiredJack{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
