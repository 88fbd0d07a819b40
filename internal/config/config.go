package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string `mapstructure:"mode"`
	Port       int    `mapstructure:"port"`
	StaticPath string `mapstructure:"static_path"`
	ReadLimit  int64  `mapstructure:"read_limit"`
	Secret     string `mapstructure:"secret"`

	UploadsDir   string `mapstructure:"uploads_dir"`
	RoomCapacity int    `mapstructure:"room_capacity"`

	EndGracePeriod   time.Duration `mapstructure:"end_grace_period"`
	SpeakerDecay     time.Duration `mapstructure:"speaker_decay"`
	SpeakerThreshold float64       `mapstructure:"speaker_threshold"`

	CompliancePoll        time.Duration `mapstructure:"compliance_poll"`
	ComplianceMinInterval time.Duration `mapstructure:"compliance_min_interval"`
	AlertDisplayWindow    time.Duration `mapstructure:"alert_display_window"`
	AlertDedupWindow      time.Duration `mapstructure:"alert_dedup_window"`

	CapabilityBaseURL string        `mapstructure:"capability_base_url"`
	CapabilityKey     string        `mapstructure:"capability_key"`
	CapabilityTimeout time.Duration `mapstructure:"capability_timeout"`
	TranscribeTimeout time.Duration `mapstructure:"transcribe_timeout"`

	STUNServers []string `mapstructure:"stun_servers"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("uploads_dir", "./uploads")
	v.SetDefault("room_capacity", 0)
	v.SetDefault("end_grace_period", "2s")
	v.SetDefault("speaker_decay", "1500ms")
	v.SetDefault("speaker_threshold", 30.0)
	v.SetDefault("compliance_poll", "15s")
	v.SetDefault("compliance_min_interval", "60s")
	v.SetDefault("alert_display_window", "10s")
	v.SetDefault("alert_dedup_window", "60s")
	v.SetDefault("capability_base_url", "https://api.openai.com/v1")
	v.SetDefault("capability_timeout", "30s")
	v.SetDefault("transcribe_timeout", "120s")
	v.SetDefault("stun_servers", []string{"stun:stun.l.google.com:19302"})

	v.SetEnvPrefix("diwan")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.CapabilityKey == "" {
		cfg.CapabilityKey = os.Getenv("OPENAI_API_KEY")
	}
	return &cfg, nil
}
