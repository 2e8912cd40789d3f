package main

import (
	"time"

	"github.com/spf13/viper"
)

func initViperDefaults() {
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.add_source", false)

	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.endpoint", "https://api.openai.com")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("llm.request_timeout", 30*time.Second)
	viper.SetDefault("llm.max_tokens", 400)
	viper.SetDefault("llm.temperature", 0.4)
	viper.SetDefault("llm.rate_per_minute", 30)

	viper.SetDefault("store.dsn", "")
	viper.SetDefault("store.busy_timeout_ms", 5000)
	viper.SetDefault("store.wal", true)

	viper.SetDefault("state_dir", "~/.botmind")
	viper.SetDefault("brains.dir_name", "brains")
	viper.SetDefault("audit.file_name", "cycles.jsonl")
	viper.SetDefault("audit.rotate_max_bytes", int64(16*1024*1024))

	viper.SetDefault("world.ttl", 10*time.Minute)
	viper.SetDefault("world.window", 24*time.Hour)
	viper.SetDefault("world.top_topics", 5)
	viper.SetDefault("world.snapshot_file_name", "world.json")

	viper.SetDefault("daemon.poll_interval", 30*time.Second)
	viper.SetDefault("daemon.batch_size", 20)
	viper.SetDefault("daemon.max_concurrent", 8)
}
