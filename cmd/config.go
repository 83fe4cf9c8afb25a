package main

import "time"

type Config struct {
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	LogLevel             string        `env:"LOG_LEVEL,default=info"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	JWTSecret            string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,default=5h"`
	HistoryLimit         int           `env:"HISTORY_LIMIT,default=50"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=128"`
	MaxMessageLength     int           `env:"MAX_MESSAGE_LENGTH,default=2000"`
	ReaperInterval       time.Duration `env:"REAPER_INTERVAL,default=1h"`
	TrashRetention       time.Duration `env:"TRASH_RETENTION,default=72h"`
	TelemetryInterval    time.Duration `env:"TELEMETRY_INTERVAL,default=15s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=5s"`
	CensorReplacement    string        `env:"CENSOR_REPLACEMENT,default=*"`
}
