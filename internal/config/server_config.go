package config

import (
	"fmt"
	"runtime/debug"

	"github.com/hzbay/amqp-acker/internal/util"
	"github.com/rs/zerolog"
)

const ModuleName = "github.com/hzbay/amqp-acker"

// Set at build time via -ldflags.
var (
	BuildVersion = "dev"
	BuildCommit  = "unknown"
)

type EchoServer struct {
	Debug         bool   `json:"debug"`
	ListenAddress string `json:"listen_address"`
	Enabled       bool   `json:"enabled"`
}

type LoggerServer struct {
	Level              zerolog.Level `json:"level"`
	RequestLevel       zerolog.Level `json:"request_level"`
	PrettyPrintConsole bool          `json:"pretty_print_console"`
}

type Server struct {
	Echo     EchoServer
	Logger   LoggerServer
	RabbitMQ RabbitMQConfig
	Consumer ConsumerConfig
}

// DefaultServiceConfigFromEnv returns the server config as parsed from environment variables
// and their respective defaults defined below.
func DefaultServiceConfigFromEnv() Server {
	rabbitMQ := LoadRabbitMQConfig()

	return Server{
		Echo: EchoServer{
			Debug:         util.GetEnvAsBool("SERVER_ECHO_DEBUG", false),
			ListenAddress: util.GetEnv("SERVER_ECHO_LISTEN_ADDRESS", ":8080"),
			Enabled:       util.GetEnvAsBool("SERVER_ECHO_ENABLED", true),
		},
		Logger: LoggerServer{
			Level:              parseLevel(util.GetEnv("SERVER_LOGGER_LEVEL", "info"), zerolog.InfoLevel),
			RequestLevel:       parseLevel(util.GetEnv("SERVER_LOGGER_REQUEST_LEVEL", "debug"), zerolog.DebugLevel),
			PrettyPrintConsole: util.GetEnvAsBool("SERVER_LOGGER_PRETTY_PRINT_CONSOLE", false),
		},
		RabbitMQ: rabbitMQ,
		Consumer: LoadConsumerConfig(rabbitMQ),
	}
}

func parseLevel(s string, fallback zerolog.Level) zerolog.Level {
	l, err := zerolog.ParseLevel(s)
	if err != nil || l == zerolog.NoLevel {
		return fallback
	}

	return l
}

// GetFormattedBuildArgs returns the version string printed by --version.
func GetFormattedBuildArgs() string {
	goVersion := "unknown"
	if info, ok := debug.ReadBuildInfo(); ok {
		goVersion = info.GoVersion
	}

	return fmt.Sprintf("%v @ %v (%v)", BuildVersion, BuildCommit, goVersion)
}
