package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DB                string // connection string for the database
	NatsURL           string // URL of the NATS server (empty: no relay)
	SubjectPrefix     string // prefix for NATS subjects
	KVBucket          string // jetstream key value bucket for weather scores
	WaitForServices   string // duration to wait for other services to be ready
	LogLevel          string // sets the log level (zap log level values)
	SQLLogLevel       string // sets the log level for sql subsystem
	LogFormat         string // text vs json
	LogFilter         string // zapfilter rules
	EnableTelemetry   bool   // enable telemetry
	TelemetryEndpoint string // endpoint for telemetry
	TelemetryStdout   bool   // write telemetry to stdout instead of the endpoint
	TracksFile        string // yaml file with additional circuits
	WeatherAPIKey     string // api key for weatherapi.com
	WeatherBaseURL    string // base url of the weather api
	ArchiveResults    bool   // if true, race results are stored in the database
)
