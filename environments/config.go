package environments

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	HTTP      HTTPConfig
	Providers ProvidersConfig
	Sender    SenderConfig
	Alert     AlertConfig
	Auth      AuthConfig
}

type ServerConfig struct {
	Port string
}

type LogConfig struct {
	Level string
	Env   string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	DB        int
	ResultTTL time.Duration
}

// HTTPConfig tunes the transport shared by every gateway.
type HTTPConfig struct {
	Timeout      time.Duration
	RetryCount   int
	MaxRedirects int
}

type ProvidersConfig struct {
	Default             string
	InternationalPrefix string
	EnableDummy         bool

	Nexmo         NexmoConfig
	Twilio        TwilioConfig
	Cardboardfish UserPasswordConfig
	ValueFirst    UserPasswordConfig
	Esendex       EsendexConfig
	Swisscom      ClientIDConfig
	GSMAOneAPI    GSMAOneAPIConfig
	Websms        TokenConfig
	Twsms         UserPasswordConfig
}

type NexmoConfig struct {
	APIKey    string
	APISecret string
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
}

type UserPasswordConfig struct {
	Username string
	Password string
}

type EsendexConfig struct {
	Username   string
	Password   string
	AccountRef string
}

type ClientIDConfig struct {
	ClientID string
}

type GSMAOneAPIConfig struct {
	Name     string
	Endpoint string
	ClientID string
}

type TokenConfig struct {
	AccessToken string
}

type SenderConfig struct {
	// Delayed queues sends until the scheduler (or a flush call) drains them.
	Delayed         bool
	SingleRecipient string
	FlushInterval   time.Duration
	MaxBodyLength   int
}

type AlertConfig struct {
	WebhookURL     string
	IterationCount int
}

type AuthConfig struct {
	SMSAPIKey       string
	SchedulerAPIKey string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: GetEnv("SERVER_PORT", "8080"),
		},
		Log: LogConfig{
			Level: GetEnv("LOG_LEVEL", "info"),
			Env:   GetEnv("APP_ENV", "production"),
		},
		Database: DatabaseConfig{
			Host:     GetEnv("DB_HOST", "localhost"),
			Port:     GetEnv("DB_PORT", "3306"),
			User:     GetEnv("DB_USER", "sms"),
			Password: GetEnv("DB_PASSWORD", "sms123"),
			DBName:   GetEnv("DB_NAME", "sms_sender"),
		},
		Redis: RedisConfig{
			Host:      GetEnv("REDIS_HOST", "localhost"),
			Port:      GetEnv("REDIS_PORT", "6379"),
			Password:  GetEnv("REDIS_PASSWORD", ""),
			DB:        GetEnvAsInt("REDIS_DB", 0),
			ResultTTL: GetEnvAsDuration("REDIS_RESULT_TTL", 24*time.Hour),
		},
		HTTP: HTTPConfig{
			Timeout:      time.Duration(GetEnvAsInt("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
			RetryCount:   GetEnvAsInt("HTTP_RETRY_COUNT", 0),
			MaxRedirects: GetEnvAsInt("HTTP_MAX_REDIRECTS", 10),
		},
		Providers: ProvidersConfig{
			Default:             GetEnv("SMS_PROVIDER", ""),
			InternationalPrefix: GetEnv("SMS_INTERNATIONAL_PREFIX", ""),
			EnableDummy:         GetEnvAsBool("SMS_ENABLE_DUMMY", false),
			Nexmo: NexmoConfig{
				APIKey:    GetEnv("NEXMO_API_KEY", ""),
				APISecret: GetEnv("NEXMO_API_SECRET", ""),
			},
			Twilio: TwilioConfig{
				AccountSID: GetEnv("TWILIO_ACCOUNT_SID", ""),
				AuthToken:  GetEnv("TWILIO_AUTH_TOKEN", ""),
			},
			Cardboardfish: UserPasswordConfig{
				Username: GetEnv("CARDBOARDFISH_USERNAME", ""),
				Password: GetEnv("CARDBOARDFISH_PASSWORD", ""),
			},
			ValueFirst: UserPasswordConfig{
				Username: GetEnv("VALUEFIRST_USERNAME", ""),
				Password: GetEnv("VALUEFIRST_PASSWORD", ""),
			},
			Esendex: EsendexConfig{
				Username:   GetEnv("ESENDEX_USERNAME", ""),
				Password:   GetEnv("ESENDEX_PASSWORD", ""),
				AccountRef: GetEnv("ESENDEX_ACCOUNT_REF", ""),
			},
			Swisscom: ClientIDConfig{
				ClientID: GetEnv("SWISSCOM_CLIENT_ID", ""),
			},
			GSMAOneAPI: GSMAOneAPIConfig{
				Name:     GetEnv("ONEAPI_NAME", "oneapi"),
				Endpoint: GetEnv("ONEAPI_ENDPOINT", ""),
				ClientID: GetEnv("ONEAPI_CLIENT_ID", ""),
			},
			Websms: TokenConfig{
				AccessToken: GetEnv("WEBSMS_ACCESS_TOKEN", ""),
			},
			Twsms: UserPasswordConfig{
				Username: GetEnv("TWSMS_USERNAME", ""),
				Password: GetEnv("TWSMS_PASSWORD", ""),
			},
		},
		Sender: SenderConfig{
			Delayed:         GetEnvAsBool("SMS_DELAYED", false),
			SingleRecipient: GetEnv("SMS_SINGLE_RECIPIENT", ""),
			FlushInterval:   GetEnvAsDuration("SMS_FLUSH_INTERVAL", 2*time.Minute),
			MaxBodyLength:   GetEnvAsInt("SMS_MAX_BODY_LENGTH", 1000),
		},
		Alert: AlertConfig{
			WebhookURL:     GetEnv("ALERT_WEBHOOK_URL", ""),
			IterationCount: GetEnvAsInt("ALERT_ITERATION_COUNT", 0),
		},
		Auth: AuthConfig{
			SMSAPIKey:       GetEnv("SMS_API_KEY", ""),
			SchedulerAPIKey: GetEnv("SCHEDULER_API_KEY", ""),
		},
	}
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
