package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Payment  PaymentConfig
	JWT      JWTConfig
	Mail     MailConfig
	App      AppConfig
}

type ServerConfig struct {
	Port int
	Env  string // "development", "production"
}

type DatabaseConfig struct {
	Host    string
	Port    string
	Name    string
	User    string
	Pass    string
	Charset string
}

type RedisConfig struct {
	Addr string
	Pass string
	DB   int
}

// PaymentConfig selects the active provider and carries the credentials of
// both integrations. Secrets come only from the environment; they are never
// compiled in or sent to a browser.
type PaymentConfig struct {
	Provider string // "sipay" or "iyzico"
	Sipay    SipayConfig
	Iyzico   IyzicoConfig
}

type SipayConfig struct {
	MerchantKey string
	AppKey      string
	AppSecret   string
	MerchantID  string
	URL         string
}

type IyzicoConfig struct {
	APIKey    string
	SecretKey string
	BaseURI   string
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

type MailConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// AppConfig carries the public base URL used to build result/cancel and
// email links.
type AppConfig struct {
	BaseURL string
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("APP_BASE_URL", "http://localhost:8080")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_EXPIRY", "24h")
	viper.SetDefault("PAYMENT_PROVIDER", "iyzico")
	viper.SetDefault("SIPAY_URL", "https://provisioning.sipay.com.tr/ccpayment")
	viper.SetDefault("IYZICO_BASE_URI", "https://sandbox-api.iyzipay.com")
	viper.SetDefault("SMTP_PORT", "587")

	expiry, err := time.ParseDuration(viper.GetString("JWT_EXPIRY"))
	if err != nil {
		expiry = 24 * time.Hour
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		Database: DatabaseConfig{
			Host:    viper.GetString("DB_HOST"),
			Port:    viper.GetString("DB_PORT"),
			Name:    viper.GetString("DB_NAME"),
			User:    viper.GetString("DB_USER"),
			Pass:    viper.GetString("DB_PASS"),
			Charset: viper.GetString("DB_CHARSET"),
		},
		Redis: RedisConfig{
			Addr: viper.GetString("REDIS_ADDR"),
			Pass: viper.GetString("REDIS_PASS"),
			DB:   viper.GetInt("REDIS_DB"),
		},
		Payment: PaymentConfig{
			Provider: viper.GetString("PAYMENT_PROVIDER"),
			Sipay: SipayConfig{
				MerchantKey: viper.GetString("SIPAY_MERCHANT_KEY"),
				AppKey:      viper.GetString("SIPAY_APP_KEY"),
				AppSecret:   viper.GetString("SIPAY_APP_SECRET"),
				MerchantID:  viper.GetString("SIPAY_MERCHANT_ID"),
				URL:         viper.GetString("SIPAY_URL"),
			},
			Iyzico: IyzicoConfig{
				APIKey:    viper.GetString("IYZICO_API_KEY"),
				SecretKey: viper.GetString("IYZICO_SECRET_KEY"),
				BaseURI:   viper.GetString("IYZICO_BASE_URI"),
			},
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
			Expiry: expiry,
		},
		Mail: MailConfig{
			Host: viper.GetString("SMTP_HOST"),
			Port: viper.GetString("SMTP_PORT"),
			User: viper.GetString("SMTP_USER"),
			Pass: viper.GetString("SMTP_PASS"),
			From: viper.GetString("SMTP_FROM"),
		},
		App: AppConfig{
			BaseURL: viper.GetString("APP_BASE_URL"),
		},
	}

	if cfg.Database.Name == "" {
		log.Println("WARNING: DB_NAME is not set")
	}
	if cfg.JWT.Secret == "" {
		log.Println("WARNING: JWT_SECRET is not set")
	}

	return cfg, nil
}

// DSN returns the MySQL DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}
