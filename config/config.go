package config

type AppConfig struct {
	APIPort     string `env:"PORT,required" envDefault:"12223"`
	APIKey      string `env:"API_KEY,required"`
	RabbitMQURL string `env:"RABBITMQ_URL"`
}

type BreadAPIConfig struct {
	URL        string `env:"BREAD_API_URL,required"`
	ServiceKey string `env:"BREAD_SERVICE_KEY,required"`
}

type MyshipConfig struct {
	// SenderAddress is the single allow-listed address shipping notifications
	// arrive from. Anything else is ignored.
	SenderAddress  string `env:"MYSHIP_SENDER_ADDRESS" envDefault:"no-reply@sp88.com"`
	ForwardAddress string `env:"MYSHIP_FORWARD_ADDRESS"`
}

type IMAPConfig struct {
	Server       string `env:"IMAP_SERVER"`
	Port         int    `env:"IMAP_PORT" envDefault:"993"`
	Username     string `env:"IMAP_USERNAME"`
	Password     string `env:"IMAP_PASSWORD"`
	Folder       string `env:"IMAP_FOLDER" envDefault:"INBOX"`
	TLS          bool   `env:"IMAP_TLS" envDefault:"true"`
	PollInterval int    `env:"IMAP_POLL_INTERVAL_SECONDS" envDefault:"60"`
}

func (c *IMAPConfig) Enabled() bool {
	return c.Server != ""
}

type SMTPConfig struct {
	Server   string `env:"SMTP_SERVER"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
}

func (c *SMTPConfig) Enabled() bool {
	return c.Server != ""
}
