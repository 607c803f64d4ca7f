package notify

import (
	"strings"

	"github.com/smallbiznis/churnscope/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("notify",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) Notifier {
	log = log.Named("notify")

	switch cfg.Notify.Mode {
	case "webhook":
		if cfg.Notify.WebhookEndpoint == "" {
			log.Warn("webhook notifier selected but no endpoint configured, notifications disabled")
			return NoOpNotifier{}
		}
		return NewWebhook(cfg.Notify.WebhookEndpoint)
	case "smtp":
		if cfg.Notify.SMTPHost == "" || cfg.Notify.SMTPTo == "" {
			log.Warn("smtp notifier selected but host or recipients missing, notifications disabled")
			return NoOpNotifier{}
		}
		return NewSMTP(SMTPConfig{
			Host:     cfg.Notify.SMTPHost,
			Port:     cfg.Notify.SMTPPort,
			Username: cfg.Notify.SMTPUsername,
			Password: cfg.Notify.SMTPPassword,
			From:     cfg.Notify.SMTPFrom,
			To:       splitRecipients(cfg.Notify.SMTPTo),
		})
	default:
		return NoOpNotifier{}
	}
}

func splitRecipients(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
