package services

import (
	"github.com/kenji-jpg/bread-myship-worker/config"
	"github.com/kenji-jpg/bread-myship-worker/interfaces"
	"github.com/kenji-jpg/bread-myship-worker/internal/logger"
	"github.com/kenji-jpg/bread-myship-worker/internal/metrics"
	"github.com/kenji-jpg/bread-myship-worker/services/breadapi"
	"github.com/kenji-jpg/bread-myship-worker/services/email_processor"
	"github.com/kenji-jpg/bread-myship-worker/services/events"
	"github.com/kenji-jpg/bread-myship-worker/services/forwarder"
	"github.com/kenji-jpg/bread-myship-worker/services/imapingest"
	"github.com/kenji-jpg/bread-myship-worker/services/reconciler"
)

type Services struct {
	BreadAPIClient  interfaces.BreadAPIClient
	Reconciler      interfaces.Reconciler
	EventsPublisher interfaces.EventsPublisher
	Forwarder       interfaces.Forwarder
	Processor       *email_processor.Processor
	IngestService   interfaces.IngestService
}

func InitServices(cfg *config.Config, log logger.Logger, workerMetrics *metrics.WorkerMetrics) (*Services, error) {
	breadAPI := breadapi.NewBreadAPIService(cfg.BreadAPIConfig, log)
	reconcilerService := reconciler.NewReconcilerService(breadAPI, log, workerMetrics)

	// events publisher is optional; the pipeline runs the same without it
	var publisher interfaces.EventsPublisher
	if cfg.AppConfig.RabbitMQURL != "" {
		var err error
		publisher, err = events.NewRabbitMQPublisher(cfg.AppConfig.RabbitMQURL, log)
		if err != nil {
			return nil, err
		}
	}

	// forwarding of non-myship mail is opt-in via config
	var fwd interfaces.Forwarder
	if cfg.SMTPConfig.Enabled() && cfg.MyshipConfig.ForwardAddress != "" {
		fwd = forwarder.NewSMTPForwarder(cfg.SMTPConfig, cfg.MyshipConfig, log)
	}

	processor := email_processor.NewProcessor(cfg.MyshipConfig, reconcilerService, fwd, publisher, workerMetrics, log)

	services := Services{
		BreadAPIClient:  breadAPI,
		Reconciler:      reconcilerService,
		EventsPublisher: publisher,
		Forwarder:       fwd,
		Processor:       processor,
		IngestService:   imapingest.NewIngestService(cfg.IMAPConfig, processor, log),
	}

	return &services, nil
}
