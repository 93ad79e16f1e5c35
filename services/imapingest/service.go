package imapingest

import (
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	go_imap "github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/opentracing/opentracing-go"
	"golang.org/x/net/context"

	"github.com/kenji-jpg/bread-myship-worker/config"
	"github.com/kenji-jpg/bread-myship-worker/dto"
	"github.com/kenji-jpg/bread-myship-worker/interfaces"
	"github.com/kenji-jpg/bread-myship-worker/internal/enum"
	"github.com/kenji-jpg/bread-myship-worker/internal/logger"
	"github.com/kenji-jpg/bread-myship-worker/internal/tracing"
)

// IngestService polls one IMAP mailbox for unseen messages and feeds them
// into the processor. Each message is handed over exactly once and marked
// seen afterwards, whatever the processing outcome was; the processor owns
// all failure handling.
type IngestService struct {
	cfg       *config.IMAPConfig
	processor interfaces.EmailProcessor
	log       logger.Logger

	clientMutex sync.Mutex
	imapClient  *client.Client
	cancel      context.CancelFunc
	done        chan struct{}
}

func NewIngestService(cfg *config.IMAPConfig, processor interfaces.EmailProcessor, log logger.Logger) *IngestService {
	return &IngestService{
		cfg:       cfg,
		processor: processor,
		log:       log,
	}
}

func (s *IngestService) Start(ctx context.Context) error {
	if !s.cfg.Enabled() {
		s.log.Info("IMAP ingestion disabled, no IMAP_SERVER configured")
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.pollLoop(ctx)

	s.log.Infof("IMAP ingestion started for %s@%s folder %s", s.cfg.Username, s.cfg.Server, s.cfg.Folder)
	return nil
}

func (s *IngestService) Stop() error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	<-s.done

	s.clientMutex.Lock()
	defer s.clientMutex.Unlock()
	if s.imapClient != nil {
		err := s.imapClient.Logout()
		s.imapClient = nil
		return err
	}
	return nil
}

func (s *IngestService) pollLoop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(time.Duration(s.cfg.PollInterval) * time.Second)
	defer ticker.Stop()

	// First sweep right away, then on the ticker.
	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep fetches and processes all currently unseen messages. Connection
// errors drop the cached client so the next sweep reconnects.
func (s *IngestService) sweep(ctx context.Context) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IngestService.sweep")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	c, err := s.getConnectedClient(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		s.log.Errorf("IMAP connect failed: %v", err)
		return
	}

	if _, err := c.Select(s.cfg.Folder, false); err != nil {
		tracing.TraceErr(span, err)
		s.log.Errorf("IMAP select %s failed: %v", s.cfg.Folder, err)
		s.dropClient()
		return
	}

	criteria := go_imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{go_imap.SeenFlag}
	uids, err := c.UidSearch(criteria)
	if err != nil {
		tracing.TraceErr(span, err)
		s.log.Errorf("IMAP search failed: %v", err)
		s.dropClient()
		return
	}

	span.SetTag("unseen.count", len(uids))
	if len(uids) == 0 {
		return
	}

	for _, uid := range uids {
		if ctx.Err() != nil {
			return
		}
		if err := s.processUID(ctx, c, uid); err != nil {
			tracing.TraceErr(span, err)
			s.log.Errorf("IMAP fetch of uid %d failed: %v", uid, err)
			s.dropClient()
			return
		}
	}
}

func (s *IngestService) processUID(ctx context.Context, c *client.Client, uid uint32) error {
	seqSet := new(go_imap.SeqSet)
	seqSet.AddNum(uid)

	section := &go_imap.BodySectionName{}
	items := []go_imap.FetchItem{
		go_imap.FetchEnvelope,
		go_imap.FetchUid,
		section.FetchItem(),
	}

	messages := make(chan *go_imap.Message, 1)
	if err := c.UidFetch(seqSet, items, messages); err != nil {
		return err
	}

	msg, ok := <-messages
	if !ok || msg == nil {
		return fmt.Errorf("message with UID %d not found", uid)
	}

	raw := dto.RawEmailMessage{Source: enum.EmailSourceIMAP}
	if msg.Envelope != nil {
		raw.Subject = msg.Envelope.Subject
		if len(msg.Envelope.From) > 0 {
			raw.From = msg.Envelope.From[0].Address()
		}
		if len(msg.Envelope.To) > 0 {
			raw.To = msg.Envelope.To[0].Address()
		}
	}

	if body := msg.GetBody(section); body != nil {
		data, err := io.ReadAll(body)
		if err != nil {
			return err
		}
		raw.RawBytes = data
	}

	s.processor.ProcessMessage(ctx, raw)

	// Mark seen regardless of outcome; the processor never asks for a retry.
	item := go_imap.FormatFlagsOp(go_imap.AddFlags, true)
	flags := []interface{}{go_imap.SeenFlag}
	return c.UidStore(seqSet, item, flags, nil)
}

func (s *IngestService) getConnectedClient(ctx context.Context) (*client.Client, error) {
	s.clientMutex.Lock()
	defer s.clientMutex.Unlock()

	if s.imapClient != nil {
		return s.imapClient, nil
	}

	c, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	s.imapClient = c
	return c, nil
}

func (s *IngestService) dropClient() {
	s.clientMutex.Lock()
	defer s.clientMutex.Unlock()
	if s.imapClient != nil {
		s.imapClient.Logout()
		s.imapClient = nil
	}
}

func (s *IngestService) connect(ctx context.Context) (*client.Client, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "IngestService.connect")
	defer span.Finish()
	span.SetTag("server", s.cfg.Server)
	span.SetTag("port", s.cfg.Port)
	span.SetTag("tls", s.cfg.TLS)

	serverAddr := fmt.Sprintf("%s:%d", s.cfg.Server, s.cfg.Port)

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	var c *client.Client
	var err error

	if s.cfg.TLS {
		tlsConfig := &tls.Config{
			ServerName: s.cfg.Server,
		}
		c, err = client.DialWithDialerTLS(dialer, serverAddr, tlsConfig)
	} else {
		c, err = client.DialWithDialer(dialer, serverAddr)
	}
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, fmt.Errorf("failed to connect to %s: %w", serverAddr, err)
	}

	c.Timeout = 30 * time.Second
	if err := c.Login(s.cfg.Username, s.cfg.Password); err != nil {
		c.Logout()
		tracing.TraceErr(span, err)
		return nil, fmt.Errorf("failed to login as %s: %w", s.cfg.Username, err)
	}
	c.Timeout = 0

	s.log.Infof("connected and logged in to %s", serverAddr)
	return c, nil
}
