package graph

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubject receives compiled ontologies when none is configured.
const DefaultSubject = "ontology.compiled"

// Message headers set on every published document.
const (
	HeaderContentType = "Content-Type"
	HeaderFormat      = "Ontoc-Format"
	HeaderTriples     = "Ontoc-Triples"
)

// Document is a serialized ontology ready to be published.
type Document struct {
	Format   string
	MIMEType string
	Triples  int
	Data     []byte
}

// Publisher delivers compiled documents somewhere outside the process.
type Publisher interface {
	Publish(ctx context.Context, doc Document) error
	Close() error
}

// natsConn is the subset of *nats.Conn the publisher uses.
type natsConn interface {
	PublishMsg(msg *nats.Msg) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// NATSPublisher publishes documents to a core NATS subject.
type NATSPublisher struct {
	conn    natsConn
	subject string
	logger  *slog.Logger
}

// flushTimeout bounds Flush when the caller's context has no deadline.
const flushTimeout = 10 * time.Second

// ConnectNATS dials url and returns a publisher for subject.
func ConnectNATS(url, subject string, logger *slog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("ontoc"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	return newNATSPublisher(nc, subject, logger), nil
}

func newNATSPublisher(conn natsConn, subject string, logger *slog.Logger) *NATSPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSPublisher{conn: conn, subject: subject, logger: logger}
}

// Publish sends doc and waits for the server to acknowledge the flush.
func (p *NATSPublisher) Publish(ctx context.Context, doc Document) error {
	if p == nil || p.conn == nil {
		return nil // Skip publishing if no NATS connection (graceful degradation)
	}

	msg := nats.NewMsg(p.subject)
	msg.Data = doc.Data
	msg.Header.Set(HeaderContentType, doc.MIMEType)
	msg.Header.Set(HeaderFormat, doc.Format)
	msg.Header.Set(HeaderTriples, strconv.Itoa(doc.Triples))

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish ontology to %s: %w", p.subject, err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flushTimeout)
		defer cancel()
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush ontology to %s: %w", p.subject, err)
	}

	p.logger.Info("Published ontology",
		slog.String("subject", p.subject),
		slog.String("format", doc.Format),
		slog.Int("bytes", len(doc.Data)))
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	if p == nil || p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
