package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	published   []*nats.Msg
	hadDeadline bool
	publishErr  error
	drained     bool
}

func (f *fakeConn) PublishMsg(msg *nats.Msg) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeConn) FlushWithContext(ctx context.Context) error {
	_, f.hadDeadline = ctx.Deadline()
	return nil
}

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func TestNATSPublisher_Publish(t *testing.T) {
	conn := &fakeConn{}
	p := newNATSPublisher(conn, "", nil)

	err := p.Publish(context.Background(), Document{
		Format:   "turtle",
		MIMEType: "text/turtle",
		Triples:  42,
		Data:     []byte("@prefix owl: <http://www.w3.org/2002/07/owl#> .\n"),
	})
	require.NoError(t, err)

	require.Len(t, conn.published, 1)
	msg := conn.published[0]
	assert.Equal(t, DefaultSubject, msg.Subject)
	assert.Equal(t, "text/turtle", msg.Header.Get(HeaderContentType))
	assert.Equal(t, "turtle", msg.Header.Get(HeaderFormat))
	assert.Equal(t, "42", msg.Header.Get(HeaderTriples))
	assert.True(t, conn.hadDeadline, "flush always runs with a deadline")

	require.NoError(t, p.Close())
	assert.True(t, conn.drained)
}

func TestNATSPublisher_PublishError(t *testing.T) {
	conn := &fakeConn{publishErr: nats.ErrConnectionClosed}
	p := newNATSPublisher(conn, "ontology.hpc", nil)

	err := p.Publish(context.Background(), Document{Format: "turtle"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, nats.ErrConnectionClosed))
	assert.Contains(t, err.Error(), "ontology.hpc")
}

func TestNATSPublisher_NilIsNoop(t *testing.T) {
	var p *NATSPublisher
	assert.NoError(t, p.Publish(context.Background(), Document{}))
	assert.NoError(t, p.Close())
}
