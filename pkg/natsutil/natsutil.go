// Package natsutil provides typed NATS publish/subscribe/request helpers
// with OpenTelemetry trace propagation.
package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
)

// errorHeader marks a reply whose body is an error string rather than a
// Resp value.
const errorHeader = "Fitment-Error"

// RemoteError is returned by Request when the responder's handler failed.
type RemoteError struct {
	Subject string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("natsutil: %s: remote: %s", e.Subject, e.Message)
}

// natsHeaderCarrier adapts nats.Msg headers for OTel TextMapCarrier.
type natsHeaderCarrier nats.Msg

func (c *natsHeaderCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *natsHeaderCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *natsHeaderCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// Publish serializes v as JSON and publishes to the given subject.
// Trace context from ctx is injected into NATS message headers.
func Publish[T any](ctx context.Context, nc *nats.Conn, subject string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("natsutil: marshal %s: %w", subject, err)
	}
	msg := &nats.Msg{Subject: subject, Data: data}
	otel.GetTextMapPropagator().Inject(ctx, (*natsHeaderCarrier)(msg))
	return nc.PublishMsg(msg)
}

// Subscribe registers a handler that deserializes JSON messages of type T.
// Malformed messages are dropped.
func Subscribe[T any](nc *nats.Conn, subject string, handler func(context.Context, T)) (*nats.Subscription, error) {
	return nc.Subscribe(subject, func(msg *nats.Msg) {
		var v T
		if err := json.Unmarshal(msg.Data, &v); err != nil {
			return
		}
		ctx := otel.GetTextMapPropagator().Extract(context.Background(), (*natsHeaderCarrier)(msg))
		handler(ctx, v)
	})
}

// Request sends a JSON-encoded request and decodes the response. When ctx
// carries no deadline, nats.DefaultTimeout applies.
func Request[Req, Resp any](ctx context.Context, nc *nats.Conn, subject string, req Req) (Resp, error) {
	var zero Resp
	data, err := json.Marshal(req)
	if err != nil {
		return zero, fmt.Errorf("natsutil: marshal %s: %w", subject, err)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, nats.DefaultTimeout)
		defer cancel()
	}
	msg := &nats.Msg{Subject: subject, Data: data}
	otel.GetTextMapPropagator().Inject(ctx, (*natsHeaderCarrier)(msg))
	resp, err := nc.RequestMsgWithContext(ctx, msg)
	if err != nil {
		return zero, fmt.Errorf("natsutil: request %s: %w", subject, err)
	}
	if resp.Header != nil && resp.Header.Get(errorHeader) != "" {
		return zero, &RemoteError{Subject: subject, Message: string(resp.Data)}
	}
	var result Resp
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return zero, fmt.Errorf("natsutil: decode %s reply: %w", subject, err)
	}
	return result, nil
}

// Respond serves request/reply on subject. Handler errors travel back to
// the requester as a RemoteError. A non-empty queue load-balances across
// replicas. Malformed requests are answered with an error reply.
func Respond[Req, Resp any](nc *nats.Conn, subject, queue string, logger *slog.Logger, handler func(context.Context, Req) (Resp, error)) (*nats.Subscription, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cb := func(msg *nats.Msg) {
		if msg.Reply == "" {
			return
		}
		ctx := otel.GetTextMapPropagator().Extract(context.Background(), (*natsHeaderCarrier)(msg))

		var req Req
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			respondError(msg, logger, fmt.Errorf("malformed request: %w", err))
			return
		}
		resp, err := handler(ctx, req)
		if err != nil {
			respondError(msg, logger, err)
			return
		}
		data, err := json.Marshal(resp)
		if err != nil {
			respondError(msg, logger, err)
			return
		}
		if err := msg.Respond(data); err != nil {
			logger.Error("natsutil: respond", "subject", msg.Subject, "err", err)
		}
	}
	if queue != "" {
		return nc.QueueSubscribe(subject, queue, cb)
	}
	return nc.Subscribe(subject, cb)
}

func respondError(msg *nats.Msg, logger *slog.Logger, err error) {
	reply := nats.NewMsg(msg.Reply)
	reply.Header.Set(errorHeader, "1")
	reply.Data = []byte(err.Error())
	if rerr := msg.RespondMsg(reply); rerr != nil && !errors.Is(rerr, nats.ErrMsgNoReply) {
		logger.Error("natsutil: respond error", "subject", msg.Subject, "err", rerr)
	}
}
