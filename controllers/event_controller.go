package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rayhandestian/quickbites/consumer"
	"github.com/rayhandestian/quickbites/models"
	"go.uber.org/zap"
)

const (
	sourceHTTP      = "http"
	maxEnvelopeSize = 1 << 20
)

// EventController accepts change envelopes pushed over HTTP and runs them
// through the same dispatcher as the queue consumers.
type EventController struct {
	dispatcher consumer.Dispatcher
	logger     *zap.Logger
}

func NewEventController(d consumer.Dispatcher, logger *zap.Logger) *EventController {
	return &EventController{dispatcher: d, logger: logger}
}

func (ec *EventController) ReceiveOrderEvent(ctx *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxEnvelopeSize))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	event, err := models.DecodeChangeEvent(body, sourceHTTP)
	if err != nil {
		ec.logger.Warn("rejected change event", zap.Error(err))
		msg := "invalid change event"
		if errors.Is(err, models.ErrUnsupportedEvent) {
			msg = "unsupported event type"
		}
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	// A client that hangs up does not abort a send already under way.
	outcome := ec.dispatcher.Dispatch(context.WithoutCancel(ctx.Request.Context()), event)
	ctx.JSON(http.StatusAccepted, gin.H{
		"event_id": event.Meta().EventID,
		"outcome":  outcome,
	})
}
