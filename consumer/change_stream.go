package consumer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rayhandestian/quickbites/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const sourceChangeStream = "mongo"

// changeDocument is the subset of a change stream event the watcher reads.
type changeDocument struct {
	ID struct {
		Data string `bson:"_data"`
	} `bson:"_id"`
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID bson.RawValue `bson:"_id"`
	} `bson:"documentKey"`
	FullDocument             *models.Order `bson:"fullDocument"`
	FullDocumentBeforeChange *models.Order `bson:"fullDocumentBeforeChange"`
}

// ChangeStreamWatcher turns inserts and updates on the orders collection into
// change events. Update events carry a before image only when the collection
// has pre-images enabled.
type ChangeStreamWatcher struct {
	collection  *mongo.Collection
	dispatcher  Dispatcher
	logger      *zap.Logger
	backoff     time.Duration
	resumeToken bson.Raw
}

func NewChangeStreamWatcher(collection *mongo.Collection, d Dispatcher, logger *zap.Logger) *ChangeStreamWatcher {
	return &ChangeStreamWatcher{
		collection: collection,
		dispatcher: d,
		logger:     logger.With(zap.String("source", sourceChangeStream), zap.String("collection", collection.Name())),
		backoff:    receiveErrorBackoff,
	}
}

func (w *ChangeStreamWatcher) pipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "operationType", Value: bson.D{{Key: "$in", Value: bson.A{"insert", "update", "replace"}}}},
		}}},
	}
}

// Start watches until ctx is done, reopening the stream after errors from the
// last seen resume token.
func (w *ChangeStreamWatcher) Start(ctx context.Context) {
	w.logger.Info("change stream watcher started")
	for ctx.Err() == nil {
		if err := w.watch(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error("change stream failed", zap.Error(err))
			sleep(ctx, w.backoff)
		}
	}
	w.logger.Info("change stream watcher shutting down")
}

func (w *ChangeStreamWatcher) watch(ctx context.Context) error {
	opts := options.ChangeStream().
		SetFullDocument(options.UpdateLookup).
		SetFullDocumentBeforeChange(options.WhenAvailable)
	if w.resumeToken != nil {
		opts.SetResumeAfter(w.resumeToken)
	}

	stream, err := w.collection.Watch(ctx, w.pipeline(), opts)
	if err != nil {
		return err
	}
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		w.resumeToken = stream.ResumeToken()

		var doc changeDocument
		if err := stream.Decode(&doc); err != nil {
			w.logger.Error("failed to decode change stream event", zap.Error(err))
			continue
		}
		event, ok := eventFromChange(doc)
		if !ok {
			w.logger.Debug("ignoring change stream event", zap.String("operation", doc.OperationType))
			continue
		}
		w.dispatcher.Dispatch(context.WithoutCancel(ctx), event)
	}
	return stream.Err()
}

// eventFromChange maps inserts to created events and updates or replaces to
// updated events.
func eventFromChange(doc changeDocument) (models.ChangeEvent, bool) {
	meta := models.EventMeta{
		EventID:    doc.ID.Data,
		OrderID:    documentID(doc.DocumentKey.ID),
		Source:     sourceChangeStream,
		ReceivedAt: time.Now().UTC(),
	}
	if meta.EventID == "" {
		meta.EventID = uuid.NewString()
	}
	before := withID(doc.FullDocumentBeforeChange, meta.OrderID)
	after := withID(doc.FullDocument, meta.OrderID)

	switch doc.OperationType {
	case "insert":
		return &models.OrderCreatedEvent{EventMeta: meta, Snapshot: after}, true
	case "update", "replace":
		ev := &models.OrderUpdatedEvent{EventMeta: meta}
		if before != nil || after != nil {
			ev.Change = &models.OrderChange{Before: before, After: after}
		}
		return ev, true
	default:
		return nil, false
	}
}

func withID(o *models.Order, id string) *models.Order {
	if o != nil {
		o.ID = id
	}
	return o
}

// documentID renders a document key: ObjectIDs as hex, strings as-is.
func documentID(v bson.RawValue) string {
	if oid, ok := v.ObjectIDOK(); ok {
		return oid.Hex()
	}
	if s, ok := v.StringValueOK(); ok {
		return s
	}
	if v.Type == 0 {
		return ""
	}
	return v.String()
}
