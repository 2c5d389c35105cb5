package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Subscription owns one change stream. The creator of a Subscription is
// responsible for calling Close exactly once; Close blocks until the pump
// goroutine has released the stream.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}

// watch opens a change stream on col filtered to documents matching filter
// and invokes onChange after every event. The initial state is NOT delivered;
// callers query first, then subscribe.
func (d *DB) watch(ctx context.Context, col string, filter bson.M, onChange func(ctx context.Context)) (*Subscription, error) {
	match := bson.M{}
	for k, v := range filter {
		match["fullDocument."+k] = v
	}
	pipeline := mongo.Pipeline{{{Key: "$match", Value: match}}}

	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := d.collection(col).Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, err
	}

	streamCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(sub.done)
		defer stream.Close(context.Background())
		for stream.Next(streamCtx) {
			onChange(streamCtx)
		}
		if err := stream.Err(); err != nil && streamCtx.Err() == nil {
			d.logger.Warn("mongodb: change stream on " + col + " ended: " + err.Error())
		}
	}()
	return sub, nil
}
