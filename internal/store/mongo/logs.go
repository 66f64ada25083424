package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alpadrive/fleet-server/internal/apperr"
	"github.com/alpadrive/fleet-server/internal/domain/model"
)

// Logs is the repository backing the Telemetry Aggregator: one
// collection per vehicle, per spec.md §6 ("collections... one per
// vehicle for logs").
type Logs struct {
	client *Client
}

func NewLogs(client *Client) *Logs {
	return &Logs{client: client}
}

func collectionFor(vehicleID primitive.ObjectID) string {
	return fmt.Sprintf("logs_%s", vehicleID.Hex())
}

// FindLatest returns the most recently inserted DailyLog for vehicleID,
// the "base-stats lookup" spec.md §4.5 describes, or nil if the
// collection is empty.
func (r *Logs) FindLatest(ctx context.Context, vehicleID primitive.ObjectID) (*model.DailyLog, error) {
	res, err := r.client.execute(func() (interface{}, error) {
		opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})
		var log model.DailyLog
		err := r.client.Collection(collectionFor(vehicleID)).FindOne(ctx, bson.M{}, opts).Decode(&log)
		return &log, err
	})
	notFound, err := decodeOptional[model.DailyLog](res, err)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "find latest daily log", err)
	}
	return notFound, nil
}

// Insert creates the first DailyLog document of a calendar day for a
// vehicle, per spec.md §4.5's "first sample of day" rule.
func (r *Logs) Insert(ctx context.Context, vehicleID primitive.ObjectID, log model.DailyLog) (*model.DailyLog, error) {
	log.ID = primitive.NewObjectID()
	_, err := r.client.execute(func() (interface{}, error) {
		return r.client.Collection(collectionFor(vehicleID)).InsertOne(ctx, log)
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "insert daily log", err)
	}
	return &log, nil
}

// ReplaceByID persists an updated DailyLog in place, per spec.md §4.5's
// "persist the updated summary with an in-place update keyed by the
// document identifier."
func (r *Logs) ReplaceByID(ctx context.Context, vehicleID primitive.ObjectID, log model.DailyLog) error {
	_, err := r.client.execute(func() (interface{}, error) {
		return r.client.Collection(collectionFor(vehicleID)).ReplaceOne(ctx, bson.M{"_id": log.ID}, log)
	})
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "replace daily log", err)
	}
	return nil
}

// FindByDate returns the single DailyLog matching field==value (field
// is "date" in legacy mode, "date_key" in iso mode), per spec.md
// §4.5's dailylogs query.
func (r *Logs) FindByDate(ctx context.Context, vehicleID primitive.ObjectID, field, value string) (*model.DailyLog, error) {
	res, err := r.client.execute(func() (interface{}, error) {
		var log model.DailyLog
		err := r.client.Collection(collectionFor(vehicleID)).FindOne(ctx, bson.M{field: value}).Decode(&log)
		return &log, err
	})
	return decodeOne[model.DailyLog](res, err, fmt.Sprintf("There is no log for vehicle %s on the requested date.", vehicleID.Hex()))
}

// FindRange returns every DailyLog with field between start and end
// inclusive, ordered by insertion, for periodiclogs/overall_logs. field
// is "date" (lexicographic D-M-YYYY compare, legacy) or "date_key"
// (calendar-correct YYYY-MM-DD compare, iso).
func (r *Logs) FindRange(ctx context.Context, vehicleID primitive.ObjectID, field, start, end string) ([]model.DailyLog, error) {
	res, err := r.client.execute(func() (interface{}, error) {
		filter := bson.M{}
		if start != "" || end != "" {
			rng := bson.M{}
			if start != "" {
				rng["$gte"] = start
			}
			if end != "" {
				rng["$lte"] = end
			}
			filter[field] = rng
		}
		cursor, err := r.client.Collection(collectionFor(vehicleID)).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)
		var logs []model.DailyLog
		if err := cursor.All(ctx, &logs); err != nil {
			return nil, err
		}
		return logs, nil
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "find daily log range", err)
	}
	return res.([]model.DailyLog), nil
}

// decodeOptional is decodeOne without the NotFound mapping: an empty
// collection is a valid "no base document yet" state, not an error.
func decodeOptional[T any](res interface{}, err error) (*T, error) {
	if err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, err
	}
	return res.(*T), nil
}
