// Package storage provides the document persistence behind the
// mutation services: a MongoDB implementation for production, an
// in-memory one for tests, and a Redis read-through cache wrapper.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/namansharma28/CollabBoard-sub000/domain"
)

const (
	teamsCollection    = "teams"
	boardsCollection   = "boards"
	tasksCollection    = "tasks"
	messagesCollection = "messages"

	connectTimeout = 10 * time.Second
)

// Mongo is the MongoDB-backed document store. Identifiers are opaque
// uuid strings stored as _id so they round-trip through the wire
// protocol unchanged. Board counter adjustments use $inc, the storage
// layer's atomic increment, never a read-modify-write.
type Mongo struct {
	client   *mongo.Client
	teams    *mongo.Collection
	boards   *mongo.Collection
	tasks    *mongo.Collection
	messages *mongo.Collection
}

// NewMongo connects to the given MongoDB deployment and pings it.
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := client.Database(database)
	return &Mongo{
		client:   client,
		teams:    db.Collection(teamsCollection),
		boards:   db.Collection(boardsCollection),
		tasks:    db.Collection(tasksCollection),
		messages: db.Collection(messagesCollection),
	}, nil
}

// Close disconnects the underlying client.
func (s *Mongo) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Mongo) GetTeam(ctx context.Context, teamID string) (*domain.Team, error) {
	var t domain.Team
	err := s.teams.FindOne(ctx, bson.M{"_id": teamID}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Mongo) GetBoard(ctx context.Context, boardID string) (*domain.Board, error) {
	var b domain.Board
	err := s.boards.FindOne(ctx, bson.M{"_id": boardID}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Mongo) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	var t domain.Task
	err := s.tasks.FindOne(ctx, bson.M{"_id": taskID}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Mongo) InsertTask(ctx context.Context, t domain.Task) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if _, err := s.tasks.InsertOne(ctx, t); err != nil {
		return "", err
	}
	return t.ID, nil
}

func (s *Mongo) UpdateTask(ctx context.Context, taskID string, patch domain.TaskPatch) (*domain.Task, error) {
	set := bson.M{
		"updatedBy": patch.UpdatedBy,
		"updatedAt": patch.UpdatedAt,
	}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Priority != nil {
		set["priority"] = *patch.Priority
	}
	if patch.DueAt != nil {
		set["dueAt"] = *patch.DueAt
	}
	if patch.AssigneeID != nil {
		set["assigneeId"] = *patch.AssigneeID
	}
	if patch.StatusNote != nil {
		set["statusNote"] = *patch.StatusNote
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t domain.Task
	err := s.tasks.FindOneAndUpdate(ctx, bson.M{"_id": taskID}, bson.M{"$set": set}, opts).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Mongo) DeleteTask(ctx context.Context, taskID string) error {
	res, err := s.tasks.DeleteOne(ctx, bson.M{"_id": taskID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Mongo) ListTasks(ctx context.Context, boardID string) ([]domain.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.tasks.Find(ctx, bson.M{"boardId": boardID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	tasks := []domain.Task{}
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Mongo) AdjustBoardCounters(ctx context.Context, boardID string, totalDelta, completedDelta int) (*domain.Board, error) {
	update := bson.M{"$inc": bson.M{
		"totalTasks":     totalDelta,
		"completedTasks": completedDelta,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var b domain.Board
	err := s.boards.FindOneAndUpdate(ctx, bson.M{"_id": boardID}, update, opts).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Mongo) GetMessage(ctx context.Context, messageID string) (*domain.Message, error) {
	var m domain.Message
	err := s.messages.FindOne(ctx, bson.M{"_id": messageID}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Mongo) InsertMessage(ctx context.Context, m domain.Message) (string, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if _, err := s.messages.InsertOne(ctx, m); err != nil {
		return "", err
	}
	return m.ID, nil
}

func (s *Mongo) ListMessages(ctx context.Context, teamID, channel string, limit int) ([]domain.Message, error) {
	filter := bson.M{"teamId": teamID, "channel": channel}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cur, err := s.messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	msgs := []domain.Message{}
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}
	// Newest-first fetch for the limit, ascending order for callers.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
