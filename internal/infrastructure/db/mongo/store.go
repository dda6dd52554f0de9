package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
	"github.com/opsdesk/toolbox-admin/internal/core/ports"
)

const (
	collectionUsers    = "users"
	collectionGroups   = "groups"
	collectionRoles    = "roles"
	collectionTools    = "tools"
	collectionCounters = "counters"

	uniqueIndexPrefix = "uniq_"
)

// Store is a ports.Store backed by MongoDB. Transactions need a replica set
// or sharded cluster.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	tx     bool
}

var _ ports.Store = (*Store)(nil)

func NewStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{client: client, db: db}
}

func (s *Store) Users() ports.UserRepository { return &userRepo{s: s, col: s.db.Collection(collectionUsers)} }

func (s *Store) Groups() ports.GroupRepository {
	return &groupRepo{namedRepo{s: s, col: s.db.Collection(collectionGroups), entity: domain.EntityGroup}}
}

func (s *Store) Roles() ports.RoleRepository {
	return &roleRepo{namedRepo{s: s, col: s.db.Collection(collectionRoles), entity: domain.EntityRole}}
}

func (s *Store) Tools() ports.ToolRepository { return &toolRepo{s: s, col: s.db.Collection(collectionTools)} }

// WithinTx runs fn inside a multi-document transaction. The context passed
// to fn carries the session, so every repository call made with it joins the
// transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Store) error) error {
	if s.tx {
		return fn(ctx, s)
	}

	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("mongo start session: %w", err)
	}
	defer sess.EndSession(ctx)

	txStore := &Store{client: s.client, db: s.db, tx: true}
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, txStore)
	})
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique indexes the repositories rely on for
// conflict detection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true).SetName(uniqueIndexPrefix + field),
		}
	}

	specs := map[string][]mongo.IndexModel{
		collectionUsers: {
			unique("email"),
			unique("name"),
			{Keys: bson.D{{Key: "group_id", Value: 1}}},
			{Keys: bson.D{{Key: "role_id", Value: 1}}},
		},
		collectionGroups: {unique("name")},
		collectionRoles:  {unique("name")},
		collectionTools:  {unique("name")},
	}

	for name, indexes := range specs {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

type counter struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// nextID allocates the next integer id for a collection.
func (s *Store) nextID(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var c counter
	err := s.db.Collection(collectionCounters).
		FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": 1}}, opts).
		Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("next id for %s: %w", name, err)
	}
	return c.Seq, nil
}

// translate maps driver errors onto the domain taxonomy.
func translate(entity string, id int64, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &domain.NotFoundError{Entity: entity, ID: id}
	}
	if mongo.IsDuplicateKeyError(err) {
		return &domain.ConflictError{Entity: entity, Field: duplicateField(err.Error())}
	}
	return err
}

// duplicateField extracts "email" from an E11000 message naming index
// "uniq_email".
func duplicateField(msg string) string {
	_, rest, ok := strings.Cut(msg, "index: "+uniqueIndexPrefix)
	if !ok {
		return ""
	}
	if i := strings.IndexAny(rest, " :"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
