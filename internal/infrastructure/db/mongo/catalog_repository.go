package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
)

type namedDoc struct {
	ID          int64  `bson:"_id"`
	Name        string `bson:"name"`
	Description string `bson:"description"`
	Target      string `bson:"target,omitempty"`
}

// namedRepo serves the groups, roles and tools collections, which share
// a document shape.
type namedRepo struct {
	s      *Store
	col    *mongo.Collection
	entity string
}

func (r namedRepo) find(ctx context.Context, id int64) (namedDoc, error) {
	var d namedDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	return d, translate(r.entity, id, err)
}

func (r namedRepo) list(ctx context.Context) ([]namedDoc, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.col.Name(), err)
	}
	var docs []namedDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.col.Name(), err)
	}
	return docs, nil
}

func (r namedRepo) insert(ctx context.Context, d namedDoc) (int64, error) {
	id, err := r.s.nextID(ctx, r.col.Name())
	if err != nil {
		return 0, err
	}
	d.ID = id
	if _, err := r.col.InsertOne(ctx, d); err != nil {
		return 0, translate(r.entity, 0, err)
	}
	return id, nil
}

func (r namedRepo) update(ctx context.Context, d namedDoc) error {
	set := bson.M{"name": d.Name, "description": d.Description}
	if r.entity == domain.EntityTool {
		set["target"] = d.Target
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": d.ID}, bson.M{"$set": set})
	if err != nil {
		return translate(r.entity, d.ID, err)
	}
	if res.MatchedCount == 0 {
		return &domain.NotFoundError{Entity: r.entity, ID: d.ID}
	}
	return nil
}

func (r namedRepo) delete(ctx context.Context, id int64) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.entity, err)
	}
	if res.DeletedCount == 0 {
		return &domain.NotFoundError{Entity: r.entity, ID: id}
	}
	return nil
}

type groupRepo struct {
	namedRepo
}

func (r *groupRepo) FindByID(ctx context.Context, id int64) (*domain.Group, error) {
	d, err := r.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.Group{ID: d.ID, Name: d.Name, Description: d.Description}, nil
}

func (r *groupRepo) List(ctx context.Context) ([]*domain.Group, error) {
	docs, err := r.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Group, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.Group{ID: d.ID, Name: d.Name, Description: d.Description})
	}
	return out, nil
}

func (r *groupRepo) Insert(ctx context.Context, g *domain.Group) error {
	id, err := r.insert(ctx, namedDoc{Name: g.Name, Description: g.Description})
	if err != nil {
		return err
	}
	g.ID = id
	return nil
}

func (r *groupRepo) Update(ctx context.Context, g *domain.Group) error {
	return r.update(ctx, namedDoc{ID: g.ID, Name: g.Name, Description: g.Description})
}

func (r *groupRepo) Delete(ctx context.Context, id int64) error {
	return r.delete(ctx, id)
}

type roleRepo struct {
	namedRepo
}

func (r *roleRepo) FindByID(ctx context.Context, id int64) (*domain.Role, error) {
	d, err := r.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.Role{ID: d.ID, Name: d.Name, Description: d.Description}, nil
}

func (r *roleRepo) List(ctx context.Context) ([]*domain.Role, error) {
	docs, err := r.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Role, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.Role{ID: d.ID, Name: d.Name, Description: d.Description})
	}
	return out, nil
}

func (r *roleRepo) Insert(ctx context.Context, role *domain.Role) error {
	id, err := r.insert(ctx, namedDoc{Name: role.Name, Description: role.Description})
	if err != nil {
		return err
	}
	role.ID = id
	return nil
}

func (r *roleRepo) Update(ctx context.Context, role *domain.Role) error {
	return r.update(ctx, namedDoc{ID: role.ID, Name: role.Name, Description: role.Description})
}

func (r *roleRepo) Delete(ctx context.Context, id int64) error {
	return r.delete(ctx, id)
}

type toolRepo struct {
	s   *Store
	col *mongo.Collection
}

func (r *toolRepo) named() namedRepo {
	return namedRepo{s: r.s, col: r.col, entity: domain.EntityTool}
}

func (r *toolRepo) FindByID(ctx context.Context, id int64) (*domain.Tool, error) {
	d, err := r.named().find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.Tool{ID: d.ID, Name: d.Name, Description: d.Description, Target: d.Target}, nil
}

func (r *toolRepo) List(ctx context.Context) ([]*domain.Tool, error) {
	docs, err := r.named().list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Tool, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.Tool{ID: d.ID, Name: d.Name, Description: d.Description, Target: d.Target})
	}
	return out, nil
}

func (r *toolRepo) Insert(ctx context.Context, t *domain.Tool) error {
	id, err := r.named().insert(ctx, namedDoc{Name: t.Name, Description: t.Description, Target: t.Target})
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

func (r *toolRepo) Update(ctx context.Context, t *domain.Tool) error {
	return r.named().update(ctx, namedDoc{ID: t.ID, Name: t.Name, Description: t.Description, Target: t.Target})
}

func (r *toolRepo) Delete(ctx context.Context, id int64) error {
	return r.named().delete(ctx, id)
}
