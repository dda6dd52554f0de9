package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
)

type userDoc struct {
	ID           int64     `bson:"_id"`
	Email        string    `bson:"email"`
	Name         string    `bson:"name"`
	FirstName    string    `bson:"first_name"`
	LastName     string    `bson:"last_name"`
	PasswordHash string    `bson:"password_hash"`
	GroupID      *int64    `bson:"group_id"`
	RoleID       *int64    `bson:"role_id"`
	IsAdmin      bool      `bson:"is_admin"`
	IsValid      bool      `bson:"is_valid"`
	IsBlocked    bool      `bson:"is_blocked"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func newUserDoc(u *domain.User) userDoc {
	return userDoc{
		ID:           u.ID,
		Email:        strings.ToLower(u.Email),
		Name:         u.Name,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		GroupID:      u.GroupID,
		RoleID:       u.RoleID,
		IsAdmin:      u.IsAdmin,
		IsValid:      u.IsValid,
		IsBlocked:    u.IsBlocked,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID,
		Email:        d.Email,
		Name:         d.Name,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		PasswordHash: d.PasswordHash,
		GroupID:      d.GroupID,
		RoleID:       d.RoleID,
		IsAdmin:      d.IsAdmin,
		IsValid:      d.IsValid,
		IsBlocked:    d.IsBlocked,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

type userRepo struct {
	s   *Store
	col *mongo.Collection
}

func (r *userRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, id, bson.M{"_id": id})
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, 0, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *userRepo) FindByName(ctx context.Context, name string) (*domain.User, error) {
	return r.findOne(ctx, 0, bson.M{"name": name})
}

func (r *userRepo) findOne(ctx context.Context, id int64, filter bson.M) (*domain.User, error) {
	var d userDoc
	if err := r.col.FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, translate(domain.EntityUser, id, err)
	}
	return d.toDomain(), nil
}

func (r *userRepo) List(ctx context.Context) ([]*domain.User, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	out := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *userRepo) Insert(ctx context.Context, u *domain.User) error {
	id, err := r.s.nextID(ctx, collectionUsers)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := newUserDoc(u)
	doc.ID = id
	doc.CreatedAt, doc.UpdatedAt = now, now

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return translate(domain.EntityUser, 0, err)
	}
	u.ID = id
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

func (r *userRepo) Update(ctx context.Context, u *domain.User) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := newUserDoc(u)
	doc.UpdatedAt = now

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": bson.M{
		"email":         doc.Email,
		"name":          doc.Name,
		"first_name":    doc.FirstName,
		"last_name":     doc.LastName,
		"password_hash": doc.PasswordHash,
		"group_id":      doc.GroupID,
		"role_id":       doc.RoleID,
		"is_admin":      doc.IsAdmin,
		"is_valid":      doc.IsValid,
		"is_blocked":    doc.IsBlocked,
		"updated_at":    doc.UpdatedAt,
	}})
	if err != nil {
		return translate(domain.EntityUser, u.ID, err)
	}
	if res.MatchedCount == 0 {
		return &domain.NotFoundError{Entity: domain.EntityUser, ID: u.ID}
	}
	u.UpdatedAt = now
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return &domain.NotFoundError{Entity: domain.EntityUser, ID: id}
	}
	return nil
}

func (r *userRepo) ClearGroup(ctx context.Context, groupID int64) error {
	_, err := r.col.UpdateMany(ctx, bson.M{"group_id": groupID}, bson.M{"$set": bson.M{"group_id": nil}})
	return err
}

func (r *userRepo) ClearRole(ctx context.Context, roleID int64) error {
	_, err := r.col.UpdateMany(ctx, bson.M{"role_id": roleID}, bson.M{"$set": bson.M{"role_id": nil}})
	return err
}
