// Package mongostore implements account.Storage on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	mongoopts "go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/alqudsguide/backend/svc/account"
)

const (
	DefaultCollection = "accounts"

	emailIndex    = "email_unique"
	identityIndex = "federated_identity_unique"
)

// Store keeps accounts in one collection.
type Store struct {
	col *mongo.Collection
}

var _ account.Storage = (*Store)(nil)

type Option func(*storeOptions)

type storeOptions struct{ collection string }

func WithCollection(name string) Option {
	return func(o *storeOptions) {
		if name != "" {
			o.collection = name
		}
	}
}

// New returns a store on db and creates its indexes.
func New(ctx context.Context, db *mongo.Database, opts ...Option) (*Store, error) {
	o := storeOptions{collection: DefaultCollection}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store{col: db.Collection(o.collection)}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: mongoopts.Index().
				SetName(emailIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "email", Value: bson.D{{Key: "$type", Value: "string"}}}}),
		},
		{
			Keys: bson.D{
				{Key: "federated_identities.provider", Value: 1},
				{Key: "federated_identities.subject", Value: 1},
			},
			Options: mongoopts.Index().
				SetName(identityIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "federated_identities.subject", Value: bson.D{{Key: "$exists", Value: true}}}}),
		},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "status", Value: 1}}},
	}
	if _, err := s.col.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create account indexes: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	if email == "" {
		return nil, account.ErrAccountNotFound
	}
	return s.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *Store) FindByFederatedIdentity(ctx context.Context, provider, subject string) (*account.Account, error) {
	return s.findOne(ctx, bson.D{{Key: "federated_identities", Value: bson.D{
		{Key: "$elemMatch", Value: bson.D{{Key: "provider", Value: provider}, {Key: "subject", Value: subject}}},
	}}})
}

func (s *Store) Create(ctx context.Context, acc *account.Account) error {
	if _, err := s.col.InsertOne(ctx, toDoc(acc)); err != nil {
		return wrapError(err)
	}
	return nil
}

// Update applies upd with a single findOneAndUpdate.
func (s *Store) Update(ctx context.Context, id uuid.UUID, upd account.Update) (*account.Account, error) {
	if fi := upd.AddIdentity; fi != nil {
		owner, err := s.FindByFederatedIdentity(ctx, fi.Provider, fi.Subject)
		switch {
		case err == nil && owner.ID == id:
			upd.AddIdentity = nil
		case err == nil:
			return nil, account.ErrIdentityLinked
		case !errors.Is(err, account.ErrAccountNotFound):
			return nil, err
		}
	}

	doc := buildUpdate(upd)
	if len(doc) == 0 {
		return s.FindByID(ctx, id)
	}

	var out accountDoc
	err := s.col.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id.String()}},
		doc,
		mongoopts.FindOneAndUpdate().SetReturnDocument(mongoopts.After),
	).Decode(&out)
	if err != nil {
		return nil, wrapError(err)
	}
	return out.toAccount()
}

func buildUpdate(upd account.Update) bson.D {
	set := bson.D{}
	unset := bson.D{}

	if upd.Email != nil {
		if *upd.Email == "" {
			unset = append(unset, bson.E{Key: "email", Value: ""})
		} else {
			set = append(set, bson.E{Key: "email", Value: *upd.Email})
		}
	}
	if upd.PasswordHash != nil {
		set = append(set, bson.E{Key: "password_hash", Value: *upd.PasswordHash})
	}
	if upd.PasswordChangedAt != nil {
		set = append(set, bson.E{Key: "password_changed_at", Value: *upd.PasswordChangedAt})
	}
	if upd.Status != nil {
		set = append(set, bson.E{Key: "status", Value: string(*upd.Status)})
	}
	if upd.Role != nil {
		set = append(set, bson.E{Key: "role", Value: string(*upd.Role)})
	}
	if upd.SecuritySettings != nil {
		set = append(set, bson.E{Key: "security_settings", Value: *upd.SecuritySettings})
	}
	switch {
	case upd.SetPending != nil:
		set = append(set,
			bson.E{Key: "pending_email", Value: upd.SetPending.Email},
			bson.E{Key: "pending_email_token", Value: upd.SetPending.TokenDigest},
		)
	case upd.ClearPending:
		unset = append(unset,
			bson.E{Key: "pending_email", Value: ""},
			bson.E{Key: "pending_email_token", Value: ""},
		)
	}
	if !upd.UpdatedAt.IsZero() {
		set = append(set, bson.E{Key: "updated_at", Value: upd.UpdatedAt})
	}

	doc := bson.D{}
	if len(set) > 0 {
		doc = append(doc, bson.E{Key: "$set", Value: set})
	}
	if len(unset) > 0 {
		doc = append(doc, bson.E{Key: "$unset", Value: unset})
	}
	if fi := upd.AddIdentity; fi != nil {
		doc = append(doc, bson.E{Key: "$push", Value: bson.D{{Key: "federated_identities", Value: identityDoc(*fi)}}})
	}
	return doc
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
	if err != nil {
		return wrapError(err)
	}
	if res.DeletedCount == 0 {
		return account.ErrAccountNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context, filter account.ListFilter) ([]*account.Account, error) {
	filter = filter.Normalize()

	q := bson.D{}
	if filter.Role == account.RoleUser {
		q = append(q, bson.E{Key: "role", Value: bson.D{{Key: "$in", Value: bson.A{"user", ""}}}})
	} else if filter.Role != "" {
		q = append(q, bson.E{Key: "role", Value: string(filter.Role)})
	}
	if filter.Status != "" {
		q = append(q, bson.E{Key: "status", Value: string(filter.Status)})
	}
	if filter.EmailContains != "" {
		q = append(q, bson.E{Key: "email", Value: bson.Regex{Pattern: regexp.QuoteMeta(filter.EmailContains), Options: "i"}})
	}

	cur, err := s.col.Find(ctx, q, mongoopts.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(filter.Offset)).
		SetLimit(int64(filter.Limit)),
	)
	if err != nil {
		return nil, wrapError(err)
	}
	defer cur.Close(ctx)

	var docs []accountDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapError(err)
	}

	out := make([]*account.Account, 0, len(docs))
	for _, d := range docs {
		acc, err := d.toAccount()
		if err != nil {
			return nil, err
		}
		out = append(out, acc)
	}
	return out, nil
}

func (s *Store) findOne(ctx context.Context, filter bson.D) (*account.Account, error) {
	var d accountDoc
	if err := s.col.FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, wrapError(err)
	}
	return d.toAccount()
}

func wrapError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return account.ErrAccountNotFound
	case mongo.IsDuplicateKeyError(err):
		if strings.Contains(err.Error(), identityIndex) {
			return account.ErrIdentityLinked
		}
		return account.ErrEmailTaken
	}
	return err
}
