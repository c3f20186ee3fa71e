package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStore implements the credential store over MongoDB.
//
// Documents carry denormalized email_norm/username_norm fields with unique
// indexes; duplicate-key errors from those indexes are the uniqueness
// authority and are classified into ConflictError. The client is owned by
// the caller; Close does NOT disconnect it.
type MongoStore struct {
	coll *mongo.Collection
}

const userCollection = "users"

// NewMongoStore constructs a MongoStore over db.
func NewMongoStore(db *mongo.Database) (*MongoStore, error) {
	if db == nil {
		return nil, fmt.Errorf("identity: nil mongo database")
	}
	return &MongoStore{coll: db.Collection(userCollection)}, nil
}

// userDoc is the persisted shape: the user record plus normalized lookup keys.
type userDoc struct {
	User         `bson:",inline"`
	EmailNorm    string `bson:"email_norm"`
	UsernameNorm string `bson:"username_norm"`
}

func (s *MongoStore) Insert(ctx context.Context, u User) error {
	const op = "identity.MongoStore.Insert"

	if strings.TrimSpace(u.ID) == "" {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "missing id"}
	}

	doc := userDoc{
		User:         u,
		EmailNorm:    NormalizeEmail(u.Email),
		UsernameNorm: NormalizeUsername(u.Username),
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ConflictError{Op: op, Field: mongoConflictField(err)}
		}
		return err
	}
	return nil
}

func (s *MongoStore) FindOne(ctx context.Context, filters ...Filter) (User, error) {
	const op = "identity.MongoStore.FindOne"

	if err := ValidateFilters(filters); err != nil {
		return User{}, err
	}
	query, err := mongoQuery(filters)
	if err != nil {
		return User{}, err
	}

	var u User
	if err := s.coll.FindOne(ctx, query).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return User{}, NotFoundError{Op: op, Resource: "user"}
		}
		return User{}, err
	}
	return u, nil
}

func (s *MongoStore) Find(ctx context.Context, opts FindOptions, filters ...Filter) ([]User, error) {
	for _, f := range filters {
		if err := f.Validate(); err != nil {
			return nil, err
		}
	}
	query, err := mongoQuery(filters)
	if err != nil {
		return nil, err
	}

	findOpts := options.Find()
	order := 1
	if opts.SortNewestFirst {
		order = -1
	}
	findOpts.SetSort(bson.D{{Key: "created_at", Value: order}})
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		findOpts.SetSkip(int64(opts.Offset))
	}

	cursor, err := s.coll.Find(ctx, query, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []User{}
	for cursor.Next(ctx) {
		var u User
		if err := cursor.Decode(&u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, cursor.Err()
}

func (s *MongoStore) Exists(ctx context.Context, filters ...Filter) (bool, error) {
	if err := ValidateFilters(filters); err != nil {
		return false, err
	}
	query, err := mongoQuery(filters)
	if err != nil {
		return false, err
	}

	n, err := s.coll.CountDocuments(ctx, query, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *MongoStore) UpdateByFilter(ctx context.Context, p Patch, filters ...Filter) (User, error) {
	const op = "identity.MongoStore.UpdateByFilter"

	if err := ValidateFilters(filters); err != nil {
		return User{}, err
	}
	if err := p.Validate(); err != nil {
		return User{}, err
	}

	query, err := mongoQuery(filters)
	if err != nil {
		return User{}, err
	}

	set := mongoSet(p)
	if len(set) == 0 {
		return s.FindOne(ctx, filters...)
	}
	set["updated_at"] = time.Now().UTC()

	res := s.coll.FindOneAndUpdate(
		ctx,
		query,
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var u User
	if err := res.Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return User{}, NotFoundError{Op: op, Resource: "user"}
		}
		return User{}, err
	}
	return u, nil
}

// EnsureIndexes creates the unique lookup indexes and the location index.
// This is the one-shot migration entry point, never a boot side effect.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_norm", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uq_users_email_norm"),
		},
		{
			Keys:    bson.D{{Key: "username_norm", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uq_users_username_norm"),
		},
		{
			Keys: bson.D{
				{Key: "location.country", Value: 1},
				{Key: "location.city", Value: 1},
			},
			Options: options.Index().SetName("ix_users_location"),
		},
	})
	return err
}

// Close is a no-op: the mongo client is owned by the app.
func (s *MongoStore) Close(_ context.Context) error { return nil }

// ---- helpers ----

func mongoQuery(filters []Filter) (bson.M, error) {
	q := bson.M{}
	for _, f := range filters {
		key, ok := mongoKey(f.Field)
		if !ok {
			return nil, OpError{Op: "identity.MongoStore", Kind: ErrInvalidInput, Msg: "unmapped filter field"}
		}
		switch f.Op {
		case OpEq:
			q[key] = f.Value
		case OpPrefix:
			q[key] = bson.Regex{Pattern: "^" + regexp.QuoteMeta(f.Value)}
		case OpRange:
			r := bson.M{}
			if !f.From.IsZero() {
				r["$gte"] = f.From
			}
			if !f.To.IsZero() {
				r["$lt"] = f.To
			}
			q[key] = r
		default:
			return nil, OpError{Op: "identity.MongoStore", Kind: ErrInvalidInput, Msg: "unmapped filter op"}
		}
	}
	return q, nil
}

func mongoKey(f Field) (string, bool) {
	switch f {
	case FieldID:
		return "_id", true
	case FieldEmail:
		return "email_norm", true
	case FieldUsername:
		return "username_norm", true
	case FieldCountry:
		return "location.country", true
	case FieldCity:
		return "location.city", true
	case FieldJoined:
		return "stats.joined_date", true
	default:
		return "", false
	}
}

func mongoSet(p Patch) bson.M {
	set := bson.M{}
	if p.FullName != nil {
		set["full_name"] = strings.TrimSpace(*p.FullName)
	}
	if p.ProfilePhoto != nil {
		set["profile_photo"] = strings.TrimSpace(*p.ProfilePhoto)
	}
	if p.Bio != nil {
		set["bio"] = *p.Bio
	}
	if p.Location != nil {
		set["location"] = *p.Location
	}
	if p.Preferences != nil {
		set["preferences"] = *p.Preferences
	}
	if p.Social != nil {
		set["social"] = *p.Social
	}
	if p.Settings != nil {
		set["settings"] = *p.Settings
	}
	if p.SetPasswordHash != nil {
		set["password_hash"] = *p.SetPasswordHash
	}
	if p.TouchLastActive != nil {
		set["stats.last_active"] = p.TouchLastActive.UTC()
	}
	return set
}

func mongoConflictField(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "email"):
		return "email"
	case strings.Contains(msg, "username"):
		return "username"
	default:
		return "unique"
	}
}
