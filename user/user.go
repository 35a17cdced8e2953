// Package user implements the User entity service: account creation with
// email uniqueness, point and index lookups, login marking, and deletion.
package user

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/myblog/dynamo"
	"github.com/jacentio/myblog/internal/idgen"
	"github.com/jacentio/myblog/resolver"
)

// User is a registered account.
type User struct {
	ID        string `json:"id" dynamodbav:"id"`
	Username  string `json:"username" dynamodbav:"username"`
	Email     string `json:"email" dynamodbav:"email"`
	Password  string `json:"password,omitempty" dynamodbav:"password,omitempty"`
	CreatedAt string `json:"createdAt" dynamodbav:"createdAt"`

	// Tokens is the session marker set on creation and login. Token signing
	// itself belongs to the identity collaborator, not this layer.
	Tokens int `json:"tokens,omitempty" dynamodbav:"tokens,omitempty"`
}

// CreateInput is the createUser payload.
type CreateInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DeleteResult reports the id that was removed, or "" if nothing was.
type DeleteResult struct {
	ID string `json:"id"`
}

var (
	// ErrNotFound is returned for a point lookup on an absent user.
	ErrNotFound = resolver.NewError(404, "User not found")

	// ErrEmailExists is returned when createUser finds the email taken.
	ErrEmailExists = resolver.NewError(409, "Email already exists")

	// ErrEmailNotFound is returned when findLogin matches no account.
	ErrEmailNotFound = resolver.NewError(404, "User email does not exist")
)

// createdAtLayout matches the en-US locale strings already stored for
// existing accounts.
const createdAtLayout = "1/2/2006, 3:04:05 PM"

// Read projections. Password and tokens never leave the store except for
// findLogin, which the identity collaborator consumes.
var (
	findOneProjection  = []string{"id", "username", "email", "createdAt"}
	findManyProjection = []string{"id", "createdAt", "username", "email"}
	loginProjection    = []string{"id", "username", "password", "email", "createdAt"}
)

// Service implements the user operations over the store client.
type Service struct {
	store  dynamo.Store
	config Config
	logger *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewService creates a user Service.
func NewService(store dynamo.Store, config Config, logger *slog.Logger) *Service {
	config.validate()
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		config: config,
		logger: logger,
		now:    time.Now,
		newID:  idgen.New,
	}
}

// Create registers a new account. The email existence check and the write
// are two separate store calls; two concurrent creates with the same email
// can both pass the check. The store offers no conditional-write primitive
// over an index, so the race is accepted and documented rather than hidden.
func (s *Service) Create(ctx context.Context, input CreateInput) (*User, error) {
	existing, err := s.store.Query(ctx, dynamo.QueryInput{
		Table:      s.config.Table,
		Index:      s.config.EmailIndex,
		KeyField:   "email",
		KeyValue:   input.Email,
		Projection: loginProjection,
	})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrEmailExists
	}

	u := User{
		ID:        s.newID(),
		Username:  input.Username,
		Email:     input.Email,
		Password:  input.Password,
		CreatedAt: s.now().Format(createdAtLayout),
		Tokens:    1,
	}
	item, err := dynamo.Encode(u)
	if err != nil {
		return nil, err
	}
	delete(item, "id")

	written, err := s.store.PutOrUpdate(ctx, dynamo.UpdateInput{
		Table:      s.config.Table,
		Key:        dynamo.StringKey("id", u.ID),
		Attributes: item,
	})
	if err != nil {
		return nil, err
	}

	var out User
	if err := dynamo.Decode(written, &out); err != nil {
		return nil, err
	}
	s.logger.Info("user created", "id", out.ID)
	return &out, nil
}

// FindOne returns a user by id.
func (s *Service) FindOne(ctx context.Context, id string) (*User, error) {
	item, err := s.store.Get(ctx, dynamo.GetInput{
		Table:      s.config.Table,
		Key:        dynamo.StringKey("id", id),
		Projection: findOneProjection,
	})
	if err != nil {
		return nil, err
	}
	var u User
	if err := dynamo.Decode(item, &u); err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindMany returns a bounded scan of users. Each call is independent; the
// scan is capped, not paginated.
func (s *Service) FindMany(ctx context.Context) ([]User, error) {
	items, err := s.store.Scan(ctx, dynamo.ScanInput{
		Table:      s.config.Table,
		Projection: findManyProjection,
		Limit:      s.config.ScanLimit,
	})
	if err != nil {
		return nil, err
	}
	users := []User{}
	if err := dynamo.DecodeList(items, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Login looks an account up by email and marks its session token. Password
// comparison happens in the identity collaborator; this operation is a
// credential-existence check only.
func (s *Service) Login(ctx context.Context, email string) (*User, error) {
	matches, err := s.store.Query(ctx, dynamo.QueryInput{
		Table:      s.config.Table,
		Index:      s.config.EmailIndex,
		KeyField:   "email",
		KeyValue:   email,
		Projection: loginProjection,
	})
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrEmailNotFound
	}

	var u User
	if err := dynamo.Decode(matches[0], &u); err != nil {
		return nil, err
	}

	updated, err := s.store.PutOrUpdate(ctx, dynamo.UpdateInput{
		Table: s.config.Table,
		Key:   dynamo.StringKey("id", u.ID),
		Attributes: map[string]types.AttributeValue{
			"tokens": &types.AttributeValueMemberN{Value: "1"},
		},
	})
	if err != nil {
		return nil, err
	}

	var out User
	if err := dynamo.Decode(updated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a user unconditionally. The result carries the deleted id,
// or "" when no record existed.
func (s *Service) Delete(ctx context.Context, id string) (DeleteResult, error) {
	old, err := s.store.Delete(ctx, dynamo.DeleteInput{
		Table: s.config.Table,
		Key:   dynamo.StringKey("id", id),
	})
	if err != nil {
		return DeleteResult{}, err
	}

	result := DeleteResult{}
	if len(old) > 0 {
		var u User
		if err := dynamo.Decode(old, &u); err != nil {
			return DeleteResult{}, err
		}
		result.ID = u.ID
	}
	return result, nil
}

// Operations returns the static field-dispatch table for the user Lambda.
func (s *Service) Operations() map[string]resolver.HandlerFunc {
	return map[string]resolver.HandlerFunc{
		"findOne": func(ctx context.Context, args json.RawMessage) (any, error) {
			var a struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, resolver.BadArguments(err)
			}
			return s.FindOne(ctx, a.ID)
		},
		"findMany": func(ctx context.Context, args json.RawMessage) (any, error) {
			return s.FindMany(ctx)
		},
		"findLogin": func(ctx context.Context, args json.RawMessage) (any, error) {
			var a struct {
				Email string `json:"email"`
			}
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, resolver.BadArguments(err)
			}
			return s.Login(ctx, a.Email)
		},
		"createUser": func(ctx context.Context, args json.RawMessage) (any, error) {
			var a struct {
				Input CreateInput `json:"input"`
			}
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, resolver.BadArguments(err)
			}
			return s.Create(ctx, a.Input)
		},
		"deleteUser": func(ctx context.Context, args json.RawMessage) (any, error) {
			var a struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, resolver.BadArguments(err)
			}
			return s.Delete(ctx, a.ID)
		},
	}
}
