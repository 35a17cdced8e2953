// Package blog implements the Blog entity service, including the
// ownership-checked delete that cascades over the blog's entries.
package blog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jacentio/myblog/dynamo"
	"github.com/jacentio/myblog/internal/idgen"
	"github.com/jacentio/myblog/resolver"
)

// Blog is a top-level publication owned by a user. The owner is a weak
// reference by id; the store enforces no foreign keys.
type Blog struct {
	ID          string `json:"id" dynamodbav:"id"`
	Title       string `json:"title" dynamodbav:"title"`
	Content     string `json:"content" dynamodbav:"content"`
	CreatedAt   string `json:"createdAt" dynamodbav:"createdAt"`
	User        string `json:"user" dynamodbav:"user"`
	BlogPhotoID string `json:"blogPhotoId" dynamodbav:"blogPhotoId"`
}

// CreateInput is the createBlog payload.
type CreateInput struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	User        string `json:"user"`
	BlogPhotoID string `json:"blogPhotoId"`
}

// DeleteInput is the deleteBlog payload: the blog id and the requester's
// claimed identity.
type DeleteInput struct {
	ID   string `json:"id"`
	User string `json:"user"`
}

// DeleteResult reports the id that was removed, or "" if nothing was.
type DeleteResult struct {
	ID string `json:"id"`
}

var (
	// ErrNotFound is returned for a lookup on an absent blog. The 500 code
	// is historical; the gateway keys on this exact string.
	ErrNotFound = resolver.NewError(500, "Blog not found")

	// ErrNotOwner is returned when the requester does not own the blog.
	ErrNotOwner = resolver.NewError(401, "Not authenticated")
)

// createdAtLayout matches the en-GB locale date strings already stored.
const createdAtLayout = "02/01/2006"

var findProjection = []string{"id", "createdAt", "title", "content", "user", "blogPhotoId"}

// Service implements the blog operations over the store client.
type Service struct {
	store  dynamo.Store
	config Config
	logger *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewService creates a blog Service.
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

// Create writes a new blog. There is no ownership precondition; the caller's
// user id is stored as supplied.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Blog, error) {
	b := Blog{
		ID:          s.newID(),
		Title:       input.Title,
		Content:     input.Content,
		CreatedAt:   s.now().Format(createdAtLayout),
		User:        input.User,
		BlogPhotoID: input.BlogPhotoID,
	}
	item, err := dynamo.Encode(b)
	if err != nil {
		return nil, err
	}
	delete(item, "id")

	written, err := s.store.PutOrUpdate(ctx, dynamo.UpdateInput{
		Table:      s.config.Table,
		Key:        dynamo.StringKey("id", b.ID),
		Attributes: item,
	})
	if err != nil {
		return nil, err
	}

	var out Blog
	if err := dynamo.Decode(written, &out); err != nil {
		return nil, err
	}
	s.logger.Info("blog created", "id", out.ID, "user", out.User)
	return &out, nil
}

// FindOne returns a blog by id.
func (s *Service) FindOne(ctx context.Context, id string) (*Blog, error) {
	item, err := s.store.Get(ctx, dynamo.GetInput{
		Table:      s.config.Table,
		Key:        dynamo.StringKey("id", id),
		Projection: findProjection,
	})
	if err != nil {
		return nil, err
	}
	var b Blog
	if err := dynamo.Decode(item, &b); err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// FindByUser returns the blogs owned by a user via the owner index.
func (s *Service) FindByUser(ctx context.Context, userID string) ([]Blog, error) {
	items, err := s.store.Query(ctx, dynamo.QueryInput{
		Table:      s.config.Table,
		Index:      s.config.UserIndex,
		KeyField:   "user",
		KeyValue:   userID,
		Projection: findProjection,
	})
	if err != nil {
		return nil, err
	}
	blogs := []Blog{}
	if err := dynamo.DecodeList(items, &blogs); err != nil {
		return nil, err
	}
	return blogs, nil
}

// FindMany returns a bounded scan of blogs.
func (s *Service) FindMany(ctx context.Context) ([]Blog, error) {
	items, err := s.store.Scan(ctx, dynamo.ScanInput{
		Table: s.config.Table,
		Limit: s.config.ScanLimit,
	})
	if err != nil {
		return nil, err
	}
	blogs := []Blog{}
	if err := dynamo.DecodeList(items, &blogs); err != nil {
		return nil, err
	}
	return blogs, nil
}

// Delete removes a blog after checking that the requester owns it, then
// cascades over the blog's entries. The blog delete and the cascade are
// separate, non-transactional store calls: a crash after the blog row is
// removed leaves orphaned entries, and a failed entry delete is logged but
// never fails the operation, since the parent record is already gone.
func (s *Service) Delete(ctx context.Context, input DeleteInput) (DeleteResult, error) {
	owned, err := s.store.Get(ctx, dynamo.GetInput{
		Table:      s.config.Table,
		Key:        dynamo.StringKey("id", input.ID),
		Projection: []string{"user"},
	})
	if err != nil {
		return DeleteResult{}, err
	}

	var owner struct {
		User string `dynamodbav:"user"`
	}
	if err := dynamo.Decode(owned, &owner); err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return DeleteResult{}, ErrNotFound
		}
		return DeleteResult{}, err
	}
	if owner.User != input.User {
		return DeleteResult{}, ErrNotOwner
	}

	old, err := s.store.Delete(ctx, dynamo.DeleteInput{
		Table: s.config.Table,
		Key:   dynamo.StringKey("id", input.ID),
	})
	if err != nil {
		return DeleteResult{}, err
	}

	result := DeleteResult{}
	if len(old) > 0 {
		var b Blog
		if err := dynamo.Decode(old, &b); err != nil {
			return DeleteResult{}, err
		}
		result.ID = b.ID
	}

	// Cascade only when a row was actually removed.
	if result.ID != "" {
		if err := s.deleteEntries(ctx, result.ID); err != nil {
			return DeleteResult{}, err
		}
	}

	return result, nil
}

// deleteEntries removes every entry whose blog_id references the deleted
// blog, sequentially. Individual delete failures are logged and skipped.
func (s *Service) deleteEntries(ctx context.Context, blogID string) error {
	entries, err := s.store.Query(ctx, dynamo.QueryInput{
		Table:      s.config.EntriesTable,
		Index:      s.config.EntriesBlogIndex,
		KeyField:   "blog_id",
		KeyValue:   blogID,
		Projection: []string{"id"},
	})
	if err != nil {
		return err
	}

	deleted := 0
	for _, item := range entries {
		var ref struct {
			ID string `dynamodbav:"id"`
		}
		if err := dynamo.Decode(item, &ref); err != nil {
			s.logger.Warn("skipping entry with unreadable id", "blog", blogID, "error", err)
			continue
		}
		if _, err := s.store.Delete(ctx, dynamo.DeleteInput{
			Table: s.config.EntriesTable,
			Key:   dynamo.StringKey("id", ref.ID),
		}); err != nil {
			s.logger.Warn("failed to delete entry", "blog", blogID, "entry", ref.ID, "error", err)
			continue
		}
		deleted++
	}

	s.logger.Info("cascade delete completed", "blog", blogID, "entries", deleted, "found", len(entries))
	return nil
}

// Operations returns the static field-dispatch table for the blog Lambda.
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
		"findByUser": func(ctx context.Context, args json.RawMessage) (any, error) {
			var a struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, resolver.BadArguments(err)
			}
			return s.FindByUser(ctx, a.ID)
		},
		"findMany": func(ctx context.Context, args json.RawMessage) (any, error) {
			return s.FindMany(ctx)
		},
		"createBlog": func(ctx context.Context, args json.RawMessage) (any, error) {
			var a struct {
				Input CreateInput `json:"input"`
			}
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, resolver.BadArguments(err)
			}
			return s.Create(ctx, a.Input)
		},
		"deleteBlog": func(ctx context.Context, args json.RawMessage) (any, error) {
			var a struct {
				Input DeleteInput `json:"input"`
			}
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, resolver.BadArguments(err)
			}
			return s.Delete(ctx, a.Input)
		},
	}
}
