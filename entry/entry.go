// Package entry implements the Entry entity service. Entries reference
// their blog and owner by id only; the blog service's cascade is what keeps
// them from outliving their blog.
package entry

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

// Entry is a single post inside a blog.
type Entry struct {
	ID           string `json:"id" dynamodbav:"id"`
	Title        string `json:"title" dynamodbav:"title"`
	Content      string `json:"content" dynamodbav:"content"`
	CreatedAt    string `json:"createdAt" dynamodbav:"createdAt"`
	BlogID       string `json:"blog_id" dynamodbav:"blog_id"`
	User         string `json:"user,omitempty" dynamodbav:"user,omitempty"`
	EntryPhotoID string `json:"entryPhotoId" dynamodbav:"entryPhotoId"`
}

// CreateInput is the createEntry payload.
type CreateInput struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	BlogID       string `json:"blog_id"`
	User         string `json:"user"`
	EntryPhotoID string `json:"entryPhotoId"`
}

// DeleteResult reports the id that was removed, or "" if nothing was.
type DeleteResult struct {
	ID string `json:"id"`
}

// ErrNotFound is returned for a point lookup on an absent entry.
var ErrNotFound = resolver.NewError(404, "Entry not found")

// createdAtLayout matches the en-GB locale date strings already stored.
const createdAtLayout = "02/01/2006"

// findOneProjection omits the owner attribute; the single-entry view never
// consumed it and the projection is part of the read contract.
var (
	findOneProjection = []string{"id", "title", "content", "createdAt", "blog_id", "entryPhotoId"}
	indexProjection   = []string{"id", "title", "content", "createdAt", "blog_id", "user", "entryPhotoId"}
)

// Service implements the entry operations over the store client.
type Service struct {
	store  dynamo.Store
	config Config
	logger *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewService creates an entry Service.
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

// Create writes a new entry under the supplied blog id. The reference is
// not validated against the blogs table.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Entry, error) {
	e := Entry{
		ID:           s.newID(),
		Title:        input.Title,
		Content:      input.Content,
		CreatedAt:    s.now().Format(createdAtLayout),
		BlogID:       input.BlogID,
		User:         input.User,
		EntryPhotoID: input.EntryPhotoID,
	}
	item, err := dynamo.Encode(e)
	if err != nil {
		return nil, err
	}
	delete(item, "id")

	written, err := s.store.PutOrUpdate(ctx, dynamo.UpdateInput{
		Table:      s.config.Table,
		Key:        dynamo.StringKey("id", e.ID),
		Attributes: item,
	})
	if err != nil {
		return nil, err
	}

	var out Entry
	if err := dynamo.Decode(written, &out); err != nil {
		return nil, err
	}
	s.logger.Info("entry created", "id", out.ID, "blog", out.BlogID)
	return &out, nil
}

// FindOne returns an entry by id.
func (s *Service) FindOne(ctx context.Context, id string) (*Entry, error) {
	item, err := s.store.Get(ctx, dynamo.GetInput{
		Table:      s.config.Table,
		Key:        dynamo.StringKey("id", id),
		Projection: findOneProjection,
	})
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := dynamo.Decode(item, &e); err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// FindByBlog returns the entries belonging to a blog via the blog_id index.
func (s *Service) FindByBlog(ctx context.Context, blogID string) ([]Entry, error) {
	return s.findByIndex(ctx, s.config.BlogIndex, "blog_id", blogID)
}

// FindByUser returns the entries owned by a user via the owner index.
func (s *Service) FindByUser(ctx context.Context, userID string) ([]Entry, error) {
	return s.findByIndex(ctx, s.config.UserIndex, "user", userID)
}

func (s *Service) findByIndex(ctx context.Context, index, keyField, keyValue string) ([]Entry, error) {
	items, err := s.store.Query(ctx, dynamo.QueryInput{
		Table:      s.config.Table,
		Index:      index,
		KeyField:   keyField,
		KeyValue:   keyValue,
		Projection: indexProjection,
	})
	if err != nil {
		return nil, err
	}
	entries := []Entry{}
	if err := dynamo.DecodeList(items, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// FindMany returns a bounded scan of entries.
func (s *Service) FindMany(ctx context.Context) ([]Entry, error) {
	items, err := s.store.Scan(ctx, dynamo.ScanInput{
		Table: s.config.Table,
		Limit: s.config.ScanLimit,
	})
	if err != nil {
		return nil, err
	}
	entries := []Entry{}
	if err := dynamo.DecodeList(items, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Delete removes an entry unconditionally. Ownership is not checked here;
// the gateway restricts who can reach this operation.
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
		var e Entry
		if err := dynamo.Decode(old, &e); err != nil {
			return DeleteResult{}, err
		}
		result.ID = e.ID
	}
	return result, nil
}

// Operations returns the static field-dispatch table for the entry Lambda.
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
		"findByBlog": func(ctx context.Context, args json.RawMessage) (any, error) {
			var a struct {
				BlogID string `json:"blog_id"`
			}
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, resolver.BadArguments(err)
			}
			return s.FindByBlog(ctx, a.BlogID)
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
		"createEntry": func(ctx context.Context, args json.RawMessage) (any, error) {
			var a struct {
				Input CreateInput `json:"input"`
			}
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, resolver.BadArguments(err)
			}
			return s.Create(ctx, a.Input)
		},
		"deleteEntry": func(ctx context.Context, args json.RawMessage) (any, error) {
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
