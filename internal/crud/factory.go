package crud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/query"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Resource describes how a collection is exposed.
type Resource struct {
	// Name is the singular noun used in client messages, e.g. "company".
	Name string
	// Creatable is the allow-list of payload keys accepted on create.
	Creatable []string
	// Updatable is the allow-list on update. Nil means Creatable.
	Updatable  []string
	Searchable []string
	Sensitive  []string
	Populate   []Populate
	Filter     query.FilterOptions
}

// Step is an explicit lifecycle step run on a document before it is validated
// and persisted, e.g. deriving a slug or stamping the owner.
type Step[T any] func(ctx context.Context, doc *T) error

// ListResult is a page of documents with its pagination metadata.
type ListResult[T any] struct {
	Results          int              `json:"results"`
	PaginationResult query.Pagination `json:"paginationResult"`
	Data             []T              `json:"data"`
}

type options struct {
	cache    ListCache
	cacheTTL time.Duration
	logger   *logger.Logger
	validate *validator.Validate
	now      func() time.Time
}

type Option func(*options)

// WithCache serves List from c. Every mutation purges the collection's entries.
func WithCache(c ListCache, ttl time.Duration) Option {
	return func(o *options) {
		o.cache = c
		o.cacheTTL = ttl
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithValidator(v *validator.Validate) Option {
	return func(o *options) { o.validate = v }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Factory implements the default operations for one resource.
type Factory[T any, PT Document[T]] struct {
	store Store[T]
	res   Resource
	opts  options
}

func NewFactory[T any, PT Document[T]](store Store[T], res Resource, opts ...Option) *Factory[T, PT] {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.NewNop()
	}
	if o.validate == nil {
		o.validate = NewValidator()
	}
	o.logger = o.logger.Named("crud").With(zap.String("collection", store.Collection()))
	return &Factory[T, PT]{store: store, res: res, opts: o}
}

// Store exposes the underlying store to resource services.
func (f *Factory[T, PT]) Store() Store[T] { return f.store }

func (f *Factory[T, PT]) Resource() Resource { return f.res }

// List counts and reads one page of documents matching preFilter combined
// with the filters, keyword search, projection and sort in params.
func (f *Factory[T, PT]) List(ctx context.Context, preFilter bson.M, params url.Values) (*ListResult[T], error) {
	var key string
	if f.opts.cache != nil {
		key = f.cacheKey(preFilter, params)
		if res, ok := f.fromCache(ctx, key); ok {
			return res, nil
		}
	}

	filter := query.And(
		preFilter,
		query.BuildFilter(params, f.filterOptions()),
		query.KeywordFilter(params.Get("keyword"), f.res.Searchable),
	)

	total, err := f.store.Count(ctx, filter)
	if err != nil {
		return nil, f.storeError("", err)
	}

	page := query.ParsePage(params)
	pagination := query.Paginate(page.Page, page.Limit, total)

	docs, err := f.store.Find(ctx, FindOptions{
		Filter:     filter,
		Sort:       query.Sort(params.Get("sort")),
		Projection: query.Projection(params.Get("fields"), f.res.Sensitive...),
		Skip:       pagination.Skip,
		Limit:      int64(pagination.Limit),
		Populate:   f.res.Populate,
	})
	if err != nil {
		return nil, f.storeError("", err)
	}
	if docs == nil {
		docs = []T{}
	}

	res := &ListResult[T]{Results: len(docs), PaginationResult: pagination, Data: docs}
	if key != "" {
		f.toCache(ctx, key, res)
	}
	return res, nil
}

// Get returns the populated document with id.
func (f *Factory[T, PT]) Get(ctx context.Context, id string) (*T, error) {
	oid, err := f.parseID(id)
	if err != nil {
		return nil, err
	}
	doc, err := f.store.FindByID(ctx, oid, f.res.Populate...)
	if err != nil {
		return nil, f.storeError(id, err)
	}
	return doc, nil
}

// Load returns the stored document with id, without population.
func (f *Factory[T, PT]) Load(ctx context.Context, id string) (*T, error) {
	oid, err := f.parseID(id)
	if err != nil {
		return nil, err
	}
	doc, err := f.store.FindByID(ctx, oid)
	if err != nil {
		return nil, f.storeError(id, err)
	}
	return doc, nil
}

// Create builds a document from the creatable keys of payload and inserts it.
func (f *Factory[T, PT]) Create(ctx context.Context, payload map[string]interface{}, steps ...Step[T]) (*T, error) {
	doc := new(T)
	if err := decodeInto(doc, pick(payload, f.res.Creatable)); err != nil {
		return nil, err
	}
	return f.Insert(ctx, doc, steps...)
}

// Insert runs steps on doc, validates it and persists it.
func (f *Factory[T, PT]) Insert(ctx context.Context, doc *T, steps ...Step[T]) (*T, error) {
	for _, step := range steps {
		if err := step(ctx, doc); err != nil {
			return nil, err
		}
	}
	if err := f.opts.validate.Struct(doc); err != nil {
		return nil, ValidationError(err)
	}

	pt := PT(doc)
	if pt.GetID().IsZero() {
		pt.SetID(primitive.NewObjectID())
	}
	pt.Stamp(f.opts.now())

	if err := f.store.Insert(ctx, doc); err != nil {
		return nil, f.storeError("", err)
	}
	f.invalidate(ctx)
	return doc, nil
}

// Update merges the updatable keys of payload onto the stored document and
// replaces it.
func (f *Factory[T, PT]) Update(ctx context.Context, id string, payload map[string]interface{}, steps ...Step[T]) (*T, error) {
	doc, err := f.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return f.UpdateLoaded(ctx, doc, payload, steps...)
}

// UpdateLoaded is Update for a document the caller already loaded, e.g. to
// check ownership first.
func (f *Factory[T, PT]) UpdateLoaded(ctx context.Context, doc *T, payload map[string]interface{}, steps ...Step[T]) (*T, error) {
	allowed := f.res.Updatable
	if allowed == nil {
		allowed = f.res.Creatable
	}
	changes := pick(payload, allowed)
	resetFields(doc, changes)
	if err := decodeInto(doc, changes); err != nil {
		return nil, err
	}
	return f.Save(ctx, doc, steps...)
}

// Save runs steps on an existing document, validates it and replaces it.
func (f *Factory[T, PT]) Save(ctx context.Context, doc *T, steps ...Step[T]) (*T, error) {
	for _, step := range steps {
		if err := step(ctx, doc); err != nil {
			return nil, err
		}
	}
	if err := f.opts.validate.Struct(doc); err != nil {
		return nil, ValidationError(err)
	}

	pt := PT(doc)
	pt.Stamp(f.opts.now())
	if err := f.store.Replace(ctx, pt.GetID(), doc); err != nil {
		return nil, f.storeError(pt.GetID().Hex(), err)
	}
	f.invalidate(ctx)
	return doc, nil
}

// Delete removes the document with id. A second delete reports NotFound.
func (f *Factory[T, PT]) Delete(ctx context.Context, id string) error {
	oid, err := f.parseID(id)
	if err != nil {
		return err
	}
	if err := f.store.Delete(ctx, oid); err != nil {
		return f.storeError(id, err)
	}
	f.invalidate(ctx)
	return nil
}

// filterOptions keeps sensitive fields out of client filters.
func (f *Factory[T, PT]) filterOptions() query.FilterOptions {
	opts := f.res.Filter
	opts.Ignored = append(append([]string(nil), opts.Ignored...), f.res.Sensitive...)
	return opts
}

// Invalidate purges cached list pages. Services call it after writes that
// bypass the factory.
func (f *Factory[T, PT]) Invalidate(ctx context.Context) { f.invalidate(ctx) }

func (f *Factory[T, PT]) parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, f.notFound(id)
	}
	return oid, nil
}

func (f *Factory[T, PT]) notFound(id string) error {
	return domain.NotFound(fmt.Sprintf("No %s for this id %s", f.res.Name, id))
}

func (f *Factory[T, PT]) storeError(id string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return f.notFound(id)
	}
	var dup *domain.DuplicateKeyError
	if errors.As(err, &dup) {
		appErr := domain.Conflict(fmt.Sprintf("%s already exists for another %s", dup.Field, f.res.Name))
		appErr.Fields = map[string]string{dup.Field: "already exists"}
		appErr.Err = err
		return appErr
	}
	if _, ok := domain.AsAppError(err); ok {
		return err
	}
	f.opts.logger.Error("store operation failed", zap.String("id", id), zap.Error(err))
	return domain.Internal(err)
}

func (f *Factory[T, PT]) cachePrefix() string {
	return f.store.Collection() + ":list:"
}

func (f *Factory[T, PT]) cacheKey(preFilter bson.M, params url.Values) string {
	keys := make([]string, 0, len(preFilter))
	for k := range preFilter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(f.cachePrefix())
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%v;", k, preFilter[k])
	}
	b.WriteString("?")
	b.WriteString(query.CanonicalKey(params))
	return b.String()
}

func (f *Factory[T, PT]) fromCache(ctx context.Context, key string) (*ListResult[T], bool) {
	data, err := f.opts.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			f.opts.logger.Warn("list cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var res ListResult[T]
	if err := json.Unmarshal(data, &res); err != nil {
		f.opts.logger.Warn("list cache entry is corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &res, true
}

func (f *Factory[T, PT]) toCache(ctx context.Context, key string, res *ListResult[T]) {
	data, err := json.Marshal(res)
	if err != nil {
		f.opts.logger.Warn("list cache encode failed", zap.Error(err))
		return
	}
	if err := f.opts.cache.Set(ctx, key, data, f.opts.cacheTTL); err != nil {
		f.opts.logger.Warn("list cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (f *Factory[T, PT]) invalidate(ctx context.Context) {
	if f.opts.cache == nil {
		return
	}
	if err := f.opts.cache.DeletePrefix(ctx, f.cachePrefix()); err != nil {
		f.opts.logger.Warn("list cache purge failed", zap.Error(err))
	}
}

// pick keeps the keys of payload present in allowed.
func pick(payload map[string]interface{}, allowed []string) map[string]interface{} {
	out := make(map[string]interface{}, len(allowed))
	for _, k := range allowed {
		if v, ok := payload[k]; ok {
			out[k] = v
		}
	}
	return out
}

// decodeInto applies payload onto dst through the entity's JSON mapping.
func decodeInto(dst interface{}, payload map[string]interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return domain.BadRequest("Invalid request body")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			msg := fmt.Sprintf("%s has an invalid type", typeErr.Field)
			return domain.Validation(msg, map[string]string{typeErr.Field: msg})
		}
		return domain.Validation(fmt.Sprintf("Invalid request body: %v", err), nil)
	}
	return nil
}

// resetFields zeroes the top-level fields named in changes so that slices and
// maps are replaced rather than merged by the JSON decoder.
func resetFields(dst interface{}, changes map[string]interface{}) {
	v := reflect.ValueOf(dst).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := strings.SplitN(t.Field(i).Tag.Get("json"), ",", 2)[0]
		if _, ok := changes[name]; ok && v.Field(i).CanSet() {
			v.Field(i).SetZero()
		}
	}
}
