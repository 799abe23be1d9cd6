// Package mongostore serves the admin functions from a MongoDB database:
// collections are tables and schemas are inferred from a document sample.
package mongostore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/convex-panel/panelctl/internal/admin"
	panelerr "github.com/convex-panel/panelctl/internal/err"
	"github.com/convex-panel/panelctl/internal/log"
	"github.com/convex-panel/panelctl/internal/panel/schema"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"golang.org/x/sync/errgroup"
)

const (
	sampleSize   = 50
	callTimeout  = 30 * time.Second
	inferenceMax = 4
)

// Store implements admin.Client over one MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
	now    func() time.Time
}

var _ admin.Client = (*Store)(nil)

// DatabaseName extracts the database from a mongodb:// or mongodb+srv:// URI.
func DatabaseName(uri string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(uri))
	if err != nil {
		return "", fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if u.Scheme != "mongodb" && u.Scheme != "mongodb+srv" {
		return "", fmt.Errorf("invalid MongoDB URI scheme %q", u.Scheme)
	}
	name := strings.Trim(u.Path, "/")
	if name == "" {
		return "", &panelerr.ValidationError{Field: "dsn", Reason: "the MongoDB URI must name a database, e.g. mongodb://host:27017/app"}
	}
	return name, nil
}

// Open connects to uri and selects the database named in its path.
func Open(ctx context.Context, uri string, logger *slog.Logger) (*Store, error) {
	name, err := DatabaseName(uri)
	if err != nil {
		return nil, err
	}
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{client: client, db: client.Database(name), logger: logger, now: time.Now}, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) Query(ctx context.Context, name string, args map[string]any) (any, error) {
	ctx, cancel := s.begin(ctx, name, args)
	defer cancel()
	switch name {
	case admin.FuncTableMapping:
		names, err := s.db.ListCollectionNames(ctx, bson.D{})
		if err != nil {
			return nil, fmt.Errorf("list collections: %w", err)
		}
		out := make(map[string]any, len(names))
		for _, n := range names {
			out[n] = schema.TableDefinition{Name: n}
		}
		return out, nil
	case admin.FuncGetSchemas:
		return s.schemas(ctx)
	case admin.FuncPaginatedTableDocuments:
		return s.page(ctx, args)
	}
	return nil, admin.Unsupported(name)
}

func (s *Store) Mutation(ctx context.Context, name string, args map[string]any) (any, error) {
	ctx, cancel := s.begin(ctx, name, args)
	defer cancel()
	table := admin.ArgString(args, "table")
	switch name {
	case admin.FuncCreateTable:
		if err := schema.ValidateTableName(table); err != nil {
			return nil, err
		}
		if err := s.db.CreateCollection(ctx, table); err != nil {
			return nil, fmt.Errorf("create collection %s: %w", table, err)
		}
	case admin.FuncPatchDocumentsFields:
		fields := admin.ArgMap(args, "fields")
		for k := range fields {
			if schema.IsSystemField(k) {
				return nil, &panelerr.ValidationError{Field: k, Reason: "system fields cannot be edited"}
			}
		}
		ids := admin.ArgStrings(args, "ids")
		if len(ids) == 0 || len(fields) == 0 {
			return nil, nil
		}
		if _, err := s.db.Collection(table).UpdateMany(ctx, idsFilter(ids), bson.D{{Key: "$set", Value: fields}}); err != nil {
			return nil, fmt.Errorf("update %s: %w", table, err)
		}
	case admin.FuncDeleteDocuments:
		ids := admin.ArgStrings(args, "ids")
		if len(ids) == 0 {
			return nil, nil
		}
		if _, err := s.db.Collection(table).DeleteMany(ctx, idsFilter(ids)); err != nil {
			return nil, fmt.Errorf("delete from %s: %w", table, err)
		}
	case admin.FuncAddDocument:
		docs := admin.ArgDocuments(args, "documents")
		if len(docs) == 0 {
			return nil, nil
		}
		batch := make([]any, len(docs))
		for i, d := range docs {
			if _, ok := d[schema.CreationTimeField]; !ok {
				d = cloneWith(d, schema.CreationTimeField, float64(s.now().UnixMilli()))
			}
			batch[i] = toBSON(d)
		}
		if _, err := s.db.Collection(table).InsertMany(ctx, batch); err != nil {
			return nil, fmt.Errorf("insert into %s: %w", table, err)
		}
	default:
		return nil, admin.Unsupported(name)
	}
	return nil, nil
}

func (s *Store) begin(ctx context.Context, name string, args map[string]any) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = log.WithRequestLogContext(ctx, log.RequestLogContext{
		Backend:  "mongodb",
		Function: name,
		Table:    admin.ArgString(args, "table"),
	})
	s.logger.LogAttrs(ctx, log.LevelTrace, "admin call", log.RequestLogContextAttrs(ctx)...)
	return context.WithTimeout(ctx, callTimeout)
}

func (s *Store) schemas(ctx context.Context) (map[string]*schema.TableSchema, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	var mu sync.Mutex
	out := make(map[string]*schema.TableSchema, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(inferenceMax)
	for _, name := range names {
		g.Go(func() error {
			cur, err := s.db.Collection(name).Find(gctx, bson.D{}, options.Find().SetLimit(sampleSize))
			if err != nil {
				return fmt.Errorf("sample %s: %w", name, err)
			}
			var sample []bson.D
			if err := cur.All(gctx, &sample); err != nil {
				return fmt.Errorf("sample %s: %w", name, err)
			}
			mu.Lock()
			out[name] = inferSchema(name, sample)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// page reads one page sorted by _id. The cursor is the skip offset.
func (s *Store) page(ctx context.Context, args map[string]any) (admin.PageResult, error) {
	table := admin.ArgString(args, "table")
	filters, err := admin.DecodeFilters(admin.ArgString(args, "filters"))
	if err != nil {
		return admin.PageResult{}, &panelerr.ValidationError{Field: "filters", Reason: err.Error()}
	}
	numItems, cursor := admin.ParsePagination(args)
	if numItems <= 0 {
		numItems = 50
	}
	var offset int64
	if cursor != "" {
		offset, err = strconv.ParseInt(cursor, 10, 64)
		if err != nil || offset < 0 {
			return admin.PageResult{}, &panelerr.ValidationError{Field: "cursor", Reason: fmt.Sprintf("invalid cursor %q", cursor)}
		}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(offset).
		SetLimit(int64(numItems) + 1)
	cur, err := s.db.Collection(table).Find(ctx, filterDocument(filters), opts)
	if err != nil {
		return admin.PageResult{}, fmt.Errorf("read %s: %w", table, err)
	}
	var raw []bson.D
	if err := cur.All(ctx, &raw); err != nil {
		return admin.PageResult{}, fmt.Errorf("read %s: %w", table, err)
	}
	result := admin.PageResult{IsDone: len(raw) <= numItems}
	if !result.IsDone {
		raw = raw[:numItems]
		result.ContinueCursor = strconv.FormatInt(offset+int64(numItems), 10)
	}
	result.Page = make([]schema.Document, len(raw))
	for i, d := range raw {
		result.Page[i] = toDocument(d)
	}
	return result, nil
}

func cloneWith(d schema.Document, key string, value any) schema.Document {
	out := make(schema.Document, len(d)+1)
	for k, v := range d {
		out[k] = v
	}
	out[key] = value
	return out
}

func sortedKeys(d schema.Document) []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
