package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	kgerrors "github.com/matzehuels/kgview/pkg/errors"
	"github.com/matzehuels/kgview/pkg/graph"
)

// MongoRepository stores snapshots in a MongoDB collection. Graph nodes and
// edges are stored as plain documents in the same shape as the JSON export.
type MongoRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoOptions configures [NewMongoRepository].
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

type snapshotDoc struct {
	ID          string    `bson:"_id"`
	KnowledgeID string    `bson:"knowledge_id"`
	Source      string    `bson:"source"`
	CreatedAt   time.Time `bson:"created_at"`
	NodeCount   int       `bson:"node_count"`
	EdgeCount   int       `bson:"edge_count"`
	TypeCount   int       `bson:"type_count"`
	Nodes       []bson.M  `bson:"nodes,omitempty"`
	Edges       []bson.M  `bson:"edges,omitempty"`
}

// NewMongoRepository connects, pings and ensures the lookup index.
func NewMongoRepository(ctx context.Context, opts MongoOptions) (*MongoRepository, error) {
	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, kgerrors.Wrap(kgerrors.ErrCodeNetwork, err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, kgerrors.Wrap(kgerrors.ErrCodeNetwork, err, "ping mongo")
	}

	coll := client.Database(opts.Database).Collection(opts.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "knowledge_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, kgerrors.Wrap(kgerrors.ErrCodeInternal, err, "create snapshot index")
	}
	return &MongoRepository{client: client, coll: coll}, nil
}

func (r *MongoRepository) Save(ctx context.Context, s *Snapshot) error {
	if err := validate(s); err != nil {
		return err
	}
	doc, err := toDoc(s)
	if err != nil {
		return err
	}
	_, err = r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return kgerrors.Wrap(kgerrors.ErrCodeInternal, err, "save snapshot %s", s.ID)
	}
	return nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*Snapshot, error) {
	return r.findOne(ctx, bson.M{"_id": id}, nil, id)
}

func (r *MongoRepository) Latest(ctx context.Context, kbID string) (*Snapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.findOne(ctx, bson.M{"knowledge_id": kbID}, opts, "for "+kbID)
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions, what string) (*Snapshot, error) {
	var doc snapshotDoc
	err := r.coll.FindOne(ctx, filter, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(what)
	}
	if err != nil {
		return nil, kgerrors.Wrap(kgerrors.ErrCodeInternal, err, "load snapshot %s", what)
	}
	return fromDoc(&doc)
}

func (r *MongoRepository) List(ctx context.Context, kbID string, limit int) ([]*Snapshot, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	filter := bson.M{}
	if kbID != "" {
		filter["knowledge_id"] = kbID
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"nodes": 0, "edges": 0})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, kgerrors.Wrap(kgerrors.ErrCodeInternal, err, "list snapshots")
	}
	defer cur.Close(ctx)

	var out []*Snapshot
	for cur.Next(ctx) {
		var doc snapshotDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, kgerrors.Wrap(kgerrors.ErrCodeInternal, err, "decode snapshot")
		}
		s, err := fromDoc(&doc)
		if err != nil {
			return nil, err
		}
		s.Graph = nil
		out = append(out, s)
	}
	return out, cur.Err()
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return kgerrors.Wrap(kgerrors.ErrCodeInternal, err, "delete snapshot %s", id)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// toDoc flattens the graph through its JSON form so overlay fields are
// stored exactly as clients see them.
func toDoc(s *Snapshot) (*snapshotDoc, error) {
	doc := &snapshotDoc{
		ID:          s.ID,
		KnowledgeID: s.KnowledgeID,
		Source:      string(s.Source),
		CreatedAt:   s.CreatedAt,
		NodeCount:   s.Stats.NodeCount,
		EdgeCount:   s.Stats.EdgeCount,
		TypeCount:   s.Stats.TypeCount,
	}
	data, err := json.Marshal(s.Graph)
	if err != nil {
		return nil, kgerrors.Wrap(kgerrors.ErrCodeInternal, err, "encode graph")
	}
	var plain struct {
		Nodes []bson.M `json:"nodes"`
		Edges []bson.M `json:"edges"`
	}
	if err := json.Unmarshal(data, &plain); err != nil {
		return nil, kgerrors.Wrap(kgerrors.ErrCodeInternal, err, "encode graph")
	}
	doc.Nodes, doc.Edges = plain.Nodes, plain.Edges
	return doc, nil
}

func fromDoc(doc *snapshotDoc) (*Snapshot, error) {
	s := &Snapshot{
		ID:          doc.ID,
		KnowledgeID: doc.KnowledgeID,
		Source:      Source(doc.Source),
		CreatedAt:   doc.CreatedAt,
		Stats: graph.Stats{
			NodeCount: doc.NodeCount,
			EdgeCount: doc.EdgeCount,
			TypeCount: doc.TypeCount,
		},
	}
	data, err := json.Marshal(map[string]any{"nodes": nonNil(doc.Nodes), "edges": nonNil(doc.Edges)})
	if err != nil {
		return nil, kgerrors.Wrap(kgerrors.ErrCodeInternal, err, "decode graph")
	}
	g, err := graph.UnmarshalRenderGraph(data)
	if err != nil {
		return nil, kgerrors.Wrap(kgerrors.ErrCodeInternal, err, "decode graph")
	}
	s.Graph = g
	return s, nil
}

func nonNil(v []bson.M) []bson.M {
	if v == nil {
		return []bson.M{}
	}
	return v
}

var _ Repository = (*MongoRepository)(nil)
