// Package firestore provides the Firestore-backed name registry.
package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/fieldlens/fieldlens/pkg/domain/interfaces"
	"github.com/fieldlens/fieldlens/pkg/domain/types"
)

const (
	// NamesCollection holds one document per (entity code, identifier)
	NamesCollection = "entity_names"

	// Firestore allows at most 30 document references per GetAll
	// Reference: https://cloud.google.com/firestore/docs/query-data/get-data#go
	firestoreGetAllLimit = 30
)

type Registry struct {
	client           *firestore.Client
	collectionPrefix string
}

var (
	_ interfaces.NameRegistry = &Registry{}
	_ interfaces.NameWriter   = &Registry{}
)

type Option func(*Registry)

// WithCollectionPrefix namespaces the registry collection, so several
// deployments can share one Firestore database
func WithCollectionPrefix(prefix string) Option {
	return func(r *Registry) {
		r.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Registry, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	r := &Registry{client: client}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Registry) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// nameDoc is the Firestore persistence model for one registry entry
type nameDoc struct {
	EntityCode string    `firestore:"entity_code"`
	Identifier string    `firestore:"identifier"`
	Name       string    `firestore:"name"`
	UpdatedAt  time.Time `firestore:"updated_at"`
}

func (r *Registry) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + NamesCollection)
	}
	return r.client.Collection(NamesCollection)
}

func docID(code types.EntityCode, id string) string {
	return code.String() + ":" + id
}

// LookupNames fetches the requested identifiers with chunked GetAll
// calls. Identifiers without a document are omitted from the result;
// only transport/storage failures are errors.
func (r *Registry) LookupNames(ctx context.Context, code types.EntityCode, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	col := r.collection()

	for start := 0; start < len(ids); start += firestoreGetAllLimit {
		end := min(start+firestoreGetAllLimit, len(ids))

		refs := make([]*firestore.DocumentRef, 0, end-start)
		for _, id := range ids[start:end] {
			refs = append(refs, col.Doc(docID(code, id)))
		}

		snaps, err := r.client.GetAll(ctx, refs)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get name documents",
				goerr.V("entityCode", code),
				goerr.V("count", len(refs)))
		}

		for _, snap := range snaps {
			if !snap.Exists() {
				continue
			}
			var doc nameDoc
			if err := snap.DataTo(&doc); err != nil {
				return nil, goerr.Wrap(err, "failed to unmarshal name document", goerr.V("docID", snap.Ref.ID))
			}
			out[doc.Identifier] = doc.Name
		}
	}

	return out, nil
}

// ListNames returns every entry stored under the entity code
func (r *Registry) ListNames(ctx context.Context, code types.EntityCode) (map[string]string, error) {
	iter := r.collection().
		Where("entity_code", "==", code.String()).
		OrderBy("updated_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	out := make(map[string]string)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return out, nil
			}
			return nil, goerr.Wrap(err, "failed to iterate name documents", goerr.V("entityCode", code))
		}

		var doc nameDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal name document", goerr.V("docID", snap.Ref.ID))
		}
		out[doc.Identifier] = doc.Name
	}

	return out, nil
}

// PutNames upserts entries through a BulkWriter
func (r *Registry) PutNames(ctx context.Context, code types.EntityCode, names map[string]string) error {
	bw := r.client.BulkWriter(ctx)
	now := time.Now().UTC()
	col := r.collection()

	for id, name := range names {
		doc := &nameDoc{
			EntityCode: code.String(),
			Identifier: id,
			Name:       name,
			UpdatedAt:  now,
		}
		if _, err := bw.Set(col.Doc(docID(code, id)), doc); err != nil {
			bw.End()
			return goerr.Wrap(err, "failed to queue name document",
				goerr.V("entityCode", code),
				goerr.V("identifier", id))
		}
	}
	bw.End()

	return nil
}
