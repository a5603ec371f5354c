package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fieldlens/fieldlens/pkg/domain/model"
	"github.com/fieldlens/fieldlens/pkg/usecase"
	"github.com/fieldlens/fieldlens/pkg/utils/errutil"
	"github.com/fieldlens/fieldlens/pkg/utils/safe"
)

// enrichRequest is the body of POST /api/datasets/enrich. Dataset is
// optional; when it names a configured dataset its declared field list
// replaces key-union inference.
type enrichRequest struct {
	Records []model.Record `json:"records"`
	Dataset string         `json:"dataset,omitempty"`
}

type flattenRequest struct {
	Records []model.Record `json:"records"`
}

type flattenResponse struct {
	Records []model.Record `json:"records"`
}

type fieldsRequest struct {
	Keys []string `json:"keys"`
}

type fieldsResponse struct {
	Fields []model.FieldMetadata `json:"fields"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]string{"status": "ok"})
}

// enrichHandler resolves references across the posted batch and returns
// the consumer payload {data, fields}. Malformed top-level input is the
// only hard failure; unresolved references come back sentinel-labeled
// with HTTP 200.
func enrichHandler(uc *usecase.DatasetUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req enrichRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "malformed enrich request"), http.StatusBadRequest)
			return
		}

		dataset, err := uc.EnrichDataset(ctx, req.Records, req.Dataset)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
			return
		}

		writeJSON(w, r, dataset)
	}
}

func flattenHandler(uc *usecase.DatasetUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req flattenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "malformed flatten request"), http.StatusBadRequest)
			return
		}

		records, err := uc.FlattenRecords(ctx, req.Records)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
			return
		}

		writeJSON(w, r, flattenResponse{Records: records})
	}
}

func fieldsHandler(uc *usecase.DatasetUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req fieldsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "malformed fields request"), http.StatusBadRequest)
			return
		}

		writeJSON(w, r, fieldsResponse{Fields: uc.FieldMetadata(req.Keys)})
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	safe.Write(r.Context(), w, body)
}
