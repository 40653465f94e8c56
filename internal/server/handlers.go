package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/kgview/pkg/buildinfo"
	"github.com/matzehuels/kgview/pkg/errors"
	"github.com/matzehuels/kgview/pkg/format"
	"github.com/matzehuels/kgview/pkg/graph"
	"github.com/matzehuels/kgview/pkg/pipeline"
	"github.com/matzehuels/kgview/pkg/render"
	"github.com/matzehuels/kgview/pkg/snapshot"
)

// Response headers describing a pipeline run.
const (
	HeaderGraphHash  = "X-Graph-Hash"
	HeaderCache      = "X-Cache"
	HeaderSnapshotID = "X-Snapshot-ID"
	HeaderProcessing = "X-Processing-Count"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": "kgview",
		"build":   buildinfo.Current(),
	})
}

// transformRequest is the body of POST /v1/graph/transform.
type transformRequest struct {
	Graph      *graph.Payload `json:"graph" validate:"required"`
	Format     string         `json:"format"`
	Layout     string         `json:"layout" validate:"omitempty,oneof=dot neato fdp sfdp circo twopi"`
	Directed   bool           `json:"directed"`
	EdgeLabels bool           `json:"edge_labels"`
	Snapshot   bool           `json:"snapshot"`
}

func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	var req transformRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidPayload, err, "decode request body"))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, r, validationError(err))
		return
	}
	if f := r.URL.Query().Get("format"); f != "" {
		req.Format = f
	}

	s.run(w, r, pipeline.Options{
		Payload: req.Graph,
		Format:  render.Format(req.Format),
		Render: render.Options{
			Directed:   req.Directed || req.Graph.Directed,
			Layout:     req.Layout,
			EdgeLabels: req.EdgeLabels,
		},
		Snapshot: req.Snapshot,
	})
}

// knowledgeQuery holds the query of GET /v1/knowledge/{id}/graph.
type knowledgeQuery struct {
	ID     string `validate:"required,max=128"`
	Layout string `validate:"omitempty,oneof=dot neato fdp sfdp circo twopi"`
}

func (s *Server) handleKnowledgeGraph(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kq := knowledgeQuery{ID: chi.URLParam(r, "id"), Layout: q.Get("layout")}
	if err := s.validate.Struct(kq); err != nil {
		s.writeError(w, r, validationError(err))
		return
	}
	s.run(w, r, pipeline.Options{
		KnowledgeID: kq.ID,
		Format:      render.Format(q.Get("format")),
		Render: render.Options{
			Directed:   queryBool(q.Get("directed")),
			Layout:     kq.Layout,
			EdgeLabels: queryBool(q.Get("edge_labels")),
		},
		Refresh:  queryBool(q.Get("refresh")),
		Snapshot: queryBool(q.Get("snapshot")),
	})
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, opts pipeline.Options) {
	res, err := s.opts.Runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", res.Format.ContentType())
	h.Set(HeaderGraphHash, res.GraphHash)
	if res.CacheInfo.RenderHit {
		h.Set(HeaderCache, "HIT")
	} else {
		h.Set(HeaderCache, "MISS")
	}
	if res.SnapshotID != "" {
		h.Set(HeaderSnapshotID, res.SnapshotID)
	}
	if res.Progress != nil {
		h.Set(HeaderProcessing, strconv.Itoa(int(res.Progress.Processing)))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifact)
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateKnowledgeID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 0 || limit > 500 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "limit must be between 0 and 500"))
		return
	}
	list, err := s.opts.Snapshots.List(r.Context(), id, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*snapshot.Snapshot{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": list})
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.opts.Snapshots.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type textResponse struct {
	Text string `json:"text"`
}

func (s *Server) handleAmount(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	num, err := queryFloat(q.Get("num"), "num")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	units := s.opts.Units
	if raw, ok := q["units"]; ok && len(raw) > 0 {
		units = format.Units(strings.Split(raw[0], ","))
	}
	res := format.Amount(num, units, queryBool(q.Get("preserve")))
	writeJSON(w, http.StatusOK, map[string]string{
		"value": res.Value,
		"type":  res.Type,
		"text":  res.String(),
	})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("value")
	var v any = raw
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		v = f
	}
	writeJSON(w, http.StatusOK, textResponse{Text: format.Score(v)})
}

// timestampQuery holds the query of GET /v1/format/timestamp.
type timestampQuery struct {
	Layout string `validate:"max=64"`
}

func (s *Server) handleTimestamp(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ms, err := strconv.ParseInt(q.Get("ms"), 10, 64)
	if err != nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "ms must be an integer"))
		return
	}
	tq := timestampQuery{Layout: q.Get("layout")}
	if err := s.validate.Struct(tq); err != nil {
		s.writeError(w, r, validationError(err))
		return
	}
	if tq.Layout == "" {
		tq.Layout = s.opts.TimestampLayout
	}
	writeJSON(w, http.StatusOK, textResponse{Text: format.TimestampIn(ms, tq.Layout, s.opts.Location)})
}

// fileSizeQuery holds the query of GET /v1/format/filesize.
type fileSizeQuery struct {
	Decimals int `validate:"gte=0,lte=20"`
}

func (s *Server) handleFileSize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	bytes, err := queryFloat(q.Get("bytes"), "bytes")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	fq := fileSizeQuery{Decimals: format.DefaultFileSizeDecimals}
	if d := q.Get("decimals"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "decimals must be an integer"))
			return
		}
		fq.Decimals = n
	}
	if err := s.validate.Struct(fq); err != nil {
		s.writeError(w, r, validationError(err))
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Text: format.FileSize(bytes, fq.Decimals)})
}

func queryFloat(raw, name string) (float64, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be a number", name)
	}
	return f, nil
}

func queryBool(raw string) bool {
	b, _ := strconv.ParseBool(raw)
	return b
}
