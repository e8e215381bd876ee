package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/jmylchreest/lumen/internal/arbiter"
	"github.com/jmylchreest/lumen/internal/colour"
	"github.com/jmylchreest/lumen/internal/light"
	"github.com/jmylchreest/lumen/internal/photometric"
	"github.com/jmylchreest/lumen/internal/preset"
	"github.com/jmylchreest/lumen/internal/router"
	"github.com/jmylchreest/lumen/internal/scene"
	"github.com/jmylchreest/lumen/internal/spectral"
	"github.com/jmylchreest/lumen/internal/temperature"
	"github.com/jmylchreest/lumen/internal/version"
)

// EntityView is an entity as returned by the API.
type EntityView struct {
	ID         string           `json:"id"`
	Name       string           `json:"name,omitempty"`
	Attributes scene.Attributes `json:"attributes"`
}

// ColorView is a resolved colour in linear and display form.
type ColorView struct {
	Linear colour.Linear `json:"linear"`
	Hex    string        `json:"hex"`
}

func newColorView(c colour.Linear) ColorView {
	return ColorView{Linear: c, Hex: c.Display().Hex()}
}

// FailureView is an arbiter failure.
type FailureView struct {
	Axis     arbiter.Axis `json:"axis"`
	Resolver string       `json:"resolver"`
	Reason   string       `json:"reason"`
}

// PlanView is a dry-run evaluation of one entity.
type PlanView struct {
	ID         string           `json:"id"`
	Color      string           `json:"color"`
	Brightness string           `json:"brightness"`
	Output     arbiter.Output   `json:"output"`
	Writes     scene.Attributes `json:"writes"`
	Failures   []FailureView    `json:"failures,omitempty"`
	Clamps     []light.Clamp    `json:"clamps,omitempty"`
}

func newPlanView(p arbiter.Plan) PlanView {
	v := PlanView{
		ID:         p.EntityID,
		Color:      p.Color.String(),
		Brightness: p.Brightness.String(),
		Output:     p.Output,
		Writes:     p.Writes,
		Clamps:     p.Clamps,
	}
	if v.Writes == nil {
		v.Writes = scene.Attributes{}
	}
	for _, f := range p.Failures {
		v.Failures = append(v.Failures, FailureView{Axis: f.Axis, Resolver: f.Resolver, Reason: f.Err.Error()})
	}
	return v
}

// RecomputeView summarises a recompute of the whole scene.
type RecomputeView struct {
	Recomputed int           `json:"recomputed"`
	Failed     []FailureView `json:"failed,omitempty"`
	Stats      router.Stats  `json:"stats"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"entities": s.store.Len(),
		"pending":  s.router.Pending(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, version.GetInfo())
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.router.Stats())
}

func (s *Server) handleRecompute(w http.ResponseWriter, r *http.Request) {
	results, err := s.router.RecomputeAll(r.Context(), s.store.IDs())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "cancelled", err)
		return
	}

	out := RecomputeView{Recomputed: len(results)}
	for _, res := range results {
		for _, f := range res.Plan.Failures {
			out.Failed = append(out.Failed, FailureView{Axis: f.Axis, Resolver: f.Resolver, Reason: f.Error()})
		}
	}
	out.Stats = s.router.Stats()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleEntityList(w http.ResponseWriter, _ *http.Request) {
	doc := s.store.Document()
	out := make([]EntityView, 0, len(doc.Lights))
	for _, l := range doc.Lights {
		out = append(out, EntityView{ID: l.ID, Name: l.Name, Attributes: l.Attributes})
	}
	writeJSON(w, http.StatusOK, out)
}

func entityID(r *http.Request) string {
	return strings.TrimSpace(mux.Vars(r)["id"])
}

func (s *Server) handleEntityGet(w http.ResponseWriter, r *http.Request) {
	id := entityID(r)
	attrs, ok := s.store.Read(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	writeJSON(w, http.StatusOK, EntityView{ID: id, Name: s.store.Name(id), Attributes: attrs})
}

// inputAttributes decodes a body of attributes, rejecting values the scene
// cannot hold and attributes only the engine may write.
func inputAttributes(w http.ResponseWriter, r *http.Request) (scene.Attributes, error) {
	var raw scene.Attributes
	if err := decodeBody(w, r, &raw); err != nil {
		return nil, fmt.Errorf("invalid_json: %w", err)
	}
	for name := range raw {
		if scene.IsDerived(name) {
			return nil, fmt.Errorf("read_only_attribute: %s is computed", name)
		}
		if strings.HasPrefix(name, scene.Namespace) && !scene.IsTrigger(name) {
			return nil, fmt.Errorf("unknown_attribute: %s", name)
		}
	}
	attrs, err := scene.NormalizeAll(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid_value: %w", err)
	}
	return attrs, nil
}

func writeInputError(w http.ResponseWriter, err error) {
	code, _, _ := strings.Cut(err.Error(), ":")
	writeError(w, http.StatusBadRequest, code, err)
}

func (s *Server) handleEntityPatch(w http.ResponseWriter, r *http.Request) {
	id := entityID(r)
	attrs, err := inputAttributes(w, r)
	if err != nil {
		writeInputError(w, err)
		return
	}
	if err := s.store.Write(id, attrs); err != nil {
		if errors.Is(err, scene.ErrEntityNotFound) {
			writeError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "write_failed", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"id": id, "pending": s.router.Pending()})
}

func (s *Server) handleEntityPut(w http.ResponseWriter, r *http.Request) {
	id := entityID(r)
	attrs, err := inputAttributes(w, r)
	if err != nil {
		writeInputError(w, err)
		return
	}

	status := http.StatusOK
	if s.store.Has(id) {
		err = s.store.ReplaceInputs(id, attrs)
	} else {
		status = http.StatusCreated
		err = s.store.Add(id, r.URL.Query().Get("name"), attrs)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "write_failed", err)
		return
	}
	writeJSON(w, status, map[string]any{"id": id, "pending": s.router.Pending()})
}

func (s *Server) handleEntityDelete(w http.ResponseWriter, r *http.Request) {
	if !s.store.Remove(entityID(r)) {
		writeError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEntityPlan(w http.ResponseWriter, r *http.Request) {
	id := entityID(r)
	if !s.store.Has(id) {
		writeError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	writeJSON(w, http.StatusOK, newPlanView(s.arbiter.Plan(s.store, id)))
}

func (s *Server) handleEntityPreset(w http.ResponseWriter, r *http.Request) {
	id := entityID(r)
	p, err := preset.Lookup(mux.Vars(r)["name"])
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown_preset", err)
		return
	}

	attrs, ok := s.store.Read(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	e, err := light.FromAttributes(id, attrs)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_inputs", err)
		return
	}

	updated := p.Apply(e).Attributes()
	if err := s.store.Write(id, updated); err != nil {
		writeError(w, http.StatusInternalServerError, "write_failed", err)
		return
	}
	s.logger.Info("preset applied", "entity", id, "preset", p.Name)
	writeJSON(w, http.StatusAccepted, map[string]any{"id": id, "preset": p.Name, "pending": s.router.Pending()})
}

func (s *Server) handlePresetList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, preset.All())
}

func (s *Server) handlePresetGet(w http.ResponseWriter, r *http.Request) {
	p, err := preset.Lookup(mux.Vars(r)["name"])
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown_preset", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleResolveSpectral(w http.ResponseWriter, r *http.Request) {
	spec := spectral.DefaultSpec()
	if err := decodeBody(w, r, &spec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return
	}
	rgb, err := s.resolveSpectral(spec)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_spectral_input", err)
		return
	}

	out := map[string]any{"color": newColorView(rgb)}
	if spec.SourceMode != spectral.SourceGaussian {
		out["spdInfo"] = spectral.Summarize(spec.CurveWavelengthsNm, spec.CurveIntensities).String()
	}
	writeJSON(w, http.StatusOK, out)
}

// AttributesView lists the attribute names the engine reads and writes.
type AttributesView struct {
	Trigger []string `json:"trigger"`
	Derived []string `json:"derived"`
}

func (s *Server) handleAttributes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, AttributesView{Trigger: scene.TriggerNames(), Derived: scene.DerivedNames()})
}

func (s *Server) handleResolvePhotometric(w http.ResponseWriter, r *http.Request) {
	spec := photometric.DefaultSpec()
	if err := decodeBody(w, r, &spec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return
	}
	res, err := photometric.Resolve(spec)
	if err != nil {
		code := "invalid_geometry"
		if errors.Is(err, photometric.ErrLuminanceOverflow) {
			code = "luminance_overflow"
		}
		writeError(w, http.StatusUnprocessableEntity, code, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleResolveTemperature(w http.ResponseWriter, r *http.Request) {
	spec := temperature.DefaultSpec()
	if err := decodeBody(w, r, &spec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"color":   newColorView(temperature.Resolve(spec)),
		"clamped": spec.Clamped(),
	})
}
