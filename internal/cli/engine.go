package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jmylchreest/lumen/internal/arbiter"
	"github.com/jmylchreest/lumen/internal/remote"
	"github.com/jmylchreest/lumen/internal/router"
	"github.com/jmylchreest/lumen/internal/scene"
	"github.com/jmylchreest/lumen/internal/spectral"
)

// engine is a scene file loaded into a store with its arbiter and router.
type engine struct {
	path    string
	store   *scene.Store
	arbiter *arbiter.Arbiter
	router  *router.Router
	detach  func()
}

// loadEngine reads the scene at path. Curve paths inside the scene resolve
// relative to the scene file's directory. opts are passed to the router after
// the logger.
func loadEngine(path string, opts ...router.Option) (*engine, error) {
	doc, err := scene.LoadFile(path)
	if err != nil {
		return nil, err
	}
	store := scene.NewStore()
	if err := store.Load(doc); err != nil {
		return nil, fmt.Errorf("failed to load scene: %w", err)
	}

	arb := arbiter.New(
		arbiter.WithResolvers(arbiter.DefaultResolvers(appConfig.White())),
		arbiter.WithCurveLoader(curveLoader(filepath.Dir(path))),
		arbiter.WithLogger(logger.Named("arbiter")),
	)
	rt := router.New(store, arb, append([]router.Option{router.WithLogger(logger.Named("router"))}, opts...)...)

	logger.Debug("scene loaded", "path", path, "entities", store.Len())
	return &engine{
		path:    path,
		store:   store,
		arbiter: arb,
		router:  rt,
		detach:  rt.Attach(),
	}, nil
}

// seedOptions returns the router options for the --seed-new flag.
func seedOptions(seed bool) []router.Option {
	if !seed {
		return nil
	}
	return []router.Option{router.WithSeedDefaults()}
}

// loadCurve reads a curve from a local file or, for http(s) URLs, from the
// download cache.
func loadCurve(ctx context.Context, path string, refresh bool) (*spectral.Curve, error) {
	if !remote.IsURL(path) {
		return spectral.LoadFile(path, appConfig.MaxCurveBytes)
	}
	logger.Debug("fetching curve", "url", path, "refresh", refresh)
	local, err := remote.Download(ctx, path, remote.CacheOptions{
		Refresh: refresh,
		Fetch:   remote.FetchOptions{MaxBytes: appConfig.MaxCurveBytes},
	})
	if err != nil {
		return nil, err
	}
	return spectral.LoadFile(local, appConfig.MaxCurveBytes)
}

// curveLoader resolves scene curve paths: URLs go through the download
// cache, everything else must stay inside baseDir.
func curveLoader(baseDir string) arbiter.CurveLoader {
	local := arbiter.FileCurveLoader(baseDir, appConfig.MaxCurveBytes)
	return func(path string) (*spectral.Curve, error) {
		if remote.IsURL(path) {
			return loadCurve(context.Background(), path, false)
		}
		return local(path)
	}
}

// recomputeAll seeds the computed attributes of every entity.
func (e *engine) recomputeAll(ctx context.Context) ([]router.Result, error) {
	return e.router.RecomputeAll(ctx, e.store.IDs())
}

// save writes the store back to path, or to the engine's own file when
// path is empty.
func (e *engine) save(path string) error {
	if path == "" {
		path = e.path
	}
	if err := scene.SaveFile(path, e.store.Document()); err != nil {
		return err
	}
	logger.Debug("scene saved", "path", path)
	return nil
}

// resultView is a router result as printed by the CLI.
type resultView struct {
	ID         string         `json:"id"`
	Name       string         `json:"name,omitempty"`
	Color      string         `json:"color"`
	Brightness string         `json:"brightness"`
	Output     arbiter.Output `json:"output"`
	Errors     []string       `json:"errors,omitempty"`
}

func (e *engine) views(results []router.Result) []resultView {
	out := make([]resultView, 0, len(results))
	for _, r := range results {
		v := resultView{
			ID:         r.ID,
			Name:       e.store.Name(r.ID),
			Color:      r.Plan.Color.String(),
			Brightness: r.Plan.Brightness.String(),
			Output:     r.Plan.Output,
		}
		for _, f := range r.Plan.Failures {
			v.Errors = append(v.Errors, fmt.Sprintf("%s/%s: %v", f.Axis, f.Resolver, f.Err))
		}
		if r.Err != nil {
			v.Errors = append(v.Errors, r.Err.Error())
		}
		out = append(out, v)
	}
	return out
}

// printResults writes results as a table or JSON.
func (e *engine) printResults(w io.Writer, results []router.Result) error {
	views := e.views(results)
	if outputFormat.value == formatJSON {
		return writeJSON(w, views)
	}

	profile := profileFor(w)
	table := NewTable("ENTITY", "COLOUR", "BRIGHTNESS", "RGB", "NITS", "STATUS")
	table.AlignRight(4)
	table.SetColumnMaxWidth(5, 60)
	for _, v := range views {
		id := v.ID
		if v.Name != "" {
			id = fmt.Sprintf("%s (%s)", v.Name, v.ID)
		}
		rgb, nits := "-", "-"
		if v.Output.Color != nil {
			rgb = v.Output.Color.Display().Hex()
			if sw := preview(profile, *v.Output.Color); sw != "" {
				rgb = sw + " " + rgb
			}
		}
		if v.Output.Brightness != nil {
			nits = fmt.Sprintf("%.4g", v.Output.Brightness.Nits)
		}
		status := "ok"
		if len(v.Errors) > 0 {
			status = strings.Join(v.Errors, "; ")
		}
		table.AddRow(id, v.Color, v.Brightness, rgb, nits, status)
	}
	_, err := fmt.Fprint(w, table.Render())
	return err
}

// failed counts results that did not fully resolve.
func failed(results []router.Result) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}
