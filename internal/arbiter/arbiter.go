// Package arbiter decides, per light and per output axis, which resolver owns
// the renderer inputs, runs it and computes the attributes to write back.
//
// Arbitration is stateless: every evaluation starts from the entity's current
// inputs, so the same inputs always produce the same plan. Only attributes of
// the winning branches are written, and all of them are derived attributes,
// which is what lets the router recognise and drop the resulting change
// notifications.
package arbiter

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/lumen/internal/colour"
	"github.com/jmylchreest/lumen/internal/light"
	"github.com/jmylchreest/lumen/internal/photometric"
	"github.com/jmylchreest/lumen/internal/scene"
	"github.com/jmylchreest/lumen/internal/security"
	"github.com/jmylchreest/lumen/internal/spectral"
	"github.com/jmylchreest/lumen/internal/temperature"
)

// ErrNoCurveLoader is reported when a light references a curve file but the
// arbiter was built without a way to read files.
var ErrNoCurveLoader = errors.New("no curve loader configured")

// Resolvers are the conversion functions the arbiter dispatches to.
type Resolvers struct {
	Spectral    func(spectral.Spec) (colour.Linear, error)
	Photometric func(photometric.Spec) (photometric.Result, error)
	Temperature func(temperature.Spec) colour.Linear
}

// DefaultResolvers returns the standard resolvers blending spectral colours
// towards white.
func DefaultResolvers(white colour.Linear) Resolvers {
	return Resolvers{
		Spectral:    spectral.NewResolver(white).Resolve,
		Photometric: photometric.Resolve,
		Temperature: temperature.Resolve,
	}
}

// CurveLoader reads the SPD curve referenced by a light's curve path.
type CurveLoader func(path string) (*spectral.Curve, error)

// FileCurveLoader loads curve paths relative to baseDir. Paths that are
// absolute or escape baseDir are rejected.
func FileCurveLoader(baseDir string, maxBytes int64) CurveLoader {
	return func(path string) (*spectral.Curve, error) {
		if err := security.ValidateFilePath(path, baseDir); err != nil {
			return nil, err
		}
		return spectral.LoadFile(filepath.Join(baseDir, path), maxBytes)
	}
}

// Arbiter evaluates lights.
type Arbiter struct {
	resolvers Resolvers
	curves    CurveLoader
	logger    hclog.Logger
}

// Option configures an Arbiter.
type Option func(*Arbiter)

// WithResolvers replaces the resolvers. Nil fields keep their defaults.
func WithResolvers(r Resolvers) Option {
	return func(a *Arbiter) {
		if r.Spectral != nil {
			a.resolvers.Spectral = r.Spectral
		}
		if r.Photometric != nil {
			a.resolvers.Photometric = r.Photometric
		}
		if r.Temperature != nil {
			a.resolvers.Temperature = r.Temperature
		}
	}
}

// WithCurveLoader sets how curve paths are read.
func WithCurveLoader(l CurveLoader) Option {
	return func(a *Arbiter) { a.curves = l }
}

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(a *Arbiter) { a.logger = l }
}

// New returns an arbiter using the standard resolvers.
func New(opts ...Option) *Arbiter {
	a := &Arbiter{
		resolvers: DefaultResolvers(colour.White),
		logger:    hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Output is the typed result of a successful evaluation.
type Output struct {
	Color      *colour.Linear      `json:"color,omitempty"`
	Brightness *photometric.Result `json:"brightness,omitempty"`
	SpdInfo    string              `json:"spdInfo,omitempty"`
}

// Plan is the outcome of evaluating one light.
type Plan struct {
	EntityID   string
	Color      ColorState
	Brightness BrightnessState
	Output     Output
	Writes     scene.Attributes
	Failures   []*Failure
	Clamps     []light.Clamp
}

// Failed reports whether any axis failed.
func (p Plan) Failed() bool {
	return len(p.Failures) > 0
}

// Err joins the plan's failures.
func (p Plan) Err() error {
	errs := make([]error, len(p.Failures))
	for i, f := range p.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Evaluate selects the owner of each axis and resolves it.
func (a *Arbiter) Evaluate(e light.Entity) Plan {
	p := Plan{
		EntityID: e.ID,
		Writes:   scene.Attributes{},
		Clamps:   e.Clamps(),
	}
	a.evaluateColor(e, &p)
	a.evaluateBrightness(e, &p)
	return p
}

func (a *Arbiter) evaluateColor(e light.Entity, p *Plan) {
	var (
		rgb      colour.Linear
		resolver string
		err      error
	)

	if e.ColorMode == light.ColorSpectral {
		p.Color = ManagedSpectral
		resolver = ResolverSpectral

		spec := e.Spectral
		if spec.SourceMode == spectral.SourceCurve && len(spec.CurveWavelengthsNm) == 0 && e.CurvePath != "" {
			spec, err = a.loadCurve(e.CurvePath, spec.WhiteMixFraction)
			if err != nil {
				resolver = ResolverCurve
			}
		}
		if err == nil {
			rgb, err = a.resolvers.Spectral(spec)
		}
		if err == nil && spec.SourceMode != spectral.SourceGaussian {
			p.Output.SpdInfo = spectral.Summarize(spec.CurveWavelengthsNm, spec.CurveIntensities).String()
			p.Writes[scene.AttrComputedSpdInfo] = p.Output.SpdInfo
		}
	} else {
		p.Color = ManagedTemperature
		resolver = ResolverTemperature
		rgb = a.resolvers.Temperature(e.Temperature)
	}

	if err != nil {
		p.Failures = append(p.Failures, &Failure{EntityID: e.ID, Axis: AxisColor, Resolver: resolver, Err: err})
		p.Writes[scene.AttrComputedColorResolved] = false
		return
	}

	p.Output.Color = &rgb
	p.Writes[scene.AttrComputedColor] = rgb.Slice()
	p.Writes[scene.AttrHostColor] = rgb.Slice()
	p.Writes[scene.AttrHostEnableColorTemperature] = false
	p.Writes[scene.AttrComputedColorResolved] = true
}

func (a *Arbiter) loadCurve(path string, whiteMix float64) (spectral.Spec, error) {
	if a.curves == nil {
		return spectral.Spec{}, ErrNoCurveLoader
	}
	c, err := a.curves(path)
	if err != nil {
		return spectral.Spec{}, fmt.Errorf("load curve %s: %w", path, err)
	}
	return c.Spec(whiteMix), nil
}

func (a *Arbiter) evaluateBrightness(e light.Entity, p *Plan) {
	if e.BrightnessMode != light.BrightnessPhotometric || !e.Photometric.HasData() {
		p.Brightness = NativeBrightness
		return
	}
	p.Brightness = ManagedPhotometric

	res, err := a.resolvers.Photometric(e.Photometric)
	if err != nil {
		p.Failures = append(p.Failures, &Failure{EntityID: e.ID, Axis: AxisBrightness, Resolver: ResolverPhotometric, Err: err})
		p.Writes[scene.AttrComputedBrightnessResolved] = false
		return
	}

	p.Output.Brightness = &res
	p.Writes[scene.AttrComputedIntensity] = res.Intensity
	p.Writes[scene.AttrComputedExposure] = res.Exposure
	p.Writes[scene.AttrComputedNits] = res.Nits
	p.Writes[scene.AttrHostIntensity] = res.Intensity
	p.Writes[scene.AttrHostExposure] = res.Exposure
	p.Writes[scene.AttrComputedBrightnessResolved] = true
}

// Plan reads a light from sc and evaluates it without writing anything.
// Unknown ids are evaluated with default inputs; lights without any lumen
// attribute are left to the host.
func (a *Arbiter) Plan(sc scene.Scene, id string) Plan {
	attrs, ok := sc.Read(id)
	if ok && !scene.HasLumenAttributes(attrs) {
		return Plan{EntityID: id, Color: NativeTemperature, Brightness: NativeBrightness}
	}

	e, err := light.FromAttributes(id, attrs)
	if err != nil {
		return Plan{
			EntityID: id,
			Writes: scene.Attributes{
				scene.AttrComputedColorResolved:      false,
				scene.AttrComputedBrightnessResolved: false,
			},
			Failures: []*Failure{{EntityID: id, Axis: AxisColor, Resolver: ResolverInput, Err: err}},
		}
	}
	return a.Evaluate(e)
}

// Apply evaluates a light and writes the plan's attributes back to sc.
func (a *Arbiter) Apply(sc scene.Scene, id string) (Plan, error) {
	p := a.Plan(sc, id)
	for _, c := range p.Clamps {
		a.logger.Debug("input clamped", "entity", id, "attribute", c.Attribute,
			"requested", c.Requested, "applied", c.Applied)
	}
	if len(p.Writes) == 0 {
		return p, nil
	}
	if err := sc.Write(id, p.Writes); err != nil {
		return p, fmt.Errorf("write computed attributes: %w", err)
	}
	return p, nil
}
