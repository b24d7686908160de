// Package config holds the immutable configuration of the text compositor.
//
// A Config is built once (DefaultConfig, optionally overlaid by a JSON file via
// Load), checked with Validate, and then passed by value to every component at
// construction time.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Config holds every tunable of the compositor and its default collaborators.
type Config struct {
	// MinCharHeight is the minimum post-warp height (pixels) of every
	// alphanumeric character for a placement to be accepted.
	MinCharHeight float64 `json:"min_char_height"`

	// MinAspectRatio bounds the change of median character aspect ratio
	// caused by the warp: accepted iff MinAspectRatio < ratio < 1/MinAspectRatio.
	// Must lie in (0, 1).
	MinAspectRatio float64 `json:"min_asp_ratio"`

	// MaxTextRegions caps how many regions one instance places text on.
	MaxTextRegions int `json:"max_text_regions"`

	// NumRepeat is the number of round-robin passes over the chosen regions.
	NumRepeat int `json:"num_repeat"`

	// MaxTime is the per-attempt time budget. Zero disables the deadline.
	MaxTime Duration `json:"max_time"`

	// Debug selects the fixed (deterministic) sampling policy.
	Debug bool `json:"debug"`

	// Seed seeds the stochastic sampling policy.
	Seed uint64 `json:"seed"`

	// Verbose enables per-attempt logging.
	Verbose bool `json:"verbose"`

	Scene SceneConfig `json:"scene"`
	Text  TextConfig  `json:"text"`
	Color ColorConfig `json:"color"`
}

// SceneConfig holds parameters for depth back-projection and plane finding.
type SceneConfig struct {
	FocalLength        float64 `json:"focal_length"`         // Pinhole focal length in pixels; 0 = image width
	DepthScale         float64 `json:"depth_scale"`          // Multiplier from stored depth units to scene units
	MinRegionArea      int     `json:"min_region_area"`      // Smallest segment (pixels) considered for a plane fit
	RANSACIterations   int     `json:"ransac_iterations"`    // Plane hypotheses per region
	InlierThreshold    float64 `json:"inlier_threshold"`     // Max point-to-plane distance, relative to median depth
	MinInlierFraction  float64 `json:"min_inlier_fraction"`  // Fraction of region points that must fit the plane
	MaxViewAngle       float64 `json:"max_view_angle"`       // Max angle (degrees) between plane normal and view ray
	MaxSamplePoints    int     `json:"max_sample_points"`    // Points used for RANSAC and homography fitting
	MinPlacementPixels int     `json:"min_placement_pixels"` // Smallest free area of a usable placement mask
	MaxFrontalScale    float64 `json:"max_frontal_scale"`    // Max frontal frame size relative to the image
}

// TextConfig holds parameters for the default glyph renderer.
type TextConfig struct {
	CorpusPath   string  `json:"corpus_path"`   // Optional text corpus; empty = built-in corpus
	MinFontSize  float64 `json:"min_font_size"` // Font size range in frontal pixels
	MaxFontSize  float64 `json:"max_font_size"`
	MaxLines     int     `json:"max_lines"`     // Lines per placement
	MaxWords     int     `json:"max_words"`     // Words per line
	CurveProb    float64 `json:"curve_prob"`    // Probability of a curved baseline (single line only)
	CurveAmount  float64 `json:"curve_amount"`  // Mean |a| of the baseline y = a*x^2, per pixel
	CapsProb     float64 `json:"caps_prob"`     // Probability of upper-casing the text
	SizeAttempts int     `json:"size_attempts"` // Font sizes tried before giving up
}

// ColorConfig holds parameters for the default colorizer.
type ColorConfig struct {
	MinContrast float64 `json:"min_contrast"` // Minimum HCL lightness difference (0-1)
	ShadowProb  float64 `json:"shadow_prob"`  // Probability of a soft drop shadow
	Opacity     float64 `json:"opacity"`      // Peak text opacity (0-1]
}

// DefaultConfig returns a Config with the standard generation defaults.
func DefaultConfig() Config {
	return Config{
		MinCharHeight:  8,
		MinAspectRatio: 0.4,
		MaxTextRegions: 7,
		NumRepeat:      5,
		MaxTime:        Duration(5 * time.Second),
		Seed:           1,
		Scene: SceneConfig{
			FocalLength:        0,
			DepthScale:         1.0 / 1000,
			MinRegionArea:      1000,
			RANSACIterations:   200,
			InlierThreshold:    0.02,
			MinInlierFraction:  0.6,
			MaxViewAngle:       75,
			MaxSamplePoints:    600,
			MinPlacementPixels: 400,
			MaxFrontalScale:    2.0,
		},
		Text: TextConfig{
			MinFontSize:  16,
			MaxFontSize:  48,
			MaxLines:     3,
			MaxWords:     4,
			CurveProb:    0.15,
			CurveAmount:  0.002,
			CapsProb:     0.1,
			SizeAttempts: 3,
		},
		Color: ColorConfig{
			MinContrast: 0.35,
			ShadowProb:  0.2,
			Opacity:     0.95,
		},
	}
}

// Validate reports every out-of-range field. A nil result means the Config is
// usable as is.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.MinCharHeight >= 0, "min_char_height must be >= 0, got %v", c.MinCharHeight)
	check(c.MinAspectRatio > 0 && c.MinAspectRatio < 1,
		"min_asp_ratio must be in (0,1), got %v", c.MinAspectRatio)
	check(c.MaxTextRegions >= 1, "max_text_regions must be >= 1, got %d", c.MaxTextRegions)
	check(c.NumRepeat >= 1, "num_repeat must be >= 1, got %d", c.NumRepeat)
	check(c.MaxTime >= 0, "max_time must be >= 0, got %v", c.MaxTime)

	s := c.Scene
	check(s.FocalLength >= 0, "scene.focal_length must be >= 0, got %v", s.FocalLength)
	check(s.DepthScale > 0, "scene.depth_scale must be > 0, got %v", s.DepthScale)
	check(s.RANSACIterations >= 1, "scene.ransac_iterations must be >= 1, got %d", s.RANSACIterations)
	check(s.InlierThreshold > 0, "scene.inlier_threshold must be > 0, got %v", s.InlierThreshold)
	check(s.MinInlierFraction >= 0 && s.MinInlierFraction <= 1,
		"scene.min_inlier_fraction must be in [0,1], got %v", s.MinInlierFraction)
	check(s.MaxViewAngle > 0 && s.MaxViewAngle <= 90,
		"scene.max_view_angle must be in (0,90], got %v", s.MaxViewAngle)
	check(s.MaxSamplePoints >= 4, "scene.max_sample_points must be >= 4, got %d", s.MaxSamplePoints)
	check(s.MaxFrontalScale > 0, "scene.max_frontal_scale must be > 0, got %v", s.MaxFrontalScale)

	t := c.Text
	check(t.MinFontSize > 0 && t.MaxFontSize >= t.MinFontSize,
		"text font size range invalid: [%v, %v]", t.MinFontSize, t.MaxFontSize)
	check(t.MaxLines >= 1, "text.max_lines must be >= 1, got %d", t.MaxLines)
	check(t.MaxWords >= 1, "text.max_words must be >= 1, got %d", t.MaxWords)
	check(t.SizeAttempts >= 1, "text.size_attempts must be >= 1, got %d", t.SizeAttempts)
	for name, p := range map[string]float64{"curve_prob": t.CurveProb, "caps_prob": t.CapsProb} {
		check(p >= 0 && p <= 1, "text.%s must be in [0,1], got %v", name, p)
	}

	col := c.Color
	check(col.MinContrast >= 0 && col.MinContrast <= 1, "color.min_contrast must be in [0,1], got %v", col.MinContrast)
	check(col.ShadowProb >= 0 && col.ShadowProb <= 1, "color.shadow_prob must be in [0,1], got %v", col.ShadowProb)
	check(col.Opacity > 0 && col.Opacity <= 1, "color.opacity must be in (0,1], got %v", col.Opacity)

	return errors.Join(errs...)
}

// Load reads configuration from a JSON file layered over DefaultConfig. A
// missing file yields the defaults. The result is validated.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path as indented JSON.
func (c Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// Duration is a time.Duration that reads and writes JSON as a string such as
// "1.5s". Bare numbers are accepted as seconds.
type Duration time.Duration

// D returns d as a time.Duration.
func (d Duration) D() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case float64:
		*d = Duration(val * float64(time.Second))
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", val, err)
		}
		*d = Duration(parsed)
	case nil:
		*d = 0
	default:
		return fmt.Errorf("invalid duration %v", val)
	}
	return nil
}
