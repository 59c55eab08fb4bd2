package grid

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	errs "github.com/matzehuels/trackgrid/pkg/errors"
)

// TrackKind classifies how a track is sized.
type TrackKind int

const (
	// KindFraction sizes a track by weight against the space left over
	// after fixed and fit-content tracks.
	KindFraction TrackKind = iota
	// KindFixed sizes a track to a declared pixel size.
	KindFixed
	// KindFitContent sizes a track to the largest natural size among the
	// single-track items it hosts.
	KindFitContent
)

func (k TrackKind) String() string {
	switch k {
	case KindFraction:
		return "fraction"
	case KindFixed:
		return "fixed"
	case KindFitContent:
		return "fit"
	}
	return fmt.Sprintf("TrackKind(%d)", int(k))
}

// TrackSpec is the size specification of one column or row.
// Specs compare by value.
type TrackSpec struct {
	Kind  TrackKind
	Value float64 // weight for fractions, pixels for fixed tracks, unused for fit
	Align Alignment
}

// Fraction returns a flexible track with the given weight.
func Fraction(weight float64) TrackSpec { return TrackSpec{Kind: KindFraction, Value: weight} }

// Fixed returns a track of a fixed pixel size.
func Fixed(size float64) TrackSpec { return TrackSpec{Kind: KindFixed, Value: size} }

// FitContent returns a track sized to its content.
func FitContent() TrackSpec { return TrackSpec{Kind: KindFitContent} }

// Tracks returns n equal fraction tracks.
func Tracks(n int) []TrackSpec {
	if n < 0 {
		n = 0
	}
	specs := make([]TrackSpec, n)
	for i := range specs {
		specs[i] = Fraction(1)
	}
	return specs
}

// WithAlignment returns a copy of t whose items default to alignment a.
func (t TrackSpec) WithAlignment(a Alignment) TrackSpec {
	t.Align = a
	return t
}

// NewTrack builds a validated track spec.
func NewTrack(kind TrackKind, value float64, align Alignment) (TrackSpec, error) {
	t := TrackSpec{Kind: kind, Value: value, Align: align}
	if err := t.Validate(); err != nil {
		return TrackSpec{}, err
	}
	return t, nil
}

// Validate checks that a fraction weight is positive and a fixed size is
// non-negative.
func (t TrackSpec) Validate() error {
	if math.IsNaN(t.Value) || math.IsInf(t.Value, 0) {
		return errs.New(errs.ErrCodeInvalidTrackSpec, "track value must be finite, got %v", t.Value)
	}
	switch t.Kind {
	case KindFraction:
		if t.Value <= 0 {
			return errs.New(errs.ErrCodeInvalidTrackSpec, "fraction weight must be > 0, got %v", t.Value)
		}
	case KindFixed:
		if t.Value < 0 {
			return errs.New(errs.ErrCodeInvalidTrackSpec, "fixed size must be >= 0, got %v", t.Value)
		}
	case KindFitContent:
	default:
		return errs.New(errs.ErrCodeInvalidTrackSpec, "unknown track kind %d", int(t.Kind))
	}
	if !t.Align.valid() {
		return errs.New(errs.ErrCodeInvalidTrackSpec, "unknown track alignment %d", int(t.Align))
	}
	return nil
}

// IsFlexible reports whether the track absorbs remaining space.
func (t TrackSpec) IsFlexible() bool { return t.Kind == KindFraction }

// IsIntrinsic reports whether the track needs measurements before sizing.
func (t TrackSpec) IsIntrinsic() bool { return t.Kind == KindFitContent }

// IsFlexible reports whether spec is a fraction track.
func IsFlexible(spec TrackSpec) bool { return spec.IsFlexible() }

// IsIntrinsic reports whether spec is a fit-content track.
func IsIntrinsic(spec TrackSpec) bool { return spec.IsIntrinsic() }

// String formats the track in the text form accepted by ParseTrack.
func (t TrackSpec) String() string {
	var s string
	switch t.Kind {
	case KindFraction:
		s = strconv.FormatFloat(t.Value, 'g', -1, 64) + "fr"
	case KindFixed:
		s = strconv.FormatFloat(t.Value, 'g', -1, 64)
	default:
		s = "fit"
	}
	if t.Align != AlignStretch {
		s += " " + t.Align.String()
	}
	return s
}

// ParseTrack parses the text form of a track: "2fr", "50", "50px", "50pt"
// or "fit", optionally followed by an alignment ("1fr center").
func ParseTrack(s string) (TrackSpec, error) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 || len(fields) > 2 {
		return TrackSpec{}, errs.New(errs.ErrCodeInvalidTrackSpec, "invalid track: %q", s)
	}

	align := AlignStretch
	if len(fields) == 2 {
		a, err := ParseAlignment(fields[1])
		if err != nil {
			return TrackSpec{}, errs.Wrap(errs.ErrCodeInvalidTrackSpec, err, "invalid track: %q", s)
		}
		align = a
	}

	body := fields[0]
	var (
		kind TrackKind
		num  string
	)
	switch {
	case body == "fit" || body == "auto":
		return NewTrack(KindFitContent, 0, align)
	case strings.HasSuffix(body, "fr"):
		kind, num = KindFraction, strings.TrimSuffix(body, "fr")
	case strings.HasSuffix(body, "px"):
		kind, num = KindFixed, strings.TrimSuffix(body, "px")
	case strings.HasSuffix(body, "pt"):
		kind, num = KindFixed, strings.TrimSuffix(body, "pt")
	default:
		kind, num = KindFixed, body
	}

	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return TrackSpec{}, errs.Wrap(errs.ErrCodeInvalidTrackSpec, err, "invalid track: %q", s)
	}
	return NewTrack(kind, v, align)
}

// ParseTracks parses a list of track texts.
func ParseTracks(texts []string) ([]TrackSpec, error) {
	specs := make([]TrackSpec, 0, len(texts))
	for i, s := range texts {
		t, err := ParseTrack(s)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		specs = append(specs, t)
	}
	return specs, nil
}

// MarshalText implements encoding.TextMarshaler.
func (t TrackSpec) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TrackSpec) UnmarshalText(b []byte) error {
	v, err := ParseTrack(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func validateTracks(specs []TrackSpec) error {
	for i, t := range specs {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("track %d: %w", i, err)
		}
	}
	return nil
}
