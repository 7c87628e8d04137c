// Package names encodes and decodes feature dynamics column names.
//
// Stage one of feature dynamics extraction yields raw names of the form
//
//	<kind>__<fts_name>__<fts_param>...
//
// which are tagged with the window length before the derived series are
// extracted again:
//
//	<kind>||<fts_name>|<fts_param>...@window_<N>
//
// Stage two appends its own calculator and parameters with the ordinary
// separator, giving the final column name
//
//	<kind>||<fts_name>|<fts_param>...@window_<N>__<fd_name>__<fd_param>...
//
// Kinds and calculator names must not contain "__", "|" or "@", nor begin or
// end with an underscore. Encoding refuses them with ErrReserved.
package names

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	fieldSep     = "__"
	kindSep      = "||"
	paramSep     = "|"
	windowSep    = "@"
	windowPrefix = "window_"
)

var (
	// ErrParse is returned for names that do not follow the encoding.
	ErrParse = errors.New("malformed feature name")

	// ErrInvalidWindowLength is returned when tagging with a window length
	// below one.
	ErrInvalidWindowLength = errors.New("invalid window length")

	// ErrReserved is returned for a kind, calculator or parameter that
	// holds a separator and could not be decoded back.
	ErrReserved = errors.New("name holds a reserved separator")
)

// TypeError reports a feature name that is not a string.
type TypeError struct {
	Value any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("feature name %v is a %T, want a string", e.Value, e.Value)
}

// RawName joins a kind, a calculator and its encoded parameters with the
// field separator.
func RawName(kind, calculator string, params []string) string {
	parts := make([]string, 0, 2+len(params))
	parts = append(parts, kind, calculator)
	parts = append(parts, params...)
	return strings.Join(parts, fieldSep)
}

// CheckField reports whether s can be joined with the field separator and
// split back unchanged. Window-tagged names pass, so it applies to both
// stages.
func CheckField(s string) error {
	switch {
	case s == "":
		return fmt.Errorf("%w: empty field", ErrReserved)
	case strings.Contains(s, fieldSep):
		return fmt.Errorf("%w: %q contains %q", ErrReserved, s, fieldSep)
	case strings.HasPrefix(s, "_") || strings.HasSuffix(s, "_"):
		return fmt.Errorf("%w: %q begins or ends with an underscore", ErrReserved, s)
	}
	return nil
}

// ValidateKind checks a kind of the input series. On top of CheckField it
// refuses the separators of the window tag.
func ValidateKind(kind string) error {
	if err := CheckField(kind); err != nil {
		return err
	}
	if strings.ContainsAny(kind, paramSep+windowSep) {
		return fmt.Errorf("%w: kind %q contains %q or %q", ErrReserved, kind, paramSep, windowSep)
	}
	return nil
}

// EncodeWindowTag turns a raw stage-one name into a window-tagged feature
// time series name.
func EncodeWindowTag(raw string, windowLength int) (string, error) {
	if windowLength < 1 {
		return "", fmt.Errorf("%w: %d", ErrInvalidWindowLength, windowLength)
	}
	if strings.ContainsAny(raw, paramSep+windowSep) {
		return "", fmt.Errorf("%w: %q contains %q or %q", ErrReserved, raw, paramSep, windowSep)
	}
	fields := strings.Split(raw, fieldSep)
	if len(fields) < 2 {
		return "", fmt.Errorf("%w: %q has no calculator", ErrParse, raw)
	}
	for _, f := range fields {
		if f == "" || strings.HasPrefix(f, "_") || strings.HasSuffix(f, "_") {
			return "", fmt.Errorf("%w: %q has an ambiguous field %q", ErrReserved, raw, f)
		}
	}
	s := strings.Replace(raw, fieldSep, kindSep, 1)
	s = strings.ReplaceAll(s, fieldSep, paramSep)
	return s + windowSep + windowPrefix + strconv.Itoa(windowLength), nil
}

// FTS is the decoded feature time series part of a name. Build it with
// DecodeFTS or Name.FTS; the zero value has no parts and encodes as "".
type FTS struct {
	// Parts holds the kind, the calculator name and the encoded parameters.
	Parts        []string
	WindowLength int
}

func (f FTS) Kind() string { return f.part(0) }

func (f FTS) Calculator() string { return f.part(1) }

func (f FTS) Params() []string {
	if len(f.Parts) < 3 {
		return nil
	}
	return f.Parts[2:]
}

func (f FTS) part(i int) string {
	if i >= len(f.Parts) {
		return ""
	}
	return f.Parts[i]
}

// String re-encodes the feature time series name. It returns "" when f
// cannot be encoded.
func (f FTS) String() string {
	s, err := EncodeWindowTag(RawName(f.Kind(), f.Calculator(), f.Params()), f.WindowLength)
	if err != nil {
		return ""
	}
	return s
}

// DecodeFTS decodes the part of name before the first field separator.
func DecodeFTS(name string) (FTS, error) {
	head, _, _ := strings.Cut(name, fieldSep)

	s := strings.ReplaceAll(head, kindSep, fieldSep)
	s = strings.ReplaceAll(s, paramSep, fieldSep)
	s = strings.ReplaceAll(s, windowSep, fieldSep)
	parts := strings.Split(s, fieldSep)

	last := parts[len(parts)-1]
	digits, ok := strings.CutPrefix(last, windowPrefix)
	if !ok {
		return FTS{}, fmt.Errorf("%w: no window length in %q", ErrParse, name)
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return FTS{}, fmt.Errorf("%w: bad window length %q in %q", ErrParse, digits, name)
	}

	parts = parts[:len(parts)-1]
	if len(parts) < 2 {
		return FTS{}, fmt.Errorf("%w: %q has no calculator", ErrParse, name)
	}
	if slices.Contains(parts, "") {
		return FTS{}, fmt.Errorf("%w: empty field in %q", ErrParse, name)
	}
	return FTS{Parts: parts, WindowLength: n}, nil
}

// DecodeFD splits name into the feature time series column, the feature
// dynamic calculator and its encoded parameters.
func DecodeFD(name string) ([]string, error) {
	parts := strings.Split(name, fieldSep)
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: %q has no calculator", ErrParse, name)
	}
	return parts, nil
}

// Name is a fully decoded feature dynamics column name.
type Name struct {
	Kind         string
	FTSName      string
	FTSParams    []string
	WindowLength int
	FDName       string
	FDParams     []string
}

// Parse decodes a final feature dynamics column name.
func Parse(s string) (Name, error) {
	fts, err := DecodeFTS(s)
	if err != nil {
		return Name{}, err
	}
	fd, err := DecodeFD(s)
	if err != nil {
		return Name{}, err
	}
	return Name{
		Kind:         fts.Kind(),
		FTSName:      fts.Calculator(),
		FTSParams:    fts.Params(),
		WindowLength: fts.WindowLength,
		FDName:       fd[1],
		FDParams:     fd[2:],
	}, nil
}

// FTS returns the feature time series part of n.
func (n Name) FTS() FTS {
	parts := make([]string, 0, 2+len(n.FTSParams))
	parts = append(parts, n.Kind, n.FTSName)
	parts = append(parts, n.FTSParams...)
	return FTS{Parts: parts, WindowLength: n.WindowLength}
}

func (n Name) String() string {
	return RawName(n.FTS().String(), n.FDName, n.FDParams)
}

// Names converts an untyped list of feature names.
func Names(values []any) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, &TypeError{Value: v}
		}
		out[i] = s
	}
	return out, nil
}
