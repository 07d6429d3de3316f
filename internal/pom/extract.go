package pom

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/shinji-kodama/mergepom/internal/charset"
	"github.com/shinji-kodama/mergepom/internal/model"
)

const (
	// DefaultPropertiesElement is the root child holding project properties.
	DefaultPropertiesElement = "properties"

	// DefaultVersionElement is the property carrying the tracked version.
	DefaultVersionElement = "commonAppVersion"
)

// Options selects the elements the extractor looks for.
type Options struct {
	// PropertiesElement is the local name of the root's child that holds
	// the properties (namespace prefixes are ignored).
	PropertiesElement string

	// VersionElement is the local name of the property holding the version.
	VersionElement string
}

// DefaultOptions returns the element names used by Maven descriptors.
func DefaultOptions() Options {
	return Options{
		PropertiesElement: DefaultPropertiesElement,
		VersionElement:    DefaultVersionElement,
	}
}

// ErrFileNotFound is returned when the descriptor path does not exist.
var ErrFileNotFound = errors.New("descriptor not found")

// MalformedError reports a descriptor that is not well-formed markup.
type MalformedError struct {
	// Path is the descriptor that failed to parse.
	Path string

	// Err is the underlying decoder error.
	Err error
}

// Error implements the error interface for MalformedError.
func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed descriptor %s: %v", e.Path, e.Err)
}

// Unwrap returns the decoder error.
func (e *MalformedError) Unwrap() error {
	return e.Err
}

// MissingElementError reports a well-formed descriptor that lacks the
// properties section, the version element, or the version text.
type MissingElementError struct {
	// Path is the descriptor that was inspected.
	Path string

	// Element names what was missing, as a slash-separated path.
	Element string
}

// Error implements the error interface for MissingElementError.
func (e *MissingElementError) Error() string {
	return fmt.Sprintf("descriptor %s has no %s", e.Path, e.Element)
}

// ExtractVersion returns the version carried by the descriptor at path.
//
// It never panics. When no version can be extracted it returns
// model.NoVersion together with one of ErrFileNotFound, *MalformedError
// or *MissingElementError, so callers can tell the cases apart in
// diagnostics while treating all of them as "version absent".
func ExtractVersion(path string, opts Options) (model.Version, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.NoVersion, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return model.NoVersion, fmt.Errorf("failed to open descriptor: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseVersion(f, path, opts)
}

// ParseVersion extracts the version from an already opened descriptor.
// name is only used in error messages.
//
// Only direct children of the root element named opts.PropertiesElement
// are searched, and inside them only direct children named
// opts.VersionElement. When several match, the last one wins. The version
// is the element's leading character data, untrimmed, so it can later be
// used verbatim as a replacement key.
func ParseVersion(r io.Reader, name string, opts Options) (model.Version, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.CharsetReader

	var (
		depth        int
		sawRoot      bool
		sawProps     bool
		sawElement   bool
		inProps      bool
		inVersion    bool
		leadingEnded bool
		text         strings.Builder
		version      string
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.NoVersion, &MalformedError{Path: name, Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch {
			case depth == 1:
				sawRoot = true
			case depth == 2:
				inProps = t.Name.Local == opts.PropertiesElement
				sawProps = sawProps || inProps
			case depth == 3 && inProps && t.Name.Local == opts.VersionElement:
				inVersion = true
				leadingEnded = false
				text.Reset()
			default:
				// Any nested element ends the version's leading text.
				leadingEnded = true
			}

		case xml.CharData:
			if inVersion && depth == 3 && !leadingEnded {
				text.Write(t)
			}

		case xml.EndElement:
			if inVersion && depth == 3 {
				inVersion = false
				sawElement = true
				version = text.String()
			}
			if depth == 2 {
				inProps = false
			}
			depth--

		case xml.Comment, xml.ProcInst:
			if inVersion && depth == 3 {
				leadingEnded = true
			}
		}
	}

	if !sawRoot {
		return model.NoVersion, &MalformedError{Path: name, Err: errors.New("no root element")}
	}
	if !sawProps {
		return model.NoVersion, &MissingElementError{Path: name, Element: opts.PropertiesElement}
	}
	if !sawElement {
		return model.NoVersion, &MissingElementError{
			Path:    name,
			Element: opts.PropertiesElement + "/" + opts.VersionElement,
		}
	}
	if version == "" {
		return model.NoVersion, &MissingElementError{
			Path:    name,
			Element: opts.PropertiesElement + "/" + opts.VersionElement + " text",
		}
	}
	return model.Version(version), nil
}

// Lookup is ExtractVersion for callers that only care whether a version
// exists. Failures are logged and reported as model.NoVersion: a missing
// element is expected for descriptors that do not track the property and
// is logged at debug level, anything else is a parse problem and is
// logged as a warning.
func Lookup(path string, opts Options, logger *zap.Logger) model.Version {
	version, err := ExtractVersion(path, opts)
	if err == nil {
		return version
	}

	var missing *MissingElementError
	if errors.As(err, &missing) {
		logger.Debug("descriptor carries no version", zap.String("path", path), zap.Error(err))
	} else {
		logger.Warn("error while parsing pom.xml", zap.String("path", path), zap.Error(err))
	}
	return model.NoVersion
}
