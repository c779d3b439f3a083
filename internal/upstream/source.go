// Package upstream discovers the versions an application publishes.
//
// Two strategies exist: the GitHub releases API and an arbitrary JSON
// document queried with a JSONPath expression. A Query names one of them
// and the Discoverer dispatches on its Kind.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
)

var (
	// ErrInvalidQuery is returned for a malformed JSONPath expression.
	ErrInvalidQuery = errors.New("invalid jsonpath query")

	// ErrUnknownSource is returned for a SourceKind outside the known set.
	ErrUnknownSource = errors.New("unknown version source")
)

const (
	// GitHubAPI is the default GitHub REST endpoint.
	GitHubAPI = "https://api.github.com"

	// GitHubPageSize is the number of releases requested per page.
	GitHubPageSize = 100

	// GitHubMaxPages bounds pagination.
	GitHubMaxPages = 10

	// EnvGitHubToken names the variable read for an API token.
	EnvGitHubToken = "GITHUB_TOKEN"
)

// SourceKind is the closed set of discovery strategies.
type SourceKind int

const (
	GitHub SourceKind = iota
	JSONPath
)

func (k SourceKind) String() string {
	switch k {
	case GitHub:
		return "github"
	case JSONPath:
		return "jsonpath"
	}
	return fmt.Sprintf("SourceKind(%d)", int(k))
}

// Query describes one discovery request.
type Query struct {
	Kind  SourceKind
	Repo  string // GitHub: "owner/name"
	URL   string // JSONPath: document location
	Path  string // JSONPath: expression, e.g. "$[*].version"
	Steps []Step
}

// Getter fetches a URL and returns its body. *fetch.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, url string, header http.Header) ([]byte, error)
}

// Discoverer runs queries against upstream services.
type Discoverer struct {
	get       Getter
	githubAPI string
	token     string
	log       zerolog.Logger
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithGitHubAPI overrides the GitHub endpoint.
func WithGitHubAPI(base string) Option {
	return func(d *Discoverer) { d.githubAPI = base }
}

// WithGitHubToken sets the token sent to GitHub. By default it is read
// from GITHUB_TOKEN.
func WithGitHubToken(token string) Option {
	return func(d *Discoverer) { d.token = token }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Discoverer) { d.log = l }
}

// NewDiscoverer returns a Discoverer that fetches through get.
func NewDiscoverer(get Getter, opts ...Option) *Discoverer {
	d := &Discoverer{
		get:       get,
		githubAPI: GitHubAPI,
		token:     os.Getenv(EnvGitHubToken),
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover runs q and returns the version strings after q.Steps.
func (d *Discoverer) Discover(ctx context.Context, q Query) ([]string, error) {
	var (
		raw []string
		err error
	)
	switch q.Kind {
	case GitHub:
		raw, err = d.github(ctx, q.Repo)
	case JSONPath:
		raw, err = d.jsonPath(ctx, q.URL, q.Path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, q.Kind)
	}
	if err != nil {
		return nil, err
	}

	out, err := ApplySteps(raw, q.Steps)
	if err != nil {
		return nil, err
	}
	d.log.Debug().Str("source", q.Kind.String()).Int("count", len(out)).Msg("discovered versions")
	return out, nil
}
