package upstream

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ohler55/ojg/oj"
)

func (d *Discoverer) github(ctx context.Context, repo string) ([]string, error) {
	if strings.Count(repo, "/") != 1 || strings.HasPrefix(repo, "/") || strings.HasSuffix(repo, "/") {
		return nil, fmt.Errorf("github repo must be owner/name, got %q", repo)
	}

	header := http.Header{}
	header.Set("Accept", "application/vnd.github+json")
	header.Set("X-GitHub-Api-Version", "2022-11-28")
	if d.token != "" {
		header.Set("Authorization", "Bearer "+d.token)
	}

	var versions []string
	for page := 1; page <= GitHubMaxPages; page++ {
		url := fmt.Sprintf("%s/repos/%s/releases?per_page=%d&page=%d",
			strings.TrimSuffix(d.githubAPI, "/"), repo, GitHubPageSize, page)
		d.log.Debug().Str("url", url).Msg("listing releases")

		body, err := d.get.Get(ctx, url, header)
		if err != nil {
			return nil, err
		}

		releases, err := parseReleases(body)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", url, err)
		}

		for _, r := range releases {
			if r.prerelease || r.draft || r.tag == "" {
				continue
			}
			versions = append(versions, r.tag)
		}

		if len(releases) < GitHubPageSize {
			break
		}
	}
	return versions, nil
}

type release struct {
	tag        string
	prerelease bool
	draft      bool
}

func parseReleases(body []byte) ([]release, error) {
	doc, err := oj.Parse(body)
	if err != nil {
		return nil, err
	}
	list, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON array of releases")
	}

	releases := make([]release, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		var r release
		r.tag, _ = obj["tag_name"].(string)
		r.prerelease, _ = obj["prerelease"].(bool)
		r.draft, _ = obj["draft"].(bool)
		releases = append(releases, r)
	}
	return releases, nil
}
