// Package links builds and resolves the ?id=<entryId> links used to open an
// entry directly.
package links

import (
	"errors"
	"net/url"
	"strings"

	models "io.winapps.depttimeline/internal/models/entry"
)

// Param is the query parameter carrying the entry id
const Param = "id"

var ErrNoEntryID = errors.New("links: entry id is empty")

// ShareURL returns <origin>?id=<entryId>
func ShareURL(origin, id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", ErrNoEntryID
	}
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(Param, id)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// DeepLink is the outcome of opening a URL that may carry an entry id
type DeepLink struct {
	// Entry is set when the id matched a loaded entry
	Entry *models.Entry
	// CleanURL is the input with the id parameter removed
	CleanURL string
}

// ResolveDeepLink looks up the entry named by rawURL's id parameter. The
// parameter is stripped from CleanURL whether or not an entry matched.
func ResolveDeepLink(entries []models.Entry, rawURL string) (DeepLink, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return DeepLink{}, err
	}
	q := u.Query()
	id := q.Get(Param)
	if !q.Has(Param) {
		return DeepLink{CleanURL: rawURL}, nil
	}
	q.Del(Param)
	u.RawQuery = q.Encode()
	link := DeepLink{CleanURL: u.String()}

	for i := range entries {
		if id != "" && entries[i].ID == id {
			e := entries[i]
			link.Entry = &e
			break
		}
	}
	return link, nil
}
