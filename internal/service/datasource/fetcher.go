package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ougirez/iodmap/internal/domain"
	"github.com/ougirez/iodmap/internal/domain/dto"
	"github.com/ougirez/iodmap/internal/pkg/constants"
)

// Fetcher retrieves one static resource per call. It never retries: a failed fetch is
// reported as ErrDataUnavailable and the caller decides what to show.
type Fetcher struct {
	client *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

func (f *Fetcher) get(ctx context.Context, url string) (body []byte, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: http.NewRequest: %s", constants.ErrDataUnavailable, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %s", constants.ErrDataUnavailable, url, err)
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil && err == nil {
			err = fmt.Errorf("%w: failed to close body: %s", constants.ErrDataUnavailable, closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: get %s: status code %d", constants.ErrDataUnavailable, url, resp.StatusCode)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %s", constants.ErrDataUnavailable, url, err)
	}
	return body, nil
}

// FetchAreas downloads a CSV table and parses it against the identity schema and the
// index columns.
func (f *Fetcher) FetchAreas(
	ctx context.Context,
	url string,
	schema dto.Schema,
	indices []domain.Index,
) ([]domain.AreaRecord, error) {
	body, err := f.get(ctx, url)
	if err != nil {
		return nil, err
	}
	records, err := ParseAreasCSV(body, schema, indices)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", constants.ErrDataUnavailable, url, err)
	}
	return records, nil
}

// FetchBoundaries downloads a GeoJSON FeatureCollection.
func (f *Fetcher) FetchBoundaries(ctx context.Context, url string, schema dto.Schema) ([]domain.BoundaryRecord, error) {
	body, err := f.get(ctx, url)
	if err != nil {
		return nil, err
	}
	records, err := ParseBoundaries(body, schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", constants.ErrDataUnavailable, url, err)
	}
	return records, nil
}
