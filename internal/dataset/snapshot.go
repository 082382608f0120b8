package dataset

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/quartierlabs/rentmap/internal/fetcher"
)

// ErrEmptyDataset reports that the source returned no data rows at all.
var ErrEmptyDataset = eris.New("dataset: no rows in source")

// Snapshot is one immutable view of the fetched dataset. It is created on
// the first successful fetch and replaced only by an explicit Refresh; the
// pipeline never mutates it.
type Snapshot struct {
	Records          []RentRecord
	Skips            SkipCounts
	RentalTypes      []string
	ConstructionEras []string
	Years            []int
	ETag             string
	FetchedAt        time.Time
}

// Empty reports whether the snapshot holds no records.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Records) == 0
}

// HasRentalType reports whether the value was discovered in the dataset.
func (s *Snapshot) HasRentalType(v string) bool {
	return contains(s.RentalTypes, v)
}

// HasConstructionEra reports whether the value was discovered in the dataset.
func (s *Snapshot) HasConstructionEra(v string) bool {
	return contains(s.ConstructionEras, v)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// newSnapshot derives the discovered category sets from parsed records.
func newSnapshot(records []RentRecord, skips SkipCounts, etag string) *Snapshot {
	types := make(map[string]struct{})
	eras := make(map[string]struct{})
	years := make(map[int]struct{})
	for _, r := range records {
		types[r.RentalType] = struct{}{}
		eras[r.ConstructionEra] = struct{}{}
		years[r.Year] = struct{}{}
	}

	snap := &Snapshot{
		Records:          records,
		Skips:            skips,
		RentalTypes:      sortedKeys(types),
		ConstructionEras: sortedKeys(eras),
		ETag:             etag,
		FetchedAt:        time.Now().UTC(),
	}
	for y := range years {
		snap.Years = append(snap.Years, y)
	}
	sort.Ints(snap.Years)
	return snap
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Loader fetches the dataset at most once and hands out the current
// snapshot. Concurrent first loads are coalesced; Refresh revalidates with
// the stored ETag and only replaces the snapshot when the source changed.
type Loader struct {
	fetcher fetcher.Fetcher
	url     string

	group singleflight.Group
	mu    sync.RWMutex
	cur   *Snapshot
}

// NewLoader creates a Loader for the given dataset URL.
func NewLoader(f fetcher.Fetcher, url string) *Loader {
	return &Loader{fetcher: f, url: url}
}

// Current returns the held snapshot without fetching, or nil.
func (l *Loader) Current() *Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cur
}

// Snapshot returns the current snapshot, fetching it on first use.
func (l *Loader) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := l.Current(); snap != nil {
		return snap, nil
	}

	v, err, _ := l.group.Do("load", func() (any, error) {
		if snap := l.Current(); snap != nil {
			return snap, nil
		}
		return l.fetch(ctx, "")
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Refresh revalidates against the source. When the payload is unchanged the
// held snapshot is kept; otherwise it is replaced wholesale.
func (l *Loader) Refresh(ctx context.Context) (*Snapshot, bool, error) {
	cur := l.Current()
	if cur == nil {
		snap, err := l.Snapshot(ctx)
		return snap, true, err
	}

	body, etag, changed, err := l.fetcher.DownloadIfChanged(ctx, l.url, cur.ETag)
	if err != nil {
		return nil, false, eris.Wrap(err, "dataset: refresh")
	}
	if !changed {
		zap.L().Debug("dataset: source unchanged, keeping snapshot", zap.String("etag", etag))
		return cur, false, nil
	}
	defer body.Close() //nolint:errcheck

	records, skips, err := ParseRecords(ctx, body)
	if err != nil {
		return nil, false, err
	}
	snap := newSnapshot(records, skips, etag)

	l.mu.Lock()
	l.cur = snap
	l.mu.Unlock()

	zap.L().Info("dataset: snapshot refreshed",
		zap.Int("records", len(snap.Records)),
		zap.String("etag", etag),
	)
	return snap, true, nil
}

func (l *Loader) fetch(ctx context.Context, etag string) (*Snapshot, error) {
	body, newETag, _, err := l.fetcher.DownloadIfChanged(ctx, l.url, etag)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: fetch")
	}
	defer body.Close() //nolint:errcheck

	records, skips, err := ParseRecords(ctx, body)
	if err != nil {
		return nil, err
	}

	snap := newSnapshot(records, skips, newETag)

	l.mu.Lock()
	l.cur = snap
	l.mu.Unlock()

	zap.L().Info("dataset: snapshot loaded",
		zap.Int("records", len(snap.Records)),
		zap.Int("skipped", skips.Total()),
		zap.Strings("rental_types", snap.RentalTypes),
		zap.Ints("years", snap.Years),
	)
	return snap, nil
}
