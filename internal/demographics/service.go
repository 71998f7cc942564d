package demographics

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/bizmapper/internal/model"
)

// Lookup is a resolved demographic record with its provenance.
type Lookup struct {
	Record      model.DemographicRecord
	Source      model.DataSource
	SourceLabel string
}

// Service answers demographic queries from the live cache when available and
// the reference table otherwise.
type Service struct {
	ref  *Reference
	live *LiveCache
}

// NewService creates a Service. live may be nil for reference-only operation.
func NewService(ref *Reference, live *LiveCache) *Service {
	return &Service{ref: ref, live: live}
}

// Reference returns the embedded table.
func (s *Service) Reference() *Reference {
	return s.ref
}

// Get returns demographics for an area. A failed live fetch is not an error:
// the reference record is used instead. It reports false only when neither
// source knows the area.
func (s *Service) Get(ctx context.Context, area string) (Lookup, bool) {
	name := Normalize(area)

	if s.live != nil {
		snap, err := s.live.Ensure(ctx)
		if err != nil {
			zap.L().Debug("live demographics unavailable, using reference",
				zap.String("area", name),
				zap.Error(err),
			)
		} else if rec, ok := snap.Records[name]; ok {
			return Lookup{Record: rec, Source: model.DataSourceLive, SourceLabel: snap.SourceLabel}, true
		}
	}

	rec, ok := s.ref.Lookup(name)
	if !ok {
		return Lookup{}, false
	}
	return Lookup{Record: rec, Source: model.DataSourceReference, SourceLabel: model.ReferenceSourceLabel}, true
}

// Names lists the known areas: reference names in table order, then any
// extra names learned from a completed live fetch. It never triggers a fetch.
func (s *Service) Names() []string {
	names := s.ref.Names()
	if s.live != nil {
		if snap := s.live.Loaded(); snap != nil {
			names = append(names, snap.Extra...)
		}
	}
	return names
}

// Known reports whether name is exactly one of Names.
func (s *Service) Known(name string) bool {
	n := Normalize(name)
	for _, k := range s.Names() {
		if k == n {
			return true
		}
	}
	return false
}

// FuzzyMatch resolves raw against Names.
func (s *Service) FuzzyMatch(raw string) (string, bool) {
	return FuzzyMatch(s.Names(), raw)
}
