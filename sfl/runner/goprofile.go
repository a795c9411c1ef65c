package runner

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/tools/cover"

	"github.com/example/sfl-lite/sfl/domain"
)

// lineHits records whether a source line was part of an executed and/or a
// non-executed block.
type lineHits struct {
	hit  bool
	miss bool
}

func (h lineHits) status() domain.RawStatus {
	switch {
	case h.hit && h.miss:
		return domain.RawPartlyCovered
	case h.hit:
		return domain.RawFullyCovered
	default:
		return domain.RawNotCovered
	}
}

// ReadProfile parses a Go coverage profile into a line snapshot.
func ReadProfile(r io.Reader, trimPrefix string) (*domain.Snapshot, error) {
	profiles, err := cover.ParseProfilesFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCoverageUnavailable, err)
	}
	return SnapshotFromProfiles(profiles, trimPrefix), nil
}

// ReadProfileFile parses the Go coverage profile at path.
func ReadProfileFile(path, trimPrefix string) (*domain.Snapshot, error) {
	profiles, err := cover.ParseProfiles(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCoverageUnavailable, err)
	}
	return SnapshotFromProfiles(profiles, trimPrefix), nil
}

// SnapshotFromProfiles converts coverage blocks into line observations.
// A line is fully covered when every block touching it executed, partly
// covered when only some did. Files without any executed block are skipped.
func SnapshotFromProfiles(profiles []*cover.Profile, trimPrefix string) *domain.Snapshot {
	snapshot := &domain.Snapshot{}

	for _, p := range profiles {
		lines := make(map[int]lineHits)
		executed := false
		for _, b := range p.Blocks {
			if b.NumStmt == 0 {
				continue
			}
			hit := b.Count > 0
			executed = executed || hit
			for line := b.StartLine; line <= b.EndLine; line++ {
				h := lines[line]
				if hit {
					h.hit = true
				} else {
					h.miss = true
				}
				lines[line] = h
			}
		}
		if !executed {
			continue
		}

		className := strings.TrimPrefix(p.FileName, trimPrefix)
		className = strings.TrimPrefix(className, "/")

		numbers := make([]int, 0, len(lines))
		for line := range lines {
			numbers = append(numbers, line)
		}
		sort.Ints(numbers)

		for _, line := range numbers {
			snapshot.Observations = append(snapshot.Observations, domain.Observation{
				Element: domain.LineElement(className, line),
				Status:  lines[line].status(),
			})
		}
	}
	return snapshot
}
