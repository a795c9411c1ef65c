package runner

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/example/sfl-lite/sfl/domain"
)

// Record is one line of a replay file: a test outcome and the coverage the
// test produced.
type Record struct {
	Test         string              `json:"test"`
	Failed       bool                `json:"failed"`
	Duration     time.Duration       `json:"duration_ns,omitempty"`
	Observations []ObservationRecord `json:"observations"`
}

// ObservationRecord is the serialized form of a domain.Observation.
type ObservationRecord struct {
	Kind   string      `json:"kind"`
	Class  string      `json:"class"`
	Line   int         `json:"line,omitempty"`
	Method string      `json:"method,omitempty"`
	Dua    int         `json:"dua,omitempty"`
	Def    int         `json:"def,omitempty"`
	Use    int         `json:"use,omitempty"`
	Target *int        `json:"target,omitempty"`
	Var    string      `json:"var,omitempty"`
	Status StatusField `json:"status"`
}

// StatusField accepts a raw status as either its name or its numeric code.
type StatusField domain.RawStatus

// UnmarshalJSON implements json.Unmarshaler.
func (s *StatusField) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		var code int
		if err := json.Unmarshal(data, &code); err != nil {
			return fmt.Errorf("%w: status must be a name or code", domain.ErrInvalidArgument)
		}
		text = strconv.Itoa(code)
	}
	raw, err := domain.ParseRawStatus(text)
	if err != nil {
		return err
	}
	*s = StatusField(raw)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s StatusField) MarshalJSON() ([]byte, error) {
	return json.Marshal(domain.RawStatus(s).String())
}

// ToObservation converts the record into a domain observation.
func (o ObservationRecord) ToObservation() (domain.Observation, error) {
	kind, err := domain.ParseRequirementKind(o.Kind)
	if err != nil {
		return domain.Observation{}, err
	}

	var element domain.Element
	switch kind {
	case domain.KindLine:
		element = domain.LineElement(o.Class, o.Line)
	case domain.KindDefUse:
		element = domain.DefUseElement(o.Class, o.Method, o.Dua)
		element.Def = o.Def
		element.Use = o.Use
		element.Var = o.Var
		if o.Target != nil {
			element.Target = *o.Target
		}
	}
	if err := element.Validate(); err != nil {
		return domain.Observation{}, err
	}
	return domain.Observation{Element: element, Status: domain.RawStatus(o.Status)}, nil
}

// ObservationRecordOf converts a domain observation into its serialized form.
func ObservationRecordOf(obs domain.Observation) ObservationRecord {
	e := obs.Element
	rec := ObservationRecord{
		Kind:   e.Kind.String(),
		Class:  e.ClassName,
		Status: StatusField(obs.Status),
	}
	switch e.Kind {
	case domain.KindLine:
		rec.Line = e.Line
	case domain.KindDefUse:
		target := e.Target
		rec.Method = e.MethodSignature
		rec.Dua = e.DuaID
		rec.Def = e.Def
		rec.Use = e.Use
		rec.Target = &target
		rec.Var = e.Var
	}
	return rec
}

// Snapshot converts all observations of the record.
func (r *Record) Snapshot() (*domain.Snapshot, error) {
	snapshot := &domain.Snapshot{Observations: make([]domain.Observation, 0, len(r.Observations))}
	for i, o := range r.Observations {
		obs, err := o.ToObservation()
		if err != nil {
			return nil, fmt.Errorf("test %s observation %d: %w", r.Test, i, err)
		}
		snapshot.Observations = append(snapshot.Observations, obs)
	}
	return snapshot, nil
}

// ReadRecords decodes a JSON-lines replay stream. Blank lines are skipped.
func ReadRecords(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrInvalidArgument, lineNo, err)
		}
		if rec.Test == "" {
			return nil, fmt.Errorf("%w: line %d: record without test name", domain.ErrInvalidArgument, lineNo)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read replay stream: %w", err)
	}
	return records, nil
}

// ReplaySource serves recorded tests as a Source, in file order.
type ReplaySource struct {
	records []Record
}

// NewReplaySource creates a source over decoded records.
func NewReplaySource(records []Record) *ReplaySource {
	return &ReplaySource{records: records}
}

// OpenReplayFile reads a replay file into a ReplaySource.
func OpenReplayFile(path string) (*ReplaySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay file: %w", err)
	}
	defer f.Close()

	records, err := ReadRecords(f)
	if err != nil {
		return nil, err
	}
	return NewReplaySource(records), nil
}

// List implements TestExecutor.
func (s *ReplaySource) List(ctx context.Context) ([]TestCase, error) {
	cases := make([]TestCase, len(s.records))
	for i, r := range s.records {
		cases[i] = TestCase{Name: r.Test, Index: i}
	}
	return cases, nil
}

// Run implements TestExecutor.
func (s *ReplaySource) Run(ctx context.Context, tc TestCase) (*domain.TestResult, error) {
	rec, err := s.record(tc)
	if err != nil {
		return nil, err
	}
	return &domain.TestResult{
		Name:     tc.ID(),
		Outcome:  domain.OutcomeOf(rec.Failed),
		Duration: rec.Duration,
	}, nil
}

// Read implements CoverageReader.
func (s *ReplaySource) Read(ctx context.Context, tc TestCase) (*domain.Snapshot, error) {
	rec, err := s.record(tc)
	if err != nil {
		return nil, err
	}
	return rec.Snapshot()
}

func (s *ReplaySource) record(tc TestCase) (*Record, error) {
	if tc.Index < 0 || tc.Index >= len(s.records) || s.records[tc.Index].Test != tc.Name {
		return nil, fmt.Errorf("%w: replayed test %s", domain.ErrNotFound, tc.Name)
	}
	return &s.records[tc.Index], nil
}

// Recorder writes replay records as JSON lines. It is safe for concurrent use.
type Recorder struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewRecorder creates a recorder writing to w.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{enc: json.NewEncoder(w)}
}

// Record appends one test to the stream.
func (r *Recorder) Record(result *domain.TestResult, snapshot *domain.Snapshot) error {
	rec := Record{
		Test:     result.Name,
		Failed:   result.Outcome.Failed(),
		Duration: result.Duration,
	}
	if snapshot != nil {
		rec.Observations = make([]ObservationRecord, 0, len(snapshot.Observations))
		for _, obs := range snapshot.Observations {
			rec.Observations = append(rec.Observations, ObservationRecordOf(obs))
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enc.Encode(&rec); err != nil {
		return fmt.Errorf("failed to write replay record: %w", err)
	}
	return nil
}
