// Package synthesizer turns a PageSnapshot into numbered, structured test cases,
// either all at once or in bounded batches that resume from a session cursor.
package synthesizer

import (
	"ai_testgen/domain/entities"
	"ai_testgen/domain/interfaces"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultBatchSize is used when a caller asks for a batch of size <= 0
const DefaultBatchSize = 10

// aggregateCases is the number of page-level cases every snapshot produces:
// page load plus one count check per button, input, link and form category.
const aggregateCases = 5

// Batch is the result of one incremental synthesis call
type Batch struct {
	NewCases        []entities.TestCase      `json:"testCases"`
	Cursor          entities.Cursor          `json:"cursor"`
	ProcessedCounts entities.ProcessedCounts `json:"processedCounts"`
	HasMore         bool                     `json:"hasMoreElements"`
}

type Synthesizer struct {
	policy    interfaces.PriorityPolicy
	logger    *logrus.Logger
	batchSize int
}

// Option configures a Synthesizer
type Option func(*Synthesizer)

// WithBatchSize sets the batch size used for non-positive requests
func WithBatchSize(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// New - creates a synthesizer using policy to assign priorities
func New(policy interfaces.PriorityPolicy, logger *logrus.Logger, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		policy:    policy,
		logger:    logger,
		batchSize: DefaultBatchSize,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Validate - checks the fields every snapshot must carry
func Validate(snapshot *entities.PageSnapshot) error {
	if snapshot == nil {
		return &entities.InvalidSnapshotError{Field: "snapshot", Reason: "is nil"}
	}
	if strings.TrimSpace(snapshot.URL) == "" {
		return &entities.InvalidSnapshotError{Field: "url", Reason: "is required"}
	}
	if strings.TrimSpace(snapshot.Title) == "" {
		return &entities.InvalidSnapshotError{Field: "title", Reason: "is required"}
	}
	if snapshot.IsMobile() {
		return nil
	}
	u, err := url.Parse(snapshot.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &entities.InvalidSnapshotError{Field: "url", Reason: "must be an absolute http(s) URL"}
	}
	return nil
}

// Full - synthesizes every test case for the snapshot in plan order
func (s *Synthesizer) Full(snapshot entities.PageSnapshot) ([]entities.TestCase, error) {
	if err := Validate(&snapshot); err != nil {
		return nil, err
	}
	p := newPlan(&snapshot)
	cases := make([]entities.TestCase, 0, p.total())
	for pos := 0; pos < p.total(); pos++ {
		cases = append(cases, s.build(&snapshot, p.itemAt(pos)))
	}

	s.logger.WithFields(logrus.Fields{
		"url":   snapshot.URL,
		"cases": len(cases),
	}).Info("Synthesized test cases")

	return cases, nil
}

// Incremental - continues synthesis from state.Cursor and returns at most
// batchSize new cases. The state itself is not modified.
func (s *Synthesizer) Incremental(state *entities.SessionState, batchSize int) (Batch, error) {
	if state == nil {
		return Batch{}, &entities.InvalidSnapshotError{Field: "snapshot", Reason: "is nil"}
	}
	snapshot := &state.Snapshot
	if err := Validate(snapshot); err != nil {
		return Batch{}, err
	}
	if batchSize <= 0 {
		batchSize = s.batchSize
	}

	p := newPlan(snapshot)
	start, err := p.position(state.Cursor)
	if err != nil {
		return Batch{}, err
	}
	end := min(start+batchSize, p.total())

	cases := make([]entities.TestCase, 0, end-start)
	for pos := start; pos < end; pos++ {
		cases = append(cases, s.build(snapshot, p.itemAt(pos)))
	}

	batch := Batch{
		NewCases:        cases,
		Cursor:          p.cursorAt(end),
		ProcessedCounts: p.countsAt(end),
		HasMore:         end < p.total(),
	}

	s.logger.WithFields(logrus.Fields{
		"session": state.SessionID,
		"from":    start,
		"to":      end,
		"total":   p.total(),
	}).Debug("Synthesized batch")

	return batch, nil
}

// Total - returns how many cases Full would produce for the snapshot
func Total(snapshot *entities.PageSnapshot) int {
	return newPlan(snapshot).total()
}

// Processed - the counts reached once the whole snapshot is synthesized
func Processed(snapshot *entities.PageSnapshot) entities.ProcessedCounts {
	p := newPlan(snapshot)
	return p.countsAt(p.total())
}

// build - creates the test case for one plan item
func (s *Synthesizer) build(snapshot *entities.PageSnapshot, it item) entities.TestCase {
	switch it.t {
	case entities.ElementPage:
		return s.aggregateCase(snapshot, it.index)
	case entities.ElementButton:
		return s.buttonCase(snapshot, it.index)
	case entities.ElementInput:
		return s.inputCase(snapshot, it.index)
	case entities.ElementLink:
		return s.linkCase(snapshot, it.index)
	case entities.ElementForm:
		return s.formCase(snapshot, it.index)
	case entities.ElementScreen:
		return s.screenCase(snapshot, it.index)
	}
	panic(fmt.Sprintf("synthesizer: unknown plan item %q", it.t))
}

// item is one unit of work: a single case to synthesize
type item struct {
	t     entities.ElementType
	index int
}

type category struct {
	t entities.ElementType
	n int
}

// plan is the fixed processing order over a snapshot. Positions are stable
// for a given snapshot, which is what lets a cursor resume generation.
type plan []category

func newPlan(snapshot *entities.PageSnapshot) plan {
	return plan{
		{entities.ElementPage, aggregateCases},
		{entities.ElementButton, len(snapshot.Buttons)},
		{entities.ElementInput, len(snapshot.Inputs)},
		{entities.ElementLink, len(snapshot.Links)},
		{entities.ElementForm, len(snapshot.Forms)},
		{entities.ElementScreen, len(snapshot.Screens)},
	}
}

func (p plan) total() int {
	n := 0
	for _, c := range p {
		n += c.n
	}
	return n
}

func (p plan) itemAt(pos int) item {
	offset := 0
	for _, c := range p {
		if pos < offset+c.n {
			return item{t: c.t, index: pos - offset}
		}
		offset += c.n
	}
	panic(fmt.Sprintf("synthesizer: position %d out of range", pos))
}

// position - converts a cursor into a plan offset. The zero cursor is the start.
func (p plan) position(cur entities.Cursor) (int, error) {
	if cur.ElementType == "" {
		return 0, nil
	}
	if cur.ElementIndex < 0 {
		return 0, fmt.Errorf("invalid cursor index %d", cur.ElementIndex)
	}
	offset := 0
	for _, c := range p {
		if c.t == cur.ElementType {
			return offset + min(cur.ElementIndex, c.n), nil
		}
		offset += c.n
	}
	return 0, fmt.Errorf("invalid cursor element type %q", cur.ElementType)
}

// cursorAt - the cursor naming the item at pos; past the end it points one
// beyond the last category.
func (p plan) cursorAt(pos int) entities.Cursor {
	offset := 0
	for _, c := range p {
		if pos < offset+c.n {
			return entities.Cursor{ElementType: c.t, ElementIndex: pos - offset}
		}
		offset += c.n
	}
	last := p[len(p)-1]
	return entities.Cursor{ElementType: last.t, ElementIndex: last.n}
}

func (p plan) countsAt(pos int) entities.ProcessedCounts {
	var counts entities.ProcessedCounts
	for i := 0; i < pos; i++ {
		counts.Add(p.itemAt(i).t)
	}
	return counts
}
