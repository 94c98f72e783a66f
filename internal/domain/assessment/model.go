package assessment

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// Criterion status constants.
const (
	StatusPass    = "pass"
	StatusFail    = "fail"
	StatusPending = "pending"
)

// Criterion keys for the Basic Radio Operator assessment, in the order they
// appear on the printed results sheet.
const (
	CritFirstClassLogbook      = "firstClassLogbookCompleted"
	CritCyberSecurityVideo     = "basicCyberSecurityVideoWatched"
	CritFullCallsigns          = "correctUseOfBothFullCallsigns"
	CritAuthenticateRequested  = "authenticateRequested"
	CritAuthenticateAnswered   = "authenticateAnsweredCorrectly"
	CritRadioCheckRequested    = "radioCheckRequested"
	CritRadioCheckAnswered     = "radioCheckAnsweredCorrectly"
	CritTacticalMessage        = "tacticalMessageFullyAnswered"
	CritISayAgain              = "iSayAgainUsedCorrectly"
	CritSayAgain               = "sayAgainUsed"
	CritProwordKnowledge       = "prowordKnowledgeCompletedOK"
	CritSecurityKnowledge      = "securityKnowledgeCompletedOK"
	CritOperatingAndConfidence = "generalOperatingAndConfidence"
)

// CriterionKeys lists all thirteen criteria in sheet order.
// INVARIANT: Fixed length 13; order matches the printed checkbox columns.
var CriterionKeys = []string{
	CritFirstClassLogbook,
	CritCyberSecurityVideo,
	CritFullCallsigns,
	CritAuthenticateRequested,
	CritAuthenticateAnswered,
	CritRadioCheckRequested,
	CritRadioCheckAnswered,
	CritTacticalMessage,
	CritISayAgain,
	CritSayAgain,
	CritProwordKnowledge,
	CritSecurityKnowledge,
	CritOperatingAndConfidence,
}

// Domain errors.
var (
	ErrEmptyCohortName    = errors.New("cohort name cannot be empty")
	ErrEmptyCohortType    = errors.New("cohort type cannot be empty")
	ErrEmptyInstructor    = errors.New("instructor name and squadron are required")
	ErrEmptyAssessor      = errors.New("assessor name and squadron are required")
	ErrEmptyCohortID      = errors.New("cohort ID cannot be empty")
	ErrEmptyCadetID       = errors.New("cadet ID cannot be empty")
	ErrUnknownCriterion   = errors.New("unknown assessment criterion")
	ErrInvalidCritStatus  = errors.New("criterion status must be one of: pass, fail, pending")
	ErrIncompleteCriteria = errors.New("assessment must carry a status for every criterion")
)

// Cohort groups the cadets undergoing one assessment round. The instructor
// and assessor identity fields appear only on the printed results sheet.
type Cohort struct {
	ID             string
	Name           string
	Type           string // e.g. "BRO"
	InstructorName string
	InstructorSqn  string
	AssessorName   string
	AssessorSqn    string
	CreatedAt      time.Time
}

// Validate checks the cohort's invariants.
// PRE: Cohort struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Cohort) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCohortName
	}
	if strings.TrimSpace(c.Type) == "" {
		return ErrEmptyCohortType
	}
	if strings.TrimSpace(c.InstructorName) == "" || strings.TrimSpace(c.InstructorSqn) == "" {
		return ErrEmptyInstructor
	}
	if strings.TrimSpace(c.AssessorName) == "" || strings.TrimSpace(c.AssessorSqn) == "" {
		return ErrEmptyAssessor
	}
	return nil
}

// RadioAssessment tracks one cadet's progress through the thirteen criteria
// within one cohort.
//
// INVARIANT: Criteria holds exactly the keys in CriterionKeys.
// INVARIANT: PassFail is true iff every criterion is StatusPass. It is
// recomputed by SetCriterion and never accepted from a client.
// INVARIANT: At most one RadioAssessment exists per (CohortID, CadetID)
// (enforced by the store).
type RadioAssessment struct {
	ID       string
	CohortID string
	CadetID  string
	Criteria map[string]string
	PassFail bool
}

// New creates a zero-state assessment: every criterion pending, PassFail false.
// PRE: cohortID and cadetID are non-empty
func New(cohortID, cadetID string) RadioAssessment {
	criteria := make(map[string]string, len(CriterionKeys))
	for _, key := range CriterionKeys {
		criteria[key] = StatusPending
	}
	return RadioAssessment{
		CohortID: cohortID,
		CadetID:  cadetID,
		Criteria: criteria,
		PassFail: false,
	}
}

// Validate checks the assessment's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (a *RadioAssessment) Validate() error {
	if a.CohortID == "" {
		return ErrEmptyCohortID
	}
	if a.CadetID == "" {
		return ErrEmptyCadetID
	}
	if len(a.Criteria) != len(CriterionKeys) {
		return ErrIncompleteCriteria
	}
	for _, key := range CriterionKeys {
		status, ok := a.Criteria[key]
		if !ok {
			return ErrIncompleteCriteria
		}
		if !isValidCritStatus(status) {
			return ErrInvalidCritStatus
		}
	}
	return nil
}

// SetCriterion updates exactly one criterion and recomputes PassFail from the
// full criterion set in memory, so the aggregate is never observed stale and
// the write can be persisted as a single store call.
// PRE: key is one of CriterionKeys, status is a valid status constant
// POST: Criteria[key] and PassFail updated, or error and no mutation
func (a *RadioAssessment) SetCriterion(key, status string) error {
	if _, ok := a.Criteria[key]; !ok {
		return ErrUnknownCriterion
	}
	if !isValidCritStatus(status) {
		return ErrInvalidCritStatus
	}
	a.Criteria[key] = status
	a.PassFail = a.computePassFail()
	return nil
}

// computePassFail derives the aggregate: true iff all criteria are pass.
func (a *RadioAssessment) computePassFail() bool {
	for _, key := range CriterionKeys {
		if a.Criteria[key] != StatusPass {
			return false
		}
	}
	return true
}

// RowsPerPage is the fixed capacity of one results-sheet table page.
const RowsPerPage = 10

// Passed filters to assessments with PassFail true, preserving order. Only
// these appear on the PDF export; the award form certifies passers only.
// INVARIANT: input slice is not mutated
func Passed(list []RadioAssessment) []RadioAssessment {
	var out []RadioAssessment
	for _, a := range list {
		if a.PassFail {
			out = append(out, a)
		}
	}
	return out
}

// PageFor maps a 0-indexed row to its page and row-within-page.
// PRE: i >= 0
func PageFor(i int) (page, row int) {
	return i / RowsPerPage, i % RowsPerPage
}

// PageCount returns the number of pages needed for n rows at RowsPerPage.
// PRE: n >= 0
func PageCount(n int) int {
	if n == 0 {
		return 0
	}
	return (n + RowsPerPage - 1) / RowsPerPage
}

// SplitPages chunks assessments into RowsPerPage-sized pages for the print
// view, which intentionally includes non-passers for administrative review.
// INVARIANT: input order is preserved across pages
func SplitPages(list []RadioAssessment) [][]RadioAssessment {
	var pages [][]RadioAssessment
	for start := 0; start < len(list); start += RowsPerPage {
		end := start + RowsPerPage
		if end > len(list) {
			end = len(list)
		}
		pages = append(pages, list[start:end])
	}
	return pages
}

// SortByCadetName orders assessments by the supplied cadet full names,
// ascending, falling back to cadet ID for a stable, deterministic order.
// PRE: nameOf returns the cadet full name for an assessment
func SortByCadetName(list []RadioAssessment, nameOf func(RadioAssessment) string) {
	sort.SliceStable(list, func(i, j int) bool {
		ni, nj := nameOf(list[i]), nameOf(list[j])
		if ni != nj {
			return ni < nj
		}
		return list[i].CadetID < list[j].CadetID
	})
}

func isValidCritStatus(s string) bool {
	return s == StatusPass || s == StatusFail || s == StatusPending
}
