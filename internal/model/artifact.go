package model

import (
	"fmt"
	"time"
)

type ArtifactType string

const (
	ArtifactTypePR     ArtifactType = "PR"
	ArtifactTypeCommit ArtifactType = "COMMIT"
	ArtifactTypeTicket ArtifactType = "JIRA_TICKET"
)

type DocumentationLevel string

const (
	DocumentationNone          DocumentationLevel = "NONE"
	DocumentationMinimal       DocumentationLevel = "MINIMAL"
	DocumentationAdequate      DocumentationLevel = "ADEQUATE"
	DocumentationComprehensive DocumentationLevel = "COMPREHENSIVE"
)

// CodeArtifact is the normalized unit of engineering work the interview
// pipeline reasons about. Type discriminates the union; ID holds the PR
// number, commit hash or ticket key depending on Type.
type CodeArtifact struct {
	Type                 ArtifactType       `json:"type"`
	ID                   string             `json:"id"`
	Title                string             `json:"title"`
	Author               string             `json:"author"`
	Timestamp            time.Time          `json:"timestamp"`
	Documentation        DocumentationLevel `json:"documentation"`
	ComplexityIndicators []string           `json:"complexity_indicators,omitempty"`
}

// Ref renders the human-readable reference used in reports, questions and
// archive cross-links: "PR #402", "a1b2c3d4", "PROJ-123".
func (a CodeArtifact) Ref() string {
	switch a.Type {
	case ArtifactTypePR:
		return fmt.Sprintf("PR #%s", a.ID)
	case ArtifactTypeCommit:
		return ShortHash(a.ID)
	default:
		return a.ID
	}
}

// ShortHash returns the first 8 characters of a commit hash, or the whole
// hash when it is shorter.
func ShortHash(hash string) string {
	if len(hash) <= 8 {
		return hash
	}
	return hash[:8]
}

// RawTicket is an issue-tracker record as returned by the collaborator,
// normalized to the fields scoring needs.
type RawTicket struct {
	ID           string    `json:"id"`
	Key          string    `json:"key"`
	Summary      string    `json:"summary"`
	Description  string    `json:"description"`
	CommentCount int       `json:"comment_count"`
	Assignee     string    `json:"assignee"`
	Created      time.Time `json:"created"`
	Updated      time.Time `json:"updated"`
}

// ActivityAt is the timestamp the window re-filter checks. Updated wins
// over Created because ticket churn, not creation, signals activity.
func (t RawTicket) ActivityAt() time.Time {
	if !t.Updated.IsZero() {
		return t.Updated
	}
	return t.Created
}

// RawPullRequest is a merge/pull request record from source control.
// Complexity is an opaque 0-10 score computed by the client from the
// fields below (see ComplexityScore).
type RawPullRequest struct {
	Number         int       `json:"number"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Author         string    `json:"author"`
	LinesChanged   int       `json:"lines_changed"`
	FilesChanged   int       `json:"files_changed"`
	ReviewComments int       `json:"review_comments"`
	Complexity     int       `json:"complexity"`
	Created        time.Time `json:"created"`
	Updated        time.Time `json:"updated"`
}

func (p RawPullRequest) ActivityAt() time.Time {
	if !p.Updated.IsZero() {
		return p.Updated
	}
	return p.Created
}

// RawCommit is a single commit from source control.
type RawCommit struct {
	Hash       string    `json:"hash"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Author     string    `json:"author"`
	LinesTotal int       `json:"lines_total"`
	AuthoredAt time.Time `json:"authored_at"`
}

func (c RawCommit) ActivityAt() time.Time {
	return c.AuthoredAt
}

// ComplexityScore folds lines changed, files changed and review comment
// count into the 0-10 complexity scale. Each input is capped so no single
// dimension saturates the score.
func ComplexityScore(linesChanged, filesChanged, reviewComments int) int {
	score := capInt(linesChanged/100, 4) + capInt(filesChanged/3, 3) + capInt(reviewComments/2, 3)
	if score > 10 {
		return 10
	}
	if score < 0 {
		return 0
	}
	return score
}

func capInt(v, max int) int {
	if v > max {
		return max
	}
	return v
}
