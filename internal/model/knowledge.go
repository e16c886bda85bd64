package model

import "time"

// KnowledgeArtifact is the distilled output of the archive phase: what
// the organization keeps after the employee leaves. Confidence reflects
// how much of it came from interview answers versus automated analysis.
type KnowledgeArtifact struct {
	ID              string    `json:"id"`
	EmployeeID      string    `json:"employee_id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	Tags            []string  `json:"tags"`
	Confidence      float64   `json:"confidence"`
	ExtractedAt     time.Time `json:"extracted_at"`
	RelatedTickets  []string  `json:"related_tickets"`
	RelatedPRs      []string  `json:"related_prs"`
	RelatedCommits  []string  `json:"related_commits"`
	SourceArtifacts []string  `json:"source_artifacts"`
}

// ArchivePage is the wiki collaborator's record of a stored artifact.
type ArchivePage struct {
	PageID          string   `json:"page_id"`
	PageURL         string   `json:"page_url"`
	LinkedArtifacts []string `json:"linked_artifacts"`
}
