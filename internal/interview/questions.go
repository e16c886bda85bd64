// Package interview turns flagged artifacts into the questions a departing
// employee is asked. Generation is deterministic: exactly one question per
// artifact, fixed template per artifact type, no randomness.
package interview

import (
	"fmt"

	"github.com/offboardhq/offboard/internal/model"
)

// Generate builds one question per artifact, each anchored on the
// artifact's reference so answers stay traceable. Empty input yields an
// empty slice, never a generic question.
func Generate(artifacts []model.CodeArtifact) []model.Question {
	questions := make([]model.Question, 0, len(artifacts))
	for _, artifact := range artifacts {
		questions = append(questions, model.Question{
			ArtifactRef:  artifact.Ref(),
			ArtifactType: artifact.Type,
			Text:         questionText(artifact),
		})
	}
	return questions
}

func questionText(artifact model.CodeArtifact) string {
	subject := artifact.Ref()
	if artifact.Title != "" {
		subject = fmt.Sprintf("%s (%s)", subject, artifact.Title)
	}

	switch artifact.Type {
	case model.ArtifactTypePR:
		return fmt.Sprintf("Walk me through %s. Which design decisions or tradeoffs does it carry that are not written down anywhere?", subject)
	case model.ArtifactTypeCommit:
		return fmt.Sprintf("Commit %s looks significant. What was the context behind it, and what would break if someone touched that area without knowing it?", subject)
	default:
		return fmt.Sprintf("%s saw heavy activity but little documentation. What did resolving it actually involve, and which hidden dependencies should the team know about?", subject)
	}
}
