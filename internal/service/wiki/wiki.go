package wiki

import (
	"context"

	"github.com/offboardhq/offboard/internal/model"
)

// ArchiveWriter persists knowledge artifacts to the organization's wiki.
type ArchiveWriter interface {
	// CreateArchivePage writes the artifact as a new page and returns
	// where it landed. LinkedArtifacts echoes the artifact's source
	// references so callers can verify archive integrity.
	CreateArchivePage(ctx context.Context, artifact *model.KnowledgeArtifact) (*model.ArchivePage, error)
}
