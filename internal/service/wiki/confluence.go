package wiki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/offboardhq/offboard/common"
	"github.com/offboardhq/offboard/core/config"
	"github.com/offboardhq/offboard/internal/model"
	"github.com/offboardhq/offboard/internal/service"
)

type confluenceArchiveWriter struct {
	baseURL  string
	username string
	apiToken string
	spaceKey string
	client   *http.Client
}

func NewConfluenceArchiveWriter(cfg config.ConfluenceConfig) ArchiveWriter {
	return &confluenceArchiveWriter{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		username: cfg.Username,
		apiToken: cfg.APIToken,
		spaceKey: cfg.SpaceKey,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

var _ ArchiveWriter = &confluenceArchiveWriter{}

type confluenceCreateRequest struct {
	Type     string              `json:"type"`
	Title    string              `json:"title"`
	Space    confluenceSpace     `json:"space"`
	Body     confluencePageBody  `json:"body"`
	Metadata *confluenceMetadata `json:"metadata,omitempty"`
}

type confluenceSpace struct {
	Key string `json:"key"`
}

type confluenceMetadata struct {
	Labels []confluenceLabel `json:"labels"`
}

type confluenceLabel struct {
	Prefix string `json:"prefix"`
	Name   string `json:"name"`
}

type confluencePageBody struct {
	Storage confluenceStorage `json:"storage"`
}

type confluenceStorage struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

type confluenceCreateResponse struct {
	ID    string `json:"id"`
	Links struct {
		WebUI string `json:"webui"`
		Base  string `json:"base"`
	} `json:"_links"`
}

func (w *confluenceArchiveWriter) CreateArchivePage(ctx context.Context, artifact *model.KnowledgeArtifact) (*model.ArchivePage, error) {
	payload := confluenceCreateRequest{
		Type:  "page",
		Title: artifact.Title,
		Space: confluenceSpace{Key: w.spaceKey},
		Body: confluencePageBody{
			Storage: confluenceStorage{
				Value:          toStorageFormat(artifact),
				Representation: "storage",
			},
		},
		Metadata: pageMetadata(artifact),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding confluence page: %w", err)
	}

	endpoint := w.baseURL + "/rest/api/content"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating confluence request: %w", err)
	}
	req.SetBasicAuth(w.username, w.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing confluence request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, service.NewPermissionError("confluence.create_page", "confluence space "+w.spaceKey,
			fmt.Errorf("confluence returned status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("confluence create page returned status %d: %s", resp.StatusCode, respBody)
	}

	var created confluenceCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("decoding confluence response: %w", err)
	}

	return &model.ArchivePage{
		PageID:          created.ID,
		PageURL:         created.Links.Base + created.Links.WebUI,
		LinkedArtifacts: append([]string(nil), artifact.SourceArtifacts...),
	}, nil
}

// pageMetadata turns artifact tags into Confluence labels. Labels reject
// spaces and punctuation, so tags are slugified; tags that slug down to
// nothing are skipped.
func pageMetadata(artifact *model.KnowledgeArtifact) *confluenceMetadata {
	labels := []confluenceLabel{{Prefix: "global", Name: "offboarding"}}
	for _, tag := range artifact.Tags {
		name, err := common.Slugify(tag, "")
		if err != nil {
			continue
		}
		labels = append(labels, confluenceLabel{Prefix: "global", Name: name})
	}
	return &confluenceMetadata{Labels: labels}
}

// toStorageFormat renders the artifact as Confluence storage XHTML. The
// artifact content is plain text with blank-line paragraph breaks; every
// text fragment is HTML-escaped.
func toStorageFormat(artifact *model.KnowledgeArtifact) string {
	var sb strings.Builder

	for _, para := range strings.Split(artifact.Content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		sb.WriteString("<p>")
		sb.WriteString(strings.ReplaceAll(html.EscapeString(para), "\n", "<br/>"))
		sb.WriteString("</p>")
	}

	if len(artifact.SourceArtifacts) > 0 {
		sb.WriteString("<h2>Referenced artifacts</h2><ul>")
		for _, ref := range artifact.SourceArtifacts {
			sb.WriteString("<li>")
			sb.WriteString(html.EscapeString(ref))
			sb.WriteString("</li>")
		}
		sb.WriteString("</ul>")
	}

	if len(artifact.Tags) > 0 {
		sb.WriteString("<p><em>Tags: ")
		sb.WriteString(html.EscapeString(strings.Join(artifact.Tags, ", ")))
		sb.WriteString("</em></p>")
	}

	return sb.String()
}
