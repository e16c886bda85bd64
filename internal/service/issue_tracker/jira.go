package issue_tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/offboardhq/offboard/core/config"
	"github.com/offboardhq/offboard/internal/model"
	"github.com/offboardhq/offboard/internal/service"
)

const (
	searchPageSize = 100
	maxSearchPages = 10
)

// jiraTimeLayout is Jira Cloud's REST timestamp format.
const jiraTimeLayout = "2006-01-02T15:04:05.000-0700"

type jiraIssueTrackerService struct {
	baseURL  string
	email    string
	apiToken string
	client   *http.Client
}

func NewJiraIssueTrackerService(cfg config.JiraConfig) IssueTrackerService {
	return &jiraIssueTrackerService{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		email:    cfg.Email,
		apiToken: cfg.APIToken,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

var _ IssueTrackerService = &jiraIssueTrackerService{}

type jiraSearchResponse struct {
	StartAt    int         `json:"startAt"`
	MaxResults int         `json:"maxResults"`
	Total      int         `json:"total"`
	Issues     []jiraIssue `json:"issues"`
}

type jiraIssue struct {
	ID     string     `json:"id"`
	Key    string     `json:"key"`
	Fields jiraFields `json:"fields"`
}

type jiraFields struct {
	Summary     string       `json:"summary"`
	Description string       `json:"description"`
	Created     jiraTime     `json:"created"`
	Updated     jiraTime     `json:"updated"`
	Assignee    *jiraUser    `json:"assignee"`
	Comment     jiraComments `json:"comment"`
}

type jiraComments struct {
	Total int `json:"total"`
}

type jiraUser struct {
	AccountID    string `json:"accountId"`
	EmailAddress string `json:"emailAddress"`
	DisplayName  string `json:"displayName"`
}

// identity picks the stable identifier for a Jira user: email when the
// instance exposes it, account id otherwise.
func (u jiraUser) identity() string {
	if u.EmailAddress != "" {
		return u.EmailAddress
	}
	return u.AccountID
}

type jiraTime struct {
	time.Time
}

func (t *jiraTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(jiraTimeLayout, s)
	if err != nil {
		return fmt.Errorf("parsing jira timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

func (s *jiraIssueTrackerService) FetchTickets(ctx context.Context, userID string, since time.Time) ([]model.RawTicket, error) {
	jql := fmt.Sprintf(`assignee = %q AND updated >= %q ORDER BY updated DESC`,
		userID, since.Format("2006-01-02"))

	issues, err := s.search(ctx, jql)
	if err != nil {
		return nil, fmt.Errorf("fetching tickets for %s: %w", userID, err)
	}

	tickets := make([]model.RawTicket, 0, len(issues))
	for _, issue := range issues {
		tickets = append(tickets, mapTicket(issue))
	}
	return tickets, nil
}

func (s *jiraIssueTrackerService) ListActiveUsers(ctx context.Context, since time.Time) ([]string, error) {
	jql := fmt.Sprintf(`assignee IS NOT EMPTY AND updated >= %q ORDER BY updated DESC`,
		since.Format("2006-01-02"))

	issues, err := s.search(ctx, jql)
	if err != nil {
		return nil, fmt.Errorf("listing active jira users: %w", err)
	}

	seen := make(map[string]struct{})
	for _, issue := range issues {
		if issue.Fields.Assignee == nil {
			continue
		}
		if id := issue.Fields.Assignee.identity(); id != "" {
			seen[id] = struct{}{}
		}
	}

	users := make([]string, 0, len(seen))
	for id := range seen {
		users = append(users, id)
	}
	sort.Strings(users)
	return users, nil
}

// search runs a paginated JQL query, stopping at maxSearchPages to bound
// the blast radius of overly broad queries.
func (s *jiraIssueTrackerService) search(ctx context.Context, jql string) ([]jiraIssue, error) {
	var all []jiraIssue

	for page := 0; page < maxSearchPages; page++ {
		resp, err := s.searchPage(ctx, jql, page*searchPageSize)
		if err != nil {
			return nil, err
		}

		all = append(all, resp.Issues...)

		if len(resp.Issues) == 0 || len(all) >= resp.Total {
			break
		}
	}

	return all, nil
}

func (s *jiraIssueTrackerService) searchPage(ctx context.Context, jql string, startAt int) (*jiraSearchResponse, error) {
	query := url.Values{}
	query.Set("jql", jql)
	query.Set("startAt", fmt.Sprintf("%d", startAt))
	query.Set("maxResults", fmt.Sprintf("%d", searchPageSize))
	query.Set("fields", "summary,description,created,updated,assignee,comment")

	endpoint := fmt.Sprintf("%s/rest/api/2/search?%s", s.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating jira search request: %w", err)
	}
	req.SetBasicAuth(s.email, s.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing jira search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, service.NewPermissionError("jira.search", "jira issues",
			fmt.Errorf("jira returned status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("jira search returned status %d: %s", resp.StatusCode, body)
	}

	var searchResp jiraSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decoding jira search response: %w", err)
	}

	return &searchResp, nil
}

func mapTicket(issue jiraIssue) model.RawTicket {
	ticket := model.RawTicket{
		ID:           issue.ID,
		Key:          issue.Key,
		Summary:      issue.Fields.Summary,
		Description:  issue.Fields.Description,
		CommentCount: issue.Fields.Comment.Total,
		Created:      issue.Fields.Created.Time,
		Updated:      issue.Fields.Updated.Time,
	}
	if issue.Fields.Assignee != nil {
		ticket.Assignee = issue.Fields.Assignee.identity()
	}
	return ticket
}
