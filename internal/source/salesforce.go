package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/sharkymark/nuon-mcp/internal/errors"
	"github.com/sharkymark/nuon-mcp/internal/ripgrep"
	"github.com/sharkymark/nuon-mcp/internal/tree"
)

// apiVersion pins the Salesforce REST API version used for all endpoints.
const apiVersion = "v59.0"

// objectSchema is the static field mapping for one queryable object type.
type objectSchema struct {
	searchFields  []string
	displayFields []string
	nameField     string
}

// objectSchemas maps every supported object type to its field mapping.
// Search builds its disjunction from searchFields, results render nameField,
// and record reads select displayFields.
var objectSchemas = map[string]objectSchema{
	"Opportunity": {
		searchFields:  []string{"Name", "Description", "StageName"},
		displayFields: []string{"Id", "Name", "StageName", "Amount", "CloseDate", "AccountId"},
		nameField:     "Name",
	},
	"Account": {
		searchFields:  []string{"Name", "Description", "Industry"},
		displayFields: []string{"Id", "Name", "Industry", "Type", "Website", "Phone"},
		nameField:     "Name",
	},
	"Contact": {
		searchFields:  []string{"Name", "Email", "Title"},
		displayFields: []string{"Id", "Name", "Email", "Title", "Phone", "AccountId"},
		nameField:     "Name",
	},
	"Lead": {
		searchFields:  []string{"Name", "Email", "Company", "Status"},
		displayFields: []string{"Id", "Name", "Email", "Company", "Status", "Phone"},
		nameField:     "Name",
	},
	"Task": {
		searchFields:  []string{"Subject", "Description"},
		displayFields: []string{"Id", "Subject", "Status", "Priority", "ActivityDate"},
		nameField:     "Subject",
	},
	"Event": {
		searchFields:  []string{"Subject", "Description"},
		displayFields: []string{"Id", "Subject", "StartDateTime", "EndDateTime", "Location"},
		nameField:     "Subject",
	},
}

// defaultObjects is the object allowlist when the config names none.
var defaultObjects = []string{"Opportunity", "Account", "Contact", "Lead", "Task", "Event"}

// SalesforceSource exposes a Salesforce org as a flat Type/Id namespace.
type SalesforceSource struct {
	label       string
	description string
	objects     []string
	session     *Session
	logger      *slog.Logger
}

// NewSalesforceSource validates the object allowlist and credentials.
// Unknown object types are dropped with a warning; missing credentials are a
// startup configuration error. No authentication happens here — the session
// stays lazy.
func NewSalesforceSource(label, description string, objects []string, creds Credentials, logger *slog.Logger) (*SalesforceSource, error) {
	if len(objects) == 0 {
		objects = append([]string{}, defaultObjects...)
	}

	valid := make([]string, 0, len(objects))
	for _, obj := range objects {
		if _, ok := objectSchemas[obj]; !ok {
			logger.Warn("Unknown Salesforce object type will be skipped",
				"label", label,
				"object", obj,
			)
			continue
		}
		valid = append(valid, obj)
	}

	var missing []string
	if creds.ClientID == "" {
		missing = append(missing, "SF_CLIENT_ID")
	}
	if creds.ClientSecret == "" {
		missing = append(missing, "SF_CLIENT_SECRET")
	}
	if creds.LoginURL == "" {
		missing = append(missing, "SF_LOGIN_URL")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables for Salesforce source %q: %s",
			label, strings.Join(missing, ", "))
	}

	return &SalesforceSource{
		label:       label,
		description: description,
		objects:     valid,
		session:     NewSession(label, creds, logger),
		logger:      logger,
	}, nil
}

// Label returns the registry key.
func (s *SalesforceSource) Label() string { return s.label }

// queryResponse is the shape of /query results; record fields vary by type.
type queryResponse struct {
	Records []map[string]interface{} `json:"records"`
}

// escapeSOQL escapes the single-quote string delimiter by doubling it. The
// query value is interpolated directly into SOQL, so this is a hard
// correctness requirement, not cosmetics.
func escapeSOQL(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

// query runs a SOQL statement through the session.
func (s *SalesforceSource) query(ctx context.Context, soql string) (*queryResponse, error) {
	params := url.Values{}
	params.Set("q", soql)

	body, err := s.session.Call(ctx, "/services/data/"+apiVersion+"/query", "GET", params)
	if err != nil {
		return nil, err
	}

	var resp queryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(errors.UpstreamError,
			fmt.Sprintf("malformed query response for %q", s.label), err)
	}
	return &resp, nil
}

// Search queries every configured object type for the text and aggregates
// the hits as `Type/Id: Name` lines, mirroring the filesystem search's
// `path:line: text` shape. One broken object type is logged and skipped;
// the rest still return results. Salesforce LIKE is case-insensitive, so
// caseSensitive has no effect here.
func (s *SalesforceSource) Search(ctx context.Context, query string, caseSensitive bool) (string, error) {
	var results []string

	for _, objType := range s.objects {
		schema := objectSchemas[objType]

		conditions := make([]string, 0, len(schema.searchFields))
		for _, field := range schema.searchFields {
			conditions = append(conditions, fmt.Sprintf("%s LIKE '%%%s%%'", field, escapeSOQL(query)))
		}

		soql := fmt.Sprintf("SELECT %s FROM %s WHERE %s LIMIT %d",
			strings.Join(schema.displayFields, ", "), objType, strings.Join(conditions, " OR "), ripgrep.MaxResults)

		resp, err := s.query(ctx, soql)
		if err != nil {
			s.logger.Warn("Search failed for object type, continuing with others",
				"label", s.label,
				"object", objType,
				"error", err.Error(),
			)
			continue
		}

		for _, record := range resp.Records {
			id, _ := record["Id"].(string)
			name, ok := record[schema.nameField].(string)
			if !ok {
				name = "Unknown"
			}
			results = append(results, fmt.Sprintf("%s/%s: %s", objType, id, name))
		}
	}

	if len(results) == 0 {
		return "", nil
	}
	return strings.Join(capMatches(results), "\n"), nil
}

// capMatches truncates aggregated results to the shared cap, appending the
// omission marker with the true overflow count.
func capMatches(results []string) []string {
	if len(results) <= ripgrep.MaxResults {
		return results
	}
	omitted := len(results) - ripgrep.MaxResults
	capped := append([]string{}, results[:ripgrep.MaxResults]...)
	return append(capped, fmt.Sprintf("... (%d more matches omitted)", omitted))
}

// ReadFile fetches one record addressed as Type/Id and renders it as labeled
// JSON.
func (s *SalesforceSource) ReadFile(ctx context.Context, recordPath string) (string, error) {
	parts := strings.Split(recordPath, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", errors.Newf(errors.InvalidFormat,
			"invalid Salesforce path format, expected 'ObjectType/RecordId', got: %s", recordPath)
	}

	objType, recordID := parts[0], parts[1]
	if _, ok := objectSchemas[objType]; !ok {
		return "", errors.Newf(errors.NotFound, "unknown Salesforce object type: %s", objType)
	}

	endpoint := fmt.Sprintf("/services/data/%s/sobjects/%s/%s", apiVersion, objType, url.PathEscape(recordID))
	body, err := s.session.Call(ctx, endpoint, "GET", nil)
	if err != nil {
		return "", err
	}

	var record map[string]interface{}
	if err := json.Unmarshal(body, &record); err != nil {
		return "", errors.Wrap(errors.UpstreamError,
			fmt.Sprintf("malformed record response for %q", s.label), err)
	}

	formatted, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("# %s:%s\n\n```json\n%s\n```", s.label, recordPath, string(formatted)), nil
}

// ListFiles lists the record namespace. Pattern "*" yields the object types
// as pseudo-directories; "Type/*" yields the 100 most recently modified
// record identifiers of that type, newest first.
func (s *SalesforceSource) ListFiles(ctx context.Context, pattern string) ([]string, error) {
	if pattern == "" || pattern == "*" {
		dirs := make([]string, 0, len(s.objects))
		for _, obj := range s.objects {
			dirs = append(dirs, obj+"/")
		}
		return dirs, nil
	}

	if !strings.Contains(pattern, "/") {
		return []string{}, nil
	}

	objType := strings.SplitN(pattern, "/", 2)[0]
	schema, ok := objectSchemas[objType]
	if !ok {
		return nil, errors.Newf(errors.NotFound, "unknown Salesforce object type: %s", objType)
	}

	soql := fmt.Sprintf("SELECT Id, %s FROM %s ORDER BY LastModifiedDate DESC LIMIT 100",
		schema.nameField, objType)
	resp, err := s.query(ctx, soql)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Records))
	for _, record := range resp.Records {
		if id, ok := record["Id"].(string); ok {
			ids = append(ids, objType+"/"+id)
		}
	}
	return ids, nil
}

// Metadata reports the configured object types; FileCount counts types, not
// records.
func (s *SalesforceSource) Metadata() Metadata {
	return Metadata{
		Label:       s.label,
		Kind:        KindSalesforce,
		Description: s.description,
		FileCount:   len(s.objects),
		Objects:     append([]string{}, s.objects...),
	}
}

// Tree renders the flat object-type namespace. The namespace has no
// navigable subpaths, so any non-empty subpath is rejected.
func (s *SalesforceSource) Tree(ctx context.Context, subpath string, maxDepth int) (string, error) {
	if subpath != "" {
		return "", errors.New(errors.Unsupported, "Salesforce sources do not support subpath navigation")
	}

	dirs := make([]string, 0, len(s.objects))
	for _, obj := range s.objects {
		dirs = append(dirs, obj+"/")
	}
	return tree.RenderFlat(dirs), nil
}

// Close releases the session's connection pool.
func (s *SalesforceSource) Close() {
	s.session.Close()
}
