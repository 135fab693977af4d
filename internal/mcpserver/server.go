// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the manual catalog to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/tebiki/internal/apperr"
	"github.com/starford/tebiki/internal/browse"
	"github.com/starford/tebiki/internal/manualservice"
	"github.com/starford/tebiki/internal/models"
	"github.com/starford/tebiki/internal/requestservice"
)

// TaxonomyURI is the resource describing categories, steps and facets.
const TaxonomyURI = "tebiki://taxonomy"

const defaultSearchLimit = 20

// Server wraps the MCP server with catalog tools.
type Server struct {
	mcp      *server.MCPServer
	manuals  *manualservice.Service
	requests *requestservice.Service
}

// New creates a new MCP server with all tools registered. requests may be nil,
// in which case submit_request is not offered.
func New(manuals *manualservice.Service, requests *requestservice.Service, version string) *Server {
	s := &Server{manuals: manuals, requests: requests}

	s.mcp = server.NewMCPServer(
		"Tebiki",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List manual categories in display order with the number of published manuals in each."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("browse_category",
		mcp.WithDescription("Show the manuals of one category, grouped by step or subcategory. "+
			"Optionally narrow by audience and plan; see the "+TaxonomyURI+" resource for allowed values."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Category slug (e.g. onboarding-registration)")),
		mcp.WithString("audience", mcp.Description("Audience tag, e.g. 管理者向け")),
		mcp.WithString("plan", mcp.Description("Plan tag, e.g. スタンダード")),
	), s.browseCategory)

	s.mcp.AddTool(mcp.NewTool("search_manuals",
		mcp.WithDescription("Search published manuals by title, category or exact tag."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchManuals)

	s.mcp.AddTool(mcp.NewTool("read_manual",
		mcp.WithDescription("Read one published manual, including its link and reference links."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Manual ID")),
	), s.readManual)

	if requests != nil {
		s.mcp.AddTool(mcp.NewTool("submit_request",
			mcp.WithDescription("Ask the administrators to write a manual that does not exist yet."),
			mcp.WithString("requester_name", mcp.Required(), mcp.Description("Name of the person asking")),
			mcp.WithString("requester_email", mcp.Required(), mcp.Description("Reply-to email address")),
			mcp.WithString("manual_title", mcp.Required(), mcp.Description("Title of the wanted manual")),
			mcp.WithString("manual_description", mcp.Required(), mcp.Description("What the manual should explain")),
			mcp.WithString("department", mcp.Description("Requester's department")),
			mcp.WithString("urgency", mcp.Enum("low", "medium", "high"), mcp.Description("Defaults to medium")),
			mcp.WithString("use_case", mcp.Description("When the manual would be used")),
		), s.submitRequest)
	}

	s.mcp.AddResource(
		mcp.NewResource(TaxonomyURI, "Category Taxonomy",
			mcp.WithResourceDescription("Categories, subcategories, step rules and filter values of the portal."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readTaxonomyResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listCategories(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cats, err := s.manuals.Categories(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var b strings.Builder
	for _, c := range cats {
		fmt.Fprintf(&b, "%s\t%s\t%d", c.Slug, c.Name, c.Count)
		if c.Empty {
			b.WriteString("\t" + c.Message)
		}
		b.WriteByte('\n')
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) browseCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f := browse.Filters{
		Audience: req.GetString("audience", ""),
		Plan:     req.GetString("plan", ""),
	}
	view, err := s.manuals.CategoryView(ctx, slug, f)
	if err != nil {
		return toolError(err, slug), nil
	}
	return mcp.NewToolResultText(renderView(view)), nil
}

func (s *Server) searchManuals(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", defaultSearchLimit)
	results, err := s.manuals.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readManual(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	m, err := s.manuals.GetPublished(ctx, id)
	if err != nil {
		return toolError(err, id), nil
	}
	out, _ := json.MarshalIndent(m, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) submitRequest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := requestservice.Input{
		RequesterName:     req.GetString("requester_name", ""),
		RequesterEmail:    req.GetString("requester_email", ""),
		Department:        req.GetString("department", ""),
		ManualTitle:       req.GetString("manual_title", ""),
		ManualDescription: req.GetString("manual_description", ""),
		Urgency:           req.GetString("urgency", ""),
		UseCase:           req.GetString("use_case", ""),
	}
	r, err := s.requests.Submit(ctx, in)
	if err != nil {
		return toolError(err, in.ManualTitle), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("submitted: %s (%s)", r.ID, r.Urgency.Label())), nil
}

func (s *Server) readTaxonomyResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      TaxonomyURI,
			MIMEType: "text/markdown",
			Text:     TaxonomyGuide(s.manuals.Taxonomy(), s.manuals.Steps()),
		},
	}, nil
}

func toolError(err error, subject string) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", subject))
	}
	return mcp.NewToolResultError(err.Error())
}

func renderView(v *browse.CategoryView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", v.Category.Name)
	if v.Filters.Active() {
		fmt.Fprintf(&b, "\n%d of %d manuals match", v.Filtered, v.Total)
		if v.Filters.Audience != "" {
			b.WriteString(" / " + v.Filters.Audience)
		}
		if v.Filters.Plan != "" {
			b.WriteString(" / " + v.Filters.Plan)
		}
		b.WriteByte('\n')
	}
	if len(v.Groups) == 0 {
		b.WriteString("\n" + manualservice.EmptyMessage + "\n")
		return b.String()
	}
	for _, g := range v.Groups {
		fmt.Fprintf(&b, "\n## %s\n", g.Key)
		for _, m := range g.Manuals {
			b.WriteString(manualLine(m))
		}
	}
	return b.String()
}

func manualLine(m models.Manual) string {
	line := fmt.Sprintf("- %s [%s]", m.Title, m.ID)
	if m.Available() {
		line += " " + m.URL
	} else {
		line += " (準備中)"
	}
	if len(m.Tags) > 0 {
		line += " #" + strings.Join(m.Tags, " #")
	}
	return line + "\n"
}
