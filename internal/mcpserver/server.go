// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes read-only reminder tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/dosebell/internal/calendar"
	"github.com/starford/dosebell/internal/compose"
	"github.com/starford/dosebell/internal/dispatch"
	"github.com/starford/dosebell/internal/reminders"
)

const formatURI = "dosebell://reminder-format"

// Server wraps the MCP server with dosebell tools. No tool sends anything.
type Server struct {
	mcp *server.MCPServer
	svc *dispatch.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *dispatch.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"dosebell",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("todays_reminders",
		mcp.WithDescription("List the reminders due today, one per recipient (first match wins)."),
	), s.todaysReminders)

	s.mcp.AddTool(mcp.NewTool("upcoming_reminders",
		mcp.WithDescription("List reminders dated today or later, ordered by date."),
		mcp.WithNumber("limit", mcp.Description("Maximum entries to return (default 10)")),
	), s.upcomingReminders)

	s.mcp.AddTool(mcp.NewTool("list_contacts",
		mcp.WithDescription("List every parsed reminder file with name, phone and age."),
	), s.listContacts)

	s.mcp.AddTool(mcp.NewTool("preview_sms",
		mcp.WithDescription("Show the SMS messages a run would send today, without sending."),
	), s.previewSMS)

	s.mcp.AddTool(mcp.NewTool("preview_email",
		mcp.WithDescription("Show the subject and HTML body of today's email, without sending."),
	), s.previewEmail)

	s.mcp.AddTool(mcp.NewTool("get_reminder_format",
		mcp.WithDescription("Returns the reminder file format. Read it before preparing data files."),
	), s.getReminderFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Reminder File Format",
			mcp.WithResourceDescription("JSON layout of per-recipient reminder files."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) todaysReminders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	today := s.svc.Clock().TodayKey()
	due := s.svc.Repo().Due(today)
	if len(due) == 0 {
		return mcp.NewToolResultText("no reminders due on " + today), nil
	}
	return jsonResult(due)
}

func (s *Server) upcomingReminders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", reminders.DefaultUpcomingLimit)
	items, err := s.svc.Repo().Upcoming(s.svc.Clock().TodayKey(), limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no upcoming reminders"), nil
	}
	return jsonResult(items)
}

type contact struct {
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Age       string `json:"age,omitempty"`
	Reminders int    `json:"reminders"`
	Source    string `json:"source"`
}

func (s *Server) listContacts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := s.svc.Repo().Records()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	clock := s.svc.Clock()
	out := make([]contact, 0, len(records))
	for _, rec := range records {
		out = append(out, contact{
			Name:      rec.Name,
			Phone:     rec.Phone,
			Age:       ageOf(clock, rec.DOB),
			Reminders: len(rec.Reminders),
			Source:    rec.Source,
		})
	}
	return jsonResult(out)
}

func ageOf(clock calendar.Clock, dob string) string {
	days, ok := clock.AgeInDays(dob)
	return compose.AgeLine(days, ok)
}

func (s *Server) previewSMS(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := s.svc.PreviewSMS()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(p)
}

func (s *Server) previewEmail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	msg, _, err := s.svc.PreviewEmail()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var b strings.Builder
	b.WriteString("Subject: " + msg.Subject + "\n")
	if msg.To != "" {
		b.WriteString("To: " + msg.To + "\n")
	}
	b.WriteString("\n" + msg.HTML)
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) getReminderFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ReminderFormatContract), nil
}

func (s *Server) readFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     ReminderFormatContract,
		},
	}, nil
}
