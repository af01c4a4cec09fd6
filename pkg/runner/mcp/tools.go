package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/flow/pkg/entry"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerListEntriesTool(srv, svc)
	registerGetEntryTool(srv, svc)
	registerSearchEntriesTool(srv, svc)
	registerListTagsTool(srv, svc)
	registerSaveEntryTool(srv, svc)
	registerMoveEntryTool(srv, svc)
	registerDeleteEntryTool(srv, svc)
	registerExportEntriesTool(srv, svc)
	registerStatsTool(srv, svc)
}

func registerListEntriesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_entries",
		mcp.WithDescription("List diary entries of a day, a month or the whole diary, oldest first."),
		mcp.WithString("scope",
			mcp.Description(`"all", a month "YYYY-MM" or a date "YYYY-MM-DD" (default all).`),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		scope := request.GetString("scope", "all")

		results, err := svc.ListEntries(ctx, scope)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"scope":   scope,
			"entries": results,
			"count":   len(results),
		})
	})
}

func registerGetEntryTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_entry",
		mcp.WithDescription("Fetch a single entry by date and time."),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Entry date, YYYY-MM-DD."),
		),
		mcp.WithString("time",
			mcp.Required(),
			mcp.Description("Entry time, HH:MM (24h)."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date, err := request.RequireString("date")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		t, err := request.RequireString("time")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		dto, err := svc.GetEntry(ctx, date, t)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerSearchEntriesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"search_entries",
		mcp.WithDescription("Filter entries by keyword, exact mood and any of a set of tags."),
		mcp.WithString("keyword",
			mcp.Description("Case-insensitive text matched against title, content and tags."),
		),
		mcp.WithString("mood",
			mcp.Description("Exact mood to match."),
		),
		mcp.WithString("tags",
			mcp.Description("Comma separated tags; an entry matches when it has any of them."),
		),
		mcp.WithBoolean("newest_first",
			mcp.Description("Order results by date, newest first (default true). False keeps diary order."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries to return (default 50)."),
			mcp.Min(1),
			mcp.Max(500),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Keyword string `json:"keyword"`
			Mood    string `json:"mood"`
			Tags    string `json:"tags"`
			Newest  *bool  `json:"newest_first"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		opts := SearchOptions{
			Keyword: args.Keyword,
			Mood:    args.Mood,
			Tags:    entry.ParseTags(args.Tags),
			Newest:  args.Newest == nil || *args.Newest,
			Limit:   request.GetInt("limit", 50),
		}

		results, err := svc.SearchEntries(ctx, opts)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"results": results,
			"count":   len(results),
		})
	})
}

func registerListTagsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_tags",
		mcp.WithDescription("List every tag used in the diary with entry counts."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		summaries, err := svc.ListTags(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"tags":  summaries,
			"count": len(summaries),
		})
	})
}

func registerSaveEntryTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"save_entry",
		mcp.WithDescription("Write a diary entry. An existing entry at the same date and time is replaced."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Entry title."),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Entry body."),
		),
		mcp.WithString("date",
			mcp.Description("Entry date, YYYY-MM-DD (default today)."),
		),
		mcp.WithString("time",
			mcp.Description("Entry time, HH:MM (default now)."),
		),
		mcp.WithString("mood",
			mcp.Description("Optional mood label."),
		),
		mcp.WithString("tags",
			mcp.Description("Optional comma separated tags."),
		),
		mcp.WithArray("media",
			mcp.Description("Up to two images, each {name, dataURI} with a data:image/... URI."),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":    map[string]any{"type": "string"},
					"dataURI": map[string]any{"type": "string"},
				},
				"required": []string{"dataURI"},
			}),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Title   string       `json:"title"`
			Content string       `json:"content"`
			Date    string       `json:"date"`
			Time    string       `json:"time"`
			Mood    string       `json:"mood"`
			Tags    string       `json:"tags"`
			Media   []MediaInput `json:"media"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		dto, err := svc.SaveEntry(ctx, SaveEntryOptions{
			Date:    args.Date,
			Time:    args.Time,
			Title:   args.Title,
			Content: args.Content,
			Mood:    args.Mood,
			Tags:    entry.ParseTags(args.Tags),
			Media:   args.Media,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerMoveEntryTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"move_entry",
		mcp.WithDescription("Move an entry to another time of the same day."),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Entry date, YYYY-MM-DD."),
		),
		mcp.WithString("from",
			mcp.Required(),
			mcp.Description("Current time, HH:MM."),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("New time, HH:MM. Must be free."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Date string `json:"date"`
			From string `json:"from"`
			To   string `json:"to"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		dto, err := svc.MoveEntry(ctx, args.Date, args.From, args.To)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerDeleteEntryTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"delete_entry",
		mcp.WithDescription("Delete the entry at a date and time."),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Entry date, YYYY-MM-DD."),
		),
		mcp.WithString("time",
			mcp.Required(),
			mcp.Description("Entry time, HH:MM."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date, err := request.RequireString("date")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		t, err := request.RequireString("time")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := svc.DeleteEntry(ctx, date, t); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"deleted": true,
			"date":    date,
			"time":    t,
		})
	})
}

func registerExportEntriesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"export_entries",
		mcp.WithDescription("Render entries of a scope as a JSON or plain text document."),
		mcp.WithString("scope",
			mcp.Description(`"all", "YYYY-MM" or "YYYY-MM-DD" (default all).`),
		),
		mcp.WithString("format",
			mcp.Description("Document format."),
			mcp.Enum("json", "txt"),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := svc.Export(ctx, request.GetString("scope", "all"), request.GetString("format", "json"))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(result)
	})
}

func registerStatsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"diary_stats",
		mcp.WithDescription("Summarize the diary: entry, day and tag counts and moods."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := svc.Stats(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(stats)
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
