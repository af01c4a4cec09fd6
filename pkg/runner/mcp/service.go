// Package mcp provides the Model Context Protocol server integration for flow.
package mcp

import (
	"context"
	"errors"
	"strings"

	"tableflip.dev/flow/pkg/app"
	"tableflip.dev/flow/pkg/entry"
	"tableflip.dev/flow/pkg/export"
	"tableflip.dev/flow/pkg/search"
)

// Sessions hands out a Service for the signed-in user. *app.Manager
// implements it.
type Sessions interface {
	Service() (*app.Service, error)
}

// Static always returns the same Service.
type Static struct{ Svc *app.Service }

func (s Static) Service() (*app.Service, error) {
	if s.Svc == nil {
		return nil, app.ErrNoSession
	}
	return s.Svc, nil
}

// Service adapts diary operations to transport-friendly values shared by
// tools and resources.
type Service struct {
	Sessions Sessions
}

// EntryDTO is a transport-friendly projection of an entry.
type EntryDTO struct {
	Date       string   `json:"date"`
	Time       string   `json:"time"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Mood       string   `json:"mood,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	MediaCount int      `json:"mediaCount,omitempty"`
	Created    string   `json:"created,omitempty"`
	Updated    string   `json:"updated,omitempty"`
}

// MediaInput is an image attached by a client.
type MediaInput struct {
	Name    string `json:"name"`
	DataURI string `json:"dataURI"`
}

// SaveEntryOptions captures the parameters used to write an entry.
type SaveEntryOptions struct {
	Date    string
	Time    string
	Title   string
	Content string
	Mood    string
	Tags    []string
	Media   []MediaInput
}

// SearchOptions mirrors search.Query with a result cap.
type SearchOptions struct {
	Keyword string
	Mood    string
	Tags    []string
	Newest  bool
	Limit   int
}

// TagSummary is one tag with the number of entries carrying it.
type TagSummary struct {
	Tag     string `json:"tag"`
	Entries int    `json:"entries"`
}

// ExportResult is a rendered export.
type ExportResult struct {
	Filename string `json:"filename"`
	Format   string `json:"format"`
	Content  string `json:"content"`
}

// NewService builds a service over sessions.
func NewService(sessions Sessions) *Service {
	return &Service{Sessions: sessions}
}

func (s *Service) app() (*app.Service, error) {
	if s.Sessions == nil {
		return nil, errors.New("sessions are not configured")
	}
	return s.Sessions.Service()
}

// ListEntries returns the entries within scope ("all", "YYYY-MM" or
// "YYYY-MM-DD").
func (s *Service) ListEntries(ctx context.Context, scope string) ([]EntryDTO, error) {
	svc, err := s.app()
	if err != nil {
		return nil, err
	}
	sc, err := entry.ParseScope(scope)
	if err != nil {
		return nil, err
	}
	entries, err := svc.Entries(ctx, sc)
	if err != nil {
		return nil, err
	}
	return toDTOs(entries), nil
}

// GetEntry fetches one entry.
func (s *Service) GetEntry(ctx context.Context, date, t string) (EntryDTO, error) {
	svc, err := s.app()
	if err != nil {
		return EntryDTO{}, err
	}
	e, err := svc.Get(ctx, date, t)
	if err != nil {
		return EntryDTO{}, err
	}
	return toDTO(e), nil
}

// SearchEntries filters every entry of the user.
func (s *Service) SearchEntries(ctx context.Context, opts SearchOptions) ([]EntryDTO, error) {
	svc, err := s.app()
	if err != nil {
		return nil, err
	}
	results, err := svc.Search(ctx, search.Query{
		Keyword:        opts.Keyword,
		Mood:           opts.Mood,
		Tags:           opts.Tags,
		SortByDateDesc: opts.Newest,
	})
	if err != nil {
		return nil, err
	}
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return toDTOs(results), nil
}

// ListTags returns every tag in use, alphabetically.
func (s *Service) ListTags(ctx context.Context) ([]TagSummary, error) {
	svc, err := s.app()
	if err != nil {
		return nil, err
	}
	names, err := svc.Tags(ctx)
	if err != nil {
		return nil, err
	}
	counts := svc.Cache.Index().Counts()
	out := make([]TagSummary, 0, len(names))
	for _, name := range names {
		out = append(out, TagSummary{Tag: name, Entries: counts[name]})
	}
	return out, nil
}

// SaveEntry writes an entry, replacing any at the same date and time.
func (s *Service) SaveEntry(ctx context.Context, opts SaveEntryOptions) (EntryDTO, error) {
	svc, err := s.app()
	if err != nil {
		return EntryDTO{}, err
	}
	var media []entry.Media
	for _, m := range opts.Media {
		media = append(media, entry.NewMedia(m.Name, strings.TrimSpace(m.DataURI)))
	}
	saved, err := svc.Save(ctx, entry.Entry{
		Date:    strings.TrimSpace(opts.Date),
		Time:    strings.TrimSpace(opts.Time),
		Title:   opts.Title,
		Content: opts.Content,
		Mood:    opts.Mood,
		Tags:    opts.Tags,
		Media:   media,
	})
	if err != nil {
		return EntryDTO{}, err
	}
	return toDTO(saved), nil
}

// MoveEntry changes the time of an entry within its day.
func (s *Service) MoveEntry(ctx context.Context, date, from, to string) (EntryDTO, error) {
	svc, err := s.app()
	if err != nil {
		return EntryDTO{}, err
	}
	moved, err := svc.Move(ctx, date, from, to)
	if err != nil {
		return EntryDTO{}, err
	}
	return toDTO(moved), nil
}

// DeleteEntry removes an entry.
func (s *Service) DeleteEntry(ctx context.Context, date, t string) error {
	svc, err := s.app()
	if err != nil {
		return err
	}
	return svc.Delete(ctx, date, t)
}

// Export renders the entries of scope as json or txt.
func (s *Service) Export(ctx context.Context, scope, format string) (ExportResult, error) {
	svc, err := s.app()
	if err != nil {
		return ExportResult{}, err
	}
	sc, err := entry.ParseScope(scope)
	if err != nil {
		return ExportResult{}, err
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return ExportResult{}, err
	}
	data, name, err := svc.Export(ctx, sc, f)
	if err != nil {
		return ExportResult{}, err
	}
	return ExportResult{Filename: name, Format: string(f), Content: string(data)}, nil
}

// Stats summarizes the diary.
func (s *Service) Stats(ctx context.Context) (app.Stats, error) {
	svc, err := s.app()
	if err != nil {
		return app.Stats{}, err
	}
	return svc.Stats(ctx)
}

func toDTOs(entries []entry.Entry) []EntryDTO {
	out := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, toDTO(e))
	}
	return out
}

func toDTO(e entry.Entry) EntryDTO {
	dto := EntryDTO{
		Date:       e.Date,
		Time:       e.Time,
		Title:      e.Title,
		Content:    e.Content,
		Mood:       e.Mood,
		Tags:       e.Tags,
		MediaCount: len(e.Media),
	}
	if e.Timestamp != nil && !e.Timestamp.IsZero() {
		dto.Created = entry.FormatTime(e.Timestamp.Time)
	}
	if e.UpdatedAt != nil && !e.UpdatedAt.IsZero() {
		dto.Updated = entry.FormatTime(e.UpdatedAt.Time)
	}
	return dto
}
