package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
	"github.com/custodia-labs/daylog/internal/logger"
	"github.com/custodia-labs/daylog/internal/sections"
)

// DocumentService writes rendered sections into vault documents.
// Writes of the same path serialise on the document lock.
type DocumentService struct {
	docs         driven.DocumentStore
	locker       driven.Locker
	history      driven.DocumentHistory
	dailyDir     string
	weeklyDir    string
	templatePath string
}

// NewDocumentService creates a document service. history may be nil.
func NewDocumentService(
	docs driven.DocumentStore,
	locker driven.Locker,
	history driven.DocumentHistory,
	vault domain.VaultConfig,
) *DocumentService {
	return &DocumentService{
		docs:         docs,
		locker:       locker,
		history:      history,
		dailyDir:     vault.DailyDir,
		weeklyDir:    vault.WeeklyDir,
		templatePath: vault.DailyTemplate,
	}
}

// DailyPath returns the document path of date.
func (s *DocumentService) DailyPath(date string) string {
	return domain.DailyDocumentPath(s.dailyDir, date)
}

// WeeklyPath returns the document path of the ISO week containing t.
func (s *DocumentService) WeeklyPath(t time.Time) string {
	return domain.WeeklyDocumentPath(s.weeklyDir, t)
}

// DailyHeader returns the content of a new daily document for date,
// rendered from the configured template when there is one.
func (s *DocumentService) DailyHeader(ctx context.Context, date string) string {
	if s.templatePath == "" {
		return domain.DefaultDailyHeader(date)
	}
	t, err := domain.ParseDate(date)
	if err != nil {
		return domain.DefaultDailyHeader(date)
	}
	tpl, err := s.docs.Read(ctx, s.templatePath)
	if err != nil {
		logger.Warn("Daily template %s unavailable, using default header: %v", s.templatePath, err)
		return domain.DefaultDailyHeader(date)
	}
	return RenderTemplate(tpl, t)
}

// WeeklyHeader returns the content of a new weekly document.
func (s *DocumentService) WeeklyHeader(t time.Time) string {
	return domain.DefaultWeeklyHeader(domain.ISOWeekID(t))
}

// Read returns the text of a document.
func (s *DocumentService) Read(ctx context.Context, p string) (string, error) {
	return s.docs.Read(ctx, p)
}

// EnsureDocument returns the text of path, creating the document with
// defaultHeader when it does not exist.
func (s *DocumentService) EnsureDocument(ctx context.Context, p, defaultHeader string) (string, error) {
	unlock, err := s.locker.Lock(ctx, driven.DocumentLockKey(p))
	if err != nil {
		return "", fmt.Errorf("lock document %s: %w", p, err)
	}
	defer unlock()

	text, created, err := s.readOrDefault(ctx, p, defaultHeader)
	if err != nil {
		return "", err
	}
	if created {
		if err := s.docs.Write(ctx, p, text); err != nil {
			return "", fmt.Errorf("create document %s: %w", p, err)
		}
	}
	return text, nil
}

// Apply writes every section of u into its document in one write.
// Sections are applied in order; the write is skipped when nothing
// changed.
func (s *DocumentService) Apply(ctx context.Context, u domain.DocumentUpdate) error {
	unlock, err := s.locker.Lock(ctx, driven.DocumentLockKey(u.Path))
	if err != nil {
		return fmt.Errorf("lock document %s: %w", u.Path, err)
	}
	defer unlock()

	text, created, err := s.readOrDefault(ctx, u.Path, u.DefaultHeader)
	if err != nil {
		return err
	}

	updated := text
	for _, sec := range u.Sections {
		updated = ApplySection(updated, sec)
	}
	if len(u.Frontmatter) > 0 {
		updated, err = sections.UpdateFrontmatter(updated, u.Frontmatter)
		if err != nil {
			return fmt.Errorf("update frontmatter of %s: %w", u.Path, err)
		}
	}

	if !created && updated == text {
		logger.Debug("Document %s unchanged", u.Path)
		return nil
	}
	if err := s.docs.Write(ctx, u.Path, updated); err != nil {
		return fmt.Errorf("write document %s: %w", u.Path, err)
	}
	logger.Debug("Wrote %d section(s) to %s", len(u.Sections), u.Path)

	if s.history != nil {
		if err := s.history.Commit(ctx, u.Path, commitMessage(u)); err != nil {
			logger.Warn("Failed to record history of %s: %v", u.Path, err)
		}
	}
	return nil
}

func (s *DocumentService) readOrDefault(ctx context.Context, p, defaultHeader string) (string, bool, error) {
	text, err := s.docs.Read(ctx, p)
	if err == nil {
		return text, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", false, fmt.Errorf("read document %s: %w", p, err)
	}
	return defaultHeader, true, nil
}

// ApplySection applies one section update to text.
func ApplySection(text string, u domain.SectionUpdate) string {
	k := u.Key
	if u.Mode == domain.SectionAppendItems {
		if k.Parent != "" {
			return sections.AppendSubsectionItems(text, k.Parent, k.ParentLevel, k.Heading, k.Level, u.Items)
		}
		return sections.AppendListItems(text, k.Heading, k.Level, u.Items)
	}

	switch {
	case k.Parent != "":
		return sections.UpdateSubsection(text, k.Parent, k.ParentLevel, k.Heading, k.Level, u.Body)
	case k.Marker != "":
		return sections.ReplaceOrAppendMarkedSection(text, k.Marker, k.Heading, k.Level, u.Body)
	default:
		return sections.ReplaceOrAppendSection(text, k.Heading, k.Level, u.Body)
	}
}

func commitMessage(u domain.DocumentUpdate) string {
	names := make([]string, len(u.Sections))
	for i, sec := range u.Sections {
		names[i] = sec.Key.String()
	}
	if len(names) == 0 {
		return "daylog: update " + path.Base(u.Path)
	}
	return fmt.Sprintf("daylog: update %s (%s)", path.Base(u.Path), strings.Join(names, ", "))
}

var templaterNow = regexp.MustCompile(`<%\s*tp\.date\.now\(\s*"([^"]*)"\s*\)\s*%>`)

// momentTokens maps the date tokens used by Templater to Go layouts.
var momentTokens = strings.NewReplacer(
	"YYYY", "2006",
	"dddd", "Monday",
	"ddd", "Mon",
	"MM", "01",
	"DD", "02",
	"HH", "15",
	"mm", "04",
)

// RenderTemplate substitutes the date tokens of a daily template:
// {{date}}, {{week}} and <% tp.date.now("FORMAT") %>.
func RenderTemplate(tpl string, date time.Time) string {
	out := strings.ReplaceAll(tpl, "{{date}}", domain.FormatDate(date))
	out = strings.ReplaceAll(out, "{{week}}", domain.ISOWeekID(date))
	return templaterNow.ReplaceAllStringFunc(out, func(m string) string {
		format := templaterNow.FindStringSubmatch(m)[1]
		if format == "" {
			return domain.FormatDate(date)
		}
		return date.Format(momentTokens.Replace(format))
	})
}
