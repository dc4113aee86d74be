package notification

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"legatum/internal/audit"
	id "legatum/pkg/domain"
	"legatum/pkg/email"
)

// Template types a notification can be rendered as.
const (
	TemplateEmail  = "email"
	TemplateForm   = "form"
	TemplateAPI    = "api"
	TemplateLetter = "letter"
)

// Template is one reusable notification format. Subject and body may contain
// {placeholder} tokens that Personalize resolves from the delivery context.
type Template struct {
	Subject        string   `json:"subject"`
	Body           string   `json:"body"`
	RequiredDocs   []string `json:"required_docs,omitempty"`
	DeliveryMethod string   `json:"delivery_method,omitempty"`
	FormURL        string   `json:"form_url,omitempty"`

	// Set on custom templates only.
	CreatedAt time.Time `json:"created_at,omitzero"`
	CreatedBy string    `json:"created_by,omitempty"`
	Version   string    `json:"template_version,omitempty"`
}

// TemplateValidation reports whether a template is safe and complete enough
// to store. Warnings do not block storage.
type TemplateValidation struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// templateKey addresses one template within a library tier.
type templateKey struct {
	Platform string
	Action   string
	Type     string
}

// Library stores built-in and custom notification templates. Lookups resolve
// custom first, then built-in, then the generic platform fallback.
type Library struct {
	mu     sync.RWMutex
	custom map[templateKey]Template

	logger  *slog.Logger
	auditor AuditPublisher
	now     func() time.Time
}

// LibraryOption configures optional Library collaborators.
type LibraryOption func(*Library)

func WithLibraryLogger(logger *slog.Logger) LibraryOption {
	return func(l *Library) { l.logger = logger }
}

func WithLibraryAuditPublisher(auditor AuditPublisher) LibraryOption {
	return func(l *Library) { l.auditor = auditor }
}

// NewLibrary builds a template library seeded with the built-in templates.
func NewLibrary(opts ...LibraryOption) *Library {
	l := &Library{
		custom: make(map[templateKey]Template),
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func makeKey(platform, action, templateType string) templateKey {
	return templateKey{
		Platform: normalizePlatform(platform),
		Action:   strings.ToLower(strings.TrimSpace(action)),
		Type:     strings.ToLower(strings.TrimSpace(templateType)),
	}
}

// Get resolves a template for the platform, action and type. Custom templates
// shadow built-ins; unknown platforms fall back to the generic set. The
// second return is false when nothing matches, which routes generation to
// the language model.
func (l *Library) Get(platform, action, templateType string) (Template, bool) {
	key := makeKey(platform, action, templateType)

	l.mu.RLock()
	tmpl, ok := l.custom[key]
	l.mu.RUnlock()
	if ok {
		return tmpl, true
	}

	if tmpl, ok := builtinTemplates[key]; ok {
		return tmpl, true
	}
	generic := key
	generic.Platform = "generic"
	tmpl, ok = builtinTemplates[generic]
	return tmpl, ok
}

// CreateCustom validates and stores a custom template, shadowing any built-in
// with the same key.
func (l *Library) CreateCustom(ctx context.Context, platform, action, templateType string, tmpl Template, userID id.UserID) error {
	if report := ValidateTemplate(tmpl); !report.Valid {
		return fmt.Errorf("template validation failed: %s", strings.Join(report.Errors, "; "))
	}

	tmpl.CreatedAt = l.now().UTC()
	tmpl.CreatedBy = userID.String()
	tmpl.Version = "1.0"

	key := makeKey(platform, action, templateType)
	l.mu.Lock()
	l.custom[key] = tmpl
	l.mu.Unlock()

	if l.auditor != nil {
		event := audit.Event{
			UserID:      userID,
			EventType:   audit.EventTemplateCreated,
			Description: fmt.Sprintf("created custom template for %s %s %s", key.Platform, key.Action, key.Type),
			InputData: map[string]any{
				"platform":      key.Platform,
				"action_type":   key.Action,
				"template_type": key.Type,
			},
		}
		if err := l.auditor.Emit(ctx, event); err != nil {
			l.logger.ErrorContext(ctx, "audit emit failed", "event_type", event.EventType, "error", err)
		}
	}
	return nil
}

// Patterns rejected in template bodies. Templates render into emails and web
// forms, so anything that could execute is refused outright.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script.*?>.*?</script>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
}

var validDeliveryMethods = map[string]bool{
	TemplateEmail:  true,
	TemplateForm:   true,
	TemplateAPI:    true,
	TemplateLetter: true,
}

// ValidateTemplate checks structure and content. Missing recommended
// placeholders are warnings; missing fields, dangerous content and unknown
// delivery methods are errors.
func ValidateTemplate(tmpl Template) TemplateValidation {
	report := TemplateValidation{Valid: true}

	if tmpl.Subject == "" {
		report.Valid = false
		report.Errors = append(report.Errors, "Missing required field: subject")
	}
	if tmpl.Body == "" {
		report.Valid = false
		report.Errors = append(report.Errors, "Missing required field: body")
	}

	for _, placeholder := range []string{"full_name", "date_of_death"} {
		if !strings.Contains(tmpl.Body, "{"+placeholder+"}") {
			report.Warnings = append(report.Warnings, fmt.Sprintf("Missing recommended placeholder: {%s}", placeholder))
		}
	}

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(tmpl.Body) {
			report.Valid = false
			report.Errors = append(report.Errors, "Template contains potentially dangerous content")
			break
		}
	}

	if tmpl.DeliveryMethod != "" && !validDeliveryMethods[tmpl.DeliveryMethod] {
		report.Valid = false
		report.Errors = append(report.Errors, fmt.Sprintf("Invalid delivery method: %s", tmpl.DeliveryMethod))
	}

	return report
}

// Personalize resolves the template's placeholders from the deceased person's
// details and the policy under action. Unset contact fields render as
// bracketed markers so reviewers can spot gaps before delivery.
func (l *Library) Personalize(tmpl Template, info DeceasedInfo, platform, action, accountIdentifier string) Template {
	context := map[string]string{
		"full_name":          orPlaceholder(info.FullName, "[Name]"),
		"first_name":         firstName(info.FullName),
		"date_of_death":      orPlaceholder(info.DateOfDeath, "[Date of Death]"),
		"platform_name":      orPlaceholder(platform, "[Platform]"),
		"account_identifier": orPlaceholder(accountIdentifier, "[Account]"),
		"action_type":        titleWord(action),
		"relationship":       orPlaceholder(info.Relationship, "Authorized Representative"),
		"contact_name":       contactName(info),
		"contact_email":      orPlaceholder(info.ContactEmail, "[Contact Email]"),
		"contact_phone":      orPlaceholder(info.ContactPhone, "[Contact Phone]"),
		"contact_address":    orPlaceholder(info.ContactAddress, "[Contact Address]"),
		"current_date":       l.now().UTC().Format("January 2, 2006"),
	}

	personalized := tmpl
	personalized.Subject = replacePlaceholders(tmpl.Subject, context)
	personalized.Body = replacePlaceholders(tmpl.Body, context)
	return personalized
}

func replacePlaceholders(text string, context map[string]string) string {
	for key, value := range context {
		text = strings.ReplaceAll(text, "{"+key+"}", value)
	}
	return text
}

func orPlaceholder(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// contactName prefers the explicit contact name, then a name derived from the
// contact's email address, then the bracketed marker.
func contactName(info DeceasedInfo) string {
	if info.ContactName != "" {
		return info.ContactName
	}
	if info.ContactEmail != "" {
		return email.DeriveFullName(info.ContactEmail)
	}
	return "[Contact Name]"
}

func firstName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return "[First Name]"
	}
	return fields[0]
}

func titleWord(s string) string {
	if s == "" {
		return "[Action]"
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// TemplateListing enumerates available templates by tier.
type TemplateListing struct {
	Builtin map[string]map[string][]string `json:"builtin_templates"`
	Custom  map[string]map[string][]string `json:"custom_templates"`
	Total   int                            `json:"total_count"`
}

// List enumerates templates, optionally filtered to one platform.
func (l *Library) List(platform string) TemplateListing {
	listing := TemplateListing{
		Builtin: make(map[string]map[string][]string),
		Custom:  make(map[string]map[string][]string),
	}
	filter := normalizePlatform(platform)

	addKey := func(dst map[string]map[string][]string, key templateKey) {
		if filter != "" && key.Platform != filter {
			return
		}
		if dst[key.Platform] == nil {
			dst[key.Platform] = make(map[string][]string)
		}
		dst[key.Platform][key.Action] = append(dst[key.Platform][key.Action], key.Type)
		listing.Total++
	}

	for key := range builtinTemplates {
		addKey(listing.Builtin, key)
	}

	l.mu.RLock()
	for key := range l.custom {
		addKey(listing.Custom, key)
	}
	l.mu.RUnlock()

	for _, tier := range []map[string]map[string][]string{listing.Builtin, listing.Custom} {
		for _, actions := range tier {
			for _, types := range actions {
				sort.Strings(types)
			}
		}
	}
	return listing
}

// ExportedTemplate pairs a template with its address, the unit of
// export/import exchange.
type ExportedTemplate struct {
	Platform string   `json:"platform"`
	Action   string   `json:"action_type"`
	Type     string   `json:"template_type"`
	Template Template `json:"template"`
}

// TemplateExport is a portable snapshot of custom templates.
type TemplateExport struct {
	ExportedAt     time.Time          `json:"export_timestamp"`
	PlatformFilter string             `json:"platform_filter,omitempty"`
	Templates      []ExportedTemplate `json:"custom_templates"`
}

// Export snapshots custom templates for backup or sharing, optionally
// filtered to one platform.
func (l *Library) Export(platform string) TemplateExport {
	filter := normalizePlatform(platform)
	export := TemplateExport{
		ExportedAt:     l.now().UTC(),
		PlatformFilter: filter,
	}

	l.mu.RLock()
	for key, tmpl := range l.custom {
		if filter != "" && key.Platform != filter {
			continue
		}
		export.Templates = append(export.Templates, ExportedTemplate{
			Platform: key.Platform,
			Action:   key.Action,
			Type:     key.Type,
			Template: tmpl,
		})
	}
	l.mu.RUnlock()

	sort.Slice(export.Templates, func(i, j int) bool {
		a, b := export.Templates[i], export.Templates[j]
		if a.Platform != b.Platform {
			return a.Platform < b.Platform
		}
		if a.Action != b.Action {
			return a.Action < b.Action
		}
		return a.Type < b.Type
	})
	return export
}

// ImportResult summarizes an Import run.
type ImportResult struct {
	Imported int      `json:"imported_count"`
	Skipped  int      `json:"skipped_count"`
	Failed   int      `json:"error_count"`
	Errors   []string `json:"errors,omitempty"`
}

// Import loads custom templates from an export. Existing templates are
// skipped unless overwrite is set; invalid templates are counted and
// reported, never stored.
func (l *Library) Import(ctx context.Context, export TemplateExport, userID id.UserID, overwrite bool) ImportResult {
	var result ImportResult
	for _, entry := range export.Templates {
		key := makeKey(entry.Platform, entry.Action, entry.Type)

		l.mu.RLock()
		_, exists := l.custom[key]
		l.mu.RUnlock()
		if exists && !overwrite {
			result.Skipped++
			continue
		}

		if err := l.CreateCustom(ctx, entry.Platform, entry.Action, entry.Type, entry.Template, userID); err != nil {
			result.Failed++
			result.Errors = append(result.Errors,
				fmt.Sprintf("failed to import template %s/%s/%s: %v", key.Platform, key.Action, key.Type, err))
			continue
		}
		result.Imported++
	}

	if l.auditor != nil {
		event := audit.Event{
			UserID:      userID,
			EventType:   audit.EventTemplatesImported,
			Description: fmt.Sprintf("imported %d templates", result.Imported),
			OutputData: map[string]any{
				"imported_count": result.Imported,
				"skipped_count":  result.Skipped,
				"error_count":    result.Failed,
			},
		}
		if result.Failed > 0 {
			event.Status = audit.StatusFailure
		}
		if err := l.auditor.Emit(ctx, event); err != nil {
			l.logger.ErrorContext(ctx, "audit emit failed", "event_type", event.EventType, "error", err)
		}
	}
	return result
}

// TemplateStatistics summarizes library contents for operators.
type TemplateStatistics struct {
	BuiltinCount  int            `json:"total_builtin_templates"`
	CustomCount   int            `json:"total_custom_templates"`
	Platforms     []string       `json:"platforms_with_templates"`
	ActionTypes   []string       `json:"action_types_supported"`
	TemplateTypes []string       `json:"template_types_available"`
	ByPlatform    map[string]int `json:"platform_breakdown"`
}

// Statistics counts templates across both tiers.
func (l *Library) Statistics() TemplateStatistics {
	stats := TemplateStatistics{ByPlatform: make(map[string]int)}
	platforms := make(map[string]bool)
	actions := make(map[string]bool)
	types := make(map[string]bool)

	count := func(key templateKey) {
		platforms[key.Platform] = true
		actions[key.Action] = true
		types[key.Type] = true
		stats.ByPlatform[key.Platform]++
	}

	for key := range builtinTemplates {
		count(key)
		stats.BuiltinCount++
	}

	l.mu.RLock()
	for key := range l.custom {
		count(key)
		stats.CustomCount++
	}
	l.mu.RUnlock()

	stats.Platforms = sortedKeys(platforms)
	stats.ActionTypes = sortedKeys(actions)
	stats.TemplateTypes = sortedKeys(types)
	return stats
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
