// pkg/report/html_report.go

package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// HTMLReport renders all findings of a run, grouped by category, into a
// single static HTML document. The output file is fully overwritten each
// time it is produced.
type HTMLReport struct {
	// TemplatePath is the HTML template the report is rendered from.
	TemplatePath string

	// OutputPath is where the report will be saved.
	OutputPath string

	// KB supplies optional suggestions for non-normal findings.
	KB *KnowledgeBase
}

// NewHTMLReport creates a report renderer.
func NewHTMLReport(templatePath, outputPath string, kb *KnowledgeBase) *HTMLReport {
	if kb == nil {
		kb = &KnowledgeBase{}
	}
	return &HTMLReport{
		TemplatePath: templatePath,
		OutputPath:   outputPath,
		KB:           kb,
	}
}

type reportItem struct {
	Item          string
	Status        Status
	StatusIcon    string
	StatusClass   string
	Priority      Priority
	PriorityClass string
	ShowPriority  bool
	Details       string
	Suggestion    string
}

type reportCategory struct {
	Name  string
	Items []reportItem
}

type reportData struct {
	Hostname   string
	Timestamp  string
	Scenario   string
	Categories []reportCategory
}

var statusIcons = map[Status]string{
	StatusNormal: "✅",
	StatusWarn:   "⚠️",
	StatusFail:   "❌",
}

var statusClasses = map[Status]string{
	StatusNormal: "status-normal",
	StatusWarn:   "status-warn",
	StatusFail:   "status-fail",
}

var priorityClasses = map[Priority]string{
	PriorityCritical: "priority-critical",
	PriorityHigh:     "priority-high",
	PriorityMedium:   "priority-medium",
	PriorityInfo:     "priority-info",
}

// Render writes the report for the given findings. A missing template is
// returned as an error so the caller can degrade to log-only output.
func (r *HTMLReport) Render(hostname, timestamp, scenario string, findings []Finding) error {
	tmpl, err := template.New(filepath.Base(r.TemplatePath)).
		Funcs(template.FuncMap{"nl2br": nl2br}).
		ParseFiles(r.TemplatePath)
	if err != nil {
		return fmt.Errorf("failed to load report template: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.OutputPath), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	data := reportData{
		Hostname:   hostname,
		Timestamp:  timestamp,
		Scenario:   scenario,
		Categories: r.organize(findings),
	}

	out, err := os.Create(r.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer out.Close()

	if err := tmpl.Execute(out, data); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// organize groups findings by category and sorts categories and items
// lexicographically so the rendered document is deterministic.
func (r *HTMLReport) organize(findings []Finding) []reportCategory {
	grouped := make(map[string][]Finding)
	for _, f := range findings {
		grouped[f.Category] = append(grouped[f.Category], f)
	}

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	categories := make([]reportCategory, 0, len(names))
	for _, name := range names {
		items := grouped[name]
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Item < items[j].Item
		})

		cat := reportCategory{Name: name}
		for _, f := range items {
			item := reportItem{
				Item:          f.Item,
				Status:        f.Status,
				StatusIcon:    statusIcons[f.Status],
				StatusClass:   statusClasses[f.Status],
				Priority:      f.Priority,
				PriorityClass: priorityClasses[f.Priority],
				ShowPriority:  f.Status != StatusNormal,
				Details:       f.Details,
				Suggestion:    "",
			}
			if item.StatusIcon == "" {
				item.StatusIcon = "?"
			}
			if f.Status != StatusNormal {
				item.Suggestion = r.KB.Suggest(f.Details)
			}
			cat.Items = append(cat.Items, item)
		}
		categories = append(categories, cat)
	}
	return categories
}

// nl2br escapes text and turns newlines into <br> so multi-line details
// keep their shape in the rendered document.
func nl2br(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}
