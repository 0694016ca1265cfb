package civics

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/civix-app/civix-backend/internal/entity"
)

// sectionPattern routes a question phrasing to the data keys worth surfacing
// in a deterministic answer.
type sectionPattern struct {
	pattern *regexp.Regexp
	keys    []string
}

var sectionPatterns = []sectionPattern{
	{regexp.MustCompile(`(?i)permit|need|require`), []string{"permit", "permit_required", "permit_requirements", "requirements"}},
	{regexp.MustCompile(`(?i)fee|cost|price`), []string{"fee", "fees", "penalties", "fine", "fines"}},
	{regexp.MustCompile(`(?i)time|hour|when`), []string{"hours", "timeframe", "schedule", "prohibited_hours", "quiet_hours"}},
	{regexp.MustCompile(`(?i)height|tall|high`), []string{"max_height", "height", "residential_zones", "commercial_zones"}},
	{regexp.MustCompile(`(?i)where|location`), []string{"location", "placement", "setback"}},
	{regexp.MustCompile(`(?i)how|process|step`), []string{"process", "registration", "application", "how_to"}},
	{regexp.MustCompile(`(?i)penalty|fine|violation`), []string{"penalties", "fines", "enforcement", "violations"}},
	{regexp.MustCompile(`(?i)contact|phone|help`), []string{"contact", "department", "phone"}},
}

// always-carried identity fields, never rendered as sections
var headerKeys = map[string]bool{
	"topic":               true,
	"title":               true,
	"ordinance_reference": true,
	"summary":             true,
	"jurisdiction":        true,
}

// RelevantSections selects the parts of a topic's data worth including in an
// answer to the given question. Keys matching the question's phrasing win;
// when nothing specific matches, everything but the identity fields is
// returned.
func RelevantSections(question string, data map[string]any) map[string]any {
	relevant := make(map[string]any)

	matchedAny := false
	for _, sp := range sectionPatterns {
		if !sp.pattern.MatchString(question) {
			continue
		}
		for _, key := range sp.keys {
			if v, ok := data[key]; ok {
				relevant[key] = v
				matchedAny = true
			}
			// same key one level down
			for topKey, topVal := range data {
				nested, ok := topVal.(map[string]any)
				if !ok {
					continue
				}
				v, ok := nested[key]
				if !ok {
					continue
				}
				sub, ok := relevant[topKey].(map[string]any)
				if !ok {
					sub = make(map[string]any)
					relevant[topKey] = sub
				}
				sub[key] = v
				matchedAny = true
			}
		}
	}

	if !matchedAny {
		for key, v := range data {
			if key == "jurisdiction" || key == "topic" {
				continue
			}
			relevant[key] = v
		}
	}

	return relevant
}

// FormatValue renders a decoded JSON value as readable text. Booleans become
// Yes/No, numbers are rendered as dollar amounts (topic data uses bare
// numbers only for fees), arrays become bullet lists and objects become
// labeled lines, keys sorted for stable output.
func FormatValue(value any) string {
	return formatValue(value, 0)
}

func formatValue(value any, indent int) string {
	prefix := strings.Repeat("  ", indent)
	switch v := value.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	case float64:
		return "$" + strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return "$" + strconv.Itoa(v)
	case string:
		return v
	case []any:
		lines := make([]string, 0, len(v))
		for _, item := range v {
			lines = append(lines, prefix+"- "+formatValue(item, indent))
		}
		return strings.Join(lines, "\n")
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			if v[k] == nil {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			label := humanizeKey(k)
			if _, nested := v[k].(map[string]any); nested {
				lines = append(lines, fmt.Sprintf("%s**%s:**\n%s", prefix, label, formatValue(v[k], indent+1)))
				continue
			}
			lines = append(lines, fmt.Sprintf("%s**%s:** %s", prefix, label, formatValue(v[k], indent+1)))
		}
		return strings.Join(lines, "\n")
	default:
		return fmt.Sprint(v)
	}
}

// FormatTopicAnswer renders a matched topic's data as a Markdown answer
// scoped to what the question asked about.
func FormatTopicAnswer(question string, match entity.TopicMatch) string {
	data := match.Data
	sections := RelevantSections(question, data)

	var b strings.Builder
	title, _ := data["title"].(string)
	if title == "" {
		title = match.Topic.Title
	}
	ref, _ := data["ordinance_reference"].(string)
	if ref == "" {
		ref = match.Topic.OrdinanceReference
	}
	fmt.Fprintf(&b, "Based on %s (%s):\n\n", title, ref)

	if summary, ok := data["summary"].(string); ok && summary != "" {
		b.WriteString(summary + "\n\n")
	}

	keys := make([]string, 0, len(sections))
	for k := range sections {
		if headerKeys[k] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "### %s\n%s\n\n", humanizeKey(k), FormatValue(sections[k]))
	}

	if contact, ok := data["contact"].(map[string]any); ok {
		b.WriteString("### Contact\n")
		if phone, ok := contact["phone"].(string); ok && phone != "" {
			b.WriteString("Phone: " + phone + "\n")
		}
		if online, ok := contact["online"].(string); ok && online != "" {
			b.WriteString("Online: " + online + "\n")
		}
		if dept, ok := contact["department"].(string); ok && dept != "" {
			b.WriteString("Department: " + dept + "\n")
		}
	}

	return b.String()
}

// humanizeKey turns snake_case data keys into title-cased labels.
func humanizeKey(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
