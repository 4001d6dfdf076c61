// Package techdetect tags work stories with the technologies they touch
// and estimates their complexity. Detection is lexical: file extensions
// from change metadata plus keyword patterns over titles and bodies.
package techdetect

import (
	"math"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/worklens/worklens/internal/types"
)

// extensionTech maps file extensions seen in change metadata to a
// technology tag.
var extensionTech = map[string]string{
	".py":    "Python",
	".js":    "JavaScript",
	".ts":    "TypeScript",
	".java":  "Java",
	".cs":    "C#",
	".cpp":   "C++",
	".c":     "C",
	".go":    "Go",
	".rs":    "Rust",
	".php":   "PHP",
	".rb":    "Ruby",
	".swift": "Swift",
	".kt":    "Kotlin",
	".scala": "Scala",
	".sql":   "SQL",
	".html":  "HTML",
	".css":   "CSS",
	".scss":  "SCSS",
	".vue":   "Vue.js",
	".jsx":   "React",
	".tsx":   "React",
	".yaml":  "YAML",
	".yml":   "YAML",
	".tf":    "Terraform",
	".sh":    "Shell",
	".ps1":   "PowerShell",
	".dart":  "Dart",
}

// techPatterns maps a technology tag to the lowercase-text patterns that
// imply it. Patterns are compiled once at init.
var techPatterns = map[string][]string{
	"React":          {`\breact\b`, `react-`},
	"Vue.js":         {`\bvue\b`, `vue-`},
	"Angular":        {`\bangular\b`, `@angular`},
	"Next.js":        {`\bnext\.?js\b`},
	"Svelte":         {`\bsvelte\b`},
	"FastAPI":        {`\bfastapi\b`},
	"Django":         {`\bdjango\b`},
	"Flask":          {`\bflask\b`},
	"Express.js":     {`\bexpress\.?js\b`, `\bexpress\b`},
	"Spring":         {`\bspring\b`, `spring-`},
	"Rails":          {`\brails\b`, `ruby on rails`},
	"PostgreSQL":     {`\bpostgres\b`, `\bpostgresql\b`, `\bpsql\b`},
	"MySQL":          {`\bmysql\b`},
	"MongoDB":        {`\bmongo\b`, `\bmongodb\b`},
	"Redis":          {`\bredis\b`},
	"SQLite":         {`\bsqlite\b`},
	"Elasticsearch":  {`\belastic\b`, `\belasticsearch\b`},
	"Docker":         {`\bdocker\b`, `dockerfile`},
	"Kubernetes":     {`\bk8s\b`, `\bkubernetes\b`, `\bkubectl\b`},
	"AWS":            {`\baws\b`, `amazon web services`},
	"Azure":          {`\bazure\b`},
	"GCP":            {`\bgcp\b`, `google cloud`},
	"Terraform":      {`\bterraform\b`},
	"Jenkins":        {`\bjenkins\b`},
	"GitLab CI":      {`gitlab.?ci`, `\.gitlab-ci`},
	"GitHub Actions": {`github.?actions`, `\.github/workflows`},
	"Jest":           {`\bjest\b`},
	"Pytest":         {`\bpytest\b`},
	"JUnit":          {`\bjunit\b`},
	"Cypress":        {`\bcypress\b`},
	"Webpack":        {`\bwebpack\b`},
	"Vite":           {`\bvite\b`},
	"Flutter":        {`\bflutter\b`},
	"GraphQL":        {`\bgraphql\b`},
	"Kafka":          {`\bkafka\b`},
	"gRPC":           {`\bgrpc\b`},
}

var compiledPatterns = compilePatterns()

func compilePatterns() map[string][]*regexp.Regexp {
	out := make(map[string][]*regexp.Regexp, len(techPatterns))
	for tech, patterns := range techPatterns {
		res := make([]*regexp.Regexp, 0, len(patterns))
		for _, p := range patterns {
			res = append(res, regexp.MustCompile(p))
		}
		out[tech] = res
	}
	return out
}

// Technologies returns the sorted, de-duplicated technology tags detected
// across the story's member items.
func Technologies(members []*types.EvidenceItem) []string {
	found := make(map[string]bool)
	for _, item := range members {
		detectFromFiles(item, found)
		detectFromContent(item, found)
		detectFromLabels(item, found)
	}
	if len(found) == 0 {
		return nil
	}
	techs := make([]string, 0, len(found))
	for tech := range found {
		techs = append(techs, tech)
	}
	sort.Strings(techs)
	return techs
}

func detectFromFiles(item *types.EvidenceItem, found map[string]bool) {
	for _, file := range item.ChangedFiles() {
		ext := strings.ToLower(filepath.Ext(file))
		if tech, ok := extensionTech[ext]; ok {
			found[tech] = true
		}
		if strings.EqualFold(filepath.Base(file), "dockerfile") {
			found["Docker"] = true
		}
	}
}

func detectFromContent(item *types.EvidenceItem, found map[string]bool) {
	text := strings.ToLower(item.Title + " " + item.Body)
	for tech, patterns := range compiledPatterns {
		if found[tech] {
			continue
		}
		for _, re := range patterns {
			if re.MatchString(text) {
				found[tech] = true
				break
			}
		}
	}
}

func detectFromLabels(item *types.EvidenceItem, found map[string]bool) {
	for _, label := range item.Labels() {
		lower := strings.ToLower(label)
		for tech, patterns := range compiledPatterns {
			if found[tech] {
				continue
			}
			for _, re := range patterns {
				if re.MatchString(lower) {
					found[tech] = true
					break
				}
			}
		}
	}
}

// Complexity dimension saturation points. Each dimension saturates so one
// enormous commit cannot dominate the score.
const (
	linesSaturation   = 1000.0
	commitsSaturation = 10.0
	techsSaturation   = 5.0
	spanSaturationDay = 30.0
)

// Weights distributes the complexity score across its four dimensions.
// Each weight must be non-negative; the score's upper bound is their sum.
type Weights struct {
	Volume    float64
	Commits   float64
	Diversity float64
	Duration  float64
}

// DefaultWeights sums to 1, keeping the default score within [0,1].
func DefaultWeights() Weights {
	return Weights{Volume: 0.3, Commits: 0.3, Diversity: 0.2, Duration: 0.2}
}

// Complexity estimates the story's effort from change size, commit count,
// technology diversity, and calendar span. Monotonic in every input and
// non-negative; each dimension saturates before weighting.
func Complexity(story *types.WorkStory, members []*types.EvidenceItem, w Weights) float64 {
	lines := 0
	commits := 0
	for _, item := range members {
		lines += item.LinesChanged()
		if item.Source == types.SourceCommit {
			commits++
		}
	}
	spanDays := story.Span().Hours() / 24

	score := w.Volume*saturate(float64(lines), linesSaturation) +
		w.Commits*saturate(float64(commits), commitsSaturation) +
		w.Diversity*saturate(float64(len(story.Technologies)), techsSaturation) +
		w.Duration*saturate(spanDays, spanSaturationDay)
	return math.Max(0, score)
}

func saturate(value, limit float64) float64 {
	if value <= 0 {
		return 0
	}
	return math.Min(1, value/limit)
}

// Frequency counts how many stories carry each technology tag.
func Frequency(stories []types.WorkStory) map[string]int {
	freq := make(map[string]int)
	for _, story := range stories {
		for _, tech := range story.Technologies {
			freq[tech]++
		}
	}
	if len(freq) == 0 {
		return nil
	}
	return freq
}
