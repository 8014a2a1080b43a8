package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Thresholds defines the similarity boundaries for the validation gates.
type Thresholds struct {
	// DescriptionMatch is the minimum image-description similarity.
	DescriptionMatch float64 `yaml:"description_match"`
	// CivicImage is the minimum absolute civic similarity.
	CivicImage float64 `yaml:"civic_image"`
	// CivicMargin is how much civic must exceed non-civic similarity.
	CivicMargin float64 `yaml:"civic_margin"`
}

// Category is one civic-issue category with weighted keywords.
// Declaration order in the Categories slice is the tie-break order for
// equal severities.
type Category struct {
	Name string `yaml:"name"`
	// Tier decides the hierarchical priority when this category wins:
	// critical | high | medium | low.
	Tier     string             `yaml:"tier"`
	Keywords map[string]float64 `yaml:"keywords"`
}

// Hazard is one dangerous-content rule. Keyword presence alone never
// flags; either the civic similarity must meet CivicThreshold or one of
// the DangerPhrases must appear verbatim.
type Hazard struct {
	Type           string   `yaml:"type"`
	Keywords       []string `yaml:"keywords"`
	CivicThreshold float64  `yaml:"civic_threshold"`
	DangerPhrases  []string `yaml:"danger_phrases"`
}

// JudgeConfig configures the generative gatekeeper mode.
type JudgeConfig struct {
	// Mode selects the pipeline: "gates" (ordered oracle gates) or
	// "generative" (single judge call replaces gates 1-4).
	Mode  string `yaml:"mode"`
	Model string `yaml:"model"`
	// TimeoutSeconds bounds one judge call.
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// FailurePolicy applies when the judge errors, times out, or returns
	// unparsable output: "open" accepts, "closed" rejects.
	FailurePolicy string `yaml:"failure_policy"`
}

// Timeout returns the judge call bound as a duration.
func (j JudgeConfig) Timeout() time.Duration {
	if j.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(j.TimeoutSeconds) * time.Second
}

// TriageConfig selects and tunes the priority policy.
type TriageConfig struct {
	// Policy: "hierarchical" (canonical) or "blended" (kept as a named
	// alternative for comparison runs).
	Policy string `yaml:"policy"`
	// UrgencyMedium is the urgency above which an uncategorized report
	// is MEDIUM instead of LOW.
	UrgencyMedium float64 `yaml:"urgency_medium"`
	// AutoVerifyScore is the minimum verification score for the
	// auto-verify hint on CRITICAL dangerous reports.
	AutoVerifyScore int `yaml:"auto_verify_score"`
	// DowngradeTerms force LOW for critical-tier categories whose only
	// electrical vocabulary is low-voltage lighting.
	DowngradeTerms []string `yaml:"downgrade_terms"`
}

// OracleConfig locates the vision sidecar serving detection, similarity
// and sentiment.
type OracleConfig struct {
	VisionURL      string `yaml:"vision_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
}

// Timeout returns the per-call bound for sidecar requests.
func (o OracleConfig) Timeout() time.Duration {
	if o.TimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// ServerConfig holds HTTP transport settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Config holds every tunable consumed at process start. It is immutable
// for the lifetime of one snapshot; hot reload swaps whole snapshots.
type Config struct {
	JunkObjects    []string     `yaml:"junk_objects"`
	CivicKeywords  []string     `yaml:"civic_keywords"`
	CivicPrompt    string       `yaml:"civic_prompt"`
	NonCivicPrompt string       `yaml:"non_civic_prompt"`
	Thresholds     Thresholds   `yaml:"thresholds"`
	Categories     []Category   `yaml:"categories"`
	Hazards        []Hazard     `yaml:"hazards"`
	Judge          JudgeConfig  `yaml:"judge"`
	Triage         TriageConfig `yaml:"triage"`
	Oracles        OracleConfig `yaml:"oracles"`
	Server         ServerConfig `yaml:"server"`
}

// JunkSet returns the junk objects as a lowercase lookup set.
func (c *Config) JunkSet() map[string]bool {
	s := make(map[string]bool, len(c.JunkObjects))
	for _, o := range c.JunkObjects {
		s[strings.ToLower(o)] = true
	}
	return s
}

// Default returns the built-in configuration matching the reference
// deployment.
func Default() *Config {
	return &Config{
		JunkObjects: []string{
			"cat", "dog", "cow", "horse", "sheep",
			"bird", "chair", "bed", "sofa",
			"tv", "laptop", "phone", "food", "pizza",
			"cake", "bottle", "cup", "fork", "knife",
			"spoon", "bowl",
		},
		CivicKeywords: []string{
			"road", "street", "footpath", "pothole", "crack", "accident",
			"garbage", "trash", "waste", "dump", "litter",
			"water", "leak", "sewage", "flood", "drainage",
			"electric", "wire", "streetlight", "transformer", "pole",
			"fire", "smoke", "explosion", "factory",
			"bridge", "sidewalk", "pavement", "manhole", "gutter",
		},
		CivicPrompt: "road damage, pothole, cracked road, garbage dump, water leakage, " +
			"electric hazard, broken streetlight, fire, smoke, flood, " +
			"public infrastructure problem, civic issue, municipal problem",
		NonCivicPrompt: "person, animal, pet, food, furniture, indoor scene, " +
			"nature scenery, beautiful landscape, selfie, portrait",
		Thresholds: Thresholds{
			DescriptionMatch: 0.20,
			CivicImage:       0.22,
			CivicMargin:      0.05,
		},
		Categories: []Category{
			{
				Name: "disaster",
				Tier: "critical",
				Keywords: map[string]float64{
					"fire": 0.9, "smoke": 0.6, "explosion": 1.0,
					"collapse": 0.9, "earthquake": 1.0, "landslide": 0.9,
				},
			},
			{
				Name: "electrical",
				Tier: "critical",
				Keywords: map[string]float64{
					"electric": 0.7, "wire": 0.5, "transformer": 0.8,
					"spark": 0.8, "shock": 0.8, "power line": 0.7,
					"short circuit": 0.9, "streetlight": 0.3,
				},
			},
			{
				Name: "road",
				Tier: "high",
				Keywords: map[string]float64{
					"pothole": 0.8, "crack": 0.5, "accident": 0.9,
					"road": 0.3, "manhole": 0.6, "sidewalk": 0.4,
					"bridge": 0.6, "pavement": 0.4,
				},
			},
			{
				Name: "water",
				Tier: "medium",
				Keywords: map[string]float64{
					"leak": 0.6, "sewage": 0.7, "flood": 0.8,
					"drainage": 0.5, "water": 0.3, "gutter": 0.4,
					"pipeline": 0.5,
				},
			},
			{
				Name: "garbage",
				Tier: "medium",
				Keywords: map[string]float64{
					"garbage": 0.7, "trash": 0.7, "waste": 0.6,
					"dump": 0.6, "litter": 0.5,
				},
			},
			{
				Name: "nuisance",
				Tier: "low",
				Keywords: map[string]float64{
					"noise": 0.4, "graffiti": 0.3, "encroachment": 0.5,
					"stray": 0.3, "parking": 0.3,
				},
			},
		},
		Hazards: []Hazard{
			{
				Type:           "fire",
				Keywords:       []string{"fire", "smoke", "burning", "flames", "explosion"},
				CivicThreshold: 0.30,
				DangerPhrases:  []string{"on fire", "caught fire", "spreading fire"},
			},
			{
				Type:           "electrical",
				Keywords:       []string{"electric", "wire", "transformer", "spark", "shock", "power line"},
				CivicThreshold: 0.28,
				DangerPhrases:  []string{"live wire", "exposed wire", "wires hanging"},
			},
			{
				Type:           "flood",
				Keywords:       []string{"flood", "waterlogging", "overflow", "submerged"},
				CivicThreshold: 0.26,
				DangerPhrases:  []string{"water entering", "rising water"},
			},
			{
				Type:           "structural",
				Keywords:       []string{"collapse", "crack", "bridge", "building", "wall"},
				CivicThreshold: 0.32,
				DangerPhrases:  []string{"about to collapse", "collapsed", "leaning dangerously"},
			},
		},
		Judge: JudgeConfig{
			Mode:           "gates",
			Model:          "gemini-2.0-flash",
			TimeoutSeconds: 30,
			FailurePolicy:  "open",
		},
		Triage: TriageConfig{
			Policy:          "hierarchical",
			UrgencyMedium:   0.6,
			AutoVerifyScore: 60,
			DowngradeTerms:  []string{"streetlight", "street light", "street lamp", "lamp post"},
		},
		Oracles: OracleConfig{
			VisionURL:      "http://localhost:5001",
			TimeoutSeconds: 20,
			MaxRetries:     2,
		},
		Server: ServerConfig{
			Port: 8080,
		},
	}
}

// Load reads configuration from a YAML file. Empty path falls back to
// ~/.civicgate/config.yaml. Missing file returns defaults. Invalid YAML
// returns an error.
func Load(path string) (*Config, error) {
	cfg, _, err := LoadWithHash(path)
	return cfg, err
}

// LoadWithHash loads configuration and returns the SHA-256 of the raw
// YAML bytes on disk. When no file exists (defaults used), the hash is
// the SHA-256 of empty input.
func LoadWithHash(path string) (*Config, string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Default(), emptyHash(), nil
		}
		path = filepath.Join(home, ".civicgate", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), emptyHash(), nil
		}
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	h := sha256.Sum256(data)
	hash := "sha256:" + hex.EncodeToString(h[:])

	// Start with defaults, YAML overwrites only specified fields.
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, "", err
	}

	return cfg, hash, nil
}

func emptyHash() string {
	h := sha256.Sum256(nil)
	return "sha256:" + hex.EncodeToString(h[:])
}

func (c *Config) validate() error {
	switch c.Judge.Mode {
	case "", "gates", "generative":
	default:
		return fmt.Errorf("invalid judge.mode %q", c.Judge.Mode)
	}
	switch c.Judge.FailurePolicy {
	case "", "open", "closed":
	default:
		return fmt.Errorf("invalid judge.failure_policy %q", c.Judge.FailurePolicy)
	}
	switch c.Triage.Policy {
	case "", "hierarchical", "blended":
	default:
		return fmt.Errorf("invalid triage.policy %q", c.Triage.Policy)
	}
	for _, cat := range c.Categories {
		switch cat.Tier {
		case "critical", "high", "medium", "low":
		default:
			return fmt.Errorf("category %q has invalid tier %q", cat.Name, cat.Tier)
		}
		for kw, w := range cat.Keywords {
			if w < 0 || w > 1 {
				return fmt.Errorf("category %q keyword %q weight %v out of [0,1]", cat.Name, kw, w)
			}
		}
	}
	return nil
}

// DefaultYAML returns a commented YAML string for init-config.
func DefaultYAML() string {
	return `# civicgate configuration
# Generated by: civicgated init-config
#
# Gate order (cannot be changed):
#   1. Junk-object check          -> reject, no similarity calls made
#   2. Image-description match    -> reject below thresholds.description_match
#   3. Civic relevance            -> reject below thresholds.civic_image, or
#                                    when civic does not beat non-civic by
#                                    thresholds.civic_margin
#   4. Civic keyword presence     -> reject when none of civic_keywords match

thresholds:
  description_match: 0.20
  civic_image: 0.22
  civic_margin: 0.05

# Object labels that disqualify an image outright.
junk_objects: [cat, dog, cow, horse, sheep, bird, chair, bed, sofa, tv,
  laptop, phone, food, pizza, cake, bottle, cup, fork, knife, spoon, bowl]

# Generative gatekeeper. mode: gates | generative.
# failure_policy decides what happens when the judge errors, times out,
# or returns unparsable output: open = accept, closed = reject.
judge:
  mode: gates
  model: gemini-2.0-flash
  timeout_seconds: 30
  failure_policy: open

# Priority policy. policy: hierarchical | blended.
triage:
  policy: hierarchical
  urgency_medium: 0.6
  auto_verify_score: 60
  downgrade_terms: [streetlight, street light, street lamp, lamp post]

# Vision sidecar serving /detect, /similarity, /sentiment.
oracles:
  vision_url: http://localhost:5001
  timeout_seconds: 20
  max_retries: 2

server:
  port: 8080
`
}
