package esgevidence

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the single immutable configuration struct assembled once at
// process start. No component reads os.Getenv directly; everything that
// needs an environment-contract value (§6) or a pipeline-tuning knob reads
// it from here.
type Config struct {
	// Determinism / replay (§6 environment contract).
	Seed           int
	HashSeed       int
	OfflineReplay  bool
	FixedTime      time.Time
	HasFixedTime   bool

	// Network / acquisition.
	UserAgent        string
	SECRateLimit     time.Duration
	MetadataTimeout  time.Duration
	DocumentTimeout  time.Duration

	// Extraction.
	ChunkSize int
	Overlap   int

	// Indexing / embedding.
	EmbeddingDim int
	ParserBackend string // "default" | "docling"

	// Retrieval fusion (§4.6).
	WeightLexical float64
	WeightVector  float64

	// Evidence selection (§4.7).
	EvidenceMinPerTheme int

	// Gate engine (§4.8).
	ShortDocPageThreshold  int // docs with fewer pages than this use the lower span threshold
	PageSpanThresholdLong  int // adaptive threshold when total pages >= ShortDocPageThreshold
	PageSpanThresholdShort int // adaptive threshold when total pages < ShortDocPageThreshold
	DistinctPagesMin       int
	PerPageCap             int
	AlignmentFuzzyPrefixChars int // SPEC_FULL §F.3, default 80

	// Workspace root, used by gate G6's path-escape check.
	WorkspaceRoot string
}

// DefaultConfig returns the pipeline's defaults, mirroring the teacher's
// DefaultConfig pattern: every tunable has a sane value before environment
// overrides are applied.
func DefaultConfig() Config {
	return Config{
		Seed:                      42,
		HashSeed:                  0,
		OfflineReplay:             false,
		UserAgent:                 "",
		SECRateLimit:              time.Second,
		MetadataTimeout:           30 * time.Second,
		DocumentTimeout:           60 * time.Second,
		ChunkSize:                 1600,
		Overlap:                   200,
		EmbeddingDim:              128,
		ParserBackend:             "default",
		WeightLexical:             0.5,
		WeightVector:              0.5,
		EvidenceMinPerTheme:       2,
		ShortDocPageThreshold:     10,
		PageSpanThresholdLong:     5,
		PageSpanThresholdShort:    3,
		DistinctPagesMin:          3,
		PerPageCap:                5,
		AlignmentFuzzyPrefixChars: 80,
		WorkspaceRoot:             ".",
	}
}

// LoadConfig assembles a Config from DefaultConfig overridden by the §6
// environment contract. env is injected (rather than calling os.Getenv
// directly) so callers and tests control the environment explicitly; pass
// os.Getenv in production.
func LoadConfig(env func(string) string) (Config, error) {
	cfg := DefaultConfig()

	if v := env("SEED"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, newPipelineError(KindConfigError, "SEED must be an integer", err)
		}
		cfg.Seed = n
	}
	if v := env("PYTHONHASHSEED"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, newPipelineError(KindConfigError, "PYTHONHASHSEED must be an integer", err)
		}
		cfg.HashSeed = n
	}
	if v := env("OFFLINE_REPLAY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, newPipelineError(KindConfigError, "OFFLINE_REPLAY must be a bool", err)
		}
		cfg.OfflineReplay = b
	}
	if v := env("FIXED_TIME"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return Config{}, newPipelineError(KindConfigError, "FIXED_TIME must be ISO-8601", err)
		}
		cfg.FixedTime = t
		cfg.HasFixedTime = true
	}
	if v := env("USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := env("PARSER_BACKEND"); v != "" {
		cfg.ParserBackend = strings.ToLower(v)
	}
	if v := env("SEC_RPS_DELAY"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, newPipelineError(KindConfigError, "SEC_RPS_DELAY must be a float", err)
		}
		cfg.SECRateLimit = time.Duration(f * float64(time.Second))
	}
	if v := env("WORKSPACE_ROOT"); v != "" {
		cfg.WorkspaceRoot = v
	}

	return cfg, nil
}

// Now returns the current time, or the pinned replay time when offline
// replay is active (spec §4.2 "Determinism: timestamps use fixed replay
// timestamp when offline_replay set").
func (c Config) Now() time.Time {
	if c.OfflineReplay && c.HasFixedTime {
		return c.FixedTime
	}
	return time.Now().UTC()
}

// RequireUserAgent enforces the §4.1 invariant that network providers
// cannot operate without a configured User-Agent.
func (c Config) RequireUserAgent() error {
	if strings.TrimSpace(c.UserAgent) == "" {
		return newPipelineError(KindConfigError, "user agent required for network providers", ErrMissingUserAgent)
	}
	return nil
}

// PageSpanThreshold returns the adaptive gate-G2 span threshold for a
// document with the given total page count (spec §4.8, §8 boundary case:
// exactly ShortDocPageThreshold pages uses the "long" threshold).
func (c Config) PageSpanThreshold(totalPages int) int {
	if totalPages >= c.ShortDocPageThreshold {
		return c.PageSpanThresholdLong
	}
	return c.PageSpanThresholdShort
}

// OSEnv is the production environment accessor, passed to LoadConfig as
// LoadConfig(esgevidence.OSEnv).
func OSEnv(key string) string {
	return os.Getenv(key)
}
